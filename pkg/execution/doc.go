// Package execution runs the external tools the installer depends on,
// currently git (for patches) and composer.
//
// Every invocation goes through the Runner interface so that tests can
// substitute a Recorder and assert on the exact command lines.
package execution
