// Package sourcecontrol fetches module code from git repositories.
//
// The Provider interface covers the operations the installer performs on a
// freshly cloned module: clone, checkout of a pinned revision, patch
// application, submodule initialization and reading the identity of HEAD
// before the metadata directory is discarded.
//
// GitProvider implements everything except patch application with go-git.
// go-git has no equivalent of "git apply", so patches go through the git
// binary via an execution.Runner.
package sourcecontrol
