// Package testutil provides test environments for canasta-modules components.
//
// Key components:
//   - Environment: a MediaWiki layout (MW_HOME, MW_ORIGIN_FILES) under
//     t.TempDir with a matching configuration
//   - FileTree: declarative file and directory setup
//   - Path helpers that fail the test instead of returning errors
//
// Installer tests use the real filesystem because relocation and linking
// depend on symlinks and renames that the in-memory filesystem does not model.
package testutil
