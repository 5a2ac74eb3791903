// Package installer materializes a resolved module set on disk.
//
// Run processes extensions then skins. For each active module it either
// requires the composer package, uses the bundled files in place, or clones
// the repository; then applies patches, runs additional steps, records
// provenance, drops the .git directory and relocates persistent
// directories. Once every module is in place it creates the build-time
// links, writes composer.local.json, runs the unified composer update and
// finally writes the dependency fingerprint.
//
// External tool failures are best-effort by default and only logged; a
// Policy decides per category whether they abort the run instead.
package installer
