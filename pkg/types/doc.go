// Package types holds the shared vocabulary of canasta-modules: module types,
// module declarations as they appear in a manifest, and the filesystem
// interface every component writes through.
package types
