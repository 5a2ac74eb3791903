// Package filesystem provides filesystem implementations for canasta-modules.
//
// Every implementation wraps an afero.Fs. NewOS is backed by the real
// filesystem and supports symlinks; NewAferoFS accepts any afero.Fs, which
// tests use with afero.NewMemMapFs for manifest loading.
package filesystem
