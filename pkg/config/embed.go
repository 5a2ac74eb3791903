package config

import _ "embed"

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Defaults returns the built-in defaults document
func Defaults() []byte {
	return append([]byte(nil), defaultConfig...)
}
