// Package config handles configuration management for canasta-modules.
// Values are layered: embedded defaults, an optional TOML file, then the
// environment (MW_* for the MediaWiki layout, CANASTA_MODULES_* for tool
// settings), then command-line overrides.
package config
