// Package version holds build information injected at link time.
package version

// Build information set by ldflags, e.g.
// -X github.com/canastawiki/canasta-modules/internal/version.Version=v1.2.0
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
