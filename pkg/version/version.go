// Package version holds build metadata injected with -ldflags.
package version

import "fmt"

// Build metadata. Overridden at link time, e.g.
// -ldflags "-X github.com/Sumatoshi-tech/grammargen/pkg/version.Version=v1.0.0".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build metadata for display.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
