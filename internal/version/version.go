// Package version exposes build metadata stamped in by the linker.
package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"     // Default value if not built with LDFLAGS
	CommitHash = "unknown" // Default value
	BuildDate  = "unknown" // Default value
)

// String returns a single-line description suitable for -version output.
func String() string {
	return fmt.Sprintf("runlog %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
