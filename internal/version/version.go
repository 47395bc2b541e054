// Package version exposes build-time version information for the command
// line tools.
package version

// Set at build time via -ldflags, e.g.
// -ldflags "-X stem-strain/internal/version.Version=1.2.0".
var (
	// Version is the semantic version.
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"
)
