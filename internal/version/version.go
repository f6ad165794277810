// Package version holds build-time version information for the legalqa
// binary, populated via -ldflags:
//
//	go build -ldflags="-X github.com/54b3r/legalqa-go/internal/version.Version=v0.3.0 \
//	                    -X github.com/54b3r/legalqa-go/internal/version.Commit=abc1234 \
//	                    -X github.com/54b3r/legalqa-go/internal/version.BuildDate=2026-01-01"
package version

import "fmt"

// Version is the semantic version of the binary. "dev" for local builds.
var Version = "dev"

// Commit is the short git SHA the binary was built from.
var Commit = "unknown"

// BuildDate is the UTC build date.
var BuildDate = "unknown"

// String renders the version line printed by `legalqa version` and logged by
// `legalqa serve` at startup.
func String() string {
	return fmt.Sprintf("legalqa %s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
