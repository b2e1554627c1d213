// Package version provides build version information embedding.
//
// Version and git metadata are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/rpckit/version.Version=1.0.0"
package version

import "fmt"

var (
	// These variables are set at build time using -ldflags.
	Version   = "dev"
	GitCommit = ""
)

// String returns the version, including the commit when present.
func String() string {
	if GitCommit != "" {
		return fmt.Sprintf("%s (%s)", Version, GitCommit)
	}
	return Version
}

// UserAgent returns the user-agent string channels advertise to servers.
func UserAgent() string {
	return "rpckit/" + Version
}
