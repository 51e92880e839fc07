package version

import "fmt"

// These variables are set at build time via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version string
func String() string {
	return fmt.Sprintf("notehub %s (commit: %s, built: %s)", Version, shortCommit(), BuildTime)
}

// UserAgent is sent with every request to the note service.
func UserAgent() string {
	return "notehub/" + Version
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
