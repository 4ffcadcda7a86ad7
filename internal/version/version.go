// Package version reports the ssite build. The variables are set at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/ssite/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the --version line.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return "ssite " + Version
	}
	return fmt.Sprintf("ssite %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
