package version

import (
	"fmt"
	"strings"

	"github.com/carlmjohnson/versioninfo"
)

var (
	// Version of the tool, set during the build
	Version = versioninfo.Version
	// GitCommit is the git revision, set during the build
	GitCommit = versioninfo.Revision
)

// IsPre is true when the current version is a prerelease
func IsPre() bool {
	return strings.Contains(Version, "-")
}

// String returns a single-line version string
func String() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
