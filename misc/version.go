// Package misc keeps program identification strings.
package misc

import (
	"runtime/debug"
)

const appName = "cssnorm"

// Set with -ldflags "-X cssnorm/misc.version=..." during release builds.
var (
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns VCS revision program was built from, "unknown" when
// build information is not available.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
