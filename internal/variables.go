package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Name used for the binary, the log group, and runtime directories.
const Name = "spkenvd"

// String reported when a build-time variable was not set.
const defaultUndefined = "(undefined)"

// String reported for local (non-pipeline) builds.
const defaultLocalBuild = "(local)"

var (
	version   = "" // Version number (e.g., "0.3.1")
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4")

	rawQuiet   = "false" // Whether to enable quiet mode
	rawDebug   = "false" // Whether to enable debug mode
	rawVerbose = "false" // Whether to enable verbose logging
)

// Returns the current version.
//
// Strips a leading "v" or "V" prefix (e.g., "v1.0.0" becomes "1.0.0").
// Returns "(undefined)" when the version was not set via linker flags.
func Version() string {
	v := strings.TrimSpace(version)
	if v == "" {
		return defaultUndefined
	}
	return strings.TrimPrefix(strings.ToLower(v), "v")
}

// Returns the git commit hash, or "(undefined)" when unset.
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return defaultUndefined
	}
	return c
}

// Returns true if this is a local (non-pipeline) build.
//
// Pipeline builds set both the version and the commit hash via linker flags;
// a build missing either is treated as local.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" || strings.TrimSpace(gitCommit) == ""
}

// Returns a detailed version string.
//
// Local builds report "(local)". Pipeline builds report
// "<version> <git-commit> [<arch>]".
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}
	return fmt.Sprintf("%s %s [%s]", Version(), GitCommit(), runtime.GOARCH)
}
