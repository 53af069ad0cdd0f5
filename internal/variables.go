package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Program name, used for the command line and log grouping.
	Name = "cruxbuild"

	// Reported for build metadata that was not set at link time.
	undefined = "(undefined)"

	// Reported instead of a version for builds made outside the release
	// pipeline.
	localBuild = "(local)"

	// Branch whose builds carry no stage suffix.
	mainBranch = "main"
)

// Set with -ldflags "-X github.com/cruciblehq/cruxbuild/internal.<name>=...".
var (
	version   = "" // Release version, with or without a "v" prefix
	stage     = "" // Branch the release was cut from
	gitCommit = "" // Commit the binary was built from

	rawQuiet   = "false" // Default for --quiet
	rawDebug   = "false" // Default for --debug
	rawVerbose = "false" // Default for --verbose
)

// Describes the cruxbuild binary.
type BuildInfo struct {
	Version  string `json:"version"`  // Release version without the "v" prefix.
	Stage    string `json:"stage"`    // Lowercase release branch.
	Commit   string `json:"commit"`   // Source commit.
	Platform string `json:"platform"` // OS and architecture the binary runs on.
	Local    bool   `json:"local"`    // Built outside the release pipeline.
}

// Returns the build metadata of the running binary.
//
// Unset fields read "(undefined)". A build is local when any of version,
// stage and commit was not set at link time.
func Build() BuildInfo {
	return BuildInfo{
		Version:  orUndefined(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v")),
		Stage:    orUndefined(strings.ToLower(strings.TrimSpace(stage))),
		Commit:   orUndefined(strings.TrimSpace(gitCommit)),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Local:    strings.TrimSpace(version) == "" || strings.TrimSpace(stage) == "" || strings.TrimSpace(gitCommit) == "",
	}
}

// Formats the build metadata as "<version>[+<stage>] <commit> [<platform>]",
// or "(local)" for a local build. Builds from the main branch carry no stage.
func (b BuildInfo) String() string {
	if b.Local {
		return localBuild
	}
	s := ""
	if b.Stage != mainBranch {
		s = "+" + b.Stage
	}
	return fmt.Sprintf("%s%s %s [%s]", b.Version, s, b.Commit, b.Platform)
}

// Returns the version line printed by "cruxbuild version".
func VersionString() string {
	return Build().String()
}

func orUndefined(s string) string {
	if s == "" {
		return undefined
	}
	return s
}
