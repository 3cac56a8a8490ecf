package core

import "strings"

// Build metadata, injected with
//
//	go build -ldflags "-X go_photodna/core.Version=$(git describe --tags --always)"
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const ldflagsPackage = "go_photodna/core"

func GetVersion() string { return Version }

func GetBuildTime() string { return BuildTime }

func GetGitCommit() string { return GitCommit }

// GetVersionInfo returns "<version> (built <time>, commit <hash>)".
func GetVersionInfo() string {
	return Version + " (built " + BuildTime + ", commit " + GitCommit + ")"
}

// BuildLdflags returns the -X flags for the non-empty values.
func BuildLdflags(version, buildTime, gitCommit string) string {
	var flags []string
	for _, kv := range [][2]string{{"Version", version}, {"BuildTime", buildTime}, {"GitCommit", gitCommit}} {
		if kv[1] != "" {
			flags = append(flags, "-X "+ldflagsPackage+"."+kv[0]+"="+kv[1])
		}
	}
	return strings.Join(flags, " ")
}
