// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Report is the machine-readable form printed by "huff version --json".
type Report struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

// Current returns the build information of the running binary. Values
// not injected with -ldflags are filled from the VCS stamp the Go
// toolchain embeds, when present.
func Current() Report {
	report := Report{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		Go:        runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return report
	}
	fillFromBuildInfo(&report, info)
	return report
}

func fillFromBuildInfo(report *Report, info *debug.BuildInfo) {
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if report.Commit == "unknown" && setting.Value != "" {
				report.Commit = setting.Value[:min(len(setting.Value), 12)]
			}
		case "vcs.time":
			if report.BuildTime == "unknown" && setting.Value != "" {
				report.BuildTime = setting.Value
			}
		case "vcs.modified":
			if setting.Value == "true" {
				report.Dirty = true
			}
		}
	}
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return Current().String()
}

// String formats the report as "version (commit[-dirty], time)".
func (r Report) String() string {
	dirty := ""
	if r.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", r.Version, r.Commit, dirty, r.BuildTime)
}

// Full returns detailed version information including Go version.
func Full() string {
	report := Current()
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", report, report.Go, report.Platform)
}

// Short returns just the version number.
func Short() string {
	return Version
}
