// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestReportString(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{"clean", Report{Version: "1.2.0", Commit: "abc1234", BuildTime: "2026-03-01T10:00:00Z"}, "1.2.0 (abc1234, 2026-03-01T10:00:00Z)"},
		{"dirty", Report{Version: "1.2.0", Commit: "abc1234", Dirty: true, BuildTime: "unknown"}, "1.2.0 (abc1234-dirty, unknown)"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.report.String(); got != test.want {
				t.Errorf("String() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}}

	report := Report{Commit: "unknown", BuildTime: "unknown"}
	fillFromBuildInfo(&report, info)
	if report.Commit != "0123456789ab" {
		t.Errorf("Commit = %q, want 12-character prefix", report.Commit)
	}
	if report.BuildTime != "2026-03-01T10:00:00Z" {
		t.Errorf("BuildTime = %q", report.BuildTime)
	}
	if !report.Dirty {
		t.Error("Dirty = false, want true from vcs.modified")
	}

	// Injected values win over the VCS stamp.
	report = Report{Commit: "feedbee", BuildTime: "injected"}
	fillFromBuildInfo(&report, info)
	if report.Commit != "feedbee" || report.BuildTime != "injected" {
		t.Errorf("injected values overwritten: %+v", report)
	}
}

func TestCurrent(t *testing.T) {
	report := Current()
	if report.Version != Version {
		t.Errorf("Version = %q, want %q", report.Version, Version)
	}
	if report.Go != runtime.Version() {
		t.Errorf("Go = %q, want %q", report.Go, runtime.Version())
	}
	if !strings.Contains(Full(), report.Platform) {
		t.Errorf("Full() = %q does not mention platform %q", Full(), report.Platform)
	}
	if Short() != Version {
		t.Errorf("Short() = %q", Short())
	}
}
