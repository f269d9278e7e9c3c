// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

// Injected via ldflags at build time; defaults cover local builds.
var (
	// Version is the semantic version from git tags (e.g., "v1.2.3").
	Version = "dev"
	// GitCommit is the short git commit hash (e.g., "abc1234").
	GitCommit = "unknown"
	// BuildTime is the build timestamp in RFC3339 format.
	BuildTime = "unknown"
)

// Info bundles the build-time fields for display.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}
