// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsDefaults(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.Equal(t, BuildTime, info.BuildTime)
}

func TestLocalBuildDefaults(t *testing.T) {
	// Without ldflags the package reports a dev build.
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "unknown", GitCommit)
}
