// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUninitializedLookupReturnsEmpty(t *testing.T) {
	g := NewLookup()
	assert.Equal(t, "", g.LookupCountry("203.0.113.9"))
	assert.False(t, g.IsEnabled())
}

func TestEmptyPathDisablesWithoutError(t *testing.T) {
	g := NewLookup()
	require.NoError(t, g.Init(""))
	assert.False(t, g.IsEnabled())
}

func TestMissingDatabaseReportsError(t *testing.T) {
	g := NewLookup()
	err := g.Init("/nonexistent/GeoLite2-Country.mmdb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.False(t, g.IsEnabled())
}

func TestPrivateAddressesAreLocal(t *testing.T) {
	g := NewLookup()
	require.NoError(t, g.Init(""))

	assert.Equal(t, "LOCAL", g.LookupCountry("192.168.1.10"))
	assert.Equal(t, "LOCAL", g.LookupCountry("127.0.0.1"))
	assert.Equal(t, "LOCAL", g.LookupCountry("fe80::1"))
}

func TestInvalidAddressReturnsEmpty(t *testing.T) {
	g := NewLookup()
	require.NoError(t, g.Init(""))

	assert.Equal(t, "", g.LookupCountry("not-an-ip"))
}

func TestPublicAddressWithoutDatabaseReturnsEmpty(t *testing.T) {
	g := NewLookup()
	require.NoError(t, g.Init(""))

	assert.Equal(t, "", g.LookupCountry("203.0.113.9"))
}

func TestReloadWithoutPathIsNoop(t *testing.T) {
	g := NewLookup()
	require.NoError(t, g.Init(""))
	assert.NoError(t, g.Reload())
}

func TestCloseIsIdempotent(t *testing.T) {
	g := NewLookup()
	require.NoError(t, g.Init(""))
	assert.NoError(t, g.Close())
	assert.NoError(t, g.Close())
}
