// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/mindwell-go/internal/testutil"
)

func TestStartSchedulesRegisteredJobs(t *testing.T) {
	s := New(testutil.Logger())
	s.Add(Job{Name: "noop", Spec: "* * * * *", Run: func() error { return nil }})
	s.Add(Job{Name: "failing", Spec: "0 3 * * *", Run: func() error { return errors.New("boom") }})

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 2, s.JobCount())
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	s := New(nil)
	s.Add(Job{Name: "bad", Spec: "not a cron spec", Run: func() error { return nil }})

	assert.Error(t, s.Start())
}

func TestStopWaitsForCron(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Start())
	s.Stop()
}
