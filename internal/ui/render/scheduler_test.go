// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_CoalescesRequests(t *testing.T) {
	s := NewScheduler(time.Millisecond)
	assert.Equal(t, StateIdle, s.State())

	now, cmd := s.Request(false)
	assert.False(t, now)
	require.NotNil(t, cmd)
	assert.Equal(t, StateScheduled, s.State())

	for i := 0; i < 5; i++ {
		now, again := s.Request(false)
		assert.False(t, now)
		assert.Nil(t, again, "requests while scheduled must coalesce")
	}

	tick, ok := cmd().(RenderTickMsg)
	require.True(t, ok)
	assert.True(t, s.Fire(tick))
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Fire(tick), "a tick fires once")
}

func TestScheduler_ForceInvalidatesPendingTimer(t *testing.T) {
	s := NewScheduler(time.Millisecond)
	_, cmd := s.Request(false)
	require.NotNil(t, cmd)

	now, forced := s.Request(true)
	assert.True(t, now)
	assert.Nil(t, forced)
	assert.Equal(t, StateIdle, s.State())

	tick := cmd().(RenderTickMsg)
	assert.False(t, s.Fire(tick), "stale tick after a forced render")
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler(time.Millisecond)
	_, cmd := s.Request(false)
	s.Cancel()

	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Fire(cmd().(RenderTickMsg)))

	_, cmd = s.Request(false)
	assert.NotNil(t, cmd, "a new request after cancel starts a timer")
}

func TestSchedulerState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "scheduled", StateScheduled.String())
}
