// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounce is the coalescing window for non-forced renders.
const DefaultDebounce = 8 * time.Millisecond

// SchedulerState is the debounce state.
type SchedulerState int

const (
	// StateIdle means no render is pending.
	StateIdle SchedulerState = iota
	// StateScheduled means a render is pending and its timer is outstanding.
	StateScheduled
)

func (s SchedulerState) String() string {
	if s == StateScheduled {
		return "scheduled"
	}
	return "idle"
}

// RenderTickMsg is delivered when a debounce timer fires.
type RenderTickMsg struct {
	Gen uint64
}

// Scheduler coalesces render requests.
type Scheduler struct {
	delay time.Duration
	state SchedulerState
	gen   uint64
}

// NewScheduler creates an idle scheduler.
func NewScheduler(delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Scheduler{delay: delay}
}

// SetDelay changes the debounce window for future timers.
func (s *Scheduler) SetDelay(d time.Duration) {
	if d > 0 {
		s.delay = d
	}
}

// State returns the current state.
func (s *Scheduler) State() SchedulerState { return s.state }

// Request asks for a render. A forced request returns renderNow and
// invalidates any outstanding timer. Otherwise the first request starts
// a timer, returned as cmd, and later requests coalesce into it.
func (s *Scheduler) Request(force bool) (renderNow bool, cmd tea.Cmd) {
	if force {
		s.gen++
		s.state = StateIdle
		return true, nil
	}
	if s.state == StateScheduled {
		return false, nil
	}

	s.gen++
	s.state = StateScheduled
	gen := s.gen
	return false, tea.Tick(s.delay, func(time.Time) tea.Msg {
		return RenderTickMsg{Gen: gen}
	})
}

// Fire consumes a tick and reports whether the render should run now.
// Stale ticks are ignored.
func (s *Scheduler) Fire(msg RenderTickMsg) bool {
	if msg.Gen != s.gen || s.state != StateScheduled {
		return false
	}
	s.state = StateIdle
	return true
}

// Cancel drops any pending render.
func (s *Scheduler) Cancel() {
	s.gen++
	s.state = StateIdle
}
