// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "github.com/charmbracelet/bubbles/viewport"

// ScrollAnchor is a scroll position captured before a rebuild.
type ScrollAnchor struct {
	// Absolute anchors to YOffset; otherwise Offset is the distance from
	// the bottom.
	Absolute bool
	Offset   int
}

// MaxOffset returns the largest valid YOffset for vp.
func MaxOffset(vp viewport.Model) int {
	return max(0, vp.TotalLineCount()-vp.Height)
}

// DistanceFromBottom returns how many lines are below the visible area.
func DistanceFromBottom(vp viewport.Model) int {
	return max(0, MaxOffset(vp)-vp.YOffset)
}

// CaptureScroll records vp's position as an absolute offset or as a
// distance from the bottom.
func CaptureScroll(vp viewport.Model, absolute bool) ScrollAnchor {
	if absolute {
		return ScrollAnchor{Absolute: true, Offset: vp.YOffset}
	}
	return ScrollAnchor{Offset: DistanceFromBottom(vp)}
}

// Restore replays the anchor against vp's current content, clamped to
// the valid range.
func (a ScrollAnchor) Restore(vp *viewport.Model) {
	target := a.Offset
	if !a.Absolute {
		target = MaxOffset(*vp) - a.Offset
	}
	vp.SetYOffset(min(max(target, 0), MaxOffset(*vp)))
}
