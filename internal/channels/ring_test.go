// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_EvictsOldestFirst(t *testing.T) {
	r := NewRing[int](3)

	for i := 1; i <= 3; i++ {
		_, evicted := r.Push(i)
		assert.False(t, evicted)
	}
	old, evicted := r.Push(4)
	assert.True(t, evicted)
	assert.Equal(t, 1, old)
	assert.Equal(t, []int{2, 3, 4}, r.Items())
	assert.Equal(t, 3, r.Len())
}

func TestRing_NeverExceedsCapacity(t *testing.T) {
	r := NewRing[int](10)
	for i := 0; i < 1000; i++ {
		r.Push(i)
		assert.LessOrEqual(t, r.Len(), 10)
	}
	items := r.Items()
	assert.Equal(t, 990, items[0])
	assert.Equal(t, 999, items[9])
}

func TestRing_Last(t *testing.T) {
	r := NewRing[string](5)
	for _, s := range []string{"a", "b", "c", "d", "e", "f"} {
		r.Push(s)
	}
	assert.Equal(t, []string{"e", "f"}, r.Last(2))
	assert.Equal(t, []string{"b", "c", "d", "e", "f"}, r.Last(50))
	assert.Nil(t, r.Last(0))
}

func TestRing_Clear(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	r.Push(2)
	r.Push(3)
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Items())
	r.Push(9)
	assert.Equal(t, []int{9}, r.Items())
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := NewRing[int](0)
	assert.Equal(t, 1, r.Cap())
}
