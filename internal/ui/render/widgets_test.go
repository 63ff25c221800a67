// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/critterchat/internal/ui/styles"
)

// =============================================================================
// AUTOCOMPLETE
// =============================================================================

func TestAutocomplete_SuggestAndAccept(t *testing.T) {
	a := NewAutocomplete("@")
	value := "hello @al"

	changed := a.Update(value, len([]rune(value)), []string{"alya", "alex", "bob"}, "me")
	require.True(t, changed)
	assert.True(t, a.Active())
	assert.Equal(t, "al", a.Query())
	assert.Equal(t, []string{"alex", "alya"}, a.Suggestions())
	assert.Equal(t, 0, a.Selected())

	a.Next()
	out, cursor, ok := a.Accept(value, len([]rune(value)))
	require.True(t, ok)
	assert.Equal(t, "hello @alya ", out)
	assert.Equal(t, 12, cursor)
	assert.False(t, a.Active())
}

func TestAutocomplete_AcceptKeepsTextAfterCursor(t *testing.T) {
	a := NewAutocomplete("@")
	value := "@b how are you"
	require.True(t, a.Update(value, 2, []string{"bob"}, ""))

	out, cursor, ok := a.Accept(value, 2)
	require.True(t, ok)
	assert.Equal(t, "@bob  how are you", out)
	assert.Equal(t, 5, cursor)
}

func TestAutocomplete_NavigationWraps(t *testing.T) {
	a := NewAutocomplete("@")
	a.Update("@", 1, []string{"a1", "a2", "a3"}, "")

	a.Prev()
	assert.Equal(t, 2, a.Selected())
	a.Next()
	assert.Equal(t, 0, a.Selected())
	a.Prev()
	assert.Equal(t, 2, a.Selected())
}

func TestAutocomplete_SameSuggestionsKeepSelection(t *testing.T) {
	a := NewAutocomplete("@")
	require.True(t, a.Update("@a", 2, []string{"al", "an"}, ""))
	a.Next()

	assert.False(t, a.Update("@a", 2, []string{"an", "al"}, ""), "same sorted list is not a change")
	assert.Equal(t, 1, a.Selected())

	assert.True(t, a.Update("@a", 2, []string{"al", "an", "ax"}, ""))
	assert.Equal(t, 0, a.Selected(), "a new list resets the selection")
}

func TestAutocomplete_ExcludesSelfAndDuplicates(t *testing.T) {
	got := Suggest("A", []string{"Alex", "alex", " alya ", "Amy", "bob"}, "amy")
	assert.Equal(t, []string{"Alex", "alya"}, got)
}

func TestAutocomplete_ClosesWithoutTrigger(t *testing.T) {
	a := NewAutocomplete("@")
	require.True(t, a.Update("@a", 2, []string{"alex"}, ""))

	assert.True(t, a.Update("@a b", 4, []string{"alex"}, ""), "whitespace after the trigger closes the dropdown")
	assert.False(t, a.Active())

	assert.False(t, a.Update("no mention", 10, []string{"alex"}, ""))
	assert.False(t, a.Update("@zed", 4, []string{"alex"}, ""), "no matches stays closed")
}

func TestFindTrigger(t *testing.T) {
	tests := []struct {
		value  string
		cursor int
		want   int
		ok     bool
	}{
		{"@", 1, 0, true},
		{"hi @bo", 6, 3, true},
		{"hi@bo", 5, 0, false},
		{"hi @bo there", 12, 0, false},
		{"héllo @ü", 8, 6, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := FindTrigger([]rune(tt.value), tt.cursor, '@')
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// =============================================================================
// FRAGMENTS AND SCROLL
// =============================================================================

func TestFragmentList_DedupesAndPrunes(t *testing.T) {
	l := NewFragmentList(3)

	_, ok := l.Append(Fragment{ID: "a", Text: "one"})
	require.True(t, ok)
	_, ok = l.Append(Fragment{ID: "a", Text: "again"})
	assert.False(t, ok)

	l.Append(Fragment{ID: "b", Text: "two\nlines"})
	l.Append(Fragment{ID: "c", Text: "three"})
	pruned, ok := l.Append(Fragment{ID: "d", Text: "four"})
	require.True(t, ok)
	require.Len(t, pruned, 1)
	assert.Equal(t, "a", pruned[0].ID)

	assert.Equal(t, []string{"b", "c", "d"}, l.IDs())
	assert.False(t, l.Has("a"))
	assert.Equal(t, "two\nlines\nthree\nfour", l.Content())
	assert.Equal(t, 2, Fragment{Text: "two\nlines"}.Lines())
}

func TestFragmentList_ResetKeepsNewest(t *testing.T) {
	l := NewFragmentList(2)
	l.Reset([]Fragment{{ID: "a"}, {ID: "b"}, {ID: "b"}, {ID: "c"}})
	assert.Equal(t, []string{"b", "c"}, l.IDs())
}

func TestScrollAnchor_Restore(t *testing.T) {
	vp := viewport.New(10, 5)
	vp.SetContent(numberedLines(20))
	vp.SetYOffset(8)

	rel := CaptureScroll(vp, false)
	abs := CaptureScroll(vp, true)
	assert.Equal(t, 7, rel.Offset)
	assert.Equal(t, 8, abs.Offset)

	vp.SetContent(numberedLines(25))
	rel.Restore(&vp)
	assert.Equal(t, 13, vp.YOffset, "relative anchors keep the distance from the bottom")

	abs.Restore(&vp)
	assert.Equal(t, 8, vp.YOffset)

	ScrollAnchor{Absolute: true, Offset: 999}.Restore(&vp)
	assert.Equal(t, MaxOffset(vp), vp.YOffset)
}

// =============================================================================
// NOTIFICATIONS AND DIALOG
// =============================================================================

func TestNotifications_RemoveByID(t *testing.T) {
	n := NewNotifications(0, 0)

	first, cmd := n.Add("saved", false)
	require.NotNil(t, cmd)
	second, _ := n.Add("failed", true)
	require.Equal(t, 2, n.Len())

	assert.True(t, n.Remove(first))
	assert.False(t, n.Remove(first), "removing twice is a no-op")

	items := n.Items()
	require.Len(t, items, 1)
	assert.Equal(t, second, items[0].ID)
	assert.True(t, items[0].IsError)
	assert.Greater(t, items[0].Duration, DefaultInfoDuration)
}

func TestNotifications_Capped(t *testing.T) {
	n := NewNotifications(0, 0)
	for i := 0; i < maxNotifications+3; i++ {
		n.Add(fmt.Sprintf("note %d", i), false)
	}
	assert.Equal(t, maxNotifications, n.Len())
}

func TestDialog_AtMostOne(t *testing.T) {
	ran := 0
	yes := func() tea.Msg { ran++; return nil }

	var d Dialog
	require.True(t, d.Open(Confirmation{Title: "Remove", Message: "Remove bob?", OnYes: yes}))
	assert.False(t, d.Open(Confirmation{Title: "Other"}))

	c, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, "Remove", c.Title)

	assert.True(t, d.Cancel())
	assert.Nil(t, d.Confirm(), "confirm after cancel does nothing")
	assert.Equal(t, 0, ran)

	require.True(t, d.Open(Confirmation{Title: "Remove", OnYes: yes}))
	cmd := d.Confirm()
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, ran)
	assert.False(t, d.Active())
}

func TestRenderDialog(t *testing.T) {
	theme := styles.NewTheme()
	var d Dialog
	assert.Empty(t, RenderDialog(theme, &d, 80))

	d.Open(Confirmation{Title: "Remove friend", Message: "Remove bob?"})
	out := RenderDialog(theme, &d, 80)
	assert.Contains(t, out, "Remove friend")
	assert.Contains(t, out, "Remove bob?")
}

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return strings.Join(lines, "\n")
}
