// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "strings"

// DefaultVisibleWindow is the number of message fragments kept on screen.
const DefaultVisibleWindow = 50

// Fragment is the rendered form of one message.
type Fragment struct {
	ID   string
	Text string
}

// FragmentList is the rendered window of the active tab. IDs are unique.
type FragmentList struct {
	limit int
	items []Fragment
	ids   map[string]struct{}
}

// NewFragmentList creates a list holding at most limit fragments.
func NewFragmentList(limit int) *FragmentList {
	if limit <= 0 {
		limit = DefaultVisibleWindow
	}
	return &FragmentList{limit: limit, ids: make(map[string]struct{})}
}

// Reset replaces the contents, keeping the newest fragments and dropping
// repeated IDs.
func (l *FragmentList) Reset(frags []Fragment) {
	l.items = l.items[:0]
	clear(l.ids)
	for _, f := range frags {
		l.Append(f)
	}
}

// Append adds f at the newest end and prunes from the oldest end,
// returning the pruned fragments. It returns false if f's ID is already
// present.
func (l *FragmentList) Append(f Fragment) (pruned []Fragment, ok bool) {
	if _, dup := l.ids[f.ID]; dup {
		return nil, false
	}
	l.items = append(l.items, f)
	l.ids[f.ID] = struct{}{}
	for len(l.items) > l.limit {
		pruned = append(pruned, l.items[0])
		delete(l.ids, l.items[0].ID)
		l.items = l.items[1:]
	}
	return pruned, true
}

// Lines returns the number of lines f occupies.
func (f Fragment) Lines() int {
	return strings.Count(f.Text, "\n") + 1
}

// Has reports whether a fragment with id is present.
func (l *FragmentList) Has(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Len returns the fragment count.
func (l *FragmentList) Len() int { return len(l.items) }

// IDs returns fragment IDs, oldest first.
func (l *FragmentList) IDs() []string {
	out := make([]string, len(l.items))
	for i, f := range l.items {
		out[i] = f.ID
	}
	return out
}

// Content joins the fragments into viewport content.
func (l *FragmentList) Content() string {
	var b strings.Builder
	for i, f := range l.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Text)
	}
	return b.String()
}
