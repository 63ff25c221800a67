// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jeranaias/critterchat/internal/model"
)

// DefaultTrigger starts a mention.
const DefaultTrigger = '@'

// =============================================================================
// TRIGGER DETECTION
// =============================================================================

// FindTrigger scans backward from cursor (a rune index into value) for
// trigger. It returns the trigger's rune index if no whitespace lies in
// between.
func FindTrigger(value []rune, cursor int, trigger rune) (int, bool) {
	if cursor > len(value) {
		cursor = len(value)
	}
	for i := cursor - 1; i >= 0; i-- {
		switch {
		case value[i] == trigger:
			return i, true
		case unicode.IsSpace(value[i]):
			return -1, false
		}
	}
	return -1, false
}

// =============================================================================
// AUTOCOMPLETE
// =============================================================================

// Autocomplete is the mention dropdown state.
type Autocomplete struct {
	trigger rune

	active      bool
	start       int // rune index of the trigger
	query       string
	suggestions []string
	selected    int
}

// NewAutocomplete creates a closed dropdown for trigger. An empty trigger
// uses DefaultTrigger.
func NewAutocomplete(trigger string) *Autocomplete {
	r, _ := utf8.DecodeRuneInString(trigger)
	if r == utf8.RuneError {
		r = DefaultTrigger
	}
	return &Autocomplete{trigger: r}
}

// Active reports whether the dropdown is open.
func (a *Autocomplete) Active() bool { return a.active }

// Query returns the text typed after the trigger.
func (a *Autocomplete) Query() string { return a.query }

// Suggestions returns the current suggestions.
func (a *Autocomplete) Suggestions() []string { return a.suggestions }

// Selected returns the highlighted index.
func (a *Autocomplete) Selected() int { return a.selected }

// Update recomputes the dropdown for value with the cursor at rune index
// cursor. Candidates are matched case-insensitively by prefix; self is
// excluded. It reports whether the visible state changed.
func (a *Autocomplete) Update(value string, cursor int, candidates []string, self string) bool {
	runes := []rune(value)
	start, ok := FindTrigger(runes, cursor, a.trigger)
	if !ok {
		return a.Close()
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	query := string(runes[start+1 : cursor])
	suggestions := Suggest(query, candidates, self)
	if len(suggestions) == 0 {
		return a.Close()
	}

	changed := !a.active || a.query != query || !slices.Equal(a.suggestions, suggestions)
	if changed || a.selected >= len(suggestions) {
		a.selected = 0
	}
	a.active = true
	a.start = start
	a.query = query
	a.suggestions = suggestions
	return changed
}

// Next moves the selection down, wrapping.
func (a *Autocomplete) Next() {
	if n := len(a.suggestions); a.active && n > 0 {
		a.selected = (a.selected + 1) % n
	}
}

// Prev moves the selection up, wrapping.
func (a *Autocomplete) Prev() {
	if n := len(a.suggestions); a.active && n > 0 {
		a.selected = (a.selected - 1 + n) % n
	}
}

// Accept splices the selected suggestion into value, replacing from the
// trigger to cursor, and returns the new value and the rune index just
// past the inserted mention and its trailing space. The dropdown closes.
func (a *Autocomplete) Accept(value string, cursor int) (string, int, bool) {
	if !a.active || len(a.suggestions) == 0 {
		return value, cursor, false
	}
	runes := []rune(value)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	if a.start < 0 || a.start >= cursor {
		a.Close()
		return value, cursor, false
	}

	mention := []rune(string(a.trigger) + a.suggestions[a.selected] + " ")
	out := make([]rune, 0, len(runes)+len(mention))
	out = append(out, runes[:a.start]...)
	out = append(out, mention...)
	out = append(out, runes[cursor:]...)

	pos := a.start + len(mention)
	a.Close()
	return string(out), pos, true
}

// Close hides the dropdown. It reports whether it was open.
func (a *Autocomplete) Close() bool {
	was := a.active
	a.active = false
	a.query = ""
	a.suggestions = nil
	a.selected = 0
	a.start = -1
	return was
}

// Suggest filters candidates by case-insensitive prefix, dropping self
// and duplicates, sorted.
func Suggest(query string, candidates []string, self string) []string {
	prefix := model.NameKey(query)
	selfKey := model.NameKey(self)

	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		key := model.NameKey(c)
		if key == "" || key == selfKey || seen[key] {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			seen[key] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := model.NameKey(out[i]), model.NameKey(out[j])
		if ki != kj {
			return ki < kj
		}
		return out[i] < out[j]
	})
	return out
}
