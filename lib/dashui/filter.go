// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"
)

// FilterModel is the fuzzy filter shared by the capabilities and logs
// tabs. The tab supplies the candidate text per row; the filter ranks
// and narrows. Filtering is client-side over whatever the state store
// currently holds — no round trip to the server.
type FilterModel struct {
	// Input is the current filter query text.
	Input string

	// Active is true when the filter input has keyboard focus
	// (the user pressed / to start typing).
	Active bool

	// slab is fzf scratch space, reused across Match calls.
	slab *util.Slab
}

// NewFilterModel creates a filter with its fzf scratch slab allocated.
func NewFilterModel() FilterModel {
	return FilterModel{slab: util.MakeSlab(100*1024, 2048)}
}

// Match scores a candidate string against the current query. An empty
// query matches everything with a zero score.
func (filter *FilterModel) Match(text string) FuzzyResult {
	if filter.Input == "" {
		return FuzzyResult{Matched: true}
	}
	if filter.slab == nil {
		filter.slab = util.MakeSlab(100*1024, 2048)
	}
	return FuzzyMatch(text, []rune(filter.Input), filter.slab)
}

// HandleRune processes a character typed while the filter is active.
// Returns true if the input changed.
func (filter *FilterModel) HandleRune(character rune) bool {
	filter.Input += string(character)
	return true
}

// HandleBackspace removes the last character from the filter input.
// Returns true if the input changed.
func (filter *FilterModel) HandleBackspace() bool {
	if len(filter.Input) == 0 {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the filter input and deactivates it.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}

// View renders the filter bar. When active, shows the input with a
// cursor. When inactive with text, shows the filter text. When
// inactive with no text, returns empty string (hidden).
func (filter *FilterModel) View(theme Theme, width int) string {
	if !filter.Active && filter.Input == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Foreground(theme.NormalText).
		Width(width)

	if filter.Active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Bold(true).
			Render("▎")
		return style.Render(" / " + filter.Input + cursor)
	}

	dimStyle := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Width(width)
	return dimStyle.Render(" filter: " + filter.Input)
}
