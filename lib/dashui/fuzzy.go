// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult carries the outcome of a fuzzy match: whether the
// pattern matched, the fzf score for ranking, and the rune positions
// of matched characters for highlighting.
type FuzzyResult struct {
	Matched   bool
	Score     int
	Positions []int
}

// FuzzyMatch runs fzf's FuzzyMatchV2 against a single candidate
// string. Case-insensitive, with unicode normalization and forward
// scanning (matches near the start score higher). The slab is a
// reusable scratch allocation; callers matching many candidates
// should allocate one with [util.MakeSlab] and pass it to every call.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}
	fuzzy := FuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		fuzzy.Positions = *positions
	}
	return fuzzy
}
