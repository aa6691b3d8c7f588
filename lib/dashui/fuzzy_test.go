// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"testing"

	"github.com/junegunn/fzf/src/util"
)

func TestFuzzyMatchBasics(t *testing.T) {
	slab := util.MakeSlab(100*1024, 2048)

	result := FuzzyMatch("weather-forecast", []rune("wf"), slab)
	if !result.Matched {
		t.Fatal("expected wf to match weather-forecast")
	}
	if len(result.Positions) != 2 {
		t.Errorf("expected 2 matched positions, got %v", result.Positions)
	}

	if FuzzyMatch("weather-forecast", []rune("xyz"), slab).Matched {
		t.Error("expected xyz not to match weather-forecast")
	}
}

func TestFuzzyMatchEmptyPatternMatchesEverything(t *testing.T) {
	result := FuzzyMatch("anything", nil, nil)
	if !result.Matched {
		t.Fatal("empty pattern must match")
	}
	if result.Score != 0 {
		t.Errorf("empty pattern score = %d, want 0", result.Score)
	}
}

func TestFuzzyMatchIsCaseInsensitive(t *testing.T) {
	slab := util.MakeSlab(100*1024, 2048)
	if !FuzzyMatch("GetState", []rune("getstate"), slab).Matched {
		t.Error("expected case-insensitive match")
	}
}

func TestFuzzyMatchRanksCloserMatchesHigher(t *testing.T) {
	slab := util.MakeSlab(100*1024, 2048)
	compact := FuzzyMatch("echo", []rune("echo"), slab)
	scattered := FuzzyMatch("e-x-c-h-x-o", []rune("echo"), slab)
	if !compact.Matched {
		t.Fatal("expected exact text to match")
	}
	if scattered.Matched && scattered.Score >= compact.Score {
		t.Errorf("scattered score %d should be below compact score %d",
			scattered.Score, compact.Score)
	}
}

func TestFilterModelEditing(t *testing.T) {
	filter := NewFilterModel()
	filter.Active = true

	filter.HandleRune('a')
	filter.HandleRune('b')
	if filter.Input != "ab" {
		t.Fatalf("Input = %q, want ab", filter.Input)
	}

	if !filter.HandleBackspace() {
		t.Fatal("backspace on non-empty input should report a change")
	}
	if filter.Input != "a" {
		t.Fatalf("Input = %q, want a", filter.Input)
	}

	filter.Clear()
	if filter.Input != "" || filter.Active {
		t.Errorf("Clear left state: input=%q active=%v", filter.Input, filter.Active)
	}
	if filter.HandleBackspace() {
		t.Error("backspace on empty input should report no change")
	}
}

func TestFilterModelMatchWithEmptyQuery(t *testing.T) {
	filter := NewFilterModel()
	if !filter.Match("whatever").Matched {
		t.Error("empty filter must match everything")
	}
}

func TestFilterModelViewHiddenWhenInactive(t *testing.T) {
	filter := NewFilterModel()
	if view := filter.View(DefaultTheme, 80); view != "" {
		t.Errorf("inactive empty filter should render nothing, got %q", view)
	}
}
