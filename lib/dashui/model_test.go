// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/frontmcp/devdash/lib/devbus"
	"github.com/frontmcp/devdash/lib/ingest"
	"github.com/frontmcp/devdash/lib/state"
)

func newTestModel(t *testing.T) (Model, *state.Store, *ingest.Channels) {
	t.Helper()
	store := state.NewStore(slog.New(slog.DiscardHandler))
	channels := ingest.NewChannels()
	counters := &ingest.Counters{}
	model := NewModel(store, channels, counters, Options{
		Transport:     "pipe",
		TransportPath: "/tmp/events.log",
		Theme:         "dark",
	})
	model.width = 120
	model.height = 40
	return model, store, channels
}

func keyPress(keys string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
}

func update(t *testing.T, model Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := model.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next
}

func sessionConnectedEvent(id string) *devbus.Event {
	return &devbus.Event{
		Kind:      "session:connect",
		Category:  "trace",
		SessionID: id,
		Timestamp: 1000,
		Session: &devbus.SessionData{
			SessionID:     id,
			TransportType: "http",
		},
	}
}

func TestFrameTickDrainsChannels(t *testing.T) {
	model, store, channels := newTestModel(t)

	channels.Events <- sessionConnectedEvent("s1")
	channels.Events <- sessionConnectedEvent("s2")
	channels.Logs <- "plain server output"
	channels.Metrics <- ingest.MetricsSample{CPUPercent: 12.5, MemoryUsed: 1 << 30, MemoryTotal: 4 << 30}

	model = update(t, model, frameTickMsg{})

	if len(store.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(store.Sessions))
	}
	if store.GlobalLogs.Len() != 1 {
		t.Fatalf("global logs = %d, want 1", store.GlobalLogs.Len())
	}
	if store.Metrics.CPUHistory.Len() != 1 {
		t.Fatalf("cpu samples = %d, want 1", store.Metrics.CPUHistory.Len())
	}
	_ = model
}

func TestFrameTickAppliesSnapshots(t *testing.T) {
	model, store, channels := newTestModel(t)

	channels.Snapshots <- devbus.StateSnapshot{
		Scopes: []devbus.ScopeState{{
			ID:    "main",
			Tools: []devbus.SnapshotEntry{{Name: "echo"}},
		}},
		Server: devbus.ServerState{Name: "dev", Version: "1.0.0"},
	}

	update(t, model, frameTickMsg{})

	if len(store.Scopes) != 1 || len(store.Scopes[0].Tools) != 1 {
		t.Fatalf("snapshot not folded: %+v", store.Scopes)
	}
	if !store.Server.Ready {
		t.Error("snapshot should mark the server ready")
	}
}

func TestNumberKeysSwitchTabs(t *testing.T) {
	model, _, _ := newTestModel(t)

	tabs := []struct {
		keys string
		want Tab
	}{
		{"2", TabSessions},
		{"3", TabCapabilities},
		{"4", TabGraph},
		{"5", TabLogs},
		{"6", TabMetrics},
		{"1", TabOverview},
	}
	for _, step := range tabs {
		model = update(t, model, keyPress(step.keys))
		if model.activeTab != step.want {
			t.Errorf("after %q: tab = %v, want %v", step.keys, model.activeTab, step.want)
		}
	}
}

func TestQuitKeyReturnsQuitCommand(t *testing.T) {
	model, _, _ := newTestModel(t)
	_, cmd := model.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("quit command produced nil message")
	}
}

func TestGraphExpandAndCollapse(t *testing.T) {
	model, store, _ := newTestModel(t)
	store.ApplyEvent(&devbus.Event{
		Kind:     "registry:added",
		Category: "trace",
		ScopeID:  "main",
		Registry: &devbus.RegistryData{
			RegistryType: "tool",
			Entries:      []devbus.EntryInfo{{Name: "echo"}},
		},
	})
	model.activeTab = TabGraph

	// Collapsed: server + one scope row.
	nodes := state.BuildGraph(store, model.expanded)
	if len(nodes) != 2 {
		t.Fatalf("collapsed graph rows = %d, want 2", len(nodes))
	}

	// Expand the scope under the cursor.
	model.graphCursor = 1
	model = update(t, model, keyPress("l"))
	nodes = state.BuildGraph(store, model.expanded)
	if len(nodes) <= 2 {
		t.Fatalf("expand did not grow the graph: %d rows", len(nodes))
	}

	// Collapse it again.
	model = update(t, model, keyPress("h"))
	nodes = state.BuildGraph(store, model.expanded)
	if len(nodes) != 2 {
		t.Fatalf("collapse did not restore the graph: %d rows", len(nodes))
	}
}

func TestLogsClearAndFollow(t *testing.T) {
	model, store, channels := newTestModel(t)
	model.activeTab = TabLogs

	for i := 0; i < 5; i++ {
		channels.Logs <- "line"
	}
	model = update(t, model, frameTickMsg{})
	if store.GlobalLogs.Len() != 5 {
		t.Fatalf("logs = %d, want 5", store.GlobalLogs.Len())
	}

	// Follow keeps the cursor on the newest row.
	if model.logCursor != 4 {
		t.Errorf("follow cursor = %d, want 4", model.logCursor)
	}

	// Manual movement disables follow.
	model = update(t, model, keyPress("k"))
	if model.followLogs {
		t.Error("moving the cursor should disable follow")
	}

	model = update(t, model, keyPress("c"))
	if store.GlobalLogs.Len() != 0 {
		t.Errorf("clear left %d entries", store.GlobalLogs.Len())
	}
}

func TestFilterNarrowsCapabilities(t *testing.T) {
	model, store, _ := newTestModel(t)
	store.ApplyEvent(&devbus.Event{
		Kind:     "registry:added",
		Category: "trace",
		ScopeID:  "main",
		Registry: &devbus.RegistryData{
			RegistryType: "tool",
			Entries: []devbus.EntryInfo{
				{Name: "weather-forecast"},
				{Name: "send-email"},
			},
		},
	})
	model.activeTab = TabCapabilities

	if rows := model.capabilityRows(); len(rows) != 2 {
		t.Fatalf("unfiltered rows = %d, want 2", len(rows))
	}

	model = update(t, model, keyPress("/"))
	if !model.filter.Active {
		t.Fatal("/ should activate the filter")
	}
	for _, r := range "weather" {
		model = update(t, model, keyPress(string(r)))
	}

	rows := model.capabilityRows()
	if len(rows) != 1 || rows[0].entry.Name != "weather-forecast" {
		t.Fatalf("filtered rows = %+v, want only weather-forecast", rows)
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEscape})
	if model.filter.Input != "" {
		t.Error("escape should clear the filter")
	}
}

func TestPaletteRefusedWithoutCommander(t *testing.T) {
	model, _, _ := newTestModel(t)

	model = update(t, model, keyPress(":"))
	if !model.palette.Active {
		t.Fatal(": should open the palette")
	}
	for _, r := range "ping" {
		model = update(t, model, keyPress(string(r)))
	}
	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.palette.Active {
		t.Error("enter should close the palette")
	}
}

type recordingCommander struct {
	commands []devbus.Command
}

func (rc *recordingCommander) SendCommand(command devbus.Command) (string, error) {
	rc.commands = append(rc.commands, command)
	return "cmd-1", nil
}

func TestPaletteSendsCommand(t *testing.T) {
	model, _, _ := newTestModel(t)
	commander := &recordingCommander{}
	model.commander = commander

	model = update(t, model, keyPress(":"))
	for _, r := range `call main echo {"a":1}` {
		if r == ' ' {
			model = update(t, model, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		model = update(t, model, keyPress(string(r)))
	}
	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	if len(commander.commands) != 1 {
		t.Fatalf("sent %d commands, want 1", len(commander.commands))
	}
	sent := commander.commands[0]
	if sent.Name != "callTool" || sent.ScopeID != "main" || sent.ToolName != "echo" {
		t.Fatalf("unexpected command: %+v", sent)
	}
	var args map[string]int
	if err := json.Unmarshal(sent.Arguments, &args); err != nil {
		t.Fatalf("arguments are not valid JSON: %v", err)
	}
	if args["a"] != 1 {
		t.Errorf("arguments = %v, want a=1", args)
	}
}

func TestPaletteKeepsInputOnParseError(t *testing.T) {
	model, _, _ := newTestModel(t)
	model.commander = &recordingCommander{}

	model = update(t, model, keyPress(":"))
	for _, r := range "bogus" {
		model = update(t, model, keyPress(string(r)))
	}
	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	if !model.palette.Active {
		t.Fatal("palette should stay open on a parse error")
	}
	if model.palette.Error == "" {
		t.Error("expected an inline error message")
	}
	if model.palette.Input != "bogus" {
		t.Errorf("input = %q, want bogus preserved", model.palette.Input)
	}
}

func TestViewRendersAllTabs(t *testing.T) {
	model, store, _ := newTestModel(t)
	model = update(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})

	store.ApplyEvent(sessionConnectedEvent("s1"))
	store.ApplyEvent(&devbus.Event{
		Kind:     "registry:added",
		Category: "trace",
		ScopeID:  "main",
		Registry: &devbus.RegistryData{
			RegistryType: "tool",
			Entries:      []devbus.EntryInfo{{Name: "echo", Description: "Echoes **input**."}},
		},
	})
	store.AddMetricsSample(42.0, 1<<30, 4<<30)

	for tab := TabOverview; tab <= TabMetrics; tab++ {
		model.activeTab = tab
		view := model.View()
		if view == "" {
			t.Errorf("tab %v rendered empty view", tab)
		}
		if !strings.Contains(view, tab.String()) {
			t.Errorf("tab %v view missing its tab header", tab)
		}
	}
}

func TestHelpOverlayTogglesAndDismisses(t *testing.T) {
	model, _, _ := newTestModel(t)
	model = update(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})

	model = update(t, model, keyPress("?"))
	if !model.helpVisible {
		t.Fatal("? should show the help overlay")
	}
	if view := model.View(); !strings.Contains(view, "Key bindings") {
		t.Error("help overlay missing from view")
	}

	model = update(t, model, keyPress("x"))
	if model.helpVisible {
		t.Error("any key should dismiss the help overlay")
	}
}

func TestStatusLogFadeSequence(t *testing.T) {
	model, _, _ := newTestModel(t)

	model = update(t, model, logRecordMsg{Summary: "first", Level: slog.LevelWarn})
	model = update(t, model, logRecordMsg{Summary: "second", Level: slog.LevelError})

	// The fade armed for the first record must not clear the second.
	model = update(t, model, logRecordFadeMsg{sequence: 1})
	if model.statusLog == nil || model.statusLog.Summary != "second" {
		t.Fatal("stale fade cleared a newer status record")
	}

	model = update(t, model, logRecordFadeMsg{sequence: 2})
	if model.statusLog != nil {
		t.Error("matching fade should clear the status record")
	}
}

func TestMouseWheelMovesCursorAndClickSwitchesTab(t *testing.T) {
	model, store, _ := newTestModel(t)
	for i := 0; i < 10; i++ {
		store.ApplyEvent(sessionConnectedEvent(string(rune('a' + i))))
	}
	model.activeTab = TabSessions

	model = update(t, model, tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	if model.sessionCursor != 3 {
		t.Errorf("wheel down cursor = %d, want 3", model.sessionCursor)
	}
	model = update(t, model, tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	if model.sessionCursor != 0 {
		t.Errorf("wheel up cursor = %d, want 0", model.sessionCursor)
	}

	click := tea.MouseMsg{
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionPress,
		X:      tabHeaderCellWidth*4 + 2,
		Y:      0,
	}
	model = update(t, model, click)
	if model.activeTab != TabLogs {
		t.Errorf("click on fifth header cell switched to %v, want Logs", model.activeTab)
	}
}
