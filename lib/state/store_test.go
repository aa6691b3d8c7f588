// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/frontmcp/devdash/lib/devbus"
)

func newTestStore() *Store {
	return NewStore(slog.New(slog.DiscardHandler))
}

func registryEvent(scopeID, registryType, changeKind string, names ...string) *devbus.Event {
	return &devbus.Event{
		ID:       "evt",
		Kind:     "registry:" + changeKind,
		Category: "registry",
		ScopeID:  scopeID,
		Registry: &devbus.RegistryData{
			RegistryType: registryType,
			ChangeKind:   changeKind,
			EntryNames:   names,
		},
	}
}

func entryNames(entries []RegistryEntry) []string {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	return names
}

func TestRegistryAddedIsIdempotent(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(registryEvent("app", "tool", "added", "a", "b"))
	store.ApplyEvent(registryEvent("app", "tool", "added", "a", "b"))

	tools := store.scope("app").Tools
	if len(tools) != 2 {
		t.Fatalf("tool count = %d, want 2 (duplicate adds must be no-ops)", len(tools))
	}
	if diff := cmp.Diff([]string{"a", "b"}, entryNames(tools)); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRemovedSubtractsByName(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(registryEvent("app", "tool", "added", "a", "b", "c"))
	store.ApplyEvent(registryEvent("app", "tool", "removed", "b", "missing"))

	if diff := cmp.Diff([]string{"a", "c"}, entryNames(store.scope("app").Tools)); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryResetReplacesWholeKind(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(registryEvent("app", "tool", "added", "old-1", "old-2"))
	store.ApplyEvent(registryEvent("app", "tool", "reset", "new-1"))

	if diff := cmp.Diff([]string{"new-1"}, entryNames(store.scope("app").Tools)); diff != "" {
		t.Errorf("post-reset tools (-want +got):\n%s", diff)
	}
}

func TestRegistryResetWithRichEntriesKeepsDetail(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:     "registry:reset",
		Category: "registry",
		ScopeID:  "app",
		Registry: &devbus.RegistryData{
			RegistryType: "tool",
			ChangeKind:   "reset",
			Entries: []devbus.EntryInfo{
				{Name: "echo", Description: "echoes input", Owner: &devbus.Owner{Kind: "app", ID: "app"}},
			},
		},
	})

	tools := store.scope("app").Tools
	if len(tools) != 1 || tools[0].Description != "echoes input" {
		t.Fatalf("tools = %+v", tools)
	}
	if tools[0].Owner == nil || tools[0].Owner.ID != "app" {
		t.Errorf("owner = %+v", tools[0].Owner)
	}
}

func TestRegistryUpdatedIsLogOnly(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:     "registry:updated",
		Category: "registry",
		ScopeID:  "app",
		Registry: &devbus.RegistryData{
			RegistryType: "tool",
			ChangeKind:   "updated",
			Entries:      []devbus.EntryInfo{{Name: "echo", Description: "changed"}},
		},
	})

	if len(store.scope("app").Tools) != 0 {
		t.Errorf("updated must not create or mutate entries, got %+v", store.scope("app").Tools)
	}
}

func sessionEvent(kind, topLevelID string, data *devbus.SessionData) *devbus.Event {
	return &devbus.Event{
		Kind:      kind,
		Category:  "session",
		SessionID: topLevelID,
		Session:   data,
	}
}

func TestSessionDisconnectFlipsActiveOnly(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(sessionEvent("session:connect", "s1", &devbus.SessionData{TransportType: "http"}))
	if store.Overview.SessionCount != 1 || store.Overview.ActiveSessions != 1 {
		t.Fatalf("after connect: %+v", store.Overview)
	}

	store.ApplyEvent(sessionEvent("session:disconnect", "s1", &devbus.SessionData{Reason: "client closed"}))

	session, ok := store.sessionIndex["s1"]
	if !ok {
		t.Fatal("disconnect must never delete the session")
	}
	if session.Active {
		t.Error("session still active after disconnect")
	}
	if session.Reason != "client closed" {
		t.Errorf("reason = %q", session.Reason)
	}
	if store.Overview.SessionCount != 1 {
		t.Errorf("session count changed by disconnect: %d", store.Overview.SessionCount)
	}
	if store.Overview.ActiveSessions != 0 {
		t.Errorf("active sessions = %d, want 0", store.Overview.ActiveSessions)
	}
}

func TestTraceCategoryEventsFoldIntoCollections(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:      "session:connect",
		Category:  "trace",
		SessionID: "s1",
		Timestamp: 42,
		Session:   &devbus.SessionData{TransportType: "http"},
	})

	session, ok := store.sessionIndex["s1"]
	if !ok {
		t.Fatal("trace session:connect did not create the session")
	}
	if !session.Active {
		t.Error("trace session:connect did not mark the session active")
	}
	if session.ConnectedAt != 42 {
		t.Errorf("connected at = %d", session.ConnectedAt)
	}

	store.ApplyEvent(&devbus.Event{
		Kind:     "registry:added",
		Category: "trace",
		ScopeID:  "app",
		Registry: &devbus.RegistryData{RegistryType: "tool", ChangeKind: "added", EntryNames: []string{"echo"}},
	})
	if diff := cmp.Diff([]string{"echo"}, entryNames(store.scope("app").Tools)); diff != "" {
		t.Errorf("trace registry event did not fold (-want +got):\n%s", diff)
	}
	if store.GlobalLogs.Len() != 0 {
		t.Errorf("trace state events leaked into the log ring: %d entries", store.GlobalLogs.Len())
	}
}

func TestSessionKeyFallsBackToPayload(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(sessionEvent("session:connect", "", &devbus.SessionData{SessionID: "test-session"}))

	if _, ok := store.sessionIndex["test-session"]; !ok {
		t.Fatal("payload sessionId not used as fallback key")
	}
}

func TestSessionWithoutAnyIDGetsPlaceholder(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(sessionEvent("session:connect", "", nil))

	if _, ok := store.sessionIndex[UnknownSession]; !ok {
		t.Fatalf("sessions = %v, want placeholder key %q", store.Sessions, UnknownSession)
	}
}

func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestRequestLaterEntryNameWins(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:      "request:start",
		Category:  "request",
		RequestID: "req-1",
		Request:   &devbus.RequestData{FlowName: "tool-call", EntryName: "provisional"},
	})
	store.ApplyEvent(&devbus.Event{
		Kind:      "request:complete",
		Category:  "request",
		RequestID: "req-1",
		Request:   &devbus.RequestData{EntryName: "final", DurationMS: int64Ptr(7)},
	})

	request := store.requestIndex["req-1"]
	if request.EntryName != "final" {
		t.Errorf("entry name = %q, want the completion event's name", request.EntryName)
	}
	if !request.Done || request.IsError {
		t.Errorf("request = %+v", request)
	}
	if request.DurationMS != 7 {
		t.Errorf("duration = %d", request.DurationMS)
	}
}

func TestRequestCompleteKeepsStartNameWhenAbsent(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:      "request:start",
		Category:  "request",
		RequestID: "req-2",
		Request:   &devbus.RequestData{FlowName: "tool-call", EntryName: "echo"},
	})
	store.ApplyEvent(&devbus.Event{
		Kind:      "request:complete",
		Category:  "request",
		RequestID: "req-2",
		Request:   &devbus.RequestData{},
	})

	if name := store.requestIndex["req-2"].EntryName; name != "echo" {
		t.Errorf("entry name = %q, want the start event's name", name)
	}
}

func TestToolExecuteStartsRequestLifecycle(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:      "tool:execute",
		Category:  "trace",
		RequestID: "req-t",
		SessionID: "s1",
		Request:   &devbus.RequestData{EntryName: "echo"},
	})

	if got := len(store.Requests); got != 1 {
		t.Fatalf("tool:execute created %d requests, want 1", got)
	}
	if store.requestIndex["req-t"].Done {
		t.Error("request done before completion")
	}

	store.ApplyEvent(&devbus.Event{
		Kind:      "tool:complete",
		Category:  "trace",
		RequestID: "req-t",
		Request:   &devbus.RequestData{DurationMS: int64Ptr(12)},
	})

	request := store.requestIndex["req-t"]
	if !request.Done || request.IsError {
		t.Errorf("request = %+v", request)
	}
	if request.DurationMS != 12 {
		t.Errorf("duration = %d", request.DurationMS)
	}
	if store.Metrics.ToolCallsTotal != 1 || store.Metrics.ToolUsage["echo"] != 1 {
		t.Errorf("metrics = %+v", store.Metrics)
	}
}

func TestRequestCompleteForUnseenIDOnlyAffectsMetrics(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:      "request:error",
		Category:  "request",
		RequestID: "ghost",
		Request:   &devbus.RequestData{FlowName: "tool-call", EntryName: "echo", IsError: boolPtr(true)},
	})

	if len(store.Requests) != 0 {
		t.Errorf("unseen id inserted a record: %+v", store.Requests)
	}
	if store.Metrics.ToolCallsTotal != 1 || store.Metrics.FailuresTotal != 1 {
		t.Errorf("metrics = %+v", store.Metrics)
	}
}

func TestNonToolFlowsSkipMetrics(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:      "request:complete",
		Category:  "request",
		RequestID: "req-3",
		Request:   &devbus.RequestData{FlowName: "resource-read"},
	})

	if store.Metrics.ToolCallsTotal != 0 {
		t.Errorf("non-tool flow rolled into tool metrics: %+v", store.Metrics)
	}
}

func TestOverviewDistinctAppCount(t *testing.T) {
	store := newTestStore()
	owned := func(owner string, names ...string) *devbus.Event {
		entries := make([]devbus.EntryInfo, len(names))
		for i, name := range names {
			entries[i] = devbus.EntryInfo{Name: name, Owner: &devbus.Owner{Kind: "app", ID: owner}}
		}
		return &devbus.Event{
			Kind:     "registry:added",
			Category: "registry",
			ScopeID:  "app",
			Registry: &devbus.RegistryData{RegistryType: "tool", ChangeKind: "added", Entries: entries},
		}
	}
	store.ApplyEvent(owned("billing", "t1", "t2"))
	store.ApplyEvent(owned("search", "t3"))

	if store.Overview.RegisteredApps != 2 {
		t.Fatalf("registered apps = %d, want 2", store.Overview.RegisteredApps)
	}

	before := store.Overview
	store.recomputeOverview()
	if diff := cmp.Diff(before, store.Overview); diff != "" {
		t.Errorf("recompute without new events changed the overview (-before +after):\n%s", diff)
	}
}

func TestSnapshotReplacesLiveState(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(registryEvent("app", "tool", "added", "live-1"))
	store.ApplyEvent(registryEvent("app", "tool", "added", "live-2"))
	store.ApplyEvent(registryEvent("other", "tool", "added", "live-3"))

	store.ApplySnapshot(devbus.StateSnapshot{
		Scopes: []devbus.ScopeState{{
			ID:    "app",
			Tools: []devbus.SnapshotEntry{{Name: "snap-1"}, {Name: "snap-2"}},
		}},
		Sessions: []devbus.SessionState{{ScopeID: "app", SessionID: "s1", TransportType: "http"}},
		Server:   devbus.ServerState{Name: "frontmcp-dev", Version: "0.9.1"},
	})

	if len(store.Scopes) != 1 {
		t.Fatalf("scope count = %d, want snapshot to replace collections", len(store.Scopes))
	}
	if diff := cmp.Diff([]string{"snap-1", "snap-2"}, entryNames(store.scope("app").Tools)); diff != "" {
		t.Errorf("tools (-want +got):\n%s", diff)
	}
	if store.Overview.ToolCount != 2 {
		t.Errorf("overview tool count = %d", store.Overview.ToolCount)
	}
	if len(store.Sessions) != 1 || !store.Sessions[0].Active {
		t.Errorf("sessions = %+v", store.Sessions)
	}
	if store.Server.Name != "frontmcp-dev" || !store.Server.Ready {
		t.Errorf("server = %+v", store.Server)
	}
}

func TestSnapshotKeepsSessionLogHistory(t *testing.T) {
	store := newTestStore()
	store.AppendLog(LogEntry{Message: "early", SessionID: "s1"})

	store.ApplySnapshot(devbus.StateSnapshot{
		Sessions: []devbus.SessionState{{SessionID: "s1"}},
	})

	if got := store.sessionIndex["s1"].Logs.Len(); got != 1 {
		t.Errorf("session log entries = %d, want history carried across snapshot", got)
	}
}

func TestUnknownEventKindIsNotAFailure(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{Kind: "weather:sunny", Category: "weather"})

	if store.EventsTotal != 1 {
		t.Errorf("events total = %d", store.EventsTotal)
	}
	if len(store.Overview.RecentErrors) != 0 {
		t.Errorf("unknown kind recorded an error: %+v", store.Overview.RecentErrors)
	}
	if store.GlobalLogs.Len() != 1 {
		t.Errorf("unknown kind not surfaced as a log line: %d entries", store.GlobalLogs.Len())
	}
}

func TestServerReadyParsesTrailingPort(t *testing.T) {
	cases := []struct {
		address string
		port    int
	}{
		{"localhost:3000", 3000},
		{"127.0.0.1:8080", 8080},
		{"localhost", 0},
		{"localhost:", 0},
		{"localhost:abc", 0},
	}
	for _, tc := range cases {
		store := newTestStore()
		store.ApplyEvent(&devbus.Event{
			Kind:     "server:ready",
			Category: "server",
			Server:   &devbus.ServerData{Address: tc.address},
		})
		if store.Server.Port != tc.port {
			t.Errorf("parsePort(%q) stored %d, want %d", tc.address, store.Server.Port, tc.port)
		}
	}
}

func TestServerShutdownRecordsUptime(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Kind:     "server:ready",
		Category: "server",
		Server:   &devbus.ServerData{Address: "localhost:3000"},
	})
	store.ApplyEvent(&devbus.Event{
		Kind:     "server:shutdown",
		Category: "trace",
		Server:   &devbus.ServerData{UptimeMS: int64Ptr(90000)},
	})

	if store.Server.Ready {
		t.Error("server still ready after shutdown")
	}
	if store.Server.UptimeMS != 90000 {
		t.Errorf("uptime = %d, want 90000", store.Server.UptimeMS)
	}

	// A shutdown without uptime keeps the last known value.
	store.ApplyEvent(&devbus.Event{Kind: "server:shutdown", Category: "trace"})
	if store.Server.UptimeMS != 90000 {
		t.Errorf("uptime after payload-less shutdown = %d", store.Server.UptimeMS)
	}
}

func TestLogEventsFeedGlobalAndSessionRings(t *testing.T) {
	store := newTestStore()
	store.ApplyEvent(&devbus.Event{
		Category:  "log",
		SessionID: "s1",
		Log:       &devbus.LogData{Message: "hello", LevelName: "info"},
	})
	store.ApplyEvent(&devbus.Event{
		Category: "log",
		Log:      &devbus.LogData{Message: "no session", LevelName: "info"},
	})

	if store.GlobalLogs.Len() != 2 {
		t.Errorf("global log entries = %d", store.GlobalLogs.Len())
	}
	if store.sessionIndex["s1"].Logs.Len() != 1 {
		t.Errorf("session log entries = %d", store.sessionIndex["s1"].Logs.Len())
	}
}

func TestGlobalLogRingCapacity(t *testing.T) {
	store := newTestStore()
	for i := 0; i < GlobalLogCapacity+50; i++ {
		store.AppendLog(LogEntry{Timestamp: int64(i)})
	}
	if store.GlobalLogs.Len() != GlobalLogCapacity {
		t.Fatalf("global log length = %d, want cap %d", store.GlobalLogs.Len(), GlobalLogCapacity)
	}
	oldest := store.GlobalLogs.Items()[0]
	if oldest.Timestamp != 50 {
		t.Errorf("oldest entry = %d, want 50 (oldest evicted first)", oldest.Timestamp)
	}
}

func TestCommandResponseSummaries(t *testing.T) {
	store := newTestStore()
	store.ApplyResponse(devbus.ResponseMessage{CommandID: "cmd-1", Success: true})
	store.ApplyResponse(devbus.ResponseMessage{
		CommandID: "cmd-2",
		Error:     &devbus.ResponseError{Code: "TOOL_NOT_FOUND", Message: "no such tool"},
	})

	entries := store.GlobalLogs.Items()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d", len(entries))
	}
	if entries[0].LevelName != "info" {
		t.Errorf("success summary level = %q", entries[0].LevelName)
	}
	if entries[1].LevelName != "error" {
		t.Errorf("failure summary level = %q", entries[1].LevelName)
	}
}

func TestMetricsHistoriesAreBounded(t *testing.T) {
	store := newTestStore()
	for i := 0; i < MetricsHistoryCapacity*2; i++ {
		store.AddMetricsSample(float64(i), uint64(i), 1<<30)
	}
	if store.Metrics.CPUHistory.Len() != MetricsHistoryCapacity {
		t.Errorf("cpu history = %d", store.Metrics.CPUHistory.Len())
	}
	if store.Metrics.MemoryHistory.Len() != MetricsHistoryCapacity {
		t.Errorf("memory history = %d", store.Metrics.MemoryHistory.Len())
	}
	if first := store.Metrics.CPUHistory.Items()[0]; first != float64(MetricsHistoryCapacity) {
		t.Errorf("oldest cpu sample = %v", first)
	}
}

func TestRecentToolCallsNewestFirstBounded(t *testing.T) {
	store := newTestStore()
	for i := 0; i < RecentToolCallCapacity+3; i++ {
		store.ApplyEvent(&devbus.Event{
			Kind:      "request:complete",
			Category:  "request",
			RequestID: "ghost",
			Timestamp: int64(i),
			Request:   &devbus.RequestData{FlowName: "tool-call", EntryName: "echo"},
		})
	}

	recent := store.Overview.RecentToolCalls
	if len(recent) != RecentToolCallCapacity {
		t.Fatalf("recent outcomes = %d, want %d", len(recent), RecentToolCallCapacity)
	}
	if recent[0].Timestamp != int64(RecentToolCallCapacity+2) {
		t.Errorf("first outcome timestamp = %d, want newest first", recent[0].Timestamp)
	}
}
