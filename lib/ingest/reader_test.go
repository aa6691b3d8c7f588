// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"log/slog"
	"testing"

	"github.com/frontmcp/devdash/lib/devbus"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func feedLines(lines ...string) <-chan string {
	ch := make(chan string, len(lines))
	for _, line := range lines {
		ch <- line
	}
	close(ch)
	return ch
}

func TestRunPipeReaderClassifiesLines(t *testing.T) {
	channels := NewChannels()
	counters := &Counters{}
	var diags []Diagnostic
	sink := SinkFunc(func(d Diagnostic) { diags = append(diags, d) })

	lines := feedLines(
		devbus.Marker+`{"id":"e1","timestamp":1,"category":"session","type":"session:connect","data":{}}`,
		devbus.Marker+`this is not json`,
		"ordinary stderr output",
	)
	RunPipeReader(lines, channels, counters, sink)

	if got := counters.LinesRead.Load(); got != 3 {
		t.Errorf("lines read = %d, want 3", got)
	}
	if got := counters.ParseFailures.Load(); got != 1 {
		t.Errorf("parse failures = %d, want exactly 1", got)
	}
	if len(channels.Events) != 1 {
		t.Errorf("events forwarded = %d, want 1", len(channels.Events))
	}
	if len(channels.Logs) != 1 {
		t.Errorf("free-text lines forwarded = %d, want 1", len(channels.Logs))
	}
	if len(diags) != 1 || diags[0].Kind != "decode-failure" {
		t.Errorf("diagnostics = %+v", diags)
	}
}

func TestRunPipeReaderNoFoldOnFailure(t *testing.T) {
	channels := NewChannels()
	counters := &Counters{}
	lines := feedLines(devbus.Marker + `{"broken`)
	RunPipeReader(lines, channels, counters, SinkFunc(func(Diagnostic) {}))

	if len(channels.Events) != 0 {
		t.Errorf("a failed decode must not forward an event, got %d", len(channels.Events))
	}
}

func TestRunPipeReaderCountsDrops(t *testing.T) {
	channels := NewChannels()
	counters := &Counters{}
	eventLine := devbus.Marker + `{"id":"e1","timestamp":1,"category":"session","type":"session:connect","data":{}}`

	var lines []string
	for i := 0; i < EventChannelCapacity+5; i++ {
		lines = append(lines, eventLine)
	}
	RunPipeReader(feedLines(lines...), channels, counters, SinkFunc(func(Diagnostic) {}))

	if got := counters.Dropped.Load(); got != 5 {
		t.Errorf("dropped = %d, want 5", got)
	}
	if len(channels.Events) != EventChannelCapacity {
		t.Errorf("events buffered = %d", len(channels.Events))
	}
}

func TestRunSocketReaderRoutesByType(t *testing.T) {
	channels := NewChannels()
	counters := &Counters{}
	lines := feedLines(
		`{"type":"welcome","serverId":"srv-1","serverVersion":"0.9.1","protocolVersion":"1"}`,
		`{"type":"state","id":"st1","timestamp":1,"state":{"scopes":[],"sessions":[],"server":{"name":"frontmcp-dev"}}}`,
		`{"type":"event","id":"m1","timestamp":2,"event":{"id":"e1","timestamp":2,"category":"trace","type":"trace:span","data":{}}}`,
		`{"type":"response","commandId":"cmd-1","success":true}`,
		`{"type":"mystery"}`,
	)
	RunSocketReader(lines, channels, counters, SinkFunc(func(Diagnostic) {}), discardLogger())

	if len(channels.Snapshots) != 1 {
		t.Fatalf("snapshots = %d", len(channels.Snapshots))
	}
	if snap := <-channels.Snapshots; snap.Server.Name != "frontmcp-dev" {
		t.Errorf("snapshot server = %+v", snap.Server)
	}
	if len(channels.Events) != 1 {
		t.Errorf("events = %d", len(channels.Events))
	}
	if len(channels.Responses) != 1 {
		t.Errorf("responses = %d", len(channels.Responses))
	}
	if got := counters.ParseFailures.Load(); got != 0 {
		t.Errorf("parse failures = %d", got)
	}
}

func TestRunSocketReaderSnapshotLatestWins(t *testing.T) {
	channels := NewChannels()
	lines := feedLines(
		`{"type":"state","id":"st1","timestamp":1,"state":{"server":{"name":"old"}}}`,
		`{"type":"state","id":"st2","timestamp":2,"state":{"server":{"name":"new"}}}`,
	)
	RunSocketReader(lines, channels, &Counters{}, SinkFunc(func(Diagnostic) {}), discardLogger())

	if len(channels.Snapshots) != 1 {
		t.Fatalf("snapshots buffered = %d, want only the latest", len(channels.Snapshots))
	}
	if snap := <-channels.Snapshots; snap.Server.Name != "new" {
		t.Errorf("snapshot server = %q, want the later snapshot", snap.Server.Name)
	}
}

func TestRunSocketReaderGarbageFrame(t *testing.T) {
	channels := NewChannels()
	counters := &Counters{}
	RunSocketReader(feedLines("{{{"), channels, counters, SinkFunc(func(Diagnostic) {}), discardLogger())

	if got := counters.ParseFailures.Load(); got != 1 {
		t.Errorf("parse failures = %d", got)
	}
}

func TestConnectedFlagTracksReaderLifetime(t *testing.T) {
	counters := &Counters{}
	RunPipeReader(feedLines(), NewChannels(), counters, SinkFunc(func(Diagnostic) {}))
	if counters.Connected.Load() {
		t.Error("connected flag still set after the stream ended")
	}
}
