// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package devbus

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeLineEnvelope(t *testing.T) {
	line := `{"type":"__FRONTMCP_DEV_EVENT__","event":{"id":"evt-1","timestamp":1700000000123,"category":"session","type":"session:connect","scopeId":"app","data":{"sessionId":"sess-1","transportType":"http","clientInfo":{"name":"inspector","version":"1.2.0"}}}}`

	ev, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if ev == nil {
		t.Fatal("DecodeLine returned nil event for marker envelope")
	}
	if ev.ID != "evt-1" || ev.Kind != "session:connect" || ev.Category != "session" {
		t.Errorf("unexpected identity: id=%q kind=%q category=%q", ev.ID, ev.Kind, ev.Category)
	}
	if ev.ScopeID != "app" {
		t.Errorf("ScopeID = %q, want %q", ev.ScopeID, "app")
	}
	if ev.Session == nil {
		t.Fatal("Session payload not decoded")
	}
	if ev.Session.SessionID != "sess-1" || ev.Session.TransportType != "http" {
		t.Errorf("session payload = %+v", ev.Session)
	}
	if ev.Session.ClientInfo == nil || ev.Session.ClientInfo.Name != "inspector" {
		t.Errorf("clientInfo = %+v", ev.Session.ClientInfo)
	}
}

func TestDecodeLineFlatLog(t *testing.T) {
	line := Marker + `{"id":"log-1","timestamp":1700000000500,"category":"log","type":"log:entry","prefix":"[flow]","scopeId":"app","sessionId":"sess-1","message":"tool resolved","level":30,"levelName":"info"}`

	ev, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if ev == nil {
		t.Fatal("DecodeLine returned nil event for flat log line")
	}
	if ev.Category != "log" || ev.SessionID != "sess-1" {
		t.Errorf("category=%q sessionId=%q", ev.Category, ev.SessionID)
	}
	if ev.Log == nil {
		t.Fatal("Log payload not built")
	}
	if ev.Log.Message != "tool resolved" || ev.Log.LevelName != "info" || ev.Log.Level != 30 {
		t.Errorf("log payload = %+v", ev.Log)
	}
	if ev.Log.Prefix != "[flow]" {
		t.Errorf("prefix = %q, want fallback to top-level", ev.Log.Prefix)
	}
}

func TestDecodeLineFlatLogDataFieldsWin(t *testing.T) {
	// When both the data object and the top-level fields carry log
	// details, top-level message and level override the data object;
	// the top-level prefix is only a fallback.
	line := Marker + `{"id":"log-2","timestamp":1,"category":"log","type":"log:entry","prefix":"outer","data":{"message":"inner","levelName":"debug","prefix":"inner-prefix"},"message":"outer","levelName":"warn"}`

	ev, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if ev.Log.Message != "outer" || ev.Log.LevelName != "warn" {
		t.Errorf("log payload = %+v, want top-level fields to win", ev.Log)
	}
	if ev.Log.Prefix != "inner-prefix" {
		t.Errorf("prefix = %q, want %q", ev.Log.Prefix, "inner-prefix")
	}
}

func TestDecodeLineFlatTrace(t *testing.T) {
	// The flat schema carries state events under category "trace"; the
	// typed payload still decodes by kind.
	line := Marker + `{"id":"t-1","timestamp":7,"category":"trace","type":"session:connect","sessionId":"sess-2","data":{"sessionId":"sess-2","transportType":"stdio"}}`

	ev, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if ev == nil {
		t.Fatal("flat trace event not recognized")
	}
	if ev.Category != "trace" || ev.Kind != "session:connect" {
		t.Errorf("category=%q kind=%q", ev.Category, ev.Kind)
	}
	if ev.Session == nil || ev.Session.TransportType != "stdio" {
		t.Errorf("session payload = %+v", ev.Session)
	}
}

func TestDecodeLineBareLegacy(t *testing.T) {
	line := Marker + `{"id":"evt-9","timestamp":42,"category":"registry","type":"registry:updated","scopeId":"app","data":{"registryType":"tool","entryNames":["echo","sum"],"changeKind":"added"}}`

	ev, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if ev == nil {
		t.Fatal("bare legacy event not recognized")
	}
	if ev.Registry == nil {
		t.Fatal("Registry payload not decoded")
	}
	want := []string{"echo", "sum"}
	if diff := cmp.Diff(want, ev.Registry.EntryNames); diff != "" {
		t.Errorf("entryNames mismatch (-want +got):\n%s", diff)
	}
	if ev.Registry.ChangeKind != "added" {
		t.Errorf("changeKind = %q", ev.Registry.ChangeKind)
	}
}

func TestDecodeLineMarkerMalformed(t *testing.T) {
	// A line carrying the marker must decode or fail loudly; it is
	// never silently skipped.
	_, err := DecodeLine(`not json but mentions __FRONTMCP_DEV_EVENT__ anyway`)
	if err == nil {
		t.Fatal("expected DecodeError for malformed marker line")
	}
	if _, ok := err.(*DecodeError); !ok {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
}

func TestDecodeLineMarkerEnvelopeBadEvent(t *testing.T) {
	_, err := DecodeLine(`{"type":"__FRONTMCP_DEV_EVENT__","event":"not an object"}`)
	if err == nil {
		t.Fatal("expected DecodeError for envelope with non-object event")
	}
}

func TestDecodeLineNotAnEvent(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"free text", "server listening on :3000"},
		{"empty", ""},
		{"plain json", `{"hello":"world"}`},
		{"json with unknown category", `{"id":"x","timestamp":1,"category":"mystery","type":"mystery:thing"}`},
		{"json missing type", `{"id":"x","timestamp":1,"category":"session"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := DecodeLine(tc.line)
			if err != nil {
				t.Fatalf("DecodeLine(%q): %v", tc.line, err)
			}
			if ev != nil {
				t.Errorf("DecodeLine(%q) = %+v, want nil", tc.line, ev)
			}
		})
	}
}

func TestDecodeLineRequestComplete(t *testing.T) {
	line := `{"type":"__FRONTMCP_DEV_EVENT__","event":{"id":"r-1","timestamp":9,"category":"request","type":"request:complete","scopeId":"app","sessionId":"sess-1","requestId":"req-7","data":{"flowName":"tool-call","entryName":"echo","durationMs":12}}}`

	ev, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if ev.RequestID != "req-7" {
		t.Errorf("RequestID = %q", ev.RequestID)
	}
	if ev.Request == nil {
		t.Fatal("Request payload not decoded")
	}
	if ev.Request.FlowName != "tool-call" || ev.Request.EntryName != "echo" {
		t.Errorf("request payload = %+v", ev.Request)
	}
	if ev.Request.DurationMS == nil || *ev.Request.DurationMS != 12 {
		t.Errorf("durationMs = %v, want 12", ev.Request.DurationMS)
	}
}

func TestDecodeLineServerReady(t *testing.T) {
	line := Marker + `{"id":"s-1","timestamp":5,"category":"server","type":"server:ready","data":{"serverInfo":{"name":"frontmcp-dev","version":"0.9.1"},"address":"localhost:3000"}}`

	ev, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if ev.Server == nil {
		t.Fatal("Server payload not decoded")
	}
	if ev.Server.ServerInfo == nil || ev.Server.ServerInfo.Name != "frontmcp-dev" {
		t.Errorf("serverInfo = %+v", ev.Server.ServerInfo)
	}
	if ev.Server.Address != "localhost:3000" {
		t.Errorf("address = %q", ev.Server.Address)
	}
}

func TestDecodeLineUnknownKindKeepsRaw(t *testing.T) {
	line := Marker + `{"id":"u-1","timestamp":1,"category":"session","type":"session:telepathy","data":{"weird":true}}`

	ev, err := DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if ev == nil {
		t.Fatal("known category with unknown kind must still decode")
	}
	// session: prefix still attempts the session payload shape.
	if ev.Kind != "session:telepathy" {
		t.Errorf("Kind = %q", ev.Kind)
	}
	if len(ev.Data) == 0 {
		t.Error("raw Data not preserved")
	}
}

func TestDecodeSocketEvent(t *testing.T) {
	raw := json.RawMessage(`{"id":"e-1","timestamp":3,"category":"trace","type":"trace:span","prefix":"[core]","scopeId":"app","data":{"span":"resolve"}}`)

	ev, err := DecodeSocketEvent(raw)
	if err != nil {
		t.Fatalf("DecodeSocketEvent: %v", err)
	}
	if ev == nil {
		t.Fatal("socket event payload decoded to nil")
	}
	if ev.Category != "trace" || ev.Prefix != "[core]" {
		t.Errorf("category=%q prefix=%q", ev.Category, ev.Prefix)
	}
}

func TestDecodeSocketEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeSocketEvent(json.RawMessage(`"just a string"`)); err == nil {
		t.Fatal("expected error for non-object socket event payload")
	}
}

func TestCommandMessageEncoding(t *testing.T) {
	msg := CommandMessage{
		Type:    MessageCommand,
		ID:      "cmd-3",
		Command: CallToolCommand("app", "echo", json.RawMessage(`{"text":"hi"}`)),
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"type":"command","id":"cmd-3","command":{"name":"callTool","scopeId":"app","toolName":"echo","arguments":{"text":"hi"}}}`
	if string(encoded) != want {
		t.Errorf("encoded = %s\nwant    = %s", encoded, want)
	}
}

func TestCommandOmitsEmptyFields(t *testing.T) {
	encoded, err := json.Marshal(PingCommand())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(encoded) != `{"name":"ping"}` {
		t.Errorf("encoded = %s, want bare name", encoded)
	}
}

func TestStateMessageDecoding(t *testing.T) {
	line := `{"type":"state","id":"st-1","timestamp":100,"state":{"scopes":[{"id":"app","tools":[{"name":"echo","description":"echoes","owner":{"kind":"app","id":"app"}}],"resources":[],"prompts":[],"agents":[],"plugins":[],"adapters":[]}],"sessions":[{"scopeId":"app","sessionId":"sess-1","transportType":"http","connectedAt":90}],"server":{"name":"frontmcp-dev","version":"0.9.1","startedAt":10}}}`

	var msg StateMessage
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(msg.State.Scopes) != 1 || msg.State.Scopes[0].ID != "app" {
		t.Fatalf("scopes = %+v", msg.State.Scopes)
	}
	tool := msg.State.Scopes[0].Tools[0]
	if tool.Name != "echo" || tool.Owner == nil || tool.Owner.Kind != "app" {
		t.Errorf("tool = %+v", tool)
	}
	if msg.State.Server.Name != "frontmcp-dev" {
		t.Errorf("server = %+v", msg.State.Server)
	}
}
