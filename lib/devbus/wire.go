// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package devbus

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError reports a line that claimed to be an event (marker
// prefix or marker-bearing envelope) but failed to parse. Callers
// count these; they are never escalated.
type DecodeError struct {
	// Reason describes which parse stage rejected the line.
	Reason string
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("decoding event line: %s", err.Reason)
}

// wireEnvelope is the original IPC framing: the event object wrapped
// in a discriminator whose type field holds the marker string.
type wireEnvelope struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

// wireEvent is the shared shape of both event schemas. The legacy
// event and the flat log-transport event carry the same base fields;
// they differ only in the category vocabulary and in whether log
// fields appear at the top level.
type wireEvent struct {
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Category  string          `json:"category"`
	Type      string          `json:"type"`
	Prefix    string          `json:"prefix"`
	ScopeID   string          `json:"scopeId"`
	SessionID string          `json:"sessionId"`
	RequestID string          `json:"requestId"`
	Data      json.RawMessage `json:"data"`

	// Flat-schema log fields (category "log" puts these at the top
	// level rather than inside data).
	Message   string `json:"message"`
	Level     int    `json:"level"`
	LevelName string `json:"levelName"`
}

// legacyCategories is the category vocabulary of the original event
// schema. The flat schema replaced it with "trace"/"log".
var legacyCategories = map[string]bool{
	"session":  true,
	"request":  true,
	"registry": true,
	"server":   true,
	"config":   true,
}

// DecodeLine classifies one raw line and decodes it into a normalized
// event. Three outcomes:
//
//   - (event, nil): the line was an event in either wire schema.
//   - (nil, *DecodeError): the line claimed to be an event but failed
//     to parse. Count it; never escalate.
//   - (nil, nil): the line is not an event at all (ordinary process
//     output). The caller routes it to free-text logging.
//
// Both schemas are always attempted because old and new server builds
// may emit either indefinitely; there is no version negotiation.
func DecodeLine(line string) (*Event, error) {
	// Stderr/file framing: marker prefix followed by the event JSON.
	if body, ok := strings.CutPrefix(line, Marker); ok {
		return decodeTagged([]byte(body))
	}

	// IPC framing: a JSON envelope whose type field holds the marker.
	// Only worth attempting when the marker appears somewhere in the
	// body; anything else is ordinary output.
	if strings.HasPrefix(line, "{") && strings.Contains(line, Marker) {
		var envelope wireEnvelope
		if err := json.Unmarshal([]byte(line), &envelope); err != nil {
			return nil, &DecodeError{Reason: "envelope parse: " + err.Error()}
		}
		if envelope.Type != Marker || len(envelope.Event) == 0 {
			return nil, &DecodeError{Reason: "envelope carries marker but wrong shape"}
		}
		return decodeInner(envelope.Event)
	}

	// Not an event line.
	return nil, nil
}

// decodeTagged decodes the JSON body of a marker-prefixed line.
// First structural match wins: the legacy envelope, then the flat
// category-discriminated schema, then the legacy event directly.
func decodeTagged(body []byte) (*Event, error) {
	var envelope wireEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{Reason: "not a JSON object: " + err.Error()}
	}
	if envelope.Type == Marker && len(envelope.Event) > 0 {
		return decodeInner(envelope.Event)
	}

	var wire wireEvent
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &DecodeError{Reason: "event parse: " + err.Error()}
	}

	// Flat schema: category discriminates trace events from forwarded
	// log records.
	if (wire.Category == "trace" || wire.Category == "log") && wire.Type != "" {
		return normalize(wire), nil
	}

	// Legacy event emitted bare, without its envelope.
	if legacyCategories[wire.Category] && wire.Type != "" {
		return normalize(wire), nil
	}

	return nil, &DecodeError{Reason: fmt.Sprintf("no schema matched (category %q, type %q)", wire.Category, wire.Type)}
}

// decodeInner decodes the event object inside an envelope.
func decodeInner(raw json.RawMessage) (*Event, error) {
	var wire wireEvent
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &DecodeError{Reason: "enveloped event parse: " + err.Error()}
	}
	if wire.Type == "" {
		return nil, &DecodeError{Reason: "enveloped event has no type"}
	}
	return normalize(wire), nil
}

// DecodeSocketEvent decodes the event object carried by a socket
// "event" message. Socket framing never uses the marker; the inner
// object is the same shape as both line schemas.
func DecodeSocketEvent(raw json.RawMessage) (*Event, error) {
	return decodeInner(raw)
}

// normalize converts a decoded wire event into the tagged-union form.
// Payload decoding is schema-tolerant: a missing optional field never
// fails the record, and an unrecognized kind keeps its raw payload
// with no typed variant.
func normalize(wire wireEvent) *Event {
	event := &Event{
		ID:        wire.ID,
		Timestamp: wire.Timestamp,
		Kind:      wire.Type,
		Category:  wire.Category,
		Prefix:    wire.Prefix,
		ScopeID:   wire.ScopeID,
		SessionID: wire.SessionID,
		RequestID: wire.RequestID,
		Data:      wire.Data,
	}

	if wire.Category == "log" {
		logData := &LogData{}
		// Some builds put log fields inside data, others at the top
		// level. Decode data first, then let top-level fields win.
		if len(wire.Data) > 0 {
			_ = json.Unmarshal(wire.Data, logData)
		}
		if wire.Message != "" {
			logData.Message = wire.Message
		}
		if wire.LevelName != "" {
			logData.LevelName = wire.LevelName
		}
		if wire.Level != 0 {
			logData.Level = wire.Level
		}
		if logData.Prefix == "" {
			logData.Prefix = wire.Prefix
		}
		event.Log = logData
		return event
	}

	// Payload unmarshal errors are deliberately ignored: the base
	// fields already decoded, and a malformed payload degrades to an
	// empty typed payload rather than dropping the whole record.
	switch {
	case strings.HasPrefix(wire.Type, "session:"):
		event.Session = &SessionData{}
		_ = json.Unmarshal(wire.Data, event.Session)
	case strings.HasPrefix(wire.Type, "request:"), strings.HasPrefix(wire.Type, "tool:"):
		event.Request = &RequestData{}
		_ = json.Unmarshal(wire.Data, event.Request)
	case strings.HasPrefix(wire.Type, "registry:"):
		event.Registry = &RegistryData{}
		_ = json.Unmarshal(wire.Data, event.Registry)
	case strings.HasPrefix(wire.Type, "server:"):
		event.Server = &ServerData{}
		_ = json.Unmarshal(wire.Data, event.Server)
	case strings.HasPrefix(wire.Type, "config:"):
		event.Config = &ConfigData{}
		_ = json.Unmarshal(wire.Data, event.Config)
	}

	return event
}
