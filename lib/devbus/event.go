// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package devbus

import "encoding/json"

// Marker is the magic prefix the dev server puts in front of event
// lines in file and stderr framing. Socket framing omits it (every
// socket line is already scoped to this protocol). The value is a
// protocol constant shared with the server; changing it breaks
// interop.
const Marker = "__FRONTMCP_DEV_EVENT__"

// Event is one normalized dev-server event, independent of which wire
// schema produced it. Kind is the event type string (for example
// "session:connect" or "registry:tool:added"); exactly one of the
// payload pointers is populated according to the Kind family. Events
// of an unrecognized kind carry their raw JSON payload in Data and no
// typed payload.
type Event struct {
	ID        string
	Timestamp int64 // Unix milliseconds.
	Kind      string
	Category  string // "trace", "log", or a legacy category name.
	Prefix    string // Logger prefix (flat schema only).
	ScopeID   string
	SessionID string
	RequestID string

	// Data is the raw payload object. Retained for every event so
	// unknown kinds stay inspectable.
	Data json.RawMessage

	Session  *SessionData
	Request  *RequestData
	Registry *RegistryData
	Server   *ServerData
	Config   *ConfigData
	Log      *LogData
}

// Owner identifies which app, scope, plugin, or adapter registered an
// entry. Used only to derive the ownership graph.
type Owner struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// ClientInfo is the connecting client's self-reported identity.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// AuthUser is the authenticated user attached to a session, when the
// session is not anonymous.
type AuthUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionData is the payload of session:* events.
type SessionData struct {
	SessionID     string      `json:"sessionId"`
	TransportType string      `json:"transportType"`
	ClientInfo    *ClientInfo `json:"clientInfo"`
	Reason        string      `json:"reason"`
	DurationMS    *int64      `json:"durationMs"`
	AuthMode      string      `json:"authMode"`
	AuthUser      *AuthUser   `json:"authUser"`
	IsAnonymous   *bool       `json:"isAnonymous"`
}

// RequestError is the structured error attached to request:error
// events.
type RequestError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// RequestData is the payload of request:* and tool:* events.
type RequestData struct {
	FlowName   string        `json:"flowName"`
	Method     string        `json:"method"`
	EntryName  string        `json:"entryName"`
	EntryOwner *Owner        `json:"entryOwner"`
	DurationMS *int64        `json:"durationMs"`
	IsError    *bool         `json:"isError"`
	Error      *RequestError `json:"error"`
}

// EntryInfo is the rich per-entry detail carried by newer registry
// events (the "entries" payload form). InputSchema arrives as a JSON
// string from some server builds and as an object from others, so it
// is kept raw.
type EntryInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Owner       *Owner          `json:"owner"`
	InputSchema json.RawMessage `json:"inputSchema"`
	URI         string          `json:"uri"`
	Version     string          `json:"version"`
}

// RegistryData is the payload of registry:<kind>:<change> events.
// Older server builds send bare EntryNames; newer builds send full
// Entries. Both may appear and either may be empty.
type RegistryData struct {
	RegistryType string      `json:"registryType"`
	EntryNames   []string    `json:"entryNames"`
	ChangeKind   string      `json:"changeKind"`
	Owner        *Owner      `json:"owner"`
	Entries      []EntryInfo `json:"entries"`
}

// ServerInfo is the server's self-reported identity.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerData is the payload of server:* events.
type ServerData struct {
	ServerInfo *ServerInfo `json:"serverInfo"`
	Address    string      `json:"address"`
	UptimeMS   *int64      `json:"uptimeMs"`
	Error      string      `json:"error"`
}

// ConfigIssue is one validation failure reported by config:error.
type ConfigIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ConfigData is the payload of config:* events.
type ConfigData struct {
	ConfigPath  string        `json:"configPath"`
	Errors      []ConfigIssue `json:"errors"`
	MissingKeys []string      `json:"missingKeys"`
	LoadedKeys  []string      `json:"loadedKeys"`
}

// LogData is the payload of category:"log" events: one forwarded log
// record from the server process.
type LogData struct {
	Message   string `json:"message"`
	Level     int    `json:"level"`
	LevelName string `json:"levelName"`
	Prefix    string `json:"prefix"`
}
