// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package devbus

import "encoding/json"

// SocketMessage is the minimal decode target used to discriminate
// inbound socket lines before full parsing. Socket framing carries the
// message type at the top level; the marker prefix is never used.
type SocketMessage struct {
	Type string `json:"type"`
}

// Socket message type values. Unrecognized types are ignored.
const (
	MessageWelcome  = "welcome"
	MessageState    = "state"
	MessageEvent    = "event"
	MessageResponse = "response"
	MessageCommand  = "command"
)

// WelcomeMessage is sent once by the server when the connection
// opens. Log-only: it mutates no state.
type WelcomeMessage struct {
	Type            string `json:"type"`
	ServerID        string `json:"serverId"`
	ServerVersion   string `json:"serverVersion"`
	ProtocolVersion string `json:"protocolVersion"`
}

// StateMessage carries a full state snapshot. The snapshot
// unconditionally replaces the store's collections regardless of
// events already folded.
type StateMessage struct {
	Type      string        `json:"type"`
	ID        string        `json:"id"`
	Timestamp int64         `json:"timestamp"`
	State     StateSnapshot `json:"state"`
}

// StateSnapshot is the server's complete registry and session state
// at one instant.
type StateSnapshot struct {
	Scopes   []ScopeState   `json:"scopes"`
	Sessions []SessionState `json:"sessions"`
	Server   ServerState    `json:"server"`
}

// ScopeState is one scope's registry contents within a snapshot.
type ScopeState struct {
	ID        string          `json:"id"`
	Tools     []SnapshotEntry `json:"tools"`
	Resources []SnapshotEntry `json:"resources"`
	Prompts   []SnapshotEntry `json:"prompts"`
	Agents    []SnapshotEntry `json:"agents"`
	Plugins   []SnapshotEntry `json:"plugins"`
	Adapters  []SnapshotEntry `json:"adapters"`
}

// SnapshotEntry is one registry entry within a snapshot. The same
// shape serves every entry kind; kind-specific fields (URI for
// resources, Version for plugins) are simply absent elsewhere.
type SnapshotEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Owner       *Owner          `json:"owner"`
	InputSchema json.RawMessage `json:"inputSchema"`
	URI         string          `json:"uri"`
	Version     string          `json:"version"`
}

// SessionState is one live session within a snapshot.
type SessionState struct {
	ScopeID       string      `json:"scopeId"`
	SessionID     string      `json:"sessionId"`
	TransportType string      `json:"transportType"`
	ClientInfo    *ClientInfo `json:"clientInfo"`
	ConnectedAt   int64       `json:"connectedAt"`
	AuthMode      string      `json:"authMode"`
	AuthUser      *AuthUser   `json:"authUser"`
	IsAnonymous   *bool       `json:"isAnonymous"`
}

// ServerState is the server identity within a snapshot.
type ServerState struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	StartedAt int64  `json:"startedAt"`
}

// EventMessage wraps a live event on the socket transport.
type EventMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Event     json.RawMessage `json:"event"`
}

// ResponseError is the failure detail of a command response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMessage is the server's asynchronous reply to a command,
// correlated by CommandID.
type ResponseMessage struct {
	Type      string          `json:"type"`
	CommandID string          `json:"commandId"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *ResponseError  `json:"error"`
}

// Command is one outbound command payload. Name discriminates; the
// remaining fields apply per command and are omitted when empty.
type Command struct {
	Name      string                 `json:"name"`
	ScopeID   string                 `json:"scopeId,omitempty"`
	ToolName  string                 `json:"toolName,omitempty"`
	Arguments json.RawMessage        `json:"arguments,omitempty"`
	Options   *SimulateClientOptions `json:"options,omitempty"`
}

// SimulateClientOptions configures the simulateClient command.
type SimulateClientOptions struct {
	ClientName    string `json:"clientName,omitempty"`
	ClientVersion string `json:"clientVersion,omitempty"`
}

// CommandMessage is the outbound command framing: one JSON line of
// {"type":"command","id":"cmd-N","command":{...}}.
type CommandMessage struct {
	Type    string  `json:"type"`
	ID      string  `json:"id"`
	Command Command `json:"command"`
}

// PingCommand checks server liveness.
func PingCommand() Command {
	return Command{Name: "ping"}
}

// GetStateCommand requests a fresh full state snapshot.
func GetStateCommand() Command {
	return Command{Name: "getState"}
}

// ListToolsCommand requests the tool list of one scope.
func ListToolsCommand(scopeID string) Command {
	return Command{Name: "listTools", ScopeID: scopeID}
}

// CallToolCommand invokes a tool in a scope. Arguments may be nil.
func CallToolCommand(scopeID, toolName string, arguments json.RawMessage) Command {
	return Command{Name: "callTool", ScopeID: scopeID, ToolName: toolName, Arguments: arguments}
}

// SimulateClientCommand asks the server to simulate a client
// connecting to a scope. Options may be nil.
func SimulateClientCommand(scopeID string, options *SimulateClientOptions) Command {
	return Command{Name: "simulateClient", ScopeID: scopeID, Options: options}
}
