// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/frontmcp/devdash/lib/devbus"
)

// Buffer capacities. Histories are bounded so an all-day dashboard
// session holds steady memory.
const (
	GlobalLogCapacity      = 1000
	SessionLogCapacity     = 500
	RecentToolCallCapacity = 5
	MetricsHistoryCapacity = 60
	RecentErrorCapacity    = 20
)

// UnknownSession is the display placeholder for events that carry no
// session id. Payload fields are all optional on the wire; a missing
// id must never render as an empty string or drop the record.
const UnknownSession = "(unknown session)"

// DefaultScope is the scope bucket for registry events that carry no
// scope id.
const DefaultScope = "default"

// RegistryEntry is one tool, resource, prompt, agent, plugin, or
// adapter. Name is unique within its kind in a scope.
type RegistryEntry struct {
	Name        string
	Description string
	Owner       *devbus.Owner
	InputSchema json.RawMessage
	URI         string
	Version     string
}

// Scope groups registry entries by kind for one scope id.
type Scope struct {
	ID        string
	Tools     []RegistryEntry
	Resources []RegistryEntry
	Prompts   []RegistryEntry
	Agents    []RegistryEntry
	Plugins   []RegistryEntry
	Adapters  []RegistryEntry
}

// kindSlice returns a pointer to the entry slice for a registry type
// string as it appears on the wire, or nil for an unknown type.
func (scope *Scope) kindSlice(registryType string) *[]RegistryEntry {
	switch registryType {
	case "tool", "tools":
		return &scope.Tools
	case "resource", "resources":
		return &scope.Resources
	case "prompt", "prompts":
		return &scope.Prompts
	case "agent", "agents":
		return &scope.Agents
	case "plugin", "plugins":
		return &scope.Plugins
	case "adapter", "adapters":
		return &scope.Adapters
	}
	return nil
}

// Session is one client connection, kept for the life of the process.
// Disconnect flips Active but never deletes.
type Session struct {
	ID            string
	ScopeID       string
	TransportType string
	ClientName    string
	ClientVersion string
	AuthMode      string
	AuthUser      string
	IsAnonymous   bool
	ConnectedAt   int64
	Active        bool
	Idle          bool
	Reason        string
	DurationMS    int64
	Logs          *Ring[LogEntry]
}

// APIRequest is one request lifecycle, created at start and amended
// by id at complete/error. A complete/error for an id never seen at
// start only affects metrics; it does not insert a record.
type APIRequest struct {
	ID         string
	FlowName   string
	Method     string
	EntryName  string
	SessionID  string
	StartedAt  int64
	DurationMS int64
	Done       bool
	IsError    bool
	Error      string
}

// ToolCallOutcome is one completed tool invocation summarized for the
// overview's recent-outcomes list.
type ToolCallOutcome struct {
	EntryName  string
	DurationMS int64
	IsError    bool
	Timestamp  int64
}

// LogEntry is one line of log history, global and per-session.
type LogEntry struct {
	Timestamp int64
	Level     int
	LevelName string
	Message   string
	Source    string
	SessionID string
	RequestID string
}

// ErrorEntry is one entry of the rolling recent-errors list shown in
// the overview.
type ErrorEntry struct {
	Timestamp int64
	Source    string
	Message   string
}

// ServerStatus mirrors the dev server's self-reported identity.
type ServerStatus struct {
	Name      string
	Version   string
	Address   string
	Port      int
	Ready     bool
	StartedAt int64
	UptimeMS  int64
	LastError string
}

// ConfigStatus mirrors the dev server's config load reports.
type ConfigStatus struct {
	Loaded      bool
	HasError    bool
	Path        string
	Errors      []devbus.ConfigIssue
	MissingKeys []string
	LoadedKeys  []string
}

// Metrics holds running totals and bounded histories. Request totals
// count only tool flows; the flow-name substring match is a deliberate
// heuristic carried over from the server's own accounting.
type Metrics struct {
	ToolCallsTotal  int
	SuccessesTotal  int
	FailuresTotal   int
	TotalDurationMS int64
	ToolUsage       map[string]int
	CPUHistory      *Ring[float64]
	MemoryHistory   *Ring[uint64]
	MemoryTotal     uint64
}

// Overview is the denormalized summary pane model. It is fully
// recomputed after any mutation that could affect it, never patched
// incrementally.
type Overview struct {
	SessionCount   int
	ActiveSessions int
	RegisteredApps int
	ToolCount      int
	ResourceCount  int
	PromptCount    int
	AgentCount     int
	PluginCount    int
	AdapterCount   int
	// RecentToolCalls is newest first, at most RecentToolCallCapacity.
	RecentToolCalls []ToolCallOutcome
	// RecentErrors is newest first, at most RecentErrorCapacity.
	RecentErrors []ErrorEntry
}

// Store is the dashboard's authoritative model. It is owned and
// mutated by the single consumer loop; no method locks.
type Store struct {
	logger *slog.Logger

	Scopes     []*Scope
	scopeIndex map[string]*Scope

	Sessions     []*Session
	sessionIndex map[string]*Session

	Requests     []*APIRequest
	requestIndex map[string]*APIRequest

	Server ServerStatus
	Config ConfigStatus

	GlobalLogs      *Ring[LogEntry]
	recentToolCalls *Ring[ToolCallOutcome]
	recentErrors    *Ring[ErrorEntry]

	Metrics  Metrics
	Overview Overview

	// EventsTotal counts every event folded, recognized or not.
	EventsTotal int
}

// NewStore creates an empty store. The logger receives fold
// diagnostics (unknown kinds, command summaries) and must not be nil.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		logger:          logger,
		scopeIndex:      make(map[string]*Scope),
		sessionIndex:    make(map[string]*Session),
		requestIndex:    make(map[string]*APIRequest),
		GlobalLogs:      NewRing[LogEntry](GlobalLogCapacity),
		recentToolCalls: NewRing[ToolCallOutcome](RecentToolCallCapacity),
		recentErrors:    NewRing[ErrorEntry](RecentErrorCapacity),
		Metrics: Metrics{
			ToolUsage:     make(map[string]int),
			CPUHistory:    NewRing[float64](MetricsHistoryCapacity),
			MemoryHistory: NewRing[uint64](MetricsHistoryCapacity),
		},
	}
}

// scope returns the scope for an id, creating it on first reference.
// An empty id falls back to the default bucket.
func (store *Store) scope(id string) *Scope {
	if id == "" {
		id = DefaultScope
	}
	if existing, ok := store.scopeIndex[id]; ok {
		return existing
	}
	created := &Scope{ID: id}
	store.scopeIndex[id] = created
	store.Scopes = append(store.Scopes, created)
	return created
}

// session returns the session for an id, creating a placeholder on
// first reference so late-joining streams still correlate.
func (store *Store) session(id string) *Session {
	if id == "" {
		id = UnknownSession
	}
	if existing, ok := store.sessionIndex[id]; ok {
		return existing
	}
	created := &Session{
		ID:   id,
		Logs: NewRing[LogEntry](SessionLogCapacity),
	}
	store.sessionIndex[id] = created
	store.Sessions = append(store.Sessions, created)
	return created
}

// ApplyEvent folds one normalized event into the store. Unrecognized
// kinds are logged at debug level; nothing here can fail the consumer
// loop.
func (store *Store) ApplyEvent(event *devbus.Event) {
	store.EventsTotal++

	// Only forwarded log records bypass the fold. Trace events — the
	// flat schema's name for state events — carry the same kinds as the
	// legacy categories and fold identically.
	if event.Category == "log" {
		store.applyLog(event)
		store.recomputeOverview()
		return
	}

	switch {
	case strings.HasPrefix(event.Kind, "session:"):
		store.applySession(event)
	case strings.HasPrefix(event.Kind, "request:"), strings.HasPrefix(event.Kind, "tool:"):
		store.applyRequest(event)
	case strings.HasPrefix(event.Kind, "registry:"):
		store.applyRegistry(event)
	case strings.HasPrefix(event.Kind, "server:"):
		store.applyServer(event)
	case strings.HasPrefix(event.Kind, "config:"):
		store.applyConfig(event)
	default:
		// Unknown kinds still surface as log lines; they are not lost.
		store.logger.Debug("unrecognized event kind", "kind", event.Kind, "category", event.Category)
		store.applyLog(event)
	}
	store.recomputeOverview()
}

func (store *Store) applyLog(event *devbus.Event) {
	entry := LogEntry{
		Timestamp: event.Timestamp,
		Message:   event.Kind,
		Source:    event.Prefix,
		SessionID: event.SessionID,
		RequestID: event.RequestID,
	}
	if event.Log != nil {
		if event.Log.Message != "" {
			entry.Message = event.Log.Message
		}
		entry.Level = event.Log.Level
		entry.LevelName = event.Log.LevelName
		if event.Log.Prefix != "" {
			entry.Source = event.Log.Prefix
		}
	}
	store.AppendLog(entry)
}

// AppendLog adds one entry to the global log ring and, when the entry
// is session-tagged, to that session's private ring.
func (store *Store) AppendLog(entry LogEntry) {
	store.GlobalLogs.Push(entry)
	if entry.SessionID != "" {
		store.session(entry.SessionID).Logs.Push(entry)
	}
}

// ClearGlobalLogs empties the global log ring. Session rings keep
// their history.
func (store *Store) ClearGlobalLogs() {
	store.GlobalLogs = NewRing[LogEntry](GlobalLogCapacity)
}

// sessionKey picks the session id for a session event: the top-level
// envelope field wins, the payload's is the fallback.
func sessionKey(event *devbus.Event) string {
	if event.SessionID != "" {
		return event.SessionID
	}
	if event.Session != nil && event.Session.SessionID != "" {
		return event.Session.SessionID
	}
	return ""
}

func (store *Store) applySession(event *devbus.Event) {
	session := store.session(sessionKey(event))
	payload := event.Session
	if payload == nil {
		payload = &devbus.SessionData{}
	}

	switch event.Kind {
	case "session:connect":
		session.Active = true
		session.Idle = false
		session.ConnectedAt = event.Timestamp
		if event.ScopeID != "" {
			session.ScopeID = event.ScopeID
		}
		if payload.TransportType != "" {
			session.TransportType = payload.TransportType
		}
		if payload.ClientInfo != nil {
			session.ClientName = payload.ClientInfo.Name
			session.ClientVersion = payload.ClientInfo.Version
		}
		if payload.AuthMode != "" {
			session.AuthMode = payload.AuthMode
		}
		if payload.AuthUser != nil {
			session.AuthUser = payload.AuthUser.Name
		}
		if payload.IsAnonymous != nil {
			session.IsAnonymous = *payload.IsAnonymous
		}
	case "session:disconnect":
		session.Active = false
		session.Idle = false
		if payload.Reason != "" {
			session.Reason = payload.Reason
		}
		if payload.DurationMS != nil {
			session.DurationMS = *payload.DurationMS
		}
	case "session:idle":
		session.Idle = true
	case "session:active":
		session.Idle = false
		session.Active = true
	default:
		store.logger.Debug("unrecognized session event", "kind", event.Kind)
	}
}

func (store *Store) applyRequest(event *devbus.Event) {
	payload := event.Request
	if payload == nil {
		payload = &devbus.RequestData{}
	}
	requestID := event.RequestID

	switch event.Kind {
	case "request:start", "tool:execute":
		if requestID == "" {
			return
		}
		request, ok := store.requestIndex[requestID]
		if !ok {
			request = &APIRequest{ID: requestID, StartedAt: event.Timestamp}
			store.requestIndex[requestID] = request
			store.Requests = append(store.Requests, request)
		}
		request.SessionID = event.SessionID
		if payload.FlowName != "" {
			request.FlowName = payload.FlowName
		}
		if payload.Method != "" {
			request.Method = payload.Method
		}
		if payload.EntryName != "" {
			request.EntryName = payload.EntryName
		}
	case "request:complete", "request:error", "tool:complete", "tool:error":
		isError := strings.HasSuffix(event.Kind, ":error")
		if payload.IsError != nil {
			isError = *payload.IsError
		}
		var duration int64
		if payload.DurationMS != nil {
			duration = *payload.DurationMS
		}

		entryName := payload.EntryName
		if request, ok := store.requestIndex[requestID]; ok {
			request.Done = true
			request.IsError = isError
			request.DurationMS = duration
			// Some flows only learn the true entry name at
			// completion; the later value wins.
			if entryName != "" {
				request.EntryName = entryName
			} else {
				entryName = request.EntryName
			}
			if payload.FlowName != "" {
				request.FlowName = payload.FlowName
			} else {
				payload.FlowName = request.FlowName
			}
			if payload.Error != nil {
				request.Error = payload.Error.Message
			}
		}

		store.rollOutcome(event, payload.FlowName, entryName, duration, isError)
	default:
		store.logger.Debug("unrecognized request event", "kind", event.Kind)
	}
}

// rollOutcome feeds metrics and the overview's recent-outcomes list
// for tool flows. The substring match on the flow name mirrors the
// server's accounting.
func (store *Store) rollOutcome(event *devbus.Event, flowName, entryName string, duration int64, isError bool) {
	if !strings.Contains(flowName, "tool") && !strings.HasPrefix(event.Kind, "tool:") {
		return
	}
	store.Metrics.ToolCallsTotal++
	store.Metrics.TotalDurationMS += duration
	if isError {
		store.Metrics.FailuresTotal++
	} else {
		store.Metrics.SuccessesTotal++
	}
	if entryName != "" {
		store.Metrics.ToolUsage[entryName]++
	}
	store.recentToolCalls.Push(ToolCallOutcome{
		EntryName:  entryName,
		DurationMS: duration,
		IsError:    isError,
		Timestamp:  event.Timestamp,
	})
	if isError {
		message := "tool call failed"
		if event.Request != nil && event.Request.Error != nil && event.Request.Error.Message != "" {
			message = event.Request.Error.Message
		}
		store.recordError(event.Timestamp, entryName, message)
	}
}

func (store *Store) recordError(timestamp int64, source, message string) {
	store.recentErrors.Push(ErrorEntry{Timestamp: timestamp, Source: source, Message: message})
}

// entriesFromPayload builds registry entries from a registry event,
// preferring the rich entry objects when present and falling back to
// bare names.
func entriesFromPayload(payload *devbus.RegistryData) []RegistryEntry {
	if len(payload.Entries) > 0 {
		entries := make([]RegistryEntry, 0, len(payload.Entries))
		for _, info := range payload.Entries {
			owner := info.Owner
			if owner == nil {
				owner = payload.Owner
			}
			entries = append(entries, RegistryEntry{
				Name:        info.Name,
				Description: info.Description,
				Owner:       owner,
				InputSchema: info.InputSchema,
				URI:         info.URI,
				Version:     info.Version,
			})
		}
		return entries
	}
	entries := make([]RegistryEntry, 0, len(payload.EntryNames))
	for _, name := range payload.EntryNames {
		entries = append(entries, RegistryEntry{Name: name, Owner: payload.Owner})
	}
	return entries
}

func (store *Store) applyRegistry(event *devbus.Event) {
	payload := event.Registry
	if payload == nil {
		store.logger.Debug("registry event without payload", "kind", event.Kind)
		return
	}
	scope := store.scope(event.ScopeID)
	slice := scope.kindSlice(payload.RegistryType)
	if slice == nil {
		store.logger.Debug("unrecognized registry type", "registryType", payload.RegistryType)
		return
	}

	changeKind := payload.ChangeKind
	if changeKind == "" {
		// Older builds encode the change in the event kind itself,
		// e.g. "registry:added".
		changeKind = strings.TrimPrefix(event.Kind, "registry:")
	}

	switch changeKind {
	case "added":
		for _, entry := range entriesFromPayload(payload) {
			if indexByName(*slice, entry.Name) < 0 {
				*slice = append(*slice, entry)
			}
		}
	case "removed":
		names := payload.EntryNames
		if len(names) == 0 {
			for _, info := range payload.Entries {
				names = append(names, info.Name)
			}
		}
		for _, name := range names {
			if i := indexByName(*slice, name); i >= 0 {
				*slice = append((*slice)[:i], (*slice)[i+1:]...)
			}
		}
	case "reset":
		// Replaces the whole kind. A bare-name reset drops prior
		// detail on purpose: the server says these names are the
		// complete truth now.
		*slice = entriesFromPayload(payload)
	case "updated":
		// Log-only: the server emits these but the dashboard does not
		// mutate stored entry fields for them.
		store.logger.Debug("registry updated",
			"registryType", payload.RegistryType,
			"entryNames", payload.EntryNames)
	default:
		store.logger.Debug("unrecognized registry change", "changeKind", changeKind)
	}
}

func indexByName(entries []RegistryEntry, name string) int {
	for i, entry := range entries {
		if entry.Name == name {
			return i
		}
	}
	return -1
}

func (store *Store) applyServer(event *devbus.Event) {
	payload := event.Server
	if payload == nil {
		payload = &devbus.ServerData{}
	}

	switch event.Kind {
	case "server:starting":
		store.Server.Ready = false
	case "server:ready":
		store.Server.Ready = true
		if store.Server.StartedAt == 0 {
			store.Server.StartedAt = event.Timestamp
		}
		if payload.ServerInfo != nil {
			store.Server.Name = payload.ServerInfo.Name
			store.Server.Version = payload.ServerInfo.Version
		}
		if payload.Address != "" {
			store.Server.Address = payload.Address
			store.Server.Port = parsePort(payload.Address)
		}
	case "server:error":
		message := payload.Error
		if message == "" {
			message = "server error"
		}
		store.Server.LastError = message
		store.recordError(event.Timestamp, "server", message)
	case "server:shutdown":
		store.Server.Ready = false
		if payload.UptimeMS != nil {
			store.Server.UptimeMS = *payload.UptimeMS
		}
	default:
		store.logger.Debug("unrecognized server event", "kind", event.Kind)
	}
}

// parsePort extracts a trailing :port from an address, best-effort.
// Non-numeric trailers are silently ignored.
func parsePort(address string) int {
	i := strings.LastIndex(address, ":")
	if i < 0 || i == len(address)-1 {
		return 0
	}
	port, err := strconv.Atoi(address[i+1:])
	if err != nil {
		return 0
	}
	return port
}

func (store *Store) applyConfig(event *devbus.Event) {
	payload := event.Config
	if payload == nil {
		payload = &devbus.ConfigData{}
	}

	switch event.Kind {
	case "config:loaded":
		store.Config.Loaded = true
		store.Config.HasError = false
		if payload.ConfigPath != "" {
			store.Config.Path = payload.ConfigPath
		}
		store.Config.LoadedKeys = payload.LoadedKeys
	case "config:error":
		store.Config.HasError = true
		store.Config.Errors = payload.Errors
		for _, issue := range payload.Errors {
			store.recordError(event.Timestamp, "config", issue.Message)
		}
	case "config:missing":
		store.Config.MissingKeys = payload.MissingKeys
	default:
		store.logger.Debug("unrecognized config event", "kind", event.Kind)
	}
}

// ApplySnapshot replaces the registry, session, and server collections
// with the server's authoritative state. It never merges: a snapshot
// interleaving with live events wins outright.
func (store *Store) ApplySnapshot(snapshot devbus.StateSnapshot) {
	store.Scopes = store.Scopes[:0]
	store.scopeIndex = make(map[string]*Scope)
	for _, wireScope := range snapshot.Scopes {
		scope := store.scope(wireScope.ID)
		scope.Tools = snapshotEntries(wireScope.Tools)
		scope.Resources = snapshotEntries(wireScope.Resources)
		scope.Prompts = snapshotEntries(wireScope.Prompts)
		scope.Agents = snapshotEntries(wireScope.Agents)
		scope.Plugins = snapshotEntries(wireScope.Plugins)
		scope.Adapters = snapshotEntries(wireScope.Adapters)
	}

	previous := store.sessionIndex
	store.Sessions = store.Sessions[:0]
	store.sessionIndex = make(map[string]*Session)
	for _, wireSession := range snapshot.Sessions {
		session := store.session(wireSession.SessionID)
		// Carry forward the log ring when the session survived the
		// snapshot; log history is local, not server state.
		if old, ok := previous[session.ID]; ok {
			session.Logs = old.Logs
		}
		session.ScopeID = wireSession.ScopeID
		session.TransportType = wireSession.TransportType
		session.ConnectedAt = wireSession.ConnectedAt
		session.Active = true
		session.AuthMode = wireSession.AuthMode
		if wireSession.ClientInfo != nil {
			session.ClientName = wireSession.ClientInfo.Name
			session.ClientVersion = wireSession.ClientInfo.Version
		}
		if wireSession.AuthUser != nil {
			session.AuthUser = wireSession.AuthUser.Name
		}
		if wireSession.IsAnonymous != nil {
			session.IsAnonymous = *wireSession.IsAnonymous
		}
	}

	if snapshot.Server.Name != "" {
		store.Server.Name = snapshot.Server.Name
	}
	if snapshot.Server.Version != "" {
		store.Server.Version = snapshot.Server.Version
	}
	if snapshot.Server.StartedAt != 0 {
		store.Server.StartedAt = snapshot.Server.StartedAt
	}
	store.Server.Ready = true

	store.recomputeOverview()
}

func snapshotEntries(wire []devbus.SnapshotEntry) []RegistryEntry {
	entries := make([]RegistryEntry, 0, len(wire))
	for _, item := range wire {
		entries = append(entries, RegistryEntry{
			Name:        item.Name,
			Description: item.Description,
			Owner:       item.Owner,
			InputSchema: item.InputSchema,
			URI:         item.URI,
			Version:     item.Version,
		})
	}
	return entries
}

// ApplyResponse records a command response as a one-line log summary.
// The dashboard never blocks on or retries a command.
func (store *Store) ApplyResponse(response devbus.ResponseMessage) {
	if response.Success {
		store.AppendLog(LogEntry{
			LevelName: "info",
			Source:    "command",
			Message:   fmt.Sprintf("command %s succeeded", response.CommandID),
		})
		return
	}
	detail := "unknown error"
	if response.Error != nil {
		detail = response.Error.Message
		if response.Error.Code != "" {
			detail = response.Error.Code + ": " + detail
		}
	}
	store.AppendLog(LogEntry{
		LevelName: "error",
		Source:    "command",
		Message:   fmt.Sprintf("command %s failed: %s", response.CommandID, detail),
	})
	store.recordError(0, "command", detail)
}

// AddMetricsSample appends one CPU/memory sample to the histories.
func (store *Store) AddMetricsSample(cpuPercent float64, memoryUsed, memoryTotal uint64) {
	store.Metrics.CPUHistory.Push(cpuPercent)
	store.Metrics.MemoryHistory.Push(memoryUsed)
	if memoryTotal != 0 {
		store.Metrics.MemoryTotal = memoryTotal
	}
}

// recomputeOverview rebuilds the denormalized summary from the source
// collections. Called after every mutation that could affect it;
// recomputing twice without new events is idempotent.
func (store *Store) recomputeOverview() {
	overview := Overview{}

	overview.SessionCount = len(store.Sessions)
	for _, session := range store.Sessions {
		if session.Active {
			overview.ActiveSessions++
		}
	}

	appOwners := make(map[string]struct{})
	for _, scope := range store.Scopes {
		overview.ToolCount += len(scope.Tools)
		overview.ResourceCount += len(scope.Resources)
		overview.PromptCount += len(scope.Prompts)
		overview.AgentCount += len(scope.Agents)
		overview.PluginCount += len(scope.Plugins)
		overview.AdapterCount += len(scope.Adapters)
		for _, entry := range scope.Tools {
			if entry.Owner != nil && entry.Owner.Kind == "app" {
				appOwners[entry.Owner.ID] = struct{}{}
			}
		}
		for _, entry := range scope.Resources {
			if entry.Owner != nil && entry.Owner.Kind == "app" {
				appOwners[entry.Owner.ID] = struct{}{}
			}
		}
	}
	overview.RegisteredApps = len(appOwners)

	// Newest first for display.
	outcomes := store.recentToolCalls.Items()
	for i := len(outcomes) - 1; i >= 0; i-- {
		overview.RecentToolCalls = append(overview.RecentToolCalls, outcomes[i])
	}
	errors := store.recentErrors.Items()
	for i := len(errors) - 1; i >= 0; i-- {
		overview.RecentErrors = append(overview.RecentErrors, errors[i])
	}

	store.Overview = overview
}
