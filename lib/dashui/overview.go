// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/frontmcp/devdash/lib/state"
)

// recentErrorDisplayCount is how many of the rolling recent errors
// the overview shows.
const recentErrorDisplayCount = 3

func (model Model) viewOverview(height int) string {
	store := model.store
	theme := model.theme

	label := lipgloss.NewStyle().Foreground(theme.FaintText).Width(14)
	value := lipgloss.NewStyle().Foreground(theme.NormalText)
	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)

	var b strings.Builder

	// Connection.
	b.WriteString(header.Render("Connection") + "\n")
	connState := "disconnected"
	connStyle := lipgloss.NewStyle().Foreground(theme.Disconnected)
	if model.counters.Connected.Load() {
		connState = "connected"
		connStyle = lipgloss.NewStyle().Foreground(theme.Connected)
	}
	b.WriteString(label.Render("  Transport") + value.Render(model.transport) + "  " + connStyle.Render(connState) + "\n")
	b.WriteString(label.Render("  Path") + value.Render(model.transportPath) + "\n")

	// Server.
	b.WriteString(header.Render("Server") + "\n")
	server := store.Server
	identity := server.Name
	if server.Version != "" {
		identity += " v" + server.Version
	}
	if identity == "" {
		identity = "(not seen yet)"
	}
	b.WriteString(label.Render("  Identity") + value.Render(identity) + "\n")
	address := server.Address
	if server.Port != 0 {
		address = fmt.Sprintf("%s (port %d)", server.Address, server.Port)
	}
	if address != "" {
		b.WriteString(label.Render("  Address") + value.Render(address) + "\n")
	}
	readiness := "not ready"
	readyStyle := lipgloss.NewStyle().Foreground(theme.SessionIdle)
	if server.Ready {
		readiness = "ready"
		readyStyle = lipgloss.NewStyle().Foreground(theme.Connected)
	}
	b.WriteString(label.Render("  Status") + readyStyle.Render(readiness))
	if server.LastError != "" {
		errStyle := lipgloss.NewStyle().Foreground(theme.LevelError)
		b.WriteString("  " + errStyle.Render(server.LastError))
	}
	b.WriteString("\n")

	// Activity counts from the derived overview.
	overview := store.Overview
	b.WriteString(header.Render("Activity") + "\n")
	b.WriteString(label.Render("  Sessions") +
		value.Render(fmt.Sprintf("%d total, %d active", overview.SessionCount, overview.ActiveSessions)) + "\n")
	b.WriteString(label.Render("  Apps") + value.Render(fmt.Sprintf("%d", overview.RegisteredApps)) + "\n")
	b.WriteString(label.Render("  Registry") +
		value.Render(fmt.Sprintf("%d tools, %d resources, %d prompts, %d agents",
			overview.ToolCount, overview.ResourceCount, overview.PromptCount, overview.AgentCount)) + "\n")

	// Recent tool calls.
	b.WriteString(header.Render("Recent tool calls") + "\n")
	if len(overview.RecentToolCalls) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.FaintText).Render("  (none)") + "\n")
	}
	for _, call := range overview.RecentToolCalls {
		outcome := lipgloss.NewStyle().Foreground(theme.OutcomeSuccess).Render("ok")
		if call.IsError {
			outcome = lipgloss.NewStyle().Foreground(theme.OutcomeFailure).Render("err")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			outcome,
			value.Render(call.EntryName),
			lipgloss.NewStyle().Foreground(theme.FaintText).Render(fmt.Sprintf("%dms", call.DurationMS))))
	}

	// Ingest counters.
	b.WriteString(header.Render("Ingest") + "\n")
	b.WriteString(label.Render("  Lines read") + value.Render(fmt.Sprintf("%d", model.counters.LinesRead.Load())) + "\n")
	b.WriteString(label.Render("  Events") + value.Render(fmt.Sprintf("%d", store.EventsTotal)) + "\n")
	b.WriteString(label.Render("  Failures") + value.Render(fmt.Sprintf("%d decode, %d dropped",
		model.counters.ParseFailures.Load(), model.counters.Dropped.Load())) + "\n")

	// Recent errors (display takes the newest few of the rolling ring).
	errors := overview.RecentErrors
	if len(errors) > recentErrorDisplayCount {
		errors = errors[:recentErrorDisplayCount]
	}
	if len(errors) > 0 {
		b.WriteString(header.Render("Recent errors") + "\n")
		errStyle := lipgloss.NewStyle().Foreground(theme.LevelError)
		for _, entry := range errors {
			stamp := time.UnixMilli(entry.Timestamp).Format("15:04:05")
			b.WriteString(fmt.Sprintf("  %s %s %s\n",
				lipgloss.NewStyle().Foreground(theme.FaintText).Render(stamp),
				errStyle.Render(entry.Source),
				value.Render(entry.Message)))
		}
	}

	hint := lipgloss.NewStyle().Foreground(theme.HelpText).Render("  s: export snapshot")
	b.WriteString(hint)

	return clipToHeight(b.String(), height)
}

// exportDocument is the JSON shape of an overview snapshot export. It
// flattens the store's ring buffers into plain slices so the export
// is self-contained and diff-friendly.
type exportDocument struct {
	ExportedAt string                  `json:"exportedAt"`
	Server     state.ServerStatus      `json:"server"`
	Config     state.ConfigStatus      `json:"config"`
	Overview   state.Overview          `json:"overview"`
	Scopes     []*state.Scope          `json:"scopes"`
	Sessions   []exportSession         `json:"sessions"`
	Metrics    exportMetrics           `json:"metrics"`
	RecentLogs []state.LogEntry        `json:"recentLogs"`
	ToolUsage  map[string]int          `json:"toolUsage"`
	ToolCalls  []state.ToolCallOutcome `json:"recentToolCalls"`
}

type exportSession struct {
	state.Session
	Logs []state.LogEntry `json:"logs"`
}

type exportMetrics struct {
	ToolCallsTotal  int      `json:"toolCallsTotal"`
	SuccessesTotal  int      `json:"successesTotal"`
	FailuresTotal   int      `json:"failuresTotal"`
	TotalDurationMS int64    `json:"totalDurationMs"`
	CPUHistory      []float64 `json:"cpuHistory"`
	MemoryHistory   []uint64  `json:"memoryHistory"`
	MemoryTotal     uint64    `json:"memoryTotal"`
}

func buildExportDocument(store *state.Store) exportDocument {
	sessions := make([]exportSession, 0, len(store.Sessions))
	for _, session := range store.Sessions {
		exported := exportSession{Session: *session}
		if session.Logs != nil {
			exported.Logs = session.Logs.Items()
		}
		exported.Session.Logs = nil
		sessions = append(sessions, exported)
	}

	return exportDocument{
		ExportedAt: time.Now().Format(time.RFC3339),
		Server:     store.Server,
		Config:     store.Config,
		Overview:   store.Overview,
		Scopes:     store.Scopes,
		Sessions:   sessions,
		Metrics: exportMetrics{
			ToolCallsTotal:  store.Metrics.ToolCallsTotal,
			SuccessesTotal:  store.Metrics.SuccessesTotal,
			FailuresTotal:   store.Metrics.FailuresTotal,
			TotalDurationMS: store.Metrics.TotalDurationMS,
			CPUHistory:      store.Metrics.CPUHistory.Items(),
			MemoryHistory:   store.Metrics.MemoryHistory.Items(),
			MemoryTotal:     store.Metrics.MemoryTotal,
		},
		RecentLogs: store.GlobalLogs.Last(100),
		ToolUsage:  store.Metrics.ToolUsage,
		ToolCalls:  store.Overview.RecentToolCalls,
	}
}

// clipToHeight truncates rendered text to at most the given number of
// lines. Lists handle their own scrolling; static panes just clip.
func clipToHeight(rendered string, height int) string {
	lines := strings.Split(rendered, "\n")
	if len(lines) <= height {
		return rendered
	}
	return strings.Join(lines[:height], "\n")
}
