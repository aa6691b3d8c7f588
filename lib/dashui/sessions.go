// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/frontmcp/devdash/lib/state"
)

func (model Model) viewSessions(height int) string {
	sessions := model.store.Sessions
	theme := model.theme

	if len(sessions) == 0 {
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("  no sessions yet")
	}

	// Split: session table on top, selected session's log ring below.
	tableHeight := height / 2
	if tableHeight < 3 {
		tableHeight = height
	}
	logHeight := height - tableHeight - 1

	headerStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-34s %-20s %-10s %-10s %-19s %s",
		"SESSION", "CLIENT", "TRANSPORT", "AUTH", "CONNECTED", "STATE")) + "\n")

	start := scrollWindow(model.sessionCursor, len(sessions), tableHeight-1)
	for index := start; index < len(sessions) && index < start+tableHeight-1; index++ {
		session := sessions[index]
		b.WriteString(model.sessionRow(session, index == model.sessionCursor) + "\n")
	}

	if logHeight > 0 && model.sessionCursor < len(sessions) {
		selected := sessions[model.sessionCursor]
		b.WriteString(headerStyle.Render("  Session log — "+selected.ID) + "\n")
		b.WriteString(model.sessionLogView(selected, logHeight-1))
	}

	return clipToHeight(strings.TrimRight(b.String(), "\n"), height)
}

func (model Model) sessionRow(session *state.Session, selected bool) string {
	theme := model.theme

	client := session.ClientName
	if session.ClientVersion != "" {
		client += " " + session.ClientVersion
	}
	auth := session.AuthMode
	if session.IsAnonymous {
		auth = "anonymous"
	}
	if session.AuthUser != "" {
		auth += " (" + session.AuthUser + ")"
	}
	connected := ""
	if session.ConnectedAt != 0 {
		connected = time.UnixMilli(session.ConnectedAt).Format("2006-01-02 15:04:05")
	}

	stateLabel, stateColor := sessionState(session, theme)

	row := fmt.Sprintf("  %-34s %-20s %-10s %-10s %-19s ",
		ansi.Truncate(session.ID, 34, "…"),
		ansi.Truncate(client, 20, "…"),
		ansi.Truncate(session.TransportType, 10, "…"),
		ansi.Truncate(auth, 10, "…"),
		connected)

	style := lipgloss.NewStyle().Foreground(theme.NormalText)
	if selected {
		style = style.Background(theme.SelectedBackground).Foreground(theme.SelectedForeground)
	}
	return style.Render(row) + lipgloss.NewStyle().Foreground(stateColor).Render(stateLabel)
}

func sessionState(session *state.Session, theme Theme) (string, lipgloss.Color) {
	switch {
	case !session.Active:
		label := "closed"
		if session.Reason != "" {
			label += " (" + session.Reason + ")"
		}
		return label, theme.SessionClosed
	case session.Idle:
		return "idle", theme.SessionIdle
	default:
		return "active", theme.SessionActive
	}
}

// sessionLogView renders the tail of the selected session's private
// log ring.
func (model Model) sessionLogView(session *state.Session, height int) string {
	if session.Logs == nil || session.Logs.Len() == 0 {
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  (no log entries)")
	}
	entries := session.Logs.Last(height)
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, model.renderLogLine(entry))
	}
	return strings.Join(lines, "\n")
}
