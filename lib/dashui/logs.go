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

// logRow pairs a log entry with its fuzzy-match score so filtered
// views can rank without re-matching during render.
type logRow struct {
	entry state.LogEntry
	score int
}

// filteredLogRows applies the fuzzy filter to the global log ring.
// With no filter, every entry passes in ring order (oldest first).
func (model *Model) filteredLogRows() []logRow {
	entries := model.store.GlobalLogs.Items()
	rows := make([]logRow, 0, len(entries))
	for _, entry := range entries {
		text := entry.Source + " " + entry.Message
		result := model.filter.Match(text)
		if !result.Matched {
			continue
		}
		rows = append(rows, logRow{entry: entry, score: result.Score})
	}
	return rows
}

func (model Model) viewLogs(height int) string {
	rows := model.filteredLogRows()
	theme := model.theme

	if len(rows) == 0 {
		message := "  no log entries"
		if model.filter.Input != "" {
			message = "  no entries match the filter"
		}
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render(message)
	}

	cursor := model.logCursor
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}

	listHeight := height - 1
	start := scrollWindow(cursor, len(rows), listHeight)

	var b strings.Builder
	followState := "off"
	if model.followLogs {
		followState = "on"
	}
	header := fmt.Sprintf("  %d entries — follow: %s  (f: toggle, c: clear, /: filter)", len(rows), followState)
	b.WriteString(lipgloss.NewStyle().Foreground(theme.HelpText).Render(header) + "\n")

	for index := start; index < len(rows) && index < start+listHeight; index++ {
		line := model.renderLogLine(rows[index].entry)
		if index == cursor {
			line = lipgloss.NewStyle().Background(theme.SelectedBackground).Render(line)
		}
		b.WriteString(line + "\n")
	}

	return clipToHeight(strings.TrimRight(b.String(), "\n"), height)
}

// renderLogLine formats one log entry: timestamp, level (colored),
// source prefix, message. Width-aware truncation keeps rows to one
// terminal line.
func (model Model) renderLogLine(entry state.LogEntry) string {
	theme := model.theme
	stamp := time.UnixMilli(entry.Timestamp).Format("15:04:05.000")

	level := entry.LevelName
	if level == "" {
		level = "info"
	}
	levelStyle := lipgloss.NewStyle().Foreground(theme.LevelColor(level))

	source := entry.Source
	if source == "" {
		source = "-"
	}

	line := fmt.Sprintf("  %s %s %s %s",
		lipgloss.NewStyle().Foreground(theme.FaintText).Render(stamp),
		levelStyle.Render(fmt.Sprintf("%-5s", level)),
		lipgloss.NewStyle().Foreground(theme.FaintText).Render(ansi.Truncate(source, 16, "…")),
		lipgloss.NewStyle().Foreground(theme.NormalText).Render(entry.Message))

	width := model.width
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

// scrollWindow computes the first visible index of a list so the
// cursor stays inside the viewport, clamped to the list bounds.
func scrollWindow(cursor, total, visible int) int {
	if visible <= 0 || total <= visible {
		return 0
	}
	start := cursor - visible/2
	if start < 0 {
		start = 0
	}
	if start > total-visible {
		start = total - visible
	}
	return start
}
