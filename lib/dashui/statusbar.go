// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// viewStatusBar renders the bottom line: transport and connection
// state on the left, counters and key hints (or a transient log
// record) on the right.
func (model Model) viewStatusBar() string {
	theme := model.theme

	connLabel := "●"
	connStyle := lipgloss.NewStyle().Foreground(theme.Disconnected)
	if model.counters.Connected.Load() {
		connStyle = lipgloss.NewStyle().Foreground(theme.Connected)
	}

	left := fmt.Sprintf(" %s %s %s ",
		connStyle.Render(connLabel),
		lipgloss.NewStyle().Foreground(theme.NormalText).Render(model.transport),
		lipgloss.NewStyle().Foreground(theme.FaintText).Render(model.transportPath))

	var right string
	if model.statusLog != nil {
		recordStyle := lipgloss.NewStyle().Foreground(theme.LevelWarn)
		if model.statusLog.Level >= slog.LevelError {
			recordStyle = lipgloss.NewStyle().Foreground(theme.LevelError)
		}
		right = recordStyle.Render(model.statusLog.Summary) + " "
	} else {
		counters := fmt.Sprintf("lines %d  drops %d",
			model.counters.LinesRead.Load(), model.counters.Dropped.Load())
		hints := "?: help  /: filter  :: command  q: quit"
		right = lipgloss.NewStyle().Foreground(theme.FaintText).Render(counters) +
			"  " + lipgloss.NewStyle().Foreground(theme.HelpText).Render(hints) + " "
	}

	leftWidth := ansi.StringWidth(left)
	rightWidth := ansi.StringWidth(right)
	padding := model.width - leftWidth - rightWidth
	if padding < 1 {
		right = ansi.Truncate(right, model.width-leftWidth-1, "…")
		padding = 1
	}

	bar := left + lipgloss.NewStyle().Width(padding).Render("") + right
	return lipgloss.NewStyle().Width(model.width).Render(bar)
}
