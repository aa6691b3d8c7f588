// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// helpSection groups bindings under one heading in the overlay.
type helpSection struct {
	title    string
	bindings []key.Binding
}

// viewHelp renders the full-screen key binding reference. Any key
// dismisses it.
func (model Model) viewHelp(height int) string {
	theme := model.theme
	keys := model.keys

	sections := []helpSection{
		{"Tabs", []key.Binding{
			keys.TabOverview, keys.TabSessions, keys.TabCapabilities,
			keys.TabGraph, keys.TabLogs, keys.TabMetrics,
		}},
		{"Navigation", []key.Binding{
			keys.Up, keys.Down, keys.PageUp, keys.PageDown,
			keys.Home, keys.End, keys.FocusToggle,
		}},
		{"Graph", []key.Binding{
			keys.Right, keys.Left, keys.Select,
		}},
		{"Filter and commands", []key.Binding{
			keys.FilterActivate, keys.FilterClear, keys.PaletteActivate,
		}},
		{"Logs", []key.Binding{
			keys.FollowLogs, keys.ClearLogs,
		}},
		{"Other", []key.Binding{
			keys.ExportSnapshot, keys.Help, keys.Quit,
		}},
	}

	headerStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(theme.NormalText).Width(10)
	descStyle := lipgloss.NewStyle().Foreground(theme.FaintText)

	var b strings.Builder
	b.WriteString(headerStyle.Render(" Key bindings") + "\n\n")
	for _, section := range sections {
		b.WriteString(headerStyle.Render(" "+section.title) + "\n")
		for _, binding := range section.bindings {
			help := binding.Help()
			b.WriteString("   " + keyStyle.Render(help.Key) + descStyle.Render(help.Desc) + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(descStyle.Render(" press any key to close"))

	return clipToHeight(b.String(), height)
}
