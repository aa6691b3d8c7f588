// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/frontmcp/devdash/lib/state"
)

func (model Model) viewGraph(height int) string {
	nodes := state.BuildGraph(model.store, model.expanded)
	theme := model.theme

	if len(nodes) == 0 {
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("  nothing to show yet")
	}

	cursor := model.graphCursor
	if cursor >= len(nodes) {
		cursor = len(nodes) - 1
	}

	listWidth := model.width / 2
	if listWidth < 30 {
		listWidth = model.width
	}
	detailWidth := model.width - listWidth - 1

	start := scrollWindow(cursor, len(nodes), height)
	var list strings.Builder
	for index := start; index < len(nodes) && index < start+height; index++ {
		list.WriteString(model.graphLine(nodes[index], index == cursor, listWidth) + "\n")
	}
	listPane := lipgloss.NewStyle().Width(listWidth).Render(strings.TrimRight(list.String(), "\n"))

	if detailWidth < 20 {
		return clipToHeight(listPane, height)
	}

	detail := model.graphDetail(nodes[cursor], detailWidth)
	border := lipgloss.NewStyle().
		Foreground(theme.BorderColor).
		Render(strings.TrimRight(strings.Repeat("│\n", height), "\n"))
	return clipToHeight(lipgloss.JoinHorizontal(lipgloss.Top, listPane, border, detail), height)
}

func (model Model) graphLine(node state.GraphNode, selected bool, width int) string {
	theme := model.theme

	marker := "  "
	if node.Expandable {
		if node.Expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	line := strings.Repeat("  ", node.Depth) + marker +
		lipgloss.NewStyle().Foreground(model.graphColor(node.Kind)).Render(node.Label)
	line = ansi.Truncate(line, width, "…")

	if selected {
		return lipgloss.NewStyle().Background(theme.SelectedBackground).Render(line)
	}
	return line
}

func (model Model) graphColor(kind state.NodeKind) lipgloss.Color {
	theme := model.theme
	switch kind {
	case state.NodeServer:
		return theme.GraphServer
	case state.NodeScope:
		return theme.GraphScope
	case state.NodeApp:
		return theme.GraphApp
	case state.NodeAdapter:
		return theme.GraphAdapter
	case state.NodePlugin:
		return theme.GraphPlugin
	case state.NodeDirectHeader:
		return theme.FaintText
	default:
		return theme.GraphEntry
	}
}

// graphDetail renders the selected node's detail pane. Entry nodes
// show the full registry entry; container nodes show identity only.
func (model Model) graphDetail(node state.GraphNode, width int) string {
	theme := model.theme
	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	var b strings.Builder
	b.WriteString(header.Render(" "+node.Label) + "\n")
	b.WriteString(faint.Render(fmt.Sprintf(" %s, scope %s", graphKindName(node.Kind), node.ScopeID)) + "\n\n")

	if node.Entry != nil {
		entry := node.Entry
		if entry.Owner != nil {
			b.WriteString(faint.Render(fmt.Sprintf(" owner: %s:%s", entry.Owner.Kind, entry.Owner.ID)) + "\n")
		}
		if entry.Version != "" {
			b.WriteString(faint.Render(" version: "+entry.Version) + "\n")
		}
		if entry.URI != "" {
			b.WriteString(faint.Render(" uri: "+entry.URI) + "\n")
		}
		if entry.Description != "" {
			b.WriteString("\n" + renderTerminalMarkdown(entry.Description, theme, width-2) + "\n")
		}
		if len(entry.InputSchema) > 0 {
			b.WriteString("\n" + header.Render(" Input schema") + "\n")
			b.WriteString(renderSchemaJSON(entry.InputSchema, theme))
		}
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func graphKindName(kind state.NodeKind) string {
	switch kind {
	case state.NodeServer:
		return "server"
	case state.NodeScope:
		return "scope"
	case state.NodeApp:
		return "app"
	case state.NodeAdapter:
		return "adapter"
	case state.NodePlugin:
		return "plugin"
	case state.NodeTool:
		return "tool"
	case state.NodeResource:
		return "resource"
	case state.NodePrompt:
		return "prompt"
	case state.NodeAgent:
		return "agent"
	case state.NodeDirectHeader:
		return "direct entries"
	default:
		return "node"
	}
}
