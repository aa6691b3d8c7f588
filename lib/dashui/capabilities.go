// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/frontmcp/devdash/lib/state"
)

// capabilityRow is one row of the flattened capabilities list: an
// entry plus where it lives and what kind it is.
type capabilityRow struct {
	scopeID string
	kind    string
	entry   *state.RegistryEntry
	score   int
}

// capabilityRows flattens every scope's tools, resources, prompts and
// agents into one filterable list. With an active filter, rows sort
// by fzf score (best match first); otherwise they keep scope/kind
// registration order.
func (model *Model) capabilityRows() []capabilityRow {
	var rows []capabilityRow
	for _, scope := range model.store.Scopes {
		sections := []struct {
			kind    string
			entries []state.RegistryEntry
		}{
			{"tool", scope.Tools},
			{"resource", scope.Resources},
			{"prompt", scope.Prompts},
			{"agent", scope.Agents},
		}
		for _, section := range sections {
			for index := range section.entries {
				entry := &section.entries[index]
				text := scope.ID + " " + section.kind + " " + entry.Name
				result := model.filter.Match(text)
				if !result.Matched {
					continue
				}
				rows = append(rows, capabilityRow{
					scopeID: scope.ID,
					kind:    section.kind,
					entry:   entry,
					score:   result.Score,
				})
			}
		}
	}
	if model.filter.Input != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].score > rows[j].score
		})
	}
	return rows
}

func (model Model) viewCapabilities(height int) string {
	rows := model.capabilityRows()
	theme := model.theme

	if len(rows) == 0 {
		message := "  no capabilities registered"
		if model.filter.Input != "" {
			message = "  no capabilities match the filter"
		}
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render(message)
	}

	cursor := model.capCursor
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}

	// List on the left, detail pane on the right.
	listWidth := model.width / 2
	if listWidth < 30 {
		listWidth = model.width
	}
	detailWidth := model.width - listWidth - 1

	start := scrollWindow(cursor, len(rows), height)
	var list strings.Builder
	for index := start; index < len(rows) && index < start+height; index++ {
		list.WriteString(model.capabilityLine(rows[index], index == cursor, listWidth) + "\n")
	}
	listPane := lipgloss.NewStyle().Width(listWidth).Render(strings.TrimRight(list.String(), "\n"))

	if detailWidth < 20 {
		return clipToHeight(listPane, height)
	}

	detail := model.capabilityDetail(rows[cursor], detailWidth)
	border := lipgloss.NewStyle().
		Foreground(theme.BorderColor).
		Render(strings.TrimRight(strings.Repeat("│\n", height), "\n"))
	return clipToHeight(lipgloss.JoinHorizontal(lipgloss.Top, listPane, border, detail), height)
}

func (model Model) capabilityLine(row capabilityRow, selected bool, width int) string {
	theme := model.theme

	kindColor := theme.GraphEntry
	switch row.kind {
	case "tool":
		kindColor = theme.GraphApp
	case "resource":
		kindColor = theme.GraphScope
	case "prompt":
		kindColor = theme.GraphAdapter
	case "agent":
		kindColor = theme.GraphPlugin
	}

	line := fmt.Sprintf("  %s %s %s",
		lipgloss.NewStyle().Foreground(kindColor).Render(fmt.Sprintf("%-8s", row.kind)),
		lipgloss.NewStyle().Foreground(theme.NormalText).Render(row.entry.Name),
		lipgloss.NewStyle().Foreground(theme.FaintText).Render("("+row.scopeID+")"))
	line = ansi.Truncate(line, width, "…")

	if selected {
		return lipgloss.NewStyle().Background(theme.SelectedBackground).Render(line)
	}
	return line
}

// capabilityDetail renders the selected entry: name, owner, version,
// URI, the description markdown, and the input schema highlighted as
// JSON.
func (model Model) capabilityDetail(row capabilityRow, width int) string {
	theme := model.theme
	entry := row.entry

	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	var b strings.Builder
	b.WriteString(header.Render(" "+entry.Name) + "\n")

	meta := []string{row.kind, "scope " + row.scopeID}
	if entry.Owner != nil {
		meta = append(meta, fmt.Sprintf("owner %s:%s", entry.Owner.Kind, entry.Owner.ID))
	}
	if entry.Version != "" {
		meta = append(meta, "v"+entry.Version)
	}
	if entry.URI != "" {
		meta = append(meta, entry.URI)
	}
	b.WriteString(faint.Render(" "+strings.Join(meta, " · ")) + "\n\n")

	if entry.Description != "" {
		b.WriteString(renderTerminalMarkdown(entry.Description, theme, width-2) + "\n\n")
	}

	if len(entry.InputSchema) > 0 {
		b.WriteString(header.Render(" Input schema") + "\n")
		b.WriteString(renderSchemaJSON(entry.InputSchema, theme))
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}
