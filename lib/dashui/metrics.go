// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineRunes maps a normalized sample to a bar glyph, lowest to
// highest.
var sparklineRunes = []rune("▁▂▃▄▅▆▇█")

func (model Model) viewMetrics(height int) string {
	metrics := model.store.Metrics
	theme := model.theme

	label := lipgloss.NewStyle().Foreground(theme.FaintText).Width(16)
	value := lipgloss.NewStyle().Foreground(theme.NormalText)
	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)

	var b strings.Builder

	// Request aggregates.
	b.WriteString(header.Render("Tool calls") + "\n")
	b.WriteString(label.Render("  Total") + value.Render(fmt.Sprintf("%d", metrics.ToolCallsTotal)) + "\n")
	b.WriteString(label.Render("  Succeeded") +
		lipgloss.NewStyle().Foreground(theme.OutcomeSuccess).Render(fmt.Sprintf("%d", metrics.SuccessesTotal)) + "\n")
	b.WriteString(label.Render("  Failed") +
		lipgloss.NewStyle().Foreground(theme.OutcomeFailure).Render(fmt.Sprintf("%d", metrics.FailuresTotal)) + "\n")
	average := int64(0)
	if metrics.ToolCallsTotal > 0 {
		average = metrics.TotalDurationMS / int64(metrics.ToolCallsTotal)
	}
	b.WriteString(label.Render("  Avg duration") + value.Render(fmt.Sprintf("%dms", average)) + "\n\n")

	// CPU history.
	cpuSamples := metrics.CPUHistory.Items()
	b.WriteString(header.Render("CPU") + "\n")
	current := 0.0
	if len(cpuSamples) > 0 {
		current = cpuSamples[len(cpuSamples)-1]
	}
	b.WriteString(label.Render("  Current") + value.Render(fmt.Sprintf("%.1f%%", current)) + "\n")
	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.SparklineCPU).
		Render(sparkline(cpuSamples, 100)) + "\n\n")

	// Memory history.
	memorySamples := metrics.MemoryHistory.Items()
	b.WriteString(header.Render("Memory") + "\n")
	used := uint64(0)
	if len(memorySamples) > 0 {
		used = memorySamples[len(memorySamples)-1]
	}
	usage := formatBytes(used)
	if metrics.MemoryTotal > 0 {
		usage += " / " + formatBytes(metrics.MemoryTotal)
	}
	b.WriteString(label.Render("  Used") + value.Render(usage) + "\n")
	memoryScale := float64(metrics.MemoryTotal)
	memoryValues := make([]float64, len(memorySamples))
	for index, sample := range memorySamples {
		memoryValues[index] = float64(sample)
	}
	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.SparklineMemory).
		Render(sparkline(memoryValues, memoryScale)) + "\n\n")

	// Tool usage top list.
	if len(metrics.ToolUsage) > 0 {
		b.WriteString(header.Render("Top tools") + "\n")
		for _, usage := range topToolUsage(metrics.ToolUsage, 5) {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				value.Render(fmt.Sprintf("%4d", usage.count)),
				lipgloss.NewStyle().Foreground(theme.FaintText).Render(usage.name)))
		}
		b.WriteString("\n")
	}

	// Ingest volume.
	b.WriteString(header.Render("Ingest") + "\n")
	b.WriteString(label.Render("  Lines") + value.Render(fmt.Sprintf("%d", model.counters.LinesRead.Load())) + "\n")
	b.WriteString(label.Render("  Events") + value.Render(fmt.Sprintf("%d", model.store.EventsTotal)) + "\n")
	b.WriteString(label.Render("  Dropped") + value.Render(fmt.Sprintf("%d", model.counters.Dropped.Load())) + "\n")

	return clipToHeight(strings.TrimRight(b.String(), "\n"), height)
}

// sparkline renders samples as a run of bar glyphs. Scale fixes the
// top of the range; zero scale autoscales to the max sample.
func sparkline(samples []float64, scale float64) string {
	if len(samples) == 0 {
		return "(no samples)"
	}
	if scale <= 0 {
		for _, sample := range samples {
			if sample > scale {
				scale = sample
			}
		}
		if scale <= 0 {
			scale = 1
		}
	}
	var b strings.Builder
	for _, sample := range samples {
		normalized := sample / scale
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 1 {
			normalized = 1
		}
		index := int(normalized * float64(len(sparklineRunes)-1))
		b.WriteRune(sparklineRunes[index])
	}
	return b.String()
}

type toolUsage struct {
	name  string
	count int
}

// topToolUsage returns the n most-called tools, ties broken by name
// so the list is stable across repaints.
func topToolUsage(usage map[string]int, n int) []toolUsage {
	entries := make([]toolUsage, 0, len(usage))
	for name, count := range usage {
		entries = append(entries, toolUsage{name: name, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exponent := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exponent++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exponent])
}
