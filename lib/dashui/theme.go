// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the dashboard. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
//
// The fields cover universal chrome (text, selection, borders, tabs)
// and the semantic categories the tabs render: log levels, session
// liveness, tool-call outcomes, and graph node kinds.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Tab bar.
	TabActive   lipgloss.Color
	TabInactive lipgloss.Color

	// Connection state.
	Connected    lipgloss.Color
	Disconnected lipgloss.Color

	// Log levels.
	LevelDebug lipgloss.Color
	LevelInfo  lipgloss.Color
	LevelWarn  lipgloss.Color
	LevelError lipgloss.Color

	// Session liveness.
	SessionActive lipgloss.Color
	SessionIdle   lipgloss.Color
	SessionClosed lipgloss.Color

	// Tool call outcomes.
	OutcomeSuccess lipgloss.Color
	OutcomeFailure lipgloss.Color

	// Graph node kinds.
	GraphServer  lipgloss.Color
	GraphScope   lipgloss.Color
	GraphApp     lipgloss.Color
	GraphAdapter lipgloss.Color
	GraphPlugin  lipgloss.Color
	GraphEntry   lipgloss.Color

	// Metrics sparklines.
	SparklineCPU    lipgloss.Color
	SparklineMemory lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Filter match highlighting.
	MatchHighlight lipgloss.Color
}

// LevelColor returns the color for a log level string. Unknown levels
// render as normal text.
func (theme Theme) LevelColor(level string) lipgloss.Color {
	switch level {
	case "debug":
		return theme.LevelDebug
	case "info":
		return theme.LevelInfo
	case "warn", "warning":
		return theme.LevelWarn
	case "error", "fatal":
		return theme.LevelError
	default:
		return theme.NormalText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed
// for 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	TabActive:   lipgloss.Color("255"),
	TabInactive: lipgloss.Color("243"),

	Connected:    lipgloss.Color("114"), // green
	Disconnected: lipgloss.Color("196"), // red

	LevelDebug: lipgloss.Color("240"),
	LevelInfo:  lipgloss.Color("252"),
	LevelWarn:  lipgloss.Color("220"), // amber
	LevelError: lipgloss.Color("196"), // red

	SessionActive: lipgloss.Color("114"), // green
	SessionIdle:   lipgloss.Color("220"), // amber
	SessionClosed: lipgloss.Color("245"), // gray

	OutcomeSuccess: lipgloss.Color("114"),
	OutcomeFailure: lipgloss.Color("196"),

	GraphServer:  lipgloss.Color("255"),
	GraphScope:   lipgloss.Color("141"), // light purple
	GraphApp:     lipgloss.Color("75"),  // blue
	GraphAdapter: lipgloss.Color("208"), // orange
	GraphPlugin:  lipgloss.Color("220"), // amber
	GraphEntry:   lipgloss.Color("252"),

	SparklineCPU:    lipgloss.Color("75"),
	SparklineMemory: lipgloss.Color("141"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	MatchHighlight: lipgloss.Color("58"), // dark amber background tint
}

// LightTheme adapts the palette for light-background terminals.
// Selected via the `ui.theme: light` config key.
var LightTheme = Theme{
	NormalText: lipgloss.Color("235"),
	FaintText:  lipgloss.Color("243"),

	SelectedBackground: lipgloss.Color("253"),
	SelectedForeground: lipgloss.Color("232"),

	TabActive:   lipgloss.Color("232"),
	TabInactive: lipgloss.Color("245"),

	Connected:    lipgloss.Color("28"),  // dark green
	Disconnected: lipgloss.Color("160"), // dark red

	LevelDebug: lipgloss.Color("248"),
	LevelInfo:  lipgloss.Color("235"),
	LevelWarn:  lipgloss.Color("130"), // brown/amber
	LevelError: lipgloss.Color("160"),

	SessionActive: lipgloss.Color("28"),
	SessionIdle:   lipgloss.Color("130"),
	SessionClosed: lipgloss.Color("245"),

	OutcomeSuccess: lipgloss.Color("28"),
	OutcomeFailure: lipgloss.Color("160"),

	GraphServer:  lipgloss.Color("232"),
	GraphScope:   lipgloss.Color("91"), // purple
	GraphApp:     lipgloss.Color("25"), // blue
	GraphAdapter: lipgloss.Color("130"),
	GraphPlugin:  lipgloss.Color("94"),
	GraphEntry:   lipgloss.Color("235"),

	SparklineCPU:    lipgloss.Color("25"),
	SparklineMemory: lipgloss.Color("91"),

	HeaderForeground: lipgloss.Color("232"),
	BorderColor:      lipgloss.Color("250"),
	HelpText:         lipgloss.Color("247"),

	MatchHighlight: lipgloss.Color("229"), // pale amber
}

// ThemeByName resolves a config theme name to a palette. Unknown
// names fall back to the dark default (config validation rejects
// them before this is reached in normal operation).
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme
	}
	return DefaultTheme
}
