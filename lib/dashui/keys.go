// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the dashboard TUI.
type KeyMap struct {
	// Navigation (context-sensitive: list movement or detail scrolling
	// depending on the active tab's focus).
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding // Graph: collapse node / go to parent.
	Right    key.Binding // Graph: expand node.
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Select   key.Binding // Toggle expansion / open detail.

	// Focus switching within a tab (list ↔ detail).
	FocusToggle key.Binding

	// Tab switching.
	TabOverview     key.Binding
	TabSessions     key.Binding
	TabCapabilities key.Binding
	TabGraph        key.Binding
	TabLogs         key.Binding
	TabMetrics      key.Binding

	// Filter.
	FilterActivate key.Binding // Enter filter mode.
	FilterClear    key.Binding // Clear filter and exit filter mode.

	// Command palette.
	PaletteActivate key.Binding

	// Logs tab.
	ClearLogs  key.Binding
	FollowLogs key.Binding

	// Overview tab.
	ExportSnapshot key.Binding

	// Help overlay.
	Help key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys and page up/down.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch pane"),
	),
	TabOverview: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "overview"),
	),
	TabSessions: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "sessions"),
	),
	TabCapabilities: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "capabilities"),
	),
	TabGraph: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "graph"),
	),
	TabLogs: key.NewBinding(
		key.WithKeys("5"),
		key.WithHelp("5", "logs"),
	),
	TabMetrics: key.NewBinding(
		key.WithKeys("6"),
		key.WithHelp("6", "metrics"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	PaletteActivate: key.NewBinding(
		key.WithKeys(":"),
		key.WithHelp(":", "command"),
	),
	ClearLogs: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear logs"),
	),
	FollowLogs: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "follow"),
	),
	ExportSnapshot: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "export snapshot"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
