// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frontmcp/devdash/lib/capture"
	"github.com/frontmcp/devdash/lib/devbus"
	"github.com/frontmcp/devdash/lib/ingest"
	"github.com/frontmcp/devdash/lib/state"
)

// Tab identifies one of the six dashboard tabs.
type Tab int

const (
	TabOverview Tab = iota
	TabSessions
	TabCapabilities
	TabGraph
	TabLogs
	TabMetrics
)

var tabNames = [...]string{"Overview", "Sessions", "Capabilities", "Graph", "Logs", "Metrics"}

func (tab Tab) String() string {
	if tab < 0 || int(tab) >= len(tabNames) {
		return "unknown"
	}
	return tabNames[tab]
}

// frameInterval is the channel-drain cadence. Every tick the model
// pulls whatever is pending from the ingest channels into the store
// and repaints; between ticks the producers buffer.
const frameInterval = 16 * time.Millisecond

// frameTickMsg drives the drain loop.
type frameTickMsg time.Time

// snapshotExportedMsg reports the outcome of an overview-tab export.
type snapshotExportedMsg struct {
	path string
	err  error
}

// CommandSender is the write half of the socket transport. Nil when
// the dashboard is attached to the pipe or replaying a capture — both
// are outbound-only, so palette commands are refused with a status
// message instead of being silently dropped.
type CommandSender interface {
	SendCommand(command devbus.Command) (string, error)
}

// Options configures the dashboard model.
type Options struct {
	// Transport is "socket", "pipe", or "replay" (display only).
	Transport string
	// TransportPath is the socket/pipe/capture path (display only).
	TransportPath string
	// Commander sends palette commands; nil disables the palette's
	// server-driving commands.
	Commander CommandSender
	// ExportDir receives snapshot exports from the overview tab.
	ExportDir string
	// Theme selects the palette ("dark" or "light").
	Theme string
	// Logger receives UI-side diagnostics (export failures, refused
	// commands).
	Logger *slog.Logger
}

// Model is the root bubbletea model. It owns the state store and is
// its only writer: channel drains and store reads both happen on the
// Update goroutine, so the store needs no locking.
type Model struct {
	store    *state.Store
	channels *ingest.Channels
	counters *ingest.Counters

	keys  KeyMap
	theme Theme

	transport     string
	transportPath string
	commander     CommandSender
	exportDir     string
	logger        *slog.Logger

	width  int
	height int

	activeTab Tab

	// Per-tab cursor state.
	sessionCursor int
	capCursor     int
	graphCursor   int
	logCursor     int
	followLogs    bool

	// Graph expansion state: the only persisted graph state. The node
	// list itself is recomputed from the store every frame.
	expanded map[string]struct{}

	filter  FilterModel
	palette PaletteModel

	helpVisible bool

	// Transient status bar log record (from the TUI slog handler).
	statusLog      *logRecordMsg
	statusSequence int
}

// NewModel creates the dashboard model. The channels and counters are
// shared with the transport goroutines; the store is private.
func NewModel(store *state.Store, channels *ingest.Channels, counters *ingest.Counters, options Options) Model {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Model{
		store:         store,
		channels:      channels,
		counters:      counters,
		keys:          DefaultKeyMap,
		theme:         ThemeByName(options.Theme),
		transport:     options.Transport,
		transportPath: options.TransportPath,
		commander:     options.Commander,
		exportDir:     options.ExportDir,
		logger:        logger,
		followLogs:    true,
		expanded:      make(map[string]struct{}),
		filter:        NewFilterModel(),
	}
}

// Init schedules the first frame tick.
func (model Model) Init() tea.Cmd {
	return frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

// Update is the single event loop: frame ticks drain the ingest
// channels, key and mouse events mutate UI state, log records land in
// the status bar.
func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case frameTickMsg:
		model.drainChannels()
		if model.followLogs && model.activeTab == TabLogs {
			model.logCursor = model.logRowCount() - 1
			if model.logCursor < 0 {
				model.logCursor = 0
			}
		}
		return model, frameTick()

	case tea.WindowSizeMsg:
		model.width = msg.Width
		model.height = msg.Height
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(msg)

	case tea.MouseMsg:
		return model.handleMouse(msg)

	case logRecordMsg:
		model.statusLog = &msg
		model.statusSequence++
		sequence := model.statusSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		// A newer record may have arrived since this fade was armed;
		// only the fade matching the latest record clears the bar.
		if msg.sequence == model.statusSequence {
			model.statusLog = nil
		}
		return model, nil

	case snapshotExportedMsg:
		if msg.err != nil {
			model.logger.Error("snapshot export failed", "error", msg.err)
		} else {
			model.logger.Info("snapshot exported", "path", msg.path)
		}
		return model, nil
	}

	return model, nil
}

// drainChannels moves everything currently buffered in the ingest
// channels into the store without blocking. Runs once per frame.
func (model *Model) drainChannels() {
	for {
		select {
		case event := <-model.channels.Events:
			model.store.ApplyEvent(event)
			continue
		default:
		}
		break
	}
	for {
		select {
		case line := <-model.channels.Logs:
			model.store.AppendLog(state.LogEntry{
				Timestamp: time.Now().UnixMilli(),
				LevelName: "info",
				Message:   line,
				Source:    "server",
			})
			continue
		default:
		}
		break
	}
	for {
		select {
		case snapshot := <-model.channels.Snapshots:
			model.store.ApplySnapshot(snapshot)
			continue
		default:
		}
		break
	}
	for {
		select {
		case response := <-model.channels.Responses:
			model.store.ApplyResponse(response)
			continue
		default:
		}
		break
	}
	for {
		select {
		case sample := <-model.channels.Metrics:
			model.store.AddMetricsSample(sample.CPUPercent, sample.MemoryUsed, sample.MemoryTotal)
			continue
		default:
		}
		break
	}
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Palette input swallows everything except escape.
	if model.palette.Active {
		return model.handlePaletteKey(msg)
	}

	// Filter input swallows printable runes and backspace.
	if model.filter.Active {
		switch msg.Type {
		case tea.KeyEscape:
			model.filter.Clear()
			return model, nil
		case tea.KeyEnter:
			model.filter.Active = false
			return model, nil
		case tea.KeyBackspace:
			model.filter.HandleBackspace()
			return model, nil
		case tea.KeySpace:
			model.filter.HandleRune(' ')
			return model, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				model.filter.HandleRune(r)
			}
			return model, nil
		}
		return model, nil
	}

	if model.helpVisible {
		// Any key dismisses the help overlay.
		model.helpVisible = false
		return model, nil
	}

	keys := model.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return model, tea.Quit

	case key.Matches(msg, keys.Help):
		model.helpVisible = true
		return model, nil

	case key.Matches(msg, keys.TabOverview):
		model.activeTab = TabOverview
	case key.Matches(msg, keys.TabSessions):
		model.activeTab = TabSessions
	case key.Matches(msg, keys.TabCapabilities):
		model.activeTab = TabCapabilities
	case key.Matches(msg, keys.TabGraph):
		model.activeTab = TabGraph
	case key.Matches(msg, keys.TabLogs):
		model.activeTab = TabLogs
	case key.Matches(msg, keys.TabMetrics):
		model.activeTab = TabMetrics

	case key.Matches(msg, keys.FilterActivate):
		if model.activeTab == TabCapabilities || model.activeTab == TabLogs {
			model.filter.Active = true
		}
	case key.Matches(msg, keys.FilterClear):
		model.filter.Clear()

	case key.Matches(msg, keys.PaletteActivate):
		model.palette.Open()

	case key.Matches(msg, keys.Up):
		model.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		model.moveCursor(1)
	case key.Matches(msg, keys.PageUp):
		model.moveCursor(-model.listHeight())
	case key.Matches(msg, keys.PageDown):
		model.moveCursor(model.listHeight())
	case key.Matches(msg, keys.Home):
		model.setCursor(0)
	case key.Matches(msg, keys.End):
		model.setCursor(model.rowCount() - 1)

	case key.Matches(msg, keys.Select), key.Matches(msg, keys.Right):
		if model.activeTab == TabGraph {
			model.expandGraphNode(key.Matches(msg, keys.Select))
		}
	case key.Matches(msg, keys.Left):
		if model.activeTab == TabGraph {
			model.collapseGraphNode()
		}

	case key.Matches(msg, keys.ClearLogs):
		if model.activeTab == TabLogs {
			model.store.ClearGlobalLogs()
			model.logCursor = 0
		}
	case key.Matches(msg, keys.FollowLogs):
		if model.activeTab == TabLogs {
			model.followLogs = !model.followLogs
		}

	case key.Matches(msg, keys.ExportSnapshot):
		if model.activeTab == TabOverview {
			return model, model.exportSnapshot()
		}
	}

	return model, nil
}

func (model Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		model.moveCursor(-3)
	case tea.MouseButtonWheelDown:
		model.moveCursor(3)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab, ok := tabAtColumn(msg.X); ok {
				model.activeTab = tab
			}
		}
	}
	return model, nil
}

// moveCursor adjusts the active tab's list cursor, clamping to the
// row count and disabling log follow on manual movement.
func (model *Model) moveCursor(delta int) {
	model.setCursor(model.cursor() + delta)
}

func (model *Model) setCursor(position int) {
	count := model.rowCount()
	if position < 0 {
		position = 0
	}
	if position >= count {
		position = count - 1
	}
	if position < 0 {
		position = 0
	}
	switch model.activeTab {
	case TabSessions:
		model.sessionCursor = position
	case TabCapabilities:
		model.capCursor = position
	case TabGraph:
		model.graphCursor = position
	case TabLogs:
		if position != model.logRowCount()-1 {
			model.followLogs = false
		}
		model.logCursor = position
	}
}

func (model *Model) cursor() int {
	switch model.activeTab {
	case TabSessions:
		return model.sessionCursor
	case TabCapabilities:
		return model.capCursor
	case TabGraph:
		return model.graphCursor
	case TabLogs:
		return model.logCursor
	}
	return 0
}

// rowCount returns the active tab's selectable row count.
func (model *Model) rowCount() int {
	switch model.activeTab {
	case TabSessions:
		return len(model.store.Sessions)
	case TabCapabilities:
		return len(model.capabilityRows())
	case TabGraph:
		return len(state.BuildGraph(model.store, model.expanded))
	case TabLogs:
		return model.logRowCount()
	}
	return 0
}

func (model *Model) logRowCount() int {
	return len(model.filteredLogRows())
}

// expandGraphNode expands the node under the cursor; when toggle is
// true an already-expanded node collapses instead.
func (model *Model) expandGraphNode(toggle bool) {
	nodes := state.BuildGraph(model.store, model.expanded)
	if model.graphCursor < 0 || model.graphCursor >= len(nodes) {
		return
	}
	node := nodes[model.graphCursor]
	if !node.Expandable {
		return
	}
	if node.Expanded {
		if toggle {
			delete(model.expanded, node.Key)
		}
		return
	}
	model.expanded[node.Key] = struct{}{}
}

// collapseGraphNode collapses the node under the cursor, or moves to
// the nearest collapsible ancestor when the cursor is on a leaf.
func (model *Model) collapseGraphNode() {
	nodes := state.BuildGraph(model.store, model.expanded)
	if model.graphCursor < 0 || model.graphCursor >= len(nodes) {
		return
	}
	node := nodes[model.graphCursor]
	if node.Expandable && node.Expanded {
		delete(model.expanded, node.Key)
		return
	}
	target := state.CollapseTarget(nodes, model.graphCursor)
	if target != model.graphCursor {
		model.graphCursor = target
		parent := nodes[target]
		if parent.Expandable && parent.Expanded {
			delete(model.expanded, parent.Key)
		}
	}
}

// exportSnapshot serializes the current folded state to the export
// directory as zstd-compressed JSON.
func (model *Model) exportSnapshot() tea.Cmd {
	document := buildExportDocument(model.store)
	dir := model.exportDir
	return func() tea.Msg {
		path, err := capture.ExportSnapshot(dir, document)
		return snapshotExportedMsg{path: path, err: err}
	}
}

// View composes the tab bar, the active tab body, the filter or
// palette input line, and the status bar. The help overlay replaces
// the body when visible.
func (model Model) View() string {
	if model.width == 0 || model.height == 0 {
		return "starting..."
	}

	tabBar := model.viewTabBar()
	statusBar := model.viewStatusBar()

	inputLine := ""
	if model.palette.Active {
		inputLine = model.palette.View(model.theme, model.width)
	} else {
		inputLine = model.filter.View(model.theme, model.width)
	}

	bodyHeight := model.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if inputLine != "" {
		bodyHeight -= lipgloss.Height(inputLine)
	}
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	if model.helpVisible {
		body = model.viewHelp(bodyHeight)
	} else {
		switch model.activeTab {
		case TabOverview:
			body = model.viewOverview(bodyHeight)
		case TabSessions:
			body = model.viewSessions(bodyHeight)
		case TabCapabilities:
			body = model.viewCapabilities(bodyHeight)
		case TabGraph:
			body = model.viewGraph(bodyHeight)
		case TabLogs:
			body = model.viewLogs(bodyHeight)
		case TabMetrics:
			body = model.viewMetrics(bodyHeight)
		}
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	sections := []string{tabBar, body}
	if inputLine != "" {
		sections = append(sections, inputLine)
	}
	sections = append(sections, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// listHeight is the number of rows available to a full-height list
// (body minus the per-tab header line).
func (model *Model) listHeight() int {
	height := model.height - 4
	if height < 1 {
		height = 1
	}
	return height
}

// tabHeaderCellWidth is the fixed rendered width of one tab header
// cell (" N:Name " padded); used to map mouse clicks to tabs.
const tabHeaderCellWidth = 16

func tabAtColumn(x int) (Tab, bool) {
	index := x / tabHeaderCellWidth
	if index < 0 || index >= len(tabNames) {
		return 0, false
	}
	return Tab(index), true
}

func (model Model) viewTabBar() string {
	activeStyle := lipgloss.NewStyle().
		Foreground(model.theme.TabActive).
		Bold(true).
		Width(tabHeaderCellWidth)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(model.theme.TabInactive).
		Width(tabHeaderCellWidth)

	cells := make([]string, len(tabNames))
	for index, name := range tabNames {
		label := fmt.Sprintf(" %d:%s ", index+1, name)
		if Tab(index) == model.activeTab {
			cells[index] = activeStyle.Render(label)
		} else {
			cells[index] = inactiveStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
