// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/tidwall/jsonc"

	"github.com/frontmcp/devdash/lib/devbus"
)

// PaletteModel is the command palette input line. Commands are
// fire-and-forget: the palette sends and clears, and the response
// surfaces later through the response channel as a log summary.
type PaletteModel struct {
	Input  string
	Active bool

	// Error from the last parse or send attempt, shown inline until
	// the next keystroke.
	Error string
}

// Open activates the palette with empty input.
func (palette *PaletteModel) Open() {
	palette.Input = ""
	palette.Error = ""
	palette.Active = true
}

// Close deactivates the palette and clears its state.
func (palette *PaletteModel) Close() {
	palette.Input = ""
	palette.Error = ""
	palette.Active = false
}

// handlePaletteKey processes keys while the palette owns input focus.
func (model Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		model.palette.Close()
		return model, nil

	case tea.KeyEnter:
		input := strings.TrimSpace(model.palette.Input)
		model.palette.Close()
		if input == "" {
			return model, nil
		}
		command, err := ParsePaletteCommand(input)
		if err != nil {
			model.palette.Active = true
			model.palette.Input = input
			model.palette.Error = err.Error()
			return model, nil
		}
		if model.commander == nil {
			model.logger.Warn("command unavailable", "reason", "transport is outbound-only", "command", command.Name)
			return model, nil
		}
		id, err := model.commander.SendCommand(command)
		if err != nil {
			model.logger.Error("command send failed", "command", command.Name, "error", err)
			return model, nil
		}
		model.logger.Info("command sent", "command", command.Name, "id", id)
		return model, nil

	case tea.KeyBackspace:
		if len(model.palette.Input) > 0 {
			runes := []rune(model.palette.Input)
			model.palette.Input = string(runes[:len(runes)-1])
		}
		model.palette.Error = ""
		return model, nil

	case tea.KeySpace:
		model.palette.Input += " "
		model.palette.Error = ""
		return model, nil

	case tea.KeyRunes:
		model.palette.Input += string(msg.Runes)
		model.palette.Error = ""
		return model, nil
	}
	return model, nil
}

// ParsePaletteCommand turns a palette input line into a wire command:
//
//	ping
//	state
//	tools <scope>
//	call <scope> <tool> [json-args]
//	simulate <scope> [client-name]
//
// callTool arguments accept JSONC (comments and trailing commas) and
// are normalized to strict JSON before sending.
func ParsePaletteCommand(input string) (devbus.Command, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "ping":
		return devbus.PingCommand(), nil

	case "state":
		return devbus.GetStateCommand(), nil

	case "tools":
		if rest == "" {
			return devbus.Command{}, fmt.Errorf("usage: tools <scope>")
		}
		scope, extra, _ := strings.Cut(rest, " ")
		if strings.TrimSpace(extra) != "" {
			return devbus.Command{}, fmt.Errorf("usage: tools <scope>")
		}
		return devbus.ListToolsCommand(scope), nil

	case "call":
		scope, afterScope, _ := strings.Cut(rest, " ")
		tool, argText, _ := strings.Cut(strings.TrimSpace(afterScope), " ")
		if scope == "" || tool == "" {
			return devbus.Command{}, fmt.Errorf("usage: call <scope> <tool> [json-args]")
		}
		var arguments json.RawMessage
		argText = strings.TrimSpace(argText)
		if argText != "" {
			normalized := jsonc.ToJSON([]byte(argText))
			if !json.Valid(normalized) {
				return devbus.Command{}, fmt.Errorf("arguments are not valid JSON: %s", argText)
			}
			arguments = json.RawMessage(normalized)
		}
		return devbus.CallToolCommand(scope, tool, arguments), nil

	case "simulate":
		scope, clientName, _ := strings.Cut(rest, " ")
		if scope == "" {
			return devbus.Command{}, fmt.Errorf("usage: simulate <scope> [client-name]")
		}
		clientName = strings.TrimSpace(clientName)
		if clientName == "" {
			clientName = "devdash-sim-" + uuid.NewString()[:8]
		}
		return devbus.SimulateClientCommand(scope, &devbus.SimulateClientOptions{
			ClientName: clientName,
		}), nil

	default:
		return devbus.Command{}, fmt.Errorf("unknown command %q (ping, state, tools, call, simulate)", name)
	}
}

// View renders the palette input line with a prompt and cursor, plus
// any parse error from the previous attempt.
func (palette *PaletteModel) View(theme Theme, width int) string {
	style := lipgloss.NewStyle().Foreground(theme.NormalText).Width(width)
	cursor := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Bold(true).
		Render("▎")

	line := " : " + palette.Input + cursor
	if palette.Error != "" {
		errStyle := lipgloss.NewStyle().Foreground(theme.LevelError)
		line += "  " + errStyle.Render(palette.Error)
	}
	return style.Render(line)
}
