// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

// devdash is a live monitoring dashboard for the FrontMCP development
// server. It attaches to the server's event stream and renders
// sessions, registered capabilities, the ownership graph, logs, and
// metrics in a terminal UI, with a command palette for driving the
// server.
//
// Two transports:
//
// Socket mode (preferred): connects to the Unix socket named by
// FRONTMCP_SOCKET_PATH. Bidirectional — the dashboard receives a
// state snapshot plus live events and can send commands (ping,
// getState, listTools, callTool, simulateClient).
//
// Pipe mode (legacy): tails the append-only event file named by
// FRONTMCP_EVENT_PIPE from offset zero. Outbound only; the palette's
// server commands are unavailable.
//
// A third mode replays a capture file recorded with --capture through
// the same decode path, for offline debugging.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/frontmcp/devdash/lib/capture"
	"github.com/frontmcp/devdash/lib/config"
	"github.com/frontmcp/devdash/lib/dashui"
	"github.com/frontmcp/devdash/lib/ingest"
	"github.com/frontmcp/devdash/lib/state"
	"github.com/frontmcp/devdash/lib/sysmon"
	"github.com/frontmcp/devdash/lib/version"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// usageError is a flag/argument problem: reported with exit code 2 so
// scripts can tell misuse from runtime failure.
type usageError struct {
	message string
}

func (err *usageError) Error() string { return err.message }
func (err *usageError) ExitCode() int { return 2 }

func usage(format string, args ...any) error {
	return &usageError{message: fmt.Sprintf(format, args...)}
}

func run() error {
	var (
		configPath  string
		socketPath  string
		pipePath    string
		captureMode bool
		replayPath  string
		replayCheck string
		replayFast  bool
		logOutput   string
		verbose     bool
	)

	flagSet := pflag.NewFlagSet("devdash", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file (default: $DEVDASH_CONFIG if set)")
	flagSet.StringVar(&socketPath, "socket", "", "dev server socket path (overrides config and FRONTMCP_SOCKET_PATH)")
	flagSet.StringVar(&pipePath, "pipe", "", "event pipe file path (overrides config and FRONTMCP_EVENT_PIPE)")
	flagSet.BoolVar(&captureMode, "capture", false, "record the raw ingest stream to the capture directory")
	flagSet.StringVar(&replayPath, "replay", "", "replay a capture file instead of attaching to a server")
	flagSet.StringVar(&replayCheck, "replay-check", "", "verify a capture file and print its summary (headless)")
	flagSet.BoolVar(&replayFast, "fast", false, "replay without original pacing")
	flagSet.StringVar(&logOutput, "log-file", "", "write JSON log records to this file (in addition to TUI display)")
	flagSet.BoolVar(&verbose, "verbose", false, "log at debug level")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing, matching the dev server's
	// own binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("devdash")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if args := flagSet.Args(); len(args) > 0 {
		return usage("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if socketPath != "" {
		cfg.Transport.SocketPath = socketPath
	}
	if pipePath != "" {
		cfg.Transport.PipePath = pipePath
	}
	if logOutput != "" {
		cfg.Log.File = logOutput
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return usage("invalid configuration: %v", err)
	}

	// --replay-check is the one headless mode: no TTY, no TUI.
	if replayCheck != "" {
		return runReplayCheck(replayCheck)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return usage("stdout is not a terminal (use --replay-check for headless capture verification)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	return runDashboard(ctx, cfg, dashboardFlags{
		captureMode: captureMode,
		replayPath:  replayPath,
		replayFast:  replayFast,
	})
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `FrontMCP dev dashboard — live terminal UI for the dev server.

Attaches to the dev server's Unix socket (FRONTMCP_SOCKET_PATH) or,
when no socket is configured, tails the legacy event pipe file
(FRONTMCP_EVENT_PIPE). The socket transport is bidirectional: the
command palette (:) can ping the server, request state, list tools,
call a tool, or simulate a client.

Usage:
  devdash [flags]

Examples:
  # Attach to the dev server (transport from the environment)
  devdash

  # Attach to an explicit socket
  devdash --socket /tmp/frontmcp-dev.sock

  # Record the session while watching it
  devdash --capture

  # Replay a recorded session at original pacing
  devdash --replay ~/.cache/devdash/capture-1a2b3c.fmc

  # Verify a capture file without starting the UI
  devdash --replay-check ~/.cache/devdash/capture-1a2b3c.fmc

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// runReplayCheck verifies a capture file's integrity and prints its
// frame count and header without starting the UI.
func runReplayCheck(path string) error {
	frames, err := capture.Verify(path)
	if err != nil {
		return fmt.Errorf("capture %s failed verification: %w", path, err)
	}
	recording, err := capture.Read(path)
	if err != nil {
		return fmt.Errorf("reading capture %s: %w", path, err)
	}
	fmt.Printf("capture:   %s\n", path)
	fmt.Printf("transport: %s\n", recording.Header.Transport)
	fmt.Printf("created:   %s\n", time.UnixMilli(recording.Header.CreatedAt).Format(time.RFC3339))
	fmt.Printf("frames:    %d\n", frames)
	fmt.Printf("integrity: ok\n")
	return nil
}

type dashboardFlags struct {
	captureMode bool
	replayPath  string
	replayFast  bool
}

// runDashboard wires the transport, the optional capture writer, the
// resource sampler, and the log fanout, then runs the TUI until quit.
//
// Background logging (transport connects, decode diagnostics, command
// sends) is routed through a TUILogHandler that displays warnings and
// errors in the status bar instead of writing to stderr (which would
// corrupt the alt-screen display). An optional file logger captures
// all records to a JSONL file for post-mortem debugging.
func runDashboard(ctx context.Context, cfg *config.Config, flags dashboardFlags) error {
	tuiHandler := dashui.NewTUILogHandler(slog.LevelWarn)

	var backgroundLogger *slog.Logger
	if cfg.Log.File != "" {
		fileHandler, closeLogFile, err := openFileLogHandler(cfg.Log.File, parseLogLevel(cfg.Log.Level))
		if err != nil {
			return usage("cannot open log file %s: %v", cfg.Log.File, err)
		}
		defer closeLogFile()
		backgroundLogger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		backgroundLogger = slog.New(tuiHandler)
	}

	channels := ingest.NewChannels()
	counters := &ingest.Counters{}
	store := state.NewStore(backgroundLogger)

	// Decode diagnostics go to the background logger; the UI surfaces
	// warn+ in the status bar and the counters on the overview tab.
	sink := ingest.SinkFunc(func(diag ingest.Diagnostic) {
		backgroundLogger.Warn("ingest diagnostic",
			"kind", diag.Kind, "detail", diag.Message)
	})

	transportName, transportPath := selectTransport(cfg, flags)
	if transportName == "" {
		return usage("no transport configured: set FRONTMCP_SOCKET_PATH or FRONTMCP_EVENT_PIPE, " +
			"use --socket/--pipe, or pass --replay <file>")
	}

	var captureWriter *capture.Writer
	if flags.captureMode {
		tag, err := capture.ParseCompressionTag(cfg.Capture.Compression)
		if err != nil {
			return usage("invalid capture compression: %v", err)
		}
		captureWriter, err = capture.NewWriter(cfg.Capture.Dir, transportName, tag)
		if err != nil {
			return fmt.Errorf("starting capture: %w", err)
		}
		defer func() {
			if err := captureWriter.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "closing capture: %v\n", err)
				return
			}
			fmt.Fprintf(os.Stderr, "capture written to %s\n", captureWriter.Path())
		}()
	}

	var commander dashui.CommandSender

	switch transportName {
	case "replay":
		recording, err := capture.Read(flags.replayPath)
		if err != nil {
			return fmt.Errorf("reading capture %s: %w", flags.replayPath, err)
		}
		lines := make(chan string, ingest.EventChannelCapacity)
		go capture.Replay(ctx, recording, lines, !flags.replayFast)
		go runReader(recording.Header.Transport, lines, channels, counters, sink, backgroundLogger, captureWriter)

	case "socket":
		source := ingest.NewSocketSource(transportPath, backgroundLogger)
		commander = source
		go func() {
			lines, err := source.Connect(ctx)
			if err != nil {
				backgroundLogger.Error("socket connect failed", "error", err)
				return
			}
			runReader("socket", lines, channels, counters, sink, backgroundLogger, captureWriter)
		}()

	case "pipe":
		source := ingest.NewPipeSource(transportPath, backgroundLogger)
		go func() {
			lines, err := source.Connect(ctx)
			if err != nil {
				backgroundLogger.Error("pipe connect failed", "error", err)
				return
			}
			runReader("pipe", lines, channels, counters, sink, backgroundLogger, captureWriter)
		}()
	}

	// The resource sampler is the one producer that is not a
	// transport: CPU and memory readings at 1Hz into the metrics
	// channel.
	go sysmon.NewSampler(backgroundLogger).Run(ctx, channels.Metrics)

	model := dashui.NewModel(store, channels, counters, dashui.Options{
		Transport:     transportName,
		TransportPath: transportPath,
		Commander:     commander,
		ExportDir:     cfg.Capture.Dir,
		Theme:         cfg.UI.Theme,
		Logger:        backgroundLogger,
	})

	options := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		options = append(options, tea.WithMouseAllMotion())
	}
	program := tea.NewProgram(model, options...)

	tuiHandler.SetProgram(program)

	_, err := program.Run()
	return err
}

// selectTransport picks the transport: replay wins, then the socket,
// then the pipe. Returns the transport name and its path; an empty
// name means nothing is configured.
func selectTransport(cfg *config.Config, flags dashboardFlags) (string, string) {
	switch {
	case flags.replayPath != "":
		return "replay", flags.replayPath
	case cfg.Transport.SocketPath != "":
		return "socket", cfg.Transport.SocketPath
	case cfg.Transport.PipePath != "":
		return "pipe", cfg.Transport.PipePath
	default:
		return "", ""
	}
}

// runReader dispatches lines to the transport-appropriate reader,
// teeing each raw line into the capture writer when one is active.
// The socket and pipe framings differ (socket messages carry a type
// envelope, pipe lines are marker-tagged), so a replay uses the
// reader matching the recorded transport.
func runReader(
	transport string,
	lines <-chan string,
	channels *ingest.Channels,
	counters *ingest.Counters,
	sink ingest.DiagnosticSink,
	logger *slog.Logger,
	captureWriter *capture.Writer,
) {
	if captureWriter != nil {
		recorded := make(chan string, ingest.EventChannelCapacity)
		go func() {
			defer close(recorded)
			for line := range lines {
				if err := captureWriter.RecordLine(line); err != nil {
					logger.Error("capture write failed", "error", err)
				}
				recorded <- line
			}
		}()
		lines = recorded
	}

	if transport == "socket" {
		ingest.RunSocketReader(lines, channels, counters, sink, logger)
		return
	}
	ingest.RunPipeReader(lines, channels, counters, sink)
}

// openFileLogHandler creates a slog.JSONHandler that writes to the
// given file path. Returns the handler, a cleanup function to close
// the file, and any error. The file is created or truncated.
func openFileLogHandler(path string, level slog.Level) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return handler, func() { file.Close() }, nil
}

func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
