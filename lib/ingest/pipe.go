// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Pipe tail policy: the file may not exist yet when the dashboard
// starts, so wait for it — indefinitely, unlike the socket. Once open,
// read from offset zero so events emitted before attachment are not
// lost; hitting the current end of file is a short sleep and retry,
// never end-of-stream.
const (
	pipeExistencePoll = 50 * time.Millisecond
	pipeEmptyReadWait = 10 * time.Millisecond
)

// PipeSource is the legacy transport: an append-only event file
// written by older dev server builds. Outbound-only; commands are not
// available in pipe mode.
type PipeSource struct {
	path   string
	logger *slog.Logger
}

// NewPipeSource creates a source tailing the file at path.
func NewPipeSource(path string, logger *slog.Logger) *PipeSource {
	return &PipeSource{path: path, logger: logger}
}

// Connect waits for the file to exist, opens it at offset zero, and
// starts the tail loop. The returned channel closes only on a read
// error or cancellation; waiting for data never ends the stream.
func (source *PipeSource) Connect(ctx context.Context) (<-chan string, error) {
	if err := source.waitForFile(ctx); err != nil {
		return nil, err
	}

	file, err := os.Open(source.path)
	if err != nil {
		return nil, &ConnectError{Path: source.path, Message: "open failed: " + err.Error()}
	}
	source.logger.Info("tailing event file", "path", source.path)

	lines := make(chan string, EventChannelCapacity)
	go source.tailLoop(ctx, file, lines)
	return lines, nil
}

// waitForFile blocks until the event file exists. A directory watch
// wakes it promptly when the server creates the file; the poll
// interval is the fallback for platforms or paths where the watch
// cannot be established.
func (source *PipeSource) waitForFile(ctx context.Context) error {
	if _, err := os.Stat(source.path); err == nil {
		return nil
	}

	var watchEvents chan fsnotify.Event
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(source.path)); err == nil {
			watchEvents = make(chan fsnotify.Event, 1)
			go func() {
				for event := range watcher.Events {
					if event.Op.Has(fsnotify.Create) && event.Name == source.path {
						select {
						case watchEvents <- event:
						default:
						}
					}
				}
			}()
		}
	}

	for {
		if _, err := os.Stat(source.path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return &ConnectError{Path: source.path, Message: "cancelled while waiting for event file"}
		case <-watchEvents:
		case <-time.After(pipeExistencePoll):
		}
	}
}

func (source *PipeSource) tailLoop(ctx context.Context, file *os.File, lines chan<- string) {
	defer close(lines)
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			if trimmed := strings.TrimSuffix(line, "\n"); trimmed != "" {
				lines <- trimmed
			}
			continue
		}
		if err == io.EOF {
			// Caught up with the writer. A partial line stays buffered
			// in the reader until its newline arrives.
			if ctx.Err() != nil {
				return
			}
			if line != "" {
				// ReadString consumed a partial line; put it back by
				// prepending on the next read.
				reader = prependReader(line, file)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(pipeEmptyReadWait):
			}
			continue
		}
		if ctx.Err() == nil {
			source.logger.Info("event file stream ended", "error", err)
		}
		return
	}
}

// prependReader rebuilds a buffered reader that yields the partial
// line before continuing from the file's current position.
func prependReader(partial string, file *os.File) *bufio.Reader {
	return bufio.NewReader(io.MultiReader(strings.NewReader(partial), file))
}
