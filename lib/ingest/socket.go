// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frontmcp/devdash/lib/devbus"
)

// Socket connect policy: wait for the socket file to appear, checking
// every socketExistencePoll up to socketExistenceChecks times (a 5s
// budget), then fail with a structured error. Once connected, reads
// use a short deadline so the goroutine can notice cancellation;
// a deadline expiry is a no-op continuation.
const (
	socketExistencePoll   = 100 * time.Millisecond
	socketExistenceChecks = 50
	socketReadTimeout     = 100 * time.Millisecond
)

// SocketSource is the preferred transport: a Unix stream socket served
// by the dev server. The read half streams newline-delimited JSON; the
// write half issues commands, one line each.
type SocketSource struct {
	path   string
	logger *slog.Logger

	conn net.Conn

	// writeMu serializes command writes. The write half is the one
	// genuinely shared mutable resource in the process.
	writeMu        sync.Mutex
	commandCounter atomic.Uint64
}

// NewSocketSource creates a source for the socket at path. Nothing is
// dialed until Connect.
func NewSocketSource(path string, logger *slog.Logger) *SocketSource {
	return &SocketSource{path: path, logger: logger}
}

// Connect waits for the socket to exist, dials it, and starts the
// read loop. The returned channel closes when the stream ends. A
// socket that never appears or refuses the dial yields a
// *ConnectError.
func (source *SocketSource) Connect(ctx context.Context) (<-chan string, error) {
	if err := source.waitForSocket(ctx); err != nil {
		return nil, err
	}

	conn, err := net.Dial("unix", source.path)
	if err != nil {
		return nil, &ConnectError{Path: source.path, Message: fmt.Sprintf("dial failed: %v", err)}
	}
	source.conn = conn
	source.logger.Info("connected to dev server socket", "path", source.path)

	lines := make(chan string, EventChannelCapacity)
	go source.readLoop(ctx, lines)
	return lines, nil
}

func (source *SocketSource) waitForSocket(ctx context.Context) error {
	for attempt := 0; attempt < socketExistenceChecks; attempt++ {
		if _, err := os.Stat(source.path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return &ConnectError{Path: source.path, Message: "cancelled while waiting for socket"}
		case <-time.After(socketExistencePoll):
		}
	}
	return &ConnectError{Path: source.path, Message: "socket did not appear within the connect budget"}
}

// readLoop reads the socket with a short deadline, assembling
// newline-delimited lines. A deadline expiry just checks cancellation
// and continues; any other error ends the stream and closes the
// channel.
func (source *SocketSource) readLoop(ctx context.Context, lines chan<- string) {
	defer close(lines)
	defer source.conn.Close()

	buf := make([]byte, 4096)
	var pending []byte
	for {
		source.conn.SetReadDeadline(time.Now().Add(socketReadTimeout))
		n, err := source.conn.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			pending = emitLines(pending, lines)
		}
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if ctx.Err() == nil {
				source.logger.Info("socket stream ended", "error", err)
			}
			return
		}
	}
}

// emitLines sends every complete line in pending and returns the
// leftover partial line.
func emitLines(pending []byte, lines chan<- string) []byte {
	for {
		i := bytes.IndexByte(pending, '\n')
		if i < 0 {
			return pending
		}
		line := string(pending[:i])
		pending = pending[i+1:]
		if line != "" {
			lines <- line
		}
	}
}

// SendCommand serializes the command with a fresh process-unique id,
// writes one line, and returns the id immediately. Fire-and-forget:
// the response, if any, arrives on the response channel later,
// correlated by this id.
func (source *SocketSource) SendCommand(command devbus.Command) (string, error) {
	if source.conn == nil {
		return "", fmt.Errorf("socket not connected")
	}
	id := fmt.Sprintf("cmd-%d", source.commandCounter.Add(1))
	message := devbus.CommandMessage{Type: devbus.MessageCommand, ID: id, Command: command}
	encoded, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("encoding command %s: %w", command.Name, err)
	}
	encoded = append(encoded, '\n')

	source.writeMu.Lock()
	defer source.writeMu.Unlock()
	if _, err := source.conn.Write(encoded); err != nil {
		return "", fmt.Errorf("writing command %s: %w", command.Name, err)
	}
	return id, nil
}
