// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/frontmcp/devdash/lib/devbus"
)

// Channel capacities. Sized for a 60fps consumer draining every
// frame: events and logs burst, metrics tick at 1Hz, snapshots only
// ever need the latest value.
const (
	EventChannelCapacity    = 100
	LogChannelCapacity      = 100
	SnapshotChannelCapacity = 1
	ResponseChannelCapacity = 32
	MetricsChannelCapacity  = 10
)

// MetricsSample is one CPU/memory reading from the resource sampler.
type MetricsSample struct {
	CPUPercent  float64
	MemoryUsed  uint64
	MemoryTotal uint64
}

// Channels carries typed records from the transport goroutines to the
// single consumer. All channels are bounded; producers never block on
// them. There is no ordering guarantee across channels, only within
// one.
type Channels struct {
	Events    chan *devbus.Event
	Logs      chan string
	Snapshots chan devbus.StateSnapshot
	Responses chan devbus.ResponseMessage
	Metrics   chan MetricsSample
}

// NewChannels allocates the channel set with the standard capacities.
func NewChannels() *Channels {
	return &Channels{
		Events:    make(chan *devbus.Event, EventChannelCapacity),
		Logs:      make(chan string, LogChannelCapacity),
		Snapshots: make(chan devbus.StateSnapshot, SnapshotChannelCapacity),
		Responses: make(chan devbus.ResponseMessage, ResponseChannelCapacity),
		Metrics:   make(chan MetricsSample, MetricsChannelCapacity),
	}
}

// Counters are the cross-goroutine tallies read by the status bar.
// Plain atomics: the transports increment, the consumer reads.
type Counters struct {
	LinesRead     atomic.Uint64
	ParseFailures atomic.Uint64
	Dropped       atomic.Uint64
	Connected     atomic.Bool
}

// LineSource is one transport's line stream. Connect establishes the
// transport according to its own policy (bounded existence budget for
// the socket, unbounded retry for the pipe) and returns a channel that
// closes when the stream ends.
type LineSource interface {
	Connect(ctx context.Context) (<-chan string, error)
}

// ConnectError reports a transport-connect failure with enough detail
// for the overview pane: what went wrong and where. Fatal to that
// transport only.
type ConnectError struct {
	Path    string
	Message string
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s (path %s)", e.Message, e.Path)
}

// Diagnostic is one ingestion anomaly: a decode failure or a dropped
// record.
type Diagnostic struct {
	Kind    string
	Message string
	Line    string
}

// DiagnosticSink receives ingestion diagnostics. Injectable so tests
// assert on emitted diagnostics directly; production wiring records
// them through the logger.
type DiagnosticSink interface {
	Record(diag Diagnostic)
}

// SinkFunc adapts a function to a DiagnosticSink.
type SinkFunc func(diag Diagnostic)

func (f SinkFunc) Record(diag Diagnostic) { f(diag) }

// offer performs a non-blocking channel send, reporting whether the
// value was accepted.
func offer[T any](ch chan T, value T) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// offerLatest replaces the channel's pending value so the consumer
// always sees the most recent one. Used for snapshots, where stale
// intermediates are worthless.
func offerLatest[T any](ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
