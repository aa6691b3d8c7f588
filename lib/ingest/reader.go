// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"encoding/json"
	"log/slog"

	"github.com/frontmcp/devdash/lib/devbus"
)

// RunPipeReader consumes lines from the file transport, classifying
// each before forwarding: event lines decode onto the event channel,
// unparsable marker-tagged lines count as parse failures, and
// everything else forwards verbatim as free-text log lines so ordinary
// stderr output is never miscounted as malformed events.
//
// Runs until the line channel closes. Nothing here can abort the
// consumer: every fallible step degrades to drop-and-count.
func RunPipeReader(lines <-chan string, channels *Channels, counters *Counters, sink DiagnosticSink) {
	counters.Connected.Store(true)
	defer counters.Connected.Store(false)

	for line := range lines {
		counters.LinesRead.Add(1)

		event, err := devbus.DecodeLine(line)
		if err != nil {
			counters.ParseFailures.Add(1)
			sink.Record(Diagnostic{Kind: "decode-failure", Message: err.Error(), Line: line})
			continue
		}
		if event != nil {
			if !offer(channels.Events, event) {
				counters.Dropped.Add(1)
				sink.Record(Diagnostic{Kind: "dropped", Message: "event channel full"})
			}
			continue
		}
		if !offer(channels.Logs, line) {
			counters.Dropped.Add(1)
		}
	}
}

// RunSocketReader consumes lines from the socket transport. Every
// socket line is already scoped to the protocol, so classification is
// by the top-level type field: welcome is log-only, state replaces via
// the snapshot channel (latest wins), event decodes the inner payload,
// response routes to the command correlation channel. Unrecognized
// types are ignored.
func RunSocketReader(lines <-chan string, channels *Channels, counters *Counters, sink DiagnosticSink, logger *slog.Logger) {
	counters.Connected.Store(true)
	defer counters.Connected.Store(false)

	for line := range lines {
		counters.LinesRead.Add(1)

		var probe devbus.SocketMessage
		if err := json.Unmarshal([]byte(line), &probe); err != nil {
			counters.ParseFailures.Add(1)
			sink.Record(Diagnostic{Kind: "decode-failure", Message: "socket frame: " + err.Error(), Line: line})
			continue
		}

		switch probe.Type {
		case devbus.MessageWelcome:
			var welcome devbus.WelcomeMessage
			if err := json.Unmarshal([]byte(line), &welcome); err == nil {
				logger.Info("dev server welcome",
					"serverId", welcome.ServerID,
					"serverVersion", welcome.ServerVersion,
					"protocolVersion", welcome.ProtocolVersion)
			}
		case devbus.MessageState:
			var message devbus.StateMessage
			if err := json.Unmarshal([]byte(line), &message); err != nil {
				counters.ParseFailures.Add(1)
				sink.Record(Diagnostic{Kind: "decode-failure", Message: "state message: " + err.Error(), Line: line})
				continue
			}
			offerLatest(channels.Snapshots, message.State)
		case devbus.MessageEvent:
			var message devbus.EventMessage
			if err := json.Unmarshal([]byte(line), &message); err != nil {
				counters.ParseFailures.Add(1)
				sink.Record(Diagnostic{Kind: "decode-failure", Message: "event message: " + err.Error(), Line: line})
				continue
			}
			event, err := devbus.DecodeSocketEvent(message.Event)
			if err != nil {
				counters.ParseFailures.Add(1)
				sink.Record(Diagnostic{Kind: "decode-failure", Message: err.Error(), Line: line})
				continue
			}
			if event != nil {
				if event.ID == "" {
					event.ID = message.ID
				}
				if event.Timestamp == 0 {
					event.Timestamp = message.Timestamp
				}
				if !offer(channels.Events, event) {
					counters.Dropped.Add(1)
					sink.Record(Diagnostic{Kind: "dropped", Message: "event channel full"})
				}
			}
		case devbus.MessageResponse:
			var response devbus.ResponseMessage
			if err := json.Unmarshal([]byte(line), &response); err != nil {
				counters.ParseFailures.Add(1)
				sink.Record(Diagnostic{Kind: "decode-failure", Message: "response message: " + err.Error(), Line: line})
				continue
			}
			if !offer(channels.Responses, response) {
				counters.Dropped.Add(1)
			}
		default:
			logger.Debug("unrecognized socket message type", "type", probe.Type)
		}
	}
}
