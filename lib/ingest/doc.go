// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package ingest connects the dashboard to a running dev server and
// turns its byte stream into typed records on bounded channels.
//
// Two mutually exclusive transports exist. [SocketSource] dials the
// server's Unix socket: bidirectional, preferred, fails fast with a
// [ConnectError] when the socket does not appear within the existence
// budget. [PipeSource] tails the legacy event file from offset zero:
// outbound-only and retries indefinitely. Exactly one is active per
// process; everything above the reader boundary is transport-agnostic.
//
// [RunSocketReader] and [RunPipeReader] each drive one blocking read
// loop on a dedicated goroutine, classify every line, and forward
// decoded values into [Channels]. Channel sends never block: when a
// consumer falls behind, records are dropped and counted rather than
// stalling the transport. The single consumer drains the channels
// between frames.
package ingest
