// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package devbus defines the FrontMCP dev-server wire protocol and the
// unified event decoder. It has no I/O: [lib/ingest] feeds it raw
// lines, and it produces normalized [Event] values ready for folding
// into the state store.
//
// The dev server has emitted two wire schemas over its lifetime. The
// original "dev event bus" framed each event inside a discriminated
// envelope ({"type": marker, "event": {...}}); the later transport
// flattened the event to a single object distinguished by a "category"
// field ("trace" for state events, "log" for forwarded log records).
// Old and new server builds may emit either shape indefinitely and
// there is no version negotiation, so [DecodeLine] always tries both.
//
// A normalized [Event] is a small tagged union: the Kind string plus
// exactly one populated payload pointer (Session, Request, Registry,
// Server, Config, Log). Kinds the decoder does not recognize keep
// their raw JSON payload in Data so the store can log them without
// losing information.
//
// The socket transport wraps protocol messages one level higher:
// [SocketMessage] discriminates welcome/state/event/response lines,
// and [CommandMessage] is the outbound command framing.
package devbus
