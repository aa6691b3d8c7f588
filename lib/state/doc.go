// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package state holds the dashboard's in-memory model of the dev
// server: registry collections per scope, live and ended sessions,
// request lifecycles, bounded log and error history, and runtime
// metrics.
//
// The [Store] is single-consumer: the UI loop drains transport
// channels and folds each record into the store between frames, so no
// method takes a lock. Cross-goroutine counters (lines read, parse
// failures) live in the ingest layer as atomics, not here.
//
// Two inputs mutate the store. [Store.ApplyEvent] folds one normalized
// [devbus.Event] incrementally. [Store.ApplySnapshot] replaces the
// registry, session, and server collections wholesale with the
// server's authoritative state; it never merges. Derived views — the
// [Overview] aggregate and the ownership graph built by [BuildGraph] —
// are recomputed from the collections rather than maintained
// incrementally.
package state
