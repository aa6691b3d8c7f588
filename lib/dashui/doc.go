// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashui implements the devdash terminal interface: a
// bubbletea [Model] with six tabs (overview, sessions, capabilities,
// graph, logs, metrics), a command palette for driving the dev
// server, a fuzzy filter, and a status bar that surfaces transport
// state and background log records.
//
// The model is the single consumer of the ingest channels: every
// frame tick it drains whatever is pending (without blocking) into a
// [state.Store] and re-renders from the store's derived views. All
// rendering is pure over the store; the model owns only UI state
// (active tab, cursors, expanded graph nodes, filter text).
package dashui
