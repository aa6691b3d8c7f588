// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture records and replays dev server event streams.
//
// A capture file is a CBOR sequence: one [Header], any number of
// [Frame] values, and a [Footer] carrying a BLAKE3 hash of everything
// before it. Each frame holds one raw transport line with its offset
// from the start of the recording, compressed per-frame with the
// configured algorithm (falling back to none when compression does not
// pay). Recording raw lines rather than decoded events means a replay
// exercises the same decode path as a live session.
//
// [Replay] feeds a recorded stream back through a line channel, either
// paced by the original offsets or as fast as possible. [Verify] walks
// a file and checks the footer hash without replaying.
package capture
