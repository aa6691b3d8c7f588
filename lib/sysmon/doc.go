// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysmon samples system CPU and memory usage at a fixed
// interval and feeds the metrics channel consumed by the dashboard.
//
// CPU utilization is computed as a delta between sequential /proc/stat
// readings; memory comes from the sysinfo syscall. A sample that
// cannot be read reports zero rather than failing — the metrics pane
// degrades, the dashboard does not.
package sysmon
