// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package sysmon

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStat(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stat")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing stat file: %v", err)
	}
	return path
}

func TestReadCPUStatsParsesFirstLine(t *testing.T) {
	path := writeStat(t, "cpu  100 10 50 800 40 5 5 0 0 0\ncpu0 50 5 25 400 20 2 2 0 0 0\n")

	reading := readCPUStatsFrom(path)
	if reading == nil {
		t.Fatal("reading is nil")
	}
	// busy = 100+10+50+5+5+0 = 170, idle = 800+40 = 840
	if reading.Busy != 170 {
		t.Errorf("busy = %d, want 170", reading.Busy)
	}
	if reading.Idle != 840 {
		t.Errorf("idle = %d, want 840", reading.Idle)
	}
}

func TestReadCPUStatsMalformed(t *testing.T) {
	cases := []string{
		"",
		"intr 12345\n",
		"cpu 1 2 3\n",
		"cpu a b c d e f g h\n",
	}
	for _, content := range cases {
		if reading := readCPUStatsFrom(writeStat(t, content)); reading != nil {
			t.Errorf("readCPUStatsFrom(%q) = %+v, want nil", content, reading)
		}
	}
}

func TestCPUPercent(t *testing.T) {
	previous := &CPUReading{Busy: 100, Idle: 900}
	current := &CPUReading{Busy: 150, Idle: 950}

	// 50 busy out of 100 total delta.
	if got := CPUPercent(previous, current); got != 50 {
		t.Errorf("percent = %v, want 50", got)
	}
}

func TestCPUPercentDegenerateCases(t *testing.T) {
	reading := &CPUReading{Busy: 100, Idle: 900}
	if got := CPUPercent(nil, reading); got != 0 {
		t.Errorf("nil previous = %v", got)
	}
	if got := CPUPercent(reading, nil); got != 0 {
		t.Errorf("nil current = %v", got)
	}
	if got := CPUPercent(reading, reading); got != 0 {
		t.Errorf("zero delta = %v", got)
	}
}

func TestReadMemoryReportsTotal(t *testing.T) {
	used, total := ReadMemory()
	if total == 0 {
		t.Skip("sysinfo unavailable")
	}
	if used > total {
		t.Errorf("used %d exceeds total %d", used, total)
	}
}
