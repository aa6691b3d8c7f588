// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package sysmon

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// CPUReading captures cumulative CPU time from /proc/stat for delta
// computation. The first line aggregates all CPUs:
//
//	cpu  user nice system idle iowait irq softirq steal guest guest_nice
//
// busy = user + nice + system + irq + softirq + steal
// idle = idle + iowait
//
// guest and guest_nice are already included in user/nice by the kernel
// so they are not added separately.
type CPUReading struct {
	Busy uint64
	Idle uint64
}

// ReadCPUStats parses the first line of /proc/stat. Returns nil on any
// read or parse failure; the caller treats nil as "report 0%".
func ReadCPUStats() *CPUReading {
	return readCPUStatsFrom("/proc/stat")
}

func readCPUStatsFrom(path string) *CPUReading {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return nil
	}

	fields := strings.Fields(scanner.Text())
	if len(fields) < 9 || fields[0] != "cpu" {
		return nil
	}

	values := make([]uint64, len(fields)-1)
	for i := 1; i < len(fields); i++ {
		parsed, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return nil
		}
		values[i-1] = parsed
	}

	// 0=user, 1=nice, 2=system, 3=idle, 4=iowait, 5=irq, 6=softirq,
	// 7=steal
	busy := values[0] + values[1] + values[2] + values[5] + values[6] + values[7]
	idle := values[3] + values[4]
	return &CPUReading{Busy: busy, Idle: idle}
}

// CPUPercent computes utilization from two sequential readings.
// Returns 0 if either reading is nil or no time has passed.
func CPUPercent(previous, current *CPUReading) float64 {
	if previous == nil || current == nil {
		return 0
	}
	busyDelta := current.Busy - previous.Busy
	idleDelta := current.Idle - previous.Idle
	totalDelta := busyDelta + idleDelta
	if totalDelta == 0 {
		return 0
	}
	return float64(busyDelta) / float64(totalDelta) * 100
}

// ReadMemory returns used and total system memory in bytes via
// sysinfo. Returns zeros if the syscall fails.
func ReadMemory() (used, total uint64) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0
	}
	totalBytes := uint64(info.Totalram) * uint64(info.Unit)
	freeBytes := uint64(info.Freeram) * uint64(info.Unit)
	if totalBytes < freeBytes {
		return 0, 0
	}
	return totalBytes - freeBytes, totalBytes
}
