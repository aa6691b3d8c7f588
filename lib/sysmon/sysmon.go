// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package sysmon

import (
	"context"
	"log/slog"
	"time"

	"github.com/frontmcp/devdash/lib/ingest"
)

// SampleInterval is how often the sampler reads CPU and memory.
const SampleInterval = time.Second

// Sampler produces one MetricsSample per interval on a dedicated
// goroutine. Sends never block: when the consumer is behind, the stale
// sample is dropped.
type Sampler struct {
	logger   *slog.Logger
	previous *CPUReading
}

// NewSampler creates a sampler. Run starts it.
func NewSampler(logger *slog.Logger) *Sampler {
	return &Sampler{logger: logger}
}

// Run samples until ctx is cancelled. The first tick has no previous
// CPU reading and reports 0%.
func (sampler *Sampler) Run(ctx context.Context, samples chan<- ingest.MetricsSample) {
	ticker := time.NewTicker(SampleInterval)
	defer ticker.Stop()

	sampler.previous = ReadCPUStats()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current := ReadCPUStats()
		used, total := ReadMemory()
		sample := ingest.MetricsSample{
			CPUPercent:  CPUPercent(sampler.previous, current),
			MemoryUsed:  used,
			MemoryTotal: total,
		}
		sampler.previous = current

		select {
		case samples <- sample:
		default:
		}
	}
}
