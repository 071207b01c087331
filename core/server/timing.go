/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Arenaboard Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"log/slog"
	"time"
)

// timingEntry is one measured step of a request.
type timingEntry struct {
	operation string
	duration  time.Duration
}

// TimingCollector collects timing measurements for the steps of a request.
type TimingCollector struct {
	entries []timingEntry
	start   time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.entries = append(tc.entries, timingEntry{operation: operation, duration: duration})
}

// Since records the time elapsed since start.
func (tc *TimingCollector) Since(operation string, start time.Time) {
	tc.Record(operation, time.Since(start))
}

// Total returns the time elapsed since the collector was created.
func (tc *TimingCollector) Total() time.Duration {
	return time.Since(tc.start)
}

// LogValue groups the entries, in milliseconds, for structured logging.
func (tc *TimingCollector) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(tc.entries)+1)
	for _, e := range tc.entries {
		attrs = append(attrs, slog.Float64(e.operation, millis(e.duration)))
	}
	attrs = append(attrs, slog.Float64("total", millis(tc.Total())))
	return slog.GroupValue(attrs...)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
