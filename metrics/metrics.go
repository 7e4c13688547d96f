// Copyright 2025 The zkeeper Authors
// This file is part of the zkeeper library.
//
// The zkeeper library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The zkeeper library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the zkeeper library. If not, see <http://www.gnu.org/licenses/>.

// Package metrics is zkeeper's own lightweight metrics registry, styled
// after the teacher's in-tree metrics package (see
// probe/downloader/metrics.go: NewRegisteredMeter/Timer/Counter against a
// package-level DefaultRegistry) rather than pulling in an external metrics
// client for a handful of counters.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Counter is an integer metric adjusted by signed deltas.
type Counter struct {
	v int64
}

func (c *Counter) Inc(delta int64) { atomic.AddInt64(&c.v, delta) }
func (c *Counter) Count() int64    { return atomic.LoadInt64(&c.v) }

// Meter tracks a running count of occurrences, used for per-outcome rates
// (e.g. one meter per sync strategy chosen).
type Meter struct {
	v int64
}

func (m *Meter) Mark(n int64) { atomic.AddInt64(&m.v, n) }
func (m *Meter) Count() int64 { return atomic.LoadInt64(&m.v) }

// Timer records a count and total duration of timed events, enough to
// derive a mean without a full histogram implementation.
type Timer struct {
	mu    sync.Mutex
	count int64
	total time.Duration
}

func (t *Timer) UpdateSince(start time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.total += time.Since(start)
}

func (t *Timer) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *Timer) Mean() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		return 0
	}
	return t.total / time.Duration(t.count)
}

// registry is the package-level store every NewRegistered* call registers
// into, mirroring the teacher's DefaultRegistry singleton.
var (
	regMu sync.Mutex
	reg   = map[string]any{}
)

// NewRegisteredCounter creates (or returns the existing) named counter.
func NewRegisteredCounter(name string) *Counter {
	regMu.Lock()
	defer regMu.Unlock()
	if c, ok := reg[name].(*Counter); ok {
		return c
	}
	c := &Counter{}
	reg[name] = c
	return c
}

// NewRegisteredMeter creates (or returns the existing) named meter.
func NewRegisteredMeter(name string) *Meter {
	regMu.Lock()
	defer regMu.Unlock()
	if m, ok := reg[name].(*Meter); ok {
		return m
	}
	m := &Meter{}
	reg[name] = m
	return m
}

// NewRegisteredTimer creates (or returns the existing) named timer.
func NewRegisteredTimer(name string) *Timer {
	regMu.Lock()
	defer regMu.Unlock()
	if tm, ok := reg[name].(*Timer); ok {
		return tm
	}
	tm := &Timer{}
	reg[name] = tm
	return tm
}

// Snapshot returns every registered metric's current value, keyed by
// name (use Names for a sorted order), for diagnostics (e.g. a future /debug/metrics endpoint).
func Snapshot() map[string]int64 {
	regMu.Lock()
	defer regMu.Unlock()
	out := make(map[string]int64, len(reg))
	for name, m := range reg {
		switch v := m.(type) {
		case *Counter:
			out[name] = v.Count()
		case *Meter:
			out[name] = v.Count()
		case *Timer:
			out[name] = v.Count()
		}
	}
	return out
}

// Names returns the sorted names of every registered metric.
func Names() []string {
	regMu.Lock()
	defer regMu.Unlock()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
