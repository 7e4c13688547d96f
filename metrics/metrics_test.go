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

package metrics

import (
	"testing"
	"time"
)

func TestCounterAndMeter(t *testing.T) {
	c := NewRegisteredCounter("test/counter")
	c.Inc(3)
	c.Inc(-1)
	if c.Count() != 2 {
		t.Fatalf("counter = %d, want 2", c.Count())
	}

	m := NewRegisteredMeter("test/meter")
	m.Mark(5)
	if m.Count() != 5 {
		t.Fatalf("meter = %d, want 5", m.Count())
	}
}

func TestRegisteredReturnsSameInstance(t *testing.T) {
	a := NewRegisteredCounter("test/shared")
	b := NewRegisteredCounter("test/shared")
	a.Inc(1)
	if b.Count() != 1 {
		t.Fatal("expected NewRegisteredCounter to return the same instance for a repeated name")
	}
}

func TestTimerMean(t *testing.T) {
	tm := NewRegisteredTimer("test/timer")
	tm.UpdateSince(time.Now().Add(-10 * time.Millisecond))
	tm.UpdateSince(time.Now().Add(-20 * time.Millisecond))
	if tm.Count() != 2 {
		t.Fatalf("count = %d, want 2", tm.Count())
	}
	if tm.Mean() <= 0 {
		t.Fatal("expected positive mean duration")
	}
}

func TestSnapshotAndNames(t *testing.T) {
	NewRegisteredCounter("test/snapshot").Inc(4)
	snap := Snapshot()
	if snap["test/snapshot"] != 4 {
		t.Fatalf("snapshot[test/snapshot] = %d, want 4", snap["test/snapshot"])
	}
	found := false
	for _, name := range Names() {
		if name == "test/snapshot" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected test/snapshot in Names()")
	}
}
