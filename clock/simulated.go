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

package clock

import (
	"sync"
	"time"
)

// Simulated is a fake Clock that only advances when Run is called. Tests
// use it to assert the reaper's per-minute rate cap (P5) without sleeping
// in real time, the same role ethereum-go-ethereum/common/mclock.Simulated
// plays for its timer tests.
type Simulated struct {
	mu  sync.Mutex
	now time.Duration
}

// Run advances the simulated clock by d and wakes any Sleep calls whose
// deadline has passed.
func (s *Simulated) Run(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
}

func (s *Simulated) WallNow() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now.Milliseconds()
}

func (s *Simulated) ElapsedNow() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Unix(0, 0).Add(s.now)
}

// Sleep busy-polls the simulated clock until it has been advanced by at
// least d past the call time. Intended for tests only: callers drive
// progress from another goroutine via Run.
func (s *Simulated) Sleep(d time.Duration) {
	deadline := s.ElapsedNow().Add(d)
	for s.ElapsedNow().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

var _ Clock = &Simulated{}
