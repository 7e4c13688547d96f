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

// Package clock implements §6's Clock collaborator: wallNow() and
// elapsedNow(). It is modeled on the mclock.Clock split surveyed in
// ethereum-go-ethereum/common/mclock (a System implementation backed by the
// real clock, and a Simulated implementation tests can advance by hand) so
// the reaper's rate limiting is deterministically testable without real
// sleeps.
package clock

import "time"

// Clock is the collaborator interface named in §6: wallNow for wall-clock
// timestamps used against node mtimes, elapsedNow for measuring elapsed
// durations within a single sweep.
type Clock interface {
	// WallNow returns the current wall-clock time in milliseconds since
	// the Unix epoch.
	WallNow() int64
	// ElapsedNow returns a monotonic instant suitable only for measuring
	// durations via Since; it carries no absolute meaning.
	ElapsedNow() time.Time
	// Sleep blocks for d, honouring the clock's notion of time. On the
	// real clock this is time.Sleep; on the simulated clock it returns as
	// soon as the fake time has been advanced past the deadline.
	Sleep(d time.Duration)
}

// System is the real wall clock.
type System struct{}

func (System) WallNow() int64            { return time.Now().UnixMilli() }
func (System) ElapsedNow() time.Time     { return time.Now() }
func (System) Sleep(d time.Duration)     { time.Sleep(d) }

var _ Clock = System{}
