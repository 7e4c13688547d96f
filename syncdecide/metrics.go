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

// Contains the metrics collected by the sync decider, one meter per
// outcome plus a timer for decision latency, styled directly after
// probe/downloader/metrics.go's per-phase meter-and-timer layout.
package syncdecide

import "github.com/probeum/zkeeper/metrics"

var (
	diffMeter      = metrics.NewRegisteredMeter("zkeeper/syncdecide/strategy/diff")
	truncDiffMeter = metrics.NewRegisteredMeter("zkeeper/syncdecide/strategy/truncdiff")
	snapMeter      = metrics.NewRegisteredMeter("zkeeper/syncdecide/strategy/snap")

	decideTimer = metrics.NewRegisteredTimer("zkeeper/syncdecide/decide")

	packetsPerPlanCounter = metrics.NewRegisteredCounter("zkeeper/syncdecide/packets_shipped")
)

func markStrategy(s Strategy) {
	switch s {
	case StrategyDIFF:
		diffMeter.Mark(1)
	case StrategyTruncDiff:
		truncDiffMeter.Mark(1)
	case StrategySNAP:
		snapMeter.Mark(1)
	}
}
