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

package syncdecide

import "github.com/probeum/zkeeper/zxid"

// Strategy is the recovery strategy the decider chose for a learner.
type Strategy int

const (
	StrategySNAP Strategy = iota
	StrategyDIFF
	StrategyTruncDiff
)

func (s Strategy) String() string {
	switch s {
	case StrategySNAP:
		return "SNAP"
	case StrategyDIFF:
		return "DIFF"
	case StrategyTruncDiff:
		return "TRUNC_DIFF"
	default:
		return "UNKNOWN"
	}
}

// Plan is the outcome of Decider.Decide: the chosen strategy plus, for
// every non-SNAP strategy, the exact ordered packet sequence to enqueue
// and the zxid from which the broadcast layer must resume live forwarding.
type Plan struct {
	Strategy        Strategy
	TruncTo         *zxid.Zxid
	DiffTo          zxid.Zxid
	ForwardFromZxid zxid.Zxid
	Packets         []QuorumPacket
}

// NeedsSnap reports whether the caller must stream a snapshot out-of-band
// instead of relying on Plan.Packets.
func (p Plan) NeedsSnap() bool { return p.Strategy == StrategySNAP }
