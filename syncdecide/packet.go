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

// Package syncdecide implements the sync decider (D): given a learner's
// last-known zxid and the replicated log view (L), it picks SNAP, DIFF,
// TRUNC, or TRUNC+DIFF and produces the ordered packet sequence to enqueue.
package syncdecide

import (
	"github.com/probeum/zkeeper/synclog"
	"github.com/probeum/zkeeper/zxid"
)

// PacketType identifies a QuorumPacket's role. The wire identifiers
// (numeric tags) belong to the surrounding ZAB implementation per §6 and
// are not a design choice of this core; only the ordering and shape of
// the sequence the decider emits are in scope.
type PacketType int

const (
	DIFF PacketType = iota
	TRUNC
	SNAPPacket
	PROPOSAL
	COMMIT
)

func (t PacketType) String() string {
	switch t {
	case DIFF:
		return "DIFF"
	case TRUNC:
		return "TRUNC"
	case SNAPPacket:
		return "SNAP"
	case PROPOSAL:
		return "PROPOSAL"
	case COMMIT:
		return "COMMIT"
	default:
		return "UNKNOWN"
	}
}

// QuorumPacket is one wire packet as the decider's output models it: a
// type tag, an anchor zxid (meaningful for DIFF/TRUNC/COMMIT), and the
// proposal payload (meaningful for PROPOSAL only).
type QuorumPacket struct {
	Type     PacketType
	Zxid     zxid.Zxid
	Proposal *synclog.Proposal
}

func diffPacket(z zxid.Zxid) QuorumPacket  { return QuorumPacket{Type: DIFF, Zxid: z} }
func truncPacket(z zxid.Zxid) QuorumPacket { return QuorumPacket{Type: TRUNC, Zxid: z} }

func proposalCommit(p synclog.Proposal) []QuorumPacket {
	pp := p
	return []QuorumPacket{
		{Type: PROPOSAL, Zxid: p.Zxid, Proposal: &pp},
		{Type: COMMIT, Zxid: p.Zxid},
	}
}
