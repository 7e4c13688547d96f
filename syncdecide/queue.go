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

import (
	"sync"

	"github.com/probeum/zkeeper/zxid"
)

// LearnerSink is the cyclic-reference-free boundary from §9's design
// note: rather than the learner handler and leader holding references to
// each other, the decider talks to the handler only through this narrow
// message-passing interface. It is the packet queue (Q) and the
// "NotifyForwardFrom" handoff to the broadcast layer combined, since both
// are produced by the same Decide call and always travel together.
type LearnerSink interface {
	// EnqueuePacket hands one packet to the transport layer for delivery
	// to the learner, in the order the decider produced it.
	EnqueuePacket(p QuorumPacket) error
	// NotifyForwardFrom tells the broadcast layer the zxid from which it
	// must resume forwarding newly committed proposals (forward strictly
	// greater than z).
	NotifyForwardFrom(z zxid.Zxid) error
}

// MemorySink is a single-producer, single-consumer in-memory LearnerSink,
// used by tests and by the demo command in place of a real transport
// connection. It enforces §4.3's first-packet discipline: the first
// packet enqueued after a Reset must be DIFF or TRUNC, a programming
// error otherwise.
type MemorySink struct {
	mu          sync.Mutex
	packets     []QuorumPacket
	sawFirst    bool
	forwardFrom zxid.Zxid
	forwardSet  bool
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) EnqueuePacket(p QuorumPacket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sawFirst {
		if p.Type != DIFF && p.Type != TRUNC {
			panic("syncdecide: first packet enqueued must be DIFF or TRUNC")
		}
		s.sawFirst = true
	}
	s.packets = append(s.packets, p)
	return nil
}

func (s *MemorySink) NotifyForwardFrom(z zxid.Zxid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwardFrom = z
	s.forwardSet = true
	return nil
}

// Packets returns a copy of every packet enqueued so far.
func (s *MemorySink) Packets() []QuorumPacket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QuorumPacket, len(s.packets))
	copy(out, s.packets)
	return out
}

// ForwardFrom returns the last zxid passed to NotifyForwardFrom and
// whether it has been set at all.
func (s *MemorySink) ForwardFrom() (zxid.Zxid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forwardFrom, s.forwardSet
}

// Reset clears the sink so it can be reused across multiple decisions in
// a single test, re-arming the first-packet discipline.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets = nil
	s.sawFirst = false
	s.forwardSet = false
}

var _ LearnerSink = (*MemorySink)(nil)
