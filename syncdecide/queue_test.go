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
	"testing"

	"github.com/probeum/zkeeper/zxid"
)

func TestMemorySinkFirstPacketDisciplinePanicsOnViolation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when first packet is not DIFF or TRUNC")
		}
	}()
	s := NewMemorySink()
	s.EnqueuePacket(QuorumPacket{Type: PROPOSAL, Zxid: zxid.Make(0, 1)})
}

func TestMemorySinkAcceptsDiffOrTruncFirst(t *testing.T) {
	s := NewMemorySink()
	if err := s.EnqueuePacket(diffPacket(zxid.Make(0, 1))); err != nil {
		t.Fatal(err)
	}
	if err := s.EnqueuePacket(QuorumPacket{Type: PROPOSAL, Zxid: zxid.Make(0, 2)}); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Packets()); got != 2 {
		t.Fatalf("packets = %d, want 2", got)
	}
}

func TestMemorySinkForwardFrom(t *testing.T) {
	s := NewMemorySink()
	if _, ok := s.ForwardFrom(); ok {
		t.Fatal("expected forwardFrom unset before NotifyForwardFrom")
	}
	if err := s.NotifyForwardFrom(zxid.Make(0, 5)); err != nil {
		t.Fatal(err)
	}
	got, ok := s.ForwardFrom()
	if !ok || got != zxid.Make(0, 5) {
		t.Fatalf("forwardFrom = (%v, %v), want (5, true)", got, ok)
	}
}

func TestMemorySinkResetRearmsDiscipline(t *testing.T) {
	s := NewMemorySink()
	if err := s.EnqueuePacket(truncPacket(zxid.Make(0, 1))); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if len(s.Packets()) != 0 {
		t.Fatal("expected packets cleared after Reset")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected discipline re-armed after Reset")
		}
	}()
	s.EnqueuePacket(QuorumPacket{Type: COMMIT, Zxid: zxid.Make(0, 1)})
}
