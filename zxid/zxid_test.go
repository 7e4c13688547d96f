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

package zxid

import "testing"

func TestMakeRoundTrip(t *testing.T) {
	z := Make(7, 42)
	if z.Epoch() != 7 {
		t.Errorf("Epoch() = %d, want 7", z.Epoch())
	}
	if z.Counter() != 42 {
		t.Errorf("Counter() = %d, want 42", z.Counter())
	}
}

func TestNewLeaderMarker(t *testing.T) {
	z := NewLeader(3)
	if z.Counter() != 0 {
		t.Errorf("NewLeader(3).Counter() = %d, want 0", z.Counter())
	}
	if z.Epoch() != 3 {
		t.Errorf("NewLeader(3).Epoch() = %d, want 3", z.Epoch())
	}
}

func TestLessIsUnsigned(t *testing.T) {
	// The largest counter of epoch 0 must order before the first zxid of
	// epoch 1; and an epoch with its own top bit set would make the int64
	// form negative. Less must not be fooled by that.
	lo := Make(0, 0xFFFFFFFF)
	hi := Make(1, 0)
	if !lo.Less(hi) {
		t.Errorf("expected %v < %v", lo, hi)
	}

	veryHighEpoch := Make(0x80000001, 0)
	smallEpoch := Make(1, 0)
	if !smallEpoch.Less(veryHighEpoch) {
		t.Errorf("expected %v < %v (unsigned compare)", smallEpoch, veryHighEpoch)
	}
}

func TestEmptyIsZero(t *testing.T) {
	if Empty != Make(0, 0) {
		t.Errorf("Empty should equal Make(0, 0)")
	}
}

func TestString(t *testing.T) {
	got := Make(1, 2).String()
	want := "1/2"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
