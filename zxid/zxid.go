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

// Package zxid implements ZAB transaction-id arithmetic: a 64-bit value
// split into a 32-bit epoch (high) and a 32-bit counter (low). Comparisons
// are always unsigned, since the raw int64 representation goes negative
// once the epoch's top bit is set.
package zxid

import "fmt"

// Zxid is a transaction id: epoch in the high 32 bits, counter in the low
// 32 bits. The zero value means "empty history".
type Zxid uint64

// Empty is the sentinel zxid meaning "no history yet".
const Empty Zxid = 0

// Make builds a zxid from an epoch and a counter.
func Make(epoch, counter uint32) Zxid {
	return Zxid(uint64(epoch)<<32 | uint64(counter))
}

// Epoch returns the high 32 bits.
func (z Zxid) Epoch() uint32 {
	return uint32(uint64(z) >> 32)
}

// Counter returns the low 32 bits.
func (z Zxid) Counter() uint32 {
	return uint32(uint64(z) & 0xFFFFFFFF)
}

// NewLeader returns the synthetic marker zxid stamped on the data tree the
// moment a leader takes over a new epoch: (epoch, 0). It has no backing
// proposal in the txn log (I4).
func NewLeader(epoch uint32) Zxid {
	return Make(epoch, 0)
}

// Less reports whether z is ordered before o. Comparison is always
// unsigned-lexicographic on (epoch, counter); callers must never compare
// the raw int64 form as signed.
func (z Zxid) Less(o Zxid) bool {
	return uint64(z) < uint64(o)
}

// Predecessor returns the zxid immediately before z. Used by the sync
// decider to probe "is there a proposal with zxid exactly z" against an
// iterator contract that only returns entries strictly greater than its
// argument: iterate from Predecessor(z) and compare the first result.
// Predecessor(Empty) wraps to the maximum Zxid; callers never probe at
// Empty, since Empty itself means "no history".
func (z Zxid) Predecessor() Zxid {
	return Zxid(uint64(z) - 1)
}

func (z Zxid) String() string {
	return fmt.Sprintf("%x/%x", z.Epoch(), z.Counter())
}
