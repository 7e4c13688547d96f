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

// Package synclog implements the replicated log view (L): a read-only
// facade over the leader's in-memory committed proposal window, the
// on-disk transaction log, and the data tree's lastProcessedZxid.
package synclog

import (
	"github.com/probeum/zkeeper/rlp"
	"github.com/probeum/zkeeper/zxid"
)

// Proposal is an immutable, accepted transaction: a zxid and its opaque
// payload. The payload is carried as rlp.RawValue so the sync decider
// never has to decode it, only measure its length against the txn log
// size budget (§4.3 step 5e).
type Proposal struct {
	Zxid    zxid.Zxid
	Payload rlp.RawValue
}

// Size returns the number of payload bytes this proposal would cost to
// ship over DIFF.
func (p Proposal) Size() uint64 {
	return uint64(len(p.Payload))
}
