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

// Package rlp reproduces, from the teacher's in-tree rlp package, only the
// one primitive this module needs: RawValue, an already-encoded (or not-yet-decoded) byte blob
// carried opaquely through a Proposal's payload. The full encoder/decoder
// (Stream, Kind, struct-tag reflection) is not ported: §1's Non-goals place
// wire encoding of packets and the snapshot/log format out of scope, so the
// sync decider only ever needs a payload's length, never its structure.
package rlp

// RawValue holds an RLP-encoded (or encoding-pending) byte string without
// decoding it. Proposal.Payload is a RawValue so the decider can measure
// §4.3's txn-log size budget without understanding the transaction inside.
type RawValue []byte

// Bytes returns the underlying byte slice.
func (r RawValue) Bytes() []byte { return []byte(r) }

// Len returns the number of bytes the payload occupies.
func (r RawValue) Len() int { return len(r) }
