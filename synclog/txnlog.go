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

package synclog

import "github.com/probeum/zkeeper/zxid"

// TxnIterator is a restartable forward iterator over the on-disk
// transaction log. It owns an open file handle (or whatever resource the
// concrete log implementation holds) and must be Released on every exit
// path, including error paths; it must never be returned across L's lock
// boundary.
type TxnIterator interface {
	// Next advances to and returns the next proposal, or ok=false when
	// exhausted.
	Next() (p Proposal, ok bool)
	// Release frees the iterator's underlying resources. Safe to call
	// more than once.
	Release()
}

// TxnLog is the external collaborator (§1: "the on-disk snapshot and
// transaction-log encoders ... we consume them as iterators") exposing the
// persisted, append-only proposal sequence.
type TxnLog interface {
	// IterateFrom returns a scoped iterator over every proposal with
	// zxid > after, honouring sizeLimit as an implementation-defined hint
	// for how much to read ahead. When after precedes the log's oldest
	// entry, the iterator starts at that oldest entry; the sync decider
	// relies on this to find the earliest zxid it can serve.
	IterateFrom(after zxid.Zxid, sizeLimit uint64) (TxnIterator, error)
}

// sliceTxnLog is an in-memory TxnLog used by tests and by the demo
// command; production deployments back TxnLog with the real on-disk log.
type sliceTxnLog struct {
	entries []Proposal // strictly increasing by zxid; duplicates tolerated
}

// NewSliceTxnLog builds a TxnLog over a fixed, strictly-increasing (modulo
// tolerated duplicates, §4.3 "Duplicate tolerance") slice of proposals.
func NewSliceTxnLog(entries []Proposal) TxnLog {
	cp := make([]Proposal, len(entries))
	copy(cp, entries)
	return &sliceTxnLog{entries: cp}
}

func (l *sliceTxnLog) IterateFrom(after zxid.Zxid, _ uint64) (TxnIterator, error) {
	start := len(l.entries)
	for i, p := range l.entries {
		if after.Less(p.Zxid) {
			start = i
			break
		}
	}
	return &sliceTxnIterator{entries: l.entries, pos: start}, nil
}

type sliceTxnIterator struct {
	entries []Proposal
	pos     int
	done    bool
}

func (it *sliceTxnIterator) Next() (Proposal, bool) {
	if it.done || it.pos >= len(it.entries) {
		return Proposal{}, false
	}
	p := it.entries[it.pos]
	it.pos++
	return p, true
}

func (it *sliceTxnIterator) Release() { it.done = true }

var _ TxnLog = (*sliceTxnLog)(nil)
var _ TxnIterator = (*sliceTxnIterator)(nil)
