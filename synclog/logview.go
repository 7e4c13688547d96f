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

import (
	"sync"

	"github.com/probeum/zkeeper/zxid"
)

// LogView is the leader-side replicated log view (L): a read-only facade
// over the in-memory committed proposal window, the on-disk transaction
// log, and the data tree's lastProcessedZxid. The broadcast pipeline (an
// external collaborator referenced only by interface per §1) appends under
// the exclusive side of the lock; the sync decider reads under the shared
// side and must hold it for the entire span of plan construction (§5).
type LogView struct {
	lock sync.RWMutex // guards window and lastProcessed, per §3 "Log lock"

	window        []Proposal // strictly increasing by zxid (I1); bounded
	retention     int        // max entries kept before eviction
	lastProcessed zxid.Zxid

	txnLog     TxnLog
	sizeBudget uint64 // txnLogSizeBudget; 0 disables txn-log-based sync

	epochCache epochCache
}

// NewLogView builds a LogView. retention bounds the in-memory committed
// window; sizeBudget is §6's txnLogSizeBudget (0 disables txn-log sync).
func NewLogView(txnLog TxnLog, retention int, sizeBudget uint64) *LogView {
	return &LogView{
		txnLog:     txnLog,
		retention:  retention,
		sizeBudget: sizeBudget,
	}
}

// RLock/RUnlock expose the shared side of the log lock. The sync decider
// holds this for the entire duration of plan construction (§5): no
// suspension is permitted between RLock and computing forwardFromZxid.
func (v *LogView) RLock()   { v.lock.RLock() }
func (v *LogView) RUnlock() { v.lock.RUnlock() }

// SetLastProcessed updates lastProcessedZxid. Called by the request
// pipeline/apply path after a transaction is applied to the data tree, or
// once after an election with the synthetic NEW_LEADER marker (§3 I4).
// Takes the exclusive lock itself.
func (v *LogView) SetLastProcessed(z zxid.Zxid) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.lastProcessed = z
	v.epochCache.invalidate()
}

// AppendCommitted appends a newly committed proposal to the in-memory
// window and advances lastProcessedZxid to match (I3), evicting the
// oldest entry once retention is exceeded. Takes the exclusive lock
// itself; this is the broadcast pipeline's write path into L.
func (v *LogView) AppendCommitted(p Proposal) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.window = append(v.window, p)
	if v.retention > 0 && len(v.window) > v.retention {
		v.window = v.window[len(v.window)-v.retention:]
	}
	if v.lastProcessed.Less(p.Zxid) {
		v.lastProcessed = p.Zxid
	}
	v.epochCache.invalidate()
}

// --- read-side operations; callers must hold RLock unless noted ---

// LastProcessedZxid returns the zxid of the most recent transaction
// applied to the leader's data tree.
func (v *LogView) LastProcessedZxid() zxid.Zxid { return v.lastProcessed }

// CommittedWindowMin returns the smallest zxid in the committed window, or
// 0 (zxid.Empty) if the window is empty.
func (v *LogView) CommittedWindowMin() zxid.Zxid {
	if len(v.window) == 0 {
		return zxid.Empty
	}
	return v.window[0].Zxid
}

// CommittedWindowMax returns the largest zxid in the committed window, or
// 0 (zxid.Empty) if the window is empty.
func (v *LogView) CommittedWindowMax() zxid.Zxid {
	if len(v.window) == 0 {
		return zxid.Empty
	}
	return v.window[len(v.window)-1].Zxid
}

// CommittedWindowEmpty reports whether the committed window holds no
// proposals.
func (v *LogView) CommittedWindowEmpty() bool { return len(v.window) == 0 }

// WindowSnapshot returns a copy of the committed window in order, for the
// sync decider's within-window scan (§4.3 step 4b: locate a peer zxid's
// exact position, or the largest entry preceding it, for the TRUNC target).
func (v *LogView) WindowSnapshot() []Proposal {
	out := make([]Proposal, len(v.window))
	copy(out, v.window)
	return out
}

// IterateCommittedFrom returns every proposal in the committed window with
// zxid strictly greater than after, in window order. Duplicate zxids (§4.3
// "Duplicate tolerance") are returned as many times as they occur.
func (v *LogView) IterateCommittedFrom(after zxid.Zxid) []Proposal {
	out := make([]Proposal, 0, len(v.window))
	for _, p := range v.window {
		if after.Less(p.Zxid) {
			out = append(out, p)
		}
	}
	return out
}

// IterateTxnLogFrom opens a scoped iterator over the on-disk transaction
// log starting just after z. The caller owns the returned iterator and
// must Release it on every exit path.
func (v *LogView) IterateTxnLogFrom(z zxid.Zxid) (TxnIterator, error) {
	if v.txnLog == nil || v.sizeBudget == 0 {
		return &emptyTxnIterator{}, nil
	}
	return v.txnLog.IterateFrom(z, v.sizeBudget)
}

// TxnLogSizeBudget returns the largest total payload size the leader is
// willing to ship via DIFF rather than SNAP. 0 disables txn-log-based
// sync entirely.
func (v *LogView) TxnLogSizeBudget() uint64 { return v.sizeBudget }

// TxnLogEnabled reports whether a txn log is configured and its budget is
// non-zero.
func (v *LogView) TxnLogEnabled() bool { return v.txnLog != nil && v.sizeBudget > 0 }

// EpochPresent reports whether any proposal with the given epoch is
// available from either the committed window or the on-disk txn log. It
// backs the cross-epoch TRUNC guard (§4.3 step 5a / rationale): a follower
// whose epoch has no bridging proposal anywhere in leader-servable history
// must never be told to TRUNC, because epoch boundaries carry no proposal
// of their own (I4) and TRUNC would leave it unrecoverable by replay.
//
// The window is rescanned each call (cheap: bounded retention); the txn
// log is scanned once per cache lifetime and memoized (SPEC_FULL's epoch
// inventory cache), since it may be far larger than the window.
func (v *LogView) EpochPresent(epoch uint32) bool {
	for _, p := range v.window {
		if p.Zxid.Epoch() == epoch {
			return true
		}
	}
	if !v.epochCache.isScanned() {
		v.scanTxnLogEpochs()
	}
	_, ok := v.epochCache.snapshot()[epoch]
	return ok
}

// scanTxnLogEpochs performs the one-time full pass over the txn log that
// populates the epoch inventory cache.
func (v *LogView) scanTxnLogEpochs() {
	epochs := map[uint32]struct{}{}
	if v.txnLog != nil {
		it, err := v.txnLog.IterateFrom(zxid.Empty, 0)
		if err == nil {
			defer it.Release()
			for {
				p, ok := it.Next()
				if !ok {
					break
				}
				epochs[p.Zxid.Epoch()] = struct{}{}
			}
		}
	}
	v.epochCache.fill(epochs)
}

type emptyTxnIterator struct{}

func (emptyTxnIterator) Next() (Proposal, bool) { return Proposal{}, false }
func (emptyTxnIterator) Release()               {}

var _ TxnIterator = emptyTxnIterator{}
