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
	"errors"
	"time"

	"github.com/probeum/zkeeper/log"
	"github.com/probeum/zkeeper/synclog"
	"github.com/probeum/zkeeper/zkerr"
	"github.com/probeum/zkeeper/zxid"
)

// Decider is the sync decider (D): given a learner's last-known zxid and
// the log view, it picks SNAP, DIFF, or TRUNC(+DIFF) and produces the
// ordered packet sequence to enqueue. A Decider is stateless and safe for
// concurrent use; all state lives in the LogView it is handed per call.
type Decider struct {
	log log.Logger

	// Trace, if set, is called once per algorithm step taken while
	// building a plan, naming the step and the values that decided it.
	// Left nil by default; EnableTrace wires it to d.log.Debug for
	// operators who need to see which of §4.3's numbered steps fired.
	Trace func(step string, args ...any)
}

// NewDecider builds a Decider. A nil logger falls back to the package
// root logger, mirroring the teacher's nil-logger convention.
func NewDecider(logger log.Logger) *Decider {
	if logger == nil {
		logger = log.Root()
	}
	return &Decider{log: logger}
}

// EnableTrace wires Trace to this Decider's logger at debug level.
func (d *Decider) EnableTrace() {
	d.Trace = func(step string, args ...any) {
		d.log.Debug("syncdecide step", append([]any{"step", step}, args...)...)
	}
}

func (d *Decider) trace(step string, args ...any) {
	if d.Trace != nil {
		d.Trace(step, args...)
	}
}

// Decide runs the full algorithm from lock acquisition to plan
// construction without suspension, per the concurrency contract: it
// holds view's shared lock for the whole call and never returns it held.
func (d *Decider) Decide(view *synclog.LogView, peerZxid zxid.Zxid) (Plan, error) {
	start := time.Now()
	defer decideTimer.UpdateSince(start)

	if view == nil {
		return Plan{}, zkerr.Wrap(zkerr.ErrFatal, "decide called with a nil log view")
	}

	view.RLock()
	defer view.RUnlock()

	plan, err := d.decideLocked(view, peerZxid)
	if err != nil {
		return Plan{}, err
	}
	markStrategy(plan.Strategy)
	packetsPerPlanCounter.Inc(int64(len(plan.Packets)))
	return plan, nil
}

// downgradesToSnap reports whether err is one of the sync-kind sentinels
// that §7 says must downgrade the decision to SNAP silently, rather than
// escalate to the caller. Anything else — a raw collaborator I/O failure,
// SyncInputInconsistent, or a kind not recognized here — propagates out
// of Decide instead, so the caller can log and drop the connection.
func downgradesToSnap(err error) bool {
	return errors.Is(err, zkerr.ErrTxnLogGap) ||
		errors.Is(err, zkerr.ErrCrossEpochTrunc) ||
		errors.Is(err, zkerr.ErrBudgetExceeded)
}

func (d *Decider) decideLocked(view *synclog.LogView, peerZxid zxid.Zxid) (Plan, error) {
	lpz := view.LastProcessedZxid()
	maxC := view.CommittedWindowMax()
	minC := view.CommittedWindowMin()
	windowEmpty := view.CommittedWindowEmpty()

	// Step 2 (generalized): already in sync. Checked ahead of the
	// ahead/within-window tests below because an equal peer can sit
	// beyond the committed window's upper bound across an epoch
	// boundary (scenario: a NEW_LEADER marker with a stale window from
	// the previous epoch still resident).
	if peerZxid == lpz {
		d.trace("already-in-sync", "peer", peerZxid)
		return d.diffOnly(lpz), nil
	}

	// Step 3: peer ahead of the leader.
	if lpz.Less(peerZxid) {
		d.trace("peer-ahead", "peer", peerZxid, "lpz", lpz)
		return d.truncOnly(lpz), nil
	}

	// Step 4: peer within the committed window.
	if !windowEmpty && !peerZxid.Less(minC) && !maxC.Less(peerZxid) {
		d.trace("within-window", "peer", peerZxid, "minC", minC, "maxC", maxC)
		return d.withinWindow(view, peerZxid, maxC), nil
	}

	// Step 5: peer below the window, or window empty but the txn log
	// might still cover it.
	if (!windowEmpty && peerZxid.Less(minC)) || (windowEmpty && view.TxnLogEnabled()) {
		d.trace("bridging-txn-log", "peer", peerZxid)
		plan, err := d.bridgeFromTxnLog(view, peerZxid, lpz, minC, maxC, windowEmpty)
		if err == nil {
			return plan, nil
		}
		if !downgradesToSnap(err) {
			d.trace("bridge-failed-escalate", "peer", peerZxid, "reason", err)
			return Plan{}, err
		}
		d.trace("bridge-failed-snap", "peer", peerZxid, "reason", err)
	}

	// Step 6: SNAP.
	d.trace("snap", "peer", peerZxid, "lpz", lpz)
	return Plan{Strategy: StrategySNAP, ForwardFromZxid: lpz}, nil
}

func (d *Decider) diffOnly(anchor zxid.Zxid) Plan {
	return Plan{
		Strategy:        StrategyDIFF,
		DiffTo:          anchor,
		ForwardFromZxid: anchor,
		Packets:         []QuorumPacket{diffPacket(anchor)},
	}
}

func (d *Decider) truncOnly(anchor zxid.Zxid) Plan {
	a := anchor
	return Plan{
		Strategy:        StrategyTruncDiff,
		TruncTo:         &a,
		ForwardFromZxid: anchor,
		Packets:         []QuorumPacket{truncPacket(anchor)},
	}
}

// withinWindow implements §4.3 step 4: peer's zxid falls inside
// [minC, maxC]. It locates peer's position in the window to decide
// between a bare DIFF and a TRUNC-then-DIFF, then appends the DIFF-form
// stream of every window proposal strictly after peerZxid.
func (d *Decider) withinWindow(view *synclog.LogView, peerZxid, maxC zxid.Zxid) Plan {
	if peerZxid == maxC {
		return d.diffStream(view, peerZxid, maxC, nil)
	}

	window := view.WindowSnapshot()
	matched := false
	var truncTarget zxid.Zxid
	for _, p := range window {
		if p.Zxid == peerZxid {
			matched = true
		}
		if p.Zxid.Less(peerZxid) {
			truncTarget = p.Zxid
		}
	}

	if matched {
		return d.diffStream(view, peerZxid, maxC, nil)
	}

	target := truncTarget
	return d.diffStream(view, peerZxid, maxC, &target)
}

// diffStream builds the packet sequence for §4.3 step 4: a bare
// [DIFF(maxC)] when peerZxid matches an entry already in the window, or
// just [TRUNC(truncTo)] with no separate DIFF packet when it forked —
// the window's (PROPOSAL, COMMIT) stream alone re-establishes agreement
// once the follower has rolled back. Either way it's followed by
// (PROPOSAL, COMMIT) pairs for every window proposal with zxid > peerZxid.
func (d *Decider) diffStream(view *synclog.LogView, peerZxid, maxC zxid.Zxid, truncTo *zxid.Zxid) Plan {
	var packets []QuorumPacket
	strategy := StrategyDIFF
	if truncTo != nil {
		packets = append(packets, truncPacket(*truncTo))
		strategy = StrategyTruncDiff
	} else {
		packets = append(packets, diffPacket(maxC))
	}

	for _, p := range view.IterateCommittedFrom(peerZxid) {
		packets = append(packets, proposalCommit(p)...)
	}

	return Plan{
		Strategy:        strategy,
		TruncTo:         truncTo,
		DiffTo:          maxC,
		ForwardFromZxid: maxC,
		Packets:         packets,
	}
}

// bridgeFromTxnLog implements §4.3 step 5: the peer's zxid is not
// servable from the in-memory window alone, so it attempts to bridge
// from the on-disk transaction log, merging into the window once the
// iterator reaches window territory. A returned TxnLogGap, CrossEpochTrunc,
// or BudgetExceeded means "fall back to SNAP" (the caller discriminates via
// downgradesToSnap); any other error is a genuine input/collaborator
// failure that must escalate instead.
func (d *Decider) bridgeFromTxnLog(view *synclog.LogView, peerZxid, lpz, minC, maxC zxid.Zxid, windowEmpty bool) (Plan, error) {
	if !view.TxnLogEnabled() {
		return Plan{}, zkerr.Wrap(zkerr.ErrBudgetExceeded, "txn log disabled for peer %v", peerZxid)
	}

	earliest, hasEarliest, err := d.earliestAvailable(view, windowEmpty, minC)
	if err != nil {
		return Plan{}, err
	}
	if hasEarliest && !view.EpochPresent(peerZxid.Epoch()) && earliest.Less(peerZxid) {
		return Plan{}, zkerr.Wrap(zkerr.ErrCrossEpochTrunc, "peer %v epoch not servable", peerZxid)
	}

	target := lpz
	if !windowEmpty {
		target = maxC
	}

	forked, truncTarget, err := d.locateInTxnLog(view, peerZxid)
	if err != nil {
		return Plan{}, err
	}

	var truncTo *zxid.Zxid
	if forked {
		if truncTarget == nil {
			return Plan{}, zkerr.Wrap(zkerr.ErrTxnLogGap, "peer %v forked with no prior txn-log entry", peerZxid)
		}
		truncTo = truncTarget
	}

	packets, lastShipped, budgetUsed, err := d.shipTxnLogRange(view, peerZxid, target, windowEmpty, minC)
	if err != nil {
		return Plan{}, err
	}

	if !windowEmpty {
		if uint64(lastShipped) < uint64(minC)-1 {
			return Plan{}, zkerr.Wrap(zkerr.ErrTxnLogGap, "gap between txn log (%v) and window (%v)", lastShipped, minC)
		}
		for _, p := range view.IterateCommittedFrom(lastShipped) {
			packets = append(packets, proposalCommit(p)...)
		}
	}

	if budgetUsed > view.TxnLogSizeBudget() {
		return Plan{}, zkerr.Wrap(zkerr.ErrBudgetExceeded, "peer %v would cost %d bytes", peerZxid, budgetUsed)
	}

	strategy := StrategyDIFF
	head := []QuorumPacket{diffPacket(target)}
	if truncTo != nil {
		strategy = StrategyTruncDiff
		head = []QuorumPacket{truncPacket(*truncTo), diffPacket(target)}
	}

	return Plan{
		Strategy:        strategy,
		TruncTo:         truncTo,
		DiffTo:          target,
		ForwardFromZxid: target,
		Packets:         append(head, packets...),
	}, nil
}

// earliestAvailable reports the smallest zxid the leader could serve from
// either the txn log or, absent one, the committed window, for the
// cross-epoch TRUNC guard. A collaborator I/O failure opening the txn log
// is a genuine input inconsistency ("log unreadable", §7), not a reason
// to silently treat the log as empty, so it is surfaced rather than
// swallowed.
func (d *Decider) earliestAvailable(view *synclog.LogView, windowEmpty bool, minC zxid.Zxid) (zxid.Zxid, bool, error) {
	it, err := view.IterateTxnLogFrom(zxid.Empty)
	if err != nil {
		return zxid.Empty, false, zkerr.Wrap(zkerr.ErrSyncInputInconsistent, "txn log unreadable: %v", err)
	}
	defer it.Release()
	if p, ok := it.Next(); ok {
		return p.Zxid, true, nil
	}
	if !windowEmpty {
		return minC, true, nil
	}
	return zxid.Empty, false, nil
}

// locateInTxnLog determines whether the txn log holds a proposal with
// zxid exactly equal to peerZxid (not forked), or the peer has forked
// away from leader history (some proposal with a different payload once
// occupied that slot and the log now shows a strictly greater zxid
// there). Because iterateTxnLogFrom only returns entries strictly
// greater than its argument, exact-match detection probes one position
// earlier via zxid.Predecessor, per the design note on the iterator
// contract.
func (d *Decider) locateInTxnLog(view *synclog.LogView, peerZxid zxid.Zxid) (forked bool, truncTarget *zxid.Zxid, err error) {
	if peerZxid == zxid.Empty {
		it, e := view.IterateTxnLogFrom(zxid.Empty)
		if e != nil {
			return false, nil, zkerr.Wrap(zkerr.ErrSyncInputInconsistent, "txn log unreadable: %v", e)
		}
		defer it.Release()
		_, ok := it.Next()
		return false, nil, boolToEmptyIterErr(ok)
	}

	it, e := view.IterateTxnLogFrom(peerZxid.Predecessor())
	if e != nil {
		return false, nil, zkerr.Wrap(zkerr.ErrSyncInputInconsistent, "txn log unreadable: %v", e)
	}
	defer it.Release()

	first, ok := it.Next()
	if !ok {
		return false, nil, zkerr.Wrap(zkerr.ErrTxnLogGap, "txn log empty at peer %v", peerZxid)
	}
	if first.Zxid == peerZxid {
		return false, nil, nil
	}

	// Forked: the TRUNC target is the greatest zxid below peerZxid that
	// the txn log actually holds; if it holds none, there is nothing to
	// truncate to and the caller must fall back to SNAP.
	scan, e := view.IterateTxnLogFrom(zxid.Empty)
	if e != nil {
		return false, nil, zkerr.Wrap(zkerr.ErrSyncInputInconsistent, "txn log unreadable: %v", e)
	}
	defer scan.Release()
	var target *zxid.Zxid
	for {
		p, ok := scan.Next()
		if !ok || !p.Zxid.Less(peerZxid) {
			break
		}
		found := p.Zxid
		target = &found
	}
	return true, target, nil
}

func boolToEmptyIterErr(ok bool) error {
	if ok {
		return nil
	}
	return zkerr.Wrap(zkerr.ErrTxnLogGap, "txn log has no entries")
}

// shipTxnLogRange iterates the txn log from peerZxid up to (but not
// including, when the window is non-empty) the window's minimum,
// accumulating PROPOSAL/COMMIT packets and the running payload size
// used by the budget check. It returns the zxid of the last proposal
// shipped this way, or peerZxid if none were.
func (d *Decider) shipTxnLogRange(view *synclog.LogView, peerZxid, target zxid.Zxid, windowEmpty bool, minC zxid.Zxid) (packets []QuorumPacket, lastShipped zxid.Zxid, budgetUsed uint64, err error) {
	it, e := view.IterateTxnLogFrom(peerZxid)
	if e != nil {
		return nil, peerZxid, 0, zkerr.Wrap(zkerr.ErrSyncInputInconsistent, "txn log unreadable: %v", e)
	}
	defer it.Release()

	lastShipped = peerZxid
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		if !windowEmpty && !p.Zxid.Less(minC) {
			break
		}
		if target.Less(p.Zxid) {
			break
		}
		packets = append(packets, proposalCommit(p)...)
		lastShipped = p.Zxid
		budgetUsed += p.Size()
	}
	return packets, lastShipped, budgetUsed, nil
}
