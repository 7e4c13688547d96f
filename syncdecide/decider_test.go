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
	"reflect"
	"testing"

	"github.com/probeum/zkeeper/synclog"
	"github.com/probeum/zkeeper/zkerr"
	"github.com/probeum/zkeeper/zxid"
)

// failingTxnLog always fails to open an iterator, simulating an unreadable
// on-disk log (a genuine collaborator I/O failure, distinct from "log has
// no entries").
type failingTxnLog struct{}

func (failingTxnLog) IterateFrom(zxid.Zxid, uint64) (synclog.TxnIterator, error) {
	return nil, errors.New("disk read failure")
}

func z(c uint32) zxid.Zxid { return zxid.Make(0, c) }

func prop(c uint32) synclog.Proposal {
	return synclog.Proposal{Zxid: z(c), Payload: []byte("x")}
}

func buildView(lpz zxid.Zxid, window []uint32, txnLog []uint32, budget uint64) *synclog.LogView {
	var log synclog.TxnLog
	if txnLog != nil {
		entries := make([]synclog.Proposal, len(txnLog))
		for i, c := range txnLog {
			entries[i] = prop(c)
		}
		log = synclog.NewSliceTxnLog(entries)
	}
	v := synclog.NewLogView(log, 0, budget)
	for _, c := range window {
		v.AppendCommitted(prop(c))
	}
	v.SetLastProcessed(lpz)
	return v
}

func packetTypes(p []QuorumPacket) []PacketType {
	out := make([]PacketType, len(p))
	for i, q := range p {
		out[i] = q.Type
	}
	return out
}

func packetZxids(p []QuorumPacket) []zxid.Zxid {
	out := make([]zxid.Zxid, len(p))
	for i, q := range p {
		out[i] = q.Zxid
	}
	return out
}

// Scenario 1: empty window, peer ahead.
func TestDecideScenario1EmptyWindowPeerAhead(t *testing.T) {
	v := buildView(z(1), nil, nil, 0)
	plan, err := NewDecider(nil).Decide(v, z(3))
	if err != nil {
		t.Fatal(err)
	}
	if plan.NeedsSnap() {
		t.Fatal("expected non-snap plan")
	}
	if got, want := packetTypes(plan.Packets), []PacketType{TRUNC}; !reflect.DeepEqual(got, want) {
		t.Fatalf("packets = %v, want %v", got, want)
	}
	if plan.Packets[0].Zxid != z(1) {
		t.Errorf("trunc target = %v, want 1", plan.Packets[0].Zxid)
	}
	if plan.ForwardFromZxid != z(1) {
		t.Errorf("forwardFromZxid = %v, want 1", plan.ForwardFromZxid)
	}
}

// Scenario 2: empty window, peer equal.
func TestDecideScenario2EmptyWindowPeerEqual(t *testing.T) {
	v := buildView(z(1), nil, nil, 0)
	plan, err := NewDecider(nil).Decide(v, z(1))
	if err != nil {
		t.Fatal(err)
	}
	want := []PacketType{DIFF}
	if got := packetTypes(plan.Packets); !reflect.DeepEqual(got, want) {
		t.Fatalf("packets = %v, want %v", got, want)
	}
	if plan.ForwardFromZxid != z(1) {
		t.Errorf("forwardFromZxid = %v, want 1", plan.ForwardFromZxid)
	}
}

// Scenario 3: window covers peer.
func TestDecideScenario3WindowCoversPeer(t *testing.T) {
	v := buildView(z(6), []uint32{2, 3, 5}, nil, 0)
	plan, err := NewDecider(nil).Decide(v, z(2))
	if err != nil {
		t.Fatal(err)
	}
	wantTypes := []PacketType{DIFF, PROPOSAL, COMMIT, PROPOSAL, COMMIT}
	wantZxids := []zxid.Zxid{z(5), z(3), z(3), z(5), z(5)}
	if got := packetTypes(plan.Packets); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("packet types = %v, want %v", got, wantTypes)
	}
	if got := packetZxids(plan.Packets); !reflect.DeepEqual(got, wantZxids) {
		t.Fatalf("packet zxids = %v, want %v", got, wantZxids)
	}
	if plan.ForwardFromZxid != z(5) {
		t.Errorf("forwardFromZxid = %v, want 5", plan.ForwardFromZxid)
	}
}

// Scenario 4: peer inside window but forked.
func TestDecideScenario4PeerForkedInWindow(t *testing.T) {
	v := buildView(z(6), []uint32{2, 3, 5}, nil, 0)
	plan, err := NewDecider(nil).Decide(v, z(4))
	if err != nil {
		t.Fatal(err)
	}
	wantTypes := []PacketType{TRUNC, PROPOSAL, COMMIT}
	wantZxids := []zxid.Zxid{z(3), z(5), z(5)}
	if got := packetTypes(plan.Packets); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("packet types = %v, want %v", got, wantTypes)
	}
	if got := packetZxids(plan.Packets); !reflect.DeepEqual(got, wantZxids) {
		t.Fatalf("packet zxids = %v, want %v", got, wantZxids)
	}
	if plan.ForwardFromZxid != z(5) {
		t.Errorf("forwardFromZxid = %v, want 5", plan.ForwardFromZxid)
	}
}

// Scenario 5: txn log bridges a gap the window doesn't.
func TestDecideScenario5TxnLogBridges(t *testing.T) {
	v := buildView(z(9), []uint32{6, 7, 8}, []uint32{2, 3, 5, 6, 7, 8, 9}, 1<<20)
	plan, err := NewDecider(nil).Decide(v, z(3))
	if err != nil {
		t.Fatal(err)
	}
	wantTypes := []PacketType{DIFF, PROPOSAL, COMMIT, PROPOSAL, COMMIT, PROPOSAL, COMMIT, PROPOSAL, COMMIT}
	wantZxids := []zxid.Zxid{z(8), z(5), z(5), z(6), z(6), z(7), z(7), z(8), z(8)}
	if got := packetTypes(plan.Packets); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("packet types = %v, want %v", got, wantTypes)
	}
	if got := packetZxids(plan.Packets); !reflect.DeepEqual(got, wantZxids) {
		t.Fatalf("packet zxids = %v, want %v", got, wantZxids)
	}
	if plan.ForwardFromZxid != z(8) {
		t.Errorf("forwardFromZxid = %v, want 8", plan.ForwardFromZxid)
	}
}

// Scenario 6: cross-epoch TRUNC forbidden.
func TestDecideScenario6CrossEpochForbidden(t *testing.T) {
	entries := []synclog.Proposal{
		{Zxid: zxid.Make(1, 1), Payload: []byte("x")},
		{Zxid: zxid.Make(2, 1), Payload: []byte("x")},
		{Zxid: zxid.Make(2, 2), Payload: []byte("x")},
		{Zxid: zxid.Make(4, 1), Payload: []byte("x")},
	}
	v := synclog.NewLogView(synclog.NewSliceTxnLog(entries), 0, 1<<20)
	v.SetLastProcessed(zxid.Make(6, 0))

	plan, err := NewDecider(nil).Decide(v, zxid.Make(3, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !plan.NeedsSnap() {
		t.Fatalf("expected SNAP, got %v with packets %v", plan.Strategy, plan.Packets)
	}
}

// Scenario 7: new-epoch peer already in sync despite a stale window.
func TestDecideScenario7NewEpochAlreadyInSync(t *testing.T) {
	v := synclog.NewLogView(nil, 0, 0)
	v.AppendCommitted(synclog.Proposal{Zxid: zxid.Make(1, 1), Payload: []byte("x")})
	v.AppendCommitted(synclog.Proposal{Zxid: zxid.Make(1, 2), Payload: []byte("x")})
	v.SetLastProcessed(zxid.Make(2, 0))

	plan, err := NewDecider(nil).Decide(v, zxid.Make(2, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := []PacketType{DIFF}
	if got := packetTypes(plan.Packets); !reflect.DeepEqual(got, want) {
		t.Fatalf("packets = %v, want %v", got, want)
	}
	if plan.Packets[0].Zxid != zxid.Make(2, 0) {
		t.Errorf("diff anchor = %v, want 2/0", plan.Packets[0].Zxid)
	}
	if plan.ForwardFromZxid != zxid.Make(2, 0) {
		t.Errorf("forwardFromZxid = %v, want 2/0", plan.ForwardFromZxid)
	}
}

// Scenario 8: disk gap forces SNAP.
func TestDecideScenario8DiskGap(t *testing.T) {
	v := buildView(z(8), []uint32{7, 8}, []uint32{2, 3, 4}, 1<<20)
	plan, err := NewDecider(nil).Decide(v, z(3))
	if err != nil {
		t.Fatal(err)
	}
	if !plan.NeedsSnap() {
		t.Fatalf("expected SNAP, got %v with packets %v", plan.Strategy, plan.Packets)
	}
}

func TestDecidePeerZeroTxnLogDisabled(t *testing.T) {
	v := buildView(z(5), nil, []uint32{1, 2, 3}, 0)
	plan, err := NewDecider(nil).Decide(v, zxid.Empty)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.NeedsSnap() {
		t.Fatalf("expected SNAP with txn log disabled, got %v", plan.Strategy)
	}
}

func TestDecideFirstPacketDiscipline(t *testing.T) {
	cases := []struct {
		name   string
		lpz    zxid.Zxid
		window []uint32
		peer   zxid.Zxid
	}{
		{"ahead", z(1), nil, z(3)},
		{"within", z(6), []uint32{2, 3, 5}, z(2)},
		{"forked", z(6), []uint32{2, 3, 5}, z(4)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := buildView(c.lpz, c.window, nil, 0)
			plan, err := NewDecider(nil).Decide(v, c.peer)
			if err != nil {
				t.Fatal(err)
			}
			if plan.NeedsSnap() {
				return
			}
			if len(plan.Packets) == 0 {
				t.Fatal("non-snap plan has no packets")
			}
			head := plan.Packets[0].Type
			if head != DIFF && head != TRUNC {
				t.Errorf("first packet = %v, want DIFF or TRUNC", head)
			}
		})
	}
}

// Duplicate tolerance: a duplicated zxid in the window does not break the
// decision, and produces one (PROPOSAL, COMMIT) pair per occurrence, so the
// packet count is two higher than for the deduplicated window.
func TestDecideDuplicateToleranceEmitsPairPerOccurrence(t *testing.T) {
	v := synclog.NewLogView(nil, 0, 0)
	v.AppendCommitted(prop(2))
	v.AppendCommitted(prop(3))
	v.AppendCommitted(prop(3))
	v.AppendCommitted(prop(5))
	v.SetLastProcessed(z(6))

	plan, err := NewDecider(nil).Decide(v, z(2))
	if err != nil {
		t.Fatal(err)
	}
	// DIFF + 3 proposals (3, 3, 5) each with PROPOSAL+COMMIT = 1 + 6 = 7.
	if len(plan.Packets) != 7 {
		t.Fatalf("packet count = %d, want 7", len(plan.Packets))
	}
}

// A nil log view is a caller bug, not a sync outcome: it must escalate as
// ErrFatal rather than panic or silently fall back to SNAP.
func TestDecideNilViewIsFatal(t *testing.T) {
	_, err := NewDecider(nil).Decide(nil, z(1))
	if !errors.Is(err, zkerr.ErrFatal) {
		t.Fatalf("err = %v, want ErrFatal", err)
	}
}

// An unreadable txn log during the bridging step is a genuine input
// inconsistency (§7 SyncInputInconsistent) that must escalate out of
// Decide, not collapse into a silent SNAP downgrade.
func TestDecideTxnLogReadFailureEscalates(t *testing.T) {
	v := synclog.NewLogView(failingTxnLog{}, 0, 1<<20)
	v.SetLastProcessed(z(5))

	_, err := NewDecider(nil).Decide(v, z(1))
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !errors.Is(err, zkerr.ErrSyncInputInconsistent) {
		t.Fatalf("err = %v, want ErrSyncInputInconsistent", err)
	}
	if downgradesToSnap(err) {
		t.Fatal("SyncInputInconsistent must not downgrade to SNAP")
	}
}

// The three recognized sync-kind sentinels downgrade silently; anything
// else (including a bare, unwrapped error) does not.
func TestDowngradesToSnap(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"txnLogGap", zkerr.Wrap(zkerr.ErrTxnLogGap, "x"), true},
		{"crossEpochTrunc", zkerr.Wrap(zkerr.ErrCrossEpochTrunc, "x"), true},
		{"budgetExceeded", zkerr.Wrap(zkerr.ErrBudgetExceeded, "x"), true},
		{"syncInputInconsistent", zkerr.Wrap(zkerr.ErrSyncInputInconsistent, "x"), false},
		{"fatal", zkerr.Wrap(zkerr.ErrFatal, "x"), false},
		{"bare", errors.New("boom"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := downgradesToSnap(c.err); got != c.want {
				t.Errorf("downgradesToSnap(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

// Round-trip: calling Decide twice with no state change yields an
// identical packet sequence.
func TestDecideIsIdempotent(t *testing.T) {
	v := buildView(z(9), []uint32{6, 7, 8}, []uint32{2, 3, 5, 6, 7, 8, 9}, 1<<20)
	d := NewDecider(nil)
	first, err := d.Decide(v, z(3))
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Decide(v, z(3))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(packetTypes(first.Packets), packetTypes(second.Packets)) {
		t.Fatal("packet types differ across identical calls")
	}
	if !reflect.DeepEqual(packetZxids(first.Packets), packetZxids(second.Packets)) {
		t.Fatal("packet zxids differ across identical calls")
	}
	if first.ForwardFromZxid != second.ForwardFromZxid {
		t.Fatal("forwardFromZxid differs across identical calls")
	}
}
