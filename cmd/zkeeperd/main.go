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

// Command zkeeperd is a thin demonstration binary that wires the
// follower-synchronization decision core's components together against
// in-memory fake collaborators. The transport, election protocol, request
// pipeline, and snapshot/log encoders are out of scope for the core
// itself (consumed only through interfaces), so this command fabricates
// minimal stand-ins for them to exercise a full decide-and-sweep cycle.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/probeum/zkeeper/clock"
	"github.com/probeum/zkeeper/log"
	"github.com/probeum/zkeeper/metrics"
	"github.com/probeum/zkeeper/reaper"
	"github.com/probeum/zkeeper/rlp"
	"github.com/probeum/zkeeper/synclog"
	"github.com/probeum/zkeeper/syncdecide"
	"github.com/probeum/zkeeper/zxid"
)

var (
	retentionFlag = cli.IntFlag{
		Name:  "sync.retention",
		Usage: "Max entries retained in the in-memory committed window",
	}
	txnLogBudgetFlag = cli.Uint64Flag{
		Name:  "sync.txnlogbudget",
		Usage: "Max payload bytes D will ship via DIFF before falling back to SNAP (0 disables txn-log sync)",
	}
	checkIntervalFlag = cli.Int64Flag{
		Name:  "reaper.checkintervalms",
		Usage: "Reaper sweep period in milliseconds",
	}
	maxPerMinuteFlag = cli.IntFlag{
		Name:  "reaper.maxperminute",
		Usage: "Reaper global delete-rate cap",
	}
	dryRunFlag = cli.BoolFlag{
		Name:  "reaper.dryrun",
		Usage: "Log reaper candidates instead of submitting deletes",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Log verbosity: 0=crit .. 5=trace",
		Value: 3,
	}
)

var configFlags = []cli.Flag{
	configFileFlag,
	retentionFlag,
	txnLogBudgetFlag,
	checkIntervalFlag,
	maxPerMinuteFlag,
	dryRunFlag,
	verbosityFlag,
}

func applyFlags(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(retentionFlag.Name) {
		cfg.Sync.Retention = ctx.GlobalInt(retentionFlag.Name)
	}
	if ctx.GlobalIsSet(txnLogBudgetFlag.Name) {
		cfg.Sync.TxnLogSizeBudget = ctx.GlobalUint64(txnLogBudgetFlag.Name)
	}
	if ctx.GlobalIsSet(checkIntervalFlag.Name) {
		cfg.Reaper.CheckIntervalMs = ctx.GlobalInt64(checkIntervalFlag.Name)
	}
	if ctx.GlobalIsSet(maxPerMinuteFlag.Name) {
		cfg.Reaper.MaxPerMinute = ctx.GlobalInt(maxPerMinuteFlag.Name)
	}
	if ctx.GlobalIsSet(dryRunFlag.Name) {
		cfg.Reaper.DryRun = ctx.GlobalBool(dryRunFlag.Name)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "zkeeperd"
	app.Usage = "leader-side follower-synchronization decision core, demo harness"
	app.Flags = configFlags
	app.Commands = []cli.Command{dumpConfigCommand}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	log.SetDefault(log.NewLogger(log.NewTerminalHandler(os.Stderr, verbosityToLevel(ctx.GlobalInt(verbosityFlag.Name)))))

	runSyncDemo(cfg.Sync)
	runReaperDemo(cfg.Reaper)

	if cfg.Metrics.Enabled {
		for _, name := range metrics.Names() {
			log.Info("metric", "name", name, "value", metrics.Snapshot()[name])
		}
	}
	return nil
}

func verbosityToLevel(v int) log.Level {
	switch {
	case v <= 0:
		return log.LevelCrit
	case v == 1:
		return log.LevelError
	case v == 2:
		return log.LevelWarn
	case v == 3:
		return log.LevelInfo
	case v == 4:
		return log.LevelDebug
	default:
		return log.LevelTrace
	}
}

// runSyncDemo seeds a replicated log view with a small committed window
// and an on-disk transaction log, then runs the decider against a peer
// that has fallen behind, printing the resulting plan.
func runSyncDemo(cfg SyncConfig) {
	txnLog := synclog.NewSliceTxnLog([]synclog.Proposal{
		{Zxid: zxid.Make(1, 2), Payload: rlp.RawValue("txn-2")},
		{Zxid: zxid.Make(1, 3), Payload: rlp.RawValue("txn-3")},
		{Zxid: zxid.Make(1, 5), Payload: rlp.RawValue("txn-5")},
		{Zxid: zxid.Make(1, 6), Payload: rlp.RawValue("txn-6")},
		{Zxid: zxid.Make(1, 7), Payload: rlp.RawValue("txn-7")},
		{Zxid: zxid.Make(1, 8), Payload: rlp.RawValue("txn-8")},
		{Zxid: zxid.Make(1, 9), Payload: rlp.RawValue("txn-9")},
	})
	view := synclog.NewLogView(txnLog, cfg.Retention, cfg.TxnLogSizeBudget)
	view.AppendCommitted(synclog.Proposal{Zxid: zxid.Make(1, 6), Payload: rlp.RawValue("txn-6")})
	view.AppendCommitted(synclog.Proposal{Zxid: zxid.Make(1, 7), Payload: rlp.RawValue("txn-7")})
	view.AppendCommitted(synclog.Proposal{Zxid: zxid.Make(1, 8), Payload: rlp.RawValue("txn-8")})
	view.SetLastProcessed(zxid.Make(1, 9))

	decider := syncdecide.NewDecider(nil)
	decider.EnableTrace()

	sink := syncdecide.NewMemorySink()
	peer := zxid.Make(1, 3)
	plan, err := decider.Decide(view, peer)
	if err != nil {
		log.Error("decide failed", "peer", peer, "err", err)
		return
	}
	if plan.NeedsSnap() {
		log.Info("decided SNAP", "peer", peer)
		return
	}
	for _, p := range plan.Packets {
		if err := sink.EnqueuePacket(p); err != nil {
			log.Error("enqueue failed", "err", err)
			return
		}
	}
	if err := sink.NotifyForwardFrom(plan.ForwardFromZxid); err != nil {
		log.Error("notify forward failed", "err", err)
		return
	}
	log.Info("decided plan", "peer", peer, "strategy", plan.Strategy.String(), "packets", len(plan.Packets), "forwardFrom", plan.ForwardFromZxid)
}

// demoTree and demoPipeline are minimal in-memory stand-ins for the
// replicated data tree and request pipeline, which are both consumed by
// the core only through narrow interfaces (§1).
type demoTree struct {
	containers map[string]reaper.NodeView
}

func (t demoTree) ContainerPaths() []string {
	out := make([]string, 0, len(t.containers))
	for p := range t.containers {
		out = append(out, p)
	}
	return out
}

func (demoTree) TTLPaths() []string { return nil }

func (t demoTree) Node(path string) (reaper.NodeView, bool) {
	n, ok := t.containers[path]
	return n, ok
}

type demoPipeline struct{}

func (demoPipeline) Submit(req reaper.DeleteContainerRequest) error {
	log.Info("submitted delete", "path", req.Path)
	return nil
}

func runReaperDemo(cfg ReaperConfig) {
	tree := demoTree{containers: map[string]reaper.NodeView{
		"/demo/empty-used":  {Path: "/demo/empty-used", Cversion: 2, Children: 0},
		"/demo/nonempty":    {Path: "/demo/nonempty", Cversion: 2, Children: 3},
		"/demo/never-young": {Path: "/demo/never-young", Cversion: 0, MtimeMillis: time.Now().UnixMilli()},
	}}
	mgr := reaper.NewContainerManager(reaper.Config{
		CheckInterval:        time.Duration(cfg.CheckIntervalMs) * time.Millisecond,
		MaxPerMinute:         cfg.MaxPerMinute,
		MaxNeverUsedInterval: time.Duration(cfg.MaxNeverUsedIntervalMs) * time.Millisecond,
		DryRun:               cfg.DryRun,
	}, tree, demoPipeline{}, clock.System{}, nil)

	if err := mgr.Sweep(); err != nil {
		log.Warn("reaper sweep failed", "err", err)
	}
}
