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

package reaper

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/probeum/zkeeper/clock"
	"github.com/probeum/zkeeper/log"
	"github.com/probeum/zkeeper/zkerr"
)

// recentlyReapedCacheSize bounds the P6 damping memo; a leader with more
// simultaneously-reaping candidates than this loses damping for the
// overflow, which only costs a harmless resubmission.
const recentlyReapedCacheSize = 4096

// recentlyReapedCooldownGenerations is how many sweeps a path stays
// suppressed after being submitted, so a container whose delete proposal
// hasn't yet committed (and so still shows up in the tree on the next
// sweep) doesn't get resubmitted every CheckInterval.
const recentlyReapedCooldownGenerations = 3

// Config holds the reaper's tunables, named to match §6's enumerated
// configuration keys.
type Config struct {
	CheckInterval          time.Duration
	MaxPerMinute           int
	MaxNeverUsedInterval   time.Duration // 0 disables the never-used rule
	DryRun                 bool
}

// ContainerManager is the container reaper (R): an exitCh closed once by
// Stop(), a compare-and-swap running flag making Start()/Stop()
// idempotent, and a single background goroutine driving the periodic loop.
type ContainerManager struct {
	cfg      Config
	tree     DataTree
	pipeline RequestPipeline
	clock    clock.Clock
	log      log.Logger

	limiter *rate.Limiter

	mu             sync.Mutex
	recentlyReaped *lru.Cache // path -> sweep generation last selected (P6)
	generation     uint64

	running int32
	exitCh  chan struct{}
	wg      sync.WaitGroup
}

// NewContainerManager builds a ContainerManager. A nil clock defaults to
// the real clock; a nil logger to the package root logger.
func NewContainerManager(cfg Config, tree DataTree, pipeline RequestPipeline, c clock.Clock, logger log.Logger) *ContainerManager {
	if c == nil {
		c = clock.System{}
	}
	if logger == nil {
		logger = log.Root()
	}
	cache, err := lru.New(recentlyReapedCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which never
		// happens with the constant above.
		panic(err)
	}
	perSecond := float64(cfg.MaxPerMinute) / 60.0
	return &ContainerManager{
		cfg:            cfg,
		tree:           tree,
		pipeline:       pipeline,
		clock:          c,
		log:            logger,
		limiter:        rate.NewLimiter(rate.Limit(perSecond), 1),
		recentlyReaped: cache,
	}
}

// Start schedules the fixed-rate sweep. Idempotent: a second call while
// already running is a no-op.
func (m *ContainerManager) Start() {
	if !atomic.CompareAndSwapInt32(&m.running, 0, 1) {
		return
	}
	m.exitCh = make(chan struct{})
	m.wg.Add(1)
	go m.loop()
}

// Stop cancels the sweep. Idempotent; safe to call even if Start was
// never called.
func (m *ContainerManager) Stop() {
	if !atomic.CompareAndSwapInt32(&m.running, 1, 0) {
		return
	}
	close(m.exitCh)
	m.wg.Wait()
}

func (m *ContainerManager) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := m.Sweep(); err != nil {
				switch {
				case errors.Is(err, zkerr.ErrReaperInterrupted):
					return
				case errors.Is(err, zkerr.ErrFatal):
					m.log.Crit("reaper fatal error, stopping", "err", err)
					return
				default:
					m.log.Warn("reaper sweep failed", "err", err)
				}
			}
		case <-m.exitCh:
			return
		}
	}
}

// Sweep performs one pass: enumerate candidates, submit a delete request
// for each at no more than cfg.MaxPerMinute per minute. Runs only on the
// leader; harmless if invoked on a non-leader, since deletions simply
// fail at the proposal stage (§4.4 contract).
func (m *ContainerManager) Sweep() error {
	if m.tree == nil {
		return zkerr.Wrap(zkerr.ErrFatal, "reaper has no data tree")
	}

	start := time.Now()
	defer sweepTimer.UpdateSince(start)

	m.mu.Lock()
	m.generation++
	generation := m.generation
	m.mu.Unlock()

	candidates := m.enumerateCandidates()
	candidatesMeter.Mark(int64(len(candidates)))

	for _, path := range candidates {
		select {
		case <-m.exitCh:
			return zkerr.ErrReaperInterrupted
		default:
		}

		now := m.clock.ElapsedNow()
		if m.cfg.DryRun {
			m.log.Debug("reaper dry-run candidate", "path", path)
			dryRunCandidateMark.Mark(1)
		} else if err := m.pipeline.Submit(DeleteContainerRequest{Path: path}); err != nil {
			// §7 ReaperSubmitFailure: log and continue, the candidate is
			// retried on the next sweep since it is still unresolved in
			// the tree.
			m.log.Warn("container delete submit failed", "path", path,
				"err", zkerr.Wrap(zkerr.ErrReaperSubmitFailure, "submit %s: %v", path, err))
			submitFailureMeter.Mark(1)
		} else {
			submittedMeter.Mark(1)
		}
		m.markReaped(path, generation)

		if err := m.waitForSlot(now); err != nil {
			return err
		}
	}
	return nil
}

// waitForSlot enforces the global minIntervalMs = 60000/maxPerMinute
// spacing between submissions via a token-bucket reservation timed
// against the injected clock, so tests can drive it deterministically.
func (m *ContainerManager) waitForSlot(now time.Time) error {
	if m.cfg.MaxPerMinute <= 0 {
		return nil
	}
	reservation := m.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return nil
	}
	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	m.clock.Sleep(delay)
	return nil
}

func (m *ContainerManager) markReaped(path string, generation uint64) {
	m.recentlyReaped.Add(path, generation)
}

// recentlyReapedWithinCooldown reports whether path was already submitted
// within the last recentlyReapedCooldownGenerations sweeps, per the P6
// damping memo.
func (m *ContainerManager) recentlyReapedWithinCooldown(path string, generation uint64) bool {
	v, ok := m.recentlyReaped.Get(path)
	if !ok {
		return false
	}
	last := v.(uint64)
	return generation-last < recentlyReapedCooldownGenerations
}

func (m *ContainerManager) currentGeneration() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// enumerateCandidates implements §4.4's candidate rules over the current
// data tree snapshot, then drops anything still cooling down from a
// recent submission (P6 damping).
func (m *ContainerManager) enumerateCandidates() []string {
	wallNow := m.clock.WallNow()
	generation := m.currentGeneration()
	selected := mapset.NewSet()

	for _, path := range m.tree.ContainerPaths() {
		node, ok := m.tree.Node(path)
		if !ok || node.Children > 0 {
			continue
		}
		if node.Cversion > 0 {
			selected.Add(path)
			continue
		}
		if m.cfg.MaxNeverUsedInterval > 0 && wallNow-node.MtimeMillis > m.cfg.MaxNeverUsedInterval.Milliseconds() {
			selected.Add(path)
		}
	}

	for _, path := range m.tree.TTLPaths() {
		node, ok := m.tree.Node(path)
		if !ok || node.Children > 0 {
			continue
		}
		if node.EphemeralOwner.Kind != EphemeralTTL || node.EphemeralOwner.TTLMillis == 0 {
			continue
		}
		if wallNow-node.MtimeMillis > node.EphemeralOwner.TTLMillis {
			selected.Add(path)
		}
	}

	out := make([]string, 0, selected.Cardinality())
	for p := range selected.Iter() {
		path := p.(string)
		if m.recentlyReapedWithinCooldown(path, generation) {
			continue
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
