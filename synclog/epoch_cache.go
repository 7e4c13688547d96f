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

import "sync"

// epochCache is the SPEC_FULL "epoch inventory cache" supplement: the set
// of epochs known to be present in the on-disk txn log, scanned once and
// reused by the cross-epoch TRUNC guard (§4.3 step 5a) instead of
// rescanning the whole log on every decision.
type epochCache struct {
	mu      sync.Mutex
	epochs  map[uint32]struct{}
	scanned bool
}

func (c *epochCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scanned = false
	c.epochs = nil
}

func (c *epochCache) snapshot() map[uint32]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uint32]struct{}, len(c.epochs))
	for e := range c.epochs {
		out[e] = struct{}{}
	}
	return out
}

// fill records the full set of txn-log epochs, marking the cache scanned.
func (c *epochCache) fill(epochs map[uint32]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epochs = epochs
	c.scanned = true
}

func (c *epochCache) isScanned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanned
}
