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

// Package reaper implements the container reaper (R): a leader-only
// periodic sweep that proposes deletion of empty container znodes and
// expired TTL znodes, rate-limited against the request pipeline.
package reaper

// EphemeralKind identifies what an ephemeralOwner tag encodes.
type EphemeralKind int

const (
	EphemeralNone EphemeralKind = iota
	EphemeralContainer
	EphemeralTTL
)

// EphemeralOwner mirrors the ephemeralOwner attribute's two tagged forms:
// a plain container marker, or a TTL marker carrying its millisecond value.
type EphemeralOwner struct {
	Kind      EphemeralKind
	TTLMillis int64
}

// NodeView is the narrow read projection of a data tree node the reaper
// needs: enough to evaluate §4.4's candidate rules without touching the
// node's actual data payload.
type NodeView struct {
	Path           string
	Cversion       int64
	MtimeMillis    int64
	EphemeralOwner EphemeralOwner
	Children       int
}

// DataTree is the external collaborator (§6) the reaper reads through.
// The leader's real replicated data tree implements this narrowly.
type DataTree interface {
	// ContainerPaths returns every path currently tagged as a container.
	ContainerPaths() []string
	// TTLPaths returns every path currently tagged with a TTL.
	TTLPaths() []string
	// Node returns the current view of path, or ok=false if it no longer
	// exists (deleted concurrently, or raced with a sweep).
	Node(path string) (NodeView, bool)
}

// DeleteContainerRequest is the proposal the reaper submits for each
// candidate it selects.
type DeleteContainerRequest struct {
	Path string
}

// RequestPipeline is the external collaborator (§6) the reaper proposes
// deletions through. Submission failures are non-fatal (§7).
type RequestPipeline interface {
	Submit(req DeleteContainerRequest) error
}
