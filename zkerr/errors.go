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

// Package zkerr collects the error kinds named in the sync decider and
// reaper error-handling design (§7): sentinel values a caller can compare
// with errors.Is. Wrap attaches a formatted message to a sentinel; an
// underlying cause appears only as text in that message.
package zkerr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. TxnLogGap, CrossEpochTrunc and BudgetExceeded are
// downgraded silently to SNAP by the decider; SyncInputInconsistent
// escalates out of Decide. ReaperSubmitFailure is logged and does not stop
// the sweep loop; ReaperInterrupted ends it. Fatal propagates because
// leadership is untenable.
var (
	ErrSyncInputInconsistent = errors.New("zkerr: sync input inconsistent")
	ErrTxnLogGap             = errors.New("zkerr: txn log gap")
	ErrCrossEpochTrunc       = errors.New("zkerr: cross-epoch trunc forbidden")
	ErrBudgetExceeded        = errors.New("zkerr: txn log size budget exceeded")
	ErrReaperSubmitFailure   = errors.New("zkerr: reaper submit failed")
	ErrReaperInterrupted     = errors.New("zkerr: reaper interrupted")
	ErrFatal                 = errors.New("zkerr: fatal")
)

// Wrap attaches context to one of the sentinel kinds above while keeping
// errors.Is(err, kind) working.
func Wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
