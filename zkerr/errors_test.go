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

package zkerr

import (
	"errors"
	"testing"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrTxnLogGap, "peer %v", 42)
	if !errors.Is(err, ErrTxnLogGap) {
		t.Fatalf("errors.Is(%v, ErrTxnLogGap) = false, want true", err)
	}
	if errors.Is(err, ErrBudgetExceeded) {
		t.Fatal("wrapped error unexpectedly matches an unrelated sentinel")
	}
}

func TestWrapIncludesFormattedMessage(t *testing.T) {
	err := Wrap(ErrCrossEpochTrunc, "peer %d forbidden", 7)
	if got := err.Error(); got == "" {
		t.Fatal("expected non-empty error message")
	}
}
