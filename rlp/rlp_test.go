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

package rlp

import "testing"

func TestRawValueLenAndBytes(t *testing.T) {
	v := RawValue("hello")
	if v.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", v.Len())
	}
	if string(v.Bytes()) != "hello" {
		t.Fatalf("Bytes() = %q, want %q", v.Bytes(), "hello")
	}
}

func TestEmptyRawValue(t *testing.T) {
	var v RawValue
	if v.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", v.Len())
	}
}
