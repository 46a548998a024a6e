// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package flexbuffers

import (
	"bytes"
	"testing"
)

func TestBuildString(t *testing.T) {
	b := NewBuilder(0)
	b.AddString("Hello")
	b.Finish()

	want := []byte{0x05, 'H', 'e', 'l', 'l', 'o', 0x00, 0x06, 0x14, 0x01}
	got := b.Bytes()
	if !bytes.Equal(got, want) {
		t.Logf("got:      % 02x", got)
		t.Logf("expected: % 02x", want)
		t.Fatalf("wrongly encoded string")
	}
}

func TestBuildIntScalar(t *testing.T) {
	b := NewBuilder(0)
	b.AddInt(13)
	b.Finish()

	want := []byte{13, PackedType(Width8, IntType), 1}
	got := b.Bytes()
	if !bytes.Equal(got, want) {
		t.Logf("got:      % 02x", got)
		t.Logf("expected: % 02x", want)
		t.Fatalf("wrongly encoded scalar int")
	}
}

func TestBytesBeforeFinishPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling Bytes before Finish")
		}
	}()
	b := NewBuilder(0)
	b.AddInt(1)
	b.Bytes()
}

func TestAddAfterFinishPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling Add after Finish")
		}
	}()
	b := NewBuilder(0)
	b.AddInt(1)
	b.Finish()
	b.AddInt(2)
}

func TestFinishWithoutExactlyOneRootPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling Finish with an empty stack")
		}
	}()
	b := NewBuilder(0)
	b.Finish()
}

func TestStringSharing(t *testing.T) {
	b := NewBuilderWithFlags(0, FlagShareKeysAndStrings)
	marker := b.StartVector()
	b.AddString("duplicate")
	b.AddString("duplicate")
	b.EndVector(marker, false, false)
	b.Finish()

	root, err := GetRoot(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	v := root.AsVector()
	if v.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", v.Len())
	}
	a := v.Index(0)
	c := v.Index(1)
	if a.AsString() != "duplicate" || c.AsString() != "duplicate" {
		t.Fatalf("expected both elements to decode as %q", "duplicate")
	}
}

func TestReset(t *testing.T) {
	b := NewBuilder(0)
	b.AddInt(1)
	b.Finish()
	b.Reset()
	if b.finished {
		t.Fatal("expected finished to be cleared by Reset")
	}
	b.AddString("after reset")
	b.Finish()
	root, err := GetRoot(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if root.AsString() != "after reset" {
		t.Fatalf("got %q", root.AsString())
	}
}
