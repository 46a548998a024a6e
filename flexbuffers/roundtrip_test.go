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

func TestRoundtripScalars(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *Builder)
		check func(t *testing.T, r Reference)
	}{
		{"null", func(b *Builder) { b.AddNull() }, func(t *testing.T, r Reference) {
			if !r.IsNull() {
				t.Fatal("expected null")
			}
		}},
		{"bool-true", func(b *Builder) { b.AddBool(true) }, func(t *testing.T, r Reference) {
			if !r.AsBool() {
				t.Fatal("expected true")
			}
		}},
		{"int-negative", func(b *Builder) { b.AddInt(-12345) }, func(t *testing.T, r Reference) {
			if got := r.AsInt64(); got != -12345 {
				t.Fatalf("got %d", got)
			}
		}},
		{"uint-large", func(b *Builder) { b.AddUint(1 << 40) }, func(t *testing.T, r Reference) {
			if got := r.AsUint64(); got != 1<<40 {
				t.Fatalf("got %d", got)
			}
		}},
		{"float32", func(b *Builder) { b.AddFloat(3.5) }, func(t *testing.T, r Reference) {
			if got := r.AsFloat64(); got != 3.5 {
				t.Fatalf("got %v", got)
			}
		}},
		{"double", func(b *Builder) { b.AddDouble(2.71828182845) }, func(t *testing.T, r Reference) {
			if got := r.AsFloat64(); got != 2.71828182845 {
				t.Fatalf("got %v", got)
			}
		}},
		{"string", func(b *Builder) { b.AddString("round trip") }, func(t *testing.T, r Reference) {
			if got := r.AsString(); got != "round trip" {
				t.Fatalf("got %q", got)
			}
		}},
		{"blob", func(b *Builder) { b.AddBlob([]byte{1, 2, 3, 4}) }, func(t *testing.T, r Reference) {
			if !bytes.Equal(r.AsBlob(), []byte{1, 2, 3, 4}) {
				t.Fatalf("got %v", r.AsBlob())
			}
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := NewBuilder(0)
			c.build(b)
			b.Finish()
			root, err := GetRoot(b.Bytes())
			if err != nil {
				t.Fatal(err)
			}
			c.check(t, root)
		})
	}
}

func TestRoundtripUntypedVector(t *testing.T) {
	b := NewBuilder(0)
	marker := b.StartVector()
	b.AddInt(1)
	b.AddString("two")
	b.AddBool(true)
	b.EndVector(marker, false, false)
	b.Finish()

	root, err := GetRoot(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	v := root.AsVector()
	if v.Len() != 3 {
		t.Fatalf("expected 3 elements, got %d", v.Len())
	}
	if got := v.Index(0).AsInt64(); got != 1 {
		t.Fatalf("element 0: got %d", got)
	}
	if got := v.Index(1).AsString(); got != "two" {
		t.Fatalf("element 1: got %q", got)
	}
	if got := v.Index(2).AsBool(); !got {
		t.Fatalf("element 2: got %v", got)
	}
}

func TestRoundtripTypedIntVector(t *testing.T) {
	b := NewBuilder(0)
	b.CreateTypedVector([]int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 20})
	b.Finish()

	root, err := GetRoot(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	v := root.AsVector()
	if v.Len() != 10 {
		t.Fatalf("expected 10 elements, got %d", v.Len())
	}
	for i, want := range []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 20} {
		if got := v.Index(i).AsInt64(); got != want {
			t.Fatalf("element %d: got %d, want %d", i, got, want)
		}
	}
}

func TestRoundtripNestedVector(t *testing.T) {
	b := NewBuilder(0)
	outer := b.StartVector()
	b.AddInt(1)
	inner := b.StartVector()
	b.AddInt(2)
	b.AddInt(3)
	b.EndVector(inner, false, false)
	b.AddInt(4)
	b.EndVector(outer, false, false)
	b.Finish()

	root, err := GetRoot(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	v := root.AsVector()
	if v.Len() != 3 {
		t.Fatalf("expected 3 elements, got %d", v.Len())
	}
	if got := v.Index(0).AsInt64(); got != 1 {
		t.Fatalf("element 0: got %d", got)
	}
	innerV := v.Index(1).AsVector()
	if innerV.Len() != 2 || innerV.Index(0).AsInt64() != 2 || innerV.Index(1).AsInt64() != 3 {
		t.Fatalf("unexpected inner vector contents")
	}
	if got := v.Index(2).AsInt64(); got != 4 {
		t.Fatalf("element 2: got %d", got)
	}
}

// TestRoundtripWideOffsetWithNarrowChild covers a vector whose elected
// element width is driven up to w64 by one large inline scalar, while a
// string element alongside it keeps its own much narrower
// length-prefix width: the string's own width must survive
// independently of the container's offset width.
func TestRoundtripWideOffsetWithNarrowChild(t *testing.T) {
	b := NewBuilder(0)
	marker := b.StartVector()
	b.AddUint(1 << 40) // forces the container's element width to w64
	b.AddString("hi")
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
	if got := v.Index(0).AsUint64(); got != 1<<40 {
		t.Fatalf("element 0: got %d", got)
	}
	if got := v.Index(1).AsString(); got != "hi" {
		t.Fatalf("element 1: got %q, want %q", got, "hi")
	}
}

// TestRoundtripNegativeScalars covers signed scalars narrow enough to
// need sign-extension on read: AsInt64 must not zero-extend a negative
// value stored at less than 64 bits.
func TestRoundtripNegativeScalars(t *testing.T) {
	cases := []int64{-1, -128, -129, -32768, -32769, -1 << 40}
	for _, want := range cases {
		b := NewBuilder(0)
		b.AddInt(want)
		b.Finish()
		root, err := GetRoot(b.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		if got := root.AsInt64(); got != want {
			t.Fatalf("AddInt(%d): got %d", want, got)
		}
	}
}

// TestRoundtripTypedStringVector covers a typed (non-fixed) vector of
// strings whose natural length-prefix widths differ: typed vectors
// carry no per-element packed-type byte, so the builder must widen
// every narrower element's length prefix to the vector's own elected
// width rather than leave it unrecoverable at read time.
func TestRoundtripTypedStringVector(t *testing.T) {
	b := NewBuilder(0)
	marker := b.StartVector()
	b.AddString("hi")
	b.AddString("a longer string that needs more width to express its own length prefix, padded out well past two hundred and fifty six bytes so its natural length-prefix width is wider than a single byte, forcing the typed vector's elected width up beyond what the short string alone would have required 0123456789")
	b.EndVector(marker, true, false)
	b.Finish()

	root, err := GetRoot(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	v := root.AsVector()
	if v.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", v.Len())
	}
	if got := v.Index(0).AsString(); got != "hi" {
		t.Fatalf("element 0: got %q, want %q", got, "hi")
	}
}

// TestRoundtripRootVectorWideOffset covers a root-level vector whose
// own internal element width differs from the width of the back-
// offset that locates it from the trailer: a nested vector small
// enough to elect w8 internally, reached only through a chain of
// offsets large enough to force w32 or w64 in between.
func TestRoundtripRootVectorWideOffset(t *testing.T) {
	b := NewBuilder(0)
	outer := b.StartVector()
	b.AddBlob(make([]byte, 1<<17)) // pushes sloc's of everything after it far enough to force a wide outer offset
	inner := b.StartVector()
	b.AddInt(7)
	b.AddInt(8)
	b.EndVector(inner, false, false)
	b.EndVector(outer, false, false)
	b.Finish()

	root, err := GetRoot(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	v := root.AsVector()
	if v.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", v.Len())
	}
	blob := v.Index(0).AsBlob()
	if len(blob) != 1<<17 {
		t.Fatalf("blob: got length %d", len(blob))
	}
	innerV := v.Index(1).AsVector()
	if innerV.Len() != 2 || innerV.Index(0).AsInt64() != 7 || innerV.Index(1).AsInt64() != 8 {
		t.Fatalf("unexpected inner vector contents: len=%d", innerV.Len())
	}
}
