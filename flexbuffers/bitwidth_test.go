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

import "testing"

func TestWidthU(t *testing.T) {
	cases := []struct {
		v    uint64
		want BitWidth
	}{
		{0, Width8},
		{255, Width8},
		{256, Width16},
		{1 << 16, Width32},
		{1 << 32, Width64},
	}
	for _, c := range cases {
		if got := widthU(c.v); got != c.want {
			t.Errorf("widthU(%d) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestWidthI(t *testing.T) {
	cases := []struct {
		v    int64
		want BitWidth
	}{
		{0, Width8},
		{127, Width8},
		{-128, Width8},
		{128, Width16},
		{-129, Width16},
		{1 << 20, Width32},
		{-(1 << 40), Width64},
	}
	for _, c := range cases {
		if got := widthI(c.v); got != c.want {
			t.Errorf("widthI(%d) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestPackedTypeRoundtrip(t *testing.T) {
	for _, typ := range []Type{NullType, IntType, StringType, MapType, BlobType, BoolType} {
		for _, w := range []BitWidth{Width8, Width16, Width32, Width64} {
			packed := PackedType(w, typ)
			gotType, gotWidth := UnpackType(packed)
			if gotType != typ || gotWidth != w {
				t.Errorf("PackedType(%v,%v) roundtrip: got (%v,%v)", w, typ, gotType, gotWidth)
			}
		}
	}
}

func TestPadding(t *testing.T) {
	cases := []struct {
		bufSize, elemWidth, want int
	}{
		{0, 4, 0},
		{1, 4, 3},
		{2, 4, 2},
		{4, 4, 0},
		{3, 8, 5},
	}
	for _, c := range cases {
		if got := padding(c.bufSize, c.elemWidth); got != c.want {
			t.Errorf("padding(%d,%d) = %d, want %d", c.bufSize, c.elemWidth, got, c.want)
		}
	}
}

func TestTypedVectorTypeRoundtrip(t *testing.T) {
	cases := []struct {
		et       Type
		fixedLen int
		want     Type
	}{
		{IntType, 0, VectorIntType},
		{UIntType, 0, VectorUIntType},
		{FloatType, 0, VectorFloatType},
		{IntType, 2, VectorInt2Type},
		{IntType, 3, VectorInt3Type},
		{IntType, 4, VectorInt4Type},
		{UIntType, 3, VectorUInt3Type},
		{UIntType, 4, VectorUInt4Type},
		{FloatType, 3, VectorFloat3Type},
		{FloatType, 4, VectorFloat4Type},
	}
	for _, c := range cases {
		if got := typedVectorType(c.et, c.fixedLen); got != c.want {
			t.Errorf("typedVectorType(%v,%d) = %v, want %v", c.et, c.fixedLen, got, c.want)
		}
		if c.fixedLen == 0 {
			if got := typedVectorElemType(c.want); got != c.et {
				t.Errorf("typedVectorElemType(%v) = %v, want %v", c.want, got, c.et)
			}
		} else {
			if got := fixedTypedVectorLen(c.want); got != c.fixedLen {
				t.Errorf("fixedTypedVectorLen(%v) = %d, want %d", c.want, got, c.fixedLen)
			}
		}
	}
}
