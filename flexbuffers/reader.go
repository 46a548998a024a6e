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
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBuffer is returned by GetRoot when buffer is too short to
// contain a valid trailer, or the trailer's byte width is not one of
// 1, 2, 4, or 8.
var ErrInvalidBuffer = errors.New("flexbuffers: invalid buffer")

// Reference is a lazily-resolved view of a single value inside a
// FlexBuffers document. It never copies or decodes more than the
// caller asks for: constructing a Reference only records where the
// value lives and what its packed type says it is.
//
// Reference is read-only and safe to pass by value; every accessor
// reads through the shared buffer slice.
type Reference struct {
	buffer      []byte
	offset      int // absolute position of the value's slot
	parentWidth BitWidth // width of this value's own slot: decodes its inline value or back-offset
	childWidth  BitWidth // width used inside the referent itself: a string/blob's length prefix, a vector/map's own count and element slots
	packedType  byte
	typ         Type
}

// GetRoot reads the two trailer bytes of buffer (root packed type,
// then root byte width) and returns a Reference to the document's
// root value. The root byte width is the slot width (parentWidth);
// the packed type's width bits give the root's own internal width
// (childWidth), which may differ when the root is itself a
// container or a string/blob whose length prefix was elected
// independently of the offset that locates it.
func GetRoot(buffer []byte) (Reference, error) {
	if len(buffer) < 3 {
		return Reference{}, ErrInvalidBuffer
	}
	rootByteWidth := int(buffer[len(buffer)-1])
	switch rootByteWidth {
	case 1, 2, 4, 8:
	default:
		return Reference{}, ErrInvalidBuffer
	}
	packedType := buffer[len(buffer)-2]
	end := len(buffer) - 2
	if end-rootByteWidth < 0 {
		return Reference{}, ErrInvalidBuffer
	}
	offset := end - rootByteWidth
	typ, childWidth := UnpackType(packedType)
	return Reference{
		buffer:      buffer,
		offset:      offset,
		parentWidth: byteWidthToBitWidth(rootByteWidth),
		childWidth:  childWidth,
		packedType:  packedType,
		typ:         typ,
	}, nil
}

// Type returns the underlying FlexBuffers type of r.
func (r Reference) Type() Type { return r.typ }

// IsNull, IsBool, ... report r's underlying type without decoding its
// value.
func (r Reference) IsNull() bool   { return r.typ == NullType }
func (r Reference) IsBool() bool   { return r.typ == BoolType }
func (r Reference) IsInt() bool    { return r.typ == IntType || r.typ == IndirectIntType }
func (r Reference) IsUint() bool   { return r.typ == UIntType || r.typ == IndirectUIntType }
func (r Reference) IsFloat() bool  { return r.typ == FloatType || r.typ == IndirectFloatType }
func (r Reference) IsNumeric() bool {
	return r.IsInt() || r.IsUint() || r.IsFloat()
}
func (r Reference) IsString() bool { return r.typ == StringType }
func (r Reference) IsKey() bool    { return r.typ == KeyType }
func (r Reference) IsBlob() bool   { return r.typ == BlobType }
func (r Reference) IsVector() bool { return r.typ.IsAnyVector() }
func (r Reference) IsMap() bool    { return r.typ == MapType }

func (r Reference) readUint(width BitWidth) uint64 {
	bw := width.ByteWidth()
	if r.offset < 0 || r.offset+bw > len(r.buffer) {
		return 0
	}
	return readUintAt(r.buffer[r.offset:r.offset+bw], bw)
}

func (r Reference) readInt(width BitWidth) int64 {
	bw := width.ByteWidth()
	if r.offset < 0 || r.offset+bw > len(r.buffer) {
		return 0
	}
	return readIntAt(r.buffer[r.offset:r.offset+bw], bw)
}

// indirect resolves an indirect_* reference: the slot holds a
// back-offset to the actual scalar rather than the scalar itself.
func (r Reference) indirect() int {
	off := r.readUint(r.parentWidth)
	return r.offset - int(off)
}

// AsInt64 decodes r as a signed integer, returning 0 for any
// non-numeric type (the spec's type_mismatch behavior: readers never
// error on a type mismatch, they return a zero-ish default).
func (r Reference) AsInt64() int64 {
	switch r.typ {
	case IntType:
		return r.readInt(r.parentWidth)
	case IndirectIntType:
		pos := r.indirect()
		bw := r.childWidth.ByteWidth()
		if pos < 0 || pos+bw > len(r.buffer) {
			return 0
		}
		return readIntAt(r.buffer[pos:pos+bw], bw)
	case UIntType, IndirectUIntType:
		return int64(r.AsUint64())
	case FloatType, IndirectFloatType:
		return int64(r.AsFloat64())
	case BoolType:
		return int64(r.readUint(r.parentWidth))
	default:
		return 0
	}
}

// AsUint64 decodes r as an unsigned integer; see AsInt64 for the
// type-mismatch contract.
func (r Reference) AsUint64() uint64 {
	switch r.typ {
	case UIntType:
		return r.readUint(r.parentWidth)
	case IndirectUIntType:
		pos := r.indirect()
		return readUintAt(r.buffer[pos:pos+r.childWidth.ByteWidth()], r.childWidth.ByteWidth())
	case IntType, IndirectIntType:
		return uint64(r.AsInt64())
	case FloatType, IndirectFloatType:
		return uint64(r.AsFloat64())
	case BoolType:
		return r.readUint(r.parentWidth)
	default:
		return 0
	}
}

// AsFloat64 decodes r as a double; see AsInt64 for the type-mismatch
// contract.
func (r Reference) AsFloat64() float64 {
	switch r.typ {
	case FloatType:
		return r.readFloatAt(r.offset, r.parentWidth)
	case IndirectFloatType:
		pos := r.indirect()
		return r.readFloatAt(pos, r.childWidth)
	case IntType, IndirectIntType:
		return float64(r.AsInt64())
	case UIntType, IndirectUIntType:
		return float64(r.AsUint64())
	default:
		return 0
	}
}

func (r Reference) readFloatAt(pos int, width BitWidth) float64 {
	bw := width.ByteWidth()
	if pos < 0 || pos+bw > len(r.buffer) {
		return 0
	}
	switch bw {
	case 4:
		return float64(math.Float32frombits(uint32(readUintAt(r.buffer[pos:pos+4], 4))))
	case 8:
		return math.Float64frombits(readUintAt(r.buffer[pos:pos+8], 8))
	default:
		return 0
	}
}

// AsBool decodes r as a boolean; non-bool types are coerced through
// AsUint64 and are true when that result is nonzero, matching the
// format's historical encoding of bools as integers. A float is
// converted to an integer first, so a fraction such as 0.5 reads as
// false.
func (r Reference) AsBool() bool {
	if r.typ == BoolType {
		return r.readUint(r.parentWidth) != 0
	}
	return r.AsUint64() != 0
}

// sloc resolves the absolute buffer position an offset-bearing
// Reference's payload begins at.
func (r Reference) sloc() int {
	off := r.readUint(r.parentWidth)
	return r.offset - int(off)
}

// AsString decodes r as a UTF-8 string. Non-string/key types yield "".
func (r Reference) AsString() string {
	switch r.typ {
	case StringType:
		return string(r.stringBytes())
	case KeyType:
		return string(r.CString())
	default:
		return ""
	}
}

func (r Reference) stringBytes() []byte {
	pos := r.sloc()
	lw := r.childWidth.ByteWidth()
	if pos-lw < 0 || pos-lw+lw > len(r.buffer) {
		return nil
	}
	n := int(readUintAt(r.buffer[pos-lw:pos], lw))
	if pos+n > len(r.buffer) {
		return nil
	}
	return r.buffer[pos : pos+n]
}

// CString reads r as a NUL-terminated key, returning its bytes without
// the terminator.
func (r Reference) CString() []byte {
	if r.typ != KeyType {
		return nil
	}
	pos := r.sloc()
	end := pos
	for end < len(r.buffer) && r.buffer[end] != 0 {
		end++
	}
	return r.buffer[pos:end]
}

// AsBlob decodes r as a length-prefixed blob. Non-blob types yield nil.
func (r Reference) AsBlob() []byte {
	if r.typ != BlobType {
		return nil
	}
	return r.stringBytes()
}

// AsVector views r as a Vector. If r is not a vector type, the
// returned Vector has Len() == 0.
func (r Reference) AsVector() Vector {
	if !r.typ.IsAnyVector() {
		return Vector{}
	}
	vloc := r.sloc()
	width := r.childWidth
	byteWidth := width.ByteWidth()
	elemType := typedVectorElemType(r.typ)
	fixed := r.typ.IsFixedTypedVectorType()
	var count int
	if fixed {
		count = fixedTypedVectorLen(r.typ)
	} else {
		count = int(readUintAt(r.buffer[vloc-byteWidth:vloc], byteWidth))
	}
	return Vector{
		buffer:   r.buffer,
		vloc:     vloc,
		width:    width,
		count:    count,
		typed:    elemType != InvalidType,
		elemType: elemType,
	}
}

// AsMap views r as a Map. If r is not a map, the returned Map has
// Len() == 0.
func (r Reference) AsMap() Map {
	if r.typ != MapType {
		return Map{}
	}
	vloc := r.sloc()
	width := r.childWidth
	byteWidth := width.ByteWidth()
	count := int(readUintAt(r.buffer[vloc-byteWidth:vloc], byteWidth))
	keysOffsetSlot := vloc - 3*byteWidth
	keysByteWidthSlot := vloc - 2*byteWidth
	keysBack := int(readUintAt(r.buffer[keysOffsetSlot:keysOffsetSlot+byteWidth], byteWidth))
	keysVloc := keysOffsetSlot - keysBack
	keysByteWidth := int(readUintAt(r.buffer[keysByteWidthSlot:keysByteWidthSlot+byteWidth], byteWidth))
	return Map{
		values: Vector{
			buffer: r.buffer,
			vloc:   vloc,
			width:  width,
			count:  count,
		},
		keysVloc:      keysVloc,
		keysByteWidth: keysByteWidth,
	}
}

// Interface decodes r into a plain Go value (nil, bool, int64,
// uint64, float64, string, []byte, []any, or map[string]any),
// suitable for passing to encoding/json or for ad-hoc inspection.
func (r Reference) Interface() any {
	switch {
	case r.IsNull():
		return nil
	case r.IsBool():
		return r.AsBool()
	case r.typ == IntType || r.typ == IndirectIntType:
		return r.AsInt64()
	case r.typ == UIntType || r.typ == IndirectUIntType:
		return r.AsUint64()
	case r.typ == FloatType || r.typ == IndirectFloatType:
		return r.AsFloat64()
	case r.IsString(), r.IsKey():
		return r.AsString()
	case r.IsBlob():
		return r.AsBlob()
	case r.IsMap():
		m := r.AsMap()
		out := make(map[string]any, m.Len())
		for i := 0; i < m.Len(); i++ {
			out[string(m.KeyAt(i))] = m.Index(i).Interface()
		}
		return out
	case r.IsVector():
		v := r.AsVector()
		out := make([]any, v.Len())
		for i := range out {
			out[i] = v.Index(i).Interface()
		}
		return out
	default:
		return nil
	}
}

func (r Reference) String() string {
	switch {
	case r.IsNull():
		return "null"
	case r.IsBool():
		return fmt.Sprintf("%v", r.AsBool())
	case r.IsInt():
		return fmt.Sprintf("%d", r.AsInt64())
	case r.IsUint():
		return fmt.Sprintf("%d", r.AsUint64())
	case r.IsFloat():
		return fmt.Sprintf("%g", r.AsFloat64())
	case r.IsString(), r.IsKey():
		return r.AsString()
	default:
		return r.typ.String()
	}
}
