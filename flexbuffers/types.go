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

// Type is a FlexBuffer type tag, a 6-bit value packed alongside a
// BitWidth into a single descriptor byte (see PackedType).
type Type byte

const (
	NullType                  Type = 0
	IntType                   Type = 1
	UIntType                  Type = 2
	FloatType                 Type = 3
	KeyType                   Type = 4
	StringType                Type = 5
	IndirectIntType           Type = 6
	IndirectUIntType          Type = 7
	IndirectFloatType         Type = 8
	MapType                   Type = 9
	VectorType                Type = 10
	VectorIntType             Type = 11
	VectorUIntType            Type = 12
	VectorFloatType           Type = 13
	VectorKeyType             Type = 14
	VectorStringDeprecated    Type = 15
	VectorInt2Type            Type = 16
	VectorUInt2Type           Type = 17
	VectorFloat2Type          Type = 18
	VectorInt3Type            Type = 19
	VectorUInt3Type           Type = 20
	VectorFloat3Type          Type = 21
	VectorInt4Type            Type = 22
	VectorUInt4Type           Type = 23
	VectorFloat4Type          Type = 24
	BlobType                  Type = 25
	BoolType                  Type = 26
	VectorBoolType            Type = 36
	InvalidType               Type = 0x3f
)

func (t Type) String() string {
	switch t {
	case NullType:
		return "null"
	case IntType:
		return "int"
	case UIntType:
		return "uint"
	case FloatType:
		return "float"
	case KeyType:
		return "key"
	case StringType:
		return "string"
	case IndirectIntType:
		return "indirect_int"
	case IndirectUIntType:
		return "indirect_uint"
	case IndirectFloatType:
		return "indirect_float"
	case MapType:
		return "map"
	case VectorType:
		return "vector"
	case VectorIntType:
		return "vector_int"
	case VectorUIntType:
		return "vector_uint"
	case VectorFloatType:
		return "vector_float"
	case VectorKeyType:
		return "vector_key"
	case VectorStringDeprecated:
		return "vector_string_deprecated"
	case VectorInt2Type, VectorInt3Type, VectorInt4Type:
		return "vector_int_fixed"
	case VectorUInt2Type, VectorUInt3Type, VectorUInt4Type:
		return "vector_uint_fixed"
	case VectorFloat2Type, VectorFloat3Type, VectorFloat4Type:
		return "vector_float_fixed"
	case BlobType:
		return "blob"
	case BoolType:
		return "bool"
	case VectorBoolType:
		return "vector_bool"
	default:
		return "invalid"
	}
}

// IsTypedVectorType returns whether t is one of the typed-vector
// variants (variable-length or fixed-length), as opposed to the
// generic untyped VectorType or a scalar/map type.
func (t Type) IsTypedVectorType() bool {
	switch {
	case t >= VectorIntType && t <= VectorFloat4Type:
		return true
	case t == VectorBoolType:
		return true
	default:
		return false
	}
}

// IsFixedTypedVectorType returns whether t is a fixed-length typed
// vector (length implied by the tag rather than stored).
func (t Type) IsFixedTypedVectorType() bool {
	return t >= VectorInt2Type && t <= VectorFloat4Type
}

// IsAnyVector reports whether t denotes some kind of vector (typed,
// untyped, fixed, or bool).
func (t Type) IsAnyVector() bool {
	return t == VectorType || t.IsTypedVectorType()
}

// IsInline reports whether values of type t are stored inline in
// their slot (scalars) as opposed to by back-offset (everything
// else: strings, blobs, keys, vectors, maps, indirect scalars).
func (t Type) IsInline() bool {
	switch t {
	case NullType, IntType, UIntType, FloatType, BoolType:
		return true
	default:
		return false
	}
}

// typedVectorType returns the typed-vector tag corresponding to
// element type et, optionally a fixed-length variant for length in
// {2,3,4}.
func typedVectorType(et Type, fixedLen int) Type {
	if fixedLen == 0 {
		switch et {
		case IntType:
			return VectorIntType
		case UIntType:
			return VectorUIntType
		case FloatType:
			return VectorFloatType
		case KeyType:
			return VectorKeyType
		case StringType:
			return VectorStringDeprecated
		case BoolType:
			return VectorBoolType
		default:
			panic("flexbuffers: type cannot form a typed vector")
		}
	}
	idx := fixedLen - 2 // 0,1,2 for lengths 2,3,4; each length group spans 3 tags (int, uint, float)
	switch et {
	case IntType:
		return VectorInt2Type + Type(idx)*3
	case UIntType:
		return VectorUInt2Type + Type(idx)*3
	case FloatType:
		return VectorFloat2Type + Type(idx)*3
	default:
		panic("flexbuffers: type cannot form a fixed typed vector")
	}
}

// typedVectorElemType returns the scalar element type of a typed
// vector tag, the inverse of typedVectorType.
func typedVectorElemType(t Type) Type {
	switch t {
	case VectorIntType, VectorInt2Type, VectorInt3Type, VectorInt4Type:
		return IntType
	case VectorUIntType, VectorUInt2Type, VectorUInt3Type, VectorUInt4Type:
		return UIntType
	case VectorFloatType, VectorFloat2Type, VectorFloat3Type, VectorFloat4Type:
		return FloatType
	case VectorKeyType:
		return KeyType
	case VectorStringDeprecated:
		return StringType
	case VectorBoolType:
		return BoolType
	default:
		return InvalidType
	}
}

// fixedTypedVectorLen returns the implied element count of a
// fixed-length typed vector tag, or 0 if t is not one.
func fixedTypedVectorLen(t Type) int {
	switch t {
	case VectorInt2Type, VectorUInt2Type, VectorFloat2Type:
		return 2
	case VectorInt3Type, VectorUInt3Type, VectorFloat3Type:
		return 3
	case VectorInt4Type, VectorUInt4Type, VectorFloat4Type:
		return 4
	default:
		return 0
	}
}

// BitWidth is one of the four FlexBuffers bit widths.
type BitWidth byte

const (
	Width8 BitWidth = iota
	Width16
	Width32
	Width64
)

// ByteWidth returns the number of bytes implied by w (1, 2, 4, or 8).
func (w BitWidth) ByteWidth() int {
	return 1 << uint(w)
}

func (w BitWidth) String() string {
	return [...]string{"w8", "w16", "w32", "w64"}[w&3]
}

// PackedType fuses a BitWidth and a Type into the single descriptor
// byte FlexBuffers stores next to every value: (type << 2) | width.
func PackedType(width BitWidth, t Type) byte {
	return byte(t)<<2 | byte(width&3)
}

// UnpackType is the inverse of PackedType.
func UnpackType(packed byte) (t Type, width BitWidth) {
	return Type(packed >> 2), BitWidth(packed & 3)
}

// widthU returns the smallest BitWidth w such that v < 1<<(8*(1<<w)).
func widthU(v uint64) BitWidth {
	if v < 1<<8 {
		return Width8
	}
	if v < 1<<16 {
		return Width16
	}
	if v < 1<<32 {
		return Width32
	}
	return Width64
}

// widthI returns the smallest BitWidth that can hold the signed
// value v in two's complement form.
func widthI(v int64) BitWidth {
	if v >= -(1<<7) && v < 1<<7 {
		return Width8
	}
	if v >= -(1<<15) && v < 1<<15 {
		return Width16
	}
	if v >= -(1<<31) && v < 1<<31 {
		return Width32
	}
	return Width64
}

// padding returns the number of zero bytes required after a region
// of size bufSize so that the next write of width elemWidth is
// aligned to elemWidth. elemWidth must be a power of two.
func padding(bufSize, elemWidth int) int {
	return (-bufSize) & (elemWidth - 1)
}

// byteWidthToBitWidth is the inverse of BitWidth.ByteWidth for the
// four legal physical widths; n must be one of {1,2,4,8}.
func byteWidthToBitWidth(n int) BitWidth {
	switch n {
	case 1:
		return Width8
	case 2:
		return Width16
	case 4:
		return Width32
	case 8:
		return Width64
	default:
		panic("flexbuffers: invalid byte width")
	}
}

func maxWidth(a, b BitWidth) BitWidth {
	if a > b {
		return a
	}
	return b
}
