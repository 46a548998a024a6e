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

// Vector is a read-only view of a FlexBuffers vector (untyped, typed,
// or fixed-length typed). The zero Vector has Len() == 0.
type Vector struct {
	buffer   []byte
	vloc     int
	width    BitWidth // the vector's own elected element width
	count    int
	typed    bool // elements share elemType and carry no per-element type byte
	elemType Type
}

// Len returns the number of elements in the vector.
func (v Vector) Len() int { return v.count }

// Index returns a Reference to the element at i. Index panics if i is
// out of range, matching the teacher's bounds-checked accessor style.
func (v Vector) Index(i int) Reference {
	if i < 0 || i >= v.count {
		panic("flexbuffers: vector index out of range")
	}
	byteWidth := v.width.ByteWidth()
	slot := v.vloc + i*byteWidth
	if v.typed {
		// typed elements carry no per-element packed-type byte, so
		// there is no independently-elected child width to recover;
		// fall back to the container's own width for both.
		return Reference{
			buffer:      v.buffer,
			offset:      slot,
			parentWidth: v.width,
			childWidth:  v.width,
			packedType:  PackedType(v.width, v.elemType),
			typ:         v.elemType,
		}
	}
	typeBytePos := v.vloc + v.count*byteWidth + i
	packed := v.buffer[typeBytePos]
	typ, childWidth := UnpackType(packed)
	return Reference{
		buffer:      v.buffer,
		offset:      slot,
		parentWidth: v.width, // every slot is physically v.width wide, regardless of the stored width hint
		childWidth:  childWidth,
		packedType:  packed,
		typ:         typ,
	}
}
