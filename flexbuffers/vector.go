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

// StartVector marks the beginning of a vector. The returned marker
// must be passed to the matching EndVector call.
func (b *Builder) StartVector() int {
	b.assertNotFinished()
	return len(b.stack)
}

// StartVectorKey is StartVector preceded by a field key, for use
// inside a struct-like map under construction with the low-level
// key/value API.
func (b *Builder) StartVectorKey(key string) int {
	b.AddKey(key)
	return b.StartVector()
}

// EndVector closes the vector opened at marker (the value returned
// by StartVector), electing the smallest element width that can
// encode the element count and every element's back-offset or
// scalar value, then returns the buffer offset of the vector's first
// element slot (just past its length prefix), the position that
// back-offsets to the vector point at.
//
// If typed is true, every element pushed since marker must share the
// same Type, and the vector is encoded without per-element type
// bytes. If fixed is true (only legal when typed is also true), the
// element count is implied by the resulting Type tag rather than
// stored explicitly, and only counts of 2, 3, or 4 scalar int/uint/
// float elements are supported.
func (b *Builder) EndVector(marker int, typed, fixed bool) int {
	b.assertNotFinished()
	elems := append([]value(nil), b.stack[marker:]...)
	v, vloc := b.endVectorImpl(elems, typed, fixed, 1, nil, false)
	b.stack = b.stack[:marker]
	b.push(v)
	return vloc
}

// CreateTypedVector builds a typed int vector from values by pushing
// each element with AddInt and closing the frame with
// EndVector(marker, true, false). The element width is elected as for
// any typed vector, from the count and each element's own minimal
// width; it is not taken from the Go element size, and there is no
// separate emission path.
func (b *Builder) CreateTypedVector(values []int64) int {
	marker := b.StartVector()
	for _, v := range values {
		b.AddInt(v)
	}
	return b.EndVector(marker, true, false)
}

// CreateTypedUintVector is CreateTypedVector for unsigned elements.
func (b *Builder) CreateTypedUintVector(values []uint64) int {
	marker := b.StartVector()
	for _, v := range values {
		b.AddUint(v)
	}
	return b.EndVector(marker, true, false)
}

// CreateTypedFloatVector is CreateTypedVector for float32 elements.
func (b *Builder) CreateTypedFloatVector(values []float32) int {
	marker := b.StartVector()
	for _, v := range values {
		b.AddFloat(v)
	}
	return b.EndVector(marker, true, false)
}

// restageString copies a previously-emitted string (its length prefix
// was elected at e.width) to a new location with its length prefix
// re-elected at newWidth instead, for use inside a typed string vector
// whose single shared width must cover every element's length prefix.
// The original bytes are left in place as orphaned filler.
func (b *Builder) restageString(e value, newWidth BitWidth) value {
	oldLw := e.width.ByteWidth()
	oldSloc := e.sloc()
	n := int(readUintAt(b.buf.bytes()[oldSloc-oldLw:oldSloc], oldLw))
	content := append([]byte(nil), b.buf.bytes()[oldSloc:oldSloc+n]...)
	return b.emitBlobAtWidth(content, 1, StringType, newWidth)
}

// endVectorImpl implements the element-width election and emission
// procedure shared by plain vectors (prefixElems=1, keys=nil) and map
// value vectors (prefixElems=3, keys=the emitted keys vector's
// value). asMap forces the resulting value's Type to MapType
// regardless of typed/fixed.
func (b *Builder) endVectorImpl(elems []value, typed, fixed bool, prefixElems int, keys *value, asMap bool) (value, int) {
	if fixed && !typed {
		panic("flexbuffers: fixed vector must also be typed")
	}
	count := len(elems)

	var elemType Type
	if typed && count > 0 {
		elemType = elems[0].typ
		for _, e := range elems[1:] {
			if e.typ != elemType {
				panic("flexbuffers: typed vector contains mixed element types")
			}
		}
	} else if typed {
		panic("flexbuffers: typed vector requires at least one element to infer its type")
	}

	bufferSize := b.buf.len()
	bw := maxWidth(b.minWidth, widthU(uint64(count)))
	if keys != nil {
		bw = maxWidth(bw, keys.elementWidth(bufferSize, 0))
	}
	for i, e := range elems {
		bw = maxWidth(bw, e.elementWidth(bufferSize, i+prefixElems))
	}

	// Typed vectors carry no per-element packed-type byte, so a string
	// element's own length-prefix width can't be recovered independently
	// at read time: it must equal the vector's elected width exactly.
	// Re-stage any narrower string, which can itself raise the elected
	// width (the restaged copy lives later in the buffer, widening its
	// own back-offset), so repeat until nothing changes.
	if typed && elemType == StringType {
		for {
			changed := false
			for i, e := range elems {
				if e.width != bw {
					elems[i] = b.restageString(e, bw)
					changed = true
				}
			}
			if !changed {
				break
			}
			bufferSize = b.buf.len()
			bw = maxWidth(b.minWidth, widthU(uint64(count)))
			if keys != nil {
				bw = maxWidth(bw, keys.elementWidth(bufferSize, 0))
			}
			for i, e := range elems {
				bw = maxWidth(bw, e.elementWidth(bufferSize, i+prefixElems))
			}
		}
	}

	byteWidth := bw.ByteWidth()
	b.buf.align(byteWidth)

	if keys != nil {
		keysOffsetVal := offsetValue(VectorKeyType, keys.sloc(), keys.width)
		b.buf.writeStaged(keysOffsetVal, bw)
		keyByteWidth := inlineUint(uint64(keys.width.ByteWidth()))
		b.buf.writeStaged(keyByteWidth, bw)
	}
	if !fixed {
		b.buf.writeStaged(inlineUint(uint64(count)), bw)
	}

	vloc := b.buf.len()
	for _, e := range elems {
		b.buf.writeStaged(e, bw)
	}
	if !typed {
		typeBytes := b.buf.grow(count)
		for i, e := range elems {
			typeBytes[i] = PackedType(e.storedWidth(bw), e.typ)
		}
	}

	var resultType Type
	switch {
	case asMap:
		resultType = MapType
	case typed && fixed:
		if count < 2 || count > 4 {
			panic("flexbuffers: fixed typed vectors only support 2, 3, or 4 elements")
		}
		resultType = typedVectorType(elemType, count)
	case typed:
		resultType = typedVectorType(elemType, 0)
	default:
		resultType = VectorType
	}
	return offsetValue(resultType, vloc, bw), vloc
}
