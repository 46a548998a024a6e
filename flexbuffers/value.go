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

// value is a construction-stack entry: a deferred write ticket.
//
// For inline scalars (null, int, uint, float, bool) the payload is
// the value itself. For everything else (string, blob, key, vector*,
// map, indirect_*) the payload is the absolute byte offset ("sloc")
// within the builder's buffer at which the referent was written.
//
// The payload is a three-armed union (signed, unsigned, double), per
// the source this format is modeled on; only one arm is meaningful
// for a given typ, and accessors on the wrong arm return the zero
// value rather than erroring, since picking the wrong arm is a
// programming error internal to this package, never a user input.
type value struct {
	typ   Type
	width BitWidth // bit_width: the scalar's own width, or the width at which sloc's length prefix was written
	ival  int64
	uval  uint64
	fval  float64
}

func inlineInt(v int64) value {
	return value{typ: IntType, width: widthI(v), ival: v}
}

func inlineUint(v uint64) value {
	return value{typ: UIntType, width: widthU(v), uval: v}
}

func inlineBool(b bool) value {
	v := value{typ: BoolType, width: Width8}
	if b {
		v.uval = 1
	}
	return v
}

func inlineFloat32(f float32) value {
	return value{typ: FloatType, width: Width32, fval: float64(f)}
}

func inlineFloat64(f float64) value {
	return value{typ: FloatType, width: Width64, fval: f}
}

func nullValue() value {
	return value{typ: NullType, width: Width8}
}

// offsetValue builds a value for an offset-bearing type: sloc is the
// absolute offset at which the referent begins, and width is the
// bit-width used to encode the referent's own length prefix (for
// string/blob/key) or element width (for vector/map).
func offsetValue(typ Type, sloc int, width BitWidth) value {
	return value{typ: typ, width: width, uval: uint64(sloc)}
}

func (v value) sloc() int { return int(v.uval) }

// isInline reports whether v's payload is the value itself rather
// than a back-reference.
func (v value) isInline() bool {
	return v.typ.IsInline()
}

// elementWidth answers: if v were written at logical position
// logicalIndex inside a vector/map whose payload starts (after
// alignment) at bufferSize, what bit width suffices to hold it?
//
// For inline scalars the answer is simply the value's own width,
// since they do not reference other bytes. For offset-bearing types
// it is the smallest width that can hold the back-offset from the
// slot to sloc.
func (v value) elementWidth(bufferSize, logicalIndex int) BitWidth {
	if v.isInline() {
		return v.width
	}
	for _, bw := range [...]int{1, 2, 4, 8} {
		offsetLoc := bufferSize + padding(bufferSize, bw) + logicalIndex*bw
		offset := offsetLoc - v.sloc()
		w := widthU(uint64(offset))
		if w.ByteWidth() == bw {
			return w
		}
	}
	return Width64
}

// storedWidth is the width recorded in the packed-type byte written
// alongside v inside a vector/map whose elected element width is bw.
// Every element's slot is physically bw bytes wide regardless of this
// value, so it carries different information for the two value
// families: an inline scalar's packed type is widened to at least bw
// so a reader that looks only at this byte can tell how wide the
// physical slot is; an offset-bearing value's packed type instead
// reports its own internal width unchanged (the width its length
// prefix, element array, or map layout actually lives at) so the
// reader can recover that child width later when it dereferences
// into the referent — widening it here would make that recovery
// silently wrong whenever bw exceeds the referent's own width.
func (v value) storedWidth(bw BitWidth) BitWidth {
	if v.isInline() {
		return maxWidth(v.width, bw)
	}
	return v.width
}
