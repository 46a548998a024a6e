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

import "math"

// writeUintAt writes the low n bytes of u, little-endian, into dst.
// It's required that len(dst) >= n (the caller guarantees capacity),
// mirroring ion's UnsafeWriteUVarint contract.
func writeUintAt(dst []byte, u uint64, n int) {
	for i := 0; i < n; i++ {
		dst[i] = byte(u)
		u >>= 8
	}
}

func readUintAt(src []byte, n int) uint64 {
	var u uint64
	for i := n - 1; i >= 0; i-- {
		u = u<<8 | uint64(src[i])
	}
	return u
}

// readIntAt is readUintAt with sign-extension from an n-byte two's
// complement value, the inverse of writeStaged's IntType case.
func readIntAt(src []byte, n int) int64 {
	u := readUintAt(src, n)
	shift := 64 - 8*uint(n)
	return int64(u<<shift) >> shift
}

// writeStaged appends v's bytes at a target byteWidth. This is the
// "Writing a staged Value at a target byte width" step (spec §4.6).
func (b *byteBuffer) writeStaged(v value, width BitWidth) {
	bw := width.ByteWidth()
	slotPos := b.len()
	dst := b.grow(bw)
	switch v.typ {
	case NullType:
		for i := range dst {
			dst[i] = 0
		}
	case IntType:
		writeUintAt(dst, uint64(v.ival), bw)
	case UIntType, BoolType:
		writeUintAt(dst, v.uval, bw)
	case FloatType:
		switch bw {
		case 4:
			writeUintAt(dst, uint64(math.Float32bits(float32(v.fval))), 4)
		case 8:
			writeUintAt(dst, math.Float64bits(v.fval), 8)
		default:
			panic("flexbuffers: float cannot be narrowed below 32 bits")
		}
	default:
		// offset-bearing: string, key, blob, vector*, map, indirect_*
		offset := uint64(slotPos - v.sloc())
		if bw != 8 && offset >= uint64(1)<<(8*bw) {
			panic("flexbuffers: back-offset does not fit in elected width")
		}
		writeUintAt(dst, offset, bw)
	}
}
