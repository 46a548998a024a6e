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

import "bytes"

// Map is a read-only view of a FlexBuffers map: a sorted key vector
// paired with a parallel value vector. The zero Map has Len() == 0.
type Map struct {
	values        Vector
	keysVloc      int
	keysByteWidth int
}

// Len returns the number of entries in the map.
func (m Map) Len() int { return m.values.count }

// KeyAt returns the NUL-terminated key bytes (without the terminator)
// of the i-th entry, in sorted order. KeyAt panics if i is out of
// range.
func (m Map) KeyAt(i int) []byte {
	if i < 0 || i >= m.values.count {
		panic("flexbuffers: map index out of range")
	}
	slot := m.keysVloc + i*m.keysByteWidth
	back := int(readUintAt(m.values.buffer[slot:slot+m.keysByteWidth], m.keysByteWidth))
	pos := slot - back
	end := pos
	for end < len(m.values.buffer) && m.values.buffer[end] != 0 {
		end++
	}
	return m.values.buffer[pos:end]
}

// Index returns a Reference to the i-th value, in the same sorted
// order as KeyAt. Index panics if i is out of range.
func (m Map) Index(i int) Reference {
	return m.values.Index(i)
}

// Get looks up key by binary search over the sorted key vector and
// returns its value and true, or the zero Reference and false if no
// entry has that key.
func (m Map) Get(key string) (Reference, bool) {
	k := []byte(key)
	lo, hi := 0, m.values.count
	for lo < hi {
		mid := (lo + hi) / 2
		cmp := bytes.Compare(m.KeyAt(mid), k)
		switch {
		case cmp == 0:
			return m.Index(mid), true
		case cmp < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return Reference{}, false
}
