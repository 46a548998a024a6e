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

// StartMap marks the beginning of a map. Entries are added as
// alternating (key, value) pairs, via AddKey followed by one of the
// Add* scalar/string/blob/vector/map calls, or via the AddXxxKey
// convenience wrappers. The returned marker must be passed to the
// matching EndMap call.
func (b *Builder) StartMap() int {
	b.assertNotFinished()
	return len(b.stack)
}

// StartMapKey is StartMap preceded by a field key, for nesting a map
// as a value inside an enclosing map.
func (b *Builder) StartMapKey(key string) int {
	b.AddKey(key)
	return b.StartMap()
}

// keyBytes reads the NUL-terminated bytes of a key-typed value out of
// the buffer being built.
func (b *Builder) keyBytes(k value) []byte {
	buf := b.buf.bytes()
	sloc := k.sloc()
	end := sloc
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return buf[sloc:end]
}

// valuesEqual reports whether two staged values are indistinguishable
// for the purposes of duplicate-key detection. Offset-bearing values
// (strings, blobs, vectors, maps) are compared by their storage
// location: since this package's key/string pools collapse identical
// content to a single location, two independently-written but
// content-equal values are the only case this underestimates, which
// only makes duplicate-key detection slightly more conservative, not
// incorrect from the typical interned-constant-key access pattern.
func valuesEqual(a, b value) bool {
	if a.typ != b.typ {
		return false
	}
	switch {
	case a.typ.IsInline():
		return a.ival == b.ival && a.uval == b.uval && a.fval == b.fval
	default:
		return a.sloc() == b.sloc()
	}
}

// EndMap closes the map opened at marker: it sorts the accumulated
// (key, value) pairs by key bytes, emits the keys as a typed key
// vector, then emits the values as a map value vector prefixed by the
// keys vector's offset and element width, and returns the buffer
// offset of the first value slot (just past the keys offset, keys
// width and count words), the position that back-offsets to the map
// point at.
//
// If two pairs share identical key bytes but differing values,
// Builder.HasDuplicateKeys will report true after EndMap returns;
// this is surfaced as a non-fatal signal, not an error.
func (b *Builder) EndMap(marker int) int {
	b.assertNotFinished()
	entries := b.stack[marker:]
	if len(entries)%2 != 0 {
		panic("flexbuffers: EndMap called with an odd number of stack entries")
	}
	n := len(entries) / 2

	type pair struct {
		key, val value
		keyBytes []byte
	}
	pairs := make([]pair, n)
	for i := 0; i < n; i++ {
		k := entries[2*i]
		if k.typ != KeyType {
			panic("flexbuffers: map entry at even offset is not a key")
		}
		pairs[i] = pair{key: k, val: entries[2*i+1], keyBytes: b.keyBytes(k)}
	}

	// insertion sort is sufficient here (n is typically small) and
	// makes the duplicate scan below a simple adjacent-pair check
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && bytes.Compare(pairs[j].keyBytes, pairs[j-1].keyBytes) < 0; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	for i := 1; i < len(pairs); i++ {
		if bytes.Equal(pairs[i].keyBytes, pairs[i-1].keyBytes) && !valuesEqual(pairs[i].val, pairs[i-1].val) {
			b.hasDuplicateKeys = true
		}
	}

	keyElems := make([]value, n)
	valElems := make([]value, n)
	for i, p := range pairs {
		keyElems[i] = p.key
		valElems[i] = p.val
	}

	keysVal, _ := b.endVectorImpl(keyElems, true, false, 1, nil, false)
	mapVal, vloc := b.endVectorImpl(valElems, false, false, 3, &keysVal, true)
	_ = mapVal

	b.stack = b.stack[:marker]
	b.push(mapVal)
	return vloc
}
