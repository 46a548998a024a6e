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

	"github.com/dchest/siphash"
	"golang.org/x/exp/maps"
)

// poolEntry records where a previously-interned key or string lives
// in the builder's buffer, so a later occurrence of the same content
// can reuse it instead of being re-emitted.
type poolEntry struct {
	sloc   int
	length int
}

// sharedPool deduplicates byte content (keys or strings) by
// content-hash, the way ion.Symtab deduplicates symbol strings by
// their Go string value. Unlike Symtab, a sharedPool's keys are
// offsets into a mutable byte buffer rather than immutable Go
// strings, so a hash collision is confirmed by re-reading the
// pooled bytes rather than trusted blindly: two different contents
// that hash alike MUST NOT be silently aliased.
type sharedPool struct {
	entries map[uint64][]poolEntry
}

func (p *sharedPool) hash(content []byte) uint64 {
	return siphash.Hash(0, 0, content)
}

// find looks up content in the pool, confirming equality against the
// bytes actually stored at each candidate's location in buf. It
// returns the sloc of a matching entry, or ok=false on a miss.
func (p *sharedPool) find(buf []byte, content []byte) (sloc int, ok bool) {
	if p.entries == nil {
		return 0, false
	}
	h := p.hash(content)
	for _, e := range p.entries[h] {
		if e.length != len(content) {
			continue
		}
		if bytes.Equal(buf[e.sloc:e.sloc+e.length], content) {
			return e.sloc, true
		}
	}
	return 0, false
}

// intern records a freshly-written occurrence of content at sloc so
// future identical content can be shared with it.
func (p *sharedPool) intern(content []byte, sloc int) {
	if p.entries == nil {
		p.entries = make(map[uint64][]poolEntry)
	}
	h := p.hash(content)
	p.entries[h] = append(p.entries[h], poolEntry{sloc: sloc, length: len(content)})
}

// reset clears the pool for reuse without discarding the underlying
// map allocation, the same tradeoff ion.Symtab's Reset makes via
// maps.Clear rather than reassigning a fresh map on every builder
// Reset.
func (p *sharedPool) reset() {
	if p.entries != nil {
		maps.Clear(p.entries)
	}
}
