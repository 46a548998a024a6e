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

// Flags controls key/string sharing behavior of a Builder. The
// ordering is deliberate: a flag set is "at least as shareful" as
// any value it is greater than or equal to.
type Flags int

const (
	FlagsNone               Flags = 0
	FlagShareKeys           Flags = 1
	FlagShareStrings        Flags = 2
	FlagShareKeysAndStrings Flags = 3
	FlagShareKeyVectors     Flags = 4
	FlagShareAll            Flags = 7
)

func (f Flags) shareKeys() bool    { return f >= FlagShareKeys }
func (f Flags) shareStrings() bool { return f >= FlagShareKeysAndStrings }

// Builder is a stateful writer that lays out a single FlexBuffers
// document. It owns the byte buffer, the construction stack, and the
// key/string interning pools. A Builder is a mutating state machine
// and must not be used from more than one goroutine at a time; two
// independent Builders do not interact.
type Builder struct {
	buf        byteBuffer
	stack      []value
	keyPool    sharedPool
	stringPool sharedPool
	flags      Flags
	minWidth   BitWidth

	finished         bool
	hasDuplicateKeys bool
}

// NewBuilder creates a Builder whose buffer starts with capacity for
// approximately initialSize bytes.
func NewBuilder(initialSize int) *Builder {
	return NewBuilderWithFlags(initialSize, FlagsNone)
}

// NewBuilderWithFlags is like NewBuilder but additionally configures
// key/string sharing.
func NewBuilderWithFlags(initialSize int, flags Flags) *Builder {
	b := &Builder{flags: flags, minWidth: Width8}
	if initialSize > 0 {
		b.buf.buf = make([]byte, 0, initialSize)
	}
	return b
}

// Flags returns the sharing configuration the Builder was
// constructed with.
func (b *Builder) Flags() Flags { return b.flags }

// MinBitWidth returns the configured width floor (default Width8)
// that every elected vector/map width is raised to at minimum.
func (b *Builder) MinBitWidth() BitWidth { return b.minWidth }

// SetMinBitWidth raises the width floor used by subsequent
// EndVector/EndMap calls. Finish does not apply it to the root slot.
func (b *Builder) SetMinBitWidth(w BitWidth) { b.minWidth = w }

// HasDuplicateKeys reports whether any map constructed by this
// Builder contained two entries with identical key bytes but differing
// values; repeated keys whose values are equal are not reported. This is a
// non-fatal signal (spec's duplicate_keys), surfaced only after
// End map calls have run.
func (b *Builder) HasDuplicateKeys() bool { return b.hasDuplicateKeys }

// Reset returns the Builder to its initial empty state. Flags are
// preserved; pools and the buffer are cleared.
func (b *Builder) Reset() {
	b.buf.reset()
	b.stack = b.stack[:0]
	b.keyPool.reset()
	b.stringPool.reset()
	b.finished = false
	b.hasDuplicateKeys = false
}

// Bytes returns the serialized document. It panics if called before
// Finish.
func (b *Builder) Bytes() []byte {
	if !b.finished {
		panic("flexbuffers: Bytes called before Finish")
	}
	return b.buf.bytes()
}

func (b *Builder) assertNotFinished() {
	if b.finished {
		panic("flexbuffers: builder used after Finish")
	}
}

func (b *Builder) push(v value) {
	b.stack = append(b.stack, v)
}

// --- scalar addition (spec section 4.2) ---

// AddNull pushes an explicit null value.
func (b *Builder) AddNull() {
	b.assertNotFinished()
	b.push(nullValue())
}

// AddBool pushes a boolean scalar.
func (b *Builder) AddBool(v bool) {
	b.assertNotFinished()
	b.push(inlineBool(v))
}

// AddInt pushes a signed integer scalar.
func (b *Builder) AddInt(v int64) {
	b.assertNotFinished()
	b.push(inlineInt(v))
}

// AddUint pushes an unsigned integer scalar.
func (b *Builder) AddUint(v uint64) {
	b.assertNotFinished()
	b.push(inlineUint(v))
}

// AddFloat pushes a single-precision float scalar.
func (b *Builder) AddFloat(v float32) {
	b.assertNotFinished()
	b.push(inlineFloat32(v))
}

// AddDouble pushes a double-precision float scalar.
func (b *Builder) AddDouble(v float64) {
	b.assertNotFinished()
	b.push(inlineFloat64(v))
}

// AddKey appends a NUL-terminated key string and pushes a key-typed
// value referencing it. Keys are shared (deduplicated by content)
// when the Builder's Flags enable key sharing.
func (b *Builder) AddKey(key string) {
	b.assertNotFinished()
	b.push(b.internKey([]byte(key)))
}

// AddKeyBytes is AddKey for raw bytes.
func (b *Builder) AddKeyBytes(key []byte) {
	b.assertNotFinished()
	b.push(b.internKey(key))
}

func (b *Builder) internKey(key []byte) value {
	if b.flags.shareKeys() {
		if sloc, ok := b.keyPool.find(b.buf.bytes(), key); ok {
			return offsetValue(KeyType, sloc, Width8)
		}
	}
	sloc := b.buf.len()
	b.buf.writeBytes(key)
	b.buf.writeBytes([]byte{0})
	if b.flags.shareKeys() {
		b.keyPool.intern(key, sloc)
	}
	return offsetValue(KeyType, sloc, Width8)
}

// AddString pushes a length-prefixed, NUL-terminated UTF-8 string.
// Strings are shared (deduplicated by content) when the Builder's
// Flags enable string sharing.
func (b *Builder) AddString(s string) {
	b.assertNotFinished()
	b.push(b.internString([]byte(s)))
}

// AddStringBytes is AddString for raw UTF-8 bytes.
func (b *Builder) AddStringBytes(s []byte) {
	b.assertNotFinished()
	b.push(b.internString(s))
}

func (b *Builder) internString(s []byte) value {
	if b.flags.shareStrings() {
		if sloc, ok := b.stringPool.find(b.buf.bytes(), s); ok {
			return offsetValue(StringType, sloc, widthU(uint64(len(s))))
		}
	}
	v := b.emitBlob(s, 1, StringType)
	if b.flags.shareStrings() {
		b.stringPool.intern(s, v.sloc())
	}
	return v
}

// AddBlob pushes a length-prefixed byte blob (no NUL terminator).
func (b *Builder) AddBlob(p []byte) {
	b.assertNotFinished()
	b.push(b.emitBlob(p, 0, BlobType))
}

// emitBlob implements the blob emission procedure of spec section
// 4.3: elect a length-prefix width from len(p), align to it, write
// the length, then the content plus `trailing` zero bytes.
func (b *Builder) emitBlob(p []byte, trailing int, typ Type) value {
	return b.emitBlobAtWidth(p, trailing, typ, widthU(uint64(len(p))))
}

// emitBlobAtWidth is emitBlob with the length-prefix width forced to
// lw rather than elected from len(p), for callers that must match an
// already-decided width (restageString).
func (b *Builder) emitBlobAtWidth(p []byte, trailing int, typ Type, lw BitWidth) value {
	lbw := lw.ByteWidth()
	b.buf.align(lbw)
	lenDst := b.buf.grow(lbw)
	writeUintAt(lenDst, uint64(len(p)), lbw)
	sloc := b.buf.len()
	body := b.buf.grow(len(p) + trailing)
	copy(body, p)
	for i := len(p); i < len(body); i++ {
		body[i] = 0
	}
	return offsetValue(typ, sloc, lw)
}

// --- keyed scalar addition: add_<T>_with_key(v, key) ---

func (b *Builder) AddBoolKey(key string, v bool)       { b.AddKey(key); b.AddBool(v) }
func (b *Builder) AddIntKey(key string, v int64)       { b.AddKey(key); b.AddInt(v) }
func (b *Builder) AddUintKey(key string, v uint64)     { b.AddKey(key); b.AddUint(v) }
func (b *Builder) AddFloatKey(key string, v float32)   { b.AddKey(key); b.AddFloat(v) }
func (b *Builder) AddDoubleKey(key string, v float64)  { b.AddKey(key); b.AddDouble(v) }
func (b *Builder) AddStringKey(key string, v string)   { b.AddKey(key); b.AddString(v) }
func (b *Builder) AddBlobKey(key string, v []byte)     { b.AddKey(key); b.AddBlob(v) }
func (b *Builder) AddNullKey(key string)               { b.AddKey(key); b.AddNull() }

// --- finish (spec section 4.7) ---

// Finish completes the document: the single remaining stack entry is
// emitted exactly as if it were the only element of an enclosing
// vector, followed by the two trailer bytes (root packed type, root
// byte width). Finish panics if the stack does not contain exactly
// one value, or if the Builder was already finished.
func (b *Builder) Finish() {
	b.assertNotFinished()
	if len(b.stack) != 1 {
		panic("flexbuffers: Finish called with stack length != 1")
	}
	root := b.stack[0]
	bw := root.elementWidth(b.buf.len(), 0)
	b.buf.align(bw.ByteWidth())
	b.buf.writeStaged(root, bw)
	// The trailing byte-width byte is bw, the width of root's own
	// slot (its parent width as a reader will see it). The packed
	// type's width bits carry root's own internal width instead: for
	// an inline scalar that's bw itself (elementWidth returns a
	// scalar's own width verbatim), but for a string/blob/vector/map
	// root it is the width root's own content (length prefix, element
	// array) was written at, which can differ from the back-offset
	// width bw elects.
	b.buf.writeBytes([]byte{PackedType(root.width, root.typ), byte(bw.ByteWidth())})
	b.stack = b.stack[:0]
	b.finished = true
}
