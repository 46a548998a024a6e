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
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var structEncoders sync.Map

type encodefn func(*Builder, reflect.Value)

func compileEncoder(t reflect.Type) (encodefn, bool) {
	// break dependency chains for (mutually-)recursive struct types by
	// delaying compilation of a concurrent lookup until eval time
	slow := func(b *Builder, v reflect.Value) {
		fn, ok := encoderFunc(v.Type())
		if !ok {
			panic("flexbuffers.compileEncoder: failed to compile structure?")
		}
		fn(b, v)
	}
	f, ok := structEncoders.LoadOrStore(t, encodefn(nil))
	if ok {
		fn := f.(encodefn)
		if fn != nil {
			return fn, true
		}
		return slow, true
	}

	type fieldEnc struct {
		index     int
		name      string
		fn        encodefn
		omitempty bool
	}

	var encs []fieldEnc
	fields := reflect.VisibleFields(t)
	for i := range fields {
		if fields[i].PkgPath != "" || len(fields[i].Index) != 1 {
			continue // unexported or promoted embedded struct field
		}
		name := fields[i].Name
		typ := fields[i].Type
		omitempty := false
		if val, ok := fields[i].Tag.Lookup("flexbuffers"); ok {
			var rest string
			name, rest, ok = strings.Cut(val, ",")
			if ok && rest == "omitempty" {
				omitempty = true
			}
		}
		if name == "-" {
			continue
		}
		efn, ok := encoderFunc(typ)
		if !ok {
			continue
		}
		encs = append(encs, fieldEnc{
			index:     fields[i].Index[0],
			name:      name,
			fn:        efn,
			omitempty: omitempty,
		})
	}
	self := func(b *Builder, src reflect.Value) {
		marker := b.StartMap()
		for i := range encs {
			val := src.Field(encs[i].index)
			if encs[i].omitempty && val.IsZero() {
				continue
			}
			b.AddKey(encs[i].name)
			encs[i].fn(b, val)
		}
		b.EndMap(marker)
	}
	structEncoders.Store(t, encodefn(self))
	return self, true
}

func encodeList(b *Builder, inner encodefn, src reflect.Value) {
	marker := b.StartVector()
	l := src.Len()
	for i := 0; i < l; i++ {
		inner(b, src.Index(i))
	}
	b.EndVector(marker, false, false)
}

func encoderFunc(t reflect.Type) (encodefn, bool) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(b *Builder, src reflect.Value) {
			b.AddInt(src.Int())
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(b *Builder, src reflect.Value) {
			b.AddUint(src.Uint())
		}, true
	case reflect.Float32:
		return func(b *Builder, src reflect.Value) {
			b.AddFloat(float32(src.Float()))
		}, true
	case reflect.Float64:
		return func(b *Builder, src reflect.Value) {
			b.AddDouble(src.Float())
		}, true
	case reflect.Slice:
		elem := t.Elem()
		if elem.Kind() == reflect.Uint8 {
			return func(b *Builder, src reflect.Value) {
				b.AddBlob(src.Bytes())
			}, true
		}
		inner, ok := encoderFunc(elem)
		if !ok {
			return nil, false
		}
		return func(b *Builder, src reflect.Value) {
			encodeList(b, inner, src)
		}, true
	case reflect.String:
		return func(b *Builder, src reflect.Value) {
			b.AddString(src.String())
		}, true
	case reflect.Map:
		kt := t.Key()
		if kt.Kind() != reflect.String {
			return nil, false
		}
		eval, ok := encoderFunc(t.Elem())
		if !ok {
			return nil, false
		}
		return func(b *Builder, src reflect.Value) {
			marker := b.StartMap()
			iter := src.MapRange()
			for iter.Next() {
				b.AddKey(iter.Key().String())
				eval(b, iter.Value())
			}
			b.EndMap(marker)
		}, true
	case reflect.Struct:
		return compileEncoder(t)
	case reflect.Bool:
		return func(b *Builder, src reflect.Value) {
			b.AddBool(src.Bool())
		}, true
	case reflect.Pointer:
		body, ok := encoderFunc(t.Elem())
		if !ok {
			return nil, false
		}
		return func(b *Builder, src reflect.Value) {
			if src.IsNil() {
				b.AddNull()
			} else {
				body(b, src.Elem())
			}
		}, true
	case reflect.Interface:
		return func(b *Builder, src reflect.Value) {
			if src.IsNil() {
				b.AddNull()
				return
			}
			val := src.Elem()
			fn, ok := encoderFunc(val.Type())
			if !ok {
				b.AddNull()
				return
			}
			fn(b, val)
		}, true
	default:
		return nil, false
	}
}

// Marshal encodes src onto b's construction stack. If key is
// non-empty, src is encoded as a keyed entry (AddKey(key) followed by
// the value) for use inside an enclosing StartMap/EndMap pair; if key
// is empty, src is pushed as a bare value, for use as a StartVector
// element or as the sole value a top-level Finish will consume.
//
// Marshal does not call Finish; callers that want a complete document
// still drive StartMap/StartVector/Finish themselves, the same way
// Marshal leaves buffer framing to its caller.
func Marshal(b *Builder, key string, src any) error {
	v := reflect.ValueOf(src)
	if !v.IsValid() {
		if key != "" {
			b.AddKey(key)
		}
		b.AddNull()
		return nil
	}
	t := v.Type()
	enc, ok := encoderFunc(t)
	if !ok {
		return fmt.Errorf("flexbuffers.Marshal: cannot marshal type %s", t)
	}
	if key != "" {
		b.AddKey(key)
	}
	enc(b, v)
	return nil
}
