/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/sabouaram/collab/buffer"
)

// Dictionary holds every compound type a connection has agreed on, in
// definition order. The first entry is assigned FirstCompoundID; every
// following entry gets the next ID. A Dictionary is safe for concurrent Define
// calls but callers should finish defining it before sharing it across
// connections.
type Dictionary struct {
	mu    sync.RWMutex
	types []*Type
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{}
}

func (d *Dictionary) append(t *Type) *Type {
	d.mu.Lock()
	defer d.mu.Unlock()
	t.ID = FirstCompoundID + uint8(len(d.types))
	d.types = append(d.types, t)
	return t
}

// DefinePointer registers a Pointer type. target may be nil to create an
// unresolved placeholder for a recursive type; BindPointerTarget must be
// called before any object of this type is serialized.
func (d *Dictionary) DefinePointer(target *Type) *Type {
	t := &Type{Kind: KindPointer, Element: target}
	t.FixedSize = false
	t.WireMinSize = computeWireMinSize(t)
	return d.append(t)
}

// BindPointerTarget resolves a previously unresolved Pointer's target,
// breaking a type cycle after every participant type has been declared.
func (d *Dictionary) BindPointerTarget(ptr *Type, target *Type) {
	if ptr.Kind != KindPointer {
		panic("wire: BindPointerTarget called on a non-Pointer type")
	}
	ptr.Element = target
}

// DefineFixedArray registers a FixedArray of n elements of type elem.
func (d *Dictionary) DefineFixedArray(n uint32, elem *Type) *Type {
	t := &Type{Kind: KindFixedArray, Element: elem, Len: n}
	t.FixedSize = computeFixedSize(t)
	t.WireMinSize = computeWireMinSize(t)
	return d.append(t)
}

// DefineVector registers a Vector (dynamic-length sequence) of elem.
func (d *Dictionary) DefineVector(elem *Type) *Type {
	t := &Type{Kind: KindVector, Element: elem}
	t.FixedSize = false
	t.WireMinSize = computeWireMinSize(t)
	return d.append(t)
}

// DefineStructure registers a Structure with the given ordered members.
func (d *Dictionary) DefineStructure(members []StructMember) *Type {
	t := &Type{Kind: KindStructure, Members: members}
	t.FixedSize = computeFixedSize(t)
	t.WireMinSize = computeWireMinSize(t)
	return d.append(t)
}

// Types returns the compound types in definition order. The returned slice
// must not be mutated.
func (d *Dictionary) Types() []*Type {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.types
}

// ByID returns the type with the given ID, searching atomics first, or nil.
func (d *Dictionary) ByID(id uint8) *Type {
	if t, ok := atomicTypes[id]; ok {
		return t
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id < FirstCompoundID {
		return nil
	}
	idx := int(id - FirstCompoundID)
	if idx < 0 || idx >= len(d.types) {
		return nil
	}
	return d.types[idx]
}

// Encode writes the dictionary's own wire form: a VarInt count of compound
// definitions followed by, per definition, its kind tag and kind-specific
// body. Member/field names are a Go-side convenience and are never put on the
// wire, matching the original implementation's anonymous type IDs.
func (d *Dictionary) Encode() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()

	buf := buffer.New(64 + 16*len(d.types))
	w := buffer.NewWriter(buf, binary.BigEndian)
	defer w.Close()

	w.WriteVarInt(uint32(len(d.types)))
	for _, t := range d.types {
		w.WriteUint8(uint8(t.Kind))
		switch t.Kind {
		case KindPointer:
			w.WriteUint8(t.Element.ID)
		case KindFixedArray:
			w.WriteVarInt(t.Len)
			w.WriteUint8(t.Element.ID)
		case KindVector:
			w.WriteUint8(t.Element.ID)
		case KindStructure:
			w.WriteVarInt(uint32(len(t.Members)))
			for _, m := range t.Members {
				w.WriteUint8(m.Type.ID)
			}
		default:
			panic(fmt.Sprintf("wire: dictionary holds non-compound kind %s", t.Kind))
		}
	}
	w.FinishMessage()

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// rawEntry is a dictionary entry as read off the wire before ID cross
// references are resolved.
type rawEntry struct {
	kind     Kind
	targetID uint8
	length   uint32
	members  []uint8
}

// DecodeDictionary parses the wire form produced by Encode.
func DecodeDictionary(raw []byte) (*Dictionary, error) {
	buf := buffer.WrapReceived(raw)
	r := buffer.NewReader(buf, binary.BigEndian, false)
	defer r.Close()

	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}

	entries := make([]rawEntry, count)
	for i := range entries {
		kb, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		e := rawEntry{kind: Kind(kb)}
		switch e.kind {
		case KindPointer:
			if e.targetID, err = r.ReadUint8(); err != nil {
				return nil, err
			}
		case KindFixedArray:
			if e.length, err = r.ReadVarInt(); err != nil {
				return nil, err
			}
			if e.targetID, err = r.ReadUint8(); err != nil {
				return nil, err
			}
		case KindVector:
			if e.targetID, err = r.ReadUint8(); err != nil {
				return nil, err
			}
		case KindStructure:
			n, err := r.ReadVarInt()
			if err != nil {
				return nil, err
			}
			e.members = make([]uint8, n)
			for j := range e.members {
				if e.members[j], err = r.ReadUint8(); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("wire: unknown compound kind tag %d in dictionary", kb)
		}
		entries[i] = e
	}

	d := &Dictionary{types: make([]*Type, len(entries))}
	for i, e := range entries {
		d.types[i] = &Type{ID: FirstCompoundID + uint8(i), Kind: e.kind}
	}

	lookup := func(id uint8) *Type {
		if t, ok := atomicTypes[id]; ok {
			return t
		}
		if id < FirstCompoundID {
			return nil
		}
		idx := int(id - FirstCompoundID)
		if idx < 0 || idx >= len(d.types) {
			return nil
		}
		return d.types[idx]
	}

	for i, e := range entries {
		t := d.types[i]
		switch e.kind {
		case KindPointer:
			t.Element = lookup(e.targetID)
		case KindFixedArray:
			t.Element = lookup(e.targetID)
			t.Len = e.length
		case KindVector:
			t.Element = lookup(e.targetID)
		case KindStructure:
			t.Members = make([]StructMember, len(e.members))
			for j, mid := range e.members {
				t.Members[j] = StructMember{Type: lookup(mid)}
			}
		}
	}
	for _, t := range d.types {
		t.FixedSize = computeFixedSize(t)
		t.WireMinSize = computeWireMinSize(t)
	}

	return d, nil
}

// Equal reports whether d and other produce identical wire encodings, the
// dictionary-equality rule from §3.
func (d *Dictionary) Equal(other *Dictionary) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(d.Encode(), other.Encode())
}
