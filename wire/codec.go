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
	"fmt"

	"github.com/sabouaram/collab/buffer"
	liberr "github.com/sabouaram/collab/errors"
)

const (
	ErrorTypeMismatch liberr.CodeError = iota + liberr.MinPkgWire
	ErrorUnknownMember
	ErrorVectorTooLarge
	ErrorMalformedPayload
)

func init() {
	if liberr.ExistInMapMessage(ErrorTypeMismatch) {
		panic(fmt.Errorf("error code collision with package wire"))
	}
	liberr.RegisterIdFctMessage(ErrorTypeMismatch, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorTypeMismatch:
		return "wire: value does not match declared type"
	case ErrorUnknownMember:
		return "wire: structure value is missing a declared member"
	case ErrorVectorTooLarge:
		return "wire: vector/string length exceeds remaining buffer"
	case ErrorMalformedPayload:
		return "wire: malformed serialized payload"
	default:
		return liberr.NullMessage
	}
}

// Value is one in-memory instance of a DataType. Atomic kinds use the obvious
// Go primitive (bool, int8..int64, uint8..uint64, float32/64, uint32 for
// VarInt, string). Pointer uses Value itself, with nil meaning "absent".
// FixedArray and Vector use []Value. Structure uses map[string]Value keyed by
// member name.
type Value = interface{}

// MaxVectorLen bounds a single Vector/String length accepted during decoding,
// guarding against a corrupt or hostile length prefix requesting an
// unreasonable allocation.
const MaxVectorLen = 16 * 1024 * 1024

// CalcSize returns the exact wire length object v would occupy as type t.
func CalcSize(t *Type, v Value) (int, error) {
	switch t.Kind {
	case KindBool, KindChar, KindSInt8, KindUInt8:
		return 1, nil
	case KindSInt16, KindUInt16:
		return 2, nil
	case KindSInt32, KindUInt32, KindFloat32:
		return 4, nil
	case KindSInt64, KindUInt64, KindFloat64:
		return 8, nil
	case KindVarInt:
		return varIntSize(v.(uint32)), nil
	case KindString:
		s := v.(string)
		return varIntSize(uint32(len(s))) + len(s), nil
	case KindPointer:
		if v == nil {
			return 1, nil
		}
		n, err := CalcSize(t.Element, v)
		if err != nil {
			return 0, err
		}
		return 1 + n, nil
	case KindFixedArray:
		elems := v.([]Value)
		if uint32(len(elems)) != t.Len {
			return 0, liberr.New(ErrorTypeMismatch.Uint16(), getMessage(ErrorTypeMismatch))
		}
		total := 0
		for _, e := range elems {
			n, err := CalcSize(t.Element, e)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	case KindVector:
		elems := v.([]Value)
		total := varIntSize(uint32(len(elems)))
		for _, e := range elems {
			n, err := CalcSize(t.Element, e)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	case KindStructure:
		m := v.(map[string]Value)
		total := 0
		for _, member := range t.Members {
			mv, ok := m[member.Name]
			if !ok {
				return 0, liberr.New(ErrorUnknownMember.Uint16(), getMessage(ErrorUnknownMember))
			}
			n, err := CalcSize(member.Type, mv)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	default:
		return 0, fmt.Errorf("wire: CalcSize: unknown kind %s", t.Kind)
	}
}

func varIntSize(v uint32) int {
	switch {
	case v < 1<<5:
		return 1
	case v < 1<<13:
		return 2
	case v < 1<<21:
		return 3
	case v < 1<<29:
		return 4
	default:
		return 5
	}
}

// Write serializes v as type t onto w.
func Write(w *buffer.Writer, t *Type, v Value) error {
	switch t.Kind {
	case KindBool:
		w.WriteBool(v.(bool))
	case KindChar:
		w.WriteUint8(v.(byte))
	case KindSInt8:
		w.WriteInt8(v.(int8))
	case KindSInt16:
		w.WriteInt16(v.(int16))
	case KindSInt32:
		w.WriteInt32(v.(int32))
	case KindSInt64:
		w.WriteInt64(v.(int64))
	case KindUInt8:
		w.WriteUint8(v.(uint8))
	case KindUInt16:
		w.WriteUint16(v.(uint16))
	case KindUInt32:
		w.WriteUint32(v.(uint32))
	case KindUInt64:
		w.WriteUint64(v.(uint64))
	case KindFloat32:
		w.WriteFloat32(v.(float32))
	case KindFloat64:
		w.WriteFloat64(v.(float64))
	case KindVarInt:
		w.WriteVarInt(v.(uint32))
	case KindString:
		w.WriteString(v.(string))
	case KindPointer:
		if v == nil {
			w.WriteBool(false)
			return nil
		}
		w.WriteBool(true)
		return Write(w, t.Element, v)
	case KindFixedArray:
		elems := v.([]Value)
		if uint32(len(elems)) != t.Len {
			return liberr.New(ErrorTypeMismatch.Uint16(), getMessage(ErrorTypeMismatch))
		}
		for _, e := range elems {
			if err := Write(w, t.Element, e); err != nil {
				return err
			}
		}
	case KindVector:
		elems := v.([]Value)
		w.WriteVarInt(uint32(len(elems)))
		for _, e := range elems {
			if err := Write(w, t.Element, e); err != nil {
				return err
			}
		}
	case KindStructure:
		m := v.(map[string]Value)
		for _, member := range t.Members {
			mv, ok := m[member.Name]
			if !ok {
				return liberr.New(ErrorUnknownMember.Uint16(), getMessage(ErrorUnknownMember))
			}
			if err := Write(w, member.Type, mv); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("wire: Write: unknown kind %s", t.Kind)
	}
	return nil
}

// Read deserializes one value of type t from r.
func Read(r *buffer.Reader, t *Type) (Value, error) {
	switch t.Kind {
	case KindBool:
		return r.ReadBool()
	case KindChar, KindUInt8:
		return r.ReadUint8()
	case KindSInt8:
		return r.ReadInt8()
	case KindSInt16:
		return r.ReadInt16()
	case KindSInt32:
		return r.ReadInt32()
	case KindSInt64:
		return r.ReadInt64()
	case KindUInt16:
		return r.ReadUint16()
	case KindUInt32:
		return r.ReadUint32()
	case KindUInt64:
		return r.ReadUint64()
	case KindFloat32:
		return r.ReadFloat32()
	case KindFloat64:
		return r.ReadFloat64()
	case KindVarInt:
		return r.ReadVarInt()
	case KindString:
		return r.ReadString()
	case KindPointer:
		present, err := r.ReadBool()
		if err != nil || !present {
			return nil, err
		}
		return Read(r, t.Element)
	case KindFixedArray:
		elems := make([]Value, t.Len)
		for i := range elems {
			v, err := Read(r, t.Element)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil
	case KindVector:
		n, err := r.ReadVarInt()
		if err != nil {
			return nil, err
		}
		if n > MaxVectorLen {
			return nil, liberr.New(ErrorVectorTooLarge.Uint16(), getMessage(ErrorVectorTooLarge))
		}
		elems := make([]Value, n)
		for i := range elems {
			v, err := Read(r, t.Element)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil
	case KindStructure:
		m := make(map[string]Value, len(t.Members))
		for _, member := range t.Members {
			v, err := Read(r, member.Type)
			if err != nil {
				return nil, err
			}
			m[member.Name] = v
		}
		return m, nil
	default:
		return nil, fmt.Errorf("wire: Read: unknown kind %s", t.Kind)
	}
}

// CreateObject returns the zero value for t: nil for Pointer, an empty
// []Value for Vector, a zero-filled []Value for FixedArray, a fully populated
// map for Structure, and each atomic kind's Go zero value otherwise.
func CreateObject(t *Type) Value {
	switch t.Kind {
	case KindBool:
		return false
	case KindChar, KindUInt8:
		return uint8(0)
	case KindSInt8:
		return int8(0)
	case KindSInt16:
		return int16(0)
	case KindSInt32:
		return int32(0)
	case KindSInt64:
		return int64(0)
	case KindUInt16:
		return uint16(0)
	case KindUInt32, KindVarInt:
		return uint32(0)
	case KindUInt64:
		return uint64(0)
	case KindFloat32:
		return float32(0)
	case KindFloat64:
		return float64(0)
	case KindString:
		return ""
	case KindPointer:
		return nil
	case KindFixedArray:
		elems := make([]Value, t.Len)
		for i := range elems {
			elems[i] = CreateObject(t.Element)
		}
		return elems
	case KindVector:
		return []Value{}
	case KindStructure:
		m := make(map[string]Value, len(t.Members))
		for _, member := range t.Members {
			m[member.Name] = CreateObject(member.Type)
		}
		return m
	default:
		return nil
	}
}

// DestroyObject exists to mirror the original allocator-paired API; Go's
// garbage collector reclaims every representation CreateObject produces, so
// there is nothing to release here. Kept as a no-op so callers written
// against the create/destroy pairing do not need a build tag.
func DestroyObject(t *Type, v Value) {}
