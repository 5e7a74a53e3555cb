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

// StructMember is one named, ordered field of a Structure type. Offset is
// informational (in-memory layout bookkeeping); Go values are addressed by
// Name, not by offset.
type StructMember struct {
	Name   string
	Type   *Type
	Offset uint32
}

// Type describes one atomic or compound DataType. Atomic types are the
// package-level singletons below; compound types are only ever produced by a
// Dictionary, which assigns their IDs.
type Type struct {
	ID   uint8
	Kind Kind

	// Element is the target/member type for Pointer, FixedArray and Vector.
	Element *Type

	// Len is the fixed element count for FixedArray.
	Len uint32

	// Members is the ordered field list for Structure.
	Members []StructMember

	// WireMinSize is the smallest possible encoded size (the size when every
	// nested Vector/String is empty and every Pointer is absent).
	WireMinSize int

	// FixedSize is true iff every nested type is fixed-size: no VarInt, no
	// String, no Vector, no Pointer reached through any level of nesting.
	FixedSize bool
}

var (
	TypeBool    = &Type{ID: 0, Kind: KindBool, WireMinSize: 1, FixedSize: true}
	TypeChar    = &Type{ID: 1, Kind: KindChar, WireMinSize: 1, FixedSize: true}
	TypeSInt8   = &Type{ID: 2, Kind: KindSInt8, WireMinSize: 1, FixedSize: true}
	TypeSInt16  = &Type{ID: 3, Kind: KindSInt16, WireMinSize: 2, FixedSize: true}
	TypeSInt32  = &Type{ID: 4, Kind: KindSInt32, WireMinSize: 4, FixedSize: true}
	TypeSInt64  = &Type{ID: 5, Kind: KindSInt64, WireMinSize: 8, FixedSize: true}
	TypeUInt8   = &Type{ID: 6, Kind: KindUInt8, WireMinSize: 1, FixedSize: true}
	TypeUInt16  = &Type{ID: 7, Kind: KindUInt16, WireMinSize: 2, FixedSize: true}
	TypeUInt32  = &Type{ID: 8, Kind: KindUInt32, WireMinSize: 4, FixedSize: true}
	TypeUInt64  = &Type{ID: 9, Kind: KindUInt64, WireMinSize: 8, FixedSize: true}
	TypeFloat32 = &Type{ID: 10, Kind: KindFloat32, WireMinSize: 4, FixedSize: true}
	TypeFloat64 = &Type{ID: 11, Kind: KindFloat64, WireMinSize: 8, FixedSize: true}
	TypeVarInt  = &Type{ID: 12, Kind: KindVarInt, WireMinSize: 1, FixedSize: false}
	TypeString  = &Type{ID: 13, Kind: KindString, WireMinSize: 1, FixedSize: false}
)

// atomicTypes indexes the atomic singletons by ID for dictionary decoding.
var atomicTypes = map[uint8]*Type{
	TypeBool.ID: TypeBool, TypeChar.ID: TypeChar,
	TypeSInt8.ID: TypeSInt8, TypeSInt16.ID: TypeSInt16, TypeSInt32.ID: TypeSInt32, TypeSInt64.ID: TypeSInt64,
	TypeUInt8.ID: TypeUInt8, TypeUInt16.ID: TypeUInt16, TypeUInt32.ID: TypeUInt32, TypeUInt64.ID: TypeUInt64,
	TypeFloat32.ID: TypeFloat32, TypeFloat64.ID: TypeFloat64,
	TypeVarInt.ID: TypeVarInt, TypeString.ID: TypeString,
}

// FirstCompoundID is the stable ID assigned to the first compound type a
// Dictionary defines; IDs 14 and 15 are reserved.
const FirstCompoundID uint8 = 16

func computeFixedSize(t *Type) bool {
	switch t.Kind {
	case KindVarInt, KindString, KindVector, KindPointer:
		return false
	case KindFixedArray:
		return t.Element.FixedSize
	case KindStructure:
		for _, m := range t.Members {
			if !m.Type.FixedSize {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func computeWireMinSize(t *Type) int {
	switch t.Kind {
	case KindPointer:
		return 1 // presence flag; target omitted when absent
	case KindFixedArray:
		return int(t.Len) * t.Element.WireMinSize
	case KindVector:
		return 1 // VarInt zero-length encodes in one byte
	case KindStructure:
		n := 0
		for _, m := range t.Members {
			n += m.Type.WireMinSize
		}
		return n
	default:
		return t.WireMinSize
	}
}
