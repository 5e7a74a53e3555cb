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

// Package wire implements the self-describing DataType registry: atomic and
// compound type descriptions, a dictionary that assigns stable IDs to
// compound definitions, and the streaming codec that serializes values to and
// from a buffer.Writer/buffer.Reader pair.
package wire

// Kind tags an atomic or compound type.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Atomic kinds.
	KindBool
	KindChar
	KindSInt8
	KindSInt16
	KindSInt32
	KindSInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindVarInt
	KindString

	// Compound kinds.
	KindPointer
	KindFixedArray
	KindVector
	KindStructure
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindChar:
		return "Char"
	case KindSInt8:
		return "SInt8"
	case KindSInt16:
		return "SInt16"
	case KindSInt32:
		return "SInt32"
	case KindSInt64:
		return "SInt64"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindVarInt:
		return "VarInt"
	case KindString:
		return "String"
	case KindPointer:
		return "Pointer"
	case KindFixedArray:
		return "FixedArray"
	case KindVector:
		return "Vector"
	case KindStructure:
		return "Structure"
	default:
		return "Invalid"
	}
}

// IsAtomic reports whether k is one of the fixed primitive kinds.
func (k Kind) IsAtomic() bool {
	return k >= KindBool && k <= KindString
}

// IsCompound reports whether k is built from other types.
func (k Kind) IsCompound() bool {
	return k >= KindPointer && k <= KindStructure
}
