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
	"github.com/sabouaram/collab/buffer"
	liberr "github.com/sabouaram/collab/errors"
)

// CheckSerialization walks a serialized payload, validating structural bounds
// (vector and string lengths must not exceed the remaining buffer) without
// keeping the materialized value around. Read already performs every bounds
// check this requires, so this is a thin, self-documenting wrapper over it.
func CheckSerialization(r *buffer.Reader, t *Type) error {
	_, err := Read(r, t)
	return err
}

// SwapEndianness walks a serialized payload in place, byte-reversing each
// multi-byte atomic field, without ever materializing Go values. It is the
// traversal a server uses to correct a forwarded message's endianness for a
// peer whose negotiated byte order differs from the sender's. offset is the
// position within e's buffer where t's encoding begins; it returns the offset
// just past t's encoding.
func SwapEndianness(e *buffer.Editor, t *Type, offset int) (int, error) {
	data := e.Buffer().Bytes()

	switch t.Kind {
	case KindBool, KindChar, KindSInt8, KindUInt8:
		if offset+1 > len(data) {
			return offset, errShortSwap
		}
		return offset + 1, nil
	case KindSInt16, KindUInt16:
		if err := swapRange(e, data, offset, 2); err != nil {
			return offset, err
		}
		return offset + 2, nil
	case KindSInt32, KindUInt32, KindFloat32:
		if err := swapRange(e, data, offset, 4); err != nil {
			return offset, err
		}
		return offset + 4, nil
	case KindSInt64, KindUInt64, KindFloat64:
		if err := swapRange(e, data, offset, 8); err != nil {
			return offset, err
		}
		return offset + 8, nil
	case KindVarInt:
		_, n, err := peekVarInt(data, offset)
		if err != nil {
			return offset, err
		}
		return offset + n, nil
	case KindString:
		l, n, err := peekVarInt(data, offset)
		if err != nil {
			return offset, err
		}
		end := offset + n + int(l)
		if end > len(data) {
			return offset, errShortSwap
		}
		return end, nil
	case KindPointer:
		if offset+1 > len(data) {
			return offset, errShortSwap
		}
		present := data[offset]
		offset++
		if present == 0 {
			return offset, nil
		}
		return SwapEndianness(e, t.Element, offset)
	case KindFixedArray:
		var err error
		for i := uint32(0); i < t.Len; i++ {
			if offset, err = SwapEndianness(e, t.Element, offset); err != nil {
				return offset, err
			}
		}
		return offset, nil
	case KindVector:
		l, n, err := peekVarInt(data, offset)
		if err != nil {
			return offset, err
		}
		offset += n
		for i := uint32(0); i < l; i++ {
			if offset, err = SwapEndianness(e, t.Element, offset); err != nil {
				return offset, err
			}
		}
		return offset, nil
	case KindStructure:
		var err error
		for _, m := range t.Members {
			if offset, err = SwapEndianness(e, m.Type, offset); err != nil {
				return offset, err
			}
		}
		return offset, nil
	default:
		return offset, errShortSwap
	}
}

var errShortSwap = liberr.New(ErrorMalformedPayload.Uint16(), getMessage(ErrorMalformedPayload))

// swapRange reverses data[offset:offset+n] in place via the editor, so the
// mutation goes through the same bounds-checked path as every other Editor
// write.
func swapRange(e *buffer.Editor, data []byte, offset, n int) error {
	if offset+n > len(data) {
		return errShortSwap
	}
	rev := make([]byte, n)
	for i := 0; i < n; i++ {
		rev[i] = data[offset+n-1-i]
	}
	e.PutRaw(offset, rev)
	return nil
}

// peekVarInt decodes the VarInt encoding from WriteVarInt starting at offset
// without advancing any cursor, returning the value and the number of bytes
// it occupies.
func peekVarInt(data []byte, offset int) (uint32, int, error) {
	if offset+1 > len(data) {
		return 0, 0, errShortSwap
	}
	first := data[offset]
	n := int(first >> 5)
	high := uint32(first & 0x1F)

	if offset+1+n > len(data) {
		return 0, 0, errShortSwap
	}

	var cont [4]byte
	for i := 0; i < n; i++ {
		cont[i] = data[offset+1+i]
	}

	switch n {
	case 0:
		return high, 1, nil
	case 1:
		return high<<8 | uint32(cont[0]), 2, nil
	case 2:
		return high<<16 | uint32(cont[1])<<8 | uint32(cont[0]), 3, nil
	case 3:
		return high<<24 | uint32(cont[2])<<16 | uint32(cont[1])<<8 | uint32(cont[0]), 4, nil
	default:
		return uint32(cont[3])<<24 | uint32(cont[2])<<16 | uint32(cont[1])<<8 | uint32(cont[0]), 5, nil
	}
}
