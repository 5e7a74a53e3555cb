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

package buffer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer is an advancing cursor over a MessageBuffer's payload used while
// building an outgoing message. Multi-byte fields are written in the cursor's
// declared byte order as-is; readers are responsible for swapping if their
// connection's negotiated endianness differs from the writer's.
type Writer struct {
	buf    *MessageBuffer
	order  binary.ByteOrder
	cursor int
	closed bool
}

// NewWriter returns a Writer over buf, taking a Ref on it. If the buffer
// reserves a leading message-id, the cursor starts past those two bytes (they
// were already written by NewWithID).
func NewWriter(buf *MessageBuffer, order binary.ByteOrder) *Writer {
	buf.Ref()
	start := 0
	if buf.hasID {
		start = 2
	}
	return &Writer{buf: buf, order: order, cursor: start}
}

// Buffer returns the underlying MessageBuffer without transferring ownership.
func (w *Writer) Buffer() *MessageBuffer { return w.buf }

// Pos returns the current cursor offset.
func (w *Writer) Pos() int { return w.cursor }

func (w *Writer) ensure(n int) {
	if w.cursor+n > len(w.buf.payload) {
		panic(fmt.Sprintf("buffer: write of %d bytes at offset %d overflows capacity %d", n, w.cursor, len(w.buf.payload)))
	}
}

// WriteRaw copies p verbatim at the cursor and advances.
func (w *Writer) WriteRaw(p []byte) {
	w.ensure(len(p))
	copy(w.buf.payload[w.cursor:], p)
	w.cursor += len(p)
}

func (w *Writer) WriteBool(v bool) {
	w.ensure(1)
	if v {
		w.buf.payload[w.cursor] = 1
	} else {
		w.buf.payload[w.cursor] = 0
	}
	w.cursor++
}

func (w *Writer) WriteUint8(v uint8) {
	w.ensure(1)
	w.buf.payload[w.cursor] = v
	w.cursor++
}

func (w *Writer) WriteUint16(v uint16) {
	w.ensure(2)
	w.order.PutUint16(w.buf.payload[w.cursor:], v)
	w.cursor += 2
}

func (w *Writer) WriteUint32(v uint32) {
	w.ensure(4)
	w.order.PutUint32(w.buf.payload[w.cursor:], v)
	w.cursor += 4
}

func (w *Writer) WriteUint64(v uint64) {
	w.ensure(8)
	w.order.PutUint64(w.buf.payload[w.cursor:], v)
	w.cursor += 8
}

func (w *Writer) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteVarInt writes v using the 1-5 byte encoding from the wire codec: the
// top three bits of the first byte encode the continuation-byte count
// r in {0,1,2,3,4}, the low five bits hold the high value bits (unused when
// r==4, since four little-endian continuation bytes already span a full
// uint32), and the continuation bytes themselves are little-endian.
func (w *Writer) WriteVarInt(v uint32) {
	switch {
	case v < 1<<5:
		w.WriteUint8(uint8(v))
	case v < 1<<13:
		w.WriteUint8(0x20 | uint8(v>>8&0x1F))
		w.WriteUint8(uint8(v))
	case v < 1<<21:
		w.WriteUint8(0x40 | uint8(v>>16&0x1F))
		w.WriteUint8(uint8(v))
		w.WriteUint8(uint8(v >> 8))
	case v < 1<<29:
		w.WriteUint8(0x60 | uint8(v>>24&0x1F))
		w.WriteUint8(uint8(v))
		w.WriteUint8(uint8(v >> 8))
		w.WriteUint8(uint8(v >> 16))
	default:
		w.WriteUint8(0x80)
		w.WriteUint8(uint8(v))
		w.WriteUint8(uint8(v >> 8))
		w.WriteUint8(uint8(v >> 16))
		w.WriteUint8(uint8(v >> 24))
	}
}

// WriteString writes a VarInt length prefix followed by the raw bytes.
func (w *Writer) WriteString(s string) {
	w.WriteVarInt(uint32(len(s)))
	w.WriteRaw([]byte(s))
}

// WritePadded writes s truncated or zero-padded to exactly n bytes, for the
// fixed-size text fields used by the handshake messages.
func (w *Writer) WritePadded(s string, n int) {
	buf := make([]byte, n)
	copy(buf, s)
	w.WriteRaw(buf)
}

// FinishMessage shrinks the buffer's logical length to the current cursor
// position, so a partially filled allocation does not ship trailing garbage.
func (w *Writer) FinishMessage() {
	w.buf.length = w.cursor
}

// Close releases the Writer's reference on its buffer. Safe to call once.
func (w *Writer) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.buf.Unref()
}
