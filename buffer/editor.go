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
)

// Editor mutates an already-serialized MessageBuffer in place, without
// shrinking or growing its logical length. It exists for the one case where a
// server rewrites part of a message it is about to forward rather than
// building a new one: patching the sender id into a relayed UDP datagram's
// header before handing it back to the socket layer. Unlike Writer, Editor
// never calls FinishMessage and never changes buf.length.
type Editor struct {
	buf    *MessageBuffer
	order  binary.ByteOrder
	closed bool
}

// NewEditor returns an Editor over buf, taking a Ref on it.
func NewEditor(buf *MessageBuffer, order binary.ByteOrder) *Editor {
	buf.Ref()
	return &Editor{buf: buf, order: order}
}

func (e *Editor) Buffer() *MessageBuffer { return e.buf }

func (e *Editor) checkBounds(offset, n int) {
	if offset < 0 || offset+n > e.buf.length {
		panic(fmt.Sprintf("buffer: edit of %d bytes at offset %d overflows logical length %d", n, offset, e.buf.length))
	}
}

// PutRaw overwrites len(p) bytes starting at offset with p verbatim.
func (e *Editor) PutRaw(offset int, p []byte) {
	e.checkBounds(offset, len(p))
	copy(e.buf.payload[offset:], p)
}

func (e *Editor) PutUint8(offset int, v uint8) {
	e.checkBounds(offset, 1)
	e.buf.payload[offset] = v
}

func (e *Editor) PutUint16(offset int, v uint16) {
	e.checkBounds(offset, 2)
	e.order.PutUint16(e.buf.payload[offset:], v)
}

func (e *Editor) PutUint32(offset int, v uint32) {
	e.checkBounds(offset, 4)
	e.order.PutUint32(e.buf.payload[offset:], v)
}

func (e *Editor) PutUint64(offset int, v uint64) {
	e.checkBounds(offset, 8)
	e.order.PutUint64(e.buf.payload[offset:], v)
}

// SetMessageID overwrites the embedded message-id in a buffer that reserves
// one, used by the server when it patches a forwarded packet's header rather
// than reassembling the whole message.
func (e *Editor) SetMessageID(id uint16) {
	if !e.buf.hasID {
		panic("buffer: SetMessageID called on a buffer with no message-id slot")
	}
	e.buf.payload[0] = byte(id >> 8)
	e.buf.payload[1] = byte(id)
	e.buf.id = id
}

// Close releases the Editor's reference on its buffer. Safe to call once.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.buf.Unref()
}
