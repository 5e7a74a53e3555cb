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
	"fmt"
	"sync/atomic"
)

// NoMessageID marks a buffer created without a leading 16-bit message-id slot.
const NoMessageID uint16 = 0xFFFF

// MessageBuffer is a reference-counted, fixed-size byte buffer carrying one
// protocol message. It is the single unit shared between socket reads, the
// dispatcher, the send queues and the front-end forwarding pipe.
//
// The payload optionally reserves its first two bytes for a message-id, written
// by the first Writer attached to the buffer. Payload bytes must only be mutated
// by the buffer's unique writer before the reference count is incremented past
// one; every other holder treats the payload as read-only. This is a caller
// contract, not something the type enforces structurally.
type MessageBuffer struct {
	refs    int32
	id      uint16
	hasID   bool
	payload []byte
	// length is the logical size of the payload; it starts equal to
	// len(payload) and can only shrink, via Writer.FinishMessage.
	length int
}

// New allocates a MessageBuffer with no embedded message-id whose payload has
// the given capacity.
func New(payloadSize int) *MessageBuffer {
	return &MessageBuffer{
		refs:    1,
		payload: make([]byte, payloadSize),
		length:  payloadSize,
	}
}

// NewWithID allocates a MessageBuffer that reserves its first two payload bytes
// for the given message-id. The id is written into the payload immediately so
// that a buffer built this way is wire-ready before any Writer attaches to it.
func NewWithID(id uint16, payloadSize int) *MessageBuffer {
	b := &MessageBuffer{
		refs:    1,
		id:      id,
		hasID:   true,
		payload: make([]byte, 2+payloadSize),
		length:  2 + payloadSize,
	}
	b.payload[0] = byte(id >> 8)
	b.payload[1] = byte(id)
	return b
}

// WrapReceived builds a MessageBuffer around bytes already read off the wire
// (e.g. one UDP datagram). The slice is taken by reference, not copied.
func WrapReceived(raw []byte) *MessageBuffer {
	return &MessageBuffer{
		refs:    1,
		payload: raw,
		length:  len(raw),
	}
}

// HasMessageID reports whether this buffer reserves a leading message-id.
func (b *MessageBuffer) HasMessageID() bool {
	return b.hasID
}

// MessageID returns the embedded message-id, or NoMessageID if none is present.
func (b *MessageBuffer) MessageID() uint16 {
	if !b.hasID {
		return NoMessageID
	}
	return b.id
}

// Len returns the current logical payload length (after any FinishMessage
// shrink).
func (b *MessageBuffer) Len() int {
	return b.length
}

// Bytes returns the logical payload as a slice. Callers must not retain it
// beyond the buffer's lifetime without holding their own Ref.
func (b *MessageBuffer) Bytes() []byte {
	return b.payload[:b.length]
}

// Cap returns the full allocated capacity, including any bytes beyond the
// logical length left over from FinishMessage.
func (b *MessageBuffer) Cap() int {
	return len(b.payload)
}

// Ref atomically increments the reference count and returns the same buffer,
// so calls can be chained at the point of hand-off: queue.push(buf.Ref()).
func (b *MessageBuffer) Ref() *MessageBuffer {
	atomic.AddInt32(&b.refs, 1)
	return b
}

// Unref atomically decrements the reference count. The backing storage is
// released for garbage collection when the count reaches zero; calling Unref
// more times than the buffer was ref'd is a programming error and panics in
// order to surface the bug immediately rather than corrupt a shared payload.
func (b *MessageBuffer) Unref() {
	n := atomic.AddInt32(&b.refs, -1)
	if n < 0 {
		panic(fmt.Sprintf("buffer: Unref called more times than Ref on message id %d", b.MessageID()))
	}
	if n == 0 {
		b.payload = nil
	}
}

// RefCount returns the current reference count, for tests and diagnostics only.
func (b *MessageBuffer) RefCount() int32 {
	return atomic.LoadInt32(&b.refs)
}
