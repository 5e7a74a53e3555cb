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

// Package socket implements the non-blocking TCP/UDP/unix transport layer:
// a fixed-capacity ring receive buffer shared by every listener family, plus
// the tcp/udp/unix/unixgram server and client sockets under socket/server and
// socket/client.
package socket

import "fmt"

// RingBuffer is a fixed-capacity byte ring absorbing reads from a socket
// faster than the dispatcher drains them. Writes beyond capacity are
// rejected rather than silently dropped, matching §4.2's "fixed-capacity
// ring receive buffer".
type RingBuffer struct {
	data       []byte
	head, tail int
	size       int
}

// NewRingBuffer returns a ring with the given byte capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{data: make([]byte, capacity)}
}

// Len returns the number of unread bytes currently held.
func (r *RingBuffer) Len() int { return r.size }

// Free returns the number of bytes that can still be written before the ring
// is full.
func (r *RingBuffer) Free() int { return len(r.data) - r.size }

// Write appends p, wrapping around the end of the backing array as needed.
// It returns an error if p does not fit in the remaining free space.
func (r *RingBuffer) Write(p []byte) error {
	if len(p) > r.Free() {
		return fmt.Errorf("socket: ring buffer overflow: %d bytes requested, %d free", len(p), r.Free())
	}
	n := len(r.data)
	for _, b := range p {
		r.data[r.tail] = b
		r.tail = (r.tail + 1) % n
	}
	r.size += len(p)
	return nil
}

// Peek returns the next n unread bytes without consuming them. It panics if
// n exceeds Len.
func (r *RingBuffer) Peek(n int) []byte {
	if n > r.size {
		panic(fmt.Sprintf("socket: ring buffer Peek(%d) exceeds Len()=%d", n, r.size))
	}
	out := make([]byte, n)
	m := len(r.data)
	for i := 0; i < n; i++ {
		out[i] = r.data[(r.head+i)%m]
	}
	return out
}

// Discard consumes n bytes without returning them, advancing the read
// cursor. It panics if n exceeds Len.
func (r *RingBuffer) Discard(n int) {
	if n > r.size {
		panic(fmt.Sprintf("socket: ring buffer Discard(%d) exceeds Len()=%d", n, r.size))
	}
	r.head = (r.head + n) % len(r.data)
	r.size -= n
}

// Read consumes and returns the next n unread bytes, equivalent to
// Peek(n) followed by Discard(n).
func (r *RingBuffer) Read(n int) []byte {
	p := r.Peek(n)
	r.Discard(n)
	return p
}
