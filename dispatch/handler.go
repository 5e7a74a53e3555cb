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

// Package dispatch implements the message dispatcher: a table mapping
// message IDs to handlers, and a single-goroutine Reactor that invokes those
// handlers in the order their owning connection's bytes arrive.
package dispatch

import (
	"sync"

	"github.com/sabouaram/collab/buffer"
)

// ConnID identifies one connection within a Reactor, stable for the
// connection's lifetime.
type ConnID uint64

// Continuation is handler-owned state representing a partially consumed
// incoming message. The dispatcher treats it as opaque.
type Continuation interface{}

// IO is the per-invocation handle a handler uses to read the current message
// and queue a reply. It does not expose the raw socket: handlers can only
// read from Reader and write replies via Reply, keeping every byte access
// inside the reactor goroutine.
type IO struct {
	Conn   ConnID
	Reader *buffer.Reader

	// Reply queues buf (already ref'd by the caller) for sending back to
	// Conn over its reliable channel.
	Reply func(buf *buffer.MessageBuffer)

	// Broadcast queues buf for every other connection sharing at least one
	// negotiated plug-in with Conn.
	Broadcast func(except ConnID, buf *buffer.MessageBuffer)
}

// HandlerFunc processes one message (or resumes a suspended one). Returning
// a non-nil Continuation tells the dispatcher the message is not yet
// complete; returning (nil, nil) completes it; a non-nil error tears down
// the connection.
type HandlerFunc func(io *IO, cont Continuation) (Continuation, error)

type handlerEntry struct {
	fn       HandlerFunc
	minBytes int
}

// HandlerTable maps a message ID to its handler and the minimum byte count
// the dispatcher must have buffered before invoking it for a fresh message.
type HandlerTable struct {
	mu      sync.RWMutex
	entries map[uint16]handlerEntry
}

// NewHandlerTable returns an empty table.
func NewHandlerTable() *HandlerTable {
	return &HandlerTable{entries: make(map[uint16]handlerEntry)}
}

// Register installs fn for messageID, overwriting any previous registration.
// minBytes is the payload size (excluding the 2-byte message-id) the
// dispatcher waits for before calling fn with a fresh message.
func (t *HandlerTable) Register(messageID uint16, minBytes int, fn HandlerFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[messageID] = handlerEntry{fn: fn, minBytes: minBytes}
}

// Unregister removes any handler installed for messageID.
func (t *HandlerTable) Unregister(messageID uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, messageID)
}

func (t *HandlerTable) lookup(messageID uint16) (handlerEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[messageID]
	return e, ok
}
