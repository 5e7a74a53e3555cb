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

package dispatch

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/sabouaram/collab/buffer"
	liblog "github.com/sabouaram/collab/logger"
)

// EventKind tags one entry posted to a Reactor's event channel.
type EventKind uint8

const (
	// EventReadable signals that a connection's ring buffer gained bytes and
	// should be fed through the dispatcher loop.
	EventReadable EventKind = iota

	// EventSignal delivers an opaque pointer to the reactor goroutine from
	// another goroutine (the idiomatic-Go rendition of the original
	// dispatcher's cross-thread "signal" primitive, see §5). Audio capture
	// threads and the front-end pipe's writer side use this to hand a
	// MessageBuffer to the reactor without taking a lock.
	EventSignal

	// EventConnClosed signals that a connection's peer went away or a fatal
	// transport error occurred; the reactor drops the connection's
	// continuation and handler state.
	EventConnClosed

	// EventStop requests a clean reactor shutdown (SIGINT/SIGTERM, per §6).
	EventStop
)

// Event is one entry on a Reactor's event channel.
type Event struct {
	Kind    EventKind
	Conn    ConnID
	Message *buffer.MessageBuffer // populated for EventReadable/EventSignal
	Err     error                 // populated for EventConnClosed
}

type connState struct {
	cont    Continuation
	order   binary.ByteOrder
	swap    bool
	reply   func(buf *buffer.MessageBuffer)
	bcast   func(except ConnID, buf *buffer.MessageBuffer)
	pending []byte // unparsed bytes for this connection, oldest first
	pendID  uint16 // message id of the in-progress continuation, if any
}

// Reactor is a single goroutine that owns a HandlerTable and every
// connection's continuation state. It is the idiomatic-Go rendition of the
// spec's single-threaded event-loop reactor: handlers are only ever invoked
// from Run's goroutine, so every ordering guarantee in §5 holds without
// requiring OS-level epoll semantics in the handler path.
type Reactor struct {
	handlers *HandlerTable
	log      liblog.FuncLog

	events chan Event
	stopped int32

	mu    sync.Mutex
	conns map[ConnID]*connState
}

// NewReactor returns a Reactor dispatching through handlers. queueDepth sizes
// the event channel; a reasonable default is 256.
func NewReactor(handlers *HandlerTable, log liblog.FuncLog, queueDepth int) *Reactor {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	return &Reactor{
		handlers: handlers,
		log:      log,
		events:   make(chan Event, queueDepth),
		conns:    make(map[ConnID]*connState),
	}
}

// RegisterConn installs the per-connection reply/broadcast hooks used to
// build IO values for that connection's handlers.
func (r *Reactor) RegisterConn(id ConnID, order binary.ByteOrder, swap bool, reply func(*buffer.MessageBuffer), bcast func(ConnID, *buffer.MessageBuffer)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connState{order: order, swap: swap, reply: reply, bcast: bcast}
}

// Post enqueues ev for processing by Run's goroutine. Safe to call from any
// goroutine; this is the Reactor's "signal" entry point.
func (r *Reactor) Post(ev Event) {
	if atomic.LoadInt32(&r.stopped) != 0 {
		return
	}
	r.events <- ev
}

// Stop requests a clean shutdown; Run returns once the current event, if
// any, finishes processing.
func (r *Reactor) Stop() {
	if atomic.CompareAndSwapInt32(&r.stopped, 0, 1) {
		r.events <- Event{Kind: EventStop}
	}
}

// Run processes events until ctx is cancelled or Stop is called. It must be
// called from exactly one goroutine per Reactor.
func (r *Reactor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-r.events:
			switch ev.Kind {
			case EventStop:
				return nil
			case EventConnClosed:
				r.dropConn(ev.Conn)
			case EventReadable, EventSignal:
				r.feed(ev.Conn, ev.Message)
			}
		}
	}
}

func (r *Reactor) dropConn(id ConnID) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// feed appends msg's bytes to conn's pending buffer and runs the dispatch
// loop from §4.6: resolve-and-call for a fresh message, or resume the stored
// continuation, looping until neither the handler table nor the buffered
// bytes can make further progress.
func (r *Reactor) feed(id ConnID, msg *buffer.MessageBuffer) {
	r.mu.Lock()
	cs, ok := r.conns[id]
	r.mu.Unlock()
	if !ok {
		msg.Unref()
		return
	}

	if msg != nil {
		cs.pending = append(cs.pending, msg.Bytes()...)
		msg.Unref()
	}

	for {
		if cs.cont == nil {
			if len(cs.pending) < 2 {
				return
			}
			id16 := cs.order.Uint16(cs.pending[:2])
			entry, known := r.handlers.lookup(id16)
			if !known {
				if r.log != nil {
					r.log().Warning("dispatch: no handler for message id", nil)
				}
				cs.pending = cs.pending[2:]
				continue
			}
			if len(cs.pending)-2 < entry.minBytes {
				return
			}
			if !r.invoke(id, cs, entry, nil) {
				return
			}
		} else {
			entry, known := r.handlers.lookup(cs.pendID)
			if !known {
				return
			}
			if !r.invoke(id, cs, entry, cs.cont) {
				return
			}
		}
	}
}

// invoke wraps a single handler call, managing the pending-bytes slice and
// continuation slot. It returns false when the dispatcher should stop
// looping (handler error, or not enough bytes for this attempt).
func (r *Reactor) invoke(id ConnID, cs *connState, entry handlerEntry, cont Continuation) bool {
	// The 2-byte message-id prefix is only ever present once, ahead of the
	// first invocation of a given message; trim it from cs.pending right
	// here so every subsequent continuation resume (and the final completed
	// invocation) sees nothing but payload bytes at offset 0.
	if cont == nil {
		cs.pendID = cs.order.Uint16(cs.pending[:2])
		cs.pending = cs.pending[2:]
	}

	buf := buffer.WrapReceived(append([]byte(nil), cs.pending...))
	reader := buffer.NewReader(buf, cs.order, cs.swap)

	io := &IO{Conn: id, Reader: reader, Reply: cs.reply, Broadcast: cs.bcast}
	next, err := entry.fn(io, cont)
	consumed := reader.Pos()
	reader.Close()

	if err != nil {
		if r.log != nil {
			r.log().Error("dispatch: handler error, closing connection", nil)
		}
		r.dropConn(id)
		return false
	}

	if next != nil {
		cs.cont = next
		return false
	}

	cs.pending = cs.pending[consumed:]
	cs.cont = nil
	return true
}
