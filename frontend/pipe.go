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

// Package frontend carries messages from the back-end dispatcher goroutine
// to an application's own UI/render thread (§4.8). The original design is a
// byte pipe the back end writes a MessageBuffer pointer into, read and
// de-referenced on the front-end side with no copy. A buffered Go channel
// of *buffer.MessageBuffer is that same handoff made idiomatic: it is
// already a lock-free, pointer-carrying queue, so hand-rolling one on top
// of os.Pipe plus manual pointer-width reads/writes would only reintroduce
// what the channel already gives for free.
package frontend

import (
	"context"
	"fmt"

	"github.com/sabouaram/collab/buffer"
)

// DefaultCapacity is the channel capacity Pipe uses when New is called with
// capacity <= 0.
const DefaultCapacity = 256

// Pipe hands MessageBuffers from the back-end dispatcher to a front-end
// consumer loop. The sender must Ref the buffer before Send and the
// receiver must Unref it once done, mirroring the wire code's convention of
// passing ownership of one reference per handoff.
type Pipe struct {
	ch chan *buffer.MessageBuffer
}

// New returns a Pipe buffering up to capacity messages before Send blocks.
func New(capacity int) *Pipe {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pipe{ch: make(chan *buffer.MessageBuffer, capacity)}
}

// Send hands buf to the front end. It blocks if the pipe's buffer is full,
// exerting the same back-pressure a bounded byte pipe would.
func (p *Pipe) Send(buf *buffer.MessageBuffer) {
	p.ch <- buf
}

// TrySend hands buf to the front end without blocking, reporting false (and
// returning buf's reference to the caller) if the pipe's buffer is full.
func (p *Pipe) TrySend(buf *buffer.MessageBuffer) bool {
	select {
	case p.ch <- buf:
		return true
	default:
		return false
	}
}

// Recv blocks until a message is available or ctx is done.
func (p *Pipe) Recv(ctx context.Context) (*buffer.MessageBuffer, error) {
	select {
	case buf := <-p.ch:
		return buf, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("frontend: %w", ctx.Err())
	}
}

// Close drains and Unrefs any buffers left in the pipe, then closes it. Send
// must not be called again afterward.
func (p *Pipe) Close() {
	close(p.ch)
	for buf := range p.ch {
		buf.Unref()
	}
}
