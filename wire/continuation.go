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

import "github.com/sabouaram/collab/buffer"

// Continuation is the suspendable-read handle for a value whose full
// encoding has not yet arrived. The dispatcher's ring buffer only ever hands
// the codec a MessageBuffer once its declared size is fully present (see
// dispatch.HandlerTable's MinBytes), so unlike the original implementation's
// byte-granularity suspension this Continuation only ever needs to retry
// once: ContinueReading re-runs Read from the start of t's encoding against
// the (now longer) buffer. This trades a bounded amount of re-parsing for a
// dramatically simpler state machine, which is the right tradeoff at the
// message sizes Koinonia objects and plug-in payloads use.
type Continuation struct {
	Type   *Type
	Offset int
}

// PrepareReading returns a fresh continuation for a value of type t whose
// encoding starts at offset in its connection's ring buffer.
func PrepareReading(t *Type, offset int) *Continuation {
	return &Continuation{Type: t, Offset: offset}
}

// ContinueReading attempts to finish reading cont's value from r, which must
// be positioned at cont.Offset. It returns (value, nil, nil) once the value
// is fully materialized, or (nil, cont, nil) if r ran out of bytes and the
// caller should retry once more data has arrived, or a non-nil error on a
// malformed payload.
func ContinueReading(r *buffer.Reader, cont *Continuation) (Value, *Continuation, error) {
	if r.Pos() != cont.Offset {
		panic("wire: ContinueReading called with a reader not positioned at the continuation's offset")
	}
	v, err := Read(r, cont.Type)
	if err == buffer.ErrShortBuffer {
		return nil, cont, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return v, nil, nil
}
