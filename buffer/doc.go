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

// Package buffer implements the reference-counted message buffer shared between
// the receive ring, the dispatcher, the send queues and the front-end forwarding
// pipe.
//
// A MessageBuffer is created once per inbound or outbound protocol message and
// passed by reference through every queue that touches it. Every holder that
// keeps a buffer beyond its call frame must call Ref and must call Unref exactly
// once when done; the backing storage is released when the reference count
// transitions to zero.
//
// Three cursor types share a buffer's storage without copying it: Writer advances
// forward while filling a freshly created buffer, Reader advances forward while
// consuming a received one (optionally byte-swapping fields on the fly), and
// Editor mutates an already-serialized payload in place (used when a server
// rewrites a forwarded datagram's embedded header).
package buffer
