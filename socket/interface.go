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

package socket

import (
	"io"
	"net"
	"strings"
)

// DefaultBufferSize is the default per-connection read buffer used by the
// server/client socket implementations when a config does not override it.
const DefaultBufferSize = 32 * 1024

// EOL is the line terminator used by the shell's line-oriented commands.
const EOL = byte('\n')

// Context is the handle a HandlerFunc receives for one accepted connection
// (stream) or logical peer (datagram). It behaves like a net.Conn stripped
// down to what a handler needs: bytes in, bytes out, a way to tear the
// connection down, and the two endpoint addresses for logging/ACLs.
type Context interface {
	io.Reader
	io.Writer
	io.Closer

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// HandlerFunc processes one connection end to end; it owns the Context for
// the connection's lifetime and is responsible for closing it.
type HandlerFunc func(c Context)

// FuncError receives transport-level errors that are not tied to one
// particular connection (accept loop failures, listener teardown).
type FuncError func(errs ...error)

// FuncInfo receives a connection lifecycle notification.
type FuncInfo func(local, remote net.Addr, state ConnState)

// FuncInfoServer receives free-form server lifecycle messages.
type FuncInfoServer func(msg string)

// ConnState names one step of a connection's life, reported through
// FuncInfo for diagnostics and the admin API's connection inspector.
type ConnState uint8

const (
	ConnectionDial ConnState = iota
	ConnectionNew
	ConnectionRead
	ConnectionCloseRead
	ConnectionHandler
	ConnectionWrite
	ConnectionCloseWrite
	ConnectionClose
)

// String renders the connection state the way log lines and the admin API
// report it.
func (s ConnState) String() string {
	switch s {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	default:
		return "Unknown Connection State"
	}
}

// ErrorFilter drops the noise generated when a connection is closed locally
// (net.ErrClosed and its string-matched equivalents on platforms that don't
// wrap it), so callers can log every other error without flooding on normal
// shutdown.
func ErrorFilter(e error) error {
	if e == nil {
		return nil
	}
	if strings.Contains(e.Error(), "use of closed network connection") {
		return nil
	}
	return e
}
