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

// Package unix implements the reliable-channel outbound connection over a
// Unix domain stream socket, for collabc instances running alongside the
// core on the same host.
package unix

import (
	"github.com/sabouaram/collab/network/protocol"
	clitcp "github.com/sabouaram/collab/socket/client/tcp"
	sckcfg "github.com/sabouaram/collab/socket/config"
)

// ClientUnix is an outbound reliable-channel connection bound to a
// filesystem path.
type ClientUnix = clitcp.ClientTcp

// New returns a ClientUnix targeting the socket file at path.
func New(path string) (ClientUnix, error) {
	return clitcp.NewWithConfig(sckcfg.Client{Network: protocol.NetworkUnix, Address: path})
}
