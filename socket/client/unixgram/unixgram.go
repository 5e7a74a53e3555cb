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

// Package unixgram implements the best-effort datagram outbound connection
// over a Unix domain datagram socket.
package unixgram

import (
	"github.com/sabouaram/collab/network/protocol"
	cliudp "github.com/sabouaram/collab/socket/client/udp"
	sckcfg "github.com/sabouaram/collab/socket/config"
)

// ClientUnixgram is an outbound best-effort datagram connection bound to a
// filesystem path.
type ClientUnixgram = cliudp.ClientUdp

// New returns a ClientUnixgram targeting the socket file at path.
func New(path string) (ClientUnixgram, error) {
	return cliudp.NewWithConfig(sckcfg.Client{Network: protocol.NetworkUnixGram, Address: path})
}
