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

// Package plugin describes the collaboration protocols ("plug-ins") a
// server offers and a client negotiates (§4.7). A Protocol is a capability
// record, not an interface a plug-in must implement by embedding: composing
// a server out of plug-ins is wiring a slice of these records into a
// Registry, not satisfying a type hierarchy.
package plugin

import "github.com/sabouaram/collab/handshake"

// ClientID identifies one connected client, shared with the handshake and
// server packages.
type ClientID = handshake.ClientID

// Protocol is one collaboration protocol a server can offer or a client can
// request: its name and version, how many message-ids it needs in each
// direction, and the lifecycle hooks the server calls once bases are
// assigned.
type Protocol struct {
	Name    string
	Version uint16

	NumClientMessages uint16
	NumServerMessages uint16

	// SetMessageBases is called once per connection immediately after
	// negotiation succeeds, handing the plug-in its contiguous message-id
	// ranges for that connection.
	SetMessageBases func(clientBase, serverBase uint16)

	// Start is called once, at server boot, after the Registry is frozen.
	Start func()

	// ClientConnected/ClientDisconnected fire for every client that
	// negotiated this protocol, in addition to the handshake-level
	// ClientConnectNotification.
	ClientConnected    func(id ClientID)
	ClientDisconnected func(id ClientID)
}

// Negotiated is the per-connection outcome of §4.5 steps 3-4 for one
// protocol: its index in the request, and the message-id bases the server
// assigned it.
type Negotiated struct {
	Index       int
	ClientBase  uint16
	ServerBase  uint16
}
