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

// Package koinonia implements the shared-object service (§4.9): global
// objects that every subscriber keeps a synchronized replica of, and
// namespaces of dynamically created/destroyed objects. This package holds
// the server's authoritative state and the client's local mirror; the wire
// messages that move objects between them are dispatcher handlers in
// server/ and client/, built on top of wire.Dictionary for serialization.
package koinonia

import "github.com/sabouaram/collab/wire"

// ClientID identifies one subscriber, shared with handshake/plugin: a
// server-assigned unsigned 16-bit id, matching handshake.ClientID's wire
// width.
type ClientID uint16

// GlobalObject is the server's authoritative copy of one named shared
// object: a type, the current serialized value, its version, and the set
// of clients that have it.
type GlobalObject struct {
	ServerID    uint16
	Name        string
	Dict        *wire.Dictionary
	TypeID      uint8
	Version     uint64
	Payload     []byte
	Subscribers map[ClientID]struct{}
}

// NamespaceObject is one dynamically created member of a Namespace.
type NamespaceObject struct {
	ServerObjectID uint32
	TypeID         uint8
	Version        uint64
	Payload        []byte
}

// Namespace is the server's authoritative copy of one dynamic-object
// collection: its own dictionary, the live member objects keyed by the
// server-assigned object id, and its subscriber set.
type Namespace struct {
	ServerID     uint16
	Name         string
	Dict         *wire.Dictionary
	LastObjectID uint32
	Objects      map[uint32]NamespaceObject
	Subscribers  map[ClientID]struct{}
}
