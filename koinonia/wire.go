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

package koinonia

// Message offsets relative to the Koinonia plug-in's negotiated message-id
// bases (§4.7). Both server/ and client/ import these so the two sides of
// the wire agree without duplicating the layout. Every message addresses
// its object by name rather than by a numeric server id, matching Table's
// own API.
const (
	ClientMsgCreateObjectRequest  uint16 = iota // name, typeID, payload
	ClientMsgReplaceObjectRequest               // name, payload
	ClientMsgShareNamespaceRequest               // name
	ClientMsgCreateNsObjectRequest                // nsName, typeID, payload
	ClientMsgReplaceNsObjectRequest                // nsName, objectID, payload
	ClientMsgDestroyNsObjectRequest                 // nsName, objectID

	NumClientMessages
)

const (
	ServerMsgCreateObjectReply           uint16 = iota // name, serverID, typeID, version, payload
	ServerMsgReplaceObjectNotification                  // name, version, payload
	ServerMsgShareNamespaceReply                        // name, nsServerID
	ServerMsgCreateNsObjectNotification                  // nsName, objectID, typeID, version, payload
	ServerMsgReplaceNsObjectNotification                 // nsName, objectID, version, payload
	ServerMsgDestroyNsObjectNotification                  // nsName, objectID

	NumServerMessages
)
