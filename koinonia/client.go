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

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// UpdatedFunc is invoked on the front-end side when a global object's
// server state changes, receiving the object's new payload.
type UpdatedFunc func(payload []byte)

// localGlobal is the client's bookkeeping for one shareObject call: the
// local id the application sees, and the server id it maps to once the
// round trip completes.
type localGlobal struct {
	clientID uint32
	serverID uint16
	typeID   uint8
	payload  []byte
	updated  UpdatedFunc
}

// ClientSide is the client's Koinonia state: the dual local/server id maps
// the spec calls for in §3, plus the "has the channel started" gate that
// §4.9 buffers outgoing requests behind. A connection that has not yet
// finished its own startup handshake still lets the application call
// shareObject; the request is queued and flushed once Start is called.
type ClientSide struct {
	mu      sync.Mutex
	started bool
	nextID  uint32

	byLocalName  map[string]*localGlobal
	byServerID   map[uint16]*localGlobal
	pendingNames map[string]struct{}

	group singleflight.Group

	// Send is called once the channel has started, to actually write a
	// CreateObjectRequest for name onto the wire. It is set by the caller
	// that owns the TCP connection (client/), keeping this package free of
	// any socket dependency.
	Send func(name string, typeID uint8, payload []byte)
}

// NewClientSide returns an unstarted ClientSide.
func NewClientSide() *ClientSide {
	return &ClientSide{
		byLocalName:  make(map[string]*localGlobal),
		byServerID:   make(map[uint16]*localGlobal),
		pendingNames: make(map[string]struct{}),
	}
}

// Start flips the started gate and flushes every shareObject call that was
// buffered while the channel was not yet up.
func (c *ClientSide) Start() {
	c.mu.Lock()
	pending := make([]string, 0, len(c.pendingNames))
	for name := range c.pendingNames {
		pending = append(pending, name)
	}
	c.pendingNames = make(map[string]struct{})
	c.started = true
	sendFn := c.Send
	c.mu.Unlock()

	if sendFn == nil {
		return
	}
	for _, name := range pending {
		c.mu.Lock()
		g, ok := c.byLocalName[name]
		c.mu.Unlock()
		if !ok {
			continue
		}
		name, typeID, payload := name, g.typeID, g.payload
		c.group.Do(name, func() (interface{}, error) {
			sendFn(name, typeID, payload)
			return nil, nil
		})
	}
}

// ShareObject implements the client side of §4.9's shareObject: it
// allocates a local object id, remembers the updated callback, and either
// sends the CreateObjectRequest immediately (channel started) or buffers
// it for Start to flush. Concurrent ShareObject calls for the same name
// before the channel starts collapse onto a single outgoing request via
// singleflight, matching the "de-duplicate identical in-flight shares"
// behavior the spec's single-threaded original gets for free from running
// on one thread.
func (c *ClientSide) ShareObject(name string, typeID uint8, payload []byte, updated UpdatedFunc) uint32 {
	c.mu.Lock()
	if g, ok := c.byLocalName[name]; ok {
		c.mu.Unlock()
		return g.clientID
	}
	c.nextID++
	g := &localGlobal{clientID: c.nextID, typeID: typeID, payload: payload, updated: updated}
	c.byLocalName[name] = g
	started := c.started
	if !started {
		c.pendingNames[name] = struct{}{}
	}
	sendFn := c.Send
	c.mu.Unlock()

	if started && sendFn != nil {
		c.group.Do(name, func() (interface{}, error) {
			sendFn(name, typeID, payload)
			return nil, nil
		})
	}
	return g.clientID
}

// OnCreateObjectReply binds a local object to the server's assigned id once
// CreateObjectReply arrives, and delivers the server's authoritative
// payload to the updated callback if the object already existed server-side
// (per §4.9, the submitted value is discarded in that case). The wire
// message carries the object's name, not the client's local id, so the
// caller looks clientID up by name first.
func (c *ClientSide) OnCreateObjectReply(clientID uint32, serverID uint16, payload []byte) {
	c.mu.Lock()
	var g *localGlobal
	for _, cand := range c.byLocalName {
		if cand.clientID == clientID {
			g = cand
			break
		}
	}
	if g == nil {
		c.mu.Unlock()
		return
	}
	g.serverID = serverID
	c.byServerID[serverID] = g
	updated := g.updated
	c.mu.Unlock()

	if updated != nil && payload != nil {
		updated(payload)
	}
}

// OnReplaceNotification delivers a ReplaceObjectNotification to the
// subscriber's updated callback, dispatched on the front-end side per
// §4.9 (the caller is expected to run this from the frontend.Pipe consumer
// goroutine, under the application's own thread).
func (c *ClientSide) OnReplaceNotification(serverID uint16, payload []byte) {
	c.mu.Lock()
	g, ok := c.byServerID[serverID]
	c.mu.Unlock()
	if ok && g.updated != nil {
		g.updated(payload)
	}
}

// LocalIDForName returns the local client id assigned to name by an earlier
// ShareObject call. The wire protocol names objects, not ids, so decoders
// translate a CreateObjectReply's name back to the waiting local id through
// this before calling OnCreateObjectReply.
func (c *ClientSide) LocalIDForName(name string) (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.byLocalName[name]
	if !ok {
		return 0, false
	}
	return g.clientID, true
}

// OnReplaceNotificationByName is OnReplaceNotification keyed by the object's
// name instead of its server id, for decoders that have not learned the
// server id (e.g. a ReplaceObjectNotification for an object this client
// never created itself, only shared).
func (c *ClientSide) OnReplaceNotificationByName(name string, payload []byte) {
	c.mu.Lock()
	g, ok := c.byLocalName[name]
	c.mu.Unlock()
	if ok && g.updated != nil {
		g.updated(payload)
	}
}

// ServerIDFor returns the server-assigned id for a local object, once
// bound.
func (c *ClientSide) ServerIDFor(clientID uint32) (uint16, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range c.byLocalName {
		if g.clientID == clientID {
			return g.serverID, g.serverID != 0
		}
	}
	return 0, false
}
