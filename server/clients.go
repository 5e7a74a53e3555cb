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

package server

import (
	"sync"

	"github.com/sabouaram/collab/dispatch"
	"github.com/sabouaram/collab/handshake"
	"github.com/sabouaram/collab/plugin"
	"github.com/sabouaram/collab/socket"
)

// ClientID identifies one connected client, shared with every package that
// takes part in the handshake and plug-in negotiation.
type ClientID = handshake.ClientID

// ClientState is everything the server keeps about one connected client:
// its reactor connection id, negotiated protocols, and the two sockets a
// reply can go out on. conn is only ever written from the reactor goroutine
// and udp only ever written once (on the §4.5 step 5 bind), so neither needs
// its own lock beyond the table's.
type ClientState struct {
	ID         ClientID
	Name       string
	Conn       dispatch.ConnID
	UDPTicket  uint32
	Negotiated map[string]plugin.Negotiated

	conn socket.Context
	udp  socket.Context
}

// clientTable is the server's map[ClientID]*ClientState (and its
// dispatch.ConnID index), guarded by one mutex, per §5's convention that
// every map shared between the reactor and the accept goroutines gets a
// single dedicated lock.
type clientTable struct {
	mu     sync.RWMutex
	nextID uint16
	byID   map[ClientID]*ClientState
	byConn map[dispatch.ConnID]*ClientState
	names  map[string]struct{}
}

func newClientTable() *clientTable {
	return &clientTable{
		byID:   make(map[ClientID]*ClientState),
		byConn: make(map[dispatch.ConnID]*ClientState),
		names:  make(map[string]struct{}),
	}
}

func (t *clientTable) allocateID() ClientID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	return ClientID(t.nextID)
}

// resolveName de-duplicates requested against every name already in use,
// appending a numeric suffix until it is unique, and reserves the result.
func (t *clientTable) resolveName(requested string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if requested == "" {
		requested = "anonymous"
	}
	name := requested
	for i := 2; ; i++ {
		if _, taken := t.names[name]; !taken {
			break
		}
		name = requested + "-" + itoa(i)
	}
	t.names[name] = struct{}{}
	return name
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

func (t *clientTable) add(cs *ClientState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID[cs.ID] = cs
	t.byConn[cs.Conn] = cs
}

func (t *clientTable) remove(cs *ClientState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byID, cs.ID)
	delete(t.byConn, cs.Conn)
	delete(t.names, cs.Name)
}

func (t *clientTable) byClientID(id ClientID) (*ClientState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cs, ok := t.byID[id]
	return cs, ok
}

func (t *clientTable) byConnID(id dispatch.ConnID) (*ClientState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cs, ok := t.byConn[id]
	return cs, ok
}

func (t *clientTable) all() []*ClientState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*ClientState, 0, len(t.byID))
	for _, cs := range t.byID {
		out = append(out, cs)
	}
	return out
}

// TicketFor implements handshake.UDPBinder.
func (t *clientTable) TicketFor(id ClientID) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cs, ok := t.byID[id]
	if !ok {
		return 0, false
	}
	return cs.UDPTicket, true
}

func (t *clientTable) bindUDP(id ClientID, c socket.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cs, ok := t.byID[id]; ok {
		cs.udp = c
	}
}

// SendTCP implements plugin.ClientSink.
func (s *Server) SendTCP(id ClientID, msg *msgBuffer) error {
	cs, ok := s.clients.byClientID(id)
	if !ok {
		msg.Unref()
		return errUnknownClient
	}
	defer msg.Unref()
	_, err := cs.conn.Write(msg.Bytes())
	return err
}

// SendUDP implements plugin.ClientSink.
func (s *Server) SendUDP(id ClientID, msg *msgBuffer) error {
	cs, ok := s.clients.byClientID(id)
	if !ok || cs.udp == nil {
		msg.Unref()
		return errUnknownClient
	}
	defer msg.Unref()
	_, err := cs.udp.Write(msg.Bytes())
	return err
}

// HasUDP implements plugin.ClientSink.
func (s *Server) HasUDP(id ClientID) bool {
	cs, ok := s.clients.byClientID(id)
	return ok && cs.udp != nil
}
