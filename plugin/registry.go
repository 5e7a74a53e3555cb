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

package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// baseAllocStart is the first message-id a Registry hands out. Ids below it
// are reserved for the handshake and connection-lifecycle notifications
// (§4.5), so every plug-in's range begins clear of them.
const baseAllocStart = 16

// Registry holds the set of protocols one server offers and assigns each a
// fixed, non-overlapping message-id range the first time it is resolved.
// Safe for concurrent use: negotiation happens once per incoming
// connection, potentially from multiple handshake goroutines at once.
type Registry struct {
	mu    sync.RWMutex
	byName map[string]*entry
	order []string
}

type entry struct {
	proto      Protocol
	clientBase uint16
	serverBase uint16
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*entry)}
}

// Register adds p to the registry, allocating its client/server message-id
// bases contiguous with whatever was registered before it. Register is not
// safe to call concurrently with itself or with Resolve/Start; call it
// during server setup, before Start.
func (r *Registry) Register(p Protocol) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[p.Name]; exists {
		return fmt.Errorf("plugin: protocol %q already registered", p.Name)
	}

	clientBase := uint16(baseAllocStart)
	serverBase := uint16(baseAllocStart)
	for _, name := range r.order {
		e := r.byName[name]
		clientBase += e.proto.NumClientMessages
		serverBase += e.proto.NumServerMessages
	}

	r.byName[p.Name] = &entry{proto: p, clientBase: clientBase, serverBase: serverBase}
	r.order = append(r.order, p.Name)
	return nil
}

// Start runs every registered plug-in's Start hook, in registration order.
func (r *Registry) Start() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if fn := r.byName[name].proto.Start; fn != nil {
			fn()
		}
	}
}

// Names returns the registered protocol names, in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve implements handshake.ProtocolResolver: it reports the bases a
// named protocol was allocated, if the server offers that protocol at all
// (version mismatches are surfaced by the caller comparing against
// Protocol.Version, since only the server's own version is ever offered).
func (r *Registry) Resolve(name string, _ uint16) (negotiatedVersion, clientBase, serverBase uint16, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, exists := r.byName[name]
	if !exists {
		return 0, 0, 0, false
	}
	return e.proto.Version, e.clientBase, e.serverBase, true
}

// NotifyConnected calls every negotiated protocol's ClientConnected hook
// and hands it its message-id bases, completing §4.5 step 3's allocation.
func (r *Registry) NotifyConnected(id ClientID, negotiated map[string]Negotiated) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(negotiated))
	for name := range negotiated {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e, exists := r.byName[name]
		if !exists {
			continue
		}
		n := negotiated[name]
		if e.proto.SetMessageBases != nil {
			e.proto.SetMessageBases(n.ClientBase, n.ServerBase)
		}
		if e.proto.ClientConnected != nil {
			e.proto.ClientConnected(id)
		}
	}
}

// NotifyDisconnected calls every negotiated protocol's ClientDisconnected
// hook for id.
func (r *Registry) NotifyDisconnected(id ClientID, negotiated map[string]Negotiated) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := range negotiated {
		if e, exists := r.byName[name]; exists && e.proto.ClientDisconnected != nil {
			e.proto.ClientDisconnected(id)
		}
	}
}
