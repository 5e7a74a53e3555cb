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
	"fmt"
	"sync"

	"github.com/sabouaram/collab/wire"
)

// Table is the server's Koinonia state: every global object and namespace,
// guarded by one RWMutex. The spec calls out that these maps are shared
// between the back-end dispatcher goroutines and the front-end forwarding
// path, so a single dedicated mutex per table is the granularity the
// original design settles on; splitting it further buys nothing since both
// maps are touched together on every CreateObjectRequest/Reply round trip.
type Table struct {
	mu         sync.RWMutex
	nextID     uint16
	byName     map[string]*GlobalObject
	namespaces map[string]*Namespace
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		byName:     make(map[string]*GlobalObject),
		namespaces: make(map[string]*Namespace),
	}
}

// CreateOrJoin implements §4.9's "unknown vs known" branch for
// shareObject/CreateObjectRequest: if name is new, it is stored verbatim
// under a freshly allocated server id; if it already exists, the stored
// serialization wins and the caller's payload is discarded. Either way the
// returned GlobalObject reflects the table's post-call state and subscriber
// is added to its subscriber set.
func (t *Table) CreateOrJoin(name string, dict *wire.Dictionary, typeID uint8, payload []byte, subscriber ClientID) (obj GlobalObject, created bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.byName[name]; ok {
		existing.Subscribers[subscriber] = struct{}{}
		return *existing, false
	}

	t.nextID++
	g := &GlobalObject{
		ServerID:    t.nextID,
		Name:        name,
		Dict:        dict,
		TypeID:      typeID,
		Version:     0,
		Payload:     payload,
		Subscribers: map[ClientID]struct{}{subscriber: {}},
	}
	t.byName[name] = g
	return *g, true
}

// Replace is the only way Version ever advances: it is the sole writer
// entry point the table exposes, so no caller can skip straight to a
// version number out of order.
func (t *Table) Replace(name string, payload []byte) (version uint64, subscribers []ClientID, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.byName[name]
	if !ok {
		return 0, nil, fmt.Errorf("koinonia: unknown object %q", name)
	}
	g.Version++
	g.Payload = payload

	subs := make([]ClientID, 0, len(g.Subscribers))
	for id := range g.Subscribers {
		subs = append(subs, id)
	}
	return g.Version, subs, nil
}

// Lookup returns a copy of the named object's current state.
func (t *Table) Lookup(name string) (GlobalObject, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.byName[name]
	if !ok {
		return GlobalObject{}, false
	}
	return *g, true
}

// Unsubscribe removes id from every object's subscriber set, called on
// client disconnect.
func (t *Table) Unsubscribe(id ClientID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, g := range t.byName {
		delete(g.Subscribers, id)
	}
	for _, ns := range t.namespaces {
		delete(ns.Subscribers, id)
	}
}

// Names returns every global object's name, for the admin API's debug dump
// and the shell's `list` command.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byName))
	for name := range t.byName {
		out = append(out, name)
	}
	return out
}

// Snapshot returns {name: version} for every global object, used by the
// admin API's /debug/koinonia endpoint.
func (t *Table) Snapshot() map[string]uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]uint64, len(t.byName))
	for name, g := range t.byName {
		out[name] = g.Version
	}
	return out
}

// All returns a copy of every global object, for the shell's `save`
// command and the admin API's full-dump endpoint (Snapshot only carries
// versions, not payloads).
func (t *Table) All() []GlobalObject {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]GlobalObject, 0, len(t.byName))
	for _, g := range t.byName {
		out = append(out, *g)
	}
	return out
}

// Delete removes a global object by name, for the shell's `delete` command.
// It is an administrative operation with no wire equivalent: no client ever
// asks the server to forget an object over the protocol itself.
func (t *Table) Delete(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byName[name]; !ok {
		return false
	}
	delete(t.byName, name)
	return true
}

// Restore re-populates the table from a dump loaded by persist.Load,
// for the shell's `load` command. An object already present under the same
// name is left untouched; restoring never overwrites live state.
func (t *Table) Restore(objs []GlobalObject) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, obj := range objs {
		if _, ok := t.byName[obj.Name]; ok {
			continue
		}
		g := obj
		if g.Subscribers == nil {
			g.Subscribers = make(map[ClientID]struct{})
		}
		t.byName[obj.Name] = &g
		if g.ServerID > t.nextID {
			t.nextID = g.ServerID
		}
	}
}

// ShareNamespace creates the namespace if it does not already exist,
// returning the post-call state either way.
func (t *Table) ShareNamespace(name string, dict *wire.Dictionary, subscriber ClientID) (Namespace, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ns, ok := t.namespaces[name]; ok {
		ns.Subscribers[subscriber] = struct{}{}
		return *ns, false
	}

	t.nextID++
	ns := &Namespace{
		ServerID:    t.nextID,
		Name:        name,
		Dict:        dict,
		Objects:     make(map[uint32]NamespaceObject),
		Subscribers: map[ClientID]struct{}{subscriber: {}},
	}
	t.namespaces[name] = ns
	return *ns, true
}

// CreateNsObject allocates the next object id in namespace name and stores
// obj under it, returning the assigned id and the namespace's current
// subscriber set to broadcast CreateNsObjectNotification to.
func (t *Table) CreateNsObject(name string, typeID uint8, payload []byte) (id uint32, subscribers []ClientID, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ns, ok := t.namespaces[name]
	if !ok {
		return 0, nil, fmt.Errorf("koinonia: unknown namespace %q", name)
	}
	ns.LastObjectID++
	id = ns.LastObjectID
	ns.Objects[id] = NamespaceObject{ServerObjectID: id, TypeID: typeID, Version: 0, Payload: payload}

	subs := make([]ClientID, 0, len(ns.Subscribers))
	for sub := range ns.Subscribers {
		subs = append(subs, sub)
	}
	return id, subs, nil
}

// ReplaceNsObject overwrites an existing namespace object's payload,
// advancing its version.
func (t *Table) ReplaceNsObject(name string, objectID uint32, payload []byte) (version uint64, subscribers []ClientID, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ns, ok := t.namespaces[name]
	if !ok {
		return 0, nil, fmt.Errorf("koinonia: unknown namespace %q", name)
	}
	obj, ok := ns.Objects[objectID]
	if !ok {
		return 0, nil, fmt.Errorf("koinonia: unknown object %d in namespace %q", objectID, name)
	}
	obj.Version++
	obj.Payload = payload
	ns.Objects[objectID] = obj

	subs := make([]ClientID, 0, len(ns.Subscribers))
	for sub := range ns.Subscribers {
		subs = append(subs, sub)
	}
	return obj.Version, subs, nil
}

// DestroyNsObject removes an object from its namespace, returning the
// subscribers to notify.
func (t *Table) DestroyNsObject(name string, objectID uint32) (subscribers []ClientID, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ns, ok := t.namespaces[name]
	if !ok {
		return nil, fmt.Errorf("koinonia: unknown namespace %q", name)
	}
	if _, ok := ns.Objects[objectID]; !ok {
		return nil, fmt.Errorf("koinonia: unknown object %d in namespace %q", objectID, name)
	}
	delete(ns.Objects, objectID)

	subs := make([]ClientID, 0, len(ns.Subscribers))
	for sub := range ns.Subscribers {
		subs = append(subs, sub)
	}
	return subs, nil
}
