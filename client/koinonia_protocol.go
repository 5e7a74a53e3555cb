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

package client

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/sabouaram/collab/buffer"
	"github.com/sabouaram/collab/dispatch"
	"github.com/sabouaram/collab/koinonia"
)

// koinoniaName is the protocol name both sides negotiate by (§4.9).
const koinoniaName = "Koinonia"

// koinoniaVersion is the single version this implementation speaks.
const koinoniaVersion uint16 = 1

// awaitMore mirrors server's continuation sentinel: returned when a
// message is not fully buffered yet, so the next feed retries decoding
// against the fuller accumulated bytes (§4.6).
type awaitMore struct{}

func asWait(err error) (dispatch.Continuation, error) {
	if errors.Is(err, buffer.ErrShortBuffer) {
		return awaitMore{}, nil
	}
	return nil, err
}

// koinoniaWire is the client-side mirror of server/koinonia_protocol.go: it
// encodes outgoing requests onto the reliable channel and decodes the
// replies/notifications the server sends back, feeding koinonia.ClientSide
// and the Client's namespace callbacks.
type koinoniaWire struct {
	clientBase uint16
	serverBase uint16

	write func([]byte) error
	koi   *koinonia.ClientSide

	mu sync.Mutex

	// OnNamespaceShared etc. are optional, set by Client before Dial
	// completes; invoked from the reactor goroutine as each message
	// decodes, per the same contract koinonia.ClientSide documents for
	// OnReplaceNotification.
	OnNamespaceShared   func(name string, serverID uint16)
	OnNsObjectCreated   func(nsName string, objectID uint32, typeID uint8, version uint64, payload []byte)
	OnNsObjectReplaced  func(nsName string, objectID uint32, version uint64, payload []byte)
	OnNsObjectDestroyed func(nsName string, objectID uint32)
}

func newKoinoniaWire(koi *koinonia.ClientSide) *koinoniaWire {
	return &koinoniaWire{koi: koi}
}

func (kw *koinoniaWire) setBases(clientBase, serverBase uint16) {
	kw.mu.Lock()
	kw.clientBase = clientBase
	kw.serverBase = serverBase
	kw.mu.Unlock()
}

func (kw *koinoniaWire) bases() (uint16, uint16) {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	return kw.clientBase, kw.serverBase
}

// register installs the six server->client decoders into handlers at
// serverBase+offset, and hooks koi.Send to encode outgoing requests.
func (kw *koinoniaWire) register(handlers *dispatch.HandlerTable) {
	_, serverBase := kw.bases()
	handlers.Register(serverBase+uint16(koinonia.ServerMsgCreateObjectReply), 0, kw.handleCreateObjectReply)
	handlers.Register(serverBase+uint16(koinonia.ServerMsgReplaceObjectNotification), 0, kw.handleReplaceObjectNotification)
	handlers.Register(serverBase+uint16(koinonia.ServerMsgShareNamespaceReply), 0, kw.handleShareNamespaceReply)
	handlers.Register(serverBase+uint16(koinonia.ServerMsgCreateNsObjectNotification), 0, kw.handleCreateNsObjectNotification)
	handlers.Register(serverBase+uint16(koinonia.ServerMsgReplaceNsObjectNotification), 0, kw.handleReplaceNsObjectNotification)
	handlers.Register(serverBase+uint16(koinonia.ServerMsgDestroyNsObjectNotification), 0, kw.handleDestroyNsObjectNotification)

	kw.koi.Send = func(name string, typeID uint8, payload []byte) {
		_ = kw.sendCreateObjectRequest(name, typeID, payload)
	}
}

func (kw *koinoniaWire) newMessage(offset uint16, size int) (*buffer.MessageBuffer, *buffer.Writer) {
	clientBase, _ := kw.bases()
	id := clientBase + offset
	buf := buffer.NewWithID(id, size+16)
	return buf, buffer.NewWriter(buf, binary.BigEndian)
}

func (kw *koinoniaWire) send(buf *buffer.MessageBuffer) error {
	defer buf.Unref()
	return kw.write(buf.Bytes())
}

func (kw *koinoniaWire) sendCreateObjectRequest(name string, typeID uint8, payload []byte) error {
	buf, w := kw.newMessage(uint16(koinonia.ClientMsgCreateObjectRequest), len(name)+len(payload)+24)
	w.WriteString(name)
	w.WriteUint8(typeID)
	w.WriteVarInt(uint32(len(payload)))
	w.WriteRaw(payload)
	w.FinishMessage()
	w.Close()
	return kw.send(buf)
}

// ReplaceObject sends a ReplaceObjectRequest for an object this client
// already knows by name.
func (kw *koinoniaWire) ReplaceObject(name string, payload []byte) error {
	buf, w := kw.newMessage(uint16(koinonia.ClientMsgReplaceObjectRequest), len(name)+len(payload)+24)
	w.WriteString(name)
	w.WriteVarInt(uint32(len(payload)))
	w.WriteRaw(payload)
	w.FinishMessage()
	w.Close()
	return kw.send(buf)
}

// ShareNamespace sends a ShareNamespaceRequest; the server's reply arrives
// asynchronously via OnNamespaceShared.
func (kw *koinoniaWire) ShareNamespace(name string) error {
	buf, w := kw.newMessage(uint16(koinonia.ClientMsgShareNamespaceRequest), len(name)+8)
	w.WriteString(name)
	w.FinishMessage()
	w.Close()
	return kw.send(buf)
}

// CreateNsObject sends a CreateNsObjectRequest; the resulting object id
// arrives for every subscriber (this client included) via
// OnNsObjectCreated.
func (kw *koinoniaWire) CreateNsObject(nsName string, typeID uint8, payload []byte) error {
	buf, w := kw.newMessage(uint16(koinonia.ClientMsgCreateNsObjectRequest), len(nsName)+len(payload)+24)
	w.WriteString(nsName)
	w.WriteUint8(typeID)
	w.WriteVarInt(uint32(len(payload)))
	w.WriteRaw(payload)
	w.FinishMessage()
	w.Close()
	return kw.send(buf)
}

// ReplaceNsObject sends a ReplaceNsObjectRequest.
func (kw *koinoniaWire) ReplaceNsObject(nsName string, objectID uint32, payload []byte) error {
	buf, w := kw.newMessage(uint16(koinonia.ClientMsgReplaceNsObjectRequest), len(nsName)+len(payload)+24)
	w.WriteString(nsName)
	w.WriteUint32(objectID)
	w.WriteVarInt(uint32(len(payload)))
	w.WriteRaw(payload)
	w.FinishMessage()
	w.Close()
	return kw.send(buf)
}

// DestroyNsObject sends a DestroyNsObjectRequest.
func (kw *koinoniaWire) DestroyNsObject(nsName string, objectID uint32) error {
	buf, w := kw.newMessage(uint16(koinonia.ClientMsgDestroyNsObjectRequest), len(nsName)+16)
	w.WriteString(nsName)
	w.WriteUint32(objectID)
	w.FinishMessage()
	w.Close()
	return kw.send(buf)
}

func (kw *koinoniaWire) handleCreateObjectReply(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	serverID, err := io.Reader.ReadUint16()
	if err != nil {
		return asWait(err)
	}
	if _, err := io.Reader.ReadUint8(); err != nil { // typeID, unused here
		return asWait(err)
	}
	if _, err := io.Reader.ReadUint64(); err != nil { // version, unused here
		return asWait(err)
	}
	plen, err := io.Reader.ReadVarInt()
	if err != nil {
		return asWait(err)
	}
	payload := make([]byte, plen)
	if err := io.Reader.ReadRaw(payload); err != nil {
		return asWait(err)
	}

	if clientID, ok := kw.koi.LocalIDForName(name); ok {
		kw.koi.OnCreateObjectReply(clientID, serverID, payload)
	}
	return nil, nil
}

func (kw *koinoniaWire) handleReplaceObjectNotification(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	if _, err := io.Reader.ReadUint64(); err != nil { // version, unused here
		return asWait(err)
	}
	plen, err := io.Reader.ReadVarInt()
	if err != nil {
		return asWait(err)
	}
	payload := make([]byte, plen)
	if err := io.Reader.ReadRaw(payload); err != nil {
		return asWait(err)
	}

	kw.koi.OnReplaceNotificationByName(name, payload)
	return nil, nil
}

func (kw *koinoniaWire) handleShareNamespaceReply(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	serverID, err := io.Reader.ReadUint16()
	if err != nil {
		return asWait(err)
	}

	if kw.OnNamespaceShared != nil {
		kw.OnNamespaceShared(name, serverID)
	}
	return nil, nil
}

func (kw *koinoniaWire) handleCreateNsObjectNotification(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	nsName, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	objectID, err := io.Reader.ReadUint32()
	if err != nil {
		return asWait(err)
	}
	typeID, err := io.Reader.ReadUint8()
	if err != nil {
		return asWait(err)
	}
	version, err := io.Reader.ReadUint64()
	if err != nil {
		return asWait(err)
	}
	plen, err := io.Reader.ReadVarInt()
	if err != nil {
		return asWait(err)
	}
	payload := make([]byte, plen)
	if err := io.Reader.ReadRaw(payload); err != nil {
		return asWait(err)
	}

	if kw.OnNsObjectCreated != nil {
		kw.OnNsObjectCreated(nsName, objectID, typeID, version, payload)
	}
	return nil, nil
}

func (kw *koinoniaWire) handleReplaceNsObjectNotification(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	nsName, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	objectID, err := io.Reader.ReadUint32()
	if err != nil {
		return asWait(err)
	}
	version, err := io.Reader.ReadUint64()
	if err != nil {
		return asWait(err)
	}
	plen, err := io.Reader.ReadVarInt()
	if err != nil {
		return asWait(err)
	}
	payload := make([]byte, plen)
	if err := io.Reader.ReadRaw(payload); err != nil {
		return asWait(err)
	}

	if kw.OnNsObjectReplaced != nil {
		kw.OnNsObjectReplaced(nsName, objectID, version, payload)
	}
	return nil, nil
}

func (kw *koinoniaWire) handleDestroyNsObjectNotification(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	nsName, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	objectID, err := io.Reader.ReadUint32()
	if err != nil {
		return asWait(err)
	}

	if kw.OnNsObjectDestroyed != nil {
		kw.OnNsObjectDestroyed(nsName, objectID)
	}
	return nil, nil
}
