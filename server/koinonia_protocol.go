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
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sabouaram/collab/audit"
	"github.com/sabouaram/collab/buffer"
	"github.com/sabouaram/collab/dispatch"
	"github.com/sabouaram/collab/koinonia"
	"github.com/sabouaram/collab/metrics"
	"github.com/sabouaram/collab/plugin"
	"github.com/sabouaram/collab/wire"
)

// Wire layout of the Koinonia plug-in (§4.9) lives in koinonia.wire.go so
// client/ can decode what server/ encodes without duplicating the offsets.
const (
	msgCreateObjectRequest    = koinonia.ClientMsgCreateObjectRequest
	msgReplaceObjectRequest   = koinonia.ClientMsgReplaceObjectRequest
	msgShareNamespaceRequest  = koinonia.ClientMsgShareNamespaceRequest
	msgCreateNsObjectRequest  = koinonia.ClientMsgCreateNsObjectRequest
	msgReplaceNsObjectRequest = koinonia.ClientMsgReplaceNsObjectRequest
	msgDestroyNsObjectRequest = koinonia.ClientMsgDestroyNsObjectRequest

	koinoniaNumClientMessages = koinonia.NumClientMessages
)

const (
	msgCreateObjectReply            = koinonia.ServerMsgCreateObjectReply
	msgReplaceObjectNotification    = koinonia.ServerMsgReplaceObjectNotification
	msgShareNamespaceReply          = koinonia.ServerMsgShareNamespaceReply
	msgCreateNsObjectNotification   = koinonia.ServerMsgCreateNsObjectNotification
	msgReplaceNsObjectNotification  = koinonia.ServerMsgReplaceNsObjectNotification
	msgDestroyNsObjectNotification  = koinonia.ServerMsgDestroyNsObjectNotification

	koinoniaNumServerMessages = koinonia.NumServerMessages
)

// awaitMore is the Continuation a koinonia handler returns when its message
// is not fully buffered yet; the next feed of the same connection retries
// the same handler against the full accumulated bytes (§4.6).
type awaitMore struct{}

// koinoniaProtocol wires koinonia.Table into the dispatcher as a plug-in:
// it decodes the wire messages §4.9 describes only in prose, translating
// them into Table calls and the replies/notifications those calls imply.
type koinoniaProtocol struct {
	table *koinonia.Table
	dict  *wire.Dictionary

	clients *clientTable
	audit   *audit.Log
	metrics *metrics.Metrics

	clientBase atomic.Uint32
	serverBase atomic.Uint32
}

func newKoinoniaProtocol(table *koinonia.Table, dict *wire.Dictionary, clients *clientTable, log *audit.Log, m *metrics.Metrics) *koinoniaProtocol {
	return &koinoniaProtocol{table: table, dict: dict, clients: clients, audit: log, metrics: m}
}

// counted wraps a handler so every client message increments the metrics
// receive counter before decoding starts, regardless of which of the six
// handlers ends up running.
func (kp *koinoniaProtocol) counted(fn dispatch.HandlerFunc) dispatch.HandlerFunc {
	if kp.metrics == nil {
		return fn
	}
	return func(io *dispatch.IO, cont dispatch.Continuation) (dispatch.Continuation, error) {
		kp.metrics.MessageReceived("Koinonia")
		return fn(io, cont)
	}
}

// record appends a version-change entry if an audit log is configured; a
// server run without one simply skips forensic history.
func (kp *koinoniaProtocol) record(name string, version uint64, clientID ClientID) {
	if kp.audit == nil {
		return
	}
	_ = kp.audit.Record(name, version, uint32(clientID))
}

// register installs the Koinonia protocol into reg and its message handlers
// into handlers. Bases are allocated deterministically by Register, so the
// handler table can be built immediately rather than waiting for a
// connection's SetMessageBases callback (which exists for the protocol's own
// bookkeeping, not for handler wiring).
func (kp *koinoniaProtocol) register(reg *plugin.Registry, handlers *dispatch.HandlerTable) error {
	proto := plugin.Protocol{
		Name:              "Koinonia",
		Version:           1,
		NumClientMessages: koinoniaNumClientMessages,
		NumServerMessages: koinoniaNumServerMessages,
		SetMessageBases: func(clientBase, serverBase uint16) {
			kp.clientBase.Store(uint32(clientBase))
			kp.serverBase.Store(uint32(serverBase))
		},
	}
	if err := reg.Register(proto); err != nil {
		return err
	}
	_, clientBase, serverBase, _ := reg.Resolve("Koinonia", proto.Version)
	kp.clientBase.Store(uint32(clientBase))
	kp.serverBase.Store(uint32(serverBase))

	handlers.Register(clientBase+msgCreateObjectRequest, 0, kp.counted(kp.handleCreateObjectRequest))
	handlers.Register(clientBase+msgReplaceObjectRequest, 0, kp.counted(kp.handleReplaceObjectRequest))
	handlers.Register(clientBase+msgShareNamespaceRequest, 0, kp.counted(kp.handleShareNamespaceRequest))
	handlers.Register(clientBase+msgCreateNsObjectRequest, 0, kp.counted(kp.handleCreateNsObjectRequest))
	handlers.Register(clientBase+msgReplaceNsObjectRequest, 0, kp.counted(kp.handleReplaceNsObjectRequest))
	handlers.Register(clientBase+msgDestroyNsObjectRequest, 0, kp.counted(kp.handleDestroyNsObjectRequest))
	return nil
}

func (kp *koinoniaProtocol) newMessage(offset uint16, size int) (*buffer.MessageBuffer, *buffer.Writer) {
	id := uint16(kp.serverBase.Load()) + offset
	buf := buffer.NewWithID(id, size+16)
	return buf, buffer.NewWriter(buf, binary.BigEndian)
}

func asWait(err error) (dispatch.Continuation, error) {
	if errors.Is(err, buffer.ErrShortBuffer) {
		return awaitMore{}, nil
	}
	return nil, err
}

func (kp *koinoniaProtocol) handleCreateObjectRequest(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	typeID, err := io.Reader.ReadUint8()
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

	cs, ok := kp.clients.byConnID(io.Conn)
	if !ok {
		return nil, fmt.Errorf("koinonia: unknown connection %d", io.Conn)
	}

	obj, created := kp.table.CreateOrJoin(name, kp.dict, typeID, payload, koinonia.ClientID(cs.ID))
	if created {
		kp.record(name, obj.Version, cs.ID)
	}

	buf, w := kp.newMessage(msgCreateObjectReply, len(name)+len(obj.Payload)+24)
	w.WriteString(name)
	w.WriteUint16(obj.ServerID)
	w.WriteUint8(obj.TypeID)
	w.WriteUint64(obj.Version)
	w.WriteVarInt(uint32(len(obj.Payload)))
	w.WriteRaw(obj.Payload)
	w.FinishMessage()
	w.Close()
	io.Reply(buf)
	return nil, nil
}

func (kp *koinoniaProtocol) handleReplaceObjectRequest(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
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

	version, _, err := kp.table.Replace(name, payload)
	if err != nil {
		return nil, err
	}
	if cs, ok := kp.clients.byConnID(io.Conn); ok {
		kp.record(name, version, cs.ID)
	}

	buf, w := kp.newMessage(msgReplaceObjectNotification, len(name)+len(payload)+24)
	w.WriteString(name)
	w.WriteUint64(version)
	w.WriteVarInt(uint32(len(payload)))
	w.WriteRaw(payload)
	w.FinishMessage()
	w.Close()
	io.Broadcast(io.Conn, buf)
	return nil, nil
}

func (kp *koinoniaProtocol) handleShareNamespaceRequest(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	cs, ok := kp.clients.byConnID(io.Conn)
	if !ok {
		return nil, fmt.Errorf("koinonia: unknown connection %d", io.Conn)
	}

	ns, _ := kp.table.ShareNamespace(name, kp.dict, koinonia.ClientID(cs.ID))

	buf, w := kp.newMessage(msgShareNamespaceReply, len(name)+8)
	w.WriteString(name)
	w.WriteUint16(ns.ServerID)
	w.FinishMessage()
	w.Close()
	io.Reply(buf)
	return nil, nil
}

func (kp *koinoniaProtocol) handleCreateNsObjectRequest(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	typeID, err := io.Reader.ReadUint8()
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

	objID, _, err := kp.table.CreateNsObject(name, typeID, payload)
	if err != nil {
		return nil, err
	}

	buf, w := kp.newMessage(msgCreateNsObjectNotification, len(name)+len(payload)+32)
	w.WriteString(name)
	w.WriteUint32(objID)
	w.WriteUint8(typeID)
	w.WriteUint64(1)
	w.WriteVarInt(uint32(len(payload)))
	w.WriteRaw(payload)
	w.FinishMessage()
	w.Close()
	io.Broadcast(io.Conn, buf)
	return nil, nil
}

func (kp *koinoniaProtocol) handleReplaceNsObjectRequest(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	objID, err := io.Reader.ReadUint32()
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

	version, _, err := kp.table.ReplaceNsObject(name, objID, payload)
	if err != nil {
		return nil, err
	}

	buf, w := kp.newMessage(msgReplaceNsObjectNotification, len(name)+len(payload)+32)
	w.WriteString(name)
	w.WriteUint32(objID)
	w.WriteUint64(version)
	w.WriteVarInt(uint32(len(payload)))
	w.WriteRaw(payload)
	w.FinishMessage()
	w.Close()
	io.Broadcast(io.Conn, buf)
	return nil, nil
}

func (kp *koinoniaProtocol) handleDestroyNsObjectRequest(io *dispatch.IO, _ dispatch.Continuation) (dispatch.Continuation, error) {
	name, err := io.Reader.ReadString()
	if err != nil {
		return asWait(err)
	}
	objID, err := io.Reader.ReadUint32()
	if err != nil {
		return asWait(err)
	}

	if _, err := kp.table.DestroyNsObject(name, objID); err != nil {
		return nil, err
	}

	buf, w := kp.newMessage(msgDestroyNsObjectNotification, len(name)+16)
	w.WriteString(name)
	w.WriteUint32(objID)
	w.FinishMessage()
	w.Close()
	io.Broadcast(io.Conn, buf)
	return nil, nil
}
