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

// Package client is the collabc side of the wire: it dials a collabd core
// over both the reliable and best-effort channels (§4.5), runs the
// handshake, and drives a dispatch.Reactor over the reliable channel so the
// negotiated plug-ins (Koinonia always among them) can decode replies and
// notifications the same way server/ does.
package client

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sabouaram/collab/buffer"
	"github.com/sabouaram/collab/dispatch"
	"github.com/sabouaram/collab/frontend"
	"github.com/sabouaram/collab/handshake"
	"github.com/sabouaram/collab/koinonia"
	liblog "github.com/sabouaram/collab/logger"
	"github.com/sabouaram/collab/password"
	sckcfg "github.com/sabouaram/collab/socket/config"
	tcpclient "github.com/sabouaram/collab/socket/client/tcp"
	udpclient "github.com/sabouaram/collab/socket/client/udp"
	"github.com/sabouaram/collab/uri"
)

// ErrKoinoniaRejected is returned by Dial when the server did not accept
// the Koinonia plug-in (every collabd core is expected to run it).
var ErrKoinoniaRejected = errors.New("client: server rejected Koinonia")

// localConnID is the single reactor connection id a Client ever registers,
// since one Client only ever talks to one server.
const localConnID dispatch.ConnID = 1

// Config configures Dial. ClientName is what the server sees before any
// de-duplication (§4.5 step 2); Protocols lists plug-ins beyond Koinonia to
// request.
type Config struct {
	ClientName    string
	HashAlgorithm password.Algorithm
	Protocols     []handshake.RequestedProtocol

	QueueDepth int
	Log        liblog.FuncLog
}

// Client is one connected collabc session.
type Client struct {
	cfg Config

	tcp tcpclient.ClientTcp
	udp udpclient.ClientUdp

	handshake *handshake.Connected

	handlers *dispatch.HandlerTable
	reactor  *dispatch.Reactor

	Koinonia *koinonia.ClientSide
	koiWire  *koinoniaWire

	Frontend *frontend.Pipe

	cancel context.CancelFunc
}

// Dial parses rawURI, connects the reliable channel, runs the handshake,
// binds the best-effort channel, and starts the reactor loop that decodes
// server messages. The returned Client is ready for ShareObject and the
// namespace operations once the Koinonia plug-in negotiates successfully.
func Dial(ctx context.Context, rawURI string, cfg Config) (*Client, error) {
	target, err := uri.Parse(rawURI)
	if err != nil {
		return nil, err
	}

	tc, err := tcpclient.NewWithConfig(sckcfg.Client{Address: target.Address()})
	if err != nil {
		return nil, fmt.Errorf("client: tcp: %w", err)
	}
	if err := tc.Connect(ctx); err != nil {
		return nil, fmt.Errorf("client: tcp connect: %w", err)
	}

	protocols := append([]handshake.RequestedProtocol{koinoniaRequestedProtocol()}, cfg.Protocols...)
	accepted, err := handshake.Dial(tc, handshake.ClientConfig{
		ClientName: cfg.ClientName,
		Password:   target.Password,
		Protocols:  protocols,
	})
	if err != nil {
		_ = tc.Close()
		return nil, fmt.Errorf("client: handshake: %w", err)
	}

	koiNeg, ok := findNegotiated(protocols, accepted.Protocols, koinoniaName)
	if !ok || koiNeg.Status != handshake.StatusSuccess {
		_ = tc.Close()
		return nil, ErrKoinoniaRejected
	}

	uc, err := udpclient.NewWithConfig(sckcfg.Client{Address: target.Address()})
	if err != nil {
		_ = tc.Close()
		return nil, fmt.Errorf("client: udp: %w", err)
	}
	if err := uc.Connect(ctx); err != nil {
		_ = tc.Close()
		return nil, fmt.Errorf("client: udp connect: %w", err)
	}
	if err := handshake.SendUDPConnectRequest(uc, accepted.ClientID, accepted.UDPTicket); err != nil {
		_ = tc.Close()
		_ = uc.Close()
		return nil, fmt.Errorf("client: udp bind: %w", err)
	}
	if err := handshake.AwaitUDPConnectReply(uc, accepted.UDPTicket); err != nil {
		_ = tc.Close()
		_ = uc.Close()
		return nil, fmt.Errorf("client: udp bind: %w", err)
	}

	koi := koinonia.NewClientSide()
	kw := newKoinoniaWire(koi)
	kw.setBases(koiNeg.ClientMessageBase, koiNeg.ServerMessageBase)
	kw.write = func(b []byte) error {
		_, err := tc.Write(b)
		return err
	}

	handlers := dispatch.NewHandlerTable()
	kw.register(handlers)

	reactor := dispatch.NewReactor(handlers, cfg.Log, cfg.QueueDepth)
	// The client never replies-to-self; Koinonia's outgoing traffic goes
	// through koiWire.send, not through an IO.Reply/Broadcast hook, so both
	// are no-ops here.
	reactor.RegisterConn(localConnID, binary.BigEndian, accepted.SwapOnRead,
		func(*buffer.MessageBuffer) {},
		func(dispatch.ConnID, *buffer.MessageBuffer) {})

	runCtx, cancel := context.WithCancel(ctx)
	c := &Client{
		cfg:       cfg,
		tcp:       tc,
		udp:       uc,
		handshake: accepted,
		handlers:  handlers,
		reactor:   reactor,
		Koinonia:  koi,
		koiWire:   kw,
		Frontend:  frontend.New(frontend.DefaultCapacity),
		cancel:    cancel,
	}

	go func() { _ = reactor.Run(runCtx) }()
	go c.readLoop()
	koi.Start()

	return c, nil
}

// ShareObject is koinonia.ClientSide.ShareObject, exposed on Client for
// callers that would rather not import koinonia directly.
func (c *Client) ShareObject(name string, typeID uint8, payload []byte, updated koinonia.UpdatedFunc) uint32 {
	return c.Koinonia.ShareObject(name, typeID, payload, updated)
}

// ReplaceObject pushes a new payload for a global object this client
// already shared.
func (c *Client) ReplaceObject(name string, payload []byte) error {
	return c.koiWire.ReplaceObject(name, payload)
}

// ShareNamespace requests the server create or join a namespace; the
// server id arrives asynchronously through OnNamespaceShared.
func (c *Client) ShareNamespace(name string) error {
	return c.koiWire.ShareNamespace(name)
}

// CreateNsObject requests a new object inside a shared namespace.
func (c *Client) CreateNsObject(nsName string, typeID uint8, payload []byte) error {
	return c.koiWire.CreateNsObject(nsName, typeID, payload)
}

// ReplaceNsObject requests a payload update for an existing namespace
// object.
func (c *Client) ReplaceNsObject(nsName string, objectID uint32, payload []byte) error {
	return c.koiWire.ReplaceNsObject(nsName, objectID, payload)
}

// DestroyNsObject requests a namespace object be torn down.
func (c *Client) DestroyNsObject(nsName string, objectID uint32) error {
	return c.koiWire.DestroyNsObject(nsName, objectID)
}

// OnNamespaceShared etc. let the caller observe namespace wire events;
// see koinoniaWire's fields of the same name.
func (c *Client) OnNamespaceShared(fn func(name string, serverID uint16)) {
	c.koiWire.OnNamespaceShared = fn
}

func (c *Client) OnNsObjectCreated(fn func(nsName string, objectID uint32, typeID uint8, version uint64, payload []byte)) {
	c.koiWire.OnNsObjectCreated = fn
}

func (c *Client) OnNsObjectReplaced(fn func(nsName string, objectID uint32, version uint64, payload []byte)) {
	c.koiWire.OnNsObjectReplaced = fn
}

func (c *Client) OnNsObjectDestroyed(fn func(nsName string, objectID uint32)) {
	c.koiWire.OnNsObjectDestroyed = fn
}

// Close tears the reactor and both sockets down.
func (c *Client) Close() error {
	c.cancel()
	c.reactor.Stop()
	c.Frontend.Close()
	_ = c.udp.Close()
	return c.tcp.Close()
}

// readLoop feeds every chunk read off the reliable channel to the reactor
// as an EventReadable, exactly like server.Server.handleTCP does for its
// side of the same connection (§4.6).
func (c *Client) readLoop() {
	buf := make([]byte, 32*1024)
	for {
		n, err := c.tcp.Read(buf)
		if n > 0 {
			msg := buffer.WrapReceived(append([]byte(nil), buf[:n]...))
			c.reactor.Post(dispatch.Event{Kind: dispatch.EventReadable, Conn: localConnID, Message: msg})
		}
		if err != nil {
			c.reactor.Post(dispatch.Event{Kind: dispatch.EventConnClosed, Conn: localConnID, Err: err})
			return
		}
	}
}

func koinoniaRequestedProtocol() handshake.RequestedProtocol {
	var rp handshake.RequestedProtocol
	copy(rp.Name[:], koinoniaName)
	rp.Version = koinoniaVersion
	return rp
}

func findNegotiated(req []handshake.RequestedProtocol, reply []handshake.NegotiatedProtocol, name string) (handshake.NegotiatedProtocol, bool) {
	for i, r := range req {
		if cStrField(r.Name[:]) == name && i < len(reply) {
			return reply[i], true
		}
	}
	return handshake.NegotiatedProtocol{}, false
}

func cStrField(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
