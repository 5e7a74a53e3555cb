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

// Package server ties the transport, handshake, dispatcher, plug-in and
// Koinonia layers into one running collaboration server (§4.10): a
// socket/server/tcp listener for the reliable channel, a socket/server/udp
// socket for the best-effort channel bound to it by the §4.5 step 5 ticket,
// and a dispatch.Reactor that every negotiated plug-in's handlers run under.
package server

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sabouaram/collab/audit"
	"github.com/sabouaram/collab/buffer"
	"github.com/sabouaram/collab/dispatch"
	"github.com/sabouaram/collab/handshake"
	liblog "github.com/sabouaram/collab/logger"
	"github.com/sabouaram/collab/koinonia"
	"github.com/sabouaram/collab/metrics"
	"github.com/sabouaram/collab/password"
	"github.com/sabouaram/collab/plugin"
	"github.com/sabouaram/collab/socket"
	sckcfg "github.com/sabouaram/collab/socket/config"
	"github.com/sabouaram/collab/socket/server/tcp"
	"github.com/sabouaram/collab/socket/server/udp"
	"github.com/sabouaram/collab/wire"
)

var errUnknownClient = errors.New("server: unknown client")

// msgBuffer is a local alias so clients.go does not need its own buffer
// import just for method signatures.
type msgBuffer = buffer.MessageBuffer

// Config configures one Server.
type Config struct {
	ServerName    string
	Password      string
	HashAlgorithm password.Algorithm

	TCP sckcfg.Server
	UDP sckcfg.Server

	// Plugins is the protocol registry to serve; Koinonia is always
	// registered into it in addition to whatever the caller added.
	Plugins *plugin.Registry
	// Koinonia is the shared-object table the Koinonia plug-in mutates.
	Koinonia *koinonia.Table
	// Dict is the default wire.Dictionary newly created global objects and
	// namespaces are stamped with.
	Dict *wire.Dictionary
	// Audit, if set, receives one entry per global-object version change.
	Audit *audit.Log
	// Metrics, if set, is instrumented with connection and message counts.
	Metrics *metrics.Metrics

	Log        liblog.FuncLog
	QueueDepth int
}

// Server is one running collaboration daemon instance.
type Server struct {
	cfg Config

	handlers *dispatch.HandlerTable
	reactor  *dispatch.Reactor
	clients  *clientTable
	koi      *koinoniaProtocol

	tcpSrv tcp.ServerTcp
	udpSrv udp.ServerUdp

	nextConn uint64
}

// New builds a Server from cfg. It registers the Koinonia plug-in into
// cfg.Plugins (creating one if cfg.Plugins is nil) and constructs the
// underlying TCP/UDP sockets, but does not start listening; call Run for
// that.
func New(cfg Config) (*Server, error) {
	if cfg.Plugins == nil {
		cfg.Plugins = plugin.NewRegistry()
	}
	if cfg.Koinonia == nil {
		cfg.Koinonia = koinonia.NewTable()
	}
	if cfg.Dict == nil {
		cfg.Dict = wire.NewDictionary()
	}

	s := &Server{
		cfg:      cfg,
		handlers: dispatch.NewHandlerTable(),
		clients:  newClientTable(),
	}
	s.koi = newKoinoniaProtocol(cfg.Koinonia, cfg.Dict, s.clients, cfg.Audit, cfg.Metrics)
	if err := s.koi.register(cfg.Plugins, s.handlers); err != nil {
		return nil, err
	}
	s.reactor = dispatch.NewReactor(s.handlers, cfg.Log, cfg.QueueDepth)

	tcpSrv, err := tcp.New(cfg.Log, s.handleTCP, cfg.TCP)
	if err != nil {
		return nil, fmt.Errorf("server: tcp: %w", err)
	}
	udpSrv, err := udp.New(cfg.Log, s.handleUDP, cfg.UDP)
	if err != nil {
		return nil, fmt.Errorf("server: udp: %w", err)
	}
	s.tcpSrv = tcpSrv
	s.udpSrv = udpSrv
	return s, nil
}

// Run starts the reactor and both listeners, blocking until ctx is
// cancelled or a listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.cfg.Plugins.Start()

	errCh := make(chan error, 3)
	go func() { errCh <- s.reactor.Run(ctx) }()
	go func() { errCh <- s.tcpSrv.Listen(ctx) }()
	go func() { errCh <- s.udpSrv.Listen(ctx) }()

	select {
	case <-ctx.Done():
		s.reactor.Stop()
		_ = s.tcpSrv.Close()
		_ = s.udpSrv.Close()
		return ctx.Err()
	case err := <-errCh:
		s.reactor.Stop()
		_ = s.tcpSrv.Close()
		_ = s.udpSrv.Close()
		return err
	}
}

// handleTCP runs the handshake synchronously on a freshly accepted
// connection and, once it succeeds, hands the connection to the reactor for
// the rest of its life. It blocks for the connection's lifetime, feeding
// every received chunk to the reactor as an EventReadable, per §4.6.
func (s *Server) handleTCP(c socket.Context) {
	defer c.Close()

	accepted, err := handshake.Accept(c, handshake.ServerConfig{
		ServerName:        s.cfg.ServerName,
		Password:          s.cfg.Password,
		HashAlgorithm:     s.cfg.HashAlgorithm,
		Resolver:          s.cfg.Plugins,
		AllocateClientID:  s.clients.allocateID,
		ResolveName:       s.clients.resolveName,
	})
	if err != nil {
		if s.cfg.Log != nil {
			s.cfg.Log().Warning("server: handshake rejected", err)
		}
		return
	}

	connID := dispatch.ConnID(s.nextConnID())
	negotiated := negotiatedByName(accepted.Requested, accepted.Protocols)

	cs := &ClientState{
		ID:         accepted.ClientID,
		Name:       accepted.Name,
		Conn:       connID,
		UDPTicket:  accepted.UDPTicket,
		Negotiated: negotiated,
		conn:       c,
	}
	s.clients.add(cs)
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ClientConnected()
	}
	defer func() {
		s.clients.remove(cs)
		s.cfg.Koinonia.Unsubscribe(koinonia.ClientID(cs.ID))
		s.cfg.Plugins.NotifyDisconnected(cs.ID, negotiated)
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.ClientDisconnected()
		}
	}()

	order := binary.ByteOrder(binary.BigEndian)
	s.reactor.RegisterConn(connID, order, accepted.SwapOnRead, s.replyFor(connID), s.broadcastFor())
	s.cfg.Plugins.NotifyConnected(cs.ID, negotiated)

	buf := make([]byte, 32*1024)
	for {
		n, err := c.Read(buf)
		if n > 0 {
			msg := buffer.WrapReceived(append([]byte(nil), buf[:n]...))
			s.reactor.Post(dispatch.Event{Kind: dispatch.EventReadable, Conn: connID, Message: msg})
		}
		if err != nil {
			s.reactor.Post(dispatch.Event{Kind: dispatch.EventConnClosed, Conn: connID, Err: err})
			return
		}
	}
}

// handleUDP binds the best-effort channel once the client proves it owns
// the ticket ConnectReply handed out over TCP (§4.5 step 5), then simply
// discards further datagrams on this pseudo-connection: Koinonia itself
// never uses the unreliable channel, so nothing else reads from it.
func (s *Server) handleUDP(c socket.Context) {
	id, err := handshake.BindUDP(c, s.clients)
	if err != nil {
		if s.cfg.Log != nil {
			s.cfg.Log().Warning("server: udp bind failed", err)
		}
		return
	}
	s.clients.bindUDP(id, c)

	buf := make([]byte, 2048)
	for {
		if _, err := c.Read(buf); err != nil {
			return
		}
	}
}

func (s *Server) nextConnID() uint64 {
	s.nextConn++
	return s.nextConn
}

// replyFor returns the per-connection Reply hook the reactor installs into
// every IO it hands to a handler: a direct write to that connection's
// socket. It only ever runs on the reactor's single goroutine, so no
// synchronization is needed beyond what the net.Conn implementation already
// gives two independent Read/Write goroutines.
func (s *Server) replyFor(id dispatch.ConnID) func(*buffer.MessageBuffer) {
	return func(buf *buffer.MessageBuffer) {
		defer buf.Unref()
		cs, ok := s.clients.byConnID(id)
		if !ok {
			return
		}
		if _, err := cs.conn.Write(buf.Bytes()); err != nil && s.cfg.Log != nil {
			s.cfg.Log().Error("server: reply write failed", err)
		}
	}
}

// broadcastFor returns the shared Broadcast hook: every connected client
// except the one named gets the message on its reliable channel. Koinonia
// notifications intentionally ignore per-plug-in subscriber sets here
// (koinonia.Table already tracked them before calling in) and instead reach
// every connection, since every client that negotiated Koinonia at all is a
// candidate subscriber for any object it later calls ShareObject on.
func (s *Server) broadcastFor() func(dispatch.ConnID, *buffer.MessageBuffer) {
	return func(except dispatch.ConnID, buf *buffer.MessageBuffer) {
		defer buf.Unref()
		data := buf.Bytes()
		for _, cs := range s.clients.all() {
			if cs.Conn == except {
				continue
			}
			if _, err := cs.conn.Write(data); err != nil && s.cfg.Log != nil {
				s.cfg.Log().Error("server: broadcast write failed", err)
			}
		}
	}
}

// ClientSummary is a read-only view of one connected client, for the shell
// and the admin API.
type ClientSummary struct {
	ID   ClientID
	Name string
}

// Clients lists every currently connected client, for the shell's `clients`
// command and the admin API's debug dump.
func (s *Server) Clients() []ClientSummary {
	all := s.clients.all()
	out := make([]ClientSummary, 0, len(all))
	for _, cs := range all {
		out = append(out, ClientSummary{ID: cs.ID, Name: cs.Name})
	}
	return out
}

// Koinonia returns the shared object table this server is authoritative
// for, for the shell and admin API to read without a side-channel copy.
func (s *Server) Koinonia() *koinonia.Table {
	return s.cfg.Koinonia
}

func negotiatedByName(req handshake.ConnectRequest, reply []handshake.NegotiatedProtocol) map[string]plugin.Negotiated {
	out := make(map[string]plugin.Negotiated, len(reply))
	for i, n := range reply {
		if n.Status != handshake.StatusSuccess || i >= len(req.Protocols) {
			continue
		}
		name := cStrField(req.Protocols[i].Name[:])
		out[name] = plugin.Negotiated{Index: i, ClientBase: n.ClientMessageBase, ServerBase: n.ServerMessageBase}
	}
	return out
}

func cStrField(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
