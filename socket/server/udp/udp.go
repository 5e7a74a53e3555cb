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

// Package udp implements the best-effort datagram listener. One shared
// net.PacketConn is read by a single goroutine and demultiplexed by remote
// address into per-peer pseudo-connections, each running the registered
// HandlerFunc on its own goroutine fed through a channel (§4.3's "unreliable
// datagram channel").
package udp

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	liblog "github.com/sabouaram/collab/logger"
	libsck "github.com/sabouaram/collab/socket"
	sckcfg "github.com/sabouaram/collab/socket/config"
)

// IdleTimeout is how long a peer pseudo-connection survives without
// receiving a new datagram before it is dropped and its handler goroutine
// torn down.
const IdleTimeout = 2 * time.Minute

// ServerUdp is the best-effort datagram socket used by the collab daemon
// for the core UDP transport.
type ServerUdp interface {
	Listen(ctx context.Context) error
	Close() error

	IsRunning() bool
	IsGone() bool
	OpenConnections() int64

	RegisterFuncError(fn libsck.FuncError)
	RegisterFuncInfo(fn libsck.FuncInfo)
	RegisterFuncInfoServer(fn libsck.FuncInfoServer)
}

type server struct {
	log     liblog.FuncLog
	cfg     sckcfg.Server
	handler libsck.HandlerFunc

	mu   sync.RWMutex
	conn net.PacketConn
	peer map[string]*peerConn

	running atomic.Bool
	gone    atomic.Bool
	opened  atomic.Int64

	funcErr    atomic.Pointer[libsck.FuncError]
	funcInfo   atomic.Pointer[libsck.FuncInfo]
	funcServer atomic.Pointer[libsck.FuncInfoServer]
}

// New validates cfg and returns a ServerUdp bound to it.
func New(log liblog.FuncLog, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerUdp, error) {
	if handler == nil {
		return nil, libsck.ErrorConfigInvalid.Error(nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, libsck.ErrorConfigInvalid.Error(err)
	}
	s := &server{log: log, cfg: cfg, handler: handler, peer: make(map[string]*peerConn)}
	s.gone.Store(true)
	return s, nil
}

func (s *server) RegisterFuncError(fn libsck.FuncError) {
	if fn == nil {
		s.funcErr.Store(nil)
		return
	}
	s.funcErr.Store(&fn)
}

func (s *server) RegisterFuncInfo(fn libsck.FuncInfo) {
	if fn == nil {
		s.funcInfo.Store(nil)
		return
	}
	s.funcInfo.Store(&fn)
}

func (s *server) RegisterFuncInfoServer(fn libsck.FuncInfoServer) {
	if fn == nil {
		s.funcServer.Store(nil)
		return
	}
	s.funcServer.Store(&fn)
}

func (s *server) reportErr(err error) {
	if err = libsck.ErrorFilter(err); err == nil {
		return
	}
	if p := s.funcErr.Load(); p != nil {
		(*p)(err)
		return
	}
	if s.log != nil {
		s.log().Error("udp: transport error", err)
	}
}

func (s *server) reportInfo(local, remote net.Addr, state libsck.ConnState) {
	if p := s.funcInfo.Load(); p != nil {
		(*p)(local, remote, state)
	}
}

func (s *server) reportServer(msg string) {
	if p := s.funcServer.Load(); p != nil {
		(*p)(msg)
	}
}

// Listen opens the packet conn and demultiplexes datagrams by remote address
// until ctx is cancelled. It blocks.
func (s *server) Listen(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return libsck.ErrorAlreadyRunning.Error(nil)
	}
	s.gone.Store(false)
	defer func() {
		s.running.Store(false)
		s.gone.Store(true)
	}()

	conn, err := net.ListenPacket(s.cfg.Network.Code(), s.cfg.Address)
	if err != nil {
		return libsck.ErrorListen.Error(err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.reportServer("udp listener started on " + s.cfg.Address)

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	buf := make([]byte, 65507)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			s.reportErr(err)
			return nil
		}
		s.dispatch(conn, addr, buf[:n])
	}
}

func (s *server) dispatch(conn net.PacketConn, addr net.Addr, data []byte) {
	key := addr.String()

	s.mu.Lock()
	p, ok := s.peer[key]
	if !ok {
		p = newPeerConn(conn, conn.LocalAddr(), addr, func() {
			s.mu.Lock()
			delete(s.peer, key)
			s.mu.Unlock()
			s.opened.Add(-1)
			s.reportInfo(conn.LocalAddr(), addr, libsck.ConnectionClose)
		})
		s.peer[key] = p
		s.mu.Unlock()

		s.opened.Add(1)
		s.reportInfo(conn.LocalAddr(), addr, libsck.ConnectionNew)
		go func() {
			s.reportInfo(conn.LocalAddr(), addr, libsck.ConnectionHandler)
			s.handler(p)
			p.Close()
		}()
	} else {
		s.mu.Unlock()
	}

	p.deliver(data)
}

// Close stops the listener; every peer pseudo-connection is closed so their
// handler goroutines unblock from Read with io.EOF.
func (s *server) Close() error {
	s.mu.Lock()
	conn := s.conn
	peers := make([]*peerConn, 0, len(s.peer))
	for _, p := range s.peer {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (s *server) IsRunning() bool        { return s.running.Load() }
func (s *server) IsGone() bool           { return s.gone.Load() }
func (s *server) OpenConnections() int64 { return s.opened.Load() }

// peerConn is a libsck.Context backed by one remote UDP address; incoming
// datagrams are pushed onto a channel by the listener's single read loop,
// outgoing writes go straight to the shared PacketConn via WriteTo.
type peerConn struct {
	conn   net.PacketConn
	local  net.Addr
	remote net.Addr

	in        chan []byte
	closeOnce sync.Once
	closed    chan struct{}
	onClose   func()

	idle *time.Timer
}

func newPeerConn(conn net.PacketConn, local, remote net.Addr, onClose func()) *peerConn {
	p := &peerConn{
		conn:    conn,
		local:   local,
		remote:  remote,
		in:      make(chan []byte, 64),
		closed:  make(chan struct{}),
		onClose: onClose,
	}
	p.idle = time.AfterFunc(IdleTimeout, p.Close)
	return p
}

func (p *peerConn) deliver(data []byte) {
	p.idle.Reset(IdleTimeout)
	cp := append([]byte(nil), data...)
	select {
	case p.in <- cp:
	case <-p.closed:
	default:
		// Peer is not draining fast enough; drop the datagram rather than
		// block the shared listener's read loop (§4.3: datagrams may be lost).
	}
}

func (p *peerConn) Read(b []byte) (int, error) {
	select {
	case data, ok := <-p.in:
		if !ok {
			return 0, io.EOF
		}
		n := copy(b, data)
		return n, nil
	case <-p.closed:
		return 0, io.EOF
	}
}

func (p *peerConn) Write(b []byte) (int, error) {
	select {
	case <-p.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	return p.conn.WriteTo(b, p.remote)
}

func (p *peerConn) Close() error {
	p.closeOnce.Do(func() {
		p.idle.Stop()
		close(p.closed)
		close(p.in)
		if p.onClose != nil {
			p.onClose()
		}
	})
	return nil
}

func (p *peerConn) LocalAddr() net.Addr  { return p.local }
func (p *peerConn) RemoteAddr() net.Addr { return p.remote }
