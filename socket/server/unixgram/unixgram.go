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

// Package unixgram implements the best-effort datagram listener over a Unix
// domain datagram socket. It mirrors socket/server/udp's single-reader,
// per-peer-channel demultiplexing, substituting bind/cleanup of a socket
// file for UDP's plain port bind.
package unixgram

import (
	"context"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	liblog "github.com/sabouaram/collab/logger"
	libsck "github.com/sabouaram/collab/socket"
	sckcfg "github.com/sabouaram/collab/socket/config"
)

// IdleTimeout is how long a peer pseudo-connection survives without
// receiving a new datagram before it is dropped.
const IdleTimeout = 2 * time.Minute

// ServerUnixgram is the best-effort datagram socket bound to a filesystem
// path.
type ServerUnixgram interface {
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

// New validates cfg and returns a ServerUnixgram bound to it.
func New(log liblog.FuncLog, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerUnixgram, error) {
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
		s.log().Error("unixgram: transport error", err)
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

// Listen binds the packet conn and demultiplexes datagrams by remote
// address until ctx is cancelled. It blocks.
func (s *server) Listen(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return libsck.ErrorAlreadyRunning.Error(nil)
	}
	s.gone.Store(false)
	defer func() {
		s.running.Store(false)
		s.gone.Store(true)
	}()

	_ = os.Remove(s.cfg.Address)

	conn, err := net.ListenPacket(s.cfg.Network.Code(), s.cfg.Address)
	if err != nil {
		return libsck.ErrorListen.Error(err)
	}

	if s.cfg.PermFile != 0 {
		_ = os.Chmod(s.cfg.Address, s.cfg.PermFile.FileMode())
	}
	if s.cfg.GroupPerm > 0 {
		_ = os.Chown(s.cfg.Address, -1, int(s.cfg.GroupPerm))
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.reportServer("unixgram listener started on " + s.cfg.Address)

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

// Close stops the listener and removes the socket file.
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
	var err error
	if conn != nil {
		err = conn.Close()
	}
	_ = os.Remove(s.cfg.Address)
	return err
}

func (s *server) IsRunning() bool        { return s.running.Load() }
func (s *server) IsGone() bool           { return s.gone.Load() }
func (s *server) OpenConnections() int64 { return s.opened.Load() }

// peerConn mirrors socket/server/udp's channel-backed pseudo-connection.
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
