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

// Package tcp implements the reliable-channel listener: one net.Listener,
// accepted connections each running the registered HandlerFunc on their own
// goroutine. Go's runtime netpoller already parks blocked reads/writes off
// the OS thread, so unlike the original epoll-based reactor this needs no
// explicit non-blocking-mode setup; see DESIGN.md for the redesign note.
package tcp

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"

	liblog "github.com/sabouaram/collab/logger"
	libsck "github.com/sabouaram/collab/socket"
	sckcfg "github.com/sabouaram/collab/socket/config"
)

// ServerTcp is the reliable-channel listening socket used by the collab
// daemon for the core TCP transport.
type ServerTcp interface {
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

	mu  sync.RWMutex
	lis net.Listener

	running atomic.Bool
	gone    atomic.Bool
	opened  atomic.Int64

	funcErr    atomic.Pointer[libsck.FuncError]
	funcInfo   atomic.Pointer[libsck.FuncInfo]
	funcServer atomic.Pointer[libsck.FuncInfoServer]
}

// New validates cfg and returns a ServerTcp bound to it. handler is invoked
// once per accepted connection, on its own goroutine.
func New(log liblog.FuncLog, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerTcp, error) {
	if handler == nil {
		return nil, libsck.ErrorConfigInvalid.Error(nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, libsck.ErrorConfigInvalid.Error(err)
	}
	s := &server{log: log, cfg: cfg, handler: handler}
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
		s.log().Error("tcp: transport error", err)
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

// Listen opens the listener and serves connections until ctx is cancelled
// or the listener errors out. It blocks.
func (s *server) Listen(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return libsck.ErrorAlreadyRunning.Error(nil)
	}
	s.gone.Store(false)
	defer func() {
		s.running.Store(false)
		s.gone.Store(true)
	}()

	lis, err := net.Listen(s.cfg.Network.Code(), s.cfg.Address)
	if err != nil {
		return libsck.ErrorListen.Error(err)
	}
	if s.cfg.TLS.Enabled {
		tlsCfg := s.cfg.TLS.Config.New().TlsConfig(s.cfg.Address)
		lis = tls.NewListener(lis, tlsCfg)
	}

	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()

	s.reportServer("tcp listener started on " + s.cfg.Address)

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			s.reportErr(err)
			return nil
		}
		s.opened.Add(1)
		s.reportInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionNew)
		go s.serve(conn)
	}
}

func (s *server) serve(conn net.Conn) {
	defer func() {
		s.opened.Add(-1)
		s.reportInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionClose)
	}()
	s.reportInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionHandler)
	s.handler(conn)
}

// Close stops accepting new connections. In-flight connections finish on
// their own goroutine.
func (s *server) Close() error {
	s.mu.RLock()
	lis := s.lis
	s.mu.RUnlock()
	if lis == nil {
		return nil
	}
	return lis.Close()
}

func (s *server) IsRunning() bool { return s.running.Load() }
func (s *server) IsGone() bool    { return s.gone.Load() }

func (s *server) OpenConnections() int64 { return s.opened.Load() }
