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

// Package adminapi is collabd's optional read-only HTTP surface: /healthz,
// /metrics and /debug/koinonia, served on its own listener separate from the
// TCP/UDP protocol ports and off unless an address is configured. The
// teacher's httpserver/ package is the obvious home for this, but the copy
// in this tree references runner/, monitor/ and version/ sub-packages that
// the retrieval pack ships as test-only scaffolding with no implementation
// to adapt (confirmed empty of non-test sources), so this talks to
// net/http directly instead, with the same Listen(ctx)/Close() shape the
// socket/server listeners use elsewhere in this module.
package adminapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	liblog "github.com/sabouaram/collab/logger"
	"github.com/sabouaram/collab/metrics"
	"github.com/sabouaram/collab/server"
)

// Server is the admin HTTP listener.
type Server struct {
	addr    string
	srv     *server.Server
	metrics *metrics.Metrics
	log     liblog.FuncLog

	httpSrv *http.Server
}

// New returns an admin API bound to addr (e.g. "127.0.0.1:9090"), reading
// from the given collaboration server and metric set. m may be nil, in
// which case /metrics reports an empty registry.
func New(addr string, srv *server.Server, m *metrics.Metrics, log liblog.FuncLog) *Server {
	a := &Server{addr: addr, srv: srv, metrics: m, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/debug/koinonia", a.handleDebugKoinonia)
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}

	a.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a
}

// Listen blocks, serving until ctx is cancelled or the listener fails.
func (a *Server) Listen(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.httpSrv.Serve(ln) }()

	select {
	case <-ctx.Done():
		_ = a.Close()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Close shuts the listener down, draining in-flight requests.
func (a *Server) Close() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.httpSrv.Shutdown(shutdownCtx)
}

func (a *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// debugKoinoniaView is the /debug/koinonia response body: one entry per
// global object, name and version only (never payloads — this endpoint is
// diagnostic, not a dump mechanism; use the shell's `save` command for that).
type debugKoinoniaView struct {
	Objects []debugObjectView `json:"objects"`
	Clients []debugClientView `json:"clients"`
}

type debugObjectView struct {
	Name    string `json:"name"`
	Version uint64 `json:"version"`
}

type debugClientView struct {
	ID   uint16 `json:"id"`
	Name string `json:"name"`
}

func (a *Server) handleDebugKoinonia(w http.ResponseWriter, _ *http.Request) {
	snap := a.srv.Koinonia().Snapshot()
	view := debugKoinoniaView{Objects: make([]debugObjectView, 0, len(snap))}
	for name, version := range snap {
		view.Objects = append(view.Objects, debugObjectView{Name: name, Version: version})
	}
	for _, c := range a.srv.Clients() {
		view.Clients = append(view.Clients, debugClientView{ID: uint16(c.ID), Name: c.Name})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil && a.log != nil {
		a.log().Error("adminapi: encode debug view failed", err)
	}
}
