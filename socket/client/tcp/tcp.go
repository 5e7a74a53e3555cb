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

// Package tcp implements the reliable-channel outbound connection used by
// collabc to reach a collabd core.
package tcp

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	sckcfg "github.com/sabouaram/collab/socket/config"
)

// ErrAddress is returned by New when cfg.Address is empty.
var ErrAddress = errors.New("socket/client/tcp: empty address")

// ErrNotConnected is returned by Read/Write/Once when Connect has not
// succeeded yet.
var ErrNotConnected = errors.New("socket/client/tcp: not connected")

// ClientTcp is an outbound reliable-channel connection, reconnectable after
// Close.
type ClientTcp interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Close() error

	Read(b []byte) (int, error)
	Write(b []byte) (int, error)

	// Once writes request, then streams the response to fn until the peer
	// half-closes or ctx is cancelled. fn may be nil to discard the reply.
	Once(ctx context.Context, request []byte, fn func(r io.Reader)) error
}

type client struct {
	cfg sckcfg.Client

	mu   sync.RWMutex
	conn net.Conn
}

// New returns a ClientTcp targeting addr with default settings.
func New(addr string) (ClientTcp, error) {
	return NewWithConfig(sckcfg.Client{Address: addr})
}

// NewWithConfig returns a ClientTcp configured by cfg.
func NewWithConfig(cfg sckcfg.Client) (ClientTcp, error) {
	if cfg.Address == "" {
		return nil, ErrAddress
	}
	return &client{cfg: cfg}, nil
}

// Connect dials the configured address, replacing any existing connection.
func (c *client) Connect(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.cfg.Timeout}
	network := "tcp"
	if c.cfg.Network.IsValid() {
		network = c.cfg.Network.Code()
	}

	conn, err := dialer.DialContext(ctx, network, c.cfg.Address)
	if err != nil {
		return err
	}
	if c.cfg.TLS.Enabled {
		tlsCfg := c.cfg.TLS.Config.New().TlsConfig(c.cfg.Address)
		conn = tls.Client(conn, tlsCfg)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

func (c *client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *client) Read(b []byte) (int, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return 0, ErrNotConnected
	}
	return conn.Read(b)
}

func (c *client) Write(b []byte) (int, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return 0, ErrNotConnected
	}
	return conn.Write(b)
}

// Once dials fresh if not already connected, writes request, then streams
// the reply to fn until EOF, ctx cancellation, or the connection closes.
func (c *client) Once(ctx context.Context, request []byte, fn func(r io.Reader)) error {
	if !c.IsConnected() {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	if len(request) > 0 {
		if _, err := conn.Write(request); err != nil {
			return err
		}
	}

	if fn == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(conn)
	}()

	select {
	case <-ctx.Done():
		_ = conn.Close()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}
