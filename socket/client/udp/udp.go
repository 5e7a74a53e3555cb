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

// Package udp implements the best-effort datagram outbound connection used
// by collabc to reach a collabd core's UDP channel.
package udp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	sckcfg "github.com/sabouaram/collab/socket/config"
)

// ErrAddress is returned by New when cfg.Address is empty.
var ErrAddress = errors.New("socket/client/udp: empty address")

// ErrNotConnected is returned by Read/Write when Connect has not succeeded.
var ErrNotConnected = errors.New("socket/client/udp: not connected")

// ClientUdp is an outbound best-effort datagram connection.
type ClientUdp interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Close() error

	Read(b []byte) (int, error)
	Write(b []byte) (int, error)

	Once(ctx context.Context, request []byte, fn func(r io.Reader)) error
}

type client struct {
	cfg sckcfg.Client

	mu   sync.RWMutex
	conn net.Conn
}

// New returns a ClientUdp targeting addr with default settings.
func New(addr string) (ClientUdp, error) {
	return NewWithConfig(sckcfg.Client{Address: addr})
}

// NewWithConfig returns a ClientUdp configured by cfg.
func NewWithConfig(cfg sckcfg.Client) (ClientUdp, error) {
	if cfg.Address == "" {
		return nil, ErrAddress
	}
	return &client{cfg: cfg}, nil
}

func (c *client) Connect(ctx context.Context) error {
	network := "udp"
	if c.cfg.Network.IsValid() {
		network = c.cfg.Network.Code()
	}
	dialer := net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, network, c.cfg.Address)
	if err != nil {
		return err
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
