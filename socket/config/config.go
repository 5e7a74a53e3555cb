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

// Package config holds the socket-level configuration structs shared by
// every transport family under socket/server and socket/client.
package config

import (
	"errors"
	"net"
	"time"

	"github.com/sabouaram/collab/certificates"
	"github.com/sabouaram/collab/file/perm"
	"github.com/sabouaram/collab/network/protocol"
)

// DefaultRingBufferSize is the receive ring's default capacity (§4.2).
const DefaultRingBufferSize = 64 * 1024

var (
	ErrInvalidProtocol  = errors.New("socket/config: invalid protocol")
	ErrInvalidAddress   = errors.New("socket/config: invalid address")
	ErrInvalidGroup     = errors.New("socket/config: invalid unix group")
	ErrInvalidTLSConfig = errors.New("socket/config: invalid TLS config")
)

// TLS gates whether a socket wraps its transport in a TLS handshake; a
// zero-value TLS is disabled, so the core's own plain-socket handshake
// (§4.5) is the default for every config literal that leaves it unset.
type TLS struct {
	Enabled bool
	Config  certificates.Config
}

func (t TLS) validate() error {
	if !t.Enabled {
		return nil
	}
	if t.Config.Validate() != nil {
		return ErrInvalidTLSConfig
	}
	return nil
}

// Server configures one listening socket.
type Server struct {
	Network protocol.Network
	Address string

	// PermFile/GroupPerm apply to unix/unixgram socket files only.
	PermFile  perm.Perm
	GroupPerm int32

	TLS TLS

	RingBufferSize int
}

// Validate checks the network/address combination resolves and, when TLS is
// enabled, that its certificate configuration is usable.
func (s Server) Validate() error {
	if !s.Network.IsValid() {
		return ErrInvalidProtocol
	}
	if err := resolveAddress(s.Network, s.Address); err != nil {
		return err
	}
	if s.GroupPerm < 0 {
		return ErrInvalidGroup
	}
	return s.TLS.validate()
}

// RingSize returns the configured ring buffer capacity, or the default.
func (s Server) RingSize() int {
	if s.RingBufferSize > 0 {
		return s.RingBufferSize
	}
	return DefaultRingBufferSize
}

// Client configures one outbound connection.
type Client struct {
	Network protocol.Network
	Address string
	Timeout time.Duration
	TLS     TLS

	RingBufferSize int
}

// Validate checks the network/address combination resolves and, when TLS is
// enabled, that its certificate configuration is usable.
func (c Client) Validate() error {
	if !c.Network.IsValid() {
		return ErrInvalidProtocol
	}
	if err := resolveAddress(c.Network, c.Address); err != nil {
		return err
	}
	return c.TLS.validate()
}

// RingSize returns the configured ring buffer capacity, or the default.
func (c Client) RingSize() int {
	if c.RingBufferSize > 0 {
		return c.RingBufferSize
	}
	return DefaultRingBufferSize
}

func resolveAddress(n protocol.Network, addr string) error {
	switch {
	case n.IsDatagram() && n != protocol.NetworkUnixGram:
		_, err := net.ResolveUDPAddr(n.Code(), addr)
		return err
	case n == protocol.NetworkUnix || n == protocol.NetworkUnixGram:
		_, err := net.ResolveUnixAddr(n.Code(), addr)
		return err
	default:
		_, err := net.ResolveTCPAddr(n.Code(), addr)
		return err
	}
}
