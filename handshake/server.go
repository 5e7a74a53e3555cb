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

package handshake

import (
	"crypto/rand"
	"fmt"

	"github.com/sabouaram/collab/password"
)

// ProtocolResolver decides, for one requested plug-in, whether the server
// supports it and which message-id ranges it gets. Implemented by
// plugin.Registry; kept as an interface here so this package never imports
// plugin.
type ProtocolResolver interface {
	Resolve(name string, version uint16) (negotiatedVersion, clientBase, serverBase uint16, ok bool)
}

// ServerConfig configures one server-side handshake.
type ServerConfig struct {
	ServerName    string
	Password      string
	HashAlgorithm password.Algorithm
	Resolver      ProtocolResolver

	// AllocateClientID returns a fresh, currently-unused client id.
	AllocateClientID func() ClientID
	// ResolveName de-duplicates a client's requested display name against
	// the names already in use, returning the name actually assigned.
	ResolveName func(requested string) string
}

// Accepted is the outcome of a server-side handshake that ended in
// ConnectReply.
type Accepted struct {
	ClientID   ClientID
	Name       string
	UDPTicket  uint32
	Protocols  []NegotiatedProtocol
	Requested  ConnectRequest
	SwapOnRead bool
}

// Rejected is returned as an error when the server sent ConnectReject.
type Rejected struct {
	Reason RejectReason
}

func (r *Rejected) Error() string {
	switch r.Reason {
	case RejectBadVersion:
		return "handshake: rejected, protocol version mismatch"
	case RejectBadPassword:
		return "handshake: rejected, bad password"
	case RejectServerFull:
		return "handshake: rejected, server full"
	default:
		return "handshake: rejected"
	}
}

// Accept runs the server side of §4.5 steps 1-4 over rw, a freshly accepted
// TCP connection. It returns the negotiated Accepted record, or a *Rejected
// error if the client failed the handshake (the connection must still be
// closed by the caller in either case).
func Accept(rw ReadWriter, cfg ServerConfig) (*Accepted, error) {
	nonce, err := randomBytes(16)
	if err != nil {
		return nil, fmt.Errorf("handshake: nonce: %w", err)
	}

	req := PasswordRequest{
		Marker:          EndiannessMarker,
		ProtocolVersion: ProtocolVersion,
		HashAlgorithm:   cfg.HashAlgorithm,
	}
	copy(req.Nonce[:], nonce)
	if err := WritePasswordRequest(rw, req); err != nil {
		return nil, err
	}

	creq, swapOnRead, err := ReadConnectRequest(rw)
	if err != nil {
		return nil, err
	}

	if creq.ProtocolVersion != ProtocolVersion {
		_ = WriteConnectReject(rw, ConnectReject{Reason: RejectBadVersion})
		return nil, &Rejected{Reason: RejectBadVersion}
	}
	if !password.Verify(cfg.HashAlgorithm, cfg.Password, nonce, creq.Hash) {
		_ = WriteConnectReject(rw, ConnectReject{Reason: RejectBadPassword})
		return nil, &Rejected{Reason: RejectBadPassword}
	}

	id := ClientID(0)
	if cfg.AllocateClientID != nil {
		id = cfg.AllocateClientID()
	}
	ticketBytes, err := randomBytes(4)
	if err != nil {
		return nil, fmt.Errorf("handshake: ticket: %w", err)
	}
	ticket := endian.Uint32(ticketBytes)

	name := cStr(creq.ClientName[:])
	if cfg.ResolveName != nil {
		name = cfg.ResolveName(name)
	}

	negotiated := make([]NegotiatedProtocol, len(creq.Protocols))
	for i, p := range creq.Protocols {
		pname := cStr(p.Name[:])
		if cfg.Resolver == nil {
			negotiated[i] = NegotiatedProtocol{Status: StatusUnknownProtocol}
			continue
		}
		version, clientBase, serverBase, ok := cfg.Resolver.Resolve(pname, p.Version)
		if !ok {
			negotiated[i] = NegotiatedProtocol{Status: StatusUnknownProtocol, ProtocolIndex: uint16(i)}
			continue
		}
		negotiated[i] = NegotiatedProtocol{
			Status:            StatusSuccess,
			NegotiatedVersion: version,
			ProtocolIndex:     uint16(i),
			ClientMessageBase: clientBase,
			ServerMessageBase: serverBase,
		}
	}

	reply := ConnectReply{
		ClientID:  id,
		UDPTicket: ticket,
		Protocols: negotiated,
	}
	copy(reply.ServerName[:], cfg.ServerName)
	copy(reply.ActualClientName[:], name)

	if err := WriteConnectReply(rw, reply); err != nil {
		return nil, err
	}

	return &Accepted{
		ClientID:   id,
		Name:       name,
		UDPTicket:  ticket,
		Protocols:  negotiated,
		Requested:  creq,
		SwapOnRead: swapOnRead,
	}, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func cStr(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
