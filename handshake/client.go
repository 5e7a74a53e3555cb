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
	"github.com/sabouaram/collab/password"
)

// ClientConfig configures one client-side handshake.
type ClientConfig struct {
	ClientName string
	Password   string
	Protocols  []RequestedProtocol
}

// Connected is the outcome of a client-side handshake that ended in
// ConnectReply.
type Connected struct {
	ServerName string
	ClientID   ClientID
	ActualName string
	UDPTicket  uint32
	Protocols  []NegotiatedProtocol
	SwapOnRead bool
}

// Dial runs the client side of §4.5 steps 1-4 over rw, a freshly dialed TCP
// connection. It returns *Rejected if the server sent ConnectReject.
func Dial(rw ReadWriter, cfg ClientConfig) (*Connected, error) {
	preq, swapOnRead, err := ReadPasswordRequest(rw)
	if err != nil {
		return nil, err
	}

	hash := password.Hash(preq.HashAlgorithm, cfg.Password, preq.Nonce[:])

	creq := ConnectRequest{
		Marker:          EndiannessMarker,
		ProtocolVersion: ProtocolVersion,
		Hash:            hash,
		Protocols:       cfg.Protocols,
	}
	copy(creq.ClientName[:], cfg.ClientName)
	if err := WriteConnectRequest(rw, creq); err != nil {
		return nil, err
	}

	reply, reject, err := ReadConnectOutcome(rw)
	if err != nil {
		return nil, err
	}
	if reject != nil {
		return nil, &Rejected{Reason: reject.Reason}
	}

	return &Connected{
		ServerName: cStr(reply.ServerName[:]),
		ClientID:   reply.ClientID,
		ActualName: cStr(reply.ActualClientName[:]),
		UDPTicket:  reply.UDPTicket,
		Protocols:  reply.Protocols,
		SwapOnRead: swapOnRead,
	}, nil
}
