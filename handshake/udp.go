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
	"errors"
)

// ErrTicketMismatch is returned by BindUDP when the ticket a client quotes
// over UDP does not match the one the TCP handshake handed out.
var ErrTicketMismatch = errors.New("handshake: udp ticket mismatch")

// UDPBinder maps a client id to the ticket ConnectReply handed it, letting
// the server verify step 5 without keeping a side channel to the TCP
// handshake state.
type UDPBinder interface {
	TicketFor(id ClientID) (uint32, bool)
}

// BindUDP implements the server side of §4.5 step 5: it reads one
// UDPConnectRequest datagram, checks the quoted ticket against binder, and
// if it matches returns the client id the caller should bind raddr to,
// writing UDPConnectReply back on rw.
func BindUDP(rw ReadWriter, binder UDPBinder) (ClientID, error) {
	req, err := ReadUDPConnectRequest(rw)
	if err != nil {
		return 0, err
	}
	want, ok := binder.TicketFor(req.ClientID)
	if !ok || want != req.UDPTicket {
		return 0, ErrTicketMismatch
	}
	if err := WriteUDPConnectReply(rw, UDPConnectReply{UDPTicket: req.UDPTicket}); err != nil {
		return 0, err
	}
	return req.ClientID, nil
}

// SendUDPConnectRequest implements the client side of §4.5 step 5: one
// UDPConnectRequest datagram sent over the already-connected UDP socket.
func SendUDPConnectRequest(rw ReadWriter, id ClientID, ticket uint32) error {
	return WriteUDPConnectRequest(rw, UDPConnectRequest{ClientID: id, UDPTicket: ticket})
}

// AwaitUDPConnectReply implements the client's wait for step 5's reply,
// rejecting a reply that echoes a different ticket than expected (a stale
// reply from a previous handshake attempt).
func AwaitUDPConnectReply(rw ReadWriter, expectTicket uint32) error {
	reply, err := ReadUDPConnectReply(rw)
	if err != nil {
		return err
	}
	if reply.UDPTicket != expectTicket {
		return ErrTicketMismatch
	}
	return nil
}
