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

// Package handshake implements the core connection handshake (§4.5): the
// password challenge, protocol negotiation and client-id assignment that
// run once, synchronously, before a connection's message IDs mean anything.
package handshake

import "github.com/sabouaram/collab/password"

// EndiannessMarker is sent first by the server, in host byte order, so the
// client can detect a byte-order mismatch by comparing the bytes it read
// against this constant. Its bytes are deliberately not a palindrome, so a
// reversed read is distinguishable from a correct one.
const EndiannessMarker uint32 = 0x01020304

// ProtocolVersion is the wire version of this handshake itself (distinct
// from any plug-in's own Version).
const ProtocolVersion uint16 = 1

// ClientID identifies one connected client for the lifetime of its
// session: server-assigned, nonzero, unique for the server's lifetime, and
// unsigned 16-bit per §3's wire layout.
type ClientID uint16

// Status is the per-plug-in negotiation outcome reported in ConnectReply.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusUnknownProtocol
	StatusWrongVersion
)

// PasswordRequest is the server's first message: the endianness probe, this
// handshake's version, a random nonce, and the digest algorithm the server
// expects ConnectRequest.Hash to use.
type PasswordRequest struct {
	Marker          uint32
	ProtocolVersion uint16
	Nonce           [16]byte
	HashAlgorithm   password.Algorithm
}

// RequestedProtocol is one plug-in a client asks the server to negotiate.
type RequestedProtocol struct {
	Name    [32]byte
	Version uint16
}

// ConnectRequest is the client's reply to PasswordRequest: its own
// endianness probe, the salted password hash, its requested display name,
// and the plug-in set it wants negotiated.
type ConnectRequest struct {
	Marker          uint32
	ProtocolVersion uint16
	Hash            [16]byte
	ClientName      [32]byte
	Protocols       []RequestedProtocol
}

// NegotiatedProtocol is one plug-in's outcome, echoed back in ConnectReply
// in the same order ConnectRequest listed it.
type NegotiatedProtocol struct {
	Status             Status
	NegotiatedVersion  uint16
	ProtocolIndex      uint16
	ClientMessageBase  uint16
	ServerMessageBase  uint16
}

// ConnectReply accepts a client: it assigns a ClientID, a de-duplicated
// display name, a UDP ticket for step 5, and the per-plug-in negotiation
// results.
type ConnectReply struct {
	ServerName       [32]byte
	ClientID         ClientID
	ActualClientName [32]byte
	UDPTicket        uint32
	Protocols        []NegotiatedProtocol
}

// RejectReason explains why the server closed the connection instead of
// sending ConnectReply.
type RejectReason uint8

const (
	RejectBadVersion RejectReason = iota
	RejectBadPassword
	RejectServerFull
)

// ConnectReject is sent instead of ConnectReply when the handshake fails;
// the server closes the connection immediately after.
type ConnectReject struct {
	Reason RejectReason
}

// UDPConnectRequest is sent by the client over the UDP channel once
// ConnectReply accepts it, proving the client owns the TCP-negotiated
// ClientID/UDPTicket pair from this new source address.
type UDPConnectRequest struct {
	ClientID  ClientID
	UDPTicket uint32
}

// UDPConnectReply confirms the server bound the sender's address to
// ClientID, echoing the ticket so the client can detect a stale reply.
type UDPConnectReply struct {
	UDPTicket uint32
}
