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
	"encoding/binary"
	"fmt"
	"io"
)

// endian is the byte order every handshake message is written in. It never
// changes: §4.5's endianness check exists so a mismatched client can swap
// the *application* protocol's later traffic, not this handshake, which is
// always big-endian on the wire.
var endian = binary.BigEndian

// ReadWriter is the minimal connection handle the handshake needs: a TCP
// socket.Context satisfies it directly.
type ReadWriter interface {
	io.Reader
	io.Writer
}

func writeFixed(w io.Writer, name string, s string, size int) error {
	var buf = make([]byte, size)
	copy(buf, s)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("handshake: write %s: %w", name, err)
	}
	return nil
}

func readFixed(r io.Reader, name string, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("handshake: read %s: %w", name, err)
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n]), nil
}

// WritePasswordRequest sends the server's opening message.
func WritePasswordRequest(w io.Writer, m PasswordRequest) error {
	if err := binary.Write(w, endian, m.Marker); err != nil {
		return err
	}
	if err := binary.Write(w, endian, m.ProtocolVersion); err != nil {
		return err
	}
	if _, err := w.Write(m.Nonce[:]); err != nil {
		return err
	}
	return binary.Write(w, endian, m.HashAlgorithm)
}

// ReadPasswordRequest reads the server's opening message and reports
// whether marker matched EndiannessMarker in host order; swapOnRead is
// true when the caller must byte-swap every subsequent fixed-width field.
func ReadPasswordRequest(r io.Reader) (m PasswordRequest, swapOnRead bool, err error) {
	if err = binary.Read(r, endian, &m.Marker); err != nil {
		return m, false, err
	}
	if m.Marker != EndiannessMarker {
		swapOnRead = true
	}
	if err = binary.Read(r, endian, &m.ProtocolVersion); err != nil {
		return m, swapOnRead, err
	}
	if _, err = io.ReadFull(r, m.Nonce[:]); err != nil {
		return m, swapOnRead, err
	}
	err = binary.Read(r, endian, &m.HashAlgorithm)
	return m, swapOnRead, err
}

// WriteConnectRequest sends the client's reply to PasswordRequest.
func WriteConnectRequest(w io.Writer, m ConnectRequest) error {
	if err := binary.Write(w, endian, m.Marker); err != nil {
		return err
	}
	if err := binary.Write(w, endian, m.ProtocolVersion); err != nil {
		return err
	}
	if _, err := w.Write(m.Hash[:]); err != nil {
		return err
	}
	if err := writeFixed(w, "clientName", string(m.ClientName[:]), 32); err != nil {
		return err
	}
	if err := binary.Write(w, endian, uint16(len(m.Protocols))); err != nil {
		return err
	}
	for _, p := range m.Protocols {
		if err := writeFixed(w, "protocolName", string(p.Name[:]), 32); err != nil {
			return err
		}
		if err := binary.Write(w, endian, p.Version); err != nil {
			return err
		}
	}
	return nil
}

// ReadConnectRequest reads a ConnectRequest, performing the server's own
// symmetric endianness check on the leading marker (§4.5 step 2) and
// reporting whether every other field needed a byte swap.
func ReadConnectRequest(r io.Reader) (m ConnectRequest, swapOnRead bool, err error) {
	if err = binary.Read(r, endian, &m.Marker); err != nil {
		return m, false, err
	}
	if m.Marker != EndiannessMarker {
		swapOnRead = true
	}
	order := endian
	if swapOnRead {
		order = binary.LittleEndian
	}
	if err := binary.Read(r, order, &m.ProtocolVersion); err != nil {
		return m, swapOnRead, err
	}
	if _, err := io.ReadFull(r, m.Hash[:]); err != nil {
		return m, swapOnRead, err
	}
	name, err := readFixed(r, "clientName", 32)
	if err != nil {
		return m, swapOnRead, err
	}
	copy(m.ClientName[:], name)

	var n uint16
	if err := binary.Read(r, order, &n); err != nil {
		return m, swapOnRead, err
	}
	m.Protocols = make([]RequestedProtocol, n)
	for i := range m.Protocols {
		pname, err := readFixed(r, "protocolName", 32)
		if err != nil {
			return m, swapOnRead, err
		}
		copy(m.Protocols[i].Name[:], pname)
		if err := binary.Read(r, order, &m.Protocols[i].Version); err != nil {
			return m, swapOnRead, err
		}
	}
	return m, swapOnRead, nil
}

// WriteConnectReply sends the server's acceptance message, preceded by the
// accepted=true discriminator byte shared with WriteConnectReject.
func WriteConnectReply(w io.Writer, m ConnectReply) error {
	if err := binary.Write(w, endian, true); err != nil {
		return err
	}
	if err := writeFixed(w, "serverName", string(m.ServerName[:]), 32); err != nil {
		return err
	}
	if err := binary.Write(w, endian, uint16(m.ClientID)); err != nil {
		return err
	}
	if err := writeFixed(w, "actualClientName", string(m.ActualClientName[:]), 32); err != nil {
		return err
	}
	if err := binary.Write(w, endian, m.UDPTicket); err != nil {
		return err
	}
	if err := binary.Write(w, endian, uint16(len(m.Protocols))); err != nil {
		return err
	}
	for _, p := range m.Protocols {
		if err := binary.Write(w, endian, p.Status); err != nil {
			return err
		}
		if err := binary.Write(w, endian, p.NegotiatedVersion); err != nil {
			return err
		}
		if err := binary.Write(w, endian, p.ProtocolIndex); err != nil {
			return err
		}
		if err := binary.Write(w, endian, p.ClientMessageBase); err != nil {
			return err
		}
		if err := binary.Write(w, endian, p.ServerMessageBase); err != nil {
			return err
		}
	}
	return nil
}

// ReadConnectReply reads a ConnectReply.
func ReadConnectReply(r io.Reader) (ConnectReply, error) {
	var m ConnectReply
	name, err := readFixed(r, "serverName", 32)
	if err != nil {
		return m, err
	}
	copy(m.ServerName[:], name)

	var id uint16
	if err := binary.Read(r, endian, &id); err != nil {
		return m, err
	}
	m.ClientID = ClientID(id)

	actual, err := readFixed(r, "actualClientName", 32)
	if err != nil {
		return m, err
	}
	copy(m.ActualClientName[:], actual)

	if err := binary.Read(r, endian, &m.UDPTicket); err != nil {
		return m, err
	}

	var n uint16
	if err := binary.Read(r, endian, &n); err != nil {
		return m, err
	}
	m.Protocols = make([]NegotiatedProtocol, n)
	for i := range m.Protocols {
		if err := binary.Read(r, endian, &m.Protocols[i].Status); err != nil {
			return m, err
		}
		if err := binary.Read(r, endian, &m.Protocols[i].NegotiatedVersion); err != nil {
			return m, err
		}
		if err := binary.Read(r, endian, &m.Protocols[i].ProtocolIndex); err != nil {
			return m, err
		}
		if err := binary.Read(r, endian, &m.Protocols[i].ClientMessageBase); err != nil {
			return m, err
		}
		if err := binary.Read(r, endian, &m.Protocols[i].ServerMessageBase); err != nil {
			return m, err
		}
	}
	return m, nil
}

// WriteConnectReject sends the server's rejection message, preceded by the
// accepted=false discriminator byte shared with WriteConnectReply.
func WriteConnectReject(w io.Writer, m ConnectReject) error {
	if err := binary.Write(w, endian, false); err != nil {
		return err
	}
	return binary.Write(w, endian, m.Reason)
}

// ReadConnectReject reads a ConnectReject's body, once the caller has
// already consumed the accepted=false discriminator byte.
func ReadConnectReject(r io.Reader) (ConnectReject, error) {
	var m ConnectReject
	err := binary.Read(r, endian, &m.Reason)
	return m, err
}

// ReadConnectOutcome reads the shared accepted/rejected discriminator byte
// and then the matching message, returning exactly one of the two.
func ReadConnectOutcome(r io.Reader) (reply *ConnectReply, reject *ConnectReject, err error) {
	var accepted bool
	if err = binary.Read(r, endian, &accepted); err != nil {
		return nil, nil, err
	}
	if accepted {
		m, err := ReadConnectReply(r)
		if err != nil {
			return nil, nil, err
		}
		return &m, nil, nil
	}
	m, err := ReadConnectReject(r)
	if err != nil {
		return nil, nil, err
	}
	return nil, &m, nil
}

// WriteUDPConnectRequest sends step 5's UDP-side proof of identity.
func WriteUDPConnectRequest(w io.Writer, m UDPConnectRequest) error {
	if err := binary.Write(w, endian, uint16(m.ClientID)); err != nil {
		return err
	}
	return binary.Write(w, endian, m.UDPTicket)
}

// ReadUDPConnectRequest reads a UDPConnectRequest from one UDP datagram.
func ReadUDPConnectRequest(r io.Reader) (UDPConnectRequest, error) {
	var m UDPConnectRequest
	var id uint16
	if err := binary.Read(r, endian, &id); err != nil {
		return m, err
	}
	m.ClientID = ClientID(id)
	err := binary.Read(r, endian, &m.UDPTicket)
	return m, err
}

// WriteUDPConnectReply sends the server's UDP-binding confirmation.
func WriteUDPConnectReply(w io.Writer, m UDPConnectReply) error {
	return binary.Write(w, endian, m.UDPTicket)
}

// ReadUDPConnectReply reads a UDPConnectReply from one UDP datagram.
func ReadUDPConnectReply(r io.Reader) (UDPConnectReply, error) {
	var m UDPConnectReply
	err := binary.Read(r, endian, &m.UDPTicket)
	return m, err
}
