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

// Package protocol names the socket-level transport families the core
// supports and maps each one to the net package's dial/listen string.
package protocol

import "strings"

// Network is a transport family usable by a socket config.
type Network uint8

const (
	NetworkEmpty Network = iota
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkUnix
	NetworkUnixGram
)

// List returns every known Network value, TCP family first.
func List() []Network {
	return []Network{
		NetworkTCP, NetworkTCP4, NetworkTCP6,
		NetworkUDP, NetworkUDP4, NetworkUDP6,
		NetworkUnix, NetworkUnixGram,
	}
}

// Int returns the Network as its underlying integer, for config serialization.
func (n Network) Int() int { return int(n) }

// Code returns the short wire tag used in diagnostic logging.
func (n Network) Code() string {
	switch n {
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkUnix:
		return "unix"
	case NetworkUnixGram:
		return "unixgram"
	default:
		return ""
	}
}

// String satisfies fmt.Stringer.
func (n Network) String() string {
	if c := n.Code(); c != "" {
		return c
	}
	return "empty"
}

// Network returns the string accepted by net.Dial/net.Listen for this family.
// Identical to Code() except it panics would be wrong to hide: an empty
// Network has no dial string, so callers must check IsValid first.
func (n Network) Network() string {
	return n.Code()
}

// IsValid reports whether n is a known, non-empty transport family.
func (n Network) IsValid() bool {
	return n != NetworkEmpty && n.Code() != ""
}

// IsStream reports whether n is a reliable, connection-oriented family
// (TCP or Unix stream sockets), as opposed to a datagram family.
func (n Network) IsStream() bool {
	switch n {
	case NetworkTCP, NetworkTCP4, NetworkTCP6, NetworkUnix:
		return true
	default:
		return false
	}
}

// IsDatagram reports whether n is a lossy, message-oriented family.
func (n Network) IsDatagram() bool {
	return n.IsValid() && !n.IsStream()
}

// ParseNetwork parses s (case-insensitive, surrounding quotes and whitespace
// tolerated) into a Network, returning NetworkEmpty if nothing matches.
func ParseNetwork(s string) Network {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "\"'")

	for _, n := range List() {
		if n.Code() == s {
			return n
		}
	}

	return NetworkEmpty
}
