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

// Package uri parses the connection strings collabc and the client package
// accept: scheme://[password@]host[:port], where scheme names the transport
// (e.g. "collab" for a plain TCP+UDP pair) and the optional userinfo segment
// carries the shared password instead of a username.
package uri

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrInvalidScheme is returned by Parse when the URI has no scheme at all.
var ErrInvalidScheme = errors.New("uri: missing scheme")

// ErrInvalidHost is returned by Parse when the URI has no host.
var ErrInvalidHost = errors.New("uri: missing host")

// DefaultPort is used when a URI omits an explicit port.
const DefaultPort = "6996"

// Target is a parsed collab connection string.
type Target struct {
	Scheme   string
	Host     string
	Port     string
	Password string
}

// Address returns "host:port", ready for net.Dial.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, t.Port)
}

// String renders t back as the URI form a user typed, without echoing the
// password.
func (t Target) String() string {
	return fmt.Sprintf("%s://%s", t.Scheme, t.Address())
}

// Parse decodes one collab connection string.
func Parse(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("uri: %w", err)
	}
	if u.Scheme == "" {
		return Target{}, ErrInvalidScheme
	}
	if u.Hostname() == "" {
		return Target{}, ErrInvalidHost
	}

	port := u.Port()
	if port == "" {
		port = DefaultPort
	}

	password := ""
	if u.User != nil {
		password = u.User.Username()
	}

	return Target{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Port:     port,
		Password: password,
	}, nil
}
