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

// Package password computes and verifies the salted hash exchanged during
// the core handshake (§4.5 step 2): a keyed digest of the shared password
// concatenated with the server's nonce, so the password itself never
// crosses the wire.
package password

import (
	"crypto/md5"
	"encoding/hex"

	encsha "github.com/sabouaram/collab/encoding/sha256"
)

// Algorithm selects the digest used to hash password||nonce.
type Algorithm uint8

const (
	// HashMD5 is the spec's literal default: a 128-bit MD5 digest, kept for
	// wire compatibility with clients that only understand the original
	// handshake.
	HashMD5 Algorithm = iota
	// HashSHA256 is the stronger option a server can opt into via
	// handshake.ServerConfig.HashAlgorithm; only the low 16 bytes of the
	// SHA-256 digest are sent, matching the wire's fixed hash[16] field.
	HashSHA256
)

// Size is the wire size of every hash produced by Hash, regardless of
// algorithm: the handshake's hash field is a fixed 16 bytes.
const Size = 16

// Hash returns the 16-byte digest of password||nonce under algorithm.
func Hash(algorithm Algorithm, password string, nonce []byte) [Size]byte {
	var out [Size]byte
	switch algorithm {
	case HashSHA256:
		hexSum := encsha.New().Encode(append([]byte(password), nonce...))
		sum, err := hex.DecodeString(string(hexSum))
		if err == nil {
			copy(out[:], sum[:Size])
		}
	default:
		sum := md5.Sum(append([]byte(password), nonce...))
		copy(out[:], sum[:])
	}
	return out
}

// Verify reports whether candidate matches the hash of password||nonce
// under algorithm, using a constant-time comparison.
func Verify(algorithm Algorithm, password string, nonce []byte, candidate [Size]byte) bool {
	want := Hash(algorithm, password, nonce)
	var diff byte
	for i := range want {
		diff |= want[i] ^ candidate[i]
	}
	return diff == 0
}
