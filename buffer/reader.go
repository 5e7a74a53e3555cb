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

package buffer

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when a read would advance the cursor past the
// buffer's logical length.
var ErrShortBuffer = errors.New("buffer: short buffer")

// Reader is an advancing cursor over a MessageBuffer's payload used while
// consuming a received message. When SwapOnRead is set, every multi-byte read
// is byte-reversed after being copied out, implementing the endianness
// correction negotiated at handshake time.
type Reader struct {
	buf        *MessageBuffer
	order      binary.ByteOrder
	cursor     int
	swapOnRead bool
	closed     bool
}

// NewReader returns a Reader over buf, taking a Ref on it. The cursor starts
// past the embedded message-id, if any.
func NewReader(buf *MessageBuffer, order binary.ByteOrder, swapOnRead bool) *Reader {
	buf.Ref()
	start := 0
	if buf.hasID {
		start = 2
	}
	return &Reader{buf: buf, order: order, cursor: start, swapOnRead: swapOnRead}
}

func (r *Reader) Buffer() *MessageBuffer { return r.buf }
func (r *Reader) Pos() int               { return r.cursor }

// SetSwap toggles byte-swapping for subsequent reads.
func (r *Reader) SetSwap(swap bool) { r.swapOnRead = swap }
func (r *Reader) Swap() bool        { return r.swapOnRead }

// Remaining reports how many unread bytes are left in the logical payload.
func (r *Reader) Remaining() int {
	return r.buf.length - r.cursor
}

func (r *Reader) take(n int) ([]byte, error) {
	if n > r.Remaining() {
		return nil, ErrShortBuffer
	}
	p := r.buf.payload[r.cursor : r.cursor+n]
	r.cursor += n
	return p, nil
}

func reverse(p []byte) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

// ReadRaw copies n bytes into dst (which must have length n) without any
// endianness handling, for opaque blobs such as hashes and nonces.
func (r *Reader) ReadRaw(dst []byte) error {
	p, err := r.take(len(dst))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

func (r *Reader) ReadBool() (bool, error) {
	p, err := r.take(1)
	if err != nil {
		return false, err
	}
	return p[0] != 0, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	p, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	p, err := r.take(2)
	if err != nil {
		return 0, err
	}
	b := append([]byte(nil), p...)
	if r.swapOnRead {
		reverse(b)
	}
	return r.order.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	p, err := r.take(4)
	if err != nil {
		return 0, err
	}
	b := append([]byte(nil), p...)
	if r.swapOnRead {
		reverse(b)
	}
	return r.order.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	b := append([]byte(nil), p...)
	if r.swapOnRead {
		reverse(b)
	}
	return r.order.Uint64(b), nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadVarInt reads the 1-5 byte VarInt encoding written by Writer.WriteVarInt:
// the top three bits of the first byte give the continuation-byte count r,
// the low five bits hold the high value bits (unused when r==4), and the
// continuation bytes are little-endian.
func (r *Reader) ReadVarInt() (uint32, error) {
	first, err := r.ReadUint8()
	if err != nil {
		return 0, err
	}
	n := int(first >> 5)
	high := uint32(first & 0x1F)

	var cont [4]byte
	for i := 0; i < n; i++ {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		cont[i] = b
	}

	switch n {
	case 0:
		return high, nil
	case 1:
		return high<<8 | uint32(cont[0]), nil
	case 2:
		return high<<16 | uint32(cont[1])<<8 | uint32(cont[0]), nil
	case 3:
		return high<<24 | uint32(cont[2])<<16 | uint32(cont[1])<<8 | uint32(cont[0]), nil
	default:
		return uint32(cont[3])<<24 | uint32(cont[2])<<16 | uint32(cont[1])<<8 | uint32(cont[0]), nil
	}
}

// ReadString reads a VarInt length prefix followed by that many bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	p, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadPadded reads exactly n bytes and trims trailing zero padding, for the
// fixed-size text fields used by the handshake messages.
func (r *Reader) ReadPadded(n int) (string, error) {
	p, err := r.take(n)
	if err != nil {
		return "", err
	}
	end := len(p)
	for end > 0 && p[end-1] == 0 {
		end--
	}
	return string(p[:end]), nil
}

// Close releases the Reader's reference on its buffer. Safe to call once.
func (r *Reader) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.buf.Unref()
}
