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

// Package persist implements §6's persisted-state dump format for Koinonia
// objects: a dictionary encoding followed by the object serializations,
// optionally gzip-compressed and/or AES-encrypted at rest. This is
// storage-at-rest, not the live wire channel, so it does not conflict with
// §1's no-cryptographic-channel non-goal.
package persist

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sabouaram/collab/crypt"
	"github.com/sabouaram/collab/wire"
)

// magic identifies a Koinonia dump file, written first so Load can refuse
// to parse anything else.
var magic = [4]byte{'K', 'O', 'I', '1'}

// Object is one named global object as it is written to / read from a dump.
type Object struct {
	Name    string
	TypeID  uint8
	Version uint64
	Payload []byte
}

// Options controls optional at-rest transforms applied around the raw dump
// bytes. Gzip and Crypt are independent: either, both, or neither may be
// set. Crypt, if set, is applied last on write (innermost on read) so a
// dump is AES(gzip(raw)), never gzip(AES(raw)) which would not compress.
type Options struct {
	Gzip  bool
	Crypt crypt.Crypt
}

// Dump writes dict followed by every object in objs to w, per Options.
func Dump(w io.Writer, dict *wire.Dictionary, objs []Object, opt Options) error {
	raw, err := encode(dict, objs)
	if err != nil {
		return err
	}
	if opt.Gzip {
		raw, err = gzipBytes(raw)
		if err != nil {
			return err
		}
	}
	if opt.Crypt != nil {
		raw = opt.Crypt.Encode(raw)
	}
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	header := struct {
		GzipFlag  bool
		CryptFlag bool
		Length    uint64
	}{opt.Gzip, opt.Crypt != nil, uint64(len(raw))}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// Load reads a dump written by Dump. cr must be supplied if the dump was
// encrypted; it is ignored otherwise.
func Load(r io.Reader, cr crypt.Crypt) (*wire.Dictionary, []Object, error) {
	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, nil, err
	}
	if gotMagic != magic {
		return nil, nil, fmt.Errorf("persist: not a koinonia dump")
	}

	var header struct {
		GzipFlag  bool
		CryptFlag bool
		Length    uint64
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, nil, err
	}

	raw := make([]byte, header.Length)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, nil, err
	}

	if header.CryptFlag {
		if cr == nil {
			return nil, nil, fmt.Errorf("persist: dump is encrypted but no key was supplied")
		}
		var err error
		raw, err = cr.Decode(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("persist: decrypt: %w", err)
		}
	}
	if header.GzipFlag {
		var err error
		raw, err = gunzipBytes(raw)
		if err != nil {
			return nil, nil, err
		}
	}
	return decode(raw)
}

func gzipBytes(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
