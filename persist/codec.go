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

package persist

import (
	"encoding/binary"

	"github.com/sabouaram/collab/buffer"
	"github.com/sabouaram/collab/wire"
)

// encode writes dict.Encode() followed by a VarInt count of objects and,
// per object, its name, type id, version and payload.
func encode(dict *wire.Dictionary, objs []Object) ([]byte, error) {
	dictBytes := dict.Encode()

	size := len(dictBytes) + 32
	for _, o := range objs {
		size += len(o.Name) + len(o.Payload) + 32
	}

	buf := buffer.New(size)
	w := buffer.NewWriter(buf, binary.BigEndian)
	defer w.Close()

	w.WriteVarInt(uint32(len(dictBytes)))
	w.WriteRaw(dictBytes)

	w.WriteVarInt(uint32(len(objs)))
	for _, o := range objs {
		w.WriteString(o.Name)
		w.WriteUint8(o.TypeID)
		w.WriteUint64(o.Version)
		w.WriteVarInt(uint32(len(o.Payload)))
		w.WriteRaw(o.Payload)
	}
	w.FinishMessage()

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decode(raw []byte) (*wire.Dictionary, []Object, error) {
	buf := buffer.WrapReceived(raw)
	r := buffer.NewReader(buf, binary.BigEndian, false)
	defer r.Close()

	dictLen, err := r.ReadVarInt()
	if err != nil {
		return nil, nil, err
	}
	dictBytes := make([]byte, dictLen)
	if err := r.ReadRaw(dictBytes); err != nil {
		return nil, nil, err
	}
	dict, err := wire.DecodeDictionary(dictBytes)
	if err != nil {
		return nil, nil, err
	}

	count, err := r.ReadVarInt()
	if err != nil {
		return nil, nil, err
	}
	objs := make([]Object, count)
	for i := range objs {
		name, err := r.ReadString()
		if err != nil {
			return nil, nil, err
		}
		typeID, err := r.ReadUint8()
		if err != nil {
			return nil, nil, err
		}
		version, err := r.ReadUint64()
		if err != nil {
			return nil, nil, err
		}
		payloadLen, err := r.ReadVarInt()
		if err != nil {
			return nil, nil, err
		}
		payload := make([]byte, payloadLen)
		if err := r.ReadRaw(payload); err != nil {
			return nil, nil, err
		}
		objs[i] = Object{Name: name, TypeID: typeID, Version: version, Payload: payload}
	}
	return dict, objs, nil
}
