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

package plugin

import "github.com/sabouaram/collab/buffer"

// ClientSink is the per-client send surface server/ exposes to plug-ins: one
// reliable (TCP) channel, and one best-effort (UDP) channel that only
// exists once that client's §4.5 step 5 UDP handshake has completed.
type ClientSink interface {
	SendTCP(id ClientID, msg *buffer.MessageBuffer) error
	SendUDP(id ClientID, msg *buffer.MessageBuffer) error
	HasUDP(id ClientID) bool
}

// SendUDPPreferred implements §4.7's "UDP-preferred send": it sends over
// the client's best-effort channel if that client completed the UDP
// handshake, falling back to the reliable channel otherwise (real-time
// audio, which cannot wait for TCP's retransmission but must still reach
// clients that never got a working UDP path).
func SendUDPPreferred(sink ClientSink, id ClientID, msg *buffer.MessageBuffer) error {
	if sink.HasUDP(id) {
		return sink.SendUDP(id, msg)
	}
	return sink.SendTCP(id, msg)
}
