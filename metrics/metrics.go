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

// Package metrics instruments a running collabd core with Prometheus
// gauges and counters: connected clients, per-plug-in message traffic, and
// the dispatcher's outstanding continuations (§4.6 handlers waiting on more
// bytes). The teacher's own prometheus/ subtree is test-only scaffolding
// with no shipped implementation to adapt, so this wraps
// prometheus/client_golang directly, the way the rest of the ecosystem
// does.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is one server's metric set, registered on its own registry so
// collabd can run with or without an admin API without touching the global
// default registry.
type Metrics struct {
	registry *prometheus.Registry

	connectedClients      prometheus.Gauge
	pendingContinuations  prometheus.Gauge
	messagesReceivedTotal *prometheus.CounterVec
	messagesSentTotal     *prometheus.CounterVec
}

// New returns a Metrics with every collector registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		connectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collab",
			Name:      "connected_clients",
			Help:      "Number of clients currently connected to the reliable channel.",
		}),
		pendingContinuations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collab",
			Name:      "dispatch_pending_continuations",
			Help:      "Number of connections currently parked on a handler continuation awaiting more bytes.",
		}),
		messagesReceivedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collab",
			Name:      "messages_received_total",
			Help:      "Client-to-server messages handled, by plug-in.",
		}, []string{"protocol"}),
		messagesSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collab",
			Name:      "messages_sent_total",
			Help:      "Server-to-client messages sent, by plug-in.",
		}, []string{"protocol"}),
	}

	reg.MustRegister(m.connectedClients, m.pendingContinuations, m.messagesReceivedTotal, m.messagesSentTotal)
	return m
}

// Handler returns the /metrics HTTP handler for this Metrics' registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ClientConnected increments the connected-clients gauge.
func (m *Metrics) ClientConnected() { m.connectedClients.Inc() }

// ClientDisconnected decrements the connected-clients gauge.
func (m *Metrics) ClientDisconnected() { m.connectedClients.Dec() }

// ContinuationParked/ContinuationResumed track handlers currently waiting
// on more bytes (an awaitMore return), per §4.6.
func (m *Metrics) ContinuationParked()  { m.pendingContinuations.Inc() }
func (m *Metrics) ContinuationResumed() { m.pendingContinuations.Dec() }

// MessageReceived counts one inbound message for protocol.
func (m *Metrics) MessageReceived(protocol string) {
	m.messagesReceivedTotal.WithLabelValues(protocol).Inc()
}

// MessageSent counts one outbound message for protocol.
func (m *Metrics) MessageSent(protocol string) {
	m.messagesSentTotal.WithLabelValues(protocol).Inc()
}
