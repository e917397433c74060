// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds serializer counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Updates         prometheus.Counter
	NodesSerialized prometheus.Counter
	// Resets counts updates that had to clear the client tree or a subtree
	// of it, and sanity failures.
	Resets     prometheus.Counter
	Reparents  prometheus.Counter
	ClientSize prometheus.Gauge
}

// NewMetrics creates the serializer metrics and registers them with reg,
// which may be nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ax",
			Subsystem: "serializer",
			Name:      "updates_total",
			Help:      "Number of SerializeChanges calls.",
		}),
		NodesSerialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ax",
			Subsystem: "serializer",
			Name:      "nodes_serialized_total",
			Help:      "Number of nodes written to tree updates.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ax",
			Subsystem: "serializer",
			Name:      "resets_total",
			Help:      "Number of updates that cleared client state.",
		}),
		Reparents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ax",
			Subsystem: "serializer",
			Name:      "reparents_total",
			Help:      "Number of updates in which a known node changed parent.",
		}),
		ClientSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ax",
			Subsystem: "serializer",
			Name:      "client_nodes",
			Help:      "Number of nodes the client is known to hold.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Updates, m.NodesSerialized, m.Resets, m.Reparents, m.ClientSize)
	}
	return m
}

func (m *Metrics) recordUpdate(nodes, clientSize int) {
	if m == nil {
		return
	}
	m.Updates.Inc()
	m.NodesSerialized.Add(float64(nodes))
	m.ClientSize.Set(float64(clientSize))
}

func (m *Metrics) recordReset() {
	if m == nil {
		return
	}
	m.Resets.Inc()
}

func (m *Metrics) recordReparent() {
	if m == nil {
		return
	}
	m.Reparents.Inc()
}
