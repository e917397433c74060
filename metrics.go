// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the occlusion counters of one or more layer trees.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// OcclusionPasses counts UpdateOcclusion and UpdateLayers walks.
	OcclusionPasses prometheus.Counter
	// LayersVisited counts layers that represented themselves during a walk.
	LayersVisited prometheus.Counter
	// LayersOccluded counts layers whose visible content was entirely occluded.
	LayersOccluded prometheus.Counter
	// RenderSurfaces observes the length of each render-surface layer list.
	RenderSurfaces prometheus.Histogram
}

// NewMetrics creates the occlusion metrics and registers them with reg.
// reg may be nil, in which case the metrics are created unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OcclusionPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cc",
			Name:      "occlusion_passes_total",
			Help:      "Number of occlusion passes over a render-surface layer list.",
		}),
		LayersVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cc",
			Name:      "occlusion_layers_visited_total",
			Help:      "Number of layers visited by occlusion passes.",
		}),
		LayersOccluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cc",
			Name:      "occlusion_layers_occluded_total",
			Help:      "Number of visited layers that were entirely occluded.",
		}),
		RenderSurfaces: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cc",
			Name:      "render_surfaces",
			Help:      "Render surfaces per render-surface layer list.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.OcclusionPasses, m.LayersVisited, m.LayersOccluded, m.RenderSurfaces)
	}
	return m
}

func (m *Metrics) recordPass(surfaces int) {
	if m == nil {
		return
	}
	m.OcclusionPasses.Inc()
	m.RenderSurfaces.Observe(float64(surfaces))
}

func (m *Metrics) recordLayer(occluded bool) {
	if m == nil {
		return
	}
	m.LayersVisited.Inc()
	if occluded {
		m.LayersOccluded.Inc()
	}
}
