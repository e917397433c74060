// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

// SerializerOption configures a TreeSerializer.
type SerializerOption func(*serializerOptions)

type serializerOptions struct {
	metrics *Metrics
}

// WithMetrics reports serializer activity to m.
func WithMetrics(m *Metrics) SerializerOption {
	return func(o *serializerOptions) {
		o.metrics = m
	}
}
