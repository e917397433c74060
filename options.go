// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"

	"github.com/gogpu/cc/gfx"
)

// Option configures a LayerTreeHost or LayerTreeImpl during creation.
//
// Example:
//
//	host := cc.NewLayerTreeHost(
//	    cc.WithViewport(image.Rect(0, 0, 800, 600)),
//	    cc.WithMinimumOcclusionTrackingSize(image.Pt(160, 160)),
//	)
type Option func(*settings)

// settings holds the configuration shared by both layer trees.
type settings struct {
	viewport            image.Rectangle
	deviceTransform     gfx.Transform
	minimumTrackingSize image.Point
	occludingRects      *[]image.Rectangle
	nonOccludingRects   *[]image.Rectangle
	ids                 *IDSequence
	metrics             *Metrics
}

// defaultSettings returns the default tree settings.
func defaultSettings() settings {
	return settings{
		deviceTransform: gfx.Identity(),
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.ids == nil {
		s.ids = &IDSequence{}
	}
	return s
}

// WithViewportSize sets the device viewport to a rectangle of the given size
// anchored at the origin.
func WithViewportSize(size image.Point) Option {
	return func(s *settings) {
		s.viewport = gfx.SizeRect(size)
	}
}

// WithViewport sets the device viewport. The viewport is the screen-space
// clip of the root render surface.
func WithViewport(r image.Rectangle) Option {
	return func(s *settings) {
		s.viewport = r
	}
}

// WithDeviceTransform sets the transform from the root layer's space to
// device pixels, typically a device-scale factor.
func WithDeviceTransform(t gfx.Transform) Option {
	return func(s *settings) {
		s.deviceTransform = t
	}
}

// WithMinimumOcclusionTrackingSize sets the minimum size an occluding
// rectangle must have in at least one dimension to be tracked.
func WithMinimumOcclusionTrackingSize(size image.Point) Option {
	return func(s *settings) {
		s.minimumTrackingSize = size
	}
}

// WithOcclusionDebugRects records, for every occlusion pass, the
// screen-space rectangles that did and did not contribute occlusion.
// Either pointer may be nil.
func WithOcclusionDebugRects(occluding, nonOccluding *[]image.Rectangle) Option {
	return func(s *settings) {
		s.occludingRects = occluding
		s.nonOccludingRects = nonOccluding
	}
}

// WithLayerIDs sets the sequence new layers draw their ids from. Hosts that
// share a sequence never hand out the same id twice.
func WithLayerIDs(ids *IDSequence) Option {
	return func(s *settings) {
		s.ids = ids
	}
}

// WithMetrics reports occlusion passes to m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// trackerOptions returns the tracker configuration derived from s.
func (s *settings) trackerOptions() []TrackerOption {
	opts := []TrackerOption{WithMinimumTrackingSize(s.minimumTrackingSize)}
	if s.occludingRects != nil {
		opts = append(opts, WithOccludingScreenSpaceRects(s.occludingRects))
	}
	if s.nonOccludingRects != nil {
		opts = append(opts, WithNonOccludingScreenSpaceRects(s.nonOccludingRects))
	}
	if s.metrics != nil {
		opts = append(opts, withTrackerMetrics(s.metrics))
	}
	return opts
}

// TrackerOption configures an OcclusionTracker.
type TrackerOption func(*trackerOptions)

type trackerOptions struct {
	minimumTrackingSize image.Point
	occludingRects      *[]image.Rectangle
	nonOccludingRects   *[]image.Rectangle
	metrics             *Metrics
}

// WithMinimumTrackingSize sets the minimum size an occluding rectangle must
// have in at least one dimension to be recorded. Smaller rectangles are
// ignored to keep the occlusion region simple.
func WithMinimumTrackingSize(size image.Point) TrackerOption {
	return func(o *trackerOptions) {
		o.minimumTrackingSize = size
	}
}

// WithOccludingScreenSpaceRects appends to *rects the screen-space rectangle
// of every layer that contributes occlusion.
func WithOccludingScreenSpaceRects(rects *[]image.Rectangle) TrackerOption {
	return func(o *trackerOptions) {
		o.occludingRects = rects
	}
}

// WithNonOccludingScreenSpaceRects appends to *rects the screen-space
// rectangles of drawn content that does not occlude: the translucent parts
// of occluding layers and opaque content whose transform does not keep it
// axis-aligned.
func WithNonOccludingScreenSpaceRects(rects *[]image.Rectangle) TrackerOption {
	return func(o *trackerOptions) {
		o.nonOccludingRects = rects
	}
}

func withTrackerMetrics(m *Metrics) TrackerOption {
	return func(o *trackerOptions) {
		o.metrics = m
	}
}
