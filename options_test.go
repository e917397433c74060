// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"
	"testing"

	"github.com/gogpu/cc/gfx"
)

// TestDefaultSettings tests the settings used when no options are given.
func TestDefaultSettings(t *testing.T) {
	s := applyOptions(nil)
	if s.deviceTransform != gfx.Identity() {
		t.Errorf("deviceTransform = %v, want identity", s.deviceTransform)
	}
	if !s.viewport.Empty() {
		t.Errorf("viewport = %v, want empty", s.viewport)
	}
	if s.ids == nil {
		t.Fatal("ids is nil, expected a fresh sequence")
	}
	if s.metrics != nil {
		t.Error("metrics set without WithMetrics")
	}
}

func TestWithViewport(t *testing.T) {
	s := applyOptions([]Option{WithViewportSize(image.Pt(800, 600))})
	if want := image.Rect(0, 0, 800, 600); s.viewport != want {
		t.Errorf("viewport = %v, want %v", s.viewport, want)
	}

	// Later options win.
	s = applyOptions([]Option{
		WithViewportSize(image.Pt(800, 600)),
		WithViewport(image.Rect(10, 10, 20, 20)),
	})
	if want := image.Rect(10, 10, 20, 20); s.viewport != want {
		t.Errorf("viewport = %v, want %v", s.viewport, want)
	}
}

func TestTrackerOptionsFromSettings(t *testing.T) {
	var occluding, nonOccluding []image.Rectangle
	m := NewMetrics(nil)
	s := applyOptions([]Option{
		WithMinimumOcclusionTrackingSize(image.Pt(16, 16)),
		WithOcclusionDebugRects(&occluding, &nonOccluding),
		WithMetrics(m),
	})

	var got trackerOptions
	for _, opt := range s.trackerOptions() {
		opt(&got)
	}
	if got.minimumTrackingSize != image.Pt(16, 16) {
		t.Errorf("minimumTrackingSize = %v, want 16x16", got.minimumTrackingSize)
	}
	if got.occludingRects != &occluding || got.nonOccludingRects != &nonOccluding {
		t.Error("debug rect sinks not passed to the tracker")
	}
	if got.metrics != m {
		t.Error("metrics not passed to the tracker")
	}
}

func TestWithOcclusionDebugRectsNil(t *testing.T) {
	s := applyOptions([]Option{WithOcclusionDebugRects(nil, nil)})
	if n := len(s.trackerOptions()); n != 1 {
		t.Errorf("len(trackerOptions()) = %d, want 1", n)
	}
}
