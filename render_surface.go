// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"

	"github.com/gogpu/cc/gfx"
)

// RenderSurface is an offscreen target that a subset of layers draw into
// before the result is composited into the owner's own target. A surface
// is created by CalculateDrawProperties and lives until the next
// calculation.
type RenderSurface[L comparable] struct {
	// Owner is the layer owning the surface.
	Owner L
	// LayerList holds the layers drawing into the surface in paint order:
	// layers representing themselves and owners of contributing surfaces.
	LayerList []L

	// ContentRect is the area of the surface with content, in surface space.
	ContentRect image.Rectangle
	// ClipRect is in the space of the target surface and applies when
	// IsClipped.
	ClipRect  image.Rectangle
	IsClipped bool

	DrawOpacity            float32
	DrawOpacityIsAnimating bool

	// DrawTransform maps surface space to the target surface's space.
	DrawTransform        gfx.Transform
	ScreenSpaceTransform gfx.Transform
	// ReplicaDrawTransform and ReplicaScreenSpaceTransform place the
	// owner's replica, when there is one.
	ReplicaDrawTransform        gfx.Transform
	ReplicaScreenSpaceTransform gfx.Transform

	TargetSurfaceTransformsAreAnimating bool
	ScreenSpaceTransformsAreAnimating   bool

	// NearestOcclusionImmuneAncestor is the closest ancestor surface whose
	// filters move pixels. Occlusion from outside it does not reach into
	// this surface.
	NearestOcclusionImmuneAncestor *RenderSurface[L]

	// Occlusion is the occlusion that applies to the surface's content when
	// it is drawn into its target.
	Occlusion Occlusion
}

func newRenderSurface[L comparable](owner L) *RenderSurface[L] {
	return &RenderSurface[L]{
		Owner:                       owner,
		DrawOpacity:                 1,
		DrawTransform:               gfx.Identity(),
		ScreenSpaceTransform:        gfx.Identity(),
		ReplicaDrawTransform:        gfx.Identity(),
		ReplicaScreenSpaceTransform: gfx.Identity(),
	}
}

// DrawableContentRect returns the area the surface covers in its target,
// including its replica.
func (s *RenderSurface[L]) DrawableContentRect(hasReplica bool) image.Rectangle {
	r := gfx.MapEnclosingClippedRect(s.DrawTransform, s.ContentRect)
	if hasReplica {
		r = r.Union(gfx.MapEnclosingClippedRect(s.ReplicaDrawTransform, s.ContentRect))
	}
	if s.IsClipped {
		r = r.Intersect(s.ClipRect)
	}
	return r
}
