// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"

	"github.com/gogpu/cc/gfx"
)

// LayerProperties are the authored properties of a layer. They are set by
// the embedder and copied from the authoring tree to the active tree on
// commit.
type LayerProperties struct {
	// Position is the offset of the layer's origin in its parent's space.
	Position image.Point
	// Transform is applied to the layer's content before Position.
	Transform gfx.Transform
	// Bounds is the size of the layer's content.
	Bounds image.Point

	DrawsContent   bool
	ContentsOpaque bool
	// OpaqueContentsRect is an opaque part of a layer that is not wholly
	// opaque, in content space.
	OpaqueContentsRect image.Rectangle

	Opacity   float32
	BlendMode BlendMode

	MasksToBounds      bool
	ForceRenderSurface bool

	// Filters apply to the layer's own rendered subtree.
	Filters FilterOperations
	// BackgroundFilters apply to what is behind the layer.
	BackgroundFilters FilterOperations

	HideLayerAndSubtree bool
	HasCopyRequest      bool

	// SortingContextID is non-zero for layers in a 3D rendering context
	// whose layers are not sorted.
	SortingContextID int
}

// DefaultLayerProperties returns the properties of a new layer: fully
// opaque, identity transform, empty bounds.
func DefaultLayerProperties() LayerProperties {
	return LayerProperties{
		Transform: gfx.Identity(),
		Opacity:   1,
	}
}

// localTransform maps the layer's content space into its parent's space.
func (p *LayerProperties) localTransform() gfx.Transform {
	return gfx.Translate(float64(p.Position.X), float64(p.Position.Y)).Multiply(p.Transform)
}

// DrawProperties are computed by CalculateDrawProperties and UpdateOcclusion
// each frame. They are only valid for layers reachable from the last
// computed render-surface layer list.
type DrawProperties[L comparable] struct {
	// DrawTransform maps content space to the space of RenderTarget's
	// surface.
	DrawTransform gfx.Transform
	// ScreenSpaceTransform maps content space to screen space.
	ScreenSpaceTransform gfx.Transform

	// DrawOpacity is the opacity accumulated up to the render target.
	DrawOpacity float32

	DrawOpacityIsAnimating          bool
	DrawTransformIsAnimating        bool
	ScreenSpaceTransformIsAnimating bool

	// RenderTarget is the layer owning the surface this layer draws into.
	RenderTarget L

	// ClipRect is in target surface space and applies when IsClipped.
	ClipRect image.Rectangle
	IsClipped bool

	// VisibleContentRect is the part of the content that can be seen, in
	// content space.
	VisibleContentRect image.Rectangle
	// DrawableContentRect is the clipped content in target surface space.
	DrawableContentRect image.Rectangle

	// Occlusion is the occlusion that applies to this layer's content.
	Occlusion Occlusion

	// PaintRect is the part of the needs-display region that was painted by
	// the last LayerTreeHost.UpdateLayers. Only set on the authoring tree.
	PaintRect image.Rectangle
}

// visibleContentOpaqueRegion is the opaque part of the visible content.
func visibleContentOpaqueRegion[L CompositableNode[L]](l L) gfx.Region {
	props, draw := l.Properties(), l.DrawProperties()
	if props.ContentsOpaque {
		return gfx.NewRegion(draw.VisibleContentRect)
	}
	return gfx.NewRegion(props.OpaqueContentsRect.Intersect(draw.VisibleContentRect))
}
