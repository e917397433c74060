// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/cc/gfx"
)

// IDSequence hands out layer ids. Ids start at 1. The zero value is ready
// to use and safe for concurrent use.
type IDSequence struct {
	last atomic.Int64
}

// Next returns a new id.
func (s *IDSequence) Next() int {
	return int(s.last.Add(1))
}

// Layer is a layer of the authoring tree, owned by a LayerTreeHost. Its
// opacity and transform may be animating, in which case the values are
// not known on this side and are not used for occlusion.
type Layer struct {
	layerBase[*Layer]

	host         *LayerTreeHost
	needsDisplay gfx.Region
}

// Host returns the host the layer was created by.
func (l *Layer) Host() *LayerTreeHost { return l.host }

// AddChild appends child to the layer's children, removing it from its
// previous parent first.
func (l *Layer) AddChild(child *Layer) { insertChild(l, child, len(l.children)) }

// InsertChild inserts child at index in the layer's children.
func (l *Layer) InsertChild(child *Layer, index int) { insertChild(l, child, index) }

// RemoveFromParent detaches the layer from its parent.
func (l *Layer) RemoveFromParent() { removeFromParent(l) }

// RemoveAllChildren detaches all children of the layer.
func (l *Layer) RemoveAllChildren() { removeAllChildren(l) }

// SetMaskLayer attaches mask to the layer. Pass nil to detach the mask.
func (l *Layer) SetMaskLayer(mask *Layer) { l.mask = attach(l, l.mask, mask) }

// SetReplicaLayer attaches replica to the layer. Pass nil to detach it.
func (l *Layer) SetReplicaLayer(replica *Layer) { l.replica = attach(l, l.replica, replica) }

// SetBounds resizes the layer, which invalidates all of its content.
func (l *Layer) SetBounds(width, height int) {
	if l.props.Bounds == image.Pt(width, height) {
		return
	}
	l.props.Bounds = image.Pt(width, height)
	l.SetNeedsDisplay()
}

// SetTransform sets the transform applied to the layer's content before
// its position.
func (l *Layer) SetTransform(t gfx.Transform) { l.props.Transform = t }

// SetNeedsDisplay marks all of the layer's content as needing to be
// painted.
func (l *Layer) SetNeedsDisplay() {
	l.SetNeedsDisplayRect(gfx.SizeRect(l.props.Bounds))
}

// SetNeedsDisplayRect marks r, in content space, as needing to be painted.
func (l *Layer) SetNeedsDisplayRect(r image.Rectangle) {
	l.needsDisplay.Union(r.Intersect(gfx.SizeRect(l.props.Bounds)))
}

// NeedsDisplayRegion returns the content that still has to be painted.
func (l *Layer) NeedsDisplayRegion() gfx.Region { return l.needsDisplay }

// SetOpacityIsAnimating marks the layer's opacity as driven by an
// animation.
func (l *Layer) SetOpacityIsAnimating(animating bool) { l.opacityAnimating = animating }

// SetTransformIsAnimating marks the layer's transform as driven by an
// animation.
func (l *Layer) SetTransformIsAnimating(animating bool) { l.transformAnimating = animating }

// LayerTreeHost owns the authoring layer tree.
type LayerTreeHost struct {
	settings settings
	root     *Layer

	renderSurfaceLayerList []*Layer
}

// NewLayerTreeHost creates a host with an empty tree.
func NewLayerTreeHost(opts ...Option) *LayerTreeHost {
	return &LayerTreeHost{settings: applyOptions(opts)}
}

// NewLayer creates a detached layer with a fresh id.
func (h *LayerTreeHost) NewLayer() *Layer {
	l := &Layer{host: h}
	l.init(h.settings.ids.Next())
	return l
}

// RootLayer returns the root of the tree, or nil.
func (h *LayerTreeHost) RootLayer() *Layer { return h.root }

// SetRootLayer replaces the root of the tree. root is detached from any
// parent it has.
func (h *LayerTreeHost) SetRootLayer(root *Layer) {
	if root != nil {
		root.RemoveFromParent()
	}
	h.root = root
	h.renderSurfaceLayerList = nil
}

// Viewport returns the screen-space clip of the root surface.
func (h *LayerTreeHost) Viewport() image.Rectangle { return h.settings.viewport }

// SetViewport changes the screen-space clip of the root surface.
func (h *LayerTreeHost) SetViewport(r image.Rectangle) { h.settings.viewport = r }

// SetViewportSize changes the viewport to a rectangle of the given size at
// the origin.
func (h *LayerTreeHost) SetViewportSize(width, height int) {
	h.settings.viewport = image.Rect(0, 0, width, height)
}

// RenderSurfaceLayerList returns the list computed by the last
// UpdateLayers.
func (h *LayerTreeHost) RenderSurfaceLayerList() []*Layer { return h.renderSurfaceLayerList }

// UpdateLayers computes draw properties for the tree and decides what each
// layer has to paint. Walking front to back, each drawing layer gets as
// its PaintRect the bounds of the part of its needs-display region that is
// visible and not occluded; that part is then no longer needed. Content
// that stays occluded remains in the needs-display region. UpdateLayers
// returns the layers with something to paint, in front-to-back order.
func (h *LayerTreeHost) UpdateLayers() []*Layer {
	h.renderSurfaceLayerList = CalculateDrawProperties(h.root, h.settings.viewport, h.settings.deviceTransform)
	list := h.renderSurfaceLayerList
	h.settings.metrics.recordPass(len(list))

	var updated []*Layer
	paint := func(l *Layer, visible image.Rectangle, occlusion Occlusion) {
		dirty := l.needsDisplay
		dirty.Intersect(visible)
		if dirty.IsEmpty() {
			return
		}
		r := occlusion.UnoccludedContentRect(dirty.Bounds())
		l.draw.PaintRect = r
		h.settings.metrics.recordLayer(r.Empty())
		if r.Empty() {
			return
		}
		l.needsDisplay.Subtract(r)
		updated = append(updated, l)
	}

	tracker := NewOcclusionTracker[*Layer](h.settings.viewport, h.settings.trackerOptions()...)
	for it := Begin(list); !it.AtEnd(); it.Next() {
		pos := it.Position()
		tracker.EnterLayer(pos)
		layer := pos.CurrentLayer
		switch {
		case pos.RepresentsItself:
			var occlusion Occlusion
			if !isInsideReplica(pos.TargetRenderSurfaceLayer) {
				occlusion = tracker.CurrentOcclusionForLayer(layer.draw.DrawTransform)
			}
			paint(layer, layer.draw.VisibleContentRect, occlusion)
		case pos.RepresentsContributingRenderSurface:
			for _, mask := range []*Layer{layer.mask, replicaMask(layer)} {
				if mask != nil {
					paint(mask, gfx.SizeRect(mask.props.Bounds), Occlusion{})
				}
			}
		}
		tracker.LeaveLayer(pos)
	}

	Logger().Debug("updated layers",
		"surfaces", len(list),
		"painted", len(updated))
	return updated
}

func replicaMask(l *Layer) *Layer {
	if l.replica == nil {
		return nil
	}
	return l.replica.mask
}
