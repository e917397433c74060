// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"

	"github.com/gogpu/cc/gfx"
)

// LayerImpl is a layer of the active tree, owned by a LayerTreeImpl.
// Animations are resolved before a frame is drawn, so its opacity and
// transforms are always known.
type LayerImpl struct {
	layerBase[*LayerImpl]

	tree *LayerTreeImpl
}

// Tree returns the tree the layer belongs to.
func (l *LayerImpl) Tree() *LayerTreeImpl { return l.tree }

// AddChild appends child to the layer's children, removing it from its
// previous parent first.
func (l *LayerImpl) AddChild(child *LayerImpl) { insertChild(l, child, len(l.children)) }

// InsertChild inserts child at index in the layer's children.
func (l *LayerImpl) InsertChild(child *LayerImpl, index int) { insertChild(l, child, index) }

// RemoveFromParent detaches the layer from its parent.
func (l *LayerImpl) RemoveFromParent() { removeFromParent(l) }

// RemoveAllChildren detaches all children of the layer.
func (l *LayerImpl) RemoveAllChildren() { removeAllChildren(l) }

// SetMaskLayer attaches mask to the layer. Pass nil to detach the mask.
func (l *LayerImpl) SetMaskLayer(mask *LayerImpl) { l.mask = attach(l, l.mask, mask) }

// SetReplicaLayer attaches replica to the layer. Pass nil to detach it.
func (l *LayerImpl) SetReplicaLayer(replica *LayerImpl) { l.replica = attach(l, l.replica, replica) }

// SetBounds resizes the layer.
func (l *LayerImpl) SetBounds(width, height int) { l.props.Bounds = image.Pt(width, height) }

// SetTransform sets the transform applied to the layer's content before
// its position.
func (l *LayerImpl) SetTransform(t gfx.Transform) { l.props.Transform = t }

// LayerTreeImpl owns the active layer tree and the result of the last draw
// property update.
type LayerTreeImpl struct {
	settings settings
	root     *LayerImpl
	// layersByID holds every layer created by the tree and not yet
	// removed, attached or not.
	layersByID swiss.Map[int, *LayerImpl]

	renderSurfaceLayerList      []*LayerImpl
	unoccludedScreenSpaceRegion gfx.Region
}

// NewLayerTreeImpl creates an empty active tree.
func NewLayerTreeImpl(opts ...Option) *LayerTreeImpl {
	t := &LayerTreeImpl{settings: applyOptions(opts)}
	t.layersByID.Init(16)
	return t
}

// NewLayerImpl creates a detached layer with the given id. The id must not
// be in use in the tree.
func (t *LayerTreeImpl) NewLayerImpl(id int) *LayerImpl {
	if id <= 0 {
		panic(errors.AssertionFailedf("invalid layer id %d", id))
	}
	if _, ok := t.layersByID.Get(id); ok {
		panic(errors.AssertionFailedf("layer id %d already in use", id))
	}
	l := &LayerImpl{tree: t}
	l.init(id)
	l.animationsResolved = true
	t.layersByID.Put(id, l)
	return l
}

// RemoveLayer detaches l and forgets its id.
func (t *LayerTreeImpl) RemoveLayer(l *LayerImpl) {
	l.RemoveFromParent()
	if t.root == l {
		t.root = nil
	}
	t.layersByID.Delete(l.id)
}

// LayerByID returns the layer with the given id, or nil.
func (t *LayerTreeImpl) LayerByID(id int) *LayerImpl {
	l, _ := t.layersByID.Get(id)
	return l
}

// NumLayers returns the number of layers known to the tree.
func (t *LayerTreeImpl) NumLayers() int { return t.layersByID.Len() }

// RootLayer returns the root of the tree, or nil.
func (t *LayerTreeImpl) RootLayer() *LayerImpl { return t.root }

// SetRootLayer replaces the root of the tree.
func (t *LayerTreeImpl) SetRootLayer(root *LayerImpl) {
	if root != nil {
		root.RemoveFromParent()
	}
	t.root = root
	t.renderSurfaceLayerList = nil
	t.unoccludedScreenSpaceRegion = gfx.Region{}
}

// Viewport returns the screen-space clip of the root surface.
func (t *LayerTreeImpl) Viewport() image.Rectangle { return t.settings.viewport }

// SetViewport changes the screen-space clip of the root surface.
func (t *LayerTreeImpl) SetViewport(r image.Rectangle) { t.settings.viewport = r }

// UpdateDrawProperties computes the draw properties of the tree and the
// occlusion of every layer and surface in it.
func (t *LayerTreeImpl) UpdateDrawProperties() {
	t.renderSurfaceLayerList = CalculateDrawProperties(t.root, t.settings.viewport, t.settings.deviceTransform)
	if len(t.renderSurfaceLayerList) == 0 {
		t.unoccludedScreenSpaceRegion = gfx.NewRegion(t.settings.viewport)
		return
	}
	rootSurface := t.renderSurfaceLayerList[0].RenderSurface()
	t.unoccludedScreenSpaceRegion = UpdateOcclusion(t.renderSurfaceLayerList, rootSurface.ContentRect, t.settings.trackerOptions()...)
}

// RenderSurfaceLayerList returns the list computed by the last
// UpdateDrawProperties.
func (t *LayerTreeImpl) RenderSurfaceLayerList() []*LayerImpl { return t.renderSurfaceLayerList }

// UnoccludedScreenSpaceRegion returns the part of the viewport that no
// opaque content covered in the last UpdateDrawProperties.
func (t *LayerTreeImpl) UnoccludedScreenSpaceRegion() gfx.Region {
	return t.unoccludedScreenSpaceRegion
}
