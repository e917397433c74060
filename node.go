// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// CompositableNode is the set of operations the iterator, the occlusion
// tracker and the draw-property calculation need from a layer. It is
// implemented by *Layer and *LayerImpl only; the unexported method keeps
// other types out.
type CompositableNode[L comparable] interface {
	comparable
	ID() int
	Parent() L
	Children() []L
	MaskLayer() L
	ReplicaLayer() L
	Properties() *LayerProperties
	DrawProperties() *DrawProperties[L]
	RenderSurface() *RenderSurface[L]

	base() *layerBase[L]
}

// layerBase holds the state shared by both layer vocabularies. It is
// embedded by Layer and LayerImpl.
type layerBase[L comparable] struct {
	id       int
	parent   L
	children []L
	mask     L
	replica  L

	props   LayerProperties
	draw    DrawProperties[L]
	surface *RenderSurface[L]

	// animationsResolved is set on the active tree, where opacity and
	// transforms are always known.
	animationsResolved bool
	opacityAnimating   bool
	transformAnimating bool
	// drawnDescendants counts the descendants that draw content; set by
	// CalculateDrawProperties.
	drawnDescendants int
	// copyRequestInSubtree is set by CalculateDrawProperties.
	copyRequestInSubtree bool
}

func (b *layerBase[L]) init(id int) {
	b.id = id
	b.props = DefaultLayerProperties()
	b.draw = DrawProperties[L]{DrawOpacity: 1}
}

func (b *layerBase[L]) base() *layerBase[L] { return b }

// ID returns the layer's id.
func (b *layerBase[L]) ID() int { return b.id }

// Parent returns the layer's parent, or nil for a root. Masks and replicas
// report the layer they are attached to.
func (b *layerBase[L]) Parent() L { return b.parent }

// Children returns the layer's children in paint order. The slice must not
// be modified.
func (b *layerBase[L]) Children() []L { return b.children }

// MaskLayer returns the layer's mask, or nil.
func (b *layerBase[L]) MaskLayer() L { return b.mask }

// ReplicaLayer returns the layer's replica, or nil.
func (b *layerBase[L]) ReplicaLayer() L { return b.replica }

// Properties returns the layer's authored properties for reading and
// writing.
func (b *layerBase[L]) Properties() *LayerProperties { return &b.props }

// DrawProperties returns the layer's computed draw properties.
func (b *layerBase[L]) DrawProperties() *DrawProperties[L] { return &b.draw }

// RenderSurface returns the surface the layer owns, or nil.
func (b *layerBase[L]) RenderSurface() *RenderSurface[L] { return b.surface }

// insertChild inserts child into parent's children at index, removing it
// from its previous parent first. index is clamped to the number of
// children.
func insertChild[L CompositableNode[L]](parent, child L, index int) {
	if isNil(child) {
		panic(errors.AssertionFailedf("nil child"))
	}
	if child == parent {
		panic(errors.AssertionFailedf("layer %d cannot be its own child", parent.ID()))
	}
	removeFromParent(child)
	pb := parent.base()
	index = min(max(index, 0), len(pb.children))
	pb.children = slices.Insert(pb.children, index, child)
	child.base().parent = parent
}

// removeFromParent detaches l from its parent. A mask or replica is
// detached from the layer it was attached to.
func removeFromParent[L CompositableNode[L]](l L) {
	parent := l.Parent()
	if isNil(parent) {
		return
	}
	var zero L
	pb := parent.base()
	switch {
	case pb.mask == l:
		pb.mask = zero
	case pb.replica == l:
		pb.replica = zero
	default:
		pb.children = slices.DeleteFunc(pb.children, func(c L) bool { return c == l })
	}
	l.base().parent = zero
}

func removeAllChildren[L CompositableNode[L]](l L) {
	var zero L
	b := l.base()
	for _, c := range b.children {
		c.base().parent = zero
	}
	b.children = nil
}

// attach makes l an attachment (mask or replica) of owner in place of old
// and returns the new attachment.
func attach[L CompositableNode[L]](owner, old, l L) L {
	var zero L
	if old == l {
		return l
	}
	if !isNil(old) && old.Parent() == owner {
		old.base().parent = zero
	}
	if isNil(l) {
		return zero
	}
	removeFromParent(l)
	l.base().parent = owner
	return l
}

// SetPosition sets the layer's offset in its parent.
func (b *layerBase[L]) SetPosition(x, y int) { b.props.Position.X, b.props.Position.Y = x, y }

// SetDrawsContent sets whether the layer has content of its own.
func (b *layerBase[L]) SetDrawsContent(draws bool) { b.props.DrawsContent = draws }

// SetContentsOpaque sets whether every pixel of the content is opaque.
func (b *layerBase[L]) SetContentsOpaque(opaque bool) { b.props.ContentsOpaque = opaque }

// SetOpacity sets the layer's opacity.
func (b *layerBase[L]) SetOpacity(opacity float32) { b.props.Opacity = opacity }

// SetForceRenderSurface makes the layer own a render surface.
func (b *layerBase[L]) SetForceRenderSurface(force bool) { b.props.ForceRenderSurface = force }

// isNil reports whether l is the zero layer.
func isNil[L comparable](l L) bool {
	var zero L
	return l == zero
}

// renderTargetOf returns the layer owning the surface l draws into.
func renderTargetOf[L CompositableNode[L]](l L) L {
	return l.DrawProperties().RenderTarget
}

// hasReplica reports whether l has a replica.
func hasReplica[L CompositableNode[L]](l L) bool {
	return !isNil(l.ReplicaLayer())
}

// replicaHasMask reports whether l's replica has its own mask.
func replicaHasMask[L CompositableNode[L]](l L) bool {
	r := l.ReplicaLayer()
	return !isNil(r) && !isNil(r.MaskLayer())
}

// layerIsHidden reports whether l or one of its ancestors hides its subtree.
func layerIsHidden[L CompositableNode[L]](l L) bool {
	for ; !isNil(l); l = l.Parent() {
		if l.Properties().HideLayerAndSubtree {
			return true
		}
	}
	return false
}

// isRoot reports whether l has no parent.
func isRoot[L CompositableNode[L]](l L) bool {
	return isNil(l.Parent())
}
