// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"iter"
	"slices"

	"github.com/cockroachdb/errors"
)

const (
	// invalidTargetIndex marks an iterator that has reached the end.
	invalidTargetIndex = -1
	// layerIndexRepresentingTargetSurface is the layer index at which the
	// iterator represents the target surface itself.
	layerIndexRepresentingTargetSurface = -1
)

// LayerIteratorPosition is the state of a LayerIterator at one step. At
// most one of the three role flags is set; none is set at the end.
type LayerIteratorPosition[L comparable] struct {
	TargetRenderSurfaceLayer L
	CurrentLayer             L

	RepresentsTargetRenderSurface       bool
	RepresentsContributingRenderSurface bool
	RepresentsItself                    bool
}

// iteratorFrame records where the walk of an enclosing surface resumes.
type iteratorFrame struct {
	targetIndex int
	layerIndex  int
}

// LayerIterator walks a render-surface layer list front to back. Within a
// surface, layers are visited from the last in paint order to the first.
// When the walk reaches the owner of a contributing surface it first
// visits all of that surface's content, then the surface itself, and then
// the owner as a contribution to the enclosing surface.
//
// The list must hold the owners of all surfaces that are reachable, with
// the root target at index 0. The iterator does not modify the list or the
// surfaces; two iterators over the same list are independent.
type LayerIterator[L CompositableNode[L]] struct {
	list []L
	// index maps an owner to its position in list.
	index map[L]int

	targetIndex int
	layerIndex  int
	history     []iteratorFrame
}

// Begin returns an iterator positioned at the first step of the walk over
// list. Every entry of list must own a render surface.
func Begin[L CompositableNode[L]](list []L) *LayerIterator[L] {
	it := newLayerIterator(list)
	if len(list) == 0 {
		it.moveToEnd()
		return it
	}
	it.moveToBegin()
	return it
}

// End returns an iterator in the end state for list.
func End[L CompositableNode[L]](list []L) *LayerIterator[L] {
	it := newLayerIterator(list)
	it.moveToEnd()
	return it
}

func newLayerIterator[L CompositableNode[L]](list []L) *LayerIterator[L] {
	index := make(map[L]int, len(list))
	for i, l := range list {
		if isNil(l) || l.RenderSurface() == nil {
			panic(errors.AssertionFailedf("render surface layer list entry %d has no render surface", i))
		}
		index[l] = i
	}
	return &LayerIterator[L]{list: list, index: index}
}

func (it *LayerIterator[L]) moveToBegin() {
	it.targetIndex = 0
	it.layerIndex = len(it.targetLayerList()) - 1
	it.history = it.history[:0]
	it.moveToHighestInSubtree()
}

func (it *LayerIterator[L]) moveToEnd() {
	it.targetIndex = invalidTargetIndex
	it.layerIndex = 0
	it.history = it.history[:0]
}

// AtEnd reports whether the walk is over.
func (it *LayerIterator[L]) AtEnd() bool {
	return it.targetIndex == invalidTargetIndex
}

// Next advances the iterator by one step. Advancing past the end panics.
func (it *LayerIterator[L]) Next() {
	if it.AtEnd() {
		panic(errors.AssertionFailedf("layer iterator advanced past the end"))
	}
	if !it.RepresentsTargetRenderSurface() {
		// Moving down eventually reaches the target surface itself.
		it.layerIndex--
		it.moveToHighestInSubtree()
		return
	}
	if len(it.history) == 0 {
		it.moveToEnd()
		return
	}
	frame := it.history[len(it.history)-1]
	it.history = it.history[:len(it.history)-1]
	it.targetIndex = frame.targetIndex
	it.layerIndex = frame.layerIndex
}

// moveToHighestInSubtree dives into contributing surfaces until the
// current layer represents itself or its target surface.
func (it *LayerIterator[L]) moveToHighestInSubtree() {
	for it.RepresentsContributingRenderSurface() {
		owner := it.Current()
		next, ok := it.index[owner]
		if !ok {
			panic(errors.AssertionFailedf("layer %d contributes a surface missing from the render surface layer list", owner.ID()))
		}
		it.history = append(it.history, iteratorFrame{targetIndex: it.targetIndex, layerIndex: it.layerIndex})
		it.targetIndex = next
		it.layerIndex = len(it.targetLayerList()) - 1
	}
}

// Equal reports whether it and other are at the same step.
func (it *LayerIterator[L]) Equal(other *LayerIterator[L]) bool {
	return it.targetIndex == other.targetIndex && it.layerIndex == other.layerIndex
}

// Current returns the layer at the current step: the owner of the target
// surface when representing it, the indexed layer of the target surface's
// list otherwise.
func (it *LayerIterator[L]) Current() L {
	if it.AtEnd() {
		var zero L
		return zero
	}
	if it.layerIndex == layerIndexRepresentingTargetSurface {
		return it.TargetRenderSurfaceLayer()
	}
	return it.targetLayerList()[it.layerIndex]
}

// TargetRenderSurfaceLayer returns the owner of the current target surface.
func (it *LayerIterator[L]) TargetRenderSurfaceLayer() L {
	if it.AtEnd() {
		var zero L
		return zero
	}
	return it.list[it.targetIndex]
}

// RepresentsTargetRenderSurface reports whether the current step is the
// target surface itself.
func (it *LayerIterator[L]) RepresentsTargetRenderSurface() bool {
	return !it.AtEnd() && it.layerIndex == layerIndexRepresentingTargetSurface
}

// RepresentsContributingRenderSurface reports whether the current step is a
// surface being composited into the target.
func (it *LayerIterator[L]) RepresentsContributingRenderSurface() bool {
	if it.AtEnd() || it.layerIndex == layerIndexRepresentingTargetSurface {
		return false
	}
	current := it.Current()
	return current.RenderSurface() != nil && current != it.TargetRenderSurfaceLayer()
}

// RepresentsItself reports whether the current step is a layer drawing
// its own content into the target.
func (it *LayerIterator[L]) RepresentsItself() bool {
	return !it.AtEnd() && !it.RepresentsTargetRenderSurface() && !it.RepresentsContributingRenderSurface()
}

// Position returns a snapshot of the current step.
func (it *LayerIterator[L]) Position() LayerIteratorPosition[L] {
	return LayerIteratorPosition[L]{
		TargetRenderSurfaceLayer:            it.TargetRenderSurfaceLayer(),
		CurrentLayer:                        it.Current(),
		RepresentsTargetRenderSurface:       it.RepresentsTargetRenderSurface(),
		RepresentsContributingRenderSurface: it.RepresentsContributingRenderSurface(),
		RepresentsItself:                    it.RepresentsItself(),
	}
}

func (it *LayerIterator[L]) targetLayerList() []L {
	return it.list[it.targetIndex].RenderSurface().LayerList
}

// FrontToBack returns the steps of a front-to-back walk over list.
func FrontToBack[L CompositableNode[L]](list []L) iter.Seq[LayerIteratorPosition[L]] {
	return func(yield func(LayerIteratorPosition[L]) bool) {
		for it := Begin(list); !it.AtEnd(); it.Next() {
			if !yield(it.Position()) {
				return
			}
		}
	}
}

// BackToFront returns the steps of FrontToBack in reverse order.
func BackToFront[L CompositableNode[L]](list []L) iter.Seq[LayerIteratorPosition[L]] {
	return func(yield func(LayerIteratorPosition[L]) bool) {
		steps := slices.Collect(FrontToBack(list))
		for _, pos := range slices.Backward(steps) {
			if !yield(pos) {
				return
			}
		}
	}
}
