// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"

	"github.com/gogpu/cc/gfx"
	"github.com/gogpu/cc/internal/invariants"
)

// OcclusionTracker accumulates the opaque content seen during a
// front-to-back walk. Call EnterLayer and LeaveLayer around every step of a
// LayerIterator over the same list; in between, the tracker answers whether
// content at the current step is hidden by what was already visited.
//
// The tracker keeps one entry per render target being walked. Each entry
// holds the occlusion from layers drawn into the target and the occlusion
// inherited from enclosing targets, both in the target's space.
type OcclusionTracker[L CompositableNode[L]] struct {
	screenSpaceClipRect image.Rectangle
	opts                trackerOptions
	stack               []trackerEntry[L]
}

type trackerEntry[L comparable] struct {
	target  L
	outside gfx.Region
	inside  gfx.Region
}

// NewOcclusionTracker returns a tracker that reasons only about content
// inside screenSpaceClipRect.
func NewOcclusionTracker[L CompositableNode[L]](screenSpaceClipRect image.Rectangle, opts ...TrackerOption) *OcclusionTracker[L] {
	t := &OcclusionTracker[L]{screenSpaceClipRect: screenSpaceClipRect}
	for _, opt := range opts {
		opt(&t.opts)
	}
	return t
}

// EnterLayer prepares the tracker for the step at pos.
func (t *OcclusionTracker[L]) EnterLayer(pos LayerIteratorPosition[L]) {
	renderTarget := pos.TargetRenderSurfaceLayer
	if pos.RepresentsItself {
		t.enterRenderTarget(renderTarget)
	} else if pos.RepresentsTargetRenderSurface {
		t.finishedRenderTarget(renderTarget)
	}
}

// LeaveLayer records the occlusion produced by the step at pos.
func (t *OcclusionTracker[L]) LeaveLayer(pos LayerIteratorPosition[L]) {
	renderTarget := pos.TargetRenderSurfaceLayer
	if pos.RepresentsItself {
		t.markOccludedBehindLayer(pos.CurrentLayer)
	} else if pos.RepresentsContributingRenderSurface {
		// The surface's own occlusion must not hide the surface, so this
		// happens on leave rather than on enter.
		t.leaveToRenderTarget(renderTarget)
	}
}

func (t *OcclusionTracker[L]) top() *trackerEntry[L] {
	return &t.stack[len(t.stack)-1]
}

func (t *OcclusionTracker[L]) enterRenderTarget(newTarget L) {
	if len(t.stack) > 0 && t.top().target == newTarget {
		return
	}

	var oldTarget L
	var oldImmuneAncestor *RenderSurface[L]
	if len(t.stack) > 0 {
		oldTarget = t.top().target
		oldImmuneAncestor = oldTarget.RenderSurface().NearestOcclusionImmuneAncestor
	}
	newSurface := newTarget.RenderSurface()
	newImmuneAncestor := newSurface.NearestOcclusionImmuneAncestor

	t.stack = append(t.stack, trackerEntry[L]{target: newTarget})

	// Occlusion from inside the old target is outside occlusion for the new
	// one. Nothing is carried into a subtree whose pixels move or into the
	// root target.
	enteringUnoccludedSubtree := newImmuneAncestor != nil && newImmuneAncestor != oldImmuneAncestor
	var inverseScreenSpace gfx.Transform
	haveTransformFromScreen := false
	if surfaceTransformsToScreenKnown(newTarget) {
		inverseScreenSpace, haveTransformFromScreen = newSurface.ScreenSpaceTransform.Invert()
	}
	enteringRootTarget := isRoot(newTarget)

	copyOutsideOcclusionForward := len(t.stack) > 1 &&
		!enteringUnoccludedSubtree &&
		haveTransformFromScreen &&
		!enteringRootTarget
	if !copyOutsideOcclusionForward {
		return
	}

	last := len(t.stack) - 1
	oldToNew := inverseScreenSpace.Multiply(oldTarget.RenderSurface().ScreenSpaceTransform)
	outside := transformSurfaceOpaqueRegion(t.stack[last-1].outside, false, image.Rectangle{}, oldToNew)
	outside.UnionRegion(transformSurfaceOpaqueRegion(t.stack[last-1].inside, false, image.Rectangle{}, oldToNew))
	t.stack[last].outside = outside
}

func (t *OcclusionTracker[L]) finishedRenderTarget(finishedTarget L) {
	// The target may have no layers drawing into it directly.
	t.enterRenderTarget(finishedTarget)

	surface := finishedTarget.RenderSurface()
	props := finishedTarget.Properties()
	targetIsOnlyForCopyRequest := props.HasCopyRequest && layerIsHidden(finishedTarget)

	// Occlusion that cannot be applied outside the surface's subtree is
	// dropped here.
	if !isNil(finishedTarget.MaskLayer()) ||
		!surfaceOpacityKnown(finishedTarget) ||
		surface.DrawOpacity < 1 ||
		!props.BlendMode.IsDefault() ||
		targetIsOnlyForCopyRequest ||
		props.Filters.HasFilterThatAffectsOpacity() ||
		!surfaceTransformsToTargetKnown(finishedTarget) {
		top := t.top()
		top.outside.Clear()
		top.inside.Clear()
	}
}

// reduceOcclusionBelowSurface shrinks occlusion near a surface with a
// background filter that moves pixels, since the filter reads pixels from
// under the occlusion around the surface.
func reduceOcclusionBelowSurface[L CompositableNode[L]](contributingLayer L, surfaceRect image.Rectangle, surfaceTransform gfx.Transform, occlusion *gfx.Region) {
	if surfaceRect.Empty() {
		return
	}

	surface := contributingLayer.RenderSurface()
	affected := gfx.MapEnclosingClippedRect(surfaceTransform, surfaceRect)
	if surface.IsClipped {
		affected = affected.Intersect(surface.ClipRect)
	}
	if affected.Empty() {
		return
	}

	outsetTop, outsetRight, outsetBottom, outsetLeft := contributingLayer.Properties().BackgroundFilters.Outsets()

	// Expand the area so that occlusion overlapping the filter's reach is
	// shrunk.
	affected = gfx.Inset(affected, -outsetLeft, -outsetTop, -outsetRight, -outsetBottom)

	affectedOcclusion := *occlusion
	affectedOcclusion.Intersect(affected)

	occlusion.Subtract(affected)
	for _, r := range affectedOcclusion.Rects() {
		// The filter's left reach pulls pixels from the right of r into it,
		// so the right edge shrinks by the left outset, and so on.
		shrinkLeft, shrinkTop, shrinkRight, shrinkBottom := outsetRight, outsetBottom, outsetLeft, outsetTop
		if r.Min.X == affected.Min.X {
			shrinkLeft = 0
		}
		if r.Min.Y == affected.Min.Y {
			shrinkTop = 0
		}
		if r.Max.X == affected.Max.X {
			shrinkRight = 0
		}
		if r.Max.Y == affected.Max.Y {
			shrinkBottom = 0
		}
		occlusion.Union(gfx.Inset(r, shrinkLeft, shrinkTop, shrinkRight, shrinkBottom))
	}
}

func (t *OcclusionTracker[L]) leaveToRenderTarget(newTarget L) {
	last := len(t.stack) - 1
	surfaceWillBeAtTopAfterPop := len(t.stack) > 1 && t.stack[last-1].target == newTarget

	// The occlusion of the finished target is merged into its parent
	// target, transformed into the parent's space.
	oldTarget := t.stack[last].target
	oldSurface := oldTarget.RenderSurface()

	insideInNewTarget := transformSurfaceOpaqueRegion(t.stack[last].inside, oldSurface.IsClipped, oldSurface.ClipRect, oldSurface.DrawTransform)
	if hasReplica(oldTarget) && !replicaHasMask(oldTarget) {
		insideInNewTarget.UnionRegion(transformSurfaceOpaqueRegion(t.stack[last].inside, oldSurface.IsClipped, oldSurface.ClipRect, oldSurface.ReplicaDrawTransform))
	}
	outsideInNewTarget := transformSurfaceOpaqueRegion(t.stack[last].outside, false, image.Rectangle{}, oldSurface.DrawTransform)

	movesPixels := oldTarget.Properties().BackgroundFilters.HasFilterThatMovesPixels()
	var unoccludedSurfaceRect, unoccludedReplicaRect image.Rectangle
	if movesPixels {
		unoccludedSurfaceRect = t.UnoccludedContributingSurfaceContentRect(oldSurface.ContentRect, oldSurface.DrawTransform)
		if hasReplica(oldTarget) {
			unoccludedReplicaRect = t.UnoccludedContributingSurfaceContentRect(oldSurface.ContentRect, oldSurface.ReplicaDrawTransform)
		}
	}

	if surfaceWillBeAtTopAfterPop {
		below := &t.stack[last-1]
		below.inside.UnionRegion(insideInNewTarget)
		if !isRoot(newTarget) {
			below.outside.UnionRegion(outsideInNewTarget)
		}
		t.stack = t.stack[:last]
	} else {
		// The new target was never entered: replace the finished one.
		top := t.top()
		top.target = newTarget
		top.inside = insideInNewTarget
		if !isRoot(newTarget) {
			top.outside = outsideInNewTarget
		} else {
			top.outside.Clear()
		}
	}

	if !movesPixels {
		return
	}
	top := t.top()
	reduceOcclusionBelowSurface(oldTarget, unoccludedSurfaceRect, oldSurface.DrawTransform, &top.inside)
	reduceOcclusionBelowSurface(oldTarget, unoccludedSurfaceRect, oldSurface.DrawTransform, &top.outside)
	if !hasReplica(oldTarget) {
		return
	}
	reduceOcclusionBelowSurface(oldTarget, unoccludedReplicaRect, oldSurface.ReplicaDrawTransform, &top.inside)
	reduceOcclusionBelowSurface(oldTarget, unoccludedReplicaRect, oldSurface.ReplicaDrawTransform, &top.outside)
}

func (t *OcclusionTracker[L]) markOccludedBehindLayer(layer L) {
	invariants.Check(len(t.stack) > 0, "marking layer %d with an empty occlusion stack", layer.ID())
	if len(t.stack) == 0 {
		return
	}
	invariants.Check(renderTargetOf(layer) == t.top().target, "layer %d is not drawn into the current target", layer.ID())

	props, draw := layer.Properties(), layer.DrawProperties()
	if !props.DrawsContent {
		return
	}
	if !layerOpacityKnown(layer) || draw.DrawOpacity < 1 {
		return
	}
	if !props.BlendMode.IsDefault() {
		return
	}
	if props.SortingContextID != 0 {
		return
	}
	if !layerTransformsToTargetKnown(layer) {
		return
	}

	opaqueContents := visibleContentOpaqueRegion(layer)
	if opaqueContents.IsEmpty() {
		return
	}

	targetSurface := renderTargetOf(layer).RenderSurface()
	if !draw.DrawTransform.Preserves2dAxisAlignment() {
		if t.opts.nonOccludingRects != nil {
			for _, r := range opaqueContents.Rects() {
				t.recordNonOccluding(gfx.MapEnclosingClippedRect(draw.DrawTransform, r), targetSurface)
			}
		}
		return
	}

	clipRectInTarget := screenSpaceClipRectInTargetSurface(targetSurface, t.screenSpaceClipRect)
	if draw.IsClipped {
		clipRectInTarget = clipRectInTarget.Intersect(draw.ClipRect)
	} else {
		clipRectInTarget = clipRectInTarget.Intersect(targetSurface.ContentRect)
	}

	top := t.top()
	for _, r := range opaqueContents.Rects() {
		transformed := gfx.MapEnclosedRectWith2dAxisAlignedTransform(draw.DrawTransform, r).Intersect(clipRectInTarget)
		if transformed.Dx() < t.opts.minimumTrackingSize.X && transformed.Dy() < t.opts.minimumTrackingSize.Y {
			continue
		}
		top.inside.Union(transformed)
		if t.opts.occludingRects != nil {
			*t.opts.occludingRects = append(*t.opts.occludingRects, debugScreenRect(targetSurface, transformed))
		}
	}

	if t.opts.nonOccludingRects == nil {
		return
	}
	nonOpaque := gfx.NewRegion(gfx.SizeRect(props.Bounds))
	nonOpaque.SubtractRegion(opaqueContents)
	for _, r := range nonOpaque.Rects() {
		transformed := gfx.MapEnclosedRectWith2dAxisAlignedTransform(draw.DrawTransform, r).Intersect(clipRectInTarget)
		if transformed.Empty() {
			continue
		}
		t.recordNonOccluding(transformed, targetSurface)
	}
}

func (t *OcclusionTracker[L]) recordNonOccluding(rectInTarget image.Rectangle, targetSurface *RenderSurface[L]) {
	*t.opts.nonOccludingRects = append(*t.opts.nonOccludingRects, debugScreenRect(targetSurface, rectInTarget))
}

// debugScreenRect maps a rect in targetSurface's space to screen space for
// the debug rect sinks.
func debugScreenRect[L comparable](targetSurface *RenderSurface[L], r image.Rectangle) image.Rectangle {
	if targetSurface.ScreenSpaceTransform.Preserves2dAxisAlignment() {
		return gfx.MapEnclosedRectWith2dAxisAlignedTransform(targetSurface.ScreenSpaceTransform, r)
	}
	return gfx.MapEnclosingClippedRect(targetSurface.ScreenSpaceTransform, r)
}

// Occluded reports whether contentRect, drawn with drawTransform into
// renderTarget, is entirely hidden. It answers false whenever it cannot be
// sure.
func (t *OcclusionTracker[L]) Occluded(renderTarget L, contentRect image.Rectangle, drawTransform gfx.Transform) bool {
	invariants.Check(len(t.stack) > 0, "occlusion query with an empty occlusion stack")
	if len(t.stack) == 0 {
		return false
	}
	if contentRect.Empty() {
		return true
	}
	if isNil(renderTarget) {
		return false
	}
	invariants.Check(renderTarget == t.top().target, "occlusion query for layer %d, which is not the current target", renderTarget.ID())
	return t.CurrentOcclusionForLayer(drawTransform).IsOccluded(contentRect)
}

// UnoccludedContentRect returns the part of contentRect, drawn with
// drawTransform into the current target, that may be visible.
func (t *OcclusionTracker[L]) UnoccludedContentRect(contentRect image.Rectangle, drawTransform gfx.Transform) image.Rectangle {
	invariants.Check(len(t.stack) > 0, "occlusion query with an empty occlusion stack")
	if len(t.stack) == 0 {
		return contentRect
	}
	return t.CurrentOcclusionForLayer(drawTransform).UnoccludedContentRect(contentRect)
}

// UnoccludedContributingSurfaceContentRect returns the part of a
// contributing surface's content that may be visible. The surface is the
// current target, so only the occlusion of the target below it applies:
// a surface is never hidden by its own content.
func (t *OcclusionTracker[L]) UnoccludedContributingSurfaceContentRect(contentRect image.Rectangle, drawTransform gfx.Transform) image.Rectangle {
	invariants.Check(len(t.stack) > 0, "occlusion query with an empty occlusion stack")
	if len(t.stack) == 0 {
		return contentRect
	}
	return t.CurrentOcclusionForContributingSurface(drawTransform).UnoccludedContentRect(contentRect)
}

// CurrentOcclusionForLayer returns the occlusion for content drawn with
// drawTransform into the current target.
func (t *OcclusionTracker[L]) CurrentOcclusionForLayer(drawTransform gfx.Transform) Occlusion {
	if len(t.stack) == 0 {
		return Occlusion{}
	}
	top := t.top()
	return NewOcclusion(drawTransform, top.outside, top.inside)
}

// CurrentOcclusionForContributingSurface returns the occlusion for the
// current target's surface drawn with drawTransform into its own target.
func (t *OcclusionTracker[L]) CurrentOcclusionForContributingSurface(drawTransform gfx.Transform) Occlusion {
	if len(t.stack) < 2 {
		return Occlusion{}
	}
	below := &t.stack[len(t.stack)-2]
	return NewOcclusion(drawTransform, below.outside, below.inside)
}

// ComputeVisibleRegionInScreen returns the part of the screen clip that is
// not hidden. It is only meaningful once the walk has reached the root
// target.
func (t *OcclusionTracker[L]) ComputeVisibleRegionInScreen() gfx.Region {
	visible := gfx.NewRegion(t.screenSpaceClipRect)
	if len(t.stack) == 0 {
		return visible
	}
	invariants.Check(isRoot(t.top().target), "visible region computed before reaching the root target")
	visible.SubtractRegion(t.top().inside)
	return visible
}

// OcclusionFromInsideTarget returns the occlusion from layers drawn into the
// current target.
func (t *OcclusionTracker[L]) OcclusionFromInsideTarget() gfx.Region {
	if len(t.stack) == 0 {
		return gfx.Region{}
	}
	return t.top().inside
}

// OcclusionFromOutsideTarget returns the occlusion inherited by the current
// target.
func (t *OcclusionTracker[L]) OcclusionFromOutsideTarget() gfx.Region {
	if len(t.stack) == 0 {
		return gfx.Region{}
	}
	return t.top().outside
}

// transformSurfaceOpaqueRegion maps an occlusion region through transform.
// Transforms that do not keep rectangles axis-aligned yield no occlusion.
func transformSurfaceOpaqueRegion(region gfx.Region, haveClipRect bool, clipRectInNewTarget image.Rectangle, transform gfx.Transform) gfx.Region {
	if region.IsEmpty() {
		return gfx.Region{}
	}
	if !transform.Preserves2dAxisAlignment() {
		return gfx.Region{}
	}
	var transformed gfx.Region
	for _, r := range region.Rects() {
		mapped := gfx.MapEnclosedRectWith2dAxisAlignedTransform(transform, r)
		if haveClipRect {
			mapped = mapped.Intersect(clipRectInNewTarget)
		}
		transformed.Union(mapped)
	}
	return transformed
}

// screenSpaceClipRectInTargetSurface maps the screen clip into the space
// of targetSurface.
func screenSpaceClipRectInTargetSurface[L comparable](targetSurface *RenderSurface[L], screenSpaceClipRect image.Rectangle) image.Rectangle {
	inverse, ok := targetSurface.ScreenSpaceTransform.Invert()
	if !ok {
		return targetSurface.ContentRect
	}
	return gfx.ProjectEnclosingClippedRect(inverse, screenSpaceClipRect)
}

func layerOpacityKnown[L CompositableNode[L]](l L) bool {
	return l.base().animationsResolved || !l.DrawProperties().DrawOpacityIsAnimating
}

func layerTransformsToTargetKnown[L CompositableNode[L]](l L) bool {
	return l.base().animationsResolved || !l.DrawProperties().DrawTransformIsAnimating
}

func surfaceOpacityKnown[L CompositableNode[L]](owner L) bool {
	return owner.base().animationsResolved || !owner.RenderSurface().DrawOpacityIsAnimating
}

func surfaceTransformsToTargetKnown[L CompositableNode[L]](owner L) bool {
	return owner.base().animationsResolved || !owner.RenderSurface().TargetSurfaceTransformsAreAnimating
}

func surfaceTransformsToScreenKnown[L CompositableNode[L]](owner L) bool {
	return owner.base().animationsResolved || !owner.RenderSurface().ScreenSpaceTransformsAreAnimating
}
