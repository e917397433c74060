// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"

	"github.com/gogpu/cc/gfx"
)

// CalculateDrawProperties computes the draw properties of every layer in
// the tree under root, decides which layers own render surfaces, and
// returns the render-surface layer list: the owners of all surfaces with
// something to draw, each before the owners of the surfaces nested in it.
//
// viewport is the screen-space clip of the root surface, and device maps
// the root layer's space to screen space. Surfaces created by a previous
// calculation are discarded.
func CalculateDrawProperties[L CompositableNode[L]](root L, viewport image.Rectangle, device gfx.Transform) []L {
	if isNil(root) {
		return nil
	}
	preparePass(root)
	if root.Properties().HideLayerAndSubtree && !root.base().copyRequestInSubtree {
		return nil
	}

	c := &drawPropertiesCalc[L]{viewport: viewport}
	c.calculate(root, subtreeData[L]{
		parentDrawTransform:   device,
		parentScreenTransform: device,
		accumulatedOpacity:    1,
		clipRect:              viewport,
		ancestorClips:         true,
	})
	Logger().Debug("calculated draw properties", "root", root.ID(), "surfaces", len(c.list))
	return c.list
}

// subtreeData is passed from a layer to its children.
type subtreeData[L CompositableNode[L]] struct {
	// parentDrawTransform maps the parent's content space to the current
	// target's space, parentScreenTransform to screen space.
	parentDrawTransform   gfx.Transform
	parentScreenTransform gfx.Transform

	accumulatedOpacity       float32
	opacityAnimating         bool
	drawTransformAnimating   bool
	screenTransformAnimating bool

	// clipRect is in the current target's space.
	clipRect      image.Rectangle
	ancestorClips bool

	renderTarget   L
	immuneAncestor *RenderSurface[L]

	hidden bool
	// drawnForCopy is set below a layer with a copy request, whose subtree
	// is drawn even when hidden.
	drawnForCopy bool
}

type drawPropertiesCalc[L CompositableNode[L]] struct {
	viewport image.Rectangle
	list     []L
}

// preparePass resets the computed state of every layer and counts, for
// each layer, the descendants that draw content.
func preparePass[L CompositableNode[L]](l L) (drawn int, copyRequest bool) {
	b := l.base()
	b.surface = nil
	b.draw = DrawProperties[L]{DrawOpacity: 1, DrawTransform: gfx.Identity(), ScreenSpaceTransform: gfx.Identity()}
	for _, attachment := range []L{l.MaskLayer(), l.ReplicaLayer()} {
		if !isNil(attachment) {
			preparePass(attachment)
		}
	}
	b.drawnDescendants = 0
	b.copyRequestInSubtree = b.props.HasCopyRequest
	for _, child := range b.children {
		childDrawn, childCopy := preparePass(child)
		b.drawnDescendants += childDrawn
		b.copyRequestInSubtree = b.copyRequestInSubtree || childCopy
	}
	drawn = b.drawnDescendants
	if b.props.DrawsContent {
		drawn++
	}
	return drawn, b.copyRequestInSubtree
}

// needsRenderSurface reports whether l must draw its subtree into a
// surface of its own.
func needsRenderSurface[L CompositableNode[L]](l L) bool {
	b := l.base()
	props := &b.props
	switch {
	case isRoot(l),
		props.ForceRenderSurface,
		!isNil(b.mask),
		!isNil(b.replica),
		!props.Filters.IsEmpty(),
		!props.BackgroundFilters.IsEmpty(),
		!props.BlendMode.IsDefault(),
		props.HasCopyRequest:
		return true
	}
	// Group opacity only needs a surface when more than one piece of content
	// would otherwise be blended separately.
	translucent := props.Opacity < 1 || b.opacityAnimating
	return translucent && b.drawnDescendants > 0 && (props.DrawsContent || b.drawnDescendants > 1)
}

func (c *drawPropertiesCalc[L]) calculate(l L, data subtreeData[L]) {
	b := l.base()
	props := &b.props
	draw := &b.draw

	hidden := data.hidden || props.HideLayerAndSubtree
	drawnForCopy := data.drawnForCopy || props.HasCopyRequest
	drawn := !hidden || drawnForCopy
	if !drawn && !b.copyRequestInSubtree {
		return
	}

	local := props.localTransform()
	combined := data.parentDrawTransform.Multiply(local)
	screen := data.parentScreenTransform.Multiply(local)

	opacity := data.accumulatedOpacity * props.Opacity
	opacityAnimating := data.opacityAnimating || b.opacityAnimating
	drawAnimating := data.drawTransformAnimating || b.transformAnimating
	screenAnimating := data.screenTransformAnimating || b.transformAnimating

	child := data
	child.hidden = hidden
	child.drawnForCopy = drawnForCopy

	root := isRoot(l)
	listIndex := len(c.list)
	if needsRenderSurface(l) {
		surface := newRenderSurface(l)
		b.surface = surface
		c.list = append(c.list, l)
		draw.RenderTarget = l
		surface.NearestOcclusionImmuneAncestor = data.immuneAncestor

		if root {
			// The root surface is the screen.
			draw.DrawTransform = combined
			draw.ScreenSpaceTransform = screen
			draw.DrawOpacity = opacity
			draw.DrawOpacityIsAnimating = opacityAnimating
			draw.DrawTransformIsAnimating = drawAnimating
			draw.ScreenSpaceTransformIsAnimating = screenAnimating
			draw.IsClipped = true
			draw.ClipRect = c.viewport
			surface.ContentRect = c.viewport

			child.parentDrawTransform = combined
			child.parentScreenTransform = screen
			child.accumulatedOpacity = opacity
			child.opacityAnimating = opacityAnimating
			child.drawTransformAnimating = drawAnimating
			child.screenTransformAnimating = screenAnimating
			child.clipRect = c.viewport
			child.ancestorClips = true
			if props.MasksToBounds {
				child.clipRect = child.clipRect.Intersect(gfx.MapEnclosingClippedRect(combined, gfx.SizeRect(props.Bounds)))
			}
		} else {
			surface.DrawTransform = combined
			surface.ScreenSpaceTransform = screen
			surface.DrawOpacity = opacity
			surface.DrawOpacityIsAnimating = opacityAnimating
			surface.TargetSurfaceTransformsAreAnimating = drawAnimating
			surface.ScreenSpaceTransformsAreAnimating = screenAnimating
			surface.IsClipped = data.ancestorClips
			if data.ancestorClips {
				surface.ClipRect = data.clipRect
			}
			if replica := b.replica; !isNil(replica) {
				replicaLocal := replica.Properties().localTransform()
				surface.ReplicaDrawTransform = combined.Multiply(replicaLocal)
				surface.ReplicaScreenSpaceTransform = screen.Multiply(replicaLocal)
			}

			// The owner's content space is the surface's space.
			draw.DrawTransform = gfx.Identity()
			draw.ScreenSpaceTransform = screen
			draw.DrawOpacity = 1
			draw.ScreenSpaceTransformIsAnimating = screenAnimating
			draw.IsClipped = false
			draw.ClipRect = image.Rectangle{}

			child.parentDrawTransform = gfx.Identity()
			child.parentScreenTransform = screen
			child.accumulatedOpacity = 1
			child.opacityAnimating = false
			child.drawTransformAnimating = false
			child.screenTransformAnimating = screenAnimating
			child.ancestorClips = props.MasksToBounds
			child.clipRect = image.Rectangle{}
			if props.MasksToBounds {
				child.clipRect = gfx.SizeRect(props.Bounds)
			}
		}

		child.renderTarget = l
		child.immuneAncestor = data.immuneAncestor
		if props.Filters.HasFilterThatMovesPixels() {
			child.immuneAncestor = surface
		}
		c.prepareAttachments(l)
	} else {
		draw.RenderTarget = data.renderTarget
		draw.DrawTransform = combined
		draw.ScreenSpaceTransform = screen
		draw.DrawOpacity = opacity
		draw.DrawOpacityIsAnimating = opacityAnimating
		draw.DrawTransformIsAnimating = drawAnimating
		draw.ScreenSpaceTransformIsAnimating = screenAnimating
		draw.IsClipped = data.ancestorClips
		draw.ClipRect = data.clipRect

		child.parentDrawTransform = combined
		child.parentScreenTransform = screen
		child.accumulatedOpacity = opacity
		child.opacityAnimating = opacityAnimating
		child.drawTransformAnimating = drawAnimating
		child.screenTransformAnimating = screenAnimating
		if props.MasksToBounds {
			bounds := gfx.MapEnclosingClippedRect(combined, gfx.SizeRect(props.Bounds))
			if child.ancestorClips {
				bounds = bounds.Intersect(child.clipRect)
			}
			child.clipRect = bounds
			child.ancestorClips = true
		}
	}

	content := gfx.SizeRect(props.Bounds)
	draw.DrawableContentRect = gfx.MapEnclosingClippedRect(draw.DrawTransform, content)
	if draw.IsClipped {
		draw.DrawableContentRect = draw.DrawableContentRect.Intersect(draw.ClipRect)
	}
	draw.VisibleContentRect = visibleContentRect(draw, content)

	if drawn && props.DrawsContent && !content.Empty() {
		target := draw.RenderTarget.RenderSurface()
		target.LayerList = append(target.LayerList, l)
	}

	for _, ch := range b.children {
		c.calculate(ch, child)
	}

	if b.surface == nil || root {
		return
	}

	surface := b.surface
	surface.ContentRect = surfaceContentRect(surface)
	if len(surface.LayerList) == 0 || (surface.ContentRect.Empty() && !props.HasCopyRequest) {
		// Nothing to draw: drop the surface and every surface nested in it.
		for _, owner := range c.list[listIndex:] {
			owner.base().surface = nil
		}
		c.list = c.list[:listIndex]
		return
	}
	parentSurface := data.renderTarget.RenderSurface()
	parentSurface.LayerList = append(parentSurface.LayerList, l)
}

// prepareAttachments sets up the mask and replica of a surface owner. They
// draw in the owner's surface space.
func (c *drawPropertiesCalc[L]) prepareAttachments(owner L) {
	surface := owner.RenderSurface()
	setup := func(l L, screen gfx.Transform) {
		draw := l.DrawProperties()
		draw.RenderTarget = owner
		draw.DrawTransform = gfx.Identity()
		draw.ScreenSpaceTransform = screen
		draw.VisibleContentRect = gfx.SizeRect(l.Properties().Bounds)
		draw.DrawableContentRect = draw.VisibleContentRect
	}
	if mask := owner.MaskLayer(); !isNil(mask) {
		setup(mask, surface.ScreenSpaceTransform)
	}
	if replica := owner.ReplicaLayer(); !isNil(replica) {
		setup(replica, surface.ReplicaScreenSpaceTransform)
		if mask := replica.MaskLayer(); !isNil(mask) {
			setup(mask, surface.ReplicaScreenSpaceTransform)
		}
	}
}

// surfaceContentRect returns the union of everything drawn into surface,
// clipped to the surface's clip.
func surfaceContentRect[L CompositableNode[L]](surface *RenderSurface[L]) image.Rectangle {
	var content image.Rectangle
	for _, l := range surface.LayerList {
		if l == surface.Owner || l.RenderSurface() == nil {
			content = content.Union(l.DrawProperties().DrawableContentRect)
			continue
		}
		if layerIsHidden(l) {
			continue
		}
		content = content.Union(l.RenderSurface().DrawableContentRect(hasReplica(l)))
	}
	if surface.IsClipped {
		if inverse, ok := surface.DrawTransform.Invert(); ok {
			content = content.Intersect(gfx.ProjectEnclosingClippedRect(inverse, surface.ClipRect))
		}
	}
	return content
}

// visibleContentRect returns the part of content that survives the layer's
// clip, in content space.
func visibleContentRect[L comparable](draw *DrawProperties[L], content image.Rectangle) image.Rectangle {
	if content.Empty() || draw.DrawableContentRect.Empty() {
		return image.Rectangle{}
	}
	if !draw.IsClipped {
		return content
	}
	inverse, ok := draw.DrawTransform.Invert()
	if !ok {
		return content
	}
	return gfx.ProjectEnclosingClippedRect(inverse, draw.DrawableContentRect).Intersect(content)
}
