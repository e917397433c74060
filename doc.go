// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cc is the layer compositing core: render surfaces, the
// front-to-back layer walk, and occlusion tracking.
//
// # Overview
//
// A layer tree is authored on a LayerTreeHost and committed to a
// LayerTreeImpl, the tree a frame is drawn from. Both trees share one
// implementation of the algorithms below, written once against the
// CompositableNode constraint and instantiated for *Layer and *LayerImpl.
//
// # Quick Start
//
//	host := cc.NewLayerTreeHost(cc.WithViewport(image.Rect(0, 0, 800, 600)))
//	root := host.NewLayer()
//	root.SetBounds(800, 600)
//	host.SetRootLayer(root)
//
//	content := host.NewLayer()
//	content.SetBounds(400, 300)
//	content.SetDrawsContent(true)
//	content.SetContentsOpaque(true)
//	root.AddChild(content)
//
//	// Decide what to paint on the authoring side.
//	painted := host.UpdateLayers()
//
//	// Mirror the tree and compute occlusion for drawing.
//	tree := cc.NewLayerTreeImpl()
//	host.Commit(tree)
//	tree.UpdateDrawProperties()
//
// # Render Surfaces
//
// CalculateDrawProperties decides which layers draw into an offscreen
// render surface (the root, layers with masks, replicas, filters, blend
// modes, copy requests or group opacity) and returns the render-surface
// layer list. Each surface has its own list of the layers drawing into it.
//
// # Traversal
//
// LayerIterator walks a render-surface layer list front to back. Every
// step represents exactly one of: a layer drawing itself, a surface being
// composited into its target, or a target surface once all its content
// was visited. The content of a surface is always visited before the
// surface itself.
//
// # Occlusion
//
// OcclusionTracker follows the walk and accumulates opaque content. All
// mapping rounds toward visibility: content is only reported occluded when
// that is certain. Transforms that do not keep rectangles axis-aligned
// contribute no occlusion, and content whose transform cannot be inverted
// is never occluded.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
package cc
