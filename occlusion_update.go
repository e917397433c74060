// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"

	"github.com/gogpu/cc/gfx"
)

// UpdateOcclusion walks list front to back with an OcclusionTracker and
// stores in each layer and each contributing surface the occlusion that
// applies to it. It returns the part of screenSpaceClip left visible.
//
// Layers that may appear in a replica get no occlusion: the replica can
// show content that is hidden in the original.
func UpdateOcclusion[L CompositableNode[L]](list []L, screenSpaceClip image.Rectangle, opts ...TrackerOption) gfx.Region {
	tracker := NewOcclusionTracker[L](screenSpaceClip, opts...)
	metrics := tracker.opts.metrics
	metrics.recordPass(len(list))

	for it := Begin(list); !it.AtEnd(); it.Next() {
		pos := it.Position()
		tracker.EnterLayer(pos)

		layer := pos.CurrentLayer
		insideReplica := isInsideReplica(pos.TargetRenderSurfaceLayer)

		if pos.RepresentsItself {
			var occlusion Occlusion
			if !insideReplica {
				occlusion = tracker.CurrentOcclusionForLayer(layer.DrawProperties().DrawTransform)
			}
			draw := layer.DrawProperties()
			draw.Occlusion = occlusion
			if !draw.VisibleContentRect.Empty() {
				metrics.recordLayer(occlusion.IsOccluded(draw.VisibleContentRect))
			}
		}

		if pos.RepresentsContributingRenderSurface {
			surface := layer.RenderSurface()
			// Surfaces are drawn whole, so they keep their occlusion even
			// inside a replica.
			surface.Occlusion = tracker.CurrentOcclusionForContributingSurface(surface.DrawTransform)
			// A mask draws with its surface and is not hidden by anything
			// inside it.
			if mask := layer.MaskLayer(); !isNil(mask) {
				var occlusion Occlusion
				if !insideReplica {
					occlusion = tracker.CurrentOcclusionForContributingSurface(surface.DrawTransform.Multiply(layer.DrawProperties().DrawTransform))
				}
				mask.DrawProperties().Occlusion = occlusion
			}
			if replica := layer.ReplicaLayer(); !isNil(replica) {
				if mask := replica.MaskLayer(); !isNil(mask) {
					mask.DrawProperties().Occlusion = Occlusion{}
				}
			}
		}

		tracker.LeaveLayer(pos)
	}

	visible := tracker.ComputeVisibleRegionInScreen()
	Logger().Debug("updated occlusion",
		"surfaces", len(list),
		"visible", visible)
	return visible
}

// isInsideReplica reports whether target or any target enclosing it has a
// replica.
func isInsideReplica[L CompositableNode[L]](target L) bool {
	for l := target; !isNil(l); {
		t := renderTargetOf(l)
		if isNil(t) {
			return false
		}
		if hasReplica(t) {
			return true
		}
		l = t.Parent()
	}
	return false
}
