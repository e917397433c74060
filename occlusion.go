// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"

	"github.com/cockroachdb/redact"

	"github.com/gogpu/cc/gfx"
)

// Occlusion is a snapshot of the occlusion that applies to some content.
// The regions are in target surface space and drawTransform maps the
// content into that space. The zero value occludes nothing.
type Occlusion struct {
	drawTransform gfx.Transform
	outside       gfx.Region
	inside        gfx.Region
}

// NewOcclusion returns an occlusion for content drawn with drawTransform
// into a target occluded by outside and inside.
func NewOcclusion(drawTransform gfx.Transform, outside, inside gfx.Region) Occlusion {
	return Occlusion{drawTransform: drawTransform, outside: outside, inside: inside}
}

// WithDrawTransform returns the same occlusion for content drawn with t.
func (o Occlusion) WithDrawTransform(t gfx.Transform) Occlusion {
	return Occlusion{drawTransform: t, outside: o.outside, inside: o.inside}
}

// HasOcclusion reports whether anything is occluded.
func (o Occlusion) HasOcclusion() bool {
	return !o.outside.IsEmpty() || !o.inside.IsEmpty()
}

// OcclusionFromOutsideTarget returns the occlusion inherited from enclosing
// targets.
func (o Occlusion) OcclusionFromOutsideTarget() gfx.Region { return o.outside }

// OcclusionFromInsideTarget returns the occlusion from layers drawn into the
// same target.
func (o Occlusion) OcclusionFromInsideTarget() gfx.Region { return o.inside }

// IsOccluded reports whether all of rect, in content space, is hidden. An
// empty rect is always occluded; content whose transform cannot be
// inverted never is.
func (o Occlusion) IsOccluded(rect image.Rectangle) bool {
	if rect.Empty() {
		return true
	}
	if !o.HasOcclusion() || !o.drawTransform.IsInvertible() {
		return false
	}
	return o.unoccludedRectInTarget(rect).Empty()
}

// UnoccludedContentRect returns the bounds of the part of rect that is not
// hidden, in content space. The result is contained in rect.
func (o Occlusion) UnoccludedContentRect(rect image.Rectangle) image.Rectangle {
	if rect.Empty() || !o.HasOcclusion() {
		return rect
	}
	inverse, ok := o.drawTransform.Invert()
	if !ok {
		return rect
	}
	unoccluded := o.unoccludedRectInTarget(rect)
	return gfx.ProjectEnclosingClippedRect(inverse, unoccluded).Intersect(rect)
}

// unoccludedRectInTarget maps rect into the target and returns the bounds
// of what the occlusion leaves of it. Rounding is outward at every step so
// partially visible pixels stay visible.
func (o Occlusion) unoccludedRectInTarget(rect image.Rectangle) image.Rectangle {
	r := gfx.NewRegion(gfx.MapEnclosingClippedRect(o.drawTransform, rect))
	r.SubtractRegion(o.inside)
	r.SubtractRegion(o.outside)
	return r.Bounds()
}

// String implements fmt.Stringer.
func (o Occlusion) String() string {
	return redact.StringWithoutMarkers(o)
}

// SafeFormat implements redact.SafeFormatter.
func (o Occlusion) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("outside: %s, inside: %s", o.outside, o.inside)
}
