// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"image"

	"github.com/gogpu/cc/internal/invariants"
)

// MapEnclosingClippedRect maps r through t and returns the smallest integer
// rectangle containing the result.
func MapEnclosingClippedRect(t Transform, r image.Rectangle) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	if t.IsIntegerTranslation() {
		return r.Add(t.Translation())
	}
	return ToEnclosingRect(t.MapRect(RectFFromRect(r)))
}

// ProjectEnclosingClippedRect maps r through t, which is usually an inverse
// transform, and returns the smallest integer rectangle containing the
// result. Affine transforms never project a point behind the viewer, so this
// is the same mapping as MapEnclosingClippedRect.
func ProjectEnclosingClippedRect(t Transform, r image.Rectangle) image.Rectangle {
	return MapEnclosingClippedRect(t, r)
}

// MapEnclosedRectWith2dAxisAlignedTransform maps r through t and returns
// the largest integer rectangle inside the result. t must preserve 2D axis
// alignment; otherwise the mapped shape is not a rectangle.
func MapEnclosedRectWith2dAxisAlignedTransform(t Transform, r image.Rectangle) image.Rectangle {
	invariants.Check(t.Preserves2dAxisAlignment(), "transform %s does not preserve axis alignment", t)
	if r.Empty() {
		return image.Rectangle{}
	}
	if t.IsIntegerTranslation() {
		return r.Add(t.Translation())
	}
	return ToEnclosedRect(t.MapRect(RectFFromRect(r)))
}
