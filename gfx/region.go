// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"image"
	"slices"

	"github.com/cockroachdb/redact"
)

// Region is a set of pixels described by disjoint axis-aligned rectangles.
//
// The region is stored in banded form: horizontal bands with strictly
// increasing, non-overlapping y ranges, each holding sorted disjoint x spans.
// Vertically adjacent bands with identical spans are always merged and
// horizontally touching spans are always joined, so two regions covering the
// same pixels have the same representation.
//
// The zero value is an empty region. Operations never modify slices shared
// with another Region value, so Region values may be copied freely.
type Region struct {
	bands []band
}

type span struct {
	x0, x1 int
}

type band struct {
	y0, y1 int
	spans  []span
}

// NewRegion returns the union of the given rectangles.
func NewRegion(rects ...image.Rectangle) Region {
	var r Region
	for _, rect := range rects {
		r.Union(rect)
	}
	return r
}

// IsEmpty returns true if the region covers no pixels.
func (r Region) IsEmpty() bool {
	return len(r.bands) == 0
}

// Clear empties the region.
func (r *Region) Clear() {
	r.bands = nil
}

// Bounds returns the smallest rectangle containing the region.
func (r Region) Bounds() image.Rectangle {
	if len(r.bands) == 0 {
		return image.Rectangle{}
	}
	b := image.Rect(r.bands[0].spans[0].x0, r.bands[0].y0, r.bands[0].spans[0].x1, r.bands[len(r.bands)-1].y1)
	for _, bd := range r.bands {
		b.Min.X = min(b.Min.X, bd.spans[0].x0)
		b.Max.X = max(b.Max.X, bd.spans[len(bd.spans)-1].x1)
	}
	return b
}

// Rects returns the disjoint rectangles making up the region, ordered top to
// bottom then left to right.
func (r Region) Rects() []image.Rectangle {
	var out []image.Rectangle
	for _, bd := range r.bands {
		for _, s := range bd.spans {
			out = append(out, image.Rect(s.x0, bd.y0, s.x1, bd.y1))
		}
	}
	return out
}

// Complexity returns the number of rectangles in the region.
func (r Region) Complexity() int {
	n := 0
	for _, bd := range r.bands {
		n += len(bd.spans)
	}
	return n
}

// Area returns the number of pixels covered by the region.
func (r Region) Area() int {
	area := 0
	for _, bd := range r.bands {
		for _, s := range bd.spans {
			area += (s.x1 - s.x0) * (bd.y1 - bd.y0)
		}
	}
	return area
}

// Contains reports whether every pixel of rect is inside the region.
// An empty rectangle is contained in every region.
func (r Region) Contains(rect image.Rectangle) bool {
	if rect.Empty() {
		return true
	}
	rest := combine(rectBands(rect), r.bands, opSubtract)
	return len(rest) == 0
}

// Intersects reports whether the region shares any pixel with rect.
func (r Region) Intersects(rect image.Rectangle) bool {
	if rect.Empty() {
		return false
	}
	return len(combine(r.bands, rectBands(rect), opIntersect)) > 0
}

// Equal reports whether both regions cover the same pixels.
func (r Region) Equal(other Region) bool {
	return slices.EqualFunc(r.bands, other.bands, func(a, b band) bool {
		return a.y0 == b.y0 && a.y1 == b.y1 && slices.Equal(a.spans, b.spans)
	})
}

// Union adds rect to the region.
func (r *Region) Union(rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	r.bands = combine(r.bands, rectBands(rect), opUnion)
}

// UnionRegion adds other to the region.
func (r *Region) UnionRegion(other Region) {
	if other.IsEmpty() {
		return
	}
	r.bands = combine(r.bands, other.bands, opUnion)
}

// Subtract removes rect from the region.
func (r *Region) Subtract(rect image.Rectangle) {
	if rect.Empty() || r.IsEmpty() {
		return
	}
	r.bands = combine(r.bands, rectBands(rect), opSubtract)
}

// SubtractRegion removes other from the region.
func (r *Region) SubtractRegion(other Region) {
	if other.IsEmpty() || r.IsEmpty() {
		return
	}
	r.bands = combine(r.bands, other.bands, opSubtract)
}

// Intersect keeps only the part of the region inside rect.
func (r *Region) Intersect(rect image.Rectangle) {
	r.bands = combine(r.bands, rectBands(rect), opIntersect)
}

// IntersectRegion keeps only the part of the region inside other.
func (r *Region) IntersectRegion(other Region) {
	r.bands = combine(r.bands, other.bands, opIntersect)
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return redact.StringWithoutMarkers(r)
}

// SafeFormat implements redact.SafeFormatter.
func (r Region) SafeFormat(w redact.SafePrinter, _ rune) {
	if r.IsEmpty() {
		w.SafeString("empty")
		return
	}
	for i, rect := range r.Rects() {
		if i > 0 {
			w.SafeString(" | ")
		}
		w.Printf("%d,%d %dx%d", rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())
	}
}

type setOp func(inA, inB bool) bool

func opUnion(a, b bool) bool     { return a || b }
func opIntersect(a, b bool) bool { return a && b }
func opSubtract(a, b bool) bool  { return a && !b }

func rectBands(r image.Rectangle) []band {
	if r.Empty() {
		return nil
	}
	return []band{{y0: r.Min.Y, y1: r.Max.Y, spans: []span{{x0: r.Min.X, x1: r.Max.X}}}}
}

// combine applies op to every elementary y interval formed by the band
// edges of a and b and returns a freshly allocated, normalized band list.
func combine(a, b []band, op setOp) []band {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	ys := make([]int, 0, 2*(len(a)+len(b)))
	for _, bd := range a {
		ys = append(ys, bd.y0, bd.y1)
	}
	for _, bd := range b {
		ys = append(ys, bd.y0, bd.y1)
	}
	slices.Sort(ys)
	ys = slices.Compact(ys)

	var out []band
	ia, ib := 0, 0
	for i := 0; i+1 < len(ys); i++ {
		y0, y1 := ys[i], ys[i+1]
		for ia < len(a) && a[ia].y1 <= y0 {
			ia++
		}
		for ib < len(b) && b[ib].y1 <= y0 {
			ib++
		}
		var sa, sb []span
		if ia < len(a) && a[ia].y0 <= y0 {
			sa = a[ia].spans
		}
		if ib < len(b) && b[ib].y0 <= y0 {
			sb = b[ib].spans
		}
		spans := combineSpans(sa, sb, op)
		if len(spans) == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].y1 == y0 && slices.Equal(out[n-1].spans, spans) {
			out[n-1].y1 = y1
			continue
		}
		out = append(out, band{y0: y0, y1: y1, spans: spans})
	}
	return out
}

// combineSpans is the one-dimensional counterpart of combine.
func combineSpans(a, b []span, op setOp) []span {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	xs := make([]int, 0, 2*(len(a)+len(b)))
	for _, s := range a {
		xs = append(xs, s.x0, s.x1)
	}
	for _, s := range b {
		xs = append(xs, s.x0, s.x1)
	}
	slices.Sort(xs)
	xs = slices.Compact(xs)

	var out []span
	ia, ib := 0, 0
	for i := 0; i+1 < len(xs); i++ {
		x0, x1 := xs[i], xs[i+1]
		for ia < len(a) && a[ia].x1 <= x0 {
			ia++
		}
		for ib < len(b) && b[ib].x1 <= x0 {
			ib++
		}
		inA := ia < len(a) && a[ia].x0 <= x0
		inB := ib < len(b) && b[ib].x0 <= x0
		if !op(inA, inB) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].x1 == x0 {
			out[n-1].x1 = x1
			continue
		}
		out = append(out, span{x0: x0, x1: x1})
	}
	return out
}
