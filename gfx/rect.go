// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"image"
	"math"
)

// R returns the integer rectangle at (x, y) with the given width and height.
func R(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+w, y+h)
}

// SizeRect returns the rectangle at the origin with the given size.
func SizeRect(size image.Point) image.Rectangle {
	return image.Rectangle{Max: size}
}

// Inset shrinks r by the given amounts on each edge. Negative amounts grow
// the rectangle. The result is normalized to an empty rectangle when the
// insets cross.
func Inset(r image.Rectangle, left, top, right, bottom int) image.Rectangle {
	r.Min.X += left
	r.Min.Y += top
	r.Max.X -= right
	r.Max.Y -= bottom
	if r.Max.X < r.Min.X {
		r.Max.X = r.Min.X
	}
	if r.Max.Y < r.Min.Y {
		r.Max.Y = r.Min.Y
	}
	return r
}

// RectF represents a rectangle with float64 coordinates.
type RectF struct {
	X, Y float64 // Top-left corner
	W, H float64 // Width and height
}

// RectFFromRect converts an integer rectangle to a RectF.
func RectFFromRect(r image.Rectangle) RectF {
	return RectF{
		X: float64(r.Min.X),
		Y: float64(r.Min.Y),
		W: float64(r.Dx()),
		H: float64(r.Dy()),
	}
}

// Right returns the right edge x-coordinate.
func (r RectF) Right() float64 {
	return r.X + r.W
}

// Bottom returns the bottom edge y-coordinate.
func (r RectF) Bottom() float64 {
	return r.Y + r.H
}

// IsEmpty returns true if the rectangle has zero area.
func (r RectF) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect returns the intersection of two rectangles.
// Returns an empty rectangle if they don't intersect.
func (r RectF) Intersect(other RectF) RectF {
	x0 := math.Max(r.X, other.X)
	y0 := math.Max(r.Y, other.Y)
	x1 := math.Min(r.Right(), other.Right())
	y1 := math.Min(r.Bottom(), other.Bottom())

	if x1 <= x0 || y1 <= y0 {
		return RectF{}
	}
	return RectF{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the bounding box of both rectangles. Empty rectangles are
// ignored.
func (r RectF) Union(other RectF) RectF {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	x0 := math.Min(r.X, other.X)
	y0 := math.Min(r.Y, other.Y)
	x1 := math.Max(r.Right(), other.Right())
	y1 := math.Max(r.Bottom(), other.Bottom())
	return RectF{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// ToEnclosingRect returns the smallest integer rectangle containing r.
func ToEnclosingRect(r RectF) image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		clampToInt(math.Floor(r.X)),
		clampToInt(math.Floor(r.Y)),
		clampToInt(math.Ceil(r.Right())),
		clampToInt(math.Ceil(r.Bottom())),
	)
}

// ToEnclosedRect returns the largest integer rectangle contained in r.
func ToEnclosedRect(r RectF) image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	x0 := clampToInt(math.Ceil(r.X))
	y0 := clampToInt(math.Ceil(r.Y))
	x1 := clampToInt(math.Floor(r.Right()))
	y1 := clampToInt(math.Floor(r.Bottom()))
	if x1 <= x0 || y1 <= y0 {
		return image.Rectangle{}
	}
	return image.Rect(x0, y0, x1, y1)
}

// clampToInt converts f to an int, saturating at the int32 range so that
// rectangles mapped through extreme transforms stay well formed.
func clampToInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
