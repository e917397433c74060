// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"image"
	"math"

	"github.com/cockroachdb/redact"
	"golang.org/x/image/math/f64"
)

// Transform is a 2D affine transformation stored as the first two rows of
// a 3x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
//
// The layout matches f64.Aff3, so a Transform converts to and from it
// without copying element by element.
type Transform f64.Aff3

// singularEpsilon is the determinant magnitude below which a transform is
// treated as non-invertible.
const singularEpsilon = 1e-10

// Identity returns the identity transformation.
func Identity() Transform {
	return Transform{
		1, 0, 0,
		0, 1, 0,
	}
}

// Translate creates a translation transform.
func Translate(x, y float64) Transform {
	return Transform{
		1, 0, x,
		0, 1, y,
	}
}

// Scale creates a scaling transform.
func Scale(x, y float64) Transform {
	return Transform{
		x, 0, 0,
		0, y, 0,
	}
}

// Rotate creates a rotation transform (angle in radians).
func Rotate(angle float64) Transform {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Transform{
		cos, -sin, 0,
		sin, cos, 0,
	}
}

// RotateDegrees creates a rotation transform from an angle in degrees.
// Multiples of 90 degrees produce exact matrices so that they keep
// preserving axis alignment.
func RotateDegrees(degrees float64) Transform {
	if q := math.Mod(degrees, 90); q == 0 {
		switch int(math.Mod(degrees/90, 4)+4) % 4 {
		case 0:
			return Identity()
		case 1:
			return Transform{0, -1, 0, 1, 0, 0}
		case 2:
			return Transform{-1, 0, 0, 0, -1, 0}
		case 3:
			return Transform{0, 1, 0, -1, 0, 0}
		}
	}
	return Rotate(degrees * math.Pi / 180)
}

// Aff3 returns the transform as an f64.Aff3.
func (t Transform) Aff3() f64.Aff3 {
	return f64.Aff3(t)
}

// Multiply multiplies two transforms (t * other): other is applied first.
func (t Transform) Multiply(other Transform) Transform {
	return Transform{
		t[0]*other[0] + t[1]*other[3],
		t[0]*other[1] + t[1]*other[4],
		t[0]*other[2] + t[1]*other[5] + t[2],
		t[3]*other[0] + t[4]*other[3],
		t[3]*other[1] + t[4]*other[4],
		t[3]*other[2] + t[4]*other[5] + t[5],
	}
}

// TransformPoint applies the transformation to a point.
func (t Transform) TransformPoint(x, y float64) (float64, float64) {
	return t[0]*x + t[1]*y + t[2], t[3]*x + t[4]*y + t[5]
}

// Determinant returns the determinant of the linear part.
func (t Transform) Determinant() float64 {
	return t[0]*t[4] - t[1]*t[3]
}

// IsInvertible reports whether the transform has an inverse.
func (t Transform) IsInvertible() bool {
	return math.Abs(t.Determinant()) >= singularEpsilon
}

// Invert returns the inverse transform. The second result is false, and the
// identity is returned, if the transform is not invertible.
func (t Transform) Invert() (Transform, bool) {
	det := t.Determinant()
	if math.Abs(det) < singularEpsilon {
		return Identity(), false
	}

	invDet := 1.0 / det
	return Transform{
		t[4] * invDet,
		-t[1] * invDet,
		(t[1]*t[5] - t[2]*t[4]) * invDet,
		-t[3] * invDet,
		t[0] * invDet,
		(t[2]*t[3] - t[0]*t[5]) * invDet,
	}, true
}

// IsIdentity returns true if the transform is the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// IsTranslation returns true if the transform is only a translation.
func (t Transform) IsTranslation() bool {
	return t[0] == 1 && t[1] == 0 && t[3] == 0 && t[4] == 1
}

// IsIntegerTranslation returns true if the transform is a translation by
// whole pixels.
func (t Transform) IsIntegerTranslation() bool {
	return t.IsTranslation() && t[2] == math.Trunc(t[2]) && t[5] == math.Trunc(t[5])
}

// Preserves2dAxisAlignment reports whether axis-aligned rectangles stay
// axis-aligned rectangles after the transform: each row and each column of
// the linear part holds at most one non-zero entry.
func (t Transform) Preserves2dAxisAlignment() bool {
	return (t[1] == 0 && t[3] == 0) || (t[0] == 0 && t[4] == 0)
}

// MapRect returns the bounding box of r after the transform.
func (t Transform) MapRect(r RectF) RectF {
	if r.IsEmpty() {
		return RectF{}
	}
	if t.IsTranslation() {
		return RectF{X: r.X + t[2], Y: r.Y + t[5], W: r.W, H: r.H}
	}
	x0, y0 := t.TransformPoint(r.X, r.Y)
	x1, y1 := t.TransformPoint(r.Right(), r.Y)
	x2, y2 := t.TransformPoint(r.X, r.Bottom())
	x3, y3 := t.TransformPoint(r.Right(), r.Bottom())
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return RectF{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Translation returns the integer translation of the transform. It is only
// meaningful when IsIntegerTranslation is true.
func (t Transform) Translation() image.Point {
	return image.Pt(int(t[2]), int(t[5]))
}

// String implements fmt.Stringer.
func (t Transform) String() string {
	return redact.StringWithoutMarkers(t)
}

// SafeFormat implements redact.SafeFormatter.
func (t Transform) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("[%.3g %.3g %.3g; %.3g %.3g %.3g]",
		redact.Safe(t[0]), redact.Safe(t[1]), redact.Safe(t[2]),
		redact.Safe(t[3]), redact.Safe(t[4]), redact.Safe(t[5]))
}
