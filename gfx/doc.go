// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gfx provides the geometry used by the compositor: integer
// rectangles (image.Rectangle), float rectangles, 2D affine transforms and
// regions made of disjoint axis-aligned rectangles.
//
// # Rounding
//
// Mapping a rectangle through a transform rarely lands on integer
// coordinates. Two roundings are offered and callers pick the one that keeps
// their answer conservative:
//   - enclosing: the smallest integer rectangle containing the result. Used
//     for content that must be drawn.
//   - enclosed: the largest integer rectangle inside the result. Used for
//     opaque content that is allowed to hide other content.
//
// # Coordinate System
//
// Origin at top-left, X grows right, Y grows down, matching image.Rectangle.
package gfx
