// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"image"
	"math"
	"slices"
)

// FilterType identifies a filter operation.
type FilterType uint8

// Filter type constants.
const (
	FilterGrayscale FilterType = iota
	FilterSepia
	FilterSaturate
	FilterHueRotate
	FilterInvert
	FilterBrightness
	FilterContrast
	FilterOpacity
	FilterBlur
	FilterDropShadow
	FilterColorMatrix
	FilterZoom
	FilterSaturatingBrightness
	FilterAlphaThreshold
)

// String returns a human-readable name for the filter type.
func (ft FilterType) String() string {
	switch ft {
	case FilterGrayscale:
		return "Grayscale"
	case FilterSepia:
		return "Sepia"
	case FilterSaturate:
		return "Saturate"
	case FilterHueRotate:
		return "HueRotate"
	case FilterInvert:
		return "Invert"
	case FilterBrightness:
		return "Brightness"
	case FilterContrast:
		return "Contrast"
	case FilterOpacity:
		return "Opacity"
	case FilterBlur:
		return "Blur"
	case FilterDropShadow:
		return "DropShadow"
	case FilterColorMatrix:
		return "ColorMatrix"
	case FilterZoom:
		return "Zoom"
	case FilterSaturatingBrightness:
		return "SaturatingBrightness"
	case FilterAlphaThreshold:
		return "AlphaThreshold"
	default:
		return unknownStr
	}
}

// FilterOperation is a single filter applied to a layer's content or to
// the content behind it.
type FilterOperation struct {
	Type FilterType
	// Amount is the filter parameter: the standard deviation for blur and
	// drop shadow, the factor for the color filters, the zoom level for zoom.
	Amount float32
	// DropShadowOffset is the shadow offset for FilterDropShadow.
	DropShadowOffset image.Point
	// Matrix is the 4x5 row-major color matrix for FilterColorMatrix.
	Matrix [20]float32
	// ZoomInset is the inset of the magnified area for FilterZoom.
	ZoomInset int
}

// Blur returns a Gaussian blur with the given standard deviation.
func Blur(sigma float32) FilterOperation {
	return FilterOperation{Type: FilterBlur, Amount: sigma}
}

// DropShadow returns a drop shadow with the given offset and blur.
func DropShadow(offset image.Point, sigma float32) FilterOperation {
	return FilterOperation{Type: FilterDropShadow, Amount: sigma, DropShadowOffset: offset}
}

// Opacity returns an opacity filter.
func Opacity(amount float32) FilterOperation {
	return FilterOperation{Type: FilterOpacity, Amount: amount}
}

// Grayscale returns a grayscale filter.
func Grayscale(amount float32) FilterOperation {
	return FilterOperation{Type: FilterGrayscale, Amount: amount}
}

// ColorMatrix returns a color matrix filter.
func ColorMatrix(m [20]float32) FilterOperation {
	return FilterOperation{Type: FilterColorMatrix, Matrix: m}
}

// Zoom returns a zoom filter magnifying by amount with the given inset.
func Zoom(amount float32, inset int) FilterOperation {
	return FilterOperation{Type: FilterZoom, Amount: amount, ZoomInset: inset}
}

// movesPixels reports whether the output at a pixel depends on input pixels
// elsewhere.
func (op FilterOperation) movesPixels() bool {
	switch op.Type {
	case FilterBlur, FilterDropShadow, FilterZoom:
		return true
	default:
		return false
	}
}

// affectsOpacity reports whether the filter can make opaque pixels
// translucent.
func (op FilterOperation) affectsOpacity() bool {
	switch op.Type {
	case FilterOpacity, FilterBlur, FilterDropShadow, FilterZoom, FilterAlphaThreshold:
		return true
	case FilterColorMatrix:
		m := op.Matrix
		return m[15] != 0 || m[16] != 0 || m[17] != 0 || m[18] != 1 || m[19] != 0
	default:
		return false
	}
}

// FilterOperations is a list of filters applied in order.
type FilterOperations []FilterOperation

// IsEmpty reports whether ops holds no filters.
func (ops FilterOperations) IsEmpty() bool {
	return len(ops) == 0
}

// Clone returns a copy of ops that does not share storage with it.
func (ops FilterOperations) Clone() FilterOperations {
	return slices.Clone(ops)
}

// HasFilterThatMovesPixels reports whether any filter samples pixels other
// than the one it writes.
func (ops FilterOperations) HasFilterThatMovesPixels() bool {
	return slices.ContainsFunc(ops, FilterOperation.movesPixels)
}

// HasFilterThatAffectsOpacity reports whether any filter can change alpha.
func (ops FilterOperations) HasFilterThatAffectsOpacity() bool {
	return slices.ContainsFunc(ops, FilterOperation.affectsOpacity)
}

// Outsets returns how far the filters can spread content beyond its
// bounds on each side.
func (ops FilterOperations) Outsets() (top, right, bottom, left int) {
	for _, op := range ops {
		switch op.Type {
		case FilterBlur:
			spread := blurSpread(op.Amount)
			top += spread
			right += spread
			bottom += spread
			left += spread
		case FilterDropShadow:
			spread := blurSpread(op.Amount)
			top += max(0, spread-op.DropShadowOffset.Y)
			right += max(0, spread+op.DropShadowOffset.X)
			bottom += max(0, spread+op.DropShadowOffset.Y)
			left += max(0, spread-op.DropShadowOffset.X)
		}
	}
	return top, right, bottom, left
}

// blurSpread is the reach of a Gaussian blur, three standard deviations.
func blurSpread(sigma float32) int {
	return int(math.Ceil(3 * float64(sigma)))
}
