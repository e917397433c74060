// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

// BlendMode is the mode a layer or render surface is composited into its
// target with.
type BlendMode uint8

// Blend mode constants. The zero value is source-over.
const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
)

const unknownStr = "Unknown"

// IsDefault reports whether mode is plain source-over compositing. Content
// composited with any other mode depends on what is behind it and can never
// occlude.
func (mode BlendMode) IsDefault() bool {
	return mode == BlendNormal
}

// String returns a human-readable name for the blend mode.
func (mode BlendMode) String() string {
	switch mode {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	case BlendDarken:
		return "Darken"
	case BlendLighten:
		return "Lighten"
	case BlendColorDodge:
		return "ColorDodge"
	case BlendColorBurn:
		return "ColorBurn"
	case BlendHardLight:
		return "HardLight"
	case BlendSoftLight:
		return "SoftLight"
	case BlendDifference:
		return "Difference"
	case BlendExclusion:
		return "Exclusion"
	// HSL blend modes
	case BlendHue:
		return "Hue"
	case BlendSaturation:
		return "Saturation"
	case BlendColor:
		return "Color"
	case BlendLuminosity:
		return "Luminosity"
	default:
		return unknownStr
	}
}
