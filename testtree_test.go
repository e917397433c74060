// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"testing"

	"github.com/gogpu/cc/gfx"
)

// parseTestTree builds a LayerTreeImpl from an indented description, one
// layer per line, two spaces per level:
//
//	1 bounds=100x100 draws
//	  2 bounds=50x50 surface
//	    3 bounds=10x10 draws opaque
//
// Each line starts with the layer id, followed by flags (draws, opaque,
// surface, masks, hidden, copy) and key=value properties (bounds, pos,
// opacity, rotate, scale, opaque-rect, blend, filter, bg-filter, sorting,
// mask, replica).
func parseTestTree(t testing.TB, viewport image.Rectangle, input string) *LayerTreeImpl {
	t.Helper()
	tree := NewLayerTreeImpl(WithViewport(viewport))
	type frame struct {
		depth int
		layer *LayerImpl
	}
	var stack []frame
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		depth := (len(line) - len(strings.TrimLeft(line, " "))) / 2
		fields := strings.Fields(line)
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			t.Fatalf("bad layer id in %q: %v", line, err)
		}
		l := tree.NewLayerImpl(id)
		for _, f := range fields[1:] {
			applyTestProperty(t, tree, l, f)
		}
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			if tree.RootLayer() != nil {
				t.Fatalf("second root %d", id)
			}
			tree.SetRootLayer(l)
		} else {
			stack[len(stack)-1].layer.AddChild(l)
		}
		stack = append(stack, frame{depth: depth, layer: l})
	}
	return tree
}

func applyTestProperty(t testing.TB, tree *LayerTreeImpl, l *LayerImpl, f string) {
	t.Helper()
	props := l.Properties()
	key, val, _ := strings.Cut(f, "=")
	switch key {
	case "draws":
		props.DrawsContent = true
	case "opaque":
		props.ContentsOpaque = true
	case "surface":
		props.ForceRenderSurface = true
	case "masks":
		props.MasksToBounds = true
	case "hidden":
		props.HideLayerAndSubtree = true
	case "copy":
		props.HasCopyRequest = true
	case "bounds":
		var w, h int
		mustSscanf(t, val, "%dx%d", &w, &h)
		props.Bounds = image.Pt(w, h)
	case "pos":
		mustSscanf(t, val, "%d,%d", &props.Position.X, &props.Position.Y)
	case "opacity":
		o, err := strconv.ParseFloat(val, 32)
		if err != nil {
			t.Fatal(err)
		}
		props.Opacity = float32(o)
	case "rotate":
		deg, err := strconv.ParseFloat(val, 64)
		if err != nil {
			t.Fatal(err)
		}
		props.Transform = props.Transform.Multiply(gfx.RotateDegrees(deg))
	case "scale":
		s, err := strconv.ParseFloat(val, 64)
		if err != nil {
			t.Fatal(err)
		}
		props.Transform = props.Transform.Multiply(gfx.Scale(s, s))
	case "opaque-rect":
		var x, y, w, h int
		mustSscanf(t, val, "%d,%d,%d,%d", &x, &y, &w, &h)
		props.OpaqueContentsRect = gfx.R(x, y, w, h)
	case "blend":
		props.BlendMode = BlendMultiply
	case "filter":
		props.Filters = append(props.Filters, parseTestFilter(t, val))
	case "bg-filter":
		props.BackgroundFilters = append(props.BackgroundFilters, parseTestFilter(t, val))
	case "sorting":
		id, err := strconv.Atoi(val)
		if err != nil {
			t.Fatal(err)
		}
		props.SortingContextID = id
	case "mask", "replica":
		id, err := strconv.Atoi(val)
		if err != nil {
			t.Fatal(err)
		}
		attachment := tree.NewLayerImpl(id)
		attachment.Properties().Bounds = props.Bounds
		if key == "mask" {
			attachment.Properties().DrawsContent = true
			l.SetMaskLayer(attachment)
		} else {
			l.SetReplicaLayer(attachment)
		}
	default:
		t.Fatalf("unknown layer property %q", f)
	}
}

func parseTestFilter(t testing.TB, s string) FilterOperation {
	t.Helper()
	name, arg, _ := strings.Cut(s, ":")
	amount, err := strconv.ParseFloat(arg, 32)
	if err != nil {
		t.Fatalf("bad filter %q: %v", s, err)
	}
	switch name {
	case "blur":
		return Blur(float32(amount))
	case "opacity":
		return Opacity(float32(amount))
	case "grayscale":
		return Grayscale(float32(amount))
	default:
		t.Fatalf("unknown filter %q", name)
		return FilterOperation{}
	}
}

func mustSscanf(t testing.TB, s, format string, args ...any) {
	t.Helper()
	if _, err := fmt.Sscanf(s, format, args...); err != nil {
		t.Fatalf("parsing %q as %q: %v", s, format, err)
	}
}

// formatSurfaces prints every surface of list with its content rect and
// layer list.
func formatSurfaces[L CompositableNode[L]](list []L) string {
	var b strings.Builder
	for _, owner := range list {
		s := owner.RenderSurface()
		fmt.Fprintf(&b, "surface %d content=%v:", owner.ID(), s.ContentRect)
		for _, l := range s.LayerList {
			fmt.Fprintf(&b, " %d", l.ID())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatPosition prints one iterator step.
func formatPosition[L CompositableNode[L]](pos LayerIteratorPosition[L]) string {
	role := "itself"
	switch {
	case pos.RepresentsTargetRenderSurface:
		role = "target-surface"
	case pos.RepresentsContributingRenderSurface:
		role = "contributing"
	}
	return fmt.Sprintf("%d %s target=%d", pos.CurrentLayer.ID(), role, pos.TargetRenderSurfaceLayer.ID())
}

// findLayer returns the layer with the given id under root.
func findLayer[L CompositableNode[L]](root L, id int) L {
	if isNil(root) || root.ID() == id {
		return root
	}
	for _, attachment := range []L{root.MaskLayer(), root.ReplicaLayer()} {
		if !isNil(attachment) {
			if l := findLayer(attachment, id); !isNil(l) {
				return l
			}
		}
	}
	for _, c := range root.Children() {
		if l := findLayer(c, id); !isNil(l) {
			return l
		}
	}
	var zero L
	return zero
}
