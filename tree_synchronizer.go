// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cc

// Commit makes tree mirror the authoring tree. Layers are matched by id:
// existing LayerImpls are reused, missing ones created and those without
// an authoring counterpart removed. Authored properties, the viewport and
// the device transform are copied over.
func (h *LayerTreeHost) Commit(tree *LayerTreeImpl) {
	seen := make(map[int]struct{}, tree.NumLayers())
	var push func(l *Layer) *LayerImpl
	push = func(l *Layer) *LayerImpl {
		impl := tree.LayerByID(l.id)
		if impl == nil {
			impl = tree.NewLayerImpl(l.id)
		}
		seen[l.id] = struct{}{}

		impl.props = l.props
		impl.props.Filters = l.props.Filters.Clone()
		impl.props.BackgroundFilters = l.props.BackgroundFilters.Clone()

		impl.RemoveAllChildren()
		for _, child := range l.children {
			impl.AddChild(push(child))
		}
		var mask, replica *LayerImpl
		if l.mask != nil {
			mask = push(l.mask)
		}
		if l.replica != nil {
			replica = push(l.replica)
		}
		impl.SetMaskLayer(mask)
		impl.SetReplicaLayer(replica)
		return impl
	}

	var root *LayerImpl
	if h.root != nil {
		root = push(h.root)
	}
	tree.SetRootLayer(root)
	tree.settings.viewport = h.settings.viewport
	tree.settings.deviceTransform = h.settings.deviceTransform

	var stale []*LayerImpl
	tree.layersByID.All(func(id int, l *LayerImpl) bool {
		if _, ok := seen[id]; !ok {
			stale = append(stale, l)
		}
		return true
	})
	for _, l := range stale {
		tree.RemoveLayer(l)
	}
	Logger().Debug("committed layer tree",
		"layers", tree.NumLayers(),
		"removed", len(stale))
}
