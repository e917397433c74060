// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

// TreeSource gives a TreeSerializer read access to a tree of nodes of type
// N. N is usually a pointer or a handle; the null node returned by Null is
// never valid.
type TreeSource[N any] interface {
	// Root returns the root of the tree.
	Root() N
	// FromID returns the node with the given id, or the null node.
	FromID(id int32) N
	// ID returns the id of n. Ids are unique within the tree and never
	// zero.
	ID(n N) int32
	// Children returns the children of n in order.
	Children(n N) []N
	// Parent returns the parent of n, or the null node for the root.
	Parent(n N) N
	// IsValid reports whether n is a node rather than the null node.
	IsValid(n N) bool
	// IsEqual reports whether a and b are the same node.
	IsEqual(a, b N) bool
	// Null returns the null node.
	Null() N
	// SerializeNode fills out with everything about n except its child
	// ids.
	SerializeNode(n N, out *NodeData)
}
