// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import (
	"strings"

	"github.com/cockroachdb/redact"
)

// TreeUpdate is an incremental update of a client tree.
//
// A client applies an update by first clearing the node NodeIDToClear, if
// any: the node's descendants are deleted, or the whole tree if it is the
// root. Then every node in Nodes is created or updated in order. A node is
// always listed before its new children, and every node in Nodes except a
// new root must be a child of a node already in the tree or listed earlier.
type TreeUpdate struct {
	// NodeIDToClear is the node whose subtree is cleared before the nodes
	// are applied. Zero means none.
	NodeIDToClear int32
	Nodes         []NodeData
}

// String implements fmt.Stringer. Nodes are indented by their depth within
// the update.
func (u TreeUpdate) String() string {
	return redact.StringWithoutMarkers(u)
}

// SafeFormat implements redact.SafeFormatter.
func (u TreeUpdate) SafeFormat(w redact.SafePrinter, _ rune) {
	if u.NodeIDToClear != 0 {
		w.Printf("clear node %d\n", redact.Safe(u.NodeIDToClear))
	}
	depth := make(map[int32]int, len(u.Nodes))
	for _, n := range u.Nodes {
		d := depth[n.ID]
		w.SafeString(redact.SafeString(strings.Repeat("  ", d)))
		w.Printf("%v\n", n)
		for _, c := range n.ChildIDs {
			depth[c] = d + 1
		}
	}
}
