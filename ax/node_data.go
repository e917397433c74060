// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import (
	"image"
	"slices"

	"github.com/cockroachdb/redact"
)

// NodeData is the serialized form of one node. Names and values are user
// content and are redacted in safe formatting; ids, roles and states are
// not.
type NodeData struct {
	ID       int32
	Role     Role
	State    State
	Name     string
	Value    string
	Location image.Rectangle
	// ChildIDs lists the ids of the node's children in order. It is filled
	// in by the serializer, not by TreeSource.SerializeNode.
	ChildIDs []int32
}

// HasState reports whether all states in s are set on the node.
func (d *NodeData) HasState(s State) bool {
	return d.State.Has(s)
}

// Clone returns a copy of d that does not share ChildIDs with it.
func (d NodeData) Clone() NodeData {
	d.ChildIDs = slices.Clone(d.ChildIDs)
	return d
}

// String implements fmt.Stringer.
func (d NodeData) String() string {
	return redact.StringWithoutMarkers(d)
}

// SafeFormat implements redact.SafeFormatter.
func (d NodeData) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("id=%d %s", redact.Safe(d.ID), d.Role)
	if d.State != 0 {
		w.Printf(" %s", d.State)
	}
	if !d.Location.Empty() {
		w.Printf(" (%d, %d)-(%d, %d)",
			redact.Safe(d.Location.Min.X), redact.Safe(d.Location.Min.Y),
			redact.Safe(d.Location.Max.X), redact.Safe(d.Location.Max.Y))
	}
	if d.Name != "" {
		w.Printf(" name=%s", d.Name)
	}
	if d.Value != "" {
		w.Printf(" value=%s", d.Value)
	}
	if len(d.ChildIDs) > 0 {
		w.SafeString(" child_ids=")
		for i, id := range d.ChildIDs {
			if i > 0 {
				w.SafeRune(',')
			}
			w.Print(redact.Safe(id))
		}
	}
}
