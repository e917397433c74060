// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
)

// Node is a node of a client Tree.
type Node struct {
	data          NodeData
	parent        *Node
	children      []*Node
	indexInParent int
}

// ID returns the node's id.
func (n *Node) ID() int32 { return n.data.ID }

// Data returns the node's last received data. ChildIDs is shared with the
// node and must not be modified.
func (n *Node) Data() *NodeData { return &n.data }

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children.
func (n *Node) Children() []*Node { return n.children }

// IndexInParent returns the node's position among its siblings.
func (n *Node) IndexInParent() int { return n.indexInParent }

// Tree is the client side of a TreeSerializer: it applies TreeUpdates and
// checks that they keep it a consistent tree.
type Tree struct {
	root  *Node
	nodes swiss.Map[int32, *Node]
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	t := &Tree{}
	t.nodes.Init(64)
	return t
}

// Root returns the root node, or nil if the tree is empty.
func (t *Tree) Root() *Node { return t.root }

// GetFromID returns the node with the given id, or nil.
func (t *Tree) GetFromID(id int32) *Node {
	n, _ := t.nodes.Get(id)
	return n
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int { return t.nodes.Len() }

type updateState struct {
	// pending holds nodes created as children whose own data has not
	// arrived yet.
	pending map[*Node]struct{}
	newRoot *Node
}

// Unserialize applies u. It fails if u would make the tree inconsistent:
// an unknown node that is not a new root, a node moving to another parent,
// a node listing the same child twice, or a new child whose data is
// missing. A failed update may have been partially applied.
func (t *Tree) Unserialize(u TreeUpdate) error {
	st := updateState{pending: make(map[*Node]struct{})}

	if u.NodeIDToClear != 0 {
		n := t.GetFromID(u.NodeIDToClear)
		if n == nil {
			return errors.Newf("bad node id to clear: %d", u.NodeIDToClear)
		}
		if n == t.root {
			t.destroySubtree(n)
			t.root = nil
		} else {
			for _, c := range n.children {
				t.destroySubtree(c)
			}
			n.children = nil
		}
	}

	for i := range u.Nodes {
		if err := t.updateNode(&u.Nodes[i], &st); err != nil {
			return err
		}
	}

	if len(st.pending) > 0 {
		var ids []int32
		for n := range st.pending {
			if t.GetFromID(n.ID()) == n {
				ids = append(ids, n.ID())
			}
		}
		if len(ids) > 0 {
			slices.Sort(ids)
			return errors.Newf("nodes left pending by the update: %v", ids)
		}
	}
	return nil
}

func (t *Tree) updateNode(d *NodeData, st *updateState) error {
	n := t.GetFromID(d.ID)
	if n != nil {
		delete(st.pending, n)
	} else {
		if !d.Role.IsDocumentRoot() {
			return errors.Newf("%d is not in the tree and not a new root", d.ID)
		}
		n = t.createNode(nil, d.ID, 0)
		st.newRoot = n
	}
	n.data = d.Clone()

	if err := t.deleteOldChildren(n, d.ChildIDs); err != nil {
		if st.newRoot != nil && st.newRoot != t.root {
			t.destroySubtree(st.newRoot)
		}
		return err
	}
	err := t.updateChildren(n, d.ChildIDs, st)

	if n == st.newRoot {
		if t.root != nil && t.root != n {
			t.destroySubtree(t.root)
		}
		t.root = n
	}
	return err
}

// deleteOldChildren destroys the children of n that are not in
// newChildIDs.
func (t *Tree) deleteOldChildren(n *Node, newChildIDs []int32) error {
	ids := make(map[int32]struct{}, len(newChildIDs))
	for _, id := range newChildIDs {
		if _, dup := ids[id]; dup {
			return errors.Newf("node %d has duplicate child id %d", n.ID(), id)
		}
		ids[id] = struct{}{}
	}
	for _, c := range n.children {
		if _, ok := ids[c.ID()]; !ok {
			t.destroySubtree(c)
		}
	}
	return nil
}

// updateChildren rebuilds the children of n from newChildIDs, reusing
// existing children and creating pending nodes for new ones. A node that
// already has another parent is skipped and reported as an error after
// the rest of the children are in place.
func (t *Tree) updateChildren(n *Node, newChildIDs []int32, st *updateState) error {
	var err error
	children := make([]*Node, 0, len(newChildIDs))
	for _, id := range newChildIDs {
		c := t.GetFromID(id)
		if c != nil {
			if c.parent != n {
				err = errors.CombineErrors(err,
					errors.Newf("node %d reparented from %d to %d", id, nodeID(c.parent), n.ID()))
				continue
			}
		} else {
			c = t.createNode(n, id, 0)
			st.pending[c] = struct{}{}
		}
		c.indexInParent = len(children)
		children = append(children, c)
	}
	n.children = children
	return err
}

func (t *Tree) createNode(parent *Node, id int32, index int) *Node {
	n := &Node{data: NodeData{ID: id}, parent: parent, indexInParent: index}
	t.nodes.Put(id, n)
	return n
}

func (t *Tree) destroySubtree(n *Node) {
	for _, c := range n.children {
		t.destroySubtree(c)
	}
	n.children = nil
	t.nodes.Delete(n.ID())
}

func nodeID(n *Node) int32 {
	if n == nil {
		return 0
	}
	return n.ID()
}

// String returns the tree, one node per line, indented by depth.
func (t *Tree) String() string {
	if t.root == nil {
		return "empty"
	}
	var b strings.Builder
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.data.String())
		b.WriteByte('\n')
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
	return b.String()
}

// Source returns t as a TreeSource, so that a client tree can itself be
// serialized to another client.
func (t *Tree) Source() TreeSource[*Node] {
	return treeSource{t}
}

type treeSource struct {
	t *Tree
}

var _ TreeSource[*Node] = treeSource{}

func (s treeSource) Root() *Node              { return s.t.root }
func (s treeSource) FromID(id int32) *Node    { return s.t.GetFromID(id) }
func (s treeSource) ID(n *Node) int32         { return n.ID() }
func (s treeSource) Children(n *Node) []*Node { return n.children }
func (s treeSource) Parent(n *Node) *Node     { return n.parent }
func (s treeSource) IsValid(n *Node) bool     { return n != nil }
func (s treeSource) IsEqual(a, b *Node) bool  { return a == b }
func (s treeSource) Null() *Node              { return nil }
func (s treeSource) SerializeNode(n *Node, out *NodeData) {
	*out = n.data
	out.ChildIDs = nil
}
