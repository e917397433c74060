// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"

	"github.com/gogpu/cc"
)

// ErrNeedsFreshUpdate is returned by SerializeChanges when the change needs
// the client to clear part of its tree but out already holds nodes or a
// clear. The caller sends out as is and serializes the change again into an
// empty update.
var ErrNeedsFreshUpdate = errors.New("ax: change clears client nodes, serialize it into a fresh update")

// clientNode records a node the client is known to hold.
type clientNode struct {
	id       int32
	parent   *clientNode
	children []*clientNode
}

// TreeSerializer produces incremental TreeUpdates for a client that mirrors
// a source tree. It keeps a shadow of the nodes it has sent and only sends
// what the client is missing.
//
// The serializer is not safe for concurrent use. Calls must follow the order
// in which the source tree changed: after any change, SerializeChanges must
// be called for every changed node before the next change that depends on
// it. The serializer cannot detect a missed call and then sends less than
// needed.
type TreeSerializer[N any] struct {
	src TreeSource[N]

	clientRoot *clientNode
	clientIDs  swiss.Map[int32, *clientNode]

	// pendingClear is the client root to clear in the next update after a
	// reset caused by an inconsistent source.
	pendingClear int32

	metrics *Metrics
}

// NewTreeSerializer returns a serializer for src whose client holds
// nothing yet.
func NewTreeSerializer[N any](src TreeSource[N], opts ...SerializerOption) *TreeSerializer[N] {
	var o serializerOptions
	for _, opt := range opts {
		opt(&o)
	}
	s := &TreeSerializer[N]{src: src, metrics: o.metrics}
	s.clientIDs.Init(64)
	return s
}

// SetSource changes the source tree. The client state is kept, so the new
// source should share ids with the old one.
func (s *TreeSerializer[N]) SetSource(src TreeSource[N]) {
	s.src = src
}

// ClientTreeNodeCount returns the number of nodes the client is known to
// hold.
func (s *TreeSerializer[N]) ClientTreeNodeCount() int {
	return s.clientIDs.Len()
}

// Reset forgets everything sent to the client. The next SerializeChanges
// sends the whole tree from the root.
func (s *TreeSerializer[N]) Reset() {
	s.clientRoot = nil
	s.clientIDs.Clear()
	s.pendingClear = 0
}

// resetAfterError drops the client state and makes the next update clear
// the client's tree.
func (s *TreeSerializer[N]) resetAfterError() {
	root := s.clientRoot
	s.Reset()
	if root != nil {
		s.pendingClear = root.id
	}
	s.metrics.recordReset()
}

// DeleteClientSubtree forgets the descendants of node, so that the next
// SerializeChanges reaching node sends them again. Use it when a change
// affects descendants in a way that is not visible from the tree structure.
func (s *TreeSerializer[N]) DeleteClientSubtree(node N) {
	if c := s.clientNode(s.src.ID(node)); c != nil {
		s.deleteClientSubtree(c)
	}
}

func (s *TreeSerializer[N]) clientNode(id int32) *clientNode {
	c, _ := s.clientIDs.Get(id)
	return c
}

// deleteClientSubtree forgets the descendants of c but not c itself.
func (s *TreeSerializer[N]) deleteClientSubtree(c *clientNode) {
	for _, child := range c.children {
		s.clientIDs.Delete(child.id)
		s.deleteClientSubtree(child)
	}
	c.children = nil
}

// SerializeChanges appends to out the nodes needed to bring the client up
// to date after node changed, and may set out.NodeIDToClear.
//
// Several calls may append to the same update as long as none of them
// needs a clear after the first. A TreeUpdate carries a single clear that
// the client applies before any of its nodes, so a later clear would wipe
// nodes sent by an earlier call. Such a call returns ErrNeedsFreshUpdate
// and leaves the serializer unchanged.
//
// Any other error means the source tree was inconsistent, with a node
// listed as the child of two parents. The serializer then forgets the
// client state, and out must be discarded; the next update clears the
// client's tree and sends everything again.
func (s *TreeSerializer[N]) SerializeChanges(node N, out *TreeUpdate) error {
	start := len(out.Nodes)
	batched := start > 0 || out.NodeIDToClear != 0
	if s.pendingClear != 0 {
		if batched {
			return ErrNeedsFreshUpdate
		}
		out.NodeIDToClear = s.pendingClear
		s.pendingClear = 0
	}

	lca := s.leastCommonAncestor(node)

	// Widen the LCA until it covers the old and new parents of every known
	// node that moved, clearing the client subtree under it each time; the
	// cleared nodes may in turn have moved from elsewhere.
	for s.clientRoot != nil {
		needDelete := false
		if s.src.IsValid(lca) {
			needDelete = s.anyDescendantWasReparented(lca, &lca)
		}
		if batched && (needDelete || !s.src.IsValid(lca)) {
			return ErrNeedsFreshUpdate
		}
		if !s.src.IsValid(lca) {
			// No common ancestor: the client drops its whole tree.
			out.NodeIDToClear = s.clientRoot.id
			cc.Logger().Debug("ax: clearing client tree", "root", s.clientRoot.id)
			s.Reset()
			s.metrics.recordReset()
			break
		}
		if !needDelete {
			break
		}
		id := s.src.ID(lca)
		out.NodeIDToClear = id
		clientLCA := s.clientNode(id)
		if clientLCA == nil {
			return errors.AssertionFailedf("ax: common ancestor %d unknown to the client", id)
		}
		cc.Logger().Debug("ax: reparenting, clearing client subtree", "node", id)
		s.metrics.recordReparent()
		s.metrics.recordReset()
		s.deleteClientSubtree(clientLCA)
	}

	if !s.src.IsValid(lca) {
		lca = s.src.Root()
	}
	if !s.src.IsValid(lca) {
		return nil
	}

	if err := s.serializeChangedNodes(lca, out); err != nil {
		cc.Logger().Warn("ax: inconsistent source tree, resetting", "error", err)
		s.resetAfterError()
		return err
	}
	s.metrics.recordUpdate(len(out.Nodes)-start, s.clientIDs.Len())
	return nil
}

// leastCommonAncestor returns the deepest node that is an ancestor of node,
// or node itself, at the same position in the source and client trees. It
// returns the null node if there is none.
func (s *TreeSerializer[N]) leastCommonAncestor(node N) N {
	// Find the nearest ancestor the client knows about.
	var c *clientNode
	for s.src.IsValid(node) {
		if c = s.clientNode(s.src.ID(node)); c != nil {
			break
		}
		node = s.src.Parent(node)
	}
	return s.commonAncestor(node, c)
}

// commonAncestor compares the source ancestors of node with the client
// ancestors of c, root first, and returns the last node on which both
// chains agree.
func (s *TreeSerializer[N]) commonAncestor(node N, c *clientNode) N {
	null := s.src.Null()
	if !s.src.IsValid(node) || c == nil {
		return null
	}

	var ancestors []N
	for ; s.src.IsValid(node); node = s.src.Parent(node) {
		ancestors = append(ancestors, node)
	}
	var clientAncestors []*clientNode
	for ; c != nil; c = c.parent {
		clientAncestors = append(clientAncestors, c)
	}

	lca := null
	i, j := len(ancestors)-1, len(clientAncestors)-1
	for ; i >= 0 && j >= 0; i, j = i-1, j-1 {
		if s.src.ID(ancestors[i]) != clientAncestors[j].id {
			return lca
		}
		lca = ancestors[i]
	}
	return lca
}

// anyDescendantWasReparented reports whether a node below node that the
// client knows has a new parent. For each such node, *lca is widened to
// also cover its old parent; it becomes the null node when a moved node
// used to be the client root.
func (s *TreeSerializer[N]) anyDescendantWasReparented(node N, lca *N) bool {
	reparented := false
	id := s.src.ID(node)
	for _, child := range s.src.Children(node) {
		c := s.clientNode(s.src.ID(child))
		if c != nil {
			switch {
			case c.parent == nil:
				// The old client root moved under another node.
				*lca = s.src.Null()
				return true
			case c.parent.id != id:
				*lca = s.commonAncestor(*lca, c)
				reparented = true
			default:
				// Unchanged and not revisited by serialization.
				continue
			}
		}
		if s.anyDescendantWasReparented(child, lca) {
			reparented = true
		}
	}
	return reparented
}

// serializeChangedNodes appends node to out and recursively every child
// the client does not know yet, updating the client shadow to match.
func (s *TreeSerializer[N]) serializeChangedNodes(node N, out *TreeUpdate) error {
	id := s.src.ID(node)
	c := s.clientNode(id)
	if c == nil {
		// Only a new root can be unknown here.
		s.Reset()
		c = &clientNode{id: id}
		s.clientRoot = c
		s.clientIDs.Put(id, c)
	}

	children := s.src.Children(node)
	newChildIDs := make(map[int32]struct{}, len(children))
	for _, child := range children {
		if !s.src.IsValid(child) {
			continue
		}
		childID := s.src.ID(child)
		newChildIDs[childID] = struct{}{}
		if known := s.clientNode(childID); known != nil && known.parent != c {
			return errors.AssertionFailedf("ax: node %d is a child of %d but was sent as a child of %d",
				childID, id, parentID(known))
		}
	}

	// Drop children that went away before adding new ones, so that no node
	// is ever recorded under two parents.
	kept := make(map[int32]*clientNode, len(c.children))
	for _, old := range c.children {
		if _, ok := newChildIDs[old.id]; !ok {
			s.clientIDs.Delete(old.id)
			s.deleteClientSubtree(old)
			continue
		}
		kept[old.id] = old
	}
	c.children = c.children[:0]

	index := len(out.Nodes)
	out.Nodes = append(out.Nodes, NodeData{})
	s.src.SerializeNode(node, &out.Nodes[index])
	out.Nodes[index].ID = id
	if c == s.clientRoot && !out.Nodes[index].Role.IsDocumentRoot() {
		out.Nodes[index].Role = RoleRootWebArea
	}

	var childIDs []int32
	for _, child := range children {
		if !s.src.IsValid(child) {
			continue
		}
		childID := s.src.ID(child)
		// A child listed twice is only sent once.
		if _, ok := newChildIDs[childID]; !ok {
			continue
		}
		delete(newChildIDs, childID)
		childIDs = append(childIDs, childID)

		if reused, ok := kept[childID]; ok {
			c.children = append(c.children, reused)
			continue
		}
		nc := &clientNode{id: childID, parent: c}
		c.children = append(c.children, nc)
		s.clientIDs.Put(childID, nc)
		if err := s.serializeChangedNodes(child, out); err != nil {
			return err
		}
	}
	out.Nodes[index].ChildIDs = childIDs
	return nil
}

func parentID(c *clientNode) int32 {
	if c.parent == nil {
		return 0
	}
	return c.parent.id
}
