// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func nd(id int32, role Role, children ...int32) NodeData {
	return NodeData{ID: id, Role: role, ChildIDs: children}
}

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree()
	require.NoError(t, tree.Unserialize(TreeUpdate{Nodes: []NodeData{
		nd(1, RoleRootWebArea, 2, 3),
		nd(2, RoleGroup, 4),
		nd(4, RoleButton),
		nd(3, RoleStaticText),
	}}))
	return tree
}

func TestTreeUnserialize(t *testing.T) {
	tree := newTestTree(t)
	require.Equal(t, 4, tree.Size())
	require.Equal(t, int32(1), tree.Root().ID())
	require.Nil(t, tree.Root().Parent())

	n := tree.GetFromID(3)
	require.Equal(t, 1, n.IndexInParent())
	require.Same(t, tree.Root(), n.Parent())
	require.Equal(t, RoleStaticText, n.Data().Role)
	require.Same(t, tree.GetFromID(4), tree.GetFromID(2).Children()[0])
	require.Nil(t, tree.GetFromID(99))

	require.Equal(t, `id=1 rootWebArea child_ids=2,3
  id=2 group child_ids=4
    id=4 button
  id=3 staticText
`, tree.String())
}

func TestTreeUnserializeReordersChildren(t *testing.T) {
	tree := newTestTree(t)
	require.NoError(t, tree.Unserialize(TreeUpdate{Nodes: []NodeData{
		nd(1, RoleRootWebArea, 3, 2),
	}}))
	require.Equal(t, 0, tree.GetFromID(3).IndexInParent())
	require.Equal(t, 1, tree.GetFromID(2).IndexInParent())
	require.Equal(t, 4, tree.Size())
}

func TestTreeClear(t *testing.T) {
	tree := newTestTree(t)
	require.NoError(t, tree.Unserialize(TreeUpdate{
		NodeIDToClear: 2,
		Nodes:         []NodeData{nd(2, RoleGroup)},
	}))
	require.Equal(t, 3, tree.Size())
	require.Nil(t, tree.GetFromID(4))

	require.NoError(t, tree.Unserialize(TreeUpdate{
		NodeIDToClear: 1,
		Nodes:         []NodeData{nd(5, RoleDesktop)},
	}))
	require.Equal(t, 1, tree.Size())
	require.Equal(t, int32(5), tree.Root().ID())
}

func TestTreeNewRootReplacesOld(t *testing.T) {
	tree := newTestTree(t)
	require.NoError(t, tree.Unserialize(TreeUpdate{Nodes: []NodeData{
		nd(7, RoleRootWebArea, 8),
		nd(8, RoleButton),
	}}))
	require.Equal(t, 2, tree.Size())
	require.Equal(t, int32(7), tree.Root().ID())
	require.Nil(t, tree.GetFromID(1))
}

func TestTreeUnserializeErrors(t *testing.T) {
	testCases := []struct {
		name   string
		update TreeUpdate
		err    string
	}{
		{
			name:   "bad clear",
			update: TreeUpdate{NodeIDToClear: 99},
			err:    "bad node id to clear: 99",
		},
		{
			name:   "unknown node",
			update: TreeUpdate{Nodes: []NodeData{nd(9, RoleButton)}},
			err:    "9 is not in the tree and not a new root",
		},
		{
			name:   "duplicate child",
			update: TreeUpdate{Nodes: []NodeData{nd(3, RoleStaticText, 5, 5)}},
			err:    "node 3 has duplicate child id 5",
		},
		{
			name:   "reparent",
			update: TreeUpdate{Nodes: []NodeData{nd(3, RoleStaticText, 4)}},
			err:    "node 4 reparented from 2 to 3",
		},
		{
			name: "missing child data",
			update: TreeUpdate{Nodes: []NodeData{
				nd(3, RoleStaticText, 6, 5),
				nd(5, RoleButton),
			}},
			err: "nodes left pending by the update: [6]",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree := newTestTree(t)
			err := tree.Unserialize(tc.update)
			require.EqualError(t, err, tc.err)
		})
	}
}

func TestTreeDuplicateChildOfNewRoot(t *testing.T) {
	tree := NewTree()
	err := tree.Unserialize(TreeUpdate{Nodes: []NodeData{nd(1, RoleRootWebArea, 2, 2)}})
	require.EqualError(t, err, "node 1 has duplicate child id 2")
	require.Zero(t, tree.Size())
	require.Nil(t, tree.Root())
	require.Equal(t, "empty", tree.String())
}

func TestTreePendingNodeDestroyedLater(t *testing.T) {
	tree := newTestTree(t)
	// 6 is created as a child of 3 and dropped again before its data
	// arrives.
	require.NoError(t, tree.Unserialize(TreeUpdate{Nodes: []NodeData{
		nd(3, RoleStaticText, 6),
		nd(3, RoleStaticText),
	}}))
	require.Equal(t, 4, tree.Size())
}

func TestTreeKeepsOwnChildIDs(t *testing.T) {
	tree := NewTree()
	u := TreeUpdate{Nodes: []NodeData{nd(1, RoleRootWebArea, 2), nd(2, RoleButton)}}
	require.NoError(t, tree.Unserialize(u))
	u.Nodes[0].ChildIDs[0] = 42
	require.Equal(t, []int32{2}, tree.Root().Data().ChildIDs)
}
