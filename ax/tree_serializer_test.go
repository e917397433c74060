// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/kr/pretty"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestTreeSerializerDataDriven(t *testing.T) {
	var (
		src    *testSource
		s      *TreeSerializer[*testNode]
		client *Tree
	)
	datadriven.RunTest(t, "testdata/tree_serializer", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "source":
			src = parseTestSource(t, td.Input)
			if s == nil {
				s = NewTreeSerializer[*testNode](src)
				client = NewTree()
			} else {
				s.SetSource(src)
			}
			return ""

		case "serialize":
			var b strings.Builder
			var u TreeUpdate
			for _, arg := range td.CmdArgs {
				if arg.Key != "id" {
					td.Fatalf(t, "unknown argument %q", arg.Key)
				}
				for i := range arg.Vals {
					var id int
					arg.Scan(t, i, &id)
					n := src.FromID(int32(id))
					if n == nil {
						td.Fatalf(t, "no node %d", id)
					}
					if err := s.SerializeChanges(n, &u); err != nil {
						fmt.Fprintf(&b, "serialize error: %v\n", err)
					}
				}
			}
			b.WriteString(u.String())
			if err := client.Unserialize(u); err != nil {
				fmt.Fprintf(&b, "unserialize error: %v\n", err)
			}
			return b.String()

		case "delete-subtree":
			var id int
			td.ScanArgs(t, "id", &id)
			s.DeleteClientSubtree(src.FromID(int32(id)))
			return fmt.Sprintf("client nodes: %d\n", s.ClientTreeNodeCount())

		case "reset":
			s.Reset()
			return ""

		case "client":
			return client.String()

		case "count":
			return fmt.Sprintf("serializer: %d\nclient: %d\n", s.ClientTreeNodeCount(), client.Size())

		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
	})
}

// serializeChange returns the update for a change of n.
func serializeChange(t *testing.T, s *TreeSerializer[*testNode], n *testNode) TreeUpdate {
	t.Helper()
	var u TreeUpdate
	require.NoError(t, s.SerializeChanges(n, &u))
	return u
}

func TestSerializeDuplicateChildren(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 button
  3 button`)
	src.setChildren(1, 2, 2, 3)

	s := NewTreeSerializer[*testNode](src)
	u := serializeChange(t, s, src.root)
	require.Equal(t, []int32{2, 3}, u.Nodes[0].ChildIDs)
	require.Len(t, u.Nodes, 3)
	require.Equal(t, 3, s.ClientTreeNodeCount())

	client := NewTree()
	require.NoError(t, client.Unserialize(u))
	require.Equal(t, 3, client.Size())
}

func TestSerializeSkipsInvalidChildren(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 button`)
	src.root.children = append(src.root.children, nil)

	s := NewTreeSerializer[*testNode](src)
	u := serializeChange(t, s, src.root)
	require.Equal(t, []int32{2}, u.Nodes[0].ChildIDs)
	require.Len(t, u.Nodes, 2)
}

func TestSerializeInconsistentSource(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 group
    4 button name=ok
  3 group`)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s := NewTreeSerializer[*testNode](src, WithMetrics(m))
	client := NewTree()
	require.NoError(t, client.Unserialize(serializeChange(t, s, src.root)))

	// Node 4 is now listed under 3 but still also under 2.
	src.setChildren(3, 4)
	var bad TreeUpdate
	err := s.SerializeChanges(src.FromID(3), &bad)
	require.Error(t, err)
	require.True(t, errors.IsAssertionFailure(err), "%+v", err)
	require.Equal(t, 0, s.ClientTreeNodeCount())

	// Once the source is fixed, the next update clears the client and
	// sends the whole tree again.
	src.setChildren(2)
	u := serializeChange(t, s, src.FromID(4))
	require.Equal(t, int32(1), u.NodeIDToClear)
	require.Equal(t, `clear node 1
id=1 rootWebArea child_ids=2,3
  id=2 group
  id=3 group child_ids=4
    id=4 button name=ok
`, u.String())
	require.NoError(t, client.Unserialize(u))
	require.Equal(t, 4, client.Size())
	require.Equal(t, s.ClientTreeNodeCount(), client.Size())

	require.Equal(t, 2.0, counterValue(t, m.Resets))
	require.Equal(t, 1.0, counterValue(t, m.Reparents))
}

func TestResetClearsPendingClear(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 group
    3 button
  4 group`)
	s := NewTreeSerializer[*testNode](src)
	serializeChange(t, s, src.root)
	src.setChildren(4, 3)
	var bad TreeUpdate
	require.Error(t, s.SerializeChanges(src.FromID(4), &bad))

	s.Reset()
	src.setChildren(2)
	u := serializeChange(t, s, src.root)
	require.Zero(t, u.NodeIDToClear)
	require.Len(t, u.Nodes, 4)
}

func TestSerializeEmptySource(t *testing.T) {
	s := NewTreeSerializer[*testNode](&testSource{nodes: map[int32]*testNode{}})
	var u TreeUpdate
	require.NoError(t, s.SerializeChanges(nil, &u))
	require.Zero(t, u.NodeIDToClear)
	require.Empty(t, u.Nodes)
	require.Zero(t, s.ClientTreeNodeCount())
}

func TestSerializeMultipleChangesInOneUpdate(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 button name=a
  3 button name=b`)
	s := NewTreeSerializer[*testNode](src)
	client := NewTree()
	require.NoError(t, client.Unserialize(serializeChange(t, s, src.root)))

	src.FromID(2).data.Name = "x"
	src.FromID(3).data.Name = "y"
	var u TreeUpdate
	require.NoError(t, s.SerializeChanges(src.FromID(2), &u))
	require.NoError(t, s.SerializeChanges(src.FromID(3), &u))
	require.Len(t, u.Nodes, 2)
	require.NoError(t, client.Unserialize(u))
	require.Equal(t, "x", client.GetFromID(2).Data().Name)
	require.Equal(t, "y", client.GetFromID(3).Data().Name)
}

func TestSerializeInsertThenMoveInOneUpdate(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 group
    3 button
    4 list
      5 listItem
    9 group`)
	s := NewTreeSerializer[*testNode](src)
	client := NewTree()
	require.NoError(t, client.Unserialize(serializeChange(t, s, src.root)))

	src.setChildren(9, 10)
	var u TreeUpdate
	require.NoError(t, s.SerializeChanges(src.FromID(10), &u))

	// Moving 5 needs node 2 cleared, which would drop 10 from the client
	// before its parent is sent again.
	src.setChildren(4)
	src.setChildren(3, 5)
	err := s.SerializeChanges(src.FromID(3), &u)
	require.True(t, errors.Is(err, ErrNeedsFreshUpdate), "%+v", err)
	require.Zero(t, u.NodeIDToClear)
	require.Len(t, u.Nodes, 2)
	require.Equal(t, []int32{10}, u.Nodes[0].ChildIDs)
	require.Equal(t, 7, s.ClientTreeNodeCount())
	require.NoError(t, client.Unserialize(u))

	u = serializeChange(t, s, src.FromID(3))
	require.Equal(t, int32(2), u.NodeIDToClear)
	require.NoError(t, client.Unserialize(u))
	require.Equal(t, int32(3), client.GetFromID(5).Parent().ID())
	require.Equal(t, int32(9), client.GetFromID(10).Parent().ID())
	require.Equal(t, s.ClientTreeNodeCount(), client.Size())
}

func TestSerializeMoveThenInsertInOneUpdate(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 group
    3 button
    4 list
      5 listItem
  6 group`)
	s := NewTreeSerializer[*testNode](src)
	client := NewTree()
	require.NoError(t, client.Unserialize(serializeChange(t, s, src.root)))

	src.setChildren(4)
	src.setChildren(3, 5)
	var u TreeUpdate
	require.NoError(t, s.SerializeChanges(src.FromID(3), &u))
	require.Equal(t, int32(2), u.NodeIDToClear)

	// An insertion elsewhere needs no clear and joins the same update.
	src.setChildren(6, 11)
	require.NoError(t, s.SerializeChanges(src.FromID(11), &u))
	require.Equal(t, int32(2), u.NodeIDToClear)
	require.NoError(t, client.Unserialize(u))
	require.Equal(t, int32(3), client.GetFromID(5).Parent().ID())
	require.Equal(t, int32(6), client.GetFromID(11).Parent().ID())
	require.Equal(t, s.ClientTreeNodeCount(), client.Size())
}

func TestSerializeTwoMovesInOneUpdate(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 group
    3 button
    4 list
      5 listItem
  6 group
    7 link
  8 group`)
	s := NewTreeSerializer[*testNode](src)
	client := NewTree()
	require.NoError(t, client.Unserialize(serializeChange(t, s, src.root)))

	src.setChildren(4)
	src.setChildren(3, 5)
	var u TreeUpdate
	require.NoError(t, s.SerializeChanges(src.FromID(3), &u))

	src.setChildren(6)
	src.setChildren(8, 7)
	err := s.SerializeChanges(src.FromID(8), &u)
	require.True(t, errors.Is(err, ErrNeedsFreshUpdate), "%+v", err)
	require.Equal(t, int32(2), u.NodeIDToClear)
	require.NoError(t, client.Unserialize(u))
	require.Equal(t, int32(3), client.GetFromID(5).Parent().ID())
	require.Equal(t, int32(6), client.GetFromID(7).Parent().ID())

	u = serializeChange(t, s, src.FromID(8))
	require.Equal(t, int32(1), u.NodeIDToClear)
	require.NoError(t, client.Unserialize(u))
	require.Equal(t, int32(3), client.GetFromID(5).Parent().ID())
	require.Equal(t, int32(8), client.GetFromID(7).Parent().ID())
	require.Equal(t, 8, client.Size())
	require.Equal(t, s.ClientTreeNodeCount(), client.Size())
}

func TestSerializePendingClearNeedsFreshUpdate(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 group
    3 button
  4 group`)
	s := NewTreeSerializer[*testNode](src)
	serializeChange(t, s, src.root)
	src.setChildren(4, 3)
	var bad TreeUpdate
	require.Error(t, s.SerializeChanges(src.FromID(4), &bad))
	src.setChildren(2)

	u := TreeUpdate{Nodes: []NodeData{{ID: 4}}}
	err := s.SerializeChanges(src.root, &u)
	require.True(t, errors.Is(err, ErrNeedsFreshUpdate), "%+v", err)
	require.Len(t, u.Nodes, 1)

	u = serializeChange(t, s, src.root)
	require.Equal(t, int32(1), u.NodeIDToClear)
	require.Len(t, u.Nodes, 4)
}

func TestSerializerMetrics(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea
  2 group
    3 button
  4 staticText`)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s := NewTreeSerializer[*testNode](src, WithMetrics(m))

	serializeChange(t, s, src.root)
	serializeChange(t, s, src.FromID(3))

	require.Equal(t, 2.0, counterValue(t, m.Updates))
	require.Equal(t, 5.0, counterValue(t, m.NodesSerialized))
	require.Equal(t, 0.0, counterValue(t, m.Resets))

	var g dto.Metric
	require.NoError(t, m.ClientSize.Write(&g))
	require.Equal(t, 4.0, g.GetGauge().GetValue())

	// Moving 3 under 4 clears the root's subtree.
	src.setChildren(2)
	src.setChildren(4, 3)
	serializeChange(t, s, src.FromID(4))
	require.Equal(t, 1.0, counterValue(t, m.Reparents))
	require.Equal(t, 1.0, counterValue(t, m.Resets))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.ElementsMatch(t, []string{
		"ax_serializer_updates_total",
		"ax_serializer_nodes_serialized_total",
		"ax_serializer_resets_total",
		"ax_serializer_reparents_total",
		"ax_serializer_client_nodes",
	}, names)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.recordUpdate(1, 1)
	m.recordReset()
	m.recordReparent()
	require.NotNil(t, NewMetrics(nil))
}

// TestSerializeClientTree relays a client tree to a second client.
func TestSerializeClientTree(t *testing.T) {
	src := parseTestSource(t, `
1 rootWebArea name=page
  2 list
    3 listItem FOCUSABLE rect=0,0,10,10 name=a
    4 listItem SELECTED name=b value=v
  5 textField FOCUSABLE FOCUSED`)
	s := NewTreeSerializer[*testNode](src)
	first := NewTree()
	require.NoError(t, first.Unserialize(serializeChange(t, s, src.root)))

	relay := NewTreeSerializer[*Node](first.Source())
	var u TreeUpdate
	require.NoError(t, relay.SerializeChanges(first.Root(), &u))
	second := NewTree()
	require.NoError(t, second.Unserialize(u))

	if diff := pretty.Diff(first.String(), second.String()); len(diff) > 0 {
		t.Fatalf("relayed tree differs:\n%s", strings.Join(diff, "\n"))
	}
	require.Equal(t, 5, second.Size())
	require.Equal(t, first.GetFromID(3).Data().Location, second.GetFromID(3).Data().Location)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
