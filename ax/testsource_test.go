// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import (
	"image"
	"strconv"
	"strings"
	"testing"
)

type testNode struct {
	data     NodeData
	parent   *testNode
	children []*testNode
}

// testSource is a TreeSource over testNodes. Its tree may be edited
// directly, including into shapes that are not trees.
type testSource struct {
	root  *testNode
	nodes map[int32]*testNode
}

var _ TreeSource[*testNode] = (*testSource)(nil)

func (s *testSource) Root() *testNode                  { return s.root }
func (s *testSource) FromID(id int32) *testNode        { return s.nodes[id] }
func (s *testSource) ID(n *testNode) int32             { return n.data.ID }
func (s *testSource) Children(n *testNode) []*testNode { return n.children }
func (s *testSource) Parent(n *testNode) *testNode     { return n.parent }
func (s *testSource) IsValid(n *testNode) bool         { return n != nil }
func (s *testSource) IsEqual(a, b *testNode) bool      { return a == b }
func (s *testSource) Null() *testNode                  { return nil }

func (s *testSource) SerializeNode(n *testNode, out *NodeData) {
	*out = n.data
	out.ChildIDs = nil
}

// node returns the node with the given id, creating it if needed.
func (s *testSource) node(id int32) *testNode {
	n, ok := s.nodes[id]
	if !ok {
		n = &testNode{data: NodeData{ID: id}}
		s.nodes[id] = n
	}
	return n
}

// setChildren replaces the children of the node with id parent. The
// children's parent pointers are updated, but they are not removed from
// their previous parents.
func (s *testSource) setChildren(parent int32, ids ...int32) {
	p := s.node(parent)
	p.children = p.children[:0]
	for _, id := range ids {
		c := s.node(id)
		c.parent = p
		p.children = append(p.children, c)
	}
}

// parseTestSource builds a source tree from an indented description, one
// node per line:
//
//	<id> <role> [STATE...] [rect=x,y,w,h] [name=...] [value=...]
//
// Indentation is two spaces per level.
func parseTestSource(t *testing.T, input string) *testSource {
	t.Helper()
	s := &testSource{nodes: make(map[int32]*testNode)}
	var stack []*testNode
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		depth := (len(line) - len(trimmed)) / 2
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			t.Fatalf("bad node line: %q", line)
		}

		id, err := strconv.Atoi(fields[0])
		if err != nil {
			t.Fatalf("bad node id in %q: %v", line, err)
		}
		if _, ok := s.nodes[int32(id)]; ok {
			t.Fatalf("duplicate node id %d", id)
		}
		n := s.node(int32(id))
		role, ok := ParseRole(fields[1])
		if !ok {
			t.Fatalf("unknown role %q", fields[1])
		}
		n.data.Role = role

		for _, f := range fields[2:] {
			key, val, _ := strings.Cut(f, "=")
			switch key {
			case "name":
				n.data.Name = val
			case "value":
				n.data.Value = val
			case "rect":
				var v [4]int
				parts := strings.Split(val, ",")
				if len(parts) != 4 {
					t.Fatalf("bad rect %q", val)
				}
				for i, p := range parts {
					if v[i], err = strconv.Atoi(p); err != nil {
						t.Fatalf("bad rect %q: %v", val, err)
					}
				}
				n.data.Location = image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3])
			default:
				st, ok := ParseState(f)
				if !ok {
					t.Fatalf("unknown attribute %q", f)
				}
				n.data.State |= st
			}
		}

		if depth > len(stack) {
			t.Fatalf("bad indentation: %q", line)
		}
		stack = stack[:depth]
		if depth == 0 {
			if s.root != nil {
				t.Fatalf("second root: %q", line)
			}
			s.root = n
		} else {
			p := stack[depth-1]
			n.parent = p
			p.children = append(p.children, n)
		}
		stack = append(stack, n)
	}
	return s
}
