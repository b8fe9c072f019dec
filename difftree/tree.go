// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// A Tree is a diff-tree together with the constants removed from it.
type Tree struct {
	Root Node

	// Removed maps every axis dropped by Autoremove to its single value.
	Removed map[string]string
	// RemovedProps are the properties of the dropped levels.
	RemovedProps Props
}

// Depth returns the number of levels below n: 0 for a leaf and one
// more than the deepest child otherwise. An interior node without
// edges has depth 1.
func Depth(n Node) int {
	in, ok := n.(*Interior)
	if !ok {
		return 0
	}
	d := 0
	for _, e := range in.Edges {
		if cd := Depth(e.Child); cd > d {
			d = cd
		}
	}
	return d + 1
}

// Depth returns the depth of the tree's root.
func (t *Tree) Depth() int { return Depth(t.Root) }

// NodesAtLevel returns the nodes reached by following exactly k edges
// from n, in edge order. Level 0 is n itself.
func NodesAtLevel(n Node, k int) []Node {
	if k == 0 {
		return []Node{n}
	}
	in, ok := n.(*Interior)
	if !ok {
		return nil
	}
	var nodes []Node
	for _, e := range in.Edges {
		nodes = append(nodes, NodesAtLevel(e.Child, k-1)...)
	}
	return nodes
}

// FindByName returns the topmost nodes splitting on axis, searching n
// depth first. The subtree below a match is not searched.
func FindByName(n Node, axis string) []*Interior {
	in, ok := n.(*Interior)
	if !ok {
		return nil
	}
	if in.Has(axis) {
		return []*Interior{in}
	}
	var found []*Interior
	for _, e := range in.Edges {
		found = append(found, FindByName(e.Child, axis)...)
	}
	return found
}

// A LevelInfo describes one level of a tree.
type LevelInfo struct {
	// Names are the axes of the first node on the level.
	Names []string
	// Values are the distinct edge tuples over all nodes of the level,
	// sorted by CompareTuples.
	Values []Tuple
	// Nodes is the number of nodes on the level.
	Nodes int
	// Uniform reports whether all nodes of the level split on Names.
	Uniform bool
}

// Levels describes the levels of the tree from the root down to the
// first level that contains a leaf.
func (t *Tree) Levels() []LevelInfo {
	var infos []LevelInfo
	for k := 0; ; k++ {
		nodes := NodesAtLevel(t.Root, k)
		if len(nodes) == 0 {
			break
		}
		info, ok := levelInfo(nodes)
		if !ok {
			break
		}
		infos = append(infos, info)
	}
	return infos
}

// levelInfo summarizes nodes. It returns false if any of them is a leaf.
func levelInfo(nodes []Node) (LevelInfo, bool) {
	info := LevelInfo{Nodes: len(nodes), Uniform: true}
	seen := make(map[string]bool)
	for i, n := range nodes {
		in, ok := n.(*Interior)
		if !ok {
			return LevelInfo{}, false
		}
		if i == 0 {
			info.Names = in.Names
		} else if !sameNames(info.Names, in.Names) {
			info.Uniform = false
		}
		for _, e := range in.Edges {
			k := tupleKey(e.Values)
			if !seen[k] {
				seen[k] = true
				info.Values = append(info.Values, e.Values)
			}
		}
	}
	SortTuples(info.Values)
	return info, true
}

// tupleKey returns a map key that is unique per tuple.
func tupleKey(t Tuple) string {
	return strings.Join(t, "\x00")
}

// A Step is one edge taken on a path from the root.
type Step struct {
	Node *Interior
	Edge *Edge
}

// Walk calls fn for n and every node below it in depth-first order,
// passing the steps taken from n. If fn returns SkipChildren the
// children of that node are not visited; any other non-nil error stops
// the walk and is returned.
func Walk(n Node, fn func(path []Step, n Node) error) error {
	err := walk(nil, n, fn)
	if err == SkipChildren {
		err = nil
	}
	return err
}

// SkipChildren can be returned by a Walk callback to skip the
// children of the visited node.
var SkipChildren = errors.New("skip children")

func walk(path []Step, n Node, fn func([]Step, Node) error) error {
	if err := fn(path, n); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	in, ok := n.(*Interior)
	if !ok {
		return nil
	}
	for _, e := range in.Edges {
		p := append(path[:len(path):len(path)], Step{in, e})
		if err := walk(p, e.Child, fn); err != nil {
			return err
		}
	}
	return nil
}

// A Path is one root-to-leaf path with the axis values it selects.
type Path struct {
	Values map[string]string
	Combos []Combo
}

// String returns the path as space-separated axis=value pairs in
// axis name order, followed by the attached records.
func (p Path) String() string {
	keys := make([]string, 0, len(p.Values))
	for k := range p.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%s", k, p.Values[k])
	}
	for _, c := range p.Combos {
		fmt.Fprintf(&b, " %v", map[string]string(c))
	}
	return b.String()
}

// Paths returns every root-to-leaf path below n.
func Paths(n Node) []Path {
	var paths []Path
	Walk(n, func(path []Step, n Node) error {
		leaf, ok := n.(*Leaf)
		if !ok {
			return nil
		}
		vals := make(map[string]string)
		for _, s := range path {
			for i, name := range s.Node.Names {
				vals[name] = s.Edge.Values[i]
			}
		}
		paths = append(paths, Path{Values: vals, Combos: leaf.Combos})
		return nil
	})
	return paths
}
