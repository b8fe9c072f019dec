// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

// Autoremove removes every level on which all nodes split on the same
// axes and expose a single value, since such a level does not
// distinguish any two runs. Levels are scanned from the root down to
// the first level containing a leaf.
//
// The removed axes and their values are recorded in t.Removed and the
// properties of the removed levels in t.RemovedProps. The properties of
// each removed node also move to its child, so every path keeps its
// own. Removed and RemovedProps accumulate over calls, and Autoremove
// returns them, so calling it again on an already reduced tree returns
// the same result.
func (t *Tree) Autoremove() (map[string]string, Props) {
	if t.Removed == nil {
		t.Removed = make(map[string]string)
	}
	for k := 0; ; {
		nodes := NodesAtLevel(t.Root, k)
		info, ok := levelInfo(nodes)
		if len(nodes) == 0 || !ok {
			break
		}
		if !info.Uniform || len(info.Values) != 1 || !singleEdged(nodes) {
			k++
			continue
		}
		for i, name := range info.Names {
			t.Removed[name] = info.Values[0][i]
		}
		for _, n := range nodes {
			t.RemovedProps = t.RemovedProps.merge(n.Properties())
		}
		// The level below moved up to k; look at k again.
		t.Root = spliceLevel(t.Root, k)
	}
	return t.Removed, t.RemovedProps
}

func singleEdged(nodes []Node) bool {
	for _, n := range nodes {
		if len(n.(*Interior).Edges) != 1 {
			return false
		}
	}
	return true
}

// spliceLevel returns a copy of n in which every node k edges below n
// is replaced by its only child, which takes over the node's
// properties.
func spliceLevel(n Node, k int) Node {
	in := n.(*Interior)
	if k == 0 {
		return withProps(in.Edges[0].Child, in.Props)
	}
	out := &Interior{Names: in.Names, Props: in.Props, Edges: make([]*Edge, len(in.Edges))}
	for i, e := range in.Edges {
		out.Edges[i] = &Edge{Values: e.Values, Child: spliceLevel(e.Child, k-1)}
	}
	return out
}
