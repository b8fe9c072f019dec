// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"errors"
	"sort"
	"strings"
)

// A Tuple is the ordered list of values on an edge. Its length equals
// the number of names of the interior node owning the edge.
type Tuple []string

// Equal reports whether t and o hold the same values.
func (t Tuple) Equal(o Tuple) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// String returns the values joined with "/".
func (t Tuple) String() string {
	return strings.Join(t, "/")
}

// Props is metadata attached to a node, such as an axis label or unit.
// It is carried along by every transformation and used only for
// rendering.
type Props map[string]string

// merge copies all entries of o into p, allocating p if needed.
func (p Props) merge(o Props) Props {
	if len(o) == 0 {
		return p
	}
	if p == nil {
		p = make(Props, len(o))
	}
	for k, v := range o {
		p[k] = v
	}
	return p
}

func (p Props) clone() Props {
	return Props(nil).merge(p)
}

// Keys returns the property names in sorted order.
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// A Combo is one configuration record, keyed by column name.
type Combo map[string]string

// A Node is either a *Leaf or an *Interior.
type Node interface {
	// Properties returns the metadata attached to the node.
	Properties() Props

	node()
}

// A Leaf terminates a path. It has no axis to split on.
type Leaf struct {
	Props Props
	// Combos are the configuration records that produced the path
	// leading to this leaf.
	Combos []Combo
}

func (l *Leaf) Properties() Props { return l.Props }
func (*Leaf) node()                {}

// An Interior node splits on one or more axes. Names is never empty;
// a node that has been squashed carries the names of all merged axes.
type Interior struct {
	Names []string
	Props Props
	// Edges are sorted by CompareTuples and have pairwise distinct
	// Values.
	Edges []*Edge
}

func (n *Interior) Properties() Props { return n.Props }
func (*Interior) node()                {}

// An Edge connects an interior node to one of its children.
type Edge struct {
	Values Tuple
	Child  Node
}

// ErrNoNames is returned by NewInterior for an empty name list.
var ErrNoNames = errors.New("difftree: interior node without axis names")

// NewInterior returns an interior node splitting on names.
func NewInterior(names ...string) (*Interior, error) {
	if len(names) == 0 {
		return nil, ErrNoNames
	}
	return &Interior{Names: append([]string(nil), names...)}, nil
}

// Has reports whether n splits on axis.
func (n *Interior) Has(axis string) bool {
	for _, name := range n.Names {
		if name == axis {
			return true
		}
	}
	return false
}

// Edge returns the edge with the given values, or nil.
func (n *Interior) Edge(vals Tuple) *Edge {
	i, ok := n.search(vals)
	if !ok {
		return nil
	}
	return n.Edges[i]
}

func (n *Interior) search(vals Tuple) (int, bool) {
	i := sort.Search(len(n.Edges), func(i int) bool {
		return CompareTuples(n.Edges[i].Values, vals) >= 0
	})
	return i, i < len(n.Edges) && n.Edges[i].Values.Equal(vals)
}

// addEdge returns the edge for vals, inserting a new edge to the node
// returned by mk if there is none yet. The second result reports
// whether the edge was created.
func (n *Interior) addEdge(vals Tuple, mk func() Node) (*Edge, bool) {
	i, ok := n.search(vals)
	if ok {
		return n.Edges[i], false
	}
	e := &Edge{Values: append(Tuple(nil), vals...), Child: mk()}
	n.Edges = append(n.Edges, nil)
	copy(n.Edges[i+1:], n.Edges[i:])
	n.Edges[i] = e
	return e, true
}

// withProps returns n with p added to its properties. Properties
// already on n take precedence. n itself is not modified.
func withProps(n Node, p Props) Node {
	if len(p) == 0 {
		return n
	}
	props := p.clone().merge(n.Properties())
	switch n := n.(type) {
	case *Leaf:
		return &Leaf{Props: props, Combos: n.Combos}
	case *Interior:
		return &Interior{Names: n.Names, Props: props, Edges: n.Edges}
	}
	return n
}

// sameNames reports whether a and b name the same axes in the same order.
func sameNames(a, b []string) bool {
	return Tuple(a).Equal(Tuple(b))
}
