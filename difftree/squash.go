// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"fmt"
	"strings"
)

// Squash merges the levels splitting on names into a single level
// whose edge values are the concatenation of the original values.
//
// In each branch, the topmost node splitting on one of names becomes
// the merged level: every other axis of names is promoted to the level
// just below it and then spliced into it. One name of an already
// squashed level stands for the whole level. Names that occur nowhere
// in the tree are ignored.
//
// If an axis is missing from some branch below a merge point, Squash
// returns a *PromoteError and leaves the tree unchanged.
func (t *Tree) Squash(names ...string) error {
	var present []string
	for _, name := range names {
		if len(FindByName(t.Root, name)) > 0 {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return nil
	}
	n, err := squash(t.Root, present, nil)
	if err != nil {
		return err
	}
	t.Root = n
	return nil
}

func squash(n Node, names []string, path []string) (Node, error) {
	in, ok := n.(*Interior)
	if !ok {
		return n, nil
	}
	if !hasAny(in, names) {
		out := &Interior{Names: in.Names, Props: in.Props, Edges: make([]*Edge, len(in.Edges))}
		for i, e := range in.Edges {
			c, err := squash(e.Child, names, append(path[:len(path):len(path)], stepString(in.Names, e.Values)))
			if err != nil {
				return nil, err
			}
			out.Edges[i] = &Edge{Values: e.Values, Child: c}
		}
		return out, nil
	}
	cur := in
	for _, name := range names {
		if cur.Has(name) {
			continue
		}
		if len(cur.Edges) == 0 {
			return nil, &PromoteError{Axis: name, Paths: [][]string{path}}
		}
		children := make([]*Interior, len(cur.Edges))
		for i, e := range cur.Edges {
			p := append(path[:len(path):len(path)], stepString(cur.Names, e.Values))
			c, err := promoteChecked(e.Child, name, p)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		var err error
		if cur, err = merge(cur, children); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func hasAny(in *Interior, names []string) bool {
	for _, name := range names {
		if in.Has(name) {
			return true
		}
	}
	return false
}

// merge splices the level of children, given as children[i] for
// in.Edges[i], into in. Each pair of an edge e of in and an edge ce of
// its child becomes one edge with values e.Values+ce.Values leading to
// ce.Child, which takes over the properties of the spliced child.
func merge(in *Interior, children []*Interior) (*Interior, error) {
	sub := children[0].Names
	names := make([]string, 0, len(in.Names)+len(sub))
	names = append(append(names, in.Names...), sub...)
	out := &Interior{Names: names, Props: in.Props.clone()}
	for i, e := range in.Edges {
		c := children[i]
		if !sameNames(c.Names, sub) {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedLevels,
				strings.Join(sub, "#"), strings.Join(c.Names, "#"))
		}
		for _, ce := range c.Edges {
			vals := make(Tuple, 0, len(e.Values)+len(ce.Values))
			vals = append(append(vals, e.Values...), ce.Values...)
			child := withProps(ce.Child, c.Props)
			out.addEdge(vals, func() Node { return child })
		}
	}
	return out, nil
}

// AutoSquash squashes the levels nearest to the leaves into groups
// whose number of value combinations fits a budget, without changing
// the top-to-bottom order of the axes.
//
// budgets are given outermost first: the last budget bounds the group
// nearest to the leaves, the one before it the next group up, and so
// on. Levels are added to a group while the product of their distinct
// value counts stays within the budget. A group of a single level is
// left alone, so a level whose own value count exceeds its budget is
// never squashed. Levels above the last budgeted group are unchanged.
func (t *Tree) AutoSquash(budgets []int) error {
	if len(budgets) == 0 {
		return nil
	}
	levels := t.Levels()
	// Squash a copy so that a failure leaves t unchanged.
	work := &Tree{Root: t.Root}
	slot := len(budgets) - 1
	var group []string
	gathered := 1
	flush := func() error {
		if len(group) < 2 {
			return nil
		}
		// group was collected leaf first.
		names := make([]string, len(group))
		for i, name := range group {
			names[len(group)-1-i] = name
		}
		return work.Squash(names...)
	}
	for i := len(levels) - 1; i >= 0; i-- {
		l := levels[i]
		if gathered*len(l.Values) > budgets[slot] {
			if err := flush(); err != nil {
				return err
			}
			group, gathered = nil, 1
			if slot--; slot < 0 {
				break
			}
		}
		gathered *= len(l.Values)
		group = append(group, l.Names[0])
	}
	if err := flush(); err != nil {
		return err
	}
	t.Root = work.Root
	return nil
}
