// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"errors"
	"fmt"
	"strings"
)

// A PromoteError reports the branches of a tree that do not contain
// the axis being promoted.
type PromoteError struct {
	Axis string
	// Paths lists each branch lacking Axis as "axis=value" steps from
	// the node promotion started at.
	Paths [][]string
}

func (e *PromoteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "difftree: cannot promote %s: missing in %d branch(es)", e.Axis, len(e.Paths))
	for i, p := range e.Paths {
		if i == 3 {
			b.WriteString(", ...")
			break
		}
		fmt.Fprintf(&b, "; /%s", strings.Join(p, "/"))
	}
	return b.String()
}

// ErrMixedLevels is returned when a rewrite needs the children of a
// node to split on the same axes but they do not.
var ErrMixedLevels = errors.New("difftree: children split on different axes")

// Promote rewrites the tree so that axis becomes the root level. The
// set of root-to-leaf paths is unchanged; only the order of levels
// changes.
//
// Every branch of the tree must contain axis. Otherwise Promote
// returns a *PromoteError listing the branches lacking it and leaves
// the tree unchanged.
func (t *Tree) Promote(axis string) error {
	n, err := promoteChecked(t.Root, axis, nil)
	if err != nil {
		return err
	}
	t.Root = n
	return nil
}

// promoteChecked validates that axis can be promoted in every branch
// of n before rewriting. path is the location of n, for errors.
func promoteChecked(n Node, axis string, path []string) (*Interior, error) {
	if missing := missingAxis(n, axis, path); len(missing) > 0 {
		return nil, &PromoteError{Axis: axis, Paths: missing}
	}
	return promote(n, axis)
}

// missingAxis returns the paths below n along which no node splits on
// axis.
func missingAxis(n Node, axis string, path []string) [][]string {
	in, ok := n.(*Interior)
	if !ok || len(in.Edges) == 0 {
		return [][]string{append([]string(nil), path...)}
	}
	if in.Has(axis) {
		return nil
	}
	var missing [][]string
	for _, e := range in.Edges {
		p := append(path[:len(path):len(path)], stepString(in.Names, e.Values))
		missing = append(missing, missingAxis(e.Child, axis, p)...)
	}
	return missing
}

func stepString(names []string, vals Tuple) string {
	return strings.Join(names, "#") + "=" + vals.String()
}

// promote returns a subtree equivalent to n whose root splits on axis.
// n must have passed missingAxis.
func promote(n Node, axis string) (*Interior, error) {
	in := n.(*Interior)
	if in.Has(axis) {
		return in, nil
	}
	children := make([]*Interior, len(in.Edges))
	for i, e := range in.Edges {
		c, err := promote(e.Child, axis)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return transpose(in, children)
}

// transpose swaps the level of in with the level of its children,
// given as children[i] for in.Edges[i]. All children must split on the
// same axes.
//
// For every edge e of in and every edge ce of its child, the result has
// an edge ce.Values leading to a node splitting on in's axes, whose
// edge e.Values leads to ce.Child. The properties of the child reached
// through e move down to ce.Child, so they stay below e.
func transpose(in *Interior, children []*Interior) (*Interior, error) {
	out := &Interior{Names: children[0].Names, Props: in.Props.clone()}
	for i, e := range in.Edges {
		c := children[i]
		if !sameNames(c.Names, out.Names) {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedLevels,
				strings.Join(out.Names, "#"), strings.Join(c.Names, "#"))
		}
		for _, ce := range c.Edges {
			ne, _ := out.addEdge(ce.Values, func() Node {
				return &Interior{Names: in.Names}
			})
			mid := ne.Child.(*Interior)
			child := withProps(ce.Child, c.Props)
			mid.addEdge(e.Values, func() Node { return child })
		}
	}
	return out, nil
}
