// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import "strings"

// Translations maps raw axis names and values to display labels.
type Translations map[string]string

// Get returns the label for s, or s itself.
func (tr Translations) Get(s string) string {
	if r, ok := tr[s]; ok {
		return r
	}
	return s
}

// Annotated returns the label for s followed by s in parentheses, or
// s itself if it has no label.
func (tr Translations) Annotated(s string) string {
	if r, ok := tr[s]; ok {
		return r + "(" + s + ")"
	}
	return s
}

func (tr Translations) join(ss []string, annotate bool) string {
	out := make([]string, len(ss))
	for i, s := range ss {
		if annotate {
			out[i] = tr.Annotated(s)
		} else {
			out[i] = tr.Get(s)
		}
	}
	return strings.Join(out, "/")
}

// bareAxes are axes whose values are self-explanatory labels.
var bareAxes = map[string]bool{"system": true, "data": true}

// Label returns the chart label of edge e of n: the translated values
// joined by "/", preceded by the translated axis names and "=" unless n
// splits on the system or data axis alone.
func Label(n *Interior, e *Edge, tr Translations) string {
	vals := tr.join(e.Values, false)
	if len(n.Names) == 1 && bareAxes[n.Names[0]] {
		return vals
	}
	return tr.join(n.Names, false) + "=" + vals
}

// PathSegment returns a file name component for edge e of n.
func PathSegment(n *Interior, e *Edge, tr Translations) string {
	return strings.Join(translateAll(n.Names, tr), "#") + "__" + strings.Join(translateAll(e.Values, tr), "#")
}

func translateAll(ss []string, tr Translations) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = tr.Get(s)
	}
	return out
}

// Plot calls fn for the topmost nodes of depth at most maxDepth: each
// of them becomes one figure showing the levels below it, while the
// path leading to it identifies the figure.
func (t *Tree) Plot(maxDepth int, fn func(path []Step, n Node) error) error {
	return Walk(t.Root, func(path []Step, n Node) error {
		if Depth(n) > maxDepth {
			return nil
		}
		if err := fn(path, n); err != nil {
			return err
		}
		return SkipChildren
	})
}

// FigureDepth returns the number of levels a figure shows: at most max,
// at most the depth of the tree, and shallow enough that no figure
// contains a level splitting on the axis keep, so that each figure
// shows a single value of it.
func (t *Tree) FigureDepth(max int, keep string) int {
	depth := max
	if d := t.Depth(); d < depth {
		depth = d
	}
	for _, n := range FindByName(t.Root, keep) {
		if d := Depth(n) - 1; d < depth {
			depth = d
		}
	}
	return depth
}
