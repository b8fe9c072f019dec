// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"fmt"
	"sort"
	"strings"
)

// A Level produces the axes one configuration record contributes to
// the tree at a given position of the level order.
//
// A Level may return no axis for a record, in which case the record
// skips the level, or several axes, which become consecutive levels of
// the tree.
type Level interface {
	Axes(c Combo) ([]Axis, error)
}

// An Axis is one split of the tree. If it has more than one value, the
// record's path fans out into one branch per value.
type Axis struct {
	Name   string
	Values []Value
}

// A Value is an edge value together with the properties to attach to
// the child reached through it.
type Value struct {
	V     string
	Props Props
}

// LevelFunc adapts a function to the Level interface.
type LevelFunc func(c Combo) ([]Axis, error)

func (f LevelFunc) Axes(c Combo) ([]Axis, error) { return f(c) }

// Field returns a Level splitting on the record column name. Records
// without that column skip the level.
func Field(name string) Level {
	return LevelFunc(func(c Combo) ([]Axis, error) {
		v, ok := c[name]
		if !ok {
			return nil, nil
		}
		return []Axis{{Name: name, Values: []Value{{V: v}}}}, nil
	})
}

// FieldsFunc returns a Level that splits on every field returned by
// fields, one axis per field named prefix + "." + field, in field name
// order. A nil or empty map skips the level.
func FieldsFunc(prefix string, fields func(c Combo) (map[string]string, error)) Level {
	return LevelFunc(func(c Combo) ([]Axis, error) {
		m, err := fields(c)
		if err != nil || len(m) == 0 {
			return nil, err
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		axes := make([]Axis, len(keys))
		for i, k := range keys {
			axes[i] = Axis{Name: prefix + "." + k, Values: []Value{{V: m[k]}}}
		}
		return axes, nil
	})
}

// FanOut returns a Level with a single axis called name whose values
// are returned by values. Every record is copied into each branch.
func FanOut(name string, values func(c Combo) ([]Value, error)) Level {
	return LevelFunc(func(c Combo) ([]Axis, error) {
		vs, err := values(c)
		if err != nil || len(vs) == 0 {
			return nil, err
		}
		return []Axis{{Name: name, Values: vs}}, nil
	})
}

// A ConflictError reports two records that need different splits at
// the same node of the tree.
type ConflictError struct {
	Path  []string // "axis=value" steps from the root to the node
	Have  string   // axis already at the node, or "" for a leaf
	Want  string   // axis requested by the record, or "" for a leaf
	Combo Combo
}

func (e *ConflictError) Error() string {
	what := func(s string) string {
		if s == "" {
			return "end of path"
		}
		return "axis " + s
	}
	return fmt.Sprintf("difftree: conflicting levels at /%s: %s, record %v needs %s",
		strings.Join(e.Path, "/"), what(e.Have), e.Combo, what(e.Want))
}

// bnode is the mutable node used while building. It becomes an
// Interior if it has a name and a Leaf otherwise.
type bnode struct {
	name   string
	props  Props
	edges  map[string]*bnode
	combos []Combo
	path   []string
}

func (b *bnode) child(v Value) *bnode {
	c, ok := b.edges[v.V]
	if !ok {
		if b.edges == nil {
			b.edges = make(map[string]*bnode)
		}
		path := append(append([]string(nil), b.path...), b.name+"="+v.V)
		c = &bnode{path: path}
		b.edges[v.V] = c
	}
	c.props = c.props.merge(v.Props)
	return c
}

func (b *bnode) freeze() Node {
	if b.name == "" {
		return &Leaf{Props: b.props, Combos: b.combos}
	}
	n := &Interior{Names: []string{b.name}, Props: b.props}
	n.Edges = make([]*Edge, 0, len(b.edges))
	for v, c := range b.edges {
		n.Edges = append(n.Edges, &Edge{Values: Tuple{v}, Child: c.freeze()})
	}
	sort.Slice(n.Edges, func(i, j int) bool {
		return CompareTuples(n.Edges[i].Values, n.Edges[j].Values) < 0
	})
	return n
}

// Build inserts every record as a path from the root, consuming the
// axes of levels in order, and attaches each record to the leaf its
// path reaches. Records that skip a level yield shorter paths.
//
// Build returns a *ConflictError if two records need different axes at
// the same node, or if one record's path ends at a node another record
// splits further.
func Build(levels []Level, combos []Combo) (*Tree, error) {
	root := &bnode{}
	for _, c := range combos {
		frontier := []*bnode{root}
		for _, lvl := range levels {
			axes, err := lvl.Axes(c)
			if err != nil {
				return nil, err
			}
			for _, ax := range axes {
				if len(ax.Values) == 0 {
					continue
				}
				var next []*bnode
				seen := make(map[*bnode]bool)
				for _, b := range frontier {
					if err := b.setName(ax.Name, c); err != nil {
						return nil, err
					}
					for _, v := range ax.Values {
						if n := b.child(v); !seen[n] {
							seen[n] = true
							next = append(next, n)
						}
					}
				}
				frontier = next
			}
		}
		for _, b := range frontier {
			if b.name != "" {
				return nil, &ConflictError{Path: b.path, Have: b.name, Combo: c}
			}
			b.combos = append(b.combos, c)
		}
	}
	return &Tree{Root: root.freeze()}, nil
}

func (b *bnode) setName(name string, c Combo) error {
	switch {
	case b.name == name:
		return nil
	case b.name == "" && len(b.combos) == 0:
		b.name = name
		return nil
	}
	return &ConflictError{Path: b.path, Have: b.name, Want: name, Combo: c}
}
