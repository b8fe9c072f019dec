// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/benchplot/chart"
	"golang.org/x/benchplot/difftree"
)

// A Figure is one chart of a plot.
type Figure struct {
	// Labels name the tree edges leading to the figure.
	Labels []string
	// File is the path of the chart image.
	File string

	path  string // File without extension
	steps []difftree.Step
	node  difftree.Node
}

// Figures returns the figures of the plot in tree order.
func (p *Plot) Figures() ([]*Figure, error) {
	if p.Kind == Dummy {
		return nil, nil
	}
	ext := ".svg"
	if p.Kind == LineChart {
		ext = ".png"
	}
	var figs []*Figure
	err := p.Tree.Plot(p.figureDepth, func(steps []difftree.Step, n difftree.Node) error {
		f := &Figure{path: p.Dir, steps: steps, node: n}
		for _, s := range steps {
			f.Labels = append(f.Labels, difftree.Label(s.Node, s.Edge, p.Translations))
			f.path = filepath.Join(f.path, difftree.PathSegment(s.Node, s.Edge, p.Translations))
		}
		f.File = f.path + ext
		figs = append(figs, f)
		return nil
	})
	return figs, err
}

// errNoDataField is returned for figures whose data field is unknown.
var errNoDataField = errors.New("no data field on the path to the figure")

// dataField returns the results column drawn by the figure.
func (p *Plot) dataField(f *Figure) (string, error) {
	for _, s := range f.steps {
		for i, name := range s.Node.Names {
			if name == "data" {
				return s.Edge.Values[i], nil
			}
		}
	}
	if v, ok := p.Tree.Removed["data"]; ok {
		return v, nil
	}
	return "", errNoDataField
}

// options returns the chart options of the figure. Properties of the
// plot are overridden by those of the nodes on the path and finally by
// those of the figure's node.
func (p *Plot) options(f *Figure) (chart.Options, error) {
	props := make(map[string]string)
	merge := func(m difftree.Props) {
		for k, v := range m {
			props[k] = v
		}
	}
	merge(p.Props)
	for _, s := range f.steps {
		merge(s.Node.Props)
	}
	merge(f.node.Properties())
	return chart.Decode(props)
}

// data collects the measurements drawn by the figure.
func (p *Plot) data(ctx context.Context, f *Figure) (*chart.Data, error) {
	field, err := p.dataField(f)
	if err != nil {
		return nil, err
	}
	var fill func(d *chart.Data, n difftree.Node) error
	fill = func(d *chart.Data, n difftree.Node) error {
		switch n := n.(type) {
		case *difftree.Interior:
			for _, e := range n.Edges {
				if err := fill(d.Child(difftree.Label(n, e, p.Translations)), e.Child); err != nil {
					return err
				}
			}
		case *difftree.Leaf:
			var runs [][]float64
			for _, c := range n.Combos {
				rs, err := p.store.Results(ctx, p.Plugin.Table, field, c[keySystem], c[keyGroup])
				if err != nil {
					return err
				}
				runs = append(runs, rs...)
			}
			d.Samples = p.samples(runs)
		}
		return nil
	}

	root := &chart.Data{}
	target := root
	if _, ok := f.node.(*difftree.Leaf); ok {
		target = root.Child("result")
	}
	if err := fill(target, f.node); err != nil {
		return nil, err
	}
	return root, nil
}

// samples arranges the values of runs for the chart kind: a single
// sample for a bar, one sample per result index for a line.
func (p *Plot) samples(runs [][]float64) [][]float64 {
	if p.Kind == BarChart {
		var xs []float64
		for _, r := range runs {
			xs = append(xs, r...)
		}
		return [][]float64{xs}
	}
	var points [][]float64
	for _, r := range runs {
		for i, v := range r {
			if i == len(points) {
				points = append(points, nil)
			}
			points[i] = append(points[i], v)
		}
	}
	return points
}

// Generate draws every figure of the plot.
func (p *Plot) Generate(ctx context.Context, logf func(format string, args ...interface{})) error {
	p.Generated = nil
	if p.Kind == Dummy {
		return nil
	}
	figs, err := p.Figures()
	if err != nil {
		return err
	}
	for _, f := range figs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.draw(ctx, f); err != nil {
			return fmt.Errorf("%s: %w", f.File, err)
		}
		p.Generated = append(p.Generated, f)
		if logf != nil {
			logf("generated %s", f.File)
		}
	}
	return nil
}

func (p *Plot) draw(ctx context.Context, f *Figure) error {
	opts, err := p.options(f)
	if err != nil {
		return err
	}
	data, err := p.data(ctx, f)
	if err != nil {
		return err
	}
	if p.Kind == LineChart {
		return chart.Line(f.path, data, opts)
	}
	return chart.Bar(f.path, data, opts)
}
