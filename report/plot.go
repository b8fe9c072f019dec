// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/benchplot/chart"
	"golang.org/x/benchplot/difftree"
	"golang.org/x/benchplot/storage/db"
)

// Kind is the kind of chart a plot draws.
type Kind int

const (
	// Dummy plots belong to plugins that record no data.
	Dummy Kind = iota
	BarChart
	LineChart
)

func (k Kind) String() string {
	switch k {
	case BarChart:
		return "bar"
	case LineChart:
		return "line"
	}
	return "none"
}

// depthProp is the property recording how many levels a figure shows.
const depthProp = "plot-depth"

// A Plot turns the results of one plugin into figures. Its tree holds
// every configuration the plugin ran with; the levels near the leaves
// are drawn inside figures and the levels above them select the figure.
type Plot struct {
	Plugin *db.Plugin
	Kind   Kind
	Combos []difftree.Combo
	// Dir is the path figures are written under.
	Dir  string
	Tree *difftree.Tree
	// Props are chart properties applying to every figure.
	Props        difftree.Props
	Translations difftree.Translations

	// Generated lists the figures written by the last Generate.
	Generated []*Figure

	store       Store
	levels      []string
	figureDepth int
}

func newPlot(ctx context.Context, store Store, pluginSHA string, combos []difftree.Combo, levels Levels, dir string, tr difftree.Translations) (*Plot, error) {
	plugin, err := store.Plugin(ctx, pluginSHA)
	if err != nil {
		return nil, err
	}
	p := &Plot{
		Plugin:       plugin,
		Combos:       combos,
		Dir:          filepath.Join(dir, plugin.FullName()),
		Props:        difftree.Props{"title": plugin.FullName()},
		Translations: make(difftree.Translations),
		store:        store,
	}
	for k, v := range tr {
		p.Translations[k] = v
	}
	if plugin.Table == "" {
		return p, nil
	}

	n, err := store.ResultsPerRun(ctx, plugin.Table)
	if err != nil {
		return nil, err
	}
	if n > 1 {
		p.Kind, p.levels = LineChart, levels.Line
	} else {
		p.Kind, p.levels = BarChart, levels.Bar
	}
	if err := p.Rebuild(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the name of the plotted plugin.
func (p *Plot) Name() string { return p.Plugin.FullName() }

// FigureDepth returns the number of tree levels shown inside each figure.
func (p *Plot) FigureDepth() int { return p.figureDepth }

// Rebuild rebuilds the tree from the plot's configurations, undoing
// all transformations.
func (p *Plot) Rebuild(ctx context.Context) error {
	if p.Kind == Dummy {
		return nil
	}
	var levels []difftree.Level
	for _, name := range p.levels {
		l, err := p.level(ctx, name)
		if err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
		if l != nil {
			levels = append(levels, l)
		}
	}
	t, err := difftree.Build(levels, p.Combos)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	p.Tree = t
	p.updateDepth()
	return nil
}

func (p *Plot) level(ctx context.Context, name string) (difftree.Level, error) {
	switch name {
	case "system":
		return difftree.Field(keySystem), nil
	case "option":
		if p.Plugin.OptionTable == "" {
			return nil, nil
		}
		return p.fieldsLevel(ctx, "option", p.Plugin.OptionTable, keyOptions, p.store.OptionFields), nil
	case "version":
		if p.Plugin.VersionTable == "" {
			return nil, nil
		}
		return p.fieldsLevel(ctx, "version", p.Plugin.VersionTable, keyVersions, p.store.VersionFields), nil
	case "data":
		fields, err := p.store.DataMeta(ctx, p.Plugin.SHA)
		if err != nil {
			return nil, err
		}
		vals := make([]difftree.Value, len(fields))
		for i, f := range fields {
			vals[i] = difftree.Value{V: f.Name, Props: difftree.Props{"ylabel": f.Label()}}
		}
		return difftree.FanOut("data", func(difftree.Combo) ([]difftree.Value, error) {
			return vals, nil
		}), nil
	}
	return nil, fmt.Errorf("unknown level %q", name)
}

func (p *Plot) fieldsLevel(ctx context.Context, prefix, table, key string, get func(ctx context.Context, table, sha string) (map[string]string, error)) difftree.Level {
	return difftree.FieldsFunc(prefix, func(c difftree.Combo) (map[string]string, error) {
		sha := c[key]
		if sha == "" {
			return nil, nil
		}
		fields, err := get(ctx, table, sha)
		if err != nil {
			return nil, err
		}
		for k := range fields {
			if _, ok := p.Translations[prefix+"."+k]; !ok {
				p.Translations[prefix+"."+k] = capitalize(k)
			}
		}
		return fields, nil
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// maxFigureDepth returns the number of levels a chart of kind k can show.
func (k Kind) maxFigureDepth() int {
	if k == BarChart {
		return chart.MaxBarDepth
	}
	return 1
}

func (p *Plot) updateDepth() {
	p.figureDepth = p.Tree.FigureDepth(p.Kind.maxFigureDepth(), "data")
	p.Props[depthProp] = strconv.Itoa(p.figureDepth)
}

// Autoremove removes the levels of the tree that have a single value.
func (p *Plot) Autoremove() {
	if p.Kind == Dummy {
		return
	}
	p.Tree.Autoremove()
	p.updateDepth()
}

// Promote moves axes to the top of the tree, the first of them
// becoming the root level. If any axis cannot be promoted, the tree is
// left unchanged.
func (p *Plot) Promote(axes ...string) error {
	if p.Kind == Dummy {
		return nil
	}
	work := &difftree.Tree{Root: p.Tree.Root}
	for i := len(axes) - 1; i >= 0; i-- {
		if err := work.Promote(axes[i]); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	p.Tree.Root = work.Root
	p.updateDepth()
	return nil
}

// plotState is the part of a Plot changed by operations.
type plotState struct {
	tree         *difftree.Tree
	props        difftree.Props
	translations difftree.Translations
	figureDepth  int
}

func (p *Plot) save() plotState {
	s := plotState{
		props:        make(difftree.Props, len(p.Props)),
		translations: make(difftree.Translations, len(p.Translations)),
		figureDepth:  p.figureDepth,
	}
	for k, v := range p.Props {
		s.props[k] = v
	}
	for k, v := range p.Translations {
		s.translations[k] = v
	}
	if p.Tree != nil {
		t := *p.Tree
		t.Removed = make(map[string]string, len(p.Tree.Removed))
		for k, v := range p.Tree.Removed {
			t.Removed[k] = v
		}
		t.RemovedProps = make(difftree.Props, len(p.Tree.RemovedProps))
		for k, v := range p.Tree.RemovedProps {
			t.RemovedProps[k] = v
		}
		s.tree = &t
	}
	return s
}

func (p *Plot) restore(s plotState) {
	p.Tree = s.tree
	p.Props = s.props
	p.Translations = s.translations
	p.figureDepth = s.figureDepth
}

// Squash merges the levels named by names into one.
func (p *Plot) Squash(names ...string) error {
	if p.Kind == Dummy {
		return nil
	}
	if err := p.Tree.Squash(names...); err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	p.updateDepth()
	return nil
}

// AutoSquash squashes levels starting at the leaves so that each group
// of squashed levels has at most as many values as its budget.
func (p *Plot) AutoSquash(budgets []int) error {
	if p.Kind == Dummy {
		return nil
	}
	if err := p.Tree.AutoSquash(budgets); err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	p.updateDepth()
	return nil
}

// AddReplaceRule displays the axis name or value from as to.
func (p *Plot) AddReplaceRule(from, to string) {
	p.Translations[from] = to
}

// SetProperty sets a chart property of every figure.
func (p *Plot) SetProperty(name, value string) error {
	if err := chart.ParseProperty(name, value); err != nil {
		return err
	}
	p.Props[name] = value
	return nil
}

func indent(n int) string { return strings.Repeat("  ", n) }

// Describe writes a description of the plot identified as id to w:
// its chart type, properties, the parameters shared by all runs and
// the parameter graph.
func (p *Plot) Describe(w io.Writer, id string) {
	fmt.Fprintf(w, "%s%s%s\n", id, indent(1), p.Name())
	if p.Kind == Dummy {
		fmt.Fprintf(w, "%sPlugin without data\n", indent(2))
		return
	}
	fmt.Fprintf(w, "%sChart type: %s\n", indent(2), p.Kind)
	if len(p.Props) > 0 {
		fmt.Fprintf(w, "%sProperties:\n", indent(2))
		for _, k := range p.Props.Keys() {
			fmt.Fprintf(w, "%s%s: %s\n", indent(3), k, p.Props[k])
		}
	}
	fmt.Fprintf(w, "%sNumber of different configurations: %d\n", indent(2), len(p.Combos))
	if len(p.Tree.Removed) > 0 {
		fmt.Fprintf(w, "%sSame run parameters:\n", indent(2))
		for _, k := range difftree.Props(p.Tree.Removed).Keys() {
			fmt.Fprintf(w, "%s%s = %s\n", indent(3), p.Translations.Annotated(k), p.Translations.Annotated(p.Tree.Removed[k]))
		}
	}
	fmt.Fprintf(w, "%sParameter graph: (Everything right of '||' will be in the figure)\n", indent(2))
	p.Tree.Print(w, p.Translations, indent(3), p.figureDepth)
}
