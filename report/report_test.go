// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/benchplot/chart"
	"golang.org/x/benchplot/difftree"
	"golang.org/x/benchplot/storage/db"
	"golang.org/x/benchplot/storage/db/dbtest"
)

const (
	alpha = "alpha 4 CPUs Kernel 5.10"
	beta  = "beta 8 CPUs Kernel 6.1"
)

func newReport(t *testing.T) *Report {
	t.Helper()
	store := dbtest.NewFixture(t)
	r, err := New(context.Background(), store, nil, DefaultLevels, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r.Logf = t.Logf
	return r
}

func plotNames(g *Group) []string {
	var names []string
	for _, p := range g.Plots {
		names = append(names, p.Name()+":"+p.Kind.String())
	}
	return names
}

func TestGroups(t *testing.T) {
	r := newReport(t)
	if len(r.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(r.Groups))
	}
	if got, want := plotNames(r.Groups[0]), []string{"kernel.build:bar", "cbench.monitor:none"}; !cmp.Equal(got, want) {
		t.Errorf("group 1 plots = %v, want %v", got, want)
	}
	if got, want := plotNames(r.Groups[1]), []string{"sys.memory:line"}; !cmp.Equal(got, want) {
		t.Errorf("group 2 plots = %v, want %v", got, want)
	}
	if n := len(r.Groups[0].Instances); n != 3 {
		t.Errorf("group 1 has %d plugin group/system sets, want 3", n)
	}

	build := r.Groups[0].Plots[0]
	if n := len(build.Combos); n != 3 {
		t.Errorf("kernel.build has %d configurations, want 3", n)
	}
	wantDir := filepath.Join(r.OutDir, "cbench.monitor#kernel.build", "kernel.build")
	if build.Dir != wantDir {
		t.Errorf("kernel.build dir = %q, want %q", build.Dir, wantDir)
	}
	if got := build.Translations[dbtest.SystemB]; got != beta {
		t.Errorf("system translation = %q, want %q", got, beta)
	}
	if got := build.Translations["option.threads"]; got != "Threads" {
		t.Errorf("option translation = %q, want Threads", got)
	}
}

func TestTree(t *testing.T) {
	r := newReport(t)
	build := r.Groups[0].Plots[0]
	if d := build.Tree.Depth(); d != 4 {
		t.Errorf("tree depth = %d, want 4", d)
	}
	if d := build.FigureDepth(); d != 3 {
		t.Errorf("figure depth = %d, want 3", d)
	}
	figs, err := build.Figures()
	if err != nil {
		t.Fatal(err)
	}
	if len(figs) != 1 {
		t.Fatalf("got %d figures, want 1", len(figs))
	}
	if want := filepath.Join(build.Dir, "data__time.svg"); figs[0].File != want {
		t.Errorf("figure file = %q, want %q", figs[0].File, want)
	}
	if want := []string{"time"}; !cmp.Equal(figs[0].Labels, want) {
		t.Errorf("figure labels = %v, want %v", figs[0].Labels, want)
	}

	build.Autoremove()
	want := map[string]string{"data": "time", "version.gcc": "9"}
	if diff := cmp.Diff(want, build.Tree.Removed); diff != "" {
		t.Errorf("removed (-want +got):\n%s", diff)
	}
	if d := build.FigureDepth(); d != 2 {
		t.Errorf("figure depth after autoremove = %d, want 2", d)
	}
	figs, err = build.Figures()
	if err != nil {
		t.Fatal(err)
	}
	if len(figs) != 1 || figs[0].File != build.Dir+".svg" {
		t.Errorf("figures after autoremove = %+v", figs)
	}
}

func sortSamples(d *chart.Data) {
	for _, s := range d.Samples {
		sort.Float64s(s)
	}
	for _, c := range d.Children {
		sortSamples(c)
	}
}

func TestFigureData(t *testing.T) {
	ctx := context.Background()
	r := newReport(t)

	build := r.Groups[0].Plots[0]
	build.Autoremove()
	figs, err := build.Figures()
	if err != nil {
		t.Fatal(err)
	}
	got, err := build.data(ctx, figs[0])
	if err != nil {
		t.Fatal(err)
	}
	sortSamples(got)
	want := &chart.Data{Children: []*chart.Data{
		{Label: "Threads=1", Children: []*chart.Data{
			{Label: alpha, Samples: [][]float64{{10, 12}}},
			{Label: beta, Samples: [][]float64{{20}}},
		}},
		{Label: "Threads=2", Children: []*chart.Data{
			{Label: alpha, Samples: [][]float64{{6}}},
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bar data (-want +got):\n%s", diff)
	}
	opts, err := build.options(figs[0])
	if err != nil {
		t.Fatal(err)
	}
	if opts.Title != "kernel.build" || opts.YLabel != "Time (s)" {
		t.Errorf("options title %q ylabel %q", opts.Title, opts.YLabel)
	}

	memory := r.Groups[1].Plots[0]
	figs, err = memory.Figures()
	if err != nil {
		t.Fatal(err)
	}
	if len(figs) != 1 || figs[0].File != filepath.Join(memory.Dir, "data__used.png") {
		t.Fatalf("memory figures = %+v", figs)
	}
	got, err = memory.data(ctx, figs[0])
	if err != nil {
		t.Fatal(err)
	}
	sortSamples(got)
	want = &chart.Data{Children: []*chart.Data{
		{Label: alpha, Samples: [][]float64{{100, 110}, {200, 210}, {300, 310}}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("line data (-want +got):\n%s", diff)
	}
}

func TestSelect(t *testing.T) {
	r := newReport(t)
	build, monitor := r.Groups[0].Plots[0], r.Groups[0].Plots[1]
	memory := r.Groups[1].Plots[0]
	for _, tc := range []struct {
		ids  []string
		want []*Plot
	}{
		{[]string{"*"}, []*Plot{build, monitor, memory}},
		{[]string{"1.*"}, []*Plot{build, monitor}},
		{[]string{"2.1", "1.1", "2.1"}, []*Plot{memory, build}},
		{[]string{"all_bar"}, []*Plot{build}},
		{[]string{"all_line"}, []*Plot{memory}},
	} {
		got, err := r.Select(tc.ids...)
		if err != nil {
			t.Errorf("Select(%v): %v", tc.ids, err)
			continue
		}
		if len(got) != len(tc.want) {
			t.Errorf("Select(%v) returned %d plots, want %d", tc.ids, len(got), len(tc.want))
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("Select(%v)[%d] = %s, want %s", tc.ids, i, got[i].Name(), tc.want[i].Name())
			}
		}
	}
	for _, bad := range [][]string{nil, {"1"}, {"x.1"}, {"3.1"}, {"1.3"}, {"1.x"}, {".1"}} {
		if _, err := r.Select(bad...); err == nil {
			t.Errorf("Select(%q) succeeded", bad)
		}
	}
}

func TestSetProperty(t *testing.T) {
	r := newReport(t)
	p := r.Groups[0].Plots[0]
	if err := p.SetProperty("title", "Build"); err != nil {
		t.Fatal(err)
	}
	if p.Props["title"] != "Build" {
		t.Errorf("title = %q", p.Props["title"])
	}
	if err := p.SetProperty("colour", "red"); err == nil {
		t.Errorf("unknown property accepted")
	}
	if err := p.SetProperty("dpi", "high"); err == nil {
		t.Errorf("bad dpi accepted")
	}
}

func TestDescribe(t *testing.T) {
	r := newReport(t)
	r.Groups[0].Plots[0].Autoremove()
	var buf bytes.Buffer
	r.Describe(&buf)
	out := buf.String()
	for _, want := range []string{
		"Group 1\n",
		"1.1  kernel.build\n",
		"    Chart type: bar\n",
		"      plot-depth: 2\n",
		"      title: kernel.build\n",
		"    Number of different configurations: 3\n",
		"      Gcc(version.gcc) = 9\n",
		"1.2  cbench.monitor\n    Plugin without data\n",
		"Group 2\n",
		"    Chart type: line\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe output missing %q:\n%s", want, out)
		}
	}
}

func TestSquash(t *testing.T) {
	r := newReport(t)
	p := r.Groups[0].Plots[0]
	p.Autoremove()
	if err := p.Squash("option.threads", "system"); err != nil {
		t.Fatal(err)
	}
	if d := p.Tree.Depth(); d != 1 {
		t.Errorf("depth after squash = %d, want 1", d)
	}
	if d := p.FigureDepth(); d != 1 {
		t.Errorf("figure depth after squash = %d, want 1", d)
	}
	if err := p.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d := p.Tree.Depth(); d != 4 {
		t.Errorf("depth after rebuild = %d, want 4", d)
	}
}

func TestPromote(t *testing.T) {
	r := newReport(t)
	p := r.Groups[0].Plots[0]
	p.Autoremove()
	if err := p.Promote("system"); err != nil {
		t.Fatal(err)
	}
	root, ok := p.Tree.Root.(*difftree.Interior)
	if !ok || !cmp.Equal(root.Names, []string{"system"}) {
		t.Fatalf("root after promote = %#v, want a system level", p.Tree.Root)
	}
	if d := p.Tree.Depth(); d != 2 {
		t.Errorf("depth after promote = %d, want 2", d)
	}

	before := p.Tree.String()
	err := p.Promote("option.missing")
	var pe *difftree.PromoteError
	if !errors.As(err, &pe) {
		t.Fatalf("promoting a missing axis: got %v, want *PromoteError", err)
	}
	if after := p.Tree.String(); after != before {
		t.Errorf("failed promote changed the tree:\n%s\nwant:\n%s", after, before)
	}
}

func TestPromoteUnchangedOnError(t *testing.T) {
	r := newReport(t)
	p := r.Groups[0].Plots[0]
	before, depth := p.Tree.String(), p.FigureDepth()
	if err := p.Promote("option.missing", "system"); err == nil {
		t.Fatal("promoting a missing axis succeeded")
	}
	if after := p.Tree.String(); after != before {
		t.Errorf("failed promote changed the tree:\n%s\nwant:\n%s", after, before)
	}
	if d := p.FigureDepth(); d != depth || p.Props[depthProp] != strconv.Itoa(depth) {
		t.Errorf("figure depth = %d (%s), want %d", d, p.Props[depthProp], depth)
	}
}

func TestApplyUnchangedOnError(t *testing.T) {
	r := newReport(t)
	build := r.Groups[0].Plots[0]
	before, depth := build.Tree.String(), build.FigureDepth()

	// kernel.build has the option, sys.memory does not.
	op := Operation{Select: IDs{"1.1", "2.1"}, Autoremove: true, Promote: []string{"option.threads"}}
	if err := r.Apply(context.Background(), op); err == nil {
		t.Fatal("Apply succeeded")
	}
	if after := build.Tree.String(); after != before {
		t.Errorf("failed Apply changed the tree:\n%s\nwant:\n%s", after, before)
	}
	if len(build.Tree.Removed) != 0 {
		t.Errorf("failed Apply left removed levels %v", build.Tree.Removed)
	}
	if d := build.FigureDepth(); d != depth || build.Props[depthProp] != strconv.Itoa(depth) {
		t.Errorf("figure depth = %d (%s), want %d", d, build.Props[depthProp], depth)
	}

	op = Operation{Select: IDs{"1.1"}, Replace: map[string]string{"system": "Machine"}, Set: map[string]string{"nosuch": "1"}}
	if err := r.Apply(context.Background(), op); err == nil {
		t.Fatal("Apply with an unknown property succeeded")
	}
	if _, ok := build.Translations["system"]; ok {
		t.Errorf("failed Apply kept the replace rule")
	}
}

// TestPromoteLabels checks that each data field keeps its axis label
// when the level above it moves.
func TestPromoteLabels(t *testing.T) {
	data := difftree.FanOut("data", func(difftree.Combo) ([]difftree.Value, error) {
		return []difftree.Value{
			{V: "mem", Props: difftree.Props{"ylabel": "Mem"}},
			{V: "time", Props: difftree.Props{"ylabel": "Time"}},
		}, nil
	})
	combos := []difftree.Combo{{keySystem: "A"}, {keySystem: "B"}}
	for _, op := range []struct {
		name string
		fn   func(p *Plot) error
	}{
		{"promote", func(p *Plot) error { return p.Promote(keySystem) }},
		{"squash", func(p *Plot) error { return p.Squash("data", keySystem) }},
	} {
		t.Run(op.name, func(t *testing.T) {
			tree, err := difftree.Build([]difftree.Level{data, difftree.Field(keySystem)}, combos)
			if err != nil {
				t.Fatal(err)
			}
			p := &Plot{
				Plugin:       &db.Plugin{Module: "sys", Name: "memory"},
				Kind:         LineChart,
				Tree:         tree,
				Props:        difftree.Props{},
				Translations: difftree.Translations{},
			}
			p.updateDepth()
			if err := op.fn(p); err != nil {
				t.Fatal(err)
			}
			figs, err := p.Figures()
			if err != nil {
				t.Fatal(err)
			}
			if len(figs) == 0 {
				t.Fatal("no figures")
			}
			for _, f := range figs {
				field, err := p.dataField(f)
				if err != nil {
					t.Fatal(err)
				}
				o, err := p.options(f)
				if err != nil {
					t.Fatal(err)
				}
				want := map[string]string{"mem": "Mem", "time": "Time"}[field]
				if o.YLabel != want {
					t.Errorf("figure %v: ylabel = %q, want %q", f.Labels, o.YLabel, want)
				}
			}
		})
	}
}

func TestRecipe(t *testing.T) {
	const text = `
database: results.sqlite
outdir: /tmp/out
filters:
  - table: system
    condition: system.nr_cpus >= 4
    desc: big
operations:
  - select: "*"
    autoremove: true
  - select: [all_bar]
    autosquash: [8]
    set: {title: Build, dpi: "72"}
generate: "*"
html: true
`
	rc, err := ReadRecipe(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	want := &Recipe{
		Database: "results.sqlite",
		OutDir:   "/tmp/out",
		Filters:  []db.Filter{{Table: "system", Condition: "system.nr_cpus >= 4", Desc: "big"}},
		Levels:   &DefaultLevels,
		Operations: []Operation{
			{Select: IDs{"*"}, Autoremove: true},
			{Select: IDs{"all_bar"}, AutoSquash: []int{8}, Set: map[string]string{"title": "Build", "dpi": "72"}},
		},
		Generate: IDs{"*"},
		HTML:     true,
	}
	if diff := cmp.Diff(want, rc); diff != "" {
		t.Errorf("ReadRecipe (-want +got):\n%s", diff)
	}

	if _, err := ReadRecipe(strings.NewReader("colour: red\n")); err == nil {
		t.Errorf("recipe with unknown field accepted")
	}

	r := newReport(t)
	for _, op := range rc.Operations {
		if err := r.Apply(context.Background(), op); err != nil {
			t.Fatal(err)
		}
	}
	build := r.Groups[0].Plots[0]
	if build.Props["title"] != "Build" || build.Props["dpi"] != "72" {
		t.Errorf("properties after recipe = %v", build.Props)
	}
	if d := build.Tree.Depth(); d != 1 {
		t.Errorf("depth after recipe = %d, want 1", d)
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	r := newReport(t)
	for _, op := range []Operation{
		{Select: IDs{"*"}, Autoremove: true},
		{Select: IDs{"*"}, Set: map[string]string{"xsize": "4", "ysize": "3", "dpi": "40"}},
	} {
		if err := r.Apply(ctx, op); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Generate(ctx, r.Plots(), 2); err != nil {
		t.Fatal(err)
	}

	build, memory := r.Groups[0].Plots[0], r.Groups[1].Plots[0]
	for _, file := range []string{build.Dir + ".svg", memory.Dir + ".png"} {
		fi, err := os.Stat(file)
		if err != nil {
			t.Error(err)
		} else if fi.Size() == 0 {
			t.Errorf("%s is empty", file)
		}
	}

	var buf bytes.Buffer
	if err := r.WriteHTML(&buf, "Results"); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{
		"<title>Results</title>",
		`src="cbench.monitor%23kernel.build/kernel.build.svg"`,
		`src="sys.memory/sys.memory.png"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "cbench.monitor <small>") {
		t.Errorf("HTML lists a plot without data")
	}
}
