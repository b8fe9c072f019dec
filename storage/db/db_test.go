// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "golang.org/x/benchplot/storage/db"
	"golang.org/x/benchplot/storage/db/dbtest"
)

const (
	buildResults = "plugin_kernel__build__0.1"
	buildOptions = "plugin_opts_kernel__build__0.1"
	buildVersion = "plugin_comp_vers_kernel__build__0.1"
)

func TestFilterName(t *testing.T) {
	f := Filter{Table: "system", Condition: "system.kernel = '5.10'"}
	if got, want := f.Name(), "system: system.kernel = '5.10'"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
	f.Desc = "system selection"
	if got, want := f.Name(), "system selection (system: system.kernel = '5.10')"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestCountRuns(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewFixture(t)

	for _, test := range []struct {
		name    string
		filters []Filter
		want    int
	}{
		{"all", nil, 6},
		{"system", []Filter{{Table: "system", Condition: "system.system_sha = 'sysA'"}}, 5},
		{"or", []Filter{{Table: "system", Condition: "system.system_sha = 'sysA' OR system.system_sha = 'sysB'"},
			{Table: "plugin_group", Condition: "plugin_group.plugin_group_sha = 'g1'"}}, 3},
		{"option", []Filter{{Table: buildOptions, Condition: `"` + buildOptions + `".threads = '2'`}}, 1},
		{"unknown table", []Filter{{Table: "nosuch", Condition: "nosuch.x = 1"}}, 6},
	} {
		t.Run(test.name, func(t *testing.T) {
			n, err := db.CountRuns(ctx, test.filters)
			if err != nil {
				t.Fatal(err)
			}
			if n != test.want {
				t.Errorf("CountRuns = %d, want %d", n, test.want)
			}
		})
	}
}

func TestSystems(t *testing.T) {
	db := dbtest.NewFixture(t)
	systems, err := db.Systems(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	type sys struct {
		SHA, Desc string
		NrCPUs    int
		Runs      int
	}
	var got []sys
	for _, s := range systems {
		got = append(got, sys{s.SHA, s.Description(), s.NrCPUs, s.Runs})
	}
	want := []sys{
		{"sysA", "alpha 4 CPUs Kernel 5.10", 4, 5},
		{"sysB", "beta 8 CPUs Kernel 6.1", 8, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Systems mismatch (-want +got):\n%s", diff)
	}
}

func TestPluginGroups(t *testing.T) {
	db := dbtest.NewFixture(t)
	insts, err := db.PluginGroups(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	type inst struct {
		Group, Plugin, System, Name string
		Runs                        int
	}
	var got []inst
	for _, i := range insts {
		got = append(got, inst{i.GroupSHA, i.PluginSHA, i.SystemSHA, i.Module + "." + i.Name, i.Runs})
	}
	want := []inst{
		{"g1", "p1", "sysA", "kernel.build", 2},
		{"g1", "p1", "sysB", "kernel.build", 1},
		{"g1", "p3", "sysA", "cbench.monitor", 2},
		{"g1", "p3", "sysB", "cbench.monitor", 1},
		{"g2", "p1", "sysA", "kernel.build", 1},
		{"g2", "p3", "sysA", "cbench.monitor", 1},
		{"g3", "p2", "sysA", "sys.memory", 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PluginGroups mismatch (-want +got):\n%s", diff)
	}
	if got := insts[1].System.Description(); got != "beta 8 CPUs Kernel 6.1" {
		t.Errorf("system description: got %q", got)
	}
}

func TestPlugin(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewFixture(t)

	p, err := db.Plugin(ctx, dbtest.Build)
	if err != nil {
		t.Fatal(err)
	}
	want := &Plugin{SHA: "p1", Module: "kernel", Name: "build", Version: "0.1",
		Table: buildResults, OptionTable: buildOptions, VersionTable: buildVersion}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Plugin mismatch (-want +got):\n%s", diff)
	}

	p, err = db.Plugin(ctx, dbtest.Monitor)
	if err != nil {
		t.Fatal(err)
	}
	if p.Table != "" || p.FullName() != "cbench.monitor" {
		t.Errorf("monitor plugin: got %+v", p)
	}

	if _, err := db.Plugin(ctx, "nosuch"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Plugin(nosuch): got %v, want ErrNotFound", err)
	}
}

func TestFields(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewFixture(t)
	insts, err := db.PluginGroups(ctx, []Filter{{Table: "plugin_group", Condition: "plugin_group.plugin_group_sha = 'g2'"}})
	if err != nil {
		t.Fatal(err)
	}
	inst := insts[0]
	if inst.PluginSHA != dbtest.Build {
		t.Fatalf("first instance of g2 is %s, want %s", inst.PluginSHA, dbtest.Build)
	}
	opts, err := db.OptionFields(ctx, buildOptions, inst.OptionsSHA)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"threads": "2"}, opts); diff != "" {
		t.Errorf("OptionFields mismatch (-want +got):\n%s", diff)
	}
	vers, err := db.VersionFields(ctx, buildVersion, inst.VersionsSHA)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"gcc": "9"}, vers); diff != "" {
		t.Errorf("VersionFields mismatch (-want +got):\n%s", diff)
	}
	if _, err := db.OptionFields(ctx, buildOptions, "nosuch"); !errors.Is(err, ErrNotFound) {
		t.Errorf("OptionFields(nosuch): got %v, want ErrNotFound", err)
	}
}

func TestDataMeta(t *testing.T) {
	db := dbtest.NewFixture(t)
	fields, err := db.DataMeta(context.Background(), dbtest.Build)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]DataField{{Name: "time", Unit: "s"}}, fields); diff != "" {
		t.Errorf("DataMeta mismatch (-want +got):\n%s", diff)
	}
	if got, want := fields[0].Label(), "Time (s)"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
	if got, want := (DataField{Name: "CPU usage"}).Label(), "Cpu usage"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewFixture(t)

	for _, test := range []struct {
		table, field, system, group string
		perRun                      int
		want                        [][]float64
	}{
		{buildResults, "time", dbtest.SystemA, dbtest.Group1, 1, [][]float64{{10}, {12}}},
		{buildResults, "time", dbtest.SystemB, dbtest.Group1, 1, [][]float64{{20}}},
		{buildResults, "time", dbtest.SystemB, dbtest.Group2, 1, nil},
		{"plugin_sys__memory__0.2", "used", dbtest.SystemA, dbtest.Group3, 3, [][]float64{{100, 200, 300}, {110, 210, 310}}},
	} {
		n, err := db.ResultsPerRun(ctx, test.table)
		if err != nil {
			t.Fatal(err)
		}
		if n != test.perRun {
			t.Errorf("ResultsPerRun(%s) = %d, want %d", test.table, n, test.perRun)
		}
		got, err := db.Results(ctx, test.table, test.field, test.system, test.group)
		if err != nil {
			t.Fatal(err)
		}
		sort.Slice(got, func(i, j int) bool { return got[i][0] < got[j][0] })
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Results(%s, %s, %s) mismatch (-want +got):\n%s", test.field, test.system, test.group, diff)
		}
	}
}

func TestMerge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	open := func(name string) *DB {
		d, err := OpenSQL("sqlite3", filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { d.Close() })
		return d
	}
	populate := func(d *DB, sys, run string) {
		if err := d.CreateTables(); err != nil {
			t.Fatal(err)
		}
		p := &Plugin{SHA: "p", Module: "m", Name: "n", Version: "1"}
		steps := []error{
			d.InsertSystem(ctx, &System{SHA: sys, CPUsSHA: sys, NrCPUs: 1, CPUModel: "cpu"}),
			d.InsertPlugin(ctx, p, nil, nil, []DataField{{Name: "x"}}),
			d.InsertGroup(ctx, "g", Member{PluginSHA: "p"}),
			d.InsertRun(ctx, run, "g", sys),
			d.InsertResults(ctx, p.Table, run, map[string]float64{"x": 1}),
		}
		for _, err := range steps {
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	populate(open("a.sqlite"), "sysA", "r1")
	populate(open("b.sqlite"), "sysB", "r2")

	out := open("out.sqlite")
	if err := out.Merge(ctx, filepath.Join(dir, "a.sqlite"), filepath.Join(dir, "b.sqlite")); err != nil {
		t.Fatal(err)
	}
	n, err := out.CountRuns(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("merged database has %d runs, want 2", n)
	}
	var plugins int
	if err := DBSQL(out).QueryRow("SELECT COUNT(*) FROM plugin").Scan(&plugins); err != nil {
		t.Fatal(err)
	}
	if plugins != 1 {
		t.Errorf("merged database has %d plugins, want 1", plugins)
	}
	res, err := out.Results(ctx, "plugin_m__n__1", "x", "sysB", "g")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]float64{{1}}, res); diff != "" {
		t.Errorf("merged results mismatch (-want +got):\n%s", diff)
	}
}
