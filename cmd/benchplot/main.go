// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchplot draws charts of the benchmark runs stored in a cbenchsuite
// database.
//
// Usage:
//
//	benchplot [options] [plot id...]
//
// Runs are arranged into groups of plots, one plot per benchmark
// plugin. Each plot holds a tree of the parameters its runs differ in;
// the levels near the leaves are drawn inside one figure and the levels
// above them select the figure. Use -list to print the groups, the plot
// ids and the parameter trees.
//
// The plot ids select the plots to generate. An id is "*", "all_bar",
// "all_line", "g.*" or "g.p", where g and p number groups and plots
// from 1. Without ids, every plot is generated.
//
// The -recipe flag reads a YAML file describing the database, filters,
// the operations reshaping the plots and the plots to generate (see
// package report). Flags given on the command line override the recipe.
//
// Example:
//
//	benchplot -d results.sqlite -autoremove -autosquash 8 -o /tmp/report -html
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/benchplot/publish"
	"golang.org/x/benchplot/report"
	"golang.org/x/benchplot/storage/db"
	_ "golang.org/x/benchplot/storage/db/sqlite3"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: benchplot [options] [plot id...]\n")
	fmt.Fprintf(os.Stderr, "options:\n")
	flag.PrintDefaults()
	os.Exit(2)
}

var (
	flagDB         = flag.String("d", "~/.cbenchsuite/db/db.sqlite", "read runs from database `dsn`")
	flagDriver     = flag.String("driver", "sqlite3", "database `driver`: sqlite3 or mysql")
	flagOut        = flag.String("o", "/tmp/cbenchsuite/", "write figures below `dir`")
	flagRecipe     = flag.String("recipe", "", "read the report description from YAML `file`")
	flagList       = flag.Bool("list", false, "describe the plots and exit")
	flagSystems    = flag.Bool("systems", false, "list the systems with runs passing the filters and exit")
	flagJobs       = flag.Int("j", runtime.NumCPU(), "generate up to `n` plots at once")
	flagAutoremove = flag.Bool("autoremove", false, "remove tree levels with a single value from every plot")
	flagAutosquash = flag.String("autosquash", "", "squash levels of every plot into groups of at most `n,...` values")
	flagHTML       = flag.Bool("html", false, "write index.html into the output directory")
	flagPublish    = flag.String("publish", "", "copy the output directory to `gs://bucket/prefix`")
	flagTitle      = flag.String("title", "Benchmark results", "HTML index `title`")
)

var filters []db.Filter

func init() {
	flag.Func("filter", "only use runs passing `table:condition` (repeatable)", func(s string) error {
		table, cond, ok := strings.Cut(s, ":")
		if !ok || table == "" || cond == "" {
			return fmt.Errorf("want table:condition")
		}
		filters = append(filters, db.Filter{Table: table, Condition: cond})
		return nil
	})
}

func main() {
	log.SetPrefix("benchplot: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	ctx := context.Background()

	rc := &report.Recipe{Levels: &report.DefaultLevels}
	if *flagRecipe != "" {
		var err error
		if rc, err = report.LoadRecipe(*flagRecipe); err != nil {
			log.Fatal(err)
		}
	}
	override(rc)

	d, err := db.OpenSQL(rc.Driver, expandHome(rc.Database))
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	if *flagSystems {
		listSystems(ctx, d, rc.Filters)
		return
	}

	r, err := report.New(ctx, d, rc.Filters, *rc.Levels, rc.OutDir)
	if err != nil {
		log.Fatal(err)
	}
	for _, op := range rc.Operations {
		if err := r.Apply(ctx, op); err != nil {
			log.Fatal(err)
		}
	}
	if *flagList {
		r.Describe(os.Stdout)
		return
	}

	plots, err := r.Select(rc.Generate...)
	if err != nil {
		log.Fatal(err)
	}
	if err := r.Generate(ctx, plots, rc.Workers); err != nil {
		log.Fatal(err)
	}
	if rc.HTML {
		if err := writeHTML(r, filepath.Join(rc.OutDir, "index.html")); err != nil {
			log.Fatal(err)
		}
	}
	if rc.Publish != "" {
		if err := publish.Upload(ctx, rc.OutDir, rc.Publish); err != nil {
			log.Fatal(err)
		}
	}
}

// override applies the flags given on the command line to rc. Settings
// the recipe leaves empty take the flag defaults.
func override(rc *report.Recipe) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	str := func(name string, dst *string, v string) {
		if set[name] || *dst == "" {
			*dst = v
		}
	}
	str("d", &rc.Database, *flagDB)
	str("driver", &rc.Driver, *flagDriver)
	str("o", &rc.OutDir, *flagOut)
	str("publish", &rc.Publish, *flagPublish)
	if set["j"] || rc.Workers == 0 {
		rc.Workers = *flagJobs
	}
	if set["html"] {
		rc.HTML = *flagHTML
	}
	rc.Filters = append(rc.Filters, filters...)

	all := report.IDs{"*"}
	if *flagAutoremove {
		rc.Operations = append(rc.Operations, report.Operation{Select: all, Autoremove: true})
	}
	if *flagAutosquash != "" {
		var budgets []int
		for _, f := range strings.Split(*flagAutosquash, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil || n < 1 {
				log.Fatalf("bad -autosquash value %q", f)
			}
			budgets = append(budgets, n)
		}
		rc.Operations = append(rc.Operations, report.Operation{Select: all, AutoSquash: budgets})
	}
	if flag.NArg() > 0 {
		rc.Generate = flag.Args()
	}
	if len(rc.Generate) == 0 {
		rc.Generate = all
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func listSystems(ctx context.Context, d *db.DB, filters []db.Filter) {
	n, err := d.CountRuns(ctx, filters)
	if err != nil {
		log.Fatal(err)
	}
	systems, err := d.Systems(ctx, filters)
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range filters {
		fmt.Printf("filter %s\n", f.Name())
	}
	fmt.Printf("%d runs\n", n)
	for _, s := range systems {
		fmt.Printf("%s\t%s\t%d runs\n", s.SHA, s.Description(), s.Runs)
	}
}

func writeHTML(r *report.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteHTML(f, *flagTitle); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
