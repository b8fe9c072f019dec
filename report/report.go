// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report turns the runs stored in a benchmark database into
// charts.
//
// Runs are arranged into groups of plots (see Groups). Each plot holds
// a parameter tree (see package difftree) that can be reshaped before
// the figures are generated.
package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"golang.org/x/benchplot/storage/db"
	"golang.org/x/sync/errgroup"
)

// A Report is the set of plots drawn from one database.
type Report struct {
	Groups []*Group
	OutDir string

	// Logf reports progress. It defaults to log.Printf.
	Logf func(format string, args ...interface{})
}

// New reads the plugin groups passing filters from store.
func New(ctx context.Context, store Store, filters []db.Filter, levels Levels, outdir string) (*Report, error) {
	groups, err := Groups(ctx, store, filters, levels, outdir)
	if err != nil {
		return nil, err
	}
	return &Report{Groups: groups, OutDir: outdir, Logf: log.Printf}, nil
}

func (r *Report) logf(format string, args ...interface{}) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// Describe writes every plot of the report to w.
func (r *Report) Describe(w io.Writer) {
	for i, g := range r.Groups {
		fmt.Fprintf(w, "Group %d\n", i+1)
		for j, p := range g.Plots {
			p.Describe(w, fmt.Sprintf("%d.%d", i+1, j+1))
		}
	}
}

// Select returns the plots identified by ids, each at most once.
//
// An id is "*" for all plots, "all_bar" or "all_line" for all bar or
// line charts, "g.*" for all plots of group g or "g.p" for plot p of
// group g, where groups and plots are numbered from 1.
func (r *Report) Select(ids ...string) ([]*Plot, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no plot selected")
	}
	var sel []*Plot
	seen := make(map[*Plot]bool)
	add := func(ps ...*Plot) {
		for _, p := range ps {
			if !seen[p] {
				seen[p] = true
				sel = append(sel, p)
			}
		}
	}
	for _, id := range ids {
		switch id {
		case "*", "all_bar", "all_line":
			for _, g := range r.Groups {
				for _, p := range g.Plots {
					if kindMatches(id, p.Kind) {
						add(p)
					}
				}
			}
			continue
		}
		gid, pid, ok := strings.Cut(id, ".")
		if !ok || gid == "" || pid == "" {
			return nil, fmt.Errorf("failed to parse plot id %q", id)
		}
		gi, err := strconv.Atoi(gid)
		if err != nil {
			return nil, fmt.Errorf("failed to parse plot id %q", id)
		}
		if gi < 1 || gi > len(r.Groups) {
			return nil, fmt.Errorf("group id out of range: %s", id)
		}
		g := r.Groups[gi-1]
		if pid == "*" {
			add(g.Plots...)
			continue
		}
		pi, err := strconv.Atoi(pid)
		if err != nil {
			return nil, fmt.Errorf("failed to parse plot id %q", id)
		}
		if pi < 1 || pi > len(g.Plots) {
			return nil, fmt.Errorf("plot id out of range: %s", id)
		}
		add(g.Plots[pi-1])
	}
	return sel, nil
}

func kindMatches(id string, k Kind) bool {
	switch id {
	case "all_bar":
		return k == BarChart
	case "all_line":
		return k == LineChart
	}
	return true
}

// Generate draws the figures of plots, running at most workers plots
// at once, or all of them if workers <= 0. It waits for every plot and
// returns the first error.
func (r *Report) Generate(ctx context.Context, plots []*Plot, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, p := range plots {
		p := p
		g.Go(func() error {
			return p.Generate(ctx, r.logf)
		})
	}
	return g.Wait()
}

// Plots returns every plot of the report.
func (r *Report) Plots() []*Plot {
	var ps []*Plot
	for _, g := range r.Groups {
		ps = append(ps, g.Plots...)
	}
	return ps
}
