// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/benchplot/difftree"
	"golang.org/x/benchplot/storage/db"
)

// A Store is the benchmark database a report reads.
type Store interface {
	PluginGroups(ctx context.Context, filters []db.Filter) ([]*db.Instance, error)
	Plugin(ctx context.Context, sha string) (*db.Plugin, error)
	OptionFields(ctx context.Context, table, sha string) (map[string]string, error)
	VersionFields(ctx context.Context, table, sha string) (map[string]string, error)
	DataMeta(ctx context.Context, pluginSHA string) ([]db.DataField, error)
	ResultsPerRun(ctx context.Context, table string) (int, error)
	Results(ctx context.Context, table, field, systemSHA, groupSHA string) ([][]float64, error)
}

// Levels are the level orders used to build the trees of bar and line
// charts. Each level is one of "system", "option", "version" or "data".
type Levels struct {
	Bar  []string `yaml:"bar"`
	Line []string `yaml:"line"`
}

// DefaultLevels puts the measured data at the root and the systems
// nearest to the leaves.
var DefaultLevels = Levels{
	Bar:  []string{"data", "version", "option", "system"},
	Line: []string{"data", "version", "option", "system"},
}

// A Group is a set of plugin groups that ran the same plugins, possibly
// with different options and on different systems. Each plugin of a
// group gets one Plot.
type Group struct {
	// Instances holds the plugins of each plugin group and system pair.
	Instances [][]*db.Instance
	Plots     []*Plot
}

// Combo keys.
const (
	keySystem   = "system"
	keyOptions  = "options"
	keyVersions = "versions"
	keyGroup    = "group"
	keyName     = "name"
)

// Groups reads the plugin groups passing filters and arranges them
// into plot groups. Rows of the same plugin group and system are
// grouped together, and such sets are merged when they contain the same
// plugins. Plots write their figures below outdir.
func Groups(ctx context.Context, store Store, filters []db.Filter, levels Levels, outdir string) ([]*Group, error) {
	insts, err := store.PluginGroups(ctx, filters)
	if err != nil {
		return nil, err
	}

	systems := make(difftree.Translations)
	var order []string
	sets := make(map[string][]*db.Instance)
	for _, inst := range insts {
		k := inst.GroupSHA + "/" + inst.SystemSHA
		if _, ok := sets[k]; !ok {
			order = append(order, k)
		}
		sets[k] = append(sets[k], inst)
		if s := inst.System; s != nil {
			systems[inst.SystemSHA] = fmt.Sprintf("%s %d CPUs Kernel %s", s.CustomInfo, s.NrCPUsOn, s.Kernel)
		}
	}

	var groups []*Group
Sets:
	for _, k := range order {
		set := sets[k]
		for _, g := range groups {
			if samePlugins(g.Instances[0], set) {
				g.Instances = append(g.Instances, set)
				continue Sets
			}
		}
		groups = append(groups, &Group{Instances: [][]*db.Instance{set}})
	}

	for _, g := range groups {
		var plugins []string
		combos := make(map[string][]difftree.Combo)
		names := make(map[string]bool)
		for _, set := range g.Instances {
			for _, inst := range set {
				if _, ok := combos[inst.PluginSHA]; !ok {
					plugins = append(plugins, inst.PluginSHA)
				}
				name := inst.Module + "." + inst.Name
				names[name] = true
				combos[inst.PluginSHA] = append(combos[inst.PluginSHA], difftree.Combo{
					keySystem:   inst.SystemSHA,
					keyOptions:  inst.OptionsSHA,
					keyVersions: inst.VersionsSHA,
					keyGroup:    inst.GroupSHA,
					keyName:     name,
				})
			}
		}
		var sorted []string
		for n := range names {
			sorted = append(sorted, n)
		}
		sort.Strings(sorted)
		dir := filepath.Join(outdir, strings.Join(sorted, "#"))

		for _, sha := range plugins {
			p, err := newPlot(ctx, store, sha, combos[sha], levels, dir, systems)
			if err != nil {
				return nil, err
			}
			g.Plots = append(g.Plots, p)
		}
	}
	return groups, nil
}

func samePlugins(a, b []*db.Instance) bool {
	if len(a) != len(b) {
		return false
	}
	have := make(map[string]bool)
	for _, inst := range a {
		have[inst.PluginSHA] = true
	}
	for _, inst := range b {
		if !have[inst.PluginSHA] {
			return false
		}
	}
	return true
}
