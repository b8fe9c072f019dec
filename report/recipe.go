// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/benchplot/storage/db"
	"gopkg.in/yaml.v3"
)

// A Recipe describes a complete report: where the runs come from, how
// the plots are reshaped and which of them are generated.
//
// A recipe file looks like:
//
//	database: results.sqlite
//	outdir: /tmp/report
//	filters:
//	  - table: system
//	    condition: system.nr_cpus >= 4
//	operations:
//	  - select: "*"
//	    autoremove: true
//	  - select: all_bar
//	    promote: [system]
//	    autosquash: [8]
//	  - select: "1.1"
//	    set: {title: Kernel build time}
//	generate: ["*"]
//	html: true
type Recipe struct {
	Database string      `yaml:"database"`
	Driver   string      `yaml:"driver"`
	OutDir   string      `yaml:"outdir"`
	Filters  []db.Filter `yaml:"filters"`
	// Levels default to DefaultLevels.
	Levels     *Levels     `yaml:"levels"`
	Operations []Operation `yaml:"operations"`
	// Generate selects the plots to draw; see Report.Select.
	Generate IDs   `yaml:"generate"`
	Workers  int  `yaml:"workers"`
	HTML     bool `yaml:"html"`
	// Publish is an optional gs://bucket/prefix destination.
	Publish string `yaml:"publish"`
}

// An Operation reshapes the selected plots. The steps are applied in
// the order of the fields.
type Operation struct {
	Select     IDs               `yaml:"select"`
	Rebuild    bool              `yaml:"rebuild"`
	Autoremove bool              `yaml:"autoremove"`
	Promote    []string          `yaml:"promote"`
	Squash     []string          `yaml:"squash"`
	AutoSquash []int             `yaml:"autosquash"`
	Replace    map[string]string `yaml:"replace"`
	Set        map[string]string `yaml:"set"`
}

// IDs is a list of plot ids. In YAML it may also be written as a
// single id.
type IDs []string

func (ids *IDs) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*ids = IDs{n.Value}
		return nil
	}
	var s []string
	if err := n.Decode(&s); err != nil {
		return err
	}
	*ids = s
	return nil
}

// ReadRecipe parses a YAML recipe. Unknown fields are errors.
func ReadRecipe(r io.Reader) (*Recipe, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	rc := new(Recipe)
	if err := dec.Decode(rc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("recipe: %w", err)
	}
	if rc.Levels == nil {
		l := DefaultLevels
		rc.Levels = &l
	}
	return rc, nil
}

// LoadRecipe reads the recipe file path.
func LoadRecipe(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rc, err := ReadRecipe(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rc, nil
}

// Apply runs op on the plots it selects. If any step fails on any
// plot, all selected plots are left as they were.
func (r *Report) Apply(ctx context.Context, op Operation) error {
	plots, err := r.Select(op.Select...)
	if err != nil {
		return err
	}
	saved := make([]plotState, len(plots))
	for i, p := range plots {
		saved[i] = p.save()
	}
	for _, p := range plots {
		if err := op.apply(ctx, p); err != nil {
			for i, p := range plots {
				p.restore(saved[i])
			}
			return err
		}
	}
	return nil
}

func (op Operation) apply(ctx context.Context, p *Plot) error {
	if op.Rebuild {
		if err := p.Rebuild(ctx); err != nil {
			return err
		}
	}
	if op.Autoremove {
		p.Autoremove()
	}
	if len(op.Promote) > 0 {
		if err := p.Promote(op.Promote...); err != nil {
			return err
		}
	}
	if len(op.Squash) > 0 {
		if err := p.Squash(op.Squash...); err != nil {
			return err
		}
	}
	if len(op.AutoSquash) > 0 {
		if err := p.AutoSquash(op.AutoSquash); err != nil {
			return err
		}
	}
	for from, to := range op.Replace {
		p.AddReplaceRule(from, to)
	}
	for name, v := range op.Set {
		if err := p.SetProperty(name, v); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}
