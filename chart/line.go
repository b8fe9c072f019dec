// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Line draws each leaf of data as one line and writes the chart to
// path+".png". Point i of a line is at x = i+1. Leaves below the first
// level are named by the labels on their path.
func Line(path string, data *Data, o Options) error {
	var lines []*Data
	var names []string
	var walk func(d *Data, prefix []string)
	walk = func(d *Data, prefix []string) {
		if len(d.Children) == 0 {
			lines = append(lines, d)
			names = append(names, strings.Join(prefix, ", "))
			return
		}
		for _, c := range d.Children {
			walk(c, append(prefix[:len(prefix):len(prefix)], c.Label))
		}
	}
	for _, c := range data.Children {
		walk(c, []string{c.Label})
	}
	if len(lines) == 0 {
		return fmt.Errorf("%s: no lines to draw", path)
	}

	pl := newPlot(o)
	pl.X.Min = 1
	n := 0
	for i, d := range lines {
		var pts plotter.XYs
		var errs errorPoints
		for j, s := range d.Samples {
			if len(s) == 0 {
				continue
			}
			mean, low, high := estimate(s, o.Confidence)
			pt := plotter.XY{X: float64(j + 1), Y: mean}
			pts = append(pts, pt)
			if low > 0 || high > 0 {
				errs.XYs = append(errs.XYs, pt)
				errs.YErrors = append(errs.YErrors, struct{ Low, High float64 }{low, high})
			}
		}
		if len(pts) == 0 {
			continue
		}
		n++

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(2)
		if (i/len(palette))%2 == 1 {
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		}
		pl.Add(line)
		if o.Legend {
			pl.Legend.Add(names[i], line)
		}

		if len(errs.XYs) > 0 {
			eb, err := plotter.NewYErrorBars(errs)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			eb.Color = line.Color
			pl.Add(eb)
		}
	}
	if n == 0 {
		return fmt.Errorf("%s: no lines to draw", path)
	}

	return save(pl, path+".png", o)
}
