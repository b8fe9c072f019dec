// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// MaxBarDepth is the number of levels a bar chart can show.
const MaxBarDepth = 3

// Bar draws data as a bar chart and writes it to path+".svg".
//
// The first level of data labels the x axis ticks. With two levels,
// the second level is shown as colored bars named in the legend. With
// three levels, the second level labels groups of bars above them and
// the third level is shown as colored bars.
func Bar(path string, data *Data, o Options) error {
	depth := data.Depth()
	if depth == 0 {
		return fmt.Errorf("%s: no bars to draw", path)
	}
	if depth > MaxBarDepth {
		return fmt.Errorf("%s: bar chart data has %d levels, at most %d are supported", path, depth, MaxBarDepth)
	}

	var l barLayout
	for _, c := range data.Children {
		l.add(c, 1)
	}
	if len(l.bars) == 0 {
		return fmt.Errorf("%s: no bars to draw", path)
	}

	pl := newPlot(o)
	pl.X.Tick.Marker = plot.ConstantTicks(l.ticks)
	pl.X.Min = -0.75
	pl.X.Max = l.bars[len(l.bars)-1].x + 0.75
	pl.X.Tick.Length = 0
	if len(l.ticks) > 8 {
		pl.X.Tick.Label.Rotation = -math.Pi / 8
		pl.X.Tick.Label.YAlign = draw.YTop
		pl.X.Tick.Label.XAlign = draw.XLeft
	}

	// Bar widths are canvas lengths, so derive them from the
	// number of slots on the x axis.
	width := vg.Length(o.XSize) * vg.Inch * 0.8 / vg.Length(pl.X.Max-pl.X.Min) * 0.8

	colors := make(map[string]color.Color)
	var errs errorPoints
	top := 0.0
	for _, b := range l.bars {
		mean, low, high := estimate(b.sample, o.Confidence)
		bc, err := plotter.NewBarChart(plotter.Values{mean}, width)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		bc.XMin = b.x
		bc.LineStyle.Width = 0
		clr, ok := colors[b.legend]
		if !ok {
			clr = barColors[len(colors)%len(barColors)]
			colors[b.legend] = clr
			if o.Legend && b.legend != "" {
				pl.Legend.Add(b.legend, bc)
			}
		}
		bc.Color = clr
		pl.Add(bc)

		if low > 0 || high > 0 {
			errs.XYs = append(errs.XYs, plotter.XY{X: b.x, Y: mean})
			errs.YErrors = append(errs.YErrors, struct{ Low, High float64 }{low, high})
		}
		top = math.Max(top, mean+high)
	}
	if len(errs.XYs) > 0 {
		eb, err := plotter.NewYErrorBars(errs)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		pl.Add(eb)
	}

	if len(l.groups.Labels) > 0 {
		for i := range l.groups.XYs {
			l.groups.XYs[i].Y = top * 1.05
		}
		labels, err := plotter.NewLabels(l.groups)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = vg.Length(o.BarFontSize)
			labels.TextStyle[i].XAlign = draw.XCenter
		}
		pl.Add(labels)
		pl.Y.Max = 1.2 * top
	}

	return save(pl, path+".svg", o)
}

type barSlot struct {
	x      float64
	legend string
	sample []float64
}

// barLayout assigns x positions to the bars of a chart.
type barLayout struct {
	x      float64
	bars   []barSlot
	ticks  []plot.Tick
	groups plotter.XYLabels
}

func (l *barLayout) add(d *Data, level int) {
	if len(d.Children) == 0 {
		xs := flatten(d.Samples)
		if len(xs) == 0 {
			return
		}
		b := barSlot{x: l.x, sample: xs}
		if level == 1 {
			l.ticks = append(l.ticks, plot.Tick{Value: l.x, Label: d.Label})
		} else {
			b.legend = d.Label
		}
		l.bars = append(l.bars, b)
		l.x++
		return
	}

	first := len(l.bars)
	for _, c := range d.Children {
		l.add(c, level+1)
	}
	if first == len(l.bars) {
		return
	}
	mid := (l.bars[first].x + l.bars[len(l.bars)-1].x) / 2
	switch level {
	case 1:
		l.ticks = append(l.ticks, plot.Tick{Value: mid, Label: d.Label})
		l.x++
	case 2:
		l.groups.XYs = append(l.groups.XYs, plotter.XY{X: mid})
		l.groups.Labels = append(l.groups.Labels, d.Label)
		l.x += 0.5
	}
}
