// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

var palette = []color.Color{
	rgb(0x34, 0x8A, 0xBD),
	rgb(0xA6, 0x06, 0x28),
	rgb(0x46, 0x78, 0x21),
	rgb(0xCF, 0x44, 0x57),
	rgb(0x18, 0x84, 0x87),
	rgb(0xE2, 0x4A, 0x33),
}

// barColors extends the palette with three shades of gray.
var barColors = append(palette[:len(palette):len(palette)],
	color.Gray{0x4c}, color.Gray{0x80}, color.Gray{0xb3})

func rgb(r, g, b uint8) color.Color { return color.RGBA{R: r, G: g, B: b, A: 0xff} }

// newPlot returns a plot with titles, labels and fonts set from o.
func newPlot(o Options) *plot.Plot {
	pl := plot.New()
	pl.Title.Text = o.Title
	pl.Title.TextStyle.Font.Size = vg.Length(o.TitleFontSize)
	pl.X.Label.Text = o.XLabel
	pl.X.Label.TextStyle.Font.Size = vg.Length(o.XLabelFontSize)
	pl.Y.Label.Text = o.YLabel
	pl.Y.Label.TextStyle.Font.Size = vg.Length(o.YLabelFontSize)
	pl.X.Tick.Label.Font.Size = vg.Length(o.XTickFontSize)
	pl.Y.Tick.Label.Font.Size = vg.Length(o.YTickFontSize)
	pl.Legend.TextStyle.Font.Size = vg.Length(o.LegendFontSize)
	pl.Legend.Top = true
	pl.Y.Min = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)
	return pl
}

// save draws pl and the watermark into path, creating its directory.
// The format is chosen by the extension of path.
func save(pl *plot.Plot, path string, o Options) (err error) {
	w, h := vg.Length(o.XSize)*vg.Inch, vg.Length(o.YSize)*vg.Inch
	var can vg.CanvasWriterTo
	switch ext := filepath.Ext(path); ext {
	case ".png":
		can = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h),
			vgimg.UseDPI(o.DPI), vgimg.UseBackgroundColor(color.White))}
	case ".svg":
		can = vgsvg.New(w, h)
	default:
		return fmt.Errorf("unsupported chart format %q", ext)
	}

	dc := draw.New(can)
	pl.Draw(dc)
	if o.Watermark != "" {
		sty := pl.Title.TextStyle
		sty.Font.Size = vg.Length(o.WatermarkFontSize)
		sty.Color = color.Gray{0x80}
		sty.XAlign = draw.XRight
		sty.YAlign = draw.YBottom
		dc.FillText(sty, vg.Point{X: dc.Max.X - vg.Millimeter, Y: dc.Min.Y + vg.Millimeter}, o.Watermark)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = can.WriteTo(f)
	return err
}

// errorPoints is the input of a plotter.YErrorBars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}
