// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// Options control the appearance of a chart.
//
// Options are usually decoded from string properties, see Decode.
// Lengths are in inches and font sizes in points.
type Options struct {
	Title  string `prop:"title"`
	XLabel string `prop:"xlabel"`
	YLabel string `prop:"ylabel"`

	// Confidence is the confidence level of error bars.
	Confidence float64 `prop:"confidence"`
	Legend     bool    `prop:"legend"`

	XSize float64 `prop:"xsize"`
	YSize float64 `prop:"ysize"`
	DPI   int     `prop:"dpi"`

	LegendFontSize float64 `prop:"legendfontsize"`
	XLabelFontSize float64 `prop:"xlabelfontsize"`
	YLabelFontSize float64 `prop:"ylabelfontsize"`
	XTickFontSize  float64 `prop:"xtickfontsize"`
	YTickFontSize  float64 `prop:"ytickfontsize"`
	BarFontSize    float64 `prop:"barfontsize"`
	TitleFontSize  float64 `prop:"titlefontsize"`

	Watermark         string  `prop:"watermark"`
	WatermarkFontSize float64 `prop:"watermarkfontsize"`
}

// DefaultWatermark is printed in the lower right corner of every chart
// unless the watermark property is overridden.
const DefaultWatermark = "Generated with benchplot"

// DefaultOptions returns the options used for properties that are not set.
func DefaultOptions() Options {
	return Options{
		Confidence:        0.95,
		Legend:            true,
		XSize:             16,
		YSize:             9,
		DPI:               300,
		LegendFontSize:    15,
		XLabelFontSize:    17,
		YLabelFontSize:    17,
		XTickFontSize:     15,
		YTickFontSize:     15,
		BarFontSize:       15,
		TitleFontSize:     20,
		Watermark:         DefaultWatermark,
		WatermarkFontSize: 13,
	}
}

// Properties returns the sorted names of all known chart properties.
func Properties() []string {
	var names []string
	for k := range DefaultOptions().asMap() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (o Options) asMap() map[string]interface{} {
	m := make(map[string]interface{})
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "prop", Result: &m})
	if err == nil {
		err = d.Decode(o)
	}
	if err != nil {
		panic(err)
	}
	return m
}

// Decode returns the defaults overridden by props.
// Properties that do not name a chart option are ignored.
func Decode(props map[string]string) (Options, error) {
	o := DefaultOptions()
	if err := decode(props, &o, false); err != nil {
		return o, err
	}
	return o, nil
}

// ParseProperty checks that value is valid for the chart property name.
func ParseProperty(name, value string) error {
	o := DefaultOptions()
	if err := decode(map[string]string{name: value}, &o, true); err != nil {
		return fmt.Errorf("property %s: %w", name, err)
	}
	return nil
}

func decode(props map[string]string, o *Options, strict bool) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "prop",
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		Result:           o,
	})
	if err != nil {
		return err
	}
	return d.Decode(props)
}
