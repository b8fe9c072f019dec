// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart renders benchmark results as bar and line charts.
package chart

import "github.com/aclements/go-moremath/stats"

// Data is a tree of labeled measurements.
//
// Interior nodes have Children and no Samples. For a bar chart, a
// leaf is one bar and Samples holds one sample whose mean is the bar
// height. For a line chart, a leaf is one line and Samples[i] holds
// the measurements of the line's i'th point.
type Data struct {
	Label    string
	Children []*Data
	Samples  [][]float64
}

// Child returns the child of d labeled label, adding it if necessary.
func (d *Data) Child(label string) *Data {
	for _, c := range d.Children {
		if c.Label == label {
			return c
		}
	}
	c := &Data{Label: label}
	d.Children = append(d.Children, c)
	return c
}

// Depth returns the number of levels below d.
func (d *Data) Depth() int {
	max := 0
	for _, c := range d.Children {
		if x := c.Depth() + 1; x > max {
			max = x
		}
	}
	return max
}

// Empty reports whether d contains no measurements.
func (d *Data) Empty() bool {
	for _, s := range d.Samples {
		if len(s) > 0 {
			return false
		}
	}
	for _, c := range d.Children {
		if !c.Empty() {
			return false
		}
	}
	return true
}

// estimate returns the mean of xs and the distances from the mean to
// the ends of its confidence interval. The interval is empty when xs
// has fewer than two values.
func estimate(xs []float64, confidence float64) (mean, low, high float64) {
	if len(xs) < 2 {
		return stats.Mean(xs), 0, 0
	}
	mean, lo, hi := stats.MeanCI(xs, confidence)
	return mean, mean - lo, hi - mean
}

func flatten(samples [][]float64) []float64 {
	var xs []float64
	for _, s := range samples {
		xs = append(xs, s...)
	}
	return xs
}
