// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// numRe splits a value into a non-numeric prefix, a number and the rest.
var numRe = regexp.MustCompile(`^([^0-9]*)([0-9]+(?:\.[0-9]+)?)(.*)$`)

// CompareValues orders two edge values. Values are split into a
// non-numeric prefix, a number and a suffix; prefixes compare as
// strings, numbers numerically and suffixes recursively, so "v2" sorts
// before "v10" and "1.2.9" before "1.2.10". Values without a number
// compare as plain strings. The result is -1, 0 or +1, and 0 only for
// identical strings.
func CompareValues(a, b string) int {
	if a == b {
		return 0
	}
	am := numRe.FindStringSubmatch(a)
	bm := numRe.FindStringSubmatch(b)
	if am == nil || bm == nil {
		return strings.Compare(a, b)
	}
	if c := strings.Compare(am[1], bm[1]); c != 0 {
		return c
	}
	an, erra := strconv.ParseFloat(am[2], 64)
	bn, errb := strconv.ParseFloat(bm[2], 64)
	if erra != nil || errb != nil {
		return strings.Compare(a, b)
	}
	if an < bn {
		return -1
	}
	if an > bn {
		return 1
	}
	if c := CompareValues(am[3], bm[3]); c != 0 {
		return c
	}
	// Same number spelled differently, like "1" and "01".
	return strings.Compare(a, b)
}

// CompareTuples orders tuples lexicographically using CompareValues.
// A tuple that is a prefix of another sorts first.
func CompareTuples(a, b Tuple) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := CompareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// SortTuples sorts ts in place using CompareTuples.
func SortTuples(ts []Tuple) {
	sort.Slice(ts, func(i, j int) bool {
		return CompareTuples(ts[i], ts[j]) < 0
	})
}

// SortValues sorts vs in place using CompareValues.
func SortValues(vs []string) {
	sort.Slice(vs, func(i, j int) bool {
		return CompareValues(vs[i], vs[j]) < 0
	})
}
