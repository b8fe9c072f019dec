// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"reflect"
	"testing"
)

func TestSortValues(t *testing.T) {
	vs := []string{"v10", "b", "v2", "1.2.10", "a", "v1", "1.2.9"}
	SortValues(vs)
	want := []string{"1.2.9", "1.2.10", "a", "b", "v1", "v2", "v10"}
	if !reflect.DeepEqual(vs, want) {
		t.Errorf("got %v, want %v", vs, want)
	}
}

func TestCompareValues(t *testing.T) {
	for _, test := range []struct {
		a, b string
		want int
	}{
		{"1", "1", 0},
		{"2", "10", -1},
		{"10", "2", 1},
		{"01", "1", -1},
		{"x86", "x86_64", -1},
		{"4 CPUs", "16 CPUs", -1},
		{"abc", "abd", -1},
		{"", "a", -1},
	} {
		if got := CompareValues(test.a, test.b); got != test.want {
			t.Errorf("CompareValues(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestCompareTuples(t *testing.T) {
	for _, test := range []struct {
		a, b Tuple
		want int
	}{
		{Tuple{"A", "1"}, Tuple{"A", "1"}, 0},
		{Tuple{"A", "2"}, Tuple{"A", "10"}, -1},
		{Tuple{"B", "1"}, Tuple{"A", "2"}, 1},
		{Tuple{"A"}, Tuple{"A", "1"}, -1},
	} {
		if got := CompareTuples(test.a, test.b); got != test.want {
			t.Errorf("CompareTuples(%v, %v) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
