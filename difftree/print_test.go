// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"strings"
	"testing"

	"golang.org/x/benchplot/internal/diff"
)

func TestPrint(t *testing.T) {
	tr := scenario(t)
	tr.Autoremove()
	want := `- system
  |\ A
  | ` + "`" + `- option
  |   |` + "`" + `- 1
  |    ` + "`" + `- 2
   \ B
    ` + "`" + `- option
       ` + "`" + `- 1
`
	if d := diff.Diff(want, tr.String()); d != "" {
		t.Errorf("Print:\n%s", d)
	}
}

func TestPrintTranslations(t *testing.T) {
	tr := mustBuild(t, []Level{Field("option.size")}, []Combo{{"option.size": "1"}})
	var b strings.Builder
	tr.Print(&b, Translations{"option.size": "Size"}, "", 1)
	want := "- Size(option.size)\n   `- 1\n"
	if d := diff.Diff(want, b.String()); d != "" {
		t.Errorf("Print:\n%s", d)
	}
}

func TestPrintLevels(t *testing.T) {
	tr := scenario(t)
	tr.Autoremove()
	var b strings.Builder
	tr.PrintLevels(&b, nil, "", 1)
	want := `system
  A
  B
----------- Figure parameters ------------
option
  1
  2
`
	if d := diff.Diff(want, b.String()); d != "" {
		t.Errorf("PrintLevels:\n%s", d)
	}
}

func TestPlot(t *testing.T) {
	tr := scenario(t)
	tr.Autoremove()
	var got []string
	err := tr.Plot(1, func(path []Step, n Node) error {
		var segs []string
		for _, s := range path {
			segs = append(segs, Label(s.Node, s.Edge, nil))
		}
		got = append(got, strings.Join(segs, ","))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := "A,B"; strings.Join(got, ",") != want {
		t.Errorf("figures at %v, want %s", got, want)
	}

	// A tree shallower than the depth is one figure.
	got = nil
	tr.Plot(3, func(path []Step, n Node) error {
		got = append(got, "root")
		if len(path) != 0 {
			t.Errorf("root figure has path %v", path)
		}
		return nil
	})
	if len(got) != 1 {
		t.Errorf("got %d figures, want 1", len(got))
	}
}

func TestFigureDepth(t *testing.T) {
	tr := mustBuild(t, []Level{Field("data"), Field("system"), Field("option")}, scenarioCombos)
	if d := tr.FigureDepth(3, "data"); d != 2 {
		t.Errorf("FigureDepth(3) = %d, want 2", d)
	}
	if d := tr.FigureDepth(1, "data"); d != 1 {
		t.Errorf("FigureDepth(1) = %d, want 1", d)
	}
	tr = scenario(t)
	if d := tr.FigureDepth(3, "data"); d != 0 {
		t.Errorf("FigureDepth with data at the bottom = %d, want 0", d)
	}
}

func TestLabel(t *testing.T) {
	tr := Translations{"option.size": "Size", "4": "four"}
	for _, test := range []struct {
		names []string
		vals  Tuple
		want  string
	}{
		{[]string{"system"}, Tuple{"A"}, "A"},
		{[]string{"data"}, Tuple{"time"}, "time"},
		{[]string{"option.size"}, Tuple{"4"}, "Size=four"},
		{[]string{"system", "option.size"}, Tuple{"A", "2"}, "system/Size=A/2"},
	} {
		n := &Interior{Names: test.names}
		if got := Label(n, &Edge{Values: test.vals}, tr); got != test.want {
			t.Errorf("Label(%v, %v) = %q, want %q", test.names, test.vals, got, test.want)
		}
	}
}
