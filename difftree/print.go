// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package difftree

import (
	"fmt"
	"io"
	"strings"
)

// Print draws the tree below the root as an indented graph, one line
// per axis and one per edge. Levels of depth figureDepth and below are
// marked with "||": they end up inside a single figure.
func (t *Tree) Print(w io.Writer, tr Translations, indent string, figureDepth int) {
	printNode(w, t.Root, tr, indent+"  ", indent+"-", figureDepth)
}

func printNode(w io.Writer, n Node, tr Translations, prefix, first string, figureDepth int) {
	props := n.Properties()
	in, interior := n.(*Interior)
	if interior {
		fmt.Fprintf(w, "%s %s\n", first, tr.join(in.Names, true))
		if len(props) > 0 {
			fmt.Fprintf(w, "%s |    Properties: ", prefix)
		}
	} else if len(props) > 0 {
		fmt.Fprintf(w, "%s    Properties: ", first)
	}
	if len(props) > 0 {
		for i, k := range props.Keys() {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			fmt.Fprintf(w, "%s=%s", k, props[k])
		}
		io.WriteString(w, "\n")
	}
	if !interior {
		return
	}

	var mark, markFirst string
	if Depth(in)-1 == figureDepth {
		mark, markFirst = " || ", "-||-"
	}
	for i, e := range in.Edges {
		last := i == len(in.Edges)-1
		_, leaf := e.Child.(*Leaf)
		switch {
		case leaf && len(e.Child.Properties()) == 0 && last:
			io.WriteString(w, prefix+" `- ")
		case leaf && len(e.Child.Properties()) == 0:
			io.WriteString(w, prefix+"|`- ")
		case last:
			io.WriteString(w, prefix+" \\ ")
		default:
			io.WriteString(w, prefix+"|\\ ")
		}
		fmt.Fprintln(w, tr.join(e.Values, true))
		if last {
			printNode(w, e.Child, tr, prefix+"    "+mark, prefix+"  `-"+markFirst, figureDepth)
		} else {
			printNode(w, e.Child, tr, prefix+"|   "+mark, prefix+"| `-"+markFirst, figureDepth)
		}
	}
}

// PrintLevels prints each level of the tree with its distinct values,
// marking the first level shown inside a figure.
func (t *Tree) PrintLevels(w io.Writer, tr Translations, indent string, figureDepth int) {
	for k, l := range t.Levels() {
		if Depth(NodesAtLevel(t.Root, k)[0]) == figureDepth {
			fmt.Fprintf(w, "%s----------- Figure parameters ------------\n", indent)
		}
		fmt.Fprintf(w, "%s%s\n", indent, tr.join(l.Names, true))
		for _, v := range l.Values {
			fmt.Fprintf(w, "%s  %s\n", indent, tr.join(v, true))
		}
	}
}

// String returns the tree as printed by Print with no translations.
func (t *Tree) String() string {
	var b strings.Builder
	t.Print(&b, nil, "", t.Depth())
	return b.String()
}
