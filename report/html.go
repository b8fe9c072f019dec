// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/safehtml/template"
	"golang.org/x/benchplot/difftree"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.fig { margin: 1em 0 2em; }
.fig img { max-width: 100%; }
.same { color: #555; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Groups}}
<h2>Group {{.ID}}</h2>
{{range .Plots}}
<h3>{{.ID}} {{.Name}} <small>({{.Kind}} chart)</small></h3>
{{with .Same}}<ul class="same">{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{range .Figures}}
<div class="fig">
<p>{{.Label}}</p>
<a href="{{.Src}}"><img src="{{.Src}}" alt="{{.Label}}"></a>
</div>
{{end}}
{{end}}
{{end}}
</body>
</html>
`

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type htmlPage struct {
	Title  string
	Groups []htmlGroup
}

type htmlGroup struct {
	ID    int
	Plots []htmlPlot
}

type htmlPlot struct {
	ID, Name, Kind string
	Same           []string
	Figures        []htmlFigure
}

type htmlFigure struct {
	Label, Src string
}

// WriteHTML writes an HTML index of the figures generated so far to w.
// Image links are relative to the report's output directory, so the
// index is meant to be stored there.
func (r *Report) WriteHTML(w io.Writer, title string) error {
	page := htmlPage{Title: title}
	for i, g := range r.Groups {
		hg := htmlGroup{ID: i + 1}
		for j, p := range g.Plots {
			if len(p.Generated) == 0 {
				continue
			}
			hp := htmlPlot{ID: fmt.Sprintf("%d.%d", i+1, j+1), Name: p.Name(), Kind: p.Kind.String()}
			for _, k := range difftree.Props(p.Tree.Removed).Keys() {
				hp.Same = append(hp.Same, p.Translations.Get(k)+" = "+p.Translations.Get(p.Tree.Removed[k]))
			}
			for _, f := range p.Generated {
				src, err := r.relURL(f.File)
				if err != nil {
					return err
				}
				label := strings.Join(f.Labels, " / ")
				if label == "" {
					label = p.Name()
				}
				hp.Figures = append(hp.Figures, htmlFigure{Label: label, Src: src})
			}
			hg.Plots = append(hg.Plots, hp)
		}
		if len(hg.Plots) > 0 {
			page.Groups = append(page.Groups, hg)
		}
	}
	return indexTmpl.Execute(w, page)
}

// relURL returns the URL of file relative to the output directory.
func (r *Report) relURL(file string) (string, error) {
	rel, err := filepath.Rel(r.OutDir, file)
	if err != nil {
		return "", err
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/"), nil
}
