/*
Package domdbg implements helpers to debug a wikitext DOM.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/
package domdbg

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/npillmayer/wikidom/page"
	"golang.org/x/net/html"
)

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname string
	NodeTmpl *template.Template
	EdgeTmpl *template.Template
	DataTmpl *template.Template
	PdTmpl   *template.Template
}

// ToGraphViz outputs a diagram for a DOM tree. The diagram is in
// GraphViz (DOT) format. Clients provide the root node of the DOM, a
// Writer, and optionally the page bundle; with a bundle present, each
// node's data-parsoid record is drawn alongside the node.
func ToGraphViz(root *html.Node, w io.Writer, bundle *page.Bundle) {
	tmpl, err := template.New("dom").Parse(graphHeadTmpl)
	if err != nil {
		panic(err)
	}
	gparams := graphParamsType{Fontname: "Helvetica"}
	gparams.NodeTmpl = template.Must(template.New("domnode").Funcs(
		template.FuncMap{
			"shortstring": shortText,
		}).Parse(domNodeTmpl))
	gparams.EdgeTmpl = template.Must(template.New("domedge").Parse(domEdgeTmpl))
	gparams.PdTmpl = template.Must(template.New("pdnode").Parse(parsoidTmpl))
	gparams.DataTmpl = template.Must(template.New("pdedge").Parse(pdEdgeTmpl))
	if err = tmpl.Execute(w, gparams); err != nil {
		panic(err)
	}
	dict := make(map[*html.Node]string, 4096)
	nodes(root, w, dict, bundle, &gparams)
	w.Write([]byte("}\n"))
}

type node struct {
	N    *html.Node
	Name string
	Text string
}

func nodes(n *html.Node, w io.Writer, dict map[*html.Node]string, bundle *page.Bundle, gparams *graphParamsType) {
	domNode(n, w, dict, bundle, gparams)
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		nodes(ch, w, dict, bundle, gparams)
		domEdge(n, ch, w, dict, gparams)
	}
}

func domNode(n *html.Node, w io.Writer, dict map[*html.Node]string, bundle *page.Bundle, gparams *graphParamsType) {
	name := dict[n]
	if name == "" {
		name = fmt.Sprintf("node%05d", len(dict)+1)
		dict[n] = name
	}
	if err := gparams.NodeTmpl.Execute(w, &node{n, name, label(n)}); err != nil {
		panic(err)
	}
	if bundle == nil || n.Type != html.ElementNode {
		return
	}
	id := page.NodeID(n)
	if id == 0 {
		return
	}
	if dp := bundle.Parsoid[id]; dp != nil {
		pd := struct {
			Name string
			DSR  string
		}{name, dp.DSR.String()}
		if err := gparams.PdTmpl.Execute(w, pd); err != nil {
			panic(err)
		}
		if err := gparams.DataTmpl.Execute(w, name); err != nil {
			panic(err)
		}
	}
}

type edge struct {
	N1, N2 node
}

func domEdge(n1, n2 *html.Node, w io.Writer, dict map[*html.Node]string, gparams *graphParamsType) {
	e := edge{node{N: n1, Name: dict[n1]}, node{N: n2, Name: dict[n2]}}
	if err := gparams.EdgeTmpl.Execute(w, e); err != nil {
		panic(err)
	}
}

func label(n *html.Node) string {
	if n.Type == html.ElementNode || n.Type == html.DocumentNode {
		return n.Data
	}
	return ""
}

func shortText(n *html.Node) string {
	s := "\"\\\""
	if len(n.Data) > 10 {
		s += n.Data[:10] + "...\\\"\""
	} else {
		s += n.Data + "\\\"\""
	}
	s = strings.Replace(s, "\n", `\\n`, -1)
	s = strings.Replace(s, "\t", `\\t`, -1)
	s = strings.Replace(s, " ", "␣", -1)
	return s
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [{{ .Fontname }} = "helvetica" fontsize=14] ;
   node [fontname = "{{ .Fontname }}" fontsize=14] ;
   edge [fontname = "{{ .Fontname }}" fontsize=14] ;
`

const domNodeTmpl = `{{ if eq .Text "" }}
{{ .Name }}	[ label={{ shortstring .N }} shape=box style=filled fillcolor=grey95 fontname="Courier" fontsize=11.0 ] ;
{{ else }}
{{ .Name }}	[ label={{ printf "%q" .Text }} shape=ellipse style=filled fillcolor=lightblue3 ] ;
{{ end }}
`

const parsoidTmpl = `pd{{ .Name }} [ style="filled" penwidth=1 fillcolor="ivory3" shape="Mrecord" fontsize=12
    label=<<table border="0" cellborder="0" cellpadding="2" cellspacing="0" bgcolor="ivory3">
      <tr><td bgcolor="azure4" align="center" colspan="2"><font color="white">data-parsoid</font></td></tr>
      <tr><td align="right">dsr:</td><td>{{ .DSR }}</td></tr>
    </table>> ] ;
`

const domEdgeTmpl = `{{ .N1.Name }} -> {{ .N2.Name }} [weight=1] ;
`

const pdEdgeTmpl = `{{ . }} -> pd{{ . }} [dir=none weight=1 style="dashed"] ;
`
