package treebuild

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/token"
	"golang.org/x/net/html"
)

// tracer traces to channel 'wikidom.treebuild'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom.treebuild")
}

// voidElements never get a closing tag in the serialization.
var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "link": true, "meta": true, "wbr": true,
}

// Build turns a transformed token stream into a DOM. Tokens are
// serialized with their bundle ids embedded in a placeholder attribute
// and run through the conformant HTML5 tree builder, which takes care of
// implied elements and foster-parenting. Afterwards the bundle's reverse
// map is rebuilt from the parsed tree.
//
// Build returns the document node and its body.
func Build(toks []token.Token, env *page.Env) (*html.Node, *html.Node, error) {
	ser := serialize(toks, env)
	doc, err := html.Parse(strings.NewReader(ser))
	if err != nil {
		return nil, nil, fmt.Errorf("tree building: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return nil, nil, fmt.Errorf("tree building: no body in parsed document")
	}
	claimIDs(body, env.Bundle)
	tracer().Debugf("built DOM from %d tokens", len(toks))
	return doc, body, nil
}

// serialize renders the token stream as an HTML string. Every tag token
// allocates a bundle record seeded from its data attribs; the record id
// travels in the placeholder attribute and is re-attached to the parsed
// node by claimIDs.
func serialize(toks []token.Token, env *page.Env) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head></head><body>")
	for _, tk := range toks {
		switch t := tk.(type) {
		case *token.StartTag:
			writeTag(&sb, t.Name, t.Attrs, t.DA, env, false)
		case *token.SelfClosing:
			writeTag(&sb, t.Name, t.Attrs, t.DA, env, !voidElements[t.Name])
		case *token.EndTag:
			sb.WriteString("</")
			sb.WriteString(t.Name)
			sb.WriteString(">")
		case *token.Text:
			sb.WriteString(html.EscapeString(t.Value))
		case *token.Comment:
			sb.WriteString("<!--")
			sb.WriteString(t.Text)
			sb.WriteString("-->")
		case *token.Newline:
			sb.WriteString("\n")
		case *token.EOF:
			// end of stream
		}
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// writeTag serializes one tag with its allocated bundle id. closeIt
// appends an immediate end tag for self-contained non-void elements.
func writeTag(sb *strings.Builder, name string, attrs []token.Attr, da *token.DataAttribs, env *page.Env, closeIt bool) {
	id := env.Bundle.NextID()
	dp := page.FromDataAttribs(da)
	env.Bundle.Parsoid[id] = dp
	if da != nil && da.Ext != nil {
		env.Bundle.MW[id] = extDataMW(da.Ext)
	}
	sb.WriteString("<")
	sb.WriteString(name)
	for _, a := range attrs {
		sb.WriteString(" ")
		sb.WriteString(a.K)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.V))
		sb.WriteString(`"`)
	}
	sb.WriteString(" ")
	sb.WriteString(page.IDAttr)
	sb.WriteString(`="`)
	sb.WriteString(strconv.Itoa(id))
	sb.WriteString(`">`)
	if closeIt {
		sb.WriteString("</")
		sb.WriteString(name)
		sb.WriteString(">")
	}
}

// extDataMW seeds the data-mw record of an extension placeholder.
func extDataMW(ext *token.ExtTag) *page.DataMW {
	mw := &page.DataMW{Name: ext.Name, Body: &page.ExtBody{Extsrc: ext.Inner}}
	if len(ext.Attrs) > 0 {
		mw.Attrs = make(map[string]string, len(ext.Attrs))
		for _, a := range ext.Attrs {
			mw.Attrs[a.K] = a.V
		}
	}
	return mw
}

// claimIDs rebuilds the bundle's reverse map from the parsed tree.
func claimIDs(n *html.Node, b *page.Bundle) {
	if n.Type == html.ElementNode {
		if id := page.NodeID(n); id != 0 {
			b.Claim(id, n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		claimIDs(c, b)
	}
}

// findBody locates the body element of a parsed document.
func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}
