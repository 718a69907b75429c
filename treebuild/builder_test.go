package treebuild

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/token"
	"golang.org/x/net/html"
)

func find(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hit := find(c, name); hit != nil {
			return hit
		}
	}
	return nil
}

func TestBuildSimple(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.treebuild")
	defer teardown()
	//
	env := page.NewEnv(&page.Config{Source: "=x="})
	toks := []token.Token{
		&token.StartTag{Name: "h1", DA: &token.DataAttribs{TSR: token.TSR{Start: 0, End: 3}}},
		&token.Text{Value: "x", DA: &token.DataAttribs{TSR: token.TSR{Start: 1, End: 2}}},
		&token.EndTag{Name: "h1", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EOF{},
	}
	_, body, err := Build(toks, env)
	if err != nil {
		t.Fatal(err)
	}
	h1 := find(body, "h1")
	if h1 == nil {
		t.Fatal("expected an h1 in the built DOM, found none")
	}
	id := page.NodeID(h1)
	if id == 0 {
		t.Fatal("expected the h1 to carry a bundle id, doesn't")
	}
	dp := env.Bundle.Parsoid[id]
	if dp == nil || dp.TSR.Start != 0 || dp.TSR.End != 3 {
		t.Errorf("expected the record to keep the token tsr, got %v", dp)
	}
	if env.Bundle.Owner(id) != h1 {
		t.Error("expected the reverse map to resolve the id, doesn't")
	}
}

func TestBuildEscapesText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.treebuild")
	defer teardown()
	//
	env := page.NewEnv(&page.Config{})
	toks := []token.Token{
		&token.Text{Value: "a < b & c", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EOF{},
	}
	_, body, err := Build(toks, env)
	if err != nil {
		t.Fatal(err)
	}
	if body.FirstChild == nil || body.FirstChild.Data != "a < b & c" {
		t.Errorf("expected text to round-trip through escaping, got %q", body.FirstChild.Data)
	}
}

func TestBuildFosterParenting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.treebuild")
	defer teardown()
	//
	env := page.NewEnv(&page.Config{})
	toks := []token.Token{
		&token.StartTag{Name: "table", DA: &token.DataAttribs{TSR: token.TSR{Start: 0, End: 2}}},
		&token.Text{Value: "stray", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EndTag{Name: "table", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EOF{},
	}
	_, body, err := Build(toks, env)
	if err != nil {
		t.Fatal(err)
	}
	first := body.FirstChild
	if first == nil || first.Type != html.TextNode || first.Data != "stray" {
		t.Fatalf("expected the text to be foster-parented before the table, body starts with %v", first)
	}
	if tbl := find(body, "table"); tbl == nil || first.NextSibling != tbl {
		t.Error("expected the table to follow the fostered text, doesn't")
	}
}

func TestBuildExtensionDataMW(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.treebuild")
	defer teardown()
	//
	env := page.NewEnv(&page.Config{})
	toks := []token.Token{
		&token.SelfClosing{Name: "meta", Attrs: []token.Attr{
			{K: "typeof", V: "mw:DOMFragment"},
		}, DA: &token.DataAttribs{
			TSR: token.UnknownTSR,
			Ext: &token.ExtTag{Name: "ref", Inner: "note", Attrs: []token.Attr{{K: "name", V: "n1"}}},
		}},
		&token.EOF{},
	}
	_, body, err := Build(toks, env)
	if err != nil {
		t.Fatal(err)
	}
	meta := find(body, "meta")
	if meta == nil {
		t.Fatal("expected the placeholder meta in the body, found none")
	}
	mw := env.Bundle.MW[page.NodeID(meta)]
	if mw == nil || mw.Name != "ref" || mw.Body == nil || mw.Body.Extsrc != "note" {
		t.Errorf("expected a seeded data-mw record, got %#v", mw)
	}
	if mw.Attrs["name"] != "n1" {
		t.Errorf("expected extension attrs captured, got %#v", mw.Attrs)
	}
}
