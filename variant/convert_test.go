package variant

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wikidom/dom"
	"github.com/npillmayer/wikidom/page"
	"golang.org/x/net/html"
)

func parseBody(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	var body *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
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

func machine() Machine {
	return TableMachine(map[string]string{"colour": "color", "metre": "meter"})
}

func TestTableMachine(t *testing.T) {
	m := machine()
	out, ok := m.Convert("the colour of a metre stick")
	if !ok || out != "the color of a meter stick" {
		t.Errorf("expected conversion, got %q (ok=%v)", out, ok)
	}
	if _, ok := m.Convert("unrelated"); ok {
		t.Error("expected untouched text to report ok=false, doesn't")
	}
}

func TestConvertTextNodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.variant")
	defer teardown()
	//
	body := parseBody(t, "<html><body><p>colour</p></body></html>")
	env := page.NewEnv(&page.Config{PageLang: "en"})
	if err := Convert(body, env, "en-us", machine()); err != nil {
		t.Fatal(err)
	}
	p := body.FirstChild
	if got := dom.InnerText(p); got != "color" {
		t.Errorf("expected converted text, got %q", got)
	}
	if orig := dom.Attr(p, "data-mw-variant-orig"); orig != "colour" {
		t.Errorf("expected original preserved, got %q", orig)
	}
	if lang := dom.Attr(p, "data-mw-variant-lang"); lang == "" {
		t.Error("expected source variant stamped on p, isn't")
	}
}

func TestConvertSkipsCode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.variant")
	defer teardown()
	//
	body := parseBody(t, "<html><body><code>colour</code></body></html>")
	env := page.NewEnv(&page.Config{PageLang: "en"})
	if err := Convert(body, env, "en-us", machine()); err != nil {
		t.Fatal(err)
	}
	if got := dom.InnerText(body); got != "colour" {
		t.Errorf("expected code content untouched, got %q", got)
	}
}

func TestConvertWikiLink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.variant")
	defer teardown()
	//
	body := parseBody(t, `<html><body><p><a rel="mw:WikiLink" href="./colour" title="colour">colour</a></p></body></html>`)
	env := page.NewEnv(&page.Config{PageLang: "en"})
	if err := Convert(body, env, "en-us", machine()); err != nil {
		t.Fatal(err)
	}
	a := body.FirstChild.FirstChild
	if href := dom.Attr(a, "href"); href != "./color" {
		t.Errorf("expected converted href, got %q", href)
	}
	if title := dom.Attr(a, "title"); title != "color" {
		t.Errorf("expected converted title, got %q", title)
	}
}

func TestConvertSkipsExternalLinks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.variant")
	defer teardown()
	//
	body := parseBody(t, `<html><body><p><a rel="mw:ExtLink" href="https://colour.example">x</a></p></body></html>`)
	env := page.NewEnv(&page.Config{PageLang: "en"})
	if err := Convert(body, env, "en-us", machine()); err != nil {
		t.Fatal(err)
	}
	a := body.FirstChild.FirstChild
	if href := dom.Attr(a, "href"); href != "https://colour.example" {
		t.Errorf("expected external href untouched, got %q", href)
	}
}
