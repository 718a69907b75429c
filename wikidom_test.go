package wikidom_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wikidom"
	"github.com/npillmayer/wikidom/dataaccess"
	"github.com/npillmayer/wikidom/dom"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/siteconfig"
	"golang.org/x/net/html"
)

// echoAccess backs the tests with a Template:Echo returning its first
// argument.
func echoAccess() *dataaccess.InMemory {
	return dataaccess.NewInMemory().AddTemplate("Template:Echo", "{{{1}}}")
}

func transformWith(t *testing.T, src string, access dataaccess.Service, opts wikidom.Options) *wikidom.Result {
	t.Helper()
	cfg := &page.Config{Title: "Test Page", Source: src}
	result, err := wikidom.WikitextToHTML(cfg, siteconfig.Default(), access, opts)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func transform(t *testing.T, src string) *wikidom.Result {
	return transformWith(t, src, echoAccess(), wikidom.Options{})
}

func query(n *html.Node, sel string) []*html.Node {
	return cascadia.QueryAll(n, cascadia.MustCompile(sel))
}

func TestScenarioPlainHeading(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "=Test 1 2 3=")
	hs := query(result.Body, "h1")
	if len(hs) != 1 {
		t.Fatalf("expected a single h1, got %d", len(hs))
	}
	if id := dom.Attr(hs[0], "id"); id != "Test_1_2_3" {
		t.Errorf("expected id Test_1_2_3, is %q", id)
	}
	if spans := query(result.Body, `span[typeof="mw:FallbackId"]`); len(spans) != 0 {
		t.Errorf("expected no fallback span, got %d", len(spans))
	}
}

func TestScenarioNonASCIIHeading(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "=Références=")
	hs := query(result.Body, "h1")
	if len(hs) != 1 {
		t.Fatalf("expected a single h1, got %d", len(hs))
	}
	if id := dom.Attr(hs[0], "id"); id != "Références" {
		t.Errorf("expected id Références, is %q", id)
	}
	spans := query(hs[0], `span[typeof="mw:FallbackId"]`)
	if len(spans) != 1 {
		t.Fatalf("expected a fallback span inside the heading, got %d", len(spans))
	}
	if id := dom.Attr(spans[0], "id"); id != "R.C3.A9f.C3.A9rences" {
		t.Errorf("expected legacy id R.C3.A9f.C3.A9rences, is %q", id)
	}
}

func TestScenarioDuplicateHeadings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "=a=\n=a=")
	hs := query(result.Body, "h1")
	if len(hs) != 2 {
		t.Fatalf("expected two h1, got %d", len(hs))
	}
	if id := dom.Attr(hs[0], "id"); id != "a" {
		t.Errorf("expected first id a, is %q", id)
	}
	if id := dom.Attr(hs[1], "id"); id != "a_2" {
		t.Errorf("expected second id a_2, is %q", id)
	}
}

// dataMW mirrors the serialized data-mw wire format for assertions.
type dataMW struct {
	Parts []struct {
		Template *struct {
			Target struct {
				WT string `json:"wt"`
			} `json:"target"`
			Params map[string]struct {
				WT string `json:"wt"`
			} `json:"params"`
		} `json:"template"`
	} `json:"parts"`
}

func TestScenarioTemplateWrapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "{{echo|foo}}")
	wrappers := query(result.Body, `[typeof~="mw:Transclusion"]`)
	if len(wrappers) != 1 {
		t.Fatalf("expected exactly one transclusion wrapper, got %d", len(wrappers))
	}
	w := wrappers[0]
	if about := dom.Attr(w, "about"); about != "#mwt1" {
		t.Errorf("expected about #mwt1, is %q", about)
	}
	if text := strings.TrimSpace(dom.InnerText(w)); text != "foo" {
		t.Errorf("expected text content foo, is %q", text)
	}
	var mw dataMW
	if err := json.Unmarshal([]byte(dom.Attr(w, "data-mw")), &mw); err != nil {
		t.Fatalf("cannot decode data-mw: %v", err)
	}
	if len(mw.Parts) != 1 || mw.Parts[0].Template == nil {
		t.Fatalf("expected one template part, got %+v", mw.Parts)
	}
	if mw.Parts[0].Template.Target.WT != "echo" {
		t.Errorf("expected target echo, is %q", mw.Parts[0].Template.Target.WT)
	}
	if mw.Parts[0].Template.Params["1"].WT != "foo" {
		t.Errorf("expected param 1 = foo, is %q", mw.Parts[0].Template.Params["1"].WT)
	}
	if metas := query(result.Body, "meta"); len(metas) != 0 {
		t.Errorf("expected no marker metas in the output, got %d", len(metas))
	}
}

func TestScenarioTransclusionInTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "{|\n{{echo|foo}}\n|}")
	wrappers := query(result.Body, `[typeof~="mw:Transclusion"]`)
	if len(wrappers) != 1 {
		t.Fatalf("expected exactly one wrapper, got %d", len(wrappers))
	}
	if about := dom.Attr(wrappers[0], "about"); about != "#mwt1" {
		t.Errorf("expected about #mwt1, is %q", about)
	}
	for _, m := range query(result.Body, "meta") {
		if dom.IsMarkerMeta(m) {
			t.Error("expected no marker metas to remain, found one")
		}
	}
	if tables := query(result.Body, "table"); len(tables) != 1 {
		t.Errorf("expected the table to survive, got %d", len(tables))
	}
}

func TestScenarioTwoTransclusionsOneFosters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "{{echo|<table>}}{{echo|<div>}}")
	wrappers := query(result.Body, `[typeof~="mw:Transclusion"]`)
	if len(wrappers) == 0 || len(wrappers) > 2 {
		t.Fatalf("expected one or two wrappers, got %d", len(wrappers))
	}
	for _, m := range query(result.Body, "meta") {
		if dom.IsMarkerMeta(m) {
			t.Error("expected marker metas to be absent, found one")
		}
	}
}

func TestBodyClassesAndPrefix(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "hello")
	class := dom.Attr(result.Body, "class")
	for _, want := range []string{"mediawiki", "mw-parser-output", "mw-body-content"} {
		if !strings.Contains(class, want) {
			t.Errorf("expected body class %q, classes are %q", want, class)
		}
	}
	htmlElem := query(result.Doc, "html")[0]
	prefix := dom.Attr(htmlElem, "prefix")
	if !strings.Contains(prefix, "dc:") || !strings.Contains(prefix, "mw:") {
		t.Errorf("expected dc: and mw: prefix entries, got %q", prefix)
	}
}

func TestParagraphOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "one\n\ntwo")
	ps := query(result.Body, "p")
	if len(ps) != 2 {
		t.Fatalf("expected two paragraphs, got %d", len(ps))
	}
	if strings.TrimSpace(dom.InnerText(ps[0])) != "one" || strings.TrimSpace(dom.InnerText(ps[1])) != "two" {
		t.Errorf("expected paragraphs one/two, got %q and %q", dom.InnerText(ps[0]), dom.InnerText(ps[1]))
	}
}

func TestBoldItalicOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "''i'' and '''b'''")
	if is := query(result.Body, "i"); len(is) != 1 || dom.InnerText(is[0]) != "i" {
		t.Errorf("expected one i element, got %d", len(is))
	}
	if bs := query(result.Body, "b"); len(bs) != 1 || dom.InnerText(bs[0]) != "b" {
		t.Errorf("expected one b element, got %d", len(bs))
	}
}

func TestListOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "* one\n* two\n** deep")
	uls := query(result.Body, "ul")
	if len(uls) != 2 {
		t.Fatalf("expected outer and nested ul, got %d", len(uls))
	}
	lis := query(result.Body, "li")
	if len(lis) != 3 {
		t.Errorf("expected three list items, got %d", len(lis))
	}
}

func TestWikiLinkOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "[[Main Page|the main page]]s")
	links := query(result.Body, `a[rel="mw:WikiLink"]`)
	if len(links) != 1 {
		t.Fatalf("expected one wiki link, got %d", len(links))
	}
	if href := dom.Attr(links[0], "href"); href != "./Main_Page" {
		t.Errorf("expected href ./Main_Page, is %q", href)
	}
	// the link trail 's' moves into the link
	if text := dom.InnerText(links[0]); text != "the main pages" {
		t.Errorf("expected trail absorbed into link text, got %q", text)
	}
}

func TestExternalLinkOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transform(t, "[https://example.org ex] and https://example.net")
	links := query(result.Body, `a[rel="mw:ExtLink"]`)
	if len(links) != 2 {
		t.Fatalf("expected two external links, got %d", len(links))
	}
	if cls := dom.Attr(links[0], "class"); cls != "external text" {
		t.Errorf("expected class 'external text', is %q", cls)
	}
	if cls := dom.Attr(links[1], "class"); cls != "external free" {
		t.Errorf("expected class 'external free', is %q", cls)
	}
}

func TestSectionWrappingEndToEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	result := transformWith(t, "lead\n==One==\ntext", echoAccess(), wikidom.Options{WrapSections: true})
	sections := query(result.Body, "section")
	if len(sections) != 2 {
		t.Fatalf("expected lead + one section, got %d", len(sections))
	}
	if id := dom.Attr(sections[0], "data-mw-section-id"); id != "0" {
		t.Errorf("expected lead section id 0, is %q", id)
	}
	if id := dom.Attr(sections[1], "data-mw-section-id"); id != "1" {
		t.Errorf("expected section id 1, is %q", id)
	}
}

func TestDeterministicOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	src := "=h=\n{{echo|foo}}\n* a\n* b\n''x''"
	first := transform(t, src)
	second := transform(t, src)
	if first.HTML != second.HTML {
		t.Error("expected two runs over the same input to agree, don't")
	}
}

func TestDSRWithinSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	src := "=h=\ntext\n{{echo|foo}}"
	result := transform(t, src)
	for id, dp := range result.Bundle.Parsoid {
		if !dp.DSR.Known() {
			continue
		}
		if dp.DSR.Start < 0 || dp.DSR.Start > dp.DSR.End || dp.DSR.End > len(src) {
			t.Errorf("node %d violates the DSR invariant: %v", id, dp.DSR)
		}
	}
}

func TestExtensionEndToEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom")
	defer teardown()
	//
	site := siteconfig.Default()
	site.Extensions().Register(&siteconfig.Extension{
		Name: "marquee",
		ToDOM: func(env *page.Env, inv siteconfig.Invocation) (*html.Node, error) {
			wrap := dom.NewElement("body")
			div := dom.NewElement("div")
			dom.SetAttr(div, "class", "ext-marquee")
			div.AppendChild(dom.NewText(inv.Inner))
			wrap.AppendChild(div)
			return wrap, nil
		},
	})
	cfg := &page.Config{Title: "T", Source: "<marquee>hi</marquee>"}
	result, err := wikidom.WikitextToHTML(cfg, site, echoAccess(), wikidom.Options{})
	if err != nil {
		t.Fatal(err)
	}
	divs := query(result.Body, "div.ext-marquee")
	if len(divs) != 1 {
		t.Fatalf("expected the extension output in the DOM, got %d nodes", len(divs))
	}
	if !dom.HasTypeOf(divs[0], "mw:Extension/marquee") {
		t.Errorf("expected typeof mw:Extension/marquee, typeof is %q", dom.TypeOf(divs[0]))
	}
	if dom.InnerText(divs[0]) != "hi" {
		t.Errorf("expected inner text hi, is %q", dom.InnerText(divs[0]))
	}
}
