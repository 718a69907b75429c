package tokenizer

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wikidom/token"
)

func tokenize(src string) []token.Token {
	return New([]string{"ref"}).Tokenize(src)
}

func TestHeadingLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("=Test 1 2 3=")
	if len(toks) < 3 {
		t.Fatalf("expected at least 3 tokens, got %d: %s", len(toks), token.StringifyTokens(toks))
	}
	h, ok := toks[0].(*token.StartTag)
	if !ok || h.Name != "h1" {
		t.Fatalf("expected h1 start tag, got %v", toks[0])
	}
	if h.DA.TSR.Start != 0 || h.DA.TSR.End != 12 {
		t.Errorf("expected heading tsr [0,12], is %v", h.DA.TSR)
	}
	txt, ok := toks[1].(*token.Text)
	if !ok || txt.Value != "Test 1 2 3" {
		t.Errorf("expected heading text, got %v", toks[1])
	}
}

func TestHeadingLevels(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	for src, want := range map[string]string{
		"=a=":       "h1",
		"==a==":     "h2",
		"======a======": "h6",
	} {
		toks := tokenize(src)
		if name := token.Name(toks[0]); name != want {
			t.Errorf("expected %q to open %s, opens %q", src, want, name)
		}
	}
}

func TestTemplateToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("{{echo|foo}}")
	sc, ok := toks[0].(*token.SelfClosing)
	if !ok || sc.Name != "template" {
		t.Fatalf("expected a template token, got %v", toks[0])
	}
	tx := sc.DA.Transclude
	if tx == nil || tx.Target != "echo" {
		t.Fatalf("expected target echo, got %#v", tx)
	}
	if len(tx.Params) != 1 || tx.Params[0].V != "foo" || tx.Params[0].K != "" {
		t.Errorf("expected one positional param foo, got %#v", tx.Params)
	}
	if sc.DA.TSR.Start != 0 || sc.DA.TSR.End != 12 {
		t.Errorf("expected tsr [0,12], is %v", sc.DA.TSR)
	}
}

func TestTemplateNamedParams(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("{{box|title=Hi|1}}")
	tx := toks[0].DataAttribs().Transclude
	if len(tx.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(tx.Params))
	}
	if tx.Params[0].K != "title" || tx.Params[0].V != "Hi" {
		t.Errorf("expected named param title=Hi, got %#v", tx.Params[0])
	}
	if tx.Params[1].K != "" || tx.Params[1].V != "1" {
		t.Errorf("expected positional param 1, got %#v", tx.Params[1])
	}
}

func TestNestedTemplate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("{{a|{{b}}}}")
	if len(toks) != 2 { // template + EOF
		t.Fatalf("expected a single template token, got %s", token.StringifyTokens(toks))
	}
	tx := toks[0].DataAttribs().Transclude
	if tx.Params[0].V != "{{b}}" {
		t.Errorf("expected nested braces kept in param, got %q", tx.Params[0].V)
	}
}

func TestTemplateArg(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("{{{1|default}}}")
	tx := toks[0].DataAttribs().Transclude
	if tx == nil || !tx.IsParam || tx.Target != "1" {
		t.Fatalf("expected template arg 1, got %#v", tx)
	}
	if len(tx.Params) != 1 || tx.Params[0].V != "default" {
		t.Errorf("expected default value, got %#v", tx.Params)
	}
}

func TestWikiLink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("[[Main Page|the main page]]")
	link := toks[0].DataAttribs().Link
	if link == nil || link.Target != "Main Page" || link.Text != "the main page" {
		t.Errorf("expected wikilink with text, got %#v", link)
	}
}

func TestExtLink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("[https://example.org an example]")
	link := toks[0].DataAttribs().Link
	if link == nil || !link.External || link.Target != "https://example.org" {
		t.Fatalf("expected external link, got %#v", link)
	}
	if link.Text != "an example" {
		t.Errorf("expected link text, got %q", link.Text)
	}
}

func TestFreeLink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("see https://example.org.")
	var free *token.Link
	for _, tk := range toks {
		if da := tk.DataAttribs(); da != nil && da.Link != nil {
			free = da.Link
		}
	}
	if free == nil || !free.Free || free.Target != "https://example.org" {
		t.Errorf("expected free link without trailing dot, got %#v", free)
	}
}

func TestQuotes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("''i'' and '''b'''")
	quotes := 0
	for _, tk := range toks {
		if token.Name(tk) == "mw-quote" {
			quotes++
		}
	}
	if quotes != 4 {
		t.Errorf("expected 4 quote tokens, got %d: %s", quotes, token.StringifyTokens(toks))
	}
}

func TestComment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("a<!-- hidden -->b")
	c, ok := toks[1].(*token.Comment)
	if !ok || c.Text != " hidden " {
		t.Errorf("expected comment token, got %v", toks[1])
	}
}

func TestListLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("** item")
	li, ok := toks[0].(*token.SelfClosing)
	if !ok || li.Name != "listItem" {
		t.Fatalf("expected listItem token, got %v", toks[0])
	}
	if b, _ := token.GetAttr(li.Attrs, "bullets"); b != "**" {
		t.Errorf("expected bullets **, got %q", b)
	}
}

func TestTableLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("{| class=\"wikitable\"\n|-\n| a || b\n|}")
	var names []string
	for _, tk := range toks {
		if n := token.Name(tk); n != "" {
			names = append(names, n)
		}
	}
	want := []string{"table", "tr", "td", "td", "td", "td", "table"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	tbl := toks[0].(*token.StartTag)
	if v, _ := token.GetAttr(tbl.Attrs, "class"); v != "wikitable" {
		t.Errorf("expected table class wikitable, got %q", v)
	}
}

func TestExtensionTag(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize(`<ref name="a">content</ref>`)
	ext := toks[0].DataAttribs().Ext
	if ext == nil || ext.Name != "ref" {
		t.Fatalf("expected ref extension token, got %v", toks[0])
	}
	if ext.Inner != "content" || !ext.Closed {
		t.Errorf("expected captured inner source, got %#v", ext)
	}
	if v, _ := token.GetAttr(ext.Attrs, "name"); v != "a" {
		t.Errorf("expected name attribute a, got %q", v)
	}
}

func TestNowiki(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("<nowiki>{{not a template}}</nowiki>")
	txt, ok := toks[0].(*token.Text)
	if !ok || txt.Value != "{{not a template}}" {
		t.Errorf("expected raw nowiki text, got %v", toks[0])
	}
}

func TestBehaviorSwitch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := tokenize("__NOTOC__")
	sw, ok := toks[0].(*token.SelfClosing)
	if !ok || sw.Name != "behavior-switch" {
		t.Fatalf("expected behavior switch, got %v", toks[0])
	}
	if n, _ := token.GetAttr(sw.Attrs, "name"); n != "NOTOC" {
		t.Errorf("expected switch NOTOC, got %q", n)
	}
}

func TestOffsetsWithBase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	toks := New(nil).TokenizeAt("=a=", 100)
	if tsr := toks[0].DataAttribs().TSR; tsr.Start != 100 || tsr.End != 103 {
		t.Errorf("expected offsets shifted by base, got %v", tsr)
	}
}

func TestEOFAlwaysLast(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.tokenizer")
	defer teardown()
	//
	for _, src := range []string{"", "text", "=h=\n\nmore"} {
		toks := tokenize(src)
		if len(toks) == 0 || toks[len(toks)-1].Kind() != token.KindEOF {
			t.Errorf("expected EOF terminator for %q, got %s", src, token.StringifyTokens(toks))
		}
	}
}
