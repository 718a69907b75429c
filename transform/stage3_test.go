package transform

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wikidom/token"
)

// runStage3 feeds tokens through a stage-3 manager with the given
// handlers registered.
func runStage3(t *testing.T, toks []token.Token, handlers ...interface {
	Register(*Manager)
}) []token.Token {
	t.Helper()
	m := NewManager(3)
	for _, h := range handlers {
		h.Register(m)
	}
	out, err := m.Transform(&Context{}, toks)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func names(toks []token.Token) []string {
	var out []string
	for _, tk := range toks {
		switch tk.Kind() {
		case token.KindStartTag:
			out = append(out, token.Name(tk))
		case token.KindEndTag:
			out = append(out, "/"+token.Name(tk))
		case token.KindText:
			out = append(out, "#")
		case token.KindEOF:
			out = append(out, "$")
		case token.KindNewline:
			out = append(out, "nl")
		case token.KindSelfClosing:
			out = append(out, token.Name(tk)+"/")
		}
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func quote(marks string) token.Token {
	return &token.SelfClosing{Name: "mw-quote",
		Attrs: []token.Attr{{K: "value", V: marks}},
		DA:    &token.DataAttribs{TSR: token.UnknownTSR}}
}

func text(s string) token.Token {
	return &token.Text{Value: s, DA: &token.DataAttribs{TSR: token.UnknownTSR}}
}

func TestQuotesSimple(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		quote("''"), text("i"), quote("''"),
		text(" and "),
		quote("'''"), text("b"), quote("'''"),
		&token.EOF{},
	}, &QuoteTransformer{})
	want := []string{"i", "#", "/i", "#", "b", "#", "/b", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestQuotesAutoClose(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		quote("'''"), text("dangling"),
		&token.Newline{DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EOF{},
	}, &QuoteTransformer{})
	want := []string{"b", "#", "/b", "nl", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected open bold to auto-close at line end, got %v", got)
	}
}

func TestQuotesBoldItalic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		quote("'''''"), text("both"), quote("'''''"), &token.EOF{},
	}, &QuoteTransformer{})
	want := []string{"b", "i", "#", "/i", "/b", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected nested b/i, got %v", got)
	}
}

func listItem(bullets string) token.Token {
	return &token.SelfClosing{Name: "listItem",
		Attrs: []token.Attr{{K: "bullets", V: bullets}},
		DA:    &token.DataAttribs{TSR: token.UnknownTSR}}
}

func nl() token.Token {
	return &token.Newline{DA: &token.DataAttribs{TSR: token.UnknownTSR}}
}

func TestListSimple(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		listItem("*"), text("one"), nl(),
		listItem("*"), text("two"), nl(),
		&token.EOF{},
	}, &ListHandler{})
	want := []string{"ul", "li", "#", "/li", "li", "#", "/li", "/ul", "nl", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestListNesting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		listItem("*"), text("a"), nl(),
		listItem("**"), text("b"), nl(),
		listItem("*"), text("c"), nl(),
		&token.EOF{},
	}, &ListHandler{})
	want := []string{
		"ul", "li", "#",
		"ul", "li", "#", "/li", "/ul",
		"/li", "li", "#",
		"/li", "/ul", "nl", "$",
	}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDefinitionList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		listItem(";"), text("term"), nl(),
		listItem(":"), text("def"), nl(),
		&token.EOF{},
	}, &ListHandler{})
	want := []string{"dl", "dt", "#", "/dt", "dd", "#", "/dd", "/dl", "nl", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected dt/dd inside one dl, got %v", got)
	}
}

func TestListClosesOnPlainLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		listItem("*"), text("item"), nl(),
		text("plain"),
		&token.EOF{},
	}, &ListHandler{})
	want := []string{"ul", "li", "#", "/li", "/ul", "nl", "#", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected the list to close before plain text, got %v", got)
	}
}

func TestParagraphWrapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		text("one"), nl(), nl(),
		text("two"),
		&token.EOF{},
	}, &ParagraphWrapper{})
	want := []string{"p", "#", "/p", "nl", "nl", "p", "#", "/p", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected two paragraphs, got %v", got)
	}
}

func TestParagraphSkipsBlocks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	out := runStage3(t, []token.Token{
		&token.StartTag{Name: "h1", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		text("head"),
		&token.EndTag{Name: "h1", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EOF{},
	}, &ParagraphWrapper{})
	want := []string{"h1", "#", "/h1", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected no paragraph around heading, got %v", got)
	}
}

func TestPreFromIndent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	h := &PreHandler{}
	h.Reset()
	out := runStage3(t, []token.Token{
		text(" code"),
		&token.EOF{},
	}, h)
	want := []string{"pre", "#", "/pre", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected an indent-pre block, got %v", got)
	}
}

func TestIncludeDirectives(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.transform")
	defer teardown()
	//
	m := NewManager(1)
	h := &IncludeHandler{}
	h.Register(m)
	in := []token.Token{
		&token.StartTag{Name: "noinclude", DA: &token.DataAttribs{}},
		text("doc only"),
		&token.EndTag{Name: "noinclude", DA: &token.DataAttribs{}},
		text("kept"),
		&token.EOF{},
	}
	out, err := m.Transform(&Context{Opts: Options{IsInclude: true}}, in)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"#", "$"}
	if got := names(out); !equalNames(got, want) {
		t.Errorf("expected noinclude content dropped, got %v", got)
	}
}

func TestExtractOnlyInclude(t *testing.T) {
	src := "before<onlyinclude>kept</onlyinclude>after<onlyinclude>too</onlyinclude>"
	if got := ExtractOnlyInclude(src); got != "kepttoo" {
		t.Errorf("expected onlyinclude sections, got %q", got)
	}
	if got := ExtractOnlyInclude("plain"); got != "plain" {
		t.Errorf("expected untouched source, got %q", got)
	}
}
