package pipeline

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wikidom/dataaccess"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/postprocess"
	"github.com/npillmayer/wikidom/siteconfig"
	"github.com/npillmayer/wikidom/token"
	"github.com/npillmayer/wikidom/transform"
)

func testFactory() *Factory {
	env := page.NewEnv(&page.Config{Source: ""})
	return NewFactory(env, siteconfig.Default(), dataaccess.NewInMemory(), postprocess.Options{})
}

func TestPipelinePoolReuse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.pipeline")
	defer teardown()
	//
	f := testFactory()
	opts := transform.Options{IsInclude: true, ExpandTemplates: true}
	p1 := f.checkout(RecipeTokens, opts)
	id1 := p1.id
	f.release(p1)
	p2 := f.checkout(RecipeTokens, opts)
	if p1 != p2 {
		t.Error("expected the released pipeline to be reused, isn't")
	}
	if p2.id == id1 {
		t.Error("expected a fresh pipeline id on checkout, got the old one")
	}
}

func TestPipelineKeySeparation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.pipeline")
	defer teardown()
	//
	f := testFactory()
	a := f.checkout(RecipeTokens, transform.Options{IsInclude: true})
	f.release(a)
	b := f.checkout(RecipeTokens, transform.Options{InlineContext: true})
	if a == b {
		t.Error("expected different option vectors to get different pipelines, didn't")
	}
}

func TestOptionKeyCoversAllFields(t *testing.T) {
	base := transform.Options{}
	variants := []transform.Options{
		{IsInclude: true},
		{ExpandTemplates: true},
		{InlineContext: true},
		{InPHPBlock: true},
		{InTemplate: true},
		{AttrExpansion: true},
		{ExtTag: "ref"},
		{ExtTagOpts: map[string]string{"a": "b"}},
	}
	seen := map[string]bool{base.Key(): true}
	for _, v := range variants {
		k := v.Key()
		if seen[k] {
			t.Errorf("expected option vector %+v to produce a distinct key, got %q", v, k)
		}
		seen[k] = true
	}
}

func TestTokenPipelineExpansion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wikidom.pipeline")
	defer teardown()
	//
	env := page.NewEnv(&page.Config{Source: "{{echo|hi}}"})
	access := dataaccess.NewInMemory().AddTemplate("Template:Echo", "{{{1}}}")
	f := NewFactory(env, siteconfig.Default(), access, postprocess.Options{})
	tp, err := f.TokenPipeline(transform.Options{IsInclude: true, ExpandTemplates: true, InTemplate: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tp.Release()
	frame := &transform.Frame{Args: map[string]string{"1": "hi"}, Depth: 1}
	toks, err := tp.Tokens("{{{1}}}", 0, frame)
	if err != nil {
		t.Fatal(err)
	}
	var text string
	for _, tk := range toks {
		if txt, ok := tk.(*token.Text); ok {
			text += txt.Value
		}
	}
	if text != "hi" {
		t.Errorf("expected parameter substitution to hi, got %q", text)
	}
}
