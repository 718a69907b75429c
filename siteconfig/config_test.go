package siteconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTemplateTarget(t *testing.T) {
	cfg := Default()
	cases := map[string]string{
		"echo":        "Template:Echo",
		"  echo  ":    "Template:Echo",
		"my box":      "Template:My_box",
		":Main Page":  "Main_Page",
		"User:X/sig":  "User:X/sig",
	}
	for in, want := range cases {
		if got := cfg.ResolveTemplateTarget(in); got != want {
			t.Errorf("expected %q to resolve to %q, got %q", in, want, got)
		}
	}
}

func TestExtensionRegistryOrder(t *testing.T) {
	r := NewExtensionRegistry()
	r.Register(&Extension{Name: "ref"})
	r.Register(&Extension{Name: "gallery"})
	r.Register(&Extension{Name: "ref"}) // re-registration keeps position
	names := r.Names()
	require.Len(t, names, 2)
	assert.Equal(t, []string{"ref", "gallery"}, names)
	assert.NotNil(t, r.Lookup("gallery"))
	assert.Nil(t, r.Lookup("poem"))
}

func TestLoadYAML(t *testing.T) {
	y := `
baseURI: "https://wiki.example/"
mainPage: "Start"
linkTrail: "^([a-zäöü]+)"
namespaces:
  - id: 0
    name: ""
  - id: 10
    name: "Template"
    aliases: ["T"]
styles:
  - site.styles
variants:
  - code: en-us
    map:
      colour: color
`
	cfg, err := Load(strings.NewReader(y))
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example/", cfg.BaseURI)
	assert.Equal(t, "Start", cfg.MainPage)
	require.NotNil(t, cfg.LinkTrail)
	assert.Equal(t, "ä", cfg.LinkTrail.FindString("äb")[:2])
	require.Len(t, cfg.Variants, 1)
	assert.Equal(t, "color", cfg.Variants[0].Map["colour"])
	require.NotNil(t, cfg.VariantFor("en-us"))
	assert.Nil(t, cfg.VariantFor("de-at"))
}

func TestLoadYAMLBadRegex(t *testing.T) {
	_, err := Load(strings.NewReader(`linkTrail: "(["`))
	if err == nil {
		t.Error("expected an error for a broken regex, got none")
	}
}

func TestInterwiki(t *testing.T) {
	cfg := Default()
	if !cfg.IsInterwikiLink("wikipedia:Foo") {
		t.Error("expected wikipedia: to be interwiki, isn't")
	}
	if cfg.IsInterwikiLink("Category:Foo") {
		t.Error("expected Category: not to be interwiki, is")
	}
}
