/*
Package wikidom is a bidirectional wikitext↔HTML transformer.

Wikitext is converted to a structured HTML DOM carrying round-trip
metadata: per-element source ranges (DSR), template provenance
(data-mw), and a page bundle holding the side-tables. The conversion
runs as a staged pipeline (tokenizing, three ordered token transform
stages, HTML5 tree building, and an ordered sequence of DOM
post-processing passes) with per-stage pipeline caching and reentrancy
for nested transclusion contexts.

Processing is single-threaded and cooperative per document. Independent
documents run on independent environments; nothing is shared between
them.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/
package wikidom

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wikidom/dataaccess"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/pipeline"
	"github.com/npillmayer/wikidom/postprocess"
	"github.com/npillmayer/wikidom/siteconfig"
	"golang.org/x/net/html"
)

// tracer traces to channel 'wikidom'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom")
}

// Options configures one transform run.
type Options struct {
	WrapSections bool     // wrap heading-led regions into <section>
	Linting      bool     // run the (report-only) lint pass
	RedLinks     bool     // annotate links to missing pages
	BodyOnly     bool     // render only the body's inner HTML
	Variant      string   // target language variant, "" = none
	Dump         []string // pass shortcuts to dump pre/post DOM for
	Trace        bool     // time the post-processing passes
}

// Result is the outcome of a wikitext-to-HTML transform: the finished
// DOM, its serialization, and the page bundle with the data-parsoid and
// data-mw side-tables.
type Result struct {
	Doc    *html.Node
	Body   *html.Node
	HTML   string
	Bundle *page.Bundle
}

// WikitextToHTML transforms a page's wikitext into HTML. site and access
// may be nil, in which case a default site configuration and an empty
// in-memory data service are used.
func WikitextToHTML(cfg *page.Config, site *siteconfig.Config, access dataaccess.Service, opts Options) (*Result, error) {
	if site == nil {
		site = siteconfig.Default()
	}
	if access == nil {
		access = dataaccess.NewInMemory()
	}
	env := page.NewEnv(cfg)
	factory := pipeline.NewFactory(env, site, access, procOptions(opts))
	doc, body, err := factory.Document()
	if err != nil {
		return nil, err
	}
	rendered, err := render(doc, body, opts.BodyOnly)
	if err != nil {
		return nil, err
	}
	tracer().P("page", cfg.Title).Debugf("transformed %d bytes of wikitext", len(cfg.Source))
	return &Result{Doc: doc, Body: body, HTML: rendered, Bundle: env.Bundle}, nil
}

func procOptions(opts Options) postprocess.Options {
	dump := make(map[string]bool, len(opts.Dump))
	for _, d := range opts.Dump {
		dump[d] = true
	}
	return postprocess.Options{
		WrapSections:      opts.WrapSections,
		Linting:           opts.Linting,
		RedLinks:          opts.RedLinks,
		InlineDataAttribs: true,
		VariantTarget:     opts.Variant,
		Dump:              dump,
		TraceTimes:        opts.Trace,
	}
}

func render(doc, body *html.Node, bodyOnly bool) (string, error) {
	var sb strings.Builder
	if bodyOnly {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&sb, c); err != nil {
				return "", err
			}
		}
		return sb.String(), nil
	}
	if err := html.Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}
