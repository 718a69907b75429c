package pipeline

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wikidom/dataaccess"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/postprocess"
	"github.com/npillmayer/wikidom/siteconfig"
	"github.com/npillmayer/wikidom/token"
	"github.com/npillmayer/wikidom/transform"
	"golang.org/x/net/html"
)

// tracer traces to channel 'wikidom.pipeline'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom.pipeline")
}

// Recipe names a pipeline shape.
type Recipe string

// The supported recipes.
const (
	// RecipeDocument runs the full chain: tokenize, three transform
	// stages, tree building, post-processing.
	RecipeDocument Recipe = "document"
	// RecipeTokens runs tokenizing plus stages 1–2; used to expand
	// template bodies and attribute values.
	RecipeTokens Recipe = "tokens"
	// RecipeFragment is the full chain at nested level, producing a
	// sub-DOM for extension bodies.
	RecipeFragment Recipe = "fragment"
)

// maxPoolSize caps the number of parked pipelines per cache key.
const maxPoolSize = 100

// Factory builds, caches and reuses pipelines. It is per-document: it
// owns the environment, the pipeline id counter and the pools. Pipelines
// are checked out, reset, and returned on release.
type Factory struct {
	env    *page.Env
	site   *siteconfig.Config
	access dataaccess.Service
	ppOpts postprocess.Options
	pools  map[string][]*Pipeline
	nextID int
	seen   map[string]bool // heading-id dedup state, document-wide
}

// NewFactory sets up the pipeline cache for one document.
func NewFactory(env *page.Env, site *siteconfig.Config, access dataaccess.Service, ppOpts postprocess.Options) *Factory {
	if site == nil {
		site = siteconfig.Default()
	}
	return &Factory{
		env:    env,
		site:   site,
		access: access,
		ppOpts: ppOpts,
		pools:  make(map[string][]*Pipeline),
		seen:   make(map[string]bool),
	}
}

// checkout fetches a pipeline for a recipe and option vector, building
// one when the pool is empty. Each checkout gets a fresh pipeline id for
// tracing.
func (f *Factory) checkout(recipe Recipe, opts transform.Options) *Pipeline {
	key := string(recipe) + "|" + opts.Key()
	pool := f.pools[key]
	var p *Pipeline
	if n := len(pool); n > 0 {
		p = pool[n-1]
		f.pools[key] = pool[:n-1]
		p.Reset()
	} else {
		p = newPipeline(f, recipe, opts)
	}
	f.nextID++
	p.id = f.nextID
	tracer().P("recipe", string(recipe)).Debugf("pipeline %d checked out", p.id)
	return p
}

// release parks a pipeline for reuse. Pools are capped to bound memory.
func (f *Factory) release(p *Pipeline) {
	key := string(p.recipe) + "|" + p.opts.Key()
	if len(f.pools[key]) < maxPoolSize {
		f.pools[key] = append(f.pools[key], p)
	}
}

// Document runs the top-level pipeline over the page source and returns
// the finished document and body.
func (f *Factory) Document() (*html.Node, *html.Node, error) {
	p := f.checkout(RecipeDocument, transform.Options{ExpandTemplates: true})
	defer f.release(p)
	return p.document(f.env.Source(), 0, nil, true)
}

// --- transform.Provider ----------------------------------------------------

// TokenPipeline is part of interface transform.Provider.
func (f *Factory) TokenPipeline(opts transform.Options) (transform.TokenPipeline, error) {
	p := f.checkout(RecipeTokens, opts)
	return &tokenCheckout{p: p}, nil
}

// FragmentPipeline is part of interface transform.Provider.
func (f *Factory) FragmentPipeline(opts transform.Options) (transform.FragmentPipeline, error) {
	p := f.checkout(RecipeFragment, opts)
	return &fragmentCheckout{p: p}, nil
}

type tokenCheckout struct {
	p *Pipeline
}

func (c *tokenCheckout) Tokens(src string, base int, frame *transform.Frame) ([]token.Token, error) {
	return c.p.tokens(src, base, frame)
}

func (c *tokenCheckout) Release() {
	c.p.factory.release(c.p)
}

type fragmentCheckout struct {
	p *Pipeline
}

func (c *fragmentCheckout) Fragment(src string, frame *transform.Frame) (*html.Node, error) {
	_, body, err := c.p.document(src, 0, frame, false)
	if err != nil {
		return nil, fmt.Errorf("fragment pipeline: %w", err)
	}
	return body, nil
}

func (c *fragmentCheckout) Release() {
	c.p.factory.release(c.p)
}
