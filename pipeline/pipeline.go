package pipeline

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/wikidom/postprocess"
	"github.com/npillmayer/wikidom/token"
	"github.com/npillmayer/wikidom/tokenizer"
	"github.com/npillmayer/wikidom/transform"
	"github.com/npillmayer/wikidom/treebuild"
	"golang.org/x/net/html"
)

// resetter is implemented by every stateful transform handler.
type resetter interface {
	Reset()
}

// Pipeline is one assembled chain: tokenizer, the three transform
// stages, and (for document recipes) tree building plus post-processing.
// Pipelines are pooled by the factory; Reset clears all handler state
// between checkouts.
type Pipeline struct {
	id        int
	recipe    Recipe
	opts      transform.Options
	factory   *Factory
	tkz       tokenizer.Tokenizer
	stages    [3]*transform.Manager
	resetters []resetter
	proc      *postprocess.Processor
}

// newPipeline assembles a pipeline for a recipe. Handler registration
// order within each stage is authoritative; reordering changes output.
func newPipeline(f *Factory, recipe Recipe, opts transform.Options) *Pipeline {
	p := &Pipeline{
		recipe:  recipe,
		opts:    opts,
		factory: f,
		tkz:     tokenizer.New(f.site.Extensions().Names()),
	}
	for i := range p.stages {
		p.stages[i] = transform.NewManager(i + 1)
	}
	reg := func(h interface {
		resetter
		Register(*transform.Manager)
	}, stage int) {
		h.Register(p.stages[stage-1])
		p.resetters = append(p.resetters, h)
	}

	// stage 1: include directives
	reg(&transform.IncludeHandler{}, 1)

	// stage 2: template expansion first, then extensions, then attribute
	// expansion (so unused branches are never expanded), links, variants
	reg(&transform.TemplateExpander{}, 2)
	reg(&transform.ExtensionHandler{}, 2)
	reg(&transform.AttributeExpander{}, 2)
	reg(&transform.LinkHandler{}, 2)
	reg(&transform.VariantHandler{}, 2)

	// stage 3: stream patching, pre-formatting, quotes, behavior
	// switches, lists, sanitizing, paragraph wrapping
	reg(&transform.StreamPatcher{}, 3)
	reg(&transform.PreHandler{}, 3)
	reg(&transform.QuoteTransformer{}, 3)
	reg(&transform.BehaviorSwitchHandler{}, 3)
	reg(&transform.ListHandler{}, 3)
	reg(&transform.Sanitizer{}, 3)
	reg(&transform.ParagraphWrapper{}, 3)

	if recipe != RecipeTokens {
		p.proc = postprocess.NewProcessor()
	}
	return p
}

// Reset clears all per-run handler state for reuse from the pool.
func (p *Pipeline) Reset() {
	for _, r := range p.resetters {
		r.Reset()
	}
}

// context builds the transform context for one run.
func (p *Pipeline) context(frame *transform.Frame) *transform.Context {
	return &transform.Context{
		Env:    p.factory.env,
		Site:   p.factory.site,
		Access: p.factory.access,
		Pipes:  p.factory,
		Opts:   p.opts,
		Frame:  frame,
	}
}

// tokens tokenizes src and runs transform stages 1 and 2. Stage 3 is a
// whole-stream concern and runs only on the merged top-level stream.
func (p *Pipeline) tokens(src string, base int, frame *transform.Frame) ([]token.Token, error) {
	ctx := p.context(frame)
	toks := p.tkz.TokenizeAt(src, base)
	var err error
	for _, m := range p.stages[:2] {
		toks, err = m.Transform(ctx, toks)
		if err != nil {
			return nil, err
		}
	}
	return toks, nil
}

// document runs the full chain over src: all three transform stages,
// tree building, and post-processing.
func (p *Pipeline) document(src string, base int, frame *transform.Frame, atTopLevel bool) (*html.Node, *html.Node, error) {
	ctx := p.context(frame)
	toks := p.tkz.TokenizeAt(src, base)
	var err error
	for _, m := range p.stages {
		toks, err = m.Transform(ctx, toks)
		if err != nil {
			return nil, nil, err
		}
	}
	doc, body, err := treebuild.Build(toks, p.factory.env)
	if err != nil {
		return nil, nil, err
	}
	pc := &postprocess.ProcContext{
		Env:        p.factory.env,
		Site:       p.factory.site,
		Access:     p.factory.access,
		Opts:       p.factory.ppOpts,
		AtTopLevel: atTopLevel,
		SeenIDs:    p.factory.seen,
	}
	if err := p.proc.Run(doc, body, pc); err != nil {
		return nil, nil, err
	}
	return doc, body, nil
}
