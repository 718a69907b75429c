package transform

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"encoding/json"
	"fmt"

	"github.com/npillmayer/wikidom/dataaccess"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/siteconfig"
	"github.com/npillmayer/wikidom/token"
	"golang.org/x/net/html"
)

// Options is the pipeline option vector. Its hash keys the pipeline
// cache: two contexts with equal option hashes may share a pooled
// pipeline.
type Options struct {
	IsInclude       bool
	ExpandTemplates bool
	InlineContext   bool
	InPHPBlock      bool
	InTemplate      bool
	AttrExpansion   bool
	ExtTag          string
	ExtTagOpts      map[string]string
}

// Key returns the canonical cache key of the option vector.
func (o Options) Key() string {
	var extOpts string
	if len(o.ExtTagOpts) > 0 {
		raw, _ := json.Marshal(o.ExtTagOpts)
		extOpts = string(raw)
	}
	return fmt.Sprintf("inc=%t;exp=%t;inl=%t;php=%t;tpl=%t;attr=%t;ext=%s;extOpts=%s",
		o.IsInclude, o.ExpandTemplates, o.InlineContext, o.InPHPBlock,
		o.InTemplate, o.AttrExpansion, o.ExtTag, extOpts)
}

// Frame is one transclusion context: the template being expanded and its
// arguments, for {{{…}}} parameter substitution. Frames nest.
type Frame struct {
	Title  string
	Args   map[string]string
	Parent *Frame
	Depth  int
}

// Arg looks up a template argument in this frame.
func (f *Frame) Arg(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	v, ok := f.Args[name]
	return v, ok
}

// TokenPipeline is a checked-out sub-pipeline producing transformed
// tokens, used to expand template bodies. Release returns it to the pool.
type TokenPipeline interface {
	Tokens(src string, base int, frame *Frame) ([]token.Token, error)
	Release()
}

// FragmentPipeline is a checked-out sub-pipeline producing a built
// sub-DOM, used for extension bodies that defer to the wikitext parser.
type FragmentPipeline interface {
	Fragment(src string, frame *Frame) (*html.Node, error)
	Release()
}

// Provider hands out sub-pipelines keyed by option vector. The pipeline
// factory implements it.
type Provider interface {
	TokenPipeline(opts Options) (TokenPipeline, error)
	FragmentPipeline(opts Options) (FragmentPipeline, error)
}

// Context is the per-document transform context threaded through every
// handler invocation.
type Context struct {
	Env    *page.Env
	Site   *siteconfig.Config
	Access dataaccess.Service
	Pipes  Provider
	Opts   Options
	Frame  *Frame
}

// maxExpansionDepth bounds transclusion nesting.
const maxExpansionDepth = 40
