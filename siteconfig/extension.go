package siteconfig

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/token"
	"golang.org/x/net/html"
)

// Invocation is one extension-tag use as seen by a native implementation:
// name, normalized arguments and the raw inner source.
type Invocation struct {
	Name  string
	Attrs []token.Attr
	Inner string
	Src   string
}

// ToDOMFunc builds a DOM subtree for an extension invocation. The subtree
// is tunnelled through the token stream as a DOM fragment and spliced in
// by the fragment unpacker.
type ToDOMFunc func(env *page.Env, inv Invocation) (*html.Node, error)

// DOMProcessorFunc is an extension's post-processing hook, run over the
// final document body in registration order.
type DOMProcessorFunc func(env *page.Env, body *html.Node) error

// Extension bundles one native extension implementation.
type Extension struct {
	Name          string
	ToDOM         ToDOMFunc
	ModifyArgDict func(args []token.Attr) []token.Attr
	DOMProcessor  DOMProcessorFunc
	Styles        []string
}

// ExtensionRegistry maps extension-tag names to their native
// implementations. Registration order is preserved; the post-process
// driver runs DOM processors in exactly that order.
type ExtensionRegistry struct {
	byName map[string]*Extension
	order  []string
}

// NewExtensionRegistry creates an empty registry.
func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{byName: make(map[string]*Extension)}
}

// Register adds a native extension. Re-registering a name replaces the
// implementation but keeps the original position in the order.
func (r *ExtensionRegistry) Register(ext *Extension) {
	if ext == nil || ext.Name == "" {
		return
	}
	if _, ok := r.byName[ext.Name]; !ok {
		r.order = append(r.order, ext.Name)
	}
	r.byName[ext.Name] = ext
}

// Lookup finds the implementation for a tag name, or nil.
func (r *ExtensionRegistry) Lookup(name string) *Extension {
	return r.byName[name]
}

// Names returns the registered tag names in registration order.
func (r *ExtensionRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// DOMProcessors returns all registered DOM processors in registration
// order, skipping extensions without one.
func (r *ExtensionRegistry) DOMProcessors() []DOMProcessorFunc {
	var procs []DOMProcessorFunc
	for _, name := range r.order {
		if ext := r.byName[name]; ext.DOMProcessor != nil {
			procs = append(procs, ext.DOMProcessor)
		}
	}
	return procs
}
