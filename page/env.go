package page

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"

	"golang.org/x/net/html"
)

// Env is the per-document environment. It owns the page bundle, the
// about-id counter and the DOM-fragment store. There is no cross-document
// sharing; independent documents run on independent Envs.
type Env struct {
	Page      *Config
	Bundle    *Bundle
	Fragments map[string]*html.Node // sub-DOMs tunnelled through the token stream
	aboutSeq  int
	fragSeq   int
}

// NewEnv sets up the environment for one document.
func NewEnv(cfg *Config) *Env {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Env{
		Page:      cfg,
		Bundle:    NewBundle(),
		Fragments: make(map[string]*html.Node),
	}
}

// NewAboutID draws the next document-unique about id, of the form "#mwt<n>".
func (env *Env) NewAboutID() string {
	env.aboutSeq++
	return fmt.Sprintf("#mwt%d", env.aboutSeq)
}

// StoreFragment parks a built sub-DOM and returns its retrieval key. The
// fragment unpacker splices it back in during post-processing.
func (env *Env) StoreFragment(frag *html.Node) string {
	env.fragSeq++
	key := fmt.Sprintf("mwf%d", env.fragSeq)
	env.Fragments[key] = frag
	return key
}

// TakeFragment removes and returns a parked fragment.
func (env *Env) TakeFragment(key string) *html.Node {
	frag := env.Fragments[key]
	delete(env.Fragments, key)
	return frag
}

// Source returns the wikitext source of the page.
func (env *Env) Source() string {
	return env.Page.Source
}
