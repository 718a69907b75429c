package transform

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/wikidom/token"
)

// AttributeExpander is the stage-2 transformer expanding transclusions
// inside attribute values of literal HTML tags. It is registered after
// the template expander so attribute values in unused template branches
// are never expanded.
type AttributeExpander struct{}

// Register hooks the expander into a stage-2 manager.
func (h *AttributeExpander) Register(m *Manager) {
	m.AddAnyHandler("attr-expand", h.onToken)
}

// Reset is part of the stateful-handler contract.
func (h *AttributeExpander) Reset() {}

func (h *AttributeExpander) onToken(ctx *Context, tk token.Token) (Result, error) {
	st, ok := tk.(*token.StartTag)
	if !ok || !ctx.Opts.ExpandTemplates {
		return Result{}, nil
	}
	dirty := false
	for _, a := range st.Attrs {
		if strings.Contains(a.V, "{{") {
			dirty = true
			break
		}
	}
	if !dirty {
		return Result{}, nil
	}
	pipe, err := ctx.Pipes.TokenPipeline(Options{
		IsInclude:       true,
		ExpandTemplates: true,
		InTemplate:      ctx.Opts.InTemplate,
		AttrExpansion:   true,
		InlineContext:   true,
	})
	if err != nil {
		return failure(err)
	}
	defer pipe.Release()
	for i, a := range st.Attrs {
		if !strings.Contains(a.V, "{{") {
			continue
		}
		toks, err := pipe.Tokens(a.V, 0, ctx.Frame)
		if err != nil {
			return failure(err)
		}
		st.Attrs[i].V = flattenToText(toks)
	}
	return Result{Tokens: []token.Token{st}, Handled: true}, nil
}

// flattenToText renders a token stream back to plain text, dropping
// markup; attribute values hold text only.
func flattenToText(toks []token.Token) string {
	var sb strings.Builder
	for _, tk := range toks {
		if t, ok := tk.(*token.Text); ok {
			sb.WriteString(t.Value)
		}
	}
	return strings.TrimSpace(sb.String())
}
