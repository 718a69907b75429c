package transform

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/wikidom/token"
)

// VariantHandler is the stage-2 transformer for `-{ … }-` language
// variant markup. It emits a typed span carrying the raw rule text; the
// DOM-level variant converter interprets it.
type VariantHandler struct{}

// Register hooks the handler into a stage-2 manager.
func (h *VariantHandler) Register(m *Manager) {
	m.AddTagHandler("lang-variants", []string{"mw-variant"}, h.onToken)
}

// Reset is part of the stateful-handler contract.
func (h *VariantHandler) Reset() {}

func (h *VariantHandler) onToken(ctx *Context, tk token.Token) (Result, error) {
	da := tk.DataAttribs()
	sc, ok := tk.(*token.SelfClosing)
	if !ok {
		return Result{}, nil
	}
	raw, _ := token.GetAttr(sc.Attrs, "text")
	toks := []token.Token{
		&token.StartTag{Name: "span", Attrs: []token.Attr{
			{K: "typeof", V: "mw:LanguageVariant"},
			{K: "data-mw-variant-raw", V: raw},
		}, DA: da.Clone()},
		&token.Text{Value: raw, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EndTag{Name: "span", DA: &token.DataAttribs{TSR: token.TSR{Start: da.TSR.End, End: da.TSR.End}}},
	}
	return Result{Tokens: toks, Handled: true}, nil
}
