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

// knownSwitches maps behavior-switch names to page-property values.
// Unknown switches stay literal text.
var knownSwitches = map[string]string{
	"TOC":           "toc",
	"NOTOC":         "notoc",
	"FORCETOC":      "forcetoc",
	"NOEDITSECTION": "noeditsection",
	"NEWSECTIONLINK": "newsectionlink",
	"NOGALLERY":     "nogallery",
	"INDEX":         "index",
	"NOINDEX":       "noindex",
}

// BehaviorSwitchHandler is the stage-3 transformer turning __SWITCH__
// markers into page-property metas.
type BehaviorSwitchHandler struct{}

// Register hooks the handler into a stage-3 manager.
func (h *BehaviorSwitchHandler) Register(m *Manager) {
	m.AddTagHandler("behavior-switches", []string{"behavior-switch"}, h.onToken)
}

// Reset is part of the stateful-handler contract.
func (h *BehaviorSwitchHandler) Reset() {}

func (h *BehaviorSwitchHandler) onToken(ctx *Context, tk token.Token) (Result, error) {
	sc, ok := tk.(*token.SelfClosing)
	if !ok {
		return Result{}, nil
	}
	name, _ := token.GetAttr(sc.Attrs, "name")
	prop, known := knownSwitches[name]
	if !known {
		lit := &token.Text{Value: "__" + name + "__", DA: sc.DA.Clone()}
		return Result{Tokens: []token.Token{lit}, Handled: true}, nil
	}
	meta := &token.SelfClosing{
		Name: "meta",
		Attrs: []token.Attr{
			{K: "property", V: "mw:PageProp/" + strings.ToLower(prop)},
		},
		DA: sc.DA.Clone(),
	}
	return Result{Tokens: []token.Token{meta}, Handled: true}, nil
}
