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

// allowedAttrs is the attribute allowlist for literal HTML tags.
var allowedAttrs = map[string]bool{
	"id": true, "class": true, "style": true, "title": true, "dir": true,
	"lang": true, "align": true, "valign": true, "colspan": true,
	"rowspan": true, "width": true, "height": true, "border": true,
	"cellpadding": true, "cellspacing": true, "datetime": true,
	"cite": true, "start": true, "type": true, "scope": true,
}

// Sanitizer is the stage-3 transformer enforcing the attribute allowlist
// on literal HTML tags. Handler-generated tags carry no "html" syntax
// marker and pass through untouched.
type Sanitizer struct{}

// Register hooks the sanitizer into a stage-3 manager.
func (h *Sanitizer) Register(m *Manager) {
	m.AddAnyHandler("sanitizer", h.onToken)
}

// Reset is part of the stateful-handler contract.
func (h *Sanitizer) Reset() {}

func (h *Sanitizer) onToken(ctx *Context, tk token.Token) (Result, error) {
	da := tk.DataAttribs()
	if da == nil || da.Stx != "html" {
		return Result{}, nil
	}
	switch t := tk.(type) {
	case *token.StartTag:
		t.Attrs = sanitizeAttrs(t.Attrs)
	case *token.SelfClosing:
		t.Attrs = sanitizeAttrs(t.Attrs)
	default:
		return Result{}, nil
	}
	return Result{Tokens: []token.Token{tk}, Handled: true}, nil
}

func sanitizeAttrs(attrs []token.Attr) []token.Attr {
	out := attrs[:0]
	for _, a := range attrs {
		switch {
		case allowedAttrs[a.K]:
			if a.K == "style" && strings.Contains(strings.ToLower(a.V), "javascript") {
				continue
			}
		case strings.HasPrefix(a.K, "data-") && !strings.HasPrefix(a.K, "data-mw"):
			// user data attributes survive, reserved ones don't
		default:
			continue
		}
		out = append(out, a)
	}
	return out
}
