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

// QuoteTransformer is the stage-3 transformer resolving '' and '''
// markup into i/b elements. Quotes pair up within a single line; tags
// still open at the line end are closed with an auto-inserted end.
type QuoteTransformer struct {
	buf []token.Token
}

// Reset clears the transformer state for pipeline reuse.
func (h *QuoteTransformer) Reset() {
	h.buf = nil
}

// Register hooks the transformer into a stage-3 manager.
func (h *QuoteTransformer) Register(m *Manager) {
	m.AddAnyAndEOFHandler("quotes", h.onToken)
}

func (h *QuoteTransformer) onToken(ctx *Context, tk token.Token) (Result, error) {
	switch tk.Kind() {
	case token.KindNewline, token.KindEOF:
		out := h.flush()
		out = append(out, tk)
		return Result{Tokens: out, Handled: true}, nil
	}
	h.buf = append(h.buf, tk)
	return Result{Handled: true}, nil
}

// flush resolves the buffered line. Quote marks toggle their element;
// closing an element that is not innermost closes and reopens the ones
// above it, so the output nests properly.
func (h *QuoteTransformer) flush() []token.Token {
	if len(h.buf) == 0 {
		return nil
	}
	var out []token.Token
	var stack []string // open quote elements, innermost last
	toggle := func(name string, da *token.DataAttribs) {
		at := -1
		for i, s := range stack {
			if s == name {
				at = i
				break
			}
		}
		if at < 0 { // open
			stack = append(stack, name)
			out = append(out, &token.StartTag{Name: name, DA: da.Clone()})
			return
		}
		// close: unwind to the element, then reopen the ones above it
		var reopen []string
		for len(stack) > at {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, &token.EndTag{Name: top, DA: &token.DataAttribs{TSR: token.UnknownTSR}})
			if top != name {
				reopen = append(reopen, top)
			}
		}
		for i := len(reopen) - 1; i >= 0; i-- {
			stack = append(stack, reopen[i])
			out = append(out, &token.StartTag{Name: reopen[i], DA: &token.DataAttribs{TSR: token.UnknownTSR}})
		}
	}
	for _, tk := range h.buf {
		sc, ok := tk.(*token.SelfClosing)
		if !ok || sc.Name != "mw-quote" {
			out = append(out, tk)
			continue
		}
		marks, _ := token.GetAttr(sc.Attrs, "value")
		switch len(marks) {
		case 2:
			toggle("i", sc.DA)
		case 3:
			toggle("b", sc.DA)
		case 5:
			if len(stack) > 0 && stack[len(stack)-1] == "i" { // innermost first
				toggle("i", sc.DA)
				toggle("b", sc.DA)
			} else {
				toggle("b", sc.DA)
				toggle("i", sc.DA)
			}
		default:
			out = append(out, &token.Text{Value: marks, DA: sc.DA.Clone()})
		}
	}
	for len(stack) > 0 { // line end closes open quotes
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, &token.EndTag{Name: top, DA: &token.DataAttribs{TSR: token.UnknownTSR}})
	}
	h.buf = nil
	return out
}
