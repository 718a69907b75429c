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

// listLevel is one open nesting level of the list builder.
type listLevel struct {
	container string // ul, ol or dl
	item      string // li, dt or dd
}

func levelFor(bullet byte) listLevel {
	switch bullet {
	case '*':
		return listLevel{"ul", "li"}
	case '#':
		return listLevel{"ol", "li"}
	case ';':
		return listLevel{"dl", "dt"}
	default: // ':'
		return listLevel{"dl", "dd"}
	}
}

// ListHandler is the stage-3 transformer folding runs of listItem tokens
// into nested list structure. A line that is not a list line closes all
// open lists.
type ListHandler struct {
	stack     []listLevel
	heldNl    token.Token
	sawNl     bool
}

// Reset clears the handler state for pipeline reuse.
func (h *ListHandler) Reset() {
	h.stack = nil
	h.heldNl = nil
	h.sawNl = false
}

// Register hooks the handler into a stage-3 manager.
func (h *ListHandler) Register(m *Manager) {
	m.AddAnyAndEOFHandler("lists", h.onToken)
}

func (h *ListHandler) onToken(ctx *Context, tk token.Token) (Result, error) {
	if len(h.stack) == 0 {
		if sc, ok := tk.(*token.SelfClosing); ok && sc.Name == "listItem" {
			bullets, _ := token.GetAttr(sc.Attrs, "bullets")
			return Result{Tokens: h.transition(bullets, sc.DA), Handled: true}, nil
		}
		return Result{}, nil
	}
	// inside a list
	switch t := tk.(type) {
	case *token.Newline:
		h.heldNl = t
		h.sawNl = true
		return Result{Handled: true}, nil
	case *token.SelfClosing:
		if t.Name == "listItem" {
			h.heldNl = nil // newline between items is structural, not content
			h.sawNl = false
			bullets, _ := token.GetAttr(t.Attrs, "bullets")
			return Result{Tokens: h.transition(bullets, t.DA), Handled: true}, nil
		}
	case *token.EOF:
		out := h.closeAll()
		if h.heldNl != nil {
			out = append(out, h.heldNl)
			h.heldNl = nil
		}
		out = append(out, tk)
		return Result{Tokens: out, Handled: true}, nil
	}
	if h.sawNl { // a non-list line follows: the list is over
		out := h.closeAll()
		if h.heldNl != nil {
			out = append(out, h.heldNl)
			h.heldNl = nil
		}
		h.sawNl = false
		out = append(out, tk)
		return Result{Tokens: out, Handled: true}, nil
	}
	return Result{}, nil // item content passes through
}

// transition adapts the open list structure to a new item's bullet run.
func (h *ListHandler) transition(bullets string, da *token.DataAttribs) []token.Token {
	var out []token.Token
	levels := make([]listLevel, len(bullets))
	for i := 0; i < len(bullets); i++ {
		levels[i] = levelFor(bullets[i])
	}
	keep := 0
	for keep < len(h.stack) && keep < len(levels) && h.stack[keep].container == levels[keep].container {
		keep++
	}
	// close levels deeper than the common prefix
	for len(h.stack) > keep {
		top := h.stack[len(h.stack)-1]
		h.stack = h.stack[:len(h.stack)-1]
		out = append(out,
			&token.EndTag{Name: top.item, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
			&token.EndTag{Name: top.container, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		)
	}
	if keep == len(levels) && keep > 0 {
		// sibling item on the same level; the item kind may flip (dt/dd)
		top := h.stack[len(h.stack)-1]
		out = append(out, &token.EndTag{Name: top.item, DA: &token.DataAttribs{TSR: token.UnknownTSR}})
		h.stack[len(h.stack)-1].item = levels[keep-1].item
		out = append(out, &token.StartTag{Name: levels[keep-1].item, DA: da.Clone()})
		return out
	}
	for i := keep; i < len(levels); i++ {
		h.stack = append(h.stack, levels[i])
		out = append(out,
			&token.StartTag{Name: levels[i].container, DA: da.Clone()},
			&token.StartTag{Name: levels[i].item, DA: da.Clone()},
		)
	}
	return out
}

// closeAll unwinds every open list level.
func (h *ListHandler) closeAll() []token.Token {
	var out []token.Token
	for len(h.stack) > 0 {
		top := h.stack[len(h.stack)-1]
		h.stack = h.stack[:len(h.stack)-1]
		out = append(out,
			&token.EndTag{Name: top.item, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
			&token.EndTag{Name: top.container, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		)
	}
	return out
}
