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

// PreHandler is the stage-3 transformer recognizing indent-pre blocks:
// lines starting with a blank become preformatted content.
type PreHandler struct {
	atLineStart bool
	inPre       bool
	heldNl      token.Token
}

// Reset clears the handler state for pipeline reuse.
func (h *PreHandler) Reset() {
	h.atLineStart = true
	h.inPre = false
	h.heldNl = nil
}

// Register hooks the handler into a stage-3 manager.
func (h *PreHandler) Register(m *Manager) {
	h.atLineStart = true
	m.AddAnyAndEOFHandler("indent-pre", h.onToken)
}

func (h *PreHandler) onToken(ctx *Context, tk token.Token) (Result, error) {
	switch t := tk.(type) {
	case *token.Newline:
		if h.inPre {
			// pre continues only if the next line is indented too
			h.heldNl = t
			h.atLineStart = true
			return Result{Handled: true}, nil
		}
		h.atLineStart = true
		return Result{}, nil
	case *token.Text:
		if h.atLineStart && strings.HasPrefix(t.Value, " ") && strings.TrimSpace(t.Value) != "" {
			h.atLineStart = false
			out := make([]token.Token, 0, 3)
			if !h.inPre {
				h.inPre = true
				h.heldNl = nil
				out = append(out, &token.StartTag{Name: "pre", DA: &token.DataAttribs{
					TSR: token.TSR{Start: startOf(t), End: startOf(t)}, Stx: "indent-pre", OpenWidth: 1,
				}})
			} else if h.heldNl != nil {
				out = append(out, &token.Text{Value: "\n", DA: &token.DataAttribs{TSR: token.UnknownTSR}})
				h.heldNl = nil
			}
			stripped := &token.Text{Value: t.Value[1:], DA: t.DA.Clone()}
			if stripped.DA != nil && stripped.DA.TSR.Known() {
				stripped.DA.TSR.Start++
			}
			out = append(out, stripped)
			return Result{Tokens: out, Handled: true}, nil
		}
		h.atLineStart = false
	case *token.EOF:
		if h.inPre {
			return Result{Tokens: h.closePre(tk), Handled: true}, nil
		}
		return Result{}, nil
	default:
		h.atLineStart = false
	}
	if h.inPre {
		return Result{Tokens: h.closePre(tk), Handled: true}, nil
	}
	return Result{}, nil
}

// closePre ends the open pre block and re-emits the held newline before
// the token that ended it.
func (h *PreHandler) closePre(tk token.Token) []token.Token {
	h.inPre = false
	out := []token.Token{&token.EndTag{Name: "pre", DA: &token.DataAttribs{TSR: token.UnknownTSR}}}
	if h.heldNl != nil {
		out = append(out, h.heldNl)
		h.heldNl = nil
	}
	return append(out, tk)
}

func startOf(t token.Token) int {
	if da := t.DataAttribs(); da != nil {
		return da.TSR.Start
	}
	return -1
}
