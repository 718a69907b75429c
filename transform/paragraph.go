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

// blockTags never live inside a paragraph; encountering one closes the
// open paragraph.
var blockTags = map[string]bool{
	"table": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "ul": true, "ol": true, "dl": true,
	"li": true, "dt": true, "dd": true, "pre": true, "div": true,
	"hr": true, "p": true, "blockquote": true, "center": true,
	"figure": true, "caption": true, "tr": true, "td": true, "th": true,
	"section": true,
}

// ParagraphWrapper is the last stage-3 transformer. It wraps top-level
// inline runs into p elements; a blank line ends the paragraph. It is
// skipped in inline contexts (attribute expansion, inline extension
// content).
type ParagraphWrapper struct {
	inP          bool
	pendingNl    int
	pendingMetas []token.Token
	depth        int // nesting inside block elements; no wrapping there
}

// Reset clears the wrapper state for pipeline reuse.
func (h *ParagraphWrapper) Reset() {
	h.inP = false
	h.pendingNl = 0
	h.pendingMetas = nil
	h.depth = 0
}

// Register hooks the wrapper into a stage-3 manager.
func (h *ParagraphWrapper) Register(m *Manager) {
	m.AddAnyAndEOFHandler("paragraphs", h.onToken)
}

func (h *ParagraphWrapper) onToken(ctx *Context, tk token.Token) (Result, error) {
	if ctx.Opts.InlineContext {
		return Result{}, nil
	}
	switch t := tk.(type) {
	case *token.Newline:
		if h.inP {
			h.pendingNl++
			return Result{Handled: true}, nil
		}
		return Result{}, nil
	case *token.EOF:
		out := h.closeP(nil)
		out = append(out, h.takeMetas()...)
		out = append(out, tk)
		return Result{Tokens: out, Handled: true}, nil
	case *token.StartTag:
		if blockTags[t.Name] {
			return h.blockToken(tk, true)
		}
		return h.inlineToken(tk)
	case *token.EndTag:
		if blockTags[t.Name] {
			return h.blockToken(tk, false)
		}
		return h.inlineToken(tk)
	case *token.SelfClosing:
		switch t.Name {
		case "hr":
			out := h.closeP(nil)
			out = append(out, h.takeMetas()...)
			out = append(out, tk)
			return Result{Tokens: out, Handled: true}, nil
		case "meta", "link":
			return h.metaToken(tk)
		}
		return h.inlineToken(tk)
	case *token.Comment:
		return h.metaToken(tk)
	case *token.Text:
		if !h.inP && h.depth == 0 && strings.TrimSpace(t.Value) == "" {
			return Result{}, nil // inter-block whitespace
		}
		return h.inlineToken(tk)
	}
	return Result{}, nil
}

// blockToken flushes any open paragraph and tracks block nesting, inside
// which no wrapping happens.
func (h *ParagraphWrapper) blockToken(tk token.Token, opens bool) (Result, error) {
	out := h.closeP(nil)
	out = append(out, h.takeMetas()...)
	if opens {
		h.depth++
	} else if h.depth > 0 {
		h.depth--
	}
	out = append(out, tk)
	return Result{Tokens: out, Handled: true}, nil
}

// metaToken holds marker metas and comments while no paragraph is open:
// if inline content follows they belong inside the paragraph; if a block
// follows they stay outside.
func (h *ParagraphWrapper) metaToken(tk token.Token) (Result, error) {
	if h.inP || h.depth > 0 {
		return h.inlineToken(tk)
	}
	h.pendingMetas = append(h.pendingMetas, tk)
	return Result{Handled: true}, nil
}

// inlineToken opens a paragraph if needed and emits the token into it.
func (h *ParagraphWrapper) inlineToken(tk token.Token) (Result, error) {
	if h.depth > 0 {
		if len(h.pendingMetas) > 0 {
			out := h.takeMetas()
			out = append(out, tk)
			return Result{Tokens: out, Handled: true}, nil
		}
		return Result{}, nil
	}
	var out []token.Token
	if h.inP && h.pendingNl >= 2 {
		out = h.closeP(out) // blank line ended the previous paragraph
	}
	if !h.inP {
		h.inP = true
		out = append(out, &token.StartTag{Name: "p", DA: &token.DataAttribs{TSR: token.UnknownTSR}})
		out = append(out, h.takeMetas()...)
	} else if h.pendingNl == 1 {
		out = append(out, &token.Text{Value: "\n", DA: &token.DataAttribs{TSR: token.UnknownTSR}})
	}
	h.pendingNl = 0
	out = append(out, tk)
	return Result{Tokens: out, Handled: true}, nil
}

// closeP closes the open paragraph, re-emitting held newlines after it.
func (h *ParagraphWrapper) closeP(out []token.Token) []token.Token {
	if !h.inP {
		return out
	}
	h.inP = false
	out = append(out, &token.EndTag{Name: "p", DA: &token.DataAttribs{TSR: token.UnknownTSR}})
	for ; h.pendingNl > 0; h.pendingNl-- {
		out = append(out, &token.Newline{DA: &token.DataAttribs{TSR: token.UnknownTSR}})
	}
	return out
}

func (h *ParagraphWrapper) takeMetas() []token.Token {
	out := h.pendingMetas
	h.pendingMetas = nil
	return out
}
