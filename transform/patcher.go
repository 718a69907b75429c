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

// tableScoped are the tags the patcher balances; stray end tags for
// these would derail the tree builder's table handling.
var tableScoped = map[string]bool{"table": true, "tr": true, "td": true, "th": true, "caption": true}

// StreamPatcher is the first stage-3 transformer. It merges adjacent
// text tokens and downgrades unbalanced table end tags to literal text.
type StreamPatcher struct {
	held *token.Text
	open map[string]int
}

// Reset clears the patcher state for pipeline reuse.
func (h *StreamPatcher) Reset() {
	h.held = nil
	h.open = nil
}

// Register hooks the patcher into a stage-3 manager.
func (h *StreamPatcher) Register(m *Manager) {
	m.AddAnyAndEOFHandler("stream-patcher", h.onToken)
}

func (h *StreamPatcher) onToken(ctx *Context, tk token.Token) (Result, error) {
	if h.open == nil {
		h.open = make(map[string]int)
	}
	if txt, ok := tk.(*token.Text); ok {
		if h.held == nil {
			h.held = &token.Text{Value: txt.Value, DA: txt.DA.Clone()}
		} else {
			h.held.Value += txt.Value
			if h.held.DA != nil && txt.DA != nil && txt.DA.TSR.Known() {
				h.held.DA.TSR.End = txt.DA.TSR.End
			}
		}
		return Result{Handled: true}, nil
	}
	out := make([]token.Token, 0, 2)
	if h.held != nil {
		out = append(out, h.held)
		h.held = nil
	}
	switch t := tk.(type) {
	case *token.StartTag:
		if tableScoped[t.Name] {
			h.open[t.Name]++
		}
	case *token.EndTag:
		if tableScoped[t.Name] {
			if h.open[t.Name] == 0 {
				// unbalanced; keep the source text instead of the tag
				out = append(out, &token.Text{Value: "</" + t.Name + ">", DA: t.DA.Clone()})
				return Result{Tokens: out, Handled: true}, nil
			}
			h.open[t.Name]--
		}
	}
	out = append(out, tk)
	return Result{Tokens: out, Handled: true}, nil
}
