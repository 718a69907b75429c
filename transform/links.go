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

// LinkHandler is the stage-2 transformer turning wiki-link and
// external-link tokens into anchor (or media / category) tokens.
type LinkHandler struct{}

// Register hooks the handler into a stage-2 manager.
func (h *LinkHandler) Register(m *Manager) {
	m.AddTagHandler("links", []string{"wikilink", "extlink"}, h.onToken)
}

// Reset is part of the stateful-handler contract.
func (h *LinkHandler) Reset() {}

func (h *LinkHandler) onToken(ctx *Context, tk token.Token) (Result, error) {
	da := tk.DataAttribs()
	if da == nil || da.Link == nil {
		return Result{}, nil
	}
	link := da.Link
	if link.External {
		return h.extLink(link, da)
	}
	switch {
	case hasNSPrefix(link.Target, "File", "Image"):
		return h.mediaLink(link, da)
	case hasNSPrefix(link.Target, "Category"):
		return h.categoryLink(link, da)
	}
	return h.wikiLink(link, da)
}

func hasNSPrefix(target string, names ...string) bool {
	for _, ns := range names {
		if strings.HasPrefix(target, ns+":") {
			return true
		}
	}
	return false
}

// wikiLink renders an internal link: `<a rel="mw:WikiLink" href="./T">`.
func (h *LinkHandler) wikiLink(link *token.Link, da *token.DataAttribs) (Result, error) {
	target := strings.TrimSpace(link.Target)
	href := "./" + strings.ReplaceAll(target, " ", "_")
	text := link.Text
	if text == "" {
		text = target
	}
	toks := []token.Token{
		&token.StartTag{Name: "a", Attrs: []token.Attr{
			{K: "rel", V: "mw:WikiLink"},
			{K: "href", V: href},
			{K: "title", V: target},
		}, DA: da.Clone()},
		&token.Text{Value: text, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EndTag{Name: "a", DA: &token.DataAttribs{TSR: token.TSR{Start: da.TSR.End, End: da.TSR.End}}},
	}
	return Result{Tokens: toks, Handled: true}, nil
}

// extLink renders an external link. Bracketed links without text get no
// content here; the link-class pass numbers them.
func (h *LinkHandler) extLink(link *token.Link, da *token.DataAttribs) (Result, error) {
	text := link.Text
	if link.Free {
		text = link.Target
	}
	toks := []token.Token{
		&token.StartTag{Name: "a", Attrs: []token.Attr{
			{K: "rel", V: "mw:ExtLink"},
			{K: "href", V: link.Target},
		}, DA: da.Clone()},
	}
	if text != "" {
		toks = append(toks, &token.Text{Value: text, DA: &token.DataAttribs{TSR: token.UnknownTSR}})
	}
	toks = append(toks, &token.EndTag{Name: "a", DA: &token.DataAttribs{TSR: token.TSR{Start: da.TSR.End, End: da.TSR.End}}})
	return Result{Tokens: toks, Handled: true}, nil
}

// mediaLink renders `[[File:…]]` as a figure with an img placeholder; the
// media-info pass resolves dimensions and URLs in batch.
func (h *LinkHandler) mediaLink(link *token.Link, da *token.DataAttribs) (Result, error) {
	resource := "./" + strings.ReplaceAll(strings.TrimSpace(link.Target), " ", "_")
	toks := []token.Token{
		&token.StartTag{Name: "figure", Attrs: []token.Attr{
			{K: "typeof", V: "mw:Image"},
		}, DA: da.Clone()},
		&token.SelfClosing{Name: "img", Attrs: []token.Attr{
			{K: "resource", V: resource},
		}, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
	}
	if link.Text != "" {
		toks = append(toks,
			&token.StartTag{Name: "figcaption", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
			&token.Text{Value: link.Text, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
			&token.EndTag{Name: "figcaption", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		)
	}
	toks = append(toks, &token.EndTag{Name: "figure", DA: &token.DataAttribs{TSR: token.TSR{Start: da.TSR.End, End: da.TSR.End}}})
	return Result{Tokens: toks, Handled: true}, nil
}

// categoryLink renders `[[Category:…]]` as a page-property link meta.
func (h *LinkHandler) categoryLink(link *token.Link, da *token.DataAttribs) (Result, error) {
	href := "./" + strings.ReplaceAll(strings.TrimSpace(link.Target), " ", "_")
	meta := &token.SelfClosing{Name: "link", Attrs: []token.Attr{
		{K: "rel", V: "mw:PageProp/Category"},
		{K: "href", V: href},
	}, DA: da.Clone()}
	return Result{Tokens: []token.Token{meta}, Handled: true}, nil
}
