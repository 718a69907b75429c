package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/wikidom/dom"
	"golang.org/x/net/html"
)

// migrateTemplateMarkerMetas hoists marker metas that ended up as the
// first or last child of an element out of that element: a start marker
// opening an expansion whose first rendered node is the element belongs
// before it, and symmetrically for end markers. This lets the
// encapsulator pick the element itself as the wrapping target.
//
// Runs after the tree-builder fixups so removed placeholder nodes don't
// disturb the first/last-child checks.
func migrateTemplateMarkerMetas(body *html.Node, pc *ProcContext) error {
	var metas []*html.Node
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsMarkerMeta(c) {
				metas = append(metas, c)
			}
			collect(c)
		}
	}
	collect(body)
	for _, meta := range metas {
		if dom.IsMarkerStart(meta) {
			for meta.Parent != nil && meta.Parent.Data != "body" && firstNonSepChild(meta.Parent) == meta {
				parent := meta.Parent
				dom.Detach(meta)
				parent.Parent.InsertBefore(meta, parent)
			}
		} else {
			for meta.Parent != nil && meta.Parent.Data != "body" && lastNonSepChild(meta.Parent) == meta {
				parent := meta.Parent
				dom.Detach(meta)
				dom.InsertAfter(parent, meta)
			}
		}
	}
	return nil
}

func firstNonSepChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !dom.IsIEW(c) && !dom.IsComment(c) {
			return c
		}
	}
	return nil
}

func lastNonSepChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if !dom.IsIEW(c) && !dom.IsComment(c) {
			return c
		}
	}
	return nil
}

// normalizeIndentPre trims the structural trailing newline inside
// indent-pre blocks; it belongs between blocks, not to the content.
func normalizeIndentPre(body *html.Node, pc *ProcContext) error {
	b := pc.Env.Bundle
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsElt(c) && c.Data == "pre" {
				if dp := parsoidOf(c, b); dp != nil && dp.Stx == "indent-pre" {
					trimTrailingNewline(c)
				}
				continue
			}
			walk(c)
		}
	}
	walk(body)
	return nil
}

func trimTrailingNewline(pre *html.Node) {
	last := pre.LastChild
	if last == nil || !dom.IsText(last) || !strings.HasSuffix(last.Data, "\n") {
		return
	}
	last.Data = strings.TrimRight(last.Data, "\n")
	if last.Data == "" {
		dom.Detach(last)
	}
	dom.InsertAfter(pre, dom.NewText("\n"))
}

// migratableBlocks are the elements trailing newlines migrate out of.
var migratableBlocks = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "li": true, "dt": true, "dd": true, "div": true,
}

// migrateTrailingNewlines moves newline runs stuck at the end of a block
// element out after the element, so the serializer sees them as block
// separators.
func migrateTrailingNewlines(body *html.Node, pc *ProcContext) error {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n == body || !dom.IsElt(n) || n.Parent == nil || !migratableBlocks[n.Data] {
			return
		}
		last := n.LastChild
		if last == nil || !dom.IsText(last) || !strings.HasSuffix(last.Data, "\n") {
			return
		}
		trimmed := strings.TrimRight(last.Data, "\n")
		nls := last.Data[len(trimmed):]
		if trimmed == "" {
			dom.Detach(last)
		} else {
			last.Data = trimmed
		}
		dom.InsertAfter(n, dom.NewText(nls))
	}
	walk(body)
	return nil
}
