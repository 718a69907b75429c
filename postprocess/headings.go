package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"

	"github.com/npillmayer/wikidom/dom"
	"golang.org/x/net/html"
)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// generateHeadingAnchors computes the anchor id of every heading from its
// text content: blanks become underscores, everything else is kept.
// Non-ASCII headings additionally get a legacy dot-escaped fallback id in
// an empty typed span, so old-style fragment links keep working.
func generateHeadingAnchors(body *html.Node, pc *ProcContext) error {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsElt(c) && headingTags[c.Data] {
				anchorHeading(c)
				continue
			}
			walk(c)
		}
	}
	walk(body)
	return nil
}

func anchorHeading(h *html.Node) {
	text := strings.TrimSpace(dom.InnerText(h))
	if text == "" {
		return
	}
	id := strings.ReplaceAll(text, " ", "_")
	dom.SetAttr(h, "id", id)
	legacy := legacyAnchor(id)
	if legacy != id {
		span := dom.NewElement("span")
		dom.SetAttr(span, "typeof", "mw:FallbackId")
		dom.SetAttr(span, "id", legacy)
		if h.FirstChild != nil {
			h.InsertBefore(span, h.FirstChild)
		} else {
			h.AppendChild(span)
		}
	}
}

// legacyAnchor applies the historical anchor escaping: bytes outside the
// safe set are percent-encoded with '.' instead of '%'.
func legacyAnchor(id string) string {
	var sb strings.Builder
	for i := 0; i < len(id); i++ {
		b := id[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
			sb.WriteByte(b)
		case b == '_' || b == ':' || b == '.' || b == '-':
			sb.WriteByte(b)
		default:
			fmt.Fprintf(&sb, ".%02X", b)
		}
	}
	return sb.String()
}

// dedupeHeadingIDs suffixes repeated heading ids with _2, _3, … so ids
// stay unique document-wide. The seen set lives on the context and spans
// the whole document.
func dedupeHeadingIDs(body *html.Node, pc *ProcContext) error {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsElt(c) && (headingTags[c.Data] || dom.HasTypeOf(c, "mw:FallbackId")) {
				if id := dom.Attr(c, "id"); id != "" {
					dom.SetAttr(c, "id", uniqueID(id, pc.SeenIDs))
				}
			}
			walk(c)
		}
	}
	walk(body)
	return nil
}

func uniqueID(id string, seen map[string]bool) string {
	if !seen[id] {
		seen[id] = true
		return id
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", id, i)
		if !seen[candidate] {
			seen[candidate] = true
			return candidate
		}
	}
}
