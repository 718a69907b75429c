package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/wikidom/dom"
	"github.com/npillmayer/wikidom/page"
	"golang.org/x/net/html"
)

// linkNeighboursAndUnpack applies link-trail and link-prefix regexes to
// the text around wiki links, then splices parked DOM fragments back into
// the tree. It must run before the per-extension post-processors so
// extensions see their unpacked content.
func linkNeighboursAndUnpack(body *html.Node, pc *ProcContext) error {
	applyLinkNeighbours(body, pc)
	return unpackFragments(body, pc)
}

// applyLinkNeighbours moves link-trail text (and link-prefix text, when
// the site defines one) into the adjacent wiki link.
func applyLinkNeighbours(body *html.Node, pc *ProcContext) {
	trail := pc.Site.LinkTrail
	prefix := pc.Site.LinkPrefix
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if !dom.IsElt(c) || c.Data != "a" || dom.Attr(c, "rel") != "mw:WikiLink" {
				continue
			}
			if trail != nil && c.NextSibling != nil && dom.IsText(c.NextSibling) {
				if m := trail.FindString(c.NextSibling.Data); m != "" {
					c.NextSibling.Data = c.NextSibling.Data[len(m):]
					c.AppendChild(dom.NewText(m))
				}
			}
			if prefix != nil && c.PrevSibling != nil && dom.IsText(c.PrevSibling) {
				if m := prefix.FindString(c.PrevSibling.Data); m != "" && len(m) == len(c.PrevSibling.Data) {
					c.PrevSibling.Data = ""
					if c.FirstChild != nil {
						c.InsertBefore(dom.NewText(m), c.FirstChild)
					} else {
						c.AppendChild(dom.NewText(m))
					}
				}
			}
		}
	}
	walk(body)
}

// unpackFragments replaces DOM-fragment placeholder metas with the
// fragments parked in the environment, transferring typeof, about and
// data-mw onto the first spliced element.
func unpackFragments(body *html.Node, pc *ProcContext) error {
	var placeholders []*html.Node
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsElt(c) && c.Data == "meta" && dom.HasTypeOf(c, "mw:DOMFragment") {
				placeholders = append(placeholders, c)
			}
			collect(c)
		}
	}
	collect(body)

	b := pc.Env.Bundle
	for _, meta := range placeholders {
		key := dom.Attr(meta, "data-mw-fragment")
		frag := pc.Env.TakeFragment(key)
		if frag == nil {
			tracer().P("key", key).Errorf("dangling DOM fragment placeholder")
			dom.Detach(meta)
			continue
		}
		about := dom.Attr(meta, "about")
		extName := dom.Attr(meta, "data-ext-name")
		metaID := page.NodeID(meta)

		var first *html.Node
		for frag.FirstChild != nil {
			c := dom.Detach(frag.FirstChild)
			meta.Parent.InsertBefore(c, meta)
			if dom.IsElt(c) {
				if first == nil {
					first = c
				}
				if about != "" {
					dom.SetAttr(c, "about", about)
				}
			}
		}
		if first != nil {
			if extName != "" {
				dom.AddTypeOf(first, "mw:Extension/"+extName)
			}
			if mw := b.MW[metaID]; mw != nil {
				b.SetDataMW(first, mw)
				delete(b.MW, metaID)
			}
		}
		dom.Detach(meta)
	}
	return nil
}

// runExtensionProcessors invokes every registered extension DOM
// processor over the document body, in registration order. The order is
// deterministic; processors are expected to be idempotent.
func runExtensionProcessors(body *html.Node, pc *ProcContext) error {
	for _, proc := range pc.Site.Extensions().DOMProcessors() {
		if err := proc(pc.Env, body); err != nil {
			return err
		}
	}
	return nil
}
