package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/wikidom/dom"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/variant"
	"golang.org/x/net/html"
)

var (
	extLinkSel  = cascadia.MustCompile(`a[rel="mw:ExtLink"]`)
	wikiLinkSel = cascadia.MustCompile(`a[rel="mw:WikiLink"]`)
)

// convertLanguageVariants runs the DOM-level variant conversion when a
// target variant is configured for the document.
func convertLanguageVariants(body *html.Node, pc *ProcContext) error {
	target := pc.Opts.VariantTarget
	if target == "" {
		return nil
	}
	v := pc.Site.VariantFor(target)
	if v == nil {
		tracer().P("variant", target).Infof("no variant table for target, skipping conversion")
		return nil
	}
	machine := variant.TableMachine(v.Map)
	return variant.Convert(body, pc.Env, target, machine)
}

// lintDocument is the optional lint pass: it only reports, through the
// tracing channel, and never modifies the tree.
func lintDocument(body *html.Node, pc *ProcContext) error {
	if !pc.Opts.Linting {
		return nil
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsElt(c) {
				switch c.Data {
				case "font", "center", "tt", "strike", "big":
					tracer().P("tag", c.Data).Infof("lint: obsolete tag")
				case "img":
					if !dom.HasAttr(c, "alt") {
						tracer().Infof("lint: img without alt text")
					}
				}
			}
			walk(c)
		}
	}
	walk(body)
	return nil
}

// stripMarkerMetas removes internal metas that survived their pass:
// stranded template markers and dangling fragment placeholders. Marker
// metas never appear in the final output.
func stripMarkerMetas(body *html.Node, pc *ProcContext) error {
	var doomed []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsMarkerMeta(c) || (dom.IsElt(c) && c.Data == "meta" && dom.HasTypeOf(c, "mw:DOMFragment")) {
				doomed = append(doomed, c)
			}
			walk(c)
		}
	}
	walk(body)
	for _, n := range doomed {
		dom.Detach(n)
	}
	return nil
}

// addExternalLinkClasses classifies external links: bare bracketed links
// are auto-numbered, links whose text is their URL are free, the rest
// are plain text links.
func addExternalLinkClasses(body *html.Node, pc *ProcContext) error {
	autonumber := 0
	for _, a := range cascadia.QueryAll(body, extLinkSel) {
		text := dom.InnerText(a)
		switch {
		case text == "":
			autonumber++
			dom.SetAttr(a, "class", "external autonumber")
			a.AppendChild(dom.NewText("[" + strconv.Itoa(autonumber) + "]"))
		case text == dom.Attr(a, "href"):
			dom.SetAttr(a, "class", "external free")
		default:
			dom.SetAttr(a, "class", "external text")
		}
	}
	return nil
}

// cleanupAndSerialize is the final data pass: empty wrapper elements are
// dropped, the side-table is garbage-collected, records are serialized
// into data-parsoid/data-mw attributes (or keyed for the page bundle),
// and the placeholder id attribute disappears.
func cleanupAndSerialize(body *html.Node, pc *ProcContext) error {
	removeEmptyWrappers(body)
	b := pc.Env.Bundle
	root := body
	for root.Parent != nil {
		root = root.Parent
	}
	b.GC(root)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if !dom.IsElt(c) {
				continue
			}
			id := page.NodeID(c)
			if id == 0 {
				continue
			}
			if pc.Opts.InlineDataAttribs {
				if dp := b.Parsoid[id]; dp != nil {
					if raw, err := json.Marshal(dp); err == nil {
						dom.SetAttr(c, "data-parsoid", string(raw))
					}
				}
				if mw := b.MW[id]; mw != nil {
					if raw, err := json.Marshal(mw); err == nil {
						dom.SetAttr(c, "data-mw", string(raw))
					}
				}
			} else {
				// page-bundle output keys records by the element id,
				// assigning one where none exists
				key := dom.Attr(c, "id")
				if key == "" {
					key = "mw" + strconv.Itoa(id)
					dom.SetAttr(c, "id", key)
				}
				b.SetKey(id, key)
			}
			dom.RemoveAttr(c, page.IDAttr)
		}
	}
	walk(body)
	return nil
}

// removeEmptyWrappers drops empty spans and paragraphs that carry no
// semantic payload.
func removeEmptyWrappers(body *html.Node) {
	var doomed []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if !dom.IsElt(c) || (c.Data != "span" && c.Data != "p") {
				continue
			}
			if c.FirstChild != nil {
				continue
			}
			if dom.Attr(c, "typeof") != "" || dom.Attr(c, "about") != "" || dom.Attr(c, "id") != "" {
				continue
			}
			doomed = append(doomed, c)
		}
	}
	walk(body)
	for _, n := range doomed {
		dom.Detach(n)
	}
}

// annotateRedLinks marks wiki links to missing pages with the "new"
// class, resolving existence in one batch.
func annotateRedLinks(body *html.Node, pc *ProcContext) error {
	if !pc.Opts.RedLinks || pc.Access == nil {
		return nil
	}
	links := cascadia.QueryAll(body, wikiLinkSel)
	for _, link := range links {
		title := strings.TrimPrefix(dom.Attr(link, "href"), "./")
		exists, err := pc.Access.PageExists(title)
		if err != nil {
			return err
		}
		if !exists {
			class := dom.Attr(link, "class")
			if class != "" {
				class += " "
			}
			dom.SetAttr(link, "class", class+"new")
		}
	}
	return nil
}
