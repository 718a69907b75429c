package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strconv"

	"github.com/npillmayer/wikidom/dom"
	"golang.org/x/net/html"
)

// finalizeMetadata builds the document head (charset, RDFa prefixes,
// title, base URI, style modules, revision metadata) and stamps the body
// with language, direction and the content classes. Runs once, after all
// passes at top level.
func finalizeMetadata(doc, body *html.Node, pc *ProcContext) error {
	htmlElem, head := findHTMLAndHead(doc)
	if htmlElem == nil || head == nil {
		return nil // fragment processing; nothing to finalize
	}
	dom.SetAttr(htmlElem, "prefix", "dc: http://purl.org/dc/terms/ mw: http://mediawiki.org/rdf/")
	dom.SetAttr(head, "prefix", "mwr: http://mediawiki.org/rdf/wiki/")

	appendToHead := func(n *html.Node) { head.AppendChild(n) }

	charset := dom.NewElement("meta")
	dom.SetAttr(charset, "charset", "utf-8")
	appendToHead(charset)

	cfg := pc.Env.Page
	if cfg.RevisionID != 0 {
		rev := dom.NewElement("meta")
		dom.SetAttr(rev, "property", "mw:revision")
		dom.SetAttr(rev, "content", strconv.FormatInt(cfg.RevisionID, 10))
		appendToHead(rev)
	}
	title := dom.NewElement("title")
	title.AppendChild(dom.NewText(cfg.Title))
	appendToHead(title)

	if pc.Site.BaseURI != "" {
		base := dom.NewElement("base")
		dom.SetAttr(base, "href", pc.Site.BaseURI)
		appendToHead(base)
	}
	for _, style := range pc.Site.Styles {
		link := dom.NewElement("link")
		dom.SetAttr(link, "rel", "stylesheet")
		dom.SetAttr(link, "href", style)
		appendToHead(link)
	}
	for _, mod := range pc.Site.Modules {
		script := dom.NewElement("script")
		dom.SetAttr(script, "src", mod)
		appendToHead(script)
	}

	dir := cfg.Dir()
	dom.SetAttr(body, "lang", cfg.Lang())
	dom.SetAttr(body, "dir", dir)
	dom.SetAttr(body, "class",
		"mw-content-"+dir+" sitedir-"+dir+" "+dir+" mediawiki mw-body-content mw-parser-output")
	return nil
}

func findHTMLAndHead(doc *html.Node) (*html.Node, *html.Node) {
	var htmlElem, head *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				htmlElem = n
			case "head":
				head = n
				return
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if doc != nil {
		walk(doc)
	}
	return htmlElem, head
}
