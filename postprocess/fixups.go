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

// treeBuilderFixups repairs artifacts of the HTML5 tree construction:
// rows left empty by trailing row separators, and whitespace-only
// paragraphs produced by blank-line runs.
func treeBuilderFixups(body *html.Node, pc *ProcContext) error {
	var doomed []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if !dom.IsElt(c) {
				continue
			}
			switch c.Data {
			case "tr":
				if !hasElementChild(c) {
					doomed = append(doomed, c)
				}
			case "p":
				if isWhitespaceOnly(c) && len(c.Attr) <= 1 { // placeholder id only
					doomed = append(doomed, c)
				}
			}
		}
	}
	walk(body)
	for _, n := range doomed {
		dom.Detach(n)
	}
	return nil
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElt(c) {
			return true
		}
	}
	return false
}

func isWhitespaceOnly(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !dom.IsText(c) || strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}

// normalizeDOM merges adjacent text nodes and drops empty ones, so later
// passes see one text node per run.
func normalizeDOM(body *html.Node, pc *ProcContext) error {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		c := n.FirstChild
		for c != nil {
			next := c.NextSibling
			if dom.IsText(c) {
				if c.Data == "" {
					dom.Detach(c)
				} else if next != nil && dom.IsText(next) {
					next.Data = c.Data + next.Data
					dom.Detach(c)
				}
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(body)
	return nil
}

// paragraphCleanup is the DOM-level paragraph pass: it unwraps
// paragraphs the token-level wrapper opened for content that turned out
// to be empty after tree building.
func paragraphCleanup(body *html.Node, pc *ProcContext) error {
	var doomed []*html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElt(c) && c.Data == "p" && c.FirstChild == nil {
			doomed = append(doomed, c)
		}
	}
	for _, n := range doomed {
		dom.Detach(n)
	}
	return nil
}
