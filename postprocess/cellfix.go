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

// listAndCellFixups is a single traverser bundling the small structural
// repairs: list-item leading whitespace, table-cell attribute cleanup,
// and style deduplication.
func listAndCellFixups(body *html.Node, pc *ProcContext) error {
	tv := dom.NewTraverser()
	tv.AddHandler("li", trimItemLead)
	tv.AddHandler("dt", trimItemLead)
	tv.AddHandler("dd", trimItemLead)
	tv.AddHandler("td", dedupeStyle)
	tv.AddHandler("th", dedupeStyle)
	tv.AddHandler("", dedupeAnyStyle)
	return tv.Run(body)
}

// trimItemLead drops the single blank the bullet syntax leaves at the
// start of an item.
func trimItemLead(n *html.Node) (*html.Node, error) {
	if dom.IsText(n.FirstChild) && strings.HasPrefix(n.FirstChild.Data, " ") {
		n.FirstChild.Data = strings.TrimPrefix(n.FirstChild.Data, " ")
		if n.FirstChild.Data == "" {
			dom.Detach(n.FirstChild)
		}
	}
	return n, nil
}

func dedupeAnyStyle(n *html.Node) (*html.Node, error) {
	if dom.IsElt(n) && dom.HasAttr(n, "style") {
		return dedupeStyle(n)
	}
	return n, nil
}

// dedupeStyle collapses repeated declarations inside a style attribute,
// keeping the last occurrence of each property.
func dedupeStyle(n *html.Node) (*html.Node, error) {
	style := dom.Attr(n, "style")
	if style == "" {
		return n, nil
	}
	decls := strings.Split(style, ";")
	byProp := make(map[string]string, len(decls))
	var order []string
	for _, d := range decls {
		kv := strings.SplitN(d, ":", 2)
		if len(kv) != 2 {
			continue
		}
		prop := strings.TrimSpace(kv[0])
		if prop == "" {
			continue
		}
		if _, seen := byProp[prop]; !seen {
			order = append(order, prop)
		}
		byProp[prop] = strings.TrimSpace(kv[1])
	}
	var sb strings.Builder
	for i, prop := range order {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(prop)
		sb.WriteString(": ")
		sb.WriteString(byProp[prop])
	}
	dom.SetAttr(n, "style", sb.String())
	return n, nil
}
