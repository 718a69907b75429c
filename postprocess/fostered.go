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

// markFostered flags every node the tree builder moved out of a table.
// Detection is offset-based: a sibling preceding a table in the DOM whose
// token source range lies inside the table's source range can only have
// gotten there through foster-parenting.
//
// The flag is consulted by the template encapsulator to tell apart range
// overlap caused by the tree builder from overlap present in the
// wikitext.
func markFostered(body *html.Node, pc *ProcContext) error {
	b := pc.Env.Bundle
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsElt(c) && c.Data == "table" {
				markFosteredBefore(c, b)
			}
			walk(c)
		}
	}
	walk(body)
	return nil
}

// markFosteredBefore marks the run of siblings directly preceding a table
// whose source offsets fall inside the table's range.
func markFosteredBefore(table *html.Node, b *page.Bundle) {
	dp := parsoidOf(table, b)
	if dp == nil || !dp.TSR.Known() {
		return
	}
	for s := table.PrevSibling; s != nil; s = s.PrevSibling {
		if !dom.IsElt(s) {
			// fostered text has no record of its own; it is marked via
			// its neighbouring elements and handled positionally
			continue
		}
		sdp := parsoidOf(s, b)
		if sdp == nil || !sdp.TSR.Known() {
			break
		}
		// the table's recorded range covers its opening line only, so a
		// start offset past the table's own start means "from inside"
		if sdp.TSR.Start > dp.TSR.Start {
			sdp.Fostered = true
			tracer().P("node", s.Data).Debugf("marked fostered")
			continue
		}
		break
	}
}

// parsoidOf fetches an existing data-parsoid record without creating one.
func parsoidOf(n *html.Node, b *page.Bundle) *page.DataParsoid {
	id := page.NodeID(n)
	if id == 0 {
		return nil
	}
	return b.Parsoid[id]
}
