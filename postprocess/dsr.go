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

// computeDSR propagates source offsets onto every element, bottom-up.
//
// Elements carrying a token source range keep it, widened by the widths
// of their wikitext constructs (already recorded at tokenize time).
// Elements synthesized later (paragraph wrappers, implied tbody) derive
// their range from the minimum start and maximum end of their children.
// Unknown offsets stay unknown; nothing is extrapolated past them.
//
// Runs at top level only; nested pipelines inherit the offsets their
// tokens carry.
func computeDSR(body *html.Node, pc *ProcContext) error {
	b := pc.Env.Bundle
	srcLen := len(pc.Env.Source())
	var walk func(n *html.Node) (int, int)
	walk = func(n *html.Node) (int, int) {
		childMin, childMax := -1, -1
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			s, e := walk(c)
			if s >= 0 && (childMin < 0 || s < childMin) {
				childMin = s
			}
			if e >= 0 && e > childMax {
				childMax = e
			}
		}
		if !dom.IsElt(n) {
			return -1, -1
		}
		dp := parsoidOf(n, b)
		if dp == nil {
			if childMin < 0 && childMax < 0 {
				return -1, -1
			}
			dp = b.DataParsoid(n)
		}
		if !dp.DSR.Known() {
			if dp.TSR.Known() {
				dp.DSR = page.DSR{Start: dp.TSR.Start, End: dp.TSR.End, OpenWidth: dp.DSR.OpenWidth, CloseWidth: dp.DSR.CloseWidth}
			} else if childMin >= 0 && childMax >= childMin {
				dp.DSR = page.DSR{Start: childMin, End: childMax, OpenWidth: 0, CloseWidth: 0}
			}
		}
		// content spans past the recorded end when children carry larger
		// offsets (multi-line constructs recorded line-wise)
		if dp.DSR.Known() && childMax > dp.DSR.End {
			dp.DSR.End = childMax
		}
		if dp.DSR.Known() {
			clampDSR(&dp.DSR, srcLen)
			return dp.DSR.Start, dp.DSR.End
		}
		return -1, -1
	}
	walk(body)
	bdp := b.DataParsoid(body)
	bdp.DSR = page.DSR{Start: 0, End: srcLen, OpenWidth: 0, CloseWidth: 0}
	return nil
}

// clampDSR enforces 0 ≤ start ≤ end ≤ len(source); a violated range is
// reset to unknown rather than guessed at.
func clampDSR(d *page.DSR, srcLen int) {
	if d.Start < 0 || d.End < 0 {
		return
	}
	if d.End > srcLen {
		d.End = srcLen
	}
	if d.Start > d.End {
		*d = page.UnknownDSR
	}
}
