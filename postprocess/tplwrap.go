package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wikidom/dom"
	"github.com/npillmayer/wikidom/page"
	"golang.org/x/net/html"
)

// wrapTracer traces to the encapsulator's own channel.
func wrapTracer() tracing.Trace {
	return tracing.Select("wikidom.tplwrap")
}

// ErrEncapsulation flags a template range that cannot be legitimately
// wrapped. The document continues; only the range is dropped.
var ErrEncapsulation = errors.New("cannot encapsulate template range")

// templateRange is the working record of one transclusion's output span.
// startElem/endElem are the marker metas; start/end the DOM nodes
// delimiting the range after climbing to the common ancestor. flipped is
// set when the end marker was foster-parented before the start.
type templateRange struct {
	id          int
	startElem   *html.Node
	endElem     *html.Node
	start       *html.Node
	end         *html.Node
	startOffset int
	flipped     bool
	argInfo     *page.TplArgInfo
}

// wrapTemplates is the template-range encapsulation pass: it finds the
// minimal DOM subtree covering each transclusion's output, resolves
// nesting and overlap between ranges, and attaches provenance to one
// wrapper element per surviving range.
func wrapTemplates(body *html.Node, pc *ProcContext) error {
	ranges := findWrappableTemplateRanges(body, pc)
	if len(ranges) == 0 {
		return nil
	}
	topLevel, compound := findTopLevelNonOverlappingRanges(ranges, pc)
	for _, r := range topLevel {
		encapsulateTemplates(r, compound[r.id], pc)
	}
	return nil
}

// --- Phase A ---------------------------------------------------------------

// findWrappableTemplateRanges pairs start and end marker metas by about
// id, in document order, and computes the minimal DOM range for each
// pair.
func findWrappableTemplateRanges(body *html.Node, pc *ProcContext) []*templateRange {
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

	starts := make(map[string]*html.Node)
	var ranges []*templateRange
	for _, meta := range metas {
		about := dom.Attr(meta, "about")
		if dom.IsMarkerStart(meta) {
			starts[about] = meta
			continue
		}
		startElem := starts[about]
		delete(starts, about)
		if startElem == nil {
			// the end marker was foster-parented before its start; use it
			// as both endpoints
			wrapTracer().P("about", about).Infof("trace/tplwrap: end marker before start, foster-parented")
			startElem = meta
		}
		r := getDOMRange(startElem, meta, about, pc)
		if r != nil {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

// getDOMRange climbs from the marker metas to their common ancestor and
// adjusts the endpoints until both are wrappable siblings.
func getDOMRange(startM, endM *html.Node, about string, pc *ProcContext) *templateRange {
	b := pc.Env.Bundle
	r := &templateRange{
		id:        aboutIDNum(about),
		startElem: startM,
		endElem:   endM,
	}
	if sdp := parsoidOf(startM, b); sdp != nil {
		r.startOffset = sdp.TSR.Start
		if ai, err := page.ParseTplArgInfo(sdp.Tmp.ArgInfo); err == nil {
			r.argInfo = ai
		}
	}

	// 1. climb to the common ancestor; range endpoints are its children
	// on the two marker paths
	ancestors := make(map[*html.Node]bool)
	for p := startM.Parent; p != nil; p = p.Parent {
		ancestors[p] = true
	}
	end := endM
	for end.Parent != nil && !ancestors[end.Parent] {
		end = end.Parent
	}
	if end.Parent == nil {
		wrapTracer().P("about", about).Errorf("markers share no ancestor")
		return nil
	}
	ca := end.Parent
	start := startM
	for start.Parent != ca {
		start = start.Parent
	}
	r.start, r.end = start, end

	// 2. adjacent markers with nothing between them: insert an empty span
	// so the range has a wrappable target
	if r.start == startM && r.end == endM && startM.NextSibling == endM && !dom.IsFosterablePosition(startM) {
		span := dom.NewElement("span")
		dom.InsertAfter(startM, span)
		sp := b.DataParsoid(span)
		if sdp := parsoidOf(startM, b); sdp != nil {
			sp.DSR = sdp.DSR
		}
		r.start, r.end = span, span
	}

	// 3. non-element start in a fosterable position: push leading
	// separators into the following row, else widen to the parent
	if dom.IsFosterablePosition(r.start) && !dom.IsElt(r.start) {
		if dom.IsIEW(r.start) || dom.IsComment(r.start) {
			if next := dom.NextNonSep(r.start); next != nil && dom.IsElt(next) && (next.Data == "tr" || next.Data == "tbody") {
				sep := dom.Detach(r.start)
				if next.FirstChild != nil {
					next.InsertBefore(sep, next.FirstChild)
				} else {
					next.AppendChild(sep)
				}
				r.start = next
			} else {
				r.start = r.start.Parent
			}
		} else {
			r.start = r.start.Parent
		}
		if r.start != nil && isAncestorOf(r.start, r.end) {
			r.end = r.start
		}
	}

	// 4. still not an element: wrap it, adopting the start marker's DSR
	if !dom.IsElt(r.start) {
		span := dom.NewElement("span")
		r.start.Parent.InsertBefore(span, r.start)
		span.AppendChild(dom.Detach(r.start))
		sp := b.DataParsoid(span)
		if sdp := parsoidOf(startM, b); sdp != nil {
			sp.DSR = sdp.DSR
		}
		if r.end == span.FirstChild {
			r.end = span
		}
		r.start = span
	}

	// 5. a range starting at a table swallows the content the tree
	// builder fostered out in front of it
	if dom.IsElt(r.start) && r.start.Data == "table" {
		for prev := r.start.PrevSibling; prev != nil; prev = prev.PrevSibling {
			if dom.IsElt(prev) {
				pdp := parsoidOf(prev, b)
				if pdp != nil && pdp.Fostered {
					r.start = prev
					continue
				}
				break
			}
			if dom.IsText(prev) || dom.IsComment(prev) {
				break
			}
			break
		}
	}

	// 6. fostered end markers come out ahead of their start
	if r.start != r.end && r.start.Parent == r.end.Parent && dom.Precedes(r.end, r.start) {
		r.start, r.end = r.end, r.start
		r.flipped = true
		wrapTracer().P("about", about).Infof("trace/tplwrap: flipped range")
	}
	return r
}

func isAncestorOf(anc, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == anc {
			return true
		}
	}
	return false
}

// aboutIDNum extracts the numeric part of an about id "#mwt<n>".
func aboutIDNum(about string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(about, "#mwt"))
	if err != nil {
		return -1
	}
	return n
}

// --- Phase B ---------------------------------------------------------------

// findTopLevelNonOverlappingRanges resolves nesting and overlap between
// ranges. Nested and overlapping ranges are folded into their enclosing
// or preceding range's compound argument array; the survivors are the
// top-level ranges to encapsulate.
func findTopLevelNonOverlappingRanges(ranges []*templateRange, pc *ProcContext) ([]*templateRange, map[int][]*page.TplArgInfo) {
	// 1. tag every node in every range's span with the covering range ids
	coverage := make(map[*html.Node]map[int]bool)
	byID := make(map[int]*templateRange, len(ranges))
	for _, r := range ranges {
		byID[r.id] = r
		for n := r.start; n != nil; n = n.NextSibling {
			if coverage[n] == nil {
				coverage[n] = make(map[int]bool)
			}
			coverage[n][r.id] = true
			if n == r.end {
				break
			}
		}
	}

	// 2. a range whose start has an ancestor covered by another range is
	// nested; it is subsumed by the outermost enclosing range
	subsumed := make(map[int]int)
	for _, r := range ranges {
		outer := -1
		for _, anc := range dom.Ancestors(r.start) {
			for id := range coverage[anc] {
				if id == r.id {
					continue
				}
				if outer < 0 || byID[id].startOffset < byID[outer].startOffset {
					outer = id
				}
			}
		}
		if outer >= 0 {
			subsumed[r.id] = outer
		}
	}

	// 3. ranges sharing both endpoints: the later one is subsumed.
	// Cycles must not enter the map.
	for _, r := range ranges {
		for _, other := range ranges {
			if r.id == other.id || r.start != other.start || r.end != other.end {
				continue
			}
			inner, winner := r, other
			if inner.startOffset < winner.startOffset ||
				(inner.startOffset == winner.startOffset && inner.id < winner.id) {
				inner, winner = winner, inner
			}
			if _, dup := subsumed[inner.id]; dup {
				continue
			}
			if createsCycle(subsumed, inner.id, winner.id) {
				wrapTracer().Errorf("trace/tplwrap: cycle in subsumption between #mwt%d and #mwt%d", inner.id, winner.id)
				continue
			}
			subsumed[inner.id] = winner.id
		}
	}

	// 4. textual order
	sorted := append([]*templateRange(nil), ranges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].startOffset != sorted[j].startOffset {
			return sorted[i].startOffset < sorted[j].startOffset
		}
		return sorted[i].id < sorted[j].id
	})

	// 5. emit top-level ranges, folding subsumed and overlapping ones
	// into compound argument arrays
	var topLevel []*templateRange
	compound := make(map[int][]*page.TplArgInfo)
	rootOf := make(map[int]int)
	var prev *templateRange
	for _, r := range sorted {
		if outer, nested := subsumed[r.id]; nested {
			root := resolveRoot(outer, subsumed, rootOf)
			stripMarkers(r)
			if r.argInfo != nil {
				compound[root] = append(compound[root], r.argInfo)
			}
			rootOf[r.id] = root
			wrapTracer().P("range", strconv.Itoa(r.id)).Debugf("subsumed into #mwt%d", root)
			continue
		}
		if prev != nil && overlaps(prev, r) {
			if r.flipped {
				// a flipped range must never reach the overlap merge
				wrapTracer().Errorf("trace/tplwrap: flipped range #mwt%d in overlap merge", r.id)
			}
			// the merged range ends where r ended; prev's end marker is
			// superseded and r's start marker folds away
			if prev.endElem != r.endElem && dom.IsMarkerMeta(prev.endElem) {
				dom.Detach(prev.endElem)
			}
			prev.end = r.end
			prev.endElem = r.endElem
			if r.startElem != r.endElem && dom.IsMarkerMeta(r.startElem) {
				dom.Detach(r.startElem)
			}
			if r.argInfo != nil {
				compound[prev.id] = append(compound[prev.id], r.argInfo)
			}
			rootOf[r.id] = prev.id
			wrapTracer().P("range", strconv.Itoa(r.id)).Debugf("merged into overlapping #mwt%d", prev.id)
			continue
		}
		topLevel = append(topLevel, r)
		if r.argInfo != nil {
			compound[r.id] = []*page.TplArgInfo{r.argInfo}
		}
		rootOf[r.id] = r.id
		prev = r
	}
	return topLevel, compound
}

// createsCycle tells if inserting subsumed[from]=to would close a loop.
func createsCycle(subsumed map[int]int, from, to int) bool {
	seen := map[int]bool{from: true}
	for {
		next, ok := subsumed[to]
		if !ok {
			return false
		}
		if seen[next] {
			return true
		}
		seen[next] = true
		to = next
	}
}

// resolveRoot follows the subsumption chain to the outermost range id.
func resolveRoot(id int, subsumed, rootOf map[int]int) int {
	for {
		if root, ok := rootOf[id]; ok {
			return root
		}
		next, ok := subsumed[id]
		if !ok {
			return id
		}
		id = next
	}
}

// overlaps checks, flipped-aware, whether r starts inside prev's sibling
// span.
func overlaps(prev, r *templateRange) bool {
	if r.start.Parent != prev.end.Parent {
		return false
	}
	return r.start == prev.end || dom.Precedes(r.start, prev.end)
}

// stripMarkers detaches both marker metas of a folded range.
func stripMarkers(r *templateRange) {
	if dom.IsMarkerMeta(r.startElem) {
		dom.Detach(r.startElem)
	}
	if r.endElem != r.startElem && dom.IsMarkerMeta(r.endElem) {
		dom.Detach(r.endElem)
	}
}

// --- Phase C ---------------------------------------------------------------

// encapsulateTemplates wraps one top-level range: stamps the about id
// across the sibling span, merges the transclusion typeof and data-mw
// onto the wrapping target, computes the range DSR, and removes the
// markers.
func encapsulateTemplates(r *templateRange, argInfos []*page.TplArgInfo, pc *ProcContext) {
	b := pc.Env.Bundle
	about := dom.Attr(r.startElem, "about")

	// 1. stamp the about id; non-elements in unfosterable positions get
	// span-wrapped, fosterable ones are left alone (the tree builder
	// keeps real text out of those slots)
	n := r.start
	for n != nil {
		last := n == r.end
		if dom.IsElt(n) {
			dom.SetAttr(n, "about", about)
		} else if !dom.IsFosterablePosition(n) {
			span := dom.NewElement("span")
			dom.SetAttr(span, "about", about)
			n.Parent.InsertBefore(span, n)
			span.AppendChild(dom.Detach(n))
			if last {
				r.end = span
			}
			if n == r.start {
				r.start = span
			}
			n = span
		}
		if last {
			break
		}
		n = n.NextSibling
	}

	// 2. the encapsulation target is the first element in the span that
	// is not a marker meta
	var target *html.Node
	for n := r.start; n != nil; n = n.NextSibling {
		if dom.IsElt(n) && !dom.IsMarkerMeta(n) {
			target = n
			break
		}
		if n == r.end {
			break
		}
	}
	if target == nil {
		wrapTracer().Errorf("%v: no element before range end (about %s)", ErrEncapsulation, about)
		stripMarkers(r)
		return
	}
	if r.flipped {
		wrapTracer().P("about", about).Infof("trace/tplwrap: encapsulating flipped range")
	}

	// 3. the transclusion typeof precedes pre-existing types on the target
	typeVal := "mw:Transclusion"
	if m := dom.TemplateMetaType.FindStringSubmatch(dom.TypeOf(r.startElem)); m != nil && m[1] == "Param" {
		typeVal = "mw:Param"
	}
	dom.AddTypeOf(target, typeVal)

	// 4. range DSR from the start marker and the end node
	sdp := parsoidOf(r.startElem, b)
	if sdp == nil || !sdp.DSR.Known() {
		wrapTracer().P("about", about).Infof("trace/tplwrap: range without DSR, skipped")
		stripMarkers(r)
		return
	}
	dsr := sdp.DSR
	startFostered := false
	if stdp := parsoidOf(r.start, b); stdp != nil {
		startFostered = stdp.Fostered
	}
	if edp := parsoidOf(r.end, b); edp != nil && edp.DSR.Known() {
		if edp.DSR.End > dsr.End {
			dsr.End = edp.DSR.End
		}
		if r.end.Data == "table" && (edp.DSR.Start < dsr.Start || startFostered) {
			dsr.Start = edp.DSR.Start
		}
	}

	// 5. data-mw parts from the compound argument array
	parts, pi := buildParts(argInfos, dsr, target, b, pc)

	// 6. a fostered single-part range cannot be round-tripped usefully
	if (startFostered || r.flipped) && len(parts) == 1 {
		dsr.End = dsr.Start
	}

	tdp := b.DataParsoid(target)
	tdp.DSR = dsr
	if len(pi) > 0 {
		tdp.PI = pi
	}
	b.SetDataMW(target, &page.DataMW{Parts: parts})
	dom.SetAttr(target, "about", about)

	// 7. markers go away
	stripMarkers(r)
}

// buildParts assembles the ordered parts array: template entries from
// the compound array with literal wikitext runs filling DSR gaps.
func buildParts(argInfos []*page.TplArgInfo, dsr page.DSR, target *html.Node, b *page.Bundle, pc *ProcContext) ([]page.Part, [][]page.ParamInfo) {
	src := pc.Env.Source()
	var parts []page.Part
	var pi [][]page.ParamInfo
	covered := dsr.Start
	tplIndex := 0
	for i, ai := range argInfos {
		s, e := ai.TSR[0], ai.TSR[1]
		if s > covered && covered >= 0 && s <= len(src) {
			parts = append(parts, page.Part{WT: src[covered:s]})
			if i == 0 {
				// the serializer resolves newline constraints against the
				// first templated node's name
				tdp := b.DataParsoid(target)
				tdp.FirstWikitextNode = strings.ToUpper(target.Data)
			}
		}
		info := ai.Dict
		info.I = tplIndex
		tplIndex++
		if ai.IsParam {
			parts = append(parts, page.Part{TemplateArg: &info})
		} else {
			parts = append(parts, page.Part{Template: &info})
		}
		if len(ai.ParamInfos) > 0 {
			pi = append(pi, ai.ParamInfos)
		}
		if e > covered {
			covered = e
		}
	}
	if covered < dsr.End && covered >= 0 && dsr.End <= len(src) {
		parts = append(parts, page.Part{WT: src[covered:dsr.End]})
	}
	return parts, pi
}
