package variant

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wikidom/dom"
	"github.com/npillmayer/wikidom/page"
	"golang.org/x/net/html"
	"golang.org/x/text/language"
)

// tracer traces to channel 'wikidom.variant'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom.variant")
}

// Machine is the replacement machine: it transliterates text into the
// target variant. ok=false means the input was left untouched.
type Machine interface {
	Convert(text string) (out string, ok bool)
}

// tableMachine is the default machine, doing longest-match-first
// substitution over a glyph/word mapping table.
type tableMachine struct {
	keys []string // sorted by length, longest first
	m    map[string]string
}

// TableMachine builds a replacement machine from a mapping table.
func TableMachine(mapping map[string]string) Machine {
	tm := &tableMachine{m: mapping}
	for k := range mapping {
		tm.keys = append(tm.keys, k)
	}
	sort.Slice(tm.keys, func(i, j int) bool {
		if len(tm.keys[i]) != len(tm.keys[j]) {
			return len(tm.keys[i]) > len(tm.keys[j])
		}
		return tm.keys[i] < tm.keys[j]
	})
	return tm
}

func (tm *tableMachine) Convert(text string) (string, bool) {
	changed := false
	var sb strings.Builder
	pos := 0
outer:
	for pos < len(text) {
		for _, k := range tm.keys {
			if strings.HasPrefix(text[pos:], k) {
				sb.WriteString(tm.m[k])
				pos += len(k)
				changed = true
				continue outer
			}
		}
		sb.WriteByte(text[pos])
		pos++
	}
	if !changed {
		return text, false
	}
	return sb.String(), true
}

// skippedElements are never converted.
var skippedElements = map[string]bool{
	"code": true, "script": true, "pre": true, "cite": true,
}

// Convert walks the DOM converting text, link titles and hrefs, and
// title/alt attributes into the target variant. Conversions that cannot
// be reversed keep the original in data-mw-variant-orig for round-trip.
func Convert(body *html.Node, env *page.Env, target string, machine Machine) error {
	sourceLang := resolveSourceVariant(env.Page.Lang(), target)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if dom.IsElt(n) && skippedElements[n.Data] {
			return
		}
		if dom.IsElt(n) && (n.Data == "p" || n.Data == "body") {
			dom.SetAttr(n, "data-mw-variant-lang", sourceLang)
		}
		if dom.IsElt(n) && n.Data == "a" {
			convertLink(n, machine)
		}
		if dom.IsElt(n) {
			convertAttr(n, "title", machine)
			convertAttr(n, "alt", machine)
		}
		c := n.FirstChild
		for c != nil {
			next := c.NextSibling
			if dom.IsText(c) {
				if out, ok := machine.Convert(c.Data); ok {
					if parentOrig := c.Parent; parentOrig != nil && dom.IsElt(parentOrig) && !dom.HasAttr(parentOrig, "data-mw-variant-orig") {
						dom.SetAttr(parentOrig, "data-mw-variant-orig", c.Data)
					}
					c.Data = out
				}
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(body)
	tracer().P("variant", target).Debugf("converted document to variant")
	return nil
}

// convertLink converts the title and href of wiki links; interwiki and
// external links are left alone.
func convertLink(a *html.Node, machine Machine) {
	rel := dom.Attr(a, "rel")
	if rel != "mw:WikiLink" {
		return
	}
	if title := dom.Attr(a, "title"); title != "" {
		if out, ok := machine.Convert(title); ok {
			dom.SetAttr(a, "title", out)
		}
	}
	href := dom.Attr(a, "href")
	if strings.HasPrefix(href, "./") {
		if out, ok := machine.Convert(href[2:]); ok {
			dom.SetAttr(a, "href", "./"+out)
		}
	}
}

// convertAttr converts an attribute unless its value looks like a URL.
func convertAttr(n *html.Node, key string, machine Machine) {
	v := dom.Attr(n, key)
	if v == "" || looksLikeURL(v) {
		return
	}
	if out, ok := machine.Convert(v); ok {
		dom.SetAttr(n, key, out)
	}
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "//") || strings.HasPrefix(s, "./")
}

// resolveSourceVariant is the source-variant oracle: it matches the page
// language against the target variant's base language and returns the
// best guess for what the source text is written in.
func resolveSourceVariant(pageLang, target string) string {
	pl, errP := language.Parse(pageLang)
	tl, errT := language.Parse(target)
	if errP != nil || errT != nil {
		return pageLang
	}
	pb, _ := pl.Base()
	tb, _ := tl.Base()
	if pb == tb {
		return pageLang
	}
	return pb.String()
}
