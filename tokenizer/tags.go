package tokenizer

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"regexp"
	"strings"

	"github.com/npillmayer/wikidom/token"
)

var tagRe = regexp.MustCompile(`^<(/?)([a-zA-Z][a-zA-Z0-9]*)((?:[^>"']|"[^"]*"|'[^']*')*?)(/?)>`)

// htmlTags is the set of tag names passed through as literal HTML. The
// sanitizer in stage 3 applies the attribute allowlist; everything else
// is escaped as text.
var htmlTags = map[string]bool{
	"abbr": true, "b": true, "bdi": true, "bdo": true, "big": true,
	"blockquote": true, "br": true, "caption": true, "center": true,
	"cite": true, "code": true, "data": true, "dd": true, "del": true,
	"dfn": true, "div": true, "dl": true, "dt": true, "em": true,
	"font": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "hr": true, "i": true, "ins": true,
	"kbd": true, "li": true, "mark": true, "ol": true, "p": true,
	"pre": true, "q": true, "rb": true, "rp": true, "rt": true,
	"ruby": true, "s": true, "samp": true, "small": true, "span": true,
	"strike": true, "strong": true, "sub": true, "sup": true,
	"table": true, "td": true, "th": true, "time": true, "tr": true,
	"tt": true, "u": true, "ul": true, "var": true, "wbr": true,
}

// includeDirectives are tokenized as plain tags; the stage-1 transform
// resolves them against the isInclude option.
var includeDirectives = map[string]bool{
	"noinclude": true, "includeonly": true, "onlyinclude": true,
}

// voidTags never take an end tag.
var voidTags = map[string]bool{"br": true, "hr": true, "wbr": true}

// tag scans an XML-ish tag at position s. Dispatches between nowiki,
// registered extension tags, include directives and literal HTML; returns
// 0 when the '<' is plain text.
func (sc *scanner) tag(s, e int) int {
	m := tagRe.FindStringSubmatch(sc.src[s:])
	if m == nil {
		return 0
	}
	closing, name, rawAttrs, selfClose := m[1] == "/", strings.ToLower(m[2]), m[3], m[4] == "/"
	tagLen := len(m[0])
	switch {
	case name == "nowiki":
		return sc.nowiki(s, tagLen, closing || selfClose)
	case sc.ext[name] && !closing:
		return sc.extensionTag(s, name, rawAttrs, tagLen, selfClose)
	case includeDirectives[name] || htmlTags[name]:
		da := &token.DataAttribs{TSR: sc.tsr(s, s+tagLen), Stx: "html", OpenWidth: tagLen}
		if closing {
			sc.emit(&token.EndTag{Name: name, DA: da})
		} else if selfClose || voidTags[name] {
			sc.emit(&token.SelfClosing{Name: name, Attrs: parseRawAttrs(rawAttrs), DA: da})
		} else {
			sc.emit(&token.StartTag{Name: name, Attrs: parseRawAttrs(rawAttrs), DA: da})
		}
		return tagLen
	}
	return 0
}

// nowiki captures `<nowiki>…</nowiki>` and emits the inner source as a
// single unparsed text token.
func (sc *scanner) nowiki(s, tagLen int, degenerate bool) int {
	if degenerate { // `</nowiki>` or `<nowiki/>` on its own: drop
		return tagLen
	}
	innerStart := s + tagLen
	end := strings.Index(sc.src[innerStart:], "</nowiki>")
	var inner string
	var total int
	if end < 0 {
		inner = sc.src[innerStart:]
		total = len(sc.src) - s
	} else {
		inner = sc.src[innerStart : innerStart+end]
		total = tagLen + end + len("</nowiki>")
	}
	da := &token.DataAttribs{TSR: sc.tsr(s, s+total), UnwrappedWT: true}
	sc.emit(&token.Text{Value: inner, DA: da})
	return total
}

// extensionTag captures a registered extension invocation with its raw
// inner source. The stage-2 extension handler dispatches it.
func (sc *scanner) extensionTag(s int, name, rawAttrs string, tagLen int, selfClose bool) int {
	ext := &token.ExtTag{Name: name, Attrs: parseRawAttrs(rawAttrs)}
	var total int
	if selfClose {
		ext.Closed = true
		total = tagLen
	} else {
		closeTag := "</" + name + ">"
		end := strings.Index(sc.src[s+tagLen:], closeTag)
		if end < 0 {
			ext.Inner = sc.src[s+tagLen:]
			total = len(sc.src) - s
		} else {
			ext.Inner = sc.src[s+tagLen : s+tagLen+end]
			ext.Closed = true
			total = tagLen + end + len(closeTag)
		}
	}
	ext.Src = sc.src[s : s+total]
	da := &token.DataAttribs{TSR: sc.tsr(s, s+total), Ext: ext}
	sc.emit(&token.SelfClosing{Name: "extension", DA: da})
	return total
}

var attrRe = regexp.MustCompile(`([^\s=]+)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s"']+))?`)

// parseRawAttrs parses an HTML-ish attribute string. Option values are
// normalized: quotes stripped, whitespace collapsed; empty options are
// dropped.
func parseRawAttrs(s string) []token.Attr {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var attrs []token.Attr
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		k := strings.ToLower(strings.TrimSpace(m[1]))
		if k == "" {
			continue
		}
		v := m[2]
		if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') {
			v = v[1 : len(v)-1]
		}
		v = token.NormalizeOption(v)
		if v == "" && m[2] == "" {
			continue // bare word without value: dropped as an empty option
		}
		attrs = append(attrs, token.Attr{K: k, V: v})
	}
	return attrs
}
