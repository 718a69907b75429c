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

var (
	behaviorSwitchRe = regexp.MustCompile(`^__([A-Z]+)__`)
	freeURLRe        = regexp.MustCompile(`^(?:https?|ftp)://[^\s\[\]<>"{}|]+`)
	protocolRe       = regexp.MustCompile(`^(?:https?|ftp)://`)
)

// inline scans the source range [s,e) for inline constructs, emitting
// text tokens for the stretches in between.
func (sc *scanner) inline(s, e int) {
	textStart := s
	pos := s
	flushText := func(upto int) {
		if upto > textStart {
			sc.emit(&token.Text{Value: sc.src[textStart:upto], DA: &token.DataAttribs{TSR: sc.tsr(textStart, upto)}})
		}
	}
	for pos < e {
		rest := sc.src[pos:e]
		mark := len(sc.out)
		var adv int
		switch {
		case strings.HasPrefix(rest, "<!--"):
			adv = sc.comment(pos, e)
		case strings.HasPrefix(rest, "{{{"):
			adv = sc.templateArg(pos, e)
		case strings.HasPrefix(rest, "{{"):
			adv = sc.template(pos, e)
		case strings.HasPrefix(rest, "[["):
			adv = sc.wikiLink(pos, e)
		case rest[0] == '[':
			adv = sc.extLink(pos, e)
		case strings.HasPrefix(rest, "''"):
			adv = sc.quotes(pos, e)
		case strings.HasPrefix(rest, "-{"):
			adv = sc.langVariant(pos, e)
		case rest[0] == '<':
			adv = sc.tag(pos, e)
		case rest[0] == '_':
			adv = sc.behaviorSwitch(pos, e)
		case rest[0] == 'h' || rest[0] == 'f':
			adv = sc.freeLink(pos, e)
		default:
			pos++
			continue
		}
		if adv == 0 { // no construct after all; keep as text
			pos++
			continue
		}
		// the construct has emitted its tokens already; the text run in
		// front of it goes in before them
		if pos > textStart {
			flushText(pos)
			txt := sc.out[len(sc.out)-1]
			copy(sc.out[mark+1:], sc.out[mark:len(sc.out)-1])
			sc.out[mark] = txt
		}
		pos += adv
		textStart = pos
	}
	flushText(e)
}

// comment scans `<!--…-->`. An unterminated comment runs to end of range.
func (sc *scanner) comment(s, e int) int {
	end := strings.Index(sc.src[s+4:e], "-->")
	var inner string
	var total int
	if end < 0 {
		inner = sc.src[s+4 : e]
		total = e - s
	} else {
		inner = sc.src[s+4 : s+4+end]
		total = 4 + end + 3
	}
	sc.emit(&token.Comment{Text: inner, DA: &token.DataAttribs{TSR: sc.tsr(s, s+total)}})
	return total
}

// balanced finds the length of a brace construct starting at s with the
// given open/close delimiters, honoring nesting. Returns 0 if unclosed.
func (sc *scanner) balanced(s, e int, open, close string) int {
	depth := 0
	pos := s
	for pos < e {
		if strings.HasPrefix(sc.src[pos:e], open) {
			depth++
			pos += len(open)
			continue
		}
		if strings.HasPrefix(sc.src[pos:e], close) {
			depth--
			pos += len(close)
			if depth == 0 {
				return pos - s
			}
			continue
		}
		pos++
	}
	return 0
}

// template scans a `{{target|params}}` transclusion.
func (sc *scanner) template(s, e int) int {
	n := sc.balanced(s, len(sc.src), "{{", "}}")
	if n == 0 {
		return 0
	}
	inner := sc.src[s+2 : s+n-2]
	tx := parseTransclusion(inner, sc.base+s+2, false)
	da := &token.DataAttribs{TSR: sc.tsr(s, s+n), Transclude: tx}
	sc.emit(&token.SelfClosing{Name: "template", DA: da})
	return n
}

// templateArg scans a `{{{name|default}}}` template argument.
func (sc *scanner) templateArg(s, e int) int {
	n := sc.balanced(s, len(sc.src), "{{{", "}}}")
	if n == 0 {
		// may be `{` + `{{…}}`
		return 0
	}
	inner := sc.src[s+3 : s+n-3]
	tx := parseTransclusion(inner, sc.base+s+3, true)
	da := &token.DataAttribs{TSR: sc.tsr(s, s+n), Transclude: tx}
	sc.emit(&token.SelfClosing{Name: "templatearg", DA: da})
	return n
}

// parseTransclusion splits `target|p1|k=v…` at top-level pipes. base is
// the absolute offset of the first byte of target, used for parameter
// source offsets.
func parseTransclusion(inner string, base int, isParam bool) *token.Transclusion {
	tx := &token.Transclusion{IsParam: isParam}
	depth := 0
	fields := []int{0} // start offsets of pipe-separated fields
	for i := 0; i < len(inner); i++ {
		switch {
		case strings.HasPrefix(inner[i:], "{{") || strings.HasPrefix(inner[i:], "[["):
			depth++
			i++
		case strings.HasPrefix(inner[i:], "}}") || strings.HasPrefix(inner[i:], "]]"):
			depth--
			i++
		case inner[i] == '|' && depth == 0:
			fields = append(fields, i+1)
		}
	}
	for fi, fs := range fields {
		fe := len(inner)
		if fi+1 < len(fields) {
			fe = fields[fi+1] - 1
		}
		field := inner[fs:fe]
		if fi == 0 {
			tx.Target = strings.TrimSpace(field)
			continue
		}
		kv := token.KV{TSR: token.TSR{Start: base + fs, End: base + fe}}
		if eq := topLevelIndexByte(field, '='); eq >= 0 {
			kv.K = strings.TrimSpace(field[:eq])
			kv.V = field[eq+1:]
		} else {
			kv.V = field
		}
		tx.Params = append(tx.Params, kv)
	}
	return tx
}

// topLevelIndexByte finds c outside of nested braces/brackets.
func topLevelIndexByte(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{") || strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case strings.HasPrefix(s[i:], "}}") || strings.HasPrefix(s[i:], "]]"):
			depth--
			i++
		case s[i] == c && depth == 0:
			return i
		}
	}
	return -1
}

// wikiLink scans `[[target|text]]`.
func (sc *scanner) wikiLink(s, e int) int {
	n := sc.balanced(s, len(sc.src), "[[", "]]")
	if n == 0 {
		return 0
	}
	inner := sc.src[s+2 : s+n-2]
	link := &token.Link{}
	if bar := topLevelIndexByte(inner, '|'); bar >= 0 {
		link.Target = strings.TrimSpace(inner[:bar])
		link.Text = inner[bar+1:]
	} else {
		link.Target = strings.TrimSpace(inner)
	}
	da := &token.DataAttribs{TSR: sc.tsr(s, s+n), Link: link, OpenWidth: 2, CloseWidth: 2}
	sc.emit(&token.SelfClosing{Name: "wikilink", DA: da})
	return n
}

// extLink scans `[url text]`. Without a protocol the bracket is literal.
func (sc *scanner) extLink(s, e int) int {
	inner := sc.src[s+1:]
	if !protocolRe.MatchString(inner) {
		return 0
	}
	closing := strings.IndexByte(sc.src[s+1:], ']')
	if closing < 0 {
		return 0
	}
	body := sc.src[s+1 : s+1+closing]
	link := &token.Link{External: true}
	if sp := strings.IndexAny(body, " \t"); sp >= 0 {
		link.Target = body[:sp]
		link.Text = strings.TrimSpace(body[sp+1:])
	} else {
		link.Target = body
	}
	n := closing + 2
	da := &token.DataAttribs{TSR: sc.tsr(s, s+n), Link: link, OpenWidth: 1, CloseWidth: 1}
	sc.emit(&token.SelfClosing{Name: "extlink", DA: da})
	return n
}

// freeLink scans a bare URL.
func (sc *scanner) freeLink(s, e int) int {
	m := freeURLRe.FindString(sc.src[s:e])
	if m == "" {
		return 0
	}
	m = strings.TrimRight(m, ".,;:!?)") // trailing punctuation is prose
	link := &token.Link{Target: m, External: true, Free: true}
	da := &token.DataAttribs{TSR: sc.tsr(s, s+len(m)), Link: link}
	sc.emit(&token.SelfClosing{Name: "extlink", DA: da})
	return len(m)
}

// quotes scans a run of apostrophes. Two, three and five quote marks are
// markup; other counts leave the surplus as literal text, resolved by the
// stage-3 quote transform.
func (sc *scanner) quotes(s, e int) int {
	n := 0
	for s+n < e && sc.src[s+n] == '\'' {
		n++
	}
	if n < 2 {
		return 0
	}
	marks := n
	if marks == 4 { // one literal apostrophe, then bold
		sc.emit(&token.Text{Value: "'", DA: &token.DataAttribs{TSR: sc.tsr(s, s+1)}})
		s++
		marks = 3
	} else if marks > 5 {
		lit := marks - 5
		sc.emit(&token.Text{Value: strings.Repeat("'", lit), DA: &token.DataAttribs{TSR: sc.tsr(s, s+lit)}})
		s += lit
		marks = 5
	}
	da := &token.DataAttribs{TSR: sc.tsr(s, s+marks), OpenWidth: marks}
	sc.emit(&token.SelfClosing{Name: "mw-quote", Attrs: []token.Attr{{K: "value", V: strings.Repeat("'", marks)}}, DA: da})
	return n
}

// langVariant scans `-{ … }-` language-variant markup.
func (sc *scanner) langVariant(s, e int) int {
	end := strings.Index(sc.src[s+2:], "}-")
	if end < 0 {
		return 0
	}
	inner := sc.src[s+2 : s+2+end]
	n := end + 4
	da := &token.DataAttribs{TSR: sc.tsr(s, s+n), OpenWidth: 2, CloseWidth: 2}
	sc.emit(&token.SelfClosing{Name: "mw-variant", Attrs: []token.Attr{{K: "text", V: inner}}, DA: da})
	return n
}

// behaviorSwitch scans `__NAME__`.
func (sc *scanner) behaviorSwitch(s, e int) int {
	m := behaviorSwitchRe.FindStringSubmatch(sc.src[s:e])
	if m == nil {
		return 0
	}
	da := &token.DataAttribs{TSR: sc.tsr(s, s+len(m[0]))}
	sc.emit(&token.SelfClosing{Name: "behavior-switch", Attrs: []token.Attr{{K: "name", V: m[1]}}, DA: da})
	return len(m[0])
}
