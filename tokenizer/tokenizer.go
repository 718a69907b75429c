package tokenizer

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wikidom/token"
)

// tracer traces to channel 'wikidom.tokenizer'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom.tokenizer")
}

// Tokenizer produces a token stream from wikitext source. The default
// implementation is a line/inline scanner; a grammar-generated tokenizer
// can be dropped in behind this interface.
type Tokenizer interface {
	Tokenize(src string) []token.Token
	TokenizeAt(src string, base int) []token.Token
}

// Wikitext is the default tokenizer. It scans block constructs line by
// line and inline constructs within each line, attaching byte-offset
// source ranges to every token.
type Wikitext struct {
	extTags map[string]bool // registered extension-tag names, lower case
}

// New creates a tokenizer. extTags lists the extension-tag names the
// scanner captures raw; unknown XML-ish tags are treated as literal HTML.
func New(extTags []string) *Wikitext {
	m := make(map[string]bool, len(extTags))
	for _, t := range extTags {
		m[strings.ToLower(t)] = true
	}
	return &Wikitext{extTags: m}
}

// Tokenize is part of interface Tokenizer.
func (wt *Wikitext) Tokenize(src string) []token.Token {
	return wt.TokenizeAt(src, 0)
}

// TokenizeAt tokenizes src, offsetting all source ranges by base. Nested
// pipelines pass the position of the expanded construct so offsets stay
// relative to the top-level document where that is meaningful.
func (wt *Wikitext) TokenizeAt(src string, base int) []token.Token {
	sc := &scanner{src: src, base: base, ext: wt.extTags}
	sc.run()
	sc.emit(&token.EOF{DA: &token.DataAttribs{TSR: token.TSR{Start: base + len(src), End: base + len(src)}}})
	tracer().Debugf("tokenized %d bytes into %d tokens", len(src), len(sc.out))
	return sc.out
}

// scanner holds the tokenizing state for one source string.
type scanner struct {
	src  string
	base int
	ext  map[string]bool
	out  []token.Token
}

func (sc *scanner) emit(t token.Token) {
	sc.out = append(sc.out, t)
}

func (sc *scanner) tsr(start, end int) token.TSR {
	return token.TSR{Start: sc.base + start, End: sc.base + end}
}

// run scans the source line by line.
func (sc *scanner) run() {
	pos := 0
	for pos <= len(sc.src) {
		if pos == len(sc.src) {
			if pos == 0 {
				break
			}
			break
		}
		eol := strings.IndexByte(sc.src[pos:], '\n')
		var lineEnd, next int
		if eol < 0 {
			lineEnd = len(sc.src)
			next = lineEnd
		} else {
			lineEnd = pos + eol
			next = lineEnd + 1
		}
		sc.line(pos, lineEnd)
		if eol >= 0 {
			sc.emit(&token.Newline{DA: &token.DataAttribs{TSR: sc.tsr(lineEnd, next)}})
		}
		pos = next
		if eol < 0 {
			break
		}
	}
}

// line dispatches one source line [s,e) to a block-construct scanner or
// to the inline scanner.
func (sc *scanner) line(s, e int) {
	if s == e {
		return // blank line; the newline token is emitted by run()
	}
	l := sc.src[s:e]
	switch {
	case l[0] == '=' && isHeadingLine(l):
		sc.headingLine(s, e)
	case strings.HasPrefix(l, "----"):
		sc.hrLine(s, e)
	case l[0] == '*' || l[0] == '#' || l[0] == ';' || (l[0] == ':' && !strings.HasPrefix(l, "::{|")):
		sc.listLine(s, e)
	case strings.HasPrefix(l, "{|"):
		sc.tableStartLine(s, e)
	case strings.HasPrefix(l, "|}"):
		sc.tableEndLine(s, e)
	case l[0] == '|' || l[0] == '!':
		sc.tableRowLine(s, e)
	default:
		sc.inline(s, e)
	}
}

// isHeadingLine tells if a line is =…= heading syntax: at least one '=' on
// both ends and non-empty content in between.
func isHeadingLine(l string) bool {
	t := strings.TrimRight(l, " \t")
	if len(t) < 3 || t[0] != '=' || t[len(t)-1] != '=' {
		return false
	}
	return strings.Trim(t, "=") != ""
}

// headingLine scans a =…= heading. The level is the shorter of the two
// equals runs, capped at 6; surplus markup stays part of the content.
func (sc *scanner) headingLine(s, e int) {
	l := strings.TrimRight(sc.src[s:e], " \t")
	lf := 0
	for lf < len(l) && l[lf] == '=' {
		lf++
	}
	lt := 0
	for lt < len(l) && l[len(l)-1-lt] == '=' {
		lt++
	}
	level := lf
	if lt < level {
		level = lt
	}
	if level > 6 {
		level = 6
	}
	name := [...]string{"h1", "h2", "h3", "h4", "h5", "h6"}[level-1]
	da := &token.DataAttribs{TSR: sc.tsr(s, e), OpenWidth: level, CloseWidth: level + (e - s - len(l))}
	sc.emit(&token.StartTag{Name: name, DA: da})
	sc.inline(s+level, s+len(l)-level)
	sc.emit(&token.EndTag{Name: name, DA: &token.DataAttribs{TSR: sc.tsr(s+len(l)-level, e)}})
}

// hrLine scans a ---- horizontal rule; text after the dashes stays inline.
func (sc *scanner) hrLine(s, e int) {
	l := sc.src[s:e]
	n := 0
	for n < len(l) && l[n] == '-' {
		n++
	}
	sc.emit(&token.SelfClosing{Name: "hr", DA: &token.DataAttribs{TSR: sc.tsr(s, s+n), OpenWidth: n}})
	if n < len(l) {
		sc.inline(s+n, e)
	}
}

// listLine scans a list line: the bullet run becomes a listItem token, the
// remainder is inline content. The stage-3 list handler folds runs of
// listItem tokens into proper list structure.
func (sc *scanner) listLine(s, e int) {
	l := sc.src[s:e]
	n := 0
	for n < len(l) {
		switch l[n] {
		case '*', '#', ';', ':':
			n++
			continue
		}
		break
	}
	da := &token.DataAttribs{TSR: sc.tsr(s, s+n), OpenWidth: n}
	sc.emit(&token.SelfClosing{
		Name:  "listItem",
		Attrs: []token.Attr{{K: "bullets", V: l[:n]}},
		DA:    da,
	})
	if n < len(l) {
		sc.inline(s+n, e)
	}
}

// tableStartLine scans `{|attrs`.
func (sc *scanner) tableStartLine(s, e int) {
	attrs := parseRawAttrs(sc.src[s+2 : e])
	da := &token.DataAttribs{TSR: sc.tsr(s, e), Stx: "wikitext", OpenWidth: 2}
	sc.emit(&token.StartTag{Name: "table", Attrs: attrs, DA: da})
}

// tableEndLine scans `|}`; trailing text on the line stays inline.
func (sc *scanner) tableEndLine(s, e int) {
	sc.emit(&token.EndTag{Name: "table", DA: &token.DataAttribs{TSR: sc.tsr(s, s+2)}})
	if s+2 < e {
		sc.inline(s+2, e)
	}
}

// tableRowLine scans `|-`, `|+`, and cell lines starting with '|' or '!'.
func (sc *scanner) tableRowLine(s, e int) {
	l := sc.src[s:e]
	switch {
	case strings.HasPrefix(l, "|-"):
		n := 1
		for n < len(l) && l[n] == '-' {
			n++
		}
		attrs := parseRawAttrs(l[n:])
		sc.emit(&token.StartTag{Name: "tr", Attrs: attrs, DA: &token.DataAttribs{TSR: sc.tsr(s, e), Stx: "wikitext", OpenWidth: n}})
	case strings.HasPrefix(l, "|+"):
		sc.emit(&token.StartTag{Name: "caption", DA: &token.DataAttribs{TSR: sc.tsr(s, e), Stx: "wikitext", OpenWidth: 2}})
		sc.inline(s+2, e)
		sc.emit(&token.EndTag{Name: "caption", DA: &token.DataAttribs{TSR: sc.tsr(e, e)}})
	default:
		name := "td"
		sep := "||"
		if l[0] == '!' {
			name = "th"
			sep = "!!"
		}
		sc.cells(name, sep, s, e)
	}
}

// cells splits a cell line on the inline cell separator and emits one cell
// per chunk. A leading `attrs|` run inside a chunk is cell attributes.
func (sc *scanner) cells(name, sep string, s, e int) {
	pos := s + 1
	for pos <= e {
		idx := strings.Index(sc.src[pos:e], sep)
		var cellEnd, nextPos int
		if idx < 0 {
			cellEnd = e
			nextPos = e + 1
		} else {
			cellEnd = pos + idx
			nextPos = cellEnd + len(sep)
		}
		content := sc.src[pos:cellEnd]
		attrs, contentOfs := splitCellAttrs(content)
		da := &token.DataAttribs{TSR: sc.tsr(pos-1, cellEnd), Stx: "wikitext", OpenWidth: 1 + contentOfs}
		sc.emit(&token.StartTag{Name: name, Attrs: attrs, DA: da})
		sc.inline(pos+contentOfs, cellEnd)
		sc.emit(&token.EndTag{Name: name, DA: &token.DataAttribs{TSR: sc.tsr(cellEnd, cellEnd)}})
		pos = nextPos
	}
}

// splitCellAttrs splits `attrs|content` cell syntax. The candidate attr
// run must not contain wiki markup and must parse into at least one
// attribute, else the whole chunk is content.
func splitCellAttrs(content string) ([]token.Attr, int) {
	bar := strings.IndexByte(content, '|')
	if bar < 0 {
		return nil, 0
	}
	cand := content[:bar]
	if strings.ContainsAny(cand, "[]{}<>") {
		return nil, 0
	}
	attrs := parseRawAttrs(cand)
	if len(attrs) == 0 {
		return nil, 0
	}
	return attrs, bar + 1
}
