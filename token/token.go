package token

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"
)

// Kind enumerates the variants of wikitext tokens. Tokens are produced by
// the tokenizer and travel through the transform stages until the tree
// builder turns them into DOM nodes.
type Kind int8

// All token kinds.
const (
	KindStartTag Kind = iota
	KindEndTag
	KindSelfClosing
	KindComment
	KindNewline
	KindText
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindStartTag:
		return "start-tag"
	case KindEndTag:
		return "end-tag"
	case KindSelfClosing:
		return "self-closing"
	case KindComment:
		return "comment"
	case KindNewline:
		return "newline"
	case KindText:
		return "text"
	case KindEOF:
		return "eof"
	}
	return "unknown"
}

// Token is the tagged-union interface implemented by all token variants.
// DataAttribs may return nil for tokens which never carried source
// information.
type Token interface {
	Kind() Kind
	DataAttribs() *DataAttribs
	String() string
}

// TSR is a token source range: byte offsets [Start,End) into the original
// wikitext. Unknown offsets are -1.
type TSR struct {
	Start int
	End   int
}

// UnknownTSR is the value for "no source information".
var UnknownTSR = TSR{-1, -1}

// Known tells if both offsets of the range are valid.
func (t TSR) Known() bool {
	return t.Start >= 0 && t.End >= 0
}

func (t TSR) String() string {
	return fmt.Sprintf("[%d,%d]", t.Start, t.End)
}

// DataAttribs is a side record attached to tokens, carrying source offsets,
// syntax hints and provenance flags. It survives into the DOM data
// side-table.
type DataAttribs struct {
	TSR         TSR           // source range of the token
	Stx         string        // syntax variant, e.g. "html" for literal HTML tags
	OpenWidth   int           // width of the opening construct in the source
	CloseWidth  int           // width of the closing construct in the source
	Fostered    bool          // node was foster-parented by the tree builder
	FromFoster  bool          // token originates from fostered content
	UnwrappedWT bool          // content was unwrapped from its wikitext construct
	Transclude  *Transclusion // for transclusion tokens
	Ext         *ExtTag       // for extension-tag tokens
	Link        *Link         // for link tokens
	TplArgInfo  string        // serialized template argument description (marker metas)
}

// Clone returns a shallow copy of the data attribs.
func (da *DataAttribs) Clone() *DataAttribs {
	if da == nil {
		return nil
	}
	d := *da
	return &d
}

// Transclusion is the payload of a template or template-argument token:
// `{{target|params}}` or `{{{name|default}}}`.
type Transclusion struct {
	Target  string // template target or parameter name, whitespace-normalized
	IsParam bool   // {{{…}}} rather than {{…}}
	Params  []KV   // ordered parameters, positional ones with empty key
}

// KV is one template parameter, either positional (empty K) or named.
// The source range covers key and value including the separating '='.
type KV struct {
	K   string
	V   string
	TSR TSR
}

// ExtTag is the payload of an extension-tag token, e.g. <ref>…</ref>.
// Inner holds the raw, unparsed source between the tags.
type ExtTag struct {
	Name   string
	Attrs  []Attr
	Inner  string
	Src    string // full source of the invocation including the tags
	Closed bool   // false for unclosed tags running to end of input
}

// Link is the payload of a wiki-link or external-link token.
type Link struct {
	Target   string // link target (page title or URL)
	Text     string // display text; empty means "use target"
	External bool
	Free     bool // free (bare URL) external link
}

// --- Token variants --------------------------------------------------------

// StartTag is an opening tag token.
type StartTag struct {
	Name  string
	Attrs []Attr
	DA    *DataAttribs
}

func (t *StartTag) Kind() Kind                { return KindStartTag }
func (t *StartTag) DataAttribs() *DataAttribs { return t.DA }
func (t *StartTag) String() string {
	return fmt.Sprintf("<%s %v>", t.Name, t.Attrs)
}

// EndTag is a closing tag token.
type EndTag struct {
	Name string
	DA   *DataAttribs
}

func (t *EndTag) Kind() Kind                { return KindEndTag }
func (t *EndTag) DataAttribs() *DataAttribs { return t.DA }
func (t *EndTag) String() string            { return fmt.Sprintf("</%s>", t.Name) }

// SelfClosing is a void or self-contained tag token. Transclusions,
// extension invocations, links and marker metas travel as self-closing
// tokens with their payload in the data attribs.
type SelfClosing struct {
	Name  string
	Attrs []Attr
	DA    *DataAttribs
}

func (t *SelfClosing) Kind() Kind                { return KindSelfClosing }
func (t *SelfClosing) DataAttribs() *DataAttribs { return t.DA }
func (t *SelfClosing) String() string {
	return fmt.Sprintf("<%s %v/>", t.Name, t.Attrs)
}

// Comment is a wikitext comment `<!--…-->`. Text holds the inner content
// without the delimiters.
type Comment struct {
	Text string
	DA   *DataAttribs
}

func (t *Comment) Kind() Kind                { return KindComment }
func (t *Comment) DataAttribs() *DataAttribs { return t.DA }
func (t *Comment) String() string            { return fmt.Sprintf("<!--%s-->", t.Text) }

// Newline separates source lines. Paragraph wrapping counts them.
type Newline struct {
	DA *DataAttribs
}

func (t *Newline) Kind() Kind                { return KindNewline }
func (t *Newline) DataAttribs() *DataAttribs { return t.DA }
func (t *Newline) String() string            { return "\\n" }

// Text is a run of plain text.
type Text struct {
	Value string
	DA    *DataAttribs
}

func (t *Text) Kind() Kind                { return KindText }
func (t *Text) DataAttribs() *DataAttribs { return t.DA }
func (t *Text) String() string {
	v := t.Value
	if len(v) > 16 {
		v = v[:16] + "…"
	}
	return fmt.Sprintf("%q", v)
}

// EOF terminates every token stream. Handlers registering for end-of-input
// receive it last.
type EOF struct {
	DA *DataAttribs
}

func (t *EOF) Kind() Kind                { return KindEOF }
func (t *EOF) DataAttribs() *DataAttribs { return t.DA }
func (t *EOF) String() string            { return "<EOF>" }

// --- Helpers ---------------------------------------------------------------

// Name returns the tag name of a token, or "" for non-tag tokens.
func Name(t Token) string {
	switch tk := t.(type) {
	case *StartTag:
		return tk.Name
	case *EndTag:
		return tk.Name
	case *SelfClosing:
		return tk.Name
	}
	return ""
}

// IsTag tells if a token is a start, end or self-closing tag with the
// given name.
func IsTag(t Token, name string) bool {
	return Name(t) == name
}

// StringifyTokens renders a token list for tracing.
func StringifyTokens(toks []Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}
