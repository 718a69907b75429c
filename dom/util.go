package dom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TemplateMetaType matches the typeof values of template marker metas.
var TemplateMetaType = regexp.MustCompile(`^mw:(Transclusion|Param)(/\S+)?$`)

// IsElt tells if a node is an element.
func IsElt(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsText tells if a node is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsComment tells if a node is a comment.
func IsComment(n *html.Node) bool {
	return n != nil && n.Type == html.CommentNode
}

// IsIEW tells if a node is inter-element whitespace: a text node
// containing blanks only.
func IsIEW(n *html.Node) bool {
	return IsText(n) && strings.TrimSpace(n.Data) == ""
}

// Attr returns the value of an attribute, or "".
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr tells if an attribute is present.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets an attribute, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops an attribute.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// TypeOf returns the typeof attribute of a node.
func TypeOf(n *html.Node) string {
	return Attr(n, "typeof")
}

// HasTypeOf tells if a node's typeof attribute contains the given entry.
func HasTypeOf(n *html.Node, t string) bool {
	for _, part := range strings.Fields(TypeOf(n)) {
		if part == t {
			return true
		}
	}
	return false
}

// AddTypeOf prepends a type to a node's typeof attribute, preserving
// existing entries.
func AddTypeOf(n *html.Node, t string) {
	existing := TypeOf(n)
	if existing == "" {
		SetAttr(n, "typeof", t)
		return
	}
	if HasTypeOf(n, t) {
		return
	}
	SetAttr(n, "typeof", t+" "+existing)
}

// IsMarkerMeta tells if a node is a template marker meta: a meta element
// whose typeof matches the template-meta pattern.
func IsMarkerMeta(n *html.Node) bool {
	if !IsElt(n) || n.Data != "meta" {
		return false
	}
	return TemplateMetaType.MatchString(TypeOf(n))
}

// IsMarkerStart tells if a marker meta opens a range (no /End suffix).
func IsMarkerStart(n *html.Node) bool {
	return IsMarkerMeta(n) && !strings.Contains(TypeOf(n), "/End")
}

// fosterableParents are the elements inside which stray content gets
// foster-parented by the tree builder.
var fosterableParents = map[string]bool{
	"table": true, "tbody": true, "thead": true, "tfoot": true, "tr": true,
}

// IsFosterablePosition tells if a node sits at a position from which the
// tree builder foster-parents non-table content.
func IsFosterablePosition(n *html.Node) bool {
	return n != nil && n.Parent != nil && IsElt(n.Parent) && fosterableParents[n.Parent.Data]
}

// NewElement creates a detached element node.
func NewElement(name string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: name, DataAtom: atom.Lookup([]byte(name))}
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Detach removes a node from its parent and returns it.
func Detach(n *html.Node) *html.Node {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return n
}

// InsertAfter inserts newChild directly after ref under ref's parent.
func InsertAfter(ref, newChild *html.Node) {
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(newChild, ref.NextSibling)
	} else {
		ref.Parent.AppendChild(newChild)
	}
}

// NextNonSep returns the next sibling that is not inter-element
// whitespace or a comment.
func NextNonSep(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if !IsIEW(s) && !IsComment(s) {
			return s
		}
	}
	return nil
}

// InnerText collects the text content of a node and all descendents.
func InnerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// Ancestors collects a node's ancestor chain up to and including the
// document root, nearest first.
func Ancestors(n *html.Node) []*html.Node {
	var out []*html.Node
	for p := n.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Precedes reports whether a comes strictly before b among the children
// of their common parent. Both must be siblings.
func Precedes(a, b *html.Node) bool {
	for s := a.NextSibling; s != nil; s = s.NextSibling {
		if s == b {
			return true
		}
	}
	return false
}
