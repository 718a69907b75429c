package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"

	"github.com/npillmayer/wikidom/dom"
	"github.com/xlab/treeprint"
	"golang.org/x/net/html"
)

// DumpDOM renders a DOM subtree as an indented tree for the dump hooks.
func DumpDOM(root *html.Node) string {
	tree := treeprint.New()
	addDumpNode(tree, root)
	return tree.String()
}

func addDumpNode(branch treeprint.Tree, n *html.Node) {
	label := dumpLabel(n)
	if n.FirstChild == nil {
		branch.AddNode(label)
		return
	}
	sub := branch.AddBranch(label)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		addDumpNode(sub, c)
	}
}

func dumpLabel(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if len(text) > 24 {
			text = text[:24] + "…"
		}
		return fmt.Sprintf("%q", text)
	case html.CommentNode:
		return fmt.Sprintf("<!--%s-->", n.Data)
	case html.ElementNode:
		var sb strings.Builder
		sb.WriteString(n.Data)
		for _, key := range []string{"typeof", "about", "id", "rel"} {
			if v := dom.Attr(n, key); v != "" {
				fmt.Fprintf(&sb, " %s=%q", key, v)
			}
		}
		return sb.String()
	case html.DocumentNode:
		return "#document"
	}
	return n.Data
}
