package dom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
)

// tracer traces to channel 'wikidom.dom'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom.dom")
}

// Action is a function type to operate on DOM nodes during traversal.
//
// The returned node steers the walk: returning the input node continues
// the pre-order traversal into its children; returning another node
// resumes traversal at that node (a sibling skip); returning nil means
// the node was detached, and traversal resumes at its former successor.
type Action func(n *html.Node) (*html.Node, error)

// Traverser walks a DOM in document order (pre-order), invoking
// registered handlers per tag name. Handlers registered for "" run on
// every node, element or not, before any tag handlers.
type Traverser struct {
	anyHandlers []Action
	tagHandlers map[string][]Action
}

// NewTraverser creates an empty traverser.
func NewTraverser() *Traverser {
	return &Traverser{tagHandlers: make(map[string][]Action)}
}

// AddHandler registers an action for a tag name; tag "" matches every
// node. Registration order is invocation order.
func (tv *Traverser) AddHandler(tag string, action Action) *Traverser {
	if tag == "" {
		tv.anyHandlers = append(tv.anyHandlers, action)
	} else {
		tv.tagHandlers[tag] = append(tv.tagHandlers[tag], action)
	}
	return tv
}

// Run walks the tree below root (not including root itself), dispatching
// handlers. Children are visited in document order unless a handler
// returns a sibling skip, in which case traversal resumes at the
// returned node.
func (tv *Traverser) Run(root *html.Node) error {
	return tv.children(root)
}

func (tv *Traverser) children(parent *html.Node) error {
	c := parent.FirstChild
	for c != nil {
		next := c.NextSibling
		res, err := tv.node(c)
		if err != nil {
			return err
		}
		switch {
		case res == c:
			if err := tv.children(c); err != nil {
				return err
			}
			c = c.NextSibling
		case res == nil:
			c = next // node detached; continue at the old successor
		default:
			c = res // sibling skip
		}
	}
	return nil
}

// node runs all matching handlers on one node, in registration order.
// The first handler that redirects traversal wins.
func (tv *Traverser) node(n *html.Node) (*html.Node, error) {
	for _, action := range tv.anyHandlers {
		res, err := action(n)
		if err != nil {
			return nil, err
		}
		if res != n {
			return res, nil
		}
	}
	if n.Type == html.ElementNode {
		for _, action := range tv.tagHandlers[n.Data] {
			res, err := action(n)
			if err != nil {
				return nil, err
			}
			if res != n {
				return res, nil
			}
		}
	}
	return n, nil
}
