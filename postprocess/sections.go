package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strconv"

	"github.com/npillmayer/wikidom/dom"
	"golang.org/x/net/html"
)

// wrapSections wraps the document into section elements: a lead section
// with id 0 before the first heading, one numbered section per heading,
// nested by heading level. Headings that came out of a transclusion
// cannot be edited standalone; their sections get negative pseudo ids.
func wrapSections(body *html.Node, pc *ProcContext) error {
	if !pc.Opts.WrapSections {
		return nil
	}
	var children []*html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	if len(children) == 0 {
		return nil
	}

	type openSection struct {
		node  *html.Node
		level int
	}
	newSection := func(id int) *html.Node {
		s := dom.NewElement("section")
		dom.SetAttr(s, "data-mw-section-id", strconv.Itoa(id))
		return s
	}

	nextID := 1
	pseudoID := -1
	var stack []openSection

	stack = append(stack, openSection{node: body, level: 0})
	lead := newSection(0)
	body.AppendChild(lead)
	// the lead section closes on any heading, whatever its level
	stack = append(stack, openSection{node: lead, level: 7})

	for _, c := range children {
		if dom.IsElt(c) && headingTags[c.Data] {
			level := int(c.Data[1] - '0')
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			id := nextID
			if dom.Attr(c, "about") != "" {
				id = pseudoID
				pseudoID--
			} else {
				nextID++
			}
			section := newSection(id)
			stack[len(stack)-1].node.AppendChild(section)
			stack = append(stack, openSection{node: section, level: level})
			section.AppendChild(dom.Detach(c))
			continue
		}
		stack[len(stack)-1].node.AppendChild(dom.Detach(c))
	}
	return nil
}
