package page

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"encoding/json"
	"strconv"

	"golang.org/x/net/html"
)

// IDAttr is the placeholder attribute carrying a node's bundle id. It is
// present during the pipeline only; the cleanup pass serializes the bundle
// records and drops it.
const IDAttr = "data-object-id"

// Bundle is the per-document container for data-parsoid and data-mw
// records, keyed by node id. The indirection avoids repeated JSON
// encode/decode during traversal; data is serialized into attributes only
// once, at cleanup.
type Bundle struct {
	Parsoid map[int]*DataParsoid
	MW      map[int]*DataMW
	nextID  int
	owners  map[int]*html.Node // reverse lookup, grown lazily
	keys    map[int]string     // output keys, set at cleanup in bundle mode
}

// NewBundle creates an empty page bundle. Ids start at 1; id 0 never
// occurs and marks "no record".
func NewBundle() *Bundle {
	return &Bundle{
		Parsoid: make(map[int]*DataParsoid),
		MW:      make(map[int]*DataMW),
		nextID:  1,
		owners:  make(map[int]*html.Node),
	}
}

// NodeID returns the bundle id of a node, or 0 if the node carries none.
func NodeID(n *html.Node) int {
	if n == nil {
		return 0
	}
	for _, a := range n.Attr {
		if a.Key == IDAttr {
			id, err := strconv.Atoi(a.Val)
			if err != nil {
				return 0
			}
			return id
		}
	}
	return 0
}

// Assign gives a node a fresh bundle id. An existing id is replaced, which
// is how clones are freshened so the side-table never aliases two nodes.
func (b *Bundle) Assign(n *html.Node) int {
	id := b.nextID
	b.nextID++
	for i, a := range n.Attr {
		if a.Key == IDAttr {
			n.Attr[i].Val = strconv.Itoa(id)
			b.owners[id] = n
			return id
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: IDAttr, Val: strconv.Itoa(id)})
	b.owners[id] = n
	return id
}

// NextID hands out a fresh id without attaching it to a node. The tree
// builder uses this to pre-allocate ids while the nodes only exist as
// serialized tags.
func (b *Bundle) NextID() int {
	id := b.nextID
	b.nextID++
	return id
}

// Claim records n as the owner of a pre-allocated id.
func (b *Bundle) Claim(id int, n *html.Node) {
	b.owners[id] = n
}

// Owner returns the node owning an id, if the reverse map knows it.
func (b *Bundle) Owner(id int) *html.Node {
	return b.owners[id]
}

// DataParsoid returns the data-parsoid record of a node, creating record
// and id on first access.
func (b *Bundle) DataParsoid(n *html.Node) *DataParsoid {
	id := NodeID(n)
	if id == 0 {
		id = b.Assign(n)
	}
	dp := b.Parsoid[id]
	if dp == nil {
		dp = NewDataParsoid()
		b.Parsoid[id] = dp
	}
	return dp
}

// HasDataParsoid tells if a node already owns a data-parsoid record,
// without creating one.
func (b *Bundle) HasDataParsoid(n *html.Node) bool {
	id := NodeID(n)
	if id == 0 {
		return false
	}
	_, ok := b.Parsoid[id]
	return ok
}

// DataMW returns the data-mw record of a node, creating record and id on
// first access.
func (b *Bundle) DataMW(n *html.Node) *DataMW {
	id := NodeID(n)
	if id == 0 {
		id = b.Assign(n)
	}
	mw := b.MW[id]
	if mw == nil {
		mw = &DataMW{}
		b.MW[id] = mw
	}
	return mw
}

// SetDataMW attaches a complete data-mw record to a node.
func (b *Bundle) SetDataMW(n *html.Node, mw *DataMW) {
	id := NodeID(n)
	if id == 0 {
		id = b.Assign(n)
	}
	b.MW[id] = mw
}

// GC drops records whose ids no longer occur in the document under root.
// After cleanup the side-table contains no dangling ids.
func (b *Bundle) GC(root *html.Node) {
	live := make(map[int]bool)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := NodeID(n); id != 0 {
				live[id] = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	for id := range b.Parsoid {
		if !live[id] {
			delete(b.Parsoid, id)
			delete(b.owners, id)
		}
	}
	for id := range b.MW {
		if !live[id] {
			delete(b.MW, id)
			delete(b.owners, id)
		}
	}
}

// SetKey records the output key of a node id, usually the id attribute
// the cleanup pass settled on.
func (b *Bundle) SetKey(id int, key string) {
	if b.keys == nil {
		b.keys = make(map[int]string)
	}
	b.keys[id] = key
}

func (b *Bundle) keyOf(id int) string {
	if key, ok := b.keys[id]; ok {
		return key
	}
	return strconv.Itoa(id)
}

// MarshalJSON writes the bundle in the page-bundle wire format: the two
// side-tables keyed by the nodes' output keys.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	type ids struct {
		Parsoid map[string]*DataParsoid `json:"data-parsoid"`
		MW      map[string]*DataMW      `json:"data-mw"`
	}
	out := ids{
		Parsoid: make(map[string]*DataParsoid, len(b.Parsoid)),
		MW:      make(map[string]*DataMW, len(b.MW)),
	}
	for id, dp := range b.Parsoid {
		out.Parsoid[b.keyOf(id)] = dp
	}
	for id, mw := range b.MW {
		out.MW[b.keyOf(id)] = mw
	}
	return json.Marshal(out)
}
