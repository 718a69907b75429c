/*
Package page holds the per-document state of a transform: the page
configuration, the environment, and the page bundle, i.e. the side-tables
for data-parsoid and data-mw records.

DOM nodes are plain x/net/html nodes. Extra per-node records are not hung
off the nodes themselves but kept in an arena keyed by a numeric id, which
travels in a placeholder attribute. This survives node cloning and
re-parenting without dangling records, and avoids serializing JSON into
attributes on every pass; serialization happens once, at cleanup.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/
package page

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to channel 'wikidom.page'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom.page")
}
