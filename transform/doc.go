/*
Package transform implements the token transform stages: ordered dispatch
of per-token handlers, include-directive resolution, template and
extension expansion, link handling, and the stage-3 stream transforms
(quotes, lists, paragraphs, sanitizing).

Each of the three stages owns a Manager holding an ordered list of
transformers. Ordering within a stage is authoritative; reordering
changes output.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/
package transform

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to channel 'wikidom.transform'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom.transform")
}
