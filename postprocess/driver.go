package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wikidom/dataaccess"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/siteconfig"
	"golang.org/x/net/html"
)

// tracer traces to channel 'wikidom.postprocess'.
func tracer() tracing.Trace {
	return tracing.Select("wikidom.postprocess")
}

// ErrFatalPass flags an uncaught error inside a post-process pass.
// Post-processing stops; the partial DOM is not emitted.
var ErrFatalPass = errors.New("fatal post-processing error")

// Options configures the post-processing run.
type Options struct {
	WrapSections      bool
	Linting           bool
	RedLinks          bool
	InlineDataAttribs bool            // serialize bundle records into attributes at cleanup
	VariantTarget     string          // target language variant, "" = no conversion
	Dump              map[string]bool // pass shortcuts to dump pre/post DOM for
	TraceTimes        bool
}

// ProcContext is the per-document post-processing context.
type ProcContext struct {
	Env        *page.Env
	Site       *siteconfig.Config
	Access     dataaccess.Service
	Opts       Options
	AtTopLevel bool
	SeenIDs    map[string]bool // heading-id dedup state, document-wide
}

// Pass is the capability interface implemented by every post-processing
// pass. Passes run strictly in the configured order; any error is fatal
// for the document.
type Pass interface {
	Shortcut() string // tracing id
	SkipNested() bool // run only at top level
	Run(body *html.Node, pc *ProcContext) error
}

// Deferred is implemented by passes that run asynchronously. The driver
// awaits the returned channel; synchronous passes never pay for it.
type Deferred interface {
	RunDeferred(body *html.Node, pc *ProcContext) <-chan error
}

// funcPass adapts a function to the Pass interface.
type funcPass struct {
	shortcut   string
	skipNested bool
	omit       bool
	fn         func(body *html.Node, pc *ProcContext) error
}

func (p *funcPass) Shortcut() string { return p.shortcut }
func (p *funcPass) SkipNested() bool { return p.skipNested }
func (p *funcPass) Run(body *html.Node, pc *ProcContext) error {
	return p.fn(body, pc)
}

// Processor drives the ordered pass list over a built DOM.
type Processor struct {
	passes []Pass
}

// NewProcessor assembles the default pass list. The order is
// authoritative; reordering changes output.
func NewProcessor() *Processor {
	proc := &Processor{}
	add := func(shortcut string, skipNested bool, fn func(*html.Node, *ProcContext) error) {
		proc.passes = append(proc.passes, &funcPass{shortcut: shortcut, skipNested: skipNested, fn: fn})
	}
	add("fostered", false, markFostered)       // must precede any DSR reasoning
	add("fixups", false, treeBuilderFixups)    //
	add("normalize", false, normalizeDOM)      //
	add("pwrap", true, paragraphCleanup)       //
	add("migrate-metas", false, migrateTemplateMarkerMetas) // after fixups, so metas don't disturb first/last-child checks
	add("pre", false, normalizeIndentPre)      //
	add("migrate-nls", false, migrateTrailingNewlines)
	add("dsr", true, computeDSR)               // sub-pipelines inherit offsets
	add("tplwrap", true, wrapTemplates)        //
	add("unpack", false, linkNeighboursAndUnpack) // before extension post-processors
	add("ext-pp", false, runExtensionProcessors)
	add("cellfix", true, listAndCellFixups)
	add("media", false, addMediaInfo)
	add("headings", false, generateHeadingAnchors)
	add("sections", true, wrapSections)
	add("dedupe-ids", false, dedupeHeadingIDs)
	add("langconv", true, convertLanguageVariants)
	add("linter", true, lintDocument)
	add("strip-metas", false, stripMarkerMetas)
	add("linkclasses", true, addExternalLinkClasses)
	add("cleanup", true, cleanupAndSerialize) // the bundle is document-global; nested trees serialize with the document
	add("redlinks", true, annotateRedLinks)
	return proc
}

// Run executes the pass list over body. At top level it finalizes the
// document metadata afterwards. Errors abort the document and are
// wrapped as fatal.
func (proc *Processor) Run(doc, body *html.Node, pc *ProcContext) error {
	if pc.SeenIDs == nil {
		pc.SeenIDs = make(map[string]bool)
	}
	for _, pass := range proc.passes {
		if pass.SkipNested() && !pc.AtTopLevel {
			continue
		}
		if err := proc.runPass(pass, body, pc); err != nil {
			tracer().Errorf("fatal: pass %s: %v", pass.Shortcut(), err)
			return fmt.Errorf("%w: %s: %v", ErrFatalPass, pass.Shortcut(), err)
		}
	}
	if pc.AtTopLevel {
		if err := finalizeMetadata(doc, body, pc); err != nil {
			return fmt.Errorf("%w: metadata: %v", ErrFatalPass, err)
		}
	}
	return nil
}

// runPass times and dumps a single pass when requested.
func (proc *Processor) runPass(pass Pass, body *html.Node, pc *ProcContext) error {
	shortcut := pass.Shortcut()
	if pc.Opts.Dump[shortcut] {
		tracer().Infof("DOM pre-%s:\n%s", shortcut, DumpDOM(body))
	}
	var start time.Time
	if pc.Opts.TraceTimes {
		start = time.Now()
	}
	var err error
	if d, ok := pass.(Deferred); ok {
		err = <-d.RunDeferred(body, pc)
	} else {
		err = pass.Run(body, pc)
	}
	if pc.Opts.TraceTimes {
		tracer().P("pass", shortcut).Debugf("pass took %s", time.Since(start))
	}
	if pc.Opts.Dump[shortcut] {
		tracer().Infof("DOM post-%s:\n%s", shortcut, DumpDOM(body))
	}
	return err
}
