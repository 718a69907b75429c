package transform

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/wikidom/dataaccess"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/token"
	"github.com/npillmayer/wikidom/tokenizer"
)

// TemplateExpander is the stage-2 transformer expanding transclusions and
// template arguments. Expanded content is bracketed by start/end marker
// metas sharing a fresh about id; the start marker carries the serialized
// argument description for the encapsulator.
type TemplateExpander struct{}

// Register hooks the expander into a stage-2 manager.
func (h *TemplateExpander) Register(m *Manager) {
	m.AddTagHandler("templates", []string{"template", "templatearg"}, h.onToken)
}

// Reset is part of the stateful-handler contract; the expander keeps no
// state between documents.
func (h *TemplateExpander) Reset() {}

func (h *TemplateExpander) onToken(ctx *Context, tk token.Token) (Result, error) {
	da := tk.DataAttribs()
	if da == nil || da.Transclude == nil {
		return Result{}, nil
	}
	if da.Transclude.IsParam {
		return h.expandArg(ctx, tk, da)
	}
	return h.expandTemplate(ctx, tk, da)
}

// expandArg substitutes a {{{name|default}}} parameter from the current
// frame. Without a binding the default after the first pipe is used; with
// no default either the construct renders literally.
func (h *TemplateExpander) expandArg(ctx *Context, tk token.Token, da *token.DataAttribs) (Result, error) {
	tx := da.Transclude
	value, ok := ctx.Frame.Arg(tx.Target)
	if !ok {
		if len(tx.Params) > 0 { // first pipe field is the default value
			value = tx.Params[0].V
		} else {
			// unbound parameter renders literally, at top level and in frames
			lit := &token.Text{Value: "{{{" + tx.Target + "}}}", DA: &token.DataAttribs{TSR: da.TSR}}
			return Result{Tokens: []token.Token{lit}, Handled: true}, nil
		}
	}
	tkz := tokenizer.New(ctx.Site.Extensions().Names())
	toks := stripEOF(tkz.Tokenize(value))
	clearTSR(toks)
	if !ctx.Opts.InTemplate {
		// a top-level parameter use gets its own mw:Param range
		about := ctx.Env.NewAboutID()
		start, end := h.markerMetas(tk, da, about, "mw:Param")
		toks = append([]token.Token{start}, append(toks, end)...)
	}
	// feed the substituted value back through the stage so nested
	// transclusions inside argument values expand too
	return Result{Tokens: toks, Handled: true, Requeue: true}, nil
}

// expandTemplate resolves and expands one {{…}} transclusion.
func (h *TemplateExpander) expandTemplate(ctx *Context, tk token.Token, da *token.DataAttribs) (Result, error) {
	tx := da.Transclude
	if !ctx.Opts.ExpandTemplates {
		return Result{}, nil
	}
	if ctx.Frame != nil && ctx.Frame.Depth >= maxExpansionDepth {
		return failure(fmt.Errorf("%w: transclusion depth limit reached at %q", ErrInternal, tx.Target))
	}
	title := ctx.Site.ResolveTemplateTarget(tx.Target)
	src, err := ctx.Access.TemplateSrc(title)
	if err != nil {
		if errors.Is(err, dataaccess.ErrNotFound) {
			tracer().P("template", title).Infof("warn/template: target not found")
			return h.missingTemplate(ctx, tk, da)
		}
		return failure(err)
	}
	src = ExtractOnlyInclude(src)

	frame := h.buildFrame(ctx, tx)
	pipe, err := ctx.Pipes.TokenPipeline(Options{
		IsInclude:       true,
		ExpandTemplates: true,
		InTemplate:      true,
	})
	if err != nil {
		return failure(err)
	}
	defer pipe.Release()
	expanded, err := pipe.Tokens(src, 0, frame)
	if err != nil {
		return failure(err)
	}
	expanded = stripEOF(expanded)
	clearTSR(expanded) // offsets into the template body are meaningless here

	if ctx.Opts.InTemplate {
		// nested expansions are plain content of the outer template's
		// output; only top-level transclusions get marker ranges
		return Result{Tokens: expanded, Handled: true}, nil
	}

	about := ctx.Env.NewAboutID()
	start, end := h.markerMetas(tk, da, about, "mw:Transclusion")
	out := make([]token.Token, 0, len(expanded)+2)
	out = append(out, start)
	out = append(out, expanded...)
	out = append(out, end)
	tracer().P("template", title).Debugf("expanded into %d tokens, about=%s", len(expanded), about)
	return Result{Tokens: out, Handled: true}, nil
}

// missingTemplate renders an unresolvable transclusion as a red link to
// the template page, still bracketed by markers so the range wraps.
func (h *TemplateExpander) missingTemplate(ctx *Context, tk token.Token, da *token.DataAttribs) (Result, error) {
	tx := da.Transclude
	href := "./" + ctx.Site.ResolveTemplateTarget(tx.Target)
	link := []token.Token{
		&token.StartTag{Name: "a", Attrs: []token.Attr{
			{K: "href", V: href}, {K: "rel", V: "mw:WikiLink"}, {K: "class", V: "new"},
		}, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.Text{Value: tx.Target, DA: &token.DataAttribs{TSR: token.UnknownTSR}},
		&token.EndTag{Name: "a", DA: &token.DataAttribs{TSR: token.UnknownTSR}},
	}
	if ctx.Opts.InTemplate {
		return Result{Tokens: link, Handled: true}, nil
	}
	about := ctx.Env.NewAboutID()
	start, end := h.markerMetas(tk, da, about, "mw:Transclusion")
	out := make([]token.Token, 0, len(link)+2)
	out = append(out, start)
	out = append(out, link...)
	out = append(out, end)
	return Result{Tokens: out, Handled: true}, nil
}

// buildFrame computes the argument dictionary of a transclusion:
// positional parameters are numbered from 1; on a key collision the
// later parameter wins.
func (h *TemplateExpander) buildFrame(ctx *Context, tx *token.Transclusion) *Frame {
	args := make(map[string]string, len(tx.Params))
	pos := 0
	for _, kv := range tx.Params {
		if kv.K == "" {
			pos++
			args[strconv.Itoa(pos)] = kv.V
		} else {
			args[kv.K] = strings.TrimSpace(kv.V)
		}
	}
	depth := 1
	if ctx.Frame != nil {
		depth = ctx.Frame.Depth + 1
	}
	return &Frame{Title: tx.Target, Args: args, Parent: ctx.Frame, Depth: depth}
}

// markerMetas builds the start/end marker metas bracketing an expansion.
// The start marker inherits the transclusion's source range and carries
// the serialized arg info; the end marker is zero-width at the range end.
func (h *TemplateExpander) markerMetas(tk token.Token, da *token.DataAttribs, about, typeOf string) (token.Token, token.Token) {
	argInfo := buildArgInfo(da)
	start := &token.SelfClosing{
		Name: "meta",
		Attrs: []token.Attr{
			{K: "typeof", V: typeOf},
			{K: "about", V: about},
		},
		DA: &token.DataAttribs{TSR: da.TSR, TplArgInfo: argInfo.Serialize()},
	}
	end := &token.SelfClosing{
		Name: "meta",
		Attrs: []token.Attr{
			{K: "typeof", V: typeOf + "/End"},
			{K: "about", V: about},
		},
		DA: &token.DataAttribs{TSR: token.TSR{Start: da.TSR.End, End: da.TSR.End}},
	}
	return start, end
}

// buildArgInfo turns a transclusion payload into the serializable
// argument description: target, parameter dict and parameter source
// offsets.
func buildArgInfo(da *token.DataAttribs) *page.TplArgInfo {
	tx := da.Transclude
	info := &page.TplArgInfo{
		IsParam: tx.IsParam,
		TSR:     [2]int{da.TSR.Start, da.TSR.End},
	}
	info.Dict.Target = page.Target{WT: tx.Target, Href: "./Template:" + strings.ReplaceAll(tx.Target, " ", "_")}
	info.Dict.Params = make(map[string]page.Param, len(tx.Params))
	pos := 0
	for _, kv := range tx.Params {
		key := kv.K
		if key == "" {
			pos++
			key = strconv.Itoa(pos)
		}
		info.Dict.Params[key] = page.Param{WT: kv.V}
		pi := page.ParamInfo{Key: key}
		pi.SrcOffsets = [4]int{kv.TSR.Start, kv.TSR.Start, kv.TSR.Start, kv.TSR.End}
		info.ParamInfos = append(info.ParamInfos, pi)
	}
	return info
}

// stripEOF removes the trailing EOF token of a sub-pipeline run.
func stripEOF(toks []token.Token) []token.Token {
	for len(toks) > 0 && toks[len(toks)-1].Kind() == token.KindEOF {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// clearTSR wipes source ranges on tokens spliced in from another source
// string, so DSR computation never mistakes them for top-level offsets.
func clearTSR(toks []token.Token) {
	for _, tk := range toks {
		if da := tk.DataAttribs(); da != nil {
			da.TSR = token.UnknownTSR
		}
	}
}

// failure wraps an error into the (Result, error) pair handlers return.
func failure(err error) (Result, error) {
	return Result{}, err
}
