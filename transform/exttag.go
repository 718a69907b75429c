package transform

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/wikidom/siteconfig"
	"github.com/npillmayer/wikidom/token"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtensionHandler is the stage-2 transformer dispatching extension tags
// to their registered native implementations. A native implementation
// returns a DOM subtree, which is parked in the environment and tunnelled
// through the token stream as a DOM-fragment placeholder meta; the
// fragment unpacker splices it back in during post-processing. Tags
// registered without a native implementation are rendered by a
// best-effort remote parse of their inner content.
type ExtensionHandler struct{}

// Register hooks the handler into a stage-2 manager.
func (h *ExtensionHandler) Register(m *Manager) {
	m.AddTagHandler("extensions", []string{"extension"}, h.onToken)
}

// Reset is part of the stateful-handler contract.
func (h *ExtensionHandler) Reset() {}

func (h *ExtensionHandler) onToken(ctx *Context, tk token.Token) (Result, error) {
	da := tk.DataAttribs()
	if da == nil || da.Ext == nil {
		return Result{}, nil
	}
	ext := da.Ext
	impl := ctx.Site.Extensions().Lookup(ext.Name)

	attrs := ext.Attrs
	if impl != nil && impl.ModifyArgDict != nil {
		attrs = impl.ModifyArgDict(attrs)
	}

	var frag *html.Node
	var err error
	if impl != nil && impl.ToDOM != nil {
		frag, err = impl.ToDOM(ctx.Env, siteconfig.Invocation{
			Name:  ext.Name,
			Attrs: attrs,
			Inner: ext.Inner,
			Src:   ext.Src,
		})
	} else {
		frag, err = h.remoteParse(ctx, ext)
	}
	if err != nil {
		tracer().P("ext", ext.Name).Errorf("%v: extension failed: %v", ErrClient, err)
		span := &token.StartTag{Name: "span", Attrs: []token.Attr{
			{K: "typeof", V: "mw:Error"}, {K: "data-mw-error", V: err.Error()},
		}, DA: &token.DataAttribs{TSR: da.TSR}}
		txt := &token.Text{Value: ext.Src, DA: &token.DataAttribs{TSR: token.UnknownTSR}}
		return Result{Tokens: []token.Token{span, txt, &token.EndTag{Name: "span"}}, Handled: true}, nil
	}

	key := ctx.Env.StoreFragment(frag)
	about := ctx.Env.NewAboutID()
	placeholder := &token.SelfClosing{
		Name: "meta",
		Attrs: []token.Attr{
			{K: "typeof", V: "mw:DOMFragment"},
			{K: "about", V: about},
			{K: "data-mw-fragment", V: key},
			{K: "data-ext-name", V: ext.Name},
		},
		DA: da.Clone(),
	}
	return Result{Tokens: []token.Token{placeholder}, Handled: true}, nil
}

// remoteParse renders an extension without native implementation through
// the data-access collaborator and parses the returned HTML into a
// fragment.
func (h *ExtensionHandler) remoteParse(ctx *Context, ext *token.ExtTag) (*html.Node, error) {
	res, err := ctx.Access.ParseWikitext(ctx.Env.Page, ext.Inner)
	if err != nil {
		return nil, err
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(res.HTML), body)
	if err != nil {
		return nil, err
	}
	frag := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		frag.AppendChild(n)
	}
	return frag, nil
}
