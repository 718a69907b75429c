package transform

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/wikidom/token"
)

// IncludeHandler is the stage-1 transformer resolving the include
// directives <noinclude>, <includeonly> and <onlyinclude> against the
// isInclude pipeline option.
//
// <onlyinclude> sections are extracted string-level by the template
// expander before tokenizing, so this handler only deals with the
// remaining two directives plus stray onlyinclude tags.
type IncludeHandler struct {
	skipping bool
}

// Reset clears the handler state for pipeline reuse.
func (h *IncludeHandler) Reset() {
	h.skipping = false
}

// Register hooks the handler into a stage-1 manager.
func (h *IncludeHandler) Register(m *Manager) {
	m.AddAnyAndEOFHandler("includes", h.onToken)
}

func (h *IncludeHandler) onToken(ctx *Context, tk token.Token) (Result, error) {
	name := token.Name(tk)
	directive := name == "noinclude" || name == "includeonly" || name == "onlyinclude"
	if !directive {
		if h.skipping && tk.Kind() != token.KindEOF {
			return Result{Handled: true}, nil // drop content of a skipped section
		}
		return Result{}, nil
	}
	isStart := tk.Kind() == token.KindStartTag
	switch name {
	case "noinclude":
		if ctx.Opts.IsInclude {
			h.skipping = isStart
		}
	case "includeonly":
		if !ctx.Opts.IsInclude {
			h.skipping = isStart
		}
	case "onlyinclude":
		// tags already consumed string-level; strays are dropped
	}
	return Result{Handled: true}, nil // directives never reach the tree builder
}

// ExtractOnlyInclude reduces a template source to its <onlyinclude>
// sections, if any are present. Without the directive the source is
// returned unchanged.
func ExtractOnlyInclude(src string) string {
	const openTag, closeTag = "<onlyinclude>", "</onlyinclude>"
	idx := strings.Index(src, openTag)
	if idx < 0 {
		return src
	}
	var out []byte
	for idx >= 0 {
		rest := src[idx+len(openTag):]
		end := strings.Index(rest, closeTag)
		if end < 0 {
			out = append(out, rest...)
			break
		}
		out = append(out, rest[:end]...)
		src = rest[end+len(closeTag):]
		idx = strings.Index(src, openTag)
	}
	return string(out)
}
