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

	"github.com/npillmayer/wikidom/token"
)

// ErrInternal flags pipeline misconfiguration: unknown recipes, unknown
// option keys, assertion violations. It is never recovered from.
var ErrInternal = errors.New("internal pipeline error")

// ErrClient flags malformed input recoverable locally: the handler emits
// an error span and the document continues.
var ErrClient = errors.New("client error")

// Result is what a handler returns for a token. A handler that leaves the
// token alone returns the zero Result. Handled=true replaces the token
// with Tokens (possibly empty = drop). Requeue feeds the replacement back
// through the whole stage instead of just the remaining handlers.
type Result struct {
	Tokens  []token.Token
	Handled bool
	Requeue bool
}

// HandlerFunc processes one token within a stage.
type HandlerFunc func(ctx *Context, tk token.Token) (Result, error)

// interest describes what tokens a registered transformer wants to see.
type interest struct {
	tags map[string]bool // specific token names, nil for none
	any  bool            // every token except end-of-input
	eof  bool            // end-of-input
}

type registration struct {
	name string
	want interest
	fn   HandlerFunc
}

// Manager is the per-stage token transform dispatcher. Transformers run
// in registration order; replacement tokens continue with the remaining
// transformers of the stage unless the handler requested a re-enqueue.
type Manager struct {
	stage int
	regs  []registration
}

// NewManager creates the dispatcher for one stage (1–3).
func NewManager(stage int) *Manager {
	return &Manager{stage: stage}
}

// AddTagHandler registers a transformer for specific token names.
func (m *Manager) AddTagHandler(name string, tags []string, fn HandlerFunc) {
	ts := make(map[string]bool, len(tags))
	for _, t := range tags {
		ts[t] = true
	}
	m.regs = append(m.regs, registration{name: name, want: interest{tags: ts}, fn: fn})
}

// AddAnyHandler registers a transformer for every token (except EOF).
func (m *Manager) AddAnyHandler(name string, fn HandlerFunc) {
	m.regs = append(m.regs, registration{name: name, want: interest{any: true}, fn: fn})
}

// AddAnyAndEOFHandler registers a transformer for every token including
// end-of-input. Buffering transformers use this to flush.
func (m *Manager) AddAnyAndEOFHandler(name string, fn HandlerFunc) {
	m.regs = append(m.regs, registration{name: name, want: interest{any: true, eof: true}, fn: fn})
}

// AddEOFHandler registers a transformer for end-of-input only.
func (m *Manager) AddEOFHandler(name string, fn HandlerFunc) {
	m.regs = append(m.regs, registration{name: name, want: interest{eof: true}, fn: fn})
}

func (r *registration) matches(tk token.Token) bool {
	if tk.Kind() == token.KindEOF {
		return r.want.eof
	}
	if r.want.any {
		return true
	}
	if r.want.tags == nil {
		return false
	}
	return r.want.tags[token.Name(tk)]
}

// workItem tracks which transformer a (possibly replaced) token should
// see next.
type workItem struct {
	tk   token.Token
	from int
}

// Transform runs the stage over a token stream. Token order is preserved;
// replacements are processed depth-first so a transclusion's expansion is
// fully transformed before the following sibling token.
func (m *Manager) Transform(ctx *Context, input []token.Token) ([]token.Token, error) {
	var out []token.Token
	queue := make([]workItem, 0, len(input))
	for _, tk := range input {
		queue = append(queue, workItem{tk: tk})
	}
	guard := 0
	for len(queue) > 0 {
		guard++
		if guard > 1_000_000 {
			return nil, errInternalf("stage %d: transform did not converge", m.stage)
		}
		it := queue[0]
		queue = queue[1:]
		handled := false
		for hi := it.from; hi < len(m.regs); hi++ {
			reg := &m.regs[hi]
			if !reg.matches(it.tk) {
				continue
			}
			res, err := reg.fn(ctx, it.tk)
			if err != nil {
				return nil, err
			}
			if !res.Handled {
				continue
			}
			from := hi + 1
			if res.Requeue {
				from = 0
			}
			items := make([]workItem, len(res.Tokens))
			for i, tk := range res.Tokens {
				items[i] = workItem{tk: tk, from: from}
			}
			queue = append(items, queue...)
			handled = true
			break
		}
		if !handled {
			out = append(out, it.tk)
		}
	}
	tracer().Debugf("stage %d: %d tokens in, %d out", m.stage, len(input), len(out))
	return out, nil
}

func errInternalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}
