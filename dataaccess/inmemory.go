package dataaccess

import (
	"strings"
	"sync"

	"github.com/npillmayer/wikidom/page"
)

// InMemory is a Service backed by maps. It is what tests and the CLI's
// offline mode run against.
type InMemory struct {
	mu        sync.RWMutex
	Templates map[string]string
	Media     map[string]*MediaInfo
	Pages     map[string]bool
}

// NewInMemory creates an empty in-memory service.
func NewInMemory() *InMemory {
	return &InMemory{
		Templates: make(map[string]string),
		Media:     make(map[string]*MediaInfo),
		Pages:     make(map[string]bool),
	}
}

// AddTemplate registers a template body under a title. Titles are stored
// with blanks normalized to underscores, as resolved targets are.
func (m *InMemory) AddTemplate(title, src string) *InMemory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Templates[normTitle(title)] = src
	return m
}

// TemplateSrc is part of interface Service.
func (m *InMemory) TemplateSrc(title string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if src, ok := m.Templates[normTitle(title)]; ok {
		return src, nil
	}
	return "", ErrNotFound
}

// ParseWikitext is part of interface Service. The in-memory service has no
// remote parser; it echoes the source as preformatted HTML so unknown
// extension tags degrade visibly instead of vanishing.
func (m *InMemory) ParseWikitext(cfg *page.Config, source string) (*ParseResult, error) {
	var sb strings.Builder
	sb.WriteString("<pre>")
	escapeInto(&sb, source)
	sb.WriteString("</pre>")
	return &ParseResult{HTML: sb.String()}, nil
}

// MediaInfoBatch is part of interface Service.
func (m *InMemory) MediaInfoBatch(titles []string) (map[string]*MediaInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*MediaInfo, len(titles))
	for _, t := range titles {
		if info, ok := m.Media[normTitle(t)]; ok {
			out[t] = info
		} else {
			out[t] = &MediaInfo{Title: t, Missing: true}
		}
	}
	return out, nil
}

// PageExists is part of interface Service.
func (m *InMemory) PageExists(title string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Pages[normTitle(title)], nil
}

func normTitle(t string) string {
	return strings.ReplaceAll(strings.TrimSpace(t), " ", "_")
}

func escapeInto(sb *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '&':
			sb.WriteString("&amp;")
		default:
			sb.WriteRune(r)
		}
	}
}
