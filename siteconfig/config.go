package siteconfig

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"regexp"
	"strings"
)

// Namespace describes one wiki namespace.
type Namespace struct {
	ID      int
	Name    string
	Aliases []string
}

// Variant describes one language variant of the wiki content language,
// with a glyph-mapping table consumed by the default variant machine.
type Variant struct {
	Code string
	Map  map[string]string
}

// Config is the site configuration collaborator: everything the core needs
// to know about the wiki it renders for.
type Config struct {
	BaseURI      string
	MainPage     string
	LinkPrefix   *regexp.Regexp // matches link-prefix text before a wikilink
	LinkTrail    *regexp.Regexp // matches link-trail text after a wikilink
	Namespaces   []Namespace
	Styles       []string // global style modules linked from <head>
	Modules      []string // global script modules linked from <head>
	Variants     []Variant
	extensions   *ExtensionRegistry
	interwikiRe  *regexp.Regexp
}

// Default returns a workable site configuration: English content language,
// the standard link trail, no extensions registered.
func Default() *Config {
	return &Config{
		BaseURI:    "./",
		MainPage:   "Main Page",
		LinkTrail:  regexp.MustCompile(`^([a-z]+)`),
		Namespaces: []Namespace{{ID: 0, Name: ""}, {ID: 10, Name: "Template"}},
		extensions: NewExtensionRegistry(),
	}
}

// Extensions returns the native extension registry of the site.
func (c *Config) Extensions() *ExtensionRegistry {
	if c.extensions == nil {
		c.extensions = NewExtensionRegistry()
	}
	return c.extensions
}

// ResolveTemplateTarget normalizes a transclusion target to a page title in
// the Template namespace: whitespace collapsed, first letter upper-cased,
// blanks turned into underscores. A leading ':' escapes into the main
// namespace. A target that already carries a namespace prefix (a ':'
// after the first character) keeps it: only blanks become underscores,
// with no Template prefix and no change of case.
func (c *Config) ResolveTemplateTarget(target string) string {
	t := strings.Join(strings.Fields(target), " ")
	if t == "" {
		return ""
	}
	ns := "Template:"
	if strings.HasPrefix(t, ":") {
		t = strings.TrimPrefix(t, ":")
		ns = ""
	}
	if !strings.Contains(t, ":") || ns == "" {
		r := []rune(t)
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		t = string(r)
		return ns + strings.ReplaceAll(t, " ", "_")
	}
	return strings.ReplaceAll(t, " ", "_")
}

// IsInterwikiLink tells if a link target points outside this wiki.
func (c *Config) IsInterwikiLink(target string) bool {
	if c.interwikiRe == nil {
		c.interwikiRe = regexp.MustCompile(`(?i)^(wikipedia|wiktionary|commons|meta|mw|w|m):`)
	}
	return c.interwikiRe.MatchString(target)
}

// VariantFor returns the variant record for a code, or nil.
func (c *Config) VariantFor(code string) *Variant {
	for i := range c.Variants {
		if c.Variants[i].Code == code {
			return &c.Variants[i]
		}
	}
	return nil
}
