package page

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

// Config describes the page a pipeline is working on: title, revision and
// language metadata, plus the wikitext source.
type Config struct {
	Title      string // page title, e.g. "Main Page"
	RevisionID int64  // revision of the source text, 0 for unsaved text
	PageLang   string // BCP-47 language tag of the page content
	PageDir    string // "ltr" or "rtl"
	Source     string // the wikitext to transform
}

// Dir returns the page direction, defaulting to "ltr".
func (c *Config) Dir() string {
	if c == nil || c.PageDir == "" {
		return "ltr"
	}
	return c.PageDir
}

// Lang returns the page language, defaulting to "en".
func (c *Config) Lang() string {
	if c == nil || c.PageLang == "" {
		return "en"
	}
	return c.PageLang
}
