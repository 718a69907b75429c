package dataaccess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"

	"github.com/npillmayer/wikidom/page"
)

// ErrNotFound is returned for missing templates or media.
var ErrNotFound = errors.New("page not found")

// ParseResult is the outcome of a remote wikitext parse, used for
// extension tags without a native implementation.
type ParseResult struct {
	HTML          string
	Modules       []string
	ModuleStyles  []string
	ModuleScripts []string
	Categories    []string
}

// MediaInfo describes one media file.
type MediaInfo struct {
	Title    string
	URL      string
	Width    int
	Height   int
	MimeType string
	Missing  bool
}

// Service is the data-access collaborator: template source fetching,
// media info batches, and remote parsing of constructs the core does not
// handle natively. Implementations back this with the wiki's API; tests
// and the CLI's offline mode use InMemory.
type Service interface {
	// TemplateSrc fetches the wikitext source of a template page.
	TemplateSrc(title string) (string, error)
	// ParseWikitext renders wikitext remotely, for non-native extensions.
	ParseWikitext(cfg *page.Config, source string) (*ParseResult, error)
	// MediaInfoBatch resolves media titles to file metadata.
	MediaInfoBatch(titles []string) (map[string]*MediaInfo, error)
	// PageExists reports link-target existence, for red-link annotation.
	PageExists(title string) (bool, error)
}
