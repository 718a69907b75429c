package main

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/wikidom"
	"github.com/npillmayer/wikidom/dataaccess"
	"github.com/npillmayer/wikidom/page"
	"github.com/npillmayer/wikidom/siteconfig"
	"github.com/spf13/cobra"
)

type cliOptions struct {
	wt2html   bool
	html2wt   bool
	wt2wt     bool
	html2html bool

	pageName             string
	domain               string
	apiURL               string
	linting              bool
	wrapSections         bool
	scrubWikitext        bool
	selser               bool
	oldText              string
	oldTextFile          string
	oldHTMLFile          string
	dump                 string
	trace                string
	outputContentVersion string
	offsetType           string
	bodyOnly             bool
	pageBundle           bool
	siteConfigFile       string
	templateDir          string
}

func main() {
	opts := &cliOptions{}
	rootCmd := &cobra.Command{
		Use:   "wikidom",
		Short: "Transform wikitext to HTML and back",
		Long: `wikidom is a bidirectional wikitext<->HTML transformer.
Input is read from stdin unless --oldtext or --oldtextfile is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	flags := rootCmd.Flags()
	flags.BoolVar(&opts.wt2html, "wt2html", false, "wikitext -> HTML")
	flags.BoolVar(&opts.html2wt, "html2wt", false, "HTML -> wikitext (requires the serializer)")
	flags.BoolVar(&opts.wt2wt, "wt2wt", false, "wikitext -> wikitext round-trip")
	flags.BoolVar(&opts.html2html, "html2html", false, "HTML -> HTML round-trip")
	flags.StringVar(&opts.pageName, "pageName", "Main Page", "page title")
	flags.StringVar(&opts.domain, "domain", "", "wiki domain")
	flags.StringVar(&opts.apiURL, "apiURL", "", "MediaWiki API endpoint")
	flags.BoolVar(&opts.linting, "linting", false, "run the lint pass")
	flags.BoolVar(&opts.wrapSections, "wrapSections", false, "wrap sections into <section> elements")
	flags.BoolVar(&opts.scrubWikitext, "scrubWikitext", false, "normalize wikitext on serialization")
	flags.BoolVar(&opts.selser, "selser", false, "selective serialization")
	flags.StringVar(&opts.oldText, "oldtext", "", "wikitext input")
	flags.StringVar(&opts.oldTextFile, "oldtextfile", "", "file with wikitext input")
	flags.StringVar(&opts.oldHTMLFile, "oldhtmlfile", "", "file with HTML input")
	flags.StringVar(&opts.dump, "dump", "", "comma-separated pass shortcuts to dump")
	flags.StringVar(&opts.trace, "trace", "", "comma-separated trace channels")
	flags.StringVar(&opts.outputContentVersion, "outputContentVersion", "2.8.0", "output content version")
	flags.StringVar(&opts.offsetType, "offsetType", "byte", "offset type: byte|ucs2|char")
	flags.BoolVar(&opts.bodyOnly, "bodyOnly", true, "emit only the body content")
	flags.BoolVar(&opts.pageBundle, "pageBundle", false, "emit the page bundle JSON after the HTML")
	flags.StringVar(&opts.siteConfigFile, "siteConfig", "", "YAML site configuration")
	flags.StringVar(&opts.templateDir, "templateDir", "", "directory with offline template sources")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(opts *cliOptions) error {
	if opts.offsetType != "byte" && opts.offsetType != "ucs2" && opts.offsetType != "char" {
		return fmt.Errorf("unsupported offset type %q", opts.offsetType)
	}
	switch {
	case opts.html2wt, opts.wt2wt, opts.html2html:
		return fmt.Errorf("this build transforms wikitext to HTML only; the selective serializer is a separate component")
	case opts.selser:
		return fmt.Errorf("--selser requires --html2wt")
	}
	// wt2html is the default mode
	src, err := readInput(opts)
	if err != nil {
		return err
	}

	site := siteconfig.Default()
	if opts.siteConfigFile != "" {
		if site, err = siteconfig.LoadFile(opts.siteConfigFile); err != nil {
			return err
		}
	}
	access := dataaccess.NewInMemory()
	if opts.templateDir != "" {
		if err := loadTemplates(access, opts.templateDir); err != nil {
			return err
		}
	}

	cfg := &page.Config{Title: opts.pageName, Source: src}
	result, err := wikidom.WikitextToHTML(cfg, site, access, wikidom.Options{
		WrapSections: opts.wrapSections,
		Linting:      opts.linting,
		BodyOnly:     opts.bodyOnly,
		Dump:         splitList(opts.dump),
		Trace:        opts.trace != "",
	})
	if err != nil {
		return err
	}
	fmt.Println(result.HTML)
	if opts.pageBundle {
		raw, err := result.Bundle.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
	}
	return nil
}

func readInput(opts *cliOptions) (string, error) {
	switch {
	case opts.oldText != "":
		return opts.oldText, nil
	case opts.oldTextFile != "":
		raw, err := os.ReadFile(opts.oldTextFile)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// loadTemplates seeds the in-memory data service with template sources
// from a directory; the file name (without extension) is the template
// name.
func loadTemplates(access *dataaccess.InMemory, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		access.AddTemplate("Template:"+name, string(raw))
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
