package siteconfig

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// yamlConfig is the on-disk shape of a site configuration fixture.
type yamlConfig struct {
	BaseURI    string `yaml:"baseURI"`
	MainPage   string `yaml:"mainPage"`
	LinkPrefix string `yaml:"linkPrefix"`
	LinkTrail  string `yaml:"linkTrail"`
	Namespaces []struct {
		ID      int      `yaml:"id"`
		Name    string   `yaml:"name"`
		Aliases []string `yaml:"aliases"`
	} `yaml:"namespaces"`
	Styles   []string `yaml:"styles"`
	Modules  []string `yaml:"modules"`
	Variants []struct {
		Code string            `yaml:"code"`
		Map  map[string]string `yaml:"map"`
	} `yaml:"variants"`
}

// Load reads a site configuration from YAML. Fields left out keep the
// defaults of Default().
func Load(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("siteconfig: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return nil, fmt.Errorf("siteconfig: %w", err)
	}
	cfg := Default()
	if yc.BaseURI != "" {
		cfg.BaseURI = yc.BaseURI
	}
	if yc.MainPage != "" {
		cfg.MainPage = yc.MainPage
	}
	if yc.LinkPrefix != "" {
		if cfg.LinkPrefix, err = regexp.Compile(yc.LinkPrefix); err != nil {
			return nil, fmt.Errorf("siteconfig: linkPrefix: %w", err)
		}
	}
	if yc.LinkTrail != "" {
		if cfg.LinkTrail, err = regexp.Compile(yc.LinkTrail); err != nil {
			return nil, fmt.Errorf("siteconfig: linkTrail: %w", err)
		}
	}
	if len(yc.Namespaces) > 0 {
		cfg.Namespaces = cfg.Namespaces[:0]
		for _, ns := range yc.Namespaces {
			cfg.Namespaces = append(cfg.Namespaces, Namespace{ID: ns.ID, Name: ns.Name, Aliases: ns.Aliases})
		}
	}
	cfg.Styles = append(cfg.Styles, yc.Styles...)
	cfg.Modules = append(cfg.Modules, yc.Modules...)
	for _, v := range yc.Variants {
		cfg.Variants = append(cfg.Variants, Variant{Code: v.Code, Map: v.Map})
	}
	return cfg, nil
}

// LoadFile reads a site configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("siteconfig: %w", err)
	}
	defer f.Close()
	return Load(f)
}
