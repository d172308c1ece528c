// Package scraper holds the site definitions shared by the live scrapers.
// Sites are described in sources.yaml so selectors can be tuned without a
// rebuild when a classified site changes its markup.
package scraper

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is one listing index page of a site.
type Category struct {
	URL  string `yaml:"url"`
	Type string `yaml:"type"`
}

// Selectors lists CSS selectors tried in order on an ad detail page; the
// first one yielding text wins.
type Selectors struct {
	Title       []string `yaml:"title"`
	Description []string `yaml:"description"`
	Price       []string `yaml:"price"`
	Location    []string `yaml:"location"`
	Surface     []string `yaml:"surface"`
	Bedrooms    []string `yaml:"bedrooms"`
	ContactName []string `yaml:"contact_name"`
	Image       []string `yaml:"image"`
}

// Site describes how to crawl one classified-ads site.
type Site struct {
	Name        string     `yaml:"name"`
	BaseURL     string     `yaml:"base_url"`
	AdLink      string     `yaml:"ad_link"`
	PerCategory int        `yaml:"per_category"`
	Categories  []Category `yaml:"categories"`
	Detail      Selectors  `yaml:"detail"`
}

// Sources maps a site key (e.g. "tonkro") to its definition.
type Sources map[string]Site

// Load reads site definitions from a YAML file.
func Load(path string) (Sources, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources %s: %w", path, err)
	}
	var s Sources
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshal sources %s: %w", path, err)
	}
	for key, site := range s {
		if site.BaseURL == "" || len(site.Categories) == 0 {
			return nil, fmt.Errorf("sources %s: site %q needs base_url and categories", path, key)
		}
		if site.AdLink == "" {
			site.AdLink = `a[href*="/annonce/"]`
		}
		if site.PerCategory <= 0 {
			site.PerCategory = 5
		}
		if site.Name == "" {
			site.Name = key
		}
		s[key] = site
	}
	return s, nil
}

// Get looks a site up by key, case-insensitively.
func (s Sources) Get(key string) (Site, bool) {
	if site, ok := s[key]; ok {
		return site, true
	}
	for k, site := range s {
		if strings.EqualFold(k, key) {
			return site, true
		}
	}
	return Site{}, false
}

// Resolve turns a site-relative link into an absolute URL.
func (s Site) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(href, "/")
}
