// Package categorize maps visited URLs onto the fixed category taxonomy.
package categorize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/starford/histmap/internal/apperr"
	"github.com/starford/histmap/internal/models"
)

type rule struct {
	category models.Category
	patterns []string
}

// rules are evaluated in order and the first match wins. Patterns overlap
// across rules, so the order is part of the contract.
var rules = []rule{
	{models.CategorySocial, []string{"facebook", "twitter", "linkedin", "instagram", "reddit"}},
	{models.CategoryDev, []string{"github", "stackoverflow", "gitlab", "npmjs", "dev."}},
	{models.CategoryWork, []string{"docs", "confluence", "notion", "atlassian", "trello", "asana"}},
	{models.CategoryNews, []string{"news", "medium", "bbc", "cnn", "nytimes", "reuters"}},
	{models.CategoryShopping, []string{"amazon", "ebay", "etsy", "shopify", "walmart"}},
}

// Rule describes one categorisation rule for documentation surfaces.
type Rule struct {
	Category models.Category `json:"category"`
	Patterns []string        `json:"patterns"`
}

// Rules returns a copy of the ordered rule list.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Category: r.category, Patterns: append([]string(nil), r.patterns...)}
	}
	return out
}

// Categorize returns the category for rawURL. Matching is substring based
// against the full lower-cased hostname.
func Categorize(rawURL string) (models.Category, error) {
	host, err := Hostname(rawURL)
	if err != nil {
		return "", err
	}
	return ForHost(host), nil
}

// ForHost applies the rules to an already extracted, lower-cased hostname.
func ForHost(host string) models.Category {
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(host, p) {
				return r.category
			}
		}
	}
	return models.CategoryOther
}

// hostSchemes require a non-empty host.
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ws":    true,
	"wss":   true,
}

// Hostname extracts the lower-cased hostname of an absolute URL, without
// port. Schemes without an authority (about:, file:///) yield "". Network
// schemes such as http and https must name a host.
func Hostname(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", apperr.ErrInvalidURL, rawURL, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("%w: %q is not absolute", apperr.ErrInvalidURL, rawURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" && hostSchemes[strings.ToLower(u.Scheme)] {
		return "", fmt.Errorf("%w: %q has no host", apperr.ErrInvalidURL, rawURL)
	}
	return host, nil
}
