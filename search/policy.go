package search

import "strings"

// Policy is the business-rule configuration the compiler is constructed with.
// Everything here is merchandising policy, not code: deny lists, nav-group
// membership, the preferred-collection boost list and the exact-match brand
// keywords that trigger it. Loaded once at startup, never mutated after.
type Policy struct {
	ExcludedBrands       []string            `yaml:"excluded_brands"`
	ExcludedCollections  []string            `yaml:"excluded_collections"`
	NavGroups            map[string][]string `yaml:"nav_groups"`
	PreferredCollections []string            `yaml:"preferred_collections"`
	BrandKeywords        []string            `yaml:"brand_keywords"`
}

// IsBrandKeyword reports whether term is an exact, case-insensitive,
// whole-string match of one of the curated brand keywords. Substring matches
// must not trigger the preferred-brand sort stage.
func (p Policy) IsBrandKeyword(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for _, kw := range p.BrandKeywords {
		if strings.ToLower(kw) == term {
			return true
		}
	}
	return false
}

// Catalog is the set of scope values known to exist. The base-constraint
// mapper uses it to fail closed: a category/brand/collection page whose scope
// value is not listed compiles to a match-none constraint instead of silently
// broadening to the whole catalog.
type Catalog struct {
	Categories  map[string]bool
	Brands      map[string]bool
	Collections map[string]bool
}

// NewCatalog builds a Catalog from plain name lists.
func NewCatalog(categories, brands, collections []string) Catalog {
	c := Catalog{
		Categories:  make(map[string]bool, len(categories)),
		Brands:      make(map[string]bool, len(brands)),
		Collections: make(map[string]bool, len(collections)),
	}
	for _, v := range categories {
		c.Categories[v] = true
	}
	for _, v := range brands {
		c.Brands[v] = true
	}
	for _, v := range collections {
		c.Collections[v] = true
	}
	return c
}
