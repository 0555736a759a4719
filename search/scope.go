package search

import (
	"time"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// Document fields the base constraints are built against.
const (
	FieldPublished   = "published"
	FieldBrand       = "brand"
	FieldCategory    = "category"
	FieldCollections = "collections"
	FieldCreatedAt   = "created_at"
	FieldPrice       = "price"
	FieldSKU         = "sku"
	FieldTitle       = "title"
)

// NewArrivalsWindow is the trailing window a product counts as new in.
const NewArrivalsWindow = 30 * 24 * time.Hour

// matchNone is the fail-closed constraint: guaranteed to match zero documents.
func matchNone() models.Constraint {
	return models.Constraint{Op: models.OpMatchNone}
}

// BuildBaseConstraints maps a page's logical scope into the mandatory
// AND-combined constraint set. Always present: published, non-empty brand,
// and the two global deny lists. Scope-specific constraints follow. An
// unknown category/brand/collection/nav-group scope value compiles to a
// match-none constraint — omitting it would silently widen results to the
// unscoped catalog.
func (c *Compiler) BuildBaseConstraints(pc models.PageContext) []models.Constraint {
	constraints := []models.Constraint{
		{Op: models.OpBool, Field: FieldPublished, Bool: true},
		{Op: models.OpExists, Field: FieldBrand},
	}
	if len(c.policy.ExcludedBrands) > 0 {
		constraints = append(constraints, models.Constraint{
			Op:       models.OpNot,
			Children: []models.Constraint{{Op: models.OpTerms, Field: FieldBrand, Values: c.policy.ExcludedBrands}},
		})
	}
	if len(c.policy.ExcludedCollections) > 0 {
		constraints = append(constraints, models.Constraint{
			Op:       models.OpNot,
			Children: []models.Constraint{{Op: models.OpTerms, Field: FieldCollections, Values: c.policy.ExcludedCollections}},
		})
	}

	switch pc.ScopeType {
	case models.ScopeCategory:
		if !c.catalog.Categories[pc.ScopeValue] {
			return append(constraints, matchNone())
		}
		constraints = append(constraints, models.Constraint{Op: models.OpTerm, Field: FieldCategory, Value: pc.ScopeValue})

	case models.ScopeBrand:
		if !c.catalog.Brands[pc.ScopeValue] {
			return append(constraints, matchNone())
		}
		constraints = append(constraints, models.Constraint{Op: models.OpTerm, Field: FieldBrand, Value: pc.ScopeValue})

	case models.ScopeCollection:
		if !c.catalog.Collections[pc.ScopeValue] {
			return append(constraints, matchNone())
		}
		constraints = append(constraints, models.Constraint{Op: models.OpTerm, Field: FieldCollections, Value: pc.ScopeValue})

	case models.ScopeNavGroup:
		members, ok := c.policy.NavGroups[pc.ScopeValue]
		if !ok || len(members) == 0 {
			return append(constraints, matchNone())
		}
		constraints = append(constraints, models.Constraint{Op: models.OpTerms, Field: FieldCollections, Values: members})

	case models.ScopeOnSale:
		// Computed predicate, not a stored flag: compare-at price above the
		// current price.
		constraints = append(constraints, models.Constraint{Op: models.OpScript, Script: models.ScriptOnSale})

	case models.ScopeNewArrivals:
		after := c.now().Add(-NewArrivalsWindow)
		constraints = append(constraints, models.Constraint{Op: models.OpDateRange, Field: FieldCreatedAt, After: &after})

	case models.ScopeSearch:
		// Plain search: no additional scoping.

	default:
		// Unrecognized scope type compiles closed as well.
		return append(constraints, matchNone())
	}

	return constraints
}
