package search

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// DefaultPageSize is the fixed storefront page size.
const DefaultPageSize = 24

// facet size requested per filter; large enough for "See All" expansion.
const facetSize = 50

// Free-text strategy boosts. What matters is the ordering: an exact SKU match
// always outranks a fuzzy title match, which outranks a generic prefix match.
const (
	skuBoost    = 10.0
	fuzzyBoost  = 5.0
	prefixBoost = 2.0
)

// CompilerConfig is everything the compiler needs, passed explicitly at
// construction time. No global lookups.
type CompilerConfig struct {
	Registry *Registry
	Rules    *Ruleset
	Policy   Policy
	Catalog  Catalog
	PageSize int
	Now      func() time.Time
}

// Compiler turns a page context plus refinement state into a single query
// document for the search index. It is pure, synchronous and stateless; one
// instance serves all requests concurrently without locking.
type Compiler struct {
	registry *Registry
	rules    *Ruleset
	policy   Policy
	catalog  Catalog
	pageSize int
	now      func() time.Time
}

// NewCompiler validates the config and returns a ready compiler.
func NewCompiler(cfg CompilerConfig) (*Compiler, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("compiler config: registry is required")
	}
	if cfg.Rules == nil {
		return nil, fmt.Errorf("compiler config: ruleset is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Compiler{
		registry: cfg.Registry,
		rules:    cfg.Rules,
		policy:   cfg.Policy,
		catalog:  cfg.Catalog,
		pageSize: cfg.PageSize,
		now:      cfg.Now,
	}, nil
}

// Rules exposes the compiled derivation ruleset (the embedded backend needs
// it to materialize runtime fields).
func (c *Compiler) Rules() *Ruleset { return c.rules }

// Registry exposes the filter schema registry.
func (c *Compiler) Registry() *Registry { return c.registry }

// Policy exposes the business-rule configuration.
func (c *Compiler) Policy() Policy { return c.policy }

// PageSize returns the fixed page size the compiler paginates with.
func (c *Compiler) PageSize() int { return c.pageSize }

// Compile assembles the full query document. Step order matters: base
// constraints, runtime-field registration, refinement constraints, free text,
// sort, then pagination and the batched aggregation requests.
func (c *Compiler) Compile(pc models.PageContext, state models.RefinementState) (*models.QueryDocument, error) {
	doc := &models.QueryDocument{}

	// 1. Scope.
	doc.Constraints = c.BuildBaseConstraints(pc)

	// 2. Active filter definitions; unknown keys fall back to the defaults.
	defs := c.registry.DefinitionsOrDefault(pc.FilterSetKey)

	// Register derived-field computations so aggregations can group on them.
	seen := map[string]bool{}
	for _, def := range defs {
		if def.DerivedField != "" && !seen[def.DerivedField] {
			seen[def.DerivedField] = true
			doc.RuntimeFields = append(doc.RuntimeFields, def.DerivedField)
		}
	}

	// 3. Refinements: OR within an attribute, AND across attributes.
	refined, err := c.refinementConstraints(defs, state)
	if err != nil {
		return nil, err
	}
	doc.Constraints = append(doc.Constraints, refined...)

	// 4. Free text. Empty after trimming means browse mode, not a zero-result
	// query.
	freeText := strings.TrimSpace(state.Query)
	if freeText != "" {
		doc.FreeText = &models.FreeTextClause{
			Term:        freeText,
			SKUField:    FieldSKU,
			TitleField:  FieldTitle,
			SKUBoost:    skuBoost,
			FuzzyBoost:  fuzzyBoost,
			PrefixBoost: prefixBoost,
			Fuzziness:   fuzzinessFor(freeText),
		}
	}

	// 5. Sort.
	doc.Sort = c.resolveSort(state.Sort, freeText)

	// 6. Pagination plus one aggregation per active definition, batched into
	// this single round trip.
	page := state.Page
	if page < 1 {
		page = 1
	}
	doc.From = (page - 1) * c.pageSize
	doc.Size = c.pageSize
	doc.Aggregations = aggregationRequests(defs)

	return doc, nil
}

// refinementConstraints translates the selected values and ranges against the
// active definitions. Attributes not present in the active filter set are
// ignored (logged), never an error: a stale URL must not break the page.
func (c *Compiler) refinementConstraints(defs []models.FilterDefinition, state models.RefinementState) ([]models.Constraint, error) {
	byAttr := make(map[string]models.FilterDefinition, len(defs))
	for _, def := range defs {
		byAttr[def.Attribute] = def
	}

	var out []models.Constraint

	// Deterministic constraint order: follow the authored definition order,
	// not map iteration.
	for _, def := range defs {
		if values, ok := state.Selected[def.Attribute]; ok && len(values) > 0 {
			if def.Kind == models.FilterKindRange {
				return nil, &CompileError{
					Code:   CodeInvalidRefinement,
					Detail: fmt.Sprintf("attribute %q is a numeric range, got list values", def.Attribute),
				}
			}
			field := refinementField(def)
			if len(values) == 1 {
				out = append(out, models.Constraint{Op: models.OpTerm, Field: field, Value: values[0]})
			} else {
				out = append(out, models.Constraint{Op: models.OpTerms, Field: field, Values: values})
			}
		}

		if bounds, ok := state.Ranges[def.Attribute]; ok {
			if def.Kind != models.FilterKindRange {
				return nil, &CompileError{
					Code:   CodeInvalidRefinement,
					Detail: fmt.Sprintf("attribute %q is not a numeric range", def.Attribute),
				}
			}
			cons := models.Constraint{Op: models.OpRange, Field: refinementField(def)}
			min, max := clampBounds(bounds)
			if min != nil {
				cons.Min = min
			}
			if max != nil {
				cons.Max = max
			}
			if cons.Min == nil && cons.Max == nil {
				continue
			}
			out = append(out, cons)
		}
	}

	for attr := range state.Selected {
		if _, ok := byAttr[attr]; !ok {
			log.Printf("search: ignoring refinement on unknown attribute %q", attr)
		}
	}
	for attr := range state.Ranges {
		if _, ok := byAttr[attr]; !ok {
			log.Printf("search: ignoring range refinement on unknown attribute %q", attr)
		}
	}

	return out, nil
}

// refinementField resolves the field a definition filters and aggregates on.
// Derived fields are addressed by their runtime name.
func refinementField(def models.FilterDefinition) string {
	if def.DerivedField != "" {
		return def.DerivedField
	}
	return def.SourceField
}

// clampBounds sanitizes user range input: inverted bounds are swapped, never
// passed through as a zero-result inverted range.
func clampBounds(b models.RangeBounds) (min, max *float64) {
	if b.HasMin && b.HasMax && b.Min > b.Max {
		b.Min, b.Max = b.Max, b.Min
	}
	if b.HasMin {
		v := b.Min
		min = &v
	}
	if b.HasMax {
		v := b.Max
		max = &v
	}
	return min, max
}

// fuzzinessFor scales the edit-distance tolerance to the term length, so
// short terms stay strict.
func fuzzinessFor(term string) int {
	switch n := len([]rune(term)); {
	case n <= 3:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}

// resolveSort applies the sort policy. The preferred-brand priority stage is
// a deliberate business rule, not a relevance heuristic: it runs only when
// sort is popularity AND the free text is an exact whole-string match of a
// curated brand keyword. Substring matches must not trigger it.
func (c *Compiler) resolveSort(sort models.SortOrder, freeText string) []models.SortClause {
	switch sort {
	case models.SortNewest:
		return []models.SortClause{{Kind: models.SortByField, Field: FieldCreatedAt, Desc: true}}
	case models.SortPriceAsc:
		return []models.SortClause{{Kind: models.SortByField, Field: FieldPrice}}
	case models.SortPriceDesc:
		return []models.SortClause{{Kind: models.SortByField, Field: FieldPrice, Desc: true}}
	}

	// Popularity (and anything unrecognized falls back to it).
	if c.policy.IsBrandKeyword(freeText) {
		return []models.SortClause{
			{Kind: models.SortByPreferred, Collections: c.policy.PreferredCollections},
			{Kind: models.SortByField, Field: FieldCreatedAt, Desc: true},
			{Kind: models.SortByRelevance},
		}
	}
	return []models.SortClause{
		{Kind: models.SortByRelevance},
		{Kind: models.SortByField, Field: FieldCreatedAt, Desc: true},
	}
}

// aggregationRequests builds one facet request per active definition.
func aggregationRequests(defs []models.FilterDefinition) []models.AggregationRequest {
	reqs := make([]models.AggregationRequest, 0, len(defs))
	for _, def := range defs {
		req := models.AggregationRequest{Name: def.Attribute, Size: facetSize}
		if def.Kind == models.FilterKindRange {
			req.Kind = models.AggMinMax
		} else {
			req.Kind = models.AggTerms
		}
		if def.DerivedField != "" {
			req.RuntimeField = def.DerivedField
		} else {
			req.Field = def.SourceField
		}
		reqs = append(reqs, req)
	}
	return reqs
}
