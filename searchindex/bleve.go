package searchindex

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	_ "github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	_ "github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	bsearch "github.com/blevesearch/bleve/v2/search"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
	"github.com/Emberline-Outdoor/emberline-search-backend/search"
)

// priceBandEdges are the numeric-range facet bands the embedded backend uses
// to approximate min_max aggregations (bleve has no stats aggregation).
var priceBandEdges = []float64{0, 100, 250, 500, 1000, 2500, 5000, 10000, 20000}

// EmbeddedBackend runs queries against an in-process bleve index. Bleve has
// no server-side scripting, so runtime fields, the on-sale predicate and the
// preferred-brand rank are materialized onto each document at index time from
// the same ruleset/policy the compiler uses; a policy change therefore needs
// a reindex.
type EmbeddedBackend struct {
	idx    bleve.Index
	rules  *search.Ruleset
	policy search.Policy
}

// NewEmbeddedBackend opens (or creates) a bleve index at path; an empty path
// builds an in-memory index, which is what the tests and local dev use.
func NewEmbeddedBackend(path string, rules *search.Ruleset, policy search.Policy) (*EmbeddedBackend, error) {
	im, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to build index mapping: %w", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
	} else {
		idx, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			log.Printf("Creating new product index at %s", path)
			idx, err = bleve.New(path, im)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
		}
	}

	return &EmbeddedBackend{idx: idx, rules: rules, policy: policy}, nil
}

// buildIndexMapping sets keyword analysis as the dynamic default (brand,
// collections, tags, derived buckets must match exactly) and maps the two
// relevance fields as analyzed text. SKUs get a lowercasing keyword analyzer
// so exact-SKU search is case-insensitive.
func buildIndexMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	if err := im.AddCustomAnalyzer("keyword_lower", map[string]interface{}{
		"type":          "custom",
		"tokenizer":     "single",
		"token_filters": []interface{}{"to_lower"},
	}); err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = "keyword"

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = "standard"
	title.Store = true
	doc.AddFieldMappingsAt(search.FieldTitle, title)

	description := bleve.NewTextFieldMapping()
	description.Analyzer = "standard"
	doc.AddFieldMappingsAt("description", description)

	sku := bleve.NewTextFieldMapping()
	sku.Analyzer = "keyword_lower"
	sku.Store = true
	doc.AddFieldMappingsAt(search.FieldSKU, sku)

	numeric := bleve.NewNumericFieldMapping()
	numeric.Store = true
	doc.AddFieldMappingsAt(search.FieldPrice, numeric)
	doc.AddFieldMappingsAt("compare_at_price", bleve.NewNumericFieldMapping())
	doc.AddFieldMappingsAt("preferred_rank", bleve.NewNumericFieldMapping())

	created := bleve.NewDateTimeFieldMapping()
	created.Store = true
	doc.AddFieldMappingsAt(search.FieldCreatedAt, created)

	image := bleve.NewTextFieldMapping()
	image.Index = false
	image.Store = true
	doc.AddFieldMappingsAt("image", image)

	im.DefaultMapping = doc
	return im, nil
}

// IndexProduct materializes the synthetic fields and writes one product.
func (b *EmbeddedBackend) IndexProduct(p models.Product) error {
	doc := map[string]interface{}{
		"id":                    p.ID,
		search.FieldSKU:         p.SKU,
		search.FieldTitle:       p.Title,
		"description":           p.Description,
		search.FieldBrand:       p.Brand,
		search.FieldCategory:    p.Category,
		search.FieldCollections: p.Collections,
		"tags":                  p.Tags,
		"attributes":            p.Attributes,
		search.FieldPrice:       p.Price,
		"compare_at_price":      p.CompareAtPrice,
		search.FieldPublished:   p.Published,
		"image":                 p.ImageURL,
		search.FieldCreatedAt:   p.CreatedAt,
		"preferred_rank":        b.preferredRank(p.Collections),
	}
	doc["has_"+search.FieldBrand] = strings.TrimSpace(p.Brand) != ""
	doc[string(models.ScriptOnSale)] = p.CompareAtPrice > p.Price

	raw := map[string]interface{}{
		"tags":       p.Tags,
		"attributes": p.Attributes,
		"brand":      p.Brand,
		"category":   p.Category,
		"title":      p.Title,
		"price":      p.Price,
	}
	if b.rules != nil {
		for _, name := range b.rules.Names() {
			if v, ok := b.rules.Derive(name, raw); ok {
				doc[name] = v
			}
		}
	}

	if err := b.idx.Index(p.ID, doc); err != nil {
		return fmt.Errorf("failed to index product %s: %w", p.ID, err)
	}
	return nil
}

func (b *EmbeddedBackend) preferredRank(collections []string) float64 {
	for _, pc := range b.policy.PreferredCollections {
		for _, c := range collections {
			if c == pc {
				return 0
			}
		}
	}
	return 1
}

// DocCount reports the number of indexed products.
func (b *EmbeddedBackend) DocCount() (uint64, error) {
	return b.idx.DocCount()
}

// Close closes the underlying index.
func (b *EmbeddedBackend) Close() error {
	return b.idx.Close()
}

// Execute translates the query document into a single bleve search request
// (filters, relevance clause, facets, sort, pagination) and runs it.
func (b *EmbeddedBackend) Execute(ctx context.Context, doc *models.QueryDocument) (*Result, error) {
	full, err := b.buildQuery(doc)
	if err != nil {
		return nil, &BackendError{Code: CodeBackendError, Err: err}
	}

	req := bleve.NewSearchRequestOptions(full, doc.Size, doc.From, false)
	req.Fields = []string{search.FieldTitle, search.FieldBrand, search.FieldPrice, "image"}

	for _, agg := range doc.Aggregations {
		field := agg.Field
		if agg.RuntimeField != "" {
			field = agg.RuntimeField
		}
		switch agg.Kind {
		case models.AggMinMax:
			fr := bleve.NewFacetRequest(field, len(priceBandEdges)+1)
			for i := 0; i < len(priceBandEdges)-1; i++ {
				lo, hi := priceBandEdges[i], priceBandEdges[i+1]
				fr.AddNumericRange(fmt.Sprintf("band_%d", i), &lo, &hi)
			}
			// Open-ended top band so prices above the last edge still count.
			top := priceBandEdges[len(priceBandEdges)-1]
			fr.AddNumericRange(fmt.Sprintf("band_%d", len(priceBandEdges)-1), &top, nil)
			req.AddFacet(agg.Name, fr)
		default:
			req.AddFacet(agg.Name, bleve.NewFacetRequest(field, agg.Size))
		}
	}

	req.SortBy(sortStrings(doc.Sort))

	res, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &BackendError{Code: CodeBackendTimeout, Err: err}
		}
		return nil, &BackendError{Code: CodeBackendError, Err: err}
	}

	return b.collectResult(doc, res), nil
}

func (b *EmbeddedBackend) buildQuery(doc *models.QueryDocument) (blevequery.Query, error) {
	musts := make([]blevequery.Query, 0, len(doc.Constraints)+1)
	for _, c := range doc.Constraints {
		q, err := translateConstraint(c)
		if err != nil {
			return nil, err
		}
		musts = append(musts, q)
	}
	if doc.FreeText != nil {
		musts = append(musts, freeTextQuery(doc.FreeText))
	}
	if len(musts) == 0 {
		return bleve.NewMatchAllQuery(), nil
	}
	return bleve.NewConjunctionQuery(musts...), nil
}

func translateConstraint(c models.Constraint) (blevequery.Query, error) {
	switch c.Op {
	case models.OpAnd:
		children, err := translateAll(c.Children)
		if err != nil {
			return nil, err
		}
		return bleve.NewConjunctionQuery(children...), nil

	case models.OpOr:
		children, err := translateAll(c.Children)
		if err != nil {
			return nil, err
		}
		return bleve.NewDisjunctionQuery(children...), nil

	case models.OpNot:
		children, err := translateAll(c.Children)
		if err != nil {
			return nil, err
		}
		q := bleve.NewBooleanQuery()
		q.AddMust(bleve.NewMatchAllQuery())
		q.AddMustNot(children...)
		return q, nil

	case models.OpTerm:
		q := bleve.NewTermQuery(c.Value)
		q.SetField(c.Field)
		return q, nil

	case models.OpTerms:
		terms := make([]blevequery.Query, len(c.Values))
		for i, v := range c.Values {
			tq := bleve.NewTermQuery(v)
			tq.SetField(c.Field)
			terms[i] = tq
		}
		return bleve.NewDisjunctionQuery(terms...), nil

	case models.OpBool:
		q := bleve.NewBoolFieldQuery(c.Bool)
		q.SetField(c.Field)
		return q, nil

	case models.OpRange:
		incl := true
		q := bleve.NewNumericRangeInclusiveQuery(c.Min, c.Max, &incl, &incl)
		q.SetField(c.Field)
		return q, nil

	case models.OpDateRange:
		var after, before time.Time
		if c.After != nil {
			after = *c.After
		}
		if c.Before != nil {
			before = *c.Before
		}
		q := bleve.NewDateRangeQuery(after, before)
		q.SetField(c.Field)
		return q, nil

	case models.OpExists:
		// Existence is materialized as a has_<field> bool at index time.
		q := bleve.NewBoolFieldQuery(true)
		q.SetField("has_" + c.Field)
		return q, nil

	case models.OpScript:
		// Script predicates are materialized under the script id.
		q := bleve.NewBoolFieldQuery(true)
		q.SetField(string(c.Script))
		return q, nil

	case models.OpMatchNone:
		return bleve.NewMatchNoneQuery(), nil

	default:
		return nil, fmt.Errorf("unsupported constraint op %q", c.Op)
	}
}

func translateAll(cs []models.Constraint) ([]blevequery.Query, error) {
	out := make([]blevequery.Query, 0, len(cs))
	for _, c := range cs {
		q, err := translateConstraint(c)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// freeTextQuery builds the three-strategy disjunction. Boosts keep the
// ordering guarantee: exact SKU > fuzzy title > title prefix/phrase.
func freeTextQuery(ft *models.FreeTextClause) blevequery.Query {
	skuQ := bleve.NewTermQuery(strings.ToLower(ft.Term))
	skuQ.SetField(ft.SKUField)
	skuQ.SetBoost(ft.SKUBoost)

	fuzzyQ := bleve.NewMatchQuery(ft.Term)
	fuzzyQ.SetField(ft.TitleField)
	fuzzyQ.SetFuzziness(ft.Fuzziness)
	fuzzyQ.SetBoost(ft.FuzzyBoost)

	phraseQ := bleve.NewMatchPhraseQuery(ft.Term)
	phraseQ.SetField(ft.TitleField)
	phraseQ.SetBoost(ft.PrefixBoost)

	prefixQ := bleve.NewPrefixQuery(strings.ToLower(ft.Term))
	prefixQ.SetField(ft.TitleField)
	prefixQ.SetBoost(ft.PrefixBoost)

	return bleve.NewDisjunctionQuery(skuQ, fuzzyQ, phraseQ, prefixQ)
}

// sortStrings converts sort stages into bleve's sort-by notation.
func sortStrings(stages []models.SortClause) []string {
	out := make([]string, 0, len(stages))
	for _, s := range stages {
		switch s.Kind {
		case models.SortByRelevance:
			out = append(out, "-_score")
		case models.SortByPreferred:
			out = append(out, "preferred_rank")
		case models.SortByField:
			if s.Desc {
				out = append(out, "-"+s.Field)
			} else {
				out = append(out, s.Field)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, "-_score")
	}
	return out
}

func (b *EmbeddedBackend) collectResult(doc *models.QueryDocument, res *bleve.SearchResult) *Result {
	result := &Result{
		Hits:    make([]models.Hit, 0, len(res.Hits)),
		Total:   int(res.Total),
		Buckets: map[string][]models.AggBucket{},
		Bounds:  map[string]MinMax{},
	}

	for _, dm := range res.Hits {
		hit := models.Hit{ID: dm.ID, Score: dm.Score}
		if v, ok := dm.Fields[search.FieldTitle].(string); ok {
			hit.Title = v
		}
		if v, ok := dm.Fields[search.FieldBrand].(string); ok {
			hit.Brand = v
		}
		if v, ok := dm.Fields[search.FieldPrice].(float64); ok {
			hit.Price = v
		}
		if v, ok := dm.Fields["image"].(string); ok {
			hit.Image = v
		}
		result.Hits = append(result.Hits, hit)
	}

	byName := make(map[string]models.AggregationRequest, len(doc.Aggregations))
	for _, agg := range doc.Aggregations {
		byName[agg.Name] = agg
	}

	for name, fr := range res.Facets {
		agg := byName[name]
		if agg.Kind == models.AggMinMax {
			result.Bounds[name] = bandBounds(fr)
			continue
		}
		var buckets []models.AggBucket
		if fr.Terms != nil {
			for _, t := range fr.Terms.Terms() {
				buckets = append(buckets, models.AggBucket{Key: t.Term, Count: t.Count})
			}
		}
		result.Buckets[name] = buckets
	}

	return result
}

// bandBounds approximates observed min/max from the numeric-range bands. The
// top band is open-ended; when it has hits the max floors at its lower edge,
// the highest value the bands can attest to.
func bandBounds(fr *bsearch.FacetResult) MinMax {
	var mm MinMax
	for _, nr := range fr.NumericRanges {
		if nr.Count == 0 {
			continue
		}
		if nr.Min != nil && (mm.Min == nil || *nr.Min < *mm.Min) {
			v := *nr.Min
			mm.Min = &v
		}
		switch {
		case nr.Max != nil:
			if mm.Max == nil || *nr.Max > *mm.Max {
				v := *nr.Max
				mm.Max = &v
			}
		case nr.Min != nil:
			if mm.Max == nil || *nr.Min > *mm.Max {
				v := *nr.Min
				mm.Max = &v
			}
		}
	}
	return mm
}
