package search

import (
	"errors"
	"testing"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

func grillsPage() models.PageContext {
	return models.PageContext{
		Handle:       "grills",
		DisplayName:  "Grills",
		ScopeType:    models.ScopeCategory,
		ScopeValue:   "Grills",
		FilterSetKey: "grills",
	}
}

func TestCompile_BrowseDefaults(t *testing.T) {
	c := testCompiler(t)

	doc, err := c.Compile(grillsPage(), models.NewRefinementState())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if doc.FreeText != nil {
		t.Errorf("browse mode must not carry a free-text clause")
	}
	if doc.From != 0 || doc.Size != DefaultPageSize {
		t.Errorf("pagination = (%d, %d), want (0, %d)", doc.From, doc.Size, DefaultPageSize)
	}

	// One aggregation per active definition, batched into the same document.
	defs := c.Registry().DefinitionsOrDefault("grills")
	if len(doc.Aggregations) != len(defs) {
		t.Fatalf("got %d aggregations, want %d", len(doc.Aggregations), len(defs))
	}
	for i, def := range defs {
		if doc.Aggregations[i].Name != def.Attribute {
			t.Errorf("aggregation %d = %q, want %q", i, doc.Aggregations[i].Name, def.Attribute)
		}
	}

	// Price is the only range filter on grills and must aggregate as min/max.
	for _, agg := range doc.Aggregations {
		want := models.AggTerms
		if agg.Name == "price" {
			want = models.AggMinMax
		}
		if agg.Kind != want {
			t.Errorf("aggregation %q kind = %v, want %v", agg.Name, agg.Kind, want)
		}
	}

	// Default popularity sort without a brand keyword: relevance then recency,
	// no preferred-collection stage.
	if len(doc.Sort) != 2 {
		t.Fatalf("got %d sort clauses, want 2: %+v", len(doc.Sort), doc.Sort)
	}
	if doc.Sort[0].Kind != models.SortByRelevance {
		t.Errorf("sort[0] = %+v, want relevance", doc.Sort[0])
	}
	if doc.Sort[1].Kind != models.SortByField || doc.Sort[1].Field != FieldCreatedAt || !doc.Sort[1].Desc {
		t.Errorf("sort[1] = %+v, want created_at desc", doc.Sort[1])
	}
}

func TestCompile_RuntimeFieldsRegistered(t *testing.T) {
	c := testCompiler(t)
	doc, err := c.Compile(grillsPage(), models.NewRefinementState())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	want := map[string]bool{"fuel_type": true, "size_category": true}
	if len(doc.RuntimeFields) != len(want) {
		t.Fatalf("runtime fields = %v, want %v", doc.RuntimeFields, want)
	}
	for _, rf := range doc.RuntimeFields {
		if !want[rf] {
			t.Errorf("unexpected runtime field %q", rf)
		}
	}
}

func TestCompile_Refinements(t *testing.T) {
	c := testCompiler(t)

	state := models.NewRefinementState()
	state.Selected["brand"] = []string{"Bull", "Blaze"}
	state.Selected["fuel"] = []string{"Natural Gas"}
	state.Ranges["price"] = models.RangeBounds{Min: 500, HasMin: true, Max: 2500, HasMax: true}

	doc, err := c.Compile(grillsPage(), state)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	brand, ok := findConstraint(doc.Constraints, models.OpTerms, FieldBrand)
	if !ok || len(brand.Values) != 2 {
		t.Errorf("multi-select brand constraint = %+v", brand)
	}
	// Single value collapses to a term, and a derived-field filter targets the
	// runtime field name.
	fuel, ok := findConstraint(doc.Constraints, models.OpTerm, "fuel_type")
	if !ok || fuel.Value != "Natural Gas" {
		t.Errorf("fuel constraint = %+v", fuel)
	}
	price, ok := findConstraint(doc.Constraints, models.OpRange, FieldPrice)
	if !ok || price.Min == nil || price.Max == nil || *price.Min != 500 || *price.Max != 2500 {
		t.Errorf("price constraint = %+v", price)
	}
}

func TestCompile_InvertedRangeSwapped(t *testing.T) {
	c := testCompiler(t)

	state := models.NewRefinementState()
	state.Ranges["price"] = models.RangeBounds{Min: 500, HasMin: true, Max: 100, HasMax: true}

	doc, err := c.Compile(grillsPage(), state)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	price, ok := findConstraint(doc.Constraints, models.OpRange, FieldPrice)
	if !ok {
		t.Fatalf("missing price range constraint")
	}
	if *price.Min != 100 || *price.Max != 500 {
		t.Fatalf("inverted bounds not swapped: min=%v max=%v", *price.Min, *price.Max)
	}
}

func TestCompile_UnknownAttributeIgnored(t *testing.T) {
	c := testCompiler(t)

	state := models.NewRefinementState()
	state.Selected["wattage"] = []string{"1500"}

	doc, err := c.Compile(grillsPage(), state)
	if err != nil {
		t.Fatalf("stale refinement must not error: %v", err)
	}
	for _, con := range doc.Constraints {
		if con.Field == "wattage" {
			t.Fatalf("unknown attribute leaked into constraints: %+v", con)
		}
	}
}

func TestCompile_KindMismatchRejected(t *testing.T) {
	c := testCompiler(t)

	state := models.NewRefinementState()
	state.Ranges["brand"] = models.RangeBounds{Min: 1, HasMin: true}

	_, err := c.Compile(grillsPage(), state)
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Code != CodeInvalidRefinement {
		t.Fatalf("expected invalid_refinement, got %v", err)
	}

	state = models.NewRefinementState()
	state.Selected["price"] = []string{"cheap"}
	_, err = c.Compile(grillsPage(), state)
	if !errors.As(err, &ce) || ce.Code != CodeInvalidRefinement {
		t.Fatalf("expected invalid_refinement for list values on a range, got %v", err)
	}
}

func TestCompile_FreeTextStrategy(t *testing.T) {
	c := testCompiler(t)

	tests := []struct {
		query     string
		fuzziness int
	}{
		{"rib", 0},
		{"smoker", 1},
		{"rotisserie", 2},
	}
	for _, tt := range tests {
		state := models.NewRefinementState()
		state.Query = tt.query
		doc, err := c.Compile(grillsPage(), state)
		if err != nil {
			t.Fatalf("Compile(%q) error: %v", tt.query, err)
		}
		ft := doc.FreeText
		if ft == nil {
			t.Fatalf("Compile(%q): missing free-text clause", tt.query)
		}
		if ft.Fuzziness != tt.fuzziness {
			t.Errorf("fuzziness(%q) = %d, want %d", tt.query, ft.Fuzziness, tt.fuzziness)
		}
		if !(ft.SKUBoost > ft.FuzzyBoost && ft.FuzzyBoost > ft.PrefixBoost) {
			t.Errorf("boost ordering broken: sku=%v fuzzy=%v prefix=%v", ft.SKUBoost, ft.FuzzyBoost, ft.PrefixBoost)
		}
	}

	// Whitespace-only input is browse mode, not a zero-result search.
	state := models.NewRefinementState()
	state.Query = "   "
	doc, err := c.Compile(grillsPage(), state)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if doc.FreeText != nil {
		t.Errorf("whitespace query produced a free-text clause")
	}
}

func TestCompile_PreferredBrandSort(t *testing.T) {
	c := testCompiler(t)

	tests := []struct {
		name      string
		query     string
		preferred bool
	}{
		{"exact keyword", "bull", true},
		{"keyword with different case", "BULL", true},
		{"keyword padded with spaces", "  bull  ", true},
		{"keyword as substring must not trigger", "bull grill", false},
		{"unrelated term", "napoleon", false},
		{"empty browse", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := models.NewRefinementState()
			state.Query = tt.query
			doc, err := c.Compile(grillsPage(), state)
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			got := len(doc.Sort) > 0 && doc.Sort[0].Kind == models.SortByPreferred
			if got != tt.preferred {
				t.Fatalf("preferred stage = %v, want %v (sort: %+v)", got, tt.preferred, doc.Sort)
			}
			if tt.preferred && len(doc.Sort[0].Collections) == 0 {
				t.Fatalf("preferred stage missing its collection list")
			}
		})
	}
}

func TestCompile_ExplicitSortDisablesPreferredStage(t *testing.T) {
	c := testCompiler(t)

	state := models.NewRefinementState()
	state.Query = "bull"
	state.Sort = models.SortPriceAsc

	doc, err := c.Compile(grillsPage(), state)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if len(doc.Sort) != 1 || doc.Sort[0].Kind != models.SortByField || doc.Sort[0].Field != FieldPrice || doc.Sort[0].Desc {
		t.Fatalf("explicit price sort overridden: %+v", doc.Sort)
	}
}

func TestCompile_Pagination(t *testing.T) {
	c := testCompiler(t)

	state := models.NewRefinementState()
	state.Page = 3
	doc, err := c.Compile(grillsPage(), state)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if doc.From != 2*DefaultPageSize || doc.Size != DefaultPageSize {
		t.Errorf("page 3 pagination = (%d, %d)", doc.From, doc.Size)
	}

	state.Page = 0
	doc, err = c.Compile(grillsPage(), state)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if doc.From != 0 {
		t.Errorf("page 0 must clamp to the first page, got from=%d", doc.From)
	}
}

func TestCompile_UnknownFilterSetFallsBack(t *testing.T) {
	c := testCompiler(t)

	pc := grillsPage()
	pc.FilterSetKey = "lawn-care"
	doc, err := c.Compile(pc, models.NewRefinementState())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	defaults := c.Registry().DefinitionsOrDefault(DefaultFilterSetKey)
	if len(doc.Aggregations) != len(defaults) {
		t.Fatalf("unknown filter set key did not fall back to defaults: %d aggregations", len(doc.Aggregations))
	}
}
