package search

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

func TestEncodeState_Canonical(t *testing.T) {
	state := models.NewRefinementState()
	state.Selected["brand"] = []string{"Acme", "Beta"}
	state.Ranges["price"] = models.RangeBounds{Min: 100, HasMin: true, Max: 500, HasMax: true}

	got := EncodeState(state)
	want := "filter:brand=Acme,Beta&range:price=100-500"
	if got != want {
		t.Fatalf("EncodeState() = %q, want %q", got, want)
	}
}

func TestEncodeState_Omissions(t *testing.T) {
	// Page 1, popularity sort and an empty query are all defaults and must
	// leave no key behind.
	state := models.NewRefinementState()
	if got := EncodeState(state); got != "" {
		t.Fatalf("default state encoded to %q, want empty", got)
	}

	state.Page = 2
	state.Sort = models.SortNewest
	state.Query = "smoker"
	got := EncodeState(state)
	want := "page=2&q=smoker&sort=newest"
	if got != want {
		t.Fatalf("EncodeState() = %q, want %q", got, want)
	}
}

func TestEncodeState_SortedKeys(t *testing.T) {
	state := models.NewRefinementState()
	state.Selected["size"] = []string{"Large"}
	state.Selected["brand"] = []string{"Bull"}
	state.Ranges["price"] = models.RangeBounds{Min: 100, HasMin: true}

	got := EncodeState(state)
	want := "filter:brand=Bull&filter:size=Large&range:price=100-"
	if got != want {
		t.Fatalf("EncodeState() = %q, want %q", got, want)
	}
}

func TestDecodeState_Basic(t *testing.T) {
	state, err := DecodeState("filter:brand=Acme,Beta&range:price=100-500&sort=price_asc&page=3&q=grill")
	if err != nil {
		t.Fatalf("DecodeState() error: %v", err)
	}
	if !reflect.DeepEqual(state.Selected["brand"], []string{"Acme", "Beta"}) {
		t.Errorf("brand = %v", state.Selected["brand"])
	}
	bounds := state.Ranges["price"]
	if !bounds.HasMin || !bounds.HasMax || bounds.Min != 100 || bounds.Max != 500 {
		t.Errorf("price bounds = %+v", bounds)
	}
	if state.Sort != models.SortPriceAsc {
		t.Errorf("sort = %q", state.Sort)
	}
	if state.Page != 3 {
		t.Errorf("page = %d", state.Page)
	}
	if state.Query != "grill" {
		t.Errorf("query = %q", state.Query)
	}
}

func TestDecodeState_OpenEndedRanges(t *testing.T) {
	state, err := DecodeState("range:price=100-")
	if err != nil {
		t.Fatalf("DecodeState() error: %v", err)
	}
	b := state.Ranges["price"]
	if !b.HasMin || b.HasMax || b.Min != 100 {
		t.Fatalf("min-only bounds = %+v", b)
	}

	state, err = DecodeState("range:price=-500")
	if err != nil {
		t.Fatalf("DecodeState() error: %v", err)
	}
	b = state.Ranges["price"]
	if b.HasMin || !b.HasMax || b.Max != 500 {
		t.Fatalf("max-only bounds = %+v", b)
	}
}

func TestDecodeState_ForeignKeysIgnored(t *testing.T) {
	state, err := DecodeState("utm_source=newsletter&fbclid=abc123&filter:brand=Bull&gclid=xyz")
	if err != nil {
		t.Fatalf("DecodeState() error: %v", err)
	}
	if len(state.Selected) != 1 || state.Selected["brand"][0] != "Bull" {
		t.Fatalf("selected = %v", state.Selected)
	}
}

func TestDecodeState_LegacySortNames(t *testing.T) {
	tests := []struct {
		raw      string
		expected models.SortOrder
	}{
		{"products_price_asc", models.SortPriceAsc},
		{"products_newest", models.SortNewest},
		{"price_desc", models.SortPriceDesc},
		{"trending", models.SortPopularity},
		{"", models.SortPopularity},
	}
	for _, tt := range tests {
		state, err := DecodeState("sort=" + tt.raw)
		if err != nil {
			t.Fatalf("DecodeState(sort=%q) error: %v", tt.raw, err)
		}
		if state.Sort != tt.expected {
			t.Errorf("sort %q normalized to %q, want %q", tt.raw, state.Sort, tt.expected)
		}
	}
}

func TestDecodeState_BadInputFallsBack(t *testing.T) {
	tests := []string{
		"range:price=abc-def",
		"page=banana",
		"page=-4",
	}
	for _, qs := range tests {
		state, err := DecodeState(qs)
		if err != nil {
			t.Fatalf("DecodeState(%q) error: %v", qs, err)
		}
		if !reflect.DeepEqual(state, models.NewRefinementState()) {
			t.Errorf("DecodeState(%q) = %+v, want pristine default", qs, state)
		}
	}

	// Structurally unparsable input surfaces invalid_refinement alongside the
	// default state so the caller can fall back without widening scope.
	state, err := DecodeState("filter:brand=%zz")
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Code != CodeInvalidRefinement {
		t.Fatalf("expected invalid_refinement, got %v", err)
	}
	if !reflect.DeepEqual(state, models.NewRefinementState()) {
		t.Fatalf("fallback state = %+v, want pristine default", state)
	}
}

// Round-trip law over canonical states: decode(encode(s)) == s, and a second
// encode of the decoded state reproduces the same string.
func TestURLState_PropertyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	sorts := []models.SortOrder{
		models.SortPopularity,
		models.SortNewest,
		models.SortPriceAsc,
		models.SortPriceDesc,
	}

	properties.Property("decode inverts encode", prop.ForAll(
		func(brands []string, minC, maxC int, hasRange bool, sortIdx, page int, query string) bool {
			state := models.NewRefinementState()
			if len(brands) > 0 {
				state.Selected["brand"] = brands
			}
			if hasRange {
				lo, hi := minC, maxC
				if lo > hi {
					lo, hi = hi, lo
				}
				state.Ranges["price"] = models.RangeBounds{
					Min: float64(lo), HasMin: true,
					Max: float64(hi), HasMax: true,
				}
			}
			state.Sort = sorts[sortIdx%len(sorts)]
			state.Page = page
			state.Query = query

			encoded := EncodeState(state)
			decoded, err := DecodeState(encoded)
			if err != nil {
				return false
			}
			if !reflect.DeepEqual(decoded, state) {
				return false
			}
			return EncodeState(decoded) == encoded
		},
		gen.SliceOfN(2, gen.OneGenOf(
			gen.Identifier(),
			gen.OneConstOf("Cart, Freestanding", "See-Through", `30" Built-In`),
		)),
		gen.IntRange(0, 5000),
		gen.IntRange(0, 5000),
		gen.Bool(),
		gen.IntRange(0, 3),
		gen.IntRange(1, 40),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestURLState_CommaInsideValue(t *testing.T) {
	// The literal comma joins multiple selections; a comma that is part of a
	// value stays percent-escaped so decode cannot re-split it.
	state := models.NewRefinementState()
	state.Selected["configuration"] = []string{"Cart, Freestanding", "Built-In"}

	encoded := EncodeState(state)
	want := "filter:configuration=Cart%2C+Freestanding,Built-In"
	if encoded != want {
		t.Fatalf("EncodeState() = %q, want %q", encoded, want)
	}

	decoded, err := DecodeState(encoded)
	if err != nil {
		t.Fatalf("DecodeState() error: %v", err)
	}
	got := decoded.Selected["configuration"]
	if !reflect.DeepEqual(got, []string{"Cart, Freestanding", "Built-In"}) {
		t.Fatalf("configuration = %v", got)
	}
}

func TestEscapeComponent_KeepsReadableSeparators(t *testing.T) {
	state := models.NewRefinementState()
	state.Selected["style"] = []string{"See-Through"}
	state.Query = "36 inch"

	encoded := EncodeState(state)
	decoded, err := DecodeState(encoded)
	if err != nil {
		t.Fatalf("DecodeState() error: %v", err)
	}
	if decoded.Query != "36 inch" {
		t.Fatalf("query round trip = %q", decoded.Query)
	}
	if decoded.Selected["style"][0] != "See-Through" {
		t.Fatalf("value round trip = %q", decoded.Selected["style"][0])
	}
}
