package search

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// Query-string keys. Refinement kinds get collision-free prefixes so a filter
// attribute can never shadow the reserved keys.
const (
	filterKeyPrefix = "filter:"
	rangeKeyPrefix  = "range:"
	sortKey         = "sort"
	pageKey         = "page"
	queryKey        = "q"
)

// indexNamePrefix is stripped off incoming sort values: older storefront
// builds sent the full index-qualified sort name (products_price_asc).
const indexNamePrefix = "products_"

// EncodeState writes a refinement state as its canonical query string:
// filter:<attr>=v1,v2 (selection order kept), range:<attr>=min-max,
// sort=<name> (omitted at the popularity default), page=<n> (omitted when 1),
// q=<term>. Keys come out sorted, so equal states encode to equal strings.
func EncodeState(state models.RefinementState) string {
	type pair struct{ key, value string }
	var pairs []pair

	for attr, values := range state.Selected {
		if len(values) == 0 {
			continue
		}
		escaped := make([]string, len(values))
		for i, v := range values {
			escaped[i] = escapeComponent(v)
		}
		pairs = append(pairs, pair{filterKeyPrefix + escapeComponent(attr), strings.Join(escaped, ",")})
	}

	for attr, bounds := range state.Ranges {
		if !bounds.HasMin && !bounds.HasMax {
			continue
		}
		var b strings.Builder
		if bounds.HasMin {
			b.WriteString(strconv.FormatFloat(bounds.Min, 'f', -1, 64))
		}
		b.WriteByte('-')
		if bounds.HasMax {
			b.WriteString(strconv.FormatFloat(bounds.Max, 'f', -1, 64))
		}
		pairs = append(pairs, pair{rangeKeyPrefix + escapeComponent(attr), b.String()})
	}

	if q := strings.TrimSpace(state.Query); q != "" {
		pairs = append(pairs, pair{queryKey, escapeComponent(q)})
	}
	if state.Sort != "" && state.Sort != models.SortPopularity {
		pairs = append(pairs, pair{sortKey, string(state.Sort)})
	}
	if state.Page > 1 {
		pairs = append(pairs, pair{pageKey, strconv.Itoa(state.Page)})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + "=" + p.value
	}
	return strings.Join(parts, "&")
}

// DecodeState parses a query string back into a refinement state. Unknown or
// foreign keys are ignored, never an error; an unparsable query string yields
// the empty default state plus an invalid_refinement compile error so callers
// can fall back without widening scope. Filter values are split on the
// literal join commas while still escaped, so a comma inside a value (%2C)
// survives the round trip.
func DecodeState(qs string) (models.RefinementState, error) {
	state := models.NewRefinementState()

	for _, part := range strings.Split(strings.TrimPrefix(qs, "?"), "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return models.NewRefinementState(), &CompileError{Code: CodeInvalidRefinement, Detail: "unparsable query string"}
		}

		switch {
		case strings.HasPrefix(key, filterKeyPrefix):
			attr := strings.TrimPrefix(key, filterKeyPrefix)
			if attr == "" {
				continue
			}
			for _, piece := range strings.Split(rawValue, ",") {
				if piece == "" {
					continue
				}
				v, err := url.QueryUnescape(piece)
				if err != nil {
					return models.NewRefinementState(), &CompileError{Code: CodeInvalidRefinement, Detail: "unparsable query string"}
				}
				state.Selected[attr] = append(state.Selected[attr], v)
			}

		case strings.HasPrefix(key, rangeKeyPrefix):
			attr := strings.TrimPrefix(key, rangeKeyPrefix)
			if attr == "" {
				continue
			}
			if bounds, ok := parseBounds(rawValue); ok {
				state.Ranges[attr] = bounds
			}

		case key == sortKey:
			state.Sort = normalizeSort(rawValue)

		case key == pageKey:
			if n, err := strconv.Atoi(rawValue); err == nil && n > 1 {
				state.Page = n
			}

		case key == queryKey:
			v, err := url.QueryUnescape(rawValue)
			if err != nil {
				return models.NewRefinementState(), &CompileError{Code: CodeInvalidRefinement, Detail: "unparsable query string"}
			}
			state.Query = v
		}
	}

	return state, nil
}

// parseBounds reads "min-max" with either side optional ("100-", "-500").
func parseBounds(raw string) (models.RangeBounds, bool) {
	minPart, maxPart, found := strings.Cut(raw, "-")
	if !found {
		return models.RangeBounds{}, false
	}
	var bounds models.RangeBounds
	if minPart != "" {
		v, err := strconv.ParseFloat(minPart, 64)
		if err != nil {
			return models.RangeBounds{}, false
		}
		bounds.Min, bounds.HasMin = v, true
	}
	if maxPart != "" {
		v, err := strconv.ParseFloat(maxPart, 64)
		if err != nil {
			return models.RangeBounds{}, false
		}
		bounds.Max, bounds.HasMax = v, true
	}
	if !bounds.HasMin && !bounds.HasMax {
		return models.RangeBounds{}, false
	}
	return bounds, true
}

// normalizeSort strips the index-name prefix and maps unknown names to the
// popularity default.
func normalizeSort(raw string) models.SortOrder {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), indexNamePrefix)
	switch models.SortOrder(raw) {
	case models.SortNewest:
		return models.SortNewest
	case models.SortPriceAsc:
		return models.SortPriceAsc
	case models.SortPriceDesc:
		return models.SortPriceDesc
	default:
		return models.SortPopularity
	}
}

// escapeComponent escapes what would break query-string structure. Colons
// stay readable (filter:brand). Commas must stay escaped: the literal comma
// is the multi-value join, and a comma inside a value would otherwise be
// re-split on decode.
func escapeComponent(v string) string {
	escaped := url.QueryEscape(v)
	return strings.ReplaceAll(escaped, "%3A", ":")
}
