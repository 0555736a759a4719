package services

import (
	"context"
	"time"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
	"github.com/Emberline-Outdoor/emberline-search-backend/search"
	"github.com/Emberline-Outdoor/emberline-search-backend/searchindex"
)

// SearchService wires the query compiler to the search backend. The compiler
// is pure and stateless; the only blocking work is the single backend round
// trip, which runs under a bounded timeout.
type SearchService struct {
	compiler *search.Compiler
	backend  searchindex.Backend
	timeout  time.Duration
}

func NewSearchService(compiler *search.Compiler, backend searchindex.Backend, timeout time.Duration) *SearchService {
	if timeout <= 0 {
		timeout = searchindex.DefaultRequestTimeout
	}
	return &SearchService{compiler: compiler, backend: backend, timeout: timeout}
}

// Compiler exposes the underlying compiler (the filters endpoint reads its
// registry).
func (s *SearchService) Compiler() *search.Compiler { return s.compiler }

// Search compiles and executes one storefront search request and normalizes
// the raw aggregation buckets into UI-ready facet lists. Compile errors and
// backend errors pass through typed so the HTTP layer can map them to the
// fixed error-code set.
func (s *SearchService) Search(ctx context.Context, pc models.PageContext, state models.RefinementState) (*models.SearchResponse, error) {
	doc, err := s.compiler.Compile(pc, state)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.backend.Execute(ctx, doc)
	if err != nil {
		return nil, err
	}

	defs := s.compiler.Registry().DefinitionsOrDefault(pc.FilterSetKey)
	facets := make([]models.FacetResult, 0, len(defs))
	for _, def := range defs {
		if def.Kind == models.FilterKindRange {
			bounds := result.Bounds[def.Attribute]
			facets = append(facets, search.NormalizeRange(def, bounds.Min, bounds.Max))
			continue
		}
		facets = append(facets, search.Normalize(def, result.Buckets[def.Attribute]))
	}

	return &models.SearchResponse{
		Hits:       result.Hits,
		Facets:     facets,
		TotalCount: result.Total,
	}, nil
}
