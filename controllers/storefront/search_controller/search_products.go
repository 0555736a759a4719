package search_controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
	"github.com/Emberline-Outdoor/emberline-search-backend/search"
	"github.com/Emberline-Outdoor/emberline-search-backend/searchindex"
	"github.com/Emberline-Outdoor/emberline-search-backend/services"
)

var searchService *services.SearchService

// Init wires the shared search service. Called once from main before the
// routes are registered.
func Init(s *services.SearchService) {
	searchService = s
}

// SearchProducts godoc
// @Summary Search storefront products with facets
// @Description Runs a faceted search for a storefront page. Refinements come in as the canonical query-string state (filter:<attr>=v1,v2, range:<attr>=min-max, sort, page, q).
// @Tags Storefront - Search
// @Produce json
// @Param handle query string true "Page handle (category, brand, collection or search page)"
// @Param q query string false "Free-text search term"
// @Param sort query string false "Sort order (popularity, newest, price_asc, price_desc)" default(popularity)
// @Param page query int false "Page number" default(1)
// @Success 200 {object} models.ApiResponse{data=models.SearchResponse}
// @Failure 404 {object} models.ApiResponse "Unknown page handle"
// @Failure 502 {object} models.ApiResponse "Search backend failure"
// @Failure 504 {object} models.ApiResponse "Search backend timeout"
// @Router /store/search [get]
func SearchProducts(c *gin.Context) {
	handle := c.Query("handle")
	if handle == "" {
		c.JSON(http.StatusBadRequest, models.ErrorCodeResponse(c, search.CodeUnknownScope, "Missing page handle"))
		return
	}

	pc, err := services.ResolvePage(handle)
	if err != nil {
		if errors.Is(err, services.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorCodeResponse(c, search.CodeUnknownScope, "Unknown page"))
			return
		}
		log.Printf("ERROR resolving page %s: %v", handle, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(c, "Failed to resolve page"))
		return
	}

	state, err := search.DecodeState(c.Request.URL.RawQuery)
	if err != nil {
		// Malformed refinement input falls back to the broadest safe default
		// within the scoped page, never to a widened scope.
		log.Printf("Ignoring malformed refinement state for %s: %v", handle, err)
		state = models.NewRefinementState()
	}

	response, err := searchService.Search(c.Request.Context(), pc, state)
	if err != nil {
		respondSearchError(c, err)
		return
	}

	totalPages := (response.TotalCount + searchService.Compiler().PageSize() - 1) / searchService.Compiler().PageSize()
	c.JSON(http.StatusOK, models.PaginatedResponse(
		c,
		"Search results fetched successfully",
		response,
		&models.Pagination{
			Page:       state.Page,
			Limit:      searchService.Compiler().PageSize(),
			Total:      response.TotalCount,
			TotalPages: totalPages,
		},
	))
}

// respondSearchError maps typed errors onto the fixed machine-readable code
// set without leaking internal query structure.
func respondSearchError(c *gin.Context, err error) {
	var compileErr *search.CompileError
	if errors.As(err, &compileErr) {
		status := http.StatusBadRequest
		if compileErr.Code == search.CodeUnknownScope {
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorCodeResponse(c, compileErr.Code, "Invalid search request"))
		return
	}

	var backendErr *searchindex.BackendError
	if errors.As(err, &backendErr) {
		log.Printf("ERROR from search backend: %v", backendErr)
		status := http.StatusBadGateway
		if backendErr.Code == searchindex.CodeBackendTimeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, models.ErrorCodeResponse(c, backendErr.Code, "Search is temporarily unavailable, try again"))
		return
	}

	log.Printf("ERROR in search: %v", err)
	c.JSON(http.StatusInternalServerError, models.ErrorCodeResponse(c, searchindex.CodeBackendError, "Search failed"))
}
