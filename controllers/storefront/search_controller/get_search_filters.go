package search_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
	"github.com/Emberline-Outdoor/emberline-search-backend/search"
	"github.com/Emberline-Outdoor/emberline-search-backend/services"
)

// filterDescriptor is the UI-facing shape of one filter definition: label,
// widget kind and grouping, without the source-field plumbing.
type filterDescriptor struct {
	Attribute string `json:"attribute"`
	Label     string `json:"label"`
	Kind      string `json:"kind"`
	Group     string `json:"group,omitempty"`
}

// GetSearchFilters godoc
// @Summary Get the active filter definitions for a page
// @Description Returns the filter list (labels, kinds, groupings) the storefront renders for a page handle, before any query runs.
// @Tags Storefront - Search
// @Produce json
// @Param handle query string true "Page handle"
// @Success 200 {object} models.ApiResponse{data=[]filterDescriptor}
// @Failure 404 {object} models.ApiResponse "Unknown page handle"
// @Router /store/search/filters [get]
func GetSearchFilters(c *gin.Context) {
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
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(c, "Failed to resolve page"))
		return
	}

	defs := searchService.Compiler().Registry().DefinitionsOrDefault(pc.FilterSetKey)
	descriptors := make([]filterDescriptor, 0, len(defs))
	for _, def := range defs {
		descriptors = append(descriptors, filterDescriptor{
			Attribute: def.Attribute,
			Label:     def.Label,
			Kind:      string(def.Kind),
			Group:     def.Group,
		})
	}

	c.JSON(http.StatusOK, models.SuccessResponse(c, "Filters fetched successfully", descriptors))
}
