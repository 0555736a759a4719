package page_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
	"github.com/Emberline-Outdoor/emberline-search-backend/search"
	"github.com/Emberline-Outdoor/emberline-search-backend/services"
)

// GetPageByHandle godoc
// @Summary Get page metadata by handle
// @Tags Storefront - Pages
// @Produce json
// @Param handle path string true "Page handle"
// @Success 200 {object} models.ApiResponse{data=models.PageContext}
// @Failure 404 {object} models.ApiResponse "Unknown page handle"
// @Router /store/pages/{handle} [get]
func GetPageByHandle(c *gin.Context) {
	handle := c.Param("handle")

	pc, err := services.ResolvePage(handle)
	if err != nil {
		if errors.Is(err, services.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorCodeResponse(c, search.CodeUnknownScope, "Unknown page"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(c, "Failed to resolve page"))
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(c, "Page fetched successfully", pc))
}
