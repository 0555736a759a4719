package storefront_routes

import (
	store_page "github.com/Emberline-Outdoor/emberline-search-backend/controllers/storefront/page_controller"
	store_search "github.com/Emberline-Outdoor/emberline-search-backend/controllers/storefront/search_controller"
	"github.com/gin-gonic/gin"
)

func SetupStorefrontRoutes(router *gin.RouterGroup) {
	// Storefront routes (public, no auth required)
	store := router.Group("/store")

	// Faceted search
	searchGroup := store.Group("/search")
	{
		searchGroup.GET("", store_search.SearchProducts)           // Results + facet counts
		searchGroup.GET("/filters", store_search.GetSearchFilters) // Active filter definitions
	}

	// Page metadata
	store.GET("/pages/:handle", store_page.GetPageByHandle)
}
