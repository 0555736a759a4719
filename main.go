// @title Emberline Storefront Search API
// @version 1.0
// @description Faceted product search backend for the Emberline storefront
// @host localhost:8082
// @BasePath /api/v1
// @schemes http
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Emberline-Outdoor/emberline-search-backend/config"
	"github.com/Emberline-Outdoor/emberline-search-backend/controllers/storefront/search_controller"
	"github.com/Emberline-Outdoor/emberline-search-backend/middleware"
	"github.com/Emberline-Outdoor/emberline-search-backend/routes/storefront_routes"
	"github.com/Emberline-Outdoor/emberline-search-backend/services"
)

func init() {
	_ = godotenv.Load()
}

func main() {
	// Connect to DB
	config.InitDB()
	// Redis connection
	config.ConnectRedis()

	// Load the known scope values the compiler fails closed against
	catalog, err := services.LoadCatalog(config.PagesGorm)
	if err != nil {
		log.Fatalf("❌ Failed to load catalog entries: %v", err)
	}

	// ✅ Build the query compiler and connect the search backend
	config.InitSearch(catalog)
	log.Println("✅ Query compiler initialized")

	searchService := services.NewSearchService(config.Compiler, config.SearchBackend, 0)
	search_controller.Init(searchService)

	corsCfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	router := gin.Default()
	router.Use(cors.New(corsCfg))

	// Register API routes
	api := router.Group("/api/v1")

	// Public storefront (rate limited per IP)
	api.Use(middleware.RateLimiter(300, time.Minute))
	storefront_routes.SetupStorefrontRoutes(api)
	log.Println("✅ Storefront routes registered")

	// Health check for the load balancer
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	fmt.Println("🚀 Server is running on http://localhost:8082")
	router.Run(":8082")
}
