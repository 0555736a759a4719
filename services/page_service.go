package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	page_cache "github.com/Emberline-Outdoor/emberline-search-backend/cache"
	"github.com/Emberline-Outdoor/emberline-search-backend/config"
	"github.com/Emberline-Outdoor/emberline-search-backend/models"
	"github.com/Emberline-Outdoor/emberline-search-backend/search"
)

// ErrPageNotFound reports an unknown page handle.
var ErrPageNotFound = errors.New("page not found")

const pageRedisTTL = 10 * time.Minute

// ResolvePage looks up the page context for a storefront handle:
// in-process cache, then Redis, then the pages table.
func ResolvePage(handle string) (models.PageContext, error) {
	if pc, ok := page_cache.Get(handle); ok {
		return pc, nil
	}

	redisKey := "page:" + handle
	if raw, err := config.RedisClient.Get(config.Ctx, redisKey).Result(); err == nil {
		var pc models.PageContext
		if err := json.Unmarshal([]byte(raw), &pc); err == nil {
			page_cache.Set(handle, pc)
			return pc, nil
		}
	}

	pc, err := fetchPageFromDB(handle)
	if err != nil {
		return models.PageContext{}, err
	}

	if encoded, err := json.Marshal(pc); err == nil {
		if err := config.RedisClient.Set(config.Ctx, redisKey, encoded, pageRedisTTL).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("⚠️ Failed to cache page %s in Redis: %v", handle, err)
		}
	}
	page_cache.Set(handle, pc)

	return pc, nil
}

func fetchPageFromDB(handle string) (models.PageContext, error) {
	ctx, cancel := config.WithTimeout()
	defer cancel()

	query := `
		SELECT
			handle,
			display_name,
			scope_type,
			COALESCE(scope_value, '') AS scope_value,
			filter_set_key
		FROM pages
		WHERE handle = ?
	`

	var row struct {
		Handle       string `gorm:"column:handle"`
		DisplayName  string `gorm:"column:display_name"`
		ScopeType    string `gorm:"column:scope_type"`
		ScopeValue   string `gorm:"column:scope_value"`
		FilterSetKey string `gorm:"column:filter_set_key"`
	}

	result := config.PagesGorm.WithContext(ctx).Raw(query, handle).Scan(&row)
	if result.Error != nil {
		return models.PageContext{}, result.Error
	}
	if result.RowsAffected == 0 || row.Handle == "" {
		return models.PageContext{}, fmt.Errorf("%w: %s", ErrPageNotFound, handle)
	}

	return models.PageContext{
		Handle:       row.Handle,
		DisplayName:  row.DisplayName,
		ScopeType:    models.ScopeType(row.ScopeType),
		ScopeValue:   row.ScopeValue,
		FilterSetKey: row.FilterSetKey,
	}, nil
}

// LoadCatalog reads the known scope values (categories, brands, collections)
// the base-constraint mapper fails closed against. Called once at boot.
func LoadCatalog(db *gorm.DB) (search.Catalog, error) {
	ctx, cancel := config.WithTimeout()
	defer cancel()

	query := `
		SELECT kind, name
		FROM catalog_entries
		ORDER BY kind, name
	`

	var rows []struct {
		Kind string `gorm:"column:kind"`
		Name string `gorm:"column:name"`
	}
	if err := db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return search.Catalog{}, err
	}

	var categories, brands, collections []string
	for _, r := range rows {
		switch r.Kind {
		case "category":
			categories = append(categories, r.Name)
		case "brand":
			brands = append(brands, r.Name)
		case "collection":
			collections = append(collections, r.Name)
		}
	}

	return search.NewCatalog(categories, brands, collections), nil
}
