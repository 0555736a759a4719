package main

import (
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Emberline-Outdoor/emberline-search-backend/config"
	"github.com/Emberline-Outdoor/emberline-search-backend/models"
	"github.com/Emberline-Outdoor/emberline-search-backend/search"
	"github.com/Emberline-Outdoor/emberline-search-backend/searchindex"
)

// Seeds the pages table, the catalog_entries table and the embedded product
// index with a small demo catalog. Run once for local development:
//
//	go run ./cmd/seed
func main() {
	_ = godotenv.Load()

	config.InitDB()
	defer config.CloseDB()

	if err := createTables(); err != nil {
		log.Fatalf("❌ Failed to create tables: %v", err)
	}
	if err := seedPages(); err != nil {
		log.Fatalf("❌ Failed to seed pages: %v", err)
	}
	if err := seedCatalogEntries(); err != nil {
		log.Fatalf("❌ Failed to seed catalog entries: %v", err)
	}
	if err := seedProductIndex(); err != nil {
		log.Fatalf("❌ Failed to seed product index: %v", err)
	}

	log.Println("✅ Seed complete")
}

func createTables() error {
	ctx, cancel := config.WithTimeout()
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id UUID PRIMARY KEY,
			handle TEXT UNIQUE NOT NULL,
			display_name TEXT NOT NULL,
			scope_type TEXT NOT NULL,
			scope_value TEXT,
			filter_set_key TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_entries (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			UNIQUE (kind, name)
		)`,
	}
	for _, stmt := range statements {
		if _, err := config.PagesDB.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type pageRow struct {
	handle       string
	displayName  string
	scopeType    models.ScopeType
	scopeValue   string
	filterSetKey string
}

func seedPages() error {
	ctx, cancel := config.WithTimeout()
	defer cancel()

	pages := []pageRow{
		{"grills", "Grills", models.ScopeCategory, "Grills", "grills"},
		{"fireplaces", "Fireplaces", models.ScopeCategory, "Fireplaces", "fireplaces"},
		{"outdoor-refrigeration", "Outdoor Refrigeration", models.ScopeCategory, "Refrigeration", "refrigeration"},
		{"patio-heaters", "Patio Heaters", models.ScopeCategory, "Patio Heaters", "patio-heating"},
		{"bull", "Bull Outdoor Products", models.ScopeBrand, "Bull", "grills"},
		{"blaze", "Blaze Grills", models.ScopeBrand, "Blaze", "grills"},
		{"outdoor-kitchen", "Outdoor Kitchen", models.ScopeNavGroup, "outdoor-kitchen", "grills"},
		{"backyard-comfort", "Backyard Comfort", models.ScopeNavGroup, "backyard-comfort", "patio-heating"},
		{"sale", "On Sale", models.ScopeOnSale, "", search.DefaultFilterSetKey},
		{"new-arrivals", "New Arrivals", models.ScopeNewArrivals, "", search.DefaultFilterSetKey},
		{"search", "Search", models.ScopeSearch, "", search.DefaultFilterSetKey},
	}

	for _, p := range pages {
		_, err := config.PagesDB.Exec(ctx, `
			INSERT INTO pages (id, handle, display_name, scope_type, scope_value, filter_set_key)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
			ON CONFLICT (handle) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				scope_type = EXCLUDED.scope_type,
				scope_value = EXCLUDED.scope_value,
				filter_set_key = EXCLUDED.filter_set_key
		`, uuid.New(), p.handle, p.displayName, string(p.scopeType), p.scopeValue, p.filterSetKey)
		if err != nil {
			return err
		}
	}
	log.Printf("✅ Seeded %d pages", len(pages))
	return nil
}

func seedCatalogEntries() error {
	ctx, cancel := config.WithTimeout()
	defer cancel()

	entries := map[string][]string{
		"category":   {"Grills", "Fireplaces", "Refrigeration", "Patio Heaters"},
		"brand":      {"Bull", "Blaze", "Napoleon", "Summerset", "Bromic"},
		"collection": {"Bull Grills", "Bull Outdoor Products", "Bull Accessories", "Outdoor Kitchens", "Built-In Grills", "Side Burners", "Patio Heaters", "Fire Pits", "Outdoor Fireplaces"},
	}

	count := 0
	for kind, names := range entries {
		for _, name := range names {
			_, err := config.PagesDB.Exec(ctx, `
				INSERT INTO catalog_entries (id, kind, name)
				VALUES ($1, $2, $3)
				ON CONFLICT (kind, name) DO NOTHING
			`, uuid.New(), kind, name)
			if err != nil {
				return err
			}
			count++
		}
	}
	log.Printf("✅ Seeded %d catalog entries", count)
	return nil
}

func seedProductIndex() error {
	cfg, err := search.LoadConfig(os.Getenv("SEARCH_CONFIG_FILE"))
	if err != nil {
		return err
	}
	rules, err := search.NewRuleset(cfg.DerivedFields)
	if err != nil {
		return err
	}

	indexPath := os.Getenv("SEARCH_INDEX_PATH")
	if indexPath == "" {
		indexPath = "./data/products.bleve"
	}
	backend, err := searchindex.NewEmbeddedBackend(indexPath, rules, cfg.Policy)
	if err != nil {
		return err
	}
	defer backend.Close()

	now := time.Now().UTC()
	products := demoProducts(now)
	for _, p := range products {
		if err := backend.IndexProduct(p); err != nil {
			return err
		}
	}

	count, _ := backend.DocCount()
	log.Printf("✅ Indexed %d products (index now holds %d)", len(products), count)
	return nil
}

// demoProducts carries deliberately messy merchandising data (free-text
// widths, mixed-case tags) so the derivation rules have something to chew on.
func demoProducts(now time.Time) []models.Product {
	return []models.Product{
		{
			ID: "p-1001", SKU: "BG-87048", Title: "Bull Angus 30\" Built-In Grill",
			Brand: "Bull", Category: "Grills",
			Collections: []string{"Bull Grills", "Built-In Grills"},
			Tags:        []string{"Natural Gas", "built-in"},
			Attributes:  map[string]string{"width": `30"`, "fuel": "Natural Gas", "configuration": "built-in", "btu": "75000"},
			Price:       2899, CompareAtPrice: 3199, Published: true,
			CreatedAt: now.AddDate(0, 0, -10),
		},
		{
			ID: "p-1002", SKU: "BG-44000", Title: "Bull Steer 24 in Compact Grill",
			Brand: "Bull", Category: "Grills",
			Collections: []string{"Bull Grills"},
			Tags:        []string{"propane"},
			Attributes:  map[string]string{"width": "24 in", "fuel": "Propane", "configuration": "freestanding", "btu": "45000"},
			Price:       1599, Published: true,
			CreatedAt: now.AddDate(0, -2, 0),
		},
		{
			ID: "p-1003", SKU: "BLZ-4LTE", Title: "Blaze Premium LTE 32-Inch Grill",
			Brand: "Blaze", Category: "Grills",
			Collections: []string{"Built-In Grills"},
			Tags:        []string{"natural-gas"},
			Attributes:  map[string]string{"width": "32-inch", "configuration": "built-in", "btu": "56000"},
			Price:       2199, CompareAtPrice: 2499, Published: true,
			CreatedAt: now.AddDate(0, -1, 0),
		},
		{
			ID: "p-1004", SKU: "NAP-P500", Title: "Napoleon Prestige 500 Freestanding Grill",
			Brand: "Napoleon", Category: "Grills",
			Tags:       []string{"Propane", "freestanding"},
			Attributes: map[string]string{"width": "45.5", "configuration": "freestanding", "btu": "48000"},
			Price:      1999, Published: true,
			CreatedAt: now.AddDate(0, 0, -5),
		},
		{
			ID: "p-2001", SKU: "NAP-GX36", Title: "Napoleon Grandville 36\" Direct Vent Fireplace",
			Brand: "Napoleon", Category: "Fireplaces",
			Collections: []string{"Outdoor Fireplaces"},
			Tags:        []string{"direct-vent", "natural gas"},
			Attributes:  map[string]string{"width": `36"`},
			Price:       2450, Published: true,
			CreatedAt: now.AddDate(0, -6, 0),
		},
		{
			ID: "p-2002", SKU: "EMB-VF26", Title: "Emberline Vent-Free 26 Inch Firebox",
			Brand: "Emberline", Category: "Fireplaces",
			Tags:       []string{"Vent-Free", "see-through"},
			Attributes: map[string]string{"width": "26 inch"},
			Price:      999, CompareAtPrice: 1299, Published: true,
			CreatedAt: now.AddDate(0, 0, -40),
		},
		{
			ID: "p-3001", SKU: "SUM-SSRFR", Title: "Summerset 24\" Outdoor Rated Refrigerator",
			Brand: "Summerset", Category: "Refrigeration",
			Collections: []string{"Outdoor Kitchens"},
			Attributes:  map[string]string{"capacity": "5.3 cu ft", "configuration": "built-in"},
			Price:       1249, Published: true,
			CreatedAt: now.AddDate(0, -3, 0),
		},
		{
			ID: "p-3002", SKU: "BULL-13700", Title: "Bull Premium Outdoor Refrigerator",
			Brand: "Bull", Category: "Refrigeration",
			Collections: []string{"Bull Outdoor Products", "Outdoor Kitchens"},
			Attributes:  map[string]string{"capacity": "4.4", "configuration": "built-in"},
			Price:       1099, Published: true,
			CreatedAt: now.AddDate(0, 0, -3),
		},
		{
			ID: "p-4001", SKU: "BRM-TH500", Title: "Bromic Tungsten Smart-Heat 500 Patio Heater",
			Brand: "Bromic", Category: "Patio Heaters",
			Collections: []string{"Patio Heaters"},
			Tags:        []string{"natural gas"},
			Attributes:  map[string]string{"btu": "43000 BTU", "mount": "wall-mounted"},
			Price:       1795, Published: true,
			CreatedAt: now.AddDate(0, -4, 0),
		},
		{
			ID: "p-4002", SKU: "BRM-PH38", Title: "Bromic Portable 38,500 BTU Heater",
			Brand: "Bromic", Category: "Patio Heaters",
			Collections: []string{"Patio Heaters"},
			Tags:        []string{"propane", "portable"},
			Attributes:  map[string]string{"btu": "38500", "mount": "freestanding"},
			Price:       899, CompareAtPrice: 999, Published: true,
			CreatedAt: now.AddDate(0, 0, -12),
		},
		{
			// Unpublished: must never surface in storefront results.
			ID: "p-5001", SKU: "QA-0001", Title: "QA Test Grill",
			Brand: "Sample House", Category: "Grills",
			Collections: []string{"Internal QA"},
			Attributes:  map[string]string{"width": "n/a"},
			Price:       1, Published: false,
			CreatedAt: now,
		},
	}
}
