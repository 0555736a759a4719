package config

import (
	"log"
	"os"
	"time"

	"github.com/Emberline-Outdoor/emberline-search-backend/search"
	"github.com/Emberline-Outdoor/emberline-search-backend/searchindex"
)

var (
	Compiler      *search.Compiler
	SearchBackend searchindex.Backend
)

// InitSearch loads the authored filter/rules/policy configuration, builds the
// compiler and connects the search backend. SEARCH_BACKEND selects embedded
// (bleve, default) or remote (external index service).
func InitSearch(catalog search.Catalog) {
	cfg, err := search.LoadConfig(os.Getenv("SEARCH_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("❌ Failed to load search config: %v", err)
	}

	rules, err := search.NewRuleset(cfg.DerivedFields)
	if err != nil {
		log.Fatalf("❌ Failed to compile derivation rules: %v", err)
	}

	registry, err := search.NewRegistry(cfg.FilterSets, rules)
	if err != nil {
		log.Fatalf("❌ Invalid filter schema registry: %v", err)
	}

	Compiler, err = search.NewCompiler(search.CompilerConfig{
		Registry: registry,
		Rules:    rules,
		Policy:   cfg.Policy,
		Catalog:  catalog,
	})
	if err != nil {
		log.Fatalf("❌ Failed to build query compiler: %v", err)
	}

	switch getEnv("SEARCH_BACKEND", "embedded") {
	case "remote":
		baseURL := os.Getenv("SEARCH_INDEX_URL")
		if baseURL == "" {
			log.Fatal("❌ SEARCH_BACKEND=remote requires SEARCH_INDEX_URL")
		}
		timeout := searchindex.DefaultRequestTimeout
		if raw := os.Getenv("SEARCH_TIMEOUT"); raw != "" {
			if d, err := time.ParseDuration(raw); err == nil {
				timeout = d
			}
		}
		SearchBackend = searchindex.NewRemoteBackend(baseURL, timeout)
		log.Println("✅ Remote search backend configured:", baseURL)

	default:
		embedded, err := searchindex.NewEmbeddedBackend(getEnv("SEARCH_INDEX_PATH", "./data/products.bleve"), rules, cfg.Policy)
		if err != nil {
			log.Fatalf("❌ Failed to open embedded search index: %v", err)
		}
		SearchBackend = embedded
		count, _ := embedded.DocCount()
		log.Printf("✅ Embedded search index opened (%d products)", count)
	}
}
