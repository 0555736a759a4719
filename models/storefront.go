package models

import "time"

// Product is the catalog document shape as indexed in the search backend.
// Tags and Attributes carry the messy merchandising data the derived-field
// rules bucket at query time (free-text dimensions, compound values).
type Product struct {
	ID             string            `json:"id"`
	SKU            string            `json:"sku"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Brand          string            `json:"brand"`
	Category       string            `json:"category"`
	Collections    []string          `json:"collections,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"` // e.g. "width" -> `30"`, "fuel" -> "Natural Gas"
	Price          float64           `json:"price"`
	CompareAtPrice float64           `json:"compare_at_price,omitempty"`
	Published      bool              `json:"published"`
	ImageURL       string            `json:"image,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Hit is one matched document returned by the search index, trimmed to what
// the storefront product card needs.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score,omitempty"`
	Title string  `json:"title"`
	Brand string  `json:"brand,omitempty"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// SearchResponse is the payload of the storefront search endpoint.
type SearchResponse struct {
	Hits       []Hit         `json:"hits"`
	Facets     []FacetResult `json:"facets"`
	TotalCount int           `json:"total_count"`
}
