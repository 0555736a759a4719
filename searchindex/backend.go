package searchindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// Machine-readable backend error codes.
const (
	CodeBackendTimeout = "backend_timeout"
	CodeBackendError   = "backend_error"
)

// BackendError is a failed round trip to the search index: timeout, transport
// failure or a non-success response. It is distinct from a compile error and
// retryable by the caller (the compiler never retries internally).
type BackendError struct {
	Code string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("search backend (%s): %v", e.Code, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a backend timeout.
func IsTimeout(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Code == CodeBackendTimeout
}

// MinMax carries the observed bounds of a min_max aggregation.
type MinMax struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Result is the raw outcome of one executed query document: matched hits plus
// the requested aggregation buckets, keyed by aggregation name.
type Result struct {
	Hits    []models.Hit                  `json:"hits"`
	Total   int                           `json:"total"`
	Buckets map[string][]models.AggBucket `json:"aggregations,omitempty"`
	Bounds  map[string]MinMax             `json:"bounds,omitempty"`
}

// Backend executes one compiled query document against a search index in a
// single round trip. Implementations must honor the context deadline and
// return *BackendError on any failure.
type Backend interface {
	Execute(ctx context.Context, doc *models.QueryDocument) (*Result, error)
}
