package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// DefaultRequestTimeout bounds the single network call per search request.
const DefaultRequestTimeout = 5 * time.Second

// RemoteBackend ships the compiled query document as JSON to an external
// index service and decodes the hits/aggregations envelope it returns.
type RemoteBackend struct {
	baseURL string
	client  *http.Client
}

// NewRemoteBackend points at an index service base URL, e.g.
// http://search.internal:9200/products.
func NewRemoteBackend(baseURL string, timeout time.Duration) *RemoteBackend {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &RemoteBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Execute POSTs the query document to <base>/_search. Timeouts surface as
// backend_timeout, everything else as backend_error; both are retryable since
// the call is an idempotent read.
func (b *RemoteBackend) Execute(ctx context.Context, doc *models.QueryDocument) (*Result, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, &BackendError{Code: CodeBackendError, Err: fmt.Errorf("encode query: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/_search", bytes.NewReader(body))
	if err != nil {
		return nil, &BackendError{Code: CodeBackendError, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, &BackendError{Code: CodeBackendTimeout, Err: err}
		}
		return nil, &BackendError{Code: CodeBackendError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &BackendError{
			Code: CodeBackendError,
			Err:  fmt.Errorf("index service returned %d: %s", resp.StatusCode, snippet),
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &BackendError{Code: CodeBackendError, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &result, nil
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
