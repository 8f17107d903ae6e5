package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/metrics"
)

// RequestFunc is the remote store call shape the client middlewares wrap.
type RequestFunc func(ctx context.Context, method, endpoint string, requestBody, response interface{}) error

type Middleware func(next RequestFunc) RequestFunc

// StoreMetrics records every remote store call. The endpoint label is the
// path without query parameters to keep cardinality bounded; the status
// comes from the typed error when the call fails.
func StoreMetrics() Middleware {
	return func(next RequestFunc) RequestFunc {
		return func(ctx context.Context, method, endpoint string, requestBody, response interface{}) error {
			start := time.Now()
			err := next(ctx, method, endpoint, requestBody, response)

			status := 200
			if err != nil {
				status = 0
				var remote *storage.RemoteError
				if errors.As(err, &remote) {
					status = remote.Status
				}
			}
			if i := strings.Index(endpoint, "?"); i >= 0 {
				endpoint = endpoint[:i]
			}
			metrics.RecordStoreRequest(method, endpoint, status, time.Since(start))
			return err
		}
	}
}
