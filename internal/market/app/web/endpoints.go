package web

import (
	"net/http"

	"surplusmarket_api/internal/auth"
	"surplusmarket_api/internal/market/app/web/handlers"
	"surplusmarket_api/metrics"
	"surplusmarket_api/pkg/middleware"
)

// SetupRoutes assembles the served handler: every handler's routes plus the
// metrics and health endpoints, wrapped in the session and metrics
// middleware. The session middleware runs innermost so every handler sees
// the resolved actor; anonymous requests pass through and fail only the
// gates that need an identity.
func SetupRoutes(jwtSecret string, hs ...handlers.Handler) http.Handler {
	mux := http.NewServeMux()
	for _, h := range hs {
		h.RegisterRoutes(mux)
	}

	mux.Handle("GET /metrics", metrics.MetricsHandler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	var handler http.Handler = mux
	handler = auth.SessionMiddleware(jwtSecret)(handler)
	handler = middleware.PrometheusMiddleware(handler)
	return handler
}
