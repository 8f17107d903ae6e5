package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surplusmarket_api/config/values"
	"surplusmarket_api/internal/auth"
	"surplusmarket_api/internal/market/app/web/handlers"
	"surplusmarket_api/internal/market/business"
	"surplusmarket_api/internal/market/session"
	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/pkg/logger"
)

const testSecret = "routes-test-secret"

// newTestHandler assembles the handler exactly as the server does, on a
// seeded memory store.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewLogger(io.Discard, "[test]")

	store := storage.NewMemoryStore()
	store.Load(storage.SeedRows())

	v := values.MarketValues{}
	v.ApplyDefaults()

	manager := business.NewManager(store, nil, log, v)
	require.NoError(t, manager.Refresh(context.Background()))
	t.Cleanup(manager.Flush)

	sessions := session.NewContext(log)

	return SetupRoutes(testSecret,
		handlers.NewListingsHandler(manager, v, log),
		handlers.NewSessionHandler(nil, sessions, log),
		handlers.NewModerationHandler(manager, log),
		handlers.NewMediaHandler(manager, log),
	)
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	claims := &auth.Claims{
		Email: subject + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t)

	// Serve one API request first so the counters exist.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRoutesServeTheSeededCatalogue(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, len(storage.SeedRows()), resp.Count)
}

func TestMutationsPassThroughSessionMiddleware(t *testing.T) {
	h := newTestHandler(t)

	draft := business.Draft{Title: "Oak flooring boards", Location: "Leiden", Price: 150}
	body, err := json.Marshal(draft)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/listings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous mutation")

	req = httptest.NewRequest(http.MethodPost, "/api/listings", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearer(t, "seller-9"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var view struct {
		SellerID string `json:"seller_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "seller-9", view.SellerID, "the bearer's subject owns the listing")
}

func TestUnknownRouteIs404(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
