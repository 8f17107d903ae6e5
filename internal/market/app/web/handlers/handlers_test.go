package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"surplusmarket_api/config/values"
	"surplusmarket_api/internal/auth"
	"surplusmarket_api/internal/market/business"
	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/internal/market/session"
	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/pkg/logger"
)

const testSecret = "handlers-test-secret"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixtureConfig selects the optional collaborators a test needs. Zero value
// gives an empty store, no auth service and no file store.
type fixtureConfig struct {
	rows  []models.ListingRow
	files storage.FileStore
	auth  storage.AuthService
}

// fixture is a served marketplace on a memory store: all four handlers
// registered, session middleware in front, same wiring as the real server.
type fixture struct {
	t        *testing.T
	manager  *business.Manager
	sessions *session.Context
	handler  http.Handler
}

func newFixture(t *testing.T, cfg fixtureConfig) *fixture {
	t.Helper()
	log := logger.NewLogger(io.Discard, "[test]")

	store := storage.NewMemoryStore()
	store.Load(cfg.rows)

	v := values.MarketValues{}
	v.ApplyDefaults()

	manager := business.NewManager(store, cfg.files, log, v)
	require.NoError(t, manager.Refresh(context.Background()))
	t.Cleanup(manager.Flush)

	sessions := session.NewContext(log)

	mux := http.NewServeMux()
	NewListingsHandler(manager, v, log).RegisterRoutes(mux)
	NewSessionHandler(cfg.auth, sessions, log).RegisterRoutes(mux)
	NewModerationHandler(manager, log).RegisterRoutes(mux)
	NewMediaHandler(manager, log).RegisterRoutes(mux)

	return &fixture{
		t:        t,
		manager:  manager,
		sessions: sessions,
		handler:  auth.SessionMiddleware(testSecret)(mux),
	}
}

// do serves one request. A non-empty token rides in the Authorization
// header; a non-nil body is marshalled as JSON.
func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	f.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(f.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// doRaw serves one request with the body as given, for malformed payloads.
func (f *fixture) doRaw(method, path, token, body string) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// id resolves a listing's local id by title, hidden listings included.
func (f *fixture) id(title string) string {
	f.t.Helper()
	moderator := &models.Actor{ID: "lookup", AppMetadata: models.Metadata{"admin": true}}
	moderator.Resolve()
	for _, l := range f.manager.Visible(moderator, business.DefaultQuery()) {
		if l.Title == title {
			return l.ID
		}
	}
	f.t.Fatalf("listing %q not found", title)
	return ""
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// signToken mints a store-shaped access token the session middleware will
// accept.
func signToken(t *testing.T, subject, email string, admin bool) string {
	t.Helper()
	claims := &auth.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	if admin {
		claims.AppMetadata = models.Metadata{"admin": true}
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func sellerToken(t *testing.T) string {
	return signToken(t, "seller-1", "seller@example.com", false)
}

func strangerToken(t *testing.T) string {
	return signToken(t, "stranger-1", "stranger@example.com", false)
}

func adminToken(t *testing.T) string {
	return signToken(t, "admin-1", "admin@example.com", true)
}

func strPtr(s string) *string { return &s }

// testRow builds a plausible remote row; mutate tweaks the fields a case
// cares about.
func testRow(id int64, title string, mutate func(*models.ListingRow)) models.ListingRow {
	posted := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour)
	row := models.ListingRow{
		ID:        models.RowNumber(id),
		Title:     title,
		Location:  "Rotterdam",
		Category:  "Lumber",
		Condition: "Good",
		Quantity:  "10 pieces",
		PostedAt:  posted.Format(time.RFC3339),
		Price:     models.RowNumber(float64(id) * 100),
		SaleMode:  "fixed",
	}
	if mutate != nil {
		mutate(&row)
	}
	return row
}

// browseRows is the standing catalogue most tests run against.
func browseRows() []models.ListingRow {
	return []models.ListingRow{
		testRow(1, "Reclaimed oak beams", func(r *models.ListingRow) {
			r.SellerID = strPtr("seller-1")
		}),
		testRow(2, "Steel plates HEB", func(r *models.ListingRow) {
			r.Category = "Steel"
			r.Condition = "Like New"
			r.Location = "Duisburg"
		}),
		testRow(3, "Clay facing bricks", func(r *models.ListingRow) {
			r.Category = "Brick & Masonry"
			r.SaleMode = "auction"
			bid := models.RowNumber(150)
			r.CurrentBid = &bid
			deadline := "2025-03-20T12:00:00Z"
			r.BidDeadline = &deadline
		}),
	}
}
