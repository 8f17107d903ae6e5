// Package app assembles the marketplace core and serves it over HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/sync/errgroup"

	"surplusmarket_api/config"
	"surplusmarket_api/internal/auth"
	"surplusmarket_api/internal/market/app/web"
	"surplusmarket_api/internal/market/app/web/handlers"
	"surplusmarket_api/internal/market/business"
	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/internal/market/pkg/clients"
	"surplusmarket_api/internal/market/session"
	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/migrations/market"
	"surplusmarket_api/pkg/dbconnect/postgres"
	"surplusmarket_api/pkg/logger"
	"surplusmarket_api/pkg/middleware"
)

// MarketServer wires the listing manager to a store adapter and exposes
// both to the presentation layer. The store is picked from configuration:
// the hosted REST backend when a base URL is set, a self-hosted Postgres
// otherwise, or a seeded in-memory store in demo mode.
type MarketServer struct {
	cfg    *config.AppConfig
	writer io.Writer
	log    logger.Logger
	demo   bool
}

func NewMarketServer(cfg *config.AppConfig, writer io.Writer, demo bool) *MarketServer {
	return &MarketServer{
		cfg:    cfg,
		writer: writer,
		log:    logger.NewLogger(writer, "[MarketServer]"),
		demo:   demo,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully and waits
// for in-flight remote persistence to settle.
func (s *MarketServer) Run(ctx context.Context) error {
	store, authService, files, cleanup, err := s.buildAdapters()
	if err != nil {
		return err
	}
	defer cleanup()

	manager := business.NewManager(store, files, logger.NewLogger(s.writer, "[Lifecycle]"), s.cfg.Market)
	if err := manager.Refresh(ctx); err != nil {
		// Same stance as a browser whose first fetch failed: serve the
		// empty set and let a later refresh repopulate it.
		s.log.Error("initial refresh failed, serving an empty set: %v", err)
	} else {
		s.log.Log("serving %d listings", manager.Len())
	}

	sessions := session.NewContext(logger.NewLogger(s.writer, "[Session]"))
	unsubscribe := sessions.Subscribe(func(actor *models.Actor) {
		if !actor.IsAdmin() {
			return
		}
		// A moderation session must see hidden rows, so the transition
		// pulls them in.
		refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := manager.RefreshAll(refreshCtx); err != nil {
			s.log.Error("moderation refresh failed: %v", err)
		}
	})
	defer unsubscribe()

	handler := web.SetupRoutes(
		s.cfg.Store.JWTSecret,
		handlers.NewListingsHandler(manager, s.cfg.Market, logger.NewLogger(s.writer, "[Listings]")),
		handlers.NewSessionHandler(authService, sessions, logger.NewLogger(s.writer, "[Sessions]")),
		handlers.NewModerationHandler(manager, logger.NewLogger(s.writer, "[Moderation]")),
		handlers.NewMediaHandler(manager, logger.NewLogger(s.writer, "[Media]")),
	)

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Log("market api listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	manager.Flush()
	s.log.Log("market api stopped")
	return err
}

// buildAdapters picks the store, auth and file adapters for this
// deployment. cleanup releases whatever the chosen adapters hold open.
func (s *MarketServer) buildAdapters() (storage.Store, storage.AuthService, storage.FileStore, func(), error) {
	noop := func() {}
	switch {
	case s.demo:
		mem := storage.NewMemoryStore()
		rows := storage.SeedRows()
		mem.Load(rows)
		s.log.Log("demo mode: in-memory store with %d seed listings", len(rows))
		s.announceDemoTokens()
		return mem, nil, nil, noop, nil

	case s.cfg.Store.BaseURL != "":
		base := clients.NewBaseClient(s.cfg.Store, s.writer, "[RemoteStore]", middleware.StoreMetrics())
		return clients.NewListingsClient(base),
			clients.NewAuthClient(base),
			clients.NewFilesClient(base, s.cfg.Store.Bucket),
			noop, nil

	default:
		connector := postgres.NewPgConnector(&s.cfg.Postgres, s.writer)
		db, err := connector.Connect()
		if err != nil {
			return nil, nil, nil, noop, fmt.Errorf("connect to postgres: %w", err)
		}
		cleanup := func() { db.Close() }
		for _, m := range market.Migrations() {
			if err := m.UpMigration(db); err != nil {
				cleanup()
				return nil, nil, nil, noop, fmt.Errorf("apply migrations: %w", err)
			}
		}
		s.log.Log("market migrations applied")
		return storage.NewPostgresStore(db, logger.NewLogger(s.writer, "[PostgresStore]")), nil, nil, cleanup, nil
	}
}

// announceDemoTokens logs ready-made bearer tokens for a seller and an
// admin, so a demo deployment can be driven without the hosted auth
// service. Demo runs without a configured secret get an obvious but
// non-empty one.
func (s *MarketServer) announceDemoTokens() {
	if s.cfg.Store.JWTSecret == "" {
		s.cfg.Store.JWTSecret = "surplusmarket-demo"
		s.log.Log("demo mode: no jwt secret configured, using the demo default")
	}
	mint := func(id, email string, admin bool) string {
		claims := &auth.Claims{
			Email: email,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   id,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			},
		}
		if admin {
			claims.AppMetadata = models.Metadata{"admin": true}
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Store.JWTSecret))
		if err != nil {
			s.log.Error("failed to mint demo token: %v", err)
			return ""
		}
		return token
	}
	s.log.Log("demo seller token: %s", mint("demo-seller", "seller@surplusmarket.local", false))
	s.log.Log("demo admin token:  %s", mint("demo-admin", "admin@surplusmarket.local", true))
}
