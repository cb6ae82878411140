package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/config"
	"storefront-backend/internal/env"
	"storefront-backend/internal/infrastructure/asset"
	"storefront-backend/internal/infrastructure/kv"
	"storefront-backend/internal/infrastructure/mercadopago"
	"storefront-backend/internal/infrastructure/repo"
	"storefront-backend/internal/persist"
	"storefront-backend/internal/server"
	"storefront-backend/internal/telemetry"
	"storefront-backend/internal/usecase"
)

func main() {
	env.Load(".env", ".env.local")
	envDefaults := config.EnvDefaults()

	envName := flag.String("env", envDefaults.Env, "")
	port := flag.Int("port", envDefaults.Port, "")
	assets := flag.String("assets", envDefaults.AssetsDir, "")
	logJSON := flag.Bool("log-json", envDefaults.LogJSON, "")
	logLevel := flag.String("log-level", envDefaults.LogLevel, "")
	siteURL := flag.String("site-url", envDefaults.SiteURL, "")
	store := flag.String("store", envDefaults.StoreBackend, "memory, redis, sqlite or none")
	redisAddr := flag.String("redis-addr", envDefaults.RedisAddr, "")
	sqlitePath := flag.String("sqlite-path", envDefaults.SQLitePath, "")
	trustProxy := flag.Bool("trust-proxy", envDefaults.TrustProxy, "honor X-Forwarded-* headers")

	flag.Parse()

	cfg := envDefaults
	cfg.Env = *envName
	cfg.Port = *port
	cfg.AssetsDir = *assets
	cfg.LogJSON = *logJSON
	cfg.LogLevel = *logLevel
	cfg.SiteURL = *siteURL
	cfg.StoreBackend = *store
	cfg.RedisAddr = *redisAddr
	cfg.SQLitePath = *sqlitePath
	cfg.TrustProxy = *trustProxy

	log := telemetry.NewLogger(os.Stdout, cfg.LogJSON, cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	ensureDir(cfg.AssetsDir)
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracer, err := telemetry.SetupTracer(context.Background(), "storefront-backend", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Warn("tracer shutdown", "error", err)
		}
	}()

	sessionStore, closeStore, err := openSessionStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	var (
		catalogRepo usecase.CatalogRepo
		archive     usecase.OrderArchive
	)
	if cfg.DatabaseURL != "" {
		pg, err := repo.NewPostgresRepo(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pg.Close()
		catalogRepo, archive = pg, pg
	} else {
		catalogRepo, archive = repo.NewMemoryCatalogRepo(), repo.NewMemoryArchiveRepo()
	}

	catalog := &usecase.CatalogService{Repo: catalogRepo, DefaultFee: cfg.DeliveryFee, Log: log}
	if err := catalog.Seed(usecase.DefaultSettings(cfg.RestaurantPhone, cfg.DeliveryFee), usecase.DefaultMenu()); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	var auth *usecase.AuthService
	if cfg.AdminPassword != "" && cfg.JWTSecret != "" {
		auth, err = usecase.NewAuthService(cfg.AdminUser, cfg.AdminPassword, cfg.JWTSecret)
		if err != nil {
			return err
		}
	} else {
		log.Warn("admin routes disabled: set STOREFRONT_ADMIN_PASSWORD and STOREFRONT_JWT_SECRET")
	}
	if cfg.MercadoPagoToken == "" {
		log.Warn("MERCADOPAGO_ACCESS_TOKEN not set: payments will fail")
	}

	payments := mercadopago.NewClient(mercadopago.Config{
		AccessToken: cfg.MercadoPagoToken,
		BaseURL:     cfg.MercadoPagoURL,
		SiteURL:     cfg.SiteURL,
		Currency:    cfg.Currency,
	})

	sessions := usecase.NewSessionRegistry(sessionStore, catalog.FeePolicy, cfg.SessionTTL, log)
	sessions.Max = cfg.MaxSessions

	srv := server.New(server.Deps{
		Config:   cfg,
		Log:      log,
		Sessions: sessions,
		Catalog:  catalog,
		Checkout: &usecase.CheckoutService{
			Payments:      payments,
			Archive:       archive,
			Restaurant:    catalog,
			RedirectDelay: cfg.DispatchDelay,
			Log:           log,
		},
		Auth:    auth,
		Archive: archive,
		Assets:  asset.NewFSWriter(cfg.AssetsDir, cfg.SiteURL),
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", httpSrv.Addr, "env", cfg.Env, "store", cfg.StoreBackend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSessionStore picks the durable store behind shopper sessions. "none"
// yields a nil store, which turns persistence into a no-op.
func openSessionStore(cfg config.Config) (persist.Store, io.Closer, error) {
	switch cfg.StoreBackend {
	case "", "memory":
		return kv.NewMemoryStore(), nopCloser{}, nil
	case "none":
		return nil, nopCloser{}, nil
	case "redis":
		r := kv.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, nil, err
		}
		return r, r, nil
	case "sqlite":
		ensureDir(filepath.Dir(cfg.SQLitePath))
		s, err := kv.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func ensureDir(p string) {
	if p == "" {
		return
	}
	if _, err := os.Stat(p); os.IsNotExist(err) {
		_ = os.MkdirAll(p, 0o755)
	}
}
