package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/salutdigital/portal/internal/config"
	"github.com/salutdigital/portal/internal/domain/appointment"
	"github.com/salutdigital/portal/internal/domain/export"
	"github.com/salutdigital/portal/internal/domain/history"
	"github.com/salutdigital/portal/internal/domain/medication"
	"github.com/salutdigital/portal/internal/domain/profile"
	"github.com/salutdigital/portal/internal/platform/auth"
	"github.com/salutdigital/portal/internal/platform/db"
	"github.com/salutdigital/portal/internal/platform/firebaseapp"
	"github.com/salutdigital/portal/internal/platform/i18n"
	"github.com/salutdigital/portal/internal/platform/middleware"
	"github.com/salutdigital/portal/internal/platform/store"
	"github.com/salutdigital/portal/internal/platform/store/fsstore"
	"github.com/salutdigital/portal/internal/platform/store/pgstore"
	"github.com/salutdigital/portal/internal/platform/store/rediscache"
)

const requestTimeout = 30 * time.Second

// backend is the opened record store plus whatever connections it owns.
type backend struct {
	name    string
	store   store.Store
	pool    *pgxpool.Pool
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// firebaseApp initialises the Firebase app at most once per process run.
type firebaseApp struct {
	cfg *config.Config
	app *firebase.App
}

func (f *firebaseApp) get(ctx context.Context) (*firebase.App, error) {
	if f.app != nil {
		return f.app, nil
	}
	app, err := firebaseapp.New(ctx, f.cfg.FirebaseProjectID, f.cfg.FirebaseCredentialsFile)
	if err != nil {
		return nil, err
	}
	f.app = app
	return app, nil
}

func openBackend(ctx context.Context, cfg *config.Config, fb *firebaseApp, logger zerolog.Logger) (*backend, error) {
	b := &backend{name: cfg.StoreBackend}
	switch cfg.StoreBackend {
	case config.BackendMemory:
		b.store = store.NewMemory()
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		b.pool = pool
		b.closers = append(b.closers, pool.Close)
		b.store = pgstore.New(pool)
	case config.BackendFirestore:
		app, err := fb.get(ctx)
		if err != nil {
			return nil, err
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("open firestore: %w", err)
		}
		b.closers = append(b.closers, func() { client.Close() })
		b.store = fsstore.New(client)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if cfg.RedisURL != "" {
		rdb, err := rediscache.NewClient(cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { rdb.Close() })
		b.store = rediscache.New(b.store, rdb, cfg.CacheTTL, logger, store.Users)
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("profile cache enabled")
	}
	return b, nil
}

func authMiddleware(ctx context.Context, cfg *config.Config, fb *firebaseApp) (echo.MiddlewareFunc, error) {
	switch cfg.ResolvedAuthMode() {
	case config.AuthModeDevelopment:
		return auth.DevAuthMiddleware(), nil
	case config.AuthModeFirebase:
		app, err := fb.get(ctx)
		if err != nil {
			return nil, err
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("open firebase auth: %w", err)
		}
		return auth.Middleware(auth.NewFirebaseVerifier(client)), nil
	default:
		return auth.Middleware(auth.NewJWTVerifier(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
		})), nil
	}
}

type serverDeps struct {
	Store  store.Store
	Health echo.HandlerFunc
	Auth   echo.MiddlewareFunc
	Logo   export.LogoFetcher
}

func newServer(cfg *config.Config, logger zerolog.Logger, deps serverDeps) (*echo.Echo, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Accept-Language", middleware.RequestIDHeader},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	e.Use(middleware.Locale(i18n.Parse(cfg.DefaultLocale, i18n.Default)))
	e.Use(middleware.RequestTimeout(requestTimeout))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(deps.Auth)

	e.GET("/health", deps.Health)

	api := e.Group("/api/v1")

	apptRepo := appointment.NewStoreRepo(deps.Store)
	appointment.NewHandler(appointment.NewService(apptRepo, loc)).RegisterRoutes(api)

	profileSvc := profile.NewService(profile.NewStoreRepo(deps.Store))
	profile.NewHandler(profileSvc).RegisterRoutes(api)

	agg := history.NewAggregator(
		apptRepo,
		medication.NewStoreRepo(deps.Store, cfg.HistoryParallelism),
		profileSvc,
		history.Options{
			BatchMedications: cfg.HistoryBatchMedications,
			Parallelism:      cfg.HistoryParallelism,
		},
	)
	pdf := export.NewPDFExporter(deps.Logo, logger.With().Str("component", "export").Logger())
	history.NewHandler(agg, pdf).RegisterRoutes(api)

	return e, nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	fb := &firebaseApp{cfg: cfg}
	b, err := openBackend(ctx, cfg, fb, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open record store")
	}
	defer b.Close()
	logger.Info().Str("backend", b.name).Msg("record store ready")

	authMW, err := authMiddleware(ctx, cfg, fb)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure authentication")
	}
	logger.Info().Str("mode", cfg.ResolvedAuthMode()).Msg("authentication configured")

	var logo export.LogoFetcher
	if cfg.LogoURL != "" {
		logo = export.NewHTTPLogoFetcher(cfg.LogoURL, cfg.LogoTimeout)
	}
	pinger, _ := b.store.(store.Pinger)

	e, err := newServer(cfg, logger, serverDeps{
		Store:  b.store,
		Health: db.HealthHandler(b.name, pinger, b.pool),
		Auth:   authMW,
		Logo:   logo,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
