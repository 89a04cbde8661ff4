// Package app assembles the company site from its configuration and runs
// the HTTP server until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/auth"
	"github.com/tbourn/go-company-site/internal/cache"
	"github.com/tbourn/go-company-site/internal/config"
	httpapi "github.com/tbourn/go-company-site/internal/http"
	"github.com/tbourn/go-company-site/internal/http/handlers"
	"github.com/tbourn/go-company-site/internal/i18n"
	"github.com/tbourn/go-company-site/internal/notify"
	"github.com/tbourn/go-company-site/internal/observability"
	"github.com/tbourn/go-company-site/internal/repo"
	"github.com/tbourn/go-company-site/internal/revalidate"
	"github.com/tbourn/go-company-site/internal/services"
	"github.com/tbourn/go-company-site/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// App owns the server and everything that must be closed with it.
type App struct {
	cfg    config.Config
	log    zerolog.Logger
	server *http.Server
	engine *gin.Engine
	db     *gorm.DB
	store  *cache.Store
	bus    *cache.RedisBus
	otel   observability.Shutdown
}

// Build wires the site. It opens and migrates the database, connects the
// optional Redis invalidation bus, creates the bootstrap admin and mounts
// every route. Resources acquired before a failure are released.
func Build(ctx context.Context, cfg config.Config, version string) (a *App, err error) {
	base := log.With().Str("component", "app").Logger()
	a = &App{cfg: cfg, log: base}
	defer func() {
		if err != nil {
			a.close(context.Background())
			a = nil
		}
	}()

	base.Info().Bool("enabled", cfg.OTEL.Enabled).Msg("init tracing")
	if a.otel, err = observability.SetupOTel(ctx, cfg.OTEL, version); err != nil {
		return a, fmt.Errorf("failed init tracing: %w", err)
	}

	base.Info().Str("driver", cfg.DB.Driver).Msg("init database")
	if a.db, err = repo.Open(cfg.DB, cfg.OTEL.Enabled); err != nil {
		return a, fmt.Errorf("failed open database: %w", err)
	}
	if err = repo.AutoMigrate(a.db); err != nil {
		return a, fmt.Errorf("failed migrate database: %w", err)
	}

	opts := []cache.Option{cache.WithLogger(base)}
	if cfg.Redis.Addr != "" {
		base.Info().Str("addr", cfg.Redis.Addr).Msg("init redis invalidation bus")
		a.bus, err = cache.NewRedisBus(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		}, base)
		if err != nil {
			return a, fmt.Errorf("failed init redis: %w", err)
		}
		opts = append(opts, cache.WithPublisher(a.bus))
	}
	a.store = cache.NewStore(opts...)
	disp := revalidate.New(a.store)

	base.Info().Str("backend", cfg.Storage.Backend).Msg("init storage")
	backend, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return a, fmt.Errorf("failed init storage: %w", err)
	}

	mailer := notify.New(cfg.Email.APIKey, cfg.Email.From)
	authSvc := &services.AuthService{
		DB:            a.db,
		Sessions:      auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.OTEL.ServiceName, cfg.Auth.SessionTTL),
		Hasher:        auth.NewHasher(),
		Mailer:        mailer,
		SignupEnabled: cfg.Auth.SignupEnabled,
	}
	created, err := authSvc.Bootstrap(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		return a, fmt.Errorf("failed bootstrap admin: %w", err)
	}
	if created {
		base.Info().Str("email", cfg.Auth.AdminEmail).Msg("bootstrap admin created")
	}

	loader, err := i18n.NewLoader()
	if err != nil {
		return a, fmt.Errorf("failed load translations: %w", err)
	}
	pages, err := handlers.NewPages(loader)
	if err != nil {
		return a, fmt.Errorf("failed parse templates: %w", err)
	}

	limit := cfg.ReorderConcurrency
	h := handlers.New(handlers.Deps{
		DB:            a.db,
		Jobs:          &services.JobService{DB: a.db, Revalidate: disp, ReorderLimit: limit},
		Categories:    &services.CategoryService{DB: a.db, Revalidate: disp, ReorderLimit: limit},
		Products:      &services.ProductService{DB: a.db, Revalidate: disp, ReorderLimit: limit},
		Testimonials:  &services.TestimonialService{DB: a.db, Revalidate: disp, ReorderLimit: limit},
		Statistics:    &services.StatisticService{DB: a.db, Revalidate: disp, ReorderLimit: limit},
		Inbox:         &services.InboxService{DB: a.db, Cache: a.store, Revalidate: disp},
		Submissions:   &services.SubmissionService{DB: a.db, Mailer: mailer, Revalidate: disp, NotifyTo: cfg.Email.To},
		Uploads:       &services.UploadService{Storage: backend, SignedURLTTL: cfg.Storage.SignedURLTTL},
		Auth:          authSvc,
		Reader:        &services.ContentReader{DB: a.db, Cache: a.store, ShowTestimonials: cfg.ShowTestimonials},
		Pages:         pages,
		SessionTTL:    cfg.Auth.SessionTTL,
		CookieSecure:  cfg.Auth.CookieSecure,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	gin.SetMode(cfg.GinMode)
	a.engine = gin.New()
	httpapi.RegisterRoutes(a.engine, h, authSvc, cfg)

	a.server = &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           a.engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	base.Info().Msg("build ended")
	return a, nil
}

// Handler exposes the routed engine.
func (a *App) Handler() http.Handler { return a.engine }

// Run serves until ctx is cancelled, then shuts the server down and releases
// the database, the Redis bus and the tracer.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info().Str("addr", a.server.Addr).Msg("server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if a.bus != nil {
		g.Go(func() error {
			if err := a.bus.Run(gctx, a.store); err != nil && gctx.Err() == nil {
				a.log.Error().Err(err).Msg("invalidation bus stopped")
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info().Msg("stop application...")
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.close(stopCtx)
	})
	return g.Wait()
}

func (a *App) close(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
	}
	if a.otel != nil {
		if err := a.otel(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
