// Package httpapi wires the HTTP transport (Gin) to the site handlers and
// middleware. It centralizes cross-cutting concerns such as tracing,
// correlation IDs, logging/redaction, panic recovery, metrics, compression,
// CORS, security headers, locale detection, the admin auth guard and rate
// limiting.
//
// Route map:
//   - public pages (/, /about, /careers, /products, /contact, /locale/:code)
//   - admin shell pages under /admin (guarded)
//   - admin JSON API under /api/admin (guarded)
//   - public JSON under /api (forms, resume upload, auth)
//   - /static, /uploads (local storage), /health, /metrics, /swagger
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-company-site/internal/config"
	_ "github.com/tbourn/go-company-site/internal/docs"
	"github.com/tbourn/go-company-site/internal/http/handlers"
	"github.com/tbourn/go-company-site/internal/http/middleware"
)

// Request body caps. Multipart bodies carry uploads up to 10 MB plus form
// overhead; everything else is JSON.
const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = 11 << 20
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. gzip
//  8. CORS and baseline security headers
//
// Per group: Locale + CSP on pages, AuthGuard + no-store on admin, per-IP
// rate limiting on the public JSON endpoints.
func RegisterRoutes(r *gin.Engine, h *handlers.Handlers, guard middleware.SessionVerifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging; redacted outside debug mode
	if cfg.GinMode == gin.DebugMode {
		r.Use(middleware.Logger())
	} else {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-Forwarded-For"},
		}))
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Body size limits
	r.Use(limitBody(maxJSONBody, maxMultipartBody))
	r.MaxMultipartMemory = 8 << 20

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression (uploads are already compressed or binary)
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics", cfg.Storage.PublicBase}),
	))

	// 8) CORS posture and baseline security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	localeMW := middleware.Locale(middleware.LocaleOptions{
		GeoHeaders: cfg.GeoCountryHeaders,
		Secure:     cfg.Auth.CookieSecure,
	})
	pageCSP := middleware.SecurityHeaders(middleware.SecurityOptions{CSP: middleware.DefaultCSP})
	noStore := middleware.SecurityHeaders(middleware.SecurityOptions{NoStore: true})
	authGuard := middleware.AuthGuard(guard)

	// Fallbacks: JSON for the API, the localized 404 page otherwise.
	r.NoRoute(func(c *gin.Context) {
		if isAPI(c.Request.URL.Path) {
			handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
			return
		}
		c.Next()
	}, localeMW, pageCSP, h.NotFoundPage)
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Assets
	r.StaticFS("/static", http.FS(handlers.StaticFS()))
	if cfg.Storage.Backend == "local" {
		r.Static(cfg.Storage.PublicBase, cfg.Storage.UploadDir)
	}

	// Public pages
	h.MountPages(r.Group("", localeMW, pageCSP))
	h.MountLocaleSwitch(r.Group("", pageCSP))

	// Admin shell
	h.MountAdminPages(r.Group("/admin", authGuard, pageCSP, noStore))

	// Admin JSON API
	adminRL := middleware.NewRateLimiter(cfg.RateRPS*20, cfg.RateBurst*20, middleware.KeyByAdminOrIP())
	h.MountAdmin(r.Group("/api/admin", authGuard, noStore, adminRL.Handler()))

	// Public JSON: forms, resume upload and admin auth share one per-IP bucket.
	publicRL := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	api := r.Group("/api", noStore, publicRL.Handler())
	h.MountSubmissions(api)
	h.MountAuth(api.Group("/auth"))
}

// corsMiddleware mirrors allowlisted origins (with credentials, for the admin
// cookie) or allows any origin without credentials when no list is set.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	headers := []string{"Origin", "Content-Type", "Accept", "If-None-Match", "X-Request-ID"}
	expose := []string{"X-Request-ID", "Content-Length", "ETag"}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     headers,
				ExposeHeaders:    expose,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}
	return []gin.HandlerFunc{cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    expose,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})}
}

// limitBody caps the request body with http.MaxBytesReader. Multipart
// requests get the larger cap. Requests exceeding it fail on read.
func limitBody(jsonMax, multipartMax int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := jsonMax
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = multipartMax
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func isAPI(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
