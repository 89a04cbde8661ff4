// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the
// HTTP server, logging, the content database, admin authentication, e-mail
// delivery, file storage, i18n detection, cache fan-out and observability.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "company-site")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and locates the content database.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite file path
	URL    string // Postgres DSN (DATABASE_URL)
}

// AuthConfig configures admin sessions and the bootstrap account.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	AdminEmail    string
	AdminPassword string
	SignupEnabled bool
}

// EmailConfig configures the transactional e-mail provider. An empty APIKey
// switches delivery to log-only mode.
type EmailConfig struct {
	APIKey string
	From   string
	To     string // company inbox for notifications
}

// S3Config describes an S3-compatible bucket (Supabase Storage, MinIO, AWS).
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
	PublicURL string // base URL objects are publicly reachable under
}

// StorageConfig selects where uploaded files are written.
type StorageConfig struct {
	Backend    string // local|s3|gcs
	UploadDir  string // local backend root
	PublicBase string // public URL prefix for the local backend
	S3         S3Config

	GCSBucket          string
	GCSCredentialsFile string // service account key; empty uses ADC
	GCSEndpoint        string // emulator endpoint

	SignedURLTTL time.Duration
}

// RedisConfig enables cross-instance cache invalidation when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	PublicBaseURL     string        // absolute site origin used in e-mailed links

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route

	// Content store
	DB DBConfig

	// Rate limiting (public submission endpoints)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	Auth    AuthConfig
	Email   EmailConfig
	Storage StorageConfig
	Redis   RedisConfig

	// Features
	ShowTestimonials bool

	// i18n
	GeoCountryHeaders []string

	// Admin reorder fan-out
	ReorderConcurrency int

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "site.db"),
			URL:    getenv("DATABASE_URL", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 1.0),
		RateBurst: getint("RATE_BURST", 5),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		Auth: AuthConfig{
			SessionSecret: getenv("SESSION_SECRET", ""),
			SessionTTL:    getdur("SESSION_TTL", 12*time.Hour),
			CookieSecure:  getbool("SESSION_COOKIE_SECURE", false),
			AdminEmail:    strings.ToLower(strings.TrimSpace(getenv("ADMIN_EMAIL", ""))),
			AdminPassword: getenv("ADMIN_PASSWORD", ""),
			SignupEnabled: getbool("ADMIN_SIGNUP_ENABLED", false),
		},

		Email: EmailConfig{
			APIKey: getenv("RESEND_API_KEY", ""),
			From:   getenv("EMAIL_FROM", "website@example.com"),
			To:     getenv("EMAIL_TO", "office@example.com"),
		},

		Storage: StorageConfig{
			Backend:    strings.ToLower(getenv("STORAGE_BACKEND", "local")),
			UploadDir:  getenv("UPLOAD_DIR", "uploads"),
			PublicBase: normalizeBasePath(getenv("UPLOAD_PUBLIC_PATH", "/uploads")),
			S3: S3Config{
				Endpoint:  getenv("S3_ENDPOINT", ""),
				Region:    getenv("S3_REGION", ""),
				Bucket:    getenv("S3_BUCKET", ""),
				AccessKey: getenv("S3_ACCESS_KEY", ""),
				SecretKey: getenv("S3_SECRET_KEY", ""),
				UseSSL:    getbool("S3_USE_SSL", true),
				PathStyle: getbool("S3_PATH_STYLE", true),
				PublicURL: strings.TrimRight(getenv("S3_PUBLIC_URL", ""), "/"),
			},
			GCSBucket:          getenv("GCS_BUCKET", ""),
			GCSCredentialsFile: getenv("GOOGLE_APPLICATION_CREDENTIALS_FILE", ""),
			GCSEndpoint:        getenv("GCS_ENDPOINT", ""),
			SignedURLTTL:       getdur("SIGNED_URL_TTL", 7*24*time.Hour),
		},

		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
			Channel:  getenv("REDIS_CHANNEL", "content-cache:invalidate"),
		},

		ShowTestimonials: getbool("SHOW_TESTIMONIALS", true),

		GeoCountryHeaders: splitCSV(getenv("GEO_COUNTRY_HEADERS", "X-Vercel-IP-Country,CF-IPCountry")),

		ReorderConcurrency: getint("REORDER_CONCURRENCY", 4),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "company-site"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getenv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port)), "/")

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" {
		cfg.DB.Driver = "postgres"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if !isOrigin(cfg.PublicBaseURL) {
		return cfg, errors.New("PUBLIC_BASE_URL must be an absolute http or https URL")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if len(cfg.Auth.SessionSecret) < 32 {
		return cfg, errors.New("SESSION_SECRET must be at least 32 characters")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if (cfg.Auth.AdminEmail == "") != (cfg.Auth.AdminPassword == "") {
		return cfg, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	switch cfg.Storage.Backend {
	case "local":
		if strings.TrimSpace(cfg.Storage.UploadDir) == "" {
			return cfg, errors.New("UPLOAD_DIR must not be empty")
		}
	case "s3":
		if cfg.Storage.S3.Endpoint == "" || cfg.Storage.S3.Bucket == "" {
			return cfg, errors.New("S3_ENDPOINT and S3_BUCKET are required when STORAGE_BACKEND=s3")
		}
	case "gcs":
		if cfg.Storage.GCSBucket == "" {
			return cfg, errors.New("GCS_BUCKET is required when STORAGE_BACKEND=gcs")
		}
	default:
		return cfg, errors.New("STORAGE_BACKEND must be one of: local, s3, gcs")
	}
	if cfg.Storage.SignedURLTTL <= 0 {
		return cfg, errors.New("SIGNED_URL_TTL must be > 0")
	}
	if cfg.ReorderConcurrency < 1 {
		return cfg, errors.New("REORDER_CONCURRENCY must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// isOrigin reports whether s is an absolute http(s) URL with a host and no
// query or fragment.
func isOrigin(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && u.User == nil && u.RawQuery == "" && u.Fragment == ""
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
