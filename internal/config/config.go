// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, the database path, rate limiting, auth, the LLM runtimes, Google
// OAuth, uploads and observability.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
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

// AuthConfig defines bearer-token and account settings.
type AuthConfig struct {
	TokenTTL          time.Duration // TOKEN_TTL; 0 means tokens never expire
	AdminSecretKey    string        // ADMIN_SECRET_KEY; empty disables admin sign-up
	BcryptCost        int           // BCRYPT_COST
	SeedAdminEmail    string        // SEED_ADMIN_EMAIL
	SeedAdminPassword string        // SEED_ADMIN_PASSWORD
}

// LLMConfig defines the generation runtimes.
type LLMConfig struct {
	BaseURL          string        // OLLAMA_BASE_URL
	Model            string        // OLLAMA_MODEL
	Models           []string      // LLM_MODELS allow-list
	Timeout          time.Duration // LLM_TIMEOUT
	ContextMaxChars  int           // LLM_CONTEXT_MAX_CHARS
	Language         string        // LLM_LANGUAGE (BCP-47)
	FineTunedBaseURL string        // FINETUNED_BASE_URL
}

// OAuthConfig defines Google sign-in. Disabled when ClientID is empty.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	FrontendURL  string
	StateSecret  string
	StateTTL     time.Duration
}

// UploadConfig defines where uploaded documents go.
type UploadConfig struct {
	Dir      string // UPLOAD_DIR
	MaxBytes int64  // UPLOAD_MAX_BYTES
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "support-chat-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
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

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBPath string // SQLite path

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	Auth   AuthConfig
	LLM    LLMConfig
	OAuth  OAuthConfig
	Upload UploadConfig

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
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		DBPath: getenv("DB_PATH", "app.db"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		Auth: AuthConfig{
			TokenTTL:          getdur("TOKEN_TTL", 0),
			AdminSecretKey:    getenv("ADMIN_SECRET_KEY", ""),
			BcryptCost:        getint("BCRYPT_COST", bcrypt.DefaultCost),
			SeedAdminEmail:    strings.ToLower(strings.TrimSpace(getenv("SEED_ADMIN_EMAIL", ""))),
			SeedAdminPassword: getenv("SEED_ADMIN_PASSWORD", ""),
		},
		LLM: LLMConfig{
			BaseURL:          strings.TrimRight(getenv("OLLAMA_BASE_URL", "http://localhost:11434"), "/"),
			Model:            getenv("OLLAMA_MODEL", "llama3.2"),
			Models:           splitCSV(getenv("LLM_MODELS", "")),
			Timeout:          getdur("LLM_TIMEOUT", 30*time.Second),
			ContextMaxChars:  getint("LLM_CONTEXT_MAX_CHARS", 4000),
			Language:         getenv("LLM_LANGUAGE", "fr"),
			FineTunedBaseURL: strings.TrimRight(getenv("FINETUNED_BASE_URL", "http://localhost:5000"), "/"),
		},
		OAuth: OAuthConfig{
			ClientID:     getenv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getenv("GOOGLE_REDIRECT_URI", ""),
			FrontendURL:  strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:4200"), "/"),
			StateSecret:  getenv("OAUTH_STATE_SECRET", ""),
			StateTTL:     getdur("OAUTH_STATE_TTL", 10*time.Minute),
		},
		Upload: UploadConfig{
			Dir:      getenv("UPLOAD_DIR", "storage/uploads"),
			MaxBytes: int64(getint("UPLOAD_MAX_BYTES", 10<<20)),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "support-chat-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if len(cfg.LLM.Models) == 0 {
		cfg.LLM.Models = []string{cfg.LLM.Model}
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
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
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
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	if cfg.Auth.TokenTTL < 0 {
		return cfg, errors.New("TOKEN_TTL must be >= 0")
	}
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return cfg, errors.New("BCRYPT_COST must be between 4 and 31")
	}
	if (cfg.Auth.SeedAdminEmail == "") != (cfg.Auth.SeedAdminPassword == "") {
		return cfg, errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	if err := validURL("OLLAMA_BASE_URL", cfg.LLM.BaseURL); err != nil {
		return cfg, err
	}
	if err := validURL("FINETUNED_BASE_URL", cfg.LLM.FineTunedBaseURL); err != nil {
		return cfg, err
	}
	if cfg.LLM.Timeout <= 0 {
		return cfg, errors.New("LLM_TIMEOUT must be > 0")
	}
	if cfg.LLM.ContextMaxChars <= 0 {
		return cfg, errors.New("LLM_CONTEXT_MAX_CHARS must be > 0")
	}
	if cfg.OAuth.ClientID != "" {
		if cfg.OAuth.RedirectURI == "" {
			return cfg, errors.New("GOOGLE_REDIRECT_URI is required when GOOGLE_CLIENT_ID is set")
		}
		if len(cfg.OAuth.StateSecret) < 32 {
			return cfg, errors.New("OAUTH_STATE_SECRET must be at least 32 bytes when Google sign-in is enabled")
		}
	}
	if cfg.OAuth.StateTTL <= 0 {
		return cfg, errors.New("OAUTH_STATE_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.Upload.Dir) == "" {
		return cfg, errors.New("UPLOAD_DIR must not be empty")
	}
	if cfg.Upload.MaxBytes <= 0 {
		return cfg, errors.New("UPLOAD_MAX_BYTES must be > 0")
	}

	return cfg, nil
}

// OAuthEnabled reports whether Google sign-in is configured.
func (c Config) OAuthEnabled() bool { return c.OAuth.ClientID != "" }

func validURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(name + " must be an absolute http(s) URL")
	}
	return nil
}

// ---- helpers ----

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
