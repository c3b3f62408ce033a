// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Every service built here from the database and config
//   - Public auth endpoints, everything else behind a bearer token
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/docs"
	"github.com/tbourn/support-chat-backend/internal/authz"
	"github.com/tbourn/support-chat-backend/internal/config"
	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/http/handlers"
	"github.com/tbourn/support-chat-backend/internal/http/middleware"
	"github.com/tbourn/support-chat-backend/internal/llm"
	"github.com/tbourn/support-chat-backend/internal/services"
)

// multipartSlack is added on top of the upload cap so the form fields and
// boundaries around a maximum-size file still fit in the body limit.
const multipartSlack = 1 << 20

// idempotencyKeyMaxLen caps the Idempotency-Key header.
const idempotencyKeyMaxLen = 200

// LLMConfig converts the environment-level settings into the llm package
// config.
func LLMConfig(c config.LLMConfig) llm.Config {
	return llm.Config{
		BaseURL:          c.BaseURL,
		FineTunedBaseURL: c.FineTunedBaseURL,
		DefaultModel:     c.Model,
		Models:           c.Models,
		Timeout:          c.Timeout,
		ContextMaxChars:  c.ContextMaxChars,
		Language:         llm.ParseLanguage(c.Language),
	}
}

// NewDeps builds every service the handlers need from db and cfg.
func NewDeps(db *gorm.DB, cfg config.Config) handlers.Deps {
	authSvc := &services.AuthService{
		DB:          db,
		TokenTTL:    cfg.Auth.TokenTTL,
		AdminSecret: cfg.Auth.AdminSecretKey,
		BcryptCost:  cfg.Auth.BcryptCost,
		Now:         time.Now,
	}

	oauthSvc := &services.OAuthService{
		DB:          db,
		Auth:        authSvc,
		OAuth:       services.GoogleConfig(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret, cfg.OAuth.RedirectURI),
		StateSecret: []byte(cfg.OAuth.StateSecret),
		StateTTL:    cfg.OAuth.StateTTL,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		Now:         time.Now,
	}

	lc := LLMConfig(cfg.LLM)
	hc := &http.Client{Timeout: lc.Timeout}
	chatSvc := &services.ChatService{
		DB:        db,
		LLM:       llm.NewOllama(lc, hc),
		FineTuned: llm.NewFineTuned(lc, hc),
		Files:     services.NewFileService(db, cfg.Upload.Dir, cfg.Upload.MaxBytes),
		Config:    lc,
	}

	return handlers.Deps{
		Auth:           authSvc,
		OAuth:          oauthSvc,
		Conversations:  services.NewConversationService(db),
		Tickets:        &services.TicketService{DB: db},
		Chat:           chatSvc,
		Dashboard:      services.NewDashboardService(db),
		Users:          &services.UserService{DB: db, BcryptCost: cfg.Auth.BcryptCost},
		Idempotency:    services.NewIdempotencyService(db, cfg.IdempotencyTTL),
		FrontendURL:    cfg.OAuth.FrontendURL,
		UploadMaxBytes: cfg.Upload.MaxBytes,
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine, building the services from db and cfg.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	Mount(r, NewDeps(db, cfg), cfg)
}

// Mount wires middleware and routes around already-built dependencies.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured access logs with secret scrubbing
//  4. Logger: request-scoped zerolog logger for handlers and services
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. gzip, Metrics
//  8. CORS and Security headers
//
// Inside the protected group: bearer auth, then idempotency (it needs the
// user), then the rate limiter (skipped on replays).
func Mount(r *gin.Engine, d handlers.Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-Admin-Secret"},
		MaskQuery:   []string{"admin_secret_key"},
	}))
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(bodyLimit(cfg.Upload.MaxBytes)))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Metrics())

	useCORS(r, cfg.CORS.AllowedOrigins)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		NoStore:       false,
		EnablePolicy:  true,
		ExposeHeaders: []string{"ETag", handlers.HeaderIdempotencyReplayed},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(d)
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	api := groupWithPrefix(r, cfg.APIBasePath)

	// Public: charged per client IP.
	public := api.Group("", rl.Handler())
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.GET("/auth/google/url", h.GoogleURL)
		public.GET("/auth/google/callback", h.GoogleCallback)
	}

	var lookup middleware.IdempotencyLookup
	if d.Idempotency != nil {
		lookup = replayLookup(d.Idempotency)
	}

	authed := api.Group("",
		middleware.BearerAuth(d.Auth, func(err error) bool { return errors.Is(err, services.ErrUnauthenticated) }),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: idempotencyKeyMaxLen}, lookup),
		rl.Handler(),
	)
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/auth/user", h.CurrentUser)
		authed.GET("/auth/token-info", h.TokenInfo)

		authed.POST("/llama/chat", h.LlamaChat)
		authed.POST("/fine-tuned/chat", h.FineTunedChat)

		authed.GET("/chat-history", h.ListConversations)
		authed.POST("/conversation", h.CreateConversation)
		authed.GET("/conversation/:id", h.GetConversation)
		authed.DELETE("/conversation/:id", h.DeleteConversation)
		authed.POST("/conversation/:id/message", h.AppendMessage)
		authed.POST("/conversation/:id/toggle-save", h.ToggleSave)
		authed.GET("/conversation/:id/evaluations", h.ConversationEvaluations)

		authed.POST("/create-ticket", h.CreateTicket)
		authed.PUT("/update-ticket/:id", h.UpdateTicket)
		authed.GET("/tickets", h.ListTickets)
		authed.GET("/ticket/:id", h.GetTicket)
		authed.DELETE("/ticket/:id", h.DeleteTicket)
		authed.GET("/user-evaluations", h.UserEvaluations)
		authed.GET("/ticketchat/evaluations/:userId", h.EvaluationsByConversation)

		authed.GET("/dashboard/stats", middleware.Require(authz.ActionRead, authz.ResourceDashboard), h.DashboardStats)

		users := authed.Group("/users", middleware.RequireRole(domain.RoleAdmin))
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.GET("/:id", h.GetUser)
			users.PUT("/:id", h.UpdateUser)
			users.DELETE("/:id", h.DeleteUser)
		}
	}
}

// replayLookup adapts the idempotency store to the middleware callback.
func replayLookup(store handlers.IdempotencyStore) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID uint, scope, key string) (*middleware.Replay, error) {
		row, err := store.Lookup(ctx, userID, scope, key)
		if err != nil || row == nil {
			return nil, err
		}
		return &middleware.Replay{ResourceID: row.ResourceID, Status: row.Status}, nil
	}
}

// useCORS installs gin-contrib/cors. With no allowlist every origin is
// accepted without credentials; otherwise only listed origins are echoed.
func useCORS(r *gin.Engine, origins []string) {
	base := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "ETag", handlers.HeaderIdempotencyReplayed},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		base.AllowAllOrigins = true
		r.Use(cors.New(base))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	base.AllowOrigins = origins
	base.AllowCredentials = true
	r.Use(cors.New(base))
}

// bodyLimit is the request body cap for an upload limit of maxUpload bytes.
func bodyLimit(maxUpload int64) int64 {
	if maxUpload <= 0 {
		return multipartSlack
	}
	return maxUpload + multipartSlack
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
