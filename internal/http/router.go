// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, identity propagation, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/auth"
	"github.com/calliope-hq/go-social-backend/internal/config"
	"github.com/calliope-hq/go-social-backend/internal/http/handlers"
	"github.com/calliope-hq/go-social-backend/internal/http/middleware"
	"github.com/calliope-hq/go-social-backend/internal/realtime"
	"github.com/calliope-hq/go-social-backend/internal/services"
	"github.com/calliope-hq/go-social-backend/internal/storage"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity
// propagation and rate limiting, CORS and security headers, health and
// metrics endpoints, the object-serving route, and then mounts the versioned
// public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression (skips upgraded connections)
//  7. Metrics
//  8. Identity: lift X-User-ID into the request context (before rate limiter)
//  9. Rate limiter (per user/IP)
// 10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *realtime.Hub, store *storage.DiskStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (8 MiB; avatar uploads set the floor)
	r.Use(limitBody(8 << 20))

	// 6) Response compression (no-op for websocket upgrades)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Identity propagation (before rate limiting so buckets key by user)
	r.Use(auth.Identity())

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", auth.HeaderUserID},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
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
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", auth.HeaderUserID},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Object serving for the disk store (signed token required for the
	// private user-data bucket)
	storageH := handlers.NewStorageHandler(store)
	r.GET("/storage/:bucket/*object", storageH.Serve)

	// Dependency injection: services ← db/hub/store
	charSvc := &services.CharacterService{DB: db}
	postSvc := &services.PostService{DB: db, MaxContentRunes: cfg.MaxContentRunes}
	threadSvc := &services.ThreadService{DB: db, Hub: hub, MaxContentRunes: cfg.MaxContentRunes}
	profileSvc := &services.ProfileService{DB: db, Store: store}

	charH := handlers.NewCharacterHandler(charSvc)
	postH := handlers.NewPostHandler(postSvc)
	threadH := handlers.NewThreadHandler(threadSvc)
	profileH := handlers.NewProfileHandler(profileSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Characters
		api.GET("/characters", charH.List)
		api.POST("/characters", charH.Create)
		api.GET("/characters/by-path/:path", charH.GetByPath)
		api.GET("/characters/:id", charH.Get)
		api.PATCH("/characters/:id", charH.Update)
		api.GET("/characters/:id/profile", charH.Profile)
		api.GET("/characters/:id/attributes", charH.Attributes)
		api.PUT("/characters/:id/attributes", charH.SetAttributes)
		api.POST("/characters/:id/subscription", charH.Subscribe)
		api.DELETE("/characters/:id/subscription", charH.Unsubscribe)

		// Posts
		api.GET("/characters/:id/posts", postH.ListByCharacter)
		api.POST("/characters/:id/posts", postH.Create)
		api.GET("/posts/:id", postH.Get)
		api.PATCH("/posts/:id", postH.Update)

		// Threads and messages
		api.POST("/characters/:id/threads", threadH.Start)
		api.GET("/characters/:id/threads", threadH.ListForCharacter)
		api.GET("/threads/:id", threadH.Get)
		api.GET("/threads/:id/messages", threadH.Messages)
		api.POST("/threads/:id/messages", threadH.Append)
		api.GET("/threads/:id/messages/stream", threadH.Stream)

		// Caller-scoped resources
		api.GET("/me/threads", threadH.ListMine)
		api.GET("/me/subscriptions", charH.Subscriptions)
		api.GET("/me/preferences", profileH.Preferences)
		api.PUT("/me/preferences", profileH.SetPreferences)
		api.GET("/me/personas", profileH.Personas)
		api.POST("/me/personas", profileH.CreatePersona)
		api.PATCH("/personas/:id", profileH.UpdatePersona)
		api.DELETE("/personas/:id", profileH.DeletePersona)
		api.PUT("/personas/:id/avatar", profileH.UploadAvatar)
	}
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
