// Package httpserver wires the HTTP surface of the service.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sentineldispatch/dispatch-ingest/internal/auth"
	"github.com/sentineldispatch/dispatch-ingest/internal/config"
	"github.com/sentineldispatch/dispatch-ingest/internal/handlers"
	"github.com/sentineldispatch/dispatch-ingest/internal/ingest"
	"github.com/sentineldispatch/dispatch-ingest/internal/models"
	"github.com/sentineldispatch/dispatch-ingest/internal/store"
)

// maxBodyBytes caps webhook payloads at 2 MiB.
const maxBodyBytes = 2 << 20

// NewRouter wires public endpoints and the guarded webhook.
// Public: /health, /ready, GET /v1/dispatch/events
// Guarded: POST /v1/dispatch/events (shared secret, when configured)
func NewRouter(cfg config.Config, pipe *ingest.Pipeline, st store.EventStore, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(limitBody(maxBodyBytes))

	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Api-Key", "Idempotency-Key"},
		MaxAge:       12 * time.Hour,
	}))

	// Wrong method on a known path is 405, not 404.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{
			OK:    false,
			Error: "Method Not Allowed",
		})
	})

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Readiness: confirms the store dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.POST("/v1/dispatch/events",
		auth.SharedSecretMiddleware(cfg.WebhookSecret),
		handlers.PostDispatchEvent(pipe, log))
	r.GET("/v1/dispatch/events",
		handlers.ListDispatchEvents(st, log))

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

// limitBody caps the request body so an oversized payload fails the JSON
// read instead of exhausting memory.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
