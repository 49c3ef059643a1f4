// Package middleware contains the shared Gin middleware for the HTTP layer.
//
// This file covers request correlation and structured access logging:
//
//   - RequestID() gives every request a correlation id, reusing an incoming
//     X-Request-ID when the client sent one.
//   - Logger() writes one structured access line per request and parks a
//     request-scoped zerolog.Logger in the Gin context so handlers and
//     services can log with the same correlation fields
//     (e.g. lg.Info().Str("thread_id", id).Msg("message appended")).
//   - Recovery() turns panics into a JSON 500 carrying the correlation id.
//   - LoggerFrom() fetches the request-scoped logger back out.
//
// Order the three as RequestID, Logger, Recovery so panics and errors are
// logged with the correlation id attached. Query strings are clipped before
// logging; the request-scoped logger lives under the "logger" context key.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key holding the correlation id.
	requestIDKey = "requestID"
	// requestIDHeader carries the correlation id on requests and responses.
	requestIDHeader = "X-Request-ID"
	// maxQueryLogBytes caps how much of the raw query string is logged.
	maxQueryLogBytes = 2048
)

// RequestID reuses the caller's X-Request-ID when present (header lookup is
// case-insensitive) and generates a UUIDv4 otherwise. The id is echoed on the
// response header and stored in the Gin context for the rest of the chain.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger emits a structured access log per request: method, route (the
// registered pattern such as /api/v1/characters/:id/posts when one matched,
// the raw URL path otherwise), remote IP, user agent, correlation id, user id
// when identity middleware set one, sizes, status, and latency.
//
// The level follows the outcome: error for 5xx or when the Gin context
// collected errors, warn for 4xx, info otherwise. A request-scoped logger
// carrying the same fields is stored under the "logger" context key.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		uid, _ := c.Get("userID")
		path := c.FullPath()
		if path == "" {
			// Unmatched route (404): fall back to the raw path.
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", ctxString(rid)).
			Str("user_id", ctxString(uid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("referer", c.Request.Referer()).
			Str("query", clip(c.Request.URL.RawQuery, maxQueryLogBytes)).
			Int64("bytes_in", c.Request.ContentLength). // -1 when unknown
			Logger()

		c.Set("logger", &l)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		ev := l.With().
			Int("status", status).
			Dur("latency", latency).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

// Recovery logs the panic value and stack trace with the correlation id and,
// when nothing has been written yet, answers with the standard JSON error
// envelope ({"request_id": ..., "code": "internal_error", ...}). If a body
// was already flushed it can only abort with a bare 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", ctxString(rid)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(requestIDHeader, ctxString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": ctxString(rid),
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger attached by Logger().
// When none is attached (Logger() not installed, or a bare context) it
// returns the global logger so callers never need a nil check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get("logger"); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// ctxString unwraps a Gin context value as a string, "" for anything else.
func ctxString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// clip shortens s to max bytes with a trailing ellipsis; max <= 0 disables
// clipping. Byte-based truncation is fine for log output.
func clip(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
