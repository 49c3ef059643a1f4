// Package handlers provides the HTTP handler implementations for the public
// API.
//
// This file holds the response helpers every endpoint goes through, so
// success and failure bodies look the same everywhere. Errors always carry a
// stable machine-readable code plus the request's correlation id:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "character_not_found",
//	  "message": "character not found"
//	}
//
// while successes serialize the domain object directly:
//
//	HTTP/1.1 201 Created
//	{ "id": "abc123", "name": "Ada", "path": "ada", "subscriber_count": 0 }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calliope-hq/go-social-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint. RequestID
// echoes the X-Request-ID header so a client report can be matched to server
// logs; Code is stable for machines (see errors.go), Message is for humans.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// fail aborts the request with the standard error envelope. Server-side
// failures (5xx) are additionally logged through the request-scoped logger;
// client errors are already visible in the access log's warn line.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is fail for callers outside the package, such as the router's NoRoute
// and NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent answers 204 for operations with nothing to return, such as
// subscription changes and partial updates.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
