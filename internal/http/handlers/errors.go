// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, unauthorized, conflict) mirror common HTTP
//     status semantics to aid interoperability.
//   - Domain-specific codes (e.g., not_owner, content_too_long) are reserved for
//     business logic errors that cannot be conveyed by status alone.
//   - All error responses must include both an HTTP status and one of these codes.
//
// Usage:
//   - Handlers select the most specific matching code and pass it to `fail()` along
//     with the corresponding HTTP status and message.
//   - Clients are expected to branch on these codes for programmatic error handling.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_owner",
//	  "message": "not the owner of this resource"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calliope-hq/go-social-backend/internal/auth"
	"github.com/calliope-hq/go-social-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeNotOwner         = "not_owner"
	ErrCodeInvalidPath      = "invalid_path"
	ErrCodeEmptyContent     = "empty_content"
	ErrCodeContentTooLong   = "content_too_long"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failService translates a service-layer error into the corresponding HTTP
// response. Unrecognized errors become a 500 with a generic message so
// internal details never leak to clients.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrNoIdentity):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	case errors.Is(err, services.ErrCharacterNotFound),
		errors.Is(err, services.ErrThreadNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrPersonaNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		fail(c, http.StatusForbidden, ErrCodeNotOwner, err.Error())
	case errors.Is(err, services.ErrInvalidPath):
		fail(c, http.StatusBadRequest, ErrCodeInvalidPath, err.Error())
	case errors.Is(err, services.ErrEmptyName),
		errors.Is(err, services.ErrInvalidSender),
		errors.Is(err, services.ErrInvalidNsfwFilter):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrEmptyContent):
		fail(c, http.StatusBadRequest, ErrCodeEmptyContent, err.Error())
	case errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeContentTooLong, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}
