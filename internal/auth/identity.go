// Package auth carries the caller's authenticated identity. Session
// management itself is an external concern: this package only transports
// the already-authenticated user id through context.Context so ownership
// derivation and storage path scoping can consume it.
package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
)

// ErrNoIdentity is returned when an operation requires an authenticated
// user and none is present. This is a caller precondition violation, so it
// aborts the call instead of being paired with a result.
var ErrNoIdentity = errors.New("no authenticated identity")

type ctxKey struct{}

// HeaderUserID is the transport header the identity middleware reads. The
// value is trusted as-is; verifying it is the job of the fronting auth
// layer.
const HeaderUserID = "X-User-ID"

// WithUser returns a context carrying the authenticated user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID extracts the authenticated user id, reporting whether one is set.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// MustUserID extracts the authenticated user id or fails with ErrNoIdentity.
func MustUserID(ctx context.Context) (string, error) {
	id, ok := UserID(ctx)
	if !ok {
		return "", ErrNoIdentity
	}
	return id, nil
}

// Identity is a Gin middleware that lifts the user id from the transport
// header into both the request context and the Gin context (where the rate
// limiter and logger look it up under "userID"). Requests without the
// header proceed unauthenticated; endpoints that need an identity fail at
// the service layer with ErrNoIdentity.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(HeaderUserID); id != "" {
			c.Set("userID", id)
			c.Request = c.Request.WithContext(WithUser(c.Request.Context(), id))
		}
		c.Next()
	}
}
