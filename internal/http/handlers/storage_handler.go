// Package handlers – object serving for the disk-rooted store.
//
// Routes covered here:
//
//	GET /storage/:bucket/*object   serve one stored object
//
// Objects in the private user-data bucket require a valid signed-URL token
// (?token=...) bound to the exact bucket and path. Other buckets are public.
package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/calliope-hq/go-social-backend/internal/storage"
)

// StorageHandler serves objects from the disk store.
type StorageHandler struct {
	Store *storage.DiskStore
}

// NewStorageHandler wires the handler to the disk store.
func NewStorageHandler(store *storage.DiskStore) *StorageHandler {
	return &StorageHandler{Store: store}
}

// Serve streams one object. Private-bucket reads are authorized by the
// signed-URL token; there is no session-based fallback.
func (h *StorageHandler) Serve(c *gin.Context) {
	bucket := c.Param("bucket")
	object := strings.TrimPrefix(c.Param("object"), "/")

	if bucket == storage.UserDataBucket {
		token := c.Query("token")
		if token == "" {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "signed token required")
			return
		}
		if err := h.Store.VerifyToken(token, bucket, object); err != nil {
			fail(c, http.StatusForbidden, ErrCodeForbidden, "invalid or expired token")
			return
		}
	}

	data, err := h.Store.Open(bucket, object)
	if os.IsNotExist(err) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "object not found")
		return
	}
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid object path")
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
