// Package handlers – per-user profile endpoints: preferences and personas.
//
// Routes covered here:
//
//	GET    /me/preferences        caller's preferences (default when unset)
//	PUT    /me/preferences        store caller's preferences
//	GET    /me/personas           list caller's personas, avatars resolved
//	POST   /me/personas           create a persona
//	PATCH  /personas/:id          partial update (owner only)
//	DELETE /personas/:id          delete (owner only)
//	PUT    /personas/:id/avatar   upload avatar image (owner only)
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/services"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 5 << 20

// ProfileHandler exposes ProfileService over HTTP.
type ProfileHandler struct {
	Svc *services.ProfileService
}

// NewProfileHandler wires the handler to its service.
func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{Svc: svc}
}

// Preferences returns the caller's stored preferences.
func (h *ProfileHandler) Preferences(c *gin.Context) {
	out, err := h.Svc.Preferences(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// SetPreferences stores the caller's preferences.
func (h *ProfileHandler) SetPreferences(c *gin.Context) {
	var p domain.Preferences
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.Svc.SetPreferences(c.Request.Context(), p); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// Personas lists the caller's personas with resolved avatar URLs.
func (h *ProfileHandler) Personas(c *gin.Context) {
	out, err := h.Svc.Personas(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// CreatePersona inserts a new persona owned by the caller.
func (h *ProfileHandler) CreatePersona(c *gin.Context) {
	var draft domain.PersonaDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	created, err := h.Svc.CreatePersona(c.Request.Context(), draft)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// UpdatePersona applies a partial update to a persona owned by the caller.
func (h *ProfileHandler) UpdatePersona(c *gin.Context) {
	var draft domain.PersonaDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.Svc.UpdatePersona(c.Request.Context(), c.Param("id"), draft); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// DeletePersona removes a persona owned by the caller.
func (h *ProfileHandler) DeletePersona(c *gin.Context) {
	if err := h.Svc.DeletePersona(c.Request.Context(), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// UploadAvatar stores the avatar image carried in the multipart "avatar"
// field and returns its public URL. Reads still go through signed URLs.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field 'avatar' is required")
		return
	}
	if fh.Size > maxAvatarBytes {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeContentTooLong, "avatar exceeds size limit")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload")
		return
	}

	url, err := h.Svc.UploadPersonaAvatar(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"avatar_url": url})
}
