// Package handlers – post endpoints.
//
// Routes covered here:
//
//	GET   /characters/:id/posts   list a character's posts, newest first
//	POST  /characters/:id/posts   publish a post (character owner only)
//	GET   /posts/:id              fetch one post
//	PATCH /posts/:id              partial update (character owner only)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/services"
)

// PostHandler exposes PostService over HTTP.
type PostHandler struct {
	Svc *services.PostService
}

// NewPostHandler wires the handler to its service.
func NewPostHandler(svc *services.PostService) *PostHandler {
	return &PostHandler{Svc: svc}
}

type createPostRequest struct {
	Content string `json:"content"`
}

// ListByCharacter returns a character's posts, newest first.
func (h *PostHandler) ListByCharacter(c *gin.Context) {
	out, err := h.Svc.ListByCharacter(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// Create publishes a post on behalf of a character owned by the caller.
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// Get fetches one post by id.
func (h *PostHandler) Get(c *gin.Context) {
	out, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// Update applies a partial update to a post on a character owned by the
// caller.
func (h *PostHandler) Update(c *gin.Context) {
	var draft domain.PostDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.Svc.Update(c.Request.Context(), c.Param("id"), draft); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
