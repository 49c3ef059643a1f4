// Package handlers – character endpoints.
//
// Routes covered here:
//
//	GET    /characters                       list public characters (NSFW-filtered)
//	POST   /characters                       create a character (+ attribute sheet)
//	GET    /characters/:id                   fetch by id
//	GET    /characters/by-path/:path         fetch by unique path
//	PATCH  /characters/:id                   partial update (owner only)
//	GET    /characters/:id/profile           resolved behavioral profile
//	GET    /characters/:id/attributes        raw attribute sheet
//	PUT    /characters/:id/attributes        replace attribute sheet (owner only)
//	POST   /characters/:id/subscription      subscribe the caller
//	DELETE /characters/:id/subscription      unsubscribe the caller
//	GET    /me/subscriptions                 character ids the caller follows
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/services"
	"github.com/calliope-hq/go-social-backend/internal/utils"
)

// CharacterHandler exposes CharacterService over HTTP.
type CharacterHandler struct {
	Svc *services.CharacterService
}

// NewCharacterHandler wires the handler to its service.
func NewCharacterHandler(svc *services.CharacterService) *CharacterHandler {
	return &CharacterHandler{Svc: svc}
}

// createCharacterRequest is the POST /characters payload: the character draft
// plus an optional initial attribute sheet. When attributes are omitted the
// character starts neutral.
type createCharacterRequest struct {
	domain.CharacterDraft
	Attributes *domain.CharacterAttributes `json:"attributes,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCharactersResponse wraps a page of characters and pagination
// information.
type ListCharactersResponse struct {
	Characters []domain.Character `json:"characters"`
	Pagination Pagination         `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// List returns one page of the public characters visible to the caller,
// newest first.
func (h *CharacterHandler) List(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.Svc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListCharactersResponse{
		Characters: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// Create inserts a new character owned by the caller.
func (h *CharacterHandler) Create(c *gin.Context) {
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), req.CharacterDraft, req.Attributes)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// Get fetches one character by id.
func (h *CharacterHandler) Get(c *gin.Context) {
	out, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetByPath fetches one character by its unique path.
func (h *CharacterHandler) GetByPath(c *gin.Context) {
	out, err := h.Svc.GetByPath(c.Request.Context(), c.Param("path"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// Update applies a partial update to a character owned by the caller.
func (h *CharacterHandler) Update(c *gin.Context) {
	var draft domain.CharacterDraft
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

// Profile returns the character's mood, goal, and resolved trait
// descriptions.
func (h *CharacterHandler) Profile(c *gin.Context) {
	out, err := h.Svc.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// Attributes returns the character's raw attribute sheet.
func (h *CharacterHandler) Attributes(c *gin.Context) {
	out, err := h.Svc.Attributes(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// SetAttributes replaces the character's attribute sheet (owner only).
func (h *CharacterHandler) SetAttributes(c *gin.Context) {
	var a domain.CharacterAttributes
	if err := c.ShouldBindJSON(&a); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.Svc.SetAttributes(c.Request.Context(), c.Param("id"), a); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// Subscribe records the caller as a subscriber of the character.
func (h *CharacterHandler) Subscribe(c *gin.Context) {
	if err := h.Svc.Subscribe(c.Request.Context(), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// Unsubscribe removes the caller's subscription; a no-op when absent.
func (h *CharacterHandler) Unsubscribe(c *gin.Context) {
	if err := h.Svc.Unsubscribe(c.Request.Context(), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// Subscriptions lists the character ids the caller follows.
func (h *CharacterHandler) Subscriptions(c *gin.Context) {
	out, err := h.Svc.Subscriptions(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"character_ids": out})
}
