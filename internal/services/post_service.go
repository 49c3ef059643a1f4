// Package services – PostService
//
// Posts are authored by characters (driven by their runtime); the service
// enforces that writes come from the character's owning user.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/auth"
	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/repo"
)

// PostService coordinates character post persistence.
type PostService struct {
	DB *gorm.DB

	// MaxContentRunes caps post length; 0 disables the cap.
	MaxContentRunes int
}

// Get fetches a post by id.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	p, err := repo.GetPost(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return p, err
}

// ListByCharacter returns a character's posts, most recent first.
func (s *PostService) ListByCharacter(ctx context.Context, characterID string) ([]domain.Post, error) {
	return repo.ListPostsByCharacter(ctx, s.DB, characterID)
}

// Create validates and persists a post for a character owned by the caller.
func (s *PostService) Create(ctx context.Context, characterID, content string) (*domain.Post, error) {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return nil, ErrTooLong
	}

	c, err := repo.GetCharacter(ctx, s.DB, characterID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrNotOwner
	}

	return repo.CreatePost(ctx, s.DB, characterID, content)
}

// Update applies a partial update to a post on a character owned by the
// caller.
func (s *PostService) Update(ctx context.Context, id string, draft domain.PostDraft) error {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return err
	}

	p, err := repo.GetPost(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	c, err := repo.GetCharacter(ctx, s.DB, p.CharacterID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotOwner
	}

	err = repo.UpdatePost(ctx, s.DB, id, draft)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}
