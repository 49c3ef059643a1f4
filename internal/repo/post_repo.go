// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Post model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/domain"
)

// GetPost fetches a post by ID. Returns ErrNotFound when it does not exist.
func GetPost(ctx context.Context, db *gorm.DB, id string) (*domain.Post, error) {
	var p domain.Post
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPostsByCharacter returns all posts authored by a character, ordered by
// creation time descending (most recent first). Returns an empty slice when
// the character has no posts.
func ListPostsByCharacter(ctx context.Context, db *gorm.DB, characterID string) ([]domain.Post, error) {
	out := []domain.Post{}
	err := db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CreatePost inserts a new post row for a character with a generated UUID
// and UTC timestamps.
func CreatePost(ctx context.Context, db *gorm.DB, characterID, content string) (*domain.Post, error) {
	now := time.Now().UTC()
	p := &domain.Post{
		ID:          uuid.NewString(),
		CharacterID: characterID,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePost applies a partial update to a post. Only fields present in the
// draft are touched. Returns ErrNotFound when the post does not exist.
func UpdatePost(ctx context.Context, db *gorm.DB, id string, draft domain.PostDraft) error {
	changes := draft.Changes()
	if len(changes) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ?", id).
		Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
