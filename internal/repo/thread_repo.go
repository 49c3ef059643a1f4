// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Thread
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/domain"
)

// ListThreads returns all threads with a character, ordered by creation time
// descending (most recent first). Returns an empty slice when there are none.
func ListThreads(ctx context.Context, db *gorm.DB, characterID string) ([]domain.Thread, error) {
	out := []domain.Thread{}
	err := db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListUserThreads returns all threads owned by a user, most recent first.
func ListUserThreads(ctx context.Context, db *gorm.DB, userID string) ([]domain.Thread, error) {
	out := []domain.Thread{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetThread fetches a thread by ID. Returns ErrNotFound when it does not
// exist.
func GetThread(ctx context.Context, db *gorm.DB, id string) (*domain.Thread, error) {
	var t domain.Thread
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateThread inserts a new thread between userID and characterID. The
// owning user always comes from the caller's authenticated identity, never
// from the request payload.
func CreateThread(ctx context.Context, db *gorm.DB, userID, characterID, title string) (*domain.Thread, error) {
	now := time.Now().UTC()
	t := &domain.Thread{
		ID:          uuid.NewString(),
		UserID:      userID,
		CharacterID: characterID,
		Title:       title,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}
