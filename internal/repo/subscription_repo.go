// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for character
// subscriptions. A subscription has no lifecycle fields: the row either
// exists (subscribed) or does not.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/domain"
)

// ListSubscriptions returns the character ids a user is subscribed to.
// Returns an empty slice when the user has no subscriptions.
func ListSubscriptions(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	out := []string{}
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("user_id = ?", userID).
		Pluck("character_id", &out).Error
	return out, err
}

// CountSubscribers returns the number of users subscribed to a character.
func CountSubscribers(ctx context.Context, db *gorm.DB, characterID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("character_id = ?", characterID).
		Count(&n).Error
	return n, err
}

// Subscribe inserts a subscription row for (userID, characterID). Inserting
// an already-existing pair surfaces the store's constraint error unchanged.
func Subscribe(ctx context.Context, db *gorm.DB, userID, characterID string) error {
	s := &domain.Subscription{
		UserID:      userID,
		CharacterID: characterID,
		CreatedAt:   time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(s).Error
}

// Unsubscribe deletes the subscription matching both key columns exactly.
// A mismatched pair deletes zero rows and is not an error.
func Unsubscribe(ctx context.Context, db *gorm.DB, userID, characterID string) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND character_id = ?", userID, characterID).
		Delete(&domain.Subscription{}).Error
}
