// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for per-user
// state: the 1:1 preferences row and user personas.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calliope-hq/go-social-backend/internal/domain"
)

// GetPreferences fetches a user's preferences. The user id key is stripped
// from the returned value: it is a lookup key, not a preference. Returns
// ErrNotFound when the user has no preferences row yet.
func GetPreferences(ctx context.Context, db *gorm.DB, userID string) (*domain.Preferences, error) {
	var row domain.UserPreferences
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &domain.Preferences{NsfwFilter: row.NsfwFilter}, nil
}

// UpdatePreferences overwrites the preferences of an existing row. Returns
// ErrNotFound when the user has no row; use UpsertPreferences to create one.
func UpdatePreferences(ctx context.Context, db *gorm.DB, userID string, p domain.Preferences) error {
	res := db.WithContext(ctx).
		Model(&domain.UserPreferences{}).
		Where("user_id = ?", userID).
		Update("nsfw_filter", p.NsfwFilter)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertPreferences inserts or replaces the preferences row keyed by the
// caller-supplied user id.
func UpsertPreferences(ctx context.Context, db *gorm.DB, userID string, p domain.Preferences) error {
	row := domain.UserPreferences{UserID: userID, NsfwFilter: p.NsfwFilter}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"nsfw_filter"}),
		}).
		Create(&row).Error
}

// ListPersonas returns all personas owned by a user, most recent first.
// Avatar URLs are not populated here: they are resolved out-of-band from the
// signed-URL store by the service layer.
func ListPersonas(ctx context.Context, db *gorm.DB, userID string) ([]domain.UserPersona, error) {
	out := []domain.UserPersona{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetPersona fetches a persona by ID. Returns ErrNotFound when missing.
func GetPersona(ctx context.Context, db *gorm.DB, id string) (*domain.UserPersona, error) {
	var p domain.UserPersona
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePersona inserts a new persona owned by userID, populated from the
// draft, with a generated UUID and UTC timestamps.
func CreatePersona(ctx context.Context, db *gorm.DB, userID string, draft domain.PersonaDraft) (*domain.UserPersona, error) {
	now := time.Now().UTC()
	p := &domain.UserPersona{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        draft.Name,
		Bio:         draft.Bio,
		Description: draft.Description,
		Appearance:  draft.Appearance,
		Gender:      draft.Gender,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePersona applies a partial update to a persona. Only fields present
// in the draft are touched. Returns ErrNotFound when the persona is missing.
func UpdatePersona(ctx context.Context, db *gorm.DB, id string, draft domain.PersonaDraft) error {
	changes := draft.Changes()
	if len(changes) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.UserPersona{}).
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

// DeletePersona removes a persona by ID. Deleting a missing persona is a
// no-op, not an error.
func DeletePersona(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.UserPersona{}).Error
}
