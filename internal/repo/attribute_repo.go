// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the 1:1
// CharacterAttributes row, keyed by character id rather than a generated id.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calliope-hq/go-social-backend/internal/domain"
)

// attributeColumns returns the full column->value map for an attributes row,
// excluding the character_id key. Built from a map rather than the struct so
// zero values (mood "", trait 0) are written, not skipped.
func attributeColumns(a domain.CharacterAttributes) map[string]any {
	m := map[string]any{
		"mood": a.Mood,
		"goal": a.Goal,
	}
	for name, v := range a.TraitValues() {
		m[name] = v
	}
	return m
}

// GetAttributes fetches the attributes row for a character. The character id
// is cleared on the returned value: it is a lookup key, not an attribute.
// Returns ErrNotFound when no row exists.
func GetAttributes(ctx context.Context, db *gorm.DB, characterID string) (*domain.CharacterAttributes, error) {
	var a domain.CharacterAttributes
	if err := db.WithContext(ctx).Where("character_id = ?", characterID).First(&a).Error; err != nil {
		return nil, err
	}
	a.CharacterID = ""
	return &a, nil
}

// InsertAttributes inserts the attributes row for characterID. Fails with a
// constraint error if a row already exists; use UpsertAttributes for
// insert-or-replace semantics.
func InsertAttributes(ctx context.Context, db *gorm.DB, characterID string, a domain.CharacterAttributes) error {
	a.CharacterID = characterID
	return db.WithContext(ctx).Create(&a).Error
}

// UpdateAttributes replaces every attribute column of an existing row,
// including zero-valued ones. Returns ErrNotFound when the row is missing.
func UpdateAttributes(ctx context.Context, db *gorm.DB, characterID string, a domain.CharacterAttributes) error {
	res := db.WithContext(ctx).
		Model(&domain.CharacterAttributes{}).
		Where("character_id = ?", characterID).
		Updates(attributeColumns(a))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertAttributes inserts the attributes row for characterID, or replaces
// all attribute columns when a row with that key already exists. The key is
// caller-supplied (a foreign key), never server-generated.
func UpsertAttributes(ctx context.Context, db *gorm.DB, characterID string, a domain.CharacterAttributes) error {
	a.CharacterID = characterID

	cols := attributeColumns(a)
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "character_id"}},
			DoUpdates: clause.AssignmentColumns(names),
		}).
		Create(&a).Error
}
