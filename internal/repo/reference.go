// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the single-cell update escape hatch
// used by generic editing UIs that do not know the entity shape at compile
// time.
//
// Rather than accepting free-form table/column strings, the addressable
// cells are a fixed, compile-time enumerated set. Anything outside the set
// is rejected with ErrCellNotAllowed before touching the store. The updater
// bypasses entity-specific validation, so callers own the type and shape
// correctness of the value; it is an escape hatch, not the primary write
// path.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// CellRef addresses a single editable column of a row-id-keyed table.
type CellRef struct {
	Table  string
	Column string
}

// The editable cells. Only tables keyed by an "id" column participate;
// rows keyed by foreign keys (attributes, preferences) have typed paths.
var (
	CellCharacterName        = CellRef{"characters", "name"}
	CellCharacterBio         = CellRef{"characters", "bio"}
	CellCharacterDescription = CellRef{"characters", "description"}
	CellCharacterAppearance  = CellRef{"characters", "appearance"}
	CellCharacterTags        = CellRef{"characters", "tags"}
	CellPostContent          = CellRef{"posts", "content"}
	CellThreadTitle          = CellRef{"threads", "title"}
	CellPersonaName          = CellRef{"user_personas", "name"}
	CellPersonaBio           = CellRef{"user_personas", "bio"}
)

var allowedCells = map[CellRef]struct{}{
	CellCharacterName:        {},
	CellCharacterBio:         {},
	CellCharacterDescription: {},
	CellCharacterAppearance:  {},
	CellCharacterTags:        {},
	CellPostContent:          {},
	CellThreadTitle:          {},
	CellPersonaName:          {},
	CellPersonaBio:           {},
}

// ErrCellNotAllowed is returned when a cell reference is outside the
// enumerated editable set.
var ErrCellNotAllowed = errors.New("cell reference not allowed")

// UpdateCell performs a single-column update on the row of ref.Table whose
// id equals rowID. Returns ErrCellNotAllowed for unlisted references and
// ErrNotFound when no row matched.
func UpdateCell(ctx context.Context, db *gorm.DB, ref CellRef, rowID string, value any) error {
	if _, ok := allowedCells[ref]; !ok {
		return ErrCellNotAllowed
	}
	res := db.WithContext(ctx).
		Table(ref.Table).
		Where("id = ?", rowID).
		Update(ref.Column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
