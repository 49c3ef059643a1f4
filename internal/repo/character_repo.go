// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Character
// model.
//
// All functions accept a *gorm.DB handle, making them safe for use within
// transactions or connection-scoped operations. They follow the "thin
// repository" approach: no business logic, only CRUD persistence and query
// composition.
//
// Error semantics:
//   - When a character is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound), so callers can treat "no row" as a
//     normal empty result distinct from a store failure.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated unchanged.
//
// Every read path (single get, get by path, list) runs the same projection
// step after the row query returns: the subscriber aggregate is folded onto
// the entity's SubscriberCount field, defaulting to 0 when no subscriptions
// exist. The count is never written back.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for convenience and consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// foldSubscriberCounts attaches the joined subscription aggregate to each
// character in cs. Runs strictly after the row query; absent aggregate rows
// leave the default 0.
func foldSubscriberCounts(ctx context.Context, db *gorm.DB, cs []*domain.Character) error {
	if len(cs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}

	var rows []struct {
		CharacterID string
		N           int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Select("character_id, COUNT(*) AS n").
		Where("character_id IN ?", ids).
		Group("character_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.CharacterID] = r.N
	}
	for _, c := range cs {
		c.SubscriberCount = counts[c.ID]
	}
	return nil
}

// GetCharacter fetches a single character by its ID, with the subscriber
// count folded in. Returns ErrNotFound if the record does not exist.
func GetCharacter(ctx context.Context, db *gorm.DB, id string) (*domain.Character, error) {
	var c domain.Character
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	if err := foldSubscriberCounts(ctx, db, []*domain.Character{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCharacterByPath fetches a single character by its unique path, with the
// subscriber count folded in. Returns ErrNotFound if no character owns the
// path.
func GetCharacterByPath(ctx context.Context, db *gorm.DB, path string) (*domain.Character, error) {
	var c domain.Character
	if err := db.WithContext(ctx).Where("path = ?", path).First(&c).Error; err != nil {
		return nil, err
	}
	if err := foldSubscriberCounts(ctx, db, []*domain.Character{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCharacters returns all public characters ordered by creation time
// descending (most recent first), with subscriber counts folded in. With the
// hide filter, characters flagged NSFW are excluded; show and blur both
// return every public character regardless of the flag (blurring is a
// presentation concern). It returns an empty slice when nothing matches.
func ListCharacters(ctx context.Context, db *gorm.DB, filter domain.NsfwFilter) ([]domain.Character, error) {
	q := db.WithContext(ctx).Where("public = ?", true)
	if filter == domain.NsfwHide {
		q = q.Where("nsfw <> ?", true)
	}

	var out []domain.Character
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}

	ptrs := make([]*domain.Character, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := foldSubscriberCounts(ctx, db, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}

// CountCharacters returns the number of public characters matching the NSFW
// filter. Use it to obtain the total for pagination metadata.
func CountCharacters(ctx context.Context, db *gorm.DB, filter domain.NsfwFilter) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Character{}).
		Where("public = ?", true)
	if filter == domain.NsfwHide {
		q = q.Where("nsfw <> ?", true)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListCharactersPage returns a paginated slice of public characters matching
// the NSFW filter, ordered by creation time descending, with subscriber
// counts folded in.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListCharactersPage(ctx context.Context, db *gorm.DB, filter domain.NsfwFilter, offset, limit int) ([]domain.Character, error) {
	q := db.WithContext(ctx).Where("public = ?", true)
	if filter == domain.NsfwHide {
		q = q.Where("nsfw <> ?", true)
	}

	var out []domain.Character
	err := q.Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}

	ptrs := make([]*domain.Character, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := foldSubscriberCounts(ctx, db, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCharacter inserts a new character owned by userID, populated from
// the draft. The ID is a generated UUID and timestamps are set to UTC;
// ownership always comes from the authenticated caller, never the payload.
// On success the persisted character is returned with a subscriber count of
// zero.
func CreateCharacter(ctx context.Context, db *gorm.DB, userID string, draft domain.CharacterDraft) (*domain.Character, error) {
	now := time.Now().UTC()
	c := &domain.Character{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if draft.Name != nil {
		c.Name = *draft.Name
	}
	if draft.Path != nil {
		c.Path = *draft.Path
	}
	c.Bio = draft.Bio
	c.Description = draft.Description
	c.Appearance = draft.Appearance
	c.AvatarURL = draft.AvatarURL
	c.BannerURL = draft.BannerURL
	if draft.Gender != nil {
		c.Gender = *draft.Gender
	}
	if draft.Tags != nil {
		c.Tags = *draft.Tags
	}
	if draft.Public != nil {
		c.Public = *draft.Public
	}
	if draft.Nsfw != nil {
		c.Nsfw = *draft.Nsfw
	}

	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCharacter applies a partial update to the character identified by
// id. Only fields present in the draft are touched; a draft with no fields
// is a no-op. Returns ErrNotFound when the character does not exist.
func UpdateCharacter(ctx context.Context, db *gorm.DB, id string, draft domain.CharacterDraft) error {
	changes := draft.Changes()
	if len(changes) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Character{}).
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
