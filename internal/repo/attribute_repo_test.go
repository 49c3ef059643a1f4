package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/calliope-hq/go-social-backend/internal/domain"
)

func TestInsertAndGetAttributes(t *testing.T) {
	db := newRepoDB(t, &domain.CharacterAttributes{})
	ctx := context.Background()
	id := uuid.NewString()

	a := domain.CharacterAttributes{
		Mood:       "curious",
		Goal:       "make friends",
		Positivity: 42,
		Humor:      -61,
	}
	if err := InsertAttributes(ctx, db, id, a); err != nil {
		t.Fatalf("InsertAttributes: %v", err)
	}

	got, err := GetAttributes(ctx, db, id)
	if err != nil {
		t.Fatalf("GetAttributes: %v", err)
	}
	if got.CharacterID != "" {
		t.Fatalf("character id is a lookup key and must be stripped, got %q", got.CharacterID)
	}
	if got.Mood != "curious" || got.Goal != "make friends" {
		t.Fatalf("state fields mismatch: %+v", got)
	}
	if got.Positivity != 42 || got.Humor != -61 {
		t.Fatalf("trait values mismatch: %+v", got)
	}
	if got.Depth != 0 {
		t.Fatalf("unset traits must read back neutral, got %v", got.Depth)
	}
}

func TestGetAttributes_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.CharacterAttributes{})
	if _, err := GetAttributes(context.Background(), db, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertAttributes_DuplicateKeyFails(t *testing.T) {
	db := newRepoDB(t, &domain.CharacterAttributes{})
	ctx := context.Background()
	id := uuid.NewString()

	if err := InsertAttributes(ctx, db, id, domain.CharacterAttributes{}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := InsertAttributes(ctx, db, id, domain.CharacterAttributes{}); err == nil {
		t.Fatalf("second insert with same key should fail")
	}
}

func TestUpdateAttributes_WritesZeroValues(t *testing.T) {
	db := newRepoDB(t, &domain.CharacterAttributes{})
	ctx := context.Background()
	id := uuid.NewString()

	if err := InsertAttributes(ctx, db, id, domain.CharacterAttributes{
		Mood: "angry", Positivity: -80, Humor: 30,
	}); err != nil {
		t.Fatalf("InsertAttributes: %v", err)
	}

	// Full replacement: unspecified fields reset to their zero values.
	if err := UpdateAttributes(ctx, db, id, domain.CharacterAttributes{Humor: 90}); err != nil {
		t.Fatalf("UpdateAttributes: %v", err)
	}

	got, err := GetAttributes(ctx, db, id)
	if err != nil {
		t.Fatalf("GetAttributes: %v", err)
	}
	if got.Mood != "" || got.Positivity != 0 {
		t.Fatalf("zero values must overwrite prior state: %+v", got)
	}
	if got.Humor != 90 {
		t.Fatalf("humor = %v, want 90", got.Humor)
	}
}

func TestUpdateAttributes_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.CharacterAttributes{})
	err := UpdateAttributes(context.Background(), db, uuid.NewString(), domain.CharacterAttributes{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertAttributes_InsertThenReplace(t *testing.T) {
	db := newRepoDB(t, &domain.CharacterAttributes{})
	ctx := context.Background()
	id := uuid.NewString()

	// First call inserts.
	if err := UpsertAttributes(ctx, db, id, domain.CharacterAttributes{Mood: "fresh", Depth: 25}); err != nil {
		t.Fatalf("UpsertAttributes insert: %v", err)
	}
	got, err := GetAttributes(ctx, db, id)
	if err != nil {
		t.Fatalf("GetAttributes: %v", err)
	}
	if got.Mood != "fresh" || got.Depth != 25 {
		t.Fatalf("insert path mismatch: %+v", got)
	}

	// Second call replaces every column, zeroes included.
	if err := UpsertAttributes(ctx, db, id, domain.CharacterAttributes{Openness: 70}); err != nil {
		t.Fatalf("UpsertAttributes replace: %v", err)
	}
	got, err = GetAttributes(ctx, db, id)
	if err != nil {
		t.Fatalf("GetAttributes: %v", err)
	}
	if got.Mood != "" || got.Depth != 0 || got.Openness != 70 {
		t.Fatalf("replace path mismatch: %+v", got)
	}
}
