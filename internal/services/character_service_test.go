package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/auth"
	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/repo"
)

// newServiceDB opens a migrated throwaway database for service tests.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func asUser(userID string) context.Context {
	return auth.WithUser(context.Background(), userID)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func createCharacter(t *testing.T, svc *CharacterService, ctx context.Context, name, path string, public, nsfw bool) *domain.Character {
	t.Helper()
	c, err := svc.Create(ctx, domain.CharacterDraft{
		Name:   strPtr(name),
		Path:   strPtr(path),
		Public: boolPtr(public),
		Nsfw:   boolPtr(nsfw),
	}, nil)
	if err != nil {
		t.Fatalf("create character %q: %v", name, err)
	}
	return c
}

func TestCharacterService_Create(t *testing.T) {
	db := newServiceDB(t)
	svc := &CharacterService{DB: db}

	// Identity is a precondition.
	_, err := svc.Create(context.Background(), domain.CharacterDraft{Name: strPtr("Ada"), Path: strPtr("ada")}, nil)
	if !errors.Is(err, auth.ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}

	// Validation.
	if _, err := svc.Create(asUser("u1"), domain.CharacterDraft{Path: strPtr("ada")}, nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.Create(asUser("u1"), domain.CharacterDraft{Name: strPtr("Ada"), Path: strPtr("Not A Slug")}, nil); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}

	// Success creates the attribute sheet atomically; nil attrs start neutral.
	c, err := svc.Create(asUser("u1"), domain.CharacterDraft{Name: strPtr("Ada"), Path: strPtr("ada")}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.UserID != "u1" {
		t.Fatalf("ownership must come from the caller, got %q", c.UserID)
	}
	attrs, err := svc.Attributes(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs.Positivity != 0 || attrs.Mood != "" {
		t.Fatalf("nil attrs should start neutral: %+v", attrs)
	}

	// Supplied attrs are persisted with the character.
	c2, err := svc.Create(asUser("u1"), domain.CharacterDraft{Name: strPtr("Brin"), Path: strPtr("brin")},
		&domain.CharacterAttributes{Mood: "bold", Humor: 65})
	if err != nil {
		t.Fatalf("Create with attrs: %v", err)
	}
	attrs, err = svc.Attributes(context.Background(), c2.ID)
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs.Mood != "bold" || attrs.Humor != 65 {
		t.Fatalf("attrs not persisted: %+v", attrs)
	}
}

func TestCharacterService_GenderNormalization(t *testing.T) {
	db := newServiceDB(t)
	svc := &CharacterService{DB: db}

	// Free-form input is stored canonically on create.
	c, err := svc.Create(asUser("u1"), domain.CharacterDraft{
		Name:   strPtr("Ada"),
		Path:   strPtr("ada"),
		Gender: strPtr("she is female"),
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Gender != "Female" {
		t.Fatalf("gender = %q, want %q", got.Gender, "Female")
	}

	// Updates normalize too; custom values keep their trimmed input.
	if err := svc.Update(asUser("u1"), c.ID, domain.CharacterDraft{Gender: strPtr("  shapeshifter  ")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Gender != "shapeshifter" {
		t.Fatalf("gender = %q, want %q", got.Gender, "shapeshifter")
	}

	// An explicit empty string still clears the field.
	if err := svc.Update(asUser("u1"), c.ID, domain.CharacterDraft{Gender: strPtr("")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Gender != "" {
		t.Fatalf("gender = %q, want cleared", got.Gender)
	}
}

func TestCharacterService_GetAndGetByPath(t *testing.T) {
	db := newServiceDB(t)
	svc := &CharacterService{DB: db}
	c := createCharacter(t, svc, asUser("u1"), "Ada", "ada", true, false)

	got, err := svc.Get(context.Background(), c.ID)
	if err != nil || got.ID != c.ID {
		t.Fatalf("Get: %+v, %v", got, err)
	}
	got, err = svc.GetByPath(context.Background(), "ada")
	if err != nil || got.ID != c.ID {
		t.Fatalf("GetByPath: %+v, %v", got, err)
	}

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}
	if _, err := svc.GetByPath(context.Background(), "missing"); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}
}

func TestCharacterService_List_ViewerPreference(t *testing.T) {
	db := newServiceDB(t)
	svc := &CharacterService{DB: db}
	profiles := &ProfileService{DB: db}

	createCharacter(t, svc, asUser("owner"), "Safe", "safe", true, false)
	createCharacter(t, svc, asUser("owner"), "Spicy", "spicy", true, true)
	createCharacter(t, svc, asUser("owner"), "Private", "private", false, false)

	// Unauthenticated viewers default to hide.
	anon, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(anon) != 1 || anon[0].Path != "safe" {
		t.Fatalf("anonymous viewer should see only safe public characters: %+v", anon)
	}

	// A viewer without a preferences row also defaults to hide.
	fresh, err := svc.List(asUser("fresh-user"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(fresh) != 1 {
		t.Fatalf("viewer without preferences should default to hide: %+v", fresh)
	}

	// A stored preference is honored.
	if err := profiles.SetPreferences(asUser("viewer"), domain.Preferences{NsfwFilter: domain.NsfwShow}); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}
	shown, err := svc.List(asUser("viewer"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(shown) != 2 {
		t.Fatalf("show preference should surface NSFW characters: %+v", shown)
	}
}

func TestCharacterService_ListPage(t *testing.T) {
	db := newServiceDB(t)
	svc := &CharacterService{DB: db}

	for _, p := range []string{"a", "b", "c"} {
		createCharacter(t, svc, asUser("owner"), p, p, true, false)
	}

	items, total, err := svc.ListPage(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(items))
	}
	items, _, err = svc.ListPage(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("page 2: len=%d", len(items))
	}
}

func TestCharacterService_Update_Ownership(t *testing.T) {
	db := newServiceDB(t)
	svc := &CharacterService{DB: db}
	c := createCharacter(t, svc, asUser("u1"), "Ada", "ada", true, false)

	if err := svc.Update(asUser("intruder"), c.ID, domain.CharacterDraft{Name: strPtr("Hacked")}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Update(asUser("u1"), c.ID, domain.CharacterDraft{Path: strPtr("Bad Path")}); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
	if err := svc.Update(asUser("u1"), "missing", domain.CharacterDraft{Name: strPtr("x")}); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}

	if err := svc.Update(asUser("u1"), c.ID, domain.CharacterDraft{Name: strPtr("Ada Lovelace")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Ada Lovelace" || got.Path != "ada" {
		t.Fatalf("partial update mismatch: %+v", got)
	}
}

func TestCharacterService_SetAttributesAndProfile(t *testing.T) {
	db := newServiceDB(t)
	svc := &CharacterService{DB: db}
	c := createCharacter(t, svc, asUser("u1"), "Ada", "ada", true, false)

	if err := svc.SetAttributes(asUser("intruder"), c.ID, domain.CharacterAttributes{}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	err := svc.SetAttributes(asUser("u1"), c.ID, domain.CharacterAttributes{
		Mood: "inspired", Goal: "finish the engine",
		Positivity: 70, Humor: -30,
	})
	if err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}

	p, err := svc.Profile(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Mood != "inspired" || p.Goal != "finish the engine" {
		t.Fatalf("state mismatch: %+v", p)
	}
	if p.Traits["positivity"] != "Extremely positive outlook" {
		t.Fatalf("positivity = %q", p.Traits["positivity"])
	}
	if p.Traits["humor"] != "Rarely uses humor" {
		t.Fatalf("humor = %q", p.Traits["humor"])
	}

	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}
}

func TestCharacterService_SubscriptionFlow(t *testing.T) {
	db := newServiceDB(t)
	svc := &CharacterService{DB: db}
	c := createCharacter(t, svc, asUser("owner"), "Ada", "ada", true, false)

	if err := svc.Subscribe(asUser("fan"), "missing"); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}
	if err := svc.Subscribe(asUser("fan"), c.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SubscriberCount != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got.SubscriberCount)
	}

	subs, err := svc.Subscriptions(asUser("fan"))
	if err != nil {
		t.Fatalf("Subscriptions: %v", err)
	}
	if len(subs) != 1 || subs[0] != c.ID {
		t.Fatalf("unexpected subscriptions: %v", subs)
	}

	if err := svc.Unsubscribe(asUser("fan"), c.ID); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	// Unsubscribing when not subscribed is a no-op.
	if err := svc.Unsubscribe(asUser("fan"), c.ID); err != nil {
		t.Fatalf("repeat Unsubscribe: %v", err)
	}
}
