// Package services – ProfileService
//
// This file implements ProfileService, which owns per-user state: the NSFW
// preference row and user personas, including avatar upload and per-read
// signed-URL resolution.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/auth"
	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/repo"
	"github.com/calliope-hq/go-social-backend/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProfileService coordinates user preferences and personas.
type ProfileService struct {
	DB    *gorm.DB
	Store storage.Store
}

// Preferences returns the caller's stored preferences. Users without a row
// yet get the default (hide) rather than an error; the row is created on
// first write.
func (s *ProfileService) Preferences(ctx context.Context) (*domain.Preferences, error) {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := repo.GetPreferences(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return &domain.Preferences{NsfwFilter: domain.NsfwHide}, nil
	}
	return p, err
}

// SetPreferences validates and stores the caller's preferences, creating
// the row when absent.
func (s *ProfileService) SetPreferences(ctx context.Context, p domain.Preferences) error {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return err
	}
	if !p.NsfwFilter.Valid() {
		return ErrInvalidNsfwFilter
	}
	return repo.UpsertPreferences(ctx, s.DB, userID, p)
}

// Personas lists the caller's personas with their avatar URLs resolved from
// the signed-URL store. A persona whose avatar cannot be resolved is
// returned without one rather than failing the whole list.
func (s *ProfileService) Personas(ctx context.Context) ([]domain.UserPersona, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Personas")
	defer span.End()

	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return nil, err
	}

	personas, err := repo.ListPersonas(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	for i := range personas {
		url, err := storage.PersonaAvatarURL(ctx, s.Store, userID, personas[i].ID)
		if err == nil {
			personas[i].AvatarURL = &url
		}
	}
	return personas, nil
}

// CreatePersona inserts a new persona owned by the caller.
func (s *ProfileService) CreatePersona(ctx context.Context, draft domain.PersonaDraft) (*domain.UserPersona, error) {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return nil, err
	}
	normalizePersonaGender(&draft)
	return repo.CreatePersona(ctx, s.DB, userID, draft)
}

// UpdatePersona applies a partial update to a persona owned by the caller.
func (s *ProfileService) UpdatePersona(ctx context.Context, id string, draft domain.PersonaDraft) error {
	if err := s.requireOwnedPersona(ctx, id); err != nil {
		return err
	}
	normalizePersonaGender(&draft)
	err := repo.UpdatePersona(ctx, s.DB, id, draft)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPersonaNotFound
	}
	return err
}

// DeletePersona removes a persona owned by the caller.
func (s *ProfileService) DeletePersona(ctx context.Context, id string) error {
	if err := s.requireOwnedPersona(ctx, id); err != nil {
		return err
	}
	return repo.DeletePersona(ctx, s.DB, id)
}

// UploadPersonaAvatar stores the avatar bytes for a persona owned by the
// caller at the conventional user-scoped path and returns the public URL.
// Reads still go through time-limited signed URLs.
func (s *ProfileService) UploadPersonaAvatar(ctx context.Context, personaID string, data []byte) (string, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "UploadPersonaAvatar",
		trace.WithAttributes(attribute.String("persona.id", personaID)),
	)
	defer span.End()

	if err := s.requireOwnedPersona(ctx, personaID); err != nil {
		return "", err
	}
	return storage.UploadForUser(ctx, s.Store, "persona_avatars/"+personaID+".jpg", data)
}

// normalizePersonaGender canonicalizes a supplied gender before it is
// stored; omitted fields pass through untouched.
func normalizePersonaGender(draft *domain.PersonaDraft) {
	if draft.Gender != nil {
		g := domain.NormalizeGender(*draft.Gender)
		draft.Gender = &g
	}
}

// requireOwnedPersona fails unless the persona exists and belongs to the
// authenticated caller.
func (s *ProfileService) requireOwnedPersona(ctx context.Context, id string) error {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return err
	}
	p, err := repo.GetPersona(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPersonaNotFound
	}
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return ErrNotOwner
	}
	return nil
}
