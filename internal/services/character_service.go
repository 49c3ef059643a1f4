// Package services – CharacterService
//
// This file implements CharacterService, the application-level component
// that owns the character lifecycle: creation (together with the initial
// attribute sheet, atomically), partial updates with ownership enforcement,
// discovery listings honoring the viewer's NSFW preference, and the
// behavioral profile derived from the attribute interpretation engine.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// character and user identifiers.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/auth"
	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// pathRE constrains character paths to lowercase URL slugs.
var pathRE = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// CharacterService coordinates character persistence and discovery.
type CharacterService struct {
	DB *gorm.DB
}

// Create inserts a new character owned by the authenticated caller, along
// with its attribute sheet, in one transaction. A nil attrs starts the
// character neutral (all traits 0). Fails with auth.ErrNoIdentity when the
// context carries no identity.
func (s *CharacterService) Create(ctx context.Context, draft domain.CharacterDraft, attrs *domain.CharacterAttributes) (*domain.Character, error) {
	tr := otel.Tracer("services/CharacterService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return nil, err
	}

	if draft.Name == nil || strings.TrimSpace(*draft.Name) == "" {
		return nil, ErrEmptyName
	}
	if draft.Path == nil || !pathRE.MatchString(*draft.Path) {
		return nil, ErrInvalidPath
	}
	if draft.Gender != nil {
		g := domain.NormalizeGender(*draft.Gender)
		draft.Gender = &g
	}

	if attrs == nil {
		attrs = &domain.CharacterAttributes{}
	}

	var created *domain.Character
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.CreateCharacter(ctx, tx, userID, draft)
		if err != nil {
			return err
		}
		if err := repo.InsertAttributes(ctx, tx, c.ID, *attrs); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("character.id", created.ID))
	return created, nil
}

// Get fetches a character by id, subscriber count included.
func (s *CharacterService) Get(ctx context.Context, id string) (*domain.Character, error) {
	tr := otel.Tracer("services/CharacterService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("character.id", id)),
	)
	defer span.End()

	c, err := repo.GetCharacter(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCharacterNotFound
	}
	return c, err
}

// GetByPath fetches a character by its unique human-readable path.
func (s *CharacterService) GetByPath(ctx context.Context, path string) (*domain.Character, error) {
	tr := otel.Tracer("services/CharacterService")
	ctx, span := tr.Start(ctx, "GetByPath",
		trace.WithAttributes(attribute.String("character.path", path)),
	)
	defer span.End()

	c, err := repo.GetCharacterByPath(ctx, s.DB, path)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCharacterNotFound
	}
	return c, err
}

// List returns the public characters visible to the caller, most recent
// first. The viewer's stored NSFW preference selects the filter;
// unauthenticated viewers and users without a preferences row default to
// hide.
func (s *CharacterService) List(ctx context.Context) ([]domain.Character, error) {
	tr := otel.Tracer("services/CharacterService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	filter, err := s.viewerFilter(ctx)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("nsfw_filter", string(filter)))
	return repo.ListCharacters(ctx, s.DB, filter)
}

// ListPage returns one page of the public characters visible to the caller
// and the total count, most recent first.
func (s *CharacterService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Character, int64, error) {
	tr := otel.Tracer("services/CharacterService")
	ctx, span := tr.Start(ctx, "ListPage")
	defer span.End()

	filter, err := s.viewerFilter(ctx)
	if err != nil {
		return nil, 0, err
	}
	span.SetAttributes(attribute.String("nsfw_filter", string(filter)))

	total, err := repo.CountCharacters(ctx, s.DB, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListCharactersPage(ctx, s.DB, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// viewerFilter resolves the NSFW filter for the current caller: their stored
// preference when present, otherwise hide.
func (s *CharacterService) viewerFilter(ctx context.Context) (domain.NsfwFilter, error) {
	filter := domain.NsfwHide
	if userID, ok := auth.UserID(ctx); ok {
		prefs, err := repo.GetPreferences(ctx, s.DB, userID)
		switch {
		case err == nil:
			filter = prefs.NsfwFilter
		case errors.Is(err, repo.ErrNotFound):
			// first login, keep the default
		default:
			return filter, err
		}
	}
	return filter, nil
}

// Update applies a partial update to a character owned by the caller. Only
// fields present in the draft are touched; a supplied path must still be a
// valid slug.
func (s *CharacterService) Update(ctx context.Context, id string, draft domain.CharacterDraft) error {
	tr := otel.Tracer("services/CharacterService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("character.id", id)),
	)
	defer span.End()

	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return err
	}
	if draft.Path != nil && !pathRE.MatchString(*draft.Path) {
		return ErrInvalidPath
	}
	if draft.Gender != nil {
		g := domain.NormalizeGender(*draft.Gender)
		draft.Gender = &g
	}

	c, err := repo.GetCharacter(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCharacterNotFound
	}
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotOwner
	}

	err = repo.UpdateCharacter(ctx, s.DB, id, draft)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCharacterNotFound
	}
	return err
}

// Attributes returns the raw attribute sheet of a character.
func (s *CharacterService) Attributes(ctx context.Context, characterID string) (*domain.CharacterAttributes, error) {
	a, err := repo.GetAttributes(ctx, s.DB, characterID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCharacterNotFound
	}
	return a, err
}

// SetAttributes replaces a character's attribute sheet, creating it when
// absent. Only the owner may write it.
func (s *CharacterService) SetAttributes(ctx context.Context, characterID string, a domain.CharacterAttributes) error {
	tr := otel.Tracer("services/CharacterService")
	ctx, span := tr.Start(ctx, "SetAttributes",
		trace.WithAttributes(attribute.String("character.id", characterID)),
	)
	defer span.End()

	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return err
	}
	c, err := repo.GetCharacter(ctx, s.DB, characterID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCharacterNotFound
	}
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotOwner
	}

	return repo.UpsertAttributes(ctx, s.DB, characterID, a)
}

// Profile is the behavioral profile of a character: current mood and goal
// plus every numeric trait resolved to its description through the
// interpretation engine. This is the sheet the characters' decision logic
// consumes.
type Profile struct {
	Mood   string            `json:"mood"`
	Goal   string            `json:"goal"`
	Traits map[string]string `json:"traits"`
}

// Profile resolves the character's attribute sheet to behavioral
// descriptions.
func (s *CharacterService) Profile(ctx context.Context, characterID string) (*Profile, error) {
	tr := otel.Tracer("services/CharacterService")
	ctx, span := tr.Start(ctx, "Profile",
		trace.WithAttributes(attribute.String("character.id", characterID)),
	)
	defer span.End()

	a, err := repo.GetAttributes(ctx, s.DB, characterID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}

	return &Profile{
		Mood:   a.Mood,
		Goal:   a.Goal,
		Traits: a.DescribeAll(),
	}, nil
}

// Subscribe records the caller as a subscriber of the character.
func (s *CharacterService) Subscribe(ctx context.Context, characterID string) error {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return err
	}
	if _, err := s.Get(ctx, characterID); err != nil {
		return err
	}
	return repo.Subscribe(ctx, s.DB, userID, characterID)
}

// Unsubscribe removes the caller's subscription. Unsubscribing when not
// subscribed is a no-op.
func (s *CharacterService) Unsubscribe(ctx context.Context, characterID string) error {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return err
	}
	return repo.Unsubscribe(ctx, s.DB, userID, characterID)
}

// Subscriptions lists the character ids the caller follows.
func (s *CharacterService) Subscriptions(ctx context.Context) ([]string, error) {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return nil, err
	}
	return repo.ListSubscriptions(ctx, s.DB, userID)
}
