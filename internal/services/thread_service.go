// Package services – ThreadService
//
// This file implements ThreadService, which owns direct-message
// conversations between users and characters: starting threads (auto-titled
// from the character name when the caller provides none), listing them, and
// the append-only message flow including the realtime watch path.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/auth"
	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/realtime"
	"github.com/calliope-hq/go-social-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ThreadService coordinates threads and their messages.
type ThreadService struct {
	DB  *gorm.DB
	Hub *realtime.Hub

	// MaxContentRunes caps message content length; 0 disables the cap.
	MaxContentRunes int
}

// Start creates a thread between the authenticated caller and a character.
// When title is blank it is generated from the character's name.
func (s *ThreadService) Start(ctx context.Context, characterID, title string) (*domain.Thread, error) {
	tr := otel.Tracer("services/ThreadService")
	ctx, span := tr.Start(ctx, "Start",
		trace.WithAttributes(attribute.String("character.id", characterID)),
	)
	defer span.End()

	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := repo.GetCharacter(ctx, s.DB, characterID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Chat with " + cases.Title(language.English).String(c.Name)
	}

	return repo.CreateThread(ctx, s.DB, userID, characterID, title)
}

// Get fetches a thread by id.
func (s *ThreadService) Get(ctx context.Context, id string) (*domain.Thread, error) {
	t, err := repo.GetThread(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrThreadNotFound
	}
	return t, err
}

// ListForCharacter returns a character's threads, most recent first.
func (s *ThreadService) ListForCharacter(ctx context.Context, characterID string) ([]domain.Thread, error) {
	return repo.ListThreads(ctx, s.DB, characterID)
}

// ListMine returns the caller's threads, most recent first.
func (s *ThreadService) ListMine(ctx context.Context) ([]domain.Thread, error) {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return nil, err
	}
	return repo.ListUserThreads(ctx, s.DB, userID)
}

// Messages returns a thread's messages oldest first, preserving
// conversational order.
func (s *ThreadService) Messages(ctx context.Context, threadID string) ([]domain.Message, error) {
	tr := otel.Tracer("services/ThreadService")
	ctx, span := tr.Start(ctx, "Messages",
		trace.WithAttributes(attribute.String("thread.id", threadID)),
	)
	defer span.End()

	if _, err := repo.GetThread(ctx, s.DB, threadID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return repo.ListMessages(ctx, s.DB, threadID)
}

// Append validates and persists one message on a thread. User-sent messages
// require the caller to own the thread; character-sent messages come from
// the character runtime, which is trusted with the thread id.
func (s *ThreadService) Append(ctx context.Context, threadID, senderType, content string) (*domain.Message, error) {
	tr := otel.Tracer("services/ThreadService")
	ctx, span := tr.Start(ctx, "Append",
		trace.WithAttributes(
			attribute.String("thread.id", threadID),
			attribute.String("sender_type", senderType),
		),
	)
	defer span.End()

	if senderType != domain.SenderUser && senderType != domain.SenderCharacter {
		return nil, ErrInvalidSender
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return nil, ErrTooLong
	}

	t, err := repo.GetThread(ctx, s.DB, threadID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}

	if senderType == domain.SenderUser {
		userID, err := auth.MustUserID(ctx)
		if err != nil {
			return nil, err
		}
		if t.UserID != userID {
			return nil, ErrNotOwner
		}
	}

	return repo.CreateMessage(ctx, s.DB, threadID, senderType, content)
}

// Watch opens a realtime subscription to new messages on a thread. The
// returned handle must be closed when the watcher goes away.
func (s *ThreadService) Watch(threadID string, onInsert func(*domain.Message)) *realtime.Subscription {
	return repo.SubscribeMessages(s.Hub, threadID, onInsert)
}
