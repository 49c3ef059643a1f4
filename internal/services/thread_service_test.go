package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/calliope-hq/go-social-backend/internal/auth"
	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/realtime"
)

func TestThreadService_Start(t *testing.T) {
	db := newServiceDB(t)
	chars := &CharacterService{DB: db}
	svc := &ThreadService{DB: db}

	c := createCharacter(t, chars, asUser("owner"), "ada lovelace", "ada", true, false)

	if _, err := svc.Start(context.Background(), c.ID, ""); !errors.Is(err, auth.ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
	if _, err := svc.Start(asUser("u1"), "missing", ""); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}

	// Blank titles are generated from the character name.
	th, err := svc.Start(asUser("u1"), c.ID, "  ")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if th.Title != "Chat with Ada Lovelace" {
		t.Fatalf("auto title = %q", th.Title)
	}
	if th.UserID != "u1" {
		t.Fatalf("ownership must come from the caller: %+v", th)
	}

	// Caller-supplied titles are kept as-is (trimmed).
	th2, err := svc.Start(asUser("u1"), c.ID, " Plans ")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if th2.Title != "Plans" {
		t.Fatalf("title = %q", th2.Title)
	}
}

func TestThreadService_Append_Validation(t *testing.T) {
	db := newServiceDB(t)
	chars := &CharacterService{DB: db}
	svc := &ThreadService{DB: db, MaxContentRunes: 20}

	c := createCharacter(t, chars, asUser("owner"), "Ada", "ada", true, false)
	th, err := svc.Start(asUser("u1"), c.ID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := svc.Append(asUser("u1"), th.ID, "bot", "hi"); !errors.Is(err, ErrInvalidSender) {
		t.Fatalf("expected ErrInvalidSender, got %v", err)
	}
	if _, err := svc.Append(asUser("u1"), th.ID, domain.SenderUser, "   "); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	long := strings.Repeat("x", 21)
	if _, err := svc.Append(asUser("u1"), th.ID, domain.SenderUser, long); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	if _, err := svc.Append(asUser("u1"), "missing", domain.SenderUser, "hi"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}

	// User messages require thread ownership.
	if _, err := svc.Append(asUser("intruder"), th.ID, domain.SenderUser, "hi"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	// Character messages come from the runtime and need no user identity.
	if _, err := svc.Append(context.Background(), th.ID, domain.SenderCharacter, "hello!"); err != nil {
		t.Fatalf("character append: %v", err)
	}

	m, err := svc.Append(asUser("u1"), th.ID, domain.SenderUser, "  hi there  ")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if m.Content != "hi there" {
		t.Fatalf("content must be trimmed, got %q", m.Content)
	}
}

func TestThreadService_MessagesAndListings(t *testing.T) {
	db := newServiceDB(t)
	chars := &CharacterService{DB: db}
	svc := &ThreadService{DB: db}

	c := createCharacter(t, chars, asUser("owner"), "Ada", "ada", true, false)
	th, err := svc.Start(asUser("u1"), c.ID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := svc.Messages(context.Background(), "missing"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}

	if _, err := svc.Append(asUser("u1"), th.ID, domain.SenderUser, "first"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := svc.Append(context.Background(), th.ID, domain.SenderCharacter, "second"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	msgs, err := svc.Messages(context.Background(), th.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Fatalf("conversation order broken: %+v", msgs)
	}

	mine, err := svc.ListMine(asUser("u1"))
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != th.ID {
		t.Fatalf("unexpected ListMine: %+v", mine)
	}

	byChar, err := svc.ListForCharacter(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("ListForCharacter: %v", err)
	}
	if len(byChar) != 1 {
		t.Fatalf("unexpected ListForCharacter: %+v", byChar)
	}
}

func TestThreadService_Watch(t *testing.T) {
	db := newServiceDB(t)
	hub := realtime.NewHub()
	if err := hub.Attach(db); err != nil {
		t.Fatalf("hub attach: %v", err)
	}

	chars := &CharacterService{DB: db}
	svc := &ThreadService{DB: db, Hub: hub}

	c := createCharacter(t, chars, asUser("owner"), "Ada", "ada", true, false)
	th, err := svc.Start(asUser("u1"), c.ID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	got := make(chan *domain.Message, 4)
	sub := svc.Watch(th.ID, func(m *domain.Message) { got <- m })
	defer sub.Close()

	sent, err := svc.Append(asUser("u1"), th.ID, domain.SenderUser, "ping")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	select {
	case m := <-got:
		if m.ID != sent.ID {
			t.Fatalf("unexpected delivery: %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for watch delivery")
	}
}
