package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/calliope-hq/go-social-backend/internal/domain"
)

func TestUpdateCell_AllowedColumn(t *testing.T) {
	db := newRepoDB(t, &domain.Character{})
	ctx := context.Background()

	c := seedCharacter(t, db, domain.Character{UserID: "u1", Name: "Ada", Path: "ada"})

	if err := UpdateCell(ctx, db, CellCharacterName, c.ID, "Ada Lovelace"); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}

	var got domain.Character
	if err := db.Where("id = ?", c.ID).First(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "Ada Lovelace" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.Path != "ada" {
		t.Fatalf("other columns must be untouched: %+v", got)
	}
}

func TestUpdateCell_RejectsUnlistedCells(t *testing.T) {
	db := newRepoDB(t, &domain.Character{})
	ctx := context.Background()

	cases := []CellRef{
		{"characters", "user_id"},          // ownership is never editable
		{"characters", "id"},               // keys are never editable
		{"character_subscriptions", "any"}, // table not in the set
		{"users; DROP TABLE x", "name"},    // hostile input stops at the allowlist
	}
	for _, ref := range cases {
		if err := UpdateCell(ctx, db, ref, uuid.NewString(), "v"); !errors.Is(err, ErrCellNotAllowed) {
			t.Fatalf("ref %+v: expected ErrCellNotAllowed, got %v", ref, err)
		}
	}
}

func TestUpdateCell_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.Character{})
	err := UpdateCell(context.Background(), db, CellCharacterBio, uuid.NewString(), "bio")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCell_OtherTables(t *testing.T) {
	db := newRepoDB(t, &domain.Post{}, &domain.Thread{}, &domain.UserPersona{}, &domain.Character{})
	ctx := context.Background()

	post, err := CreatePost(ctx, db, uuid.NewString(), "draft")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := UpdateCell(ctx, db, CellPostContent, post.ID, "final"); err != nil {
		t.Fatalf("UpdateCell post: %v", err)
	}
	got, err := GetPost(ctx, db, post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Content != "final" {
		t.Fatalf("content = %q", got.Content)
	}

	th, err := CreateThread(ctx, db, "u1", uuid.NewString(), "old title")
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if err := UpdateCell(ctx, db, CellThreadTitle, th.ID, "new title"); err != nil {
		t.Fatalf("UpdateCell thread: %v", err)
	}
	gotTh, err := GetThread(ctx, db, th.ID)
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if gotTh.Title != "new title" {
		t.Fatalf("title = %q", gotTh.Title)
	}
}
