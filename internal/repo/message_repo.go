// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model. Messages are append-only: there is no update or delete path.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/realtime"
)

// ListMessages returns all messages of a thread ordered by creation time
// ascending (oldest first, preserving conversational order; ID breaks ties).
// Returns an empty slice when the thread has no messages.
func ListMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.Message, error) {
	out := []domain.Message{}
	err := db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CreateMessage inserts a new message row with a generated UUID and UTC
// timestamp. Inserts made through a hub-attached handle are delivered to
// matching realtime subscribers.
func CreateMessage(ctx context.Context, db *gorm.DB, threadID, senderType, content string) (*domain.Message, error) {
	m := &domain.Message{
		ID:         uuid.NewString(),
		ThreadID:   threadID,
		SenderType: senderType,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// SubscribeMessages opens a standing subscription to insert events on the
// messages table scoped to a single thread. onInsert is invoked once per
// matching insert, in insert order, possibly from a different goroutine than
// the subscriber's. The returned handle must be closed by the owner when the
// thread view goes away; Close is idempotent.
func SubscribeMessages(hub *realtime.Hub, threadID string, onInsert func(*domain.Message)) *realtime.Subscription {
	return hub.SubscribeInserts(domain.Message{}.TableName(), "thread_id", threadID, func(record any) {
		if m, ok := record.(*domain.Message); ok {
			onInsert(m)
		}
	})
}
