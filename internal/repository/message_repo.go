package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
	"github.com/rafipicu1/bartertalco-sub000/internal/utils/pagination"
)

// MessageRepository is the append-only conversation log.
type MessageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database, now: time.Now}
}

// WithTx returns a copy bound to tx.
func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx, now: r.now}
}

// Append writes msg and moves the conversation's last activity to now, in one
// transaction (nested as a savepoint when r is already bound to one).
func (r *MessageRepository) Append(ctx context.Context, msg *db.Message) error {
	if strings.TrimSpace(msg.Content) == "" {
		return svcErr.ErrEmptyMessage
	}
	if msg.MessageType == "" {
		msg.MessageType = db.MessageText
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return NewConversationRepository(tx).Touch(ctx, msg.ConversationID, r.now())
	})
}

// ListMessages returns a conversation's log in insertion order.
//
// Behavior:
//   - Ordered by id ASC (ids are monotonic per table).
//   - The token carries the last id of the previous page.
//
// Example:
//
//	repo.ListMessages(ctx, 5, nil, 50)
func (r *MessageRepository) ListMessages(
	ctx context.Context,
	conversationID uint64,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	cursor, err := pagination.Decode(pagination.Deref(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Limit(limit + 1)
	if cursor.ID > 0 {
		query = query.Where("id > ?", cursor.ID)
	}

	var msgs []db.Message
	if err := query.Find(&msgs).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(msgs) > limit {
		last := msgs[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{ID: last.ID, CreatedUnix: last.CreatedAt.UnixMilli()})
		nextToken = &token
		msgs = msgs[:limit]
	}
	return msgs, nextToken, nil
}

// MarkRead sets read_at on every unread message the reader received.
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, readerID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", r.now().UTC())
	return res.RowsAffected, res.Error
}

// CountUnread counts messages the reader has not read yet.
func (r *MessageRepository) CountUnread(ctx context.Context, conversationID, readerID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Count(&n).Error
	return n, err
}

// CountByType counts a conversation's messages of one type.
func (r *MessageRepository) CountByType(ctx context.Context, conversationID uint64, t db.MessageType) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("conversation_id = ? AND message_type = ?", conversationID, t).
		Count(&n).Error
	return n, err
}
