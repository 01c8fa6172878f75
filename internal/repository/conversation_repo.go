package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
	"github.com/rafipicu1/bartertalco-sub000/internal/utils/pairkey"
)

// ConversationRepository stores one conversation per user pair.
type ConversationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewConversationRepository(database *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: database, now: time.Now}
}

// WithTx returns a copy bound to tx.
func (r *ConversationRepository) WithTx(tx *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: tx, now: r.now}
}

// FindByUsers returns the conversation between a and b, or nil.
//
// Behavior:
//   - Checks both (a, b) and (b, a) orderings since legacy rows were not
//     always written canonically.
//   - When both orderings exist the oldest row wins.
func (r *ConversationRepository) FindByUsers(ctx context.Context, userA, userB uint64) (*db.Conversation, error) {
	var c db.Conversation
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", userA, userB, userB, userA).
		Order("id ASC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreate returns the conversation for the user pair, creating it when
// absent. itemA belongs to userA and itemB to userB.
//
// Behavior:
//   - Lookup first (both orderings).
//   - Insert in canonical order (user1 < user2) guarded by the unique index;
//     a conflicting concurrent insert falls back to re-reading the winner.
//   - created reports whether this call inserted the row.
func (r *ConversationRepository) FindOrCreate(
	ctx context.Context,
	userA, itemA, userB, itemB uint64,
) (db.Conversation, bool, error) {
	if userA == userB {
		return db.Conversation{}, false, svcErr.ErrOwnItem
	}

	existing, err := r.FindByUsers(ctx, userA, userB)
	if err != nil {
		return db.Conversation{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	slots := pairkey.SlotsFor(userA, itemA, userB, itemB)
	c := db.Conversation{
		User1ID:        slots.User1ID,
		User2ID:        slots.User2ID,
		Item1ID:        slots.Item1ID,
		Item2ID:        slots.Item2ID,
		LastActivityAt: r.now().UTC(),
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(&c)
	if res.Error != nil {
		return db.Conversation{}, false, res.Error
	}
	if res.RowsAffected == 1 {
		return c, true, nil
	}

	existing, err = r.FindByUsers(ctx, userA, userB)
	if err != nil {
		return db.Conversation{}, false, err
	}
	if existing == nil {
		return db.Conversation{}, false, fmt.Errorf("conversation %s: %w", pairkey.Key(userA, userB), svcErr.ErrConversationNotFound)
	}
	return *existing, false, nil
}

// Get loads a conversation by id.
func (r *ConversationRepository) Get(ctx context.Context, id uint64) (db.Conversation, error) {
	var c db.Conversation
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Conversation{}, fmt.Errorf("conversation %d: %w", id, svcErr.ErrConversationNotFound)
	}
	return c, err
}

// ListForUser returns the user's conversations, most recently active first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uint64, limit int) ([]db.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	var convs []db.Conversation
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("last_activity_at DESC, id DESC").
		Limit(limit).
		Find(&convs).Error
	return convs, err
}

// Touch moves last_activity_at forward.
func (r *ConversationRepository) Touch(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Conversation{}).
		Where("id = ?", id).
		Update("last_activity_at", at.UTC()).Error
}

// NormalizeOrdering rewrites legacy rows stored as (user1 > user2) into the
// canonical ordering, swapping item slots along with the users.
//
// Behavior:
//   - A legacy row whose canonical twin already exists is left untouched and
//     counted in skipped; merging the two logs is a manual operation.
//   - Safe to run repeatedly.
func (r *ConversationRepository) NormalizeOrdering(ctx context.Context) (normalized, skipped int64, err error) {
	var legacy []db.Conversation
	if err := r.db.WithContext(ctx).Where("user1_id > user2_id").Find(&legacy).Error; err != nil {
		return 0, 0, err
	}

	for _, c := range legacy {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var twins int64
			if err := tx.Model(&db.Conversation{}).
				Where("user1_id = ? AND user2_id = ?", c.User2ID, c.User1ID).
				Count(&twins).Error; err != nil {
				return err
			}
			if twins > 0 {
				skipped++
				return nil
			}
			if err := tx.Model(&db.Conversation{}).
				Where("id = ?", c.ID).
				Updates(map[string]any{
					"user1_id": c.User2ID,
					"user2_id": c.User1ID,
					"item1_id": c.Item2ID,
					"item2_id": c.Item1ID,
				}).Error; err != nil {
				return err
			}
			normalized++
			return nil
		})
		if err != nil {
			return normalized, skipped, err
		}
	}
	return normalized, skipped, nil
}
