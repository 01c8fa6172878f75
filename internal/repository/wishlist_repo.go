package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/utils/pagination"
)

// WishlistRepository stores "up" swipes as wishlist entries.
type WishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(database *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *WishlistRepository) WithTx(tx *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: tx}
}

// RecordWishlist adds itemID to the user's wishlist. Re-adding is a no-op.
func (r *WishlistRepository) RecordWishlist(ctx context.Context, userID, itemID uint64) (RecordStatus, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoNothing: true,
		}).
		Create(&db.WishlistEntry{UserID: userID, ItemID: itemID})
	if res.Error != nil {
		return Recorded, res.Error
	}
	if res.RowsAffected == 0 {
		return Duplicate, nil
	}
	return Recorded, nil
}

// ListWishlist returns the user's wishlist, newest first.
//
// Behavior:
//   - Ordered by created_at DESC, item_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListWishlist(ctx, 42, nil, 20)
func (r *WishlistRepository) ListWishlist(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.WishlistEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	cursor, err := pagination.Decode(pagination.Deref(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, item_id DESC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND item_id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var entries []db.WishlistEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(entries) > limit {
		last := entries[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ItemID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		entries = entries[:limit]
	}
	return entries, nextToken, nil
}

// WishlistCategories counts the user's wishlisted items per category.
// Used as a category-affinity ranking signal.
func (r *WishlistRepository) WishlistCategories(ctx context.Context, userID uint64) (map[string]float64, error) {
	var rows []struct {
		Category string
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Table("wishlist_entries w").
		Select("i.category AS category, COUNT(*) AS total").
		Joins("JOIN items i ON i.id = w.item_id").
		Where("w.user_id = ?", userID).
		Group("i.category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Category] = float64(row.Total)
	}
	return out, nil
}
