package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
)

const defaultItemLimit = 50

// DecisionScope pins exclusion to the decisions a swiper made while offering
// one specific item.
type DecisionScope struct {
	SwiperID      uint64
	OfferedItemID uint64
}

// ItemFilter narrows GetActiveItems. Zero values mean "no constraint".
type ItemFilter struct {
	ExcludeOwnerID uint64
	Category       string
	DecidedBy      *DecisionScope
	Limit          int
	Offset         int
}

// ItemRepository is the item catalog.
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new repository bound to the given DB connection.
func NewItemRepository(database *gorm.DB) *ItemRepository {
	return &ItemRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *ItemRepository) WithTx(tx *gorm.DB) *ItemRepository {
	return &ItemRepository{db: tx}
}

// GetActiveItems returns active items, newest first.
//
// Behavior:
//   - Inactive items are never returned.
//   - ExcludeOwnerID drops the caller's own listings.
//   - DecidedBy drops every candidate already swiped in that (swiper, offered item) context.
//   - Ordered by created_at DESC, id DESC (recency, deterministic).
//
// Example:
//
//	repo.GetActiveItems(ctx, ItemFilter{ExcludeOwnerID: 7, Limit: 20})
func (r *ItemRepository) GetActiveItems(ctx context.Context, f ItemFilter) ([]db.Item, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultItemLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).
		Model(&db.Item{}).
		Where("items.is_active = ?", true)

	if f.ExcludeOwnerID != 0 {
		query = query.Where("items.owner_id <> ?", f.ExcludeOwnerID)
	}
	if f.Category != "" {
		query = query.Where("items.category = ?", f.Category)
	}
	if f.DecidedBy != nil {
		query = query.Where(`
			NOT EXISTS (
				SELECT 1 FROM swipe_decisions sd
				WHERE sd.swiper_id = ?
				  AND sd.offered_item_id = ?
				  AND sd.candidate_item_id = items.id
			)`, f.DecidedBy.SwiperID, f.DecidedBy.OfferedItemID)
	}

	var items []db.Item
	err := query.
		Order("items.created_at DESC, items.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	return items, err
}

// GetItem loads one item regardless of its active flag.
func (r *ItemRepository) GetItem(ctx context.Context, id uint64) (db.Item, error) {
	var item db.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Item{}, fmt.Errorf("item %d: %w", id, svcErr.ErrItemNotFound)
	}
	return item, err
}

// GetItems loads the given ids, keyed by id. Missing ids are simply absent.
func (r *ItemRepository) GetItems(ctx context.Context, ids []uint64) (map[uint64]db.Item, error) {
	out := make(map[uint64]db.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []db.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// ListByOwner returns the owner's items, newest first.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID uint64, activeOnly bool) ([]db.Item, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var items []db.Item
	err := query.Order("created_at DESC, id DESC").Find(&items).Error
	return items, err
}

// Create inserts a new listing.
func (r *ItemRepository) Create(ctx context.Context, item *db.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Deactivate hides an item from every feed (moderation or owner action).
func (r *ItemRepository) Deactivate(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).
		Model(&db.Item{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", id, svcErr.ErrItemNotFound)
	}
	return nil
}

// OwnerOf returns the owner id of an item.
func (r *ItemRepository) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	item, err := r.GetItem(ctx, id)
	if err != nil {
		return 0, err
	}
	return item.OwnerID, nil
}
