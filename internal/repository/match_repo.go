package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/utils/pairkey"
)

// MatchRepository stores mutual likes between two items.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// FindByPair returns the match for exactly {itemA, itemB}, or nil.
// Both ids are pinned; a match that only shares one item never qualifies.
func (r *MatchRepository) FindByPair(ctx context.Context, itemA, itemB uint64) (*db.Match, error) {
	p := pairkey.Of(itemA, itemB)
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("item_low_id = ? AND item_high_id = ?", p.Low, p.High).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindOrCreate records a match for the two (owner, item) sides.
//
// Behavior:
//   - The pair is stored canonically (lower item id first) under a unique index.
//   - A concurrent insert of the same pair loses the race silently and the
//     existing row is returned with created = false.
func (r *MatchRepository) FindOrCreate(
	ctx context.Context,
	userA, itemA, userB, itemB uint64,
) (db.Match, bool, error) {
	p := pairkey.Of(itemA, itemB)
	m := db.Match{ItemLowID: p.Low, ItemHighID: p.High}
	if p.Low == itemA {
		m.UserLowID, m.UserHighID = userA, userB
	} else {
		m.UserLowID, m.UserHighID = userB, userA
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_low_id"}, {Name: "item_high_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return db.Match{}, false, res.Error
	}
	if res.RowsAffected == 1 {
		return m, true, nil
	}

	existing, err := r.FindByPair(ctx, itemA, itemB)
	if err != nil {
		return db.Match{}, false, err
	}
	if existing == nil {
		return db.Match{}, false, gorm.ErrRecordNotFound
	}
	return *existing, false, nil
}
