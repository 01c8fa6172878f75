package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
)

// RecordStatus tells whether an idempotent insert wrote a new row.
type RecordStatus int

const (
	Recorded RecordStatus = iota
	Duplicate
)

func (s RecordStatus) String() string {
	if s == Duplicate {
		return "duplicate"
	}
	return "ok"
}

// DecisionRepository provides data access methods for the SwipeDecision model.
// It encapsulates all queries related to swipes between items.
type DecisionRepository struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new repository bound to the given DB connection.
func NewDecisionRepository(database *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *DecisionRepository) WithTx(tx *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: tx}
}

// RecordSwipe appends a decision made by swiper on candidate while offering offered.
//
// Behavior:
//   - If the (swiper, offered, candidate) tuple already exists → nothing is written
//     and Duplicate is returned, whatever the direction of the repeat.
//   - Otherwise a new row is inserted and Recorded is returned.
//
// Example:
//
//	repo.RecordSwipe(ctx, 1, 10, 20, db.DirectionRight) // user 1 offering item 10 likes item 20
func (r *DecisionRepository) RecordSwipe(
	ctx context.Context,
	swiperID, offeredItemID, candidateItemID uint64,
	direction db.Direction,
) (RecordStatus, error) {
	decision := db.SwipeDecision{
		SwiperID:        swiperID,
		OfferedItemID:   offeredItemID,
		CandidateItemID: candidateItemID,
		Direction:       direction,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "offered_item_id"}, {Name: "candidate_item_id"}},
			DoNothing: true,
		}).
		Create(&decision)
	if res.Error != nil {
		return Recorded, res.Error
	}
	if res.RowsAffected == 0 {
		return Duplicate, nil
	}
	return Recorded, nil
}

// GetDecision loads a single decision tuple.
func (r *DecisionRepository) GetDecision(
	ctx context.Context,
	swiperID, offeredItemID, candidateItemID uint64,
) (db.SwipeDecision, error) {
	var d db.SwipeDecision
	err := r.db.WithContext(ctx).
		Where("swiper_id = ? AND offered_item_id = ? AND candidate_item_id = ?", swiperID, offeredItemID, candidateItemID).
		First(&d).Error
	return d, err
}

// FindReverseLike checks whether owner, offering ownerItemID, swiped right on targetItemID.
//
// Behavior:
//   - Pins all three ids plus direction = right; a left or up on the same tuple is not a like.
//   - Served by the composite primary key.
//
// Example:
//
//	repo.FindReverseLike(ctx, 2, 20, 10) // -> true if user 2 offering item 20 liked item 10
func (r *DecisionRepository) FindReverseLike(
	ctx context.Context,
	ownerID, ownerItemID, targetItemID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.SwipeDecision{}).
		Where("swiper_id = ? AND offered_item_id = ? AND candidate_item_id = ? AND direction = ?",
			ownerID, ownerItemID, targetItemID, db.DirectionRight).
		Count(&count).Error
	return count > 0, err
}

// DecidedCandidateIDs lists every candidate already decided in a (swiper, offered item) context.
func (r *DecisionRepository) DecidedCandidateIDs(
	ctx context.Context,
	swiperID, offeredItemID uint64,
) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.SwipeDecision{}).
		Where("swiper_id = ? AND offered_item_id = ?", swiperID, offeredItemID).
		Pluck("candidate_item_id", &ids).Error
	return ids, err
}
