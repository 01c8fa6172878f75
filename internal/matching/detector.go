// Package matching records swipe decisions and detects mutual likes.
//
// A match exists when the owners of two items each swiped right on the
// other's item while offering their own. Detection runs server side inside
// the same transaction as the decision write, so the reverse-like check always
// observes every decision committed before it.
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
	"github.com/rafipicu1/bartertalco-sub000/internal/observability"
	"github.com/rafipicu1/bartertalco-sub000/internal/repository"
)

// Outcome of a match check.
type Outcome int

const (
	// OneSided: the like is stored, the other side has not liked back yet.
	OneSided Outcome = iota
	// Matched: this call created the match.
	Matched
	// AlreadyMatched: the pair was matched before; nothing new was created
	// except possibly a missing conversation.
	AlreadyMatched
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case AlreadyMatched:
		return "already_matched"
	default:
		return "one_sided"
	}
}

// Like is a right swipe: LikerUserID, offering LikerItemID, liked LikedItemID
// which belongs to LikedItemOwnerID.
type Like struct {
	LikerUserID      uint64
	LikerItemID      uint64
	LikedItemID      uint64
	LikedItemOwnerID uint64
}

// MatchResult reports what a like produced.
type MatchResult struct {
	Outcome             Outcome
	Match               *db.Match
	Conversation        *db.Conversation
	ConversationCreated bool
}

// IsMatch reports whether the pair is matched after the call.
func (r MatchResult) IsMatch() bool {
	return r.Outcome == Matched || r.Outcome == AlreadyMatched
}

// SwipeInput is one decision submitted by a swiper.
type SwipeInput struct {
	SwiperID        uint64
	OfferedItemID   uint64
	CandidateItemID uint64
	Direction       db.Direction
}

// SwipeResult is the outcome of RecordAndDetect.
type SwipeResult struct {
	Status repository.RecordStatus
	Match  MatchResult
}

// Notifier is told about matches after their transaction committed.
type Notifier interface {
	MatchCreated(ctx context.Context, like Like, result MatchResult)
}

type noopNotifier struct{}

func (noopNotifier) MatchCreated(context.Context, Like, MatchResult) {}

// Detector owns the swipe write path and match detection.
type Detector struct {
	db            *gorm.DB
	items         *repository.ItemRepository
	decisions     *repository.DecisionRepository
	wishlist      *repository.WishlistRepository
	matches       *repository.MatchRepository
	conversations *repository.ConversationRepository
	messages      *repository.MessageRepository

	notifier Notifier
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewDetector builds a detector over database. notifier may be nil.
func NewDetector(database *gorm.DB, notifier Notifier, logger *slog.Logger) *Detector {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		db:            database,
		items:         repository.NewItemRepository(database),
		decisions:     repository.NewDecisionRepository(database),
		wishlist:      repository.NewWishlistRepository(database),
		matches:       repository.NewMatchRepository(database),
		conversations: repository.NewConversationRepository(database),
		messages:      repository.NewMessageRepository(database),
		notifier:      notifier,
		logger:        logger.With("component", "matching"),
		tracer:        otel.Tracer("barter/matching"),
	}
}

// RecordAndDetect validates and stores one swipe decision.
//
// Behavior:
//   - The offered item must be an active item of the swiper; the candidate
//     must be an active item of someone else.
//   - A repeated (swiper, offered, candidate) tuple is absorbed: Status is
//     Duplicate and nothing is written.
//   - "up" also adds the candidate to the wishlist and never matches.
//   - "right" runs match detection in the same transaction. A duplicate right
//     swipe re-runs detection so a conversation lost earlier is recreated.
//   - Storage failures come back as *errors.Retryable; the caller must not
//     advance past the card.
func (d *Detector) RecordAndDetect(ctx context.Context, in SwipeInput) (SwipeResult, error) {
	ctx, span := d.tracer.Start(ctx, "matching.RecordAndDetect", trace.WithAttributes(
		attribute.Int64("swiper_id", int64(in.SwiperID)),
		attribute.Int64("offered_item_id", int64(in.OfferedItemID)),
		attribute.Int64("candidate_item_id", int64(in.CandidateItemID)),
		attribute.String("direction", string(in.Direction)),
	))
	defer span.End()

	if !in.Direction.Valid() {
		return SwipeResult{}, svcErr.ErrInvalidDirection
	}
	like, err := d.validate(ctx, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return SwipeResult{}, err
	}

	var res SwipeResult
	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status, err := d.decisions.WithTx(tx).RecordSwipe(ctx, in.SwiperID, in.OfferedItemID, in.CandidateItemID, in.Direction)
		if err != nil {
			return svcErr.NewRetryable("record swipe", err)
		}
		res.Status = status

		switch in.Direction {
		case db.DirectionUp:
			if _, err := d.wishlist.WithTx(tx).RecordWishlist(ctx, in.SwiperID, in.CandidateItemID); err != nil {
				return svcErr.NewRetryable("record wishlist", err)
			}
		case db.DirectionRight:
			stored := in.Direction
			if status == repository.Duplicate {
				// only a stored right swipe counts as a like
				prev, err := d.decisions.WithTx(tx).GetDecision(ctx, in.SwiperID, in.OfferedItemID, in.CandidateItemID)
				if err != nil {
					return svcErr.NewRetryable("reload swipe", err)
				}
				stored = prev.Direction
			}
			if stored == db.DirectionRight {
				mr, err := d.onLikeTx(ctx, tx, like)
				if err != nil {
					return err
				}
				res.Match = mr
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Error("swipe write failed", "swiper_id", in.SwiperID, "offered_item_id", in.OfferedItemID,
			"candidate_item_id", in.CandidateItemID, "direction", in.Direction, "err", err)
		return SwipeResult{}, err
	}

	observability.IncSwipe(string(in.Direction), res.Status.String())
	if in.Direction == db.DirectionRight {
		d.afterCommit(ctx, like, res.Match)
	}
	span.SetAttributes(attribute.String("status", res.Status.String()), attribute.String("outcome", res.Match.Outcome.String()))
	return res, nil
}

func (d *Detector) validate(ctx context.Context, in SwipeInput) (Like, error) {
	if in.OfferedItemID == in.CandidateItemID {
		return Like{}, svcErr.ErrOwnItem
	}
	found, err := d.items.GetItems(ctx, []uint64{in.OfferedItemID, in.CandidateItemID})
	if err != nil {
		return Like{}, svcErr.NewRetryable("load items", err)
	}
	offered, ok := found[in.OfferedItemID]
	if !ok {
		return Like{}, fmt.Errorf("offered item %d: %w", in.OfferedItemID, svcErr.ErrItemNotFound)
	}
	candidate, ok := found[in.CandidateItemID]
	if !ok {
		return Like{}, fmt.Errorf("candidate item %d: %w", in.CandidateItemID, svcErr.ErrItemNotFound)
	}
	if offered.OwnerID != in.SwiperID {
		return Like{}, fmt.Errorf("offered item %d: %w", offered.ID, svcErr.ErrNotItemOwner)
	}
	if candidate.OwnerID == in.SwiperID {
		return Like{}, fmt.Errorf("candidate item %d: %w", candidate.ID, svcErr.ErrOwnItem)
	}
	if !offered.IsActive {
		return Like{}, fmt.Errorf("offered item %d: %w", offered.ID, svcErr.ErrItemInactive)
	}
	if !candidate.IsActive {
		return Like{}, fmt.Errorf("candidate item %d: %w", candidate.ID, svcErr.ErrItemInactive)
	}
	return Like{
		LikerUserID:      in.SwiperID,
		LikerItemID:      offered.ID,
		LikedItemID:      candidate.ID,
		LikedItemOwnerID: candidate.OwnerID,
	}, nil
}

// OnLike runs match detection for an already recorded like in its own
// transaction. Running it again for a matched pair is a no-op apart from
// recreating a missing conversation.
func (d *Detector) OnLike(ctx context.Context, like Like) (MatchResult, error) {
	ctx, span := d.tracer.Start(ctx, "matching.OnLike", trace.WithAttributes(
		attribute.Int64("liker_item_id", int64(like.LikerItemID)),
		attribute.Int64("liked_item_id", int64(like.LikedItemID)),
	))
	defer span.End()

	if like.LikerUserID == like.LikedItemOwnerID {
		return MatchResult{}, svcErr.ErrOwnItem
	}

	var res MatchResult
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = d.onLikeTx(ctx, tx, like)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return MatchResult{}, err
	}
	d.afterCommit(ctx, like, res)
	return res, nil
}

// onLikeTx is the detection algorithm; tx must be an open transaction.
//
//  1. Look up a match for exactly {LikerItemID, LikedItemID}.
//  2. If present, make sure the conversation exists and stop.
//  3. Otherwise look for the reverse like (owner, offering LikedItemID,
//     liked LikerItemID, direction right). None means one-sided.
//  4. Create the match; losing a concurrent insert means AlreadyMatched.
//  5. Find or create the conversation, seeding a match message when new.
func (d *Detector) onLikeTx(ctx context.Context, tx *gorm.DB, like Like) (MatchResult, error) {
	matches := d.matches.WithTx(tx)

	existing, err := matches.FindByPair(ctx, like.LikerItemID, like.LikedItemID)
	if err != nil {
		return MatchResult{}, svcErr.NewRetryable("find match", err)
	}
	if existing != nil {
		conv, created, err := d.ensureConversation(ctx, tx, like, existing)
		if err != nil {
			return MatchResult{}, err
		}
		return MatchResult{Outcome: AlreadyMatched, Match: existing, Conversation: &conv, ConversationCreated: created}, nil
	}

	reverse, err := d.decisions.WithTx(tx).FindReverseLike(ctx, like.LikedItemOwnerID, like.LikedItemID, like.LikerItemID)
	if err != nil {
		return MatchResult{}, svcErr.NewRetryable("find reverse like", err)
	}
	if !reverse {
		return MatchResult{Outcome: OneSided}, nil
	}

	m, created, err := matches.FindOrCreate(ctx, like.LikerUserID, like.LikerItemID, like.LikedItemOwnerID, like.LikedItemID)
	if err != nil {
		return MatchResult{}, svcErr.NewRetryable("create match", err)
	}
	outcome := Matched
	if !created {
		outcome = AlreadyMatched
	}

	conv, convCreated, err := d.ensureConversation(ctx, tx, like, &m)
	if err != nil {
		return MatchResult{}, err
	}
	return MatchResult{Outcome: outcome, Match: &m, Conversation: &conv, ConversationCreated: convCreated}, nil
}

type matchPayload struct {
	MatchID    uint64 `json:"match_id"`
	ItemLowID  uint64 `json:"item_low_id"`
	ItemHighID uint64 `json:"item_high_id"`
}

func (d *Detector) ensureConversation(ctx context.Context, tx *gorm.DB, like Like, m *db.Match) (db.Conversation, bool, error) {
	conv, created, err := d.conversations.WithTx(tx).FindOrCreate(ctx,
		like.LikerUserID, like.LikerItemID, like.LikedItemOwnerID, like.LikedItemID)
	if err != nil {
		return db.Conversation{}, false, svcErr.NewRetryable("create conversation", err)
	}
	if !created {
		return conv, false, nil
	}

	names, err := d.items.WithTx(tx).GetItems(ctx, []uint64{like.LikerItemID, like.LikedItemID})
	if err != nil {
		return db.Conversation{}, false, svcErr.NewRetryable("load matched items", err)
	}
	payload, _ := json.Marshal(matchPayload{MatchID: m.ID, ItemLowID: m.ItemLowID, ItemHighID: m.ItemHighID})
	related := like.LikedItemID
	msg := &db.Message{
		ConversationID: conv.ID,
		SenderID:       like.LikerUserID,
		Content:        fmt.Sprintf("It's a match! %s <-> %s", names[like.LikerItemID].Name, names[like.LikedItemID].Name),
		MessageType:    db.MessageMatch,
		RelatedItemID:  &related,
		Payload:        datatypes.JSON(payload),
	}
	if err := d.messages.WithTx(tx).Append(ctx, msg); err != nil {
		return db.Conversation{}, false, svcErr.NewRetryable("seed match message", err)
	}
	return conv, true, nil
}

func (d *Detector) afterCommit(ctx context.Context, like Like, res MatchResult) {
	observability.IncMatchCheck(res.Outcome.String())
	if res.Outcome != Matched {
		return
	}
	d.logger.Info("match created",
		"match_id", res.Match.ID, "conversation_id", res.Conversation.ID,
		"user_a", like.LikerUserID, "user_b", like.LikedItemOwnerID)
	d.notifier.MatchCreated(ctx, like, res)
}

// IsRetryable reports whether err is a storage failure worth retrying.
func IsRetryable(err error) bool {
	return svcErr.IsRetryable(err) && !errors.Is(err, context.Canceled)
}
