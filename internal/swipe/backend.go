package swipe

import (
	"context"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
)

// Card is one item as the deck sees it.
type Card struct {
	ID             uint64
	OwnerID        uint64
	Name           string
	Category       string
	EstimatedValue int64
	IsActive       bool
}

// FeedRequest asks for a ranked batch scoped to an offering item.
type FeedRequest struct {
	UserID         uint64
	OfferingItemID uint64
	Limit          int
}

// SwipeRequest is one decision.
type SwipeRequest struct {
	UserID          uint64
	OfferedItemID   uint64
	CandidateItemID uint64
	Direction       db.Direction
}

// MatchInfo is set when a right swipe completed a match.
type MatchInfo struct {
	MatchID        uint64
	ConversationID uint64
	// New is true only for the swipe that created the match.
	New bool
}

// SwipeReply is the backend's answer to a decision.
type SwipeReply struct {
	Duplicate bool
	Match     *MatchInfo
}

// Backend is what a Session needs from the server.
type Backend interface {
	ListOfferingItems(ctx context.Context, userID uint64) ([]Card, error)
	Feed(ctx context.Context, req FeedRequest) ([]Card, error)
	Swipe(ctx context.Context, req SwipeRequest) (SwipeReply, error)
	TrackView(ctx context.Context, userID, itemID uint64) error
}
