// Package client adapts the Barter gRPC API to the swipe engine.
package client

import (
	"context"

	"google.golang.org/grpc"

	pb "github.com/rafipicu1/bartertalco-sub000/internal/api/barter"
	"github.com/rafipicu1/bartertalco-sub000/internal/swipe"
)

// Backend implements swipe.Backend over a BarterServiceClient.
type Backend struct {
	api pb.BarterServiceClient
}

var _ swipe.Backend = (*Backend)(nil)

func NewBackend(api pb.BarterServiceClient) *Backend {
	return &Backend{api: api}
}

// Dial is a convenience for NewBackend(pb.NewBarterServiceClient(conn)).
func Dial(conn grpc.ClientConnInterface) *Backend {
	return NewBackend(pb.NewBarterServiceClient(conn))
}

func toCard(it pb.Item) swipe.Card {
	return swipe.Card{
		ID:             it.ID,
		OwnerID:        it.OwnerID,
		Name:           it.Name,
		Category:       it.Category,
		EstimatedValue: it.EstimatedValue,
		IsActive:       it.IsActive,
	}
}

func toCards(items []pb.Item) []swipe.Card {
	out := make([]swipe.Card, len(items))
	for i, it := range items {
		out[i] = toCard(it)
	}
	return out
}

func (b *Backend) ListOfferingItems(ctx context.Context, userID uint64) ([]swipe.Card, error) {
	resp, err := b.api.ListOfferingItems(ctx, &pb.ListOfferingItemsRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	return toCards(resp.Items), nil
}

func (b *Backend) Feed(ctx context.Context, req swipe.FeedRequest) ([]swipe.Card, error) {
	resp, err := b.api.GetFeed(ctx, &pb.GetFeedRequest{
		UserID:         req.UserID,
		OfferingItemID: req.OfferingItemID,
		Limit:          req.Limit,
	})
	if err != nil {
		return nil, err
	}
	return toCards(resp.Items), nil
}

func (b *Backend) Swipe(ctx context.Context, req swipe.SwipeRequest) (swipe.SwipeReply, error) {
	resp, err := b.api.Swipe(ctx, &pb.SwipeRequest{
		UserID:          req.UserID,
		OfferedItemID:   req.OfferedItemID,
		CandidateItemID: req.CandidateItemID,
		Direction:       string(req.Direction),
	})
	if err != nil {
		return swipe.SwipeReply{}, err
	}
	reply := swipe.SwipeReply{Duplicate: resp.Status == "duplicate"}
	if resp.Match != nil {
		reply.Match = &swipe.MatchInfo{
			MatchID:        resp.Match.MatchID,
			ConversationID: resp.Match.ConversationID,
			New:            resp.Match.Outcome == "matched",
		}
	}
	return reply, nil
}

func (b *Backend) TrackView(ctx context.Context, userID, itemID uint64) error {
	_, err := b.api.TrackView(ctx, &pb.TrackViewRequest{UserID: userID, ItemID: itemID})
	return err
}
