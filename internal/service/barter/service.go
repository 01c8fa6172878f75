package barter

import (
	"context"
	"errors"
	"fmt"

	pb "github.com/rafipicu1/bartertalco-sub000/internal/api/barter"
	"github.com/rafipicu1/bartertalco-sub000/internal/app"
	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
	"github.com/rafipicu1/bartertalco-sub000/internal/matching"
	"github.com/rafipicu1/bartertalco-sub000/internal/negotiation"
	"github.com/rafipicu1/bartertalco-sub000/internal/ranking"
	"github.com/rafipicu1/bartertalco-sub000/internal/repository"
	"github.com/rafipicu1/bartertalco-sub000/internal/signals"
)

const (
	defaultMessagePage      = 50
	defaultWishlistPage     = 20
	defaultConversationPage = 50
)

// Service implements the Barter gRPC API.
// It contains the business logic on top of repository, ranking, matching and
// negotiation. Each method corresponds to a barter.BarterService endpoint.
type Service struct {
	appCtx        *app.AppContext
	items         *repository.ItemRepository
	wishlist      *repository.WishlistRepository
	conversations *repository.ConversationRepository
	messages      *repository.MessageRepository

	pb.UnimplementedBarterServiceServer
}

// NewBarterService creates the service with dependencies from AppContext.
func NewBarterService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:        appCtx,
		items:         repository.NewItemRepository(appCtx.DB),
		wishlist:      repository.NewWishlistRepository(appCtx.DB),
		conversations: repository.NewConversationRepository(appCtx.DB),
		messages:      repository.NewMessageRepository(appCtx.DB),
	}
}

func requireUser(id uint64) error {
	if id == 0 {
		return svcErr.InvalidArgument("user_id is required")
	}
	return nil
}

// GetFeed returns one ranked page of candidate items.
//
// Behavior:
//   - user_id 0 is an anonymous caller and gets the recency feed.
//   - offering_item_id, when set, must be an item of the caller; candidates
//     already decided while offering it are excluded.
//   - Ranking failures degrade to recency and are never surfaced.
//
// Example:
//
//	svc.GetFeed(ctx, &pb.GetFeedRequest{UserID: 1, OfferingItemID: 10, Limit: 30})
func (s *Service) GetFeed(ctx context.Context, req *pb.GetFeedRequest) (*pb.GetFeedResponse, error) {
	s.appCtx.Logger.Debug("GetFeed called", "user", req.UserID, "offering", req.OfferingItemID, "limit", req.Limit, "offset", req.Offset)

	if req.OfferingItemID != 0 {
		if err := requireUser(req.UserID); err != nil {
			return nil, err
		}
		owner, err := s.items.OwnerOf(ctx, req.OfferingItemID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if owner != req.UserID {
			return nil, svcErr.Map(fmt.Errorf("item %d: %w", req.OfferingItemID, svcErr.ErrNotItemOwner))
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.appCtx.Config.Feed.BatchSize
	}
	ids, err := s.appCtx.Feed.Get(ctx, ranking.Query{
		UserID:         req.UserID,
		OfferingItemID: req.OfferingItemID,
		Category:       req.Category,
		Limit:          limit,
		Offset:         req.Offset,
	})
	if err != nil {
		s.appCtx.Logger.Error("feed failed", "user", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}

	byID, err := s.items.GetItems(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &pb.GetFeedResponse{Items: orderedItems(ids, byID)}

	s.appCtx.Logger.Debug("GetFeed result", "user", req.UserID, "count", len(resp.Items))
	return resp, nil
}

// ListOfferingItems returns the caller's active items, newest first. An
// empty list means the caller has nothing to offer and cannot swipe.
func (s *Service) ListOfferingItems(ctx context.Context, req *pb.ListOfferingItemsRequest) (*pb.ListOfferingItemsResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	items, err := s.items.ListByOwner(ctx, req.UserID, true)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ListOfferingItemsResponse{Items: toItems(items)}, nil
}

// Swipe records one decision and reports a match when a right swipe
// completed one.
//
// Behavior:
//   - A repeated decision is absorbed: status "duplicate", nothing written.
//   - "up" also adds the candidate to the wishlist; it never matches.
//   - Write failures map to Unavailable; the client keeps the card and retries.
//
// Example:
//
//	svc.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: 10, CandidateItemID: 20, Direction: "right"})
func (s *Service) Swipe(ctx context.Context, req *pb.SwipeRequest) (*pb.SwipeResponse, error) {
	s.appCtx.Logger.Debug("Swipe called", "user", req.UserID, "offered", req.OfferedItemID,
		"candidate", req.CandidateItemID, "direction", req.Direction)

	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	res, err := s.appCtx.Detector.RecordAndDetect(ctx, matching.SwipeInput{
		SwiperID:        req.UserID,
		OfferedItemID:   req.OfferedItemID,
		CandidateItemID: req.CandidateItemID,
		Direction:       db.Direction(req.Direction),
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.SwipeResponse{Status: "recorded"}
	if res.Status == repository.Duplicate {
		resp.Status = "duplicate"
	}
	if res.Match.IsMatch() && res.Match.Match != nil {
		m := &pb.Match{MatchID: res.Match.Match.ID, Outcome: res.Match.Outcome.String()}
		if res.Match.Conversation != nil {
			m.ConversationID = res.Match.Conversation.ID
		}
		resp.Match = m
	}
	return resp, nil
}

// AddToWishlist saves an item outside the swipe flow. Re-adding is a no-op
// reported as added=false.
func (s *Service) AddToWishlist(ctx context.Context, req *pb.AddToWishlistRequest) (*pb.AddToWishlistResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	item, err := s.items.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	switch {
	case item.OwnerID == req.UserID:
		return nil, svcErr.Map(fmt.Errorf("item %d: %w", item.ID, svcErr.ErrOwnItem))
	case !item.IsActive:
		return nil, svcErr.Map(fmt.Errorf("item %d: %w", item.ID, svcErr.ErrItemInactive))
	}

	status, err := s.wishlist.RecordWishlist(ctx, req.UserID, req.ItemID)
	if err != nil {
		return nil, svcErr.Map(svcErr.NewRetryable("record wishlist", err))
	}
	return &pb.AddToWishlistResponse{Added: status == repository.Recorded}, nil
}

// ListWishlist pages through the caller's wishlist, newest first. Items
// deleted since are skipped.
func (s *Service) ListWishlist(ctx context.Context, req *pb.ListWishlistRequest) (*pb.ListWishlistResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultWishlistPage
	}
	entries, next, err := s.wishlist.ListWishlist(ctx, req.UserID, req.PaginationToken, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	ids := make([]uint64, len(entries))
	for i, e := range entries {
		ids[i] = e.ItemID
	}
	byID, err := s.items.GetItems(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ListWishlistResponse{Items: orderedItems(ids, byID), NextPaginationToken: next}, nil
}

// ProposeTrade posts a trade proposal into the conversation with the target
// item's owner, creating the conversation when needed.
//
// Example:
//
//	svc.ProposeTrade(ctx, &pb.ProposeTradeRequest{UserID: 1, MyItemID: 10, TargetItemID: 20, Kind: "straight_barter"})
func (s *Service) ProposeTrade(ctx context.Context, req *pb.ProposeTradeRequest) (*pb.ProposeTradeResponse, error) {
	s.appCtx.Logger.Debug("ProposeTrade called", "user", req.UserID, "my_item", req.MyItemID,
		"target_item", req.TargetItemID, "kind", req.Kind)

	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	in := negotiation.SendInput{
		ProposerID:   req.UserID,
		MyItemID:     req.MyItemID,
		TargetItemID: req.TargetItemID,
		Kind:         negotiation.Kind(req.Kind),
		TopUp:        req.TopUp,
	}
	if req.Direction != nil {
		d := negotiation.Direction(*req.Direction)
		in.Direction = &d
	}

	res, err := s.appCtx.Builder.Send(ctx, in)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ProposeTradeResponse{
		ConversationID:      res.Conversation.ID,
		ConversationCreated: res.ConversationCreated,
		Proposal:            toProposal(res.Proposal),
		Message:             toMessage(res.Message),
	}, nil
}

// SuggestTopUp returns the default top-up for a value-adjusted offer
// between the two items. Nothing is written.
func (s *Service) SuggestTopUp(ctx context.Context, req *pb.SuggestTopUpRequest) (*pb.SuggestTopUpResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	mine, target, err := s.appCtx.Builder.Items(ctx, req.UserID, req.MyItemID, req.TargetItemID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	sg := negotiation.Suggest(negotiation.Ref(mine), negotiation.Ref(target))
	return &pb.SuggestTopUpResponse{
		Delta:     sg.Delta,
		TopUp:     sg.TopUp,
		Direction: string(sg.Direction),
		Display:   negotiation.FormatIDR(sg.TopUp),
	}, nil
}

// participantConversation loads a conversation the caller takes part in.
func (s *Service) participantConversation(ctx context.Context, convID, userID uint64) (db.Conversation, error) {
	conv, err := s.conversations.Get(ctx, convID)
	if err != nil {
		return db.Conversation{}, err
	}
	if !conv.HasUser(userID) {
		return db.Conversation{}, fmt.Errorf("conversation %d: %w", convID, svcErr.ErrNotParticipant)
	}
	return conv, nil
}

// ListMessages pages through a conversation's log in send order.
func (s *Service) ListMessages(ctx context.Context, req *pb.ListMessagesRequest) (*pb.ListMessagesResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.participantConversation(ctx, req.ConversationID, req.UserID); err != nil {
		return nil, svcErr.Map(err)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultMessagePage
	}
	msgs, next, err := s.messages.ListMessages(ctx, req.ConversationID, req.PaginationToken, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &pb.ListMessagesResponse{Messages: make([]pb.Message, 0, len(msgs)), NextPaginationToken: next}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toMessage(m))
	}
	return resp, nil
}

// SendMessage appends a text message and notifies the other participant.
func (s *Service) SendMessage(ctx context.Context, req *pb.SendMessageRequest) (*pb.SendMessageResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	conv, err := s.participantConversation(ctx, req.ConversationID, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	msg := db.Message{
		ConversationID: conv.ID,
		SenderID:       req.UserID,
		Content:        req.Content,
		MessageType:    db.MessageText,
	}
	if err := s.messages.Append(ctx, &msg); err != nil {
		if errors.Is(err, svcErr.ErrEmptyMessage) {
			return nil, svcErr.Map(err)
		}
		return nil, svcErr.Map(svcErr.NewRetryable("append message", err))
	}
	if s.appCtx.Notifier != nil {
		s.appCtx.Notifier.MessageSent(ctx, msg, conv.Other(req.UserID))
	}
	return &pb.SendMessageResponse{Message: toMessage(msg)}, nil
}

// MarkRead marks everything the caller received in the conversation as read.
func (s *Service) MarkRead(ctx context.Context, req *pb.MarkReadRequest) (*pb.MarkReadResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.participantConversation(ctx, req.ConversationID, req.UserID); err != nil {
		return nil, svcErr.Map(err)
	}
	n, err := s.messages.MarkRead(ctx, req.ConversationID, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.MarkReadResponse{Updated: n}, nil
}

// ListConversations returns the caller's conversations, most recently
// active first, with unread counts.
func (s *Service) ListConversations(ctx context.Context, req *pb.ListConversationsRequest) (*pb.ListConversationsResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultConversationPage
	}
	convs, err := s.conversations.ListForUser(ctx, req.UserID, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &pb.ListConversationsResponse{Conversations: make([]pb.Conversation, 0, len(convs))}
	for _, c := range convs {
		unread, err := s.messages.CountUnread(ctx, c.ID, req.UserID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		resp.Conversations = append(resp.Conversations, toConversation(c, req.UserID, unread))
	}
	return resp, nil
}

// TrackView records that the caller looked at an item. Best effort.
func (s *Service) TrackView(ctx context.Context, req *pb.TrackViewRequest) (*pb.Empty, error) {
	if req.UserID == 0 || req.ItemID == 0 || s.appCtx.Tracker == nil {
		return &pb.Empty{}, nil
	}
	if err := s.appCtx.Tracker.TrackView(ctx, req.UserID, req.ItemID); err != nil {
		s.appCtx.Logger.Warn("track view failed", "user", req.UserID, "item", req.ItemID, "err", err)
	}
	return &pb.Empty{}, nil
}

// TrackSearch records a search query. A query without usable terms is
// rejected; storage problems are not surfaced.
func (s *Service) TrackSearch(ctx context.Context, req *pb.TrackSearchRequest) (*pb.Empty, error) {
	if len(signals.NormalizeQuery(req.Query)) == 0 {
		return nil, svcErr.InvalidArgument(signals.ErrEmptyQuery.Error())
	}
	if req.UserID == 0 || s.appCtx.Tracker == nil {
		return &pb.Empty{}, nil
	}
	if err := s.appCtx.Tracker.TrackSearch(ctx, req.UserID, req.Query); err != nil {
		s.appCtx.Logger.Warn("track search failed", "user", req.UserID, "err", err)
	}
	return &pb.Empty{}, nil
}
