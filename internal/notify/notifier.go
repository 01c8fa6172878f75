// Package notify fans domain events out to connected clients and to the
// message broker once the write that caused them has committed.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/matching"
)

const (
	EventMatch    = "match_created"
	EventProposal = "proposal_received"
	EventMessage  = "message_received"

	RoutingKeyMatch    = "barter.match.created"
	RoutingKeyProposal = "barter.proposal.sent"
	RoutingKeyMessage  = "barter.message.sent"

	publishTimeout = 5 * time.Second
)

// Event is the envelope pushed to websockets and published to the broker.
type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

// MatchPayload describes a match to one of its two participants.
type MatchPayload struct {
	MatchID        uint64 `json:"match_id"`
	ConversationID uint64 `json:"conversation_id,omitempty"`
	MyItemID       uint64 `json:"my_item_id"`
	TheirItemID    uint64 `json:"their_item_id"`
	OtherUserID    uint64 `json:"other_user_id"`
}

// MessagePayload points the recipient at a new chat message.
type MessagePayload struct {
	ConversationID uint64 `json:"conversation_id"`
	MessageID      uint64 `json:"message_id"`
	SenderID       uint64 `json:"sender_id"`
	RelatedItemID  uint64 `json:"related_item_id,omitempty"`
	Text           string `json:"text"`
}

// Notifier delivers match and chat events. It never fails the caller:
// delivery problems are logged and counted.
type Notifier struct {
	hub       *Hub
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotifier wires a notifier. hub and publisher may be nil.
func NewNotifier(hub *Hub, publisher Publisher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		hub:       hub,
		publisher: publisher,
		logger:    logger.With("component", "notify"),
		now:       time.Now,
	}
}

// MatchCreated tells both owners about a new match.
func (n *Notifier) MatchCreated(ctx context.Context, like matching.Like, res matching.MatchResult) {
	if res.Match == nil {
		return
	}
	var convID uint64
	if res.Conversation != nil {
		convID = res.Conversation.ID
	}

	n.emit(ctx, RoutingKeyMatch, n.event(EventMatch, like.LikerUserID, MatchPayload{
		MatchID:        res.Match.ID,
		ConversationID: convID,
		MyItemID:       like.LikerItemID,
		TheirItemID:    like.LikedItemID,
		OtherUserID:    like.LikedItemOwnerID,
	}))
	n.emit(ctx, RoutingKeyMatch, n.event(EventMatch, like.LikedItemOwnerID, MatchPayload{
		MatchID:        res.Match.ID,
		ConversationID: convID,
		MyItemID:       like.LikedItemID,
		TheirItemID:    like.LikerItemID,
		OtherUserID:    like.LikerUserID,
	}))
}

// ProposalSent tells recipientID about a proposal message.
func (n *Notifier) ProposalSent(ctx context.Context, msg db.Message, recipientID uint64) {
	n.emit(ctx, RoutingKeyProposal, n.event(EventProposal, recipientID, messagePayload(msg)))
}

// MessageSent tells recipientID about a plain chat message.
func (n *Notifier) MessageSent(ctx context.Context, msg db.Message, recipientID uint64) {
	n.emit(ctx, RoutingKeyMessage, n.event(EventMessage, recipientID, messagePayload(msg)))
}

func messagePayload(msg db.Message) MessagePayload {
	p := MessagePayload{
		ConversationID: msg.ConversationID,
		MessageID:      msg.ID,
		SenderID:       msg.SenderID,
		Text:           msg.Content,
	}
	if msg.RelatedItemID != nil {
		p.RelatedItemID = *msg.RelatedItemID
	}
	return p
}

func (n *Notifier) event(kind string, userID uint64, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       kind,
		UserID:     userID,
		OccurredAt: n.now().UTC().Format(time.RFC3339Nano),
		Payload:    payload,
	}
}

func (n *Notifier) emit(ctx context.Context, routingKey string, ev Event) {
	if n.hub != nil {
		delivered := n.hub.Push(ev.UserID, ev)
		n.logger.Debug("ws push", "event_type", ev.Type, "user_id", ev.UserID, "delivered", delivered)
	}
	if n.publisher == nil {
		return
	}
	// detached from request cancellation
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.publisher.Publish(pctx, routingKey, ev); err != nil {
		n.logger.Warn("event publish failed", "event_type", ev.Type, "event_id", ev.ID, "err", err)
	}
}
