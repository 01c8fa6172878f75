package negotiation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
	"github.com/rafipicu1/bartertalco-sub000/internal/repository"
)

// Notifier is told about a proposal after it was stored.
type Notifier interface {
	ProposalSent(ctx context.Context, msg db.Message, recipientID uint64)
}

type noopNotifier struct{}

func (noopNotifier) ProposalSent(context.Context, db.Message, uint64) {}

// SendInput is a proposal request from ProposerID.
type SendInput struct {
	ProposerID   uint64
	MyItemID     uint64
	TargetItemID uint64
	Kind         Kind
	TopUp        *int64
	Direction    *Direction
}

// SendResult is what Send wrote.
type SendResult struct {
	Proposal            Proposal
	Conversation        db.Conversation
	ConversationCreated bool
	Message             db.Message
}

// Builder posts proposals into conversations.
type Builder struct {
	db            *gorm.DB
	items         *repository.ItemRepository
	conversations *repository.ConversationRepository
	messages      *repository.MessageRepository
	notifier      Notifier
	logger        *slog.Logger
}

func NewBuilder(database *gorm.DB, notifier Notifier, logger *slog.Logger) *Builder {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		db:            database,
		items:         repository.NewItemRepository(database),
		conversations: repository.NewConversationRepository(database),
		messages:      repository.NewMessageRepository(database),
		notifier:      notifier,
		logger:        logger.With("component", "negotiation"),
	}
}

// Items loads and checks the two sides of a proposal: mine must be an
// active item of proposerID, target an active item of someone else.
func (b *Builder) Items(ctx context.Context, proposerID, myItemID, targetItemID uint64) (db.Item, db.Item, error) {
	mine, err := b.items.GetItem(ctx, myItemID)
	if err != nil {
		return db.Item{}, db.Item{}, err
	}
	target, err := b.items.GetItem(ctx, targetItemID)
	if err != nil {
		return db.Item{}, db.Item{}, err
	}
	switch {
	case mine.OwnerID != proposerID:
		return db.Item{}, db.Item{}, fmt.Errorf("item %d: %w", mine.ID, svcErr.ErrNotItemOwner)
	case target.OwnerID == proposerID:
		return db.Item{}, db.Item{}, fmt.Errorf("item %d: %w", target.ID, svcErr.ErrOwnItem)
	case !mine.IsActive:
		return db.Item{}, db.Item{}, fmt.Errorf("item %d: %w", mine.ID, svcErr.ErrItemInactive)
	case !target.IsActive:
		return db.Item{}, db.Item{}, fmt.Errorf("item %d: %w", target.ID, svcErr.ErrItemInactive)
	}
	return mine, target, nil
}

// Ref converts a catalog item to the proposal view of it.
func Ref(it db.Item) ItemRef {
	return ItemRef{ID: it.ID, Name: it.Name, Value: it.EstimatedValue}
}

// Send validates the proposal, finds or creates the conversation between
// the two owners and appends the proposal message (type proposal, related
// item = target, sender = proposer). Validation failures write nothing.
func (b *Builder) Send(ctx context.Context, in SendInput) (SendResult, error) {
	mine, target, err := b.Items(ctx, in.ProposerID, in.MyItemID, in.TargetItemID)
	if err != nil {
		return SendResult{}, err
	}
	proposal, err := Propose(Input{
		MyItem:     Ref(mine),
		TargetItem: Ref(target),
		Kind:       in.Kind,
		TopUp:      in.TopUp,
		Direction:  in.Direction,
	})
	if err != nil {
		return SendResult{}, err
	}
	payload, err := json.Marshal(proposal)
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal proposal: %w", err)
	}

	res := SendResult{Proposal: proposal}
	err = b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, created, err := b.conversations.WithTx(tx).FindOrCreate(ctx, in.ProposerID, mine.ID, target.OwnerID, target.ID)
		if err != nil {
			return svcErr.NewRetryable("find or create conversation", err)
		}
		related := target.ID
		msg := db.Message{
			ConversationID: conv.ID,
			SenderID:       in.ProposerID,
			Content:        proposal.Text,
			MessageType:    db.MessageProposal,
			RelatedItemID:  &related,
			Payload:        datatypes.JSON(payload),
		}
		if err := b.messages.WithTx(tx).Append(ctx, &msg); err != nil {
			return svcErr.NewRetryable("append proposal", err)
		}
		res.Conversation, res.ConversationCreated, res.Message = conv, created, msg
		return nil
	})
	if err != nil {
		b.logger.Error("proposal write failed", "proposer_id", in.ProposerID, "target_item_id", in.TargetItemID, "err", err)
		return SendResult{}, err
	}

	b.logger.Info("proposal sent", "conversation_id", res.Conversation.ID, "kind", proposal.Kind, "message_id", res.Message.ID)
	b.notifier.ProposalSent(ctx, res.Message, target.OwnerID)
	return res, nil
}
