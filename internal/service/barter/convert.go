package barter

import (
	pb "github.com/rafipicu1/bartertalco-sub000/internal/api/barter"
	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/negotiation"
)

func toItem(it db.Item) pb.Item {
	return pb.Item{
		ID:             it.ID,
		OwnerID:        it.OwnerID,
		Name:           it.Name,
		Description:    it.Description,
		Category:       it.Category,
		Condition:      string(it.Condition),
		EstimatedValue: it.EstimatedValue,
		TopUpValue:     it.TopUpValue,
		IsActive:       it.IsActive,
		City:           it.City,
		CreatedAtUnix:  it.CreatedAt.Unix(),
	}
}

func toItems(items []db.Item) []pb.Item {
	out := make([]pb.Item, 0, len(items))
	for _, it := range items {
		out = append(out, toItem(it))
	}
	return out
}

// orderedItems keeps the order of ids and skips ids that did not load.
func orderedItems(ids []uint64, byID map[uint64]db.Item) []pb.Item {
	out := make([]pb.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, toItem(it))
		}
	}
	return out
}

func toMessage(m db.Message) pb.Message {
	return pb.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Type:           string(m.MessageType),
		RelatedItemID:  m.RelatedItemID,
		Payload:        string(m.Payload),
		Read:           m.ReadAt != nil,
		CreatedAtUnix:  m.CreatedAt.Unix(),
	}
}

func toProposal(p negotiation.Proposal) pb.Proposal {
	out := pb.Proposal{
		Kind:         string(p.Kind),
		MyItemID:     p.MyItem.ID,
		TargetItemID: p.TargetItem.ID,
		Delta:        p.Delta,
		TopUp:        p.TopUp,
		Text:         p.Text,
	}
	if p.Direction != nil {
		d := string(*p.Direction)
		out.Direction = &d
	}
	return out
}

// toConversation presents c from userID's side.
func toConversation(c db.Conversation, userID uint64, unread int64) pb.Conversation {
	mine, theirs := c.Item1ID, c.Item2ID
	if c.User2ID == userID {
		mine, theirs = theirs, mine
	}
	return pb.Conversation{
		ID:               c.ID,
		OtherUserID:      c.Other(userID),
		MyItemID:         mine,
		TheirItemID:      theirs,
		LastActivityUnix: c.LastActivityAt.Unix(),
		Unread:           unread,
	}
}
