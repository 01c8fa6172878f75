package negotiation_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/db/dbtest"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
	"github.com/rafipicu1/bartertalco-sub000/internal/negotiation"
	"github.com/rafipicu1/bartertalco-sub000/internal/repository"
)

type sentProposal struct {
	msg       db.Message
	recipient uint64
}

type recordingNotifier struct{ sent []sentProposal }

func (n *recordingNotifier) ProposalSent(_ context.Context, msg db.Message, to uint64) {
	n.sent = append(n.sent, sentProposal{msg: msg, recipient: to})
}

func TestSendCreatesCanonicalConversationAndProposal(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	n := &recordingNotifier{}
	b := negotiation.NewBuilder(database, n, logger.Discard())

	// proposer has the higher user id to exercise canonical ordering
	mine := dbtest.Item(t, database, db.Item{OwnerID: 9, Name: "Sepeda", EstimatedValue: 100_000, IsActive: true})
	target := dbtest.Item(t, database, db.Item{OwnerID: 4, Name: "Kamera", EstimatedValue: 150_000, IsActive: true})

	res, err := b.Send(ctx, negotiation.SendInput{
		ProposerID: 9, MyItemID: mine.ID, TargetItemID: target.ID, Kind: negotiation.ValueAdjusted,
	})
	require.NoError(t, err)
	assert.True(t, res.ConversationCreated)
	assert.Equal(t, uint64(4), res.Conversation.User1ID)
	assert.Equal(t, target.ID, res.Conversation.Item1ID)
	assert.Equal(t, uint64(9), res.Conversation.User2ID)
	assert.Equal(t, mine.ID, res.Conversation.Item2ID)

	msgs, _, err := repository.NewMessageRepository(database).ListMessages(ctx, res.Conversation.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	m := msgs[0]
	assert.Equal(t, db.MessageProposal, m.MessageType)
	assert.Equal(t, uint64(9), m.SenderID)
	require.NotNil(t, m.RelatedItemID)
	assert.Equal(t, target.ID, *m.RelatedItemID)

	var payload negotiation.Proposal
	require.NoError(t, json.Unmarshal(m.Payload, &payload))
	assert.Equal(t, int64(50_000), *payload.TopUp)
	assert.Equal(t, negotiation.PayExtra, *payload.Direction)

	require.Len(t, n.sent, 1)
	assert.Equal(t, uint64(4), n.sent[0].recipient)

	// a second proposal reuses the conversation
	res2, err := b.Send(ctx, negotiation.SendInput{
		ProposerID: 4, MyItemID: target.ID, TargetItemID: mine.ID, Kind: negotiation.StraightBarter,
	})
	require.NoError(t, err)
	assert.False(t, res2.ConversationCreated)
	assert.Equal(t, res.Conversation.ID, res2.Conversation.ID)
}

func TestSendValidationWritesNothing(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	b := negotiation.NewBuilder(database, nil, logger.Discard())

	mine := dbtest.Item(t, database, db.Item{OwnerID: 1, EstimatedValue: 100_000, IsActive: true})
	other := dbtest.Item(t, database, db.Item{OwnerID: 1, IsActive: true})
	target := dbtest.Item(t, database, db.Item{OwnerID: 2, EstimatedValue: 100_000, IsActive: true})
	gone := dbtest.Item(t, database, db.Item{OwnerID: 2, IsActive: false})

	cases := []struct {
		name string
		in   negotiation.SendInput
		err  error
	}{
		{"zero top-up", negotiation.SendInput{ProposerID: 1, MyItemID: mine.ID, TargetItemID: target.ID, Kind: negotiation.ValueAdjusted}, svcErr.ErrZeroTopUp},
		{"not my item", negotiation.SendInput{ProposerID: 2, MyItemID: mine.ID, TargetItemID: target.ID, Kind: negotiation.StraightBarter}, svcErr.ErrNotItemOwner},
		{"own target", negotiation.SendInput{ProposerID: 1, MyItemID: mine.ID, TargetItemID: other.ID, Kind: negotiation.StraightBarter}, svcErr.ErrOwnItem},
		{"inactive target", negotiation.SendInput{ProposerID: 1, MyItemID: mine.ID, TargetItemID: gone.ID, Kind: negotiation.StraightBarter}, svcErr.ErrItemInactive},
		{"missing", negotiation.SendInput{ProposerID: 1, MyItemID: mine.ID, TargetItemID: 404, Kind: negotiation.StraightBarter}, svcErr.ErrItemNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.Send(ctx, tc.in)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	var convs, msgs int64
	require.NoError(t, database.Model(&db.Conversation{}).Count(&convs).Error)
	require.NoError(t, database.Model(&db.Message{}).Count(&msgs).Error)
	assert.Zero(t, convs)
	assert.Zero(t, msgs)
}
