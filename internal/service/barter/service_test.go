package barter_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	pb "github.com/rafipicu1/bartertalco-sub000/internal/api/barter"
	"github.com/rafipicu1/bartertalco-sub000/internal/app"
	"github.com/rafipicu1/bartertalco-sub000/internal/cache"
	"github.com/rafipicu1/bartertalco-sub000/internal/config"
	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/db/dbtest"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
	"github.com/rafipicu1/bartertalco-sub000/internal/server"
	"github.com/rafipicu1/bartertalco-sub000/internal/service/barter"
)

//
// Test helpers
//

// fixture holds a small catalog:
//   - user 1 owns a1 (Rp 100.000) and a2
//   - user 2 owns b1 (Rp 150.000)
//   - user 3 owns c1
type fixture struct {
	svc    *barter.Service
	appCtx *app.AppContext
	mr     *miniredis.Miniredis

	a1, a2, b1, c1 db.Item
}

// setupService spins up an in-memory SQLite DB, a miniredis and wires
// everything into a Barter service instance. Each test gets its own
// isolated DB + Redis.
func setupService(t *testing.T) *fixture {
	t.Helper()

	database := dbtest.Open(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Redis.Addr = mr.Addr()
	cfg.Feed.BatchSize = 30
	cfg.Feed.MaxBatch = 50

	redisCache := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = redisCache.Close() })

	appCtx, err := app.New(cfg, database, redisCache, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = appCtx.Close(ctx)
	})

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	f := &fixture{svc: barter.NewBarterService(appCtx), appCtx: appCtx, mr: mr}
	f.a1 = dbtest.Item(t, database, db.Item{OwnerID: 1, Name: "Sepeda lipat", Category: "sports", EstimatedValue: 100_000, IsActive: true, CreatedAt: base})
	f.a2 = dbtest.Item(t, database, db.Item{OwnerID: 1, Name: "Tenda", Category: "outdoor", IsActive: true, CreatedAt: base.Add(time.Minute)})
	f.b1 = dbtest.Item(t, database, db.Item{OwnerID: 2, Name: "Kamera analog", Category: "electronics", EstimatedValue: 150_000, IsActive: true, CreatedAt: base.Add(2 * time.Minute)})
	f.c1 = dbtest.Item(t, database, db.Item{OwnerID: 3, Name: "Gitar akustik", Category: "music", IsActive: true, CreatedAt: base.Add(3 * time.Minute)})
	return f
}

func itemIDs(items []pb.Item) []uint64 {
	out := make([]uint64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

//
// Tests
//

func TestSwipe_MutualLikeCreatesMatchAndConversation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	first, err := f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.a1.ID, CandidateItemID: f.b1.ID, Direction: "right"})
	require.NoError(t, err)
	assert.Equal(t, "recorded", first.Status)
	assert.Nil(t, first.Match)

	second, err := f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 2, OfferedItemID: f.b1.ID, CandidateItemID: f.a1.ID, Direction: "right"})
	require.NoError(t, err)
	require.NotNil(t, second.Match)
	assert.Equal(t, "matched", second.Match.Outcome)
	assert.NotZero(t, second.Match.ConversationID)

	again, err := f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 2, OfferedItemID: f.b1.ID, CandidateItemID: f.a1.ID, Direction: "right"})
	require.NoError(t, err)
	assert.Equal(t, "duplicate", again.Status)
	require.NotNil(t, again.Match)
	assert.Equal(t, "already_matched", again.Match.Outcome)
	assert.Equal(t, second.Match.MatchID, again.Match.MatchID)

	// the seeded match message is visible to both sides
	for _, user := range []uint64{1, 2} {
		msgs, err := f.svc.ListMessages(ctx, &pb.ListMessagesRequest{UserID: user, ConversationID: second.Match.ConversationID})
		require.NoError(t, err)
		require.Len(t, msgs.Messages, 1)
		assert.Equal(t, string(db.MessageMatch), msgs.Messages[0].Type)
	}
}

func TestSwipe_Validation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.a1.ID, CandidateItemID: f.b1.ID, Direction: "down"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.a1.ID, CandidateItemID: f.a2.ID, Direction: "right"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "own item")

	_, err = f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.b1.ID, CandidateItemID: f.c1.ID, Direction: "left"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err), "offering someone else's item")

	_, err = f.svc.Swipe(ctx, &pb.SwipeRequest{OfferedItemID: f.a1.ID, CandidateItemID: f.b1.ID, Direction: "left"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "missing user")

	_, err = f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.a1.ID, CandidateItemID: 9999, Direction: "left"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestSwipe_UpAddsToWishlist(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	resp, err := f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.a1.ID, CandidateItemID: f.c1.ID, Direction: "up"})
	require.NoError(t, err)
	assert.Nil(t, resp.Match)

	wl, err := f.svc.ListWishlist(ctx, &pb.ListWishlistRequest{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.c1.ID}, itemIDs(wl.Items))
}

func TestGetFeed_ExcludesOwnAndDecided(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	feed, err := f.svc.GetFeed(ctx, &pb.GetFeedRequest{UserID: 1, OfferingItemID: f.a1.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.c1.ID, f.b1.ID}, itemIDs(feed.Items))

	_, err = f.svc.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.a1.ID, CandidateItemID: f.c1.ID, Direction: "left"})
	require.NoError(t, err)

	feed, err = f.svc.GetFeed(ctx, &pb.GetFeedRequest{UserID: 1, OfferingItemID: f.a1.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.b1.ID}, itemIDs(feed.Items))

	// decisions are scoped to the offering item
	feed, err = f.svc.GetFeed(ctx, &pb.GetFeedRequest{UserID: 1, OfferingItemID: f.a2.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.c1.ID, f.b1.ID}, itemIDs(feed.Items))
}

func TestGetFeed_Anonymous(t *testing.T) {
	f := setupService(t)

	feed, err := f.svc.GetFeed(context.Background(), &pb.GetFeedRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.c1.ID, f.b1.ID}, itemIDs(feed.Items))
}

func TestGetFeed_ForeignOfferingItem(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.GetFeed(context.Background(), &pb.GetFeedRequest{UserID: 1, OfferingItemID: f.b1.ID})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestListOfferingItems(t *testing.T) {
	f := setupService(t)

	resp, err := f.svc.ListOfferingItems(context.Background(), &pb.ListOfferingItemsRequest{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.a2.ID, f.a1.ID}, itemIDs(resp.Items))

	resp, err = f.svc.ListOfferingItems(context.Background(), &pb.ListOfferingItemsRequest{UserID: 42})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestProposeTrade_ConversationFlow(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	resp, err := f.svc.ProposeTrade(ctx, &pb.ProposeTradeRequest{
		UserID: 1, MyItemID: f.a1.ID, TargetItemID: f.b1.ID, Kind: "value_adjusted",
	})
	require.NoError(t, err)
	assert.True(t, resp.ConversationCreated)
	require.NotNil(t, resp.Proposal.TopUp)
	assert.Equal(t, int64(50_000), *resp.Proposal.TopUp)
	require.NotNil(t, resp.Proposal.Direction)
	assert.Equal(t, "pay_extra", *resp.Proposal.Direction)
	assert.Contains(t, resp.Message.Content, "Rp 50.000")
	assert.Equal(t, string(db.MessageProposal), resp.Message.Type)
	require.NotNil(t, resp.Message.RelatedItemID)
	assert.Equal(t, f.b1.ID, *resp.Message.RelatedItemID)

	convs, err := f.svc.ListConversations(ctx, &pb.ListConversationsRequest{UserID: 2})
	require.NoError(t, err)
	require.Len(t, convs.Conversations, 1)
	c := convs.Conversations[0]
	assert.Equal(t, resp.ConversationID, c.ID)
	assert.Equal(t, uint64(1), c.OtherUserID)
	assert.Equal(t, f.b1.ID, c.MyItemID)
	assert.Equal(t, f.a1.ID, c.TheirItemID)
	assert.Equal(t, int64(1), c.Unread)

	read, err := f.svc.MarkRead(ctx, &pb.MarkReadRequest{UserID: 2, ConversationID: resp.ConversationID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), read.Updated)

	reply, err := f.svc.SendMessage(ctx, &pb.SendMessageRequest{UserID: 2, ConversationID: resp.ConversationID, Content: "Deal, ketemu di Blok M?"})
	require.NoError(t, err)
	assert.Equal(t, string(db.MessageText), reply.Message.Type)

	msgs, err := f.svc.ListMessages(ctx, &pb.ListMessagesRequest{UserID: 1, ConversationID: resp.ConversationID})
	require.NoError(t, err)
	require.Len(t, msgs.Messages, 2)
	assert.Equal(t, resp.Message.ID, msgs.Messages[0].ID)
	assert.True(t, msgs.Messages[0].Read)
	assert.Equal(t, reply.Message.ID, msgs.Messages[1].ID)

	// a second proposal reuses the conversation
	again, err := f.svc.ProposeTrade(ctx, &pb.ProposeTradeRequest{
		UserID: 2, MyItemID: f.b1.ID, TargetItemID: f.a2.ID, Kind: "straight_barter",
	})
	require.NoError(t, err)
	assert.False(t, again.ConversationCreated)
	assert.Equal(t, resp.ConversationID, again.ConversationID)
	assert.Nil(t, again.Proposal.TopUp)
}

func TestProposeTrade_Rejections(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	zero := int64(0)
	_, err := f.svc.ProposeTrade(ctx, &pb.ProposeTradeRequest{UserID: 1, MyItemID: f.a1.ID, TargetItemID: f.b1.ID, Kind: "value_adjusted", TopUp: &zero})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.ProposeTrade(ctx, &pb.ProposeTradeRequest{UserID: 1, MyItemID: f.a1.ID, TargetItemID: f.b1.ID, Kind: "gift"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.ProposeTrade(ctx, &pb.ProposeTradeRequest{UserID: 1, MyItemID: f.b1.ID, TargetItemID: f.c1.ID, Kind: "straight_barter"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	convs, err := f.svc.ListConversations(ctx, &pb.ListConversationsRequest{UserID: 1})
	require.NoError(t, err)
	assert.Empty(t, convs.Conversations, "rejected proposals write nothing")
}

func TestSuggestTopUp(t *testing.T) {
	f := setupService(t)

	resp, err := f.svc.SuggestTopUp(context.Background(), &pb.SuggestTopUpRequest{UserID: 2, MyItemID: f.b1.ID, TargetItemID: f.a1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(-50_000), resp.Delta)
	assert.Equal(t, int64(50_000), resp.TopUp)
	assert.Equal(t, "request_extra", resp.Direction)
	assert.Equal(t, "Rp 50.000", resp.Display)
}

func TestConversationAccess(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	resp, err := f.svc.ProposeTrade(ctx, &pb.ProposeTradeRequest{UserID: 1, MyItemID: f.a1.ID, TargetItemID: f.b1.ID, Kind: "straight_barter"})
	require.NoError(t, err)

	_, err = f.svc.ListMessages(ctx, &pb.ListMessagesRequest{UserID: 3, ConversationID: resp.ConversationID})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = f.svc.SendMessage(ctx, &pb.SendMessageRequest{UserID: 1, ConversationID: resp.ConversationID, Content: "   "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.MarkRead(ctx, &pb.MarkReadRequest{UserID: 1, ConversationID: 999})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestAddToWishlist(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	resp, err := f.svc.AddToWishlist(ctx, &pb.AddToWishlistRequest{UserID: 1, ItemID: f.b1.ID})
	require.NoError(t, err)
	assert.True(t, resp.Added)

	resp, err = f.svc.AddToWishlist(ctx, &pb.AddToWishlistRequest{UserID: 1, ItemID: f.b1.ID})
	require.NoError(t, err)
	assert.False(t, resp.Added)

	_, err = f.svc.AddToWishlist(ctx, &pb.AddToWishlistRequest{UserID: 1, ItemID: f.a1.ID})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestTrackSignals(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.TrackSearch(ctx, &pb.TrackSearchRequest{UserID: 1, Query: "  ! "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.TrackSearch(ctx, &pb.TrackSearchRequest{UserID: 1, Query: "kamera analog"})
	require.NoError(t, err)
	_, err = f.svc.TrackView(ctx, &pb.TrackViewRequest{UserID: 1, ItemID: f.b1.ID})
	require.NoError(t, err)

	// writes are asynchronous; drain them before reading Redis
	require.NoError(t, f.appCtx.Close(ctx))

	views, err := f.appCtx.RedisCache.ViewCounts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, views[f.b1.ID])
	terms, err := f.appCtx.RedisCache.SearchTerms(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, terms, 2)
}

//
// End to end over a real gRPC transport
//

func dialBufconn(t *testing.T, f *fixture) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := server.NewGRPCServer(logger.Discard(), barter.NewRegistrar(f.appCtx))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGRPC_EndToEnd(t *testing.T) {
	f := setupService(t)
	conn := dialBufconn(t, f)
	client := pb.NewBarterServiceClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hc, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.GetStatus())

	offering, err := client.ListOfferingItems(ctx, &pb.ListOfferingItemsRequest{UserID: 2})
	require.NoError(t, err)
	require.Len(t, offering.Items, 1)

	_, err = client.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.a1.ID, CandidateItemID: f.b1.ID, Direction: "right"})
	require.NoError(t, err)
	resp, err := client.Swipe(ctx, &pb.SwipeRequest{UserID: 2, OfferedItemID: offering.Items[0].ID, CandidateItemID: f.a1.ID, Direction: "right"})
	require.NoError(t, err)
	require.NotNil(t, resp.Match)
	assert.Equal(t, "matched", resp.Match.Outcome)

	_, err = client.Swipe(ctx, &pb.SwipeRequest{UserID: 1, OfferedItemID: f.a1.ID, CandidateItemID: f.b1.ID, Direction: "sideways"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
