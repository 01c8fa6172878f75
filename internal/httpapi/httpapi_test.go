package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafipicu1/bartertalco-sub000/internal/app"
	"github.com/rafipicu1/bartertalco-sub000/internal/cache"
	"github.com/rafipicu1/bartertalco-sub000/internal/config"
	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/db/dbtest"
	"github.com/rafipicu1/bartertalco-sub000/internal/httpapi"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
	"github.com/rafipicu1/bartertalco-sub000/internal/notify"
	"github.com/rafipicu1/bartertalco-sub000/internal/service/barter"
)

type gateway struct {
	router *gin.Engine
	appCtx *app.AppContext
	a1, b1 db.Item
}

func setupGateway(t *testing.T) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := dbtest.Open(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	cfg.Feed.BatchSize = 30
	cfg.Feed.MaxBatch = 50
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })

	appCtx, err := app.New(cfg, database, rc, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = appCtx.Close(ctx)
	})

	g := &gateway{appCtx: appCtx}
	g.a1 = dbtest.Item(t, database, db.Item{OwnerID: 1, Name: "Sepeda", EstimatedValue: 100_000, IsActive: true})
	g.b1 = dbtest.Item(t, database, db.Item{OwnerID: 2, Name: "Kamera", EstimatedValue: 150_000, IsActive: true})

	h := httpapi.NewHandler(barter.NewBarterService(appCtx), appCtx.Hub, logger.Discard())
	g.router = httpapi.NewRouter(h, "barter-test")
	return g
}

func (g *gateway) do(t *testing.T, method, path string, userID uint64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-Id", fmt.Sprint(userID))
	}
	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	g.do(t, http.MethodGet, "/v1/feed", 0, nil)
	rec = g.do(t, http.MethodGet, "/metrics", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "barter_http_requests_total")
}

func TestInvalidUserHeader(t *testing.T) {
	g := setupGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/offering-items", nil)
	req.Header.Set("X-User-Id", "abc")
	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedAndOfferingItems(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodGet, fmt.Sprintf("/v1/feed?offering_item_id=%d&limit=10", g.a1.ID), 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, g.b1.ID, items[0].(map[string]any)["id"])

	rec = g.do(t, http.MethodGet, fmt.Sprintf("/v1/feed?offering_item_id=%d", g.b1.ID), 1, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = g.do(t, http.MethodGet, "/v1/feed?limit=-1", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodGet, "/v1/offering-items", 2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)
}

func TestSwipeMatchAndConversation(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodPost, "/v1/swipes", 1, map[string]any{
		"offered_item_id": g.a1.ID, "candidate_item_id": g.b1.ID, "direction": "right",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "recorded", decode(t, rec)["status"])

	rec = g.do(t, http.MethodPost, "/v1/swipes", 2, map[string]any{
		"offered_item_id": g.b1.ID, "candidate_item_id": g.a1.ID, "direction": "right",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	match := decode(t, rec)["match"].(map[string]any)
	assert.Equal(t, "matched", match["outcome"])
	convID := uint64(match["conversation_id"].(float64))

	rec = g.do(t, http.MethodGet, "/v1/conversations", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	convs := decode(t, rec)["conversations"].([]any)
	require.Len(t, convs, 1)
	assert.EqualValues(t, convID, convs[0].(map[string]any)["id"])

	path := fmt.Sprintf("/v1/conversations/%d/messages", convID)
	rec = g.do(t, http.MethodPost, path, 1, map[string]any{"content": "halo"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = g.do(t, http.MethodGet, path, 2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["messages"])

	rec = g.do(t, http.MethodPost, fmt.Sprintf("/v1/conversations/%d/read", convID), 2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Greater(t, decode(t, rec)["updated"].(float64), float64(0))

	// outsiders are rejected
	rec = g.do(t, http.MethodGet, path, 3, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSwipeValidation(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodPost, "/v1/swipes", 1, map[string]any{"offered_item_id": g.a1.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodPost, "/v1/swipes", 1, map[string]any{
		"offered_item_id": g.a1.ID, "candidate_item_id": g.b1.ID, "direction": "down",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodPost, "/v1/swipes", 1, map[string]any{
		"offered_item_id": g.b1.ID, "candidate_item_id": g.a1.ID, "direction": "right",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = g.do(t, http.MethodGet, "/v1/conversations/abc/messages", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProposalsAndSuggest(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodGet, fmt.Sprintf("/v1/proposals/suggest?my_item_id=%d&target_item_id=%d", g.a1.ID, g.b1.ID), 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sug := decode(t, rec)
	assert.Equal(t, "Rp 50.000", sug["display"])

	rec = g.do(t, http.MethodGet, "/v1/proposals/suggest", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(t, http.MethodPost, "/v1/proposals", 1, map[string]any{
		"my_item_id": g.a1.ID, "target_item_id": g.b1.ID, "kind": "straight_barter",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decode(t, rec)["conversation_created"])

	rec = g.do(t, http.MethodPost, "/v1/proposals", 1, map[string]any{
		"my_item_id": g.a1.ID, "target_item_id": g.a1.ID, "kind": "straight_barter",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlistAndSignals(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(t, http.MethodPost, "/v1/wishlist", 1, map[string]any{"item_id": g.b1.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["added"])

	rec = g.do(t, http.MethodGet, "/v1/wishlist", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)

	rec = g.do(t, http.MethodPost, "/v1/signals/view", 1, map[string]any{"item_id": g.b1.ID})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = g.do(t, http.MethodPost, "/v1/signals/search", 1, map[string]any{"query": "kamera analog"})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = g.do(t, http.MethodPost, "/v1/signals/search", 1, map[string]any{"query": "  ?! "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationsSocket(t *testing.T) {
	g := setupGateway(t)
	srv := httptest.NewServer(g.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("X-User-Id", "1")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return g.appCtx.Hub.Connected(1) == 1 }, time.Second, 10*time.Millisecond)

	g.do(t, http.MethodPost, "/v1/swipes", 1, map[string]any{
		"offered_item_id": g.a1.ID, "candidate_item_id": g.b1.ID, "direction": "right",
	})
	g.do(t, http.MethodPost, "/v1/swipes", 2, map[string]any{
		"offered_item_id": g.b1.ID, "candidate_item_id": g.a1.ID, "direction": "right",
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev notify.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, notify.EventMatch, ev.Type)
	assert.EqualValues(t, 1, ev.UserID)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return g.appCtx.Hub.Connected(1) == 0 }, time.Second, 10*time.Millisecond)
}
