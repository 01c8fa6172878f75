// Package httpapi exposes the Barter API as a REST gateway with a websocket
// notification stream.
package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"google.golang.org/grpc/status"

	pb "github.com/rafipicu1/bartertalco-sub000/internal/api/barter"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
	"github.com/rafipicu1/bartertalco-sub000/internal/notify"
	"github.com/rafipicu1/bartertalco-sub000/internal/observability"
)

const (
	userHeader = "X-User-Id"
	userKey    = "userID"
)

// Handler serves the REST routes on top of a BarterServiceServer.
type Handler struct {
	api    pb.BarterServiceServer
	hub    *notify.Hub
	logger *slog.Logger
}

// NewHandler builds a Handler. hub may be nil, in which case the
// notification socket answers 503.
func NewHandler(api pb.BarterServiceServer, hub *notify.Hub, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{api: api, hub: hub, logger: log.With("component", "http_gateway")}
}

// NewRouter wires middleware and every route.
func NewRouter(h *Handler, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1", h.identify)
	v1.GET("/feed", h.GetFeed)
	v1.GET("/offering-items", h.ListOfferingItems)
	v1.POST("/swipes", h.Swipe)
	v1.GET("/wishlist", h.ListWishlist)
	v1.POST("/wishlist", h.AddToWishlist)
	v1.POST("/proposals", h.ProposeTrade)
	v1.GET("/proposals/suggest", h.SuggestTopUp)
	v1.GET("/conversations", h.ListConversations)
	v1.GET("/conversations/:id/messages", h.ListMessages)
	v1.POST("/conversations/:id/messages", h.SendMessage)
	v1.POST("/conversations/:id/read", h.MarkRead)
	v1.POST("/signals/view", h.TrackView)
	v1.POST("/signals/search", h.TrackSearch)

	router.GET("/ws/notifications", h.identify, h.Notifications)

	return router
}

// identify reads the caller id from X-User-Id. A missing header leaves the
// caller anonymous (id 0); the service decides which routes allow that.
func (h *Handler) identify(c *gin.Context) {
	raw := c.GetHeader(userHeader)
	if raw == "" {
		raw = c.Query("user_id")
	}
	if raw == "" {
		c.Set(userKey, uint64(0))
		c.Next()
		return
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + userHeader})
		return
	}
	c.Set(userKey, id)
	c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), h.logger.With("user_id", id)))
	c.Next()
}

func callerID(c *gin.Context) uint64 {
	id, _ := c.Get(userKey)
	uid, _ := id.(uint64)
	return uid
}

// fail writes err with the HTTP status of its gRPC code.
func (h *Handler) fail(c *gin.Context, err error) {
	code := svcErr.HTTPStatus(err)
	msg := status.Convert(svcErr.Map(err)).Message()
	if code >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context(), h.logger).Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func queryUint(c *gin.Context, key string) (uint64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	return v, err == nil
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil && v >= 0
}

func pathID(c *gin.Context) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return v, err == nil && v > 0
}

func optionalToken(c *gin.Context) *string {
	if tok := c.Query("pagination_token"); tok != "" {
		return &tok
	}
	return nil
}
