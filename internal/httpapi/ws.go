package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Notifications upgrades to a websocket that receives the caller's match,
// proposal and message events. Inbound frames are read and discarded so
// close frames are seen.
func (h *Handler) Notifications(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications disabled"})
		return
	}
	userID := callerID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + userHeader})
		return
	}

	_, span := otel.Tracer("barter/ws").Start(c.Request.Context(), "ws.handshake")
	span.SetAttributes(attribute.Int64("user.id", int64(userID)))
	defer span.End()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		return
	}
	h.hub.Add(userID, conn)
	h.logger.Debug("ws connected", "user_id", userID)

	go func() {
		defer func() {
			h.hub.Remove(userID, conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Debug("ws read error", "user_id", userID, "err", err)
				}
				return
			}
		}
	}()
}
