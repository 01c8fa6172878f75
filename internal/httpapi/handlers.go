package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pb "github.com/rafipicu1/bartertalco-sub000/internal/api/barter"
)

// GetFeed handles GET /v1/feed?offering_item_id=&category=&limit=&offset=.
func (h *Handler) GetFeed(c *gin.Context) {
	offering, ok := queryUint(c, "offering_item_id")
	if !ok {
		badRequest(c, "invalid offering_item_id")
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		badRequest(c, "invalid limit")
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		badRequest(c, "invalid offset")
		return
	}

	resp, err := h.api.GetFeed(c.Request.Context(), &pb.GetFeedRequest{
		UserID:         callerID(c),
		OfferingItemID: offering,
		Category:       c.Query("category"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListOfferingItems(c *gin.Context) {
	resp, err := h.api.ListOfferingItems(c.Request.Context(), &pb.ListOfferingItemsRequest{UserID: callerID(c)})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Swipe records a decision. A newly created match answers 201.
func (h *Handler) Swipe(c *gin.Context) {
	var req struct {
		OfferedItemID   uint64 `json:"offered_item_id" binding:"required"`
		CandidateItemID uint64 `json:"candidate_item_id" binding:"required"`
		Direction       string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.api.Swipe(c.Request.Context(), &pb.SwipeRequest{
		UserID:          callerID(c),
		OfferedItemID:   req.OfferedItemID,
		CandidateItemID: req.CandidateItemID,
		Direction:       req.Direction,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	code := http.StatusOK
	if resp.Match != nil && resp.Match.Outcome == "matched" {
		code = http.StatusCreated
	}
	c.JSON(code, resp)
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	var req struct {
		ItemID uint64 `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.api.AddToWishlist(c.Request.Context(), &pb.AddToWishlistRequest{UserID: callerID(c), ItemID: req.ItemID})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListWishlist(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		badRequest(c, "invalid limit")
		return
	}
	resp, err := h.api.ListWishlist(c.Request.Context(), &pb.ListWishlistRequest{
		UserID:          callerID(c),
		PaginationToken: optionalToken(c),
		Limit:           limit,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProposeTrade sends a proposal into the conversation for the item pair,
// creating the conversation if needed.
func (h *Handler) ProposeTrade(c *gin.Context) {
	var req struct {
		MyItemID     uint64  `json:"my_item_id" binding:"required"`
		TargetItemID uint64  `json:"target_item_id" binding:"required"`
		Kind         string  `json:"kind" binding:"required"`
		TopUp        *int64  `json:"top_up"`
		Direction    *string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.api.ProposeTrade(c.Request.Context(), &pb.ProposeTradeRequest{
		UserID:       callerID(c),
		MyItemID:     req.MyItemID,
		TargetItemID: req.TargetItemID,
		Kind:         req.Kind,
		TopUp:        req.TopUp,
		Direction:    req.Direction,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SuggestTopUp handles GET /v1/proposals/suggest?my_item_id=&target_item_id=.
func (h *Handler) SuggestTopUp(c *gin.Context) {
	mine, ok1 := queryUint(c, "my_item_id")
	target, ok2 := queryUint(c, "target_item_id")
	if !ok1 || !ok2 || mine == 0 || target == 0 {
		badRequest(c, "my_item_id and target_item_id are required")
		return
	}

	resp, err := h.api.SuggestTopUp(c.Request.Context(), &pb.SuggestTopUpRequest{
		UserID:       callerID(c),
		MyItemID:     mine,
		TargetItemID: target,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListConversations(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		badRequest(c, "invalid limit")
		return
	}
	resp, err := h.api.ListConversations(c.Request.Context(), &pb.ListConversationsRequest{UserID: callerID(c), Limit: limit})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListMessages(c *gin.Context) {
	convID, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid conversation id")
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		badRequest(c, "invalid limit")
		return
	}

	resp, err := h.api.ListMessages(c.Request.Context(), &pb.ListMessagesRequest{
		UserID:          callerID(c),
		ConversationID:  convID,
		PaginationToken: optionalToken(c),
		Limit:           limit,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SendMessage(c *gin.Context) {
	convID, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid conversation id")
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.api.SendMessage(c.Request.Context(), &pb.SendMessageRequest{
		UserID:         callerID(c),
		ConversationID: convID,
		Content:        req.Content,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) MarkRead(c *gin.Context) {
	convID, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid conversation id")
		return
	}
	resp, err := h.api.MarkRead(c.Request.Context(), &pb.MarkReadRequest{UserID: callerID(c), ConversationID: convID})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TrackView is fire-and-forget; it answers 202 once the signal is queued.
func (h *Handler) TrackView(c *gin.Context) {
	var req struct {
		ItemID uint64 `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := h.api.TrackView(c.Request.Context(), &pb.TrackViewRequest{UserID: callerID(c), ItemID: req.ItemID}); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *Handler) TrackSearch(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := h.api.TrackSearch(c.Request.Context(), &pb.TrackSearchRequest{UserID: callerID(c), Query: req.Query}); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
