package barter

// Item is a catalog listing as exposed to clients.
type Item struct {
	ID             uint64 `json:"id"`
	OwnerID        uint64 `json:"owner_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category"`
	Condition      string `json:"condition"`
	EstimatedValue int64  `json:"estimated_value"`
	TopUpValue     *int64 `json:"top_up_value,omitempty"`
	IsActive       bool   `json:"is_active"`
	City           string `json:"city,omitempty"`
	CreatedAtUnix  int64  `json:"created_at_unix"`
}

type GetFeedRequest struct {
	UserID         uint64 `json:"user_id"`
	OfferingItemID uint64 `json:"offering_item_id"`
	Category       string `json:"category,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

type GetFeedResponse struct {
	Items []Item `json:"items"`
}

type ListOfferingItemsRequest struct {
	UserID uint64 `json:"user_id"`
}

type ListOfferingItemsResponse struct {
	Items []Item `json:"items"`
}

type SwipeRequest struct {
	UserID          uint64 `json:"user_id"`
	OfferedItemID   uint64 `json:"offered_item_id"`
	CandidateItemID uint64 `json:"candidate_item_id"`
	// Direction is one of "left", "right", "up".
	Direction string `json:"direction"`
}

// Match is set on a swipe response when the pair is matched.
type Match struct {
	MatchID        uint64 `json:"match_id"`
	ConversationID uint64 `json:"conversation_id"`
	// Outcome is "matched" for the swipe that created the match and
	// "already_matched" afterwards.
	Outcome string `json:"outcome"`
}

type SwipeResponse struct {
	// Status is "recorded" or "duplicate".
	Status string `json:"status"`
	Match  *Match `json:"match,omitempty"`
}

type AddToWishlistRequest struct {
	UserID uint64 `json:"user_id"`
	ItemID uint64 `json:"item_id"`
}

type AddToWishlistResponse struct {
	Added bool `json:"added"`
}

type ListWishlistRequest struct {
	UserID          uint64  `json:"user_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit,omitempty"`
}

type ListWishlistResponse struct {
	Items               []Item  `json:"items"`
	NextPaginationToken *string `json:"next_pagination_token,omitempty"`
}

type ProposeTradeRequest struct {
	UserID       uint64 `json:"user_id"`
	MyItemID     uint64 `json:"my_item_id"`
	TargetItemID uint64 `json:"target_item_id"`
	// Kind is "straight_barter" or "value_adjusted".
	Kind  string `json:"kind"`
	TopUp *int64 `json:"top_up,omitempty"`
	// Direction is "pay_extra" or "request_extra".
	Direction *string `json:"direction,omitempty"`
}

type Proposal struct {
	Kind         string  `json:"kind"`
	MyItemID     uint64  `json:"my_item_id"`
	TargetItemID uint64  `json:"target_item_id"`
	Delta        int64   `json:"delta"`
	TopUp        *int64  `json:"top_up,omitempty"`
	Direction    *string `json:"direction,omitempty"`
	Text         string  `json:"text"`
}

type ProposeTradeResponse struct {
	ConversationID      uint64   `json:"conversation_id"`
	ConversationCreated bool     `json:"conversation_created"`
	Proposal            Proposal `json:"proposal"`
	Message             Message  `json:"message"`
}

type SuggestTopUpRequest struct {
	UserID       uint64 `json:"user_id"`
	MyItemID     uint64 `json:"my_item_id"`
	TargetItemID uint64 `json:"target_item_id"`
}

type SuggestTopUpResponse struct {
	Delta     int64  `json:"delta"`
	TopUp     int64  `json:"top_up"`
	Direction string `json:"direction"`
	// Display is the formatted top-up, e.g. "Rp 50.000".
	Display string `json:"display"`
}

// Message is one chat log entry.
type Message struct {
	ID             uint64  `json:"id"`
	ConversationID uint64  `json:"conversation_id"`
	SenderID       uint64  `json:"sender_id"`
	Content        string  `json:"content"`
	Type           string  `json:"type"`
	RelatedItemID  *uint64 `json:"related_item_id,omitempty"`
	Payload        string  `json:"payload,omitempty"`
	Read           bool    `json:"read"`
	CreatedAtUnix  int64   `json:"created_at_unix"`
}

type ListMessagesRequest struct {
	UserID          uint64  `json:"user_id"`
	ConversationID  uint64  `json:"conversation_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit,omitempty"`
}

type ListMessagesResponse struct {
	Messages            []Message `json:"messages"`
	NextPaginationToken *string   `json:"next_pagination_token,omitempty"`
}

type SendMessageRequest struct {
	UserID         uint64 `json:"user_id"`
	ConversationID uint64 `json:"conversation_id"`
	Content        string `json:"content"`
}

type SendMessageResponse struct {
	Message Message `json:"message"`
}

type MarkReadRequest struct {
	UserID         uint64 `json:"user_id"`
	ConversationID uint64 `json:"conversation_id"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

type ListConversationsRequest struct {
	UserID uint64 `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

// Conversation is a chat as seen by one participant.
type Conversation struct {
	ID               uint64 `json:"id"`
	OtherUserID      uint64 `json:"other_user_id"`
	MyItemID         uint64 `json:"my_item_id"`
	TheirItemID      uint64 `json:"their_item_id"`
	LastActivityUnix int64  `json:"last_activity_unix"`
	Unread           int64  `json:"unread"`
}

type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}

type TrackViewRequest struct {
	UserID uint64 `json:"user_id"`
	ItemID uint64 `json:"item_id"`
}

type TrackSearchRequest struct {
	UserID uint64 `json:"user_id"`
	Query  string `json:"query"`
}

// Empty is returned by calls without a payload.
type Empty struct{}
