package db

import (
	"time"

	"gorm.io/datatypes"
)

// Condition is the physical condition of a listed item.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionWorn    Condition = "worn"
)

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionWorn:
		return true
	}
	return false
}

// Direction is the swipe gesture recorded for a candidate item.
type Direction string

const (
	DirectionLeft  Direction = "left"  // skip
	DirectionRight Direction = "right" // like
	DirectionUp    Direction = "up"    // wishlist
)

// Valid reports whether d is a known swipe direction.
func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight || d == DirectionUp
}

// MessageType tags a chat entry so clients can pick a renderer.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageProposal MessageType = "proposal"
	MessageMatch    MessageType = "match"
	MessageSystem   MessageType = "system"
)

// User table. Location is optional and only used as a ranking signal.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	Province     string `gorm:"size:64"`
	City         string `gorm:"size:64"`
	District     string `gorm:"size:64"`
	Latitude     *float64
	Longitude    *float64
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Item is a listing in the catalog.
//
// Indexes:
//   - idx_items_active_created(is_active, created_at DESC)
//     Serves the recency ordering used by the feed fallback.
//   - idx_items_owner(owner_id)
type Item struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	OwnerID        uint64    `gorm:"not null;index:idx_items_owner"`
	Name           string    `gorm:"size:128;not null"`
	Description    string    `gorm:"type:text"`
	Category       string    `gorm:"size:64;not null;index"`
	Condition      Condition `gorm:"size:16;not null"`
	EstimatedValue int64     `gorm:"not null"`
	TopUpValue     *int64
	IsActive       bool   `gorm:"not null;default:true;index:idx_items_active_created,priority:1"`
	Province       string `gorm:"size:64"`
	City           string `gorm:"size:64"`
	District       string `gorm:"size:64"`
	Latitude       *float64
	Longitude      *float64
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_items_active_created,priority:2,sort:desc"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// HasLocation reports whether both coordinates are present.
func (i Item) HasLocation() bool {
	return i.Latitude != nil && i.Longitude != nil
}

// SwipeDecision is one directional decision of a swiper on a candidate item
// while offering one of their own items.
//
// Composite PK: (SwiperID, OfferedItemID, CandidateItemID)
//   - A tuple is recorded at most once; repeats are duplicates.
//   - The PK prefix also serves the reverse-like lookup of the match detector.
type SwipeDecision struct {
	SwiperID        uint64    `gorm:"primaryKey;autoIncrement:false"`
	OfferedItemID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	CandidateItemID uint64    `gorm:"primaryKey;autoIncrement:false;index"`
	Direction       Direction `gorm:"size:8;not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

// WishlistEntry is created by an "up" swipe, separately from the decision.
type WishlistEntry struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false"`
	ItemID    uint64    `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// Match is an unordered item pair liked from both sides. ItemLowID is always
// the smaller id so the pair has one row.
type Match struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	ItemLowID  uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:1"`
	ItemHighID uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:2;index"`
	UserLowID  uint64    `gorm:"not null;index"`
	UserHighID uint64    `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Conversation between two users. Rows written by this service always have
// User1ID < User2ID and Item1ID owned by User1ID; legacy rows may not.
type Conversation struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	User1ID        uint64    `gorm:"not null;uniqueIndex:idx_conversation_users,priority:1"`
	User2ID        uint64    `gorm:"not null;uniqueIndex:idx_conversation_users,priority:2;index"`
	Item1ID        uint64    `gorm:"not null"`
	Item2ID        uint64    `gorm:"not null"`
	LastActivityAt time.Time `gorm:"not null;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID uint64) uint64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// HasUser reports whether userID participates in the conversation.
func (c Conversation) HasUser(userID uint64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Message is an entry in a conversation log, ordered by ID.
type Message struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement"`
	ConversationID uint64      `gorm:"not null;index:idx_messages_conversation,priority:1"`
	SenderID       uint64      `gorm:"not null"`
	Content        string      `gorm:"type:text;not null"`
	MessageType    MessageType `gorm:"size:16;not null;default:text"`
	RelatedItemID  *uint64
	Payload        datatypes.JSON
	ReadAt         *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_messages_conversation,priority:2"`
}

// AllModels lists every table managed by AutoMigrate.
func AllModels() []any {
	return []any{
		&User{},
		&Item{},
		&SwipeDecision{},
		&WishlistEntry{},
		&Match{},
		&Conversation{},
		&Message{},
	}
}
