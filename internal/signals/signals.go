// Package signals records the view and search activity that feeds ranking.
// Every write here is best effort; losing a signal only degrades ranking.
package signals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rafipicu1/bartertalco-sub000/internal/ranking"
)

// Kind of tracked signal.
type Kind string

const (
	KindView   Kind = "view"
	KindSearch Kind = "search"
)

var ErrEmptyQuery = errors.New("search query has no usable terms")

// Tracker records signals. Implementations must not block the swipe flow for
// long; wrap slow ones with Async.
type Tracker interface {
	TrackView(ctx context.Context, userID, itemID uint64) error
	TrackSearch(ctx context.Context, userID uint64, query string) error
}

// Store is where signals end up (the Redis signal counters).
type Store interface {
	IncrView(ctx context.Context, userID, itemID uint64) error
	IncrSearchTerms(ctx context.Context, userID uint64, terms []string) error
}

// Event is the wire form of one signal on the signals topic.
type Event struct {
	ID     string    `json:"id"`
	Kind   Kind      `json:"kind"`
	UserID uint64    `json:"user_id"`
	ItemID uint64    `json:"item_id,omitempty"`
	Terms  []string  `json:"terms,omitempty"`
	At     time.Time `json:"at"`
}

func NewViewEvent(userID, itemID uint64) Event {
	return Event{ID: uuid.NewString(), Kind: KindView, UserID: userID, ItemID: itemID, At: time.Now().UTC()}
}

func NewSearchEvent(userID uint64, terms []string) Event {
	return Event{ID: uuid.NewString(), Kind: KindSearch, UserID: userID, Terms: terms, At: time.Now().UTC()}
}

// NormalizeQuery turns a raw search box query into counter terms. Terms use
// the same tokenization as item text so they can match.
func NormalizeQuery(query string) []string {
	return ranking.Tokenize(query)
}

// Apply writes one event to the store. Unknown kinds are ignored.
func Apply(ctx context.Context, store Store, ev Event) error {
	if ev.UserID == 0 {
		return nil
	}
	switch ev.Kind {
	case KindView:
		if ev.ItemID == 0 {
			return nil
		}
		return store.IncrView(ctx, ev.UserID, ev.ItemID)
	case KindSearch:
		return store.IncrSearchTerms(ctx, ev.UserID, ev.Terms)
	}
	return nil
}

// RedisTracker writes straight to the store.
type RedisTracker struct {
	store Store
}

func NewRedisTracker(store Store) *RedisTracker {
	return &RedisTracker{store: store}
}

func (t *RedisTracker) TrackView(ctx context.Context, userID, itemID uint64) error {
	return Apply(ctx, t.store, NewViewEvent(userID, itemID))
}

func (t *RedisTracker) TrackSearch(ctx context.Context, userID uint64, query string) error {
	terms := NormalizeQuery(query)
	if len(terms) == 0 {
		return ErrEmptyQuery
	}
	return Apply(ctx, t.store, NewSearchEvent(userID, terms))
}
