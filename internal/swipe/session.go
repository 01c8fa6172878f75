// Package swipe is the client-side deck: it pulls ranked batches for one
// (user, offering item) context and submits decisions in order.
package swipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	svcErr "github.com/rafipicu1/bartertalco-sub000/internal/errors"
)

// State of a session.
type State int

const (
	Loading State = iota
	Ready
	Exhausted
	// NoOfferingItems: the user has nothing to offer, so no session can run.
	NoOfferingItems
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Exhausted:
		return "exhausted"
	case NoOfferingItems:
		return "no_offering_items"
	default:
		return "loading"
	}
}

const (
	DefaultBatchSize = 30
	MaxBatchSize     = 50
	viewTrackTimeout = 2 * time.Second
)

var (
	// ErrBusy: a decision is still in flight; the control must stay disabled.
	ErrBusy = errors.New("a decision is already in flight")
	// ErrNotReady: there is no card to decide on.
	ErrNotReady = errors.New("session has no current card")
)

// Outcome of one decision.
type Outcome struct {
	Card      Card
	Direction db.Direction
	Duplicate bool
	Match     *MatchInfo
}

// Matched reports whether this decision created a match ("it's a match").
func (o Outcome) Matched() bool {
	return o.Match != nil && o.Match.New
}

type Options struct {
	BatchSize int
	Logger    *slog.Logger
}

// Session is safe for concurrent use, but decisions are strictly sequential:
// a second Decide while one is in flight fails with ErrBusy.
type Session struct {
	backend Backend
	userID  uint64
	batch   int
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	offering Card
	deck     []Card
	cursor   int
	decided  map[uint64]struct{}
	busy     bool
	gen      uint64
}

func NewSession(backend Backend, userID uint64, opts Options) *Session {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if batch > MaxBatchSize {
		batch = MaxBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		backend: backend,
		userID:  userID,
		batch:   batch,
		logger:  logger.With("component", "swipe", "user_id", userID),
		state:   Loading,
		decided: map[uint64]struct{}{},
	}
}

// Start opens the session on offeringItemID, or on the user's first active
// item when it is 0. A user without items ends in NoOfferingItems and gets
// ErrNoOfferingItems. If the offering item cannot be resolved the session
// is left as it was.
func (s *Session) Start(ctx context.Context, offeringItemID uint64) error {
	own, err := s.backend.ListOfferingItems(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("list offering items: %w", err)
	}
	var active []Card
	for _, c := range own {
		if c.IsActive && c.OwnerID == s.userID {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		s.mu.Lock()
		s.gen++
		s.state = NoOfferingItems
		s.offering = Card{}
		s.deck, s.cursor = nil, 0
		s.mu.Unlock()
		return svcErr.ErrNoOfferingItems
	}

	offering := active[0]
	if offeringItemID != 0 {
		found := false
		for _, c := range active {
			if c.ID == offeringItemID {
				offering, found = c, true
				break
			}
		}
		if !found {
			return fmt.Errorf("offering item %d: %w", offeringItemID, svcErr.ErrNotItemOwner)
		}
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = Loading
	s.offering = offering
	s.deck, s.cursor = nil, 0
	s.decided = map[uint64]struct{}{}
	s.mu.Unlock()

	return s.load(ctx, gen)
}

// SelectOffering switches to another of the user's items. Decisions are
// tracked per offering item, so the deck restarts from a fresh batch.
func (s *Session) SelectOffering(ctx context.Context, itemID uint64) error {
	return s.Start(ctx, itemID)
}

// Refill fetches a fresh batch for the current offering item once the deck
// is exhausted. Everything decided in this context stays excluded.
func (s *Session) Refill(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Exhausted {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("refill in state %s: %w", st, ErrNotReady)
	}
	s.gen++
	gen := s.gen
	s.state = Loading
	s.mu.Unlock()
	return s.load(ctx, gen)
}

func (s *Session) load(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	offeringID := s.offering.ID
	s.mu.Unlock()

	cards, err := s.backend.Feed(ctx, FeedRequest{UserID: s.userID, OfferingItemID: offeringID, Limit: s.batch})
	if err != nil {
		s.mu.Lock()
		if s.gen == gen {
			s.state = Exhausted
		}
		s.mu.Unlock()
		return fmt.Errorf("load feed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	seen := make(map[uint64]struct{}, len(cards))
	deck := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.OwnerID == s.userID || !c.IsActive || c.ID == offeringID {
			continue
		}
		if _, done := s.decided[c.ID]; done {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		deck = append(deck, c)
		if len(deck) == s.batch {
			break
		}
	}
	s.deck, s.cursor = deck, 0
	if len(deck) == 0 {
		s.state = Exhausted
		return nil
	}
	s.state = Ready
	s.trackView(ctx, deck[0].ID)
	return nil
}

// Decide submits direction for the current card.
//
// Behavior:
//   - ErrBusy while another decision is in flight; ErrNotReady without a card.
//   - A backend error leaves the cursor on the same card so it can be retried.
//   - A duplicate is absorbed and advances like a fresh decision.
//   - Reaching the end of the deck moves the session to Exhausted.
func (s *Session) Decide(ctx context.Context, direction db.Direction) (Outcome, error) {
	if !direction.Valid() {
		return Outcome{}, svcErr.ErrInvalidDirection
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	if s.state != Ready || s.cursor >= len(s.deck) {
		s.mu.Unlock()
		return Outcome{}, ErrNotReady
	}
	card := s.deck[s.cursor]
	offeringID := s.offering.ID
	gen := s.gen
	s.busy = true
	s.mu.Unlock()

	reply, err := s.backend.Swipe(ctx, SwipeRequest{
		UserID:          s.userID,
		OfferedItemID:   offeringID,
		CandidateItemID: card.ID,
		Direction:       direction,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.logger.Warn("swipe failed, card kept", "item_id", card.ID, "direction", direction, "err", err)
		return Outcome{}, err
	}

	out := Outcome{Card: card, Direction: direction, Duplicate: reply.Duplicate, Match: reply.Match}
	if s.gen != gen {
		// the session moved on while this was in flight; the write stands
		return out, nil
	}
	s.decided[card.ID] = struct{}{}
	s.cursor++
	if s.cursor >= len(s.deck) {
		s.state = Exhausted
	} else {
		s.trackView(ctx, s.deck[s.cursor].ID)
	}
	return out, nil
}

// trackView reports the card now on screen. Fire-and-forget.
func (s *Session) trackView(ctx context.Context, itemID uint64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), viewTrackTimeout)
	go func() {
		defer cancel()
		if err := s.backend.TrackView(ctx, s.userID, itemID); err != nil {
			s.logger.Debug("view tracking failed", "item_id", itemID, "err", err)
		}
	}()
}

// Current returns the card on screen.
func (s *Session) Current() (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready || s.cursor >= len(s.deck) {
		return Card{}, false
	}
	return s.deck[s.cursor], true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Offering returns the selected offering item.
func (s *Session) Offering() (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offering, s.offering.ID != 0
}

// Remaining counts undecided cards left in the deck.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deck) - s.cursor
}
