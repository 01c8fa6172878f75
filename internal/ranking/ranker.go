package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/rafipicu1/bartertalco-sub000/internal/cache"
	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/repository"
)

const (
	DefaultLimit         = 30
	DefaultMaxLimit      = 50
	DefaultCandidatePool = 500
	maxSearchTerms       = 50
)

// Query is one feed page request. UserID 0 is an anonymous caller.
// OfferingItemID scopes exclusion of already decided candidates.
type Query struct {
	UserID         uint64
	OfferingItemID uint64
	Category       string
	Limit          int
	Offset         int
}

// SignalSource reads the per-user counters written by view/search tracking.
type SignalSource interface {
	ViewCounts(ctx context.Context, userID uint64) (map[uint64]float64, error)
	SearchTerms(ctx context.Context, userID uint64, limit int) ([]cache.TermWeight, error)
}

type Options struct {
	Weights       Weights
	MaxLimit      int
	CandidatePool int
	TextCacheSize int
	Logger        *slog.Logger
}

// Ranker orders eligible items for a user. It only reads.
type Ranker struct {
	items    *repository.ItemRepository
	wishlist *repository.WishlistRepository
	users    *repository.UserRepository
	signals  SignalSource

	weights  Weights
	maxLimit int
	pool     int
	text     *textCache
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewRanker wires a ranker. signals may be nil, in which case only DB-backed
// signals (wishlist, location) are used.
func NewRanker(
	items *repository.ItemRepository,
	wishlist *repository.WishlistRepository,
	users *repository.UserRepository,
	signals SignalSource,
	opts Options,
) *Ranker {
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultMaxLimit
	}
	if opts.CandidatePool <= 0 {
		opts.CandidatePool = DefaultCandidatePool
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Weights != (Weights{}) {
		if err := opts.Weights.Validate(); err != nil {
			opts.Logger.Warn("invalid ranking weights, patching with defaults", "err", err)
		}
	}
	opts.Weights = opts.Weights.orDefaults()
	return &Ranker{
		items:    items,
		wishlist: wishlist,
		users:    users,
		signals:  signals,
		weights:  opts.Weights,
		maxLimit: opts.MaxLimit,
		pool:     opts.CandidatePool,
		text:     newTextCache(opts.TextCacheSize),
		logger:   opts.Logger.With("component", "ranking"),
		tracer:   otel.Tracer("barter/ranking"),
	}
}

// normalize clamps the limit to [1, maxLimit] and the offset to >= 0.
func (r *Ranker) normalize(q Query) Query {
	if q.Limit <= 0 {
		q.Limit = min(DefaultLimit, r.maxLimit)
	}
	if q.Limit > r.maxLimit {
		q.Limit = r.maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

func (r *Ranker) filter(q Query) repository.ItemFilter {
	f := repository.ItemFilter{
		ExcludeOwnerID: q.UserID,
		Category:       q.Category,
	}
	if q.UserID != 0 && q.OfferingItemID != 0 {
		f.DecidedBy = &repository.DecisionScope{SwiperID: q.UserID, OfferedItemID: q.OfferingItemID}
	}
	return f
}

// Recency returns eligible items newest first (created_at DESC, id DESC).
// It applies the same exclusions as the personalized path.
func (r *Ranker) Recency(ctx context.Context, q Query) ([]uint64, error) {
	q = r.normalize(q)
	f := r.filter(q)
	f.Limit = q.Limit
	f.Offset = q.Offset
	items, err := r.items.GetActiveItems(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("recency feed: %w", err)
	}
	return ids(items), nil
}

// signalSet is everything known about a user's taste.
type signalSet struct {
	views       map[uint64]float64
	terms       []cache.TermWeight
	affinity    map[string]float64
	lat, lon    float64
	hasLocation bool
}

func (s signalSet) empty() bool {
	return len(s.views) == 0 && len(s.terms) == 0 && len(s.affinity) == 0 && !s.hasLocation
}

// Rank returns item ids for q ordered by relevance.
//
// Behavior:
//   - Anonymous callers and users without any signal get Recency.
//   - Otherwise the newest CandidatePool eligible items are scored and sorted
//     by score DESC, created_at DESC, id DESC, then paged by Offset/Limit.
//   - A personalized page with no candidates falls back to Recency.
//   - The ranked pool and the recency tail form one sequence: a page that
//     runs past the end of a full pool is topped up from Recency, so
//     advancing Offset by Limit never skips items.
func (r *Ranker) Rank(ctx context.Context, q Query) ([]uint64, error) {
	q = r.normalize(q)
	ctx, span := r.tracer.Start(ctx, "ranking.Rank", trace.WithAttributes(
		attribute.Int64("user_id", int64(q.UserID)),
		attribute.Int64("offering_item_id", int64(q.OfferingItemID)),
		attribute.Int("limit", q.Limit),
		attribute.Int("offset", q.Offset),
	))
	defer span.End()

	if q.UserID == 0 {
		span.SetAttributes(attribute.String("mode", "anonymous"))
		return r.Recency(ctx, q)
	}

	sig, err := r.loadSignals(ctx, q.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if sig.empty() {
		span.SetAttributes(attribute.String("mode", "no_signal"))
		return r.Recency(ctx, q)
	}

	f := r.filter(q)
	f.Limit = r.pool
	candidates, err := r.items.GetActiveItems(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	ranked := r.score(candidates, sig)
	if q.Offset >= len(ranked) {
		span.SetAttributes(attribute.String("mode", "past_pool"))
		return r.Recency(ctx, q)
	}
	end := min(q.Offset+q.Limit, len(ranked))
	span.SetAttributes(attribute.String("mode", "personalized"), attribute.Int("candidates", len(ranked)))
	page := ids(ranked[q.Offset:end])

	// only a full pool can have eligible items beyond it
	if short := q.Limit - len(page); short > 0 && len(candidates) >= r.pool {
		tail := q
		tail.Offset, tail.Limit = len(ranked), short
		rest, err := r.Recency(ctx, tail)
		if err != nil {
			r.logger.Warn("recency tail failed", "user_id", q.UserID, "err", err)
			return page, nil
		}
		page = append(page, rest...)
	}
	return page, nil
}

// loadSignals fetches every signal concurrently. Redis is optional, so a
// missing SignalSource simply contributes nothing.
func (r *Ranker) loadSignals(ctx context.Context, userID uint64) (signalSet, error) {
	var (
		sig       signalSet
		wishCats  map[string]float64
		viewItems map[uint64]db.Item
	)
	g, gctx := errgroup.WithContext(ctx)

	if r.signals != nil {
		g.Go(func() error {
			views, err := r.signals.ViewCounts(gctx, userID)
			if err != nil {
				return fmt.Errorf("view counts: %w", err)
			}
			sig.views = views
			if len(views) == 0 {
				return nil
			}
			keys := make([]uint64, 0, len(views))
			for id := range views {
				keys = append(keys, id)
			}
			viewItems, err = r.items.GetItems(gctx, keys)
			if err != nil {
				return fmt.Errorf("viewed items: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			terms, err := r.signals.SearchTerms(gctx, userID, maxSearchTerms)
			if err != nil {
				return fmt.Errorf("search terms: %w", err)
			}
			sig.terms = terms
			return nil
		})
	}
	g.Go(func() error {
		cats, err := r.wishlist.WishlistCategories(gctx, userID)
		if err != nil {
			return fmt.Errorf("wishlist categories: %w", err)
		}
		wishCats = cats
		return nil
	})
	g.Go(func() error {
		u, err := r.users.GetUser(gctx, userID)
		if err != nil {
			// unknown user: no location signal
			r.logger.Debug("user lookup for ranking failed", "user_id", userID, "err", err)
			return nil
		}
		if u.Latitude != nil && u.Longitude != nil {
			sig.lat, sig.lon, sig.hasLocation = *u.Latitude, *u.Longitude, true
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return signalSet{}, err
	}

	sig.affinity = make(map[string]float64)
	for id, n := range sig.views {
		if it, ok := viewItems[id]; ok {
			sig.affinity[it.Category] += n
		}
	}
	for cat, n := range wishCats {
		sig.affinity[cat] += n * r.weights.WishlistBoost
	}
	if len(sig.affinity) == 0 {
		sig.affinity = nil
	}
	return sig, nil
}

type scored struct {
	item  db.Item
	score float64
}

func (r *Ranker) score(items []db.Item, sig signalSet) []db.Item {
	w := r.weights
	out := make([]scored, len(items))
	for i, it := range items {
		s := 0.0
		if n := sig.views[it.ID]; n > 0 {
			s += w.View * math.Log1p(n)
		}
		if a := sig.affinity[it.Category]; a > 0 {
			s += w.Category * math.Log1p(a)
		}
		if len(sig.terms) > 0 && w.Search > 0 {
			s += w.Search * searchOverlap(sig.terms, r.text.words(it))
		}
		if sig.hasLocation && it.HasLocation() && w.Proximity > 0 {
			km := haversineKm(sig.lat, sig.lon, *it.Latitude, *it.Longitude)
			s += w.Proximity * proximity(km, w.ProximityScaleKm)
		}
		out[i] = scored{item: it, score: s}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.item.CreatedAt.Equal(b.item.CreatedAt) {
			return a.item.CreatedAt.After(b.item.CreatedAt)
		}
		return a.item.ID > b.item.ID
	})

	res := make([]db.Item, len(out))
	for i := range out {
		res[i] = out[i].item
	}
	return res
}

func ids(items []db.Item) []uint64 {
	out := make([]uint64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
