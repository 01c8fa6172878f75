package ranking

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rafipicu1/bartertalco-sub000/internal/observability"
)

// Feed serves pages to callers. Ranking is best effort: any error from the
// personalized path is logged and the page is served by recency instead.
type Feed struct {
	ranker *Ranker
	logger *slog.Logger
}

func NewFeed(r *Ranker, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{ranker: r, logger: logger.With("component", "feed")}
}

// Get returns one page of item ids. Only a failing recency read is returned
// as an error.
func (f *Feed) Get(ctx context.Context, q Query) ([]uint64, error) {
	ids, err := f.ranker.Rank(ctx, q)
	if err == nil {
		return ids, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	f.logger.Warn("personalized feed failed, serving recency",
		"user_id", q.UserID, "offering_item_id", q.OfferingItemID, "err", err)
	observability.IncFeedFallback("error")
	return f.ranker.Recency(ctx, q)
}
