package signals

import (
	"context"
	"log/slog"
	"time"

	"github.com/rafipicu1/bartertalco-sub000/internal/observability"
)

const (
	defaultAsyncTimeout  = 2 * time.Second
	defaultAsyncInFlight = 256
)

// Async makes a Tracker fire-and-forget. Calls return immediately; the write
// runs detached from the caller's cancellation with its own timeout. When too
// many writes are in flight new ones are dropped.
type Async struct {
	next    Tracker
	timeout time.Duration
	slots   chan struct{}
	logger  *slog.Logger
}

func NewAsync(next Tracker, timeout time.Duration, logger *slog.Logger) *Async {
	if timeout <= 0 {
		timeout = defaultAsyncTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Async{
		next:    next,
		timeout: timeout,
		slots:   make(chan struct{}, defaultAsyncInFlight),
		logger:  logger.With("component", "signals"),
	}
}

func (a *Async) TrackView(ctx context.Context, userID, itemID uint64) error {
	a.run(ctx, KindView, func(ctx context.Context) error {
		return a.next.TrackView(ctx, userID, itemID)
	})
	return nil
}

func (a *Async) TrackSearch(ctx context.Context, userID uint64, query string) error {
	if len(NormalizeQuery(query)) == 0 {
		return ErrEmptyQuery
	}
	a.run(ctx, KindSearch, func(ctx context.Context) error {
		return a.next.TrackSearch(ctx, userID, query)
	})
	return nil
}

func (a *Async) run(parent context.Context, kind Kind, fn func(context.Context) error) {
	select {
	case a.slots <- struct{}{}:
	default:
		observability.IncSignalDrop(string(kind))
		a.logger.Warn("signal dropped, too many in flight", "kind", kind)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), a.timeout)
	go func() {
		defer func() { <-a.slots }()
		defer cancel()
		if err := fn(ctx); err != nil {
			observability.IncSignalDrop(string(kind))
			a.logger.Warn("signal write failed", "kind", kind, "err", err)
		}
	}()
}

// Wait blocks until every in-flight write finished or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	for i := 0; i < cap(a.slots); i++ {
		select {
		case a.slots <- struct{}{}:
		case <-ctx.Done():
			for ; i > 0; i-- {
				<-a.slots
			}
			return ctx.Err()
		}
	}
	for i := 0; i < cap(a.slots); i++ {
		<-a.slots
	}
	return nil
}
