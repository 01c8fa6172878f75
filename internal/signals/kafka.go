package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaTracker.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageReader is the subset of *kafka.Reader used by Consume.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		Topic:             topic,
		GroupID:           group,
		MinBytes:          1,
		MaxBytes:          10e6,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
		CommitInterval:    time.Second,
		StartOffset:       kafka.LastOffset,
	})
}

// KafkaTracker publishes signal events; cmd/signal-worker folds them into
// the store. Messages are keyed by user so one user's events stay ordered.
type KafkaTracker struct {
	writer MessageWriter
}

func NewKafkaTracker(w MessageWriter) *KafkaTracker {
	return &KafkaTracker{writer: w}
}

func (t *KafkaTracker) TrackView(ctx context.Context, userID, itemID uint64) error {
	return t.publish(ctx, NewViewEvent(userID, itemID))
}

func (t *KafkaTracker) TrackSearch(ctx context.Context, userID uint64, query string) error {
	terms := NormalizeQuery(query)
	if len(terms) == 0 {
		return ErrEmptyQuery
	}
	return t.publish(ctx, NewSearchEvent(userID, terms))
}

func (t *KafkaTracker) publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Kind, err)
	}
	return t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(ev.UserID, 10)),
		Value: payload,
	})
}

// Consume reads events until ctx is done and applies them to store.
// Bad payloads and store errors are logged and skipped.
func Consume(ctx context.Context, reader MessageReader, store Store, logger *slog.Logger) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("signal read failed", "err", err)
			continue
		}
		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			logger.Warn("signal payload rejected", "offset", msg.Offset, "err", err)
			continue
		}
		if err := Apply(ctx, store, ev); err != nil {
			logger.Warn("signal apply failed", "event_id", ev.ID, "kind", ev.Kind, "err", err)
		}
	}
}

// RunWorkers starts n consumers, each with its own reader, and blocks until
// ctx is done and every consumer has returned.
func RunWorkers(ctx context.Context, n int, newReader func() MessageReader, store Store, logger *slog.Logger) {
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id int) {
			defer wg.Done()
			reader := newReader()
			defer reader.Close()
			Consume(ctx, reader, store, logger.With("worker", id))
		}(i)
	}
	<-ctx.Done()
	wg.Wait()
}
