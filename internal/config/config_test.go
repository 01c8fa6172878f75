package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("FEED_BATCH_SIZE", "")

	cfg := New()

	assert.Equal(t, "50051", cfg.GRPC.Port)
	assert.Equal(t, 30, cfg.Feed.BatchSize)
	assert.Equal(t, 50, cfg.Feed.MaxBatch)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Contains(t, cfg.DB.DSN, "parseTime=true")
	assert.Equal(t, 30*24*time.Hour, cfg.Redis.SignalTTL)
}

func TestNew_BatchSizeClampedToMax(t *testing.T) {
	t.Setenv("FEED_MAX_BATCH", "40")
	t.Setenv("FEED_BATCH_SIZE", "120")

	cfg := New()

	assert.Equal(t, 40, cfg.Feed.BatchSize)
}

func TestNew_KafkaBrokersSplit(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")

	cfg := New()

	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, isTruthy(v), v)
	}
	assert.False(t, isTruthy("nope"))
}
