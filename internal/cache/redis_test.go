package cache

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStoreGetLogsReadFailures(t *testing.T) {
	var buf bytes.Buffer
	store := &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}),
		logger: slog.New(slog.NewTextHandler(&buf, nil)),
	}
	defer store.Close()

	snapshot, ok := store.Get(context.Background(), "AA", "fp-1")

	assert.Nil(t, snapshot)
	assert.False(t, ok, "a broken cache reads as a miss")
	assert.Contains(t, buf.String(), "cache read failed", "read errors are logged, unlike ordinary misses")
}
