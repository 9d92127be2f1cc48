package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/satriawan/awardsearch/internal/models"
)

type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
	}
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, logger: slog.Default()}, nil
}

// Get treats an absent key as an ordinary miss. Any other read problem
// (connection loss, corrupt snapshot) also resolves to a miss, but is
// logged; a broken cache only costs fallback data, never the search.
func (s *RedisStore) Get(ctx context.Context, providerCode, fingerprint string) (*Snapshot, bool) {
	data, err := s.client.Get(ctx, buildKey(providerCode, fingerprint)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache read failed",
				slog.String("provider", providerCode),
				slog.String("error", err.Error()))
		}
		return nil, false
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("cache snapshot corrupt",
			slog.String("provider", providerCode),
			slog.String("error", err.Error()))
		return nil, false
	}

	return &snapshot, true
}

func (s *RedisStore) Put(ctx context.Context, providerCode, fingerprint string, offers []models.Offer) error {
	snapshot := Snapshot{
		ProviderCode: providerCode,
		Offers:       offers,
		CapturedAt:   time.Now(),
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	// Snapshots never expire; the newest write for a key wins.
	return s.client.Set(ctx, buildKey(providerCode, fingerprint), data, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func buildKey(providerCode, fingerprint string) string {
	return "award:" + providerCode + ":" + fingerprint
}
