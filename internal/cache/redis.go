package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds the connection settings for the invalidation bus.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// invalidation is the pub/sub message body.
type invalidation struct {
	Origin string   `json:"origin"`
	Tags   []string `json:"tags"`
}

// RedisBus broadcasts tag invalidations between instances over Redis
// pub/sub. Each instance applies peer messages to its local Store and
// ignores its own.
type RedisBus struct {
	client     *redis.Client
	channel    string
	instanceID string
	logger     zerolog.Logger
}

// NewRedisBus connects to Redis and pings it before returning.
func NewRedisBus(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info().Str("redis_address", cfg.Addr).Str("channel", cfg.Channel).Msg("cache invalidation bus connected")
	return newRedisBus(rdb, cfg.Channel, logger), nil
}

func newRedisBus(rdb *redis.Client, channel string, logger zerolog.Logger) *RedisBus {
	return &RedisBus{
		client:     rdb,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     logger.With().Str("component", "RedisBus").Logger(),
	}
}

// Publish sends tags to peers.
func (b *RedisBus) Publish(ctx context.Context, tags []string) error {
	payload, err := json.Marshal(invalidation{Origin: b.instanceID, Tags: tags})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Run subscribes to the channel and applies peer invalidations to store
// until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context, store *Store) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.apply(store, []byte(msg.Payload))
		}
	}
}

// apply decodes one message and invalidates locally unless it came from
// this instance. Malformed messages are logged and dropped.
func (b *RedisBus) apply(store *Store, payload []byte) bool {
	var m invalidation
	if err := json.Unmarshal(payload, &m); err != nil {
		b.logger.Warn().Err(err).Msg("drop malformed invalidation")
		return false
	}
	if m.Origin == b.instanceID || len(m.Tags) == 0 {
		return false
	}
	b.logger.Debug().Str("origin", m.Origin).Strs("tags", m.Tags).Msg("remote invalidation")
	store.InvalidateLocal(m.Tags...)
	return true
}

// Close closes the Redis client connection.
func (b *RedisBus) Close() error {
	if b.client != nil {
		b.logger.Info().Msg("Closing Redis client connection...")
		return b.client.Close()
	}
	return nil
}
