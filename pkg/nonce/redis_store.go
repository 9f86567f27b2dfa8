package nonce

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// keyPrefix is the Redis key prefix for nonces
	keyPrefix = "lti:nonce"
)

// RedisStore implements Store using Redis, so replay protection is shared by
// every instance of the service.
type RedisStore struct {
	client      redis.Cmdable
	consumerKey string
	ttl         time.Duration
	now         Clock
	logger      *zap.Logger
}

// Compile-time interface compliance check
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store scoped to consumerKey.
func NewRedisStore(client redis.Cmdable, consumerKey string, logger *zap.Logger) *RedisStore {
	return NewRedisStoreWithTTL(client, consumerKey, RetentionTTL, logger)
}

// NewRedisStoreWithTTL creates a Redis-backed store with a custom retention TTL.
// A ttl shorter than RetentionTTL lets a nonce be replayed while its
// timestamp is still inside the window.
func NewRedisStoreWithTTL(client redis.Cmdable, consumerKey string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:      client,
		consumerKey: consumerKey,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger,
	}
}

// buildKey creates a Redis key from consumer key and nonce
// Format: lti:nonce:{ENC(consumer_key)}:{nonce}
// The encoded consumer key contains no ':', so the first ':' after the prefix
// always ends it.
func buildKey(consumerKey, nonce string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, oauth1.Encode(consumerKey), nonce)
}

// CheckNonce validates the nonce and consumes it with SETNX.
func (s *RedisStore) CheckNonce(ctx context.Context, nonce, timestamp string) error {
	if err := validateNonce(nonce); err != nil {
		return err
	}
	ts, err := parseTimestamp(timestamp)
	if err != nil {
		return err
	}
	if err := checkWindow(s.now(), ts); err != nil {
		s.logger.Warn("nonce timestamp outside window",
			zap.String("consumer_key", s.consumerKey),
			zap.Int64("timestamp", ts),
		)
		return err
	}

	key := buildKey(s.consumerKey, nonce)

	// SETNX with TTL - only succeeds if key doesn't exist
	ok, err := s.client.SetNX(ctx, key, strconv.FormatInt(ts, 10), s.ttl).Result()
	if err != nil {
		s.logger.Error("failed to consume nonce",
			zap.String("consumer_key", s.consumerKey),
			zap.String("nonce", nonce),
			zap.Error(err),
		)
		return fmt.Errorf("failed to consume nonce: %w", err)
	}

	if !ok {
		s.logger.Warn("nonce already used",
			zap.String("consumer_key", s.consumerKey),
			zap.String("nonce", nonce),
		)
		return oauth1.ErrNonceReused
	}

	s.logger.Debug("nonce consumed",
		zap.String("consumer_key", s.consumerKey),
		zap.String("nonce", nonce),
	)
	return nil
}

// ExpireNonce marks the nonce as consumed regardless of its current state.
func (s *RedisStore) ExpireNonce(ctx context.Context, nonce string, timestamp int64) error {
	key := buildKey(s.consumerKey, nonce)

	err := s.client.Set(ctx, key, strconv.FormatInt(timestamp, 10), s.ttl).Err()
	if err != nil {
		s.logger.Error("failed to expire nonce",
			zap.String("consumer_key", s.consumerKey),
			zap.String("nonce", nonce),
			zap.Error(err),
		)
		return fmt.Errorf("failed to expire nonce: %w", err)
	}

	s.logger.Debug("nonce expired",
		zap.String("consumer_key", s.consumerKey),
		zap.String("nonce", nonce),
	)
	return nil
}

// NewRedisProvider returns a Provider of RedisStores sharing one client.
func NewRedisProvider(client redis.Cmdable, logger *zap.Logger) Provider {
	return ProviderFunc(func(consumerKey string) Store {
		return NewRedisStore(client, consumerKey, logger)
	})
}
