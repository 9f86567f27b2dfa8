package nonce

import (
	"context"
	"sync"
	"time"

	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"go.uber.org/zap"
)

// MemoryStore keeps consumed nonces in process memory for one consumer key.
//
// Entries are never evicted, so the map grows with traffic for the lifetime
// of the process. Use RedisStore or MySQLStore when that matters.
type MemoryStore struct {
	consumerKey string
	now         Clock
	logger      *zap.Logger

	mu     sync.Mutex
	nonces map[string]int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store scoped to consumerKey.
func NewMemoryStore(consumerKey string, logger *zap.Logger) *MemoryStore {
	return NewMemoryStoreWithClock(consumerKey, time.Now, logger)
}

// NewMemoryStoreWithClock creates an in-memory store with a custom clock.
func NewMemoryStoreWithClock(consumerKey string, clock Clock, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		consumerKey: consumerKey,
		now:         clock,
		logger:      logger,
		nonces:      make(map[string]int64),
	}
}

// CheckNonce validates the nonce and marks it consumed.
func (s *MemoryStore) CheckNonce(_ context.Context, nonce, timestamp string) error {
	if err := validateNonce(nonce); err != nil {
		return err
	}
	ts, err := parseTimestamp(timestamp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, used := s.nonces[nonce]; used {
		s.logger.Warn("nonce already used",
			zap.String("consumer_key", s.consumerKey),
			zap.String("nonce", nonce),
		)
		return oauth1.ErrNonceReused
	}
	if err := checkWindow(s.now(), ts); err != nil {
		s.logger.Warn("nonce timestamp outside window",
			zap.String("consumer_key", s.consumerKey),
			zap.Int64("timestamp", ts),
		)
		return err
	}

	s.nonces[nonce] = ts
	return nil
}

// ExpireNonce takes the nonce out of circulation.
func (s *MemoryStore) ExpireNonce(_ context.Context, nonce string, timestamp int64) error {
	s.mu.Lock()
	s.nonces[nonce] = timestamp
	s.mu.Unlock()

	s.logger.Debug("nonce expired",
		zap.String("consumer_key", s.consumerKey),
		zap.String("nonce", nonce),
	)
	return nil
}

// Len reports how many nonces are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nonces)
}

// MemoryProvider keeps one MemoryStore per consumer key so replay protection
// spans requests within the process.
type MemoryProvider struct {
	logger *zap.Logger
	clock  Clock

	mu     sync.Mutex
	stores map[string]*MemoryStore
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider creates a provider of in-memory stores.
func NewMemoryProvider(logger *zap.Logger) *MemoryProvider {
	return &MemoryProvider{
		logger: logger,
		clock:  time.Now,
		stores: make(map[string]*MemoryStore),
	}
}

// ForConsumer returns the store for consumerKey, creating it on first use.
func (p *MemoryProvider) ForConsumer(consumerKey string) Store {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stores[consumerKey]
	if !ok {
		s = NewMemoryStoreWithClock(consumerKey, p.clock, p.logger)
		p.stores[consumerKey] = s
	}
	return s
}
