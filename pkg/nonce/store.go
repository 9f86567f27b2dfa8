package nonce

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
)

const (
	// Timeout is how far a request timestamp may drift from the server clock,
	// in either direction, before the request is rejected.
	Timeout = 300 * time.Second

	// RetentionTTL bounds how long a consumed nonce has to be remembered: a
	// timestamp accepted at now+Timeout stays inside the window until
	// now+2*Timeout.
	RetentionTTL = 2 * Timeout

	maxNonceLength = 255
)

// Store defines replay protection for one consumer key.
// Implementations can use memory, Redis, MySQL or other backends.
type Store interface {
	// CheckNonce validates the nonce and timestamp and, on success, marks the
	// nonce consumed before returning. The check and the mark are atomic with
	// respect to concurrent callers presenting the same nonce.
	// Returns oauth1.ErrInvalidNonce, oauth1.ErrInvalidTimestamp,
	// oauth1.ErrNonceReused or oauth1.ErrTimestampExpired on rejection.
	CheckNonce(ctx context.Context, nonce, timestamp string) error

	// ExpireNonce records the nonce as consumed without validating it.
	ExpireNonce(ctx context.Context, nonce string, timestamp int64) error
}

// Provider hands out the store scoped to a consumer key.
type Provider interface {
	ForConsumer(consumerKey string) Store
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(consumerKey string) Store

// ForConsumer calls f(consumerKey).
func (f ProviderFunc) ForConsumer(consumerKey string) Store {
	return f(consumerKey)
}

// Clock returns the current time. Stores take one so tests can pin it.
type Clock func() time.Time

// validateNonce rejects empty nonces and anything that is not a printable
// ASCII token.
func validateNonce(nonce string) error {
	if nonce == "" || len(nonce) > maxNonceLength {
		return oauth1.ErrInvalidNonce
	}
	for i := 0; i < len(nonce); i++ {
		if c := nonce[i]; c < 0x21 || c > 0x7e {
			return oauth1.ErrInvalidNonce
		}
	}
	return nil
}

// parseTimestamp accepts only a base-10 count of Unix seconds.
func parseTimestamp(timestamp string) (int64, error) {
	if timestamp == "" {
		return 0, oauth1.ErrInvalidTimestamp
	}
	for i := 0; i < len(timestamp); i++ {
		if c := timestamp[i]; c < '0' || c > '9' {
			return 0, oauth1.ErrInvalidTimestamp
		}
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", oauth1.ErrInvalidTimestamp, err)
	}
	return ts, nil
}

// checkWindow enforces |now - ts| <= Timeout.
func checkWindow(now time.Time, ts int64) error {
	drift := now.Unix() - ts
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(Timeout/time.Second) {
		return oauth1.ErrTimestampExpired
	}
	return nil
}
