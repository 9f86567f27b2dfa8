package consumer

import (
	"context"
	"errors"

	"github.com/ahwlsqja/lti-tool-provider/pkg/lti"
)

// ErrConsumerNotFound is returned when no secret is registered for a key.
var ErrConsumerNotFound = errors.New("consumer not found")

// Registry resolves an oauth_consumer_key to the credentials shared with
// that tool consumer.
type Registry interface {
	Lookup(ctx context.Context, consumerKey string) (lti.Credentials, error)
}
