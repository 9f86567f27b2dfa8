package lti

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ahwlsqja/lti-tool-provider/pkg/nonce"
	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"go.uber.org/zap"
)

// Credentials identify a tool consumer and hold its shared secret.
type Credentials struct {
	ConsumerKey string
	Secret      string
}

// Validate reports a configuration error when either half is missing.
func (c Credentials) Validate() error {
	if c.ConsumerKey == "" {
		return fmt.Errorf("%w: no consumer key", oauth1.ErrConfiguration)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: no consumer secret", oauth1.ErrConfiguration)
	}
	return nil
}

// ToolProvider authenticates one launch request: it holds the captured
// parameters, the consumer's credentials and the nonce store for that
// consumer.
type ToolProvider struct {
	creds      Credentials
	params     url.Values
	nonceStore nonce.Store
	logger     *zap.Logger
}

// NewToolProvider captures params for validation. A nil store falls back to a
// fresh MemoryStore, which only guards against replays within this provider.
func NewToolProvider(creds Credentials, params url.Values, store nonce.Store, logger *zap.Logger) (*ToolProvider, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = nonce.NewMemoryStore(creds.ConsumerKey, logger)
	}

	captured := make(url.Values, len(params))
	for k, vs := range params {
		captured[k] = append([]string(nil), vs...)
	}

	return &ToolProvider{
		creds:      creds,
		params:     captured,
		nonceStore: store,
		logger:     logger,
	}, nil
}

// Params returns a copy of the captured parameters.
func (p *ToolProvider) Params() url.Values {
	out := make(url.Values, len(p.params))
	for k, vs := range p.params {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Signature computes the signature the consumer should have sent.
func (p *ToolProvider) Signature(method, rawURL string) (string, error) {
	return oauth1.Sign(method, rawURL, p.params, p.creds.Secret)
}

// BaseString exposes the string that gets signed, for diagnostics.
func (p *ToolProvider) BaseString(method, rawURL string) (string, error) {
	return oauth1.BaseString(method, rawURL, p.params)
}

// Validate checks the signature and then the nonce. A request whose signature
// does not match never reaches the nonce store.
func (p *ToolProvider) Validate(ctx context.Context, method, rawURL string) error {
	expected, err := p.Signature(method, rawURL)
	if err != nil {
		return err
	}

	if !oauth1.Equal(p.params.Get(oauth1.ParamSignature), expected) {
		p.logger.Warn("launch signature mismatch",
			zap.String("consumer_key", p.creds.ConsumerKey),
			zap.String("method", method),
			zap.String("url", rawURL),
		)
		return oauth1.ErrInvalidSignature
	}

	return p.nonceStore.CheckNonce(ctx, p.params.Get(oauth1.ParamNonce), p.params.Get(oauth1.ParamTimestamp))
}

// Launch classifies the captured parameters for application use.
func (p *ToolProvider) Launch() *Launch {
	return NewLaunch(p.params)
}
