package launch

import (
	"context"
	stderrors "errors"
	"net/url"
	"time"

	"github.com/ahwlsqja/lti-tool-provider/internal/common/errors"
	"github.com/ahwlsqja/lti-tool-provider/internal/consumer"
	"github.com/ahwlsqja/lti-tool-provider/internal/metrics"
	"github.com/ahwlsqja/lti-tool-provider/pkg/lti"
	"github.com/ahwlsqja/lti-tool-provider/pkg/nonce"
	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"go.uber.org/zap"
)

// Service authenticates launch requests against the consumer registry and
// the nonce store of each consumer.
type Service struct {
	registry consumer.Registry
	nonces   nonce.Provider
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a new launch service
func NewService(registry consumer.Registry, nonces nonce.Provider, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		nonces:   nonces,
		metrics:  m,
		logger:   logger,
	}
}

// Validate authenticates a launch and returns its classified parameters.
// rawURL is the request URL without its query. Failures are *errors.AppError.
func (s *Service) Validate(ctx context.Context, method, rawURL string, params url.Values) (*lti.Launch, error) {
	start := time.Now()

	if _, err := oauth1.CheckMethod(method); err != nil {
		return nil, errors.MethodNotAllowed(method)
	}

	consumerKey := params.Get(oauth1.ParamConsumerKey)
	if consumerKey == "" {
		s.observe(metrics.OutcomeUnknownConsumer, start)
		return nil, errors.InvalidInput("Missing oauth_consumer_key")
	}

	if sm := params.Get(oauth1.ParamSignatureMethod); sm != "" && sm != oauth1.SignatureMethod {
		s.observe(metrics.OutcomeInvalidSignature, start)
		return nil, errors.Unauthorized(errors.CodeInvalidSignature, "Unsupported signature method").
			WithDetails(map[string]any{"signature_method": sm})
	}

	creds, err := s.registry.Lookup(ctx, consumerKey)
	if err != nil {
		if stderrors.Is(err, consumer.ErrConsumerNotFound) {
			s.logger.Warn("launch from unknown consumer", zap.String("consumer_key", consumerKey))
			s.observe(metrics.OutcomeUnknownConsumer, start)
			return nil, errors.UnknownConsumer(consumerKey)
		}
		s.logger.Error("failed to look up consumer", zap.String("consumer_key", consumerKey), zap.Error(err))
		s.observe(metrics.OutcomeStoreError, start)
		return nil, errors.DBError(err)
	}

	provider, err := lti.NewToolProvider(creds, params, s.nonces.ForConsumer(consumerKey), s.logger)
	if err != nil {
		s.observe(metrics.OutcomeConfiguration, start)
		return nil, errors.Configuration(err)
	}

	if err := provider.Validate(ctx, method, rawURL); err != nil {
		outcome := metrics.Outcome(err)
		s.observe(outcome, start)
		if outcome == metrics.OutcomeStoreError || outcome == metrics.OutcomeConfiguration {
			s.logger.Error("launch validation failed",
				zap.String("consumer_key", consumerKey),
				zap.Error(err),
			)
		} else {
			s.logger.Warn("launch rejected",
				zap.String("consumer_key", consumerKey),
				zap.String("outcome", outcome),
				zap.Error(err),
			)
		}
		return nil, errors.FromValidation(err)
	}

	s.observe(metrics.OutcomeAccepted, start)
	s.logger.Info("launch accepted",
		zap.String("consumer_key", consumerKey),
		zap.String("nonce", params.Get(oauth1.ParamNonce)),
	)
	return provider.Launch(), nil
}

func (s *Service) observe(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveValidation(outcome, time.Since(start))
	}
}
