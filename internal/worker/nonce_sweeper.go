package worker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ahwlsqja/lti-tool-provider/internal/metrics"
	"github.com/ahwlsqja/lti-tool-provider/pkg/nonce"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 30 * time.Second

// NonceSweeper periodically deletes nonce rows that can no longer pass the
// timestamp window. Only the MySQL backend needs it; Redis keys carry a TTL
// and the memory store lives as long as the process.
type NonceSweeper struct {
	db      *sql.DB
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
	cron    *cron.Cron
}

// NewNonceSweeper schedules the sweep with a cron spec such as "*/5 * * * *"
// or "@every 5m". The job does not run until Start.
func NewNonceSweeper(db *sql.DB, schedule string, m *metrics.Metrics, logger *zap.Logger) (*NonceSweeper, error) {
	s := &NonceSweeper{
		db:      db,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in its own goroutine.
func (s *NonceSweeper) Start() {
	s.logger.Info("nonce sweeper started", zap.Duration("retention", nonce.RetentionTTL))
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to
// expire.
func (s *NonceSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("nonce sweeper stop timed out")
	}
}

// Sweep deletes every nonce older than now - RetentionTTL.
func (s *NonceSweeper) Sweep(ctx context.Context) (int64, error) {
	before := s.now().Add(-nonce.RetentionTTL)
	purged, err := nonce.Purge(ctx, s.db, before)
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.NoncesPurgedTotal.Add(float64(purged))
	}
	return purged, nil
}

func (s *NonceSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	purged, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("nonce sweep failed", zap.Error(err))
		return
	}
	s.logger.Debug("nonce sweep finished", zap.Int64("purged", purged))
}
