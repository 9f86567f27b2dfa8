package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahwlsqja/lti-tool-provider/internal/metrics"
	"github.com/ahwlsqja/lti-tool-provider/pkg/nonce"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNonceSweeper_Sweep(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := metrics.New()
	s, err := NewNonceSweeper(db, "@every 5m", m, zap.NewNop())
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	mock.ExpectExec("DELETE FROM lti_nonces").
		WithArgs(now.Add(-nonce.RetentionTTL).Unix()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	purged, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), purged)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.NoncesPurgedTotal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNonceSweeper_SweepError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := metrics.New()
	s, err := NewNonceSweeper(db, "*/5 * * * *", m, zap.NewNop())
	require.NoError(t, err)

	boom := errors.New("lock wait timeout")
	mock.ExpectExec("DELETE FROM lti_nonces").WillReturnError(boom)

	_, err = s.Sweep(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NoncesPurgedTotal))
}

func TestNewNonceSweeper_InvalidSchedule(t *testing.T) {
	_, err := NewNonceSweeper(nil, "every five minutes", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestNonceSweeper_StartStop(t *testing.T) {
	s, err := NewNonceSweeper(nil, "@every 1h", nil, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
