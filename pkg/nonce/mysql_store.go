package nonce

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const (
	mysqlErrDuplicateEntry = 1062
)

// Schema creates the table MySQLStore writes to.
const Schema = `CREATE TABLE IF NOT EXISTS lti_nonces (
	consumer_key VARCHAR(255) NOT NULL,
	nonce        VARCHAR(255) NOT NULL,
	timestamp    BIGINT       NOT NULL,
	created_at   DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	PRIMARY KEY (consumer_key, nonce),
	KEY idx_lti_nonces_timestamp (timestamp)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`

const (
	insertNonceQuery = `INSERT INTO lti_nonces (consumer_key, nonce, timestamp) VALUES (?, ?, ?)`
	upsertNonceQuery = `INSERT INTO lti_nonces (consumer_key, nonce, timestamp) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE timestamp = VALUES(timestamp)`
	purgeNoncesQuery = `DELETE FROM lti_nonces WHERE timestamp < ?`
)

// MySQLStore implements Store on a MySQL table. The primary key on
// (consumer_key, nonce) makes the insert the atomic check-and-mark.
type MySQLStore struct {
	db          *sql.DB
	consumerKey string
	now         Clock
	logger      *zap.Logger
}

var _ Store = (*MySQLStore)(nil)

// NewMySQLStore creates a MySQL-backed store scoped to consumerKey.
func NewMySQLStore(db *sql.DB, consumerKey string, logger *zap.Logger) *MySQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MySQLStore{
		db:          db,
		consumerKey: consumerKey,
		now:         time.Now,
		logger:      logger,
	}
}

// EnsureSchema creates the nonce table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create lti_nonces: %w", err)
	}
	return nil
}

// CheckNonce validates the nonce and inserts it; a duplicate key means reuse.
func (s *MySQLStore) CheckNonce(ctx context.Context, nonce, timestamp string) error {
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

	if _, err := s.db.ExecContext(ctx, insertNonceQuery, s.consumerKey, nonce, ts); err != nil {
		if isDuplicateKeyError(err) {
			s.logger.Warn("nonce already used",
				zap.String("consumer_key", s.consumerKey),
				zap.String("nonce", nonce),
			)
			return oauth1.ErrNonceReused
		}
		s.logger.Error("failed to consume nonce",
			zap.String("consumer_key", s.consumerKey),
			zap.Error(err),
		)
		return fmt.Errorf("failed to consume nonce: %w", err)
	}
	return nil
}

// ExpireNonce records the nonce as consumed, overwriting any earlier row.
func (s *MySQLStore) ExpireNonce(ctx context.Context, nonce string, timestamp int64) error {
	if _, err := s.db.ExecContext(ctx, upsertNonceQuery, s.consumerKey, nonce, timestamp); err != nil {
		s.logger.Error("failed to expire nonce",
			zap.String("consumer_key", s.consumerKey),
			zap.Error(err),
		)
		return fmt.Errorf("failed to expire nonce: %w", err)
	}
	return nil
}

// Purge deletes nonces, for every consumer key, whose timestamp is older than
// before. Rows older than now-RetentionTTL can no longer pass the window check.
func Purge(ctx context.Context, db *sql.DB, before time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, purgeNoncesQuery, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge nonces: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged nonces: %w", err)
	}
	return affected, nil
}

// NewMySQLProvider returns a Provider of MySQLStores sharing one pool.
func NewMySQLProvider(db *sql.DB, logger *zap.Logger) Provider {
	return ProviderFunc(func(consumerKey string) Store {
		return NewMySQLStore(db, consumerKey, logger)
	})
}

// isDuplicateKeyError checks if the error is a MySQL duplicate key error
func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if stderrors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return false
}
