package consumer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ahwlsqja/lti-tool-provider/pkg/lti"
)

// Schema creates the consumers table read by MySQLRegistry.
const Schema = `CREATE TABLE IF NOT EXISTS lti_consumers (
	consumer_key VARCHAR(255) NOT NULL PRIMARY KEY,
	secret       VARCHAR(255) NOT NULL,
	enabled      BOOLEAN      NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const lookupQuery = `SELECT secret FROM lti_consumers WHERE consumer_key = ? AND enabled = TRUE`

// MySQLRegistry looks consumers up in the lti_consumers table.
// Disabled rows behave as unknown consumers.
type MySQLRegistry struct {
	db *sql.DB
}

func NewMySQLRegistry(db *sql.DB) *MySQLRegistry {
	return &MySQLRegistry{db: db}
}

func (r *MySQLRegistry) Lookup(ctx context.Context, consumerKey string) (lti.Credentials, error) {
	var secret string
	err := r.db.QueryRowContext(ctx, lookupQuery, consumerKey).Scan(&secret)
	if errors.Is(err, sql.ErrNoRows) {
		return lti.Credentials{}, ErrConsumerNotFound
	}
	if err != nil {
		return lti.Credentials{}, fmt.Errorf("lookup consumer: %w", err)
	}
	return lti.Credentials{ConsumerKey: consumerKey, Secret: secret}, nil
}
