package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore persists blocked attempts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the fraud_attempts table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fraud_attempts (
			id            VARCHAR(36) PRIMARY KEY,
			user_id       TEXT,
			typing_speed  DOUBLE PRECISION NOT NULL CHECK (typing_speed >= 0),
			time_on_page  DOUBLE PRECISION NOT NULL CHECK (time_on_page >= 0),
			payment_type  TEXT NOT NULL,
			reason        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_fraud_attempts_created_at
			ON fraud_attempts (created_at DESC);
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, attempt *Attempt) error {
	var userID sql.NullString
	if attempt.UserID != "" {
		userID = sql.NullString{String: attempt.UserID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fraud_attempts (id, user_id, typing_speed, time_on_page, payment_type, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		attempt.ID,
		userID,
		attempt.TypingSpeed,
		attempt.TimeOnPage,
		attempt.PaymentType,
		attempt.Reason,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record fraud attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, typing_speed, time_on_page, payment_type, reason, created_at
		FROM fraud_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list fraud attempts: %w", err)
	}
	return scanAttempts(rows)
}

func (s *PostgresStore) ListBefore(ctx context.Context, before time.Time, beforeID string, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, typing_speed, time_on_page, payment_type, reason, created_at
		FROM fraud_attempts
		WHERE (created_at, id) < ($1, $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, before, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list fraud attempts: %w", err)
	}
	return scanAttempts(rows)
}

func scanAttempts(rows *sql.Rows) ([]*Attempt, error) {
	defer func() { _ = rows.Close() }()

	var result []*Attempt
	for rows.Next() {
		var a Attempt
		var userID sql.NullString
		if err := rows.Scan(&a.ID, &userID, &a.TypingSpeed, &a.TimeOnPage, &a.PaymentType, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fraud attempt: %w", err)
		}
		if userID.Valid {
			a.UserID = userID.String
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fraud_attempts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count fraud attempts: %w", err)
	}
	return n, nil
}
