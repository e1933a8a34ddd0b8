package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quizo-service/internal/domain"
)

const uniqueViolation = "23505"

// AttemptStore is the append-only attempt ledger. Appends for one email are
// serialized with a transaction-scoped advisory lock.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) CumulativePoints(ctx context.Context, email string) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(earned), 0) FROM attempts WHERE email=$1`, email).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum attempts: %w", err)
	}
	return total, nil
}

func (s *AttemptStore) AppendAttempt(ctx context.Context, rec domain.AttemptRecord, expectedPrior int64) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, rec.Email); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	var current int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(earned), 0) FROM attempts WHERE email=$1`, rec.Email).Scan(&current); err != nil {
		return fmt.Errorf("sum attempts: %w", err)
	}
	if current != expectedPrior {
		return domain.ErrLedgerConflict
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO attempts (id, email, topic, correct, incorrect, earned, overall_points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Timestamp, rec.Email, rec.Topic, rec.Correct, rec.Incorrect, rec.Earned, rec.OverallPoints,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateAttempt
	}
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *AttemptStore) ListAttempts(ctx context.Context, email string) ([]domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, topic, correct, incorrect, earned, overall_points
		 FROM attempts WHERE email=$1 ORDER BY id DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptRecord
	for rows.Next() {
		var r domain.AttemptRecord
		if err := rows.Scan(&r.Timestamp, &r.Email, &r.Topic, &r.Correct, &r.Incorrect, &r.Earned, &r.OverallPoints); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *AttemptStore) Totals(ctx context.Context) ([]domain.PointsTotal, error) {
	rows, err := s.pool.Query(ctx, `SELECT email, SUM(earned), MAX(id) FROM attempts GROUP BY email ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("sum totals: %w", err)
	}
	defer rows.Close()

	var out []domain.PointsTotal
	for rows.Next() {
		var p domain.PointsTotal
		if err := rows.Scan(&p.Email, &p.Total, &p.LastAttempt); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
