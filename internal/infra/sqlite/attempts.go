package sqlite

import (
	"context"

	"quizo-service/internal/domain"
)

func (s *Store) CumulativePoints(ctx context.Context, email string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(earned), 0) FROM attempts WHERE email = ?`, email).Scan(&total)
	return total, err
}

func (s *Store) AppendAttempt(ctx context.Context, rec domain.AttemptRecord, expectedPrior int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(earned), 0) FROM attempts WHERE email = ?`, rec.Email).Scan(&current); err != nil {
		return err
	}
	if current != expectedPrior {
		return domain.ErrLedgerConflict
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO attempts (id, email, topic, correct, incorrect, earned, overall_points)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.Email, rec.Topic, rec.Correct, rec.Incorrect, rec.Earned, rec.OverallPoints,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAttempt
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) ListAttempts(ctx context.Context, email string) ([]domain.AttemptRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, email, topic, correct, incorrect, earned, overall_points
		 FROM attempts WHERE email = ? ORDER BY id DESC`,
		email,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AttemptRecord
	for rows.Next() {
		var r domain.AttemptRecord
		if err := rows.Scan(&r.Timestamp, &r.Email, &r.Topic, &r.Correct, &r.Incorrect, &r.Earned, &r.OverallPoints); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Totals(ctx context.Context) ([]domain.PointsTotal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, SUM(earned), MAX(id) FROM attempts GROUP BY email ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PointsTotal
	for rows.Next() {
		var p domain.PointsTotal
		if err := rows.Scan(&p.Email, &p.Total, &p.LastAttempt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
