package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quizo-service/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (email, username, password_hash, role, created_at_unix) VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.Username, u.PasswordHash, u.Role, u.CreatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var (
		u       domain.User
		created int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT email, username, password_hash, role, created_at_unix FROM users WHERE email = ?`,
		email,
	).Scan(&u.Email, &u.Username, &u.PasswordHash, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	return u, nil
}

func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE email = ?`, passwordHash, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
