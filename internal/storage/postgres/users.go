package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tutor-service/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, role, profile_created_at, last_login_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.ProfileCreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	const op = "storage.postgres.CreateUser"

	err := s.q.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, profile_created_at`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role,
	).Scan(&u.ID, &u.ProfileCreatedAt)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.GetUser"

	u, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.GetUserByEmail"

	u, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, mapError(op, err)
	}

	return u, nil
}

func (s *Storage) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	const op = "storage.postgres.SetLastLogin"

	res, err := s.q.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}

func (s *Storage) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	const op = "storage.postgres.SetPasswordHash"

	res, err := s.q.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}
