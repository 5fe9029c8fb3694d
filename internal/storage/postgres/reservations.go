package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tutor-service/internal/models"
)

func (s *Storage) CreateReservation(ctx context.Context, r *models.Reservation) error {
	const op = "storage.postgres.CreateReservation"

	err := s.q.QueryRowContext(ctx, `
		INSERT INTO reservations (student_id, term_id, status, notes, reserved_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		r.StudentID, r.TermID, r.Status, r.Notes, r.ReservedAt,
	).Scan(&r.ID)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (s *Storage) GetReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	const op = "storage.postgres.GetReservation"

	var r models.Reservation
	err := s.q.QueryRowContext(ctx, `
		SELECT id, student_id, term_id, status, notes, reserved_at
		FROM reservations WHERE id = $1`, id,
	).Scan(&r.ID, &r.StudentID, &r.TermID, &r.Status, &r.Notes, &r.ReservedAt)
	if err != nil {
		return nil, mapError(op, err)
	}

	return &r, nil
}

func (s *Storage) CountActiveReservations(ctx context.Context, dateID uuid.UUID) (int, error) {
	const op = "storage.postgres.CountActiveReservations"

	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT count(*) FROM reservations
		WHERE term_id = $1 AND status IN ('confirmed', 'completed')`, dateID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (s *Storage) SetReservationStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) error {
	const op = "storage.postgres.SetReservationStatus"

	res, err := s.q.ExecContext(ctx, `UPDATE reservations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}
