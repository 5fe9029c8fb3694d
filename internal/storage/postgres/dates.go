package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutor-service/internal/models"
)

const dateColumns = `id, teacher_id, student_id, start_time, end_time, status, title, description, additional_info`

func scanDate(row scanner) (*models.Date, error) {
	var (
		d    models.Date
		info []byte
	)
	err := row.Scan(&d.ID, &d.TeacherID, &d.StudentID, &d.StartTime, &d.EndTime, &d.Status, &d.Title, &d.Description, &info)
	if err != nil {
		return nil, err
	}
	if len(info) > 0 {
		d.AdditionalInfo = json.RawMessage(info)
	}
	return &d, nil
}

// nullJSON keeps empty documents as SQL NULL.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func (s *Storage) CreateDate(ctx context.Context, d *models.Date) error {
	const op = "storage.postgres.CreateDate"

	err := s.q.QueryRowContext(ctx, `
		INSERT INTO dates (teacher_id, student_id, start_time, end_time, status, title, description, additional_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		d.TeacherID, d.StudentID, d.StartTime, d.EndTime, d.Status, d.Title, d.Description, nullJSON(d.AdditionalInfo),
	).Scan(&d.ID)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (s *Storage) GetDate(ctx context.Context, id uuid.UUID) (*models.Date, error) {
	const op = "storage.postgres.GetDate"

	d, err := scanDate(s.q.QueryRowContext(ctx, `SELECT `+dateColumns+` FROM dates WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return d, nil
}

func (s *Storage) GetDateForUpdate(ctx context.Context, id uuid.UUID) (*models.Date, error) {
	const op = "storage.postgres.GetDateForUpdate"

	d, err := scanDate(s.q.QueryRowContext(ctx, `SELECT `+dateColumns+` FROM dates WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return d, nil
}

type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (s *Storage) ListDates(ctx context.Context, f models.DateFilter) ([]models.Date, int, error) {
	const op = "storage.postgres.ListDates"

	var w where
	w.add("teacher_id = $%d", f.TeacherID)
	if f.Status != nil {
		w.add("status = $%d", *f.Status)
	}
	if f.Day != nil {
		w.add("start_time >= $%d", *f.Day)
		w.add("start_time < $%d", f.Day.Add(24*time.Hour))
	}
	if f.From != nil {
		w.add("start_time >= $%d", *f.From)
	}

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT count(*) FROM dates`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	query := `SELECT ` + dateColumns + ` FROM dates` + w.String() + ` ORDER BY start_time`
	args := w.args
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	dates := make([]models.Date, 0)
	for rows.Next() {
		d, err := scanDate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		dates = append(dates, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return dates, total, nil
}

func (s *Storage) UpdateDate(ctx context.Context, d *models.Date) error {
	const op = "storage.postgres.UpdateDate"

	res, err := s.q.ExecContext(ctx, `
		UPDATE dates
		SET student_id = $2, start_time = $3, end_time = $4, status = $5,
			title = $6, description = $7, additional_info = $8
		WHERE id = $1`,
		d.ID, d.StudentID, d.StartTime, d.EndTime, d.Status, d.Title, d.Description, nullJSON(d.AdditionalInfo),
	)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}

func (s *Storage) DeleteDate(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteDate"

	res, err := s.q.ExecContext(ctx, `DELETE FROM dates WHERE id = $1`, id)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}

func (s *Storage) SetDateStatus(ctx context.Context, id uuid.UUID, status models.DateStatus) error {
	const op = "storage.postgres.SetDateStatus"

	query := `UPDATE dates SET status = $2, student_id = NULL WHERE id = $1`
	if status == models.DateBooked {
		query = `UPDATE dates SET status = $2 WHERE id = $1`
	}

	res, err := s.q.ExecContext(ctx, query, id, status)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}

func (s *Storage) LockTeacherSchedule(ctx context.Context, teacherID uuid.UUID) error {
	const op = "storage.postgres.LockTeacherSchedule"

	if _, err := s.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, teacherID.String()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) FindOverlappingDates(ctx context.Context, teacherID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]uuid.UUID, error) {
	const op = "storage.postgres.FindOverlappingDates"

	rows, err := s.q.QueryContext(ctx, `
		SELECT id FROM dates
		WHERE teacher_id = $1
			AND status <> 'canceled'
			AND start_time < $3
			AND end_time > $2
			AND ($4::uuid IS NULL OR id <> $4::uuid)
		ORDER BY start_time`,
		teacherID, start, end, exclude,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func (s *Storage) BookDate(ctx context.Context, dateID, studentID uuid.UUID) (bool, error) {
	const op = "storage.postgres.BookDate"

	res, err := s.q.ExecContext(ctx, `
		UPDATE dates SET status = 'booked', student_id = $2
		WHERE id = $1 AND status = 'available'`,
		dateID, studentID,
	)
	if err != nil {
		return false, mapError(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n == 1, nil
}
