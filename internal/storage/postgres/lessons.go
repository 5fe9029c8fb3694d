package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tutor-service/internal/models"
)

func lessonWhere(f models.LessonFilter) *where {
	w := &where{}
	if f.TeacherID != nil {
		w.add("l.teacher_id = $%d", *f.TeacherID)
	}
	if f.StudentID != nil {
		w.add("l.student_id = $%d", *f.StudentID)
	}
	if f.Status != nil {
		w.add("l.status = $%d", *f.Status)
	}
	if f.From != nil {
		w.add("l.scheduled_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("l.scheduled_at < $%d", *f.To)
	}
	return w
}

func (s *Storage) CreateLesson(ctx context.Context, l *models.Lesson) error {
	const op = "storage.postgres.CreateLesson"

	err := s.q.QueryRowContext(ctx, `
		INSERT INTO lessons (reservation_id, teacher_id, student_id, scheduled_at, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		l.ReservationID, l.TeacherID, l.StudentID, l.ScheduledAt, l.DurationMinutes, l.Status,
	).Scan(&l.ID)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (s *Storage) GetLessonForUpdate(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	const op = "storage.postgres.GetLessonForUpdate"

	var l models.Lesson
	err := s.q.QueryRowContext(ctx, `
		SELECT id, reservation_id, teacher_id, student_id, scheduled_at, duration_minutes, status
		FROM lessons WHERE id = $1 FOR UPDATE`, id,
	).Scan(&l.ID, &l.ReservationID, &l.TeacherID, &l.StudentID, &l.ScheduledAt, &l.DurationMinutes, &l.Status)
	if err != nil {
		return nil, mapError(op, err)
	}

	return &l, nil
}

func (s *Storage) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	const op = "storage.postgres.UpdateLesson"

	res, err := s.q.ExecContext(ctx, `
		UPDATE lessons SET scheduled_at = $2, duration_minutes = $3, status = $4
		WHERE id = $1`,
		l.ID, l.ScheduledAt, l.DurationMinutes, l.Status,
	)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}

func (s *Storage) ListLessons(ctx context.Context, f models.LessonFilter) ([]models.LessonView, error) {
	const op = "storage.postgres.ListLessons"

	w := lessonWhere(f)
	rows, err := s.q.QueryContext(ctx, `
		SELECT l.id, l.reservation_id, l.teacher_id, l.student_id, l.scheduled_at, l.duration_minutes, l.status,
			t.first_name, t.last_name, t.email, t.profile_created_at,
			st.first_name, st.last_name, st.email, st.profile_created_at
		FROM lessons l
		JOIN users t ON t.id = l.teacher_id
		JOIN users st ON st.id = l.student_id`+w.String()+`
		ORDER BY l.scheduled_at DESC`,
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	lessons := make([]models.LessonView, 0)
	for rows.Next() {
		var v models.LessonView
		err := rows.Scan(
			&v.ID, &v.ReservationID, &v.TeacherID, &v.StudentID, &v.ScheduledAt, &v.DurationMinutes, &v.Status,
			&v.Teacher.FirstName, &v.Teacher.LastName, &v.Teacher.Email, &v.Teacher.ProfileCreatedAt,
			&v.Student.FirstName, &v.Student.LastName, &v.Student.Email, &v.Student.ProfileCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		v.Teacher.ID = v.TeacherID
		v.Student.ID = v.StudentID
		lessons = append(lessons, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lessons, nil
}

func (s *Storage) LessonTotals(ctx context.Context, f models.LessonFilter) (models.LessonTotals, error) {
	const op = "storage.postgres.LessonTotals"

	w := lessonWhere(f)
	var t models.LessonTotals
	err := s.q.QueryRowContext(ctx,
		`SELECT count(*), COALESCE(sum(l.duration_minutes), 0) FROM lessons l`+w.String(),
		w.args...,
	).Scan(&t.Count, &t.Minutes)
	if err != nil {
		return models.LessonTotals{}, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}
