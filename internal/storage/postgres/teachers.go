package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tutor-service/internal/models"
)

const teacherSelect = `
	SELECT t.teacher_id, u.first_name, u.last_name, t.bio, t.description, t.lessons_completed, t.lessons_planned
	FROM teachers t
	JOIN users u ON u.id = t.teacher_id`

func scanTeacher(row scanner) (*models.TeacherProfile, error) {
	var t models.TeacherProfile
	err := row.Scan(&t.TeacherID, &t.FirstName, &t.LastName, &t.Bio, &t.Description, &t.LessonsCompleted, &t.LessonsPlanned)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) CreateTeacherProfile(ctx context.Context, teacherID uuid.UUID) error {
	const op = "storage.postgres.CreateTeacherProfile"

	_, err := s.q.ExecContext(ctx, `INSERT INTO teachers (teacher_id) VALUES ($1) ON CONFLICT DO NOTHING`, teacherID)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (s *Storage) UpdateTeacherProfile(ctx context.Context, teacherID uuid.UUID, bio, description *string) error {
	const op = "storage.postgres.UpdateTeacherProfile"

	res, err := s.q.ExecContext(ctx, `
		UPDATE teachers
		SET bio = COALESCE($2, bio),
			description = COALESCE($3, description)
		WHERE teacher_id = $1`,
		teacherID, bio, description,
	)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}

func (s *Storage) GetTeacher(ctx context.Context, teacherID uuid.UUID) (*models.TeacherProfile, error) {
	const op = "storage.postgres.GetTeacher"

	t, err := scanTeacher(s.q.QueryRowContext(ctx, teacherSelect+` WHERE t.teacher_id = $1`, teacherID))
	if err != nil {
		return nil, mapError(op, err)
	}

	return t, nil
}

func (s *Storage) ListTeachers(ctx context.Context) ([]models.TeacherProfile, error) {
	const op = "storage.postgres.ListTeachers"

	rows, err := s.q.QueryContext(ctx, teacherSelect+` WHERE u.role = 'tutor' ORDER BY u.first_name, u.last_name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var teachers []models.TeacherProfile
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		teachers = append(teachers, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return teachers, nil
}
