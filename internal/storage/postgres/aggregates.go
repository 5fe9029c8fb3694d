package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tutor-service/internal/models"
	"tutor-service/internal/storage"
)

// Counters are always derived from the lessons table, so repeating a
// recalculation is harmless.

func (s *Storage) EnsureTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error {
	const op = "storage.postgres.EnsureTeacherStudent"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO teacher_students (teacher_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (teacher_id, student_id) DO NOTHING`,
		teacherID, studentID,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (s *Storage) RecalculateTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error {
	const op = "storage.postgres.RecalculateTeacherStudent"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO teacher_students (teacher_id, student_id, lessons_completed, lessons_reserved)
		SELECT $1, $2,
			count(*) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status = 'planned')
		FROM lessons
		WHERE teacher_id = $1 AND student_id = $2
		ON CONFLICT (teacher_id, student_id) DO UPDATE
		SET lessons_completed = EXCLUDED.lessons_completed,
			lessons_reserved = EXCLUDED.lessons_reserved`,
		teacherID, studentID,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (s *Storage) RecalculateTeacherTotals(ctx context.Context, teacherID uuid.UUID) error {
	const op = "storage.postgres.RecalculateTeacherTotals"

	_, err := s.q.ExecContext(ctx, `
		UPDATE teachers t
		SET lessons_completed = agg.completed,
			lessons_planned = agg.planned
		FROM (
			SELECT count(*) FILTER (WHERE status = 'completed') AS completed,
				count(*) FILTER (WHERE status = 'planned') AS planned
			FROM lessons
			WHERE teacher_id = $1
		) agg
		WHERE t.teacher_id = $1`,
		teacherID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListTeacherStudents(ctx context.Context, teacherID uuid.UUID) ([]models.StudentOfTeacher, error) {
	const op = "storage.postgres.ListTeacherStudents"

	rows, err := s.q.QueryContext(ctx, `
		SELECT ts.teacher_id, ts.student_id, ts.lessons_completed, ts.lessons_reserved,
			u.first_name, u.last_name, u.email, u.profile_created_at
		FROM teacher_students ts
		JOIN users u ON u.id = ts.student_id
		WHERE ts.teacher_id = $1
		ORDER BY u.last_name, u.first_name`,
		teacherID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	students := make([]models.StudentOfTeacher, 0)
	for rows.Next() {
		var st models.StudentOfTeacher
		err := rows.Scan(&st.TeacherID, &st.StudentID, &st.LessonsCompleted, &st.LessonsReserved,
			&st.Student.FirstName, &st.Student.LastName, &st.Student.Email, &st.Student.ProfileCreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		st.Student.ID = st.StudentID
		students = append(students, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return students, nil
}

func (s *Storage) ListStudentTeachers(ctx context.Context, studentID uuid.UUID) ([]models.TeacherOfStudent, error) {
	const op = "storage.postgres.ListStudentTeachers"

	rows, err := s.q.QueryContext(ctx, `
		SELECT ts.teacher_id, ts.student_id, ts.lessons_completed, ts.lessons_reserved,
			u.first_name, u.last_name, u.email, u.profile_created_at,
			t.bio, t.description, COALESCE(t.lessons_completed, 0)
		FROM teacher_students ts
		JOIN users u ON u.id = ts.teacher_id
		LEFT JOIN teachers t ON t.teacher_id = ts.teacher_id
		WHERE ts.student_id = $1
		ORDER BY u.last_name, u.first_name`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	teachers := make([]models.TeacherOfStudent, 0)
	for rows.Next() {
		var t models.TeacherOfStudent
		err := rows.Scan(&t.TeacherID, &t.StudentID, &t.LessonsCompleted, &t.LessonsReserved,
			&t.Teacher.FirstName, &t.Teacher.LastName, &t.Teacher.Email, &t.Teacher.ProfileCreatedAt,
			&t.Bio, &t.Description, &t.TotalLessonsCompleted)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		t.Teacher.ID = t.TeacherID
		teachers = append(teachers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return teachers, nil
}

func (s *Storage) CountTeacherStudents(ctx context.Context, teacherID uuid.UUID) (int, error) {
	const op = "storage.postgres.CountTeacherStudents"

	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT count(*) FROM teacher_students WHERE teacher_id = $1`, teacherID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (s *Storage) DeleteTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error {
	const op = "storage.postgres.DeleteTeacherStudent"

	res, err := s.q.ExecContext(ctx, `DELETE FROM teacher_students WHERE teacher_id = $1 AND student_id = $2`, teacherID, studentID)
	if err != nil {
		return mapError(op, err)
	}

	return rowsAffected(op, res)
}

func (s *Storage) ReconcileAggregates(ctx context.Context) (int64, error) {
	const op = "storage.postgres.ReconcileAggregates"

	statements := []string{
		`INSERT INTO teacher_students (teacher_id, student_id, lessons_completed, lessons_reserved)
		SELECT teacher_id, student_id,
			count(*) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status = 'planned')
		FROM lessons
		GROUP BY teacher_id, student_id
		ON CONFLICT (teacher_id, student_id) DO UPDATE
		SET lessons_completed = EXCLUDED.lessons_completed,
			lessons_reserved = EXCLUDED.lessons_reserved
		WHERE teacher_students.lessons_completed <> EXCLUDED.lessons_completed
			OR teacher_students.lessons_reserved <> EXCLUDED.lessons_reserved`,

		`UPDATE teacher_students ts
		SET lessons_completed = 0, lessons_reserved = 0
		WHERE (ts.lessons_completed <> 0 OR ts.lessons_reserved <> 0)
			AND NOT EXISTS (
				SELECT 1 FROM lessons l
				WHERE l.teacher_id = ts.teacher_id AND l.student_id = ts.student_id
			)`,

		`UPDATE teachers t
		SET lessons_completed = COALESCE(agg.completed, 0),
			lessons_planned = COALESCE(agg.planned, 0)
		FROM teachers t2
		LEFT JOIN (
			SELECT teacher_id,
				count(*) FILTER (WHERE status = 'completed') AS completed,
				count(*) FILTER (WHERE status = 'planned') AS planned
			FROM lessons
			GROUP BY teacher_id
		) agg ON agg.teacher_id = t2.teacher_id
		WHERE t.teacher_id = t2.teacher_id
			AND (t.lessons_completed <> COALESCE(agg.completed, 0)
				OR t.lessons_planned <> COALESCE(agg.planned, 0))`,
	}

	var fixed int64
	err := s.Tx(ctx, func(q storage.Querier) error {
		tx := q.(*Storage)
		for _, stmt := range statements {
			res, err := tx.q.ExecContext(ctx, stmt)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			fixed += n
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return fixed, nil
}
