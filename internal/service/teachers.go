package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/pkg/response"
)

func (s *Service) ListTeachers(ctx context.Context) (*api.TeacherList, error) {
	const op = "service.ListTeachers"

	teachers, err := s.store.ListTeachers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &api.TeacherList{Data: make([]api.Teacher, 0, len(teachers))}
	for _, t := range teachers {
		result.Data = append(result.Data, toTeacher(t))
	}

	return result, nil
}

func (s *Service) GetTeacher(ctx context.Context, teacherID uuid.UUID) (*api.Teacher, error) {
	const op = "service.GetTeacher"

	t, err := s.store.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFoundAs(err, "Teacher not found"))
	}

	teacher := toTeacher(*t)
	return &teacher, nil
}

func (s *Service) UpdateTeacherProfile(ctx context.Context, actor auth.Principal, teacherID uuid.UUID, req *api.UpdateTeacherRequest) (*api.Teacher, error) {
	const op = "service.UpdateTeacherProfile"

	if err := requireSelf(actor, teacherID, "Insufficient permissions to update this profile"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.IsTutor() {
		return nil, fmt.Errorf("%s: %w", op, response.Forbidden("Only tutors have a teacher profile"))
	}

	if err := s.store.UpdateTeacherProfile(ctx, teacherID, req.Bio, req.Description); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFoundAs(err, "Teacher not found"))
	}

	return s.GetTeacher(ctx, teacherID)
}

func (s *Service) ListTeacherStudents(ctx context.Context, actor auth.Principal, teacherID uuid.UUID) (*api.StudentList, error) {
	const op = "service.ListTeacherStudents"

	if err := requireSelf(actor, teacherID, "Insufficient permissions to view these students"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	students, err := s.store.ListTeacherStudents(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &api.StudentList{Data: make([]api.StudentOfTeacher, 0, len(students))}
	for _, st := range students {
		result.Data = append(result.Data, api.StudentOfTeacher{
			ID:               st.StudentID.String(),
			FirstName:        st.Student.FirstName,
			LastName:         st.Student.LastName,
			Email:            st.Student.Email,
			ProfileCreatedAt: st.Student.ProfileCreatedAt,
			LessonsCompleted: st.LessonsCompleted,
			LessonsReserved:  st.LessonsReserved,
		})
	}

	return result, nil
}

// RemoveTeacherStudent drops the pair from the tutor's student list. The
// lessons stay, so the next booking of the pair brings the row back.
func (s *Service) RemoveTeacherStudent(ctx context.Context, actor auth.Principal, teacherID, studentID uuid.UUID) error {
	const op = "service.RemoveTeacherStudent"

	if err := requireSelf(actor, teacherID, "Insufficient permissions to remove this student"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteTeacherStudent(ctx, teacherID, studentID); err != nil {
		return fmt.Errorf("%s: %w", op, notFoundAs(err, "Student not found"))
	}

	return nil
}

func (s *Service) ListStudentTeachers(ctx context.Context, actor auth.Principal, studentID uuid.UUID) (*api.StudentTeacherList, error) {
	const op = "service.ListStudentTeachers"

	if err := requireSelf(actor, studentID, "Insufficient permissions to view these teachers"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	teachers, err := s.store.ListStudentTeachers(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &api.StudentTeacherList{Data: make([]api.TeacherOfStudent, 0, len(teachers))}
	for _, t := range teachers {
		result.Data = append(result.Data, api.TeacherOfStudent{
			ID:                    t.TeacherID.String(),
			FirstName:             t.Teacher.FirstName,
			LastName:              t.Teacher.LastName,
			Email:                 t.Teacher.Email,
			ProfileCreatedAt:      t.Teacher.ProfileCreatedAt,
			Bio:                   t.Bio,
			Description:           t.Description,
			LessonsCompleted:      t.LessonsCompleted,
			LessonsReserved:       t.LessonsReserved,
			TotalLessonsCompleted: t.TotalLessonsCompleted,
		})
	}

	return result, nil
}
