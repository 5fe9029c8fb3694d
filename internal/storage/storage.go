package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tutor-service/internal/models"
)

// Querier is the set of queries available both on a plain connection and
// inside a transaction. Lookups of missing rows return response.ErrNotFound.
type Querier interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	CreateTeacherProfile(ctx context.Context, teacherID uuid.UUID) error
	UpdateTeacherProfile(ctx context.Context, teacherID uuid.UUID, bio, description *string) error
	GetTeacher(ctx context.Context, teacherID uuid.UUID) (*models.TeacherProfile, error)
	ListTeachers(ctx context.Context) ([]models.TeacherProfile, error)

	CreateDate(ctx context.Context, d *models.Date) error
	GetDate(ctx context.Context, id uuid.UUID) (*models.Date, error)
	// GetDateForUpdate locks the row until the end of the transaction.
	GetDateForUpdate(ctx context.Context, id uuid.UUID) (*models.Date, error)
	ListDates(ctx context.Context, f models.DateFilter) ([]models.Date, int, error)
	UpdateDate(ctx context.Context, d *models.Date) error
	DeleteDate(ctx context.Context, id uuid.UUID) error
	// SetDateStatus clears student_id unless the new status is booked.
	SetDateStatus(ctx context.Context, id uuid.UUID, status models.DateStatus) error
	// LockTeacherSchedule serializes calendar writes of one teacher until
	// the end of the transaction.
	LockTeacherSchedule(ctx context.Context, teacherID uuid.UUID) error
	FindOverlappingDates(ctx context.Context, teacherID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]uuid.UUID, error)
	// BookDate moves an available date to booked. It reports false when
	// the date was not available.
	BookDate(ctx context.Context, dateID, studentID uuid.UUID) (bool, error)

	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	// CountActiveReservations counts confirmed and completed reservations of a date.
	CountActiveReservations(ctx context.Context, dateID uuid.UUID) (int, error)
	SetReservationStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) error

	CreateLesson(ctx context.Context, l *models.Lesson) error
	GetLessonForUpdate(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, l *models.Lesson) error
	ListLessons(ctx context.Context, f models.LessonFilter) ([]models.LessonView, error)
	LessonTotals(ctx context.Context, f models.LessonFilter) (models.LessonTotals, error)

	EnsureTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error
	RecalculateTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error
	RecalculateTeacherTotals(ctx context.Context, teacherID uuid.UUID) error
	ListTeacherStudents(ctx context.Context, teacherID uuid.UUID) ([]models.StudentOfTeacher, error)
	ListStudentTeachers(ctx context.Context, studentID uuid.UUID) ([]models.TeacherOfStudent, error)
	CountTeacherStudents(ctx context.Context, teacherID uuid.UUID) (int, error)
	DeleteTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error
	// ReconcileAggregates recomputes every counter from the lessons table
	// and returns the number of rows that were corrected.
	ReconcileAggregates(ctx context.Context) (int64, error)

	InsertErrorLog(ctx context.Context, e *models.ErrorLog) error
}

type Store interface {
	Querier
	// Tx runs fn in one transaction. Returning an error rolls it back.
	Tx(ctx context.Context, fn func(q Querier) error) error
	Ping(ctx context.Context) error
	Close() error
}
