package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tutor-service/internal/models"
	"tutor-service/internal/storage"
)

// Store is an in-memory storage.Store. Transactions work on a copy of the
// tables that replaces the original on success, and run one at a time.
type Store struct {
	mu sync.Mutex
	db *tables
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Store {
	return &Store{db: newTables(now)}
}

func (s *Store) Tx(ctx context.Context, fn func(q storage.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.db.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.db = tx

	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// ErrorLogs returns the recorded error log entries.
func (s *Store) ErrorLogs() []models.ErrorLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.ErrorLog(nil), s.db.errorLogs...)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.CreateUser(ctx, u)
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.GetUser(ctx, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.GetUserByEmail(ctx, email)
}

func (s *Store) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.SetLastLogin(ctx, id, at)
}

func (s *Store) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.SetPasswordHash(ctx, id, hash)
}

func (s *Store) CreateTeacherProfile(ctx context.Context, teacherID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.CreateTeacherProfile(ctx, teacherID)
}

func (s *Store) UpdateTeacherProfile(ctx context.Context, teacherID uuid.UUID, bio, description *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.UpdateTeacherProfile(ctx, teacherID, bio, description)
}

func (s *Store) GetTeacher(ctx context.Context, teacherID uuid.UUID) (*models.TeacherProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.GetTeacher(ctx, teacherID)
}

func (s *Store) ListTeachers(ctx context.Context) ([]models.TeacherProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.ListTeachers(ctx)
}

func (s *Store) CreateDate(ctx context.Context, d *models.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.CreateDate(ctx, d)
}

func (s *Store) GetDate(ctx context.Context, id uuid.UUID) (*models.Date, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.GetDate(ctx, id)
}

func (s *Store) GetDateForUpdate(ctx context.Context, id uuid.UUID) (*models.Date, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.GetDateForUpdate(ctx, id)
}

func (s *Store) ListDates(ctx context.Context, f models.DateFilter) ([]models.Date, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.ListDates(ctx, f)
}

func (s *Store) UpdateDate(ctx context.Context, d *models.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.UpdateDate(ctx, d)
}

func (s *Store) DeleteDate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.DeleteDate(ctx, id)
}

func (s *Store) SetDateStatus(ctx context.Context, id uuid.UUID, status models.DateStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.SetDateStatus(ctx, id, status)
}

func (s *Store) LockTeacherSchedule(ctx context.Context, teacherID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.LockTeacherSchedule(ctx, teacherID)
}

func (s *Store) FindOverlappingDates(ctx context.Context, teacherID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.FindOverlappingDates(ctx, teacherID, start, end, exclude)
}

func (s *Store) BookDate(ctx context.Context, dateID, studentID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.BookDate(ctx, dateID, studentID)
}

func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.CreateReservation(ctx, r)
}

func (s *Store) GetReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.GetReservation(ctx, id)
}

func (s *Store) CountActiveReservations(ctx context.Context, dateID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.CountActiveReservations(ctx, dateID)
}

func (s *Store) SetReservationStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.SetReservationStatus(ctx, id, status)
}

func (s *Store) CreateLesson(ctx context.Context, l *models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.CreateLesson(ctx, l)
}

func (s *Store) GetLessonForUpdate(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.GetLessonForUpdate(ctx, id)
}

func (s *Store) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.UpdateLesson(ctx, l)
}

func (s *Store) ListLessons(ctx context.Context, f models.LessonFilter) ([]models.LessonView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.ListLessons(ctx, f)
}

func (s *Store) LessonTotals(ctx context.Context, f models.LessonFilter) (models.LessonTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.LessonTotals(ctx, f)
}

func (s *Store) EnsureTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.EnsureTeacherStudent(ctx, teacherID, studentID)
}

func (s *Store) RecalculateTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.RecalculateTeacherStudent(ctx, teacherID, studentID)
}

func (s *Store) RecalculateTeacherTotals(ctx context.Context, teacherID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.RecalculateTeacherTotals(ctx, teacherID)
}

func (s *Store) ListTeacherStudents(ctx context.Context, teacherID uuid.UUID) ([]models.StudentOfTeacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.ListTeacherStudents(ctx, teacherID)
}

func (s *Store) ListStudentTeachers(ctx context.Context, studentID uuid.UUID) ([]models.TeacherOfStudent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.ListStudentTeachers(ctx, studentID)
}

func (s *Store) CountTeacherStudents(ctx context.Context, teacherID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.CountTeacherStudents(ctx, teacherID)
}

func (s *Store) DeleteTeacherStudent(ctx context.Context, teacherID, studentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.DeleteTeacherStudent(ctx, teacherID, studentID)
}

func (s *Store) ReconcileAggregates(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.ReconcileAggregates(ctx)
}

func (s *Store) InsertErrorLog(ctx context.Context, e *models.ErrorLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.InsertErrorLog(ctx, e)
}
