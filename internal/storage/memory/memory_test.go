package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/internal/models"
	"tutor-service/internal/storage"
	"tutor-service/pkg/response"
)

var base = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s *Store, role models.Role, email string) uuid.UUID {
	t.Helper()

	u := &models.User{Email: email, FirstName: "Test", LastName: string(role), Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	if role == models.RoleTutor {
		require.NoError(t, s.CreateTeacherProfile(context.Background(), u.ID))
	}
	return u.ID
}

func seedLesson(t *testing.T, s *Store, teacherID, studentID uuid.UUID, start time.Time, status models.LessonStatus) {
	t.Helper()
	ctx := context.Background()

	d := &models.Date{TeacherID: teacherID, StartTime: start, EndTime: start.Add(time.Hour), Status: models.DateBooked, StudentID: &studentID}
	require.NoError(t, s.CreateDate(ctx, d))
	r := &models.Reservation{StudentID: studentID, TermID: d.ID, Status: models.ReservationConfirmed}
	require.NoError(t, s.CreateReservation(ctx, r))
	l := &models.Lesson{ReservationID: r.ID, TeacherID: teacherID, StudentID: studentID, ScheduledAt: start, DurationMinutes: 60, Status: status}
	require.NoError(t, s.CreateLesson(ctx, l))
}

func TestTxRollsBackOnError(t *testing.T) {
	s := NewWithClock(func() time.Time { return base })
	ctx := context.Background()
	teacher := seedUser(t, s, models.RoleTutor, "tutor@example.com")

	boom := errors.New("boom")
	err := s.Tx(ctx, func(q storage.Querier) error {
		d := &models.Date{TeacherID: teacher, StartTime: base.Add(10 * time.Hour), EndTime: base.Add(11 * time.Hour), Status: models.DateAvailable}
		require.NoError(t, q.CreateDate(ctx, d))
		return boom
	})
	require.ErrorIs(t, err, boom)

	dates, total, err := s.ListDates(ctx, models.DateFilter{TeacherID: teacher})
	require.NoError(t, err)
	assert.Empty(t, dates)
	assert.Zero(t, total)
}

func TestCreateDateRejectsOverlap(t *testing.T) {
	s := New()
	ctx := context.Background()
	teacher := seedUser(t, s, models.RoleTutor, "tutor@example.com")

	first := &models.Date{TeacherID: teacher, StartTime: base.Add(10 * time.Hour), EndTime: base.Add(11 * time.Hour), Status: models.DateAvailable}
	require.NoError(t, s.CreateDate(ctx, first))

	overlapping := &models.Date{TeacherID: teacher, StartTime: base.Add(10*time.Hour + 30*time.Minute), EndTime: base.Add(11*time.Hour + 30*time.Minute), Status: models.DateAvailable}
	assert.ErrorIs(t, s.CreateDate(ctx, overlapping), response.ErrConflict)

	touching := &models.Date{TeacherID: teacher, StartTime: base.Add(11 * time.Hour), EndTime: base.Add(12 * time.Hour), Status: models.DateAvailable}
	assert.NoError(t, s.CreateDate(ctx, touching))

	canceled := &models.Date{TeacherID: teacher, StartTime: base.Add(10 * time.Hour), EndTime: base.Add(11 * time.Hour), Status: models.DateCanceled}
	assert.NoError(t, s.CreateDate(ctx, canceled))
}

func TestListDatesPaginates(t *testing.T) {
	s := New()
	ctx := context.Background()
	teacher := seedUser(t, s, models.RoleTutor, "tutor@example.com")

	for i := 0; i < 5; i++ {
		start := base.Add(time.Duration(8+i) * time.Hour)
		require.NoError(t, s.CreateDate(ctx, &models.Date{TeacherID: teacher, StartTime: start, EndTime: start.Add(time.Hour), Status: models.DateAvailable}))
	}

	page, total, err := s.ListDates(ctx, models.DateFilter{TeacherID: teacher, Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, base.Add(10*time.Hour), page[0].StartTime)
	assert.Equal(t, base.Add(11*time.Hour), page[1].StartTime)

	page, _, err = s.ListDates(ctx, models.DateFilter{TeacherID: teacher, Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestReconcileAggregates(t *testing.T) {
	s := New()
	ctx := context.Background()
	teacher := seedUser(t, s, models.RoleTutor, "tutor@example.com")
	student := seedUser(t, s, models.RoleStudent, "student@example.com")

	seedLesson(t, s, teacher, student, base.Add(9*time.Hour), models.LessonCompleted)
	seedLesson(t, s, teacher, student, base.Add(12*time.Hour), models.LessonPlanned)
	seedLesson(t, s, teacher, student, base.Add(15*time.Hour), models.LessonCanceled)

	// stale counters, e.g. written by an interrupted deployment
	s.db.pairs[pair{teacher, student}] = models.TeacherStudent{TeacherID: teacher, StudentID: student, LessonsCompleted: 7}

	fixed, err := s.ReconcileAggregates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fixed)

	students, err := s.ListTeacherStudents(ctx, teacher)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, students[0].LessonsCompleted)
	assert.Equal(t, 1, students[0].LessonsReserved)

	tp, err := s.GetTeacher(ctx, teacher)
	require.NoError(t, err)
	assert.Equal(t, 1, tp.LessonsCompleted)
	assert.Equal(t, 1, tp.LessonsPlanned)

	fixed, err = s.ReconcileAggregates(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestDeleteDateCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	teacher := seedUser(t, s, models.RoleTutor, "tutor@example.com")
	student := seedUser(t, s, models.RoleStudent, "student@example.com")
	seedLesson(t, s, teacher, student, base.Add(9*time.Hour), models.LessonCanceled)

	dates, _, err := s.ListDates(ctx, models.DateFilter{TeacherID: teacher})
	require.NoError(t, err)
	require.Len(t, dates, 1)

	require.NoError(t, s.DeleteDate(ctx, dates[0].ID))

	lessons, err := s.ListLessons(ctx, models.LessonFilter{TeacherID: &teacher})
	require.NoError(t, err)
	assert.Empty(t, lessons)
}
