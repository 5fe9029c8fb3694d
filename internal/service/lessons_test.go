package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/models"
	"tutor-service/internal/testutil"
	"tutor-service/pkg/response"
)

func pairCounters(t *testing.T, env *testutil.Env, tutor, student auth.Principal) (completed, reserved int) {
	t.Helper()

	students, err := env.Store.ListTeacherStudents(context.Background(), tutor.UserID)
	require.NoError(t, err)
	for _, st := range students {
		if st.StudentID == student.UserID {
			return st.LessonsCompleted, st.LessonsReserved
		}
	}
	t.Fatalf("no aggregate row for the pair")
	return 0, 0
}

func TestUpdateLessonStatus(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	first := env.Book(t, student, tutor, env.CreateDate(t, tutor, 2, 60))
	secondDate := env.CreateDate(t, tutor, 4, 45)
	second := env.Book(t, student, tutor, secondDate)

	completed, reserved := pairCounters(t, env, tutor, student)
	assert.Equal(t, 0, completed)
	assert.Equal(t, 2, reserved)

	lesson, err := env.Service.UpdateLesson(ctx, tutor, uuid.MustParse(first.LessonID), &api.UpdateLessonRequest{Status: ptr("completed")})
	require.NoError(t, err)
	assert.Equal(t, "completed", lesson.Status)

	completed, reserved = pairCounters(t, env, tutor, student)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, reserved)

	reservation, err := env.Store.GetReservation(ctx, uuid.MustParse(first.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCompleted, reservation.Status)

	_, err = env.Service.UpdateLesson(ctx, tutor, uuid.MustParse(second.LessonID), &api.UpdateLessonRequest{Status: ptr("canceled")})
	require.NoError(t, err)

	completed, reserved = pairCounters(t, env, tutor, student)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, reserved)

	reservation, err = env.Store.GetReservation(ctx, uuid.MustParse(second.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCanceled, reservation.Status)

	date, err := env.Store.GetDate(ctx, secondDate)
	require.NoError(t, err)
	assert.Equal(t, models.DateCanceled, date.Status)

	teacher, err := env.Store.GetTeacher(ctx, tutor.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, teacher.LessonsCompleted)
	assert.Equal(t, 0, teacher.LessonsPlanned)

	// the canceled date frees its time
	env.CreateDate(t, tutor, 4, 60)
}

func TestUpdateLessonTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"planned to planned", "", "planned", nil},
		{"completed to completed", "completed", "completed", nil},
		{"completed to canceled", "completed", "canceled", response.ErrConflict},
		{"completed to planned", "completed", "planned", response.ErrConflict},
		{"canceled to completed", "canceled", "completed", response.ErrConflict},
		{"canceled to planned", "canceled", "planned", response.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			ctx := context.Background()
			tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
			student := env.Register(t, models.RoleStudent, "student@example.com")
			booking := env.Book(t, student, tutor, env.CreateDate(t, tutor, 2, 60))
			lessonID := uuid.MustParse(booking.LessonID)

			if tt.from != "" {
				_, err := env.Service.UpdateLesson(ctx, tutor, lessonID, &api.UpdateLessonRequest{Status: ptr(tt.from)})
				require.NoError(t, err)
			}

			_, err := env.Service.UpdateLesson(ctx, tutor, lessonID, &api.UpdateLessonRequest{Status: ptr(tt.to)})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateLessonSchedule(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")
	other := env.Register(t, models.RoleTutor, "other@example.com")
	booking := env.Book(t, student, tutor, env.CreateDate(t, tutor, 2, 60))
	lessonID := uuid.MustParse(booking.LessonID)

	moved := testutil.Now.Add(5 * time.Hour)
	lesson, err := env.Service.UpdateLesson(ctx, tutor, lessonID, &api.UpdateLessonRequest{
		ScheduledAt:     &moved,
		DurationMinutes: ptr(90),
	})
	require.NoError(t, err)
	assert.Equal(t, moved, lesson.ScheduledAt)
	assert.Equal(t, 90, lesson.DurationMinutes)
	assert.Equal(t, "planned", lesson.Status)

	_, err = env.Service.UpdateLesson(ctx, other, lessonID, &api.UpdateLessonRequest{Status: ptr("completed")})
	assert.ErrorIs(t, err, response.ErrForbidden)

	_, err = env.Service.UpdateLesson(ctx, student, lessonID, &api.UpdateLessonRequest{Status: ptr("completed")})
	assert.ErrorIs(t, err, response.ErrForbidden)

	_, err = env.Service.UpdateLesson(ctx, tutor, uuid.New(), &api.UpdateLessonRequest{Status: ptr("completed")})
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = env.Service.UpdateLesson(ctx, tutor, lessonID, &api.UpdateLessonRequest{Status: ptr("completed")})
	require.NoError(t, err)

	_, err = env.Service.UpdateLesson(ctx, tutor, lessonID, &api.UpdateLessonRequest{DurationMinutes: ptr(30)})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestUpdateLessonScheduleMovesDate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	dateID := env.CreateDate(t, tutor, 2, 60) // [10:00, 11:00)
	env.CreateDate(t, tutor, 4, 60)           // [12:00, 13:00)
	lessonID := uuid.MustParse(env.Book(t, student, tutor, dateID).LessonID)

	// into the other date
	into := testutil.Now.Add(3*time.Hour + 30*time.Minute)
	_, err := env.Service.UpdateLesson(ctx, tutor, lessonID, &api.UpdateLessonRequest{ScheduledAt: &into})
	assert.ErrorIs(t, err, response.ErrConflict)

	// longer, up to the other date
	_, err = env.Service.UpdateLesson(ctx, tutor, lessonID, &api.UpdateLessonRequest{DurationMinutes: ptr(120)})
	require.NoError(t, err)

	d, err := env.Store.GetDate(ctx, dateID)
	require.NoError(t, err)
	assert.Equal(t, models.DateBooked, d.Status)
	assert.Equal(t, testutil.Now.Add(2*time.Hour), d.StartTime)
	assert.Equal(t, testutil.Now.Add(4*time.Hour), d.EndTime)

	// the lengthened date now blocks [11:00, 11:30)
	_, err = env.Service.CreateDate(ctx, tutor, &api.CreateDateRequest{
		StartTime: testutil.Now.Add(3 * time.Hour),
		EndTime:   testutil.Now.Add(3*time.Hour + 30*time.Minute),
	})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestListLessons(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	held := env.Book(t, student, tutor, env.CreateDate(t, tutor, 2, 60))
	upcoming := env.Book(t, student, tutor, env.CreateDate(t, tutor, 26, 60))
	canceled := env.Book(t, student, tutor, env.CreateDate(t, tutor, 50, 60))

	_, err := env.Service.UpdateLesson(ctx, tutor, uuid.MustParse(held.LessonID), &api.UpdateLessonRequest{Status: ptr("completed")})
	require.NoError(t, err)
	_, err = env.Service.UpdateLesson(ctx, tutor, uuid.MustParse(canceled.LessonID), &api.UpdateLessonRequest{Status: ptr("canceled")})
	require.NoError(t, err)

	t.Run("teacher view", func(t *testing.T) {
		list, err := env.Service.ListTeacherLessons(ctx, tutor, tutor.UserID)
		require.NoError(t, err)
		require.Len(t, list.Data, 3)

		assert.Equal(t, canceled.LessonID, list.Data[0].ID)
		assert.Equal(t, held.LessonID, list.Data[2].ID)
		require.NotNil(t, list.Data[0].Student)
		assert.Equal(t, "student@example.com", list.Data[0].Student.Email)
		assert.Nil(t, list.Data[0].Teacher)
	})

	t.Run("student view", func(t *testing.T) {
		lessons, err := env.Service.ListStudentLessons(ctx, student, student.UserID)
		require.NoError(t, err)

		assert.Equal(t, 3, lessons.TotalLessons)
		require.Len(t, lessons.UpcomingLessons, 1)
		assert.Equal(t, upcoming.LessonID, lessons.UpcomingLessons[0].ID)
		require.Len(t, lessons.CompletedLessons, 1)
		assert.Equal(t, held.LessonID, lessons.CompletedLessons[0].ID)
		require.NotNil(t, lessons.UpcomingLessons[0].Teacher)
		assert.Equal(t, "tutor@example.com", lessons.UpcomingLessons[0].Teacher.Email)
	})

	t.Run("only for oneself", func(t *testing.T) {
		_, err := env.Service.ListTeacherLessons(ctx, student, tutor.UserID)
		assert.ErrorIs(t, err, response.ErrForbidden)

		_, err = env.Service.ListStudentLessons(ctx, tutor, student.UserID)
		assert.ErrorIs(t, err, response.ErrForbidden)
	})
}
