package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/api"
	"tutor-service/internal/models"
	"tutor-service/internal/testutil"
	"tutor-service/pkg/response"
)

func TestGetStats(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	// Now is 2025-03-10 08:00 UTC
	done := env.Book(t, student, tutor, env.CreateDate(t, tutor, 2, 90))
	env.Book(t, student, tutor, env.CreateDate(t, tutor, 4, 60))
	env.Book(t, student, tutor, env.CreateDate(t, tutor, 24*30, 60)) // April

	_, err := env.Service.UpdateLesson(ctx, tutor, uuid.MustParse(done.LessonID), &api.UpdateLessonRequest{Status: ptr("completed")})
	require.NoError(t, err)

	t.Run("tutor", func(t *testing.T) {
		stats, err := env.Service.GetStats(ctx, tutor, tutor.UserID)
		require.NoError(t, err)
		require.NotNil(t, stats.TutorStats)
		assert.Nil(t, stats.StudentStats)

		assert.Equal(t, 1, stats.ActiveStudents)
		assert.Equal(t, 1, stats.LessonsThisMonth)
		assert.Equal(t, 2, stats.PlannedLessons)

		raw, err := json.Marshal(stats)
		require.NoError(t, err)
		assert.JSONEq(t, `{"active_students":1,"lessons_this_month":1,"planned_lessons":2}`, string(raw))
	})

	t.Run("student", func(t *testing.T) {
		stats, err := env.Service.GetStats(ctx, student, student.UserID)
		require.NoError(t, err)
		require.NotNil(t, stats.StudentStats)

		assert.Equal(t, 1, stats.LessonsCompleted)
		assert.Equal(t, 2, stats.LessonsPlanned)
		assert.Equal(t, 2, stats.TotalHours) // 90 minutes rounds to 2 hours
	})

	t.Run("only for oneself", func(t *testing.T) {
		_, err := env.Service.GetStats(ctx, student, tutor.UserID)
		assert.ErrorIs(t, err, response.ErrForbidden)
	})
}
