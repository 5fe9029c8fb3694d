package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/api"
	"tutor-service/internal/models"
	"tutor-service/internal/testutil"
	"tutor-service/pkg/response"
)

func ptr[T any](v T) *T {
	return &v
}

func hoursFromNow(h float64) time.Time {
	return testutil.Now.Add(time.Duration(h * float64(time.Hour)))
}

func TestCreateDate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	existing := env.CreateDate(t, tutor, 2, 60) // [10:00, 11:00)

	tests := []struct {
		name    string
		req     api.CreateDateRequest
		student bool
		wantErr error
		msg     string
	}{
		{
			name:    "overlapping",
			req:     api.CreateDateRequest{StartTime: hoursFromNow(2.5), EndTime: hoursFromNow(3.5)},
			wantErr: response.ErrConflict,
			msg:     "Time slot conflicts with existing date",
		},
		{
			name:    "contained",
			req:     api.CreateDateRequest{StartTime: hoursFromNow(2.25), EndTime: hoursFromNow(2.75)},
			wantErr: response.ErrConflict,
		},
		{
			name: "touching end",
			req:  api.CreateDateRequest{StartTime: hoursFromNow(3), EndTime: hoursFromNow(4)},
		},
		{
			name: "touching start",
			req:  api.CreateDateRequest{StartTime: hoursFromNow(1), EndTime: hoursFromNow(2)},
		},
		{
			name: "canceled dates skip the check",
			req:  api.CreateDateRequest{StartTime: hoursFromNow(2), EndTime: hoursFromNow(3), Status: "canceled"},
		},
		{
			name:    "booked cannot be set directly",
			req:     api.CreateDateRequest{StartTime: hoursFromNow(10), EndTime: hoursFromNow(11), Status: "booked"},
			wantErr: response.ErrBadRequest,
		},
		{
			name:    "end before start",
			req:     api.CreateDateRequest{StartTime: hoursFromNow(11), EndTime: hoursFromNow(10)},
			wantErr: response.ErrBadRequest,
		},
		{
			name:    "students cannot create dates",
			req:     api.CreateDateRequest{StartTime: hoursFromNow(20), EndTime: hoursFromNow(21)},
			student: true,
			wantErr: response.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := tutor
			if tt.student {
				actor = student
			}

			resp, err := env.Service.CreateDate(ctx, actor, &tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.msg != "" {
					_, body := response.Classify(err)
					assert.Equal(t, tt.msg, body.Message)
				}
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, existing.String(), resp.ID)
			_, err = uuid.Parse(resp.ID)
			assert.NoError(t, err)
		})
	}
}

func TestCreateDateStoresAdditionalInfo(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")

	_, err := env.Service.CreateDate(ctx, tutor, &api.CreateDateRequest{
		Title:          ptr("Conversation practice"),
		StartTime:      hoursFromNow(2),
		EndTime:        hoursFromNow(3),
		AdditionalInfo: map[string]any{"meeting_url": "https://meet.example.com/abc"},
	})
	require.NoError(t, err)

	list, err := env.Service.ListDates(ctx, tutor, &api.DateListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "available", list.Data[0].Status)
	assert.Equal(t, "Conversation practice", *list.Data[0].Title)
	assert.JSONEq(t, `{"meeting_url":"https://meet.example.com/abc"}`, string(list.Data[0].AdditionalInfo))
}

func TestListDates(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	other := env.Register(t, models.RoleTutor, "other@example.com")

	for i := 0; i < 5; i++ {
		env.CreateDate(t, tutor, 2+i, 60)
	}
	env.CreateDate(t, tutor, 26, 60) // next day
	env.CreateDate(t, other, 2, 60)

	t.Run("paginated", func(t *testing.T) {
		list, err := env.Service.ListDates(ctx, tutor, &api.DateListQuery{Page: 2, Limit: 2})
		require.NoError(t, err)

		assert.Equal(t, api.Pagination{Page: 2, Limit: 2, Total: 6}, list.Pagination)
		require.Len(t, list.Data, 2)
		assert.Equal(t, hoursFromNow(4), list.Data[0].StartTime)
		assert.Equal(t, hoursFromNow(5), list.Data[1].StartTime)
	})

	t.Run("by day", func(t *testing.T) {
		list, err := env.Service.ListDates(ctx, tutor, &api.DateListQuery{Page: 1, Limit: 100, Date: "2025-03-11"})
		require.NoError(t, err)

		assert.Equal(t, 1, list.Pagination.Total)
		require.Len(t, list.Data, 1)
		assert.Equal(t, hoursFromNow(26), list.Data[0].StartTime)
	})

	t.Run("by status", func(t *testing.T) {
		list, err := env.Service.ListDates(ctx, tutor, &api.DateListQuery{Page: 1, Limit: 10, Status: "booked"})
		require.NoError(t, err)
		assert.Empty(t, list.Data)
	})

	t.Run("defaults", func(t *testing.T) {
		list, err := env.Service.ListDates(ctx, tutor, &api.DateListQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, list.Pagination.Page)
		assert.Equal(t, 10, list.Pagination.Limit)
		assert.Len(t, list.Data, 6)
	})
}

func TestUpdateDate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	other := env.Register(t, models.RoleTutor, "other@example.com")

	first := env.CreateDate(t, tutor, 2, 60)  // [10:00, 11:00)
	second := env.CreateDate(t, tutor, 4, 60) // [12:00, 13:00)

	t.Run("move into another date", func(t *testing.T) {
		_, err := env.Service.UpdateDate(ctx, tutor, second, &api.UpdateDateRequest{StartTime: ptr(hoursFromNow(2.5))})
		assert.ErrorIs(t, err, response.ErrConflict)
	})

	t.Run("shrink within own interval", func(t *testing.T) {
		_, err := env.Service.UpdateDate(ctx, tutor, first, &api.UpdateDateRequest{EndTime: ptr(hoursFromNow(2.5))})
		assert.NoError(t, err)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := env.Service.UpdateDate(ctx, tutor, first, &api.UpdateDateRequest{EndTime: ptr(hoursFromNow(1))})
		assert.ErrorIs(t, err, response.ErrBadRequest)
	})

	t.Run("other tutor", func(t *testing.T) {
		_, err := env.Service.UpdateDate(ctx, other, first, &api.UpdateDateRequest{Title: ptr("mine")})
		assert.ErrorIs(t, err, response.ErrForbidden)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := env.Service.UpdateDate(ctx, tutor, uuid.New(), &api.UpdateDateRequest{Title: ptr("x")})
		assert.ErrorIs(t, err, response.ErrNotFound)
	})

	t.Run("reactivating a canceled date checks conflicts", func(t *testing.T) {
		_, err := env.Service.UpdateDate(ctx, tutor, second, &api.UpdateDateRequest{Status: ptr("canceled")})
		require.NoError(t, err)

		third := env.CreateDate(t, tutor, 4, 30) // takes the freed time

		_, err = env.Service.UpdateDate(ctx, tutor, second, &api.UpdateDateRequest{Status: ptr("available")})
		assert.ErrorIs(t, err, response.ErrConflict)

		require.NoError(t, env.Service.DeleteDate(ctx, tutor, third))

		_, err = env.Service.UpdateDate(ctx, tutor, second, &api.UpdateDateRequest{Status: ptr("available")})
		assert.NoError(t, err)
	})

	t.Run("booked status cannot be set directly", func(t *testing.T) {
		_, err := env.Service.UpdateDate(ctx, tutor, first, &api.UpdateDateRequest{Status: ptr("booked")})
		assert.ErrorIs(t, err, response.ErrBadRequest)
	})
}

func TestUpdateBookedDate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	dateID := env.CreateDate(t, tutor, 2, 60)
	env.Book(t, student, tutor, dateID)

	_, err := env.Service.UpdateDate(ctx, tutor, dateID, &api.UpdateDateRequest{StartTime: ptr(hoursFromNow(1.5))})
	assert.ErrorIs(t, err, response.ErrConflict)

	_, err = env.Service.UpdateDate(ctx, tutor, dateID, &api.UpdateDateRequest{Status: ptr("available")})
	assert.ErrorIs(t, err, response.ErrConflict)

	_, err = env.Service.UpdateDate(ctx, tutor, dateID, &api.UpdateDateRequest{Title: ptr("First lesson")})
	assert.NoError(t, err)
}

func TestReopenCanceledDate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	dateID := env.CreateDate(t, tutor, 2, 60)
	booking := env.Book(t, student, tutor, dateID)

	_, err := env.Service.UpdateLesson(ctx, tutor, uuid.MustParse(booking.LessonID), &api.UpdateLessonRequest{Status: ptr("canceled")})
	require.NoError(t, err)

	d, err := env.Store.GetDate(ctx, dateID)
	require.NoError(t, err)
	assert.Equal(t, models.DateCanceled, d.Status)
	assert.Nil(t, d.StudentID)

	_, err = env.Service.UpdateDate(ctx, tutor, dateID, &api.UpdateDateRequest{Status: ptr("available")})
	require.NoError(t, err)

	d, err = env.Store.GetDate(ctx, dateID)
	require.NoError(t, err)
	assert.Equal(t, models.DateAvailable, d.Status)
	assert.Nil(t, d.StudentID)

	public, err := env.Service.ListTutorDates(ctx, tutor.UserID, &api.TutorDatesQuery{})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Nil(t, public[0].StudentID)
}

func TestDeleteDate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	other := env.Register(t, models.RoleTutor, "other@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	free := env.CreateDate(t, tutor, 2, 60)
	booked := env.CreateDate(t, tutor, 4, 60)
	env.Book(t, student, tutor, booked)

	assert.ErrorIs(t, env.Service.DeleteDate(ctx, other, free), response.ErrForbidden)
	assert.ErrorIs(t, env.Service.DeleteDate(ctx, tutor, booked), response.ErrConflict)
	assert.ErrorIs(t, env.Service.DeleteDate(ctx, tutor, uuid.New()), response.ErrNotFound)

	require.NoError(t, env.Service.DeleteDate(ctx, tutor, free))

	list, err := env.Service.ListDates(ctx, tutor, &api.DateListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, booked.String(), list.Data[0].ID)
}

func TestListTutorDates(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	student := env.Register(t, models.RoleStudent, "student@example.com")

	env.CreateDate(t, tutor, 2, 60)
	booked := env.CreateDate(t, tutor, 4, 60)
	env.CreateDate(t, tutor, 30, 60)
	env.Book(t, student, tutor, booked)

	dates, err := env.Service.ListTutorDates(ctx, tutor.UserID, &api.TutorDatesQuery{})
	require.NoError(t, err)
	assert.Len(t, dates, 2)

	dates, err = env.Service.ListTutorDates(ctx, tutor.UserID, &api.TutorDatesQuery{FromDate: "2025-03-11"})
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, hoursFromNow(30), dates[0].StartTime)

	dates, err = env.Service.ListTutorDates(ctx, tutor.UserID, &api.TutorDatesQuery{Status: "booked"})
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, booked.String(), dates[0].ID)

	dates, err = env.Service.ListTutorDates(ctx, tutor.UserID, &api.TutorDatesQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, dates, 1)

	_, err = env.Service.ListTutorDates(ctx, student.UserID, &api.TutorDatesQuery{})
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = env.Service.ListTutorDates(ctx, uuid.New(), &api.TutorDatesQuery{})
	assert.ErrorIs(t, err, response.ErrNotFound)
}
