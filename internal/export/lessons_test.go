package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tutor-service/api"
)

func TestWriteLessons(t *testing.T) {
	lessons := []api.Lesson{
		{
			ID:              "lesson-1",
			ScheduledAt:     time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
			Status:          "completed",
			Student:         &api.UserSummary{FirstName: "Ivan", LastName: "Petrov", Email: "ivan@example.com"},
		},
		{
			ID:              "lesson-2",
			ScheduledAt:     time.Date(2025, 3, 12, 14, 30, 0, 0, time.UTC),
			DurationMinutes: 45,
			Status:          "planned",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLessons(&buf, lessons))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(LessonsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Date", "Student", "Email", "Duration (min)", "Status", "Lesson ID"}, rows[0])
	assert.Equal(t, []string{"2025-03-10 10:00", "Ivan Petrov", "ivan@example.com", "60", "completed", "lesson-1"}, rows[1])
	assert.Equal(t, []string{"2025-03-12 14:30", "", "", "45", "planned", "lesson-2"}, rows[2])
}

func TestWriteLessonsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLessons(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(LessonsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
