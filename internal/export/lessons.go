// Package export renders lesson lists as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tutor-service/api"
)

const (
	LessonsSheet = "Lessons"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	timeLayout = "2006-01-02 15:04"
)

var lessonHeader = []any{"Date", "Student", "Email", "Duration (min)", "Status", "Lesson ID"}

// WriteLessons writes an .xlsx workbook with one row per lesson.
func WriteLessons(w io.Writer, lessons []api.Lesson) error {
	const op = "export.WriteLessons"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LessonsSheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.SetSheetRow(LessonsSheet, "A1", &lessonHeader); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetRowStyle(LessonsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i, l := range lessons {
		var student, email string
		if l.Student != nil {
			student = l.Student.FirstName + " " + l.Student.LastName
			email = l.Student.Email
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		row := []any{
			l.ScheduledAt.UTC().Format(timeLayout),
			student,
			email,
			l.DurationMinutes,
			l.Status,
			l.ID,
		}
		if err := f.SetSheetRow(LessonsSheet, cell, &row); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := f.SetColWidth(LessonsSheet, "A", "F", 22); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
