package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/auth"
	xlsx "tutor-service/internal/export"
	"tutor-service/internal/http-server/handlers"
	"tutor-service/pkg/sl"
)

type LessonLister interface {
	ListTeacherLessons(ctx context.Context, actor auth.Principal, teacherID uuid.UUID) (*api.LessonList, error)
	handlers.ErrorRecorder
}

// New sends the tutor's lessons as an .xlsx attachment.
func New(log *slog.Logger, lister LessonLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.teachers.export.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		id, err := handlers.PathUUID(r, "teacherId")
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		lessons, err := lister.ListTeacherLessons(r.Context(), actor, id)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		// the workbook is built in memory so a failure can still be reported as JSON
		var buf bytes.Buffer
		if err := xlsx.WriteLessons(&buf, lessons.Data); err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		filename := fmt.Sprintf("lessons-%s.xlsx", time.Now().UTC().Format("20060102"))
		w.Header().Set("Content-Type", xlsx.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

		if _, err := buf.WriteTo(w); err != nil {
			log.Error("failed to write workbook", sl.Err(err))
			return
		}

		log.Info("lessons exported", slog.Int("count", len(lessons.Data)))
	}
}
