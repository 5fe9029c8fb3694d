package lessons

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
)

type LessonLister interface {
	ListTeacherLessons(ctx context.Context, actor auth.Principal, teacherID uuid.UUID) (*api.LessonList, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, lister LessonLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.teachers.lessons.New"

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

		render.JSON(w, r, lessons)
	}
}
