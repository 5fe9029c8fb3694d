package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/http-server/handlers"
)

type TeacherLister interface {
	ListTeachers(ctx context.Context) (*api.TeacherList, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, lister TeacherLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.teachers.list.New"

		log := handlers.Logger(log, r, op)

		teachers, err := lister.ListTeachers(r.Context())
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		render.JSON(w, r, teachers)
	}
}
