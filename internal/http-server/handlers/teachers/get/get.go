package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/http-server/handlers"
)

type TeacherGetter interface {
	GetTeacher(ctx context.Context, teacherID uuid.UUID) (*api.Teacher, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, getter TeacherGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.teachers.get.New"

		log := handlers.Logger(log, r, op)

		id, err := handlers.PathUUID(r, "teacherId")
		if err != nil {
			handlers.Fail(w, r, log, getter, op, err)
			return
		}

		teacher, err := getter.GetTeacher(r.Context(), id)
		if err != nil {
			handlers.Fail(w, r, log, getter, op, err)
			return
		}

		render.JSON(w, r, teacher)
	}
}
