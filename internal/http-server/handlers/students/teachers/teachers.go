package teachers

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

type TeacherLister interface {
	ListStudentTeachers(ctx context.Context, actor auth.Principal, studentID uuid.UUID) (*api.StudentTeacherList, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, lister TeacherLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.teachers.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		id, err := handlers.PathUUID(r, "studentId")
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		teachers, err := lister.ListStudentTeachers(r.Context(), actor, id)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		render.JSON(w, r, teachers)
	}
}
