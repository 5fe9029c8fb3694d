package students

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

type StudentLister interface {
	ListTeacherStudents(ctx context.Context, actor auth.Principal, teacherID uuid.UUID) (*api.StudentList, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, lister StudentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.teachers.students.New"

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

		students, err := lister.ListTeacherStudents(r.Context(), actor, id)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		render.JSON(w, r, students)
	}
}
