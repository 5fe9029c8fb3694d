package removestudent

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
)

type StudentRemover interface {
	RemoveTeacherStudent(ctx context.Context, actor auth.Principal, teacherID, studentID uuid.UUID) error
	handlers.ErrorRecorder
}

func New(log *slog.Logger, remover StudentRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.teachers.removestudent.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, remover, op, err)
			return
		}

		teacherID, err := handlers.PathUUID(r, "teacherId")
		if err != nil {
			handlers.Fail(w, r, log, remover, op, err)
			return
		}

		studentID, err := handlers.PathUUID(r, "studentId")
		if err != nil {
			handlers.Fail(w, r, log, remover, op, err)
			return
		}

		if err := remover.RemoveTeacherStudent(r.Context(), actor, teacherID, studentID); err != nil {
			handlers.Fail(w, r, log, remover, op, err)
			return
		}

		log.Info("student removed", slog.String("student_id", studentID.String()))

		w.WriteHeader(http.StatusNoContent)
	}
}
