package update

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

type ProfileUpdater interface {
	UpdateTeacherProfile(ctx context.Context, actor auth.Principal, teacherID uuid.UUID, req *api.UpdateTeacherRequest) (*api.Teacher, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, updater ProfileUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.teachers.update.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		id, err := handlers.PathUUID(r, "teacherId")
		if err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		var req api.UpdateTeacherRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		teacher, err := updater.UpdateTeacherProfile(r.Context(), actor, id, &req)
		if err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		log.Info("teacher profile updated", slog.String("teacher_id", teacher.ID))

		render.JSON(w, r, teacher)
	}
}
