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

type LessonUpdater interface {
	UpdateLesson(ctx context.Context, actor auth.Principal, id uuid.UUID, req *api.UpdateLessonRequest) (*api.Lesson, error)
	handlers.ErrorRecorder
}

type Response struct {
	Message string     `json:"message"`
	Lesson  api.Lesson `json:"lesson"`
}

// New changes the status or schedule of a lesson. Completing or canceling
// it updates the reservation and the student counters too.
func New(log *slog.Logger, updater LessonUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.update.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		id, err := handlers.PathUUID(r, "id")
		if err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		var req api.UpdateLessonRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		lesson, err := updater.UpdateLesson(r.Context(), actor, id, &req)
		if err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		log.Info("lesson updated", slog.String("id", lesson.ID), slog.String("status", lesson.Status))

		render.JSON(w, r, Response{Message: "Lesson updated successfully", Lesson: *lesson})
	}
}
