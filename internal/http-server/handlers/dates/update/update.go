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

type DateUpdater interface {
	UpdateDate(ctx context.Context, actor auth.Principal, id uuid.UUID, req *api.UpdateDateRequest) (*api.MessageResponse, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, updater DateUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dates.update.New"

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

		var req api.UpdateDateRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		resp, err := updater.UpdateDate(r.Context(), actor, id, &req)
		if err != nil {
			handlers.Fail(w, r, log, updater, op, err)
			return
		}

		log.Info("date updated", slog.String("id", id.String()))

		render.JSON(w, r, resp)
	}
}
