package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
)

type DateCreator interface {
	CreateDate(ctx context.Context, actor auth.Principal, req *api.CreateDateRequest) (*api.MessageResponse, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, creator DateCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dates.create.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, creator, op, err)
			return
		}

		var req api.CreateDateRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, creator, op, err)
			return
		}

		resp, err := creator.CreateDate(r.Context(), actor, &req)
		if err != nil {
			handlers.Fail(w, r, log, creator, op, err)
			return
		}

		log.Info("date created", slog.String("id", resp.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}
