package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/http-server/handlers"
)

type Registrar interface {
	Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, registrar Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.register.New"

		log := handlers.Logger(log, r, op)

		var req api.RegisterRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, registrar, op, err)
			return
		}

		resp, err := registrar.Register(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, registrar, op, err)
			return
		}

		log.Info("user registered", slog.String("user_id", resp.User.ID), slog.String("role", resp.User.Role))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}
