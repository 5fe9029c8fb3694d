package reset

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/http-server/handlers"
)

type PasswordResetter interface {
	ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.MessageResponse, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, resetter PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.reset.New"

		log := handlers.Logger(log, r, op)

		var req api.ResetPasswordRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, resetter, op, err)
			return
		}

		resp, err := resetter.ResetPassword(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, resetter, op, err)
			return
		}

		log.Info("password reset")

		render.JSON(w, r, resp)
	}
}
