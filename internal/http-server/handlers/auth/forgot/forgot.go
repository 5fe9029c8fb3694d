package forgot

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/http-server/handlers"
)

type ResetRequester interface {
	ForgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (*api.MessageResponse, error)
	handlers.ErrorRecorder
}

func New(log *slog.Logger, requester ResetRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.forgot.New"

		log := handlers.Logger(log, r, op)

		var req api.ForgotPasswordRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, requester, op, err)
			return
		}

		resp, err := requester.ForgotPassword(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, requester, op, err)
			return
		}

		render.JSON(w, r, resp)
	}
}
