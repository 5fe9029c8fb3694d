package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
)

type Authenticator interface {
	Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error)
	handlers.ErrorRecorder
}

// New signs the user in. The access token is returned in the body and
// also set as an HttpOnly cookie for browser clients.
func New(log *slog.Logger, authenticator Authenticator, cookie auth.CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

		log := handlers.Logger(log, r, op)

		var req api.LoginRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, authenticator, op, err)
			return
		}

		resp, err := authenticator.Login(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, authenticator, op, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookie.Name,
			Value:    resp.AccessToken,
			Path:     "/",
			Expires:  resp.ExpiresAt,
			HttpOnly: true,
			Secure:   cookie.Secure,
			SameSite: http.SameSiteLaxMode,
		})

		log.Info("user logged in", slog.String("user_id", resp.User.ID))

		render.JSON(w, r, resp)
	}
}
