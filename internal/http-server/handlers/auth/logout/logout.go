package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
)

type SessionCloser interface {
	Logout(ctx context.Context, actor auth.Principal) error
	handlers.ErrorRecorder
}

func New(log *slog.Logger, closer SessionCloser, cookie auth.CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.logout.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, closer, op, err)
			return
		}

		if err := closer.Logout(r.Context(), actor); err != nil {
			handlers.Fail(w, r, log, closer, op, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookie.Name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cookie.Secure,
			SameSite: http.SameSiteLaxMode,
		})

		log.Info("user logged out", slog.String("user_id", actor.UserID.String()))

		render.JSON(w, r, api.MessageResponse{Message: "Logged out successfully"})
	}
}
