package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
)

type UserGetter interface {
	CurrentUser(ctx context.Context, actor auth.Principal) (*api.User, error)
	handlers.ErrorRecorder
}

type Response struct {
	User api.User `json:"user"`
}

func New(log *slog.Logger, getter UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.me.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, getter, op, err)
			return
		}

		user, err := getter.CurrentUser(r.Context(), actor)
		if err != nil {
			handlers.Fail(w, r, log, getter, op, err)
			return
		}

		render.JSON(w, r, Response{User: *user})
	}
}
