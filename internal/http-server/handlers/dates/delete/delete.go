package delete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
)

type DateDeleter interface {
	DeleteDate(ctx context.Context, actor auth.Principal, id uuid.UUID) error
	handlers.ErrorRecorder
}

func New(log *slog.Logger, deleter DateDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dates.delete.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, deleter, op, err)
			return
		}

		id, err := handlers.PathUUID(r, "id")
		if err != nil {
			handlers.Fail(w, r, log, deleter, op, err)
			return
		}

		if err := deleter.DeleteDate(r.Context(), actor, id); err != nil {
			handlers.Fail(w, r, log, deleter, op, err)
			return
		}

		log.Info("date deleted", slog.String("id", id.String()))

		w.WriteHeader(http.StatusNoContent)
	}
}
