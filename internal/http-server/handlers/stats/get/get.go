package get

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

type StatsGetter interface {
	GetStats(ctx context.Context, actor auth.Principal, userID uuid.UUID) (*api.Stats, error)
	handlers.ErrorRecorder
}

// New returns the profile counters of the caller. The fields depend on
// the caller's role.
func New(log *slog.Logger, getter StatsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stats.get.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, getter, op, err)
			return
		}

		id, err := handlers.PathUUID(r, "userId")
		if err != nil {
			handlers.Fail(w, r, log, getter, op, err)
			return
		}

		stats, err := getter.GetStats(r.Context(), actor, id)
		if err != nil {
			handlers.Fail(w, r, log, getter, op, err)
			return
		}

		render.JSON(w, r, stats)
	}
}
