package tutordates

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/http-server/handlers"
	"tutor-service/internal/validation"
)

type TutorDatesLister interface {
	ListTutorDates(ctx context.Context, tutorID uuid.UUID, query *api.TutorDatesQuery) ([]api.Date, error)
	handlers.ErrorRecorder
}

type Response struct {
	Data []api.Date `json:"data"`
}

// New serves a tutor's calendar to anyone. Only available dates are
// shown unless ?status= says otherwise.
func New(log *slog.Logger, lister TutorDatesLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.public.tutordates.New"

		log := handlers.Logger(log, r, op)

		tutorID, err := handlers.PathUUID(r, "id")
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		limit, err := handlers.QueryInt(r, "limit", 0)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		query := &api.TutorDatesQuery{
			Status:   r.URL.Query().Get("status"),
			Date:     r.URL.Query().Get("date"),
			FromDate: r.URL.Query().Get("from_date"),
			Limit:    limit,
		}
		if err := validation.Struct(query); err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		dates, err := lister.ListTutorDates(r.Context(), tutorID, query)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		render.JSON(w, r, Response{Data: dates})
	}
}
