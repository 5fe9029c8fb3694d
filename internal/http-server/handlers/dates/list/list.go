package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
	"tutor-service/internal/validation"
)

type DateLister interface {
	ListDates(ctx context.Context, actor auth.Principal, query *api.DateListQuery) (*api.DateList, error)
	handlers.ErrorRecorder
}

// New lists the caller's own dates, filtered by ?date=YYYY-MM-DD and
// ?status=, paginated by ?page= and ?limit=.
func New(log *slog.Logger, lister DateLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dates.list.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		query, err := parseQuery(r)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		dates, err := lister.ListDates(r.Context(), actor, query)
		if err != nil {
			handlers.Fail(w, r, log, lister, op, err)
			return
		}

		log.Debug("dates listed", slog.Int("count", len(dates.Data)), slog.Int("total", dates.Pagination.Total))

		render.JSON(w, r, dates)
	}
}

func parseQuery(r *http.Request) (*api.DateListQuery, error) {
	page, err := handlers.QueryInt(r, "page", 1)
	if err != nil {
		return nil, err
	}
	limit, err := handlers.QueryInt(r, "limit", 10)
	if err != nil {
		return nil, err
	}

	query := &api.DateListQuery{
		Page:   page,
		Limit:  limit,
		Date:   r.URL.Query().Get("date"),
		Status: r.URL.Query().Get("status"),
	}
	if err := validation.Struct(query); err != nil {
		return nil, err
	}

	return query, nil
}
