package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers"
)

type BookingCreator interface {
	CreateBooking(ctx context.Context, actor auth.Principal, req *api.BookingRequest, idempotencyKey *string) (*api.BookingResponse, error)
	handlers.ErrorRecorder
}

// New books a date for the calling student. Requests carrying the same
// Idempotency-Key header get the first booking back.
func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

		log := handlers.Logger(log, r, op)

		actor, err := handlers.Actor(r)
		if err != nil {
			handlers.Fail(w, r, log, creator, op, err)
			return
		}

		var req api.BookingRequest
		if err := handlers.Decode(r, &req); err != nil {
			handlers.Fail(w, r, log, creator, op, err)
			return
		}

		log.Debug("request body decoded", slog.String("date_id", req.DateID), slog.String("teacher_id", req.TeacherID))

		idempotencyKey := r.Header.Get("Idempotency-Key")
		var idempotencyKeyPtr *string
		if idempotencyKey != "" {
			idempotencyKeyPtr = &idempotencyKey
		}

		booking, err := creator.CreateBooking(r.Context(), actor, &req, idempotencyKeyPtr)
		if err != nil {
			handlers.Fail(w, r, log, creator, op, err)
			return
		}

		log.Info("booking created",
			slog.String("reservation_id", booking.ReservationID),
			slog.String("lesson_id", booking.LessonID),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, booking)
	}
}
