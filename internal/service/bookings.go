package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/models"
	"tutor-service/internal/storage"
	"tutor-service/pkg/response"
	"tutor-service/pkg/sl"
)

// CreateBooking reserves an available date for the calling student and
// plans the lesson. Requests repeated with the same idempotency key get the
// stored response back.
func (s *Service) CreateBooking(ctx context.Context, actor auth.Principal, req *api.BookingRequest, idempotencyKey *string) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	if !actor.IsStudent() {
		return nil, fmt.Errorf("%s: %w", op, response.Forbidden("Only students can book lessons"))
	}

	dateID, err := uuid.Parse(req.DateID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("Invalid date_id"))
	}
	teacherID, err := uuid.Parse(req.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("Invalid teacher_id"))
	}

	var key string
	if idempotencyKey != nil && *idempotencyKey != "" {
		key = fmt.Sprintf("booking:%s:%s", actor.UserID, *idempotencyKey)

		cached, err := s.storedBooking(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if cached != nil {
			return cached, nil
		}

		locked, err := s.locker.Lock(ctx, key, inFlightTTL)
		if err != nil {
			return nil, fmt.Errorf("%s: lock error: %w", op, err)
		}
		if !locked {
			return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
		}
		defer func() {
			_ = s.locker.Unlock(context.WithoutCancel(ctx), key)
		}()

		// the holder we raced with may have finished before we got the lock
		cached, err = s.storedBooking(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	var (
		reservation *models.Reservation
		lesson      *models.Lesson
	)

	err = s.store.Tx(ctx, func(q storage.Querier) error {
		d, err := q.GetDateForUpdate(ctx, dateID)
		if err != nil {
			return notFoundAs(err, msgDateNotFound)
		}
		if d.TeacherID != teacherID {
			return response.Validation("Date does not belong to the selected teacher")
		}
		if d.Status != models.DateAvailable {
			return response.ErrSlotNotAvailable
		}
		if !d.StartTime.After(s.now()) {
			return response.Validation("Cannot book a date in the past")
		}

		booked, err := q.BookDate(ctx, d.ID, actor.UserID)
		if err != nil {
			return err
		}
		if !booked {
			return response.ErrSlotNotAvailable
		}

		reservation = &models.Reservation{
			StudentID:  actor.UserID,
			TermID:     d.ID,
			Status:     models.ReservationConfirmed,
			Notes:      bookingNotes(req),
			ReservedAt: s.now(),
		}
		if err := q.CreateReservation(ctx, reservation); err != nil {
			if errors.Is(err, response.ErrConflict) {
				return response.ErrSlotNotAvailable
			}
			return err
		}

		lesson = &models.Lesson{
			ReservationID:   reservation.ID,
			TeacherID:       d.TeacherID,
			StudentID:       actor.UserID,
			ScheduledAt:     d.StartTime,
			DurationMinutes: d.DurationMinutes(),
			Status:          models.LessonPlanned,
		}
		if err := q.CreateLesson(ctx, lesson); err != nil {
			return err
		}

		return syncAggregates(ctx, q, d.TeacherID, actor.UserID)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &api.BookingResponse{
		Message:       "Lesson booked successfully",
		ID:            reservation.ID.String(),
		ReservationID: reservation.ID.String(),
		LessonID:      lesson.ID.String(),
	}

	if key != "" {
		if err := s.results.Put(ctx, key, resp, idempotencyTTL); err != nil {
			s.log.Warn("failed to store idempotent result", slog.String("key", key), sl.Err(err))
		}
	}

	return resp, nil
}

func (s *Service) storedBooking(ctx context.Context, key string) (*api.BookingResponse, error) {
	var cached api.BookingResponse
	found, err := s.results.Get(ctx, key, &cached)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &cached, nil
}

// bookingNotes appends the declared language level to the notes of a
// first lesson.
func bookingNotes(req *api.BookingRequest) *string {
	var notes string
	if req.Notes != nil {
		notes = strings.TrimSpace(*req.Notes)
	}

	if req.IsFirstLesson && req.LanguageLevel != "" {
		level := "Language level: " + req.LanguageLevel
		if notes == "" {
			notes = level
		} else {
			notes += "\n\n" + level
		}
	}

	if notes == "" {
		return nil
	}
	return &notes
}

// syncAggregates recomputes the counters touched by a change of one of the
// pair's lessons. It must run in the same transaction as the change.
func syncAggregates(ctx context.Context, q storage.Querier, teacherID, studentID uuid.UUID) error {
	if err := q.RecalculateTeacherStudent(ctx, teacherID, studentID); err != nil {
		return err
	}
	return q.RecalculateTeacherTotals(ctx, teacherID)
}
