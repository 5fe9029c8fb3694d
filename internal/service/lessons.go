package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/models"
	"tutor-service/internal/storage"
	"tutor-service/pkg/response"
)

// UpdateLesson changes the status or schedule of a lesson. A planned
// lesson can be completed or canceled, finished lessons stay as they are.
func (s *Service) UpdateLesson(ctx context.Context, actor auth.Principal, id uuid.UUID, req *api.UpdateLessonRequest) (*api.Lesson, error) {
	const op = "service.UpdateLesson"

	var updated models.Lesson

	err := s.store.Tx(ctx, func(q storage.Querier) error {
		l, err := q.GetLessonForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, "Lesson not found")
		}
		if l.TeacherID != actor.UserID {
			return response.Forbidden("Insufficient permissions to update this lesson")
		}

		current := l.Status
		if current.Terminal() && (req.ScheduledAt != nil || req.DurationMinutes != nil) {
			return response.Conflict(fmt.Sprintf("Lesson is already %s", current))
		}
		prevStart, prevDuration := l.ScheduledAt, l.DurationMinutes
		if req.ScheduledAt != nil {
			l.ScheduledAt = req.ScheduledAt.UTC()
		}
		if req.DurationMinutes != nil {
			l.DurationMinutes = *req.DurationMinutes
		}
		if !l.ScheduledAt.Equal(prevStart) || l.DurationMinutes != prevDuration {
			if err := moveLessonDate(ctx, q, l); err != nil {
				return err
			}
		}

		statusChanged := false
		if req.Status != nil && models.LessonStatus(*req.Status) != current {
			next := models.LessonStatus(*req.Status)
			if current.Terminal() || next == models.LessonPlanned {
				return response.Conflict(fmt.Sprintf("Lesson cannot change from %s to %s", current, next))
			}

			switch next {
			case models.LessonCompleted:
				if err := q.SetReservationStatus(ctx, l.ReservationID, models.ReservationCompleted); err != nil {
					return err
				}
			case models.LessonCanceled:
				if err := q.SetReservationStatus(ctx, l.ReservationID, models.ReservationCanceled); err != nil {
					return err
				}
				r, err := q.GetReservation(ctx, l.ReservationID)
				if err != nil {
					return err
				}
				if err := q.SetDateStatus(ctx, r.TermID, models.DateCanceled); err != nil {
					return err
				}
			}

			l.Status = next
			statusChanged = true
		}

		if err := q.UpdateLesson(ctx, l); err != nil {
			return err
		}

		if statusChanged {
			if err := syncAggregates(ctx, q, l.TeacherID, l.StudentID); err != nil {
				return err
			}
		}

		updated = *l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lesson := toLesson(updated)
	return &lesson, nil
}

// moveLessonDate keeps the booked date on the lesson's interval so the
// calendar still blocks the time the lesson actually takes.
func moveLessonDate(ctx context.Context, q storage.Querier, l *models.Lesson) error {
	r, err := q.GetReservation(ctx, l.ReservationID)
	if err != nil {
		return err
	}
	d, err := q.GetDateForUpdate(ctx, r.TermID)
	if err != nil {
		return err
	}

	d.StartTime = l.ScheduledAt
	d.EndTime = l.ScheduledAt.Add(time.Duration(l.DurationMinutes) * time.Minute)

	if d.Status.Blocks() {
		if err := checkConflicts(ctx, q, d.TeacherID, d.StartTime, d.EndTime, &d.ID); err != nil {
			return err
		}
	}

	return conflictAs(q.UpdateDate(ctx, d))
}

func (s *Service) ListTeacherLessons(ctx context.Context, actor auth.Principal, teacherID uuid.UUID) (*api.LessonList, error) {
	const op = "service.ListTeacherLessons"

	if err := requireSelf(actor, teacherID, "Insufficient permissions to view these lessons"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lessons, err := s.store.ListLessons(ctx, models.LessonFilter{TeacherID: &teacherID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &api.LessonList{Data: make([]api.Lesson, 0, len(lessons))}
	for _, v := range lessons {
		l := toLesson(v.Lesson)
		l.Student = toUserSummary(v.Student)
		result.Data = append(result.Data, l)
	}

	return result, nil
}

// ListStudentLessons splits the student's lessons into upcoming ones and
// the ones already held. Canceled lessons are in neither list.
func (s *Service) ListStudentLessons(ctx context.Context, actor auth.Principal, studentID uuid.UUID) (*api.StudentLessons, error) {
	const op = "service.ListStudentLessons"

	if err := requireSelf(actor, studentID, "Insufficient permissions to view these lessons"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lessons, err := s.store.ListLessons(ctx, models.LessonFilter{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	result := &api.StudentLessons{
		UpcomingLessons:  make([]api.Lesson, 0),
		CompletedLessons: make([]api.Lesson, 0),
		TotalLessons:     len(lessons),
	}

	// lessons come newest first, upcoming ones read better soonest first
	for i := len(lessons) - 1; i >= 0; i-- {
		v := lessons[i]
		if v.Status == models.LessonCanceled {
			continue
		}

		l := toLesson(v.Lesson)
		l.Teacher = toUserSummary(v.Teacher)

		if v.Status == models.LessonCompleted || !v.ScheduledAt.After(now) {
			result.CompletedLessons = append([]api.Lesson{l}, result.CompletedLessons...)
			continue
		}
		result.UpcomingLessons = append(result.UpcomingLessons, l)
	}

	return result, nil
}
