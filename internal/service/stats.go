package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/models"
)

func (s *Service) GetStats(ctx context.Context, actor auth.Principal, userID uuid.UUID) (*api.Stats, error) {
	const op = "service.GetStats"

	if err := requireSelf(actor, userID, "Insufficient permissions to view these statistics"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	completed := models.LessonCompleted
	planned := models.LessonPlanned

	if actor.IsTutor() {
		active, err := s.store.CountTeacherStudents(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, 0)
		thisMonth, err := s.store.LessonTotals(ctx, models.LessonFilter{
			TeacherID: &userID, Status: &completed, From: &monthStart, To: &monthEnd,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		upcoming, err := s.store.LessonTotals(ctx, models.LessonFilter{
			TeacherID: &userID, Status: &planned, From: &now,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &api.Stats{TutorStats: &api.TutorStats{
			ActiveStudents:   active,
			LessonsThisMonth: thisMonth.Count,
			PlannedLessons:   upcoming.Count,
		}}, nil
	}

	done, err := s.store.LessonTotals(ctx, models.LessonFilter{StudentID: &userID, Status: &completed})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	upcoming, err := s.store.LessonTotals(ctx, models.LessonFilter{StudentID: &userID, Status: &planned, From: &now})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.Stats{StudentStats: &api.StudentStats{
		LessonsCompleted: done.Count,
		LessonsPlanned:   upcoming.Count,
		TotalHours:       int(math.Round(float64(done.Minutes) / 60)),
	}}, nil
}
