package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/models"
	"tutor-service/internal/storage"
	"tutor-service/pkg/response"
)

const (
	msgDateConflict = "Time slot conflicts with existing date"
	msgDateNotFound = "Date not found"

	defaultPageLimit = 10
)

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, response.Validation("Invalid date format, expected YYYY-MM-DD")
	}
	return &day, nil
}

func (s *Service) ListDates(ctx context.Context, actor auth.Principal, query *api.DateListQuery) (*api.DateList, error) {
	const op = "service.ListDates"

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = defaultPageLimit
	}

	day, err := parseDay(query.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filter := models.DateFilter{
		TeacherID: actor.UserID,
		Day:       day,
		Offset:    (query.Page - 1) * query.Limit,
		Limit:     query.Limit,
	}
	if query.Status != "" {
		status := models.DateStatus(query.Status)
		filter.Status = &status
	}

	dates, total, err := s.store.ListDates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &api.DateList{
		Data: make([]api.Date, 0, len(dates)),
		Pagination: api.Pagination{
			Page:  query.Page,
			Limit: query.Limit,
			Total: total,
		},
	}
	for _, d := range dates {
		result.Data = append(result.Data, toDate(d))
	}

	return result, nil
}

func (s *Service) ListTutorDates(ctx context.Context, tutorID uuid.UUID, query *api.TutorDatesQuery) ([]api.Date, error) {
	const op = "service.ListTutorDates"

	tutor, err := s.store.GetUser(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFoundAs(err, "Tutor not found"))
	}
	if tutor.Role != models.RoleTutor {
		return nil, fmt.Errorf("%s: %w", op, response.NotFound("Tutor not found"))
	}

	day, err := parseDay(query.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	from, err := parseDay(query.FromDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := models.DateAvailable
	if query.Status != "" {
		status = models.DateStatus(query.Status)
	}

	dates, _, err := s.store.ListDates(ctx, models.DateFilter{
		TeacherID: tutorID,
		Status:    &status,
		Day:       day,
		From:      from,
		Limit:     query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.Date, 0, len(dates))
	for _, d := range dates {
		result = append(result, toDate(d))
	}

	return result, nil
}

func (s *Service) CreateDate(ctx context.Context, actor auth.Principal, req *api.CreateDateRequest) (*api.MessageResponse, error) {
	const op = "service.CreateDate"

	if !actor.IsTutor() {
		return nil, fmt.Errorf("%s: %w", op, response.Forbidden("Only tutors can create dates"))
	}

	status := models.DateAvailable
	if req.Status != "" {
		status = models.DateStatus(req.Status)
	}
	if status == models.DateBooked {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("Dates become booked only through a reservation"))
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("End time must be after start time"))
	}

	info, err := marshalInfo(req.AdditionalInfo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	date := &models.Date{
		TeacherID:      actor.UserID,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		Status:         status,
		Title:          req.Title,
		Description:    req.Description,
		AdditionalInfo: info,
	}

	err = s.store.Tx(ctx, func(q storage.Querier) error {
		if status.Blocks() {
			if err := checkConflicts(ctx, q, date.TeacherID, date.StartTime, date.EndTime, nil); err != nil {
				return err
			}
		}
		return conflictAs(q.CreateDate(ctx, date))
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.MessageResponse{Message: "Date created successfully", ID: date.ID.String()}, nil
}

func (s *Service) UpdateDate(ctx context.Context, actor auth.Principal, id uuid.UUID, req *api.UpdateDateRequest) (*api.MessageResponse, error) {
	const op = "service.UpdateDate"

	err := s.store.Tx(ctx, func(q storage.Querier) error {
		d, err := q.GetDateForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, msgDateNotFound)
		}
		if d.TeacherID != actor.UserID {
			return response.Forbidden("Insufficient permissions to update this date")
		}

		next := *d
		if req.StartTime != nil {
			next.StartTime = req.StartTime.UTC()
		}
		if req.EndTime != nil {
			next.EndTime = req.EndTime.UTC()
		}
		if req.Status != nil {
			next.Status = models.DateStatus(*req.Status)
		}
		if req.Title != nil {
			next.Title = req.Title
		}
		if req.Description != nil {
			next.Description = req.Description
		}
		if req.AdditionalInfo != nil {
			if next.AdditionalInfo, err = marshalInfo(req.AdditionalInfo); err != nil {
				return err
			}
		}

		if !next.EndTime.After(next.StartTime) {
			return response.Validation("End time must be after start time")
		}

		rescheduled := !next.StartTime.Equal(d.StartTime) || !next.EndTime.Equal(d.EndTime)

		if next.Status == models.DateBooked && d.Status != models.DateBooked {
			return response.Validation("Dates become booked only through a reservation")
		}
		if d.Status == models.DateBooked {
			if rescheduled {
				return response.Conflict("Booked dates cannot be rescheduled")
			}
			if next.Status != models.DateBooked {
				active, err := q.CountActiveReservations(ctx, d.ID)
				if err != nil {
					return err
				}
				if active > 0 {
					return response.Conflict("Date has a confirmed reservation, cancel the lesson instead")
				}
			}
		}
		// only a booked date names its student
		if next.Status != models.DateBooked {
			next.StudentID = nil
		}

		reactivated := !d.Status.Blocks() && next.Status.Blocks()
		if next.Status.Blocks() && (rescheduled || reactivated) {
			if err := checkConflicts(ctx, q, d.TeacherID, next.StartTime, next.EndTime, &d.ID); err != nil {
				return err
			}
		}

		return conflictAs(q.UpdateDate(ctx, &next))
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.MessageResponse{Message: "Date updated successfully", ID: id.String()}, nil
}

func (s *Service) DeleteDate(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	const op = "service.DeleteDate"

	err := s.store.Tx(ctx, func(q storage.Querier) error {
		d, err := q.GetDateForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, msgDateNotFound)
		}
		if d.TeacherID != actor.UserID {
			return response.Forbidden("Insufficient permissions to delete this date")
		}

		active, err := q.CountActiveReservations(ctx, d.ID)
		if err != nil {
			return err
		}
		if active > 0 {
			return response.Conflict("Cannot delete date with confirmed reservations")
		}

		return q.DeleteDate(ctx, d.ID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// checkConflicts takes the teacher's schedule lock and fails when
// [start, end) overlaps any of the teacher's non-canceled dates.
func checkConflicts(ctx context.Context, q storage.Querier, teacherID uuid.UUID, start, end time.Time, exclude *uuid.UUID) error {
	if err := q.LockTeacherSchedule(ctx, teacherID); err != nil {
		return err
	}

	ids, err := q.FindOverlappingDates(ctx, teacherID, start, end, exclude)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return response.Conflict(msgDateConflict)
	}

	return nil
}

// conflictAs reports a constraint violation on dates with the same
// message as the explicit check.
func conflictAs(err error) error {
	var de *response.DomainError
	if err != nil && errors.Is(err, response.ErrConflict) && !errors.As(err, &de) {
		return response.Conflict(msgDateConflict)
	}
	return err
}
