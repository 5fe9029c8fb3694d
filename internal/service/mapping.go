package service

import (
	"encoding/json"
	"fmt"

	"tutor-service/api"
	"tutor-service/internal/models"
	"tutor-service/pkg/response"
)

func toDate(d models.Date) api.Date {
	var studentID *string
	if d.StudentID != nil {
		id := d.StudentID.String()
		studentID = &id
	}

	return api.Date{
		ID:             d.ID.String(),
		TeacherID:      d.TeacherID.String(),
		StudentID:      studentID,
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		Status:         string(d.Status),
		Title:          d.Title,
		Description:    d.Description,
		AdditionalInfo: d.AdditionalInfo,
	}
}

func toUserSummary(u models.UserSummary) *api.UserSummary {
	created := u.ProfileCreatedAt
	return &api.UserSummary{
		ID:               u.ID.String(),
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		ProfileCreatedAt: &created,
	}
}

func toLesson(l models.Lesson) api.Lesson {
	return api.Lesson{
		ID:              l.ID.String(),
		ReservationID:   l.ReservationID.String(),
		ScheduledAt:     l.ScheduledAt,
		DurationMinutes: l.DurationMinutes,
		Status:          string(l.Status),
	}
}

func toUser(u *models.User) api.User {
	return api.User{
		ID:               u.ID.String(),
		Email:            u.Email,
		Role:             string(u.Role),
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		ProfileCreatedAt: u.ProfileCreatedAt,
		LastLoginAt:      u.LastLoginAt,
	}
}

func toTeacher(t models.TeacherProfile) api.Teacher {
	return api.Teacher{
		ID:               t.TeacherID.String(),
		FirstName:        t.FirstName,
		LastName:         t.LastName,
		Bio:              t.Bio,
		Description:      t.Description,
		LessonsCompleted: t.LessonsCompleted,
		LessonsPlanned:   t.LessonsPlanned,
	}
}

func marshalInfo(info map[string]any) (json.RawMessage, error) {
	if info == nil {
		return nil, nil
	}

	raw, err := json.Marshal(info)
	if err != nil {
		return nil, response.Validation(fmt.Sprintf("additional_info is not valid JSON: %v", err))
	}

	return raw, nil
}
