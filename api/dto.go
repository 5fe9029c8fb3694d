package api

import (
	"encoding/json"
	"time"
)

type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// #### dates ####

type Date struct {
	ID             string          `json:"id"`
	TeacherID      string          `json:"teacher_id"`
	StudentID      *string         `json:"student_id"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	Status         string          `json:"status"`
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	AdditionalInfo json.RawMessage `json:"additional_info,omitempty"`
}

type DateList struct {
	Data       []Date     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type DateListQuery struct {
	Page   int    `json:"page" validate:"min=1"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status string `json:"status" validate:"omitempty,oneof=available booked canceled other"`
}

type TutorDatesQuery struct {
	Status   string `json:"status" validate:"omitempty,oneof=available booked canceled other"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	FromDate string `json:"from_date" validate:"omitempty,datetime=2006-01-02"`
	Limit    int    `json:"limit" validate:"min=0,max=100"`
}

type CreateDateRequest struct {
	Title          *string        `json:"title" validate:"omitempty,max=200"`
	Description    *string        `json:"description" validate:"omitempty,max=2000"`
	StartTime      time.Time      `json:"start_time" validate:"required"`
	EndTime        time.Time      `json:"end_time" validate:"required,gtfield=StartTime"`
	Status         string         `json:"status" validate:"omitempty,oneof=available booked canceled other"`
	AdditionalInfo map[string]any `json:"additional_info"`
}

type UpdateDateRequest struct {
	Title          *string        `json:"title" validate:"omitempty,max=200"`
	Description    *string        `json:"description" validate:"omitempty,max=2000"`
	StartTime      *time.Time     `json:"start_time"`
	EndTime        *time.Time     `json:"end_time"`
	Status         *string        `json:"status" validate:"omitempty,oneof=available booked canceled other"`
	AdditionalInfo map[string]any `json:"additional_info"`
}

// #### bookings ####

type BookingRequest struct {
	DateID        string  `json:"date_id" validate:"required,uuid"`
	TeacherID     string  `json:"teacher_id" validate:"required,uuid"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
	IsFirstLesson bool    `json:"is_first_lesson"`
	LanguageLevel string  `json:"language_level" validate:"omitempty,oneof=beginner intermediate advanced"`
}

type BookingResponse struct {
	Message       string `json:"message"`
	ID            string `json:"id"`
	ReservationID string `json:"reservation_id"`
	LessonID      string `json:"lesson_id"`
}

// #### lessons ####

type UserSummary struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	ProfileCreatedAt *time.Time `json:"profile_created_at,omitempty"`
}

type Lesson struct {
	ID              string       `json:"id"`
	ReservationID   string       `json:"reservation_id"`
	ScheduledAt     time.Time    `json:"scheduled_at"`
	DurationMinutes int          `json:"duration_minutes"`
	Status          string       `json:"status"`
	Teacher         *UserSummary `json:"teacher,omitempty"`
	Student         *UserSummary `json:"student,omitempty"`
}

type LessonList struct {
	Data []Lesson `json:"data"`
}

type UpdateLessonRequest struct {
	Status          *string    `json:"status" validate:"omitempty,oneof=planned completed canceled"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,min=1,max=1440"`
}

type StudentLessons struct {
	UpcomingLessons  []Lesson `json:"upcoming_lessons"`
	CompletedLessons []Lesson `json:"completed_lessons"`
	TotalLessons     int      `json:"total_lessons"`
}

// #### teachers & students ####

type Teacher struct {
	ID               string  `json:"id"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Bio              *string `json:"bio"`
	Description      *string `json:"description"`
	LessonsCompleted int     `json:"lessons_completed"`
	LessonsPlanned   int     `json:"lessons_planned"`
}

type TeacherList struct {
	Data []Teacher `json:"data"`
}

type UpdateTeacherRequest struct {
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type StudentOfTeacher struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	ProfileCreatedAt time.Time `json:"profile_created_at"`
	LessonsCompleted int       `json:"lessons_completed"`
	LessonsReserved  int       `json:"lessons_reserved"`
}

type StudentList struct {
	Data []StudentOfTeacher `json:"data"`
}

type TeacherOfStudent struct {
	ID                    string    `json:"id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	Email                 string    `json:"email"`
	ProfileCreatedAt      time.Time `json:"profile_created_at"`
	Bio                   *string   `json:"bio"`
	Description           *string   `json:"description"`
	LessonsCompleted      int       `json:"lessons_completed"`
	LessonsReserved       int       `json:"lessons_reserved"`
	TotalLessonsCompleted int       `json:"total_lessons_completed"`
}

type StudentTeacherList struct {
	Data []TeacherOfStudent `json:"data"`
}

// #### stats ####

type TutorStats struct {
	ActiveStudents   int `json:"active_students"`
	LessonsThisMonth int `json:"lessons_this_month"`
	PlannedLessons   int `json:"planned_lessons"`
}

type StudentStats struct {
	LessonsCompleted int `json:"lessons_completed"`
	LessonsPlanned   int `json:"lessons_planned"`
	TotalHours       int `json:"total_hours"`
}

// Stats is flattened to the fields of whichever role the user has.
type Stats struct {
	*TutorStats
	*StudentStats
}

// #### auth ####

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	ProfileCreatedAt time.Time  `json:"profile_created_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"notblank,min=2,max=100"`
	LastName        string `json:"last_name" validate:"notblank,min=2,max=100"`
	Role            string `json:"role" validate:"required,oneof=tutor student"`
	TeacherID       string `json:"teacher_id" validate:"omitempty,uuid"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}
