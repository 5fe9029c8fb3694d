package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleTutor   Role = "tutor"
	RoleStudent Role = "student"
)

type DateStatus string

const (
	DateAvailable DateStatus = "available"
	DateBooked    DateStatus = "booked"
	DateCanceled  DateStatus = "canceled"
	DateOther     DateStatus = "other"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCanceled  ReservationStatus = "canceled"
	ReservationCompleted ReservationStatus = "completed"
)

type LessonStatus string

const (
	LessonPlanned   LessonStatus = "planned"
	LessonCompleted LessonStatus = "completed"
	LessonCanceled  LessonStatus = "canceled"
)

type User struct {
	ID               uuid.UUID  `db:"id"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	FirstName        string     `db:"first_name"`
	LastName         string     `db:"last_name"`
	Role             Role       `db:"role"`
	ProfileCreatedAt time.Time  `db:"profile_created_at"`
	LastLoginAt      *time.Time `db:"last_login_at"`
}

type TeacherProfile struct {
	TeacherID        uuid.UUID `db:"teacher_id"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	Bio              *string   `db:"bio"`
	Description      *string   `db:"description"`
	LessonsCompleted int       `db:"lessons_completed"`
	LessonsPlanned   int       `db:"lessons_planned"`
}

// Date is an availability slot of a teacher.
type Date struct {
	ID             uuid.UUID       `db:"id"`
	TeacherID      uuid.UUID       `db:"teacher_id"`
	StudentID      *uuid.UUID      `db:"student_id"`
	StartTime      time.Time       `db:"start_time"`
	EndTime        time.Time       `db:"end_time"`
	Status         DateStatus      `db:"status"`
	Title          *string         `db:"title"`
	Description    *string         `db:"description"`
	AdditionalInfo json.RawMessage `db:"additional_info"`
}

type Reservation struct {
	ID         uuid.UUID         `db:"id"`
	StudentID  uuid.UUID         `db:"student_id"`
	TermID     uuid.UUID         `db:"term_id"`
	Status     ReservationStatus `db:"status"`
	Notes      *string           `db:"notes"`
	ReservedAt time.Time         `db:"reserved_at"`
}

type Lesson struct {
	ID              uuid.UUID    `db:"id"`
	ReservationID   uuid.UUID    `db:"reservation_id"`
	TeacherID       uuid.UUID    `db:"teacher_id"`
	StudentID       uuid.UUID    `db:"student_id"`
	ScheduledAt     time.Time    `db:"scheduled_at"`
	DurationMinutes int          `db:"duration_minutes"`
	Status          LessonStatus `db:"status"`
}

type UserSummary struct {
	ID               uuid.UUID `db:"id"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	Email            string    `db:"email"`
	ProfileCreatedAt time.Time `db:"profile_created_at"`
}

type LessonView struct {
	Lesson
	Teacher UserSummary
	Student UserSummary
}

// TeacherStudent holds the counters of one teacher-student pair.
type TeacherStudent struct {
	TeacherID        uuid.UUID `db:"teacher_id"`
	StudentID        uuid.UUID `db:"student_id"`
	LessonsCompleted int       `db:"lessons_completed"`
	LessonsReserved  int       `db:"lessons_reserved"`
}

type StudentOfTeacher struct {
	TeacherStudent
	Student UserSummary
}

type TeacherOfStudent struct {
	TeacherStudent
	Teacher               UserSummary
	Bio                   *string
	Description           *string
	TotalLessonsCompleted int
}

type ErrorLog struct {
	ID           int64     `db:"id"`
	ErrorCode    string    `db:"error_code"`
	Module       string    `db:"module"`
	FunctionName string    `db:"function_name"`
	Details      string    `db:"details"`
	OccurredAt   time.Time `db:"occurred_at"`
}

type DateFilter struct {
	TeacherID uuid.UUID
	Status    *DateStatus
	// Day selects dates starting within [Day, Day+24h).
	Day    *time.Time
	From   *time.Time
	Offset int
	// Limit 0 means no limit.
	Limit int
}

type LessonFilter struct {
	TeacherID *uuid.UUID
	StudentID *uuid.UUID
	Status    *LessonStatus
	// scheduled_at in [From, To)
	From *time.Time
	To   *time.Time
}

type LessonTotals struct {
	Count   int
	Minutes int
}
