package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutor-service/internal/models"
	"tutor-service/internal/storage"
	"tutor-service/pkg/response"
)

type pair struct {
	teacherID uuid.UUID
	studentID uuid.UUID
}

type teacherRow struct {
	bio              *string
	description      *string
	lessonsCompleted int
	lessonsPlanned   int
}

// tables holds the rows and implements every query without locking.
// Store guards access to it.
type tables struct {
	users        map[uuid.UUID]models.User
	teachers     map[uuid.UUID]teacherRow
	dates        map[uuid.UUID]models.Date
	reservations map[uuid.UUID]models.Reservation
	lessons      map[uuid.UUID]models.Lesson
	pairs        map[pair]models.TeacherStudent
	errorLogs    []models.ErrorLog
	now          func() time.Time
}

var _ storage.Querier = (*tables)(nil)

func newTables(now func() time.Time) *tables {
	return &tables{
		users:        make(map[uuid.UUID]models.User),
		teachers:     make(map[uuid.UUID]teacherRow),
		dates:        make(map[uuid.UUID]models.Date),
		reservations: make(map[uuid.UUID]models.Reservation),
		lessons:      make(map[uuid.UUID]models.Lesson),
		pairs:        make(map[pair]models.TeacherStudent),
		now:          now,
	}
}

// clone copies the row maps. Rows are values and are always replaced
// whole, so sharing their pointer fields is safe.
func (t *tables) clone() *tables {
	c := newTables(t.now)
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.teachers {
		c.teachers[k] = v
	}
	for k, v := range t.dates {
		c.dates[k] = v
	}
	for k, v := range t.reservations {
		c.reservations[k] = v
	}
	for k, v := range t.lessons {
		c.lessons[k] = v
	}
	for k, v := range t.pairs {
		c.pairs[k] = v
	}
	c.errorLogs = append(c.errorLogs, t.errorLogs...)
	return c
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, response.ErrNotFound)
}

// users

func (t *tables) CreateUser(_ context.Context, u *models.User) error {
	const op = "storage.memory.CreateUser"

	for _, existing := range t.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%s: %w: email", op, response.ErrConflict)
		}
	}

	u.ID = uuid.New()
	u.ProfileCreatedAt = t.now()
	t.users[u.ID] = *u
	return nil
}

func (t *tables) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := t.users[id]
	if !ok {
		return nil, notFound("storage.memory.GetUser")
	}
	return &u, nil
}

func (t *tables) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range t.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("storage.memory.GetUserByEmail")
}

func (t *tables) SetLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := t.users[id]
	if !ok {
		return notFound("storage.memory.SetLastLogin")
	}
	u.LastLoginAt = &at
	t.users[id] = u
	return nil
}

func (t *tables) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := t.users[id]
	if !ok {
		return notFound("storage.memory.SetPasswordHash")
	}
	u.PasswordHash = hash
	t.users[id] = u
	return nil
}

func (t *tables) summary(id uuid.UUID) models.UserSummary {
	u := t.users[id]
	return models.UserSummary{
		ID:               id,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		ProfileCreatedAt: u.ProfileCreatedAt,
	}
}

// teachers

func (t *tables) CreateTeacherProfile(_ context.Context, teacherID uuid.UUID) error {
	if _, ok := t.users[teacherID]; !ok {
		return notFound("storage.memory.CreateTeacherProfile")
	}
	if _, ok := t.teachers[teacherID]; !ok {
		t.teachers[teacherID] = teacherRow{}
	}
	return nil
}

func (t *tables) UpdateTeacherProfile(_ context.Context, teacherID uuid.UUID, bio, description *string) error {
	row, ok := t.teachers[teacherID]
	if !ok {
		return notFound("storage.memory.UpdateTeacherProfile")
	}
	if bio != nil {
		row.bio = bio
	}
	if description != nil {
		row.description = description
	}
	t.teachers[teacherID] = row
	return nil
}

func (t *tables) teacherProfile(id uuid.UUID, row teacherRow) models.TeacherProfile {
	u := t.users[id]
	return models.TeacherProfile{
		TeacherID:        id,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Bio:              row.bio,
		Description:      row.description,
		LessonsCompleted: row.lessonsCompleted,
		LessonsPlanned:   row.lessonsPlanned,
	}
}

func (t *tables) GetTeacher(_ context.Context, teacherID uuid.UUID) (*models.TeacherProfile, error) {
	row, ok := t.teachers[teacherID]
	if !ok {
		return nil, notFound("storage.memory.GetTeacher")
	}
	p := t.teacherProfile(teacherID, row)
	return &p, nil
}

func (t *tables) ListTeachers(_ context.Context) ([]models.TeacherProfile, error) {
	teachers := make([]models.TeacherProfile, 0, len(t.teachers))
	for id, row := range t.teachers {
		if t.users[id].Role != models.RoleTutor {
			continue
		}
		teachers = append(teachers, t.teacherProfile(id, row))
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].FirstName != teachers[j].FirstName {
			return teachers[i].FirstName < teachers[j].FirstName
		}
		return teachers[i].LastName < teachers[j].LastName
	})
	return teachers, nil
}

// dates

func (t *tables) overlapping(teacherID uuid.UUID, start, end time.Time, exclude *uuid.UUID) []models.Date {
	var found []models.Date
	for _, d := range t.dates {
		if d.TeacherID != teacherID || !d.Status.Blocks() {
			continue
		}
		if exclude != nil && d.ID == *exclude {
			continue
		}
		if models.Overlaps(d.StartTime, d.EndTime, start, end) {
			found = append(found, d)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].StartTime.Before(found[j].StartTime) })
	return found
}

// checkDate mirrors the table constraints of dates.
func (t *tables) checkDate(op string, d *models.Date) error {
	if !d.EndTime.After(d.StartTime) {
		return fmt.Errorf("%s: %w: end_time must be after start_time", op, response.ErrBadRequest)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%s: %w: status", op, response.ErrBadRequest)
	}
	if _, ok := t.users[d.TeacherID]; !ok {
		return notFound(op)
	}
	if d.Status.Blocks() && len(t.overlapping(d.TeacherID, d.StartTime, d.EndTime, &d.ID)) > 0 {
		return fmt.Errorf("%s: %w: overlapping date", op, response.ErrConflict)
	}
	return nil
}

func (t *tables) CreateDate(_ context.Context, d *models.Date) error {
	const op = "storage.memory.CreateDate"

	d.ID = uuid.New()
	if err := t.checkDate(op, d); err != nil {
		d.ID = uuid.Nil
		return err
	}
	t.dates[d.ID] = *d
	return nil
}

func (t *tables) GetDate(_ context.Context, id uuid.UUID) (*models.Date, error) {
	d, ok := t.dates[id]
	if !ok {
		return nil, notFound("storage.memory.GetDate")
	}
	return &d, nil
}

func (t *tables) GetDateForUpdate(ctx context.Context, id uuid.UUID) (*models.Date, error) {
	return t.GetDate(ctx, id)
}

func (t *tables) ListDates(_ context.Context, f models.DateFilter) ([]models.Date, int, error) {
	matched := make([]models.Date, 0)
	for _, d := range t.dates {
		if d.TeacherID != f.TeacherID {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.Day != nil && (d.StartTime.Before(*f.Day) || !d.StartTime.Before(f.Day.Add(24*time.Hour))) {
			continue
		}
		if f.From != nil && d.StartTime.Before(*f.From) {
			continue
		}
		matched = append(matched, d)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartTime.Before(matched[j].StartTime) })

	total := len(matched)
	if f.Limit > 0 {
		if f.Offset >= total {
			return []models.Date{}, total, nil
		}
		end := f.Offset + f.Limit
		if end > total {
			end = total
		}
		matched = matched[f.Offset:end]
	}

	return matched, total, nil
}

func (t *tables) UpdateDate(_ context.Context, d *models.Date) error {
	const op = "storage.memory.UpdateDate"

	if _, ok := t.dates[d.ID]; !ok {
		return notFound(op)
	}
	if err := t.checkDate(op, d); err != nil {
		return err
	}
	t.dates[d.ID] = *d
	return nil
}

func (t *tables) DeleteDate(_ context.Context, id uuid.UUID) error {
	if _, ok := t.dates[id]; !ok {
		return notFound("storage.memory.DeleteDate")
	}
	delete(t.dates, id)

	for rid, r := range t.reservations {
		if r.TermID != id {
			continue
		}
		delete(t.reservations, rid)
		for lid, l := range t.lessons {
			if l.ReservationID == rid {
				delete(t.lessons, lid)
			}
		}
	}
	return nil
}

func (t *tables) SetDateStatus(_ context.Context, id uuid.UUID, status models.DateStatus) error {
	d, ok := t.dates[id]
	if !ok {
		return notFound("storage.memory.SetDateStatus")
	}
	d.Status = status
	if status != models.DateBooked {
		d.StudentID = nil
	}
	t.dates[id] = d
	return nil
}

// LockTeacherSchedule is a no-op: Store already serializes transactions.
func (t *tables) LockTeacherSchedule(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (t *tables) FindOverlappingDates(_ context.Context, teacherID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, d := range t.overlapping(teacherID, start, end, exclude) {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (t *tables) BookDate(_ context.Context, dateID, studentID uuid.UUID) (bool, error) {
	d, ok := t.dates[dateID]
	if !ok || d.Status != models.DateAvailable {
		return false, nil
	}
	d.Status = models.DateBooked
	d.StudentID = &studentID
	t.dates[dateID] = d
	return true, nil
}

// reservations

func (t *tables) CreateReservation(_ context.Context, r *models.Reservation) error {
	const op = "storage.memory.CreateReservation"

	if _, ok := t.dates[r.TermID]; !ok {
		return notFound(op)
	}
	if r.Status != models.ReservationCanceled {
		for _, existing := range t.reservations {
			if existing.TermID == r.TermID && existing.Status != models.ReservationCanceled {
				return fmt.Errorf("%s: %w: term already reserved", op, response.ErrConflict)
			}
		}
	}

	r.ID = uuid.New()
	t.reservations[r.ID] = *r
	return nil
}

func (t *tables) GetReservation(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	r, ok := t.reservations[id]
	if !ok {
		return nil, notFound("storage.memory.GetReservation")
	}
	return &r, nil
}

func (t *tables) CountActiveReservations(_ context.Context, dateID uuid.UUID) (int, error) {
	n := 0
	for _, r := range t.reservations {
		if r.TermID == dateID && (r.Status == models.ReservationConfirmed || r.Status == models.ReservationCompleted) {
			n++
		}
	}
	return n, nil
}

func (t *tables) SetReservationStatus(_ context.Context, id uuid.UUID, status models.ReservationStatus) error {
	r, ok := t.reservations[id]
	if !ok {
		return notFound("storage.memory.SetReservationStatus")
	}
	r.Status = status
	t.reservations[id] = r
	return nil
}

// lessons

func (t *tables) CreateLesson(_ context.Context, l *models.Lesson) error {
	const op = "storage.memory.CreateLesson"

	if _, ok := t.reservations[l.ReservationID]; !ok {
		return notFound(op)
	}
	if l.DurationMinutes <= 0 {
		return fmt.Errorf("%s: %w: duration_minutes", op, response.ErrBadRequest)
	}

	l.ID = uuid.New()
	t.lessons[l.ID] = *l
	return nil
}

func (t *tables) GetLessonForUpdate(_ context.Context, id uuid.UUID) (*models.Lesson, error) {
	l, ok := t.lessons[id]
	if !ok {
		return nil, notFound("storage.memory.GetLessonForUpdate")
	}
	return &l, nil
}

func (t *tables) UpdateLesson(_ context.Context, l *models.Lesson) error {
	if _, ok := t.lessons[l.ID]; !ok {
		return notFound("storage.memory.UpdateLesson")
	}
	t.lessons[l.ID] = *l
	return nil
}

func matchLesson(l models.Lesson, f models.LessonFilter) bool {
	if f.TeacherID != nil && l.TeacherID != *f.TeacherID {
		return false
	}
	if f.StudentID != nil && l.StudentID != *f.StudentID {
		return false
	}
	if f.Status != nil && l.Status != *f.Status {
		return false
	}
	if f.From != nil && l.ScheduledAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !l.ScheduledAt.Before(*f.To) {
		return false
	}
	return true
}

func (t *tables) ListLessons(_ context.Context, f models.LessonFilter) ([]models.LessonView, error) {
	lessons := make([]models.LessonView, 0)
	for _, l := range t.lessons {
		if !matchLesson(l, f) {
			continue
		}
		lessons = append(lessons, models.LessonView{
			Lesson:  l,
			Teacher: t.summary(l.TeacherID),
			Student: t.summary(l.StudentID),
		})
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].ScheduledAt.After(lessons[j].ScheduledAt) })
	return lessons, nil
}

func (t *tables) LessonTotals(_ context.Context, f models.LessonFilter) (models.LessonTotals, error) {
	var totals models.LessonTotals
	for _, l := range t.lessons {
		if matchLesson(l, f) {
			totals.Count++
			totals.Minutes += l.DurationMinutes
		}
	}
	return totals, nil
}

// aggregates

func (t *tables) count(p pair) (completed, planned int) {
	for _, l := range t.lessons {
		if l.TeacherID != p.teacherID || l.StudentID != p.studentID {
			continue
		}
		switch l.Status {
		case models.LessonCompleted:
			completed++
		case models.LessonPlanned:
			planned++
		}
	}
	return completed, planned
}

func (t *tables) teacherCount(teacherID uuid.UUID) (completed, planned int) {
	for _, l := range t.lessons {
		if l.TeacherID != teacherID {
			continue
		}
		switch l.Status {
		case models.LessonCompleted:
			completed++
		case models.LessonPlanned:
			planned++
		}
	}
	return completed, planned
}

func (t *tables) EnsureTeacherStudent(_ context.Context, teacherID, studentID uuid.UUID) error {
	p := pair{teacherID, studentID}
	if _, ok := t.pairs[p]; !ok {
		t.pairs[p] = models.TeacherStudent{TeacherID: teacherID, StudentID: studentID}
	}
	return nil
}

func (t *tables) RecalculateTeacherStudent(_ context.Context, teacherID, studentID uuid.UUID) error {
	p := pair{teacherID, studentID}
	completed, planned := t.count(p)
	t.pairs[p] = models.TeacherStudent{
		TeacherID:        teacherID,
		StudentID:        studentID,
		LessonsCompleted: completed,
		LessonsReserved:  planned,
	}
	return nil
}

func (t *tables) RecalculateTeacherTotals(_ context.Context, teacherID uuid.UUID) error {
	row, ok := t.teachers[teacherID]
	if !ok {
		return nil
	}
	row.lessonsCompleted, row.lessonsPlanned = t.teacherCount(teacherID)
	t.teachers[teacherID] = row
	return nil
}

func (t *tables) ListTeacherStudents(_ context.Context, teacherID uuid.UUID) ([]models.StudentOfTeacher, error) {
	students := make([]models.StudentOfTeacher, 0)
	for p, ts := range t.pairs {
		if p.teacherID != teacherID {
			continue
		}
		students = append(students, models.StudentOfTeacher{TeacherStudent: ts, Student: t.summary(p.studentID)})
	}
	sort.Slice(students, func(i, j int) bool {
		a, b := students[i].Student, students[j].Student
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	return students, nil
}

func (t *tables) ListStudentTeachers(_ context.Context, studentID uuid.UUID) ([]models.TeacherOfStudent, error) {
	teachers := make([]models.TeacherOfStudent, 0)
	for p, ts := range t.pairs {
		if p.studentID != studentID {
			continue
		}
		row := t.teachers[p.teacherID]
		teachers = append(teachers, models.TeacherOfStudent{
			TeacherStudent:        ts,
			Teacher:               t.summary(p.teacherID),
			Bio:                   row.bio,
			Description:           row.description,
			TotalLessonsCompleted: row.lessonsCompleted,
		})
	}
	sort.Slice(teachers, func(i, j int) bool {
		a, b := teachers[i].Teacher, teachers[j].Teacher
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	return teachers, nil
}

func (t *tables) CountTeacherStudents(_ context.Context, teacherID uuid.UUID) (int, error) {
	n := 0
	for p := range t.pairs {
		if p.teacherID == teacherID {
			n++
		}
	}
	return n, nil
}

func (t *tables) DeleteTeacherStudent(_ context.Context, teacherID, studentID uuid.UUID) error {
	p := pair{teacherID, studentID}
	if _, ok := t.pairs[p]; !ok {
		return notFound("storage.memory.DeleteTeacherStudent")
	}
	delete(t.pairs, p)
	return nil
}

func (t *tables) ReconcileAggregates(_ context.Context) (int64, error) {
	var fixed int64

	seen := make(map[pair]struct{})
	for _, l := range t.lessons {
		seen[pair{l.TeacherID, l.StudentID}] = struct{}{}
	}
	for p := range t.pairs {
		seen[p] = struct{}{}
	}

	for p := range seen {
		completed, planned := t.count(p)
		current, ok := t.pairs[p]
		if ok && current.LessonsCompleted == completed && current.LessonsReserved == planned {
			continue
		}
		t.pairs[p] = models.TeacherStudent{
			TeacherID:        p.teacherID,
			StudentID:        p.studentID,
			LessonsCompleted: completed,
			LessonsReserved:  planned,
		}
		fixed++
	}

	for id, row := range t.teachers {
		completed, planned := t.teacherCount(id)
		if row.lessonsCompleted == completed && row.lessonsPlanned == planned {
			continue
		}
		row.lessonsCompleted, row.lessonsPlanned = completed, planned
		t.teachers[id] = row
		fixed++
	}

	return fixed, nil
}

// error logs

func (t *tables) InsertErrorLog(_ context.Context, e *models.ErrorLog) error {
	e.ID = int64(len(t.errorLogs) + 1)
	t.errorLogs = append(t.errorLogs, *e)
	return nil
}
