package testutil

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/mail"
	"tutor-service/internal/models"
	"tutor-service/internal/service"
	"tutor-service/internal/storage/memory"
)

const Password = "password123"

// Now is the fixed clock every test environment starts with.
var Now = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]bool)}
}

func (l *Locker) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *Locker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
	return nil
}

type Results struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewResults() *Results {
	return &Results{data: make(map[string][]byte)}
}

func (r *Results) Get(_ context.Context, key string, dst any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok := r.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (r *Results) Put(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = raw
	return nil
}

type Revoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func NewRevoker() *Revoker {
	return &Revoker{revoked: make(map[string]bool)}
}

func (r *Revoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.revoked[tokenID] = true
	return nil
}

func (r *Revoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.revoked[tokenID], nil
}

type Mailer struct {
	mu   sync.Mutex
	Sent []mail.Message
}

func (m *Mailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *Mailer) Last() (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sent) == 0 {
		return mail.Message{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

// Env is a service wired to in-memory dependencies.
type Env struct {
	Store   *memory.Store
	Tokens  *auth.Manager
	Mailer  *Mailer
	Revoker *Revoker
	Service *service.Service
	Log     *slog.Logger
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	clock := func() time.Time { return Now }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &Env{
		Store:   memory.NewWithClock(clock),
		Tokens:  auth.NewManager("test-secret", time.Hour, 30*time.Minute).WithClock(clock),
		Mailer:  &Mailer{},
		Revoker: NewRevoker(),
		Log:     log,
	}

	env.Service = service.NewService(log, service.Deps{
		Store:    env.Store,
		Locker:   NewLocker(),
		Results:  NewResults(),
		Revoker:  env.Revoker,
		Tokens:   env.Tokens,
		Mailer:   env.Mailer,
		ResetURL: "http://localhost:3000/reset-password",
		Now:      clock,
	})

	return env
}

// Register creates an account and returns the principal of a fresh login.
func (e *Env) Register(t *testing.T, role models.Role, email string) auth.Principal {
	t.Helper()

	_, err := e.Service.Register(context.Background(), &api.RegisterRequest{
		Email:           email,
		Password:        Password,
		ConfirmPassword: Password,
		FirstName:       "Test",
		LastName:        string(role),
		Role:            string(role),
	})
	require.NoError(t, err)

	return e.Login(t, email)
}

func (e *Env) Login(t *testing.T, email string) auth.Principal {
	t.Helper()

	resp, err := e.Service.Login(context.Background(), &api.LoginRequest{Email: email, Password: Password})
	require.NoError(t, err)

	p, err := e.Tokens.Parse(resp.AccessToken)
	require.NoError(t, err)

	return p
}

// Token issues an access token for the principal's user.
func (e *Env) Token(t *testing.T, p auth.Principal) string {
	t.Helper()

	u, err := e.Store.GetUser(context.Background(), p.UserID)
	require.NoError(t, err)

	token, _, err := e.Tokens.Issue(u)
	require.NoError(t, err)

	return token
}

// CreateDate adds an available date of the tutor starting hours after Now.
func (e *Env) CreateDate(t *testing.T, tutor auth.Principal, startHours, durationMinutes int) uuid.UUID {
	t.Helper()

	start := Now.Add(time.Duration(startHours) * time.Hour)
	resp, err := e.Service.CreateDate(context.Background(), tutor, &api.CreateDateRequest{
		StartTime: start,
		EndTime:   start.Add(time.Duration(durationMinutes) * time.Minute),
	})
	require.NoError(t, err)

	return uuid.MustParse(resp.ID)
}

// Book books the date for the student.
func (e *Env) Book(t *testing.T, student auth.Principal, tutor auth.Principal, dateID uuid.UUID) *api.BookingResponse {
	t.Helper()

	resp, err := e.Service.CreateBooking(context.Background(), student, &api.BookingRequest{
		DateID:    dateID.String(),
		TeacherID: tutor.UserID.String(),
	}, nil)
	require.NoError(t, err)

	return resp
}
