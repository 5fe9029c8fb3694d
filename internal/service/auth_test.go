package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/api"
	"tutor-service/internal/models"
	"tutor-service/internal/testutil"
	"tutor-service/pkg/response"
)

func errCode(t *testing.T, err error) response.ErrCode {
	t.Helper()

	var de *response.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	return de.Code
}

func registerRequest(email, role string) *api.RegisterRequest {
	return &api.RegisterRequest{
		Email:           email,
		Password:        testutil.Password,
		ConfirmPassword: testutil.Password,
		FirstName:       "Anna",
		LastName:        "Petrova",
		Role:            role,
	}
}

func TestRegister(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	resp, err := env.Service.Register(ctx, registerRequest("  Anna@Example.com ", "tutor"))
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", resp.User.Email)
	assert.Equal(t, "tutor", resp.User.Role)

	// tutors get a profile straight away
	_, err = env.Service.GetTeacher(ctx, uuid.MustParse(resp.User.ID))
	require.NoError(t, err)

	_, err = env.Service.Register(ctx, registerRequest("anna@example.com", "student"))
	assert.ErrorIs(t, err, response.ErrConflict)
	assert.Equal(t, response.EMAIL_ALREADY_EXISTS, errCode(t, err))
}

func TestRegisterWithInvitation(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	tutor := env.Register(t, models.RoleTutor, "tutor@example.com")
	other := env.Register(t, models.RoleStudent, "other@example.com")

	t.Run("valid", func(t *testing.T) {
		req := registerRequest("invited@example.com", "student")
		req.TeacherID = tutor.UserID.String()

		_, err := env.Service.Register(ctx, req)
		require.NoError(t, err)

		students, err := env.Service.ListTeacherStudents(ctx, tutor, tutor.UserID)
		require.NoError(t, err)
		require.Len(t, students.Data, 1)
		assert.Equal(t, "invited@example.com", students.Data[0].Email)
		assert.Zero(t, students.Data[0].LessonsCompleted)
		assert.Zero(t, students.Data[0].LessonsReserved)
	})

	for name, teacherID := range map[string]string{
		"unknown user": uuid.NewString(),
		"not a tutor":  other.UserID.String(),
	} {
		t.Run(name, func(t *testing.T) {
			req := registerRequest(strings.ReplaceAll(name, " ", "-")+"@example.com", "student")
			req.TeacherID = teacherID

			_, err := env.Service.Register(ctx, req)
			assert.ErrorIs(t, err, response.ErrBadRequest)
			assert.Equal(t, response.INVALID_INVITATION_TOKEN, errCode(t, err))
		})
	}
}

func TestLogin(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.Register(t, models.RoleStudent, "student@example.com")

	resp, err := env.Service.Login(ctx, &api.LoginRequest{Email: "STUDENT@example.com", Password: testutil.Password})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, testutil.Now.Add(env.Tokens.TokenTTL()), resp.ExpiresAt)
	require.NotNil(t, resp.User.LastLoginAt)
	assert.Equal(t, testutil.Now, *resp.User.LastLoginAt)

	p, err := env.Service.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, student.UserID, p.UserID)
	assert.True(t, p.IsStudent())

	for name, req := range map[string]*api.LoginRequest{
		"wrong password": {Email: "student@example.com", Password: "wrong-password"},
		"unknown email":  {Email: "nobody@example.com", Password: testutil.Password},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.Service.Login(ctx, req)
			assert.ErrorIs(t, err, response.ErrUnauthorized)
			assert.Equal(t, response.INVALID_CREDENTIALS, errCode(t, err))
		})
	}
}

func TestAuthenticateAndLogout(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.Register(t, models.RoleStudent, "student@example.com")
	token := env.Token(t, student)

	_, err := env.Service.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, response.ErrUnauthorized)

	p, err := env.Service.Authenticate(ctx, token)
	require.NoError(t, err)

	user, err := env.Service.CurrentUser(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", user.Email)

	require.NoError(t, env.Service.Logout(ctx, p))

	_, err = env.Service.Authenticate(ctx, token)
	assert.ErrorIs(t, err, response.ErrUnauthorized)
}

func TestPasswordReset(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.Register(t, models.RoleStudent, "student@example.com")

	resp, err := env.Service.ForgotPassword(ctx, &api.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Empty(t, env.Mailer.Sent)

	same, err := env.Service.ForgotPassword(ctx, &api.ForgotPasswordRequest{Email: "student@example.com"})
	require.NoError(t, err)
	assert.Equal(t, resp.Message, same.Message)

	msg, ok := env.Mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "student@example.com", msg.ToEmail)

	const prefix = "http://localhost:3000/reset-password?token="
	i := strings.Index(msg.Text, prefix)
	require.GreaterOrEqual(t, i, 0, msg.Text)
	token := strings.TrimSpace(msg.Text[i+len(prefix):])

	// an access token does not reset passwords
	_, err = env.Service.ResetPassword(ctx, &api.ResetPasswordRequest{
		Token:           env.Token(t, env.Login(t, "student@example.com")),
		Password:        "new-password",
		ConfirmPassword: "new-password",
	})
	assert.Equal(t, response.INVALID_RESET_TOKEN, errCode(t, err))

	_, err = env.Service.ResetPassword(ctx, &api.ResetPasswordRequest{
		Token:           token,
		Password:        "new-password",
		ConfirmPassword: "new-password",
	})
	require.NoError(t, err)

	_, err = env.Service.Login(ctx, &api.LoginRequest{Email: "student@example.com", Password: testutil.Password})
	assert.ErrorIs(t, err, response.ErrUnauthorized)
	_, err = env.Service.Login(ctx, &api.LoginRequest{Email: "student@example.com", Password: "new-password"})
	require.NoError(t, err)

	_, err = env.Service.ResetPassword(ctx, &api.ResetPasswordRequest{
		Token:           token,
		Password:        "another-password",
		ConfirmPassword: "another-password",
	})
	assert.ErrorIs(t, err, response.ErrBadRequest)
	assert.Equal(t, response.INVALID_RESET_TOKEN, errCode(t, err))
}

func TestPasswordResetConcurrent(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.Register(t, models.RoleStudent, "student@example.com")

	_, err := env.Service.ForgotPassword(ctx, &api.ForgotPasswordRequest{Email: "student@example.com"})
	require.NoError(t, err)
	msg, ok := env.Mailer.Last()
	require.True(t, ok)
	token := msg.Text[strings.Index(msg.Text, "token=")+len("token="):]
	token = strings.TrimSpace(token)

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			password := "new-password-" + string(rune('a'+i))
			_, err := env.Service.ResetPassword(ctx, &api.ResetPasswordRequest{
				Token:           token,
				Password:        password,
				ConfirmPassword: password,
			})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, response.ErrBadRequest)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestRecordError(t *testing.T) {
	env := testutil.NewEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env.Service.RecordError(ctx, "handlers.bookings.create.New", errors.New("connection reset"))

	logs := env.Store.ErrorLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "handlers.bookings.create", logs[0].Module)
	assert.Equal(t, "New", logs[0].FunctionName)
	assert.Equal(t, "INTERNAL_ERROR", logs[0].ErrorCode)
	assert.Equal(t, "connection reset", logs[0].Details)
	assert.Equal(t, testutil.Now, logs[0].OccurredAt)
}
