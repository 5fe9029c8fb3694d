package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutor-service/api"
	"tutor-service/internal/auth"
	"tutor-service/internal/mail"
	"tutor-service/internal/models"
	"tutor-service/internal/storage"
	"tutor-service/pkg/response"
	"tutor-service/pkg/sl"
)

var (
	errInvalidCredentials = response.New(response.ErrUnauthorized, response.INVALID_CREDENTIALS, "Invalid email or password")
	errInvalidInvitation  = response.New(response.ErrBadRequest, response.INVALID_INVITATION_TOKEN, "Invitation link is invalid or expired")
	errInvalidResetToken  = response.New(response.ErrBadRequest, response.INVALID_RESET_TOKEN, "Reset link is invalid or expired")
	errSessionExpired     = response.Unauthorized("Session is invalid or expired")
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. Tutors get a teacher profile, students
// registering through a tutor's invitation are linked to that tutor.
func (s *Service) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	const op = "service.Register"

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := &models.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         models.Role(req.Role),
	}

	err = s.store.Tx(ctx, func(q storage.Querier) error {
		var inviter *uuid.UUID
		if req.TeacherID != "" && u.Role == models.RoleStudent {
			id, err := uuid.Parse(req.TeacherID)
			if err != nil {
				return errInvalidInvitation
			}
			tutor, err := q.GetUser(ctx, id)
			if errors.Is(err, response.ErrNotFound) || (err == nil && tutor.Role != models.RoleTutor) {
				return errInvalidInvitation
			}
			if err != nil {
				return err
			}
			inviter = &id
		}

		if err := q.CreateUser(ctx, u); err != nil {
			if errors.Is(err, response.ErrConflict) {
				return response.New(response.ErrConflict, response.EMAIL_ALREADY_EXISTS, "An account with this email already exists")
			}
			return err
		}

		if u.Role == models.RoleTutor {
			if err := q.CreateTeacherProfile(ctx, u.ID); err != nil {
				return err
			}
		}

		if inviter != nil {
			return q.EnsureTeacherStudent(ctx, *inviter, u.ID)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.RegisterResponse{
		Message: "Account created successfully",
		User:    toUser(u),
	}, nil
}

func (s *Service) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	const op = "service.Login"

	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, errInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%s: %w", op, errInvalidCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if err := s.store.SetLastLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.LastLoginAt = &now

	return &api.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        toUser(u),
	}, nil
}

// Authenticate resolves a bearer token into the calling principal.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	const op = "service.Authenticate"

	p, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("%s: %w: %v", op, errSessionExpired, err)
	}

	revoked, err := s.revoker.IsRevoked(ctx, p.TokenID)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return auth.Principal{}, fmt.Errorf("%s: %w", op, errSessionExpired)
	}

	return p, nil
}

func (s *Service) Logout(ctx context.Context, actor auth.Principal) error {
	const op = "service.Logout"

	if err := s.revoker.Revoke(ctx, actor.TokenID, actor.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) CurrentUser(ctx context.Context, actor auth.Principal) (*api.User, error) {
	const op = "service.CurrentUser"

	u, err := s.store.GetUser(ctx, actor.UserID)
	if errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, errSessionExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := toUser(u)
	return &user, nil
}

// ForgotPassword mails a reset link when the account exists. The answer
// is the same either way.
func (s *Service) ForgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (*api.MessageResponse, error) {
	const op = "service.ForgotPassword"

	resp := &api.MessageResponse{Message: "If an account with this email exists, a reset link has been sent"}

	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, response.ErrNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, _, err := s.tokens.IssueReset(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	link := s.resetURL + "?token=" + url.QueryEscape(token)
	msg := mail.Message{
		ToName:  u.FirstName + " " + u.LastName,
		ToEmail: u.Email,
		Subject: "Reset your password",
		Text:    "Use the link below to set a new password. It expires soon.\n\n" + link,
		HTML:    fmt.Sprintf(`<p>Use the link below to set a new password. It expires soon.</p><p><a href="%s">Reset password</a></p>`, link),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("failed to send reset mail", slog.String("user_id", u.ID.String()), sl.Err(err))
	}

	return resp, nil
}

// ResetPassword sets a new password. Each reset token works once.
func (s *Service) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.MessageResponse, error) {
	const op = "service.ResetPassword"

	p, err := s.tokens.ParseReset(req.Token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, errInvalidResetToken, err)
	}

	// claimed until the token expires
	key := "reset:" + p.TokenID
	ttl := p.ExpiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	claimed, err := s.locker.Lock(ctx, key, ttl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !claimed {
		return nil, fmt.Errorf("%s: %w", op, errInvalidResetToken)
	}

	hash, err := auth.HashPassword(req.Password)
	if err == nil {
		err = notFoundAs(s.store.SetPasswordHash(ctx, p.UserID, hash), "User not found")
	}
	if err != nil {
		// release the claim, the token is still unused
		_ = s.locker.Unlock(context.WithoutCancel(ctx), key)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.MessageResponse{Message: "Password has been reset"}, nil
}
