package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutor-service/internal/auth"
	"tutor-service/internal/lock"
	"tutor-service/internal/mail"
	"tutor-service/internal/models"
	"tutor-service/internal/storage"
	"tutor-service/pkg/response"
	"tutor-service/pkg/sl"
)

const (
	idempotencyTTL = 24 * time.Hour
	inFlightTTL    = 30 * time.Second
)

// ResultCache stores the responses of idempotent requests.
type ResultCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Put(ctx context.Context, key string, v any, ttl time.Duration) error
}

type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Deps struct {
	Store    storage.Store
	Locker   lock.Locker
	Results  ResultCache
	Revoker  Revoker
	Tokens   *auth.Manager
	Mailer   mail.Sender
	ResetURL string
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	log      *slog.Logger
	store    storage.Store
	locker   lock.Locker
	results  ResultCache
	revoker  Revoker
	tokens   *auth.Manager
	mailer   mail.Sender
	resetURL string
	now      func() time.Time
}

func NewService(log *slog.Logger, deps Deps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		log:      log.With(slog.String("component", "service")),
		store:    deps.Store,
		locker:   deps.Locker,
		results:  deps.Results,
		revoker:  deps.Revoker,
		tokens:   deps.Tokens,
		mailer:   deps.Mailer,
		resetURL: deps.ResetURL,
		now:      func() time.Time { return now().UTC() },
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// RecordError writes an unexpected failure to the error_logs table.
// op is the dotted name of the failing function, e.g. "handlers.dates.create.New".
func (s *Service) RecordError(ctx context.Context, op string, err error) {
	module, function := op, op
	if i := strings.LastIndex(op, "."); i > 0 {
		module, function = op[:i], op[i+1:]
	}

	entry := &models.ErrorLog{
		ErrorCode:    string(response.FAILED_REQUEST),
		Module:       module,
		FunctionName: function,
		Details:      err.Error(),
		OccurredAt:   s.now(),
	}

	// the request context may already be canceled
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if insertErr := s.store.InsertErrorLog(ctx, entry); insertErr != nil {
		s.log.Error("failed to record error", slog.String("op", op), sl.Err(insertErr))
	}
}

func requireSelf(actor auth.Principal, id uuid.UUID, msg string) error {
	if actor.UserID != id {
		return response.Forbidden(msg)
	}
	return nil
}

// notFoundAs replaces a bare not found error with one carrying msg.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, response.ErrNotFound) {
		return response.NotFound(msg)
	}
	return err
}
