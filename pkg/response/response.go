package response

import (
	"errors"
	"fmt"
	"net/http"
)

type Response struct {
	Error   ErrCode  `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST           ErrCode = "INTERNAL_ERROR"
	BAD_REQUEST              ErrCode = "VALIDATION_ERROR"
	UNAUTHORIZED             ErrCode = "UNAUTHORIZED"
	FORBIDDEN                ErrCode = "FORBIDDEN"
	NOT_FOUND                ErrCode = "NOT_FOUND"
	LOCKED                   ErrCode = "LOCKED"
	CONFLICT                 ErrCode = "CONFLICT"
	SLOT_NOT_AVAILABLE       ErrCode = "SLOT_NOT_AVAILABLE"
	INVALID_CREDENTIALS      ErrCode = "INVALID_CREDENTIALS"
	EMAIL_ALREADY_EXISTS     ErrCode = "EMAIL_ALREADY_EXISTS"
	INVALID_INVITATION_TOKEN ErrCode = "INVALID_INVITATION_TOKEN"
	INVALID_RESET_TOKEN      ErrCode = "INVALID_RESET_TOKEN"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("resource not found")
	ErrLocked           = errors.New("resource is locked")
	ErrConflict         = errors.New("conflict")
	ErrSlotNotAvailable = fmt.Errorf("slot is not available: %w", ErrConflict)
)

// DomainError is an error that carries the message shown to the client.
// Kind is one of the sentinel errors above and decides the status code.
type DomainError struct {
	Kind    error
	Code    ErrCode
	Message string
	Details []string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

func New(kind error, code ErrCode, msg string, details ...string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: msg, Details: details}
}

func Validation(msg string, details ...string) error {
	return New(ErrBadRequest, BAD_REQUEST, msg, details...)
}

func Unauthorized(msg string) error {
	return New(ErrUnauthorized, UNAUTHORIZED, msg)
}

func Forbidden(msg string) error {
	return New(ErrForbidden, FORBIDDEN, msg)
}

func NotFound(msg string) error {
	return New(ErrNotFound, NOT_FOUND, msg)
}

func Conflict(msg string) error {
	return New(ErrConflict, CONFLICT, msg)
}

func Error(code ErrCode, msg string) Response {
	return Response{
		Error:   code,
		Message: msg,
	}
}

type kind struct {
	err    error
	status int
	code   ErrCode
	msg    string
}

// order matters: ErrSlotNotAvailable wraps ErrConflict
var kinds = []kind{
	{ErrBadRequest, http.StatusBadRequest, BAD_REQUEST, "Invalid request data"},
	{ErrUnauthorized, http.StatusUnauthorized, UNAUTHORIZED, "Authentication required"},
	{ErrForbidden, http.StatusForbidden, FORBIDDEN, "Insufficient permissions"},
	{ErrNotFound, http.StatusNotFound, NOT_FOUND, "Resource not found"},
	{ErrLocked, http.StatusLocked, LOCKED, "Request with this idempotency key is in progress"},
	{ErrSlotNotAvailable, http.StatusConflict, SLOT_NOT_AVAILABLE, "Slot is not available"},
	{ErrConflict, http.StatusConflict, CONFLICT, "Resource conflict"},
}

// Classify maps an error chain to an HTTP status and the error envelope.
// Anything unknown is reported as 500 without leaking its text.
func Classify(err error) (int, Response) {
	var de *DomainError
	if errors.As(err, &de) {
		for _, k := range kinds {
			if errors.Is(de.Kind, k.err) {
				code := de.Code
				if code == "" {
					code = k.code
				}
				msg := de.Message
				if msg == "" {
					msg = k.msg
				}
				return k.status, Response{Error: code, Message: msg, Details: de.Details}
			}
		}
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, Error(k.code, k.msg)
		}
	}

	return http.StatusInternalServerError, Error(FAILED_REQUEST, "An unexpected error occurred")
}
