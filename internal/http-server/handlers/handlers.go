// Package handlers holds the pieces shared by the endpoint handlers.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"tutor-service/internal/auth"
	"tutor-service/internal/validation"
	"tutor-service/pkg/response"
	"tutor-service/pkg/sl"
)

// ErrorRecorder persists unexpected failures.
type ErrorRecorder interface {
	RecordError(ctx context.Context, op string, err error)
}

// Logger returns log scoped to the handler and the request.
func Logger(log *slog.Logger, r *http.Request, op string) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Fail writes the error envelope for err. Server side failures are also
// handed to rec.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, rec ErrorRecorder, op string, err error) {
	status, resp := response.Classify(err)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
		if rec != nil {
			rec.RecordError(r.Context(), op, err)
		}
	} else {
		log.Warn("request rejected", slog.Int("status", status), sl.Err(err))
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// Decode reads a JSON body into v and validates it.
func Decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return response.Validation("Failed to decode request body", err.Error())
	}

	return validation.Struct(v)
}

// PathUUID parses the named URL parameter.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, response.Validation("Invalid request data", fmt.Sprintf("%s must be a valid UUID", name))
	}

	return id, nil
}

// Actor returns the authenticated caller. Routes behind authn.Required
// always have one.
func Actor(r *http.Request) (auth.Principal, error) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Principal{}, response.Unauthorized("Authentication required")
	}

	return p, nil
}

// QueryInt reads an integer query parameter, def when it is absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, response.Validation("Invalid request data", fmt.Sprintf("%s must be an integer", name))
	}

	return v, nil
}
