// Package authn resolves the caller from a bearer token or the session
// cookie.
package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"tutor-service/internal/auth"
	"tutor-service/pkg/response"
	"tutor-service/pkg/sl"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

// New attaches the principal to the request context when a token is
// present. A token that does not verify leaves the request anonymous and
// clears the session cookie, Required then decides whether that is enough.
func New(log *slog.Logger, a Authenticator, cookie auth.CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/authn"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			token := Token(r, cookie.Name)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				log.Warn("ignoring invalid token", sl.Err(err))
				if c, err := r.Cookie(cookie.Name); err == nil && c.Value == token {
					http.SetCookie(w, &http.Cookie{
						Name:     cookie.Name,
						Value:    "",
						Path:     "/",
						MaxAge:   -1,
						HttpOnly: true,
						Secure:   cookie.Secure,
						SameSite: http.SameSiteLaxMode,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		}

		return http.HandlerFunc(fn)
	}
}

// Required rejects requests without an authenticated principal.
func Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error(response.UNAUTHORIZED, "Authentication required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Token extracts the access token, preferring the Authorization header.
func Token(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}

	return ""
}
