package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"tutor-service/internal/auth"
	"tutor-service/internal/http-server/handlers/auth/forgot"
	loginHandler "tutor-service/internal/http-server/handlers/auth/login"
	logoutHandler "tutor-service/internal/http-server/handlers/auth/logout"
	"tutor-service/internal/http-server/handlers/auth/me"
	"tutor-service/internal/http-server/handlers/auth/register"
	"tutor-service/internal/http-server/handlers/auth/reset"
	bookingCreate "tutor-service/internal/http-server/handlers/bookings/create"
	dateCreate "tutor-service/internal/http-server/handlers/dates/create"
	dateDelete "tutor-service/internal/http-server/handlers/dates/delete"
	dateList "tutor-service/internal/http-server/handlers/dates/list"
	dateUpdate "tutor-service/internal/http-server/handlers/dates/update"
	"tutor-service/internal/http-server/handlers/health"
	lessonUpdate "tutor-service/internal/http-server/handlers/lessons/update"
	"tutor-service/internal/http-server/handlers/public/tutordates"
	statsGet "tutor-service/internal/http-server/handlers/stats/get"
	studentLessons "tutor-service/internal/http-server/handlers/students/lessons"
	studentTeachers "tutor-service/internal/http-server/handlers/students/teachers"
	teacherExport "tutor-service/internal/http-server/handlers/teachers/export"
	teacherGet "tutor-service/internal/http-server/handlers/teachers/get"
	teacherLessons "tutor-service/internal/http-server/handlers/teachers/lessons"
	teacherList "tutor-service/internal/http-server/handlers/teachers/list"
	teacherStudentRemove "tutor-service/internal/http-server/handlers/teachers/removestudent"
	teacherStudents "tutor-service/internal/http-server/handlers/teachers/students"
	teacherUpdate "tutor-service/internal/http-server/handlers/teachers/update"
	"tutor-service/internal/http-server/middleware/authn"
	svc "tutor-service/internal/service"
	"tutor-service/pkg/middleware/mwLogger"
)

type Options struct {
	Cookie        auth.CookieConfig
	AllowedOrigin string
}

func CORS(origin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
			if origin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func New(log *slog.Logger, service *svc.Service, opts Options) http.Handler {
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(CORS(opts.AllowedOrigin))

	router.Get("/health", health.New(log, service))

	router.Route("/api", func(r chi.Router) {
		r.Use(authn.New(log, service, opts.Cookie))

		// Auth
		r.Post("/auth/register", register.New(log, service))
		r.Post("/auth/login", loginHandler.New(log, service, opts.Cookie))
		r.Post("/auth/forgot-password", forgot.New(log, service))
		r.Post("/auth/reset-password", reset.New(log, service))

		// Public catalogue
		r.Get("/teachers", teacherList.New(log, service))
		r.Get("/teachers/{teacherId}", teacherGet.New(log, service))
		r.Get("/public/tutor/{id}/dates", tutordates.New(log, service))

		r.Group(func(r chi.Router) {
			r.Use(authn.Required)

			r.Post("/auth/logout", logoutHandler.New(log, service, opts.Cookie))
			r.Get("/auth/user", me.New(log, service))

			// Dates
			r.Get("/dates", dateList.New(log, service))
			r.Post("/dates", dateCreate.New(log, service))
			r.Put("/dates/{id}", dateUpdate.New(log, service))
			r.Delete("/dates/{id}", dateDelete.New(log, service))

			// Bookings
			r.Post("/bookings", bookingCreate.New(log, service))

			// Lessons
			r.Patch("/lessons/{id}", lessonUpdate.New(log, service))

			// Teachers
			r.Patch("/teachers/{teacherId}", teacherUpdate.New(log, service))
			r.Get("/teachers/{teacherId}/lessons", teacherLessons.New(log, service))
			r.Get("/teachers/{teacherId}/lessons/export", teacherExport.New(log, service))
			r.Get("/teachers/{teacherId}/students", teacherStudents.New(log, service))
			r.Delete("/teachers/{teacherId}/students/{studentId}", teacherStudentRemove.New(log, service))

			// Students
			r.Get("/students/{studentId}/lessons", studentLessons.New(log, service))
			r.Get("/students/{studentId}/teachers", studentTeachers.New(log, service))

			// Stats
			r.Get("/stats/{userId}", statsGet.New(log, service))
		})
	})

	return router
}
