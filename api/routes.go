package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kehila-platform/kehila/internal/community"
	"github.com/kehila-platform/kehila/internal/config"
	"github.com/kehila-platform/kehila/pkg/store"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, backend store.Backend, logger *slog.Logger) *mux.Router {
	SetLogger(logger)

	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	communitySvc := community.NewService(backend, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(backend, cfg.JWTSecret, cfg.TokenDuration)
	postsHandler := NewPostsHandler(backend, communitySvc, logger)
	mentorsHandler := NewMentorsHandler(backend, backend, logger)
	applicationsHandler := NewApplicationsHandler(backend, backend, backend, logger)
	coursesHandler := NewCoursesHandler(backend, logger)
	goalsHandler := NewGoalsHandler(backend, backend, logger)
	appointmentsHandler := NewAppointmentsHandler(backend, backend, logger)
	articlesHandler := NewArticlesHandler(backend, backend, logger)
	uploadsHandler := NewUploadsHandler(backend, logger)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// Public catalog reads
	r.HandleFunc("/v1/posts", postsHandler.List).Methods("GET")
	r.HandleFunc("/v1/posts/{id}/likes", postsHandler.ListLikes).Methods("GET")
	r.HandleFunc("/v1/posts/{id}/comments", postsHandler.ListComments).Methods("GET")
	r.HandleFunc("/v1/mentors", mentorsHandler.List).Methods("GET")
	r.HandleFunc("/v1/courses", coursesHandler.List).Methods("GET")
	r.HandleFunc("/v1/articles", articlesHandler.List).Methods("GET")

	// Uploaded files are served straight from disk when the embedded backend
	// owns them.
	if cfg.Backend.Mode == config.ModeLocal {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(SessionMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")
	apiV1.HandleFunc("/me", authHandler.Me).Methods("GET")
	apiV1.HandleFunc("/me", authHandler.UpdateMe).Methods("PUT")

	// Community endpoints
	apiV1.HandleFunc("/posts", postsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/posts/{id}/like", postsHandler.ToggleLike).Methods("POST")
	apiV1.HandleFunc("/posts/{id}/comments", postsHandler.AddComment).Methods("POST")

	// Mentorship endpoints
	apiV1.HandleFunc("/mentors", mentorsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/mentors/{id}", mentorsHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/mentor-applications", applicationsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/mentor-applications", applicationsHandler.List).Methods("GET")
	apiV1.HandleFunc("/mentor-applications/{id}", applicationsHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/appointments", appointmentsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/appointments", appointmentsHandler.List).Methods("GET")
	apiV1.HandleFunc("/appointments/{id}/approve", appointmentsHandler.Approve).Methods("POST")
	apiV1.HandleFunc("/appointments/{id}/reject", appointmentsHandler.Reject).Methods("POST")

	// Learning endpoints
	apiV1.HandleFunc("/courses", coursesHandler.Create).Methods("POST")
	apiV1.HandleFunc("/courses/{id}", coursesHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/articles", articlesHandler.Create).Methods("POST")

	// Goal endpoints
	apiV1.HandleFunc("/goals", goalsHandler.List).Methods("GET")
	apiV1.HandleFunc("/goals", goalsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/goals/{id}/progress", goalsHandler.UpdateProgress).Methods("PUT")

	// File endpoints
	apiV1.HandleFunc("/uploads", uploadsHandler.Upload).Methods("POST")

	return r
}
