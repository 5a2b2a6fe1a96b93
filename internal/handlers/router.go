package handlers

import (
	"net/http"
	"time"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/metrics"
	customMiddleware "feedback-backend/internal/middleware"
	"feedback-backend/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Deps struct {
	Auth           *auth.Service
	Workflow       *workflow.Service
	Metrics        *metrics.Metrics // optional
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Auth)
	teamHandler := NewTeamHandler(d.Workflow)
	feedbackHandler := NewFeedbackHandler(d.Workflow)
	requestHandler := NewRequestHandler(d.Workflow)
	discussionHandler := NewDiscussionHandler(d.Workflow)
	userHandler := NewUserHandler(d.Workflow)

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "feedback-backend"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.JWTAuth(d.Auth))

			r.Post("/logout", authHandler.Logout)

			r.Get("/team", teamHandler.MyTeam)
			r.Post("/team", teamHandler.AddMember)
			r.Delete("/team", teamHandler.RemoveMember)
			r.Get("/team/{id}", teamHandler.ListTeam)
			r.Get("/team/members/{id}", teamHandler.ListAvailable)

			r.Post("/feedback", feedbackHandler.Submit)
			r.Get("/feedback/{id}", feedbackHandler.Get)
			r.Put("/feedback/{id}", feedbackHandler.Edit)
			r.Delete("/feedback/{id}", feedbackHandler.Delete)
			r.Get("/feedback/employee/{id}", feedbackHandler.ListForEmployee)
			r.Get("/feedback/manager/{id}", feedbackHandler.ListForManager)
			r.Post("/feedback/acknowledge", feedbackHandler.Acknowledge)
			r.Get("/feedback/acknowledgements/{id}", feedbackHandler.ListAcknowledgements)
			r.Get("/feedback/stats/{id}", feedbackHandler.ManagerStats)
			r.Get("/feedback/employee/stats/{id}", feedbackHandler.EmployeeStats)
			r.Get("/feedback/export/{id}", feedbackHandler.Export)

			r.Post("/feedback/request", requestHandler.Create)
			r.Put("/feedback/request/{id}", requestHandler.UpdateStatus)
			r.Get("/feedback/requests/{id}", requestHandler.ListForManager)
			r.Get("/feedback/requests/employee/{id}", requestHandler.ListForEmployee)

			r.Post("/comments", discussionHandler.AddComment)
			r.Get("/comments/{id}", discussionHandler.ListComments)
			r.Get("/feedback/tags", discussionHandler.SuggestedTags)
			r.Post("/feedback/tags", discussionHandler.AddTag)
			r.Get("/feedback/tags/{id}", discussionHandler.ListTags)
			r.Delete("/feedback/tags/{id}", discussionHandler.DeleteTag)

			r.Get("/users", userHandler.List)
			r.Get("/user/{id}", userHandler.Get)
		})
	})

	return r
}
