package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskboard-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/redact"
)

// setupRouter creates the chi router with middleware, API routes and the health check.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	if app.config.RateLimit.Enabled {
		limiter := apiMiddleware.NewRateLimiter(
			app.config.RateLimit.RequestsPerSecond,
			app.config.RateLimit.Burst,
		)
		r.Use(limiter.Handler)
	}

	userHandler := api.NewUserHandler(app.userService, app.config.Query.UserDefaultLimit, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.config.Query.TaskDefaultLimit, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Get("/{id}", userHandler.GetUser)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/{id}", taskHandler.GetTask)
			r.Put("/{id}", taskHandler.UpdateTask)
			r.Delete("/{id}", taskHandler.DeleteTask)
		})
	})

	r.Get("/health", app.health)

	return r
}

// health reports 200 when the database answers a ping, 503 otherwise.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			app.logger.Error("Health check failed", "error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	shared.RespondWithData(w, r, http.StatusOK, "OK", nil)
}
