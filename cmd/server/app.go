package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/assignment"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	synchronizer *assignment.Synchronizer
	userService  service.UserService
	taskService  service.TaskService
}

// newApplication wires stores, the assignment synchronizer and services on top of
// an already established database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	if err := app.wireServices(); err != nil {
		return nil, err
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// wireServices builds the synchronizer and services from the application's stores.
func (app *application) wireServices() error {
	var err error
	app.synchronizer, err = assignment.NewSynchronizer(app.userStore, app.taskStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create assignment synchronizer: %w", err)
	}

	app.userService, err = service.NewUserService(app.userStore, app.synchronizer, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, app.userStore, app.synchronizer, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	return nil
}

// Run starts the HTTP server and blocks until it shuts down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		closeDB(app.db, app.logger)
	}
	app.logger.Info("Application shutdown completed")
}
