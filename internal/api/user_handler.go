package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// UserHandler handles the /users collection.
type UserHandler struct {
	userService  service.UserService
	defaultLimit int
	logger       *slog.Logger
}

// NewUserHandler creates a new UserHandler. defaultLimit applies to list
// requests without a limit; zero means unbounded.
func NewUserHandler(userService service.UserService, defaultLimit int, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		userService:  userService,
		defaultLimit: defaultLimit,
		logger:       logger.With(slog.String("component", "user_handler")),
	}
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	opts, err := listOptions(r, h.defaultLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.userService.List(r.Context(), opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}

	log.Debug("listed users", slog.Bool("count", opts.Count), slog.Int("returned", len(result.Records)))
	shared.RespondWithData(w, r, http.StatusOK, "OK", listResponseData(result.Count, result.Records))
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	payload, err := shared.DecodePayload(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	in, err := userInputFromPayload(payload)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userService.Create(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, "User created", user)
}

// GetUser handles GET /users/{id}. A select parameter projects the result.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	proj, err := query.ParseSelect(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	record, err := h.userService.Get(r.Context(), id, proj)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve user")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "OK", record)
}

// UpdateUser handles PUT /users/{id}. The body replaces the whole user.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	payload, err := shared.DecodePayload(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	in, err := userInputFromPayload(payload)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userService.Update(r.Context(), id, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "User updated", user)
}

// DeleteUser handles DELETE /users/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
