package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// TaskHandler handles the /tasks collection.
type TaskHandler struct {
	taskService  service.TaskService
	defaultLimit int
	logger       *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, defaultLimit int, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService:  taskService,
		defaultLimit: defaultLimit,
		logger:       logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	opts, err := listOptions(r, h.defaultLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.taskService.List(r.Context(), opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	log.Debug("listed tasks", slog.Bool("count", opts.Count), slog.Int("returned", len(result.Records)))
	shared.RespondWithData(w, r, http.StatusOK, "OK", listResponseData(result.Count, result.Records))
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	payload, err := shared.DecodePayload(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	in, err := taskInputFromPayload(payload)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.Create(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, "Task created", task)
}

// GetTask handles GET /tasks/{id}. A select parameter projects the result.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
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

	record, err := h.taskService.Get(r.Context(), id, proj)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "OK", record)
}

// UpdateTask handles PUT /tasks/{id}. The body replaces the whole task, so an
// omitted deadline is rejected and omitted optional fields are reset.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
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

	in, err := taskInputFromPayload(payload)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.Update(r.Context(), id, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Task updated", task)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
