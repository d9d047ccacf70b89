package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"nil error", nil, http.StatusInternalServerError},
		{"bad request", domain.NewBadRequest("name", "is required"), http.StatusBadRequest},
		{"wrapped bad request", fmt.Errorf("create task: %w", domain.NewBadRequest("deadline", "is required")), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"invalid entity", fmt.Errorf("update: %w", store.ErrInvalidEntity), http.StatusBadRequest},
		{"duplicate email", store.ErrEmailExists, http.StatusBadRequest},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"wrapped task not found", fmt.Errorf("get task: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"unknown error", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"field message", domain.NewBadRequest("email", "is required"), "email: is required"},
		{"duplicate email", fmt.Errorf("create user: %w", store.ErrEmailExists), "email already exists"},
		{"user not found", store.ErrUserNotFound, "User not found"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"invalid entity", store.ErrInvalidEntity, "Invalid entity data"},
		{"internal detail hidden", errors.New("pq: relation users does not exist"), "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	t.Run("internal error uses fallback and trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req = req.WithContext(shared.SetTraceID(req.Context()))
		rec := httptest.NewRecorder()

		HandleAPIError(rec, req, errors.New("postgres://u:p@host/db unreachable"), "Failed to list tasks")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var body shared.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Failed to list tasks", body.Message)
		assert.Nil(t, body.Data)
		assert.Equal(t, shared.GetTraceID(req.Context()), body.TraceID)
		assert.NotContains(t, rec.Body.String(), "postgres://")
	})

	t.Run("bad request keeps field message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
		rec := httptest.NewRecorder()

		HandleAPIError(rec, req, domain.NewBadRequest("name", "is required"), "Failed to create user")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body shared.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "name: is required", body.Message)
	})
}
