package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithData(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()

	RespondWithData(rec, req, http.StatusCreated, "User created", map[string]any{"id": "u1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"User created","data":{"id":"u1"}}`, rec.Body.String())
}

func TestRespondWithData_EmptyList(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()

	RespondWithData(rec, req, http.StatusOK, "OK", []map[string]any{})

	assert.JSONEq(t, `{"message":"OK","data":[]}`, rec.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		err       error
		wantLevel string
	}{
		{"server error", http.StatusInternalServerError, errors.New("dial postgres://app:pw@db/x failed"), "ERROR"},
		{"rate limited", http.StatusTooManyRequests, nil, "WARN"},
		{"bad request", http.StatusBadRequest, errors.New("name: is required"), "DEBUG"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			ctx := logger.WithLogger(SetTraceID(req.Context()), log)
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()

			RespondWithErrorAndLog(rec, req, tc.status, "Something failed", tc.err)

			require.Equal(t, tc.status, rec.Code)
			var body Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Something failed", body.Message)
			assert.Nil(t, body.Data)
			assert.Equal(t, GetTraceID(ctx), body.TraceID)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tc.wantLevel, entry["level"])
			assert.Equal(t, GetTraceID(ctx), entry["trace_id"])
			assert.NotContains(t, buf.String(), "app:pw")
		})
	}
}
