package assignment

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIDs(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()

	tests := []struct {
		name string
		raw  any
		want []string
	}{
		{"nil", nil, []string{}},
		{"single string", a, []string{a}},
		{"empty string", "", []string{}},
		{"list keeps order", []any{b, a}, []string{b, a}},
		{"string slice", []string{a, b}, []string{a, b}},
		{"drops null and empty", []any{nil, a, "", b}, []string{a, b}},
		{"dedupes keeping first", []any{a, b, a, b}, []string{a, b}},
		{"empty list", []any{}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeIDs("pendingTasks", tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeIDs_Invalid(t *testing.T) {
	valid := uuid.NewString()

	tests := []struct {
		name string
		raw  any
	}{
		{"malformed scalar", "not-an-id"},
		{"malformed in list", []any{valid, "xyz"}},
		{"number", json.Number("42")},
		{"object", map[string]any{"id": valid}},
		{"uuid without dashes", []any{"0123456789abcdef0123456789abcdef"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeIDs("pendingTasks", tc.raw)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			bre, ok := domain.AsBadRequest(err)
			require.True(t, ok)
			assert.Equal(t, "pendingTasks", bre.Field)
		})
	}
}
