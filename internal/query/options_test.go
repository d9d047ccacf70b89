package query

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func TestParseDefaults(t *testing.T) {
	opts, err := Parse(url.Values{}, 100)
	require.NoError(t, err)

	assert.Equal(t, Document{}, opts.Filter)
	assert.Empty(t, opts.Sort)
	assert.Nil(t, opts.Projection)
	assert.Equal(t, 0, opts.Skip)
	assert.Equal(t, 100, opts.Limit)
	assert.False(t, opts.Count)
	assert.False(t, opts.ReturnsNothing())

	opts, err = Parse(url.Values{}, NoLimit)
	require.NoError(t, err)
	assert.Equal(t, NoLimit, opts.Limit)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		check  func(t *testing.T, opts *Options)
	}{
		{
			name:   "where keeps numbers exact",
			values: values("where", `{"completed":false,"priority":{"$gte":2}}`),
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, Document{
					"completed": false,
					"priority":  map[string]any{"$gte": json.Number("2")},
				}, opts.Filter)
			},
		},
		{
			name:   "sort preserves key order",
			values: values("sort", `{"name":1,"dateCreated":-1,"email":"desc"}`),
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, []SortField{
					{Field: "name"},
					{Field: "dateCreated", Descending: true},
					{Field: "email", Descending: true},
				}, opts.Sort)
			},
		},
		{
			name:   "skip and limit",
			values: values("skip", "20", "limit", "10"),
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, 20, opts.Skip)
				assert.Equal(t, 10, opts.Limit)
			},
		},
		{
			name:   "limit zero returns nothing",
			values: values("limit", "0"),
			check: func(t *testing.T, opts *Options) {
				assert.True(t, opts.ReturnsNothing())
			},
		},
		{
			name:   "count makes limit unbounded",
			values: values("count", "True"),
			check: func(t *testing.T, opts *Options) {
				assert.True(t, opts.Count)
				assert.Equal(t, NoLimit, opts.Limit)
			},
		},
		{
			name:   "count overrides explicit limit",
			values: values("count", "true", "limit", "0"),
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, NoLimit, opts.Limit)
				assert.False(t, opts.ReturnsNothing())
			},
		},
		{
			name:   "count with unknown value is false",
			values: values("count", "yes"),
			check: func(t *testing.T, opts *Options) {
				assert.False(t, opts.Count)
			},
		},
		{
			name:   "count with empty projection",
			values: values("count", "true", "select", `{}`),
			check: func(t *testing.T, opts *Options) {
				assert.True(t, opts.Count)
				assert.Nil(t, opts.Projection)
			},
		},
		{
			name:   "select wins over filter",
			values: values("select", `{"name":1}`, "filter", `{"email":1}`),
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, []string{"name"}, opts.Projection.Fields)
			},
		},
		{
			name:   "legacy filter alias",
			values: values("filter", `{"email":1}`),
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, []string{"email"}, opts.Projection.Fields)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := Parse(tc.values, 100)
			require.NoError(t, err)
			tc.check(t, opts)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		vals  url.Values
		field string
	}{
		{"malformed where", values("where", `{"name":`), "where"},
		{"where array", values("where", `["a"]`), "where"},
		{"trailing where", values("where", `{} {}`), "where"},
		{"extra brace after where", values("where", `{"name":"a"}}`), "where"},
		{"extra bracket after where", values("where", `{"a":1}]`), "where"},
		{"malformed sort", values("sort", `{"name":}`), "sort"},
		{"sort direction", values("sort", `{"name":2}`), "sort"},
		{"sort not object", values("sort", `"name"`), "sort"},
		{"trailing sort", values("sort", `{"name":1}x`), "sort"},
		{"malformed select", values("select", `{`), "select"},
		{"extra brace after select", values("select", `{"name":1}}`), "select"},
		{"extra bracket after filter alias", values("filter", `{"name":1}]`), "filter"},
		{"malformed filter alias", values("filter", `nope`), "filter"},
		{"negative skip", values("skip", "-1"), "skip"},
		{"text limit", values("limit", "ten"), "limit"},
		{"fraction limit", values("limit", "1.5"), "limit"},
		{"count with projection", values("count", "true", "select", `{"name":1}`), "select"},
		{"count with filter projection", values("count", "true", "filter", `{"name":0}`), "filter"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := Parse(tc.vals, 100)
			require.Error(t, err)
			assert.Nil(t, opts)

			bre, ok := domain.AsBadRequest(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, bre.Field)
		})
	}
}

func TestParseCountProjectionMessage(t *testing.T) {
	_, err := Parse(values("count", "true", "select", `{"name":1}`), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot project while counting")
}
