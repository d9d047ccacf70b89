package query

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// dateLayouts are tried in order for date strings that are not epoch milliseconds.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Epoch-millisecond bounds of the years 0001 through 9999.
var (
	minMillis = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxMillis = time.Date(9999, time.December, 31, 23, 59, 59, 999_000_000, time.UTC).UnixMilli()
)

// Bool coerces v to a boolean. Native booleans are returned as-is and the
// strings "true" and "false" match case-insensitively; anything else yields def.
func Bool(v any, def bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return def
}

// String coerces a scalar request value to a string. nil yields "".
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// Time coerces v to a point in time. It accepts, in order of preference, a
// native time, a number or numeric string (epoch milliseconds), or an ISO-8601
// string. Empty or absent input returns nil without error so that required-field
// validation can decide. Unparseable input is a *domain.BadRequestError for field.
func Time(field string, v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if t.IsZero() {
			return nil, nil
		}
		return &t, nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil, nil
		}
		return t, nil
	case int:
		return fromMillis(field, int64(t))
	case int64:
		return fromMillis(field, t)
	case float64:
		return fromFloatMillis(field, t)
	case json.Number:
		return parseDateString(field, t.String())
	case string:
		return parseDateString(field, t)
	default:
		return nil, invalidDate(field)
	}
}

func parseDateString(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return fromMillis(field, ms)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return fromFloatMillis(field, f)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, invalidDate(field)
}

func fromMillis(field string, ms int64) (*time.Time, error) {
	if ms < minMillis || ms > maxMillis {
		return nil, invalidDate(field)
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}

// fromFloatMillis range-checks before converting; out-of-range float to int
// conversion is implementation-defined.
func fromFloatMillis(field string, f float64) (*time.Time, error) {
	if math.IsNaN(f) || f < float64(minMillis) || f > float64(maxMillis) {
		return nil, invalidDate(field)
	}
	return fromMillis(field, int64(f))
}

func invalidDate(field string) error {
	return domain.NewBadRequest(field, "invalid date")
}
