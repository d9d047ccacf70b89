package assignment

import (
	"encoding/json"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// NormalizeIDs turns a raw request value into a list of distinct ids.
//
// raw may be a single value or a list. Null and empty entries are dropped and
// duplicates removed, keeping first occurrences in order. The first entry that
// is not a valid id fails the whole call with a bad request on field.
func NormalizeIDs(field string, raw any) ([]string, error) {
	var values []any
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []any:
		values = v
	case []string:
		values = make([]any, len(v))
		for i, s := range v {
			values[i] = s
		}
	default:
		values = []any{v}
	}

	ids := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		var id string
		switch v := value.(type) {
		case nil:
			continue
		case string:
			id = v
		case json.Number:
			id = v.String()
		default:
			return nil, domain.NewBadRequest(field, "contains an invalid id")
		}

		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if err := domain.ValidateID(id); err != nil {
			return nil, domain.NewBadRequest(field, "contains an invalid id %q", id)
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}
