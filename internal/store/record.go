package store

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/taskboard-api/internal/query"
)

// Record is a document as returned to clients: field name to JSON value.
type Record map[string]any

// ToRecord converts an entity to its JSON document form and applies proj.
// A nil proj returns every field.
func ToRecord(entity any, proj *query.Projection) (Record, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	return Record(proj.Apply(m)), nil
}
