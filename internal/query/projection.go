package query

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// IDField is the name of the identifier field in every returned document.
const IDField = "id"

// Projection selects which fields of a document are returned.
//
// In inclusion mode only Fields (plus the id, unless ExcludeID) are kept. In
// exclusion mode (Exclude true) every field except Fields is kept.
type Projection struct {
	Fields    []string
	Exclude   bool
	ExcludeID bool
}

// IsEmpty reports whether p leaves documents untouched.
func (p *Projection) IsEmpty() bool {
	return p == nil
}

// ParseProjection decodes a projection document such as {"name":1,"email":1}
// or {"pendingTasks":0}. Values may be 1/0 or true/false. Inclusion and
// exclusion cannot be mixed, except that the id may be excluded from an
// inclusion projection. "_id" is accepted as a synonym of "id".
func ParseProjection(param, raw string) (*Projection, error) {
	doc, err := parseDocument(param, raw)
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, nil
	}

	var include, exclude []string
	excludeID := false
	for key, value := range doc {
		field := canonicalField(key)
		on, ok := projectionFlag(value)
		if !ok {
			return nil, domain.NewBadRequest(param, "invalid value for %q, use 1 or 0", key)
		}
		switch {
		case field == IDField && !on:
			excludeID = true
		case field == IDField:
			// the id is included by default
		case on:
			include = append(include, field)
		default:
			exclude = append(exclude, field)
		}
	}

	if len(include) > 0 && len(exclude) > 0 {
		return nil, domain.NewBadRequest(param, "cannot mix inclusion and exclusion")
	}

	sort.Strings(include)
	sort.Strings(exclude)

	if len(include) > 0 {
		return &Projection{Fields: include, ExcludeID: excludeID}, nil
	}
	if excludeID {
		exclude = append([]string{IDField}, exclude...)
	}
	if len(exclude) == 0 {
		// {"id":1} alone selects only the id
		return &Projection{Fields: []string{}}, nil
	}
	return &Projection{Fields: exclude, Exclude: true}, nil
}

// Apply returns a copy of record containing only the projected fields.
func (p *Projection) Apply(record map[string]any) map[string]any {
	if p == nil {
		return record
	}

	out := make(map[string]any, len(record))
	if p.Exclude {
		for k, v := range record {
			out[k] = v
		}
		for _, f := range p.Fields {
			delete(out, f)
		}
		return out
	}

	if !p.ExcludeID {
		if v, ok := record[IDField]; ok {
			out[IDField] = v
		}
	}
	for _, f := range p.Fields {
		if v, ok := record[f]; ok {
			out[f] = v
		}
	}
	return out
}

func canonicalField(key string) string {
	key = strings.TrimSpace(key)
	if key == "_id" {
		return IDField
	}
	return key
}

func projectionFlag(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case json.Number:
		switch v.String() {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	}
	return false, false
}
