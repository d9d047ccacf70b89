package query

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// NoLimit marks an unbounded result set.
const NoLimit = -1

// Parameter names recognized by Parse.
const (
	ParamWhere  = "where"
	ParamSort   = "sort"
	ParamSelect = "select"
	ParamFilter = "filter" // legacy alias of ParamSelect
	ParamSkip   = "skip"
	ParamLimit  = "limit"
	ParamCount  = "count"
)

// Document is a decoded JSON object such as a filter expression.
type Document map[string]any

// SortField orders results by one field.
type SortField struct {
	Field      string
	Descending bool
}

// Options is the typed form of a list request.
type Options struct {
	// Filter selects matching documents; empty matches everything.
	Filter Document
	// Sort lists the ordering keys in the order they were given; empty means store order.
	Sort []SortField
	// Projection limits the returned fields; nil returns whole documents.
	Projection *Projection
	// Skip is the number of matching documents to skip.
	Skip int
	// Limit caps the result size; NoLimit means unbounded.
	Limit int
	// Count asks for the number of matching documents instead of the documents.
	Count bool
}

// ReturnsNothing reports whether the request can be answered with an empty
// list without querying the store.
func (o *Options) ReturnsNothing() bool {
	return !o.Count && o.Limit == 0
}

// Parse validates the list parameters in values. defaultLimit applies when no
// limit is given outside count mode; pass NoLimit for an unbounded default.
// Every failure is a *domain.BadRequestError naming the offending parameter.
func Parse(values url.Values, defaultLimit int) (*Options, error) {
	opts := &Options{
		Filter: Document{},
		Limit:  defaultLimit,
	}

	var err error
	if raw := values.Get(ParamWhere); raw != "" {
		if opts.Filter, err = parseDocument(ParamWhere, raw); err != nil {
			return nil, err
		}
	}

	if raw := values.Get(ParamSort); raw != "" {
		if opts.Sort, err = parseSort(raw); err != nil {
			return nil, err
		}
	}

	projParam := selectParam(values)
	if opts.Projection, err = ParseSelect(values); err != nil {
		return nil, err
	}

	if raw := values.Get(ParamSkip); raw != "" {
		if opts.Skip, err = parseNonNegative(ParamSkip, raw); err != nil {
			return nil, err
		}
	}

	opts.Count = Bool(values.Get(ParamCount), false)

	if raw := values.Get(ParamLimit); raw != "" {
		if opts.Limit, err = parseNonNegative(ParamLimit, raw); err != nil {
			return nil, err
		}
	}
	if opts.Count {
		opts.Limit = NoLimit
	}

	if opts.Count && !opts.Projection.IsEmpty() {
		return nil, domain.NewBadRequest(projParam, "cannot project while counting")
	}

	return opts, nil
}

// ParseSelect reads the projection parameter from values. "select" is read
// when present, otherwise its legacy alias "filter". No projection yields nil.
func ParseSelect(values url.Values) (*Projection, error) {
	param := selectParam(values)
	raw := values.Get(param)
	if raw == "" {
		return nil, nil
	}
	return ParseProjection(param, raw)
}

func selectParam(values url.Values) string {
	if values.Has(ParamSelect) {
		return ParamSelect
	}
	return ParamFilter
}

func parseDocument(param, raw string) (Document, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, domain.NewBadRequest(param, "must be a valid JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewBadRequest(param, "must be a single JSON object")
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// parseSort decodes the sort document token by token so that key order,
// which determines sort precedence, survives.
func parseSort(raw string) ([]SortField, error) {
	invalid := domain.NewBadRequest(ParamSort, "must be a valid JSON object")

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, invalid
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, invalid
	}

	var fields []SortField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, invalid
		}
		key, _ := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, invalid
		}

		desc, err := sortDirection(key, value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, SortField{Field: key, Descending: desc})
	}

	if _, err := dec.Token(); err != nil {
		return nil, invalid
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewBadRequest(ParamSort, "must be a single JSON object")
	}

	return fields, nil
}

func sortDirection(field string, value any) (bool, error) {
	switch v := value.(type) {
	case json.Number:
		switch v.String() {
		case "1":
			return false, nil
		case "-1":
			return true, nil
		}
	case string:
		switch strings.ToLower(v) {
		case "asc", "ascending":
			return false, nil
		case "desc", "descending":
			return true, nil
		}
	}
	return false, domain.NewBadRequest(ParamSort, "invalid direction for %q, use 1 or -1", field)
}

func parseNonNegative(param, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, domain.NewBadRequest(param, "must be a non-negative integer")
	}
	return n, nil
}
