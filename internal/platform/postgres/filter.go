package postgres

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
)

// fieldKind is the storage type of a filterable column.
type fieldKind int

const (
	kindText fieldKind = iota
	kindBool
	kindTime
	kindTextArray
)

// column maps a document field to its SQL column.
type column struct {
	name string
	kind fieldKind
}

// schema maps document field names to columns for one table.
type schema map[string]column

var userSchema = schema{
	"id":           {"id", kindText},
	"name":         {"name", kindText},
	"email":        {"email", kindText},
	"pendingTasks": {"pending_tasks", kindTextArray},
	"dateCreated":  {"date_created", kindTime},
}

var taskSchema = schema{
	"id":               {"id", kindText},
	"name":             {"name", kindText},
	"description":      {"description", kindText},
	"deadline":         {"deadline", kindTime},
	"completed":        {"completed", kindBool},
	"assignedUser":     {"assigned_user", kindText},
	"assignedUserName": {"assigned_user_name", kindText},
	"dateCreated":      {"date_created", kindTime},
}

func (s schema) lookup(param, field string) (column, error) {
	if field == "_id" {
		field = query.IDField
	}
	col, ok := s[field]
	if !ok {
		return column{}, domain.NewBadRequest(param, "unknown field %q", field)
	}
	return col, nil
}

// sqlBuilder accumulates positional arguments while rendering SQL fragments.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// where renders a filter document as a WHERE clause, or "" for an empty filter.
//
// Supported forms: {"field": value} equality, {"field": {"$op": value}} with
// $eq $ne $in $nin $gt $gte $lt $lte $exists $regex (plus $options "i"), and
// top-level $and / $or / $nor over lists of filter documents. Equality against
// an array field matches documents whose array contains the value.
func (b *sqlBuilder) where(s schema, filter query.Document) (string, error) {
	if len(filter) == 0 {
		return "", nil
	}
	clause, err := b.conjunction(s, filter)
	if err != nil {
		return "", err
	}
	return " WHERE " + clause, nil
}

func (b *sqlBuilder) conjunction(s schema, doc map[string]any) (string, error) {
	parts := make([]string, 0, len(doc))
	for _, key := range sortedKeys(doc) {
		value := doc[key]

		var (
			part string
			err  error
		)
		switch key {
		case "$and":
			part, err = b.combine(s, key, value, " AND ", false)
		case "$or":
			part, err = b.combine(s, key, value, " OR ", false)
		case "$nor":
			part, err = b.combine(s, key, value, " OR ", true)
		default:
			if strings.HasPrefix(key, "$") {
				return "", domain.NewBadRequest(query.ParamWhere, "unsupported operator %q", key)
			}
			part, err = b.field(s, key, value)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return "TRUE", nil
	}
	return strings.Join(parts, " AND "), nil
}

func (b *sqlBuilder) combine(s schema, op string, value any, sep string, negate bool) (string, error) {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return "", domain.NewBadRequest(query.ParamWhere, "%s expects a non-empty array", op)
	}

	parts := make([]string, 0, len(list))
	for _, item := range list {
		doc, ok := item.(map[string]any)
		if !ok {
			return "", domain.NewBadRequest(query.ParamWhere, "%s expects an array of objects", op)
		}
		part, err := b.conjunction(s, doc)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+part+")")
	}

	clause := "(" + strings.Join(parts, sep) + ")"
	if negate {
		clause = "NOT " + clause
	}
	return clause, nil
}

func (b *sqlBuilder) field(s schema, key string, value any) (string, error) {
	col, err := s.lookup(query.ParamWhere, key)
	if err != nil {
		return "", err
	}

	ops, ok := value.(map[string]any)
	if !ok || !isOperatorDoc(ops) {
		return b.equals(col, key, value)
	}

	parts := make([]string, 0, len(ops))
	for _, op := range sortedKeys(ops) {
		if op == "$options" {
			continue
		}
		part, err := b.operator(col, key, op, ops[op], ops)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "TRUE", nil
	}
	return strings.Join(parts, " AND "), nil
}

func (b *sqlBuilder) operator(col column, key, op string, value any, ops map[string]any) (string, error) {
	switch op {
	case "$eq":
		return b.equals(col, key, value)
	case "$ne":
		eq, err := b.equals(col, key, value)
		if err != nil {
			return "", err
		}
		return "NOT (" + eq + ")", nil
	case "$in":
		return b.in(col, key, value)
	case "$nin":
		in, err := b.in(col, key, value)
		if err != nil {
			return "", err
		}
		return "NOT (" + in + ")", nil
	case "$gt", "$gte", "$lt", "$lte":
		if col.kind != kindText && col.kind != kindTime {
			return "", domain.NewBadRequest(query.ParamWhere, "%s is not supported on field %q", op, key)
		}
		v, err := scalarValue(col.kind, key, value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", col.name, comparison[op], b.bind(v)), nil
	case "$exists":
		if query.Bool(value, true) {
			return "TRUE", nil
		}
		return "FALSE", nil
	case "$regex":
		if col.kind != kindText {
			return "", domain.NewBadRequest(query.ParamWhere, "$regex is not supported on field %q", key)
		}
		pattern, ok := value.(string)
		if !ok {
			return "", domain.NewBadRequest(query.ParamWhere, "$regex on %q expects a string", key)
		}
		match := "~"
		if opts, _ := ops["$options"].(string); strings.Contains(opts, "i") {
			match = "~*"
		}
		return fmt.Sprintf("%s %s %s", col.name, match, b.bind(pattern)), nil
	default:
		return "", domain.NewBadRequest(query.ParamWhere, "unsupported operator %q", op)
	}
}

var comparison = map[string]string{
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
}

func (b *sqlBuilder) equals(col column, key string, value any) (string, error) {
	if value == nil {
		return col.name + " IS NULL", nil
	}

	if col.kind == kindTextArray {
		if list, ok := value.([]any); ok {
			vals, err := typedList(kindText, key, list)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s = %s::text[]", col.name, b.bind(vals)), nil
		}
		v, err := scalarValue(kindText, key, value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s::text = ANY(%s)", b.bind(v), col.name), nil
	}

	v, err := scalarValue(col.kind, key, value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", col.name, b.bind(v)), nil
}

func (b *sqlBuilder) in(col column, key string, value any) (string, error) {
	list, ok := value.([]any)
	if !ok {
		return "", domain.NewBadRequest(query.ParamWhere, "$in and $nin on %q expect an array", key)
	}

	if col.kind == kindTextArray {
		vals, err := typedList(kindText, key, list)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s && %s::text[]", col.name, b.bind(vals)), nil
	}

	vals, err := typedList(col.kind, key, list)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = ANY(%s)", col.name, b.bind(vals)), nil
}

// scalarValue converts a decoded JSON value to the Go type of a column.
func scalarValue(kind fieldKind, key string, value any) (any, error) {
	switch kind {
	case kindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			if b := strings.ToLower(v); b == "true" || b == "false" {
				return b == "true", nil
			}
		}
		return nil, domain.NewBadRequest(query.ParamWhere, "field %q expects a boolean", key)
	case kindTime:
		t, err := query.Time(query.ParamWhere, value)
		if err != nil || t == nil {
			return nil, domain.NewBadRequest(query.ParamWhere, "field %q expects a date", key)
		}
		return *t, nil
	default:
		if _, isList := value.([]any); isList {
			return nil, domain.NewBadRequest(query.ParamWhere, "field %q expects a single value", key)
		}
		if _, isDoc := value.(map[string]any); isDoc {
			return nil, domain.NewBadRequest(query.ParamWhere, "field %q expects a single value", key)
		}
		return query.String(value), nil
	}
}

// typedList converts a JSON array to a typed slice so the driver can encode it
// as a PostgreSQL array.
func typedList(kind fieldKind, key string, list []any) (any, error) {
	switch kind {
	case kindBool:
		out := make([]bool, 0, len(list))
		for _, item := range list {
			v, err := scalarValue(kind, key, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(bool))
		}
		return out, nil
	case kindTime:
		out := make([]time.Time, 0, len(list))
		for _, item := range list {
			v, err := scalarValue(kind, key, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(time.Time))
		}
		return out, nil
	default:
		out := make([]string, 0, len(list))
		for _, item := range list {
			v, err := scalarValue(kindText, key, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(string))
		}
		return out, nil
	}
}

// orderBy renders sort fields as an ORDER BY clause, or "" when there are none.
func orderBy(s schema, fields []query.SortField) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		col, err := s.lookup(query.ParamSort, f.Field)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, col.name+" "+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// page renders OFFSET and LIMIT for opts.
func (b *sqlBuilder) page(opts *query.Options) string {
	var sb strings.Builder
	if opts.Skip > 0 {
		sb.WriteString(" OFFSET " + b.bind(opts.Skip))
	}
	if opts.Limit != query.NoLimit {
		sb.WriteString(" LIMIT " + b.bind(opts.Limit))
	}
	return sb.String()
}

// buildSelect renders a complete list query over table.
func buildSelect(s schema, table, columns string, opts *query.Options) (string, []any, error) {
	b := &sqlBuilder{}

	where, err := b.where(s, opts.Filter)
	if err != nil {
		return "", nil, err
	}
	order, err := orderBy(s, opts.Sort)
	if err != nil {
		return "", nil, err
	}

	q := "SELECT " + columns + " FROM " + table + where + order + b.page(opts)
	return q, b.args, nil
}

// buildCount renders a count query over table.
func buildCount(s schema, table string, filter query.Document) (string, []any, error) {
	b := &sqlBuilder{}
	where, err := b.where(s, filter)
	if err != nil {
		return "", nil, err
	}
	return "SELECT count(*) FROM " + table + where, b.args, nil
}

func isOperatorDoc(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
