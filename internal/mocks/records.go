package mocks

import (
	"fmt"
	"sort"

	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// selectRecords filters, sorts, pages and projects records per opts.
func selectRecords(all []store.Record, opts *query.Options) ([]store.Record, error) {
	matched, err := filterRecords(all, opts.Filter)
	if err != nil {
		return nil, err
	}

	if len(opts.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, f := range opts.Sort {
				a, b := fmt.Sprint(matched[i][f.Field]), fmt.Sprint(matched[j][f.Field])
				if a == b {
					continue
				}
				if f.Descending {
					return a > b
				}
				return a < b
			}
			return false
		})
	}

	if opts.Skip >= len(matched) {
		matched = matched[:0]
	} else {
		matched = matched[opts.Skip:]
	}
	if opts.Limit != query.NoLimit && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	out := make([]store.Record, 0, len(matched))
	for _, r := range matched {
		out = append(out, store.Record(opts.Projection.Apply(r)))
	}
	return out, nil
}

func filterRecords(all []store.Record, filter query.Document) ([]store.Record, error) {
	out := make([]store.Record, 0, len(all))
	for _, r := range all {
		ok, err := matches(r, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r store.Record, filter query.Document) (bool, error) {
	for field, want := range filter {
		if field == "_id" {
			field = query.IDField
		}
		got := fmt.Sprint(r[field])

		if ops, ok := want.(map[string]any); ok {
			list, ok := ops["$in"].([]any)
			if !ok || len(ops) != 1 {
				return false, fmt.Errorf("mocks: unsupported filter on %q", field)
			}
			found := false
			for _, v := range list {
				if fmt.Sprint(v) == got {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
			continue
		}

		if fmt.Sprint(want) != got {
			return false, nil
		}
	}
	return true, nil
}
