package service

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// ListResult is the answer to a list request: a count in count mode, the
// matching records otherwise.
type ListResult struct {
	Count   *int64
	Records []store.Record
}

// lister is the read side shared by the user and task stores.
type lister interface {
	Find(ctx context.Context, opts *query.Options) ([]store.Record, error)
	Count(ctx context.Context, filter query.Document) (int64, error)
}

func list(ctx context.Context, l lister, opts *query.Options) (*ListResult, error) {
	if opts.Count {
		n, err := l.Count(ctx, opts.Filter)
		if err != nil {
			return nil, err
		}
		return &ListResult{Count: &n}, nil
	}

	if opts.ReturnsNothing() {
		return &ListResult{Records: []store.Record{}}, nil
	}

	records, err := l.Find(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &ListResult{Records: records}, nil
}
