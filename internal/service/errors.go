package service

import (
	"fmt"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Error handling principles:
//  1. Client mistakes are returned as *domain.BadRequestError naming the field.
//  2. Missing entities surface as the store's not-found sentinels.
//  3. Anything else is wrapped with the failing operation and treated as internal.
//  4. The API layer maps these to HTTP status codes.

// invalidID reports a malformed path or reference id for field.
func invalidID(field, id string) error {
	return domain.NewBadRequest(field, "invalid id %q", id)
}

func wrap(op string, err error) error {
	if _, ok := domain.AsBadRequest(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
