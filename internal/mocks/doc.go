// Package mocks provides in-memory implementations of the store interfaces
// for tests.
//
// The stores keep real state, so services and handlers can be exercised end to
// end without a database. Each method can be overridden through its Fn field
// to inject failures:
//
//	users := mocks.NewMemoryUserStore()
//	users.UpdateFn = func(ctx context.Context, user *domain.User) error {
//	    return errors.New("boom")
//	}
//
// Find supports plain equality filters and $in, which is all the tests need.
// Operator coverage of the real stores is tested in the postgres package.
package mocks
