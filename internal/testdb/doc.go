// Package testdb provides database helpers for integration tests.
//
// Tests that need a real PostgreSQL instance are compiled with the
// "integration" build tag and read the connection string from DATABASE_URL
// (or TASKBOARD_DATABASE_URL). Every test body runs inside a transaction that
// is rolled back afterwards, so tests never see each other's rows.
//
//	func TestMain(m *testing.M) {
//		db, err := testdb.Open(context.Background())
//		...
//	}
//
//	func TestSomething(t *testing.T) {
//		testdb.WithTx(t, db, func(ctx context.Context, tx *sql.Tx) {
//			store := postgres.NewPostgresUserStore(tx, nil)
//			...
//		})
//	}
package testdb
