// Package testsupport opens migrated in memory databases for tests
package testsupport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-todo-auth/persistence"
)

type dbConfig struct {
	dsn string
}

func (c dbConfig) GetDriver() string { return persistence.DriverSQLite }
func (c dbConfig) GetDSN() string    { return c.dsn }
func (c dbConfig) GetDebug() bool    { return false }

// NewDB returns a migrated sqlite database closed when t ends
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := persistence.Open(ctx, dbConfig{dsn: "file::memory:"}, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, persistence.Migrate(ctx, db, persistence.DriverSQLite))
	return db
}
