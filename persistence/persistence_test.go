package persistence_test

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-todo-auth/persistence"
)

type testConfig struct {
	driver string
	dsn    string
}

func (c testConfig) GetDriver() string { return c.driver }
func (c testConfig) GetDSN() string    { return c.dsn }
func (c testConfig) GetDebug() bool    { return true }

type queryLog struct {
	queries []string
}

func (q *queryLog) Debug(msg string, args ...any) {
	q.queries = append(q.queries, msg)
}

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	log := &queryLog{}

	db, err := persistence.Open(ctx, testConfig{driver: "sqlite", dsn: "file::memory:"}, log)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, persistence.Migrate(ctx, db, "sqlite"))
	require.NoError(t, persistence.Migrate(ctx, db, "sqlite3"))

	var tables []string
	err = db.NewSelect().
		Column("name").
		Table("sqlite_master").
		Where("type = ?", "table").
		Where("name IN (?, ?)", "users", "todo").
		Order("name ASC").
		Scan(ctx, &tables)
	require.NoError(t, err)
	assert.Equal(t, []string{"todo", "users"}, tables)
	assert.NotEmpty(t, log.queries)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := persistence.Open(context.Background(), testConfig{driver: "oracle"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestOpen_BadPostgresDSN(t *testing.T) {
	_, err := persistence.Open(context.Background(), testConfig{driver: "postgres", dsn: "postgres://%zz"}, nil)
	require.Error(t, err)
}

func TestDriver(t *testing.T) {
	for in, want := range map[string]string{
		"":           persistence.DriverSQLite,
		"sqlite3":    persistence.DriverSQLite,
		"SQLite":     persistence.DriverSQLite,
		"postgres":   persistence.DriverPostgres,
		"pgx":        persistence.DriverPostgres,
		"PostgreSQL": persistence.DriverPostgres,
	} {
		assert.Equal(t, want, persistence.Driver(in), in)
	}
}

func TestMigrationsFS(t *testing.T) {
	for _, driver := range []string{persistence.DriverSQLite, persistence.DriverPostgres} {
		fsys, err := persistence.GetMigrationsFS(driver)
		require.NoError(t, err)

		files, err := fs.Glob(fsys, "*.sql")
		require.NoError(t, err)
		assert.Equal(t, []string{"00001_create_users.sql", "00002_create_todo.sql"}, files, driver)
	}
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, persistence.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, persistence.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, persistence.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)")))
	assert.False(t, persistence.IsUniqueViolation(nil))

	assert.True(t, persistence.IsNoRows(sql.ErrNoRows))
	assert.False(t, persistence.IsNoRows(errors.New("other")))
}
