// Package persistence opens the database used by the service and keeps
// its schema up to date.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// Config holds database options
type Config interface {
	GetDriver() string
	GetDSN() string
	GetDebug() bool
}

// Logger receives query traces when debug is enabled
type Logger interface {
	Debug(msg string, args ...any)
}

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, cfg Config, logger Logger) (*bun.DB, error) {
	var db *bun.DB

	switch driver := strings.ToLower(cfg.GetDriver()); driver {
	case DriverSQLite, "sqlite3", "":
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// in memory databases only live as long as their connection
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres, "pgx", "postgresql":
		pgcfg, err := pgx.ParseConfig(cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		sqldb := stdlib.OpenDB(*pgcfg)
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if cfg.GetDebug() && logger != nil {
		db.AddQueryHook(&queryLogger{logger: logger})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Driver normalizes the configured driver name
func Driver(name string) string {
	switch strings.ToLower(name) {
	case DriverPostgres, "pgx", "postgresql":
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

var migrateMu sync.Mutex

// gooseUpContext is a seam for tests
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations for driver
func Migrate(ctx context.Context, db *bun.DB, driver string) error {
	driver = Driver(driver)

	fsys, err := GetMigrationsFS(driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	dialect := "sqlite3"
	if driver == DriverPostgres {
		dialect = "pgx"
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	goose.SetLogger(goose.NopLogger())

	if err := gooseUpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsNoRows reports whether err means the query matched nothing
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

type queryLogger struct {
	logger Logger
}

func (q *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (q *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	args := []any{"duration", time.Since(event.StartTime).String()}
	if event.Err != nil && !IsNoRows(event.Err) {
		args = append(args, "error", event.Err)
	}
	q.logger.Debug(event.Query, args...)
}
