package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/orgball2608/story-explorer/internal/migrations"
	"github.com/orgball2608/story-explorer/pkg/config"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"github.com/orgball2608/story-explorer/pkg/pgx"
	"github.com/orgball2608/story-explorer/pkg/retry"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Handle is an open database together with the dialect its queries use.
type Handle struct {
	DB      *sql.DB
	Dialect Dialect

	closeOnce sync.Once
	closers   []func() error
}

// Builder returns a squirrel builder using the dialect's placeholders.
func (h *Handle) Builder() sq.StatementBuilderType {
	if h.Dialect == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func (h *Handle) Close() error {
	var errs []error
	h.closeOnce.Do(func() {
		for _, c := range h.closers {
			errs = append(errs, c())
		}
	})
	return errors.Join(errs...)
}

// SchemaVersion reports the goose version applied to the database.
func (h *Handle) SchemaVersion(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(h.gooseDialect()); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, h.DB)
}

func (h *Handle) gooseDialect() string {
	if h.Dialect == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// LocalDB is the durable store behind favorites, pending submissions and
// the story cache. When Err is set the store could not be opened and
// callers fall back to in-memory collections.
type LocalDB struct {
	*Handle
	Err error
}

func (l *LocalDB) Available() bool {
	return l != nil && l.Handle != nil && l.Err == nil
}

// CacheDB is the network interceptor's own response store.
type CacheDB struct {
	*Handle
}

type Options struct {
	Driver string
	Path   string
	DSN    string
}

// OpenLocal opens and migrates the local store, retrying once. A final
// failure is reported as a storage-unavailable error.
func OpenLocal(ctx context.Context, opts Options, log logger.Logger) (*LocalDB, error) {
	var h *Handle
	err := retry.Do(ctx, log, "open local store", func() error {
		var err error
		h, err = open(ctx, opts)
		if err != nil {
			return err
		}
		if err := migrate(ctx, h, h.LocalMigrations()); err != nil {
			_ = h.Close()
			return err
		}
		return nil
	}, retry.OnceConfig())
	if err != nil {
		return nil, apperrors.StorageUnavailable(err, "open local store")
	}
	return &LocalDB{Handle: h}, nil
}

// OpenCache opens and migrates the interceptor response store at path.
func OpenCache(ctx context.Context, path string) (*CacheDB, error) {
	h, err := open(ctx, Options{Driver: config.DriverSQLite, Path: path})
	if err != nil {
		return nil, apperrors.StorageUnavailable(err, "open response cache")
	}
	if err := migrate(ctx, h, migrations.ResponsesSQLite); err != nil {
		_ = h.Close()
		return nil, apperrors.StorageUnavailable(err, "migrate response cache")
	}
	return &CacheDB{Handle: h}, nil
}

// Open connects to the store described by opts without migrating it.
func Open(ctx context.Context, opts Options) (*Handle, error) {
	return open(ctx, opts)
}

func open(ctx context.Context, opts Options) (*Handle, error) {
	switch opts.Driver {
	case config.DriverPostgres:
		pool, err := pgx.Connect(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		return &Handle{
			DB:      sqlDB,
			Dialect: Postgres,
			closers: []func() error{
				sqlDB.Close,
				func() error { pool.Close(); return nil },
			},
		}, nil
	case config.DriverSQLite, "":
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store dir: %w", err)
		}
		sqlDB, err := sql.Open("sqlite", SQLiteDSN(opts.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to ping sqlite: %w", err)
		}
		return &Handle{DB: sqlDB, Dialect: SQLite, closers: []func() error{sqlDB.Close}}, nil
	default:
		return nil, retry.Permanent(fmt.Errorf("unsupported store driver %q", opts.Driver))
	}
}

// SQLiteDSN enables WAL and immediate write transactions so readers keep
// seeing the last committed snapshot while a writer is active.
func SQLiteDSN(path string) string {
	return "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_txlock=immediate"
}

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

func migrate(ctx context.Context, h *Handle, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(h.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, h.DB, dir); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", dir, err)
	}
	return nil
}

// LocalMigrations is the migration directory for h's dialect.
func (h *Handle) LocalMigrations() string {
	if h.Dialect == Postgres {
		return migrations.LocalPostgres
	}
	return migrations.LocalSQLite
}

// RunGoose runs one goose command (up, down, status or version) over the
// embedded migrations in dir, reporting through log.
func RunGoose(ctx context.Context, h *Handle, dir, command string, log goose.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log)
	defer goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(h.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, h.DB, dir)
	case "down":
		return goose.DownContext(ctx, h.DB, dir)
	case "status":
		return goose.StatusContext(ctx, h.DB, dir)
	case "version":
		return goose.VersionContext(ctx, h.DB, dir)
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// IsUniqueViolation reports whether err is a primary key or unique
// constraint violation on either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// InTx runs fn in one transaction, committing only when fn succeeds.
func InTx(ctx context.Context, h *Handle, fn func(tx *sql.Tx) error) error {
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
