package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsPolarity/internal/config"
	"NewsPolarity/internal/ports"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Repository persists sources, topics, articles and subscribers in Postgres or SQLite.
type Repository struct {
	db      *sql.DB
	dialect string
	builder sq.StatementBuilderType
}

var _ ports.ArticleRepository = (*Repository)(nil)

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Repository, error) {
	driver, err := driverName(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if driver == "sqlite" {
		// every connection to :memory: is its own database
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return NewRepository(db, cfg.Dialect), nil
}

// NewRepository wraps an existing handle. An empty dialect means postgres.
func NewRepository(db *sql.DB, dialect string) *Repository {
	if dialect == "" {
		dialect = config.DialectPostgres
	}
	format := sq.PlaceholderFormat(sq.Dollar)
	if dialect == config.DialectSQLite {
		format = sq.Question
	}
	return &Repository{
		db:      db,
		dialect: dialect,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

func driverName(dialect string) (string, error) {
	switch dialect {
	case "", config.DialectPostgres:
		return "postgres", nil
	case config.DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", dialect)
	}
}

// Close releases the underlying pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Migrate applies embedded schema files for the dialect that are not yet recorded.
// It returns the versions applied by this call.
func (r *Repository) Migrate(ctx context.Context) ([]string, error) {
	appliedAt := "TIMESTAMPTZ NOT NULL DEFAULT NOW()"
	if r.dialect == config.DialectSQLite {
		appliedAt = "DATETIME DEFAULT CURRENT_TIMESTAMP"
	}
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at `+appliedAt+`
	)`); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	dir := "migrations/" + r.dialect
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var applied []string
	for _, f := range files {
		countSQL, args, err := r.builder.Select("COUNT(*)").From("schema_migrations").Where(sq.Eq{"version": f}).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build migration check: %w", err)
		}
		var seen int
		if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&seen); err != nil {
			return nil, fmt.Errorf("check migration %s: %w", f, err)
		}
		if seen > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile(dir + "/" + f)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", f, err)
		}

		if err := r.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return fmt.Errorf("exec migration %s: %w", f, err)
			}
			recordSQL, args, err := r.builder.Insert("schema_migrations").Columns("version").Values(f).ToSql()
			if err != nil {
				return fmt.Errorf("build migration record: %w", err)
			}
			if _, err := tx.ExecContext(ctx, recordSQL, args...); err != nil {
				return fmt.Errorf("record migration %s: %w", f, err)
			}
			return nil
		}); err != nil {
			return nil, err
		}
		applied = append(applied, f)
	}
	return applied, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanRows(rows *sql.Rows, scan func(*sql.Rows) error) error {
	for rows.Next() {
		if err := scan(rows); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan row: %w", err)
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return fmt.Errorf("close rows: %w", closeErr)
	}
	return nil
}
