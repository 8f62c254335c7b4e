// Package postgres provides a Postgres-backed core.AnalysisStore on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/logging"
)

// DB is the subset of *pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var errNotInitialized = errors.New("analysis store not initialized")

const selectColumns = `id, request_id, created_at, task, label, note, has_image, result, error, duration_ms`

// Options configures a Store.
type Options struct {
	// Table names the audit table. Defaults to "analyses".
	Table  string
	Logger logging.Logger
}

// Store persists analysis records in Postgres.
type Store struct {
	db     DB
	table  string
	logger logging.Logger
}

// Open connects a pgx pool to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// New constructs a Store on db.
func New(db DB, optFns ...func(o *Options)) *Store {
	opts := Options{
		Table:  "analyses",
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		db:     db,
		table:  pgx.Identifier{opts.Table}.Sanitize(),
		logger: logging.ForComponent(opts.Logger, "history.postgres"),
	}
}

// EnsureSchema creates the audit table and its index if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    task TEXT NOT NULL DEFAULT '',
    label TEXT NOT NULL DEFAULT '',
    note TEXT NOT NULL DEFAULT '',
    has_image BOOLEAN NOT NULL DEFAULT FALSE,
    result JSONB,
    error TEXT NOT NULL DEFAULT '',
    duration_ms BIGINT NOT NULL DEFAULT 0
);`, s.table),
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS request_id TEXT NOT NULL DEFAULT '';`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC);`,
			pgx.Identifier{"idx_" + unquoted(s.table) + "_created_at"}.Sanitize(), s.table),
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

// Save inserts rec. An existing ID is left untouched and reported as
// core.ErrAlreadyExists.
func (s *Store) Save(ctx context.Context, rec core.AnalysisRecord) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	if rec.ID == "" {
		return errors.New("history: record id is required")
	}

	var result any
	if len(rec.Result) > 0 {
		result = []byte(rec.Result)
	}

	tag, err := s.db.Exec(ctx, fmt.Sprintf(`
INSERT INTO %s (`+selectColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
ON CONFLICT (id) DO NOTHING
`, s.table),
		rec.ID,
		rec.RequestID,
		rec.CreatedAt,
		string(rec.Task),
		rec.Label,
		rec.Note,
		rec.HasImage,
		result,
		rec.Error,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		s.logger.Error("history.save.error", "id", rec.ID, "error", err.Error())
		return fmt.Errorf("save analysis %q: %w", rec.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("analysis %q: %w", rec.ID, core.ErrAlreadyExists)
	}

	return nil
}

// Get returns the record with the given ID or core.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (core.AnalysisRecord, error) {
	if s == nil || s.db == nil {
		return core.AnalysisRecord{}, errNotInitialized
	}

	row := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT `+selectColumns+` FROM %s WHERE id = $1`, s.table), id)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.AnalysisRecord{}, fmt.Errorf("analysis %q: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.AnalysisRecord{}, fmt.Errorf("get analysis %q: %w", id, err)
	}

	return rec, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]core.AnalysisRecord, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}

	query := fmt.Sprintf(`SELECT `+selectColumns+` FROM %s ORDER BY created_at DESC`, s.table)
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := []core.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list analyses: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	return out, nil
}

func scanRecord(row pgx.Row) (core.AnalysisRecord, error) {
	var (
		rec        core.AnalysisRecord
		task       string
		result     []byte
		durationMS int64
	)

	if err := row.Scan(
		&rec.ID,
		&rec.RequestID,
		&rec.CreatedAt,
		&task,
		&rec.Label,
		&rec.Note,
		&rec.HasImage,
		&result,
		&rec.Error,
		&durationMS,
	); err != nil {
		return core.AnalysisRecord{}, err
	}

	rec.Task = core.Task(task)
	if len(result) > 0 {
		rec.Result = result
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond

	return rec, nil
}

func unquoted(ident string) string {
	if len(ident) >= 2 && ident[0] == '"' && ident[len(ident)-1] == '"' {
		return ident[1 : len(ident)-1]
	}
	return ident
}
