package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/amishk599/hirecall/internal/model"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Ensure Store implements every store port.
var (
	_ model.CallStore        = (*Store)(nil)
	_ model.ApplicationStore = (*Store)(nil)
	_ model.JobPostStore     = (*Store)(nil)
)

// Store persists job posts, applications, agents and calls in SQLite or
// Postgres through database/sql.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Options tunes the connection pool. Zero values keep the driver defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the database, verifies the connection and creates the
// schema if needed.
func Open(ctx context.Context, driver, dsn string, opts Options) (*Store, error) {
	var sqlDriver string
	switch driver {
	case DriverSQLite, "":
		driver, sqlDriver = DriverSQLite, "sqlite"
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
		sqlDriver = "pgx"
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single connection serialises writers and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s db: %w", driver, err)
	}

	s := &Store{db: db, driver: driver, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*Store, error) {
	return Open(context.Background(), DriverSQLite, dbPath, Options{})
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "hirecall.db"
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS job_posts (
		id                TEXT PRIMARY KEY,
		organization_id   TEXT NOT NULL DEFAULT '',
		user_id           TEXT NOT NULL DEFAULT '',
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		requirements      TEXT NOT NULL DEFAULT '[]',
		responsibilities  TEXT NOT NULL DEFAULT '[]',
		location          TEXT NOT NULL DEFAULT '',
		is_active         BOOLEAN NOT NULL DEFAULT TRUE,
		application_count INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS call_agents (
		id              BIGINT PRIMARY KEY,
		organization_id TEXT NOT NULL DEFAULT '',
		name            TEXT NOT NULL DEFAULT '',
		agent_id        TEXT NOT NULL,
		is_active       BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS call_configs (
		id                TEXT PRIMARY KEY,
		job_post_id       TEXT NOT NULL,
		user_id           TEXT NOT NULL DEFAULT '',
		organization_id   TEXT NOT NULL DEFAULT '',
		agent_id          BIGINT NOT NULL DEFAULT 0,
		agent_name        TEXT NOT NULL DEFAULT '',
		greeting_text     TEXT NOT NULL DEFAULT '',
		organization_name TEXT NOT NULL DEFAULT '',
		job_title         TEXT NOT NULL DEFAULT '',
		from_number       TEXT NOT NULL DEFAULT '',
		call_script       TEXT NOT NULL DEFAULT '[]',
		is_active         BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at        TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS call_configs_job_post ON call_configs (job_post_id)`,
	`CREATE TABLE IF NOT EXISTS job_applications (
		id              TEXT PRIMARY KEY,
		created_at      TIMESTAMP NOT NULL,
		job_post_id     TEXT NOT NULL,
		candidate_name  TEXT NOT NULL,
		candidate_email TEXT NOT NULL,
		candidate_phone TEXT NOT NULL DEFAULT '',
		cv_text         TEXT NOT NULL DEFAULT '',
		cover_letter    TEXT NOT NULL DEFAULT '',
		linkedin_url    TEXT NOT NULL DEFAULT '',
		ats_score       INTEGER,
		ats_analysis    TEXT,
		status          TEXT NOT NULL DEFAULT 'submitted',
		shortlist_date  TIMESTAMP,
		is_shortlisted  BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS job_applications_post_email ON job_applications (job_post_id, candidate_email)`,
	`CREATE TABLE IF NOT EXISTS initial_calls (
		id                  TEXT PRIMARY KEY,
		created_at          TIMESTAMP NOT NULL,
		job_post_id         TEXT NOT NULL,
		job_application_id  TEXT NOT NULL,
		user_id             TEXT NOT NULL DEFAULT '',
		organization_id     TEXT NOT NULL DEFAULT '',
		agent_id            BIGINT NOT NULL DEFAULT 0,
		agent_name          TEXT NOT NULL DEFAULT '',
		call_id             TEXT,
		status              TEXT NOT NULL DEFAULT 'pending',
		duration            INTEGER NOT NULL DEFAULT 0,
		started_at          TIMESTAMP,
		ended_at            TIMESTAMP,
		call_transcript     TEXT NOT NULL DEFAULT '',
		summary_report      TEXT,
		candidate_responses TEXT,
		is_analysed         BOOLEAN NOT NULL DEFAULT FALSE,
		is_ended            BOOLEAN NOT NULL DEFAULT FALSE,
		is_viewed           BOOLEAN NOT NULL DEFAULT FALSE,
		notes               TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS initial_calls_call_id ON initial_calls (call_id)`,
	`CREATE INDEX IF NOT EXISTS initial_calls_job_post ON initial_calls (job_post_id)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(sqliteErr.Error(), "UNIQUE")
		}
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
