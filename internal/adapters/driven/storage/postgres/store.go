// Package postgres provides a DocumentStore backed by Postgres with the
// pgvector extension. Similarity search is a single SQL query ordered by
// cosine distance; there is no local index.
package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/kbridge/kbridge/internal/adapters/driven/storage/postgres/migrations"
	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Default connection pool settings.
const (
	defaultMaxOpenConns = 8
	defaultConnLifetime = 30 * time.Minute
)

// Config holds connection settings for the store.
type Config struct {
	// URL is the Postgres connection string (postgres:// URL or
	// key=value DSN).
	URL string

	// ServiceKey, when set, overrides the password in URL. This lets a
	// session's credential triple carry the secret separately from the
	// connection string.
	ServiceKey string

	// MaxOpenConns bounds the pool size (default 8).
	MaxOpenConns int
}

// Store is a Postgres-backed document store.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool and applies pending migrations.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgres: connection URL is required")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = defaultMaxOpenConns
	}

	connStr, err := connString(cfg.URL, cfg.ServiceKey)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(defaultConnLifetime)

	s := &Store{db: db}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// connString merges an optional service key into the connection string as
// the password.
func connString(rawURL, serviceKey string) (string, error) {
	if serviceKey == "" {
		return rawURL, nil
	}

	if strings.Contains(rawURL, "://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("parsing connection URL: %w", err)
		}
		user := ""
		if u.User != nil {
			user = u.User.Username()
		}
		if user == "" {
			user = "postgres"
		}
		u.User = url.UserPassword(user, serviceKey)
		return u.String(), nil
	}

	// key=value DSN form.
	return rawURL + " password=" + quoteDSNValue(serviceKey), nil
}

func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, " '\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// migrate applies all pending migrations in lexical filename order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	names, err := migrationNames(fsys)
	if err != nil {
		return err
	}

	for _, name := range names {
		version, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if version <= currentVersion {
			continue
		}

		contents, err := fsys.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(contents)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

func migrationNames(fsys embed.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// migrationVersion extracts the numeric prefix of NNNN_description.sql.
func migrationVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("malformed migration name %q", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("malformed migration version in %q: %w", name, err)
	}
	return version, nil
}

// encodeVectorLiteral renders a float32 slice as a pgvector literal,
// e.g. "[0.1,0.2]".
func encodeVectorLiteral(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", errors.New("vector must not be empty")
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// upstream wraps infrastructure errors so callers can report the failing
// collaborator without inspecting driver internals.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	return &domain.UpstreamError{Collaborator: "store", Err: err}
}
