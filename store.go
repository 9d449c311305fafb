package site

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/isidrok/site/content"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = sql.ErrNoRows

// Store wraps a SQLite database holding the index of collection entries.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the dev server read while a sync writes; the busy timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
    slug TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    path TEXT NOT NULL,
    format TEXT NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    description TEXT NOT NULL,
    draft INTEGER NOT NULL DEFAULT 0,
    repository TEXT NOT NULL DEFAULT '',
    live_demo TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL
);
`)
	return err
}

// dateLayout sorts lexically in date order for UTC times.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

const entryColumns = `slug, id, path, format, title, date, description, draft, repository, live_demo, body`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveEntry(ctx context.Context, db execer, e content.Entry) error {
	draft := 0
	if e.Draft {
		draft = 1
	}
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Slug, e.ID, e.Path, e.Format, e.Title, e.Date.UTC().Format(dateLayout), e.Description,
		draft, e.Repository, e.LiveDemo, e.Body)
	return err
}

// SaveEntry upserts a single entry keyed by slug.
func (s *Store) SaveEntry(ctx context.Context, e content.Entry) error {
	return saveEntry(ctx, s.db, e)
}

// ReplaceEntries makes entries the whole content of the index in one
// transaction.
func (s *Store) ReplaceEntries(ctx context.Context, entries []content.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return err
	}
	for _, e := range entries {
		if err := saveEntry(ctx, tx, e); err != nil {
			return fmt.Errorf("save %s: %w", e.Path, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (content.Entry, error) {
	var e content.Entry
	var date string
	var draft int
	if err := row.Scan(&e.Slug, &e.ID, &e.Path, &e.Format, &e.Title, &date, &e.Description,
		&draft, &e.Repository, &e.LiveDemo, &e.Body); err != nil {
		return content.Entry{}, err
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return content.Entry{}, fmt.Errorf("entry %s: parse date: %w", e.Slug, err)
	}
	e.Date = t
	e.Draft = draft == 1
	return e, nil
}

// ListEntries returns indexed entries ordered by date descending. Drafts are
// included only when includeDrafts is set.
func (s *Store) ListEntries(ctx context.Context, includeDrafts bool) ([]content.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE draft = 0 ORDER BY date DESC, slug`
	if includeDrafts {
		query = `SELECT ` + entryColumns + ` FROM entries ORDER BY date DESC, slug`
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []content.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns a single entry by slug, drafts included.
func (s *Store) GetEntry(ctx context.Context, slug string) (content.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE slug = ?`, slug)
	return scanEntry(row)
}

// DeleteEntry removes an entry by slug.
func (s *Store) DeleteEntry(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE slug = ?`, slug)
	return err
}
