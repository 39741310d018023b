package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/store"
)

// Store implements store.Store and store.ArticleStore on SQLite.
type Store struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: %w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS artifacts (
	name TEXT PRIMARY KEY,
	blob BLOB NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT UNIQUE NOT NULL,
	title TEXT,
	description TEXT,
	body TEXT,
	published_at TEXT,
	crawled_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Put replaces the named blob.
func (s *Store) Put(ctx context.Context, name string, blob []byte) error {
	if name == "" {
		return internalerr.ErrInvalidInput
	}
	const stmt = `
INSERT INTO artifacts (name, blob, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	blob=excluded.blob,
	updated_at=excluded.updated_at;
`
	_, err := s.db.ExecContext(ctx, stmt, name, blob, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Get returns the named blob or internalerr.ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM artifacts WHERE name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: %s: %w", name, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// List returns artifact names in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM artifacts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// UpsertArticle inserts or updates an article, keyed by URL.
func (s *Store) UpsertArticle(ctx context.Context, a store.Article) error {
	if a.URL == "" {
		return nil
	}
	if a.CrawledAt.IsZero() {
		a.CrawledAt = time.Now()
	}
	const stmt = `
INSERT INTO articles (url, title, description, body, published_at, crawled_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	title=excluded.title,
	description=excluded.description,
	body=excluded.body,
	published_at=excluded.published_at,
	crawled_at=excluded.crawled_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		a.URL,
		a.Title,
		a.Description,
		a.Body,
		formatTime(a.PublishedAt),
		a.CrawledAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetArticleByURL looks an article up by link.
func (s *Store) GetArticleByURL(ctx context.Context, url string) (store.Article, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, url, title, description, body, published_at, crawled_at
FROM articles WHERE url = ?`, url)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Article{}, false, nil
	}
	if err != nil {
		return store.Article{}, false, err
	}
	return a, true, nil
}

// ListArticles returns articles in crawl order. limit <= 0 means all.
func (s *Store) ListArticles(ctx context.Context, limit int) ([]store.Article, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, url, title, description, body, published_at, crawled_at
FROM articles ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(r scanner) (store.Article, error) {
	var (
		a                      store.Article
		title, desc, body, pub sql.NullString
		crawled                string
	)
	if err := r.Scan(&a.ID, &a.URL, &title, &desc, &body, &pub, &crawled); err != nil {
		return store.Article{}, err
	}
	a.Title, a.Description, a.Body = title.String, desc.String, body.String
	a.PublishedAt = parseTime(pub.String)
	a.CrawledAt = parseTime(crawled)
	return a, nil
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

var (
	_ store.Store        = (*Store)(nil)
	_ store.ArticleStore = (*Store)(nil)
)
