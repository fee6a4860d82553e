package pubsite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/pubsite/posts"
)

// Store is the SQLite index of the last build. The preview server queries it
// instead of re-reading the content tree.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while a rebuild writes.
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

// schemaVersion is stored in PRAGMA user_version. The index is rebuilt on
// every build, so an older table is dropped instead of migrated.
const schemaVersion = 2

func (s *Store) ensureSchema() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version < schemaVersion {
		if _, err := s.db.Exec(`DROP TABLE IF EXISTS posts`); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    locale TEXT NOT NULL,
    url TEXT NOT NULL,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    date_source TEXT NOT NULL,
    display_date TEXT NOT NULL,
    tags TEXT NOT NULL,
    description TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT '',
    html TEXT NOT NULL,
    path TEXT NOT NULL,
    PRIMARY KEY (locale, url)
);
CREATE INDEX IF NOT EXISTS posts_locale_date ON posts (locale, date DESC, position);
`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

// ReplaceLocale swaps the indexed posts of a locale for list in one
// transaction. The list order is kept for posts sharing a date.
func (s *Store) ReplaceLocale(ctx context.Context, locale string, list []posts.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE locale = ?`, locale); err != nil {
		return fmt.Errorf("clear %s: %w", locale, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO posts
		(locale, url, position, title, date, date_source, display_date, tags, description, excerpt, icon, html, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, p := range list {
		if _, err := stmt.ExecContext(ctx, locale, p.URL, i, p.Title, p.Date.UTC().Format(time.RFC3339),
			p.DateSource, p.DisplayDate, joinTags(p.Tags), p.Description, p.Excerpt, p.Icon, p.HTML, p.Path); err != nil {
			return fmt.Errorf("index %s: %w", p.URL, err)
		}
	}
	return tx.Commit()
}

const postColumns = `url, title, date, date_source, display_date, tags, description, excerpt, icon, html, path`

// ListPosts returns the indexed posts of a locale, newest first. If tag is
// non-empty, results are filtered to posts carrying that tag.
func (s *Store) ListPosts(ctx context.Context, locale, tag string) ([]posts.Post, error) {
	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE locale = ? ORDER BY date DESC, position`, locale)
	} else {
		normalizedTag := strings.ToLower(strings.TrimSpace(tag))
		rows, err = s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE locale = ? AND instr(lower(tags), ',' || ? || ',') > 0 ORDER BY date DESC, position`, locale, normalizedTag)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []posts.Post
	for rows.Next() {
		p, err := scanPost(rows, locale)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListTags returns the tag vocabulary of a locale in first-seen order.
func (s *Store) ListTags(ctx context.Context, locale string) (posts.TagSet, error) {
	list, err := s.ListPosts(ctx, locale, "")
	if err != nil {
		return nil, err
	}
	return posts.Vocabulary(list), nil
}

// GetPost returns a single indexed post.
func (s *Store) GetPost(ctx context.Context, locale, url string) (posts.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE locale = ? AND url = ?`, locale, url)
	p, err := scanPost(row, locale)
	if err == sql.ErrNoRows {
		return posts.Post{}, ErrNotFound
	}
	return p, err
}

// Locales returns the locales present in the index.
func (s *Store) Locales(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT locale FROM posts ORDER BY locale`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner, locale string) (posts.Post, error) {
	var p posts.Post
	var date, tags string
	if err := row.Scan(&p.URL, &p.Title, &date, &p.DateSource, &p.DisplayDate, &tags,
		&p.Description, &p.Excerpt, &p.Icon, &p.HTML, &p.Path); err != nil {
		return posts.Post{}, err
	}
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return posts.Post{}, fmt.Errorf("post %s: bad indexed date %q: %w", p.URL, date, err)
	}
	p.Date = t
	p.Lang = locale
	p.Tags = ParseTags(tags)
	return p, nil
}

func joinTags(tags posts.TagSet) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a set.
func ParseTags(tagString string) posts.TagSet {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	return posts.NewTagSet(strings.Split(tagString, ",")...)
}
