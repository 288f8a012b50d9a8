// Package sqlite is the SQLite backed store for styles, revisions, menu
// items, modules and articles.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-sitetheme/pkg/content"
	"github.com/goliatone/go-sitetheme/pkg/menu"
	"github.com/goliatone/go-sitetheme/pkg/params"
	"github.com/goliatone/go-sitetheme/pkg/positions"
	"github.com/goliatone/go-sitetheme/pkg/style"
)

const timeLayout = "2006-01-02T15:04:05Z"

// ErrNotFound is returned for missing rows without a domain sentinel.
var ErrNotFound = errors.New("sqlite: not found")

const schema = `
CREATE TABLE IF NOT EXISTS styles (
	id INTEGER PRIMARY KEY,
	template TEXT NOT NULL,
	title TEXT NOT NULL,
	home INTEGER NOT NULL DEFAULT 0,
	params TEXT NOT NULL DEFAULT '{}',
	updated TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS style_revisions (
	id TEXT PRIMARY KEY,
	style_id INTEGER NOT NULL,
	params TEXT NOT NULL,
	created TEXT NOT NULL,
	FOREIGN KEY (style_id) REFERENCES styles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS menu_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	menutype TEXT NOT NULL,
	title TEXT NOT NULL,
	alias TEXT NOT NULL,
	link TEXT NOT NULL DEFAULT '',
	parent_id INTEGER NOT NULL DEFAULT 1,
	level INTEGER NOT NULL DEFAULT 1,
	lft INTEGER NOT NULL DEFAULT 0,
	rgt INTEGER NOT NULL DEFAULT 0,
	ordering INTEGER NOT NULL DEFAULT 0,
	published INTEGER NOT NULL DEFAULT 1,
	params TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS modules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	position TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	format TEXT NOT NULL DEFAULT 'html',
	showtitle INTEGER NOT NULL DEFAULT 1,
	class TEXT NOT NULL DEFAULT '',
	ordering INTEGER NOT NULL DEFAULT 0,
	published INTEGER NOT NULL DEFAULT 1,
	params TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	alias TEXT NOT NULL,
	access INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS authors (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	alias TEXT NOT NULL,
	introtext TEXT NOT NULL DEFAULT '',
	catid INTEGER NOT NULL DEFAULT 0,
	created_by INTEGER NOT NULL DEFAULT 0,
	language TEXT NOT NULL DEFAULT '*',
	access INTEGER NOT NULL DEFAULT 1,
	state INTEGER NOT NULL DEFAULT 1,
	created TEXT NOT NULL,
	publish_down TEXT
);

CREATE TABLE IF NOT EXISTS article_tags (
	article_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	PRIMARY KEY (article_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_menu_items_menutype ON menu_items(menutype);
CREATE INDEX IF NOT EXISTS idx_modules_position ON modules(position, published);
CREATE INDEX IF NOT EXISTS idx_articles_catid ON articles(catid);

-- id 1 is the implicit menu root.
INSERT INTO sqlite_sequence (name, seq)
SELECT 'menu_items', 1
WHERE NOT EXISTS (SELECT 1 FROM sqlite_sequence WHERE name = 'menu_items');`

// Store implements the persistence interfaces of the style, menu,
// positions and content packages.
type Store struct {
	db *sql.DB
}

var (
	_ style.Store            = (*Store)(nil)
	_ menu.Store             = (*Store)(nil)
	_ positions.Source       = (*Store)(nil)
	_ positions.ModuleLookup = (*Store)(nil)
	_ content.ArticleStore   = (*Store)(nil)
)

// Open opens or creates the database at path and applies the schema. Use
// ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeParams(p params.Params) (string, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode params: %w", err)
	}
	return string(data), nil
}

func decodeParams(raw string) params.Params {
	p, err := params.FromJSON([]byte(raw))
	if err != nil || p == nil {
		return params.Params{}
	}
	return p
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// Style implements style.Store.
func (s *Store) Style(ctx context.Context, id int64) (style.Style, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, template, title, home, params, updated FROM styles WHERE id = ?", id)
	return scanStyle(row)
}

// DefaultStyle implements style.Store.
func (s *Store) DefaultStyle(ctx context.Context, template string) (style.Style, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, template, title, home, params, updated FROM styles
		 WHERE (? = '' OR template = ?)
		 ORDER BY home DESC, id ASC LIMIT 1`, template, template)
	return scanStyle(row)
}

func scanStyle(row *sql.Row) (style.Style, error) {
	var (
		st      style.Style
		home    int
		raw     string
		updated string
	)
	if err := row.Scan(&st.ID, &st.Template, &st.Title, &home, &raw, &updated); err != nil {
		return style.Style{}, notFound(err, style.ErrNotFound)
	}
	st.Home = home != 0
	st.Params = decodeParams(raw)
	st.Updated = parseTime(updated)
	return st, nil
}

// SaveStyle implements style.Store.
func (s *Store) SaveStyle(ctx context.Context, st style.Style) error {
	raw, err := encodeParams(st.Params)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO styles (id, template, title, home, params, updated)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			template = excluded.template,
			title = excluded.title,
			home = excluded.home,
			params = excluded.params,
			updated = excluded.updated`,
		st.ID, st.Template, st.Title, boolInt(st.Home), raw, formatTime(st.Updated))
	if err != nil {
		return fmt.Errorf("sqlite: upsert style: %w", err)
	}
	return nil
}

// AddRevision implements style.Store.
func (s *Store) AddRevision(ctx context.Context, r style.Revision) error {
	raw, err := encodeParams(r.Params)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO style_revisions (id, style_id, params, created) VALUES (?, ?, ?, ?)",
		r.ID, r.StyleID, raw, formatTime(r.Created))
	if err != nil {
		return fmt.Errorf("sqlite: insert revision: %w", err)
	}
	return nil
}

// Revisions implements style.Store.
func (s *Store) Revisions(ctx context.Context, styleID int64) ([]style.Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, style_id, params, created FROM style_revisions WHERE style_id = ? ORDER BY id DESC", styleID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []style.Revision
	for rows.Next() {
		var (
			r       style.Revision
			raw     string
			created string
		)
		if err := rows.Scan(&r.ID, &r.StyleID, &raw, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan revision: %w", err)
		}
		r.Params = decodeParams(raw)
		r.Created = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
