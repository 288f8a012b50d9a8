package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-sitetheme/pkg/content"
)

// CategoryArticleIDs implements content.ArticleStore.
func (s *Store) CategoryArticleIDs(ctx context.Context, categoryID int64, limit int) ([]int64, error) {
	return s.queryIDs(ctx, "SELECT id FROM articles WHERE catid = ? ORDER BY id ASC LIMIT ?", categoryID, limit)
}

// TaggedArticleIDs implements content.ArticleStore.
func (s *Store) TaggedArticleIDs(ctx context.Context, tagIDs []int64) ([]int64, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(tagIDs))
	for i, id := range tagIDs {
		args[i] = id
	}
	return s.queryIDs(ctx,
		"SELECT DISTINCT article_id FROM article_tags WHERE tag_id IN ("+placeholders(len(tagIDs))+") ORDER BY article_id ASC",
		args...)
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Articles implements content.ArticleStore. Without access levels only
// public articles (level 1) are returned.
func (s *Store) Articles(ctx context.Context, f content.ArticleFilter) ([]content.Article, error) {
	if len(f.IDs) == 0 {
		return nil, nil
	}
	levels := f.AccessLevels
	if len(levels) == 0 {
		levels = []int{1}
	}

	var (
		where []string
		args  []any
	)
	where = append(where, "a.id IN ("+placeholders(len(f.IDs))+")")
	for _, id := range f.IDs {
		args = append(args, id)
	}
	where = append(where, "a.id != ?")
	args = append(args, f.ExcludeID)
	where = append(where, "a.access IN ("+placeholders(len(levels))+")")
	for _, l := range levels {
		args = append(args, l)
	}
	if len(f.Languages) > 0 {
		where = append(where, "a.language IN ("+placeholders(len(f.Languages))+")")
		for _, lang := range f.Languages {
			args = append(args, lang)
		}
	}
	where = append(where, "(a.publish_down IS NULL OR a.publish_down = '' OR a.publish_down >= ?)")
	args = append(args, formatTime(f.Now))
	where = append(where, "a.state = 1")

	query := `SELECT a.id, a.title, a.alias, a.introtext, a.catid, a.language, a.access, a.state,
			a.created, a.publish_down,
			COALESCE(b.title, ''), COALESCE(b.alias, ''), COALESCE(b.access, 0), COALESCE(u.name, '')
		FROM articles a
		LEFT JOIN categories b ON a.catid = b.id
		LEFT JOIN authors u ON a.created_by = u.id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY a.created DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []content.Article
	for rows.Next() {
		var (
			a       content.Article
			created string
			down    sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Alias, &a.Introtext, &a.CategoryID, &a.Language,
			&a.Access, &a.State, &created, &down,
			&a.Category, &a.CategoryAlias, &a.CategoryAccess, &a.Author); err != nil {
			return nil, fmt.Errorf("sqlite: scan article: %w", err)
		}
		a.Created = parseTime(created)
		if down.Valid {
			a.PublishDown = parseTime(down.String)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveArticle inserts or updates an article and replaces its tags.
func (s *Store) SaveArticle(ctx context.Context, a *content.Article, authorID int64, tagIDs []int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var down any
	if !a.PublishDown.IsZero() {
		down = formatTime(a.PublishDown)
	}
	language := a.Language
	if language == "" {
		language = "*"
	}

	if a.ID == 0 {
		res, execErr := tx.ExecContext(ctx,
			`INSERT INTO articles (title, alias, introtext, catid, created_by, language, access, state, created, publish_down)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Title, a.Alias, a.Introtext, a.CategoryID, authorID, language, a.Access, a.State, formatTime(a.Created), down)
		if execErr != nil {
			return fmt.Errorf("sqlite: insert article: %w", execErr)
		}
		if a.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("sqlite: article id: %w", err)
		}
	} else {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO articles (id, title, alias, introtext, catid, created_by, language, access, state, created, publish_down)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				alias = excluded.alias,
				introtext = excluded.introtext,
				catid = excluded.catid,
				created_by = excluded.created_by,
				language = excluded.language,
				access = excluded.access,
				state = excluded.state,
				created = excluded.created,
				publish_down = excluded.publish_down`,
			a.ID, a.Title, a.Alias, a.Introtext, a.CategoryID, authorID, language, a.Access, a.State, formatTime(a.Created), down); err != nil {
			return fmt.Errorf("sqlite: upsert article: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM article_tags WHERE article_id = ?", a.ID); err != nil {
		return fmt.Errorf("sqlite: clear tags: %w", err)
	}
	for _, tag := range tagIDs {
		if _, err = tx.ExecContext(ctx, "INSERT INTO article_tags (article_id, tag_id) VALUES (?, ?)", a.ID, tag); err != nil {
			return fmt.Errorf("sqlite: tag article: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit article: %w", err)
	}
	return nil
}

// SaveCategory inserts or updates a category.
func (s *Store) SaveCategory(ctx context.Context, id int64, title, alias string, access int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, title, alias, access) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, alias = excluded.alias, access = excluded.access`,
		id, title, alias, access)
	if err != nil {
		return fmt.Errorf("sqlite: upsert category: %w", err)
	}
	return nil
}

// SaveAuthor inserts or updates an author.
func (s *Store) SaveAuthor(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO authors (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name",
		id, name)
	if err != nil {
		return fmt.Errorf("sqlite: upsert author: %w", err)
	}
	return nil
}
