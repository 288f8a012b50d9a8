package sqlite

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sitetheme/pkg/positions"
)

const moduleColumns = "id, title, position, content, format, showtitle, class, ordering, params"

func scanModule(row scanner) (positions.Module, error) {
	var (
		m         positions.Module
		showTitle int
		raw       string
	)
	if err := row.Scan(&m.ID, &m.Title, &m.Position, &m.Content, &m.Format, &showTitle,
		&m.Class, &m.Ordering, &raw); err != nil {
		return positions.Module{}, err
	}
	m.ShowTitle = showTitle != 0
	m.Params = decodeParams(raw)
	return m, nil
}

// Modules implements positions.Source.
func (s *Store) Modules(ctx context.Context, position string) ([]positions.Module, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+moduleColumns+" FROM modules WHERE position = ? AND published = 1 ORDER BY ordering ASC, id ASC",
		position)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query modules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []positions.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Module implements positions.ModuleLookup.
func (s *Store) Module(ctx context.Context, id int64) (positions.Module, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+moduleColumns+" FROM modules WHERE id = ? AND published = 1", id)
	m, err := scanModule(row)
	if err != nil {
		return positions.Module{}, notFound(err, ErrNotFound)
	}
	return m, nil
}

// SaveModule inserts or updates a module. A zero id inserts and sets the
// new id.
func (s *Store) SaveModule(ctx context.Context, m *positions.Module, published bool) error {
	raw, err := encodeParams(m.Params)
	if err != nil {
		return err
	}
	format := m.Format
	if format == "" {
		format = "html"
	}
	if m.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO modules (title, position, content, format, showtitle, class, ordering, published, params)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Title, m.Position, m.Content, format, boolInt(m.ShowTitle), m.Class, m.Ordering, boolInt(published), raw)
		if err != nil {
			return fmt.Errorf("sqlite: insert module: %w", err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("sqlite: module id: %w", err)
		}
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO modules (id, title, position, content, format, showtitle, class, ordering, published, params)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			position = excluded.position,
			content = excluded.content,
			format = excluded.format,
			showtitle = excluded.showtitle,
			class = excluded.class,
			ordering = excluded.ordering,
			published = excluded.published,
			params = excluded.params`,
		m.ID, m.Title, m.Position, m.Content, format, boolInt(m.ShowTitle), m.Class, m.Ordering, boolInt(published), raw)
	if err != nil {
		return fmt.Errorf("sqlite: upsert module: %w", err)
	}
	return nil
}
