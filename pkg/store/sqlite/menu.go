package sqlite

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sitetheme/pkg/menu"
)

const menuColumns = "id, menutype, title, alias, link, parent_id, level, lft, rgt, ordering, published, params"

type scanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row scanner) (menu.Item, error) {
	var (
		item menu.Item
		raw  string
	)
	if err := row.Scan(&item.ID, &item.MenuType, &item.Title, &item.Alias, &item.Link,
		&item.ParentID, &item.Level, &item.Lft, &item.Rgt, &item.Ordering, &item.Published, &raw); err != nil {
		return menu.Item{}, err
	}
	item.Params = decodeParams(raw)
	return item, nil
}

func (s *Store) queryMenuItems(ctx context.Context, query string, args ...any) ([]menu.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query menu items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []menu.Item
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan menu item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// MenuItems implements menu.Store.
func (s *Store) MenuItems(ctx context.Context, menuType string) ([]menu.Item, error) {
	return s.queryMenuItems(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE menutype = ? ORDER BY lft ASC, id ASC", menuType)
}

// AllMenuItems implements menu.Store.
func (s *Store) AllMenuItems(ctx context.Context) ([]menu.Item, error) {
	return s.queryMenuItems(ctx, "SELECT "+menuColumns+" FROM menu_items ORDER BY lft ASC, id ASC")
}

// MenuItem implements menu.Store.
func (s *Store) MenuItem(ctx context.Context, id int64) (menu.Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+menuColumns+" FROM menu_items WHERE id = ?", id)
	item, err := scanMenuItem(row)
	if err != nil {
		return menu.Item{}, notFound(err, menu.ErrNotFound)
	}
	return item, nil
}

// SaveMenuItem implements menu.Store.
func (s *Store) SaveMenuItem(ctx context.Context, item *menu.Item) error {
	raw, err := encodeParams(item.Params)
	if err != nil {
		return err
	}
	if item.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO menu_items (menutype, title, alias, link, parent_id, level, lft, rgt, ordering, published, params)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.MenuType, item.Title, item.Alias, item.Link, item.ParentID, item.Level,
			item.Lft, item.Rgt, item.Ordering, item.Published, raw)
		if err != nil {
			return fmt.Errorf("sqlite: insert menu item: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: menu item id: %w", err)
		}
		item.ID = id
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO menu_items (id, menutype, title, alias, link, parent_id, level, lft, rgt, ordering, published, params)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			menutype = excluded.menutype,
			title = excluded.title,
			alias = excluded.alias,
			link = excluded.link,
			parent_id = excluded.parent_id,
			ordering = excluded.ordering,
			published = excluded.published,
			params = excluded.params`,
		item.ID, item.MenuType, item.Title, item.Alias, item.Link, item.ParentID, item.Level,
		item.Lft, item.Rgt, item.Ordering, item.Published, raw)
	if err != nil {
		return fmt.Errorf("sqlite: upsert menu item: %w", err)
	}
	return nil
}

// UpdateTree implements menu.Store. All rows are written in one
// transaction.
func (s *Store) UpdateTree(ctx context.Context, items []menu.Item) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE menu_items SET parent_id = ?, level = ?, lft = ?, rgt = ?, ordering = ?, published = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare tree update: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		if _, err = stmt.ExecContext(ctx, item.ParentID, item.Level, item.Lft, item.Rgt,
			item.Ordering, item.Published, item.ID); err != nil {
			return fmt.Errorf("sqlite: update menu item %d: %w", item.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tree: %w", err)
	}
	return nil
}
