// Package menu manages the menu item tree edited in the template manager:
// nested set numbering, parent adoption, ordering, trashing, per item mega
// menu settings, and the admin and site markup for the tree.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/params"
)

// RootID is the id of the implicit root every top level item hangs from.
const RootID int64 = 1

// Publishing states.
const (
	StateTrashed     = -2
	StateUnpublished = 0
	StatePublished   = 1
)

// ParamMegaMenu is the item param holding the mega menu settings.
const ParamMegaMenu = "helixultimatemenulayout"

var (
	// ErrNotFound is returned for unknown menu items.
	ErrNotFound = errors.New("menu: item not found")
	// ErrInvalidParent is returned when an item would hang from itself, one
	// of its descendants, or an item of another menu.
	ErrInvalidParent = errors.New("menu: invalid parent")
	// ErrOrderMismatch is returned when ids and orderings differ in length.
	ErrOrderMismatch = errors.New("menu: ids and orderings differ in length")
	// ErrInvalidItem is returned for items or settings that fail checks.
	ErrInvalidItem = errors.New("menu: invalid item")
)

// Item is one menu entry.
type Item struct {
	ID        int64         `json:"id"`
	MenuType  string        `json:"menutype"`
	Title     string        `json:"title"`
	Alias     string        `json:"alias"`
	Link      string        `json:"link"`
	ParentID  int64         `json:"parent_id"`
	Level     int           `json:"level"`
	Lft       int           `json:"lft"`
	Rgt       int           `json:"rgt"`
	Ordering  int           `json:"ordering"`
	Published int           `json:"published"`
	Params    params.Params `json:"params,omitempty"`
}

// URL returns the item link, falling back to its alias path.
func (i Item) URL() string {
	if link := strings.TrimSpace(i.Link); link != "" {
		return link
	}
	if i.Alias == "" {
		return "/"
	}
	return "/" + i.Alias
}

// TopLevel reports whether the item hangs from the root.
func (i Item) TopLevel() bool {
	return i.ParentID == RootID
}

// Store persists menu items.
type Store interface {
	MenuItems(ctx context.Context, menuType string) ([]Item, error)
	AllMenuItems(ctx context.Context) ([]Item, error)
	MenuItem(ctx context.Context, id int64) (Item, error)
	// SaveMenuItem inserts the item when its ID is zero and sets the new id.
	SaveMenuItem(ctx context.Context, item *Item) error
	// UpdateTree writes parent, level, lft, rgt, ordering and state.
	UpdateTree(ctx context.Context, items []Item) error
}

func normalizeItem(item *Item) error {
	item.Title = strings.TrimSpace(item.Title)
	item.MenuType = strings.TrimSpace(item.MenuType)
	if item.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidItem)
	}
	if item.MenuType == "" {
		return fmt.Errorf("%w: menutype is required", ErrInvalidItem)
	}
	if strings.TrimSpace(item.Alias) == "" {
		item.Alias = layout.URLSafe(item.Title)
	}
	if item.ParentID == 0 {
		item.ParentID = RootID
	}
	return nil
}
