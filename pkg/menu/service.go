package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/rs/zerolog"
)

// ModuleRenderer renders a module placed inside a mega menu column.
type ModuleRenderer interface {
	RenderModule(ctx context.Context, id int64) (template.HTML, error)
}

// Option configures a Service.
type Option func(*config)

type config struct {
	modules     ModuleRenderer
	templateDir string
	templates   fs.FS
	logger      zerolog.Logger
}

// WithModules enables module items inside mega menu columns.
func WithModules(m ModuleRenderer) Option {
	return func(c *config) {
		c.modules = m
	}
}

// WithTemplateDir loads templates from dir before the embedded set, so a
// template may override any of them.
func WithTemplateDir(dir string) Option {
	return func(c *config) {
		c.templateDir = dir
	}
}

// WithTemplates replaces the embedded template set.
func WithTemplates(files fs.FS) Option {
	return func(c *config) {
		if files != nil {
			c.templates = files
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Service edits and renders the menu tree kept in a Store.
type Service struct {
	store   Store
	views   *views
	modules ModuleRenderer
	logger  zerolog.Logger
}

// NewService returns a Service over store.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("menu: store is required")
	}
	cfg := config{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	v, err := newViews(cfg.templates, cfg.templateDir)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:   store,
		views:   v,
		modules: cfg.modules,
		logger:  cfg.logger,
	}, nil
}

// Tree returns the non trashed items of a menu as a tree. Levels are
// recomputed so a stale nested set still renders correctly.
func (s *Service) Tree(ctx context.Context, menuType string) ([]*Node, error) {
	items, err := s.store.MenuItems(ctx, menuType)
	if err != nil {
		return nil, fmt.Errorf("menu: load %s: %w", menuType, err)
	}
	return BuildTree(Renumber(visible(items, false))), nil
}

// TreeHTML renders the admin tree of a menu.
func (s *Service) TreeHTML(ctx context.Context, menuType string) (template.HTML, error) {
	nodes, err := s.Tree(ctx, menuType)
	if err != nil {
		return "", err
	}
	return s.views.tree(nodes)
}

// Rebuild recomputes the nested set numbers of every item.
func (s *Service) Rebuild(ctx context.Context) error {
	items, err := s.store.AllMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("menu: rebuild: %w", err)
	}
	return s.writeTree(ctx, items)
}

// Adopt moves item id under parent, after its new siblings.
func (s *Service) Adopt(ctx context.Context, id, parent int64) error {
	items, err := s.store.AllMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("menu: adopt: %w", err)
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return ErrNotFound
	}
	if parent == 0 {
		parent = RootID
	}
	if err := checkParent(items, items[idx], parent); err != nil {
		return err
	}
	if items[idx].ParentID != parent {
		items[idx].ParentID = parent
		items[idx].Ordering = nextOrdering(items, parent, id)
	}
	return s.writeTree(ctx, items)
}

// SaveOrder assigns orderings[i] to ids[i].
func (s *Service) SaveOrder(ctx context.Context, ids []int64, orderings []int) error {
	if len(ids) != len(orderings) {
		return ErrOrderMismatch
	}
	if len(ids) == 0 {
		return nil
	}
	items, err := s.store.AllMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("menu: save order: %w", err)
	}
	for i, id := range ids {
		idx := indexOf(items, id)
		if idx < 0 {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		items[idx].Ordering = orderings[i]
	}
	return s.writeTree(ctx, items)
}

// Trash moves the item and everything below it to the trash.
func (s *Service) Trash(ctx context.Context, id int64) error {
	items, err := s.store.AllMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("menu: trash: %w", err)
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return ErrNotFound
	}
	below := descendants(items, id)
	for i := range items {
		if _, ok := below[items[i].ID]; ok || i == idx {
			items[i].Published = StateTrashed
		}
	}
	return s.writeTree(ctx, items)
}

// Save creates or updates an item and renumbers the tree.
func (s *Service) Save(ctx context.Context, item *Item) error {
	if item == nil {
		return fmt.Errorf("menu: item is required")
	}
	if err := normalizeItem(item); err != nil {
		return err
	}
	items, err := s.store.AllMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("menu: save: %w", err)
	}
	if item.ID != 0 {
		idx := indexOf(items, item.ID)
		if idx < 0 {
			return ErrNotFound
		}
		if err := checkParent(items, *item, item.ParentID); err != nil {
			return err
		}
		if items[idx].ParentID != item.ParentID {
			item.Ordering = nextOrdering(items, item.ParentID, item.ID)
		}
	} else {
		if err := checkParent(items, *item, item.ParentID); err != nil {
			return err
		}
		if item.Ordering == 0 {
			item.Ordering = nextOrdering(items, item.ParentID, 0)
		}
	}
	if err := s.store.SaveMenuItem(ctx, item); err != nil {
		return fmt.Errorf("menu: save %q: %w", item.Title, err)
	}
	return s.Rebuild(ctx)
}

// Item returns one menu item.
func (s *Service) Item(ctx context.Context, id int64) (Item, error) {
	item, err := s.store.MenuItem(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("menu: load %d: %w", id, err)
	}
	return item, nil
}

// MegaMenu returns the dropdown settings of an item.
func (s *Service) MegaMenu(ctx context.Context, id int64) (MegaMenu, error) {
	item, err := s.store.MenuItem(ctx, id)
	if err != nil {
		return MegaMenu{}, fmt.Errorf("menu: load %d: %w", id, err)
	}
	return MegaMenuOf(item)
}

// SaveMegaMenu stores the dropdown settings of an item. Only top level
// items keep the mega menu layout.
func (s *Service) SaveMegaMenu(ctx context.Context, id int64, m MegaMenu) error {
	item, err := s.store.MenuItem(ctx, id)
	if err != nil {
		return fmt.Errorf("menu: load %d: %w", id, err)
	}
	if !item.TopLevel() {
		m.Enabled = false
		m.Rows = nil
	}
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("menu: encode mega menu: %w", err)
	}
	var stored map[string]any
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("menu: encode mega menu: %w", err)
	}
	item.Params = item.Params.Clone()
	item.Params.Set(ParamMegaMenu, stored)
	if err := s.store.SaveMenuItem(ctx, &item); err != nil {
		return fmt.Errorf("menu: save mega menu %d: %w", id, err)
	}
	return nil
}

// Body is the markup and title of the mega menu modal.
type Body struct {
	Title string
	HTML  template.HTML
}

// Modal titles.
const (
	TitleMegaMenu = "Mega Menu"
	TitleSettings = "Settings"
)

// MegaMenuBody renders the modal for an item: the layout builder for top
// level items, the plain settings form for the others.
func (s *Service) MegaMenuBody(ctx context.Context, id int64) (Body, error) {
	item, err := s.store.MenuItem(ctx, id)
	if err != nil {
		return Body{}, fmt.Errorf("menu: load %d: %w", id, err)
	}
	settings, err := MegaMenuOf(item)
	if err != nil {
		return Body{}, err
	}
	if !item.TopLevel() {
		html, err := s.views.settings(item, settings)
		return Body{Title: TitleSettings, HTML: html}, err
	}

	siblings, err := s.store.MenuItems(ctx, item.MenuType)
	if err != nil {
		return Body{}, fmt.Errorf("menu: load %s: %w", item.MenuType, err)
	}
	html, err := s.views.builder(item, settings, visible(siblings, true))
	return Body{Title: TitleMegaMenu, HTML: html}, err
}

// RenderMenu renders the published items of a menu as the site navigation.
func (s *Service) RenderMenu(ctx context.Context, menuType string) (template.HTML, error) {
	items, err := s.store.MenuItems(ctx, menuType)
	if err != nil {
		return "", fmt.Errorf("menu: load %s: %w", menuType, err)
	}
	published := visible(items, true)
	r := &navRenderer{
		ctx:     ctx,
		views:   s.views,
		modules: s.modules,
		logger:  s.logger,
		byID:    make(map[int64]*Node, len(published)),
	}
	roots := BuildTree(published)
	r.index(roots)
	return r.nav(roots)
}

func (s *Service) writeTree(ctx context.Context, items []Item) error {
	if err := s.store.UpdateTree(ctx, Renumber(items)); err != nil {
		return fmt.Errorf("menu: update tree: %w", err)
	}
	return nil
}

func visible(items []Item, publishedOnly bool) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Published == StateTrashed {
			continue
		}
		if publishedOnly && item.Published != StatePublished {
			continue
		}
		out = append(out, item)
	}
	return out
}

func indexOf(items []Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func checkParent(items []Item, item Item, parent int64) error {
	if parent == RootID {
		return nil
	}
	if parent == item.ID && item.ID != 0 {
		return ErrInvalidParent
	}
	idx := indexOf(items, parent)
	if idx < 0 || items[idx].MenuType != item.MenuType || items[idx].Published == StateTrashed {
		return ErrInvalidParent
	}
	if item.ID != 0 {
		if _, ok := descendants(items, item.ID)[parent]; ok {
			return ErrInvalidParent
		}
	}
	return nil
}

func nextOrdering(items []Item, parent, skip int64) int {
	highest := 0
	for _, item := range items {
		if item.ParentID == parent && item.ID != skip && item.Ordering > highest {
			highest = item.Ordering
		}
	}
	return highest + 1
}
