package menu

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sitetheme/pkg/params"
)

type memStore struct {
	mu    sync.Mutex
	items map[int64]Item
	next  int64
}

func newMemStore(items ...Item) *memStore {
	s := &memStore{items: map[int64]Item{}, next: 100}
	for _, item := range items {
		if item.Published == 0 {
			item.Published = StatePublished
		}
		s.items[item.ID] = item
	}
	return s
}

func (s *memStore) sorted(filter func(Item) bool) []Item {
	var out []Item
	for _, item := range s.items {
		if filter(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) MenuItems(_ context.Context, menuType string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(i Item) bool { return i.MenuType == menuType }), nil
}

func (s *memStore) AllMenuItems(context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(Item) bool { return true }), nil
}

func (s *memStore) MenuItem(_ context.Context, id int64) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return item, nil
}

func (s *memStore) SaveMenuItem(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		s.next++
		item.ID = s.next
	}
	s.items[item.ID] = *item
	return nil
}

func (s *memStore) UpdateTree(_ context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.items[item.ID] = item
	}
	return nil
}

func fixture() *memStore {
	return newMemStore(
		Item{ID: 2, MenuType: "mainmenu", Title: "Home", Alias: "home", ParentID: RootID, Ordering: 1},
		Item{ID: 3, MenuType: "mainmenu", Title: "Services", Alias: "services", ParentID: RootID, Ordering: 2},
		Item{ID: 4, MenuType: "mainmenu", Title: "Design", Alias: "design", ParentID: 3, Ordering: 1},
		Item{ID: 5, MenuType: "mainmenu", Title: "Hosting", Alias: "hosting", ParentID: 3, Ordering: 2},
		Item{ID: 6, MenuType: "mainmenu", Title: "Shared", Alias: "shared", ParentID: 5, Ordering: 1},
		Item{ID: 7, MenuType: "footer", Title: "Privacy", Alias: "privacy", ParentID: RootID, Ordering: 1},
	)
}

func newService(t *testing.T, store Store, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(store, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type numbers struct {
	Parent, Level, Lft, Rgt int64
}

func treeNumbers(items []Item) map[int64]numbers {
	out := map[int64]numbers{}
	for _, item := range items {
		out[item.ID] = numbers{item.ParentID, int64(item.Level), int64(item.Lft), int64(item.Rgt)}
	}
	return out
}

func TestRenumber(t *testing.T) {
	store := fixture()
	items, _ := store.AllMenuItems(context.Background())

	got := treeNumbers(Renumber(items))
	want := map[int64]numbers{
		7: {RootID, 1, 1, 2},
		2: {RootID, 1, 3, 4},
		3: {RootID, 1, 5, 12},
		4: {3, 2, 6, 7},
		5: {3, 2, 8, 11},
		6: {5, 3, 9, 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("nested set mismatch (-want +got):\n%s", diff)
	}
}

func TestRenumber_KeepsMenusContiguous(t *testing.T) {
	items := []Item{
		{ID: 10, MenuType: "mainmenu", ParentID: RootID, Ordering: 1},
		{ID: 11, MenuType: "footer", ParentID: RootID, Ordering: 1},
		{ID: 12, MenuType: "mainmenu", ParentID: RootID, Ordering: 2},
		{ID: 13, MenuType: "footer", ParentID: RootID, Ordering: 2},
		{ID: 14, MenuType: "mainmenu", ParentID: RootID, Ordering: 3},
	}
	lft := map[string][]int{}
	for _, item := range Renumber(items) {
		lft[item.MenuType] = append(lft[item.MenuType], item.Lft)
	}
	want := map[string][]int{
		"footer":   {1, 3},
		"mainmenu": {5, 7, 9},
	}
	for menu := range want {
		sort.Ints(lft[menu])
	}
	if diff := cmp.Diff(want, lft); diff != "" {
		t.Fatalf("menus interleaved (-want +got):\n%s", diff)
	}
}

func TestRenumber_BreaksCycles(t *testing.T) {
	items := []Item{
		{ID: 2, MenuType: "m", Title: "a", ParentID: 3},
		{ID: 3, MenuType: "m", Title: "b", ParentID: 2},
		{ID: 4, MenuType: "m", Title: "c", ParentID: 4},
		{ID: 5, MenuType: "m", Title: "d", ParentID: 99},
	}
	for _, item := range Renumber(items) {
		if item.Lft == 0 || item.Rgt <= item.Lft {
			t.Fatalf("item %d left unnumbered: %+v", item.ID, item)
		}
		if item.ID != 3 && item.ParentID != RootID {
			t.Fatalf("item %d should be moved to the top level, parent %d", item.ID, item.ParentID)
		}
	}
}

func TestService_Adopt(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	svc := newService(t, store)

	if err := svc.Adopt(ctx, 6, 4); err != nil {
		t.Fatalf("adopt: %v", err)
	}
	item, _ := store.MenuItem(ctx, 6)
	if item.ParentID != 4 || item.Level != 3 {
		t.Fatalf("expected item under 4 at level 3, got %+v", item)
	}

	if err := svc.Adopt(ctx, 3, 4); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("adopting a descendant must fail, got %v", err)
	}
	if err := svc.Adopt(ctx, 4, 7); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("adopting across menus must fail, got %v", err)
	}
	if err := svc.Adopt(ctx, 42, RootID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown item must fail, got %v", err)
	}
}

func TestService_SaveOrder(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	svc := newService(t, store)

	if err := svc.SaveOrder(ctx, []int64{4, 5}, []int{1}); !errors.Is(err, ErrOrderMismatch) {
		t.Fatalf("expected ErrOrderMismatch, got %v", err)
	}
	if err := svc.SaveOrder(ctx, []int64{5, 4}, []int{1, 2}); err != nil {
		t.Fatalf("save order: %v", err)
	}
	nodes, err := svc.Tree(ctx, "mainmenu")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	services := nodes[1]
	if services.Children[0].Item.ID != 5 || services.Children[1].Item.ID != 4 {
		t.Fatalf("unexpected child order: %d, %d", services.Children[0].Item.ID, services.Children[1].Item.ID)
	}
}

func TestService_TrashCascades(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	svc := newService(t, store)

	if err := svc.Trash(ctx, 5); err != nil {
		t.Fatalf("trash: %v", err)
	}
	for _, id := range []int64{5, 6} {
		item, _ := store.MenuItem(ctx, id)
		if item.Published != StateTrashed {
			t.Fatalf("item %d should be trashed", id)
		}
	}
	nodes, _ := svc.Tree(ctx, "mainmenu")
	if len(nodes[1].Children) != 1 {
		t.Fatalf("trashed items must leave the tree, got %d children", len(nodes[1].Children))
	}
}

func TestService_SaveNewItem(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	svc := newService(t, store)

	item := &Item{MenuType: "mainmenu", Title: "Contact Us", ParentID: 0, Published: StatePublished}
	if err := svc.Save(ctx, item); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err := store.MenuItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("load saved: %v", err)
	}
	if saved.Alias != "contact-us" || saved.ParentID != RootID || saved.Ordering != 3 || saved.Lft == 0 {
		t.Fatalf("unexpected saved item: %+v", saved)
	}

	bad := &Item{MenuType: "mainmenu", Title: "Orphan", ParentID: 7}
	if err := svc.Save(ctx, bad); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
}

func TestService_TreeHTML(t *testing.T) {
	svc := newService(t, fixture())
	html, err := svc.TreeHTML(context.Background(), "mainmenu")
	if err != nil {
		t.Fatalf("tree html: %v", err)
	}
	out := string(html)
	for _, want := range []string{
		`data-menutype="mainmenu"`,
		`class="hu-menu-tree-branch hu-menu-tree-level-2" data-itemid="4" data-parent="3"`,
		`class="hu-branch-tools-list-megamenu" data-id="3">Mega Menu</a>`,
		`class="hu-branch-tools-list-megamenu" data-id="4">Settings</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("tree html missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Privacy") {
		t.Fatalf("items of other menus must not be listed")
	}
}

func TestMegaMenu_LooseDecode(t *testing.T) {
	raw := `{"megamenu":"1","width":"800","menualign":"full","showtitle":0,"faicon":"fas fa-star",
		"layout":[{"type":"row","attr":[{"type":"column","colGrid":"6","items":[{"type":"menu_item","item_id":"4"}]},{"colGrid":6,"items":[{"type":"module","item_id":12}]}]}]}`
	var m MegaMenu
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := MegaMenu{
		Enabled:   true,
		Width:     "800",
		Alignment: "full",
		Dropdown:  "right",
		ShowTitle: false,
		Icon:      "fas fa-star",
		Rows: []MegaRow{{Columns: []MegaColumn{
			{Size: 6, Items: []MegaItem{{Type: MegaItemMenu, ItemID: 4}}},
			{Size: 6, Items: []MegaItem{{Type: MegaItemModule, ItemID: 12}}},
		}}},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("mega menu mismatch (-want +got):\n%s", diff)
	}
	if m.WidthCSS() != "800px" {
		t.Fatalf("unexpected width %q", m.WidthCSS())
	}

	m.Rows[0].Columns[1].Size = 7
	if err := m.Validate(); err == nil {
		t.Fatalf("expected overflowing row to fail validation")
	}
}

func TestService_SaveMegaMenu(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	svc := newService(t, store)

	m := DefaultMegaMenu()
	m.Enabled = true
	m.Rows = []MegaRow{{Columns: []MegaColumn{{Size: 12, Items: []MegaItem{{Type: MegaItemMenu, ItemID: 4}}}}}}

	if err := svc.SaveMegaMenu(ctx, 3, m); err != nil {
		t.Fatalf("save mega menu: %v", err)
	}
	got, err := svc.MegaMenu(ctx, 3)
	if err != nil {
		t.Fatalf("load mega menu: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if err := svc.SaveMegaMenu(ctx, 4, m); err != nil {
		t.Fatalf("save child settings: %v", err)
	}
	child, _ := svc.MegaMenu(ctx, 4)
	if child.Enabled || len(child.Rows) != 0 {
		t.Fatalf("child items cannot hold a mega menu: %+v", child)
	}
}

func TestService_MegaMenuBody(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, fixture())

	body, err := svc.MegaMenuBody(ctx, 3)
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.Title != TitleMegaMenu || !strings.Contains(string(body.HTML), `data-type="menu_item" data-itemid="4">Design`) {
		t.Fatalf("unexpected top level body %q:\n%s", body.Title, body.HTML)
	}

	body, err = svc.MegaMenuBody(ctx, 6)
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.Title != TitleSettings || strings.Contains(string(body.HTML), "hu-megamenu-builder") {
		t.Fatalf("child items get the settings form only, got %q", body.Title)
	}
}

func TestService_MegaMenuBodyShowsSavedLayout(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, fixture())

	m := DefaultMegaMenu()
	m.Enabled = true
	m.Rows = []MegaRow{{Columns: []MegaColumn{
		{Size: 8, Items: []MegaItem{{Type: MegaItemMenu, ItemID: 4}}},
		{Size: 4, Items: []MegaItem{{Type: MegaItemModule, ItemID: 9}}},
	}}}
	if err := svc.SaveMegaMenu(ctx, 3, m); err != nil {
		t.Fatalf("save mega menu: %v", err)
	}

	body, err := svc.MegaMenuBody(ctx, 3)
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	out := string(body.HTML)
	for _, want := range []string{
		`<div class="hu-megamenu-col col-sm-8" data-grid="8"><div class="hu-megamenu-cell" data-type="menu_item" data-itemid="4">Design</div></div>`,
		`<div class="hu-megamenu-col col-sm-4" data-grid="4"><div class="hu-megamenu-cell" data-type="module" data-itemid="9">Module #9</div></div>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("builder missing %q:\n%s", want, out)
		}
	}
}

type moduleFunc func(context.Context, int64) (template.HTML, error)

func (f moduleFunc) RenderModule(ctx context.Context, id int64) (template.HTML, error) {
	return f(ctx, id)
}

func TestService_RenderMenu(t *testing.T) {
	ctx := context.Background()
	store := fixture()
	services, _ := store.MenuItem(ctx, 3)
	services.Params = params.Params{
		ParamMegaMenu: `{"megamenu":1,"width":"720","menualign":"center","layout":[{"attr":[{"colGrid":8,"items":[{"type":"menu_item","item_id":5}]},{"colGrid":4,"items":[{"type":"module","item_id":9}]}]}]}`,
	}
	store.items[3] = services
	hidden, _ := store.MenuItem(ctx, 2)
	hidden.Published = StateUnpublished
	store.items[2] = hidden

	svc := newService(t, store, WithModules(moduleFunc(func(_ context.Context, id int64) (template.HTML, error) {
		return template.HTML("<p>module 9</p>"), nil
	})))

	html, err := svc.RenderMenu(ctx, "mainmenu")
	if err != nil {
		t.Fatalf("render menu: %v", err)
	}
	out := string(html)
	for _, want := range []string{
		`<ul class="sp-megamenu-parent menu-animation-fade-up d-none d-lg-block">`,
		`class="sp-menu-item item-3 sp-has-child menu-justify"`,
		`sp-dropdown-mega sp-menu-center" style="width: 720px;"`,
		`<div class="col-sm-8"><ul class="sp-mega-group">`,
		`<a class="sp-group-title" href="/hosting">Hosting</a>`,
		`<a href="/shared">Shared</a>`,
		`<div class="col-sm-4"><div class="sp-module sp-mega-module"><p>module 9</p></div>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("menu missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "/home") {
		t.Fatalf("unpublished items must not render")
	}
}
