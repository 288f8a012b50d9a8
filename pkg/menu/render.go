package menu

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	markup "github.com/goliatone/go-sitetheme/pkg/render/template"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Templates returns the built-in menu templates.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return embedded
	}
	return sub
}

var (
	dropdownOptions = []string{"left", "right"}
	alignOptions    = []string{"left", "center", "right", "full", "container"}
	badgePositions  = []string{"left", "right"}
)

type views struct {
	engine *markup.Engine
}

func newViews(files fs.FS, dir string) (*views, error) {
	if files == nil {
		files = Templates()
	}
	engine, err := markup.New(markup.WithFS(files), markup.WithOverrideDir(dir), markup.WithName("menu"))
	if err != nil {
		return nil, fmt.Errorf("menu: templates: %w", err)
	}
	return &views{engine: engine}, nil
}

func (v *views) render(name string, data map[string]any) (template.HTML, error) {
	out, err := v.engine.Execute(name, data)
	if err != nil {
		return "", fmt.Errorf("menu: render %s: %w", name, err)
	}
	return template.HTML(out), nil
}

func megaLabel(item Item) string {
	if item.TopLevel() {
		return TitleMegaMenu
	}
	return TitleSettings
}

func (v *views) tree(nodes []*Node) (template.HTML, error) {
	var b strings.Builder
	for _, n := range nodes {
		html, err := v.branch(n)
		if err != nil {
			return "", err
		}
		b.WriteString(string(html))
	}
	menuType := ""
	if len(nodes) > 0 {
		menuType = nodes[0].Item.MenuType
	}
	return v.render("tree", map[string]any{
		"menutype": menuType,
		"branches": b.String(),
	})
}

func (v *views) branch(n *Node) (template.HTML, error) {
	var children strings.Builder
	for _, child := range n.Children {
		html, err := v.branch(child)
		if err != nil {
			return "", err
		}
		children.WriteString(string(html))
	}
	settings, _ := MegaMenuOf(n.Item)
	return v.render("branch", map[string]any{
		"id":         strconv.FormatInt(n.Item.ID, 10),
		"parent":     strconv.FormatInt(n.Item.ParentID, 10),
		"level":      strconv.Itoa(n.Item.Level),
		"title":      n.Item.Title,
		"published":  n.Item.Published == StatePublished,
		"megamenu":   n.Item.TopLevel() && settings.Enabled,
		"mega_label": megaLabel(n.Item),
		"children":   children.String(),
	})
}

func settingsData(item Item, m MegaMenu) (map[string]any, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("menu: encode mega menu: %w", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("menu: encode mega menu: %w", err)
	}
	return map[string]any{
		"id":               strconv.FormatInt(item.ID, 10),
		"settings":         settings,
		"dropdown_options": dropdownOptions,
		"badge_positions":  badgePositions,
		"layout":           string(mustJSON(settings["layout"])),
	}, nil
}

func (v *views) settings(item Item, m MegaMenu) (template.HTML, error) {
	data, err := settingsData(item, m)
	if err != nil {
		return "", err
	}
	return v.render("settings-body", data)
}

// builderEntry is a cell of the layout editor. Template data is passed as
// maps so the templates can use lower-case keys.
func builderEntry(kind string, id int64, title string) map[string]any {
	return map[string]any{"type": kind, "id": strconv.FormatInt(id, 10), "title": title}
}

// builder renders the mega menu layout editor. items are the menu's
// visible items, used to name the cells and list the children that can be
// placed.
func (v *views) builder(item Item, m MegaMenu, items []Item) (template.HTML, error) {
	data, err := settingsData(item, m)
	if err != nil {
		return "", err
	}
	form, err := v.render("settings-body", data)
	if err != nil {
		return "", err
	}

	titles := make(map[int64]string, len(items))
	for _, it := range items {
		titles[it.ID] = it.Title
	}
	rows := make([]map[string]any, 0, len(m.Rows))
	for _, row := range m.Rows {
		columns := make([]map[string]any, 0, len(row.Columns))
		for _, col := range row.Columns {
			entries := make([]map[string]any, 0, len(col.Items))
			for _, cell := range col.Items {
				title := titles[cell.ItemID]
				if cell.Type == MegaItemModule {
					title = fmt.Sprintf("Module #%d", cell.ItemID)
				}
				entries = append(entries, builderEntry(cell.Type, cell.ItemID, title))
			}
			columns = append(columns, map[string]any{"size": strconv.Itoa(col.Size), "items": entries})
		}
		rows = append(rows, map[string]any{"columns": columns})
	}

	var children []map[string]any
	for _, it := range items {
		if it.ParentID == item.ID {
			children = append(children, builderEntry(MegaItemMenu, it.ID, it.Title))
		}
	}

	data["align_options"] = alignOptions
	data["rows"] = rows
	data["children"] = children
	data["settings_form"] = string(form)
	return v.render("megamenu-body", data)
}

func mustJSON(v any) []byte {
	if v == nil {
		return []byte("[]")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("[]")
	}
	return data
}

type navRenderer struct {
	ctx     context.Context
	views   *views
	modules ModuleRenderer
	logger  zerolog.Logger
	byID    map[int64]*Node
}

func (r *navRenderer) index(nodes []*Node) {
	for _, n := range nodes {
		r.byID[n.Item.ID] = n
		r.index(n.Children)
	}
}

func (r *navRenderer) nav(roots []*Node) (template.HTML, error) {
	var b strings.Builder
	for _, n := range roots {
		html, err := r.item(n, 1)
		if err != nil {
			return "", err
		}
		b.WriteString(string(html))
	}
	return r.views.render("nav", map[string]any{
		"animation": "fade-up",
		"items":     b.String(),
	})
}

func (r *navRenderer) item(n *Node, depth int) (template.HTML, error) {
	settings, err := MegaMenuOf(n.Item)
	if err != nil {
		r.logger.Warn().Err(err).Int64("item", n.Item.ID).Msg("invalid mega menu settings")
		settings = DefaultMegaMenu()
	}

	classes := []string{"sp-menu-item", fmt.Sprintf("item-%d", n.Item.ID)}
	var dropdown template.HTML
	switch {
	case depth == 1 && settings.Enabled && len(settings.Rows) > 0:
		classes = append(classes, "sp-has-child", "menu-justify")
		dropdown, err = r.mega(n, settings)
	case len(n.Children) > 0:
		classes = append(classes, "sp-has-child")
		dropdown, err = r.dropdown(n, depth, settings)
	}
	if err != nil {
		return "", err
	}
	if settings.CustomClass != "" {
		classes = append(classes, settings.CustomClass)
	}

	return r.views.render("nav-item", map[string]any{
		"classes":        strings.Join(classes, " "),
		"link":           n.Item.URL(),
		"title":          n.Item.Title,
		"show_title":     settings.ShowTitle,
		"icon":           settings.Icon,
		"badge":          settings.Badge,
		"badge_position": settings.BadgePosition,
		"badge_bg":       settings.BadgeBG,
		"badge_color":    settings.BadgeColor,
		"dropdown":       string(dropdown),
	})
}

func (r *navRenderer) children(nodes []*Node, depth int) (string, error) {
	var b strings.Builder
	for _, child := range nodes {
		html, err := r.item(child, depth)
		if err != nil {
			return "", err
		}
		b.WriteString(string(html))
	}
	return b.String(), nil
}

func (r *navRenderer) dropdown(n *Node, depth int, settings MegaMenu) (template.HTML, error) {
	items, err := r.children(n.Children, depth+1)
	if err != nil {
		return "", err
	}
	kind := "sub"
	if depth == 1 {
		kind = "main"
	}
	return r.views.render("dropdown", map[string]any{
		"kind":  kind,
		"align": settings.Dropdown,
		"items": items,
	})
}

func (r *navRenderer) mega(n *Node, settings MegaMenu) (template.HTML, error) {
	rows := make([][]map[string]any, 0, len(settings.Rows))
	for _, row := range settings.Rows {
		cells := make([]map[string]any, 0, len(row.Columns))
		for _, col := range row.Columns {
			var b strings.Builder
			for _, entry := range col.Items {
				html, err := r.megaEntry(entry)
				if err != nil {
					return "", err
				}
				b.WriteString(string(html))
			}
			cells = append(cells, map[string]any{"size": strconv.Itoa(col.Size), "html": b.String()})
		}
		rows = append(rows, cells)
	}
	return r.views.render("mega", map[string]any{
		"align": settings.Alignment,
		"width": settings.WidthCSS(),
		"rows":  rows,
	})
}

func (r *navRenderer) megaEntry(entry MegaItem) (template.HTML, error) {
	if entry.Type == MegaItemModule {
		if r.modules == nil {
			return "", nil
		}
		html, err := r.modules.RenderModule(r.ctx, entry.ItemID)
		if err != nil {
			r.logger.Warn().Err(err).Int64("module", entry.ItemID).Msg("mega menu module failed")
			return "", nil
		}
		return r.views.render("mega-module", map[string]any{"html": string(html)})
	}

	node, ok := r.byID[entry.ItemID]
	if !ok {
		return "", nil
	}
	items, err := r.children(node.Children, 3)
	if err != nil {
		return "", err
	}
	return r.views.render("mega-group", map[string]any{
		"classes": fmt.Sprintf("item-%d menu_item item-header", node.Item.ID),
		"link":    node.Item.URL(),
		"title":   node.Item.Title,
		"items":   items,
	})
}
