package menu

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/goliatone/go-sitetheme/pkg/params"
)

// Mega menu item types.
const (
	MegaItemMenu   = "menu_item"
	MegaItemModule = "module"
)

// MegaMenu holds the dropdown settings of a menu item. Top level items may
// switch to a multi column mega menu; the other fields apply to any item.
type MegaMenu struct {
	Enabled       bool
	Width         string
	Alignment     string
	Dropdown      string
	ShowTitle     bool
	Icon          string
	CustomClass   string
	Badge         string
	BadgePosition string
	BadgeBG       string
	BadgeColor    string
	Rows          []MegaRow
}

// MegaRow is one row of mega menu columns.
type MegaRow struct {
	Columns []MegaColumn `json:"attr"`
}

// MegaColumn lists the menu items and modules shown in a column.
type MegaColumn struct {
	Size  int        `json:"colGrid"`
	Items []MegaItem `json:"items"`
}

// MegaItem references a menu item or a module.
type MegaItem struct {
	Type   string `json:"type"`
	ItemID int64  `json:"item_id"`
}

// DefaultMegaMenu returns the settings of an item never configured.
func DefaultMegaMenu() MegaMenu {
	return MegaMenu{
		Width:     "600",
		Alignment: "right",
		Dropdown:  "right",
		ShowTitle: true,
	}
}

// WidthCSS returns the width as a CSS length.
func (m MegaMenu) WidthCSS() string {
	w := strings.TrimSpace(m.Width)
	if w == "" {
		w = "600"
	}
	if _, err := cast.ToIntE(w); err == nil {
		return w + "px"
	}
	return w
}

// UnmarshalJSON accepts the loose values the admin form posts ("1", 1,
// true; numbers or strings for sizes).
func (m *MegaMenu) UnmarshalJSON(data []byte) error {
	p, err := params.FromJSON(data)
	if err != nil {
		return fmt.Errorf("menu: decode mega menu: %w", err)
	}
	def := DefaultMegaMenu()
	*m = MegaMenu{
		Enabled:       p.Bool("megamenu"),
		Width:         p.String("width", def.Width),
		Alignment:     p.String("menualign", def.Alignment),
		Dropdown:      p.String("dropdown", def.Dropdown),
		ShowTitle:     def.ShowTitle,
		Icon:          p.String("faicon", ""),
		CustomClass:   p.String("customclass", ""),
		Badge:         p.String("badge", ""),
		BadgePosition: p.String("badge_position", ""),
		BadgeBG:       p.String("badge_bg_color", ""),
		BadgeColor:    p.String("badge_text_color", ""),
	}
	if p.Has("showtitle") {
		m.ShowTitle = p.Bool("showtitle")
	}
	if raw, ok := p.Raw("layout"); ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &m.Rows); err != nil {
			return fmt.Errorf("menu: decode mega menu layout: %w", err)
		}
	}
	return nil
}

// MarshalJSON writes flags as 1/0, matching the admin form.
func (m MegaMenu) MarshalJSON() ([]byte, error) {
	rows := m.Rows
	if rows == nil {
		rows = []MegaRow{}
	}
	return json.Marshal(map[string]any{
		"megamenu":         flag(m.Enabled),
		"width":            m.Width,
		"menualign":        m.Alignment,
		"dropdown":         m.Dropdown,
		"showtitle":        flag(m.ShowTitle),
		"faicon":           m.Icon,
		"customclass":      m.CustomClass,
		"badge":            m.Badge,
		"badge_position":   m.BadgePosition,
		"badge_bg_color":   m.BadgeBG,
		"badge_text_color": m.BadgeColor,
		"layout":           rows,
	})
}

// UnmarshalJSON accepts string or numeric grid sizes.
func (c *MegaColumn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Grid  any        `json:"colGrid"`
		Items []MegaItem `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Size = cast.ToInt(raw.Grid)
	if c.Size <= 0 {
		c.Size = 12
	}
	c.Items = raw.Items
	return nil
}

// UnmarshalJSON accepts string or numeric ids.
func (i *MegaItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   string `json:"type"`
		ItemID any    `json:"item_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	i.Type = raw.Type
	if i.Type == "" {
		i.Type = MegaItemMenu
	}
	i.ItemID = cast.ToInt64(raw.ItemID)
	return nil
}

// MegaMenuOf reads the settings stored on item.
func MegaMenuOf(item Item) (MegaMenu, error) {
	raw, ok := item.Params.Raw(ParamMegaMenu)
	if !ok || len(raw) == 0 {
		return DefaultMegaMenu(), nil
	}
	var m MegaMenu
	if err := json.Unmarshal(raw, &m); err != nil {
		return MegaMenu{}, err
	}
	return m, nil
}

// Validate checks column sizes add up per row.
func (m MegaMenu) Validate() error {
	for i, row := range m.Rows {
		total := 0
		for _, col := range row.Columns {
			if col.Size <= 0 || col.Size > 12 {
				return fmt.Errorf("%w: row %d: column size %d out of range", ErrInvalidItem, i+1, col.Size)
			}
			total += col.Size
		}
		if total > 12 {
			return fmt.Errorf("%w: row %d: column sizes add up to %d", ErrInvalidItem, i+1, total)
		}
	}
	return nil
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
