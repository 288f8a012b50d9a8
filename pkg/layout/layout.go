package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-sitetheme/pkg/params"
)

// Column type markers stored in the builder JSON.
const (
	TypeRow    = "row"
	TypeColumn = "sp_col"
)

// GridColumns is the width of the Bootstrap grid.
const GridColumns = 12

// Layout is the ordered list of page sections.
type Layout []Row

// Row is one horizontal page section.
type Row struct {
	Type     string       `json:"type"`
	Layout   ColumnLayout `json:"layout"`
	Settings RowSettings  `json:"settings"`
	Columns  []Column     `json:"attr"`
}

// Column is a grid cell inside a row. ClassName carries the builder class
// ("hu-layout-column col-4") and is not used for front-end markup.
type Column struct {
	Type      string         `json:"type"`
	ClassName string         `json:"className,omitempty"`
	Settings  ColumnSettings `json:"settings"`
}

// ColumnLayout is the column split of a row ("12", "4+4+4"). The builder
// stores the single column case as the number 12.
type ColumnLayout string

// UnmarshalJSON accepts both numbers and strings.
func (c *ColumnLayout) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*c = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ColumnLayout(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("layout: column layout %s: %w", trimmed, err)
	}
	*c = ColumnLayout(n.String())
	return nil
}

// MarshalJSON writes "12" back as a number.
func (c ColumnLayout) MarshalJSON() ([]byte, error) {
	if c == "" {
		return []byte(strconv.Itoa(GridColumns)), nil
	}
	if n, err := strconv.Atoi(string(c)); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(c))
}

// Visibility toggles hide a row or column on a breakpoint.
type Visibility struct {
	HideOnPhone        bool
	HideOnLargePhone   bool
	HideOnTablet       bool
	HideOnSmallDesktop bool
	HideOnDesktop      bool
}

// RowSettings are the options edited in the row modal.
type RowSettings struct {
	Name                 string
	CustomClass          string
	FluidRow             bool
	BackgroundImage      string
	BackgroundRepeat     string
	BackgroundSize       string
	BackgroundAttachment string
	BackgroundPosition   string
	BackgroundColor      string
	Color                string
	Padding              string
	Margin               string
	LinkColor            string
	LinkHoverColor       string
	Visibility

	// Extra keeps settings this package does not interpret.
	Extra map[string]any
}

// ColumnSettings are the options edited in the column modal. Name is the
// module position rendered inside the column.
type ColumnSettings struct {
	Name        string
	ColumnType  bool
	GridSize    int
	XSCol       int
	SMCol       int
	MDCol       int
	LGCol       int
	XLCol       int
	CustomClass string
	Visibility

	Extra map[string]any
}

// IsComponent reports whether the column hosts the main component area.
func (c Column) IsComponent() bool {
	return c.Settings.ColumnType
}

// Position returns the module position name of the column.
func (c Column) Position() string {
	return c.Settings.Name
}

var (
	rowKeys = []string{
		"name", "custom_class", "fluidrow", "background_image", "background_repeat",
		"background_size", "background_attachment", "background_position", "background_color",
		"color", "padding", "margin", "link_color", "link_hover_color",
	}
	columnKeys = []string{
		"name", "column_type", "grid_size", "xs_col", "sm_col", "md_col", "lg_col", "xl_col", "custom_class",
	}
	visibilityKeys = []string{
		"hide_on_phone", "hide_on_large_phone", "hide_on_tablet", "hide_on_small_desktop", "hide_on_desktop",
	}
)

// UnmarshalJSON decodes loosely typed builder values.
func (s *RowSettings) UnmarshalJSON(data []byte) error {
	raw, err := decodeSettings(data)
	if err != nil {
		return fmt.Errorf("layout: row settings: %w", err)
	}
	p := params.Params(raw)
	*s = RowSettings{
		Name:                 strings.TrimSpace(p.String("name", "")),
		CustomClass:          strings.TrimSpace(p.String("custom_class", "")),
		FluidRow:             p.Bool("fluidrow"),
		BackgroundImage:      p.String("background_image", ""),
		BackgroundRepeat:     p.String("background_repeat", ""),
		BackgroundSize:       p.String("background_size", ""),
		BackgroundAttachment: p.String("background_attachment", ""),
		BackgroundPosition:   p.String("background_position", ""),
		BackgroundColor:      p.String("background_color", ""),
		Color:                p.String("color", ""),
		Padding:              p.String("padding", ""),
		Margin:               p.String("margin", ""),
		LinkColor:            p.String("link_color", ""),
		LinkHoverColor:       p.String("link_hover_color", ""),
		Visibility:           readVisibility(p),
	}
	s.Extra = extraKeys(raw, rowKeys)
	return nil
}

// MarshalJSON writes known keys followed by preserved extras.
func (s RowSettings) MarshalJSON() ([]byte, error) {
	out := cloneExtra(s.Extra)
	putString(out, "name", s.Name)
	putString(out, "custom_class", s.CustomClass)
	putFlag(out, "fluidrow", s.FluidRow)
	putString(out, "background_image", s.BackgroundImage)
	putString(out, "background_repeat", s.BackgroundRepeat)
	putString(out, "background_size", s.BackgroundSize)
	putString(out, "background_attachment", s.BackgroundAttachment)
	putString(out, "background_position", s.BackgroundPosition)
	putString(out, "background_color", s.BackgroundColor)
	putString(out, "color", s.Color)
	putString(out, "padding", s.Padding)
	putString(out, "margin", s.Margin)
	putString(out, "link_color", s.LinkColor)
	putString(out, "link_hover_color", s.LinkHoverColor)
	writeVisibility(out, s.Visibility)
	return json.Marshal(out)
}

// UnmarshalJSON decodes loosely typed builder values.
func (s *ColumnSettings) UnmarshalJSON(data []byte) error {
	raw, err := decodeSettings(data)
	if err != nil {
		return fmt.Errorf("layout: column settings: %w", err)
	}
	p := params.Params(raw)
	*s = ColumnSettings{
		Name:        strings.TrimSpace(p.String("name", "")),
		ColumnType:  isComponentFlag(raw["column_type"]) || p.Bool("column_type"),
		GridSize:    p.Int("grid_size", 0),
		XSCol:       p.Int("xs_col", 0),
		SMCol:       p.Int("sm_col", 0),
		MDCol:       p.Int("md_col", 0),
		LGCol:       p.Int("lg_col", 0),
		XLCol:       p.Int("xl_col", 0),
		CustomClass: strings.TrimSpace(p.String("custom_class", "")),
		Visibility:  readVisibility(p),
	}
	s.Extra = extraKeys(raw, columnKeys)
	return nil
}

// MarshalJSON writes known keys followed by preserved extras.
func (s ColumnSettings) MarshalJSON() ([]byte, error) {
	out := cloneExtra(s.Extra)
	name := s.Name
	if name == "" && !s.ColumnType {
		name = "none"
	}
	out["name"] = name
	out["grid_size"] = s.GridSize
	if s.ColumnType {
		out["column_type"] = 1
	} else {
		out["column_type"] = 0
	}
	putInt(out, "xs_col", s.XSCol)
	putInt(out, "sm_col", s.SMCol)
	putInt(out, "md_col", s.MDCol)
	putInt(out, "lg_col", s.LGCol)
	putInt(out, "xl_col", s.XLCol)
	putString(out, "custom_class", s.CustomClass)
	writeVisibility(out, s.Visibility)
	return json.Marshal(out)
}

// ErrEmptyLayout is returned when a document contains no rows.
var ErrEmptyLayout = errors.New("layout: no rows")

// Parse decodes a layout document (a JSON array of rows). A JSON string that
// itself holds the array is accepted as well.
func Parse(data []byte) (Layout, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, ErrEmptyLayout
	}
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, fmt.Errorf("layout: decode encoded layout: %w", err)
		}
		return Parse([]byte(inner))
	}

	var rows Layout
	if err := json.Unmarshal([]byte(trimmed), &rows); err != nil {
		return nil, fmt.Errorf("layout: decode: %w", err)
	}
	for i := range rows {
		if rows[i].Type == "" {
			rows[i].Type = TypeRow
		}
		for j := range rows[i].Columns {
			if rows[i].Columns[j].Type == "" {
				rows[i].Columns[j].Type = TypeColumn
			}
		}
	}
	return rows, nil
}

// Marshal encodes the layout in the builder format.
func Marshal(l Layout) ([]byte, error) {
	if l == nil {
		l = Layout{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("layout: encode: %w", err)
	}
	return data, nil
}

func decodeSettings(data []byte) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return map[string]any{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func readVisibility(p params.Params) Visibility {
	return Visibility{
		HideOnPhone:        p.Bool("hide_on_phone"),
		HideOnLargePhone:   p.Bool("hide_on_large_phone"),
		HideOnTablet:       p.Bool("hide_on_tablet"),
		HideOnSmallDesktop: p.Bool("hide_on_small_desktop"),
		HideOnDesktop:      p.Bool("hide_on_desktop"),
	}
}

func writeVisibility(out map[string]any, v Visibility) {
	putFlag(out, "hide_on_phone", v.HideOnPhone)
	putFlag(out, "hide_on_large_phone", v.HideOnLargePhone)
	putFlag(out, "hide_on_tablet", v.HideOnTablet)
	putFlag(out, "hide_on_small_desktop", v.HideOnSmallDesktop)
	putFlag(out, "hide_on_desktop", v.HideOnDesktop)
}

func isComponentFlag(v any) bool {
	s, ok := v.(string)
	return ok && strings.EqualFold(strings.TrimSpace(s), "component")
}

func extraKeys(raw map[string]any, known []string) map[string]any {
	skip := make(map[string]struct{}, len(known)+len(visibilityKeys))
	for _, k := range known {
		skip[k] = struct{}{}
	}
	for _, k := range visibilityKeys {
		skip[k] = struct{}{}
	}
	var out map[string]any
	for k, v := range raw {
		if _, ok := skip[k]; ok {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

func cloneExtra(extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+8)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func putString(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}

func putInt(out map[string]any, key string, value int) {
	if value != 0 {
		out[key] = value
	}
}

func putFlag(out map[string]any, key string, value bool) {
	if value {
		out[key] = 1
	}
}
