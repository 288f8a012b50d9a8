// Package webfonts turns the typography settings of a template style into
// Google Fonts links and CSS rules.
package webfonts

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-sitetheme/pkg/document"
	"github.com/goliatone/go-sitetheme/pkg/params"
)

// NavigationSelector is the selector styled by the navigation font.
const NavigationSelector = ".sp-megamenu-parent > li > a, .sp-megamenu-parent > li > span, .sp-megamenu-parent .sp-dropdown li.sp-menu-item > a"

const (
	googleBase     = "//fonts.googleapis.com/css?family="
	googleVariants = ":100,100i,300,300i,400,400i,500,500i,700,700i,900,900i"
)

var systemFonts = map[string]struct{}{
	"Arial":           {},
	"Tahoma":          {},
	"Verdana":         {},
	"Helvetica":       {},
	"Times New Roman": {},
	"Trebuchet MS":    {},
	"Georgia":         {},
}

// Font is one typography setting as saved by the font picker.
type Font struct {
	Family         string `json:"fontFamily"`
	Size           string `json:"fontSize,omitempty"`
	SizeSM         string `json:"fontSize_sm,omitempty"`
	SizeXS         string `json:"fontSize_xs,omitempty"`
	Weight         string `json:"fontWeight,omitempty"`
	Style          string `json:"fontStyle,omitempty"`
	Subset         string `json:"fontSubset,omitempty"`
	Color          string `json:"fontColor,omitempty"`
	LineHeight     string `json:"fontLineHeight,omitempty"`
	LetterSpacing  string `json:"fontLetterSpacing,omitempty"`
	TextDecoration string `json:"textDecoration,omitempty"`
	TextAlign      string `json:"textAlign,omitempty"`
}

// Entry binds a font to the selector it styles.
type Entry struct {
	Selector string
	Font     Font
}

// ParseFont decodes a font setting. Numeric values are accepted.
func ParseFont(data []byte) (Font, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Font{}, fmt.Errorf("webfonts: decode font: %w", err)
	}
	return fontFromMap(raw)
}

func fontFromMap(raw map[string]any) (Font, error) {
	p := params.Params(raw)
	f := Font{
		Family:         strings.TrimSpace(p.String("fontFamily", "")),
		Size:           p.String("fontSize", ""),
		SizeSM:         p.String("fontSize_sm", ""),
		SizeXS:         p.String("fontSize_xs", ""),
		Weight:         p.String("fontWeight", ""),
		Style:          p.String("fontStyle", ""),
		Subset:         p.String("fontSubset", ""),
		Color:          p.String("fontColor", ""),
		LineHeight:     p.String("fontLineHeight", ""),
		LetterSpacing:  p.String("fontLetterSpacing", ""),
		TextDecoration: p.String("textDecoration", ""),
		TextAlign:      p.String("textAlign", ""),
	}
	if f.Family == "" {
		return Font{}, fmt.Errorf("webfonts: font family is required")
	}
	return f, nil
}

// IsSystemFont reports whether family ships with the browser.
func IsSystemFont(family string) bool {
	_, ok := systemFonts[strings.TrimSpace(family)]
	return ok
}

// GoogleURL returns the stylesheet URL for f, or "" for system fonts.
func GoogleURL(f Font) string {
	if f.Family == "" || IsSystemFont(f.Family) {
		return ""
	}
	href := googleBase + url.QueryEscape(strings.TrimSpace(f.Family)) + googleVariants
	if f.Subset != "" {
		href += "&subset=" + url.QueryEscape(f.Subset)
	}
	return href + "&display=swap"
}

// CSS returns the rules applying f to selector, including the tablet and
// phone size overrides.
func CSS(selector string, f Font) string {
	var b strings.Builder
	b.WriteString(selector)
	b.WriteString("{")
	fmt.Fprintf(&b, "font-family: '%s', sans-serif;", f.Family)
	if f.Size != "" {
		fmt.Fprintf(&b, "font-size: %spx;", f.Size)
	}
	writeProp(&b, "font-weight", f.Weight)
	writeProp(&b, "font-style", f.Style)
	writeProp(&b, "color", f.Color)
	writeProp(&b, "line-height", f.LineHeight)
	writeProp(&b, "letter-spacing", f.LetterSpacing)
	writeProp(&b, "text-decoration", f.TextDecoration)
	writeProp(&b, "text-align", f.TextAlign)
	b.WriteString("}\n")

	if f.SizeSM != "" {
		fmt.Fprintf(&b, "@media (min-width:768px) and (max-width:991px){%s{font-size: %spx;}\n}\n", selector, f.SizeSM)
	}
	if f.SizeXS != "" {
		fmt.Fprintf(&b, "@media (max-width:767px){%s{font-size: %spx;}\n}\n", selector, f.SizeXS)
	}
	return b.String()
}

func writeProp(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s;", name, value)
}

// Selectors collects the enabled fonts of a style in the order body,
// h1-h6, navigation, custom selectors. Invalid font settings are skipped.
func Selectors(p params.Params) []Entry {
	var out []Entry
	add := func(toggle, key, selector string) {
		if !p.Bool(toggle) || strings.TrimSpace(selector) == "" {
			return
		}
		raw, ok := p.Object(key)
		if !ok {
			return
		}
		font, err := fontFromMap(raw)
		if err != nil {
			return
		}
		out = append(out, Entry{Selector: selector, Font: font})
	}

	add("enable_body_font", "body_font", "body")
	for i := 1; i <= 6; i++ {
		tag := fmt.Sprintf("h%d", i)
		add("enable_"+tag+"_font", tag+"_font", tag)
	}
	add("enable_navigation_font", "navigation_font", NavigationSelector)
	add("enable_custom_font", "custom_font", p.String("custom_font_selectors", ""))
	return out
}

// Apply links the Google stylesheets lazily and adds the CSS rules.
func Apply(doc *document.Document, entries []Entry) {
	if doc == nil {
		return
	}
	for _, entry := range entries {
		if href := GoogleURL(entry.Font); href != "" {
			doc.AddStyleSheet(href,
				document.WithAttr("media", "none"),
				document.WithAttr("onload", `media="all"`),
			)
		}
		doc.AddStyleDeclaration(CSS(entry.Selector, entry.Font))
	}
}
