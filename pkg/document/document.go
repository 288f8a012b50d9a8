// Package document accumulates everything a rendered page contributes to the
// HTML head: stylesheets, scripts, inline declarations and meta data.
package document

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
)

// Asset is a linked stylesheet or script.
type Asset struct {
	URL     string
	Version string
	// Attributes are rendered verbatim (defer, async, media, onload, type).
	Attributes map[string]string
}

// Option tweaks an asset when it is added.
type Option func(*Asset)

// WithVersion appends ?<version> to the rendered URL.
func WithVersion(v string) Option {
	return func(a *Asset) {
		a.Version = v
	}
}

// WithAttr sets an attribute on the rendered tag. An empty value renders a
// bare attribute (defer).
func WithAttr(name, value string) Option {
	return func(a *Asset) {
		if a.Attributes == nil {
			a.Attributes = make(map[string]string)
		}
		a.Attributes[name] = value
	}
}

// Deferred marks a script with the defer attribute.
func Deferred() Option {
	return WithAttr("defer", "")
}

// Document is the head accumulator for one request.
type Document struct {
	mu sync.Mutex

	Title     string
	Language  string
	Direction string
	Generator string
	BaseURL   string

	favicon     string
	metas       []meta
	styleOrder  []string
	styles      map[string]*Asset
	scriptOrder []string
	scripts     map[string]*Asset
	styleDecls  []string
	scriptDecls []string
	custom      []string
}

type meta struct {
	name    string
	content string
}

// New returns an empty document.
func New() *Document {
	return &Document{
		Language:  "en-gb",
		Direction: "ltr",
		styles:    make(map[string]*Asset),
		scripts:   make(map[string]*Asset),
	}
}

// AddStyleSheet links a stylesheet. Adding the same URL twice updates its
// options and keeps the first position.
func (d *Document) AddStyleSheet(url string, opts ...Option) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.styleOrder = upsert(d.styles, d.styleOrder, url, opts)
}

// AddScript links a script. Duplicate URLs keep the first position.
func (d *Document) AddScript(url string, opts ...Option) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scriptOrder = upsert(d.scripts, d.scriptOrder, url, opts)
}

// RemoveStyleSheet unlinks a stylesheet.
func (d *Document) RemoveStyleSheet(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.styleOrder = remove(d.styles, d.styleOrder, url)
}

// RemoveScript unlinks a script.
func (d *Document) RemoveScript(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scriptOrder = remove(d.scripts, d.scriptOrder, url)
}

// StyleSheets returns the linked stylesheets in insertion order.
func (d *Document) StyleSheets() []Asset {
	d.mu.Lock()
	defer d.mu.Unlock()
	return snapshot(d.styles, d.styleOrder)
}

// Scripts returns the linked scripts in insertion order.
func (d *Document) Scripts() []Asset {
	d.mu.Lock()
	defer d.mu.Unlock()
	return snapshot(d.scripts, d.scriptOrder)
}

// HasScript reports whether url is linked.
func (d *Document) HasScript(url string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.scripts[url]
	return ok
}

// AddStyleDeclaration appends an inline CSS block.
func (d *Document) AddStyleDeclaration(css string) {
	if strings.TrimSpace(css) == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.styleDecls = append(d.styleDecls, css)
}

// AddScriptDeclaration appends an inline script block.
func (d *Document) AddScriptDeclaration(js string) {
	if strings.TrimSpace(js) == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scriptDecls = append(d.scriptDecls, js)
}

// StyleDeclarations returns inline CSS blocks.
func (d *Document) StyleDeclarations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.styleDecls...)
}

// ScriptDeclarations returns inline script blocks.
func (d *Document) ScriptDeclarations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.scriptDecls...)
}

// ClearScriptDeclarations drops all inline scripts.
func (d *Document) ClearScriptDeclarations() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scriptDecls = nil
}

// AddCustomTag appends raw markup to the head.
func (d *Document) AddCustomTag(markup string) {
	if strings.TrimSpace(markup) == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.custom = append(d.custom, markup)
}

// SetMetaData sets a named meta tag.
func (d *Document) SetMetaData(name, content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.metas {
		if d.metas[i].name == name {
			d.metas[i].content = content
			return
		}
	}
	d.metas = append(d.metas, meta{name: name, content: content})
}

// SetFavicon sets the shortcut icon URL.
func (d *Document) SetFavicon(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.favicon = url
}

// Favicon returns the shortcut icon URL.
func (d *Document) Favicon() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.favicon
}

// HeadHTML renders the head contents.
func (d *Document) HeadHTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b strings.Builder
	b.WriteString(`<meta charset="utf-8">` + "\n")
	for _, m := range d.metas {
		fmt.Fprintf(&b, "<meta name=\"%s\" content=\"%s\">\n", html.EscapeString(m.name), html.EscapeString(m.content))
	}
	if d.Generator != "" {
		fmt.Fprintf(&b, "<meta name=\"generator\" content=\"%s\">\n", html.EscapeString(d.Generator))
	}
	if d.Title != "" {
		fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(d.Title))
	}
	if d.favicon != "" {
		fmt.Fprintf(&b, "<link href=\"%s\" rel=\"shortcut icon\" type=\"image/vnd.microsoft.icon\">\n", html.EscapeString(d.favicon))
	}
	for _, url := range d.styleOrder {
		a := d.styles[url]
		fmt.Fprintf(&b, "<link href=\"%s\" rel=\"stylesheet\"%s>\n", html.EscapeString(versioned(*a)), attrs(a.Attributes))
	}
	if len(d.styleDecls) > 0 {
		b.WriteString("<style>")
		b.WriteString(strings.Join(d.styleDecls, "\n"))
		b.WriteString("</style>\n")
	}
	for _, url := range d.scriptOrder {
		a := d.scripts[url]
		fmt.Fprintf(&b, "<script src=\"%s\"%s></script>\n", html.EscapeString(versioned(*a)), attrs(a.Attributes))
	}
	if len(d.scriptDecls) > 0 {
		b.WriteString("<script>")
		b.WriteString(strings.Join(d.scriptDecls, "\n"))
		b.WriteString("</script>\n")
	}
	for _, tag := range d.custom {
		b.WriteString(tag)
		b.WriteByte('\n')
	}
	return b.String()
}

func upsert(set map[string]*Asset, order []string, url string, opts []Option) []string {
	url = strings.TrimSpace(url)
	if url == "" {
		return order
	}
	asset, ok := set[url]
	if !ok {
		asset = &Asset{URL: url}
		set[url] = asset
		order = append(order, url)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(asset)
		}
	}
	return order
}

func remove(set map[string]*Asset, order []string, url string) []string {
	if _, ok := set[url]; !ok {
		return order
	}
	delete(set, url)
	out := order[:0]
	for _, u := range order {
		if u != url {
			out = append(out, u)
		}
	}
	return out
}

func snapshot(set map[string]*Asset, order []string) []Asset {
	out := make([]Asset, 0, len(order))
	for _, url := range order {
		a := *set[url]
		if len(a.Attributes) > 0 {
			attrs := make(map[string]string, len(a.Attributes))
			for k, v := range a.Attributes {
				attrs[k] = v
			}
			a.Attributes = attrs
		}
		out = append(out, a)
	}
	return out
}

func versioned(a Asset) string {
	if a.Version == "" {
		return a.URL
	}
	sep := "?"
	if strings.Contains(a.URL, "?") {
		sep = "&"
	}
	return a.URL + sep + a.Version
}

func attrs(in map[string]string) string {
	if len(in) == 0 {
		return ""
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		v := in[k]
		if v == "" {
			fmt.Fprintf(&b, " %s", k)
			continue
		}
		fmt.Fprintf(&b, " %s=\"%s\"", k, html.EscapeString(v))
	}
	return b.String()
}
