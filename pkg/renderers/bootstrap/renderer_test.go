package bootstrap

import (
	"context"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/positions"
	"github.com/goliatone/go-sitetheme/pkg/render"
)

type blocks map[string]positions.Block

func (b blocks) Render(_ context.Context, position string) (positions.Block, error) {
	block, ok := b[position]
	if !ok {
		return positions.Block{Position: position}, nil
	}
	return block, nil
}

func headerRow() layout.ResolvedRow {
	return layout.ResolvedRow{
		ID:       "sp-header",
		Semantic: layout.SemanticHeader,
		Classes:  "header-dark d-none d-sm-block",
		Columns: []layout.ResolvedColumn{
			{Position: "logo", GridSize: 3, ClassName: "col-lg-3"},
			{Position: "menu", GridSize: 9, ClassName: "col-lg-9", Settings: layout.ColumnSettings{CustomClass: "flex-end"}},
		},
	}
}

func mainRow() layout.ResolvedRow {
	return layout.ResolvedRow{
		ID:            "sp-main-body",
		Semantic:      layout.SemanticSection,
		ComponentArea: true,
		Fluid:         true,
		Columns: []layout.ResolvedColumn{
			{Component: true, GridSize: 12, ClassName: "col-lg-12"},
		},
	}
}

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func assertOrdered(t *testing.T, out string, fragments ...string) {
	t.Helper()
	pos := 0
	for _, f := range fragments {
		idx := strings.Index(out[pos:], f)
		if idx < 0 {
			t.Fatalf("missing %q after offset %d in:\n%s", f, pos, out)
		}
		pos += idx + len(f)
	}
}

func TestRenderer_SectionMarkup(t *testing.T) {
	r := newRenderer(t)
	source := blocks{
		"logo": {
			Position: "logo",
			Before:   []template.HTML{`<span class="logo">Shaper</span>`},
		},
		"menu": {
			Position: "menu",
			Modules: []positions.RenderedModule{
				{Module: positions.Module{ID: 7, Title: "Main <Menu>", ShowTitle: true, Class: "nav-main"}, HTML: "<ul><li>Home</li></ul>"},
			},
			After: []template.HTML{`<a class="search">Search</a>`},
		},
	}

	out, err := r.Render(context.Background(), []layout.ResolvedRow{headerRow()}, render.Options{Blocks: source})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertOrdered(t, string(out),
		`<header id="sp-header" class="header-dark d-none d-sm-block">`,
		`<div class="container"><div class="container-inner">`,
		`<div class="row">`,
		`<div id="sp-logo" class="col-lg-3"><div class="sp-column">`,
		`<span class="logo">Shaper</span>`,
		`<div id="sp-menu" class="col-lg-9"><div class="sp-column flex-end">`,
		`<div class="sp-module nav-main"><h3 class="sp-module-title">Main &lt;Menu&gt;</h3><div class="sp-module-content"><ul><li>Home</li></ul></div></div>`,
		`<a class="search">Search</a>`,
		`</header>`,
	)
}

func TestRenderer_ContainerRules(t *testing.T) {
	r := newRenderer(t)
	opts := render.Options{Component: "<article>Body</article>", Message: "<p>Saved</p>"}

	out, err := r.Render(context.Background(), []layout.ResolvedRow{mainRow()}, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertOrdered(t, string(out),
		`<section id="sp-main-body">`,
		`<div class="container"><div class="container-inner">`,
		`<div id="sp-component" class="col-lg-12">`,
		`<div id="system-message-container"><p>Saved</p></div><article>Body</article>`,
	)

	opts.PageBuilder = true
	out, err = r.Render(context.Background(), []layout.ResolvedRow{mainRow()}, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "container-inner") {
		t.Fatalf("page builder component rows must not be contained:\n%s", out)
	}

	fluid := headerRow()
	fluid.Fluid = true
	out, err = r.Render(context.Background(), []layout.ResolvedRow{fluid}, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), `class="container"`) {
		t.Fatalf("fluid rows must not be contained:\n%s", out)
	}
}

func TestRenderer_ModuleStyleNone(t *testing.T) {
	r := newRenderer(t)
	source := blocks{
		"menu": {Modules: []positions.RenderedModule{{Module: positions.Module{Title: "Menu", ShowTitle: true}, HTML: "<ul></ul>"}}},
	}
	out, err := r.Render(context.Background(), []layout.ResolvedRow{headerRow()}, render.Options{Blocks: source, ModuleStyle: "none"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "sp-module") || !strings.Contains(string(out), "<ul></ul>") {
		t.Fatalf("style none must render bare module content:\n%s", out)
	}
}

func TestRenderer_ThemePartialOverride(t *testing.T) {
	dir := t.TempDir()
	custom := `<aside data-position="{{ position }}" class="{{ class }}">{{ content|safe }}</aside>`
	if err := os.WriteFile(filepath.Join(dir, "shaper-column.tpl"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	r := newRenderer(t, WithTemplatesDir(dir))

	opts := render.Options{
		Theme: &theme.RendererConfig{
			Partials: map[string]string{
				PartialColumn: "shaper-column",
				PartialRows:   "missing-rows",
			},
		},
	}
	out, err := r.Render(context.Background(), []layout.ResolvedRow{headerRow()}, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertOrdered(t, string(out),
		`<div class="row">`,
		`<aside data-position="logo" class="col-lg-3">`,
		`<aside data-position="menu" class="col-lg-9">`,
	)
}

func TestColumnID(t *testing.T) {
	if got := ColumnID(layout.ResolvedColumn{Position: "Top Bar"}); got != "sp-top-bar" {
		t.Fatalf("unexpected id %q", got)
	}
	if got := ColumnID(layout.ResolvedColumn{Component: true, Position: "left"}); got != "sp-component" {
		t.Fatalf("unexpected id %q", got)
	}
}

type recordingExecutor struct {
	names []string
}

func (e *recordingExecutor) Has(name string) bool { return name != "missing-rows" }

func (e *recordingExecutor) Execute(name string, _ map[string]any) (string, error) {
	e.names = append(e.names, name)
	return "[" + name + "]", nil
}

func TestRenderer_WithExecutor(t *testing.T) {
	exec := &recordingExecutor{}
	r := newRenderer(t, WithExecutor(exec))

	out, err := r.Render(context.Background(), []layout.ResolvedRow{headerRow()}, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "[generate]" {
		t.Fatalf("unexpected output %q", out)
	}
	want := []string{"modules", "column", "modules", "column", "rows", "generate"}
	if strings.Join(exec.names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected template order %v", exec.names)
	}
}
