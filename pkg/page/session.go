package page

import (
	"context"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitetheme/pkg/assets"
	"github.com/goliatone/go-sitetheme/pkg/document"
	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/manifest"
	"github.com/goliatone/go-sitetheme/pkg/params"
	"github.com/goliatone/go-sitetheme/pkg/positions"
	"github.com/goliatone/go-sitetheme/pkg/render"
	"github.com/goliatone/go-sitetheme/pkg/scss"
	"github.com/goliatone/go-sitetheme/pkg/webfonts"
)

// FrontendEditCSS is linked on front-end edit forms.
const FrontendEditCSS = "/media/sitetheme/css/frontend-edit.css"

// Session is the state of one page render. Its methods mirror the steps a
// template index calls in order.
type Session struct {
	o        *Orchestrator
	req      Request
	params   params.Params
	doc      *document.Document
	renderer render.Renderer
	resolver *assets.Resolver
	blocks   *positions.Page
	theme    *theme.RendererConfig
	logger   zerolog.Logger
}

// Document returns the head accumulator of the request.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Params returns the style params of the request.
func (s *Session) Params() params.Params {
	return s.params
}

// Theme returns the selected theme configuration, or nil.
func (s *Session) Theme() *theme.RendererConfig {
	return s.theme
}

// Head links web fonts, the favicon, Bootstrap and the compiled template
// styles.
func (s *Session) Head(ctx context.Context) error {
	webfonts.Apply(s.doc, webfonts.Selectors(s.params))

	if favicon := s.params.String("favicon", ""); favicon != "" {
		s.doc.SetFavicon(s.req.BaseURL + "/" + strings.TrimPrefix(favicon, "/"))
	} else {
		s.doc.SetFavicon(s.resolver.TemplateURL() + "/images/favicon.ico")
	}

	s.doc.AddScriptDeclaration(`template="` + s.req.Template + `";`)
	s.doc.Generator = Generator

	s.resolver.AddCSS(s.doc, "bootstrap.min.css")
	if s.req.Input.View == "form" && s.req.Input.Layout == "edit" {
		s.doc.AddStyleSheet(s.req.BaseURL + FrontendEditCSS)
	}

	switch {
	case s.resolver.Exists("js/bootstrap.bundle.min.js"):
		s.resolver.AddJS(s.doc, "bootstrap.bundle.min.js")
	case s.resolver.Exists("js/bootstrap.min.js"):
		s.resolver.AddJS(s.doc, "popper.min.js, bootstrap.min.js")
	}

	if err := s.addSCSS(ctx); err != nil {
		return err
	}
	s.doc.AddStyleDeclaration(manifest.CSSVarsDeclaration(s.theme))
	return nil
}

func (s *Session) addSCSS(ctx context.Context) error {
	m := scss.NewManager(s.resolver,
		scss.WithFS(s.o.fs),
		scss.WithCompiler(s.o.compiler),
		scss.WithCacheDir(s.o.scssCacheDir(s.req.Template)),
		scss.WithEnabled(s.params.Bool("scssoption")),
		scss.WithLogger(s.logger),
	)

	vars := PresetVars(s.params)
	for k, v := range manifest.SCSSVars(s.theme) {
		if _, ok := vars[k]; !ok {
			vars[k] = v
		}
	}

	if err := m.Add(ctx, s.doc, "master", vars, "template", false); err != nil {
		return fmt.Errorf("page: scss master: %w", err)
	}
	if err := m.Add(ctx, s.doc, "presets", vars, "presets/"+vars["preset"], false); err != nil {
		return fmt.Errorf("page: scss presets: %w", err)
	}
	return nil
}

// RenderLayout renders the style layout, falling back to the template's
// options.json. It returns an error wrapping layout.ErrLayoutMissing when
// neither exists.
func (s *Session) RenderLayout(ctx context.Context) (template.HTML, error) {
	s.resolver.AddCSS(s.doc, "custom.css")
	s.resolver.AddJS(s.doc, "custom.js")

	l, err := layout.Load(s.o.fs, s.resolver.TemplateDir(), s.params)
	if err != nil {
		return "", fmt.Errorf("page: load layout: %w", err)
	}

	sections := s.Sections(ctx, l)
	out, err := s.renderer.Render(ctx, sections, render.Options{
		Blocks:      s.blocks,
		Component:   s.req.Component,
		Message:     s.req.Message,
		PageBuilder: s.req.Input.Option == PageBuilderOption,
		Theme:       s.theme,
		ModuleStyle: s.params.String("module_style", ""),
	})
	if err != nil {
		return "", fmt.Errorf("page: render layout: %w", err)
	}
	return template.HTML(out), nil
}

// Sections resolves the rows of l for this request and adds the row style
// declarations to the document.
func (s *Session) Sections(ctx context.Context, l layout.Layout) []layout.ResolvedRow {
	disableModule := s.params.Bool("disable_module")
	opts := layout.ResolveOptions{
		Positions: s.blocks,
		Disabled: func(position string) bool {
			return layout.DisabledOnArticle(position, s.req.Input.View, disableModule)
		},
	}

	sections := make([]layout.ResolvedRow, 0, len(l))
	for i, row := range l {
		resolved, ok := layout.Resolve(ctx, i, row, opts)
		if !ok {
			continue
		}
		for _, decl := range row.Settings.Declarations(resolved.ID, s.req.BaseURL) {
			s.doc.AddStyleDeclaration(decl)
		}
		sections = append(sections, resolved)
	}
	return sections
}

// AfterBody bundles the document assets when the style asks for it and
// returns the before_body markup.
func (s *Session) AfterBody(ctx context.Context) (template.HTML, error) {
	if s.o.pipeline != nil {
		pipeline := s.o.pipeline.ForTemplate(s.req.Template)
		if s.params.Bool("compress_css") {
			if err := pipeline.CompressCSS(ctx, s.doc); err != nil {
				return "", fmt.Errorf("page: compress css: %w", err)
			}
		}
		if s.params.Bool("compress_js") {
			if err := pipeline.CompressJS(ctx, s.doc, s.params.String("exclude_js", "")); err != nil {
				return "", fmt.Errorf("page: compress js: %w", err)
			}
		}
	}

	before := s.params.String("before_body", "")
	if before == "" {
		return "", nil
	}
	return template.HTML(before + "\n"), nil
}

// BodyClass builds the body element classes. class is appended last.
func (s *Session) BodyClass(class string) string {
	in := s.req.Input
	layoutName := in.Layout
	if layoutName == "" {
		layoutName = "default"
	}
	task := in.Task
	if task == "" {
		task = "none"
	}

	parts := []string{
		"site hu " + html.EscapeString(strings.ReplaceAll(in.Option, "_", "-")),
		"view-" + html.EscapeString(in.View),
		"layout-" + html.EscapeString(layoutName),
		"task-" + html.EscapeString(task),
		"itemid-" + strconv.Itoa(in.ItemID),
	}
	if s.doc.Language != "" {
		parts = append(parts, s.doc.Language)
	}
	if s.doc.Direction != "" {
		parts = append(parts, s.doc.Direction)
	}
	if s.params.Bool("sticky_header") {
		parts = append(parts, "sticky-header")
	}
	if s.params.Bool("sticky_header_md") {
		parts = append(parts, "sticky-header-md")
	}
	if s.params.Bool("sticky_header_sm") {
		parts = append(parts, "sticky-header-sm")
	}
	if s.params.Bool("boxed_layout") {
		parts = append(parts, "layout-boxed")
	} else {
		parts = append(parts, "layout-fluid")
	}
	parts = append(parts, "offcanvas-init offcanvs-position-"+s.params.String("offcanvas_position", "right"))
	if s.req.PageClass != "" {
		parts = append(parts, s.req.PageClass)
	}
	if class != "" {
		parts = append(parts, class)
	}
	return strings.Join(parts, " ")
}
