package page

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitetheme/pkg/assets"
	"github.com/goliatone/go-sitetheme/pkg/document"
	"github.com/goliatone/go-sitetheme/pkg/manifest"
	"github.com/goliatone/go-sitetheme/pkg/metrics"
	"github.com/goliatone/go-sitetheme/pkg/params"
	"github.com/goliatone/go-sitetheme/pkg/positions"
	"github.com/goliatone/go-sitetheme/pkg/render"
	"github.com/goliatone/go-sitetheme/pkg/renderers/bootstrap"
	"github.com/goliatone/go-sitetheme/pkg/renderers/outline"
	"github.com/goliatone/go-sitetheme/pkg/scss"
)

const defaultRendererName = bootstrap.Name

// Generator is the generator meta tag written into every page.
const Generator = "sitetheme - template framework"

// PageBuilderOption is the request option served by the page builder.
const PageBuilderOption = "com_sppagebuilder"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithThemeSelector resolves theme and variant choices into renderer
// configuration ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.selector = selector
	}
}

// WithThemeFallbacks sets the partials used when a theme does not override
// them.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.fallbacks = fallbacks
	}
}

// WithPositions sets the module position registry.
func WithPositions(registry *positions.Registry) Option {
	return func(o *Orchestrator) {
		o.positions = registry
	}
}

// WithAssets sets the bundling pipeline used when a style enables CSS or JS
// compression.
func WithAssets(pipeline *assets.Pipeline) Option {
	return func(o *Orchestrator) {
		o.pipeline = pipeline
	}
}

// WithSCSS sets the compiler used for template SCSS. Without one, compiled
// CSS is linked as found on disk.
func WithSCSS(compiler scss.Compiler) Option {
	return func(o *Orchestrator) {
		o.compiler = compiler
	}
}

// WithFS sets the filesystem and the site root holding templates/.
func WithFS(fs afero.Fs, root string) Option {
	return func(o *Orchestrator) {
		if fs != nil {
			o.fs = fs
		}
		o.root = root
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator turns a template style and a request into a page: head
// assets, layout markup and the pieces around it.
type Orchestrator struct {
	fs              afero.Fs
	root            string
	registry        *render.Registry
	defaultRenderer string
	selector        theme.ThemeSelector
	fallbacks       map[string]string
	positions       *positions.Registry
	pipeline        *assets.Pipeline
	compiler        scss.Compiler
	logger          zerolog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		fs:              afero.NewOsFs(),
		defaultRenderer: defaultRendererName,
		logger:          zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		registry := render.NewRegistry()
		renderer, err := bootstrap.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("page: default renderer: %w", err)
			return
		}
		registry.MustRegister(renderer)
		registry.MustRegister(outline.New())
		o.registry = registry
	}
	if o.positions == nil {
		o.positions = positions.NewRegistry()
	}
	if o.fallbacks == nil {
		o.fallbacks = bootstrap.DefaultPartials()
	}
}

// Input is the routing state of the request.
type Input struct {
	Option string
	View   string
	Layout string
	Task   string
	ItemID int
}

// Request describes one page render.
type Request struct {
	// Template is the template directory name under <root>/templates.
	Template string
	// Params are the style params.
	Params params.Params
	Input  Input

	Language  string
	Direction string
	// PageClass is the page class suffix of the active menu item.
	PageClass string
	// BaseURL is the site path prefix, "" when served from /.
	BaseURL  string
	SiteName string
	Title    string

	// Renderer names the layout renderer. Empty uses the default.
	Renderer string
	// ThemeName and ThemeVariant select a manifest. ThemeName defaults to
	// Template.
	ThemeName    string
	ThemeVariant string

	Component template.HTML
	Message   template.HTML
}

// Page is a generated page.
type Page struct {
	Document    *document.Document
	ContentType string
	BodyClass   string
	Header      template.HTML
	Body        template.HTML
	Preloader   template.HTML
	BeforeBody  template.HTML
	Analytics   template.HTML
}

// Head renders the collected head markup.
func (p *Page) Head() template.HTML {
	if p == nil || p.Document == nil {
		return ""
	}
	return template.HTML(p.Document.HeadHTML())
}

// Generate runs the head, header, layout and after-body steps in template
// order and returns the assembled page.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Page, error) {
	started := time.Now()
	s, err := o.Begin(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.Head(ctx); err != nil {
		return nil, err
	}
	header, err := s.HeaderStyle(ctx)
	if err != nil {
		return nil, err
	}
	body, err := s.RenderLayout(ctx)
	if err != nil {
		return nil, err
	}
	before, err := s.AfterBody(ctx)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Document:    s.doc,
		ContentType: s.renderer.ContentType(),
		BodyClass:   s.BodyClass(""),
		Header:      header,
		Body:        body,
		BeforeBody:  before,
		Analytics:   s.Analytics(),
	}
	if s.params.Bool("preloader") {
		page.Preloader = s.Preloader(s.params.String("loader_type", ""))
	}

	metrics.ObservePageRender(req.Template, s.renderer.Name(), time.Since(started))
	return page, nil
}

// Begin prepares the per-request state without rendering anything.
func (o *Orchestrator) Begin(ctx context.Context, req Request) (*Session, error) {
	if ctx == nil {
		return nil, errors.New("page: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if req.Template == "" {
		return nil, errors.New("page: template is required")
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	p := req.Params.Clone()
	if !p.Has("root_url") {
		p.Set("root_url", req.BaseURL)
	}
	if !p.Has("sitename") && req.SiteName != "" {
		p.Set("sitename", req.SiteName)
	}

	doc := document.New()
	doc.Title = req.Title
	doc.BaseURL = req.BaseURL
	if req.Language != "" {
		doc.Language = req.Language
	}
	if req.Direction != "" {
		doc.Direction = req.Direction
	}

	s := &Session{
		o:        o,
		req:      req,
		params:   p,
		doc:      doc,
		renderer: renderer,
		resolver: assets.NewResolver(o.fs, o.root, req.Template, req.BaseURL),
		blocks:   o.positions.Bind(p),
		logger:   o.logger.With().Str("template", req.Template).Logger(),
	}
	s.theme = o.themeConfig(req, s.logger)
	return s, nil
}

func (o *Orchestrator) themeConfig(req Request, logger zerolog.Logger) *theme.RendererConfig {
	if o.selector == nil {
		return nil
	}
	name := req.ThemeName
	if name == "" {
		name = req.Template
	}
	sel, err := o.selector.Select(name, req.ThemeVariant)
	if err != nil {
		logger.Warn().Err(err).Str("theme", name).Msg("theme selection failed, rendering without theme")
		return nil
	}
	return manifest.RendererConfig(sel, o.fallbacks)
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("page: renderer registry is nil")
	}
	r, err := o.registry.Resolve(name, o.defaultRenderer)
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}
	return r, nil
}

func (o *Orchestrator) scssCacheDir(tpl string) string {
	return filepath.Join(o.root, "cache", "templates", tpl)
}
