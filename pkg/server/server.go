// Package server wires the site: page rendering, template and bundle
// assets, the admin AJAX API, the web font search and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/components/webfonts"
	"github.com/goliatone/go-sitetheme/internal/logging"
	"github.com/goliatone/go-sitetheme/pkg/content"
	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/metrics"
	"github.com/goliatone/go-sitetheme/pkg/page"
	"github.com/goliatone/go-sitetheme/pkg/params"
	"github.com/goliatone/go-sitetheme/pkg/style"
)

// ErrPageNotFound is returned by a ComponentFunc with no content for the
// request.
var ErrPageNotFound = errors.New("server: page not found")

// StyleSource provides the style params a page is rendered with.
// *style.Service satisfies it.
type StyleSource interface {
	Get(ctx context.Context, id int64) (style.Style, error)
	Default(ctx context.Context, template string) (style.Style, error)
}

// ComponentFunc renders the component output of a request.
type ComponentFunc func(r *http.Request) (template.HTML, error)

// Site is the fixed part of every page request.
type Site struct {
	Template string
	// StyleID selects a style; zero uses the template's home style.
	StyleID   int64
	Renderer  string
	Variant   string
	BaseURL   string
	SiteName  string
	Language  string
	Direction string
}

// Option configures a Server.
type Option func(*Server)

func WithSite(site Site) Option {
	return func(s *Server) { s.site = site }
}

func WithPages(o *page.Orchestrator) Option {
	return func(s *Server) { s.pages = o }
}

func WithStyles(src StyleSource) Option {
	return func(s *Server) { s.styles = src }
}

func WithComponent(fn ComponentFunc) Option {
	return func(s *Server) { s.component = fn }
}

// WithAdmin mounts h under /admin.
func WithAdmin(h http.Handler) Option {
	return func(s *Server) { s.admin = h }
}

// WithWebfonts configures the font search served at /api/webfonts.
func WithWebfonts(fns ...webfonts.OptionFn) Option {
	return func(s *Server) { s.fonts = fns }
}

// WithFS sets the filesystem and the site root holding templates/ and cache/.
func WithFS(fs afero.Fs, root string) Option {
	return func(s *Server) {
		if fs != nil {
			s.fs = fs
		}
		s.root = root
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server is the site handler.
type Server struct {
	site      Site
	pages     *page.Orchestrator
	styles    StyleSource
	component ComponentFunc
	admin     http.Handler
	fonts     []webfonts.OptionFn
	fs        afero.Fs
	root      string
	logger    zerolog.Logger
	router    chi.Router
}

// New builds the router.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		fs:     afero.NewOsFs(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.pages == nil {
		return nil, errors.New("server: page orchestrator is required")
	}
	if s.site.Template == "" {
		return nil, errors.New("server: template is required")
	}

	r := chi.NewRouter()
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(observe)
	r.Use(middleware.Compress(5))

	s.site.BaseURL = strings.TrimRight(s.site.BaseURL, "/")
	if s.site.BaseURL == "" {
		s.routes(r)
	} else {
		r.Route(s.site.BaseURL, s.routes)
	}
	s.router = r
	return s, nil
}

func (s *Server) routes(r chi.Router) {
	files := afero.NewHttpFs(s.fs)
	r.Handle("/templates/*", http.StripPrefix(s.site.BaseURL+"/templates/",
		http.FileServer(files.Dir(filepath.Join(s.root, "templates")))))
	r.Handle("/cache/*", http.StripPrefix(s.site.BaseURL+"/cache/",
		http.FileServer(files.Dir(filepath.Join(s.root, "cache")))))

	if s.admin != nil {
		r.Mount("/admin", s.admin)
	}
	webfonts.Mount(r, s.fonts...)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", s.handlePage)
	r.Get("/*", s.handlePage)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	st, err := s.style(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("load style")
		s.errorPage(w, http.StatusInternalServerError, "")
		return
	}

	var component template.HTML
	if s.component != nil {
		component, err = s.component(r)
		switch {
		case errors.Is(err, ErrPageNotFound):
			s.errorPage(w, http.StatusNotFound, "")
			return
		case err != nil:
			logger.Error().Err(err).Msg("render component")
			s.errorPage(w, http.StatusInternalServerError, "")
			return
		}
	}

	req := s.request(r, st)
	req.Component = component
	out, contentType, err := s.pages.Render(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("template", req.Template).Msg("render page")
		msg := ""
		if errors.Is(err, layout.ErrLayoutMissing) {
			msg = layout.ErrLayoutMissing.Error()
		}
		s.errorPage(w, http.StatusInternalServerError, msg)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) style(ctx context.Context) (style.Style, error) {
	if s.styles == nil {
		return style.Style{Template: s.site.Template, Params: params.Params{}}, nil
	}
	if s.site.StyleID > 0 {
		return s.styles.Get(ctx, s.site.StyleID)
	}
	st, err := s.styles.Default(ctx, s.site.Template)
	if errors.Is(err, style.ErrNotFound) {
		return style.Style{Template: s.site.Template, Params: params.Params{}}, nil
	}
	return st, err
}

func (s *Server) request(r *http.Request, st style.Style) page.Request {
	q := r.URL.Query()
	tpl := st.Template
	if tpl == "" {
		tpl = s.site.Template
	}
	itemID, _ := strconv.Atoi(q.Get("Itemid"))
	renderer := q.Get("renderer")
	if renderer == "" {
		renderer = s.site.Renderer
	}

	return page.Request{
		Template: tpl,
		Params:   st.Params,
		Input: page.Input{
			Option: valueOr(q.Get("option"), "com_content"),
			View:   valueOr(q.Get("view"), "article"),
			Layout: q.Get("layout"),
			Task:   q.Get("task"),
			ItemID: itemID,
		},
		Language:     s.site.Language,
		Direction:    s.site.Direction,
		PageClass:    q.Get("pageclass"),
		BaseURL:      s.site.BaseURL,
		SiteName:     s.site.SiteName,
		Title:        s.site.SiteName,
		Renderer:     renderer,
		ThemeVariant: s.site.Variant,
	}
}

var errorTemplate = pongo2.Must(pongo2.FromString(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{ code }} {{ status }}</title></head>
<body class="error-page"><h1>{{ code }} {{ status }}</h1>{% if message %}<p class="error-message">{{ message }}</p>{% endif %}</body></html>
`))

func (s *Server) errorPage(w http.ResponseWriter, code int, message string) {
	out, err := errorTemplate.Execute(pongo2.Context{
		"code":    strconv.Itoa(code),
		"status":  http.StatusText(code),
		"message": message,
	})
	if err != nil {
		http.Error(w, http.StatusText(code), code)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(out))
}

// observe records the matched route pattern, method and status of every
// request.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveHTTP(route, r.Method, strconv.Itoa(status), time.Since(start))
	})
}

// MarkdownPages serves the component of a request from <dir>/<path>.md,
// index.md for the site root.
func MarkdownPages(fs afero.Fs, dir string) ComponentFunc {
	return func(r *http.Request) (template.HTML, error) {
		name := strings.Trim(path.Clean("/"+chi.URLParam(r, "*")), "/")
		if name == "" {
			name = "index"
		}
		src, err := afero.ReadFile(fs, filepath.Join(dir, filepath.FromSlash(name)+".md"))
		if err != nil {
			if ok, _ := afero.Exists(fs, filepath.Join(dir, filepath.FromSlash(name)+".md")); !ok {
				return "", ErrPageNotFound
			}
			return "", fmt.Errorf("server: read page %s: %w", name, err)
		}
		return content.Markdown(string(src))
	}
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
