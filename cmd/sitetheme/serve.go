package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitetheme/components/webfonts"
	"github.com/goliatone/go-sitetheme/pkg/admin"
	"github.com/goliatone/go-sitetheme/pkg/admin/apidoc"
	"github.com/goliatone/go-sitetheme/pkg/assets"
	"github.com/goliatone/go-sitetheme/pkg/content"
	"github.com/goliatone/go-sitetheme/pkg/manifest"
	"github.com/goliatone/go-sitetheme/pkg/menu"
	"github.com/goliatone/go-sitetheme/pkg/page"
	"github.com/goliatone/go-sitetheme/pkg/positions"
	"github.com/goliatone/go-sitetheme/pkg/scss"
	"github.com/goliatone/go-sitetheme/pkg/server"
	"github.com/goliatone/go-sitetheme/pkg/store/sqlite"
	"github.com/goliatone/go-sitetheme/pkg/style"
)

// AdminTokenHeader carries the admin token when one is configured.
const AdminTokenHeader = "X-Admin-Token"

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site, its assets and the admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	fs := afero.NewOsFs()
	logger := a.logger

	logger.Debug().Str("section", "init").Str("path", cfg.Paths.Data).Msg("opening database")
	store, err := sqlite.Open(cfg.Paths.Data)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	doc, err := apidoc.Load(ctx)
	if err != nil {
		return err
	}
	styles := style.NewService(store, style.WithValidator(doc))

	modules := positions.NewRegistry(
		positions.WithSource(store),
		positions.WithContentFilter(func(m positions.Module) (template.HTML, error) {
			return content.Render(m.Content, m.Format)
		}),
	)
	menus, err := menu.NewService(store, menu.WithModules(modules), menu.WithLogger(logger))
	if err != nil {
		return err
	}
	modules.RegisterBuiltins(menus)

	opts, closeFn, err := a.pageOptions(fs, modules)
	if err != nil {
		return err
	}
	defer closeFn()
	pages := page.New(opts...)

	sweeper := assets.NewSweeper(fs, filepath.Join(cfg.Paths.Root, "cache"),
		time.Duration(cfg.Cache.MaxAgeHours)*time.Hour, logger)
	if err := sweeper.Start(cfg.Cache.SweepSchedule); err != nil {
		return err
	}
	defer sweeper.Stop()

	var fontFns []webfonts.OptionFn
	adminFns := []admin.OptionFn{
		admin.WithStyles(styles),
		admin.WithMenus(menus),
		admin.WithDoc(doc),
		admin.WithLogger(logger),
	}
	if token := cfg.Admin.Token; token != "" {
		guard := tokenGuard(token)
		adminFns = append(adminFns, admin.WithGuard(guard))
		fontFns = append(fontFns, webfonts.WithGuard(webfonts.GuardFunc(guard)))
	} else {
		logger.Warn().Str("section", "init").Msg("admin API is not protected, set admin.token")
	}
	adminHandler, err := admin.NewHandler(adminFns...)
	if err != nil {
		return err
	}

	site := server.Site{
		Template:  cfg.Template.Name,
		StyleID:   cfg.Template.StyleID,
		Renderer:  cfg.Template.Renderer,
		Variant:   cfg.Template.Variant,
		BaseURL:   cfg.Server.BaseURL,
		SiteName:  cfg.Server.SiteName,
		Language:  cfg.Server.Language,
		Direction: cfg.Server.Direction,
	}
	pagesDir := filepath.Join(cfg.Paths.Root, "pages")
	srv, err := server.New(
		server.WithSite(site),
		server.WithPages(pages),
		server.WithStyles(styles),
		server.WithComponent(server.ArticlePages(store, site, server.MarkdownPages(fs, pagesDir))),
		server.WithAdmin(adminHandler),
		server.WithWebfonts(fontFns...),
		server.WithFS(fs, cfg.Paths.Root),
		server.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("section", "init").Str("addr", cfg.Server.Addr).Str("template", site.Template).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}

// pageOptions builds the orchestrator options shared by serve and render.
// The returned func releases the SCSS compiler.
func (a *app) pageOptions(fs afero.Fs, modules *positions.Registry) ([]page.Option, func(), error) {
	cfg := a.cfg
	opts := []page.Option{
		page.WithFS(fs, cfg.Paths.Root),
		page.WithPositions(modules),
		page.WithLogger(a.logger),
		page.WithAssets(assets.NewPipeline(
			assets.WithFS(fs),
			assets.WithRoot(cfg.Paths.Root),
			assets.WithBaseURL(cfg.Server.BaseURL),
			assets.WithCacheTime(time.Duration(cfg.Cache.TimeMinutes)*time.Minute),
			assets.WithLogger(a.logger),
		)),
	}
	if cfg.Template.Renderer != "" {
		opts = append(opts, page.WithDefaultRenderer(cfg.Template.Renderer))
	}

	themes := manifest.NewRegistry(cfg.Template.Name)
	dir := cfg.Paths.Manifests
	if dir == "" {
		dir = filepath.Join(cfg.Paths.Root, "templates")
	}
	if ok, _ := afero.DirExists(fs, dir); ok {
		if err := themes.LoadDir(fs, dir); err != nil {
			return nil, nil, err
		}
	}
	if len(themes.Names()) > 0 {
		opts = append(opts, page.WithThemeSelector(themes))
	}

	closeFn := func() {}
	if bin := cfg.SCSS.DartSassBinary; bin != "" {
		compiler := scss.NewDartSass(fs, bin)
		opts = append(opts, page.WithSCSS(compiler))
		closeFn = func() { _ = compiler.Close() }
	}
	return opts, closeFn, nil
}

func tokenGuard(token string) admin.GuardFunc {
	return func(r *http.Request) error {
		if r.Header.Get(AdminTokenHeader) != token {
			return admin.StatusError{Code: http.StatusUnauthorized, Err: errors.New("admin: invalid token")}
		}
		return nil
	}
}
