package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitetheme/pkg/assets"
	"github.com/goliatone/go-sitetheme/pkg/document"
)

type bundleFlags struct {
	css      string
	js       string
	excludes string
}

func newBundleCmd(a *app) *cobra.Command {
	f := &bundleFlags{}
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Write the CSS and JS bundles of the template to the cache",
		Long: `Links the listed template stylesheets and scripts into a document, runs
the compression pipeline over it and prints the resulting head markup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.bundle(cmd.Context(), afero.NewOsFs(), f, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.css, "css", "bootstrap.min.css, font-awesome.min.css, template.css", "comma separated stylesheets")
	flags.StringVar(&f.js, "js", "jquery.min.js, popper.min.js, bootstrap.min.js, main.js", "comma separated scripts")
	flags.StringVar(&f.excludes, "exclude-js", "", "comma separated scripts left out of the bundles")
	return cmd
}

func (a *app) bundle(ctx context.Context, fs afero.Fs, f *bundleFlags, out io.Writer) error {
	cfg := a.cfg
	tpl := cfg.Template.Name
	resolver := assets.NewResolver(fs, cfg.Paths.Root, tpl, cfg.Server.BaseURL)

	doc := document.New()
	resolver.AddCSS(doc, f.css)
	resolver.AddJS(doc, f.js)
	if len(doc.StyleSheets()) == 0 && len(doc.Scripts()) == 0 {
		return fmt.Errorf("bundle: no assets of %q found under %s", tpl, resolver.TemplateDir())
	}

	pipeline := assets.NewPipeline(
		assets.WithFS(fs),
		assets.WithRoot(cfg.Paths.Root),
		assets.WithBaseURL(cfg.Server.BaseURL),
		assets.WithCacheTime(time.Duration(cfg.Cache.TimeMinutes)*time.Minute),
		assets.WithLogger(a.logger),
	).ForTemplate(tpl)

	if err := pipeline.CompressCSS(ctx, doc); err != nil {
		return err
	}
	if err := pipeline.CompressJS(ctx, doc, f.excludes); err != nil {
		return err
	}

	a.logger.Info().
		Str("template", tpl).
		Int("stylesheets", len(doc.StyleSheets())).
		Int("scripts", len(doc.Scripts())).
		Msg("bundles written")
	_, err := io.WriteString(out, strings.TrimSpace(doc.HeadHTML())+"\n")
	return err
}
