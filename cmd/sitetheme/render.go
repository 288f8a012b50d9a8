package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/page"
	"github.com/goliatone/go-sitetheme/pkg/params"
	"github.com/goliatone/go-sitetheme/pkg/positions"
)

type renderFlags struct {
	layout       string
	params       string
	output       string
	renderer     string
	view         string
	document     bool
	placeholders bool
}

func newRenderCmd(a *app) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a layout file to markup",
		Long: `Renders a layout (a JSON row list or an options.json document) with the
configured template. Every position gets a placeholder module unless
--placeholders=false, in which case rows without modules are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.render(cmd.Context(), afero.NewOsFs(), f)
			if err != nil {
				return err
			}
			if f.output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(f.output, out, 0o644); err != nil {
				return fmt.Errorf("render: write output: %w", err)
			}
			a.logger.Info().Str("path", f.output).Msg("layout written")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.layout, "layout", "", "layout file; empty uses the template's options.json")
	flags.StringVar(&f.params, "params", "", "style params JSON file")
	flags.StringVar(&f.output, "output", "", "output file (stdout if empty)")
	flags.StringVar(&f.renderer, "renderer", "", "renderer to use (bootstrap|outline)")
	flags.StringVar(&f.view, "view", "article", "view the page is rendered for")
	flags.BoolVar(&f.document, "document", false, "wrap the layout in the full HTML document")
	flags.BoolVar(&f.placeholders, "placeholders", true, "fill every position with a placeholder module")
	return cmd
}

func (a *app) render(ctx context.Context, fs afero.Fs, f *renderFlags) ([]byte, error) {
	p := params.Params{}
	if f.params != "" {
		data, err := afero.ReadFile(fs, f.params)
		if err != nil {
			return nil, fmt.Errorf("render: read params: %w", err)
		}
		if p, err = params.FromJSON(data); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
	}
	if f.layout != "" {
		l, err := readLayout(fs, f.layout)
		if err != nil {
			return nil, err
		}
		raw, err := layout.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		p["layout"] = string(raw)
	}

	var modules *positions.Registry
	if f.placeholders {
		modules = positions.NewRegistry(positions.WithSource(placeholderModules()))
	} else {
		modules = positions.NewRegistry()
	}
	opts, closeFn, err := a.pageOptions(fs, modules)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	o := page.New(opts...)

	req := page.Request{
		Template:     a.cfg.Template.Name,
		Params:       p,
		Input:        page.Input{Option: "com_content", View: f.view},
		Language:     a.cfg.Server.Language,
		Direction:    a.cfg.Server.Direction,
		BaseURL:      a.cfg.Server.BaseURL,
		SiteName:     a.cfg.Server.SiteName,
		Title:        a.cfg.Server.SiteName,
		Renderer:     f.renderer,
		ThemeVariant: a.cfg.Template.Variant,
	}
	if f.document {
		out, _, err := o.Render(ctx, req)
		return out, err
	}
	pg, err := o.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return []byte(pg.Body), nil
}

func placeholderModules() positions.Source {
	return positions.SourceFunc(func(_ context.Context, position string) ([]positions.Module, error) {
		return []positions.Module{{
			Title:    position,
			Position: position,
			Content:  "<!-- " + position + " -->",
		}}, nil
	})
}
