package main

import (
	"errors"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitetheme/pkg/scaffold"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the options.json of a new template interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompt := scaffold.Terminal{Out: cmd.OutOrStdout()}
			res, err := scaffold.New(prompt, afero.NewOsFs(), a.cfg.Paths.Root).Run(cmd.Context())
			switch {
			case errors.Is(err, scaffold.ErrAborted), errors.Is(err, scaffold.ErrExists):
				a.logger.Warn().Err(err).Msg("nothing written")
				return nil
			case err != nil:
				return err
			}
			a.logger.Info().
				Str("template", res.Template).
				Str("preset", res.Preset).
				Int("rows", len(res.Layout)).
				Msg("template scaffolded")
			return nil
		},
	}
}
