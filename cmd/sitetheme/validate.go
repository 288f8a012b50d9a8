package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitetheme/pkg/admin/apidoc"
	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/params"
)

func newValidateCmd(a *app) *cobra.Command {
	var paramsFiles []string
	cmd := &cobra.Command{
		Use:   "validate [layout files...]",
		Short: "Check layout files and style params",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(paramsFiles) == 0 {
				return fmt.Errorf("validate: no files given")
			}
			fs := afero.NewOsFs()
			failed := 0
			for _, file := range args {
				l, err := readLayout(fs, file)
				if err == nil {
					err = layout.Validate(l)
				}
				failed += report(cmd, file, err, fmt.Sprintf("%d rows", len(l)))
			}
			if len(paramsFiles) > 0 {
				doc, err := apidoc.Load(cmd.Context())
				if err != nil {
					return err
				}
				for _, file := range paramsFiles {
					err := validateParams(cmd, fs, doc, file)
					failed += report(cmd, file, err, "params ok")
				}
			}
			if failed > 0 {
				return fmt.Errorf("validate: %d of %d files failed", failed, len(args)+len(paramsFiles))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&paramsFiles, "params", nil, "style params JSON files to check against the admin API schema")
	return cmd
}

func validateParams(cmd *cobra.Command, fs afero.Fs, doc *apidoc.Doc, file string) error {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return err
	}
	p, err := params.FromJSON(data)
	if err != nil {
		return err
	}
	if err := doc.ValidateParams(cmd.Context(), p); err != nil {
		return err
	}
	if raw, ok := p.Raw("layout"); ok {
		l, err := layout.Parse(raw)
		if err != nil {
			return err
		}
		return layout.Validate(l)
	}
	return nil
}

func report(cmd *cobra.Command, file string, err error, ok string) int {
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", file, err)
		return 1
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok   %s: %s\n", file, ok)
	return 0
}

// readLayout reads a bare row list or an options.json document.
func readLayout(fs afero.Fs, file string) (layout.Layout, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", file, err)
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return layout.ParseOptionsFile(data)
	}
	return layout.Parse(data)
}
