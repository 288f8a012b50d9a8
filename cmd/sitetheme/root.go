package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-sitetheme/internal/config"
	"github.com/goliatone/go-sitetheme/internal/logging"
)

// app is the state shared by the sub commands once the configuration is
// loaded.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger zerolog.Logger

	cfgFile   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "sitetheme",
		Short: "Template framework for row/column site layouts",
		Long: `Renders JSON row/column layouts to Bootstrap markup with module positions,
bundles template assets and serves the site together with its admin API.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.init(cmd) },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./.sitetheme.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "logging level to show (options: debug|info|warn|error|fatal|panic, default: info)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format to generate (options: json|pretty, default: json)")
	flags.String("root", "", "site root holding templates/ and cache/")
	flags.String("template", "", "template name")

	_ = a.v.BindPFlag("paths.root", flags.Lookup("root"))
	_ = a.v.BindPFlag("template.name", flags.Lookup("template"))

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newBundleCmd(a),
		newInitCmd(a),
		newValidateCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.Open(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	a.cfg = cfg
	a.logger = logging.SetupWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug().Str("section", "init").Str("path", used).Msg("configuration file loaded")
	}
	return nil
}
