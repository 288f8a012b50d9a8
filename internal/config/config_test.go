package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  addr: ":9000"
  base_url: "/site/"
template:
  name: "helix"
  style_id: 9
cache:
  time_minutes: 30
`), 0o600))

	t.Setenv("SITETHEME_LOG_LEVEL", "debug")
	t.Setenv("SITETHEME_TEMPLATE_RENDERER", "outline")

	v := viper.New()
	require.NoError(t, Open(v, file))
	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, "/site", cfg.Server.BaseURL)
	require.Equal(t, "helix", cfg.Template.Name)
	require.Equal(t, int64(9), cfg.Template.StyleID)
	require.Equal(t, "outline", cfg.Template.Renderer)
	require.Equal(t, 30, cfg.Cache.TimeMinutes)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "en-gb", cfg.Server.Language)
	require.Equal(t, "@every 1h", cfg.Cache.SweepSchedule)
}

func TestOpen_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	require.Error(t, Open(v, filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "sitetheme.db", cfg.Paths.Data)
	require.Equal(t, 15, cfg.Cache.TimeMinutes)
	require.Equal(t, "json", cfg.Log.Format)
}
