// Package config loads the site configuration from a YAML file, the
// environment (SITETHEME_*) and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SITETHEME_SERVER_ADDR.
const EnvPrefix = "SITETHEME"

// Config is the site configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Template TemplateConfig `mapstructure:"template"`
	Cache    CacheConfig    `mapstructure:"cache"`
	SCSS     SCSSConfig     `mapstructure:"scss"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// BaseURL is the path prefix the site is served under, "" for /.
	BaseURL   string `mapstructure:"base_url"`
	SiteName  string `mapstructure:"site_name"`
	Language  string `mapstructure:"language"`
	Direction string `mapstructure:"direction"`
}

type PathsConfig struct {
	// Root holds templates/ and cache/.
	Root string `mapstructure:"root"`
	// Data is the SQLite database file.
	Data string `mapstructure:"data"`
	// Manifests is a directory of theme manifests, optional.
	Manifests string `mapstructure:"manifests"`
}

type TemplateConfig struct {
	Name     string `mapstructure:"name"`
	StyleID  int64  `mapstructure:"style_id"`
	Renderer string `mapstructure:"renderer"`
	Variant  string `mapstructure:"variant"`
}

type CacheConfig struct {
	// TimeMinutes is how long a bundle is trusted before its sources are
	// checked again.
	TimeMinutes   int    `mapstructure:"time_minutes"`
	SweepSchedule string `mapstructure:"sweep_schedule"`
	// MaxAgeHours removes bundles untouched for longer.
	MaxAgeHours int `mapstructure:"max_age_hours"`
}

type SCSSConfig struct {
	// DartSassBinary is the embedded Dart Sass executable. Empty disables
	// compilation.
	DartSassBinary string `mapstructure:"dart_sass_binary"`
}

type AdminConfig struct {
	// Token, when set, must be sent in the X-Admin-Token header.
	Token string `mapstructure:"token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the defaults of every key. Keys unknown to viper are
// not read from the environment, so every field needs one.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.site_name", "sitetheme")
	v.SetDefault("server.language", "en-gb")
	v.SetDefault("server.direction", "ltr")

	v.SetDefault("paths.root", ".")
	v.SetDefault("paths.data", "sitetheme.db")
	v.SetDefault("paths.manifests", "")

	v.SetDefault("template.name", "shaper")
	v.SetDefault("template.style_id", 0)
	v.SetDefault("template.renderer", "")
	v.SetDefault("template.variant", "")

	v.SetDefault("cache.time_minutes", 15)
	v.SetDefault("cache.sweep_schedule", "@every 1h")
	v.SetDefault("cache.max_age_hours", 24*7)

	v.SetDefault("scss.dart_sass_binary", "")
	v.SetDefault("admin.token", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Open prepares v: .env values, the config file and the environment. An
// explicit file must exist; otherwise .sitetheme.yaml is looked up in the
// working and home directories and may be absent.
func Open(v *viper.Viper, file string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".sitetheme")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read: %w", err)
	}
	return nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Cache.TimeMinutes < 0 {
		return Config{}, errors.New("config: cache.time_minutes must not be negative")
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	return cfg, nil
}
