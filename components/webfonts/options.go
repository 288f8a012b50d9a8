package webfonts

import (
	"net/http"
	"strconv"
	"strings"
)

// DefaultPath is where Mount registers the search.
const DefaultPath = "/api/webfonts"

// GuardFunc rejects a request before the catalog is searched. An error
// with a StatusCode() int method picks the response code, 403 otherwise.
type GuardFunc func(r *http.Request) error

// Config drives the search endpoint.
type Config struct {
	Path         string
	DefaultLimit int
	MaxLimit     int
	// ListAll answers an empty query with the head of the catalog.
	ListAll bool
	Guard   GuardFunc
	// Families replaces the embedded list when non-nil.
	Families []string
}

type OptionFn func(*Config)

func newConfig(fns ...OptionFn) Config {
	cfg := Config{Path: DefaultPath, DefaultLimit: 30, MaxLimit: 100, ListAll: true}
	for _, fn := range fns {
		if fn != nil {
			fn(&cfg)
		}
	}
	cfg.Path = "/" + strings.Trim(strings.TrimSpace(cfg.Path), "/")
	if cfg.Path == "/" {
		cfg.Path = DefaultPath
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	return cfg
}

func WithPath(path string) OptionFn {
	return func(c *Config) { c.Path = path }
}

// WithLimits sets the page size used without ?limit and its upper bound.
func WithLimits(def, max int) OptionFn {
	return func(c *Config) {
		c.DefaultLimit = def
		c.MaxLimit = max
	}
}

func WithListAll(on bool) OptionFn {
	return func(c *Config) { c.ListAll = on }
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(c *Config) { c.Guard = guard }
}

func WithFamilies(families []string) OptionFn {
	return func(c *Config) {
		if families == nil {
			c.Families = nil
			return
		}
		c.Families = append([]string{}, families...)
	}
}

// limit reads ?limit: missing or unparsable means the default, negative
// means none.
func (c Config) limit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil || n == 0:
		return c.DefaultLimit
	case n < 0:
		return 0
	case n > c.MaxLimit:
		return c.MaxLimit
	}
	return n
}
