package scss

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/pkg/assets"
	"github.com/goliatone/go-sitetheme/pkg/document"
	"github.com/goliatone/go-sitetheme/pkg/metrics"
)

// CacheRecord is stored next to the asset bundles as <entry>.scss.cache.
type CacheRecord struct {
	Imports map[string]int64  `json:"imports"`
	Vars    map[string]string `json:"vars"`
}

// Manager compiles template SCSS on demand and links the resulting CSS.
type Manager struct {
	fs       afero.Fs
	resolver *assets.Resolver
	compiler Compiler
	cacheDir string
	enabled  bool
	logger   zerolog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCompiler sets the compiler. Without one, Add only links CSS.
func WithCompiler(c Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = c
	}
}

// WithCacheDir sets where cache records are written.
func WithCacheDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.cacheDir = dir
	}
}

// WithEnabled toggles compilation (the style's scssoption).
func WithEnabled(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithFS sets the filesystem holding sources, output and cache records.
func WithFS(fs afero.Fs) ManagerOption {
	return func(m *Manager) {
		if fs != nil {
			m.fs = fs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager builds a manager for the resolver's template.
func NewManager(resolver *assets.Resolver, opts ...ManagerOption) *Manager {
	m := &Manager{
		fs:       afero.NewOsFs(),
		resolver: resolver,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Manager) scssDir() string {
	return filepath.Join(m.resolver.TemplateDir(), "scss")
}

func (m *Manager) cacheFile(entry string) string {
	return filepath.Join(m.cacheDir, entry+".scss.cache")
}

// Add compiles scss into css when enabled and stale (or force is set) and
// links the CSS file. css defaults to the entry name.
func (m *Manager) Add(ctx context.Context, doc *document.Document, scss string, vars map[string]string, css string, force bool) error {
	entry := stripExt(scss)
	if css == "" {
		css = entry + ".css"
	} else {
		css = stripExt(css) + ".css"
	}

	if m.enabled && m.compiler != nil {
		needs, err := m.NeedsCompile(entry, vars)
		if err != nil {
			return err
		}
		if force || needs {
			if err := m.compile(ctx, entry, vars, css); err != nil {
				metrics.SCSSCompiled("error")
				return err
			}
		} else {
			metrics.SCSSCompiled("skipped")
		}
	}

	m.resolver.AddCSS(doc, css)
	return nil
}

func (m *Manager) compile(ctx context.Context, entry string, vars map[string]string, css string) error {
	dir := m.scssDir()
	if ok, _ := afero.Exists(m.fs, filepath.Join(dir, entry+".scss")); !ok {
		return nil
	}

	res, err := m.compiler.Compile(ctx, Request{Entry: entry, Dir: dir, Vars: vars})
	if err != nil {
		return err
	}

	outDir := filepath.Join(m.resolver.TemplateDir(), "css")
	if err := m.fs.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("scss: create css dir: %w", err)
	}
	if err := afero.WriteFile(m.fs, filepath.Join(outDir, css), []byte(res.CSS), 0o644); err != nil {
		return fmt.Errorf("scss: write %s: %w", css, err)
	}

	imports, err := Imports(m.fs, dir, entry)
	if err != nil {
		return err
	}
	record := CacheRecord{Imports: make(map[string]int64, len(imports)), Vars: map[string]string{}}
	for _, file := range imports {
		info, err := m.fs.Stat(file)
		if err != nil {
			return fmt.Errorf("scss: stat %s: %w", file, err)
		}
		record.Imports[file] = info.ModTime().Unix()
	}
	for k, v := range vars {
		record.Vars[k] = v
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("scss: encode cache: %w", err)
	}
	if err := m.fs.MkdirAll(m.cacheDir, 0o755); err != nil {
		return fmt.Errorf("scss: create cache dir: %w", err)
	}
	if err := afero.WriteFile(m.fs, m.cacheFile(entry), payload, 0o644); err != nil {
		return fmt.Errorf("scss: write cache: %w", err)
	}

	metrics.SCSSCompiled("ok")
	m.logger.Debug().Str("entry", entry).Str("css", css).Int("imports", len(imports)).Msg("scss compiled")
	return nil
}

// NeedsCompile reports whether entry must be recompiled: no cache record,
// a variable missing or changed, no recorded imports, or an import that is
// gone or has a different modification time.
func (m *Manager) NeedsCompile(entry string, vars map[string]string) (bool, error) {
	data, err := afero.ReadFile(m.fs, m.cacheFile(stripExt(entry)))
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("scss: read cache: %w", err)
	}

	var record CacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return true, nil
	}

	for k, v := range vars {
		cached, ok := record.Vars[k]
		if !ok || cached != v {
			return true, nil
		}
	}
	if len(record.Imports) == 0 {
		return true, nil
	}
	for file, mtime := range record.Imports {
		info, err := m.fs.Stat(file)
		if err != nil {
			return true, nil
		}
		if info.ModTime().Unix() != mtime {
			return true, nil
		}
	}
	return false, nil
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
