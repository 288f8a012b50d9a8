package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/afero"
)

// ErrUnknownTheme is returned when no manifest is registered under a name.
var ErrUnknownTheme = errors.New("manifest: unknown theme")

// Registry holds the manifests of the installed templates and selects
// the theme for a request.
type Registry struct {
	mu       sync.RWMutex
	files    map[string]File
	provider interface {
		Register(*theme.Manifest) error
	}
	fallback string
}

var _ theme.ThemeSelector = (*Registry)(nil)

// NewRegistry returns an empty registry. fallback names the theme selected
// when a request names none.
func NewRegistry(fallback string) *Registry {
	return &Registry{
		files:    map[string]File{},
		provider: theme.NewRegistry(),
		fallback: fallback,
	}
}

// Register adds a manifest. Names must be unique.
func (r *Registry) Register(f File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.files[f.Name]; exists {
		return fmt.Errorf("manifest: duplicate theme %q", f.Name)
	}
	if err := r.provider.Register(f.Manifest()); err != nil {
		return fmt.Errorf("manifest: register %q: %w", f.Name, err)
	}
	r.files[f.Name] = f
	if r.fallback == "" {
		r.fallback = f.Name
	}
	return nil
}

// File returns the manifest registered under name.
func (r *Registry) File(name string) (File, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[name]
	return f, ok
}

// Names returns the registered theme names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Positions returns the module positions a template declares.
func (r *Registry) Positions(name string) []string {
	f, ok := r.File(name)
	if !ok {
		return nil
	}
	return append([]string(nil), f.Positions...)
}

// Select implements theme.ThemeSelector. An unknown variant selects the
// base manifest.
func (r *Registry) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if strings.TrimSpace(name) == "" {
		name = r.fallback
	}
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if _, ok := f.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{
		Theme:    f.Name,
		Variant:  variant,
		Manifest: f.Manifest(),
	}, nil
}

// LoadFS registers every manifest found in fsys.
func (r *Registry) LoadFS(fsys fs.FS) error {
	if fsys == nil {
		return nil
	}
	return fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isManifest(path.Base(p)) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("manifest: read %s: %w", p, err)
		}
		f, err := Parse(data, p)
		if err != nil {
			return err
		}
		return r.Register(f)
	})
}

// LoadDir registers the manifest of every template below dir
// (dir/<template>/theme.yaml). Templates without a manifest are registered
// under their directory name.
func (r *Registry) LoadDir(fsys afero.Fs, dir string) error {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("manifest: list %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		f, err := Load(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if f.Name == "" {
			f.Name = entry.Name()
		}
		if err := r.Register(f); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the manifest of one template directory. A directory without
// a manifest yields an empty File.
func Load(fsys afero.Fs, templateDir string) (File, error) {
	for _, name := range FileNames {
		p := path.Join(templateDir, name)
		ok, err := afero.Exists(fsys, p)
		if err != nil {
			return File{}, fmt.Errorf("manifest: stat %s: %w", p, err)
		}
		if !ok {
			continue
		}
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return File{}, fmt.Errorf("manifest: read %s: %w", p, err)
		}
		return Parse(data, p)
	}
	return File{Version: "1.0.0"}, nil
}

func isManifest(name string) bool {
	for _, n := range FileNames {
		if name == n {
			return true
		}
	}
	return false
}
