package manifest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// FileNames lists the manifest names looked up in a template directory, in
// order.
var FileNames = []string{"theme.yaml", "theme.yml", "theme.json"}

// File is the on-disk manifest of a template.
type File struct {
	Name        string                 `json:"name" yaml:"name"`
	Version     string                 `json:"version" yaml:"version"`
	Description string                 `json:"description" yaml:"description"`
	Positions   []string               `json:"positions" yaml:"positions"`
	Tokens      map[string]string      `json:"tokens" yaml:"tokens"`
	Templates   map[string]string      `json:"templates" yaml:"templates"`
	Assets      AssetsFile             `json:"assets" yaml:"assets"`
	Variants    map[string]VariantFile `json:"variants" yaml:"variants"`
}

// AssetsFile maps asset keys to files below Prefix.
type AssetsFile struct {
	Prefix string            `json:"prefix" yaml:"prefix"`
	Files  map[string]string `json:"files" yaml:"files"`
}

// VariantFile overrides parts of the manifest.
type VariantFile struct {
	Tokens    map[string]string `json:"tokens" yaml:"tokens"`
	Templates map[string]string `json:"templates" yaml:"templates"`
	Assets    AssetsFile        `json:"assets" yaml:"assets"`
}

// Parse decodes a JSON or YAML manifest.
func Parse(data []byte, source string) (File, error) {
	var f File
	if strings.TrimSpace(string(data)) == "" {
		return File{}, fmt.Errorf("manifest: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		if yerr := yaml.Unmarshal(data, &f); yerr != nil {
			return File{}, fmt.Errorf("manifest: parse %s: invalid JSON or YAML", source)
		}
	}
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return File{}, fmt.Errorf("manifest: file %s has no name", source)
	}
	if f.Version == "" {
		f.Version = "1.0.0"
	}
	f.Positions = normalizePositions(f.Positions)
	return f, nil
}

func normalizePositions(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Manifest converts f to a go-theme manifest.
func (f File) Manifest() *theme.Manifest {
	m := &theme.Manifest{
		Name:      f.Name,
		Version:   f.Version,
		Tokens:    cloneStrings(f.Tokens),
		Templates: cloneStrings(f.Templates),
		Assets: theme.Assets{
			Prefix: f.Assets.Prefix,
			Files:  cloneStrings(f.Assets.Files),
		},
	}
	if len(f.Variants) > 0 {
		m.Variants = make(map[string]theme.Variant, len(f.Variants))
		for name, v := range f.Variants {
			m.Variants[name] = theme.Variant{
				Tokens:    cloneStrings(v.Tokens),
				Templates: cloneStrings(v.Templates),
				Assets: theme.Assets{
					Prefix: v.Assets.Prefix,
					Files:  cloneStrings(v.Assets.Files),
				},
			}
		}
	}
	return m
}

// VariantNames returns the variant names sorted.
func (f File) VariantNames() []string {
	names := make([]string, 0, len(f.Variants))
	for name := range f.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
