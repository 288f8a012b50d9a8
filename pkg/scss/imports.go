package scss

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var (
	importRule   = regexp.MustCompile(`@(?:import|use|forward)\s+([^;]+);`)
	quotedTarget = regexp.MustCompile(`["']([^"']+)["']`)
	lineComment  = regexp.MustCompile(`(?m)^\s*//.*$`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// Imports returns entry and every file it pulls in through @import, @use or
// @forward, depth first. Plain CSS imports, URLs and built in modules are
// skipped.
func Imports(fs afero.Fs, dir, entry string) ([]string, error) {
	start, ok := locate(fs, path.Join(filepath.ToSlash(dir), entry))
	if !ok {
		return nil, fmt.Errorf("scss: entry %s not found in %s", entry, dir)
	}
	seen := map[string]struct{}{}
	var out []string
	if err := walkImports(fs, start, seen, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkImports(fs afero.Fs, file string, seen map[string]struct{}, out *[]string) error {
	if _, ok := seen[file]; ok {
		return nil
	}
	seen[file] = struct{}{}
	*out = append(*out, file)

	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return fmt.Errorf("scss: read %s: %w", file, err)
	}
	src := blockComment.ReplaceAllString(string(data), "")
	src = lineComment.ReplaceAllString(src, "")

	base := path.Dir(filepath.ToSlash(file))
	for _, rule := range importRule.FindAllStringSubmatch(src, -1) {
		for _, target := range quotedTarget.FindAllStringSubmatch(rule[1], -1) {
			name := target[1]
			if skipImport(name) {
				continue
			}
			dep, ok := locate(fs, path.Join(base, name))
			if !ok {
				continue
			}
			if err := walkImports(fs, dep, seen, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipImport(name string) bool {
	return strings.HasPrefix(name, "sass:") ||
		strings.HasPrefix(name, "http://") ||
		strings.HasPrefix(name, "https://") ||
		strings.HasPrefix(name, "//") ||
		strings.HasSuffix(name, ".css")
}

// locate applies the Sass lookup order: exact name, .scss, partial and
// _index files.
func locate(fs afero.Fs, name string) (string, bool) {
	dir, base := path.Split(name)
	candidates := []string{name}
	if path.Ext(base) == "" {
		candidates = append(candidates,
			name+".scss",
			dir+"_"+base+".scss",
			name+".css",
			path.Join(name, "_index.scss"),
			path.Join(name, "index.scss"),
		)
	} else if !strings.HasPrefix(base, "_") {
		candidates = append(candidates, dir+"_"+base)
	}
	for _, c := range candidates {
		file := filepath.FromSlash(c)
		info, err := fs.Stat(file)
		if err == nil && !info.IsDir() {
			return file, true
		}
	}
	return "", false
}
