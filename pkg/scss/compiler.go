package scss

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"
	"github.com/spf13/afero"
)

// Request describes one compilation.
type Request struct {
	// Entry is the SCSS file name without extension, relative to Dir.
	Entry string
	Dir   string
	Vars  map[string]string
}

// Result holds compiled CSS.
type Result struct {
	CSS string
}

// Compiler turns SCSS into CSS.
type Compiler interface {
	Compile(ctx context.Context, req Request) (Result, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, req Request) (Result, error)

func (f CompilerFunc) Compile(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// DartSass compiles through the embedded Dart Sass protocol. The transpiler
// process is started on first use and shared until Close.
type DartSass struct {
	fs     afero.Fs
	binary string

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

// NewDartSass returns a compiler that reads sources from fs. binary is the
// dart-sass executable; empty uses "sass" from PATH.
func NewDartSass(fs afero.Fs, binary string) *DartSass {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DartSass{fs: fs, binary: binary}
}

func (d *DartSass) start() (*godartsass.Transpiler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.transpiler != nil {
		return d.transpiler, nil
	}
	t, err := godartsass.Start(godartsass.Options{DartSassEmbeddedFilename: d.binary})
	if err != nil {
		return nil, fmt.Errorf("scss: start dart sass: %w", err)
	}
	d.transpiler = t
	return t, nil
}

// Compile implements Compiler.
func (d *DartSass) Compile(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	t, err := d.start()
	if err != nil {
		return Result{}, err
	}
	res, err := t.Execute(godartsass.Args{
		Source:         entrySource(req),
		OutputStyle:    godartsass.OutputStyleExpanded,
		SourceSyntax:   godartsass.SourceSyntaxSCSS,
		ImportResolver: fsImporter{fs: d.fs, dir: req.Dir},
	})
	if err != nil {
		return Result{}, fmt.Errorf("scss: compile %s: %w", req.Entry, err)
	}
	return Result{CSS: res.CSS}, nil
}

// Close stops the transpiler process.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.transpiler == nil {
		return nil
	}
	err := d.transpiler.Close()
	d.transpiler = nil
	return err
}

// entrySource declares the variables ahead of importing the entry file.
func entrySource(req Request) string {
	keys := make([]string, 0, len(req.Vars))
	for k := range req.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "$%s: %s;\n", strings.TrimPrefix(k, "$"), req.Vars[k])
	}
	fmt.Fprintf(&b, "@import %q;\n", req.Entry)
	return b.String()
}

const importScheme = "sitetheme:"

type fsImporter struct {
	fs  afero.Fs
	dir string
}

func (i fsImporter) CanonicalizeURL(url string) (string, error) {
	name := strings.TrimPrefix(strings.TrimPrefix(url, importScheme), "file://")
	if !path.IsAbs(name) {
		name = path.Join(filepath.ToSlash(i.dir), name)
	}
	file, ok := locate(i.fs, name)
	if !ok {
		return "", nil
	}
	return importScheme + filepath.ToSlash(file), nil
}

func (i fsImporter) Load(canonicalizedURL string) (godartsass.Import, error) {
	file := filepath.FromSlash(strings.TrimPrefix(canonicalizedURL, importScheme))
	data, err := afero.ReadFile(i.fs, file)
	if err != nil {
		return godartsass.Import{}, fmt.Errorf("scss: load %s: %w", file, err)
	}
	syntax := godartsass.SourceSyntaxSCSS
	if strings.HasSuffix(file, ".css") {
		syntax = godartsass.SourceSyntaxCSS
	}
	return godartsass.Import{Content: string(data), SourceSyntax: syntax}, nil
}
