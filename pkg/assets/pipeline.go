package assets

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/pkg/document"
	"github.com/goliatone/go-sitetheme/pkg/metrics"
)

// DefaultCacheTime is the cache window applied when none is configured.
const DefaultCacheTime = 15 * time.Minute

const emptyScript = "/* No content */"

var (
	criticalCSS = regexp.MustCompile(`(preset.*|font-awesome.*)\.css`)
	criticalJS  = regexp.MustCompile(`(jquery.*)\.js$`)
)

// Pipeline bundles the local assets of a document.
type Pipeline struct {
	fs        afero.Fs
	root      string
	baseURL   string
	cacheDir  string
	cacheURL  string
	cacheTime time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFS sets the filesystem assets and bundles live on.
func WithFS(fs afero.Fs) Option {
	return func(p *Pipeline) {
		if fs != nil {
			p.fs = fs
		}
	}
}

// WithRoot sets the site root that local URLs resolve against.
func WithRoot(root string) Option {
	return func(p *Pipeline) {
		p.root = root
	}
}

// WithBaseURL sets the site path prefix stripped from local URLs.
func WithBaseURL(base string) Option {
	return func(p *Pipeline) {
		p.baseURL = strings.TrimRight(base, "/")
	}
}

// WithCache sets the bundle directory and the URL it is served from.
func WithCache(dir, url string) Option {
	return func(p *Pipeline) {
		p.cacheDir = dir
		p.cacheURL = strings.TrimRight(url, "/")
	}
}

// WithCacheTime sets the window after which bundles are rewritten.
func WithCacheTime(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.cacheTime = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger used for cache rewrites.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline constructs a pipeline. Bundles default to <root>/cache served
// from <base>/cache.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		fs:        afero.NewOsFs(),
		cacheTime: DefaultCacheTime,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.cacheDir == "" {
		p.cacheDir = filepath.Join(p.root, "cache")
	}
	if p.cacheURL == "" {
		p.cacheURL = p.baseURL + "/cache"
	}
	return p
}

// ForTemplate returns a copy writing bundles to the template's own cache
// folder.
func (p *Pipeline) ForTemplate(name string) *Pipeline {
	clone := *p
	clone.cacheDir = filepath.Join(p.cacheDir, "templates", name)
	clone.cacheURL = p.cacheURL + "/templates/" + name
	clone.logger = p.logger.With().Str("template", name).Logger()
	return &clone
}

type bundle struct {
	hash strings.Builder
	code strings.Builder
}

func (b *bundle) add(url, name, content string) {
	b.hash.WriteString(md5Hex(url))
	fmt.Fprintf(&b.code, "/*------ %s ------*/\n%s\n\n", name, content)
}

func (b *bundle) empty() bool {
	return b.code.Len() == 0
}

// CompressCSS replaces the local stylesheets of doc with a critical bundle
// (presets and font-awesome) and a lazily loaded bundle for the rest.
func (p *Pipeline) CompressCSS(ctx context.Context, doc *document.Document) error {
	var critical, lazy bundle

	for _, sheet := range doc.StyleSheets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		file, ok := p.localPath(sheet.URL)
		if !ok {
			continue
		}
		data, err := afero.ReadFile(p.fs, file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("assets: read %s: %w", file, err)
		}

		compressed, err := MinifyCSS(string(data))
		if err != nil {
			p.logger.Warn().Err(err).Str("file", file).Msg("css minify failed, bundling source")
			compressed = string(data)
		}
		compressed = RebaseURLs(compressed, sheet.URL)

		target := &lazy
		if criticalCSS.MatchString(sheet.URL) {
			target = &critical
		}
		target.add(sheet.URL, filepath.Base(file), compressed)
		doc.RemoveStyleSheet(sheet.URL)
	}

	if !critical.empty() {
		url, version, err := p.store("css", md5Hex(critical.hash.String())+".css", critical.code.String())
		if err != nil {
			return err
		}
		doc.AddStyleSheet(url, document.WithVersion(version))
	}
	if !lazy.empty() {
		url, version, err := p.store("css", md5Hex(lazy.hash.String())+".css", lazy.code.String())
		if err != nil {
			return err
		}
		doc.AddStyleSheet(url,
			document.WithVersion(version),
			document.WithAttr("media", "none"),
			document.WithAttr("onload", "media='all'"),
		)
	}
	return nil
}

// CompressJS replaces the local scripts of doc with a critical bundle
// (jquery), a deferred bundle for the rest and a deferred bundle holding the
// inline declarations. Scripts whose base name is listed in excludes (comma
// separated) are left untouched.
func (p *Pipeline) CompressJS(ctx context.Context, doc *document.Document, excludes string) error {
	var critical, deferred bundle

	for _, script := range doc.Scripts() {
		if err := ctx.Err(); err != nil {
			return err
		}
		file, ok := p.localPath(script.URL)
		if !ok || excluded(script.URL, excludes) {
			continue
		}
		data, err := afero.ReadFile(p.fs, file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("assets: read %s: %w", file, err)
		}

		compressed := string(data)
		switch {
		case compressed == "":
			compressed = emptyScript
		case !IsMinified(compressed):
			if out, err := MinifyJS(compressed); err == nil {
				compressed = out
			} else {
				p.logger.Warn().Err(err).Str("file", file).Msg("js minify failed, bundling source")
			}
		}

		target := &deferred
		if criticalJS.MatchString(script.URL) {
			target = &critical
		}
		target.add(script.URL, filepath.Base(file), compressed)
		doc.RemoveScript(script.URL)
	}

	if !critical.empty() {
		url, version, err := p.store("js", md5Hex(critical.hash.String())+".js", critical.code.String())
		if err != nil {
			return err
		}
		doc.AddScript(url, document.WithVersion(version))
	}
	if !deferred.empty() {
		url, version, err := p.store("js", md5Hex(deferred.hash.String())+".js", deferred.code.String())
		if err != nil {
			return err
		}
		doc.AddScript(url, document.WithVersion(version), document.Deferred())
	}

	declared := doc.ScriptDeclarations()
	if len(declared) == 0 {
		return nil
	}
	var hash, code strings.Builder
	for _, js := range declared {
		hash.WriteString(md5Hex(js))
		out, err := MinifyJS(js)
		if err != nil {
			out = js
		}
		// the minifier drops the final semicolon of each declaration
		if out = strings.TrimRight(strings.TrimSpace(out), ";"); out != "" {
			code.WriteString(out)
			code.WriteString(";\n")
		}
	}
	doc.ClearScriptDeclarations()
	if code.Len() == 0 {
		return nil
	}
	url, version, err := p.store("js", md5Hex(hash.String())+".js", code.String())
	if err != nil {
		return err
	}
	doc.AddScript(url, document.WithVersion(version), document.Deferred())
	return nil
}

// store writes content to the cache when stale and returns its URL and the
// content hash used as version.
func (p *Pipeline) store(kind, name, content string) (string, string, error) {
	file := filepath.Join(p.cacheDir, name)
	stale, err := p.stale(file, content)
	if err != nil {
		return "", "", err
	}
	if stale {
		if err := p.fs.MkdirAll(p.cacheDir, 0o755); err != nil {
			return "", "", fmt.Errorf("assets: create cache dir: %w", err)
		}
		if err := afero.WriteFile(p.fs, file, []byte(content), 0o644); err != nil {
			return "", "", fmt.Errorf("assets: write bundle %s: %w", name, err)
		}
		metrics.BundleWrite(kind)
		p.logger.Debug().Str("bundle", name).Int("bytes", len(content)).Msg("asset bundle written")
	} else {
		metrics.BundleHit(kind)
	}
	return p.cacheURL + "/" + name, md5Hex(content), nil
}

func (p *Pipeline) stale(file, content string) (bool, error) {
	info, err := p.fs.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("assets: stat bundle: %w", err)
	}
	switch {
	case info.Size() == 0:
		return true, nil
	case info.Size() != int64(len(content)):
		return true, nil
	case info.ModTime().Add(p.cacheTime).Before(p.now()):
		return true, nil
	}
	return false, nil
}

// localPath maps a document URL to a file under the site root. Remote URLs
// are not local.
func (p *Pipeline) localPath(url string) (string, bool) {
	if url == "" || strings.HasPrefix(url, "//") || strings.Contains(url, "://") {
		return "", false
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if p.baseURL != "" && strings.HasPrefix(url, p.baseURL+"/") {
		url = strings.TrimPrefix(url, p.baseURL)
	}
	clean := path.Clean("/" + url)
	return filepath.Join(p.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), true
}

func excluded(url, excludes string) bool {
	if strings.TrimSpace(excludes) == "" {
		return false
	}
	name := path.Base(url)
	for _, candidate := range strings.Split(excludes, ",") {
		if strings.TrimSpace(candidate) == name {
			return true
		}
	}
	return false
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
