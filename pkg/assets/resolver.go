package assets

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/pkg/document"
)

// Resolver maps template asset names to document links.
type Resolver struct {
	fs       afero.Fs
	root     string
	template string
	baseURL  string
}

// NewResolver builds a resolver for template under root/templates. baseURL
// is the site path prefix ("" when served from /).
func NewResolver(fs afero.Fs, root, template, baseURL string) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Resolver{
		fs:       fs,
		root:     root,
		template: template,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Template returns the template name.
func (r *Resolver) Template() string {
	return r.template
}

// TemplateDir returns the template directory on disk.
func (r *Resolver) TemplateDir() string {
	return filepath.Join(r.root, "templates", r.template)
}

// TemplateURL returns the public URL of the template directory.
func (r *Resolver) TemplateURL() string {
	return r.baseURL + "/templates/" + r.template
}

// Exists reports whether name exists relative to the template directory.
func (r *Resolver) Exists(name string) bool {
	ok, err := afero.Exists(r.fs, filepath.Join(r.TemplateDir(), filepath.FromSlash(name)))
	return err == nil && ok
}

// AddCSS links a comma separated list of stylesheets.
func (r *Resolver) AddCSS(doc *document.Document, files string, opts ...document.Option) {
	for _, url := range r.resolve("css", files) {
		doc.AddStyleSheet(url, opts...)
	}
}

// AddJS links a comma separated list of scripts.
func (r *Resolver) AddJS(doc *document.Document, files string, opts ...document.Option) {
	for _, url := range r.resolve("js", files) {
		doc.AddScript(url, opts...)
	}
}

// resolve looks each name up under <template>/<folder>/ first and then as a
// root relative path. Names matching neither are skipped.
func (r *Resolver) resolve(folder, files string) []string {
	var out []string
	for _, name := range strings.Split(files, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if ok, _ := afero.Exists(r.fs, filepath.Join(r.TemplateDir(), folder, filepath.FromSlash(name))); ok {
			out = append(out, r.TemplateURL()+"/"+folder+"/"+name)
			continue
		}
		if ok, _ := afero.Exists(r.fs, filepath.Join(r.root, filepath.FromSlash(strings.TrimPrefix(name, "/")))); ok {
			out = append(out, name)
		}
	}
	return out
}
