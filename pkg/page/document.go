package page

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	markup "github.com/goliatone/go-sitetheme/pkg/render/template"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// IndexFile is the page shell a template may ship to replace the built-in
// one.
const IndexFile = "index.tpl"

// TemplatesFS exposes the built-in page shell.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

var (
	shellOnce   sync.Once
	shellEngine *markup.Engine
	shellErr    error
)

func shell() (*markup.Engine, error) {
	shellOnce.Do(func() {
		shellEngine, shellErr = markup.New(markup.WithFS(TemplatesFS()), markup.WithName("page"))
	})
	return shellEngine, shellErr
}

// Render generates the page for req and wraps it in the HTML shell. Text
// renderers get their body back unwrapped.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, string, error) {
	page, err := o.Generate(ctx, req)
	if err != nil {
		return nil, "", err
	}
	if !strings.HasPrefix(page.ContentType, "text/html") {
		return []byte(page.Body), page.ContentType, nil
	}
	out, err := o.Document(req.Template, page)
	if err != nil {
		return nil, "", err
	}
	return out, page.ContentType, nil
}

// Document renders page into the shell of tpl: <template>/index.tpl when
// present, the built-in document otherwise.
func (o *Orchestrator) Document(tpl string, page *Page) ([]byte, error) {
	engine, err := shell()
	if err != nil {
		return nil, fmt.Errorf("page: shell templates: %w", err)
	}

	data := map[string]any{
		"language":    page.Document.Language,
		"direction":   page.Document.Direction,
		"head":        string(page.Head()),
		"body_class":  page.BodyClass,
		"preloader":   string(page.Preloader),
		"header":      string(page.Header),
		"body":        string(page.Body),
		"before_body": string(page.BeforeBody),
		"analytics":   string(page.Analytics),
	}

	index := filepath.Join(o.root, "templates", tpl, IndexFile)
	if src, err := afero.ReadFile(o.fs, index); err == nil {
		out, err := engine.ExecuteString(string(src), data)
		if err != nil {
			return nil, fmt.Errorf("page: render %s: %w", index, err)
		}
		return []byte(out), nil
	}

	out, err := engine.Execute("document", data)
	if err != nil {
		return nil, fmt.Errorf("page: render document: %w", err)
	}
	return []byte(out), nil
}
