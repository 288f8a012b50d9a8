// Package sitetheme renders JSON row/column layouts to Bootstrap grid markup
// with module positions, and builds the page head and assets around them.
// The sub packages hold the pieces; this package re-exports the common entry
// points.
package sitetheme

import (
	"context"
	"html/template"

	"github.com/goliatone/go-sitetheme/pkg/admin/apidoc"
	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/page"
	"github.com/goliatone/go-sitetheme/pkg/params"
)

// Request describes one page render.
type Request = page.Request

// Input is the routing state of a request.
type Input = page.Input

// Page is a generated page.
type Page = page.Page

// Params are template style params.
type Params = params.Params

// ErrLayoutMissing is returned when a style has no layout and its template
// ships no options.json.
var ErrLayoutMissing = layout.ErrLayoutMissing

// NewOrchestrator builds the page orchestrator.
func NewOrchestrator(options ...page.Option) *page.Orchestrator {
	return page.New(options...)
}

// RenderLayout renders layoutJSON for template with the named renderer
// ("" for bootstrap) and returns the layout markup only.
func RenderLayout(ctx context.Context, templateName string, layoutJSON []byte, rendererName string, options ...page.Option) (template.HTML, error) {
	l, err := layout.Parse(layoutJSON)
	if err != nil {
		return "", err
	}
	raw, err := layout.Marshal(l)
	if err != nil {
		return "", err
	}
	pg, err := page.New(options...).Generate(ctx, page.Request{
		Template: templateName,
		Params:   params.Params{"layout": string(raw)},
		Input:    page.Input{Option: "com_content", View: "article"},
		Renderer: rendererName,
	})
	if err != nil {
		return "", err
	}
	return pg.Body, nil
}

// LoadAPIDoc loads the embedded admin API document. It validates saved
// style params and lists the admin actions.
func LoadAPIDoc(ctx context.Context) (*apidoc.Doc, error) {
	return apidoc.Load(ctx)
}
