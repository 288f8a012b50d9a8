package render

import (
	"context"
	"html/template"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/positions"
)

// BlockSource renders the content of a module position.
type BlockSource interface {
	Render(ctx context.Context, position string) (positions.Block, error)
}

// Options describe per-request data renderers use to fill the layout.
type Options struct {
	// Blocks renders module positions. A nil source leaves module columns
	// empty.
	Blocks BlockSource
	// Component is the main content of the request, placed in the
	// component column.
	Component template.HTML
	// Message is the system message queue shown above the component.
	Message template.HTML
	// PageBuilder marks requests served by the page builder, whose
	// component rows are rendered without container wrappers.
	PageBuilder bool
	// Theme carries the selected theme partials and tokens.
	Theme *theme.RendererConfig
	// ModuleStyle names the chrome used around modules.
	ModuleStyle string
}

// Partial returns the theme override registered for name, or "".
func (o Options) Partial(name string) string {
	if o.Theme == nil || o.Theme.Partials == nil {
		return ""
	}
	return o.Theme.Partials[name]
}

// Block renders position through Blocks. A nil source yields an empty block.
func (o Options) Block(ctx context.Context, position string) (positions.Block, error) {
	if o.Blocks == nil {
		return positions.Block{Position: position}, nil
	}
	return o.Blocks.Render(ctx, position)
}

// Contained reports whether row is wrapped in container markup: component
// rows unless the page builder owns the request, other rows unless fluid.
func Contained(row layout.ResolvedRow, opts Options) bool {
	if row.ComponentArea {
		return !opts.PageBuilder
	}
	return !row.Fluid
}
