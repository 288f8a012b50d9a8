package render

import (
	"context"

	"github.com/goliatone/go-sitetheme/pkg/layout"
)

// Renderer converts resolved layout sections into a byte representation
// (Bootstrap HTML, a text outline, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, sections []layout.ResolvedRow, options Options) ([]byte, error)
}
