// Package outline renders resolved sections as an indented text tree, for
// debugging layouts from the command line.
package outline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "outline"

// Renderer implements render.Renderer.
type Renderer struct{}

var _ render.Renderer = Renderer{}

// New returns the outline renderer.
func New() Renderer {
	return Renderer{}
}

func (Renderer) Name() string {
	return Name
}

func (Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes one line per section followed by one indented line per
// column.
func (Renderer) Render(ctx context.Context, sections []layout.ResolvedRow, opts render.Options) ([]byte, error) {
	buf := bytes.Buffer{}

	for _, s := range sections {
		fmt.Fprintf(&buf, "<%s> #%s", s.Semantic, s.ID)
		if s.Classes != "" {
			fmt.Fprintf(&buf, " .%q", s.Classes)
		}
		if render.Contained(s, opts) {
			fmt.Fprint(&buf, " (contained)")
		}
		fmt.Fprintln(&buf)

		for _, c := range s.Columns {
			fmt.Fprintf(&buf, "\t%q ", c.ClassName)
			if c.Component {
				fmt.Fprintln(&buf, "component")
				continue
			}
			block, err := opts.Block(ctx, c.Position)
			if err != nil {
				return nil, fmt.Errorf("outline renderer: %s: %w", c.Position, err)
			}
			fmt.Fprintf(&buf, "%s: %d modules", c.Position, len(block.Modules))
			if n := len(block.Before) + len(block.After); n > 0 {
				fmt.Fprintf(&buf, ", %d features", n)
			}
			fmt.Fprintln(&buf)
		}
	}
	return buf.Bytes(), nil
}
