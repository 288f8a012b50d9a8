package sitetheme

import (
	"io/fs"

	"github.com/goliatone/go-sitetheme/pkg/menu"
	"github.com/goliatone/go-sitetheme/pkg/page"
	"github.com/goliatone/go-sitetheme/pkg/renderers/bootstrap"
)

// LayoutTemplates exposes the built-in layout templates (rows, columns,
// modules) so templates can copy and override them.
func LayoutTemplates() fs.FS {
	return bootstrap.TemplatesFS()
}

// ShellTemplates exposes the built-in page document.
func ShellTemplates() fs.FS {
	return page.TemplatesFS()
}

// MenuTemplates exposes the menu tree and mega menu templates.
func MenuTemplates() fs.FS {
	return menu.Templates()
}
