package admin

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sitetheme/pkg/admin/apidoc"
	"github.com/goliatone/go-sitetheme/pkg/menu"
	"github.com/goliatone/go-sitetheme/pkg/style"
)

// GuardFunc authorises a request. A returned HTTPError sets the status code;
// any other error answers 403.
type GuardFunc func(r *http.Request) error

type Options struct {
	Styles *style.Service
	Menus  *menu.Service
	// Doc is the API document. Its operations decide which actions require
	// POST. Defaults to the embedded document.
	Doc    *apidoc.Doc
	Guard  GuardFunc
	Logger zerolog.Logger
}

type OptionFn func(*Options)

func WithStyles(s *style.Service) OptionFn {
	return func(o *Options) { o.Styles = s }
}

func WithMenus(m *menu.Service) OptionFn {
	return func(o *Options) { o.Menus = m }
}

func WithDoc(doc *apidoc.Doc) OptionFn {
	return func(o *Options) { o.Doc = doc }
}

func WithGuard(g GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = g }
}

func WithLogger(l zerolog.Logger) OptionFn {
	return func(o *Options) { o.Logger = l }
}

func DefaultOptions() Options {
	return Options{Logger: zerolog.Nop()}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	return opts
}
