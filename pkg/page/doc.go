// Package page assembles a site page from a template style: it links the
// head assets, resolves and renders the row/column layout through a
// renderer from the registry, and produces the pieces a template places
// around the layout (body classes, preloader, predefined header, analytics).
//
// A missing layout surfaces as an error wrapping layout.ErrLayoutMissing so
// callers can answer with a proper error page.
package page
