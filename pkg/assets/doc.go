// Package assets resolves template stylesheets and scripts, and bundles the
// local ones into minified, hash-named files under the cache directory.
//
// Bundles are rewritten when missing, empty, when their size no longer matches
// the freshly built content, or when the cache window has elapsed. The cache
// has no locking; a single writer per template is assumed.
package assets
