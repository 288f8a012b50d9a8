// Package webfonts serves the font family search behind the typography
// picker of the style editor. Families come from the embedded Google Fonts
// list unless a site supplies its own.
package webfonts
