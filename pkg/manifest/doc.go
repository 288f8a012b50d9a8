// Package manifest loads template manifests (theme.yaml or theme.json next
// to a template's options.json) and resolves the theme and variant a page is
// rendered with into a go-theme renderer configuration.
package manifest
