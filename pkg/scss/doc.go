// Package scss compiles template SCSS entry points to CSS and keeps a small
// cache record per entry so unchanged sources are not recompiled on every
// request.
package scss
