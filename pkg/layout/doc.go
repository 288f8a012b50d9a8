// Package layout models the row/column page description edited in the layout
// builder and resolves it into Bootstrap grid sections.
//
// A layout is a JSON array of rows. Each row carries section settings and a
// list of columns; a column either names a module position or hosts the
// component area. Values saved by the builder are loosely typed ("1", 1,
// true) and unknown settings are preserved on round trips.
package layout
