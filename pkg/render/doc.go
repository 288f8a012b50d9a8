// Package render defines the contract shared by the layout renderers and a
// registry to look them up by name.
package render
