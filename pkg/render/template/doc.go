// Package template defines the engine contract HTML renderers depend on so the
// pongo2 adapter can be swapped for another engine in tests or by callers.
package template
