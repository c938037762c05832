package render

// RenderOptions carry per-request presentation choices that do not belong in
// the table configuration.
type RenderOptions struct {
	// RuntimeScript is the URL of the incremental loader script. HTML output
	// references it only for lazy_loading and virtual_scroll tables.
	RuntimeScript string
	// Stylesheets are linked ahead of the table when Standalone is set.
	Stylesheets []string
	// Standalone wraps HTML output in a complete document.
	Standalone bool
	// Indent pretty-prints JSON output.
	Indent bool
	// ShowMeta adds grid metadata (fallback flags, depth truncation) to text
	// output.
	ShowMeta bool
}
