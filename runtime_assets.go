package tablegen

import (
	"embed"
	"io/fs"
)

//go:embed pkg/runtime/assets/*.js pkg/runtime/assets/*.css
var embeddedRuntimeAssets embed.FS

// Runtime asset names inside RuntimeAssetsFS.
const (
	RuntimeLoaderScript = "tablegen-loader.js"
	RuntimeStylesheet   = "tablegen.css"
)

// RuntimeAssetsFS exposes the browser incremental loader and the default
// stylesheet so Go applications can serve them without a frontend build.
//
// Typical mount:
//
//	mux.Handle("/runtime/",
//	  http.StripPrefix("/runtime/",
//	    http.FileServerFS(tablegen.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedRuntimeAssets, "pkg/runtime/assets")
	if err != nil {
		return embeddedRuntimeAssets
	}
	return sub
}
